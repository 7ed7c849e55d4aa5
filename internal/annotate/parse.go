// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMarkerNotFound is returned when generated text lacks a
	// "Problem: " or "Solution: " marker.
	ErrMarkerNotFound = errors.New("marker not found in generated text")

	// ErrEmptyAnnotation is returned when a parsed field is blank.
	ErrEmptyAnnotation = errors.New("parsed annotation has an empty field")
)

// Annotation is a problem/solution pair taken from one generator response.
type Annotation struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

func (a Annotation) validate() (Annotation, error) {
	a.Problem = strings.TrimSpace(a.Problem)
	a.Solution = strings.TrimSpace(a.Solution)
	if a.Problem == "" || a.Solution == "" {
		return Annotation{}, ErrEmptyAnnotation
	}
	return a, nil
}

// ResponseParser turns generated text into an Annotation.
type ResponseParser interface {
	Parse(text string) (Annotation, error)
}

// ParserFor returns the parser registered under name. Empty selects the
// marker parser.
func ParserFor(name string) (ResponseParser, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "markers", "marker":
		return MarkerParser{}, nil
	case "json":
		return JSONParser{}, nil
	}
	return nil, fmt.Errorf("unknown response parser %q: use markers or json", name)
}

const (
	problemMarker  = "Problem: "
	solutionMarker = "Solution: "
)

// MarkerParser reads "Problem: ..." and "Solution: ..." markers. The problem
// runs to the end of its line or to a "Solution: " marker on the same line,
// whichever comes first. The solution runs to the end of the text.
type MarkerParser struct{}

// Parse implements ResponseParser.
func (MarkerParser) Parse(text string) (Annotation, error) {
	pi := strings.Index(text, problemMarker)
	if pi < 0 {
		return Annotation{}, fmt.Errorf("%w: %q", ErrMarkerNotFound, strings.TrimSpace(problemMarker))
	}
	si := strings.Index(text, solutionMarker)
	if si < 0 {
		return Annotation{}, fmt.Errorf("%w: %q", ErrMarkerNotFound, strings.TrimSpace(solutionMarker))
	}

	problem := text[pi+len(problemMarker):]
	if j := strings.IndexByte(problem, '\n'); j >= 0 {
		problem = problem[:j]
	}
	if j := strings.Index(problem, solutionMarker); j >= 0 {
		problem = problem[:j]
	}

	return Annotation{
		Problem:  problem,
		Solution: text[si+len(solutionMarker):],
	}.validate()
}

// JSONParser reads a {"problem": ..., "solution": ...} object. Text around
// the outermost braces is ignored.
type JSONParser struct{}

// Parse implements ResponseParser.
func (JSONParser) Parse(text string) (Annotation, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return Annotation{}, fmt.Errorf("no JSON object in generated text")
	}

	var a Annotation
	if err := json.Unmarshal([]byte(text[start:end+1]), &a); err != nil {
		return Annotation{}, fmt.Errorf("parsing annotation JSON: %w", err)
	}
	return a.validate()
}
