// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-radar pipeline:
// the Record row model, annotation outcomes, and stage configuration.
package types

import (
	"strings"
	"time"
)

// Column names used in flat table files.
const (
	ColumnDocument = "Document"
	ColumnTitle    = "Title"
	ColumnPubDate  = "Pub_Date"
	ColumnAbstract = "Abstract"
	ColumnProblem  = "Problem"
	ColumnSolution = "Solution"
)

// StandardColumns is the column order written by the fetch stage.
var StandardColumns = []string{
	ColumnDocument,
	ColumnTitle,
	ColumnPubDate,
	ColumnAbstract,
	ColumnProblem,
	ColumnSolution,
}

const (
	// Placeholder fills Problem and Solution until the row is annotated.
	Placeholder = "AI-generated placeholder"

	// AnnotationError marks both derived fields of a row whose annotation failed.
	AnnotationError = "Error"
)

// DateLayout is the calendar-date layout the fetch stage writes.
const DateLayout = "2006-01-02"

// dateLayouts lists the Pub_Date encodings found across input tables, in the
// order they are tried.
var dateLayouts = []string{
	DateLayout,
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
	time.RFC3339,
}

// ParseDate normalizes a textual publication date to midnight UTC of its
// calendar day. The first layout that parses wins, so "03/04/2024" is read
// day-first. Timestamps keep their own calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// SourceKind classifies a record by its document URI.
type SourceKind string

const (
	SourceArxiv  SourceKind = "arxiv"
	SourcePatent SourceKind = "patent"
	SourceOther  SourceKind = "other"
)

// Substrings of DocumentURI that identify each source kind.
const (
	ArxivHost  = "arxiv.org"
	PatentHost = "patents.google.com"
)

// AnnotationState describes the derived fields of a record.
type AnnotationState int

const (
	StatePlaceholder AnnotationState = iota
	StateError
	StateAnnotated
	StatePartial
)

func (s AnnotationState) String() string {
	switch s {
	case StatePlaceholder:
		return "placeholder"
	case StateError:
		return "error"
	case StateAnnotated:
		return "annotated"
	default:
		return "partial"
	}
}

// Record is one document's metadata row. Columns other than the standard
// six are carried in Extra so that tables round-trip without loss.
type Record struct {
	DocumentURI string            `json:"document" yaml:"document"`
	Title       string            `json:"title" yaml:"title"`
	PubDate     string            `json:"pub_date" yaml:"pub_date"`
	Abstract    string            `json:"abstract" yaml:"abstract"`
	Problem     string            `json:"problem" yaml:"problem"`
	Solution    string            `json:"solution" yaml:"solution"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Get returns the value of the named column.
func (r *Record) Get(column string) string {
	switch column {
	case ColumnDocument:
		return r.DocumentURI
	case ColumnTitle:
		return r.Title
	case ColumnPubDate:
		return r.PubDate
	case ColumnAbstract:
		return r.Abstract
	case ColumnProblem:
		return r.Problem
	case ColumnSolution:
		return r.Solution
	}
	return r.Extra[column]
}

// Set assigns the value of the named column.
func (r *Record) Set(column, value string) {
	switch column {
	case ColumnDocument:
		r.DocumentURI = value
	case ColumnTitle:
		r.Title = value
	case ColumnPubDate:
		r.PubDate = value
	case ColumnAbstract:
		r.Abstract = value
	case ColumnProblem:
		r.Problem = value
	case ColumnSolution:
		r.Solution = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[column] = value
	}
}

// Kind classifies the record by substring match on its document URI.
func (r *Record) Kind() SourceKind {
	switch {
	case strings.Contains(r.DocumentURI, ArxivHost):
		return SourceArxiv
	case strings.Contains(r.DocumentURI, PatentHost):
		return SourcePatent
	default:
		return SourceOther
	}
}

// Date parses PubDate with ParseDate.
func (r *Record) Date() (time.Time, bool) {
	return ParseDate(r.PubDate)
}

// AnnotationState reports whether Problem and Solution hold the placeholder,
// the error sentinel, a real annotation, or a mix of these.
func (r *Record) AnnotationState() AnnotationState {
	p, s := fieldState(r.Problem), fieldState(r.Solution)
	if p != s {
		return StatePartial
	}
	return p
}

func fieldState(v string) AnnotationState {
	switch strings.TrimSpace(v) {
	case Placeholder, "":
		return StatePlaceholder
	case AnnotationError:
		return StateError
	default:
		return StateAnnotated
	}
}

// SetAnnotation stores a successful annotation.
func (r *Record) SetAnnotation(problem, solution string) {
	r.Problem = problem
	r.Solution = solution
}

// MarkAnnotationFailed sets both derived fields to AnnotationError.
func (r *Record) MarkAnnotationFailed() {
	r.Problem = AnnotationError
	r.Solution = AnnotationError
}
