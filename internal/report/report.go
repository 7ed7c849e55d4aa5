// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report filters, orders, and prints Record tables for reading at
// the terminal.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pdiddy/research-radar/pkg/types"
)

// Filter selects records. Zero-valued fields match everything.
type Filter struct {
	// Keywords are matched case-insensitively against Title and Abstract.
	// Any keyword matching is enough unless MatchAll is set.
	Keywords []string
	MatchAll bool

	Kind types.SourceKind

	// From and To bound the publication date, inclusive.
	From time.Time
	To   time.Time

	// Problem, when set, must equal the record's Problem exactly.
	Problem string
}

// SplitKeywords splits a comma-separated keyword list, dropping blanks.
func SplitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ParseKind maps a CLI document type to a SourceKind. Empty and "all" mean
// no restriction.
func ParseKind(s string) (types.SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "arxiv", "paper", "papers":
		return types.SourceArxiv, nil
	case "patent", "patents":
		return types.SourcePatent, nil
	case "other":
		return types.SourceOther, nil
	}
	return "", fmt.Errorf("unknown document type %q: use all, arxiv, patent, or other", s)
}

// Entry is a record with its parsed date and source kind.
type Entry struct {
	types.Record
	Date time.Time        `json:"date"`
	Kind types.SourceKind `json:"kind"`
}

// Result holds filtered entries and how many records had no usable date.
type Result struct {
	Entries []Entry
	Undated int
}

// Apply filters records and orders the survivors newest first. Records
// whose Pub_Date does not parse are dropped and counted.
func Apply(records []types.Record, f Filter) Result {
	var res Result
	keywords := make([]string, 0, len(f.Keywords))
	for _, k := range f.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	for _, rec := range records {
		date, ok := rec.Date()
		if !ok {
			res.Undated++
			continue
		}
		if !f.From.IsZero() && date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && date.After(f.To) {
			continue
		}
		kind := rec.Kind()
		if f.Kind != "" && kind != f.Kind {
			continue
		}
		if f.Problem != "" && rec.Problem != f.Problem {
			continue
		}
		if !matchKeywords(rec, keywords, f.MatchAll) {
			continue
		}
		res.Entries = append(res.Entries, Entry{Record: rec, Date: date, Kind: kind})
	}

	slices.SortStableFunc(res.Entries, func(a, b Entry) int {
		return b.Date.Compare(a.Date)
	})
	return res
}

func matchKeywords(rec types.Record, keywords []string, all bool) bool {
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(rec.Title)
	abstract := strings.ToLower(rec.Abstract)
	for _, k := range keywords {
		hit := strings.Contains(title, k) || strings.Contains(abstract, k)
		if hit && !all {
			return true
		}
		if !hit && all {
			return false
		}
	}
	return all
}

// FormatTable writes entries as an aligned text table.
func FormatTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No documents match the filter.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-6s  %-50s  %-30s  %s\n", "Date", "Kind", "Title", "Problem", "Document")
	fmt.Fprintln(w, strings.Repeat("-", 130))
	for _, e := range entries {
		fmt.Fprintf(w, "%-10s  %-6s  %-50s  %-30s  %s\n",
			e.Date.Format(types.DateLayout), e.Kind,
			truncate(e.Title, 50), truncate(e.Problem, 30), e.DocumentURI)
	}
	fmt.Fprintf(w, "\n%d documents\n", len(entries))
}

// FormatJSON writes entries as indented JSON.
func FormatJSON(entries []Entry, w io.Writer) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}

// Stats summarizes a filtered set.
type Stats struct {
	Total  int                      `json:"total"`
	ByKind map[types.SourceKind]int `json:"by_kind"`
	ByYear map[int]int              `json:"by_year"`

	// Annotated, Placeholder, and Errors count annotation states.
	Annotated   int `json:"annotated"`
	Placeholder int `json:"placeholder"`
	Errors      int `json:"errors"`

	Latest time.Time `json:"latest"`
}

// Summarize counts entries by kind, year, and annotation state.
func Summarize(entries []Entry) Stats {
	s := Stats{
		Total:  len(entries),
		ByKind: make(map[types.SourceKind]int),
		ByYear: make(map[int]int),
	}
	for _, e := range entries {
		s.ByKind[e.Kind]++
		s.ByYear[e.Date.Year()]++
		switch e.AnnotationState() {
		case types.StateAnnotated:
			s.Annotated++
		case types.StateError:
			s.Errors++
		case types.StatePlaceholder:
			s.Placeholder++
		}
		if e.Date.After(s.Latest) {
			s.Latest = e.Date
		}
	}
	return s
}

// FormatStats writes s as a short text summary.
func FormatStats(s Stats, w io.Writer) {
	fmt.Fprintf(w, "documents: %d (arxiv: %d, patent: %d, other: %d)\n",
		s.Total, s.ByKind[types.SourceArxiv], s.ByKind[types.SourcePatent], s.ByKind[types.SourceOther])
	fmt.Fprintf(w, "annotated: %d, placeholder: %d, error: %d\n", s.Annotated, s.Placeholder, s.Errors)
	if !s.Latest.IsZero() {
		fmt.Fprintf(w, "latest:    %s\n", s.Latest.Format(types.DateLayout))
	}

	years := make([]int, 0, len(s.ByYear))
	for y := range s.ByYear {
		years = append(years, y)
	}
	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	for _, y := range years {
		fmt.Fprintf(w, "  %d  %d\n", y, s.ByYear[y])
	}
}
