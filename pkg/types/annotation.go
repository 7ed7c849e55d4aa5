// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutcomeStatus records how a single annotation call ended.
type OutcomeStatus string

const (
	OutcomeAnnotated OutcomeStatus = "annotated"
	OutcomeFailed    OutcomeStatus = "failed"
)

// AnnotationOutcome is the result of annotating one document, as kept in the
// annotation ledger.
type AnnotationOutcome struct {
	// Document is the record's DocumentURI.
	Document string `json:"document" yaml:"document"`

	// RunID identifies the annotate invocation that produced the outcome.
	RunID string `json:"run_id" yaml:"run_id"`

	Problem  string        `json:"problem" yaml:"problem"`
	Solution string        `json:"solution" yaml:"solution"`
	Status   OutcomeStatus `json:"status" yaml:"status"`

	// Error holds the failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	AnnotatedAt time.Time `json:"annotated_at" yaml:"annotated_at"`
}

// AnnotationSummary holds counts from one annotate run.
type AnnotationSummary struct {
	// Annotated rows received a fresh annotation from the generator.
	Annotated int `json:"annotated" yaml:"annotated"`

	// Failed rows were sent to the generator and set to AnnotationError.
	Failed int `json:"failed" yaml:"failed"`

	// Skipped rows matched the source filter but were already annotated.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Reused rows were filled from the ledger without a generator call.
	Reused int `json:"reused" yaml:"reused"`

	// Passed rows did not match the source filter.
	Passed int `json:"passed" yaml:"passed"`
}

// Total returns the number of rows processed.
func (s AnnotationSummary) Total() int {
	return s.Annotated + s.Failed + s.Skipped + s.Reused + s.Passed
}

// Calls returns the number of rows sent to the generator.
func (s AnnotationSummary) Calls() int {
	return s.Annotated + s.Failed
}

// HasFailures reports whether any row failed.
func (s AnnotationSummary) HasFailures() bool {
	return s.Failed > 0
}
