// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate derives Problem and Solution fields for table rows by
// sending each abstract to a text generator, one throttled call per row.
package annotate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-radar/internal/table"
	"github.com/pdiddy/research-radar/pkg/types"
)

// DefaultSourceFilter selects arXiv rows.
const DefaultSourceFilter = types.ArxivHost

// Checkpoint persists per-row outcomes so an interrupted run can resume.
type Checkpoint interface {
	// Lookup returns the latest successful outcome for a document.
	Lookup(ctx context.Context, document string) (types.AnnotationOutcome, bool, error)
	Record(ctx context.Context, outcome types.AnnotationOutcome) error
}

// Annotator fills Problem and Solution for rows whose DocumentURI contains
// Filter. Rows run sequentially.
type Annotator struct {
	Generator Generator
	Parser    ResponseParser

	// Limiter throttles generator calls. Nil means unthrottled.
	Limiter *rate.Limiter

	Filter string
	Topic  string

	// Force re-annotates rows that already hold an annotation.
	Force bool

	// Resume fills rows from Checkpoint when it has a successful outcome.
	// Force takes precedence.
	Resume     bool
	Checkpoint Checkpoint

	Logger *zap.Logger
	Out    io.Writer

	now func() time.Time
}

// New builds an Annotator from configuration.
func New(cfg types.AnnotateConfig, gen Generator, log *zap.Logger, w io.Writer) (*Annotator, error) {
	parser, err := ParserFor(cfg.Parser)
	if err != nil {
		return nil, err
	}
	filter := cfg.SourceFilter
	if filter == "" {
		filter = DefaultSourceFilter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Annotator{
		Generator: gen,
		Parser:    parser,
		Limiter:   NewLimiter(cfg.RateLimit),
		Filter:    filter,
		Topic:     cfg.Topic,
		Force:     cfg.Force,
		Resume:    cfg.Resume,
		Logger:    log,
		Out:       w,
	}, nil
}

// NewLimiter returns a token bucket issuing one token per Interval. A zero
// Interval disables throttling.
func NewLimiter(cfg types.RateLimitConfig) *rate.Limiter {
	if cfg.Interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(cfg.Interval), max(cfg.Burst, 1))
}

// Run reads in, annotates every matching row, and writes all rows to out.
// Nothing is written if the context is cancelled mid-run.
func (a *Annotator) Run(ctx context.Context, in, out table.File) (types.AnnotationSummary, error) {
	t, err := table.Read(in.Path, in.Format, a.logger())
	if err != nil {
		return types.AnnotationSummary{}, err
	}

	summary, err := a.AnnotateTable(ctx, t)
	if err != nil {
		return summary, err
	}

	if err := table.Write(out.Path, out.Format, t); err != nil {
		return summary, err
	}
	a.logger().Info("annotate complete",
		zap.Int("annotated", summary.Annotated),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("reused", summary.Reused),
		zap.Int("passed", summary.Passed),
		zap.String("output", out.Path))
	return summary, nil
}

// AnnotateTable annotates t in place. Missing Problem and Solution columns
// are added with the placeholder value. Per-row failures set both fields
// to AnnotationError and do not stop the run.
func (a *Annotator) AnnotateTable(ctx context.Context, t *table.Table) (types.AnnotationSummary, error) {
	t.EnsureColumn(types.ColumnProblem, types.Placeholder)
	t.EnsureColumn(types.ColumnSolution, types.Placeholder)

	var summary types.AnnotationSummary
	for i := range t.Records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec := &t.Records[i]

		if !strings.Contains(rec.DocumentURI, a.Filter) {
			summary.Passed++
			continue
		}
		if !a.Force && rec.AnnotationState() == types.StateAnnotated {
			a.printf("skipped   %s\n", rec.DocumentURI)
			summary.Skipped++
			continue
		}
		if a.Resume && !a.Force && a.Checkpoint != nil {
			reused, err := a.reuse(ctx, rec)
			if err != nil {
				return summary, err
			}
			if reused {
				a.printf("reused    %s\n", rec.DocumentURI)
				summary.Reused++
				continue
			}
		}

		if a.Limiter != nil {
			if err := a.Limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}

		outcome := a.annotateRecord(ctx, rec)
		if outcome.Status == types.OutcomeAnnotated {
			a.printf("annotated %s\n", rec.DocumentURI)
			summary.Annotated++
		} else {
			a.printf("failed    %s\n", rec.DocumentURI)
			summary.Failed++
		}

		if a.Checkpoint != nil {
			if err := a.Checkpoint.Record(ctx, outcome); err != nil {
				return summary, fmt.Errorf("recording outcome for %s: %w", rec.DocumentURI, err)
			}
		}
	}
	return summary, nil
}

// annotateRecord makes one generator call for rec and stores the result.
func (a *Annotator) annotateRecord(ctx context.Context, rec *types.Record) types.AnnotationOutcome {
	outcome := types.AnnotationOutcome{
		Document:    rec.DocumentURI,
		AnnotatedAt: a.clock(),
	}

	ann, err := a.derive(ctx, rec.Abstract)
	if err != nil {
		rec.MarkAnnotationFailed()
		a.logger().Warn("annotation failed",
			zap.String("document", rec.DocumentURI),
			zap.Error(err))
		outcome.Status = types.OutcomeFailed
		outcome.Problem = rec.Problem
		outcome.Solution = rec.Solution
		outcome.Error = err.Error()
		return outcome
	}

	rec.SetAnnotation(ann.Problem, ann.Solution)
	outcome.Status = types.OutcomeAnnotated
	outcome.Problem = ann.Problem
	outcome.Solution = ann.Solution
	return outcome
}

func (a *Annotator) derive(ctx context.Context, abstract string) (Annotation, error) {
	prompt, err := RenderPrompt(a.Topic, abstract)
	if err != nil {
		return Annotation{}, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := a.Generator.Generate(ctx, prompt)
	if err != nil {
		return Annotation{}, err
	}
	ann, err := a.Parser.Parse(text)
	if err != nil {
		return Annotation{}, fmt.Errorf("parsing generated text: %w", err)
	}
	return ann, nil
}

func (a *Annotator) reuse(ctx context.Context, rec *types.Record) (bool, error) {
	prev, ok, err := a.Checkpoint.Lookup(ctx, rec.DocumentURI)
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", rec.DocumentURI, err)
	}
	if !ok {
		return false, nil
	}
	rec.SetAnnotation(prev.Problem, prev.Solution)
	return true, nil
}

func (a *Annotator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *Annotator) printf(format string, args ...any) {
	if a.Out != nil {
		fmt.Fprintf(a.Out, format, args...)
	}
}

func (a *Annotator) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}
