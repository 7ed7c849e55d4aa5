// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch queries remote bibliographic indexes and writes the results
// as a flat Record table.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/table"
	"github.com/pdiddy/research-radar/pkg/types"
)

// ErrRequestFailed is wrapped by every StatusError.
var ErrRequestFailed = errors.New("index request failed")

// StatusError reports a non-200 response from an index.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Source, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrRequestFailed }

// Source is a remote index that yields Records in the index's own order.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]types.Record, error)
}

// NewSource builds the source selected by cfg.Source. An empty source means
// arXiv.
func NewSource(cfg types.FetchConfig, client *http.Client, log *zap.Logger) (Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Source {
	case "", types.FetchArxiv:
		return &ArxivSource{Client: client, Config: cfg, Logger: log}, nil
	case types.FetchPatentsView:
		return &PatentsViewSource{Client: client, Config: cfg, Logger: log}, nil
	}
	return nil, fmt.Errorf("unknown fetch source %q: use arxiv or patentsview", cfg.Source)
}

// Run fetches from src and writes the records to out in the standard
// column layout. Nothing is written if the fetch fails. It returns the
// number of records written.
func Run(ctx context.Context, src Source, out table.File, log *zap.Logger, w io.Writer) (int, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching from %s: %w", src.Name(), err)
	}

	t := table.New(types.StandardColumns...)
	t.Records = records
	if err := table.Write(out.Path, out.Format, t); err != nil {
		return 0, err
	}

	log.Info("fetch complete",
		zap.String("source", src.Name()),
		zap.Int("records", len(records)),
		zap.String("output", out.Path))
	fmt.Fprintf(w, "Wrote %d records to %s\n", len(records), out.Path)
	return len(records), nil
}

// newRecord returns a record with placeholder derived fields.
func newRecord(uri, title, date, abstract string) types.Record {
	return types.Record{
		DocumentURI: uri,
		Title:       title,
		PubDate:     date,
		Abstract:    abstract,
		Problem:     types.Placeholder,
		Solution:    types.Placeholder,
	}
}
