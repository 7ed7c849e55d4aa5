// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package combine concatenates two row-compatible Record tables.
package combine

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/table"
	"github.com/pdiddy/research-radar/pkg/types"
)

// ErrIncompatibleColumns is returned when the two tables do not carry the
// same set of columns.
var ErrIncompatibleColumns = errors.New("tables have incompatible columns")

// ColumnMismatchError names the columns each table lacks.
type ColumnMismatchError struct {
	MissingFromFirst  []string
	MissingFromSecond []string
}

func (e *ColumnMismatchError) Error() string {
	var parts []string
	if len(e.MissingFromFirst) > 0 {
		parts = append(parts, "first table lacks "+strings.Join(e.MissingFromFirst, ", "))
	}
	if len(e.MissingFromSecond) > 0 {
		parts = append(parts, "second table lacks "+strings.Join(e.MissingFromSecond, ", "))
	}
	return fmt.Sprintf("%v: %s", ErrIncompatibleColumns, strings.Join(parts, "; "))
}

func (e *ColumnMismatchError) Unwrap() error { return ErrIncompatibleColumns }

// Combine returns every record of a followed by every record of b. Both
// tables must carry the same columns; the result uses a's column order.
// Duplicates are kept.
func Combine(a, b *table.Table) (*table.Table, error) {
	if err := checkColumns(a.Columns, b.Columns); err != nil {
		return nil, err
	}

	out := table.New(a.Columns...)
	out.Records = make([]types.Record, 0, a.Len()+b.Len())
	out.Records = append(out.Records, a.Records...)
	out.Records = append(out.Records, b.Records...)
	return out, nil
}

func checkColumns(a, b []string) error {
	var e ColumnMismatchError
	for _, c := range b {
		if !slices.Contains(a, c) {
			e.MissingFromFirst = append(e.MissingFromFirst, c)
		}
	}
	for _, c := range a {
		if !slices.Contains(b, c) {
			e.MissingFromSecond = append(e.MissingFromSecond, c)
		}
	}
	if len(e.MissingFromFirst) > 0 || len(e.MissingFromSecond) > 0 {
		return &e
	}
	return nil
}

// CombineFiles reads first and second, combines them, and writes the result
// to out, overwriting it. It returns the number of records written.
func CombineFiles(first, second, out table.File, log *zap.Logger, w io.Writer) (int, error) {
	a, err := table.Read(first.Path, first.Format, log)
	if err != nil {
		return 0, err
	}
	b, err := table.Read(second.Path, second.Format, log)
	if err != nil {
		return 0, err
	}

	combined, err := Combine(a, b)
	if err != nil {
		return 0, fmt.Errorf("combining %s and %s: %w", first.Path, second.Path, err)
	}
	if err := table.Write(out.Path, out.Format, combined); err != nil {
		return 0, err
	}

	log.Info("combine complete",
		zap.Int("first", a.Len()),
		zap.Int("second", b.Len()),
		zap.String("output", out.Path))
	fmt.Fprintf(w, "Combined %d + %d records into %s\n", a.Len(), b.Len(), out.Path)
	return combined.Len(), nil
}
