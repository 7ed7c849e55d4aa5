// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads and writes flat, delimited Record tables. Every call
// takes an explicit Format; nothing is inferred from file contents.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/pkg/types"
)

// ErrNoHeader is returned when a table file has no header row.
var ErrNoHeader = errors.New("table has no header row")

// Table is an ordered set of records with named columns. Columns preserves
// the header order of the file the table was read from.
type Table struct {
	Columns []string
	Records []types.Record
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends the column if it is missing and sets it to value on
// every record. It reports whether the column was added. Existing columns
// are left untouched.
func (t *Table) EnsureColumn(name, value string) bool {
	if t.HasColumn(name) {
		return false
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Records {
		t.Records[i].Set(name, value)
	}
	return true
}

// Read opens path and decodes it with Decode.
func Read(path string, f Format, log *zap.Logger) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer file.Close()

	t, err := Decode(file, f, log.With(zap.String("file", path)))
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return t, nil
}

// Decode parses a delimited table. The first row is the header. Rows whose
// field count differs from the header, or that the CSV reader cannot parse,
// are skipped with a warning rather than failing the whole read.
func Decode(r io.Reader, f Format, log *zap.Logger) (*Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(f.decoder(r))
	cr.Comma = f.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Columns: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				log.Warn("skipping unparseable row", zap.Int("line", pe.Line), zap.Error(pe.Err))
				continue
			}
			return nil, err
		}
		if len(row) != len(header) {
			line, _ := cr.FieldPos(0)
			log.Warn("skipping malformed row",
				zap.Int("line", line),
				zap.Int("fields", len(row)),
				zap.Int("want", len(header)))
			continue
		}

		var rec types.Record
		for i, col := range header {
			rec.Set(col, row[i])
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Write encodes t to a temporary file next to path and renames it into
// place, so a failed write never leaves a truncated table behind.
func Write(path string, f Format, t *Table) error {
	if err := f.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".table-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encErr := Encode(tmpFile, f, t)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing table %s: %w", path, encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Encode writes the header and all records of t to w.
func Encode(w io.Writer, f Format, t *Table) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return ErrNoHeader
	}

	ew := f.encoder(w)
	cw := csv.NewWriter(ew)
	cw.Comma = f.Delimiter

	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	row := make([]string, len(t.Columns))
	for i := range t.Records {
		for j, col := range t.Columns {
			row[j] = t.Records[i].Get(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return ew.Close()
}
