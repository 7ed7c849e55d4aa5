// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-radar/pkg/types"
)

// Export is the serialized form of the ledger.
type Export struct {
	Runs        []RunInfo                 `json:"runs" yaml:"runs"`
	Annotations []types.AnnotationOutcome `json:"annotations" yaml:"annotations"`
}

// ExportYAML writes runs and the filtered annotations to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts QueryOptions) error {
	exp, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes runs and the filtered annotations to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts QueryOptions) error {
	exp, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// WriteExport writes the export to w in format "yaml" or "json".
func (s *Store) WriteExport(ctx context.Context, w io.Writer, format string, opts QueryOptions) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return s.ExportYAML(ctx, w, opts)
	case "json":
		return s.ExportJSON(ctx, w, opts)
	}
	return fmt.Errorf("unknown export format %q: use yaml or json", format)
}

// ExportFile writes the export to a temporary file next to path and renames
// it into place. On failure path is left untouched.
func (s *Store) ExportFile(ctx context.Context, path, format string, opts QueryOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := s.WriteExport(ctx, tmp, format, opts)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
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

func (s *Store) export(ctx context.Context, opts QueryOptions) (Export, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return Export{}, err
	}
	if opts.RunID != "" {
		kept := runs[:0]
		for _, r := range runs {
			if r.ID == opts.RunID {
				kept = append(kept, r)
			}
		}
		runs = kept
	}

	anns, err := s.Annotations(ctx, opts)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	return Export{Runs: runs, Annotations: anns}, nil
}
