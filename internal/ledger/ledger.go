// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records per-document annotation outcomes in SQLite so that
// an interrupted annotate run can resume without repeating generator calls.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-radar/pkg/types"
)

// DefaultPath is used when no ledger path is configured.
const DefaultPath = "data/ledger.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			input TEXT,
			output TEXT,
			annotated INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			reused INTEGER NOT NULL DEFAULT 0,
			passed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			document TEXT NOT NULL,
			problem TEXT,
			solution TEXT,
			status TEXT NOT NULL,
			error TEXT,
			annotated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_annotations_document ON annotations(document, status)`,
		`CREATE INDEX IF NOT EXISTS idx_annotations_run_id ON annotations(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunInfo describes one annotate invocation.
type RunInfo struct {
	ID         string     `json:"id" yaml:"id"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Input      string     `json:"input" yaml:"input"`
	Output     string     `json:"output" yaml:"output"`

	types.AnnotationSummary `yaml:",inline"`
}

// Run is an open annotate invocation. It satisfies annotate.Checkpoint.
type Run struct {
	ID    string
	store *Store
}

// StartRun registers a new run with a fresh identifier.
func (s *Store) StartRun(ctx context.Context, input, output string) (*Run, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input, output) VALUES (?, ?, ?, ?)`,
		id, formatTime(time.Now()), input, output)
	if err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}
	return &Run{ID: id, store: s}, nil
}

// Lookup returns the latest successful outcome for document from any run.
func (r *Run) Lookup(ctx context.Context, document string) (types.AnnotationOutcome, bool, error) {
	return r.store.Lookup(ctx, document)
}

// Record appends an outcome to the ledger under this run.
func (r *Run) Record(ctx context.Context, o types.AnnotationOutcome) error {
	o.RunID = r.ID
	if o.AnnotatedAt.IsZero() {
		o.AnnotatedAt = time.Now()
	}
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO annotations (run_id, document, problem, solution, status, error, annotated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Document, o.Problem, o.Solution, string(o.Status), o.Error, formatTime(o.AnnotatedAt))
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// Finish stores the run's final counts.
func (r *Run) Finish(ctx context.Context, summary types.AnnotationSummary) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, annotated = ?, failed = ?, skipped = ?, reused = ?, passed = ?
		 WHERE id = ?`,
		formatTime(time.Now()), summary.Annotated, summary.Failed, summary.Skipped,
		summary.Reused, summary.Passed, r.ID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Lookup returns the most recently recorded successful outcome for document.
func (s *Store) Lookup(ctx context.Context, document string) (types.AnnotationOutcome, bool, error) {
	rows, err := s.db.QueryContext(ctx, selectAnnotations+
		` WHERE document = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		document, string(types.OutcomeAnnotated))
	if err != nil {
		return types.AnnotationOutcome{}, false, fmt.Errorf("looking up %s: %w", document, err)
	}
	outcomes, err := scanAnnotations(rows)
	if err != nil {
		return types.AnnotationOutcome{}, false, err
	}
	if len(outcomes) == 0 {
		return types.AnnotationOutcome{}, false, nil
	}
	return outcomes[0], true, nil
}

// Runs lists runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input, output, annotated, failed, skipped, reused, passed
		 FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			ri       RunInfo
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&ri.ID, &started, &finished, &ri.Input, &ri.Output,
			&ri.Annotated, &ri.Failed, &ri.Skipped, &ri.Reused, &ri.Passed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ri.StartedAt = parseTime(started)
		if finished.Valid {
			t := parseTime(finished.String)
			ri.FinishedAt = &t
		}
		runs = append(runs, ri)
	}
	return runs, rows.Err()
}

// QueryOptions filters Annotations. Zero values match everything.
type QueryOptions struct {
	RunID    string
	Document string
	Status   types.OutcomeStatus
	Limit    int
}

// Annotations lists recorded outcomes in insertion order.
func (s *Store) Annotations(ctx context.Context, opts QueryOptions) ([]types.AnnotationOutcome, error) {
	query := selectAnnotations + ` WHERE 1=1`
	var args []any
	if opts.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, opts.RunID)
	}
	if opts.Document != "" {
		query += ` AND document = ?`
		args = append(args, opts.Document)
	}
	if opts.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	return scanAnnotations(rows)
}

const selectAnnotations = `SELECT run_id, document, problem, solution, status, error, annotated_at FROM annotations`

func scanAnnotations(rows *sql.Rows) ([]types.AnnotationOutcome, error) {
	defer rows.Close()

	var out []types.AnnotationOutcome
	for rows.Next() {
		var (
			o                         types.AnnotationOutcome
			problem, solution, errMsg sql.NullString
			status, at                string
		)
		if err := rows.Scan(&o.RunID, &o.Document, &problem, &solution, &status, &errMsg, &at); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		o.Problem = problem.String
		o.Solution = solution.String
		o.Error = errMsg.String
		o.Status = types.OutcomeStatus(status)
		o.AnnotatedAt = parseTime(at)
		out = append(out, o)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
