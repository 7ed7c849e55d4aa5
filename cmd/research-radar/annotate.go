// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/annotate"
	"github.com/pdiddy/research-radar/internal/ledger"
	"github.com/pdiddy/research-radar/internal/table"
	"github.com/pdiddy/research-radar/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [input [output]]",
	Short: "Derive a problem/solution pair for each paper from its abstract",
	Long: `Annotate reads a table and, for every row whose Document contains the
source filter (arxiv.org by default), asks the text-generation model for the
problem and solution the abstract describes. Other rows pass through
unchanged. Rows already annotated are skipped unless --force is given.

A failed call marks the row's Problem and Solution as "Error" and the run
continues. Calls are throttled by a token bucket (one call every 5s by
default). The whole table is written once at the end.

With --ledger every outcome is recorded in a SQLite ledger; --resume reuses
successful outcomes from earlier runs instead of calling the model again.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAnnotate,
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ac := cfg.Annotate
	if len(args) > 0 {
		ac.Input.Path = args[0]
	}
	if len(args) > 1 {
		ac.Output.Path = args[1]
	}

	in, err := table.FileFor(ac.Input)
	if err != nil {
		return err
	}
	out, err := table.FileFor(ac.Output)
	if err != nil {
		return err
	}
	if ac.Generator.Token == "" {
		logger.Warn("no generator token configured; requests will be sent unauthenticated")
	}

	client := &http.Client{Timeout: ac.Generator.Timeout}
	gen := annotate.NewHuggingFaceBackend(ac.Generator, client)

	a, err := annotate.New(ac, gen, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var run *ledger.Run
	if cfg.Ledger.Enabled {
		store, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err = store.StartRun(ctx, in.Path, out.Path)
		if err != nil {
			return err
		}
		a.Checkpoint = run
		logger.Info("ledger run started", zap.String("run", run.ID), zap.String("ledger", store.Path()))
	}

	summary, runErr := a.Run(ctx, in, out)
	if run != nil {
		// Close the run row even after cancellation.
		if err := run.Finish(context.WithoutCancel(ctx), summary); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return runErr
	}

	printAnnotationSummary(cmd, summary, out.Path)
	if summary.HasFailures() {
		logger.Warn("some rows were marked Error", zap.Int("failed", summary.Failed))
	}
	return nil
}

func printAnnotationSummary(cmd *cobra.Command, s types.AnnotationSummary, path string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nWrote %s\n", path)
	fmt.Fprintf(w, "  annotated: %d\n", s.Annotated)
	fmt.Fprintf(w, "  reused:    %d\n", s.Reused)
	fmt.Fprintf(w, "  skipped:   %d\n", s.Skipped)
	fmt.Fprintf(w, "  passed:    %d\n", s.Passed)
	fmt.Fprintf(w, "  failed:    %d\n", s.Failed)
}

func init() {
	f := annotateCmd.Flags()
	f.String("input", "", "input table path")
	f.String("input-delimiter", ",", "input delimiter")
	f.String("input-encoding", "latin-1", "input encoding")
	f.StringP("output", "o", "", "output table path")
	f.String("delimiter", ",", "output delimiter")
	f.String("encoding", "utf-8", "output encoding")
	f.String("source-filter", annotate.DefaultSourceFilter, "annotate rows whose Document contains this text")
	f.String("topic", annotate.DefaultTopic, "research area named in the prompt")
	f.String("parser", "markers", "response parser: markers or json")
	f.String("generator-url", "", "text-generation endpoint")
	f.Duration("interval", 5*time.Second, "minimum time between generator calls (0 disables throttling)")
	f.Int("burst", 1, "calls allowed back to back before throttling")
	f.Bool("force", false, "re-annotate rows that already hold an annotation")
	f.Bool("ledger", false, "record outcomes in the annotation ledger")
	f.Bool("resume", false, "reuse successful outcomes from the ledger")

	bindFlags(f, map[string]string{
		"annotate.input.path":          "input",
		"annotate.input.delimiter":     "input-delimiter",
		"annotate.input.encoding":      "input-encoding",
		"annotate.output.path":         "output",
		"annotate.output.delimiter":    "delimiter",
		"annotate.output.encoding":     "encoding",
		"annotate.source_filter":       "source-filter",
		"annotate.topic":               "topic",
		"annotate.parser":              "parser",
		"annotate.generator.url":       "generator-url",
		"annotate.rate_limit.interval": "interval",
		"annotate.rate_limit.burst":    "burst",
		"annotate.force":               "force",
		"annotate.resume":              "resume",
		"ledger.enabled":               "ledger",
	})

	rootCmd.AddCommand(annotateCmd)
}
