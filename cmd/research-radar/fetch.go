// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-radar/internal/fetch"
	"github.com/pdiddy/research-radar/internal/table"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one page of paper or patent metadata into a table",
	Long: `Fetch issues a single query to arXiv (or PatentsView with --source
patentsview) and writes one row per entry with Document, Title, Pub_Date,
Abstract, and placeholder Problem/Solution columns.

Entries missing required fields are skipped with a warning. A failed
request writes no output file.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	out, err := table.FileFor(cfg.Fetch.Output)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Fetch.Timeout}
	src, err := fetch.NewSource(cfg.Fetch, client, logger)
	if err != nil {
		return err
	}

	_, err = fetch.Run(cmd.Context(), src, out, logger, cmd.OutOrStdout())
	return err
}

func init() {
	f := fetchCmd.Flags()
	f.String("source", "arxiv", "index to query: arxiv or patentsview")
	f.String("query", "", "query passed to the index unchanged")
	f.Int("start", 0, "pagination offset")
	f.Int("max-results", 10, "page size")
	f.String("sort-by", "submittedDate", "arXiv sort field")
	f.String("sort-order", "descending", "ascending or descending")
	f.String("base-url", "", "override the index endpoint")
	f.Int("max-retries", 0, "retries on HTTP 429 (0 uses the default, negative disables)")
	f.StringP("output", "o", "", "output table path")
	f.String("delimiter", ",", "output field delimiter")
	f.String("encoding", "utf-8", "output encoding: utf-8 or latin-1")

	bindFlags(f, map[string]string{
		"fetch.source":           "source",
		"fetch.query":            "query",
		"fetch.start":            "start",
		"fetch.max_results":      "max-results",
		"fetch.sort_by":          "sort-by",
		"fetch.sort_order":       "sort-order",
		"fetch.base_url":         "base-url",
		"fetch.max_retries":      "max-retries",
		"fetch.output.path":      "output",
		"fetch.output.delimiter": "delimiter",
		"fetch.output.encoding":  "encoding",
	})

	rootCmd.AddCommand(fetchCmd)
}
