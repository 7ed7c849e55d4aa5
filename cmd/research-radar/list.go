// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/report"
	"github.com/pdiddy/research-radar/internal/table"
	"github.com/pdiddy/research-radar/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list [table]",
	Short: "Filter and display an annotated table",
	Long: `List reads a table (the annotate output by default) and prints the rows
that match every given filter, newest first.

Keywords are comma-separated and matched case-insensitively against Title
and Abstract; any keyword matches unless --all is set. --type selects arxiv,
patent, or other documents. --from and --to bound Pub_Date inclusively.
Rows whose Pub_Date cannot be parsed are left out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	tf := cfg.Annotate.Output
	if len(args) == 1 {
		tf.Path = args[0]
	}
	if cmd.Flags().Changed("delimiter") {
		tf.Delimiter, _ = cmd.Flags().GetString("delimiter")
	}
	if cmd.Flags().Changed("encoding") {
		tf.Encoding, _ = cmd.Flags().GetString("encoding")
	}

	filter, err := listFilter(cmd)
	if err != nil {
		return err
	}

	in, err := table.FileFor(tf)
	if err != nil {
		return err
	}
	t, err := table.Read(in.Path, in.Format, logger)
	if err != nil {
		return err
	}

	res := report.Apply(t.Records, filter)
	if res.Undated > 0 {
		logger.Info("rows without a usable date left out", zap.Int("rows", res.Undated))
	}

	w := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	stats, _ := cmd.Flags().GetBool("stats")
	switch {
	case stats:
		report.FormatStats(report.Summarize(res.Entries), w)
		return nil
	case asJSON:
		return report.FormatJSON(res.Entries, w)
	}
	report.FormatTable(res.Entries, w)
	return nil
}

func listFilter(cmd *cobra.Command) (report.Filter, error) {
	keywords, _ := cmd.Flags().GetString("keywords")
	all, _ := cmd.Flags().GetBool("all")
	kind, _ := cmd.Flags().GetString("type")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	problem, _ := cmd.Flags().GetString("problem")

	f := report.Filter{
		Keywords: report.SplitKeywords(keywords),
		MatchAll: all,
		Problem:  problem,
	}

	var err error
	if f.Kind, err = report.ParseKind(kind); err != nil {
		return f, err
	}
	if f.From, err = parseBound("from", from); err != nil {
		return f, err
	}
	if f.To, err = parseBound("to", to); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return f, nil
}

func parseBound(name, s string) (t time.Time, err error) {
	if s == "" {
		return t, nil
	}
	t, ok := types.ParseDate(s)
	if !ok {
		return t, fmt.Errorf("--%s: unrecognized date %q (use YYYY-MM-DD)", name, s)
	}
	return t, nil
}

func init() {
	f := listCmd.Flags()
	f.String("keywords", "", "comma-separated keywords matched in title and abstract")
	f.Bool("all", false, "require every keyword to match")
	f.String("type", "all", "document type: all, arxiv, patent, or other")
	f.String("from", "", "earliest publication date (inclusive)")
	f.String("to", "", "latest publication date (inclusive)")
	f.String("problem", "", "only rows whose Problem equals this text")
	f.Bool("json", false, "print matching rows as JSON")
	f.Bool("stats", false, "print counts by type, year, and annotation state")
	f.String("delimiter", ",", "table delimiter")
	f.String("encoding", "utf-8", "table encoding")

	rootCmd.AddCommand(listCmd)
}
