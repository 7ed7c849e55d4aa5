// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-radar/internal/ledger"
	"github.com/pdiddy/research-radar/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the annotation ledger",
	Long: `Ledger reads the SQLite database that annotate --ledger writes. Every
annotate run and every per-row outcome is kept, so earlier results can be
reviewed or exported.`,
}

// --- show subcommand ---

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List annotate runs, newest first",
	RunE:  runLedgerShow,
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		if runs == nil {
			runs = []ledger.RunInfo{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}

	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded in %s.\n", store.Path())
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-19s  %-8s  %5s  %5s  %5s  %5s  %s\n",
		"Run", "Started", "Status", "Ann", "Fail", "Skip", "Reuse", "Input")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		status := "running"
		if r.FinishedAt != nil {
			status = "done"
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-8s  %5d  %5d  %5d  %5d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), status,
			r.Annotated, r.Failed, r.Skipped, r.Reused, r.Input)
	}
	return nil
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs and annotation outcomes as YAML or JSON",
	RunE:  runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	runID, _ := cmd.Flags().GetString("run")
	document, _ := cmd.Flags().GetString("document")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	outPath, _ := cmd.Flags().GetString("output")

	opts := ledger.QueryOptions{
		RunID:    runID,
		Document: document,
		Status:   types.OutcomeStatus(status),
		Limit:    limit,
	}

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if outPath == "" {
		return store.WriteExport(cmd.Context(), cmd.OutOrStdout(), format, opts)
	}
	if err := store.ExportFile(cmd.Context(), outPath, format, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported ledger to %s\n", outPath)
	return nil
}

func init() {
	ledgerShowCmd.Flags().Bool("yaml", false, "print runs as YAML")

	ledgerExportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	ledgerExportCmd.Flags().String("run", "", "only this run")
	ledgerExportCmd.Flags().String("document", "", "only outcomes for this document URI")
	ledgerExportCmd.Flags().String("status", "", "only outcomes with this status: annotated or failed")
	ledgerExportCmd.Flags().Int("limit", 0, "maximum number of outcomes (0 for all)")
	ledgerExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	rootCmd.AddCommand(ledgerCmd)
}
