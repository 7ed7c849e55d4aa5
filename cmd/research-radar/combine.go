// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-radar/internal/combine"
	"github.com/pdiddy/research-radar/internal/table"
)

var combineCmd = &cobra.Command{
	Use:   "combine [first second]",
	Short: "Concatenate two tables with the same columns",
	Long: `Combine writes every row of the first table followed by every row of the
second. Both tables must carry the same set of columns; the output keeps the
first table's column order. Duplicates are kept.

Each table has its own delimiter and encoding, so a UTF-8 paper table can be
merged with a Latin-1 patent table.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("combine takes no arguments or exactly two table paths, got %d", len(args))
		}
		return nil
	},
	RunE: runCombine,
}

func runCombine(cmd *cobra.Command, args []string) error {
	cc := cfg.Combine
	if len(args) == 2 {
		cc.First.Path, cc.Second.Path = args[0], args[1]
	}

	first, err := table.FileFor(cc.First)
	if err != nil {
		return err
	}
	second, err := table.FileFor(cc.Second)
	if err != nil {
		return err
	}
	out, err := table.FileFor(cc.Output)
	if err != nil {
		return err
	}

	_, err = combine.CombineFiles(first, second, out, logger, cmd.OutOrStdout())
	return err
}

func init() {
	f := combineCmd.Flags()
	f.String("first", "", "first table path")
	f.String("first-delimiter", ",", "first table delimiter")
	f.String("first-encoding", "utf-8", "first table encoding")
	f.String("second", "", "second table path")
	f.String("second-delimiter", ",", "second table delimiter")
	f.String("second-encoding", "utf-8", "second table encoding")
	f.StringP("output", "o", "", "output table path")
	f.String("delimiter", ",", "output delimiter")
	f.String("encoding", "utf-8", "output encoding")

	bindFlags(f, map[string]string{
		"combine.first.path":       "first",
		"combine.first.delimiter":  "first-delimiter",
		"combine.first.encoding":   "first-encoding",
		"combine.second.path":      "second",
		"combine.second.delimiter": "second-delimiter",
		"combine.second.encoding":  "second-encoding",
		"combine.output.path":      "output",
		"combine.output.delimiter": "delimiter",
		"combine.output.encoding":  "encoding",
	})

	rootCmd.AddCommand(combineCmd)
}
