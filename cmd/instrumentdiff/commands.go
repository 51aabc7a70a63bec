package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/JonMunkholm/instrumentdiff/internal/application"
	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/spf13/cobra"
)

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Flatten every instrument under the data root and write the CSV table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := a.sources()
			if err != nil {
				return err
			}

			res, err := a.builder().Build(cmd.Context(), srcs)
			if err != nil {
				return err
			}
			if err := core.SaveCSV(a.cfg.Build.TablePath, res.Table); err != nil {
				return err
			}
			return a.renderer().BuildSummary(cmd.OutOrStdout(), res, a.cfg.Build.TablePath)
		},
	}
}

func (a *app) previewCmd() *cobra.Command {
	var sources, fields int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the first flattened fields of a few instruments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("sources") {
				sources = a.cfg.Compare.PreviewSources
			}
			if !cmd.Flags().Changed("fields") {
				fields = a.cfg.Compare.PreviewFields
			}

			srcs, err := a.sources()
			if err != nil {
				return err
			}
			entries, err := a.builder().Preview(cmd.Context(), srcs, sources, fields)
			if err != nil {
				return err
			}
			return a.renderer().Preview(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&sources, "sources", 0, "number of instruments to sample (env PREVIEW_SOURCES)")
	cmd.Flags().IntVar(&fields, "fields", 0, "number of fields per instrument (env PREVIEW_FIELDS)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the instruments in the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.comparator()
			if err != nil {
				return err
			}
			return a.renderer().Instruments(cmd.OutOrStdout(), c.Instruments())
		},
	}
}

func (a *app) compareCmd() *cobra.Command {
	var byIndex, asJSON bool
	var sameLimit int

	cmd := &cobra.Command{
		Use:   "compare FIRST SECOND",
		Short: "Compare two instruments field by field",
		Long: "Compare two instruments by name, or by zero-based row index with --index.\n" +
			"Fields missing or null on both sides are reported as same values.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.comparator()
			if err != nil {
				return err
			}

			var result *core.Comparison
			if byIndex {
				i, j, err := parseIndexes(args[0], args[1])
				if err != nil {
					return err
				}
				result, err = c.CompareByIndex(i, j)
				if err != nil {
					return err
				}
			} else {
				result, err = c.CompareByInstrument(args[0], args[1])
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			r := a.renderer()
			if cmd.Flags().Changed("same-limit") {
				r.SameLimit = sameLimit
			}
			return r.Comparison(out, result)
		},
	}
	cmd.Flags().BoolVar(&byIndex, "index", false, "treat FIRST and SECOND as row indexes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the comparison as JSON")
	cmd.Flags().IntVar(&sameLimit, "same-limit", 0, "same values to list; negative lists all (env REPORT_SAME_LIMIT)")
	return cmd
}

func parseIndexes(first, second string) (int, int, error) {
	i, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid parameter %q: row index must be a number", first)
	}
	j, err := strconv.Atoi(second)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid parameter %q: row index must be a number", second)
	}
	return i, j, nil
}

func (a *app) interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"tui"},
		Short:   "Browse and compare instruments from a menu",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.comparator()
			if err != nil {
				return err
			}
			return application.Run(c, a.renderer(), os.Stdin, cmd.OutOrStdout())
		},
	}
}
