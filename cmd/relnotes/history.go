package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yourorg/relnotes/internal/db"
)

func historyCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history [runID]",
		Short: "List recorded release notes generations, newest first",
		Long: `List recorded release notes generations, newest first. With a run ID,
show that generation and the files it wrote.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("unknown format %q, want text or yaml", format)
			}

			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				run, err := a.store.GetRun(cmd.Context(), args[0])
				if errors.Is(err, db.ErrRunNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				if err != nil {
					return fmt.Errorf("get run: %w", err)
				}
				if format == "yaml" {
					return writeRunsYAML(cmd.OutOrStdout(), run)
				}
				return writeRunText(cmd.OutOrStdout(), run)
			}

			runs, err := a.store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			if format == "yaml" {
				return writeRunsYAML(cmd.OutOrStdout(), runs)
			}
			return writeRunsText(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, yaml)")

	return cmd
}

func writeRunsText(w io.Writer, runs []db.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No release notes have been generated yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tREPOSITORY\tEND\tSTART\tFEATURES\tFIXES\tDOCS\tOTHER\tID")
	for _, r := range runs {
		start := r.StartTag
		if start == "" {
			start = "-"
		}
		fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Owner, r.Repo, r.EndTag, start,
			r.Features, r.BugFixes, r.Documentation, r.Other, r.ID)
	}
	return tw.Flush()
}

func writeRunText(w io.Writer, r *db.Run) error {
	start := r.StartTag
	if start == "" {
		start = "-"
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Created:\t%s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Repository:\t%s/%s\n", r.Owner, r.Repo)
	fmt.Fprintf(tw, "Tags:\t%s..%s\n", start, r.EndTag)
	fmt.Fprintf(tw, "Pull requests:\t%d features, %d fixes, %d docs, %d other\n",
		r.Features, r.BugFixes, r.Documentation, r.Other)
	fmt.Fprintf(tw, "Markdown:\t%s\n", r.MarkdownPath)
	fmt.Fprintf(tw, "PDF:\t%s\n", r.PDFPath)
	fmt.Fprintf(tw, "Email:\t%s\n", r.EmailPath)
	return tw.Flush()
}

// writeRunsYAML encodes a single run or a list of runs
func writeRunsYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode runs: %w", err)
	}
	return enc.Close()
}
