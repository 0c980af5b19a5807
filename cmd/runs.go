/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/docsmith/internal/markdown"
	"github.com/valpere/docsmith/internal/store"
)

var runsDBPath string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect journaled pipeline runs",
	Long:  `List past pipeline runs, show their agent calls, and render run reports.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all journaled runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No journaled runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSTATUS\tSTARTED\tDURATION\tDIR")
		for _, r := range runs {
			duration := "-"
			if r.FinishedAt != nil {
				duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Kind, r.Status,
				r.StartedAt.Format("2006-01-02 15:04"), duration, r.Dir)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its agent calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ctx := context.Background()
		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		stats, err := db.Stats(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to get run stats: %w", err)
		}

		fmt.Printf("Run:      %s\n", run.ID)
		fmt.Printf("Kind:     %s\n", run.Kind)
		fmt.Printf("Status:   %s\n", run.Status)
		fmt.Printf("Dir:      %s\n", run.Dir)
		fmt.Printf("Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		if run.FinishedAt != nil {
			fmt.Printf("Finished: %s (%s)\n",
				run.FinishedAt.Format("2006-01-02 15:04:05"),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
		}
		fmt.Printf("Calls:    %d (%d failed), agent time %s\n",
			stats.Calls, stats.FailedCalls, stats.TotalElapsed.Round(time.Second))
		if stats.Verdicts > 0 {
			fmt.Printf("Verdicts: %d, average score %.1f\n", stats.Verdicts, stats.AvgScore)
		}

		calls, err := db.ListCalls(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to list calls: %w", err)
		}
		if len(calls) == 0 {
			return nil
		}

		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tSTEP\tMODEL\tELAPSED\tFAILED\tPROMPT")
		for _, c := range calls {
			snippet := strings.Join(strings.Fields(c.Prompt), " ")
			if len(snippet) > 60 {
				snippet = snippet[:57] + "..."
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\t%s\n",
				c.Seq, c.Step, c.Model, c.Elapsed.Round(time.Millisecond), c.Failed, snippet)
		}
		return w.Flush()
	},
}

var (
	runsReportHTML   bool
	runsReportOutput string
)

var runsReportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Render a run report (markdown, or HTML with --html)",
	Long: `Render a full report of one run: stats, candidate scores, review verdicts,
and alignment round summaries.

The report is written as markdown to stdout by default. Use --html for a
standalone HTML page and -o to write to a file instead.

Example:
  docsmith runs report 1b5e... --html -o report.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		md, err := buildRunReport(context.Background(), db, args[0])
		if err != nil {
			return err
		}

		out := md
		if runsReportHTML {
			out = markdown.RenderPage("Run report "+args[0], []byte(md))
		}

		if runsReportOutput == "" {
			fmt.Print(out)
			return nil
		}
		if err := os.WriteFile(runsReportOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", runsReportOutput)
		return nil
	},
}

// buildRunReport assembles the markdown report for one run from the journal.
func buildRunReport(ctx context.Context, db *store.Store, runID string) (string, error) {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	stats, err := db.Stats(ctx, run.ID)
	if err != nil {
		return "", fmt.Errorf("failed to get run stats: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Pipeline run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- Kind: %s\n", run.Kind)
	fmt.Fprintf(&b, "- Status: %s\n", run.Status)
	fmt.Fprintf(&b, "- Directory: %s\n", run.Dir)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(&b, "- Finished: %s (%s)\n",
			run.FinishedAt.Format(time.RFC3339),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(&b, "- Agent calls: %d (%d failed), total agent time %s\n",
		stats.Calls, stats.FailedCalls, stats.TotalElapsed.Round(time.Second))
	if stats.Verdicts > 0 {
		fmt.Fprintf(&b, "- Verdicts: %d, average score %.1f\n", stats.Verdicts, stats.AvgScore)
	}

	candidates, err := db.ListCandidates(ctx, run.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list candidates: %w", err)
	}
	if len(candidates) > 0 {
		b.WriteString("\n## Candidate scores\n\n")
		b.WriteString("| Document | Candidate | Total score | Issues | Selected |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range candidates {
			selected := ""
			if c.Selected {
				selected = "yes"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n",
				c.Doc, c.Candidate, c.TotalScore, c.IssueCount, selected)
		}
	}

	verdicts, err := db.ListVerdicts(ctx, run.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list verdicts: %w", err)
	}
	if len(verdicts) > 0 {
		b.WriteString("\n## Review verdicts\n\n")
		b.WriteString("| Call | Document | Reviewer | Satisfied | Score | Issues |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, v := range verdicts {
			fmt.Fprintf(&b, "| %d | %s | %s | %v | %d | %d |\n",
				v.CallSeq, v.Doc, v.Reviewer, v.Satisfied, v.Score, v.IssueCount)
		}
	}

	summaries, err := db.ListRoundSummaries(ctx, run.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list round summaries: %w", err)
	}
	if len(summaries) > 0 {
		drift, err := db.SummaryDrift(ctx, run.ID)
		if err != nil {
			return "", fmt.Errorf("failed to compute summary drift: %w", err)
		}
		b.WriteString("\n## Alignment rounds\n")
		for i, s := range summaries {
			fmt.Fprintf(&b, "\n### Round %d (%s)", s.Round, s.Model)
			if i > 0 && i-1 < len(drift) {
				fmt.Fprintf(&b, ", drift %.2f from previous round", drift[i-1])
			}
			b.WriteString("\n\n")
			summary := strings.TrimSpace(s.Summary)
			if summary == "" {
				summary = "(no summary extracted)"
			}
			b.WriteString(summary)
			b.WriteString("\n")
		}
	}

	calls, err := db.ListCalls(ctx, run.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list calls: %w", err)
	}
	if len(calls) > 0 {
		b.WriteString("\n## Agent calls\n\n")
		b.WriteString("| Seq | Step | Model | Elapsed | Failed |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range calls {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %v |\n",
				c.Seq, c.Step, c.Model, c.Elapsed.Round(time.Millisecond), c.Failed)
		}
	}

	return b.String(), nil
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "./data/docsmith.db", "Database path")

	runsReportCmd.Flags().BoolVar(&runsReportHTML, "html", false, "Render the report as a standalone HTML page")
	runsReportCmd.Flags().StringVarP(&runsReportOutput, "output", "o", "", "Write the report to this file instead of stdout")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsReportCmd)
}
