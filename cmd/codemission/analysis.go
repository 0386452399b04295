package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

func newAnalysisCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analysis",
		Aliases: []string{"analyses"},
		Short:   "Browse and manage analyses",
	}
	cmd.AddCommand(
		newAnalysisGetCommand(a),
		newAnalysisListCommand(a),
		newAnalysisSummaryCommand(a),
		newAnalysisSearchCommand(a),
		newAnalysisReanalyzeCommand(a),
		newAnalysisRerunCommand(a),
		newAnalysisDeleteCommand(a),
		newAnalysisExportCommand(a),
		newAnalysisStatsCommand(a),
	)
	return cmd
}

func newAnalysisGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one analysis with its tool results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			state := viewstate.NewAnalysisState(a.analyses)
			if err := state.FetchByID(cmd.Context(), id); err != nil {
				return err
			}
			current := state.Current()
			return a.render(current, func() string { return view.AnalysisDetail(*current, a.now()) })
		},
	}
}

func newAnalysisListCommand(a *app) *cobra.Command {
	var (
		student string
		mine    bool
		demo    bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := viewstate.NewAnalysisState(a.analyses)
			var err error
			switch {
			case mine:
				err = state.FetchMine(cmd.Context(), limit)
			case demo:
				err = state.FetchDemo(cmd.Context())
			case student != "":
				err = state.FetchByStudent(cmd.Context(), student)
			default:
				err = state.FetchAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			analyses := state.Analyses()
			return a.render(analyses, func() string { return view.AnalysisList(analyses, a.now()) })
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&student, "student", "", "only analyses submitted under this student name")
	flags.BoolVar(&mine, "mine", false, "only your analyses (needs a session)")
	flags.BoolVar(&demo, "demo", false, "sample analyses")
	flags.IntVar(&limit, "limit", 10, "maximum analyses with --mine")
	cmd.MarkFlagsMutuallyExclusive("student", "mine", "demo")
	return cmd
}

func newAnalysisSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [student]",
		Short: "Aggregate scores for a student, or for you without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := viewstate.NewSummaryState(a.analyses)
			var err error
			if len(args) == 1 {
				err = state.Fetch(cmd.Context(), args[0])
			} else {
				err = state.FetchMine(cmd.Context())
			}
			if err != nil {
				return err
			}
			summary := state.Snapshot().Data
			return a.render(summary, func() string {
				return view.StudentSummary(*summary) + "\n" + view.AnalysisList(summary.RecentAnalyses, a.now())
			})
		},
	}
}

func newAnalysisSearchCommand(a *app) *cobra.Command {
	var params dto.AnalysisSearchParams
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search analyses by student, status and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyses, err := a.analyses.Search(cmd.Context(), params)
			if err != nil {
				return err
			}
			return a.render(analyses, func() string { return view.AnalysisList(analyses, a.now()) })
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&params.Student, "student", "", "student name")
	flags.StringVar(&params.Status, "status", "", "pending, processing, completed or failed")
	flags.StringVar(&params.DateFrom, "from", "", "earliest creation date (YYYY-MM-DD)")
	flags.StringVar(&params.DateTo, "to", "", "latest creation date (YYYY-MM-DD)")
	flags.IntVar(&params.Limit, "limit", 0, "maximum results")
	flags.IntVar(&params.Offset, "offset", 0, "results to skip")
	return cmd
}

func newAnalysisReanalyzeCommand(a *app) *cobra.Command {
	var filePath, repositoryURL string
	cmd := &cobra.Command{
		Use:   "reanalyze <id>",
		Short: "Resubmit corrected code for an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if repositoryURL != "" {
				outcome, err := a.analyses.ReanalyzeRepository(cmd.Context(), id, repositoryURL)
				if err != nil {
					return err
				}
				return a.render(outcome, func() string { return view.Reanalysis(outcome) })
			}

			file, err := api.OpenFile(filePath)
			if err != nil {
				return err
			}
			outcome, err := a.analyses.Reanalyze(cmd.Context(), id, file, a.progressPrinter(file.Name))
			if err != nil {
				return err
			}
			return a.render(outcome, func() string { return view.Reanalysis(outcome) })
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "corrected project archive")
	cmd.Flags().StringVar(&repositoryURL, "repo", "", "repository url to clone again")
	cmd.MarkFlagsMutuallyExclusive("file", "repo")
	cmd.MarkFlagsOneRequired("file", "repo")
	return cmd
}

func newAnalysisRerunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rerun <id>",
		Short: "Run the analysis again on the stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := a.analyses.Rerun(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(result, func() string { return view.AnalysisDetail(result, a.now()) })
		},
	}
}

func newAnalysisDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := viewstate.NewAnalysisState(a.analyses).Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.success(fmt.Sprintf("Analysis %d deleted.", id))
			return nil
		},
	}
}

func newAnalysisExportCommand(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export an analysis as json, csv or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			exported, err := a.analyses.Export(cmd.Context(), id, dto.ExportFormat(format))
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(a.out, exported)
				return err
			}
			if err := os.WriteFile(output, []byte(exported), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.success(fmt.Sprintf("Export written to %s.", output))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(dto.ExportJSON), "json, csv or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newAnalysisStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Platform-wide analysis totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.analyses.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(stats, func() string {
				return fmt.Sprintf("Analyses %d · completed %d · failed %d · average score %.1f",
					stats.TotalAnalyses, stats.CompletedAnalyses, stats.FailedAnalyses, stats.AverageScore)
			})
		},
	}
}

// progressPrinter reports upload progress on stderr in steps of ten percent.
func (a *app) progressPrinter(name string) api.ProgressFunc {
	last := -1
	return func(percent int) {
		if a.json {
			return
		}
		if step := percent / 10; step > last {
			last = step
			fmt.Fprintf(a.errOut, "Uploading %s... %d%%\n", view.Clean(name), percent)
		}
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, api.NewValidationError(fmt.Sprintf("%q is not a valid id", raw))
	}
	return uint(id), nil
}
