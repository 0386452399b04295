package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

func newMissionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "missions",
		Aliases: []string{"mission"},
		Short:   "Work through the missions generated from your analyses",
	}
	cmd.AddCommand(
		newMissionsListCommand(a),
		newMissionShowCommand(a),
		newMissionTransitionCommand(a, "fix", "Mark a mission as fixed"),
		newMissionTransitionCommand(a, "skip", "Skip a mission"),
		newMissionReanalyzeCommand(a),
		newMissionStatsCommand(a),
	)
	return cmd
}

func newMissionsListCommand(a *app) *cobra.Command {
	var (
		analysisID uint
		severity   string
		pending    bool
		completed  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show your mission board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				missions []models.Mission
				err      error
			)
			switch {
			case severity != "":
				missions, err = a.missions.BySeverity(ctx, models.Severity(strings.ToLower(severity)))
			case pending:
				missions, err = a.missions.Pending(ctx)
			case completed:
				missions, err = a.missions.Completed(ctx)
			default:
				state := viewstate.NewMissionsState(a.missions, analysisID)
				if err := state.Refresh(ctx); err != nil {
					return err
				}
				board := state.Snapshot().Data
				return a.render(board, func() string {
					return view.MissionBoard(board.Pending, board.Completed, board.Stats)
				})
			}
			if err != nil {
				return err
			}
			return a.render(missions, func() string { return missionList(missions) })
		},
	}
	flags := cmd.Flags()
	flags.UintVar(&analysisID, "analysis", 0, "only missions of this analysis")
	flags.StringVar(&severity, "severity", "", "only missions of this severity: low, medium or high")
	flags.BoolVar(&pending, "pending", false, "only pending missions")
	flags.BoolVar(&completed, "completed", false, "only fixed missions")
	cmd.MarkFlagsMutuallyExclusive("analysis", "severity", "pending", "completed")
	return cmd
}

func newMissionShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mission, err := a.missions.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(mission, func() string { return view.MissionCard(mission) })
		},
	}
}

// newMissionTransitionCommand builds fix and skip, which differ only in the transition applied.
func newMissionTransitionCommand(a *app, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			state := viewstate.NewMissionsState(a.missions, 0)
			transition, verb := state.Complete, "fixed"
			if use == "skip" {
				transition, verb = state.Skip, "skipped"
			}
			mission, err := transition(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.success(fmt.Sprintf("Mission %q %s.", view.Clean(mission.Title), verb))
			return a.render(mission, func() string { return view.MissionCard(mission) })
		},
	}
}

func newMissionReanalyzeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reanalyze <analysis-id> <archive>",
		Short: "Upload corrected code and see which missions it resolved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			file, err := api.OpenFile(args[1])
			if err != nil {
				return err
			}
			outcome, err := a.missions.Reanalyze(cmd.Context(), id, file, a.progressPrinter(file.Name))
			if err != nil {
				return err
			}
			return a.render(outcome, func() string { return view.Reanalysis(outcome) })
		},
	}
}

func newMissionStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Mission totals by status and severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.missions.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(stats, func() string {
				line := fmt.Sprintf("Total %d · pending %d · fixed %d · skipped %d", stats.Total, stats.Pending, stats.Fixed, stats.Skipped)
				if s := stats.BySeverity; s != nil {
					line += fmt.Sprintf("\n%s %d  %s %d  %s %d",
						view.SeverityIcon("high"), s.High, view.SeverityIcon("medium"), s.Medium, view.SeverityIcon("low"), s.Low)
				}
				return line
			})
		},
	}
}

func missionList(missions []models.Mission) string {
	if len(missions) == 0 {
		return "No missions match."
	}
	cards := make([]string, 0, len(missions))
	for _, mission := range missions {
		cards = append(cards, view.MissionCard(mission))
	}
	return strings.Join(cards, "\n")
}
