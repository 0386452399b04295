package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

func newAchievementsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "achievements",
		Aliases: []string{"badges"},
		Short:   "Badges earned through analyses and missions",
	}

	var unlockedOnly, lockedOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Show your badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := viewstate.NewAchievementsState(a.achievements)
			if err := state.Refresh(cmd.Context()); err != nil {
				return err
			}
			panel := state.Snapshot().Data
			unlocked, locked := panel.Unlocked, panel.Locked
			switch {
			case unlockedOnly:
				locked = nil
			case lockedOnly:
				unlocked = nil
			}
			return a.render(panel, func() string { return view.AchievementPanel(panel.Stats, unlocked, locked) })
		},
	}
	list.Flags().BoolVar(&unlockedOnly, "unlocked", false, "only unlocked badges")
	list.Flags().BoolVar(&lockedOnly, "locked", false, "only locked badges")
	list.MarkFlagsMutuallyExclusive("unlocked", "locked")

	check := &cobra.Command{
		Use:   "check",
		Short: "Ask the backend to award any badges you qualify for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := viewstate.NewAchievementsState(a.achievements)
			unlocked := state.CheckAndUnlock(cmd.Context())
			snapshot := state.Snapshot()
			if snapshot.Err != nil && len(unlocked) == 0 {
				return snapshot.Err
			}
			return a.render(unlocked, func() string { return unlockedList(unlocked) })
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Badge completion totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.achievements.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(stats, func() string { return view.AchievementPanel(stats, nil, nil) })
		},
	}

	progress := &cobra.Command{
		Use:   "progress <type>",
		Short: "Progress towards one badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			achievement, err := a.achievements.Progress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(achievement, func() string { return view.AchievementCard(achievement) })
		},
	}

	cmd.AddCommand(list, check, stats, progress)
	return cmd
}

func unlockedList(unlocked []models.Achievement) string {
	if len(unlocked) == 0 {
		return "No new badges this time."
	}
	lines := []string{view.SuccessBanner(fmt.Sprintf("%d new badge(s) unlocked!", len(unlocked)))}
	for _, achievement := range unlocked {
		lines = append(lines, view.AchievementCard(achievement))
	}
	return strings.Join(lines, "\n")
}
