package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

func newRankingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rankings",
		Aliases: []string{"leaderboard"},
		Short:   "Leaderboards by average quality score",
	}

	var limit int
	global := &cobra.Command{
		Use:   "global",
		Short: "Global leaderboard with platform figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showBoard(cmd, dto.RankingFilter{Scope: dto.RankingScopeGlobal, Limit: limit})
		},
	}
	global.Flags().IntVar(&limit, "limit", 50, "rows to show")

	university := &cobra.Command{
		Use:   "university <name>",
		Short: "Leaderboard of one university",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showBoard(cmd, dto.RankingFilter{Scope: dto.RankingScopeUniversity, Value: args[0]})
		},
	}

	career := &cobra.Command{
		Use:   "career <name>",
		Short: "Leaderboard of one career",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showBoard(cmd, dto.RankingFilter{Scope: dto.RankingScopeCareer, Value: args[0]})
		},
	}

	me := &cobra.Command{
		Use:   "me",
		Short: "Your position on the global leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := viewstate.NewRankingsState(a.rankings)
			if err := state.RefreshPosition(cmd.Context()); err != nil {
				return err
			}
			position := state.Position().Data
			return a.render(position, func() string { return view.Position(*position) })
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Platform-wide leaderboard figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.rankings.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(stats, func() string { return view.GlobalStats(stats) })
		},
	}

	cmd.AddCommand(global, university, career, me, stats)
	return cmd
}

func (a *app) showBoard(cmd *cobra.Command, filter dto.RankingFilter) error {
	state := viewstate.NewRankingsState(a.rankings)
	if err := state.SetFilter(cmd.Context(), filter); err != nil {
		return err
	}
	board := state.Board().Data
	return a.render(board, func() string {
		text := view.RankingTable(board.Rankings)
		if board.GlobalStats != nil {
			text = view.GlobalStats(*board.GlobalStats) + "\n\n" + text
		}
		return text
	})
}
