package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Your analyses, ranking and badges at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth := viewstate.NewAuthState(a.auth)
			if err := auth.Restore(cmd.Context()); err != nil {
				return err
			}
			user := auth.User()
			if user == nil {
				return errNotSignedIn
			}

			state := viewstate.NewDashboardState(a.dashboard)
			if err := state.Refresh(cmd.Context()); err != nil {
				return err
			}
			dashboard := state.Snapshot().Data
			return a.render(dashboard, func() string { return view.Dashboard(user, dashboard, a.now()) })
		},
	}
}

func newOverviewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Public landing page: service health, totals and sample analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overview := a.dashboard.Overview(cmd.Context())
			return a.render(overview, func() string { return view.Overview(overview, a.now()) })
		},
	}
}

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := viewstate.NewHealthState(a.analyses)
			if !state.Check(cmd.Context()) {
				return fmt.Errorf("backend is unreachable: %s", state.Snapshot().ErrorMessage())
			}
			return a.render(map[string]bool{"healthy": true}, func() string { return view.SuccessBanner("Backend is up.") })
		},
	}
}
