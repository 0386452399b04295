package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/config"
	"github.com/noah-isme/codemission/internal/observability"
	"github.com/noah-isme/codemission/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := execute(ctx, newRootCommand(a), a); err != nil {
		fmt.Fprintln(os.Stderr, view.ErrorBanner(userMessage(err)))
		stop()
		os.Exit(1)
	}
}

// execute runs root and releases a's stores whether or not the command failed.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	var (
		apiURL   string
		logLevel string
		asJSON   bool
	)

	root := &cobra.Command{
		Use:           "codemission",
		Short:         "Upload projects for code analysis and track missions, achievements and rankings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if apiURL != "" {
				cfg.APIBaseURL = apiURL
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := observability.NewLogger(cfg.LogLevel, os.Stderr)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}

			built, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			*a = *built
			a.json = asJSON
			return nil
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base url (overrides CODEMISSION_API_BASE_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of formatted output")

	root.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newProfileCommand(a),
		newAuthCommand(a),
		newUploadCommand(a),
		newCloneCommand(a),
		newAnalysisCommand(a),
		newMissionsCommand(a),
		newCustomMissionsCommand(a),
		newAchievementsCommand(a),
		newRankingsCommand(a),
		newDashboardCommand(a),
		newOverviewCommand(a),
		newHealthCommand(a),
	)
	return root
}
