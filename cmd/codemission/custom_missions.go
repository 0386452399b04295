package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/view"
)

func newCustomMissionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "custom-missions",
		Aliases: []string{"challenges"},
		Short:   "Instructor-authored programming challenges",
	}

	var filter dto.CustomMissionFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			missions, err := a.customMissions.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render(missions, func() string {
				if len(missions) == 0 {
					return "No challenges match."
				}
				cards := make([]string, 0, len(missions))
				for _, mission := range missions {
					cards = append(cards, view.CustomMissionCard(mission, nil))
				}
				return strings.Join(cards, "\n")
			})
		},
	}
	list.Flags().StringVar(&filter.Subject, "subject", "", "physics, chemistry, mathematics, ...")
	list.Flags().StringVar(&filter.Difficulty, "difficulty", "", "easy, medium or hard")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a challenge with your latest submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mission, err := a.customMissions.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			var submission *models.MissionSubmission
			if found, err := a.customMissions.Submission(cmd.Context(), id); err == nil {
				submission = &found
			} else if !api.IsNotFound(err) {
				a.logger.Debug().Err(err).Uint("mission_id", id).Msg("submission lookup failed")
			}

			payload := struct {
				Mission    models.CustomMission      `json:"mission"`
				Submission *models.MissionSubmission `json:"submission,omitempty"`
			}{mission, submission}
			return a.render(payload, func() string { return view.CustomMissionCard(mission, submission) })
		},
	}

	submit := &cobra.Command{
		Use:   "submit <id> <archive>",
		Short: "Submit a solution archive for grading",
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
			submission, err := a.customMissions.Submit(cmd.Context(), id, file, a.progressPrinter(file.Name))
			if err != nil {
				return err
			}
			return a.render(submission, func() string { return view.Submission(submission) })
		},
	}

	submissions := &cobra.Command{
		Use:   "submissions",
		Short: "List your submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.customMissions.MySubmissions(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(items, func() string {
				if len(items) == 0 {
					return "No submissions yet."
				}
				lines := make([]string, 0, len(items))
				for _, item := range items {
					lines = append(lines, view.Submission(item))
				}
				return strings.Join(lines, "\n\n")
			})
		},
	}

	cmd.AddCommand(list, show, submit, submissions)
	return cmd
}
