package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/validation"
)

// CustomMissionService talks to the /custom-missions endpoints.
type CustomMissionService interface {
	List(ctx context.Context, filter dto.CustomMissionFilter) ([]models.CustomMission, error)
	Get(ctx context.Context, id uint) (models.CustomMission, error)
	Submit(ctx context.Context, id uint, file api.File, progress api.ProgressFunc) (models.MissionSubmission, error)
	Submission(ctx context.Context, id uint) (models.MissionSubmission, error)
	MySubmissions(ctx context.Context) ([]models.MissionSubmission, error)
}

type customMissionService struct {
	client         *api.Client
	maxUploadBytes int64
	uploadTimeout  time.Duration
	logger         zerolog.Logger
}

// NewCustomMissionService constructs the custom mission service.
func NewCustomMissionService(client *api.Client, config AnalysisConfig, logger zerolog.Logger) CustomMissionService {
	return &customMissionService{
		client:         client,
		maxUploadBytes: config.MaxUploadBytes,
		uploadTimeout:  config.UploadTimeout,
		logger:         logger.With().Str("component", "custom_mission_service").Logger(),
	}
}

func (s *customMissionService) List(ctx context.Context, filter dto.CustomMissionFilter) ([]models.CustomMission, error) {
	return list(api.Get[[]models.CustomMission](ctx, s.client, "/custom-missions", filter.Query()))
}

func (s *customMissionService) Get(ctx context.Context, id uint) (models.CustomMission, error) {
	return api.Send[models.CustomMission](ctx, s.client, api.Request{
		Path:  idPath("/custom-missions", id),
		Route: "/custom-missions/:id",
	}).Result()
}

// Submit uploads a solution. The returned submission carries the backend verdict.
func (s *customMissionService) Submit(ctx context.Context, id uint, file api.File, progress api.ProgressFunc) (models.MissionSubmission, error) {
	if err := validation.Archive(file, s.maxUploadBytes); err != nil {
		return models.MissionSubmission{}, err
	}

	submission, err := api.SendUpload[models.MissionSubmission](ctx, s.client, api.Upload{
		Path:     idPath("/custom-missions", id) + "/submit",
		Route:    "/custom-missions/:id/submit",
		File:     file,
		Timeout:  s.uploadTimeout,
		Progress: progress,
	}).Result()
	if err != nil {
		return models.MissionSubmission{}, err
	}

	s.logger.Info().
		Uint("custom_mission_id", id).
		Str("status", string(submission.Status)).
		Int("tests_passed", submission.TestsPassed).
		Int("tests_failed", submission.TestsFailed).
		Msg("custom mission submitted")
	return submission, nil
}

// Submission returns the caller's latest submission for the mission.
func (s *customMissionService) Submission(ctx context.Context, id uint) (models.MissionSubmission, error) {
	return api.Send[models.MissionSubmission](ctx, s.client, api.Request{
		Path:  idPath("/custom-missions", id) + "/submission",
		Route: "/custom-missions/:id/submission",
	}).Result()
}

func (s *customMissionService) MySubmissions(ctx context.Context) ([]models.MissionSubmission, error) {
	return list(api.Get[[]models.MissionSubmission](ctx, s.client, "/custom-missions/my/submissions", nil))
}
