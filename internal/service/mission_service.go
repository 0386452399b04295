package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/validation"
)

// MissionService talks to the /missions endpoints.
type MissionService interface {
	Mine(ctx context.Context) ([]models.Mission, error)
	ByAnalysis(ctx context.Context, analysisID uint) ([]models.Mission, error)
	Get(ctx context.Context, id uint) (models.Mission, error)
	MarkFixed(ctx context.Context, id uint) (models.Mission, error)
	MarkSkipped(ctx context.Context, id uint) (models.Mission, error)
	Stats(ctx context.Context) (models.MissionStats, error)
	Pending(ctx context.Context) ([]models.Mission, error)
	Completed(ctx context.Context) ([]models.Mission, error)
	BySeverity(ctx context.Context, severity models.Severity) ([]models.Mission, error)
	Reanalyze(ctx context.Context, id uint, file api.File, progress api.ProgressFunc) (models.ReanalysisResult, error)
}

type missionService struct {
	client           *api.Client
	maxUploadBytes   int64
	reanalyzeTimeout time.Duration
	logger           zerolog.Logger
}

// NewMissionService constructs the mission service. Re-analysis uploads share the analysis limits.
func NewMissionService(client *api.Client, config AnalysisConfig, logger zerolog.Logger) MissionService {
	if config.ReanalyzeTimeout <= 0 {
		config.ReanalyzeTimeout = DefaultReanalyzeTimeout
	}
	return &missionService{
		client:           client,
		maxUploadBytes:   config.MaxUploadBytes,
		reanalyzeTimeout: config.ReanalyzeTimeout,
		logger:           logger.With().Str("component", "mission_service").Logger(),
	}
}

func (s *missionService) Mine(ctx context.Context) ([]models.Mission, error) {
	return list(api.Get[[]models.Mission](ctx, s.client, "/missions/my", nil))
}

func (s *missionService) ByAnalysis(ctx context.Context, analysisID uint) ([]models.Mission, error) {
	return list(api.Send[[]models.Mission](ctx, s.client, api.Request{
		Path:  idPath("/missions/analysis", analysisID),
		Route: "/missions/analysis/:id",
	}))
}

func (s *missionService) Get(ctx context.Context, id uint) (models.Mission, error) {
	return api.Send[models.Mission](ctx, s.client, api.Request{
		Path:  idPath("/missions", id),
		Route: "/missions/:id",
	}).Result()
}

func (s *missionService) MarkFixed(ctx context.Context, id uint) (models.Mission, error) {
	return s.transition(ctx, id, "mark-fixed")
}

func (s *missionService) MarkSkipped(ctx context.Context, id uint) (models.Mission, error) {
	return s.transition(ctx, id, "mark-skipped")
}

func (s *missionService) transition(ctx context.Context, id uint, action string) (models.Mission, error) {
	mission, err := api.Send[models.Mission](ctx, s.client, api.Request{
		Method: http.MethodPost,
		Path:   idPath("/missions", id) + "/" + action,
		Route:  "/missions/:id/" + action,
	}).Result()
	if err != nil {
		return models.Mission{}, err
	}
	s.logger.Info().Uint("mission_id", id).Str("status", string(mission.Status)).Msg("mission updated")
	return mission, nil
}

func (s *missionService) Stats(ctx context.Context) (models.MissionStats, error) {
	return api.Get[models.MissionStats](ctx, s.client, "/missions/stats", nil).Result()
}

func (s *missionService) Pending(ctx context.Context) ([]models.Mission, error) {
	return list(api.Get[[]models.Mission](ctx, s.client, "/missions/pending", nil))
}

func (s *missionService) Completed(ctx context.Context) ([]models.Mission, error) {
	return list(api.Get[[]models.Mission](ctx, s.client, "/missions/completed", nil))
}

func (s *missionService) BySeverity(ctx context.Context, severity models.Severity) ([]models.Mission, error) {
	switch severity {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
	default:
		return nil, api.NewValidationError(fmt.Sprintf("Unknown severity %q. Use low, medium or high.", severity))
	}
	return list(api.Send[[]models.Mission](ctx, s.client, api.Request{
		Path:  "/missions/severity/" + string(severity),
		Route: "/missions/severity/:severity",
	}))
}

// Reanalyze uploads corrected code scoped to a single mission.
func (s *missionService) Reanalyze(ctx context.Context, id uint, file api.File, progress api.ProgressFunc) (models.ReanalysisResult, error) {
	if err := validation.Archive(file, s.maxUploadBytes); err != nil {
		return models.ReanalysisResult{}, err
	}

	result, err := api.SendUpload[models.ReanalysisResult](ctx, s.client, api.Upload{
		Path:     idPath("/missions", id) + "/reanalyze",
		Route:    "/missions/:id/reanalyze",
		File:     file,
		Timeout:  s.reanalyzeTimeout,
		Progress: progress,
	}).Result()
	if err != nil {
		s.logger.Warn().Err(err).Uint("mission_id", id).Msg("mission re-analysis failed")
		return models.ReanalysisResult{}, err
	}

	s.logger.Info().Uint("mission_id", id).Int("missions_fixed", result.MissionsFixed).Msg("mission re-analysed")
	return result, nil
}
