package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/models"
)

// AchievementService talks to the /achievements endpoints. Unlock conditions are evaluated by the backend.
type AchievementService interface {
	All(ctx context.Context) (models.AchievementCatalog, error)
	Unlocked(ctx context.Context) ([]models.Achievement, error)
	Locked(ctx context.Context) ([]models.Achievement, error)
	Check(ctx context.Context) ([]models.Achievement, error)
	Stats(ctx context.Context) (models.AchievementStats, error)
	Progress(ctx context.Context, achievementType string) (models.Achievement, error)
}

type achievementService struct {
	client *api.Client
	logger zerolog.Logger
}

// NewAchievementService constructs the achievement service.
func NewAchievementService(client *api.Client, logger zerolog.Logger) AchievementService {
	return &achievementService{
		client: client,
		logger: logger.With().Str("component", "achievement_service").Logger(),
	}
}

func (s *achievementService) All(ctx context.Context) (models.AchievementCatalog, error) {
	catalog, err := api.Get[models.AchievementCatalog](ctx, s.client, "/achievements", nil).Result()
	if err != nil {
		return models.AchievementCatalog{}, err
	}
	if catalog.Achievements == nil {
		catalog.Achievements = []models.Achievement{}
	}
	return catalog, nil
}

func (s *achievementService) Unlocked(ctx context.Context) ([]models.Achievement, error) {
	return list(api.Get[[]models.Achievement](ctx, s.client, "/achievements/unlocked", nil))
}

func (s *achievementService) Locked(ctx context.Context) ([]models.Achievement, error) {
	return list(api.Get[[]models.Achievement](ctx, s.client, "/achievements/locked", nil))
}

// Check asks the backend to evaluate unlock conditions and returns the newly unlocked badges.
func (s *achievementService) Check(ctx context.Context) ([]models.Achievement, error) {
	unlocked, err := list(api.Get[[]models.Achievement](ctx, s.client, "/achievements/check", nil))
	if err != nil {
		return nil, err
	}
	if len(unlocked) > 0 {
		s.logger.Info().Int("unlocked", len(unlocked)).Msg("achievements unlocked")
	}
	return unlocked, nil
}

func (s *achievementService) Stats(ctx context.Context) (models.AchievementStats, error) {
	return api.Get[models.AchievementStats](ctx, s.client, "/achievements/stats", nil).Result()
}

func (s *achievementService) Progress(ctx context.Context, achievementType string) (models.Achievement, error) {
	achievementType = strings.TrimSpace(achievementType)
	if achievementType == "" {
		return models.Achievement{}, api.NewValidationError("Enter an achievement type.")
	}
	return api.Send[models.Achievement](ctx, s.client, api.Request{
		Path:  "/achievements/progress/" + url.PathEscape(achievementType),
		Route: "/achievements/progress/:type",
	}).Result()
}
