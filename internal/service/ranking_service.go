package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/cache"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
)

// RankingService talks to the /rankings endpoints. Global aggregates are read through the cache.
type RankingService interface {
	Global(ctx context.Context, limit int) (models.GlobalRankings, error)
	MyPosition(ctx context.Context) (models.MyPosition, error)
	University(ctx context.Context, university string) ([]models.RankingUser, error)
	Career(ctx context.Context, career string) ([]models.RankingUser, error)
	Stats(ctx context.Context) (models.GlobalStats, error)
	Board(ctx context.Context, filter dto.RankingFilter) ([]models.RankingUser, error)
}

type rankingService struct {
	client   *api.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewRankingService constructs the ranking service. A nil cache or non-positive ttl disables caching.
func NewRankingService(client *api.Client, aggregates cache.Cache, ttl time.Duration, logger zerolog.Logger) RankingService {
	if aggregates == nil {
		aggregates = cache.Nop{}
	}
	return &rankingService{
		client:   client,
		cache:    aggregates,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "ranking_service").Logger(),
	}
}

func (s *rankingService) Global(ctx context.Context, limit int) (models.GlobalRankings, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	key := fmt.Sprintf("rankings:global:%d", limit)
	rankings, err := cache.ReadThrough(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (models.GlobalRankings, error) {
		return api.Get[models.GlobalRankings](ctx, s.client, "/rankings/global", query).Result()
	})
	if err != nil {
		return models.GlobalRankings{}, err
	}
	if rankings.Rankings == nil {
		rankings.Rankings = []models.RankingUser{}
	}
	return rankings, nil
}

func (s *rankingService) MyPosition(ctx context.Context) (models.MyPosition, error) {
	return api.Get[models.MyPosition](ctx, s.client, "/rankings/my-position", nil).Result()
}

func (s *rankingService) University(ctx context.Context, university string) ([]models.RankingUser, error) {
	return s.scoped(ctx, "university", university)
}

func (s *rankingService) Career(ctx context.Context, career string) ([]models.RankingUser, error) {
	return s.scoped(ctx, "career", career)
}

func (s *rankingService) scoped(ctx context.Context, scope, value string) ([]models.RankingUser, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, api.NewValidationError(fmt.Sprintf("Enter a %s name.", scope))
	}
	return list(api.Send[[]models.RankingUser](ctx, s.client, api.Request{
		Path:  "/rankings/" + scope + "/" + url.PathEscape(value),
		Route: "/rankings/" + scope + "/:name",
	}))
}

func (s *rankingService) Stats(ctx context.Context) (models.GlobalStats, error) {
	return cache.ReadThrough(ctx, s.cache, "rankings:stats", s.cacheTTL, func(ctx context.Context) (models.GlobalStats, error) {
		return api.Get[models.GlobalStats](ctx, s.client, "/rankings/stats", nil).Result()
	})
}

// Board resolves a leaderboard filter. A university or career scope without a value shows the global board.
func (s *rankingService) Board(ctx context.Context, filter dto.RankingFilter) ([]models.RankingUser, error) {
	switch filter.Effective() {
	case dto.RankingScopeUniversity:
		return s.University(ctx, filter.Value)
	case dto.RankingScopeCareer:
		return s.Career(ctx, filter.Value)
	default:
		global, err := s.Global(ctx, filter.Limit)
		if err != nil {
			return nil, err
		}
		return global.Rankings, nil
	}
}
