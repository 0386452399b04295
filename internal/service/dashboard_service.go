package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
)

// DashboardService assembles the landing views from several backend calls.
type DashboardService interface {
	Dashboard(ctx context.Context) (dto.Dashboard, error)
	Overview(ctx context.Context) dto.Overview
}

type dashboardService struct {
	analyses     AnalysisService
	rankings     RankingService
	achievements AchievementService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(analyses AnalysisService, rankings RankingService, achievements AchievementService, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		analyses:     analyses,
		rankings:     rankings,
		achievements: achievements,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
		now:          time.Now,
	}
}

// Dashboard waits for every fetch. The analyses are required; ranking and achievement stats are
// best-effort and left empty when they fail.
func (s *dashboardService) Dashboard(ctx context.Context) (dto.Dashboard, error) {
	var (
		analyses     []models.AnalysisResult
		analysesErr  error
		position     models.MyPosition
		positionErr  error
		achievements models.AchievementStats
		achieveErr   error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		analyses, analysesErr = s.analyses.MyAnalyses(ctx, 0)
	})
	wg.Go(func() {
		position, positionErr = s.rankings.MyPosition(ctx)
	})
	wg.Go(func() {
		achievements, achieveErr = s.achievements.Stats(ctx)
	})
	wg.Wait()

	if analysesErr != nil {
		return dto.Dashboard{}, analysesErr
	}

	recent := analyses
	if len(recent) > dto.RecentActivityLimit {
		recent = recent[:dto.RecentActivityLimit]
	}

	dashboard := dto.Dashboard{
		Analyses:       analyses,
		RecentActivity: recent,
		Stats:          dto.NewDashboardStats(analyses),
	}

	if positionErr != nil {
		s.logger.Warn().Err(positionErr).Msg("ranking position unavailable")
	} else {
		info := dto.NewRankingInfo(position)
		dashboard.Ranking = &info
	}

	if achieveErr != nil {
		s.logger.Warn().Err(achieveErr).Msg("achievement stats unavailable")
	} else {
		dashboard.Achievements = &achievements
	}

	return dashboard, nil
}

// Overview never fails: each part falls back to an empty value.
func (s *dashboardService) Overview(ctx context.Context) dto.Overview {
	overview := dto.Overview{RecentAnalyses: []models.AnalysisResult{}}

	var wg conc.WaitGroup
	wg.Go(func() {
		if analyses, err := s.analyses.DemoData(ctx); err == nil {
			overview.RecentAnalyses = analyses
		} else {
			s.logger.Warn().Err(err).Msg("demo analyses unavailable")
		}
	})
	wg.Go(func() {
		if stats, err := s.analyses.Stats(ctx); err == nil {
			overview.Stats = stats
		} else {
			s.logger.Warn().Err(err).Msg("analysis stats unavailable")
		}
	})
	wg.Go(func() {
		if health, err := s.analyses.Health(ctx); err == nil {
			overview.Health = health
		} else {
			overview.Health = models.HealthStatus{
				Message:   "Health check failed",
				Timestamp: s.now().UTC().Format(time.RFC3339),
				Endpoints: []string{},
			}
		}
	})
	wg.Wait()

	return overview
}
