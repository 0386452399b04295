package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/cache"
	"github.com/noah-isme/codemission/internal/config"
	"github.com/noah-isme/codemission/internal/database"
	"github.com/noah-isme/codemission/internal/observability"
	"github.com/noah-isme/codemission/internal/service"
	"github.com/noah-isme/codemission/internal/session"
	"github.com/noah-isme/codemission/internal/view"
)

const unauthorizedHint = "Your session expired or is invalid. Run `codemission login` to sign in again."

var errNotSignedIn = errors.New("not signed in. Run `codemission login` first")

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	out    io.Writer
	errOut io.Writer
	json   bool
	tty    bool
	now    func() time.Time

	client         *api.Client
	auth           service.AuthService
	analyses       service.AnalysisService
	missions       service.MissionService
	customMissions service.CustomMissionService
	achievements   service.AchievementService
	rankings       service.RankingService
	dashboard      service.DashboardService

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		errOut: os.Stderr,
		tty:    isatty.IsTerminal(os.Stdout.Fd()),
		now:    time.Now,
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.SessionDriver == config.SessionDriverRedis {
				return nil, err
			}
			logger.Warn().Err(err).Msg("redis unavailable, aggregate cache disabled")
		} else {
			redisClient = client
			a.closers = append(a.closers, client.Close)
		}
	}

	store, err := a.sessionStore(redisClient)
	if err != nil {
		a.close()
		return nil, err
	}

	var aggregates cache.Cache = cache.Nop{}
	if redisClient != nil {
		aggregates = cache.NewRedisCache(redisClient, "codemission:", logger)
	}

	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		Session:   session.New(store, cfg.SessionTTL),
		Logger:    logger,
		Debug:     cfg.IsDevelopment(),
		RateLimit: cfg.RateLimitRPS,
		UserAgent: cfg.AppName + "-cli",
		OnUnauthorized: func() {
			fmt.Fprintln(a.errOut, view.ErrorBanner(unauthorizedHint))
		},
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.client = client

	analysisConfig := service.AnalysisConfig{
		MaxUploadBytes:   cfg.MaxUploadBytes(),
		UploadTimeout:    cfg.UploadTimeout,
		ReanalyzeTimeout: cfg.ReanalyzeTimeout,
		RetryDelay:       cfg.RetryDelay,
	}

	a.auth = service.NewAuthService(client, logger)
	a.analyses = service.NewAnalysisService(client, analysisConfig, logger)
	a.missions = service.NewMissionService(client, analysisConfig, logger)
	a.customMissions = service.NewCustomMissionService(client, analysisConfig, logger)
	a.achievements = service.NewAchievementService(client, logger)
	a.rankings = service.NewRankingService(client, aggregates, cfg.CacheTTL, logger)
	a.dashboard = service.NewDashboardService(a.analyses, a.rankings, a.achievements, logger)

	observability.ServeMetrics(ctx, cfg.MetricsAddr, logger)
	return a, nil
}

func (a *app) sessionStore(redisClient *redis.Client) (session.Store, error) {
	switch a.cfg.SessionDriver {
	case config.SessionDriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis session driver needs a reachable redis url")
		}
		return session.NewRedisStore(redisClient, ""), nil
	case config.SessionDriverMemory:
		return session.NewMemoryStore(), nil
	default:
		db, err := database.OpenSQLite(a.cfg.SessionPath)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		return session.NewSQLStore(db)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Debug().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

// render prints text, or value as indented JSON when --json is set.
func (a *app) render(value any, text func() string) error {
	if a.json {
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}
	_, err := fmt.Fprintln(a.out, text())
	return err
}

func (a *app) success(message string) {
	if !a.json {
		fmt.Fprintln(a.out, view.SuccessBanner(message))
	}
}

// userMessage is what gets printed for err before exiting.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
