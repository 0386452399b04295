package service

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/cache"
	"github.com/noah-isme/codemission/internal/dto"
)

func rankingUsers(n int) []any {
	users := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, map[string]any{
			"id":               i,
			"name":             fmt.Sprintf("user %d", i),
			"email":            fmt.Sprintf("user%d@example.com", i),
			"totalAnalyses":    10 - i,
			"averageScore":     90 - float64(i),
			"totalIssuesFound": i * 3,
			"rank":             i,
		})
	}
	return users
}

var globalStatsPayload = map[string]any{
	"totalUsers":          5,
	"totalAnalyses":       35,
	"averageQualityScore": 87,
	"totalIssuesFound":    45,
	"mostActiveUser":      map[string]any{"name": "user 1", "analysesCount": 9},
	"bestQualityUser":     map[string]any{"name": "user 1", "qualityScore": 89},
}

func TestRankingGlobalWithFiveUsers(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("GET /rankings/global", http.StatusOK, envelope(map[string]any{
		"rankings":    rankingUsers(5),
		"globalStats": globalStatsPayload,
	}))

	svc := NewRankingService(backend.client(), nil, 0, zerolog.Nop())
	rankings, err := svc.Global(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, rankings.Rankings, 5)
	require.Equal(t, 5, rankings.GlobalStats.TotalUsers)
	require.Equal(t, 35, rankings.GlobalStats.TotalAnalyses)
	require.Equal(t, "user 1", rankings.GlobalStats.MostActiveUser.Name)
	require.Equal(t, 9, rankings.GlobalStats.MostActiveUser.AnalysesCount)
	require.Equal(t, "limit=50", backend.last().Query)
}

func TestRankingGlobalReadsThroughCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	backend := newFakeBackend(t)
	var hits atomic.Int32
	backend.handleFunc("GET /rankings/global", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, envelope(map[string]any{"rankings": rankingUsers(2), "globalStats": globalStatsPayload}))
	})
	backend.handleFunc("GET /rankings/stats", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, envelope(globalStatsPayload))
	})

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	aggregates := cache.NewRedisCache(redisClient, "codemission:", zerolog.Nop())
	svc := NewRankingService(backend.client(), aggregates, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rankings, err := svc.Global(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rankings.Rankings, 2)
	}
	require.Equal(t, int32(1), hits.Load())
	require.True(t, mini.Exists("codemission:rankings:global:10"))

	for i := 0; i < 2; i++ {
		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, 45, stats.TotalIssuesFound)
	}
	require.Equal(t, int32(2), hits.Load())

	mini.FastForward(2 * time.Minute)
	_, err = svc.Global(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int32(3), hits.Load())
}

func TestRankingFailuresAreNotCached(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	backend := newFakeBackend(t)
	backend.handle("GET /rankings/stats", http.StatusInternalServerError, failure("db down"))

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	svc := NewRankingService(backend.client(), cache.NewRedisCache(redisClient, "", zerolog.Nop()), time.Minute, zerolog.Nop())

	_, err = svc.Stats(context.Background())
	require.Error(t, err)
	require.Equal(t, "Internal server error. Try again later.", err.Error())
	require.False(t, mini.Exists("rankings:stats"))
}

func TestRankingScopedBoards(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("GET /rankings/university/{name}", http.StatusOK, envelope(rankingUsers(3)))
	backend.handle("GET /rankings/career/{name}", http.StatusOK, envelope(rankingUsers(1)))
	backend.handle("GET /rankings/global", http.StatusOK, envelope(map[string]any{"rankings": rankingUsers(4)}))
	backend.handle("GET /rankings/my-position", http.StatusOK, envelope(map[string]any{"position": 3, "totalUsers": 40}))

	svc := NewRankingService(backend.client(), nil, 0, zerolog.Nop())
	ctx := context.Background()

	university, err := svc.Board(ctx, dto.RankingFilter{Scope: dto.RankingScopeUniversity, Value: "Universidad Nacional"})
	require.NoError(t, err)
	require.Len(t, university, 3)
	require.Equal(t, "/api/rankings/university/Universidad Nacional", backend.last().Path)

	career, err := svc.Board(ctx, dto.RankingFilter{Scope: dto.RankingScopeCareer, Value: "Ingeniería de Sistemas"})
	require.NoError(t, err)
	require.Len(t, career, 1)
	require.Equal(t, "/api/rankings/career/Ingeniería de Sistemas", backend.last().Path)

	fallback, err := svc.Board(ctx, dto.RankingFilter{Scope: dto.RankingScopeCareer})
	require.NoError(t, err)
	require.Len(t, fallback, 4)

	_, err = svc.University(ctx, " ")
	require.Equal(t, api.KindValidation, api.KindOf(err))

	position, err := svc.MyPosition(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, position.Percentile())
}
