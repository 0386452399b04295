package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/models"
)

func achievementPayload(id int, unlocked bool) map[string]any {
	return map[string]any{
		"id":              id,
		"type":            "first_analysis",
		"name":            "First steps",
		"description":     "Run your first analysis",
		"icon":            "🚀",
		"pointsReward":    10,
		"condition":       "analyses >= 1",
		"isUnlocked":      unlocked,
		"progressCurrent": 1,
		"progressTarget":  1,
		"category":        "general",
		"createdAt":       "2024-03-01T10:00:00Z",
		"updatedAt":       "2024-03-01T10:00:00Z",
	}
}

func TestAchievementService(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("GET /achievements", http.StatusOK, map[string]any{
		"totalPoints":  10,
		"achievements": []any{achievementPayload(1, true), achievementPayload(2, false)},
	})
	backend.handle("GET /achievements/unlocked", http.StatusOK, []any{achievementPayload(1, true)})
	backend.handle("GET /achievements/locked", http.StatusOK, []any{achievementPayload(2, false)})
	backend.handle("GET /achievements/check", http.StatusOK, []any{})
	backend.handle("GET /achievements/stats", http.StatusOK, map[string]any{
		"totalAchievements":    2,
		"unlockedCount":        1,
		"completionPercentage": 50,
		"totalPoints":          10,
	})
	backend.handle("GET /achievements/progress/{type}", http.StatusOK, achievementPayload(1, true))

	svc := NewAchievementService(backend.client(), zerolog.Nop())
	ctx := context.Background()

	catalog, err := svc.All(ctx)
	require.NoError(t, err)
	require.Equal(t, 10, catalog.TotalPoints)
	require.Len(t, catalog.Achievements, 2)
	require.Equal(t, models.AchievementCategoryGeneral, catalog.Achievements[0].Category)

	unlocked, err := svc.Unlocked(ctx)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	locked, err := svc.Locked(ctx)
	require.NoError(t, err)
	require.False(t, locked[0].IsUnlocked)

	fresh, err := svc.Check(ctx)
	require.NoError(t, err)
	require.Empty(t, fresh)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 50.0, stats.CompletionPercentage)

	progress, err := svc.Progress(ctx, "first_analysis")
	require.NoError(t, err)
	require.Equal(t, 1, *progress.ProgressTarget)
	require.Equal(t, "/api/achievements/progress/first_analysis", backend.last().Path)

	_, err = svc.Progress(ctx, "")
	require.Error(t, err)
}
