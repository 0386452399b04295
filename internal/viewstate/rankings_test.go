package viewstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/service"
	"github.com/noah-isme/codemission/internal/session"
)

func TestRankingsStateGlobalBoardFromBackend(t *testing.T) {
	users := make([]map[string]any, 0, 5)
	for i := 1; i <= 5; i++ {
		users = append(users, map[string]any{
			"id":            i,
			"name":          fmt.Sprintf("user %d", i),
			"email":         fmt.Sprintf("user%d@example.com", i),
			"totalAnalyses": 10 - i,
			"averageScore":  90 - i,
			"rank":          i,
		})
	}
	stats := map[string]any{
		"totalUsers":          5,
		"totalAnalyses":       35,
		"averageQualityScore": 87.5,
		"totalIssuesFound":    45,
		"mostActiveUser":      map[string]any{"name": "user 1", "analysesCount": 9},
		"bestQualityUser":     map[string]any{"name": "user 1", "qualityScore": 89},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rankings/global", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"rankings": users, "globalStats": stats},
		})
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.Options{
		BaseURL: server.URL + "/api",
		Session: session.New(session.NewMemoryStore(), time.Hour),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	state := NewRankingsState(service.NewRankingService(client, nil, 0, zerolog.Nop()))
	require.NoError(t, state.Refresh(context.Background()))

	board := state.Board()
	require.Equal(t, StatusSuccess, board.Status)
	require.Len(t, board.Data.Rankings, 5)
	require.NotNil(t, board.Data.GlobalStats)
	assert.Equal(t, models.GlobalStats{
		TotalUsers:          5,
		TotalAnalyses:       35,
		AverageQualityScore: 87.5,
		TotalIssuesFound:    45,
		MostActiveUser:      models.MostActiveUser{Name: "user 1", AnalysesCount: 9},
		BestQualityUser:     models.BestQualityUser{Name: "user 1", QualityScore: 89},
	}, *board.Data.GlobalStats)
	assert.Equal(t, "user 3", board.Data.Rankings[2].Name)
}
