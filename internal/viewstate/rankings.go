package viewstate

import (
	"context"
	"sync"

	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
)

// RankingSource reads leaderboards.
type RankingSource interface {
	Global(ctx context.Context, limit int) (models.GlobalRankings, error)
	University(ctx context.Context, university string) ([]models.RankingUser, error)
	Career(ctx context.Context, career string) ([]models.RankingUser, error)
	MyPosition(ctx context.Context) (models.MyPosition, error)
}

// Leaderboard is the board shown for the active filter. GlobalStats is nil for scoped boards.
type Leaderboard struct {
	Filter      dto.RankingFilter
	Rankings    []models.RankingUser
	GlobalStats *models.GlobalStats
}

// RankingsState holds the leaderboard for the active filter plus the caller's position.
type RankingsState struct {
	source   RankingSource
	board    Resource[Leaderboard]
	position Resource[*models.MyPosition]

	mu     sync.RWMutex
	filter dto.RankingFilter
}

// NewRankingsState wraps source with the global filter active.
func NewRankingsState(source RankingSource) *RankingsState {
	return &RankingsState{source: source, filter: dto.RankingFilter{Scope: dto.RankingScopeGlobal}}
}

// SetFilter switches the active filter and reloads the board. A response for a filter that was
// replaced while in flight is discarded.
func (r *RankingsState) SetFilter(ctx context.Context, filter dto.RankingFilter) error {
	r.mu.Lock()
	r.filter = filter
	r.mu.Unlock()
	return r.Refresh(ctx)
}

// Filter returns the active filter.
func (r *RankingsState) Filter() dto.RankingFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter
}

// Refresh reloads the board for the active filter.
func (r *RankingsState) Refresh(ctx context.Context) error {
	filter := r.Filter()
	_, err := r.board.Load(ctx, func(ctx context.Context) (Leaderboard, error) {
		board := Leaderboard{Filter: filter}
		var err error
		switch filter.Effective() {
		case dto.RankingScopeUniversity:
			board.Rankings, err = r.source.University(ctx, filter.Value)
		case dto.RankingScopeCareer:
			board.Rankings, err = r.source.Career(ctx, filter.Value)
		default:
			var global models.GlobalRankings
			global, err = r.source.Global(ctx, filter.Limit)
			board.Rankings = global.Rankings
			board.GlobalStats = &global.GlobalStats
		}
		if err != nil {
			return Leaderboard{}, err
		}
		return board, nil
	})
	return err
}

// RefreshPosition loads the caller's position. Failures leave the previous position in place.
func (r *RankingsState) RefreshPosition(ctx context.Context) error {
	_, err := r.position.Load(ctx, func(ctx context.Context) (*models.MyPosition, error) {
		position, err := r.source.MyPosition(ctx)
		if err != nil {
			return nil, err
		}
		return &position, nil
	})
	return err
}

// Board returns the leaderboard state.
func (r *RankingsState) Board() Snapshot[Leaderboard] {
	return r.board.Snapshot()
}

// Position returns the caller's position state.
func (r *RankingsState) Position() Snapshot[*models.MyPosition] {
	return r.position.Snapshot()
}
