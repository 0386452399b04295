package viewstate

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/noah-isme/codemission/internal/models"
)

// AchievementSource reads achievements and triggers unlock checks.
type AchievementSource interface {
	All(ctx context.Context) (models.AchievementCatalog, error)
	Stats(ctx context.Context) (models.AchievementStats, error)
	Check(ctx context.Context) ([]models.Achievement, error)
}

// AchievementPanel is the badge list split by unlock state.
type AchievementPanel struct {
	Achievements []models.Achievement
	Unlocked     []models.Achievement
	Locked       []models.Achievement
	TotalPoints  int
	Stats        models.AchievementStats
}

// AchievementsState holds the caller's badges.
type AchievementsState struct {
	source AchievementSource
	panel  Resource[AchievementPanel]
}

// NewAchievementsState wraps source.
func NewAchievementsState(source AchievementSource) *AchievementsState {
	return &AchievementsState{source: source}
}

// Refresh fetches the catalog and the stats together. Both must succeed.
func (a *AchievementsState) Refresh(ctx context.Context) error {
	_, err := a.panel.Load(ctx, func(ctx context.Context) (AchievementPanel, error) {
		var (
			catalog    models.AchievementCatalog
			stats      models.AchievementStats
			catalogErr error
			statsErr   error
		)
		var wg conc.WaitGroup
		wg.Go(func() { catalog, catalogErr = a.source.All(ctx) })
		wg.Go(func() { stats, statsErr = a.source.Stats(ctx) })
		wg.Wait()

		if catalogErr != nil {
			return AchievementPanel{}, catalogErr
		}
		if statsErr != nil {
			return AchievementPanel{}, statsErr
		}

		panel := AchievementPanel{
			Achievements: catalog.Achievements,
			Unlocked:     []models.Achievement{},
			Locked:       []models.Achievement{},
			TotalPoints:  catalog.TotalPoints,
			Stats:        stats,
		}
		for _, achievement := range catalog.Achievements {
			if achievement.IsUnlocked {
				panel.Unlocked = append(panel.Unlocked, achievement)
			} else {
				panel.Locked = append(panel.Locked, achievement)
			}
		}
		return panel, nil
	})
	return err
}

// CheckAndUnlock asks the backend to evaluate unlocks, then refreshes. It returns the newly unlocked
// badges, or none when the check failed.
func (a *AchievementsState) CheckAndUnlock(ctx context.Context) []models.Achievement {
	unlocked, err := a.source.Check(ctx)
	if err != nil {
		a.panel.Fail(err)
		return []models.Achievement{}
	}
	_ = a.Refresh(ctx)
	return unlocked
}

// Snapshot returns the current state.
func (a *AchievementsState) Snapshot() Snapshot[AchievementPanel] {
	return a.panel.Snapshot()
}
