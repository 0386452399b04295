package models

import "time"

// AchievementCategory groups badges.
type AchievementCategory string

const (
	AchievementCategoryGeneral       AchievementCategory = "general"
	AchievementCategoryVulnerability AchievementCategory = "vulnerability"
	AchievementCategoryPerformance   AchievementCategory = "performance"
	AchievementCategoryConsistency   AchievementCategory = "consistency"
)

// Achievement is a badge unlocked by a server-evaluated condition.
type Achievement struct {
	ID              uint                `json:"id"`
	Type            string              `json:"type"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Icon            string              `json:"icon"`
	PointsReward    int                 `json:"pointsReward"`
	Condition       string              `json:"condition"`
	IsUnlocked      bool                `json:"isUnlocked"`
	UnlockedAt      *time.Time          `json:"unlockedAt"`
	ProgressCurrent *int                `json:"progressCurrent"`
	ProgressTarget  *int                `json:"progressTarget"`
	Category        AchievementCategory `json:"category"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// AchievementCatalog is the full list with the user's points.
type AchievementCatalog struct {
	TotalPoints  int           `json:"totalPoints"`
	Achievements []Achievement `json:"achievements"`
}

// AchievementStats summarises unlock progress.
type AchievementStats struct {
	TotalAchievements    int           `json:"totalAchievements"`
	UnlockedCount        int           `json:"unlockedCount"`
	CompletionPercentage float64       `json:"completionPercentage"`
	TotalPoints          int           `json:"totalPoints"`
	Achievements         []Achievement `json:"achievements,omitempty"`
}
