package dto

import "github.com/noah-isme/codemission/internal/models"

// RecentActivityLimit is how many analyses the dashboard lists as recent activity.
const RecentActivityLimit = 5

// DashboardStats are computed locally from the caller's analyses.
type DashboardStats struct {
	TotalAnalyses        int     `json:"totalAnalyses"`
	CompletedAnalyses    int     `json:"completedAnalyses"`
	InProgressAnalyses   int     `json:"inProgressAnalyses"`
	ErrorAnalyses        int     `json:"errorAnalyses"`
	TotalIssues          int     `json:"totalIssues"`
	HighSeverityIssues   int     `json:"highSeverityIssues"`
	MediumSeverityIssues int     `json:"mediumSeverityIssues"`
	LowSeverityIssues    int     `json:"lowSeverityIssues"`
	AverageScore         float64 `json:"averageScore"`
}

// NewDashboardStats aggregates analyses into dashboard counters.
func NewDashboardStats(analyses []models.AnalysisResult) DashboardStats {
	stats := DashboardStats{TotalAnalyses: len(analyses)}
	var scoreSum float64
	for _, analysis := range analyses {
		switch analysis.Status {
		case models.AnalysisStatusCompleted:
			stats.CompletedAnalyses++
		case models.AnalysisStatusProcessing:
			stats.InProgressAnalyses++
		case models.AnalysisStatusFailed:
			stats.ErrorAnalyses++
		}
		stats.TotalIssues += analysis.TotalIssues
		stats.HighSeverityIssues += analysis.HighSeverityIssues
		stats.MediumSeverityIssues += analysis.MediumSeverityIssues
		stats.LowSeverityIssues += analysis.LowSeverityIssues
		scoreSum += analysis.QualityScore
	}
	if len(analyses) > 0 {
		stats.AverageScore = scoreSum / float64(len(analyses))
	}
	return stats
}

// RankingInfo is the caller's leaderboard placement.
type RankingInfo struct {
	Position   int `json:"position"`
	TotalUsers int `json:"totalUsers"`
	Percentile int `json:"percentile"`
}

// NewRankingInfo derives the placement shown on the dashboard.
func NewRankingInfo(position models.MyPosition) RankingInfo {
	return RankingInfo{
		Position:   position.Position,
		TotalUsers: position.TotalUsers,
		Percentile: position.Percentile(),
	}
}

// Dashboard is the authenticated landing view. Ranking and Achievements are nil when their
// best-effort fetch failed.
type Dashboard struct {
	Analyses       []models.AnalysisResult  `json:"analyses"`
	RecentActivity []models.AnalysisResult  `json:"recentActivity"`
	Stats          DashboardStats           `json:"stats"`
	Ranking        *RankingInfo             `json:"ranking,omitempty"`
	Achievements   *models.AchievementStats `json:"achievements,omitempty"`
}

// Overview is the public landing view. Each part falls back to an empty value on failure.
type Overview struct {
	RecentAnalyses []models.AnalysisResult `json:"recentAnalyses"`
	Stats          models.AnalysisStats    `json:"stats"`
	Health         models.HealthStatus     `json:"healthStatus"`
}
