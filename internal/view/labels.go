// Package view renders domain values for the terminal. Everything here is a lookup table or a
// layout; values are shown exactly as the backend returned them.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/codemission/internal/models"
)

// Badge is a short label with its color.
type Badge struct {
	Text  string
	Color lipgloss.Color
}

const (
	colorHigh    = lipgloss.Color("#ef4444")
	colorMedium  = lipgloss.Color("#f97316")
	colorLow     = lipgloss.Color("#eab308")
	colorInfo    = lipgloss.Color("#3b82f6")
	colorDefault = lipgloss.Color("#6b7280")
	colorGreen   = lipgloss.Color("#16a34a")
	colorRed     = lipgloss.Color("#dc2626")
	colorPurple  = lipgloss.Color("#9333ea")
)

var severityColors = map[string]lipgloss.Color{
	"HIGH":   colorHigh,
	"MEDIUM": colorMedium,
	"LOW":    colorLow,
	"INFO":   colorInfo,
}

var severityIcons = map[string]string{
	"HIGH":   "🔴",
	"MEDIUM": "🟡",
	"LOW":    "🟢",
	"INFO":   "🔵",
}

// SeverityColor maps a severity in any case to its color.
func SeverityColor(severity string) lipgloss.Color {
	if color, ok := severityColors[strings.ToUpper(severity)]; ok {
		return color
	}
	return colorDefault
}

// SeverityIcon maps a severity in any case to its icon.
func SeverityIcon(severity string) string {
	if icon, ok := severityIcons[strings.ToUpper(severity)]; ok {
		return icon
	}
	return "⚪"
}

var analysisBadges = map[models.AnalysisStatus]Badge{
	models.AnalysisStatusPending:    {Text: "Pending", Color: colorLow},
	models.AnalysisStatusProcessing: {Text: "Running", Color: colorInfo},
	models.AnalysisStatusCompleted:  {Text: "Completed", Color: colorGreen},
	models.AnalysisStatusFailed:     {Text: "Failed", Color: colorRed},
}

// AnalysisStatusBadge labels an analysis status.
func AnalysisStatusBadge(status models.AnalysisStatus) Badge {
	if badge, ok := analysisBadges[models.AnalysisStatus(strings.ToLower(string(status)))]; ok {
		return badge
	}
	return Badge{Text: "Unknown", Color: colorDefault}
}

var missionBadges = map[models.MissionStatus]Badge{
	models.MissionStatusPending: {Text: "Pending", Color: colorLow},
	models.MissionStatusFixed:   {Text: "Fixed", Color: colorGreen},
	models.MissionStatusSkipped: {Text: "Skipped", Color: colorDefault},
}

// MissionStatusBadge labels a mission status.
func MissionStatusBadge(status models.MissionStatus) Badge {
	if badge, ok := missionBadges[status]; ok {
		return badge
	}
	return Badge{Text: "Unknown", Color: colorDefault}
}

var submissionBadges = map[models.SubmissionStatus]Badge{
	models.SubmissionStatusApproved:  {Text: "Completed", Color: colorGreen},
	models.SubmissionStatusRejected:  {Text: "Failed", Color: colorRed},
	models.SubmissionStatusPending:   {Text: "Pending", Color: colorLow},
	models.SubmissionStatusError:     {Text: "Error", Color: colorRed},
	models.SubmissionStatusReviewing: {Text: "Reviewing", Color: colorInfo},
}

// SubmissionStatusBadge labels a custom mission submission verdict.
func SubmissionStatusBadge(status models.SubmissionStatus) Badge {
	if badge, ok := submissionBadges[status]; ok {
		return badge
	}
	return Badge{Text: string(status), Color: colorDefault}
}

var categoryLabels = map[models.AchievementCategory]string{
	models.AchievementCategoryGeneral:       "General",
	models.AchievementCategoryVulnerability: "Security",
	models.AchievementCategoryPerformance:   "Performance",
	models.AchievementCategoryConsistency:   "Consistency",
}

// CategoryLabel names an achievement category.
func CategoryLabel(category models.AchievementCategory) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return "General"
}

var subjectLabels = map[string]string{
	"calculus":     "Vector Calculus",
	"physics":      "Physics I",
	"differential": "Differential Equations",
	"digital":      "Digital Computing",
	"oop":          "Object-Oriented Programming",
}

// SubjectLabel names a custom mission subject. Unknown subjects are shown as sent.
func SubjectLabel(subject string) string {
	if label, ok := subjectLabels[subject]; ok {
		return label
	}
	return subject
}

var difficultyBadges = map[string]Badge{
	"easy":   {Text: "Easy", Color: colorGreen},
	"medium": {Text: "Medium", Color: colorLow},
	"hard":   {Text: "Hard", Color: colorRed},
}

// DifficultyBadge labels a custom mission difficulty.
func DifficultyBadge(difficulty string) Badge {
	if badge, ok := difficultyBadges[difficulty]; ok {
		return badge
	}
	return Badge{Text: difficulty, Color: colorDefault}
}

// ScoreColor bands a quality score: 90 and up is green, 70 and up is yellow, the rest red.
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 90:
		return colorGreen
	case score >= 70:
		return colorLow
	default:
		return colorRed
	}
}

// RankMedal decorates the top three leaderboard positions.
func RankMedal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}
