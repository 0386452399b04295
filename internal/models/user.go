package models

import "time"

// User is the authenticated identity.
type User struct {
	ID               uint      `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	ProfilePicture   string    `json:"profilePicture,omitempty"`
	StudentID        string    `json:"studentId,omitempty"`
	University       string    `json:"university,omitempty"`
	Career           string    `json:"career,omitempty"`
	EmailVerified    bool      `json:"emailVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	TotalAnalyses    *int      `json:"totalAnalyses,omitempty"`
	AverageScore     *float64  `json:"averageScore,omitempty"`
	TotalIssuesFound *int      `json:"totalIssuesFound,omitempty"`
}

// UserProfile is the user with their analysis totals.
type UserProfile struct {
	User
	RecentAnalyses []AnalysisResult `json:"recentAnalyses,omitempty"`
}
