package models

import "time"

// CustomMissionSubjects lists the subjects offered by the custom mission catalog.
var CustomMissionSubjects = []string{"calculus", "physics", "differential", "digital", "oop"}

// CustomMissionDifficulties lists the difficulty levels of the catalog.
var CustomMissionDifficulties = []string{"easy", "medium", "hard"}

// SubmissionStatus is the verdict on a custom mission submission.
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusApproved  SubmissionStatus = "approved"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
	SubmissionStatusReviewing SubmissionStatus = "reviewing"
	SubmissionStatusError     SubmissionStatus = "error"
)

// CustomMission is a subject-scoped coding exercise graded by backend tests.
type CustomMission struct {
	ID              uint                `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Subject         string              `json:"subject"`
	Difficulty      string              `json:"difficulty"`
	BasePoints      int                 `json:"basePoints"`
	PointsPerTest   int                 `json:"pointsPerTest"`
	RequiredClasses []string            `json:"requiredClasses,omitempty"`
	RequiredMethods []string            `json:"requiredMethods,omitempty"`
	Tests           []CustomMissionTest `json:"tests,omitempty"`
	CreatedAt       *time.Time          `json:"createdAt,omitempty"`
}

// CustomMissionTest names one backend test case.
type CustomMissionTest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MaxPoints is the base reward plus the per-test reward for every test.
func (m CustomMission) MaxPoints() int {
	return m.BasePoints + m.PointsPerTest*len(m.Tests)
}

// MissionSubmission is a graded upload for a custom mission.
type MissionSubmission struct {
	ID              uint             `json:"id"`
	CustomMissionID uint             `json:"customMissionId"`
	UserID          uint             `json:"userId,omitempty"`
	Status          SubmissionStatus `json:"status"`
	PointsAwarded   int              `json:"pointsAwarded"`
	TestsPassed     int              `json:"testsPassed"`
	TestsFailed     int              `json:"testsFailed"`
	Feedback        string           `json:"feedback,omitempty"`
	ErrorMessage    string           `json:"errorMessage,omitempty"`
	SubmittedAt     *time.Time       `json:"submittedAt,omitempty"`
}
