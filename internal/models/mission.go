package models

import (
	"encoding/json"
	"time"
)

// MissionStatus tracks whether a remediation task was handled.
type MissionStatus string

const (
	MissionStatusPending MissionStatus = "pending"
	MissionStatusFixed   MissionStatus = "fixed"
	MissionStatusSkipped MissionStatus = "skipped"
)

// Severity grades a finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Mission is a remediation task derived from one analysis finding.
type Mission struct {
	ID            uint            `json:"id"`
	AnalysisRunID uint            `json:"analysisRunId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	FilePath      string          `json:"filePath,omitempty"`
	LineStart     *int            `json:"lineStart,omitempty"`
	LineEnd       *int            `json:"lineEnd,omitempty"`
	Severity      Severity        `json:"severity"`
	Status        MissionStatus   `json:"status"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	FixedAt       *time.Time      `json:"fixedAt,omitempty"`
}

// SeverityCounts counts missions per severity.
type SeverityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// MissionStats summarises a user's missions.
type MissionStats struct {
	Total      int             `json:"total"`
	Pending    int             `json:"pending"`
	Fixed      int             `json:"fixed"`
	Skipped    int             `json:"skipped"`
	ByUserID   map[string]int  `json:"byUserId,omitempty"`
	BySeverity *SeverityCounts `json:"bySeverity,omitempty"`
}
