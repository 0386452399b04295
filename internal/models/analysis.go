package models

import (
	"encoding/json"
	"time"
)

// AnalysisStatus is the backend lifecycle of an analysis job.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// AnalysisResult is one static-analysis run over an uploaded or cloned project.
type AnalysisResult struct {
	ID                   uint              `json:"id"`
	Student              string            `json:"student"`
	OriginalFileName     string            `json:"originalFileName,omitempty"`
	FileSize             int64             `json:"fileSize,omitempty"`
	Status               AnalysisStatus    `json:"status"`
	Findings             *AnalysisFindings `json:"findings,omitempty"`
	TotalIssues          int               `json:"totalIssues"`
	HighSeverityIssues   int               `json:"highSeverityIssues"`
	MediumSeverityIssues int               `json:"mediumSeverityIssues"`
	LowSeverityIssues    int               `json:"lowSeverityIssues"`
	QualityScore         float64           `json:"qualityScore"`
	FileStats            *FileStats        `json:"fileStats,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty"`
	Message              string            `json:"message,omitempty"`
}

// AnalysisFindings groups raw tool output by tool name.
type AnalysisFindings struct {
	Summary FindingsSummary       `json:"summary"`
	Results map[string]ToolResult `json:"results"`
}

// FindingsSummary counts how the analysis tools fared.
type FindingsSummary struct {
	ToolsExecuted   int `json:"toolsExecuted"`
	SuccessfulTools int `json:"successfulTools"`
	FailedTools     int `json:"failedTools"`
}

// ToolResult is the output of a single analysis tool. Individual findings are tool specific and kept verbatim.
type ToolResult struct {
	Success       bool              `json:"success"`
	FindingsCount int               `json:"findingsCount"`
	Findings      []json.RawMessage `json:"findings"`
	Error         string            `json:"error,omitempty"`
}

// FileStats describes what was found inside the archive.
type FileStats struct {
	TotalFiles  int `json:"totalFiles"`
	JavaFiles   int `json:"javaFiles"`
	JSFiles     int `json:"jsFiles"`
	PythonFiles int `json:"pythonFiles"`
	LinesOfCode int `json:"linesOfCode"`
}

// StudentSummary aggregates a student's analyses.
type StudentSummary struct {
	TotalAnalyses        int              `json:"totalAnalyses"`
	CompletedAnalyses    int              `json:"completedAnalyses"`
	FailedAnalyses       int              `json:"failedAnalyses"`
	PendingAnalyses      int              `json:"pendingAnalyses"`
	AverageQualityScore  float64          `json:"averageQualityScore"`
	AverageScore         float64          `json:"averageScore"`
	TotalIssues          int              `json:"totalIssues"`
	HighSeverityIssues   int              `json:"highSeverityIssues"`
	MediumSeverityIssues int              `json:"mediumSeverityIssues"`
	LowSeverityIssues    int              `json:"lowSeverityIssues"`
	RecentAnalyses       []AnalysisResult `json:"recentAnalyses"`
}

// AnalysisStats are backend-wide analysis counters.
type AnalysisStats struct {
	TotalAnalyses     int     `json:"totalAnalyses"`
	CompletedAnalyses int     `json:"completedAnalyses"`
	FailedAnalyses    int     `json:"failedAnalyses"`
	AverageScore      float64 `json:"averageScore"`
}

// HealthStatus is the payload of the analysis health probe.
type HealthStatus struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Endpoints []string `json:"endpoints"`
}

// ReanalysisResult is what the backend returns after corrected code was resubmitted. Whether the
// upload counted as the same project or started a new analysis is decided by the backend.
type ReanalysisResult struct {
	Analysis          *AnalysisResult `json:"analysis,omitempty"`
	PreviousAnalysis  *AnalysisResult `json:"previousAnalysis,omitempty"`
	IsNewAnalysis     bool            `json:"isNewAnalysis"`
	MissionsFixed     int             `json:"missionsFixed"`
	MissionsRemaining int             `json:"missionsRemaining"`
	NewMissions       int             `json:"newMissions"`
	Message           string          `json:"message,omitempty"`
}
