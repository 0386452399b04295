package view

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/utils"
)

var (
	sanitizer = bluemonday.StrictPolicy()

	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorDefault)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDefault).
			Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// Clean strips markup from backend free text and decodes entities for terminal output.
func Clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(text)))
}

// RenderBadge renders a badge in its color.
func RenderBadge(b Badge) string {
	return lipgloss.NewStyle().Foreground(b.Color).Bold(true).Render("[" + b.Text + "]")
}

// ErrorBanner renders a failure message.
func ErrorBanner(message string) string {
	return errorStyle.Render("✗ " + Clean(message))
}

// SuccessBanner renders a confirmation.
func SuccessBanner(message string) string {
	return successStyle.Render("✓ " + Clean(message))
}

func score(value float64) string {
	return lipgloss.NewStyle().Foreground(ScoreColor(value)).Bold(true).Render(fmt.Sprintf("%.1f", value))
}

func severityCount(severity string, count int) string {
	return lipgloss.NewStyle().Foreground(SeverityColor(severity)).Render(fmt.Sprintf("%s %s %d", SeverityIcon(severity), strings.ToLower(severity), count))
}

// AnalysisCard is the one-block summary of an analysis in a list.
func AnalysisCard(a models.AnalysisResult, now time.Time) string {
	name := a.OriginalFileName
	if name == "" {
		name = fmt.Sprintf("Analysis #%d", a.ID)
	}

	lines := []string{
		fmt.Sprintf("%s %s  %s", titleStyle.Render(Clean(name)), RenderBadge(AnalysisStatusBadge(a.Status)), mutedStyle.Render(fmt.Sprintf("#%d", a.ID))),
		fmt.Sprintf("Score %s   Issues %d", score(a.QualityScore), a.TotalIssues),
		strings.Join([]string{
			severityCount("HIGH", a.HighSeverityIssues),
			severityCount("MEDIUM", a.MediumSeverityIssues),
			severityCount("LOW", a.LowSeverityIssues),
		}, "  "),
	}
	meta := []string{utils.TimeAgo(a.CreatedAt, now)}
	if a.Student != "" {
		meta = append([]string{Clean(a.Student)}, meta...)
	}
	if a.FileSize > 0 {
		meta = append(meta, utils.FormatFileSize(a.FileSize))
	}
	lines = append(lines, mutedStyle.Render(strings.Join(meta, " · ")))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// AnalysisDetail renders an analysis with its findings grouped per tool.
func AnalysisDetail(a models.AnalysisResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(AnalysisCard(a, now))
	b.WriteString("\n")

	if a.Message != "" {
		b.WriteString(mutedStyle.Render(Clean(a.Message)))
		b.WriteString("\n")
	}
	if a.CompletedAt != nil {
		fmt.Fprintf(&b, "Duration %s\n", utils.FormatDuration(a.CreatedAt, *a.CompletedAt))
	}
	if stats := a.FileStats; stats != nil {
		fmt.Fprintf(&b, "Files %d (java %d, js %d, python %d) · %d lines\n",
			stats.TotalFiles, stats.JavaFiles, stats.JSFiles, stats.PythonFiles, stats.LinesOfCode)
	}

	if a.Findings == nil || len(a.Findings.Results) == 0 {
		return b.String()
	}

	summary := a.Findings.Summary
	fmt.Fprintf(&b, "\n%s  %d run · %d ok · %d failed\n", headerStyle.Render("Tools"),
		summary.ToolsExecuted, summary.SuccessfulTools, summary.FailedTools)

	tools := make([]string, 0, len(a.Findings.Results))
	for tool := range a.Findings.Results {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	for _, tool := range tools {
		result := a.Findings.Results[tool]
		switch {
		case !result.Success:
			fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render(tool), errorStyle.Render(Clean(result.Error)))
		default:
			fmt.Fprintf(&b, "  %s %d findings\n", titleStyle.Render(tool), result.FindingsCount)
		}
	}
	return b.String()
}

// AnalysisList renders cards one after another, or a placeholder when empty.
func AnalysisList(analyses []models.AnalysisResult, now time.Time) string {
	if len(analyses) == 0 {
		return mutedStyle.Render("No analyses yet.")
	}
	cards := make([]string, len(analyses))
	for i, a := range analyses {
		cards[i] = AnalysisCard(a, now)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// StudentSummary renders per-student totals.
func StudentSummary(s models.StudentSummary) string {
	lines := []string{
		headerStyle.Render("Summary"),
		fmt.Sprintf("Analyses %d (completed %d, failed %d, pending %d)", s.TotalAnalyses, s.CompletedAnalyses, s.FailedAnalyses, s.PendingAnalyses),
		fmt.Sprintf("Average score %s", score(summaryAverage(s))),
		fmt.Sprintf("Issues %d  %s  %s  %s", s.TotalIssues,
			severityCount("HIGH", s.HighSeverityIssues),
			severityCount("MEDIUM", s.MediumSeverityIssues),
			severityCount("LOW", s.LowSeverityIssues)),
	}
	return strings.Join(lines, "\n")
}

func summaryAverage(s models.StudentSummary) float64 {
	if s.AverageScore != 0 {
		return s.AverageScore
	}
	return s.AverageQualityScore
}

// Reanalysis reports the outcome of resubmitting corrected code, as decided by the backend.
func Reanalysis(r models.ReanalysisResult) string {
	var b strings.Builder
	if r.IsNewAnalysis {
		b.WriteString(titleStyle.Render("A new analysis was created for this project."))
	} else {
		b.WriteString(titleStyle.Render("Project re-analyzed."))
	}
	fmt.Fprintf(&b, "\nMissions fixed %d · remaining %d · new %d", r.MissionsFixed, r.MissionsRemaining, r.NewMissions)
	if r.Analysis != nil {
		fmt.Fprintf(&b, "\nScore %s", score(r.Analysis.QualityScore))
		if r.PreviousAnalysis != nil {
			fmt.Fprintf(&b, " (was %s)", score(r.PreviousAnalysis.QualityScore))
		}
	}
	if r.Message != "" {
		b.WriteString("\n" + mutedStyle.Render(Clean(r.Message)))
	}
	return b.String()
}

// MissionCard renders one remediation mission.
func MissionCard(m models.Mission) string {
	severity := strings.ToUpper(string(m.Severity))
	lines := []string{
		fmt.Sprintf("%s %s %s", SeverityIcon(severity), titleStyle.Render(Clean(m.Title)), RenderBadge(MissionStatusBadge(m.Status))),
	}
	if m.Description != "" {
		lines = append(lines, Clean(m.Description))
	}
	if m.FilePath != "" {
		location := Clean(m.FilePath)
		if m.LineStart != nil {
			location += fmt.Sprintf(":%d", *m.LineStart)
			if m.LineEnd != nil && *m.LineEnd != *m.LineStart {
				location += fmt.Sprintf("-%d", *m.LineEnd)
			}
		}
		lines = append(lines, mutedStyle.Render(location))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("#%d · analysis #%d", m.ID, m.AnalysisRunID)))
	return cardStyle.BorderForeground(SeverityColor(severity)).Render(strings.Join(lines, "\n"))
}

// MissionBoard renders the pending missions followed by the completed ones.
func MissionBoard(pending, completed []models.Mission, stats *models.MissionStats) string {
	var sections []string
	if stats != nil {
		sections = append(sections, fmt.Sprintf("Total %d · pending %d · fixed %d · skipped %d", stats.Total, stats.Pending, stats.Fixed, stats.Skipped))
	}
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Pending (%d)", len(pending))))
	if len(pending) == 0 {
		sections = append(sections, mutedStyle.Render("Nothing left to fix."))
	}
	for _, m := range pending {
		sections = append(sections, MissionCard(m))
	}
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Completed (%d)", len(completed))))
	for _, m := range completed {
		sections = append(sections, MissionCard(m))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// CustomMissionCard renders a catalog entry, with the caller's submission when there is one.
func CustomMissionCard(m models.CustomMission, submission *models.MissionSubmission) string {
	lines := []string{
		fmt.Sprintf("%s %s", titleStyle.Render(Clean(m.Title)), RenderBadge(DifficultyBadge(m.Difficulty))),
		mutedStyle.Render(fmt.Sprintf("#%d · %s · up to %d points", m.ID, SubjectLabel(m.Subject), m.MaxPoints())),
	}
	if m.Description != "" {
		lines = append(lines, Clean(m.Description))
	}
	if len(m.RequiredClasses) > 0 {
		lines = append(lines, "Classes: "+strings.Join(m.RequiredClasses, ", "))
	}
	if len(m.RequiredMethods) > 0 {
		lines = append(lines, "Methods: "+strings.Join(m.RequiredMethods, ", "))
	}
	if submission != nil {
		lines = append(lines, Submission(*submission))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// Submission renders the grading outcome of a custom mission upload.
func Submission(s models.MissionSubmission) string {
	line := fmt.Sprintf("%s %d points · tests %d passed, %d failed",
		RenderBadge(SubmissionStatusBadge(s.Status)), s.PointsAwarded, s.TestsPassed, s.TestsFailed)
	switch {
	case s.Status == models.SubmissionStatusError && s.ErrorMessage != "":
		line += "\n" + errorStyle.Render("Error: "+Clean(s.ErrorMessage))
	case s.Feedback != "":
		line += "\n" + mutedStyle.Render(Clean(s.Feedback))
	}
	return line
}

// AchievementCard renders a badge, dimmed while locked.
func AchievementCard(a models.Achievement) string {
	style := cardStyle
	status := "Locked"
	if a.IsUnlocked {
		style = style.BorderForeground(colorPurple)
		status = "Unlocked"
		if a.UnlockedAt != nil {
			status += " " + a.UnlockedAt.Format("2006-01-02")
		}
	} else {
		style = style.Faint(true)
	}

	lines := []string{
		fmt.Sprintf("%s %s", a.Icon, titleStyle.Render(Clean(a.Name))),
		Clean(a.Description),
		mutedStyle.Render(fmt.Sprintf("%s · %d points · %s", CategoryLabel(a.Category), a.PointsReward, status)),
	}
	if !a.IsUnlocked && a.ProgressCurrent != nil && a.ProgressTarget != nil && *a.ProgressTarget > 0 {
		lines = append(lines, fmt.Sprintf("Progress %d/%d", *a.ProgressCurrent, *a.ProgressTarget))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// AchievementPanel renders unlocked badges before locked ones, under the unlock totals.
func AchievementPanel(stats models.AchievementStats, unlocked, locked []models.Achievement) string {
	sections := []string{
		fmt.Sprintf("%s %d/%d unlocked · %.0f%% · %d points", headerStyle.Render("Achievements"),
			stats.UnlockedCount, stats.TotalAchievements, stats.CompletionPercentage, stats.TotalPoints),
	}
	for _, a := range unlocked {
		sections = append(sections, AchievementCard(a))
	}
	for _, a := range locked {
		sections = append(sections, AchievementCard(a))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RankingTable renders leaderboard rows in the order given.
func RankingTable(rows []models.RankingUser) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No ranked students yet.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-24s %-22s %8s %8s", "Rank", "Student", "University", "Analyses", "Score")))
	for i, row := range rows {
		rank := row.Rank
		if rank == 0 {
			rank = i + 1
		}
		fmt.Fprintf(&b, "\n%-6s %-24s %-22s %8d %8s",
			strings.TrimSpace(fmt.Sprintf("%d %s", rank, RankMedal(rank))),
			truncate(utils.FormatDisplayName(row.Name), 24),
			truncate(Clean(row.University), 22),
			row.TotalAnalyses,
			score(row.AverageScore))
	}
	return b.String()
}

// GlobalStats renders the platform-wide leaderboard figures.
func GlobalStats(s models.GlobalStats) string {
	return strings.Join([]string{
		headerStyle.Render("Platform"),
		fmt.Sprintf("Students %d · analyses %d · issues %d", s.TotalUsers, s.TotalAnalyses, s.TotalIssuesFound),
		fmt.Sprintf("Average quality %s", score(s.AverageQualityScore)),
		fmt.Sprintf("Most active %s (%d analyses)", utils.FormatDisplayName(s.MostActiveUser.Name), s.MostActiveUser.AnalysesCount),
		fmt.Sprintf("Best quality %s (%s)", utils.FormatDisplayName(s.BestQualityUser.Name), score(s.BestQualityUser.QualityScore)),
	}, "\n")
}

// Position renders the caller's place on the leaderboard.
func Position(p models.MyPosition) string {
	if p.Position <= 0 {
		return mutedStyle.Render("Not ranked yet. Upload a project to join the leaderboard.")
	}
	line := fmt.Sprintf("%s #%d of %d · top %d%%", RankMedal(p.Position), p.Position, p.TotalUsers, p.Percentile())
	if p.UserRank != nil {
		line += fmt.Sprintf(" · score %s", score(p.UserRank.AverageScore))
	}
	return strings.TrimSpace(line)
}

// Dashboard renders the authenticated landing view.
func Dashboard(user *models.User, d dto.Dashboard, now time.Time) string {
	sections := []string{}
	if user != nil {
		sections = append(sections, titleStyle.Render(fmt.Sprintf("Welcome, %s", utils.FormatDisplayName(user.Name))))
	}

	s := d.Stats
	sections = append(sections,
		headerStyle.Render("Overview"),
		fmt.Sprintf("Analyses %d · completed %d · in progress %d · failed %d", s.TotalAnalyses, s.CompletedAnalyses, s.InProgressAnalyses, s.ErrorAnalyses),
		fmt.Sprintf("Average score %s · issues %d  %s  %s  %s", score(s.AverageScore), s.TotalIssues,
			severityCount("HIGH", s.HighSeverityIssues),
			severityCount("MEDIUM", s.MediumSeverityIssues),
			severityCount("LOW", s.LowSeverityIssues)),
	)

	if r := d.Ranking; r != nil {
		sections = append(sections, fmt.Sprintf("Ranking #%d of %d · top %d%%", r.Position, r.TotalUsers, r.Percentile))
	}
	if a := d.Achievements; a != nil {
		sections = append(sections, fmt.Sprintf("Achievements %d/%d · %d points", a.UnlockedCount, a.TotalAchievements, a.TotalPoints))
	}

	sections = append(sections, headerStyle.Render("Recent activity"), AnalysisList(d.RecentActivity, now))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Overview renders the public landing view.
func Overview(o dto.Overview, now time.Time) string {
	health := SuccessBanner(o.Health.Message)
	if !o.Health.Success {
		health = ErrorBanner(o.Health.Message)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		health,
		fmt.Sprintf("Analyses %d · completed %d · failed %d · average %s",
			o.Stats.TotalAnalyses, o.Stats.CompletedAnalyses, o.Stats.FailedAnalyses, score(o.Stats.AverageScore)),
		headerStyle.Render("Sample analyses"),
		AnalysisList(o.RecentAnalyses, now),
	)
}

// Profile renders the signed-in user.
func Profile(u models.User) string {
	lines := []string{
		fmt.Sprintf("%s %s", lipgloss.NewStyle().Bold(true).Foreground(colorPurple).Render("("+utils.NameInitial(u.Name)+")"), titleStyle.Render(Clean(u.Name))),
		u.Email,
	}
	for _, field := range []struct{ label, value string }{
		{"Student ID", u.StudentID},
		{"University", u.University},
		{"Career", u.Career},
	} {
		if field.value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", field.label, Clean(field.value)))
		}
	}
	if u.TotalAnalyses != nil {
		lines = append(lines, fmt.Sprintf("Analyses: %d", *u.TotalAnalyses))
	}
	if u.AverageScore != nil {
		lines = append(lines, fmt.Sprintf("Average score: %s", score(*u.AverageScore)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
