package viewstate

import (
	"context"
	"slices"

	"github.com/noah-isme/codemission/internal/models"
)

// AnalysisSource reads and deletes analyses.
type AnalysisSource interface {
	Get(ctx context.Context, id uint) (models.AnalysisResult, error)
	List(ctx context.Context) ([]models.AnalysisResult, error)
	ByStudent(ctx context.Context, student string) ([]models.AnalysisResult, error)
	DemoData(ctx context.Context) ([]models.AnalysisResult, error)
	MyAnalyses(ctx context.Context, limit int) ([]models.AnalysisResult, error)
	Delete(ctx context.Context, id uint) error
}

// AnalysisState holds an analysis list and the analysis currently on screen.
type AnalysisState struct {
	source   AnalysisSource
	analyses Resource[[]models.AnalysisResult]
	current  Resource[*models.AnalysisResult]
	deletion Resource[struct{}]
}

// NewAnalysisState wraps source.
func NewAnalysisState(source AnalysisSource) *AnalysisState {
	return &AnalysisState{source: source}
}

// FetchByID loads one analysis as the current one.
func (a *AnalysisState) FetchByID(ctx context.Context, id uint) error {
	_, err := a.current.Load(ctx, func(ctx context.Context) (*models.AnalysisResult, error) {
		analysis, err := a.source.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &analysis, nil
	})
	return err
}

// FetchMine loads the caller's analyses.
func (a *AnalysisState) FetchMine(ctx context.Context, limit int) error {
	return a.loadList(ctx, func(ctx context.Context) ([]models.AnalysisResult, error) {
		return a.source.MyAnalyses(ctx, limit)
	})
}

// FetchAll loads every analysis.
func (a *AnalysisState) FetchAll(ctx context.Context) error {
	return a.loadList(ctx, a.source.List)
}

// FetchByStudent loads the analyses submitted under a student name.
func (a *AnalysisState) FetchByStudent(ctx context.Context, student string) error {
	return a.loadList(ctx, func(ctx context.Context) ([]models.AnalysisResult, error) {
		return a.source.ByStudent(ctx, student)
	})
}

// FetchDemo loads the sample analyses.
func (a *AnalysisState) FetchDemo(ctx context.Context) error {
	return a.loadList(ctx, a.source.DemoData)
}

func (a *AnalysisState) loadList(ctx context.Context, fetch func(context.Context) ([]models.AnalysisResult, error)) error {
	_, err := a.analyses.Load(ctx, fetch)
	return err
}

// Delete removes an analysis on the backend, then drops it from the local list and clears it as the
// current analysis.
func (a *AnalysisState) Delete(ctx context.Context, id uint) error {
	_, err := a.deletion.Load(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.source.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	a.analyses.Update(func(list []models.AnalysisResult) []models.AnalysisResult {
		return slices.DeleteFunc(slices.Clone(list), func(item models.AnalysisResult) bool {
			return item.ID == id
		})
	})
	a.current.Update(func(current *models.AnalysisResult) *models.AnalysisResult {
		if current != nil && current.ID == id {
			return nil
		}
		return current
	})
	return nil
}

// SetCurrent replaces the current analysis without a fetch.
func (a *AnalysisState) SetCurrent(analysis *models.AnalysisResult) {
	a.current.Set(analysis)
}

// Analyses returns the loaded list.
func (a *AnalysisState) Analyses() []models.AnalysisResult {
	return a.analyses.Snapshot().Data
}

// Current returns the analysis on screen, or nil.
func (a *AnalysisState) Current() *models.AnalysisResult {
	return a.current.Snapshot().Data
}

// Loading reports whether any fetch or deletion is running.
func (a *AnalysisState) Loading() bool {
	return a.analyses.Snapshot().Loading() || a.current.Snapshot().Loading() || a.deletion.Snapshot().Loading()
}

// Error returns the most relevant failure message, or "".
func (a *AnalysisState) Error() string {
	for _, message := range []string{
		a.deletion.Snapshot().ErrorMessage(),
		a.current.Snapshot().ErrorMessage(),
		a.analyses.Snapshot().ErrorMessage(),
	} {
		if message != "" {
			return message
		}
	}
	return ""
}

// ClearError drops every recorded failure.
func (a *AnalysisState) ClearError() {
	a.analyses.ClearError()
	a.current.ClearError()
	a.deletion.ClearError()
}

// SummarySource reads per-student summaries.
type SummarySource interface {
	StudentSummary(ctx context.Context, student string) (models.StudentSummary, error)
	MySummary(ctx context.Context) (models.StudentSummary, error)
}

// SummaryState holds a student summary.
type SummaryState struct {
	source  SummarySource
	summary Resource[*models.StudentSummary]
}

// NewSummaryState wraps source.
func NewSummaryState(source SummarySource) *SummaryState {
	return &SummaryState{source: source}
}

// Fetch loads the summary of a named student.
func (s *SummaryState) Fetch(ctx context.Context, student string) error {
	return s.load(ctx, func(ctx context.Context) (models.StudentSummary, error) {
		return s.source.StudentSummary(ctx, student)
	})
}

// FetchMine loads the caller's summary.
func (s *SummaryState) FetchMine(ctx context.Context) error {
	return s.load(ctx, s.source.MySummary)
}

func (s *SummaryState) load(ctx context.Context, fetch func(context.Context) (models.StudentSummary, error)) error {
	_, err := s.summary.Load(ctx, func(ctx context.Context) (*models.StudentSummary, error) {
		summary, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return &summary, nil
	})
	return err
}

// Snapshot returns the current state.
func (s *SummaryState) Snapshot() Snapshot[*models.StudentSummary] {
	return s.summary.Snapshot()
}

// HealthChecker probes the backend.
type HealthChecker interface {
	Health(ctx context.Context) (models.HealthStatus, error)
}

// HealthState remembers whether the backend answered its health probe.
type HealthState struct {
	checker HealthChecker
	health  Resource[bool]
}

// NewHealthState wraps checker.
func NewHealthState(checker HealthChecker) *HealthState {
	return &HealthState{checker: checker}
}

// Check probes the backend. Any failure counts as unhealthy.
func (h *HealthState) Check(ctx context.Context) bool {
	healthy, _ := h.health.Load(ctx, func(ctx context.Context) (bool, error) {
		if _, err := h.checker.Health(ctx); err != nil {
			return false, err
		}
		return true, nil
	})
	return healthy
}

// Healthy returns nil before the first probe settles.
func (h *HealthState) Healthy() *bool {
	snapshot := h.health.Snapshot()
	switch snapshot.Status {
	case StatusSuccess:
		healthy := snapshot.Data
		return &healthy
	case StatusError:
		healthy := false
		return &healthy
	default:
		return nil
	}
}

// Snapshot returns the current state.
func (h *HealthState) Snapshot() Snapshot[bool] {
	return h.health.Snapshot()
}
