package viewstate

import (
	"context"

	"github.com/noah-isme/codemission/internal/dto"
)

// DashboardSource assembles the dashboard.
type DashboardSource interface {
	Dashboard(ctx context.Context) (dto.Dashboard, error)
}

// DashboardState holds the authenticated landing view.
type DashboardState struct {
	source    DashboardSource
	dashboard Resource[dto.Dashboard]
}

// NewDashboardState wraps source.
func NewDashboardState(source DashboardSource) *DashboardState {
	return &DashboardState{source: source}
}

// Refresh reloads the dashboard.
func (d *DashboardState) Refresh(ctx context.Context) error {
	_, err := d.dashboard.Load(ctx, d.source.Dashboard)
	return err
}

// Snapshot returns the current state.
func (d *DashboardState) Snapshot() Snapshot[dto.Dashboard] {
	return d.dashboard.Snapshot()
}
