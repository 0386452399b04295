package viewstate

import (
	"context"
	"slices"

	"github.com/sourcegraph/conc"

	"github.com/noah-isme/codemission/internal/models"
)

// MissionSource reads and updates missions.
type MissionSource interface {
	Mine(ctx context.Context) ([]models.Mission, error)
	ByAnalysis(ctx context.Context, analysisID uint) ([]models.Mission, error)
	Stats(ctx context.Context) (models.MissionStats, error)
	MarkFixed(ctx context.Context, id uint) (models.Mission, error)
	MarkSkipped(ctx context.Context, id uint) (models.Mission, error)
}

// MissionBoard is the mission list split by status.
type MissionBoard struct {
	Missions  []models.Mission
	Pending   []models.Mission
	Completed []models.Mission
	Stats     *models.MissionStats
}

// MissionsState holds the missions of one analysis, or of the caller when no analysis is set.
type MissionsState struct {
	source     MissionSource
	analysisID uint
	board      Resource[MissionBoard]
}

// NewMissionsState wraps source. A zero analysisID scopes the state to the caller's missions.
func NewMissionsState(source MissionSource, analysisID uint) *MissionsState {
	return &MissionsState{source: source, analysisID: analysisID}
}

// Refresh reloads the board. Without an analysis the mission list and stats are fetched together and
// both must succeed.
func (m *MissionsState) Refresh(ctx context.Context) error {
	_, err := m.board.Load(ctx, func(ctx context.Context) (MissionBoard, error) {
		if m.analysisID != 0 {
			missions, err := m.source.ByAnalysis(ctx, m.analysisID)
			if err != nil {
				return MissionBoard{}, err
			}
			return splitMissions(missions, nil), nil
		}

		var (
			missions   []models.Mission
			stats      models.MissionStats
			missionErr error
			statsErr   error
		)
		var wg conc.WaitGroup
		wg.Go(func() { missions, missionErr = m.source.Mine(ctx) })
		wg.Go(func() { stats, statsErr = m.source.Stats(ctx) })
		wg.Wait()

		if missionErr != nil {
			return MissionBoard{}, missionErr
		}
		if statsErr != nil {
			return MissionBoard{}, statsErr
		}
		return splitMissions(missions, &stats), nil
	})
	return err
}

// Complete marks a mission fixed and moves the server copy from pending to completed.
func (m *MissionsState) Complete(ctx context.Context, id uint) (models.Mission, error) {
	updated, err := m.source.MarkFixed(ctx, id)
	if err != nil {
		m.board.Fail(err)
		return models.Mission{}, err
	}

	m.board.Update(func(board MissionBoard) MissionBoard {
		board.Missions = replaceMission(board.Missions, updated)
		board.Pending = withoutMission(board.Pending, id)
		board.Completed = append(slices.Clone(board.Completed), updated)
		return board
	})
	return updated, nil
}

// Skip marks a mission skipped and drops it from pending.
func (m *MissionsState) Skip(ctx context.Context, id uint) (models.Mission, error) {
	updated, err := m.source.MarkSkipped(ctx, id)
	if err != nil {
		m.board.Fail(err)
		return models.Mission{}, err
	}

	m.board.Update(func(board MissionBoard) MissionBoard {
		board.Missions = replaceMission(board.Missions, updated)
		board.Pending = withoutMission(board.Pending, id)
		return board
	})
	return updated, nil
}

// Snapshot returns the current state.
func (m *MissionsState) Snapshot() Snapshot[MissionBoard] {
	return m.board.Snapshot()
}

func splitMissions(missions []models.Mission, stats *models.MissionStats) MissionBoard {
	board := MissionBoard{
		Missions:  missions,
		Pending:   []models.Mission{},
		Completed: []models.Mission{},
		Stats:     stats,
	}
	for _, mission := range missions {
		switch mission.Status {
		case models.MissionStatusPending:
			board.Pending = append(board.Pending, mission)
		case models.MissionStatusFixed:
			board.Completed = append(board.Completed, mission)
		}
	}
	return board
}

func replaceMission(missions []models.Mission, updated models.Mission) []models.Mission {
	out := slices.Clone(missions)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

func withoutMission(missions []models.Mission, id uint) []models.Mission {
	return slices.DeleteFunc(slices.Clone(missions), func(mission models.Mission) bool {
		return mission.ID == id
	})
}
