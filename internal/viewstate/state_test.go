package viewstate

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
)

type fakeMissions struct {
	missions   []models.Mission
	stats      models.MissionStats
	statsErr   error
	byAnalysis map[uint][]models.Mission
	markErr    error
}

func (f *fakeMissions) Mine(context.Context) ([]models.Mission, error) { return f.missions, nil }

func (f *fakeMissions) ByAnalysis(_ context.Context, id uint) ([]models.Mission, error) {
	return f.byAnalysis[id], nil
}

func (f *fakeMissions) Stats(context.Context) (models.MissionStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeMissions) MarkFixed(_ context.Context, id uint) (models.Mission, error) {
	return f.mark(id, models.MissionStatusFixed)
}

func (f *fakeMissions) MarkSkipped(_ context.Context, id uint) (models.Mission, error) {
	return f.mark(id, models.MissionStatusSkipped)
}

func (f *fakeMissions) mark(id uint, status models.MissionStatus) (models.Mission, error) {
	if f.markErr != nil {
		return models.Mission{}, f.markErr
	}
	return models.Mission{ID: id, Title: "updated", Status: status}, nil
}

func sampleMissions() []models.Mission {
	return []models.Mission{
		{ID: 1, Title: "sql injection", Status: models.MissionStatusPending},
		{ID: 2, Title: "unused import", Status: models.MissionStatusPending},
		{ID: 3, Title: "hardcoded key", Status: models.MissionStatusFixed},
		{ID: 4, Title: "long method", Status: models.MissionStatusSkipped},
	}
}

func TestMissionsStateSplitsByStatus(t *testing.T) {
	source := &fakeMissions{missions: sampleMissions(), stats: models.MissionStats{Total: 4, Pending: 2}}
	state := NewMissionsState(source, 0)

	require.NoError(t, state.Refresh(context.Background()))

	board := state.Snapshot().Data
	assert.Len(t, board.Missions, 4)
	assert.Len(t, board.Pending, 2)
	assert.Len(t, board.Completed, 1)
	require.NotNil(t, board.Stats)
	assert.Equal(t, 2, board.Stats.Pending)
}

func TestMissionsStateNeedsStats(t *testing.T) {
	source := &fakeMissions{missions: sampleMissions(), statsErr: api.NewStatusError(http.StatusInternalServerError, "")}
	state := NewMissionsState(source, 0)

	require.Error(t, state.Refresh(context.Background()))
	snapshot := state.Snapshot()
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Equal(t, "Internal server error. Try again later.", snapshot.ErrorMessage())
}

func TestMissionsStateByAnalysisSkipsStats(t *testing.T) {
	source := &fakeMissions{
		statsErr:   errors.New("stats should not be read"),
		byAnalysis: map[uint][]models.Mission{9: sampleMissions()[:2]},
	}
	state := NewMissionsState(source, 9)

	require.NoError(t, state.Refresh(context.Background()))
	board := state.Snapshot().Data
	assert.Len(t, board.Pending, 2)
	assert.Nil(t, board.Stats)
}

func TestMissionsStateCompleteAndSkip(t *testing.T) {
	source := &fakeMissions{missions: sampleMissions()}
	state := NewMissionsState(source, 0)
	require.NoError(t, state.Refresh(context.Background()))

	fixed, err := state.Complete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MissionStatusFixed, fixed.Status)

	_, err = state.Skip(context.Background(), 2)
	require.NoError(t, err)

	board := state.Snapshot().Data
	assert.Empty(t, board.Pending)
	require.Len(t, board.Completed, 2)
	assert.Equal(t, uint(1), board.Completed[1].ID)
	assert.Equal(t, models.MissionStatusFixed, board.Missions[0].Status)
	assert.Equal(t, models.MissionStatusSkipped, board.Missions[1].Status)
}

func TestMissionsStateRecordsTransitionFailure(t *testing.T) {
	source := &fakeMissions{missions: sampleMissions()}
	state := NewMissionsState(source, 0)
	require.NoError(t, state.Refresh(context.Background()))

	source.markErr = api.NewStatusError(http.StatusNotFound, "")
	_, err := state.Complete(context.Background(), 1)
	require.Error(t, err)

	snapshot := state.Snapshot()
	assert.Equal(t, "Resource not found.", snapshot.ErrorMessage())
	assert.Len(t, snapshot.Data.Pending, 2)
}

type fakeAchievements struct {
	catalog  models.AchievementCatalog
	stats    models.AchievementStats
	unlocked []models.Achievement
	checkErr error
	allCalls int
}

func (f *fakeAchievements) All(context.Context) (models.AchievementCatalog, error) {
	f.allCalls++
	return f.catalog, nil
}

func (f *fakeAchievements) Stats(context.Context) (models.AchievementStats, error) {
	return f.stats, nil
}

func (f *fakeAchievements) Check(context.Context) ([]models.Achievement, error) {
	return f.unlocked, f.checkErr
}

func TestAchievementsStateSplitsAndChecks(t *testing.T) {
	source := &fakeAchievements{
		catalog: models.AchievementCatalog{
			TotalPoints: 30,
			Achievements: []models.Achievement{
				{ID: 1, Name: "First upload", IsUnlocked: true},
				{ID: 2, Name: "Clean code"},
				{ID: 3, Name: "Streak"},
			},
		},
		stats:    models.AchievementStats{TotalAchievements: 3, UnlockedCount: 1},
		unlocked: []models.Achievement{{ID: 2, Name: "Clean code", IsUnlocked: true}},
	}
	state := NewAchievementsState(source)

	require.NoError(t, state.Refresh(context.Background()))
	panel := state.Snapshot().Data
	assert.Len(t, panel.Unlocked, 1)
	assert.Len(t, panel.Locked, 2)
	assert.Equal(t, 30, panel.TotalPoints)
	assert.Equal(t, 1, panel.Stats.UnlockedCount)

	unlocked := state.CheckAndUnlock(context.Background())
	assert.Len(t, unlocked, 1)
	assert.Equal(t, 2, source.allCalls)
}

func TestAchievementsCheckFailureReturnsNone(t *testing.T) {
	source := &fakeAchievements{checkErr: api.NewStatusError(http.StatusServiceUnavailable, "")}
	state := NewAchievementsState(source)

	unlocked := state.CheckAndUnlock(context.Background())
	assert.NotNil(t, unlocked)
	assert.Empty(t, unlocked)
	assert.Equal(t, "Service under maintenance.", state.Snapshot().ErrorMessage())
	assert.Zero(t, source.allCalls)
}

type fakeRankings struct {
	mu        sync.Mutex
	calls     []string
	block     chan struct{}
	positionE error
}

func (f *fakeRankings) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRankings) Global(_ context.Context, limit int) (models.GlobalRankings, error) {
	f.record("global")
	return models.GlobalRankings{
		Rankings:    []models.RankingUser{{ID: 1, Name: "Ana", Rank: 1}},
		GlobalStats: models.GlobalStats{TotalUsers: 12},
	}, nil
}

func (f *fakeRankings) University(_ context.Context, university string) ([]models.RankingUser, error) {
	f.record("university:" + university)
	if f.block != nil {
		<-f.block
	}
	return []models.RankingUser{{ID: 2, Name: "Luis", University: university}}, nil
}

func (f *fakeRankings) Career(_ context.Context, career string) ([]models.RankingUser, error) {
	f.record("career:" + career)
	return []models.RankingUser{{ID: 3, Name: "Marta", Career: career}}, nil
}

func (f *fakeRankings) MyPosition(context.Context) (models.MyPosition, error) {
	if f.positionE != nil {
		return models.MyPosition{}, f.positionE
	}
	return models.MyPosition{Position: 3, TotalUsers: 12}, nil
}

func TestRankingsStateEmptyValueFallsBackToGlobal(t *testing.T) {
	source := &fakeRankings{}
	state := NewRankingsState(source)

	require.NoError(t, state.SetFilter(context.Background(), dto.RankingFilter{Scope: dto.RankingScopeUniversity}))

	board := state.Board().Data
	require.NotNil(t, board.GlobalStats)
	assert.Equal(t, 12, board.GlobalStats.TotalUsers)
	assert.Equal(t, []string{"global"}, source.calls)
}

func TestRankingsStateDiscardsReplacedFilter(t *testing.T) {
	source := &fakeRankings{block: make(chan struct{})}
	state := NewRankingsState(source)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = state.SetFilter(context.Background(), dto.RankingFilter{Scope: dto.RankingScopeUniversity, Value: "UNAL"})
	}()
	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return len(source.calls) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, state.SetFilter(context.Background(), dto.RankingFilter{Scope: dto.RankingScopeCareer, Value: "Sistemas"}))
	close(source.block)
	<-done

	board := state.Board().Data
	assert.Equal(t, dto.RankingScopeCareer, board.Filter.Scope)
	require.Len(t, board.Rankings, 1)
	assert.Equal(t, "Marta", board.Rankings[0].Name)
	assert.Nil(t, board.GlobalStats)
}

func TestRankingsPositionFailureKeepsBoard(t *testing.T) {
	source := &fakeRankings{positionE: api.NewStatusError(http.StatusUnauthorized, "")}
	state := NewRankingsState(source)

	require.NoError(t, state.Refresh(context.Background()))
	require.Error(t, state.RefreshPosition(context.Background()))

	assert.Equal(t, StatusSuccess, state.Board().Status)
	assert.Nil(t, state.Position().Data)
	assert.Equal(t, StatusError, state.Position().Status)
}

type fakeAnalyses struct {
	list      []models.AnalysisResult
	deleteErr error
}

func (f *fakeAnalyses) Get(_ context.Context, id uint) (models.AnalysisResult, error) {
	for _, item := range f.list {
		if item.ID == id {
			return item, nil
		}
	}
	return models.AnalysisResult{}, api.NewStatusError(http.StatusNotFound, "")
}

func (f *fakeAnalyses) List(context.Context) ([]models.AnalysisResult, error) { return f.list, nil }

func (f *fakeAnalyses) ByStudent(context.Context, string) ([]models.AnalysisResult, error) {
	return f.list[:1], nil
}

func (f *fakeAnalyses) DemoData(context.Context) ([]models.AnalysisResult, error) { return f.list, nil }

func (f *fakeAnalyses) MyAnalyses(context.Context, int) ([]models.AnalysisResult, error) {
	return f.list, nil
}

func (f *fakeAnalyses) Delete(context.Context, uint) error { return f.deleteErr }

func TestAnalysisStateDeleteDropsItem(t *testing.T) {
	source := &fakeAnalyses{list: []models.AnalysisResult{{ID: 1}, {ID: 2}, {ID: 3}}}
	state := NewAnalysisState(source)

	require.NoError(t, state.FetchAll(context.Background()))
	require.NoError(t, state.FetchByID(context.Background(), 2))
	require.NotNil(t, state.Current())

	require.NoError(t, state.Delete(context.Background(), 2))
	assert.Len(t, state.Analyses(), 2)
	assert.Nil(t, state.Current())
	assert.Len(t, source.list, 3)
	assert.False(t, state.Loading())
}

func TestAnalysisStateDeleteFailureKeepsItem(t *testing.T) {
	source := &fakeAnalyses{
		list:      []models.AnalysisResult{{ID: 1}},
		deleteErr: api.NewStatusError(http.StatusForbidden, ""),
	}
	state := NewAnalysisState(source)
	require.NoError(t, state.FetchMine(context.Background(), 10))

	require.Error(t, state.Delete(context.Background(), 1))
	assert.Len(t, state.Analyses(), 1)
	assert.Equal(t, "Access denied. You do not have permission for this action.", state.Error())

	state.ClearError()
	assert.Empty(t, state.Error())
}

func TestAnalysisStateFetchByIDNotFound(t *testing.T) {
	state := NewAnalysisState(&fakeAnalyses{})

	require.Error(t, state.FetchByID(context.Background(), 99))
	assert.Nil(t, state.Current())
	assert.Equal(t, "Resource not found.", state.Error())
}

type fakeHealth struct{ err error }

func (f fakeHealth) Health(context.Context) (models.HealthStatus, error) {
	return models.HealthStatus{Message: "ok"}, f.err
}

func TestHealthState(t *testing.T) {
	healthy := NewHealthState(fakeHealth{})
	assert.Nil(t, healthy.Healthy())
	assert.True(t, healthy.Check(context.Background()))
	require.NotNil(t, healthy.Healthy())
	assert.True(t, *healthy.Healthy())

	down := NewHealthState(fakeHealth{err: errors.New("refused")})
	assert.False(t, down.Check(context.Background()))
	require.NotNil(t, down.Healthy())
	assert.False(t, *down.Healthy())
}

type fakeAuth struct {
	authenticated bool
	user          models.User
	err           error
	loggedOut     bool
}

func (f *fakeAuth) Login(context.Context, dto.LoginRequest) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	f.authenticated = true
	return f.user, nil
}

func (f *fakeAuth) Register(ctx context.Context, _ dto.RegisterRequest) (models.User, error) {
	return f.Login(ctx, dto.LoginRequest{})
}

func (f *fakeAuth) Me(context.Context) (models.User, error) { return f.user, f.err }

func (f *fakeAuth) UpdateProfile(_ context.Context, req dto.ProfileUpdateRequest) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	updated := f.user
	if req.Name != nil {
		updated.Name = *req.Name
	}
	return updated, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.authenticated = false
	f.loggedOut = true
	return nil
}

func (f *fakeAuth) IsAuthenticated(context.Context) bool { return f.authenticated }

func TestAuthStateRegisterConflict(t *testing.T) {
	auth := &fakeAuth{err: api.NewStatusError(http.StatusConflict, "duplicate key")}
	state := NewAuthState(auth)

	ok, err := state.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com"})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, MessageEmailTaken, err.Error())
	assert.Equal(t, MessageEmailTaken, state.Snapshot().ErrorMessage())
	assert.Equal(t, http.StatusConflict, api.AsError(err).Status)
}

func TestAuthStateLoginAndLogout(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: 7, Name: "Ana"}}
	state := NewAuthState(auth)

	ok, err := state.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, state.IsAuthenticated(context.Background()))

	name := "Ana María"
	require.NoError(t, state.UpdateProfile(context.Background(), dto.ProfileUpdateRequest{Name: &name}))
	assert.Equal(t, "Ana María", state.User().Name)

	require.NoError(t, state.Logout(context.Background()))
	assert.Nil(t, state.User())
	assert.False(t, state.IsAuthenticated(context.Background()))
}

func TestAuthStateRestoreDropsRejectedSession(t *testing.T) {
	auth := &fakeAuth{authenticated: true, err: api.NewStatusError(http.StatusUnauthorized, "")}
	state := NewAuthState(auth)

	require.Error(t, state.Restore(context.Background()))
	assert.True(t, auth.loggedOut)
	assert.Nil(t, state.User())
}

func TestAuthStateUpdateFailureKeepsUser(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: 7, Name: "Ana"}}
	state := NewAuthState(auth)
	_, err := state.Login(context.Background(), dto.LoginRequest{})
	require.NoError(t, err)

	auth.err = api.NewStatusError(http.StatusUnprocessableEntity, "name too short")
	name := "A"
	require.Error(t, state.UpdateProfile(context.Background(), dto.ProfileUpdateRequest{Name: &name}))
	assert.Equal(t, "Ana", state.User().Name)
	assert.Equal(t, "Invalid data: name too short", state.Snapshot().ErrorMessage())
}

type fakeDashboard struct{ dashboard dto.Dashboard }

func (f fakeDashboard) Dashboard(context.Context) (dto.Dashboard, error) { return f.dashboard, nil }

func TestDashboardState(t *testing.T) {
	state := NewDashboardState(fakeDashboard{dashboard: dto.Dashboard{Stats: dto.DashboardStats{TotalAnalyses: 4}}})
	assert.Equal(t, StatusIdle, state.Snapshot().Status)

	require.NoError(t, state.Refresh(context.Background()))
	assert.Equal(t, 4, state.Snapshot().Data.Stats.TotalAnalyses)
}
