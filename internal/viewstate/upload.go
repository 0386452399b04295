package viewstate

import (
	"context"
	"sync"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/models"
)

// Uploader sends a project archive for analysis.
type Uploader interface {
	Upload(ctx context.Context, file api.File, student string, progress api.ProgressFunc) (models.AnalysisResult, error)
}

// UploadSnapshot is the state of the upload form.
type UploadSnapshot struct {
	Progress    int
	IsUploading bool
	UploadError string
	Result      *models.AnalysisResult
}

// UploadState tracks a single archive upload.
type UploadState struct {
	uploader Uploader
	onChange func(UploadSnapshot)

	mu         sync.Mutex
	generation uint64
	state      UploadSnapshot
}

// NewUploadState wraps uploader. onChange, when set, receives a copy of every state change,
// including progress ticks.
func NewUploadState(uploader Uploader, onChange func(UploadSnapshot)) *UploadState {
	return &UploadState{uploader: uploader, onChange: onChange}
}

// Upload sends file and records the outcome. Progress stays at 100 after a success and drops back
// to 0 after a failure.
func (u *UploadState) Upload(ctx context.Context, file api.File, student string) (models.AnalysisResult, error) {
	u.mu.Lock()
	u.generation++
	generation := u.generation
	u.mu.Unlock()

	u.apply(generation, func(s *UploadSnapshot) bool {
		*s = UploadSnapshot{IsUploading: true}
		return true
	})

	result, err := u.uploader.Upload(ctx, file, student, func(percent int) {
		u.apply(generation, func(s *UploadSnapshot) bool {
			// A lower percent comes from a retried attempt starting over.
			if percent == s.Progress {
				return false
			}
			s.Progress = percent
			return true
		})
	})

	u.settle(generation, func(s *UploadSnapshot) {
		s.IsUploading = false
		if err != nil {
			s.Progress = 0
			s.UploadError = errorMessage(err)
			return
		}
		s.Progress = 100
		s.Result = &result
	})
	return result, err
}

// Reset clears progress, error and result and detaches any upload in flight.
func (u *UploadState) Reset() {
	u.mu.Lock()
	u.generation++
	generation := u.generation
	u.mu.Unlock()

	u.apply(generation, func(s *UploadSnapshot) bool {
		*s = UploadSnapshot{}
		return true
	})
}

// Snapshot returns the current state.
func (u *UploadState) Snapshot() UploadSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// settle records the outcome of generation and retires it, so progress reported by an abandoned
// call after this point is dropped.
func (u *UploadState) settle(generation uint64, mutate func(*UploadSnapshot)) {
	u.apply(generation, func(s *UploadSnapshot) bool {
		mutate(s)
		u.generation++
		return true
	})
}

// apply mutates the state when generation is still current and publishes the result.
func (u *UploadState) apply(generation uint64, mutate func(*UploadSnapshot) bool) {
	u.mu.Lock()
	if generation != u.generation || !mutate(&u.state) {
		u.mu.Unlock()
		return
	}
	snapshot := u.state
	u.mu.Unlock()

	if u.onChange != nil {
		u.onChange(snapshot)
	}
}
