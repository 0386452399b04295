package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/validation"
)

const (
	// DefaultUploadRetryDelay is the base delay between upload retries.
	DefaultUploadRetryDelay = 2 * time.Second
	// DefaultUploadDeadline bounds UploadWithTimeout when no timeout is given.
	DefaultUploadDeadline = 30 * time.Second
	// DefaultReanalyzeTimeout applies to re-analysis uploads.
	DefaultReanalyzeTimeout = 5 * time.Minute
)

// AnalysisConfig tunes uploads and re-analysis.
type AnalysisConfig struct {
	MaxUploadBytes   int64
	UploadTimeout    time.Duration
	ReanalyzeTimeout time.Duration
	RetryDelay       time.Duration
}

// AnalysisService talks to the /analysis endpoints.
type AnalysisService interface {
	Health(ctx context.Context) (models.HealthStatus, error)
	Upload(ctx context.Context, file api.File, student string, progress api.ProgressFunc) (models.AnalysisResult, error)
	UploadWithRetry(ctx context.Context, file api.File, student string, maxRetries int, progress api.ProgressFunc) (models.AnalysisResult, error)
	UploadWithTimeout(ctx context.Context, file api.File, student string, timeout time.Duration, progress api.ProgressFunc) (models.AnalysisResult, error)
	CloneRepository(ctx context.Context, repositoryURL string) (models.AnalysisResult, error)
	Get(ctx context.Context, id uint) (models.AnalysisResult, error)
	List(ctx context.Context) ([]models.AnalysisResult, error)
	ByStudent(ctx context.Context, student string) ([]models.AnalysisResult, error)
	StudentSummary(ctx context.Context, student string) (models.StudentSummary, error)
	DemoData(ctx context.Context) ([]models.AnalysisResult, error)
	MyAnalyses(ctx context.Context, limit int) ([]models.AnalysisResult, error)
	MySummary(ctx context.Context) (models.StudentSummary, error)
	Search(ctx context.Context, params dto.AnalysisSearchParams) ([]models.AnalysisResult, error)
	Stats(ctx context.Context) (models.AnalysisStats, error)
	Rerun(ctx context.Context, id uint) (models.AnalysisResult, error)
	Reanalyze(ctx context.Context, id uint, file api.File, progress api.ProgressFunc) (models.ReanalysisResult, error)
	ReanalyzeRepository(ctx context.Context, id uint, repositoryURL string) (models.ReanalysisResult, error)
	Delete(ctx context.Context, id uint) error
	Export(ctx context.Context, id uint, format dto.ExportFormat) (string, error)
}

type analysisService struct {
	client *api.Client
	config AnalysisConfig
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewAnalysisService constructs the analysis service. Zero config values fall back to the defaults.
func NewAnalysisService(client *api.Client, config AnalysisConfig, logger zerolog.Logger) AnalysisService {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = validation.DefaultMaxArchiveBytes
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = api.DefaultUploadTimeout
	}
	if config.ReanalyzeTimeout <= 0 {
		config.ReanalyzeTimeout = DefaultReanalyzeTimeout
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultUploadRetryDelay
	}

	return &analysisService{
		client: client,
		config: config,
		logger: logger.With().Str("component", "analysis_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/codemission/internal/service"),
	}
}

func (s *analysisService) Health(ctx context.Context) (models.HealthStatus, error) {
	return api.Send[models.HealthStatus](ctx, s.client, api.Request{
		Method: http.MethodGet,
		Path:   "/analysis/health",
		Raw:    true,
	}).Result()
}

func (s *analysisService) Upload(ctx context.Context, file api.File, student string, progress api.ProgressFunc) (models.AnalysisResult, error) {
	return s.upload(ctx, file, student, progress).Result()
}

func (s *analysisService) UploadWithRetry(ctx context.Context, file api.File, student string, maxRetries int, progress api.ProgressFunc) (models.AnalysisResult, error) {
	call := func(ctx context.Context) api.Envelope[models.AnalysisResult] {
		return s.upload(ctx, file, student, progress)
	}
	return api.WithRetry(ctx, call, maxRetries, s.config.RetryDelay).Result()
}

func (s *analysisService) UploadWithTimeout(ctx context.Context, file api.File, student string, timeout time.Duration, progress api.ProgressFunc) (models.AnalysisResult, error) {
	if timeout <= 0 {
		timeout = DefaultUploadDeadline
	}
	call := func(ctx context.Context) api.Envelope[models.AnalysisResult] {
		return s.upload(ctx, file, student, progress)
	}
	return api.WithTimeout(ctx, call, timeout).Result()
}

func (s *analysisService) upload(ctx context.Context, file api.File, student string, progress api.ProgressFunc) api.Envelope[models.AnalysisResult] {
	if err := validation.Archive(file, s.config.MaxUploadBytes); err != nil {
		return api.Fail[models.AnalysisResult](err)
	}

	path := "/analysis/upload"
	if s.client.Session().IsAuthenticated(ctx) {
		path = "/analysis/upload-auth"
	}

	ctx, span := s.tracer.Start(ctx, "analysis.upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("upload.file_name", file.Name),
		attribute.Int64("upload.size", file.Size),
		attribute.String("upload.endpoint", path),
	)

	fields := map[string]string{}
	if student = strings.TrimSpace(student); student != "" {
		fields["student"] = student
	}

	env := api.SendUpload[models.AnalysisResult](ctx, s.client, api.Upload{
		Path:     path,
		File:     file,
		Fields:   fields,
		Timeout:  s.config.UploadTimeout,
		Progress: progress,
	})

	if env.Success {
		s.logger.Info().Uint("analysis_id", env.Data.ID).Str("file", file.Name).Int("total_issues", env.Data.TotalIssues).Msg("archive analysed")
	} else {
		s.logger.Warn().Err(env.Err()).Str("file", file.Name).Msg("archive upload failed")
	}
	return env
}

// CloneRepository asks the backend to clone and analyse a public repository.
func (s *analysisService) CloneRepository(ctx context.Context, repositoryURL string) (models.AnalysisResult, error) {
	repositoryURL = strings.TrimSpace(repositoryURL)
	if err := validation.RepositoryURL(repositoryURL); err != nil {
		return models.AnalysisResult{}, err
	}

	result, err := api.Send[models.AnalysisResult](ctx, s.client, api.Request{
		Method:  http.MethodPost,
		Path:    "/analysis/clone-repo",
		Body:    dto.CloneRepositoryRequest{RepositoryURL: repositoryURL},
		Timeout: s.config.UploadTimeout,
	}).Result()
	if err != nil {
		return models.AnalysisResult{}, cloneError(err)
	}

	s.logger.Info().Uint("analysis_id", result.ID).Str("repository", repositoryURL).Msg("repository analysed")
	return result, nil
}

// cloneError rewrites status failures into repository-specific messages.
func cloneError(err error) error {
	apiErr := api.AsError(err)
	if apiErr.Kind != api.KindStatus {
		return apiErr
	}

	mapped := *apiErr
	switch apiErr.Status {
	case http.StatusNotFound:
		mapped.Message = "Repository not found. Check the URL."
	case http.StatusForbidden:
		mapped.Message = "Repository is private. Use a public repository."
	case http.StatusBadRequest:
		if apiErr.BackendMessage != "" {
			mapped.Message = apiErr.BackendMessage
		}
	default:
		detail := apiErr.BackendMessage
		if detail == "" {
			detail = apiErr.Message
		}
		mapped.Message = "Error cloning: " + detail
	}
	return &mapped
}

func (s *analysisService) Get(ctx context.Context, id uint) (models.AnalysisResult, error) {
	return api.Send[models.AnalysisResult](ctx, s.client, api.Request{
		Path:  idPath("/analysis", id),
		Route: "/analysis/:id",
	}).Result()
}

func (s *analysisService) List(ctx context.Context) ([]models.AnalysisResult, error) {
	return list(api.Get[[]models.AnalysisResult](ctx, s.client, "/analysis", nil))
}

func (s *analysisService) ByStudent(ctx context.Context, student string) ([]models.AnalysisResult, error) {
	student = strings.TrimSpace(student)
	if student == "" {
		return nil, api.NewValidationError("Enter a student name.")
	}
	return list(api.Get[[]models.AnalysisResult](ctx, s.client, "/analysis", url.Values{"student": {student}}))
}

func (s *analysisService) StudentSummary(ctx context.Context, student string) (models.StudentSummary, error) {
	student = strings.TrimSpace(student)
	if student == "" {
		return models.StudentSummary{}, api.NewValidationError("Enter a student name.")
	}
	return api.Send[models.StudentSummary](ctx, s.client, api.Request{
		Path:  "/analysis/student/" + url.PathEscape(student) + "/summary",
		Route: "/analysis/student/:student/summary",
	}).Result()
}

func (s *analysisService) DemoData(ctx context.Context) ([]models.AnalysisResult, error) {
	return list(api.Get[[]models.AnalysisResult](ctx, s.client, "/analysis/demo-data", nil))
}

func (s *analysisService) MyAnalyses(ctx context.Context, limit int) ([]models.AnalysisResult, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	return list(api.Get[[]models.AnalysisResult](ctx, s.client, "/analysis/my/analyses", query))
}

func (s *analysisService) MySummary(ctx context.Context) (models.StudentSummary, error) {
	return api.Get[models.StudentSummary](ctx, s.client, "/analysis/my/summary", nil).Result()
}

func (s *analysisService) Search(ctx context.Context, params dto.AnalysisSearchParams) ([]models.AnalysisResult, error) {
	return list(api.Get[[]models.AnalysisResult](ctx, s.client, "/analysis/search", params.Query()))
}

func (s *analysisService) Stats(ctx context.Context) (models.AnalysisStats, error) {
	return api.Get[models.AnalysisStats](ctx, s.client, "/analysis/stats", nil).Result()
}

func (s *analysisService) Rerun(ctx context.Context, id uint) (models.AnalysisResult, error) {
	return api.Send[models.AnalysisResult](ctx, s.client, api.Request{
		Method: http.MethodPost,
		Path:   idPath("/analysis", id) + "/rerun",
		Route:  "/analysis/:id/rerun",
	}).Result()
}

// Reanalyze submits corrected code for an existing analysis.
func (s *analysisService) Reanalyze(ctx context.Context, id uint, file api.File, progress api.ProgressFunc) (models.ReanalysisResult, error) {
	if err := validation.Archive(file, s.config.MaxUploadBytes); err != nil {
		return models.ReanalysisResult{}, err
	}

	result, err := api.SendUpload[models.ReanalysisResult](ctx, s.client, api.Upload{
		Path:     idPath("/analysis", id) + "/reanalyze",
		Route:    "/analysis/:id/reanalyze",
		File:     file,
		Timeout:  s.config.ReanalyzeTimeout,
		Progress: progress,
	}).Result()
	if err != nil {
		return models.ReanalysisResult{}, err
	}

	s.logReanalysis(id, result)
	return result, nil
}

func (s *analysisService) ReanalyzeRepository(ctx context.Context, id uint, repositoryURL string) (models.ReanalysisResult, error) {
	repositoryURL = strings.TrimSpace(repositoryURL)
	if err := validation.RepositoryURL(repositoryURL); err != nil {
		return models.ReanalysisResult{}, err
	}

	result, err := api.Send[models.ReanalysisResult](ctx, s.client, api.Request{
		Method:  http.MethodPost,
		Path:    idPath("/analysis", id) + "/reanalyze",
		Route:   "/analysis/:id/reanalyze",
		Body:    dto.CloneRepositoryRequest{RepositoryURL: repositoryURL},
		Timeout: s.config.ReanalyzeTimeout,
	}).Result()
	if err != nil {
		return models.ReanalysisResult{}, cloneError(err)
	}

	s.logReanalysis(id, result)
	return result, nil
}

func (s *analysisService) logReanalysis(id uint, result models.ReanalysisResult) {
	s.logger.Info().
		Uint("analysis_id", id).
		Bool("new_analysis", result.IsNewAnalysis).
		Int("missions_fixed", result.MissionsFixed).
		Int("missions_remaining", result.MissionsRemaining).
		Msg("re-analysis finished")
}

func (s *analysisService) Delete(ctx context.Context, id uint) error {
	return api.Send[struct{}](ctx, s.client, api.Request{
		Method: http.MethodDelete,
		Path:   idPath("/analysis", id),
		Route:  "/analysis/:id",
	}).Err()
}

func (s *analysisService) Export(ctx context.Context, id uint, format dto.ExportFormat) (string, error) {
	if !format.Valid() {
		return "", api.NewValidationError(fmt.Sprintf("Unsupported export format %q. Use json, csv or pdf.", format))
	}
	return api.Send[string](ctx, s.client, api.Request{
		Path:  idPath("/analysis", id) + "/export",
		Route: "/analysis/:id/export",
		Query: url.Values{"format": {string(format)}},
	}).Result()
}

func idPath(prefix string, id uint) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10)
}

// list normalises a missing collection to an empty slice.
func list[T any](env api.Envelope[[]T]) ([]T, error) {
	items, err := env.Result()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
