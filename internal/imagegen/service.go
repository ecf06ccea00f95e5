package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/providers/image"
)

const (
	// DefaultListLimit caps the listing query when the caller does not
	// supply a limit.
	DefaultListLimit = 24
	// MaxListLimit is the hard ceiling for caller-supplied limits.
	MaxListLimit = 100
)

// GenerateParams carries the raw caller inputs for one generation request.
// Enum-like fields may hold anything; they are coerced to safe defaults, never
// rejected.
type GenerateParams struct {
	Prompt       string
	Model        string
	Provider     string
	AspectRatio  string
	Resolution   string
	OutputFormat string
	NumImages    int
}

// GenerateResult is handed back to the caller on success.
type GenerateResult struct {
	ID        string
	ImageURLs []string
	RequestID string
}

// Service drives a generation request through its full lifecycle: create a
// queued record, invoke the provider adapter, and reconcile the outcome with
// exactly one terminal patch.
type Service struct {
	repo       domain.GenerationRepository
	generators map[domain.Provider]image.Generator
	defaults   map[domain.Provider]string
	logger     infra.Logger
	now        func() time.Time
}

// NewService wires the orchestrator. defaults maps each provider to the model
// identifier used when the caller does not name one.
func NewService(repo domain.GenerationRepository, generators map[domain.Provider]image.Generator, defaults map[domain.Provider]string, logger infra.Logger) *Service {
	return &Service{
		repo:       repo,
		generators: generators,
		defaults:   defaults,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate runs one request to a terminal outcome. On failure the record is
// still persisted (as failed) and the error is returned to the caller.
func (s *Service) Generate(ctx context.Context, p GenerateParams) (*GenerateResult, error) {
	prompt := strings.TrimSpace(p.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}

	provider := domain.NormalizeProvider(p.Provider)
	resolution := domain.NormalizeResolution(p.Resolution)
	format := domain.NormalizeOutputFormat(p.OutputFormat)
	if provider == domain.ProviderHuggingFace {
		// The free-tier inference API ignores these knobs; pin them so the
		// stored record reflects what actually ran.
		resolution = domain.Resolution1K
		format = domain.FormatPNG
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		model = s.defaults[provider]
	}

	now := s.now()
	rec := &domain.GenerationRecord{
		ID:           uuid.NewString(),
		Prompt:       prompt,
		Model:        model,
		Provider:     provider,
		AspectRatio:  domain.NormalizeAspectRatio(p.AspectRatio),
		Resolution:   resolution,
		OutputFormat: format,
		NumImages:    domain.ClampImageCount(p.NumImages),
		Status:       domain.StatusQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create generation record: %w", err)
	}
	s.logger.Info().
		Str("generation_id", rec.ID).
		Str("provider", string(rec.Provider)).
		Str("model", rec.Model).
		Int("num_images", rec.NumImages).
		Msg("imagegen: generation queued")

	generator, ok := s.generators[rec.Provider]
	if !ok || generator == nil {
		return nil, s.fail(ctx, rec.ID, fmt.Errorf("provider %q not configured", rec.Provider))
	}

	res, err := generator.Generate(ctx, image.GenerateRequest{
		Prompt:       rec.Prompt,
		Model:        rec.Model,
		AspectRatio:  string(rec.AspectRatio),
		Resolution:   string(rec.Resolution),
		OutputFormat: string(rec.OutputFormat),
		NumImages:    rec.NumImages,
	})
	if err != nil {
		return nil, s.fail(ctx, rec.ID, err)
	}
	if res == nil || len(res.URLs) == 0 {
		return nil, s.fail(ctx, rec.ID, domain.ErrNoImages)
	}

	requestID := ""
	if rec.Provider == domain.ProviderFal {
		requestID = res.RequestID
	}
	if err := s.repo.MarkComplete(ctx, rec.ID, res.URLs, requestID); err != nil {
		return nil, fmt.Errorf("complete generation record: %w", err)
	}
	s.logger.Info().
		Str("generation_id", rec.ID).
		Int("images", len(res.URLs)).
		Msg("imagegen: generation complete")

	return &GenerateResult{ID: rec.ID, ImageURLs: res.URLs, RequestID: requestID}, nil
}

// fail issues the failing terminal patch and re-signals the cause to the
// caller so the failure is never swallowed.
func (s *Service) fail(ctx context.Context, id string, cause error) error {
	if err := s.repo.MarkFailed(ctx, id, cause.Error()); err != nil {
		s.logger.Error().Err(err).
			Str("generation_id", id).
			Msg("imagegen: failed patch did not apply")
	}
	s.logger.Error().Err(cause).
		Str("generation_id", id).
		Msg("imagegen: generation failed")
	return cause
}

// ListRecent returns the newest records, newest first. A non-positive limit
// falls back to DefaultListLimit; anything above MaxListLimit is capped.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// Get fetches a single record by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.GenerationRecord, error) {
	return s.repo.GetByID(ctx, id)
}
