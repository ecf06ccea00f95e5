package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/imagegen"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
)

// GenerationService is the orchestrator surface the handlers depend on.
type GenerationService interface {
	Generate(ctx context.Context, p imagegen.GenerateParams) (*imagegen.GenerateResult, error)
	ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error)
	Get(ctx context.Context, id string) (*domain.GenerationRecord, error)
}

// App is the handler container with its injected dependencies.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Service    GenerationService
	HTTPClient *http.Client
}

// NewApp builds the handler container.
func NewApp(cfg *infra.Config, logger infra.Logger, service GenerationService) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Service:    service,
		HTTPClient: &http.Client{},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
