package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/imagegen"
	"github.com/rohan-patnaik/convex-imagegen-studio/pkg/zip"
)

type generateRequest struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	AspectRatio  string `json:"aspect_ratio"`
	Resolution   string `json:"resolution"`
	OutputFormat string `json:"output_format"`
	NumImages    int    `json:"num_images"`
}

type generateResponse struct {
	ID        string   `json:"id"`
	ImageURLs []string `json:"image_urls"`
	RequestID string   `json:"request_id,omitempty"`
}

type recordResponse struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	Model        string    `json:"model"`
	Provider     string    `json:"provider"`
	AspectRatio  string    `json:"aspect_ratio"`
	Resolution   string    `json:"resolution"`
	OutputFormat string    `json:"output_format"`
	NumImages    int       `json:"num_images"`
	Status       string    `json:"status"`
	ImageURLs    []string  `json:"image_urls,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GenerationsCreate runs one generation request to a terminal outcome and
// returns the resulting image URLs.
func (a *App) GenerationsCreate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}

	result, err := a.Service.Generate(r.Context(), imagegen.GenerateParams{
		Prompt:       req.Prompt,
		Model:        req.Model,
		Provider:     req.Provider,
		AspectRatio:  req.AspectRatio,
		Resolution:   req.Resolution,
		OutputFormat: req.OutputFormat,
		NumImages:    req.NumImages,
	})
	if err != nil {
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}
	a.json(w, http.StatusCreated, generateResponse{
		ID:        result.ID,
		ImageURLs: result.ImageURLs,
		RequestID: result.RequestID,
	})
}

// GenerationsList returns the most recent records, newest first.
func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	records, err := a.Service.ListRecent(r.Context(), limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list generations")
		return
	}
	items := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toRecordResponse(rec))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GenerationsDownload streams a complete record's images as a zip archive.
func (a *App) GenerationsDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	rec, err := a.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "generation not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load generation")
		return
	}
	if rec.Status != domain.StatusComplete {
		a.error(w, http.StatusConflict, "not_ready", "generation has no images yet")
		return
	}

	var assets []zip.Asset
	for idx, url := range rec.ImageURLs {
		data, mime, err := a.fetchImage(r, url)
		if err != nil {
			a.Logger.Warn().Err(err).
				Str("generation_id", rec.ID).
				Str("url", url).
				Msg("download: skipping image")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%s-%02d", rec.ID, idx+1),
			MIME:     mime,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusBadGateway, "download_failed", "no images could be fetched")
		return
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=generation-%s.zip", rec.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) fetchImage(r *http.Request, url string) ([]byte, string, error) {
	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return data, mime, nil
}

func toRecordResponse(rec domain.GenerationRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		Prompt:       rec.Prompt,
		Model:        rec.Model,
		Provider:     string(rec.Provider),
		AspectRatio:  string(rec.AspectRatio),
		Resolution:   string(rec.Resolution),
		OutputFormat: string(rec.OutputFormat),
		NumImages:    rec.NumImages,
		Status:       string(rec.Status),
		ImageURLs:    rec.ImageURLs,
		RequestID:    rec.RequestID,
		Error:        rec.ErrorMessage,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
