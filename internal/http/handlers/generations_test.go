package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/imagegen"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
)

type stubService struct {
	lastParams imagegen.GenerateParams
	lastLimit  int
	result     *imagegen.GenerateResult
	records    []domain.GenerationRecord
	record     *domain.GenerationRecord
	err        error
}

func (s *stubService) Generate(ctx context.Context, p imagegen.GenerateParams) (*imagegen.GenerateResult, error) {
	s.lastParams = p
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubService) Get(ctx context.Context, id string) (*domain.GenerationRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func newTestApp(service GenerationService) *App {
	return NewApp(&infra.Config{}, zerolog.Nop(), service)
}

func TestGenerationsCreateSuccess(t *testing.T) {
	service := &stubService{result: &imagegen.GenerateResult{
		ID:        "gen-1",
		ImageURLs: []string{"https://cdn/a.png", "https://cdn/b.png"},
		RequestID: "req-7",
	}}
	app := newTestApp(service)

	body := `{"prompt":"a red barn","provider":"fal","aspect_ratio":"16:9","num_images":2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/generations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.GenerationsCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var got generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "gen-1" || len(got.ImageURLs) != 2 || got.RequestID != "req-7" {
		t.Fatalf("response = %+v", got)
	}
	if service.lastParams.Prompt != "a red barn" || service.lastParams.AspectRatio != "16:9" || service.lastParams.NumImages != 2 {
		t.Fatalf("params = %+v", service.lastParams)
	}
}

func TestGenerationsCreateBadRequest(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"prompt":`},
		{"blank prompt", `{"prompt":"   "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubService{result: &imagegen.GenerateResult{ID: "x"}}
			app := newTestApp(service)

			req := httptest.NewRequest(http.MethodPost, "/v1/generations", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			app.GenerationsCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if service.lastParams.Prompt != "" {
				t.Fatalf("service should not be called, got params %+v", service.lastParams)
			}
		})
	}
}

func TestGenerationsCreateProviderFailure(t *testing.T) {
	service := &stubService{err: errors.New("fal: status 503: model warming up")}
	app := newTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/v1/generations", strings.NewReader(`{"prompt":"p"}`))
	rec := httptest.NewRecorder()
	app.GenerationsCreate(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["error"] != "generation_failed" {
		t.Fatalf("error code = %q", got["error"])
	}
	if !strings.Contains(got["message"], "model warming up") {
		t.Fatalf("message = %q, want provider cause", got["message"])
	}
}

func TestGenerationsList(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service := &stubService{records: []domain.GenerationRecord{
		{
			ID:        "gen-2",
			Prompt:    "newest",
			Provider:  domain.ProviderFal,
			Status:    domain.StatusComplete,
			ImageURLs: []string{"https://cdn/a.png"},
			RequestID: "req-2",
			CreatedAt: now.Add(time.Minute),
			UpdatedAt: now.Add(time.Minute),
		},
		{
			ID:           "gen-1",
			Prompt:       "older",
			Provider:     domain.ProviderHuggingFace,
			Status:       domain.StatusFailed,
			ErrorMessage: "hf: status 503",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}}
	app := newTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/generations?limit=2", nil)
	rec := httptest.NewRecorder()
	app.GenerationsList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if service.lastLimit != 2 {
		t.Fatalf("limit = %d, want 2", service.lastLimit)
	}
	var got struct {
		Items []recordResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].ID != "gen-2" || got.Items[0].Status != "complete" {
		t.Fatalf("first item = %+v", got.Items[0])
	}
	if got.Items[1].Status != "failed" || got.Items[1].Error == "" {
		t.Fatalf("failed item should carry its error, got %+v", got.Items[1])
	}
}

func TestGenerationsListIgnoresBadLimit(t *testing.T) {
	service := &stubService{}
	app := newTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/generations?limit=abc", nil)
	rec := httptest.NewRecorder()
	app.GenerationsList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if service.lastLimit != 0 {
		t.Fatalf("limit = %d, want 0 so the service applies its default", service.lastLimit)
	}
}

func downloadRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/generations/"+id+"/download", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGenerationsDownload(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer origin.Close()

	service := &stubService{record: &domain.GenerationRecord{
		ID:        "gen-1",
		Status:    domain.StatusComplete,
		ImageURLs: []string{origin.URL + "/a.png", origin.URL + "/b.png"},
	}}
	app := newTestApp(service)

	rec := httptest.NewRecorder()
	app.GenerationsDownload(rec, downloadRequest("gen-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	reader, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 2 {
		t.Fatalf("archive entries = %d, want 2", len(reader.File))
	}
	if reader.File[0].Name != "gen-1-01.png" {
		t.Fatalf("entry name = %q", reader.File[0].Name)
	}
}

func TestGenerationsDownloadNotFound(t *testing.T) {
	app := newTestApp(&stubService{err: domain.ErrNotFound})

	rec := httptest.NewRecorder()
	app.GenerationsDownload(rec, downloadRequest("missing"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGenerationsDownloadNotReady(t *testing.T) {
	app := newTestApp(&stubService{record: &domain.GenerationRecord{
		ID:     "gen-1",
		Status: domain.StatusFailed,
	}})

	rec := httptest.NewRecorder()
	app.GenerationsDownload(rec, downloadRequest("gen-1"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestGenerationsDownloadAllFetchesFail(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer origin.Close()

	app := newTestApp(&stubService{record: &domain.GenerationRecord{
		ID:        "gen-1",
		Status:    domain.StatusComplete,
		ImageURLs: []string{origin.URL + "/gone.png"},
	}})

	rec := httptest.NewRecorder()
	app.GenerationsDownload(rec, downloadRequest("gen-1"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	app.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["status"] != "ok" {
		t.Fatalf("body = %v", got)
	}
}
