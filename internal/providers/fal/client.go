package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("fal: api key is required")

// Options configures the fal.run client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs synchronous HTTP calls against the fal.run inference endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// GenerationRequest captures the inputs for one batched generation call.
type GenerationRequest struct {
	Model        string
	Prompt       string
	AspectRatio  string
	Resolution   string
	OutputFormat string
	NumImages    int
}

// GenerationResult is the normalized outcome of a fal call: the returned
// image URLs (empty entries already removed) and an optional request id.
type GenerationResult struct {
	URLs      []string
	RequestID string
}

type generationPayload struct {
	Prompt       string `json:"prompt"`
	AspectRatio  string `json:"aspect_ratio"`
	Resolution   string `json:"resolution"`
	OutputFormat string `json:"output_format"`
	NumImages    int    `json:"num_images"`
}

type generationResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	RequestID      string `json:"request_id"`
	RequestIDCamel string `json:"requestId"`
	Detail         any    `json:"detail"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://fal.run"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Generate invokes the model once with the full batch of requested images.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	model := strings.Trim(strings.TrimSpace(req.Model), "/")
	if model == "" {
		return nil, errors.New("fal: model is required")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("fal: prompt is required")
	}

	payload := generationPayload{
		Prompt:       prompt,
		AspectRatio:  req.AspectRatio,
		Resolution:   req.Resolution,
		OutputFormat: req.OutputFormat,
		NumImages:    req.NumImages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fal: encode request: %w", err)
	}

	endpoint := c.baseURL + "/" + model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fal: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fal: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fal: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fal: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("fal: decode response: %w", err)
	}

	urls := make([]string, 0, len(decoded.Images))
	for _, img := range decoded.Images {
		if u := strings.TrimSpace(img.URL); u != "" {
			urls = append(urls, u)
		}
	}
	requestID := decoded.RequestID
	if requestID == "" {
		requestID = decoded.RequestIDCamel
	}
	if requestID == "" {
		requestID = resp.Header.Get("X-Fal-Request-Id")
	}

	c.logger.Debug().
		Str("model", model).
		Str("request_id", requestID).
		Int("images", len(urls)).
		Msg("fal: generation completed")

	return &GenerationResult{URLs: urls, RequestID: requestID}, nil
}
