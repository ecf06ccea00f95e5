package hf

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

// ErrMissingAPIToken indicates that the client was configured without credentials.
var ErrMissingAPIToken = errors.New("huggingface: api token is required")

// Options configures the Hugging Face inference client.
type Options struct {
	APIToken       string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the hosted inference API. Each call returns exactly one image;
// the API has no batch parameter.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest captures the inputs for one text-to-image call.
type ImageRequest struct {
	Model  string
	Prompt string
	Width  int
	Height int
}

type inferencePayload struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
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
		apiToken:   strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiToken != ""
}

// GenerateImage invokes the inference API once and returns the binary image
// together with its content type.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, string, error) {
	if !c.HasCredentials() {
		return nil, "", ErrMissingAPIToken
	}
	model := strings.Trim(strings.TrimSpace(req.Model), "/")
	if model == "" {
		return nil, "", errors.New("huggingface: model is required")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, "", errors.New("huggingface: prompt is required")
	}

	payload := inferencePayload{
		Inputs:     prompt,
		Parameters: inferenceParameters{Width: req.Width, Height: req.Height},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: encode request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && len(detail.Error) > 0 {
			return nil, "", fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, strings.Trim(string(detail.Error), `"`))
		}
		return nil, "", fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(raw) == 0 {
		return nil, "", errors.New("huggingface: empty image response")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/") {
		contentType = "image/png"
	}

	c.logger.Debug().
		Str("model", model).
		Int("bytes", len(raw)).
		Msg("huggingface: generated image")

	return raw, contentType, nil
}
