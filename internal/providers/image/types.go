package image

import "context"

// GenerateRequest describes a normalized request passed to any image provider.
// All enum-like fields arrive already normalized by the orchestrator.
type GenerateRequest struct {
	Prompt       string
	Model        string
	AspectRatio  string
	Resolution   string
	OutputFormat string
	NumImages    int
}

// Result is the common shape both providers are normalized into: an ordered
// list of retrievable image URLs and an optional provider request id.
type Result struct {
	URLs      []string
	RequestID string
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
}

// BlobStore persists raw image bytes and resolves them into retrievable URLs.
// Only the huggingface path needs it; fal returns hosted URLs directly.
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	URL(key string) (string, error)
}
