package domain

import "context"

// GenerationRepository defines persistence for generation records. After
// Create, exactly one of MarkComplete or MarkFailed is issued per record.
type GenerationRepository interface {
	Create(ctx context.Context, rec *GenerationRecord) error
	MarkComplete(ctx context.Context, id string, imageURLs []string, requestID string) error
	MarkFailed(ctx context.Context, id string, message string) error
	GetByID(ctx context.Context, id string) (*GenerationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error)
}

// BlobStore persists raw image bytes and resolves them into retrievable URLs.
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	URL(key string) (string, error)
}
