package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
)

// SupabaseStore persists generated images into a Supabase Storage bucket and
// resolves them through the bucket's public URLs.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseStore constructs a store for the given project URL, service key
// and bucket. The bucket is expected to exist and be public.
func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" {
		return nil, errors.New("storage: supabase project url is required")
	}
	if strings.TrimSpace(serviceKey) == "" {
		return nil, errors.New("storage: supabase service key is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: supabase bucket is required")
	}
	client := storage_go.NewClient(projectURL+"/storage/v1", serviceKey, nil)
	return &SupabaseStore{client: client, bucket: bucket}, nil
}

var _ domain.BlobStore = (*SupabaseStore)(nil)

// Store uploads the image bytes under a fresh key and returns that key.
func (s *SupabaseStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("storage: empty payload")
	}
	if contentType == "" {
		contentType = "image/png"
	}
	key := fmt.Sprintf("generated/%s%s", uuid.NewString(), extensionForMIME(contentType))
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{ContentType: &contentType})
	if err != nil {
		return "", fmt.Errorf("storage: supabase upload: %w", err)
	}
	return key, nil
}

// URL resolves a storage key into the bucket's public URL.
func (s *SupabaseStore) URL(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	resp := s.client.GetPublicUrl(s.bucket, key)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("storage: no public url for %q", key)
	}
	return resp.SignedURL, nil
}
