package image

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/providers/hf"
)

type hfClient interface {
	GenerateImage(ctx context.Context, req hf.ImageRequest) ([]byte, string, error)
	HasCredentials() bool
}

// HFGenerator adapts the Hugging Face inference client to the Generator
// contract. The API returns one binary image per call, so the adapter loops
// sequentially over the requested count, persists each image to the blob
// store and collects the resulting URLs. A failed image is dropped rather
// than failing the request, as long as at least one image survives.
type HFGenerator struct {
	client hfClient
	store  BlobStore
	logger *infra.Logger
}

// NewHFGenerator wires a Hugging Face client with the blob store used for
// result persistence.
func NewHFGenerator(client hfClient, store BlobStore, logger *infra.Logger) *HFGenerator {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &HFGenerator{client: client, store: store, logger: logger}
}

var _ Generator = (*HFGenerator)(nil)

// Generate fulfils the Generator interface.
func (g *HFGenerator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("huggingface generator not configured")
	}
	if g.store == nil {
		return nil, fmt.Errorf("huggingface generator missing blob store")
	}
	if !g.client.HasCredentials() {
		return nil, hf.ErrMissingAPIToken
	}

	width, height := ResolveDimensions(req.AspectRatio)
	count := req.NumImages
	if count < 1 {
		count = 1
	}

	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		url, err := g.generateOne(ctx, req, width, height)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger.Warn().Err(err).
				Int("index", i).
				Str("model", req.Model).
				Msg("huggingface: dropping image")
			continue
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return nil, domain.ErrNoImages
	}
	return &Result{URLs: urls}, nil
}

func (g *HFGenerator) generateOne(ctx context.Context, req GenerateRequest, width, height int) (string, error) {
	data, contentType, err := g.client.GenerateImage(ctx, hf.ImageRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Width:  width,
		Height: height,
	})
	if err != nil {
		return "", err
	}
	key, err := g.store.Store(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	url, err := g.store.URL(key)
	if err != nil {
		return "", fmt.Errorf("resolve image url: %w", err)
	}
	return url, nil
}
