package image

import (
	"context"
	"fmt"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/providers/fal"
)

type falClient interface {
	Generate(ctx context.Context, req fal.GenerationRequest) (*fal.GenerationResult, error)
}

// FalGenerator adapts the fal.run client to the Generator contract. The
// provider supports batching natively, so the whole request maps onto a
// single call.
type FalGenerator struct {
	client falClient
}

// NewFalGenerator wraps a fal client.
func NewFalGenerator(client falClient) *FalGenerator {
	return &FalGenerator{client: client}
}

var _ Generator = (*FalGenerator)(nil)

// Generate fulfils the Generator interface.
func (g *FalGenerator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("fal generator not configured")
	}
	res, err := g.client.Generate(ctx, fal.GenerationRequest{
		Model:        req.Model,
		Prompt:       req.Prompt,
		AspectRatio:  req.AspectRatio,
		Resolution:   req.Resolution,
		OutputFormat: req.OutputFormat,
		NumImages:    req.NumImages,
	})
	if err != nil {
		return nil, err
	}
	return &Result{URLs: res.URLs, RequestID: res.RequestID}, nil
}
