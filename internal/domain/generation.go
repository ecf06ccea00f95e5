package domain

import (
	"strings"
	"time"
)

// Provider enumerates supported image generation backends.
type Provider string

const (
	ProviderFal         Provider = "fal"
	ProviderHuggingFace Provider = "huggingface"
)

// GenerationStatus enumerates record lifecycle states. A record stays queued
// until exactly one terminal transition to complete or failed.
type GenerationStatus string

const (
	StatusQueued   GenerationStatus = "queued"
	StatusComplete GenerationStatus = "complete"
	StatusFailed   GenerationStatus = "failed"
)

// AspectRatio is one of the five supported ratio strings.
type AspectRatio string

const (
	AspectSquare   AspectRatio = "1:1"
	AspectStandard AspectRatio = "4:3"
	AspectClassic  AspectRatio = "3:2"
	AspectWide     AspectRatio = "16:9"
	AspectPortrait AspectRatio = "9:16"
)

// Resolution is the caller-facing output size tier.
type Resolution string

const (
	Resolution1K Resolution = "1K"
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
)

// OutputFormat is the requested image encoding.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"
	FormatJPEG OutputFormat = "jpeg"
	FormatWebP OutputFormat = "webp"
)

const (
	// MinImages and MaxImages bound the per-request image count.
	MinImages = 1
	MaxImages = 4
)

// GenerationRecord is one row per user-submitted generation request. Input
// fields are immutable after creation; only the lifecycle fields change, and
// only once, when the orchestrator issues the terminal patch.
type GenerationRecord struct {
	ID           string
	Prompt       string
	Model        string
	Provider     Provider
	AspectRatio  AspectRatio
	Resolution   Resolution
	OutputFormat OutputFormat
	NumImages    int
	Status       GenerationStatus
	ImageURLs    []string
	RequestID    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeProvider sanitizes free-form input into a supported provider.
// Unknown values fall back to fal rather than failing the request.
func NormalizeProvider(raw string) Provider {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ProviderHuggingFace):
		return ProviderHuggingFace
	default:
		return ProviderFal
	}
}

// NormalizeAspectRatio maps raw input onto a supported ratio, defaulting to 1:1.
func NormalizeAspectRatio(raw string) AspectRatio {
	switch AspectRatio(strings.TrimSpace(raw)) {
	case AspectStandard:
		return AspectStandard
	case AspectClassic:
		return AspectClassic
	case AspectWide:
		return AspectWide
	case AspectPortrait:
		return AspectPortrait
	default:
		return AspectSquare
	}
}

// NormalizeResolution maps raw input onto a supported tier, defaulting to 1K.
func NormalizeResolution(raw string) Resolution {
	switch Resolution(strings.ToUpper(strings.TrimSpace(raw))) {
	case Resolution2K:
		return Resolution2K
	case Resolution4K:
		return Resolution4K
	default:
		return Resolution1K
	}
}

// NormalizeOutputFormat maps raw input onto a supported encoding, defaulting to png.
func NormalizeOutputFormat(raw string) OutputFormat {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJPEG:
		return FormatJPEG
	case FormatWebP:
		return FormatWebP
	default:
		return FormatPNG
	}
}

// ClampImageCount forces the requested image count into [MinImages, MaxImages].
// Zero and negative values mean "unset" and collapse to the minimum.
func ClampImageCount(n int) int {
	if n < MinImages {
		return MinImages
	}
	if n > MaxImages {
		return MaxImages
	}
	return n
}
