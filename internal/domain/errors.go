package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrNoImages signals that the provider call(s) succeeded transport-wise
	// but yielded zero usable image URLs.
	ErrNoImages = errors.New("provider returned no images")
)
