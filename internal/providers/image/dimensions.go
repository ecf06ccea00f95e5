package image

import "math"

// hfBaseSize is the pixel size the larger aspect component is scaled to.
const hfBaseSize = 1024

// hfDimensionStep is the multiple both dimensions are rounded to; it is also
// the floor, so a dimension never rounds down to zero.
const hfDimensionStep = 64

var aspectComponents = map[string][2]int{
	"1:1":  {1, 1},
	"4:3":  {4, 3},
	"3:2":  {3, 2},
	"16:9": {16, 9},
	"9:16": {9, 16},
}

// ResolveDimensions converts an aspect ratio string into pixel width and
// height for providers that take explicit dimensions. The larger ratio
// component is scaled to hfBaseSize and both results are rounded to the
// nearest multiple of hfDimensionStep. Unsupported ratios fall back to 1:1.
func ResolveDimensions(aspectRatio string) (width, height int) {
	parts, ok := aspectComponents[aspectRatio]
	if !ok {
		parts = aspectComponents["1:1"]
	}
	w, h := parts[0], parts[1]
	larger := w
	if h > larger {
		larger = h
	}
	scale := float64(hfBaseSize) / float64(larger)
	return roundToStep(float64(w) * scale), roundToStep(float64(h) * scale)
}

func roundToStep(v float64) int {
	rounded := int(math.Round(v/hfDimensionStep)) * hfDimensionStep
	if rounded < hfDimensionStep {
		return hfDimensionStep
	}
	return rounded
}
