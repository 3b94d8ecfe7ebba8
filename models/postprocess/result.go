// Package postprocess - Postprocessing utilities for detector outputs.
package postprocess

import "github.com/nvr-ai/go-trafficlight/images"

// Result represents a single decoded detection before labelling.
type Result struct {
	// The bounding box of the result in frame pixels.
	Box images.Box
	// The confidence score of the result.
	Score float32
	// The predicted class index of the result.
	Class int
}
