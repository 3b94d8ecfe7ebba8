// Package inference - Inference engine interface and implementations.
package inference

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/inference/detectors"
)

// Engine detects traffic lights in a frame.
type Engine interface {
	// Detect returns zero or more detections in frame pixel coordinates.
	Detect(ctx context.Context, frame images.Frame) ([]common.Detection, error)
	// Close releases native resources.
	Close() error
}

// EngineBuilder assembles an engine with a fluent API.
type EngineBuilder struct {
	engineType EngineType
	config     detectors.Config
	configured bool
	err        error
}

// NewEngineBuilder creates a new engine builder using the OpenCV backend.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{engineType: EngineOpenCV}
}

// WithBackend sets the backend for the engine.
//
// Arguments:
//   - engineType: The backend to run the model on.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithBackend(engineType EngineType) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if !IsSupported(engineType) {
		b.err = errors.Errorf("unsupported engine backend %q, want one of %v", engineType, Engines)
		return b
	}
	b.engineType = engineType
	return b
}

// WithDetector sets the detector configuration for the engine.
//
// Arguments:
//   - cfg: The detector configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithDetector(cfg detectors.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if cfg.ModelPath == "" {
		b.err = errors.New("model path is required")
		return b
	}
	b.config = cfg
	b.configured = true
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// Build loads the model on the selected backend.
//
// Returns:
//   - Engine: The engine. The caller closes it.
//   - error: The first configuration error, or the model load failure.
func (b *EngineBuilder) Build() (Engine, error) {
	if b.HasError() {
		return nil, b.err
	}
	if !b.configured {
		return nil, errors.New("detector not configured")
	}

	if b.engineType == EngineONNXRuntime {
		d, err := detectors.NewONNXDetector(b.config)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	d, err := detectors.NewOpenCVDetector(b.config)
	if err != nil {
		return nil, err
	}
	return d, nil
}
