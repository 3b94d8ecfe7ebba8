// Package detectors - YOLOv8 traffic light detectors backed by OpenCV DNN or ONNX Runtime.
package detectors

import (
	"image"

	"github.com/nvr-ai/go-trafficlight/inference/providers"
)

// DefaultLabels are the traffic light classes in model output order.
var DefaultLabels = []string{"red", "green", "yellow", "off"}

// Config represents the configuration shared by every detector backend.
type Config struct {
	// ModelPath is the ONNX export of the detector.
	ModelPath string `yaml:"model_path"`

	// Labels lists class names by class index.
	Labels []string `yaml:"labels"`

	// InputShape defines the model input dimensions (width, height).
	InputShape image.Point `yaml:"input_shape"`

	// ConfidenceThreshold filters detections below this confidence level.
	ConfidenceThreshold float32 `yaml:"confidence_threshold"`

	// NMSThreshold controls Non-Maximum Suppression IoU threshold.
	NMSThreshold float32 `yaml:"nms_threshold"`

	// Provider configures ONNX Runtime. Ignored by the OpenCV backend.
	Provider providers.Config `yaml:"onnxruntime"`
}

// DefaultConfig returns the configuration for the bundled YOLOv8s traffic light model.
//
// Returns:
//   - Config: Default detector configuration
//
// @example
// config := DefaultConfig()
// config.ModelPath = "path/to/model.onnx"
// detector, err := NewOpenCVDetector(config)
func DefaultConfig() Config {
	return Config{
		ModelPath:           "yolov8s_traffic_lights.onnx",
		Labels:              append([]string(nil), DefaultLabels...),
		InputShape:          image.Point{X: 640, Y: 640},
		ConfidenceThreshold: 0.25,
		NMSThreshold:        0.7,
		Provider:            providers.DefaultConfig(),
	}
}
