// Package providers - OpenVINO execution provider.
package providers

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	// Overrides the accelerator hardware type (CPU, GPU, NPU) at runtime.
	DeviceType string `yaml:"device_type"`
	// Supported precisions for HW {CPU:FP32, GPU:[FP32, FP16, ACCURACY], NPU:FP16}.
	Precision string `yaml:"precision"`
	// Overrides the accelerator default number of threads. 0 keeps the build default.
	NumOfThreads int `yaml:"num_of_threads"`
	// Rewrites dynamic shaped models to static shape at runtime.
	DisableDynamicShapes bool `yaml:"disable_dynamic_shapes"`
}

// ToMap converts the options to the key/value form ONNX Runtime expects.
func (o OpenVINOOptions) ToMap() map[string]string {
	m := map[string]string{
		"device_type":            o.DeviceType,
		"precision":              o.Precision,
		"disable_dynamic_shapes": fmt.Sprintf("%t", o.DisableDynamicShapes),
	}
	if o.NumOfThreads > 0 {
		m["num_of_threads"] = fmt.Sprintf("%d", o.NumOfThreads)
	}
	return m
}

// OpenVINOProvider implements the ExecutionProvider interface.
type OpenVINOProvider struct {
	options OpenVINOOptions
}

// NewOpenVINOProvider creates a new OpenVINO provider.
func NewOpenVINOProvider(args OpenVINOOptions) *OpenVINOProvider {
	return &OpenVINOProvider{options: args}
}

// Backend returns the backend of the OpenVINO provider.
func (p *OpenVINOProvider) Backend() ProviderBackend {
	return OpenVINOProviderBackend
}

// Apply appends the OpenVINO execution provider to the session options.
func (p *OpenVINOProvider) Apply(options *ort.SessionOptions) error {
	if err := options.AppendExecutionProviderOpenVINO(p.options.ToMap()); err != nil {
		return errors.Wrap(err, "error enabling OpenVINO")
	}
	return nil
}
