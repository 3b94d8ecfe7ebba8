// Package providers - CoreML execution provider.
package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
)

// CoreML flag bits accepted by the legacy provider API.
const (
	coreMLFlagUseCPUOnly           uint32 = 0x001
	coreMLFlagEnableOnSubgraph     uint32 = 0x002
	coreMLFlagOnlyEnableDeviceANE  uint32 = 0x004
	coreMLFlagOnlyStaticInputShape uint32 = 0x008
)

// CoreMLOptions contains arguments for the CoreML provider.
// See: https://onnxruntime.ai/docs/execution-providers/CoreML-ExecutionProvider.html
type CoreMLOptions struct {
	// CPUOnly: limit CoreML to running on CPU only.
	// CPUAndNeuralEngine: only run on devices with an Apple Neural Engine.
	// ALL: enable CoreML EP for all compatible Apple devices.
	// Default: ALL
	MLComputeUnits string `yaml:"ml_compute_units"`
	// Only allow the CoreML EP to take nodes with inputs that have static shapes.
	RequireStaticInputShapes bool `yaml:"require_static_input_shapes"`
	// Enable CoreML EP to run on a subgraph in the body of a control flow operator.
	EnableOnSubgraphs bool `yaml:"enable_on_subgraphs"`
}

// flags converts the options to the bit set the provider API expects.
func (o CoreMLOptions) flags() uint32 {
	var f uint32
	switch o.MLComputeUnits {
	case "CPUOnly":
		f |= coreMLFlagUseCPUOnly
	case "CPUAndNeuralEngine":
		f |= coreMLFlagOnlyEnableDeviceANE
	}
	if o.RequireStaticInputShapes {
		f |= coreMLFlagOnlyStaticInputShape
	}
	if o.EnableOnSubgraphs {
		f |= coreMLFlagEnableOnSubgraph
	}
	return f
}

// CoreMLProvider implements the ExecutionProvider interface.
type CoreMLProvider struct {
	options CoreMLOptions
}

// NewCoreMLProvider creates a new CoreML provider.
func NewCoreMLProvider(options CoreMLOptions) *CoreMLProvider {
	return &CoreMLProvider{
		options: options,
	}
}

// Backend returns the backend of the CoreML provider.
func (p *CoreMLProvider) Backend() ProviderBackend {
	return CoreMLProviderBackend
}

// Apply appends the CoreML execution provider to the session options.
func (p *CoreMLProvider) Apply(options *ort.SessionOptions) error {
	if err := options.AppendExecutionProviderCoreML(p.options.flags()); err != nil {
		return errors.Wrap(err, "error enabling CoreML")
	}
	return nil
}
