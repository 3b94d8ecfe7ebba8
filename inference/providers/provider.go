// Package providers - ONNX Runtime execution providers and sessions.
package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend names an ONNX Runtime execution provider.
type ProviderBackend string

// ExecutionProvider represents the contract that all execution providers must implement.
type ExecutionProvider interface {
	// Backend returns the provider name.
	Backend() ProviderBackend
	// Apply registers the provider on a set of session options.
	Apply(options *ort.SessionOptions) error
}

// Config selects an execution provider and carries the options for each backend.
//
// Only the block matching Backend is used.
type Config struct {
	// Backend specifies the execution provider to use.
	Backend ProviderBackend `yaml:"backend"`
	// LibraryPath is the onnxruntime shared library. Empty selects GetSharedLibPath.
	LibraryPath string `yaml:"library_path"`
	// IntraOpThreads parallelises execution within graph nodes. 0 uses the runtime default.
	IntraOpThreads int `yaml:"intra_op_threads"`
	// InterOpThreads parallelises independent graph nodes. 0 uses the runtime default.
	InterOpThreads int `yaml:"inter_op_threads"`

	CoreML   CoreMLOptions   `yaml:"coreml"`
	CUDA     CUDAOptions     `yaml:"cuda"`
	OpenVINO OpenVINOOptions `yaml:"openvino"`
}

// DefaultConfig returns a CPU configuration with runtime-chosen thread counts.
//
// Returns:
//   - Config: The default provider configuration.
func DefaultConfig() Config {
	return Config{
		Backend:  CPUProviderBackend,
		CoreML:   CoreMLOptions{MLComputeUnits: "ALL"},
		OpenVINO: OpenVINOOptions{DeviceType: "CPU", Precision: "FP32"},
	}
}

// Backends lists every supported provider backend.
var Backends = []ProviderBackend{
	CPUProviderBackend,
	CoreMLProviderBackend,
	CUDAProviderBackend,
	OpenVINOProviderBackend,
}

// NewProvider creates a new provider based on the configured backend.
//
// Arguments:
//   - config: The provider configuration.
//
// Returns:
//   - ExecutionProvider: The new provider.
//   - error: An error if the backend is unknown.
func NewProvider(config Config) (ExecutionProvider, error) {
	switch config.Backend {
	case CPUProviderBackend, "":
		return NewCPUProvider(), nil
	case CoreMLProviderBackend:
		return NewCoreMLProvider(config.CoreML), nil
	case OpenVINOProviderBackend:
		return NewOpenVINOProvider(config.OpenVINO), nil
	case CUDAProviderBackend:
		return NewCUDAProvider(config.CUDA), nil
	default:
		return nil, errors.Errorf("unknown execution provider %q, want one of %v", config.Backend, Backends)
	}
}
