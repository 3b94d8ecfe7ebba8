// Package providers - CUDA execution provider.
package providers

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CUDAProviderBackend uses NVIDIA CUDA for inference optimization.
	CUDAProviderBackend ProviderBackend = "cuda"
)

// CUDAOptions contains arguments for the CUDA provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
type CUDAOptions struct {
	// The device ID.
	DeviceID int `yaml:"device_id"`
	// The size limit of the device memory arena in bytes. 0 leaves the runtime default.
	GPUMemLimit int64 `yaml:"gpu_mem_limit"`
	// The type of search done for cuDNN convolution algorithms.
	// 0: EXHAUSTIVE, 1: HEURISTIC, 2: DEFAULT
	CudnnConvAlgoSearch int `yaml:"cudnn_conv_algo_search"`
	// Whether to do copies in the default stream or use separate streams.
	DoCopyInDefaultStream bool `yaml:"do_copy_in_default_stream"`
}

// ToMap converts the options to the key/value form ONNX Runtime expects.
func (o CUDAOptions) ToMap() map[string]string {
	search := "DEFAULT"
	switch o.CudnnConvAlgoSearch {
	case 0:
		search = "EXHAUSTIVE"
	case 1:
		search = "HEURISTIC"
	}

	m := map[string]string{
		"device_id":                 fmt.Sprintf("%d", o.DeviceID),
		"cudnn_conv_algo_search":    search,
		"do_copy_in_default_stream": fmt.Sprintf("%d", boolToInt(o.DoCopyInDefaultStream)),
	}
	if o.GPUMemLimit > 0 {
		m["gpu_mem_limit"] = fmt.Sprintf("%d", o.GPUMemLimit)
	}
	return m
}

// CUDAProvider implements the ExecutionProvider interface.
type CUDAProvider struct {
	options CUDAOptions
}

// NewCUDAProvider creates a new CUDA provider.
func NewCUDAProvider(args CUDAOptions) *CUDAProvider {
	return &CUDAProvider{
		options: args,
	}
}

// Backend returns the backend of the CUDA provider.
func (p *CUDAProvider) Backend() ProviderBackend {
	return CUDAProviderBackend
}

// Apply appends the CUDA execution provider to the session options.
func (p *CUDAProvider) Apply(options *ort.SessionOptions) error {
	cuda, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return errors.Wrap(err, "error creating CUDA options")
	}
	defer cuda.Destroy()

	if err := cuda.Update(p.options.ToMap()); err != nil {
		return errors.Wrap(err, "error converting CUDA options")
	}
	if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
		return errors.Wrap(err, "error enabling CUDA")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
