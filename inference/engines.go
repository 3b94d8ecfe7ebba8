// Package inference - Inference engine interface and implementations
package inference

// EngineType is the detector backend an engine runs on.
type EngineType string

const (
	// EngineOpenCV runs the model through OpenCV's DNN module.
	EngineOpenCV EngineType = "opencv"
	// EngineONNXRuntime runs the model through the onnxruntime library.
	EngineONNXRuntime EngineType = "onnxruntime"
)

// Engines is a list of all supported engines
var Engines = []EngineType{EngineOpenCV, EngineONNXRuntime}

// IsSupported reports whether t names a known engine.
func IsSupported(t EngineType) bool {
	for _, e := range Engines {
		if e == t {
			return true
		}
	}
	return false
}
