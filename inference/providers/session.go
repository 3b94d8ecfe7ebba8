// Package providers - Inference sessions.
package providers

import (
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// envMu serialises onnxruntime environment initialisation; it is once per process.
var envMu sync.Mutex

// Session represents a model session from the onnxruntime with its
// preallocated input and output tensors.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// Close releases the resources associated with the Session.
//
// Returns:
//   - error: If destroying the native session fails.
func (s *Session) Close() error {
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	if s.Session != nil {
		if err := s.Session.Destroy(); err != nil {
			return errors.Wrap(err, "error destroying ORT session")
		}
		s.Session = nil
	}
	return nil
}

// NewSessionArgs represents the arguments for creating a new session.
type NewSessionArgs struct {
	// The path to the ONNX model file.
	ModelPath string
	// The input node name, e.g. "images".
	InputName string
	// The output node name, e.g. "output0".
	OutputName string
	// The input tensor shape, e.g. [1, 3, 640, 640].
	InputShape ort.Shape
	// The output tensor shape, e.g. [1, 8, 8400].
	OutputShape ort.Shape
}

// InitializeEnvironment loads the onnxruntime shared library if it has not
// been loaded yet.
//
// Arguments:
//   - libPath: The shared library path. Empty selects GetSharedLibPath.
//
// Returns:
//   - error: If the library is missing or fails to initialise.
func InitializeEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	if libPath == "" {
		var err error
		if libPath, err = GetSharedLibPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "error initializing ORT environment")
	}
	log.Printf("🧠 ONNX Runtime initialised from %s", libPath)
	return nil
}

// NewSession creates a new ONNX Runtime session with preallocated input and
// output tensors and the provider's execution provider registered.
//
// The environment must already be initialised with InitializeEnvironment.
//
// Arguments:
//   - provider: The execution provider for the session.
//   - threads: Intra-op and inter-op thread counts; 0 keeps runtime defaults.
//   - args: The arguments for the session.
//
// Returns:
//   - *Session: Session holding the native session and tensors. The caller closes it.
//   - error: An error if the session creation fails.
func NewSession(provider ExecutionProvider, intraOp, interOp int, args NewSessionArgs) (*Session, error) {
	input, err := ort.NewEmptyTensor[float32](args.InputShape)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](args.OutputShape)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	cleanup := func() {
		input.Destroy()
		output.Destroy()
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		cleanup()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(intraOp); err != nil {
		cleanup()
		return nil, errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(interOp); err != nil {
		cleanup()
		return nil, errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		cleanup()
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}

	if err := provider.Apply(options); err != nil {
		cleanup()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		args.ModelPath,
		[]string{args.InputName},
		[]string{args.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		options,
	)
	if err != nil {
		cleanup()
		return nil, errors.Wrapf(err, "error creating ORT session for %s", args.ModelPath)
	}

	return &Session{
		Session: session,
		Input:   input,
		Output:  output,
	}, nil
}
