package detectors

import (
	"context"
	"image"
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/inference/providers"
)

// ONNXDetector runs the YOLOv8 export through ONNX Runtime with a
// configurable execution provider.
type ONNXDetector struct {
	config     Config
	session    *providers.Session
	numClasses int
	anchors    int
	mu         sync.Mutex
}

// NewONNXDetector initialises ONNX Runtime and creates a session whose
// output tensor is sized for the configured labels.
//
// Arguments:
//   - config: The detector configuration. len(Labels) must match the model's class count.
//
// Returns:
//   - *ONNXDetector: The loaded detector.
//   - error: If the runtime, provider or model fail to load.
func NewONNXDetector(config Config) (*ONNXDetector, error) {
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not accessible: %s", config.ModelPath)
	}
	if len(config.Labels) == 0 {
		return nil, errors.New("onnxruntime backend needs at least one label")
	}

	if err := providers.InitializeEnvironment(config.Provider.LibraryPath); err != nil {
		return nil, err
	}

	provider, err := providers.NewProvider(config.Provider)
	if err != nil {
		return nil, err
	}

	numClasses := len(config.Labels)
	anchors := YOLOv8Anchors(config.InputShape)

	session, err := providers.NewSession(provider, config.Provider.IntraOpThreads, config.Provider.InterOpThreads,
		providers.NewSessionArgs{
			ModelPath:   config.ModelPath,
			InputName:   "images",
			OutputName:  "output0",
			InputShape:  ort.NewShape(1, 3, int64(config.InputShape.Y), int64(config.InputShape.X)),
			OutputShape: ort.NewShape(1, int64(4+numClasses), int64(anchors)),
		})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ ONNX Runtime detector loaded %s on %s", config.ModelPath, provider.Backend())

	return &ONNXDetector{
		config:     config,
		session:    session,
		numClasses: numClasses,
		anchors:    anchors,
	}, nil
}

// Detect runs inference on an RGB frame.
//
// Arguments:
//   - ctx: Checked before inference starts.
//   - frame: The frame to detect traffic lights in.
//
// Returns:
//   - []common.Detection: Detections in frame pixel coordinates. May be empty.
//   - error: If preprocessing or the session run fails.
func (d *ONNXDetector) Detect(ctx context.Context, frame images.Frame) ([]common.Detection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img, err := frame.ToImage()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil, errors.New("detector is closed")
	}

	lb, err := PrepareInput(img, d.config.InputShape, d.session.Input.GetData())
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}

	if err := d.session.Session.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}

	return postprocessOutput(d.session.Output.GetData(), d.numClasses, d.anchors, d.config, lb,
		image.Pt(frame.Width(), frame.Height()))
}

// Close releases the native session and tensors.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil
	}
	err := d.session.Close()
	d.session = nil
	return err
}
