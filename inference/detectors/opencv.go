package detectors

import (
	"context"
	"image"
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
)

// OpenCVDetector runs the YOLOv8 ONNX export through OpenCV's DNN module.
type OpenCVDetector struct {
	config Config
	net    gocv.Net
	mu     sync.Mutex
}

// NewOpenCVDetector loads the model with gocv.ReadNet().
//
// Arguments:
//   - config: The detector configuration.
//
// Returns:
//   - *OpenCVDetector: The loaded detector.
//   - error: If the model file is missing or OpenCV cannot parse it.
func NewOpenCVDetector(config Config) (*OpenCVDetector, error) {
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not accessible: %s", config.ModelPath)
	}

	net := gocv.ReadNet(config.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model: %s", config.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Printf("✅ OpenCV detector loaded %s (%d labels)", config.ModelPath, len(config.Labels))

	return &OpenCVDetector{config: config, net: net}, nil
}

// Detect runs inference on an RGB frame.
//
// Arguments:
//   - ctx: Checked before inference starts.
//   - frame: The frame to detect traffic lights in.
//
// Returns:
//   - []common.Detection: Detections in frame pixel coordinates. May be empty.
//   - error: If the frame is empty or the model output is malformed.
func (d *OpenCVDetector) Detect(ctx context.Context, frame images.Frame) ([]common.Detection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if frame.Empty() {
		return nil, errors.New("cannot detect on an empty frame")
	}

	img, err := frame.ToImage()
	if err != nil {
		return nil, err
	}
	boxed, lb := LetterboxImage(img, d.config.InputShape)
	input, err := images.FrameFromImage(boxed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}
	defer input.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	// Already RGB and input-sized: no channel swap, no resize.
	blob := gocv.BlobFromImage(input.Mat(), 1.0/255.0, d.config.InputShape, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, errors.Errorf("unexpected model output shape %v, want [1, 4+nc, anchors]", dims)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model output")
	}

	return postprocessOutput(data, dims[1]-4, dims[2], d.config, lb, image.Pt(frame.Width(), frame.Height()))
}

// Close releases the network.
func (d *OpenCVDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
