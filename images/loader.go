package images

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Loader reads image files from disk into RGB frames.
type Loader struct{}

// NewLoader creates a new image loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads an image file and converts it to RGB channel order.
//
// Any format OpenCV can decode is accepted whatever the file extension; a
// decode failure is the only rejection. Grayscale and alpha inputs are
// collapsed to three channels by the decoder.
//
// Arguments:
//   - path: Path to the image file.
//
// Returns:
//   - Frame: The decoded frame; the caller owns it.
//   - error: If the file is missing or cannot be decoded.
func (l *Loader) Load(path string) (Frame, error) {
	if _, err := os.Stat(path); err != nil {
		return Frame{}, errors.Wrapf(err, "image not accessible: %s", path)
	}

	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()
	if bgr.Empty() {
		return Frame{}, errors.Errorf("failed to decode image: %s", path)
	}

	rgb := gocv.NewMat()
	if err := gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB); err != nil {
		rgb.Close()
		return Frame{}, errors.Wrapf(err, "failed to convert %s to RGB", path)
	}

	return NewFrame(rgb)
}

// WriteFrame encodes a frame to disk; the format follows the file extension.
func WriteFrame(path string, f Frame) error {
	bgr, err := f.ToBGR()
	if err != nil {
		return err
	}
	defer bgr.Close()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if !gocv.IMWrite(path, bgr) {
		return errors.Errorf("failed to write image: %s", path)
	}
	return nil
}
