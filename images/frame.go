package images

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Frame is an 8-bit, 3-channel pixel buffer held in RGB channel order.
//
// A Frame owns its Mat. Callers release it with Close once it is no longer
// displayed or processed.
type Frame struct {
	mat   gocv.Mat
	valid bool
}

// NewFrame wraps an RGB CV_8UC3 Mat, taking ownership of it.
//
// Arguments:
//   - mat: A non-empty Mat whose channels are already in R, G, B order.
//
// Returns:
//   - Frame: The wrapped frame.
//   - error: If the Mat is empty or not 8-bit 3-channel.
func NewFrame(mat gocv.Mat) (Frame, error) {
	if mat.Empty() {
		return Frame{}, errors.New("frame mat is empty")
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return Frame{}, errors.Errorf("frame mat must be CV_8UC3, got %v", mat.Type())
	}
	return Frame{mat: mat, valid: true}, nil
}

// NewBlankFrame allocates a width x height frame filled with a single colour.
func NewBlankFrame(width, height int, fill color.RGBA) Frame {
	mat := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(fill.R), float64(fill.G), float64(fill.B), 0),
		height, width, gocv.MatTypeCV8UC3,
	)
	return Frame{mat: mat, valid: true}
}

// FrameFromImage copies a Go image into a new RGB frame.
func FrameFromImage(img image.Image) (Frame, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return Frame{}, errors.New("image has no pixels")
	}

	data := make([]byte, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			data = append(data, c.R, c.G, c.B)
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return Frame{}, errors.Wrap(err, "failed to build frame mat")
	}
	return Frame{mat: mat, valid: true}, nil
}

// Mat exposes the underlying RGB Mat. The frame keeps ownership.
func (f Frame) Mat() gocv.Mat {
	return f.mat
}

// Width returns the frame width in pixels.
func (f Frame) Width() int {
	return f.mat.Cols()
}

// Height returns the frame height in pixels.
func (f Frame) Height() int {
	return f.mat.Rows()
}

// Bounds returns the frame rectangle anchored at the origin.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width(), f.Height())
}

// Empty reports whether the frame holds no pixels.
func (f Frame) Empty() bool {
	return !f.valid || f.mat.Empty()
}

// At returns the pixel at (x, y).
func (f Frame) At(x, y int) color.RGBA {
	v := f.mat.GetVecbAt(y, x)
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 255}
}

// Clone returns a deep copy that the caller owns.
func (f Frame) Clone() Frame {
	if !f.valid {
		return Frame{}
	}
	return Frame{mat: f.mat.Clone(), valid: true}
}

// Close releases the native buffer.
func (f Frame) Close() error {
	if !f.valid {
		return nil
	}
	return f.mat.Close()
}

// ToImage converts the frame into a Go image for display.
func (f Frame) ToImage() (*image.RGBA, error) {
	if f.Empty() {
		return nil, errors.New("frame is empty")
	}
	w, h := f.Width(), f.Height()
	data := f.mat.ToBytes()
	if len(data) < w*h*3 {
		return nil, errors.Errorf("frame holds %d bytes, need %d", len(data), w*h*3)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i < w*h*3; i, j = i+3, j+4 {
		dst.Pix[j] = data[i]
		dst.Pix[j+1] = data[i+1]
		dst.Pix[j+2] = data[i+2]
		dst.Pix[j+3] = 255
	}
	return dst, nil
}

// ToBGR returns a new Mat in OpenCV's native BGR order, for IMWrite and
// gocv windows. The caller owns the result.
func (f Frame) ToBGR() (gocv.Mat, error) {
	bgr := gocv.NewMat()
	if err := gocv.CvtColor(f.mat, &bgr, gocv.ColorRGBToBGR); err != nil {
		bgr.Close()
		return gocv.Mat{}, errors.Wrap(err, "failed to convert frame to BGR")
	}
	return bgr, nil
}
