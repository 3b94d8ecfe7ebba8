package detectors

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-trafficlight/images"
)

// LetterboxFill pads the area around the resized frame (114/255 per channel).
var LetterboxFill = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Letterbox maps a frame into the model input without changing its aspect
// ratio: the frame is scaled by Gain to Size and placed at Pad inside the input.
type Letterbox struct {
	Gain float32
	Size image.Point
	Pad  image.Point
}

// NewLetterbox computes the geometry for fitting original into input.
//
// Arguments:
//   - original: The frame size.
//   - input: The model input size.
//
// Returns:
//   - Letterbox: Gain is min(input/original) over both axes; the padding is
//     split evenly with the odd pixel on the right or bottom.
func NewLetterbox(original, input image.Point) Letterbox {
	if original.X <= 0 || original.Y <= 0 {
		return Letterbox{Gain: 1, Size: input}
	}

	gain := math32.Min(
		float32(input.X)/float32(original.X),
		float32(input.Y)/float32(original.Y),
	)
	size := image.Pt(
		min(max(int(math32.Round(float32(original.X)*gain)), 1), input.X),
		min(max(int(math32.Round(float32(original.Y)*gain)), 1), input.Y),
	)

	return Letterbox{
		Gain: gain,
		Size: size,
		Pad:  image.Pt((input.X-size.X)/2, (input.Y-size.Y)/2),
	}
}

// Unmap converts a box in model input pixels back to frame pixels.
func (l Letterbox) Unmap(b images.Box) images.Box {
	return images.Box{
		X1: (b.X1 - float32(l.Pad.X)) / l.Gain,
		Y1: (b.Y1 - float32(l.Pad.Y)) / l.Gain,
		X2: (b.X2 - float32(l.Pad.X)) / l.Gain,
		Y2: (b.Y2 - float32(l.Pad.Y)) / l.Gain,
	}
}

// LetterboxImage resizes img into an input-sized canvas filled with
// LetterboxFill, keeping the aspect ratio.
//
// Arguments:
//   - img: The RGB frame.
//   - input: The model input size.
//
// Returns:
//   - *image.NRGBA: The input-sized, opaque image.
//   - Letterbox: The geometry used, for mapping boxes back.
func LetterboxImage(img image.Image, input image.Point) (*image.NRGBA, Letterbox) {
	lb := NewLetterbox(img.Bounds().Size(), input)

	resized := resize.Resize(uint(lb.Size.X), uint(lb.Size.Y), img, resize.Bilinear)
	canvas := imaging.New(input.X, input.Y, LetterboxFill)

	return imaging.Paste(canvas, resized, lb.Pad), lb
}
