package annotate

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
)

const (
	boxThickness  = 2
	textThickness = 2
	textScale     = 0.5
	textOffsetY   = 10
)

// Annotator draws detections onto copies of a frame.
type Annotator struct {
	palette *Palette
}

// NewAnnotator creates an annotator. A nil palette selects DefaultPalette.
func NewAnnotator(palette *Palette) *Annotator {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Annotator{palette: palette}
}

// Annotate draws a rectangle and a "label (0.87)" caption for every detection.
//
// The caption sits 10 pixels above the box's top-left corner and may fall
// outside the image for boxes touching the top edge.
//
// Arguments:
//   - frame: The source frame. It is never modified.
//   - detections: Detections in frame pixel coordinates.
//
// Returns:
//   - images.Frame: A new frame owned by the caller.
//   - error: If the frame is empty or drawing fails.
func (a *Annotator) Annotate(frame images.Frame, detections []common.Detection) (images.Frame, error) {
	if frame.Empty() {
		return images.Frame{}, errors.New("cannot annotate an empty frame")
	}

	out := frame.Clone()
	mat := out.Mat()

	for _, det := range detections {
		c := toMatColor(a.palette.ColorFor(det.Label))

		if err := gocv.Rectangle(&mat, det.ToRect(), c, boxThickness); err != nil {
			out.Close()
			return images.Frame{}, errors.Wrapf(err, "failed to draw box for %s", det)
		}

		origin := image.Pt(det.X1, det.Y1-textOffsetY)
		if err := gocv.PutText(&mat, det.Caption(), origin, gocv.FontHersheySimplex, textScale, c, textThickness); err != nil {
			out.Close()
			return images.Frame{}, errors.Wrapf(err, "failed to draw caption for %s", det)
		}
	}

	return out, nil
}

// toMatColor swaps red and blue. gocv writes colours as BGR scalars while
// frames hold RGB pixels.
func toMatColor(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.B, G: c.G, B: c.R, A: c.A}
}
