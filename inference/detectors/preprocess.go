package detectors

import (
	"image"

	"github.com/pkg/errors"
)

// PrepareInput fills a CHW float32 tensor with an image letterboxed into the
// model input, scaled to [0,1].
//
// Arguments:
//   - img: The image to prepare, in RGB.
//   - size: The model input size (width, height).
//   - dst: The destination tensor data to populate.
//
// Returns:
//   - Letterbox: The geometry used, for mapping boxes back.
//   - error: If dst is too small for 3 x size.Y x size.X floats.
func PrepareInput(img image.Image, size image.Point, dst []float32) (Letterbox, error) {
	channelSize := size.X * size.Y
	if len(dst) < channelSize*3 {
		return Letterbox{}, errors.Errorf("destination tensor only holds %d floats, needs "+
			"%d (make sure it's the right shape!)", len(dst), channelSize*3)
	}
	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	boxed, lb := LetterboxImage(img, size)

	i := 0
	for y := 0; y < size.Y; y++ {
		off := boxed.PixOffset(0, y)
		for x := 0; x < size.X; x++ {
			red[i] = float32(boxed.Pix[off]) / 255.0
			green[i] = float32(boxed.Pix[off+1]) / 255.0
			blue[i] = float32(boxed.Pix[off+2]) / 255.0
			off += 4
			i++
		}
	}
	return lb, nil
}
