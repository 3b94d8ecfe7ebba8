// Package images - Frame buffers, file loading and box geometry.
package images

import "github.com/chewxy/math32"

// Box is a floating point box in pixel space, as decoded from model output.
type Box struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Area returns the box area, or 0 for degenerate boxes.
func (b Box) Area() float32 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Clamp restricts the box to [0,w) x [0,h).
func (b Box) Clamp(w, h int) Box {
	fw, fh := float32(w), float32(h)
	return Box{
		X1: math32.Max(0, math32.Min(b.X1, fw)),
		Y1: math32.Max(0, math32.Min(b.Y1, fh)),
		X2: math32.Max(0, math32.Min(b.X2, fw)),
		Y2: math32.Max(0, math32.Min(b.Y2, fh)),
	}
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
//	IoU = Area of Intersection / Area of Union
//
// Arguments:
//   - r: The first box.
//   - o: The box to compare against.
//
// Returns:
//   - float32: A value between 0.0 (disjoint) and 1.0 (identical).
//
// Example Usage:
// ```go
//
//	iou := CalculateIoU(Box{0, 0, 10, 10}, Box{5, 5, 15, 15}) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Box) float32 {
	ix1 := math32.Max(r.X1, o.X1)
	iy1 := math32.Max(r.Y1, o.Y1)
	ix2 := math32.Min(r.X2, o.X2)
	iy2 := math32.Min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}
	return interArea / unionArea
}
