// Package common - Detection type shared by engines, the annotator and the viewer.
package common

import (
	"fmt"
	"image"
)

// UnknownLabel is assigned to class ids the label set does not cover.
const UnknownLabel = "unknown"

// Detection represents a single detected object in frame pixel coordinates.
//
// X1,Y1 and X2,Y2 are the corner pixels the box is drawn through; both are
// inclusive.
type Detection struct {
	Label          string
	ClassID        int
	Confidence     float32
	X1, Y1, X2, Y2 int
}

// String formats the detection for logs.
func (d Detection) String() string {
	return fmt.Sprintf("Object %s (confidence %.2f): (%d, %d), (%d, %d)",
		d.Label, d.Confidence, d.X1, d.Y1, d.X2, d.Y2)
}

// Caption returns the text burned in above the box, e.g. "red (0.87)".
func (d Detection) Caption() string {
	return fmt.Sprintf("%s (%.2f)", d.Label, d.Confidence)
}

// ToRect converts the detection to an image.Rectangle covering both corner
// pixels, so drawing it outlines X2 and Y2 themselves.
//
// Returns:
//   - An image.Rectangle with canonicalized coordinates and exclusive Max.
//
// @example
// d := Detection{X1: 10, Y1: 20, X2: 30, Y2: 60}
// d.ToRect() // (10,20)-(31,61)
func (d Detection) ToRect() image.Rectangle {
	r := image.Rect(d.X1, d.Y1, d.X2, d.Y2).Canon()
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// Valid reports whether the box has positive area and a confidence in [0, 1].
func (d Detection) Valid() bool {
	return d.X1 < d.X2 && d.Y1 < d.Y2 && d.Confidence >= 0 && d.Confidence <= 1
}

// LabelFor resolves a class id against a label set.
//
// Arguments:
//   - labels: The ordered class names the model was trained with.
//   - classID: The class index emitted by the model.
//
// Returns:
//   - The class name, or UnknownLabel when classID is out of range.
func LabelFor(labels []string, classID int) string {
	if classID >= 0 && classID < len(labels) {
		return labels[classID]
	}
	return UnknownLabel
}
