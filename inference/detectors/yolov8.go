package detectors

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/models/postprocess"
)

// YOLOv8Anchors returns the number of anchor points a YOLOv8 head emits for
// an input size: one per cell of the stride 8, 16 and 32 grids.
//
// Example: 640x640 gives 80*80 + 40*40 + 20*20 = 8400.
func YOLOv8Anchors(input image.Point) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		n += (input.X / stride) * (input.Y / stride)
	}
	return n
}

// DecodeYOLOv8 decodes a raw YOLOv8 output tensor of shape [1, 4+nc, anchors].
//
// Rows 0-3 hold the box centre and size in model input pixels; rows 4.. hold
// per-class scores. Each anchor keeps its best class; anchors scoring below
// the threshold are dropped. Boxes are mapped back through the letterbox the
// frame was fitted with (padding removed, divided by the gain) and clamped to
// the frame.
//
// Arguments:
//   - output: The flattened output tensor. It is not modified.
//   - numClasses: Number of class score rows.
//   - anchors: Number of anchor columns.
//   - lb: The letterbox the frame was fitted into the model input with.
//   - original: Size of the frame the boxes are mapped back to.
//   - confThreshold: Minimum class score to keep an anchor.
//
// Returns:
//   - []postprocess.Result: Candidates in anchor order, before NMS.
//   - error: If the output size does not match the declared shape.
func DecodeYOLOv8(
	output []float32,
	numClasses, anchors int,
	lb Letterbox,
	original image.Point,
	confThreshold float32,
) ([]postprocess.Result, error) {
	if numClasses < 1 || anchors < 1 {
		return nil, errors.Errorf("invalid output shape: %d classes, %d anchors", numClasses, anchors)
	}
	if lb.Gain <= 0 {
		return nil, errors.Errorf("invalid letterbox gain %v", lb.Gain)
	}

	rows := 4 + numClasses
	if len(output) < rows*anchors {
		return nil, errors.Errorf("output holds %d floats, need %d for [1, %d, %d]",
			len(output), rows*anchors, rows, anchors)
	}

	data, err := anchorRows(output, rows, anchors)
	if err != nil {
		return nil, err
	}

	var results []postprocess.Result
	for i := 0; i < anchors; i++ {
		row := data[i*rows : (i+1)*rows]

		classID, score := argmax(row[4:])
		if score < confThreshold {
			continue
		}

		cx, cy, w, h := row[0], row[1], row[2], row[3]
		box := lb.Unmap(images.Box{
			X1: cx - w/2,
			Y1: cy - h/2,
			X2: cx + w/2,
			Y2: cy + h/2,
		}).Clamp(original.X, original.Y)
		if box.Area() <= 0 {
			continue
		}

		results = append(results, postprocess.Result{Box: box, Score: score, Class: classID})
	}

	return results, nil
}

// anchorRows transposes the [rows, anchors] output into one contiguous row
// per anchor. The output slice is copied, not modified.
func anchorRows(output []float32, rows, anchors int) ([]float32, error) {
	backing := make([]float32, rows*anchors)
	copy(backing, output)
	t := tensor.New(tensor.WithShape(rows, anchors), tensor.WithBacking(backing))

	if err := t.T(); err != nil {
		return nil, errors.Wrap(err, "failed to transpose output")
	}
	if err := t.Transpose(); err != nil {
		return nil, errors.Wrap(err, "failed to transpose output")
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("unexpected output data type %T", t.Data())
	}
	return data, nil
}

// argmax returns the index and value of the largest score.
func argmax(scores []float32) (int, float32) {
	best, bestScore := 0, math32.Inf(-1)
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

// ToDetections labels NMS survivors and truncates their boxes to whole
// pixels. Boxes that collapse to zero area are dropped.
//
// Arguments:
//   - results: Decoded candidates in frame coordinates.
//   - labels: Class names by class index.
//
// Returns:
//   - []common.Detection: Detections in the same order as results.
func ToDetections(results []postprocess.Result, labels []string) []common.Detection {
	detections := make([]common.Detection, 0, len(results))
	for _, r := range results {
		d := common.Detection{
			Label:      common.LabelFor(labels, r.Class),
			ClassID:    r.Class,
			Confidence: math32.Min(math32.Max(r.Score, 0), 1),
			X1:         int(r.Box.X1),
			Y1:         int(r.Box.Y1),
			X2:         int(r.Box.X2),
			Y2:         int(r.Box.Y2),
		}
		if d.Valid() {
			detections = append(detections, d)
		}
	}
	return detections
}

// postprocessOutput runs the shared decode, NMS and labelling steps.
func postprocessOutput(
	output []float32,
	numClasses, anchors int,
	config Config,
	lb Letterbox,
	original image.Point,
) ([]common.Detection, error) {
	candidates, err := DecodeYOLOv8(output, numClasses, anchors, lb, original, config.ConfidenceThreshold)
	if err != nil {
		return nil, err
	}

	kept := postprocess.ApplyNMS(candidates, postprocess.NMSConfig{
		IoUThreshold: config.NMSThreshold,
		ClassAware:   true,
	})

	return ToDetections(kept, config.Labels), nil
}
