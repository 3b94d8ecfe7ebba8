// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-trafficlight/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold float32 // Overlap threshold for suppression.
	ClassAware   bool    // If true, suppress only within same class.
}

// DefaultNMSConfig returns class-aware suppression at IoU 0.7.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{IoUThreshold: 0.7, ClassAware: true}
}

// ApplyNMS performs greedy Non-Maximum Suppression.
//
// The input is not modified. Survivors keep the order in which they appear in
// the input.
//
// Arguments:
//   - detections: Candidate detections in any order.
//   - config: NMS configuration. If ClassAware is false, overlapping boxes of
//     different classes also suppress each other.
//
// Returns:
//   - Filtered slice of detections. If no detections are provided, returns nil.
func ApplyNMS(detections []Result, config NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}

	// Visit candidates by descending score; ties keep input order.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return detections[order[a]].Score > detections[order[b]].Score
	})

	suppressed := make([]bool, n)
	for oi, i := range order {
		if suppressed[i] {
			continue
		}
		anchor := detections[i]

		for _, j := range order[oi+1:] {
			if suppressed[j] {
				continue
			}
			if config.ClassAware && anchor.Class != detections[j].Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, detections[j].Box) > config.IoUThreshold {
				suppressed[j] = true
			}
		}
	}

	filtered := make([]Result, 0, n)
	for i, r := range detections {
		if !suppressed[i] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
