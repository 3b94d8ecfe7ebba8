package dataset

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// PairingMode decides how images are matched with labels.
type PairingMode string

const (
	// PairByPosition zips the sorted lists index by index.
	PairByPosition PairingMode = "position"
	// PairByStem matches files sharing a base name without extension.
	PairByStem PairingMode = "stem"
)

// FilePair is one image and its label file.
type FilePair struct {
	Image string `yaml:"image"`
	Label string `yaml:"label"`
}

// Pair matches images with labels.
//
// Arguments:
//   - images: Sorted image paths.
//   - labels: Sorted label paths.
//   - mode: PairByPosition or PairByStem.
//
// Returns:
//   - []FilePair: Pairs in image order.
//   - error: *MismatchedCountError, *UnmatchedFileError or an unknown mode.
func Pair(images, labels []string, mode PairingMode) ([]FilePair, error) {
	switch mode {
	case PairByPosition, "":
		return pairByPosition(images, labels)
	case PairByStem:
		return pairByStem(images, labels)
	default:
		return nil, errors.Errorf("unknown pairing mode %q", mode)
	}
}

func pairByPosition(images, labels []string) ([]FilePair, error) {
	if len(images) != len(labels) {
		return nil, &MismatchedCountError{Images: len(images), Labels: len(labels)}
	}

	pairs := make([]FilePair, len(images))
	for i := range images {
		pairs[i] = FilePair{Image: images[i], Label: labels[i]}
	}
	return pairs, nil
}

func pairByStem(images, labels []string) ([]FilePair, error) {
	byStem := make(map[string]string, len(labels))
	for _, l := range labels {
		byStem[stem(l)] = l
	}

	var (
		pairs    = make([]FilePair, 0, len(images))
		orphans  []string
		consumed = make(map[string]bool, len(labels))
	)
	for _, img := range images {
		s := stem(img)
		label, ok := byStem[s]
		if !ok || consumed[s] {
			orphans = append(orphans, filepath.Base(img))
			continue
		}
		consumed[s] = true
		pairs = append(pairs, FilePair{Image: img, Label: label})
	}

	var unmatchedLabels []string
	for _, l := range labels {
		if !consumed[stem(l)] {
			unmatchedLabels = append(unmatchedLabels, filepath.Base(l))
		}
	}

	if len(orphans) > 0 || len(unmatchedLabels) > 0 {
		return nil, &UnmatchedFileError{Images: orphans, Labels: unmatchedLabels}
	}
	return pairs, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
