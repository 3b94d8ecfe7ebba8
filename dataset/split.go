package dataset

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Split names, also used as output directory names.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// SplitNames lists the splits in materialisation order.
var SplitNames = []string{SplitTrain, SplitValidation, SplitTest}

// Split is a disjoint, exhaustive assignment of pairs to train, validation and test.
type Split struct {
	Train      []FilePair `yaml:"train"`
	Validation []FilePair `yaml:"validation"`
	Test       []FilePair `yaml:"test"`
}

// Get returns the pairs of a split by name.
func (s Split) Get(name string) []FilePair {
	switch name {
	case SplitTrain:
		return s.Train
	case SplitValidation:
		return s.Validation
	case SplitTest:
		return s.Test
	}
	return nil
}

// Len returns the total number of pairs across all splits.
func (s Split) Len() int {
	return len(s.Train) + len(s.Validation) + len(s.Test)
}

// TrainTestSplit shuffles pairs with a seeded permutation and holds out
// ceil(heldOut * n) of them.
//
// Either side may be empty for small inputs.
//
// Arguments:
//   - pairs: The pairs to split. Not modified.
//   - heldOut: Fraction to hold out, in (0, 1).
//   - seed: Permutation seed; equal inputs and seeds give equal outputs.
//
// Returns:
//   - rest: The n - ceil(heldOut*n) pairs that stay.
//   - held: The held-out pairs.
//   - error: If heldOut is out of range.
func TrainTestSplit(pairs []FilePair, heldOut float64, seed int64) (rest, held []FilePair, err error) {
	if !(heldOut > 0 && heldOut < 1) {
		return nil, nil, errors.Errorf("held-out fraction must be in (0, 1), got %v", heldOut)
	}

	n := len(pairs)
	nHeld := int(math.Ceil(heldOut * float64(n)))

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	held = make([]FilePair, 0, nHeld)
	for _, i := range perm[:nHeld] {
		held = append(held, pairs[i])
	}
	rest = make([]FilePair, 0, n-nHeld)
	for _, i := range perm[nHeld:] {
		rest = append(rest, pairs[i])
	}
	return rest, held, nil
}

// Partition applies TrainTestSplit twice: first holding out holdout of the
// pairs (train keeps the remainder), then sending testFraction of the
// held-out pairs to test and the rest to validation. Both splits use seed.
//
// Arguments:
//   - pairs: All pairs.
//   - holdout: Fraction held out of train, 0.7 by default.
//   - testFraction: Fraction of the held-out pairs that go to test, 0.8 by default.
//   - seed: Permutation seed.
//
// Returns:
//   - Split: The partition.
//   - error: If a fraction is out of range.
func Partition(pairs []FilePair, holdout, testFraction float64, seed int64) (Split, error) {
	train, heldOut, err := TrainTestSplit(pairs, holdout, seed)
	if err != nil {
		return Split{}, errors.Wrap(err, "first split")
	}

	validation, test, err := TrainTestSplit(heldOut, testFraction, seed)
	if err != nil {
		return Split{}, errors.Wrap(err, "second split")
	}

	return Split{Train: train, Validation: validation, Test: test}, nil
}
