package dataset

import (
	"log"

	"github.com/pkg/errors"
)

// Options configures a partition run.
type Options struct {
	// Source is the dataset root holding images/ and labels/.
	Source string
	// Output receives train/, validation/, test/ and the manifest.
	Output string
	// Seed drives both shuffles.
	Seed int64
	// Pairing selects how images meet labels.
	Pairing PairingMode
	// Holdout is the fraction kept out of train.
	Holdout float64
	// TestFraction is the share of the held-out pairs that goes to test.
	TestFraction float64
	// WriteManifest stores manifest.yaml after copying.
	WriteManifest bool
}

// DefaultOptions returns the historical defaults: source "valid",
// output "custom_split", seed 1, 70% held out of train, 80% of that to test.
func DefaultOptions() Options {
	return Options{
		Source:        "valid",
		Output:        "custom_split",
		Seed:          1,
		Pairing:       PairByPosition,
		Holdout:       0.7,
		TestFraction:  0.8,
		WriteManifest: true,
	}
}

// Result summarises a completed run.
type Result struct {
	Split        Split
	Copied       int
	ManifestPath string
}

// Plan enumerates, pairs and splits the dataset without touching the output,
// and rejects splits whose files would collide in an output directory.
//
// Arguments:
//   - opts: The run options.
//
// Returns:
//   - Split: The planned assignment.
//   - error: Enumeration, pairing, fraction or *DuplicateNameError errors.
func Plan(opts Options) (Split, error) {
	images, labels, err := Enumerate(opts.Source)
	if err != nil {
		return Split{}, err
	}
	log.Printf("📂 %s: %d images, %d labels", opts.Source, len(images), len(labels))

	pairs, err := Pair(images, labels, opts.Pairing)
	if err != nil {
		return Split{}, err
	}

	split, err := Partition(pairs, opts.Holdout, opts.TestFraction, opts.Seed)
	if err != nil {
		return Split{}, err
	}
	if err := CheckDestinations(split); err != nil {
		return Split{}, err
	}
	return split, nil
}

// Run plans the split, copies the files and writes the manifest.
//
// Nothing is created under Output unless planning succeeds.
//
// Arguments:
//   - opts: The run options.
//
// Returns:
//   - Result: The split, copy count and manifest path.
//   - error: Planning errors, or a *CopyError after a partial copy.
func Run(opts Options) (Result, error) {
	split, err := Plan(opts)
	if err != nil {
		return Result{}, err
	}

	copied, err := Materialize(split, opts.Output)
	if err != nil {
		return Result{Split: split, Copied: copied}, err
	}

	res := Result{Split: split, Copied: copied}
	if opts.WriteManifest {
		path, err := NewManifest(opts, split).Write(opts.Output)
		if err != nil {
			return res, errors.Wrap(err, "files copied but manifest failed")
		}
		res.ManifestPath = path
	}

	log.Printf("✅ %s: train=%d validation=%d test=%d (%d files)",
		opts.Output, len(split.Train), len(split.Validation), len(split.Test), copied)
	return res, nil
}
