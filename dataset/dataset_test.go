package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeDataset creates {root}/images and {root}/labels with the given file names.
func makeDataset(t *testing.T, images, labels []string) string {
	t.Helper()
	root := t.TempDir()
	for dir, names := range map[string][]string{ImagesDir: images, LabelsDir: labels} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		for _, name := range names {
			body := []byte("content of " + name)
			require.NoError(t, os.WriteFile(filepath.Join(root, dir, name), body, 0o644))
		}
	}
	return root
}

func numbered(n int, ext string) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("img_%03d%s", i, ext)
	}
	return names
}

func pairsOf(n int) []FilePair {
	pairs := make([]FilePair, n)
	for i := range pairs {
		pairs[i] = FilePair{Image: fmt.Sprintf("%d.jpg", i), Label: fmt.Sprintf("%d.txt", i)}
	}
	return pairs
}

func baseNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestEnumerate(t *testing.T) {
	root := makeDataset(t,
		[]string{"c.jpg", "a.jpg", "b.png"},
		[]string{"b.txt", "a.txt", "classes.names", "c.txt"},
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ImagesDir, "nested"), 0o755))

	images, labels, err := Enumerate(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, ImagesDir, "a.jpg"),
		filepath.Join(root, ImagesDir, "b.png"),
		filepath.Join(root, ImagesDir, "c.jpg"),
	}, images)
	assert.Equal(t, []string{
		filepath.Join(root, LabelsDir, "a.txt"),
		filepath.Join(root, LabelsDir, "b.txt"),
		filepath.Join(root, LabelsDir, "c.txt"),
	}, labels)
}

func TestEnumerateMissingDirectory(t *testing.T) {
	_, _, err := Enumerate(t.TempDir())
	assert.Error(t, err)
}

func TestPairByPositionMismatch(t *testing.T) {
	_, err := Pair(numbered(5, ".jpg"), numbered(4, ".txt"), PairByPosition)

	var mismatch *MismatchedCountError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 5, mismatch.Images)
	assert.Equal(t, 4, mismatch.Labels)
}

func TestPairByStem(t *testing.T) {
	pairs, err := Pair(
		[]string{"x/a.jpg", "x/b.png"},
		[]string{"y/a.txt", "y/b.txt"},
		PairByStem,
	)
	require.NoError(t, err)
	assert.Equal(t, []FilePair{{Image: "x/a.jpg", Label: "y/a.txt"}, {Image: "x/b.png", Label: "y/b.txt"}}, pairs)

	_, err = Pair(
		[]string{"x/a.jpg", "x/a.png", "x/c.jpg"},
		[]string{"y/a.txt", "y/d.txt"},
		PairByStem,
	)
	var unmatched *UnmatchedFileError
	require.True(t, errors.As(err, &unmatched))
	assert.Equal(t, []string{"a.png", "c.jpg"}, unmatched.Images)
	assert.Equal(t, []string{"d.txt"}, unmatched.Labels)
}

func TestPairUnknownMode(t *testing.T) {
	_, err := Pair(nil, nil, "random")
	assert.Error(t, err)
}

func TestTrainTestSplitSizes(t *testing.T) {
	tests := []struct {
		n        int
		heldOut  float64
		wantRest int
		wantHeld int
	}{
		{n: 10, heldOut: 0.7, wantRest: 3, wantHeld: 7},
		{n: 7, heldOut: 0.8, wantRest: 1, wantHeld: 6},
		{n: 3, heldOut: 0.7, wantRest: 0, wantHeld: 3},
		{n: 1, heldOut: 0.7, wantRest: 0, wantHeld: 1},
		{n: 0, heldOut: 0.7, wantRest: 0, wantHeld: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/%v", tt.n, tt.heldOut), func(t *testing.T) {
			rest, held, err := TrainTestSplit(pairsOf(tt.n), tt.heldOut, 1)
			require.NoError(t, err)
			assert.Len(t, rest, tt.wantRest)
			assert.Len(t, held, tt.wantHeld)
		})
	}

	for _, bad := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := TrainTestSplit(pairsOf(4), bad, 1)
		assert.Error(t, err, "fraction %v", bad)
	}
}

func TestPartitionCompleteAndDisjoint(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 10, 37} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			pairs := pairsOf(n)
			split, err := Partition(pairs, 0.7, 0.8, 1)
			require.NoError(t, err)
			assert.Equal(t, n, split.Len())

			seen := make(map[FilePair]string)
			for _, name := range SplitNames {
				for _, p := range split.Get(name) {
					prev, dup := seen[p]
					assert.False(t, dup, "%v in both %s and %s", p, prev, name)
					seen[p] = name
				}
			}
			for _, p := range pairs {
				assert.Contains(t, seen, p)
			}
		})
	}
}

func TestPartitionSizesForTen(t *testing.T) {
	split, err := Partition(pairsOf(10), 0.7, 0.8, 1)
	require.NoError(t, err)
	assert.Len(t, split.Train, 3)
	assert.Len(t, split.Validation, 1)
	assert.Len(t, split.Test, 6)
}

func TestPartitionDeterministic(t *testing.T) {
	pairs := pairsOf(37)

	a, err := Partition(pairs, 0.7, 0.8, 1)
	require.NoError(t, err)
	b, err := Partition(pairs, 0.7, 0.8, 1)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Partition(pairs, 0.7, 0.8, 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestRunEndToEnd(t *testing.T) {
	root := makeDataset(t, []string{"a.jpg", "b.jpg", "c.jpg"}, []string{"a.txt", "b.txt", "c.txt"})
	out := filepath.Join(t.TempDir(), "custom_split")

	opts := DefaultOptions()
	opts.Source = root
	opts.Output = out

	res, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Copied)
	assert.Equal(t, 3, res.Split.Len())

	// Three pairs: train and validation end up empty.
	assert.Empty(t, res.Split.Train)
	assert.Empty(t, res.Split.Validation)
	assert.Len(t, res.Split.Test, 3)

	assert.Empty(t, baseNames(t, filepath.Join(out, SplitTrain)))
	assert.Empty(t, baseNames(t, filepath.Join(out, SplitValidation)))
	assert.Equal(t, []string{"a.jpg", "a.txt", "b.jpg", "b.txt", "c.jpg", "c.txt"},
		baseNames(t, filepath.Join(out, SplitTest)))

	data, err := os.ReadFile(filepath.Join(out, SplitTest, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content of b.txt", string(data))

	again, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, res.Split, again.Split, "same input and seed give the same assignment")

	m, err := ReadManifest(res.ManifestPath)
	require.NoError(t, err)
	_, err = uuid.Parse(m.RunID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.Seed)
	assert.Equal(t, map[string]int{SplitTrain: 0, SplitValidation: 0, SplitTest: 3}, m.Counts)
	assert.ElementsMatch(t, []string{"a.jpg", "b.jpg", "c.jpg"}, m.Files[SplitTest])
}

func TestRunMismatchCreatesNothing(t *testing.T) {
	root := makeDataset(t, numbered(5, ".jpg"), numbered(4, ".txt"))
	out := filepath.Join(t.TempDir(), "custom_split")

	opts := DefaultOptions()
	opts.Source = root
	opts.Output = out

	res, err := Run(opts)
	var mismatch *MismatchedCountError
	require.True(t, errors.As(err, &mismatch))
	assert.Zero(t, res.Copied)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output directory may be created")
}

func TestRunWithoutManifest(t *testing.T) {
	root := makeDataset(t, numbered(10, ".jpg"), numbered(10, ".txt"))
	opts := DefaultOptions()
	opts.Source = root
	opts.Output = t.TempDir()
	opts.WriteManifest = false

	res, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Copied)
	assert.Empty(t, res.ManifestPath)
	assert.NoFileExists(t, filepath.Join(opts.Output, ManifestFile))
}

func TestPlanDoesNotTouchOutput(t *testing.T) {
	root := makeDataset(t, numbered(4, ".jpg"), numbered(4, ".txt"))
	opts := DefaultOptions()
	opts.Source = root
	opts.Output = filepath.Join(t.TempDir(), "dry")

	split, err := Plan(opts)
	require.NoError(t, err)
	assert.Equal(t, 4, split.Len())
	assert.NoDirExists(t, opts.Output)
}

func TestMaterializeCopyError(t *testing.T) {
	root := makeDataset(t, []string{"a.jpg"}, []string{"a.txt"})
	out := t.TempDir()

	split := Split{Train: []FilePair{
		{Image: filepath.Join(root, ImagesDir, "a.jpg"), Label: filepath.Join(root, LabelsDir, "missing.txt")},
	}}

	copied, err := Materialize(split, out)
	var copyErr *CopyError
	require.True(t, errors.As(err, &copyErr))
	assert.Equal(t, filepath.Join(root, LabelsDir, "missing.txt"), copyErr.Src)
	assert.Equal(t, filepath.Join(out, SplitTrain, "missing.txt"), copyErr.Dst)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, 1, copied)
	assert.FileExists(t, filepath.Join(out, SplitTrain, "a.jpg"), "files copied before the failure stay")
}

func TestMaterializeOverwrites(t *testing.T) {
	root := makeDataset(t, []string{"a.jpg"}, []string{"a.txt"})
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, SplitTest), 0o755))
	stale := filepath.Join(out, SplitTest, "a.txt")
	require.NoError(t, os.WriteFile(stale, []byte("stale and much longer than the source"), 0o644))

	split := Split{Test: []FilePair{{
		Image: filepath.Join(root, ImagesDir, "a.jpg"),
		Label: filepath.Join(root, LabelsDir, "a.txt"),
	}}}
	_, err := Materialize(split, out)
	require.NoError(t, err)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "content of a.txt", string(data))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&MismatchedCountError{Images: 5, Labels: 4}).Error(), "5 images but 4 labels")
	assert.Contains(t, (&UnmatchedFileError{Labels: []string{"x.txt"}}).Error(), "labels without images: x.txt")
	assert.Contains(t, (&CopyError{Src: "a", Dst: "b", Err: os.ErrPermission}).Error(), "copy a -> b")
	assert.Contains(t, (&DuplicateNameError{Split: "test", Name: "a.txt", Sources: []string{"x/a.txt", "y/a.txt"}}).Error(), "test/a.txt would be written by x/a.txt, y/a.txt")
}

func TestRunRejectsCollidingNames(t *testing.T) {
	// An image named like its label would overwrite it in the split directory.
	root := makeDataset(t, []string{"a.txt"}, []string{"a.txt"})
	out := filepath.Join(t.TempDir(), "custom_split")

	opts := DefaultOptions()
	opts.Source = root
	opts.Output = out

	_, err := Run(opts)
	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, SplitTest, dup.Split)
	assert.Equal(t, "a.txt", dup.Name)
	assert.NoDirExists(t, out)

	_, err = Plan(opts)
	assert.True(t, errors.As(err, &dup), "dry runs report the collision too")
}

func TestMaterializeRejectsDuplicateBaseNames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "custom_split")
	split := Split{Train: []FilePair{
		{Image: "cam1/images/0001.jpg", Label: "cam1/labels/0001.txt"},
		{Image: "cam2/images/0001.jpg", Label: "cam2/labels/0001.txt"},
	}}

	copied, err := Materialize(split, out)
	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, SplitTrain, dup.Split)
	assert.Equal(t, "0001.jpg", dup.Name)
	assert.Equal(t, []string{"cam1/images/0001.jpg", "cam2/images/0001.jpg"}, dup.Sources)
	assert.Zero(t, copied)
	assert.NoDirExists(t, out)
}

func TestCheckDestinationsAllowsSameNameAcrossSplits(t *testing.T) {
	split := Split{
		Train: []FilePair{{Image: "cam1/0001.jpg", Label: "cam1/0001.txt"}},
		Test:  []FilePair{{Image: "cam2/0001.jpg", Label: "cam2/0001.txt"}},
	}
	assert.NoError(t, CheckDestinations(split))
}
