package dataset

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-trafficlight/logging"
)

// Materialize copies every pair into {output}/{split}/, creating the
// directories on demand. Existing files are overwritten. Name collisions
// within a split are rejected before anything is written.
//
// Arguments:
//   - split: The partition to write.
//   - output: The output root.
//
// Returns:
//   - int: Number of files copied.
//   - error: A *DuplicateNameError, a *CopyError for the first failed copy,
//     or a directory error.
func Materialize(split Split, output string) (int, error) {
	if err := CheckDestinations(split); err != nil {
		return 0, err
	}

	copied := 0
	for _, name := range SplitNames {
		dir := filepath.Join(output, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return copied, errors.Wrapf(err, "failed to create %s", dir)
		}

		for _, p := range split.Get(name) {
			for _, src := range []string{p.Image, p.Label} {
				dst := filepath.Join(dir, filepath.Base(src))
				if err := copyFile(src, dst); err != nil {
					return copied, &CopyError{Src: src, Dst: dst, Err: err}
				}
				copied++
				logging.Debugf("copied %s -> %s", src, dst)
			}
		}
	}
	return copied, nil
}

// CheckDestinations verifies that no two files of a split share a base name,
// since each split is flattened into a single directory.
//
// Arguments:
//   - split: The planned partition.
//
// Returns:
//   - error: A *DuplicateNameError for the first collision, nil otherwise.
func CheckDestinations(split Split) error {
	for _, name := range SplitNames {
		seen := make(map[string]string)
		for _, p := range split.Get(name) {
			for _, src := range []string{p.Image, p.Label} {
				base := filepath.Base(src)
				if prev, dup := seen[base]; dup {
					return &DuplicateNameError{Split: name, Name: base, Sources: []string{prev, src}}
				}
				seen[base] = src
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
