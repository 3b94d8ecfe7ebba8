// Package dataset partitions an image/label dataset into train, validation
// and test directories.
package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Directory and extension conventions of a YOLO-style dataset.
const (
	ImagesDir      = "images"
	LabelsDir      = "labels"
	LabelExtension = ".txt"
)

// Enumerate lists {source}/images/* and {source}/labels/*.txt.
//
// Every regular file in the images directory counts as an image. Both lists
// are sorted lexicographically and hold paths joined with source.
//
// Arguments:
//   - source: The dataset root.
//
// Returns:
//   - images: Image paths.
//   - labels: Label paths.
//   - error: If either directory cannot be read.
func Enumerate(source string) (images, labels []string, err error) {
	images, err = listFiles(filepath.Join(source, ImagesDir), nil)
	if err != nil {
		return nil, nil, err
	}

	labels, err = listFiles(filepath.Join(source, LabelsDir), func(name string) bool {
		return strings.HasSuffix(name, LabelExtension)
	})
	if err != nil {
		return nil, nil, err
	}

	return images, labels, nil
}

func listFiles(dir string, keep func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	var files []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())

		// Follow symlinks so linked files count like regular ones.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if keep != nil && !keep(e.Name()) {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}
