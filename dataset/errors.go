package dataset

import (
	"fmt"
	"strings"
)

// MismatchedCountError reports that positional pairing found a different
// number of images and labels.
type MismatchedCountError struct {
	Images int
	Labels int
}

func (e *MismatchedCountError) Error() string {
	return fmt.Sprintf("dataset: %d images but %d labels; positional pairing needs equal counts", e.Images, e.Labels)
}

// UnmatchedFileError lists files without a partner of the same stem.
type UnmatchedFileError struct {
	Images []string
	Labels []string
}

func (e *UnmatchedFileError) Error() string {
	var parts []string
	if len(e.Images) > 0 {
		parts = append(parts, fmt.Sprintf("images without labels: %s", strings.Join(e.Images, ", ")))
	}
	if len(e.Labels) > 0 {
		parts = append(parts, fmt.Sprintf("labels without images: %s", strings.Join(e.Labels, ", ")))
	}
	return "dataset: " + strings.Join(parts, "; ")
}

// CopyError reports a failed file copy. Files copied before it stay in place.
type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("dataset: copy %s -> %s: %v", e.Src, e.Dst, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *CopyError) Unwrap() error {
	return e.Err
}

// DuplicateNameError reports files that would land on the same destination
// inside one split directory.
type DuplicateNameError struct {
	Split   string
	Name    string
	Sources []string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("dataset: %s/%s would be written by %s", e.Split, e.Name, strings.Join(e.Sources, ", "))
}
