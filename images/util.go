package images

import (
	"crypto/md5"
	"fmt"
)

// ComputeFrameChecksum generates a deterministic checksum for a frame's pixels.
//
// Arguments:
//   - f: The frame to hash.
//
// Returns:
//   - A hex-encoded MD5 checksum string, or "empty" for an empty frame.
//
// Example:
//
// ```go
//
//	before := ComputeFrameChecksum(frame)
//	annotated, _ := annotator.Annotate(frame, nil)
//	fmt.Println(before == ComputeFrameChecksum(annotated)) // true
//
// ```
func ComputeFrameChecksum(f Frame) string {
	if f.Empty() {
		return "empty"
	}

	hash := md5.New()
	hash.Write(f.mat.ToBytes())
	return fmt.Sprintf("%x", hash.Sum(nil))
}
