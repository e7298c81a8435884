package main

import "errors"

// =============================================================================
// Error Taxonomy
// =============================================================================

// Sentinel errors classify every failure the tool can report.
// Call sites wrap them with fmt.Errorf("...: %w", ...) so the operator sees
// which file failed while callers can still match with errors.Is.
var (
	// ErrNotFound means the input directory is missing or not a directory.
	ErrNotFound = errors.New("not found")

	// ErrMalformedImage means a file is not a JPEG with a usable Exif segment,
	// or lacks the DateTimeOriginal tag.
	ErrMalformedImage = errors.New("malformed image")

	// ErrParse means a date string does not match the Exif date layout.
	ErrParse = errors.New("invalid exif date")

	// ErrWrite means an output file could not be written.
	ErrWrite = errors.New("write failure")

	// ErrOffset means the configured offset moves a date outside the four-digit
	// years an Exif date can hold.
	ErrOffset = errors.New("offset out of range")

	// ErrConfig means the effective configuration is unusable.
	ErrConfig = errors.New("invalid configuration")
)

// isPerFileError reports whether err is one that --skip-invalid may
// downgrade to a passthrough.
func isPerFileError(err error) bool {
	return errors.Is(err, ErrMalformedImage) || errors.Is(err, ErrParse)
}
