package main

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// Date Transformation
// =============================================================================

// exifDateLayout is the fixed Exif date/time format (YYYY:MM:DD HH:mm:ss).
// The layout string uses Go's reference time: Mon Jan 2 15:04:05 MST 2006
const exifDateLayout = "2006:01:02 15:04:05"

// Years representable in exifDateLayout.
const (
	minExifYear = 1
	maxExifYear = 9999
)

// parseExifDate strictly parses an Exif date string.
// Trailing NUL padding and surrounding whitespace are ignored; anything else
// that does not match exifDateLayout is rejected with ErrParse.
// No timezone is modeled, so the result is always in UTC.
func parseExifDate(s string) (time.Time, error) {
	clean := strings.TrimSpace(strings.TrimRight(s, "\x00"))
	t, err := time.ParseInLocation(exifDateLayout, clean, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	return t, nil
}

// formatExifDate renders t in the Exif date layout.
func formatExifDate(t time.Time) string {
	return t.Format(exifDateLayout)
}

// addOffset parses an Exif date string, shifts it by offset, and formats
// the result back into the same layout.
// Calendar carry across month and year boundaries is handled by time.Time.
// A result outside years 0001-9999 is reported as ErrOffset, since it cannot
// be written back in the fixed-width layout.
func addOffset(s string, offset time.Duration) (string, error) {
	t, err := parseExifDate(s)
	if err != nil {
		return "", err
	}
	shifted := t.Add(offset)
	if y := shifted.Year(); y < minExifYear || y > maxExifYear {
		return "", fmt.Errorf("%w: %s shifts %q to year %d", ErrOffset, offset, s, y)
	}
	return formatExifDate(shifted), nil
}
