// EXIF Date Shift - A tool to correct capture dates of photos taken while the
// camera clock was set wrong
//
// This tool copies every .jpg from an input directory to an output directory.
// Photos whose EXIF DateTimeOriginal falls in a given year (2018 by default)
// have DateTimeOriginal and DateTimeDigitized moved forward by a fixed offset
// (1229d 9h39m46s by default). The new dates are written into the existing
// Exif segment in place, so pixel data and all other metadata are untouched.
//
// Features:
//   - Exact .jpg discovery (non-recursive, case-sensitive)
//   - Byte-preserving Exif date splicing
//   - Configurable year and offset (flags, env, .env, YAML)
//   - Dry-run preview and CSV correction report
//   - Atomic output writes
//
// Usage:
//
//	exif-shift -i photos -o fixed              # Correct and copy
//	exif-shift -i photos -o fixed --dry-run    # Preview only
//	exif-shift -i photos -o fixed --report r.csv
//	exif-shift -c exif-shift.yaml              # Settings from a config file
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

const version = "0.1.0"

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
