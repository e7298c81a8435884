package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// =============================================================================
// Data Types
// =============================================================================

// FileStatus is the outcome recorded for one processed file.
type FileStatus string

const (
	// StatusCorrected means both date tags were shifted.
	StatusCorrected FileStatus = "corrected"
	// StatusUnchanged means the file was outside the eligibility year and
	// was written byte-for-byte.
	StatusUnchanged FileStatus = "unchanged"
	// StatusInvalid means the file could not be decoded or parsed and was
	// passed through unchanged because --skip-invalid was set.
	StatusInvalid FileStatus = "invalid"
)

// Result describes what happened to one file.
type Result struct {
	Name          string
	Status        FileStatus
	OriginalDate  string // DateTimeOriginal as found
	DigitizedDate string // DateTimeDigitized as found, empty if absent
	NewDate       string // Value written to both tags
	Err           error  // Set for StatusInvalid
}

// Summary totals a batch run.
type Summary struct {
	Total     int
	Corrected int
	Unchanged int
	Invalid   int
	Results   []Result
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusCorrected:
		s.Corrected++
	case StatusUnchanged:
		s.Unchanged++
	case StatusInvalid:
		s.Invalid++
	}
}

// =============================================================================
// Image Correction
// =============================================================================

// correctImage decides whether one JPEG needs correcting and returns the
// bytes to write.
//
// A file is eligible when the year of its DateTimeOriginal equals
// eligibleYear. Eligible files get DateTimeOriginal and DateTimeDigitized
// both set to DateTimeOriginal+offset, spliced into the original bytes.
// DateTimeDigitized's own prior value is never used.
// Ineligible files are returned as-is.
func correctImage(data []byte, eligibleYear int, offset time.Duration) ([]byte, Result, error) {
	var res Result

	x, err := decodeExif(data)
	if err != nil {
		return nil, res, err
	}

	original, err := x.String(exif.DateTimeOriginal)
	if err != nil {
		return nil, res, err
	}
	res.OriginalDate = original

	digitized, digitizedErr := x.String(exif.DateTimeDigitized)
	if digitizedErr == nil {
		res.DigitizedDate = digitized
	}

	taken, err := parseExifDate(original)
	if err != nil {
		return nil, res, err
	}
	if taken.Year() != eligibleYear {
		res.Status = StatusUnchanged
		return data, res, nil
	}

	shifted, err := addOffset(original, offset)
	if err != nil {
		return nil, res, err
	}
	x.Set(exif.DateTimeOriginal, shifted)
	if digitizedErr == nil {
		x.Set(exif.DateTimeDigitized, shifted)
	} else {
		// Adding a tag would mean rebuilding the IFD; only existing slots are rewritten.
		slog.Debug("No DateTimeDigitized tag, correcting DateTimeOriginal only", "error", digitizedErr)
	}

	out, err := encodeExif(data, x)
	if err != nil {
		return nil, res, err
	}
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if kept, err := x.untouchedTags(); err == nil {
			slog.Debug("Spliced corrected dates", "corrected_date", shifted, "preserved_tags", kept)
		}
	}

	res.Status = StatusCorrected
	res.NewDate = shifted
	return out, res, nil
}

// =============================================================================
// Batch Runner
// =============================================================================

// Runner corrects every .jpg in Config.InputDir, one file at a time, and
// writes the results to Config.OutputDir under the same names.
type Runner struct {
	Config   Config
	Progress progressReporter
}

// Run processes the batch in scanner order.
// It stops at the first fatal error; files already written stay written.
// ctx is checked between files, never in the middle of one.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	progress := r.Progress
	if progress == nil {
		progress = nopProgress{}
	}

	names, err := listJPEGs(r.Config.InputDir)
	if err != nil {
		return sum, err
	}
	sum.Total = len(names)
	slog.Debug("Discovered files", "dir", r.Config.InputDir, "count", len(names))

	progress.Start(len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("stopped after %d of %d files: %w", i, len(names), err)
		}

		res, err := r.processFile(name)
		if err != nil {
			return sum, err
		}
		sum.add(res)
		progress.Update(i + 1)
	}
	progress.Finish()

	return sum, nil
}

// processFile takes one file from discovery to written.
func (r *Runner) processFile(name string) (Result, error) {
	srcPath := filepath.Join(r.Config.InputDir, name)

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return Result{Name: name}, fmt.Errorf("reading %s: %w", srcPath, err)
	}

	out, res, err := correctImage(data, r.Config.EligibleYear, r.Config.Offset)
	res.Name = name
	if err != nil {
		if !r.Config.SkipInvalid || !isPerFileError(err) {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		slog.Warn("Passing file through unchanged", "file", name, "error", err)
		out = data
		res.Status = StatusInvalid
		res.Err = err
	}

	slog.Debug("Processed file", "file", name, "status", res.Status,
		"date_time_original", res.OriginalDate, "corrected_date", res.NewDate)

	if r.Config.DryRun {
		return res, nil
	}
	if err := writeFileAtomic(r.Config.OutputDir, name, out); err != nil {
		return res, err
	}
	return res, nil
}
