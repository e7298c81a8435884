package main

import (
	"encoding/csv"
	"fmt"
	"os"
)

// =============================================================================
// Correction Report
// =============================================================================

// reportHeaders are the columns of the CSV correction report.
var reportHeaders = []string{
	"filename",            // Base filename, identical in input and output
	"status",              // corrected, unchanged or invalid
	"date_time_original",  // DateTimeOriginal before correction
	"date_time_digitized", // DateTimeDigitized before correction
	"corrected_date",      // Value written to both tags (corrected files only)
	"error",               // Why the file was passed through (invalid files only)
}

// writeReport writes one CSV row per processed file, in processing order.
// An existing report at path is replaced.
func writeReport(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: report %s: %v", ErrWrite, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeaders); err != nil {
		return fmt.Errorf("%w: report %s: %v", ErrWrite, path, err)
	}
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		row := []string{
			r.Name,
			string(r.Status),
			r.OriginalDate,
			r.DigitizedDate,
			r.NewDate,
			errText,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: report %s: %v", ErrWrite, path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: report %s: %v", ErrWrite, path, err)
	}
	return f.Close()
}
