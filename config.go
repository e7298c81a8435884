package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Configuration
// =============================================================================

// DefaultEligibleYear is the year the camera clock was wrong.
// Only photos whose DateTimeOriginal falls in this year are corrected.
const DefaultEligibleYear = 2018

// DefaultOffsetMillis is how far the camera clock lagged behind real time
// during DefaultEligibleYear: 1229 days, 9 hours, 39 minutes, 46 seconds.
const DefaultOffsetMillis int64 = 106220386000

// Environment variables consulted after .env has been loaded.
const (
	envInput    = "EXIF_SHIFT_INPUT"
	envOutput   = "EXIF_SHIFT_OUTPUT"
	envYear     = "EXIF_SHIFT_YEAR"
	envOffsetMS = "EXIF_SHIFT_OFFSET_MS"
)

// Config holds the effective settings for one run.
type Config struct {
	InputDir     string
	OutputDir    string
	EligibleYear int
	Offset       time.Duration
	SkipInvalid  bool
	DryRun       bool
	ReportPath   string
}

// fileConfig mirrors the YAML config file. Pointers distinguish "absent"
// from zero values so the file only overrides what it mentions.
type fileConfig struct {
	Input        *string `yaml:"input"`
	Output       *string `yaml:"output"`
	EligibleYear *int    `yaml:"eligible_year"`
	OffsetMS     *int64  `yaml:"offset_ms"`
	SkipInvalid  *bool   `yaml:"skip_invalid"`
}

// defaultConfig returns the settings of the original clock-error incident.
func defaultConfig() Config {
	return Config{
		EligibleYear: DefaultEligibleYear,
		Offset:       time.Duration(DefaultOffsetMillis) * time.Millisecond,
	}
}

// maxOffsetMillis is the largest offset, in either direction, a time.Duration
// can hold.
const maxOffsetMillis = math.MaxInt64 / int64(time.Millisecond)

// offsetFromMillis converts a millisecond offset to a time.Duration,
// rejecting values that would overflow.
func offsetFromMillis(ms int64) (time.Duration, error) {
	if ms > maxOffsetMillis || ms < -maxOffsetMillis {
		return 0, fmt.Errorf("%w: offset %dms exceeds the supported range of ±%dms", ErrConfig, ms, maxOffsetMillis)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// loadConfigFile overlays a YAML config file onto cfg.
// An empty path is a no-op.
func loadConfigFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading config file: %v", ErrConfig, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("%w: parsing config file %s: %v", ErrConfig, path, err)
	}

	if fc.Input != nil {
		cfg.InputDir = *fc.Input
	}
	if fc.Output != nil {
		cfg.OutputDir = *fc.Output
	}
	if fc.EligibleYear != nil {
		cfg.EligibleYear = *fc.EligibleYear
	}
	if fc.OffsetMS != nil {
		offset, err := offsetFromMillis(*fc.OffsetMS)
		if err != nil {
			return err
		}
		cfg.Offset = offset
	}
	if fc.SkipInvalid != nil {
		cfg.SkipInvalid = *fc.SkipInvalid
	}
	return nil
}

// applyEnv overlays EXIF_SHIFT_* environment variables onto cfg.
// lookup is os.LookupEnv outside of tests.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envInput); ok && v != "" {
		cfg.InputDir = v
	}
	if v, ok := lookup(envOutput); ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := lookup(envYear); ok && v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a year", ErrConfig, envYear, v)
		}
		cfg.EligibleYear = year
	}
	if v, ok := lookup(envOffsetMS); ok && v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number of milliseconds", ErrConfig, envOffsetMS, v)
		}
		offset, err := offsetFromMillis(ms)
		if err != nil {
			return err
		}
		cfg.Offset = offset
	}
	return nil
}

// validate checks the settings a run cannot do without.
// The output directory's existence is deliberately not checked here: a
// missing output directory surfaces as ErrWrite on the first file.
func (c Config) validate() error {
	var errs []error
	if c.InputDir == "" {
		errs = append(errs, errors.New("--input is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("--output is required"))
	}
	if c.EligibleYear <= 0 {
		errs = append(errs, fmt.Errorf("eligible year must be positive, got %d", c.EligibleYear))
	}
	if c.Offset == 0 {
		errs = append(errs, errors.New("offset must not be zero"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if sameDir(c.InputDir, c.OutputDir) {
		return fmt.Errorf("%w: output directory must differ from input directory (inputs are never overwritten)", ErrConfig)
	}
	return nil
}

// sameDir reports whether a and b name the same directory.
func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if absA == absB {
		return true
	}

	// Catch symlinks and bind mounts pointing at the same place.
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
