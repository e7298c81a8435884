package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// =============================================================================
// Command Line
// =============================================================================

// cliFlags holds raw flag values before they are merged into a Config.
type cliFlags struct {
	input       string
	output      string
	configPath  string
	year        int
	offsetMS    int64
	skipInvalid bool
	dryRun      bool
	reportPath  string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	cmd := &cobra.Command{
		Use:   "exif-shift",
		Short: "Shift EXIF capture dates of photos taken with a misset camera clock",
		Long: `exif-shift copies every .jpg in an input directory to an output directory.

Photos whose DateTimeOriginal falls in the eligibility year have
DateTimeOriginal and DateTimeDigitized moved forward by a fixed offset.
Only the date bytes inside the Exif segment change; all other bytes,
including pixel data, are copied verbatim. Input files are never modified.`,
		Example: `  # Correct photos using the built-in year (2018) and offset
  exif-shift --input ~/Pictures/trip --output ~/Pictures/trip-fixed

  # Preview what would change and save a CSV report
  exif-shift -i in -o out --dry-run --report changes.csv

  # Different incident: 2019 photos, one hour behind
  exif-shift -i in -o out --year 2019 --offset-ms 3600000`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if f.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f, os.LookupEnv)
			if err != nil {
				return err
			}
			return runBatch(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Directory containing source .jpg files (required)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Existing directory to receive processed files (required)")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().IntVar(&f.year, "year", DefaultEligibleYear, "Correct photos whose DateTimeOriginal is in this year")
	cmd.Flags().Int64Var(&f.offsetMS, "offset-ms", DefaultOffsetMillis, "Milliseconds to add to eligible dates")
	cmd.Flags().BoolVar(&f.skipInvalid, "skip-invalid", false, "Copy files without usable Exif dates unchanged instead of aborting")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Compute corrections without writing any files")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write a CSV report of every file to this path")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

// resolveConfig merges defaults, the config file, the environment and the
// flags the user actually set, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, f cliFlags, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := defaultConfig()

	if err := loadConfigFile(&cfg, f.configPath); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputDir = f.input
	}
	if flags.Changed("output") {
		cfg.OutputDir = f.output
	}
	if flags.Changed("year") {
		cfg.EligibleYear = f.year
	}
	if flags.Changed("offset-ms") {
		offset, err := offsetFromMillis(f.offsetMS)
		if err != nil {
			return Config{}, err
		}
		cfg.Offset = offset
	}
	if flags.Changed("skip-invalid") {
		cfg.SkipInvalid = f.skipInvalid
	}
	cfg.DryRun = f.dryRun
	cfg.ReportPath = f.reportPath

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// runBatch prints the banner, runs the batch with a progress bar and prints
// the summary.
func runBatch(cmd *cobra.Command, cfg Config) error {
	out := cmd.OutOrStdout()
	printBanner(out, cfg)

	runner := &Runner{
		Config:   cfg,
		Progress: newProgressBar(cmd.ErrOrStderr()),
	}
	sum, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, sum.Results); err != nil {
			return err
		}
		slog.Info("Wrote report", "path", cfg.ReportPath, "rows", len(sum.Results))
	}

	printSummary(out, cfg, sum)
	return nil
}

func printBanner(w io.Writer, cfg Config) {
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "EXIF Date Shift")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Input:  %s\n", cfg.InputDir)
	fmt.Fprintf(w, "Output: %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "Year:   %d\n", cfg.EligibleYear)
	fmt.Fprintf(w, "Offset: %s\n", cfg.Offset)
	fmt.Fprintln(w)

	if cfg.DryRun {
		fmt.Fprintln(w, "[DRY RUN MODE - no files will be written]")
		fmt.Fprintln(w)
	}
}

func printSummary(w io.Writer, cfg Config, sum Summary) {
	if sum.Total == 0 {
		fmt.Fprintln(w, "No .jpg files found")
		return
	}

	prefix := ""
	if cfg.DryRun {
		prefix = "[DRY RUN] Would have "
	}
	fmt.Fprintf(w, "\n%sCorrected %d of %d files\n", prefix, sum.Corrected, sum.Total)
	fmt.Fprintf(w, "%sCopied %d files unchanged\n", prefix, sum.Unchanged)
	if sum.Invalid > 0 {
		fmt.Fprintf(w, "%sPassed through %d files without usable dates\n", prefix, sum.Invalid)
	}
	fmt.Fprintln(w, "\nDone!")
}
