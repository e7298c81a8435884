package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.EligibleYear != 2018 {
		t.Errorf("EligibleYear = %d, want 2018", cfg.EligibleYear)
	}
	want := 1229*24*time.Hour + 9*time.Hour + 39*time.Minute + 46*time.Second
	if cfg.Offset != want {
		t.Errorf("Offset = %v, want %v", cfg.Offset, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exif-shift.yaml")
	content := `input: /photos/in
output: /photos/out
eligible_year: 2019
offset_ms: 3600000
skip_invalid: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	if err := loadConfigFile(&cfg, path); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if cfg.InputDir != "/photos/in" || cfg.OutputDir != "/photos/out" {
		t.Errorf("dirs = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.EligibleYear != 2019 || cfg.Offset != time.Hour || !cfg.SkipInvalid {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("eligible_year: 2017\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	if err := loadConfigFile(&cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.EligibleYear != 2017 || cfg.Offset != defaultOffset {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("eligible_year: [not, a, year]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.yaml"), bad} {
		cfg := defaultConfig()
		if err := loadConfigFile(&cfg, path); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected ErrConfig, got %v", path, err)
		}
	}
}

func TestLoadConfigFile_OffsetOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("offset_ms: 9300000000000000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	if err := loadConfigFile(&cfg, path); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if cfg.Offset != defaultOffset {
		t.Errorf("offset changed to %s", cfg.Offset)
	}
}

func TestOffsetFromMillis(t *testing.T) {
	tests := []struct {
		ms      int64
		want    time.Duration
		wantErr bool
	}{
		{1000, time.Second, false},
		{-1000, -time.Second, false},
		{DefaultOffsetMillis, defaultOffset, false},
		{maxOffsetMillis, time.Duration(maxOffsetMillis) * time.Millisecond, false},
		{-maxOffsetMillis, -time.Duration(maxOffsetMillis) * time.Millisecond, false},
		{maxOffsetMillis + 1, 0, true},
		{-maxOffsetMillis - 1, 0, true},
		{9300000000000000, 0, true},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatInt(tt.ms, 10), func(t *testing.T) {
			got, err := offsetFromMillis(tt.ms)
			if tt.wantErr {
				if !errors.Is(err, ErrConfig) {
					t.Fatalf("expected ErrConfig, got %s, %v", got, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %s, %v; want %s", got, err, tt.want)
			}
			if got.Milliseconds() != tt.ms {
				t.Errorf("round trip lost precision: %d -> %d", tt.ms, got.Milliseconds())
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := defaultConfig()
	err := applyEnv(&cfg, mapLookup(map[string]string{
		envInput:    "in",
		envOutput:   "out",
		envYear:     "2016",
		envOffsetMS: "1000",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.InputDir != "in" || cfg.OutputDir != "out" || cfg.EligibleYear != 2016 || cfg.Offset != time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, env := range []map[string]string{
		{envYear: "twenty"},
		{envOffsetMS: "1.5"},
		{envOffsetMS: "9300000000000000"},
		{envOffsetMS: "-9300000000000000"},
	} {
		cfg := defaultConfig()
		if err := applyEnv(&cfg, mapLookup(env)); !errors.Is(err, ErrConfig) {
			t.Errorf("%v: expected ErrConfig, got %v", env, err)
		}
	}
}

func TestValidate(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"missing input", func(c *Config) { c.InputDir = "" }, true},
		{"missing output", func(c *Config) { c.OutputDir = "" }, true},
		{"zero year", func(c *Config) { c.EligibleYear = 0 }, true},
		{"zero offset", func(c *Config) { c.Offset = 0 }, true},
		{"negative offset", func(c *Config) { c.Offset = -time.Hour }, false},
		{"same dir", func(c *Config) { c.OutputDir = c.InputDir }, true},
		{"same dir spelled differently", func(c *Config) { c.OutputDir = filepath.Join(c.InputDir, ".") + "/" }, true},
		{"nonexistent output", func(c *Config) { c.OutputDir = filepath.Join(out, "missing") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(in, out)
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr && !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSameDir_Symlink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if !sameDir(dir, link) {
		t.Fatal("symlink to the same directory not detected")
	}
}
