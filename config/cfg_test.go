package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/chordbook/layout"
)

type fixedWidth struct{}

func (fixedWidth) TextWidth(text string, _ layout.FontResource, size float64) (float64, error) {
	return float64(len(text)) * size / 2, nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Book.PageSize != "A5" || cfg.Book.Renderer != "fpdf" {
		t.Errorf("unexpected defaults %+v", cfg.Book)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestConsoleLoggerNeedsNoDestination(t *testing.T) {
	cfg, err := LoadConfiguration(writeConfig(t, "version: 1\nlogging:\n  console:\n    level: debug\n"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Fatalf("console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestDefaultsMatchLayoutStyle(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	got, err := cfg.Book.Style()
	if err != nil {
		t.Fatal(err)
	}
	want := layout.DefaultStyle()
	pairs := [][2]float64{
		{got.PageWidth, want.PageWidth},
		{got.PageHeight, want.PageHeight},
		{got.FontSize, want.FontSize},
		{got.TitleFontSize, want.TitleFontSize},
		{got.NoteFontSize, want.NoteFontSize},
		{got.LineSpacing, want.LineSpacing},
		{got.ChordPadding, want.ChordPadding},
		{got.VersePadding, want.VersePadding},
		{got.Margin.Left, want.Margin.Left},
		{got.Margin.Top, want.Margin.Top},
		{got.Margin.Bottom, want.Margin.Bottom},
	}
	for i, p := range pairs {
		if math.Abs(p[0]-p[1]) > 1e-9 {
			t.Errorf("value %d = %g, want %g", i, p[0], p[1])
		}
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
book:
  page_size: A4 landscape
  renderer: canvas
  even_pages: true
  footer: identifiers
  index_pages: 0
  margins:
    side: 2cm
title_page:
  blocks:
    - image: logo.png
      width: 130mm
    - text: "${title}"
library:
  numbering: numbers
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if !cfg.Book.EvenPages || cfg.Book.Footer != "identifiers" || cfg.Library.Numbering != "numbers" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Book.FontSize != "10pt" {
		t.Fatalf("defaults lost: font size %q", cfg.Book.FontSize)
	}

	opts, err := cfg.BuildOptions(fixedWidth{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	if opts.Style.PageWidth != 297 || opts.Style.PageHeight != 210 {
		t.Errorf("page = %gx%g", opts.Style.PageWidth, opts.Style.PageHeight)
	}
	if opts.Style.Margin.Left != 20 || opts.Style.Margin.Right != 20 {
		t.Errorf("side margins = %g/%g", opts.Style.Margin.Left, opts.Style.Margin.Right)
	}
	if len(opts.TitlePage.Blocks) != 2 || opts.TitlePage.Blocks[0].Width != 130 {
		t.Errorf("title blocks = %+v", opts.TitlePage.Blocks)
	}
	if opts.Footer != layout.FooterIdentifiers || opts.IndexPages != 0 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":                  "version: 1\nbook:\n  colour: red\n",
		"bad version":                  "version: 2\n",
		"bad length":                   "version: 1\nbook:\n  line_spacing: wide\n",
		"bad page size":                "version: 1\nbook:\n  page_size: B12\n",
		"bad footer":                   "version: 1\nbook:\n  footer: roman\n",
		"empty block":                  "version: 1\ntitle_page:\n  blocks:\n    - bold: true\n",
		"file log without destination": "version: 1\nlogging:\n  file:\n    level: debug\n    destination: \"\"\n",
	}
	for name, content := range cases {
		if _, err := LoadConfiguration(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "page_size: A5") {
		t.Fatalf("dump misses page size:\n%s", data)
	}
	if _, err := LoadConfiguration(writeConfig(t, string(data))); err != nil {
		t.Fatalf("dumped config does not load: %v", err)
	}
}

func TestPrepareLogger(t *testing.T) {
	dir := t.TempDir()
	conf := LoggingConfig{
		ConsoleLogger: ConsoleLoggerConfig{Level: "none"},
		FileLogger:    FileLoggerConfig{Level: "debug", Destination: filepath.Join(dir, "run.log"), Mode: "overwrite"},
	}
	log, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hello")
	_ = log.Sync()
	data, err := os.ReadFile(filepath.Join(dir, "run.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file misses entry: %q", data)
	}

	conf.FileLogger.Destination = filepath.Join(dir, "missing", "run.log")
	if _, err := conf.Prepare(); err == nil {
		t.Fatalf("expected error for unreachable destination")
	}
}
