package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qerrors "github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/format"
	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/source"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Mode() != format.ModeBlock {
		t.Errorf("default mode = %s, want block", cfg.Mode())
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	src := `
data_dir: /srv/quran
arabic_font: "KFGQPC HAFS Uthmanic Script"
ayat_per_line: true
footer: false
sources:
  translation: {enabled: true, language: Dutch, version: Leemhuis}
  transliteration: {enabled: true, language: English, version: International}
log:
  level: debug
api:
  port: 9090
  allowed_origins: ["http://localhost:3000"]
`
	cfg, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if cfg.DataDir != "/srv/quran" || cfg.ArabicFont != "KFGQPC HAFS Uthmanic Script" {
		t.Errorf("paths/fonts = %q, %q", cfg.DataDir, cfg.ArabicFont)
	}
	if cfg.LatinFont != "Liberation Serif" {
		t.Errorf("LatinFont default lost: %q", cfg.LatinFont)
	}
	if cfg.Mode() != format.ModeLines || cfg.Footer || !cfg.Bismillah {
		t.Errorf("mode=%s footer=%v bismillah=%v", cfg.Mode(), cfg.Footer, cfg.Bismillah)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.API.Port != 9090 || len(cfg.API.AllowedOrigins) != 1 {
		t.Errorf("api = %+v", cfg.API)
	}
	if !cfg.Sources.Original.Enabled || cfg.Sources.Original.Version != "Uthmani" {
		t.Errorf("original selection default lost: %+v", cfg.Sources.Original)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse(empty) error: %v", err)
	}
	if cfg.API.Port != Default().API.Port {
		t.Errorf("empty file changed defaults: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"bad yaml", "data_dir: [", qerrors.ErrInvalidInput},
		{"unknown key", "colour: red\n", qerrors.ErrInvalidInput},
		{"empty data dir", "data_dir: \"\"\n", qerrors.ErrInvalidInput},
		{"bad log level", "log: {level: loud}\n", qerrors.ErrInvalidInput},
		{"bad log format", "log: {format: xml}\n", qerrors.ErrInvalidInput},
		{"bad port", "api: {port: 70000}\n", qerrors.ErrInvalidInput},
		{"unknown language", "sources: {translation: {enabled: true, language: Klingon, version: X}}\n", qerrors.ErrInvalidInput},
		{"missing version", "sources: {original: {enabled: true, language: Arabic, version: \"\"}}\n", qerrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.src)); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// A disabled selection is not checked.
	if _, err := Parse(strings.NewReader("sources: {translation: {enabled: false, language: Klingon}}\n")); err != nil {
		t.Errorf("disabled selection rejected: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quranlo.yaml")
	if err := os.WriteFile(path, []byte("bismillah: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Bismillah {
		t.Error("bismillah not overridden")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("footer: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	var pe *qerrors.ParseError
	if _, err := Load(bad); !errors.As(err, &pe) || pe.Path != bad {
		t.Errorf("Load(bad) error = %v, want ParseError with path", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, qerrors.ErrDataAccess) {
		t.Errorf("Load(missing) error = %v, want ErrDataAccess", err)
	}
}

func TestSelected(t *testing.T) {
	cfg := Default()
	cfg.Sources.Transliteration.Enabled = true

	got, err := cfg.Selected(source.Default())
	if err != nil {
		t.Fatalf("Selected error: %v", err)
	}
	want := []source.Type{source.Original, source.Transliteration, source.Translation}
	if len(got) != len(want) {
		t.Fatalf("Selected returned %d sources, want %d", len(got), len(want))
	}
	for i, typ := range want {
		if got[i].Type != typ {
			t.Errorf("Selected[%d].Type = %s, want %s", i, got[i].Type, typ)
		}
	}
	if got[2].Version != "Pickthall" {
		t.Errorf("translation = %s", got[2].Label())
	}

	cfg.Sources.Translation.Version = "Yusuf Ali"
	if _, err := cfg.Selected(source.Default()); !errors.Is(err, qerrors.ErrNotFound) {
		t.Errorf("unknown version error = %v, want ErrNotFound", err)
	}
}

func TestGlyphs(t *testing.T) {
	cfg := Default()
	p, err := cfg.Glyphs()
	if err != nil {
		t.Fatalf("Glyphs error: %v", err)
	}
	if _, ok := p.Lookup("me_quran"); !ok {
		t.Error("bundled fonts missing")
	}

	cfg.FontsFile = filepath.Join(t.TempDir(), "fonts.yaml")
	table := "fonts:\n  - name: Amiri\n    number_base: 0x0660\n  - name: me_quran\n    number_base: 0x0030\n"
	if err := os.WriteFile(cfg.FontsFile, []byte(table), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err = cfg.Glyphs()
	if err != nil {
		t.Fatalf("Glyphs error: %v", err)
	}
	if a, ok := p.Lookup("Amiri"); !ok || a.NumberBase != glyph.ArabicIndicZero {
		t.Errorf("Amiri = %+v, %v", a, ok)
	}
	if a, _ := p.Lookup("me_quran"); a.NumberBase != glyph.ASCIIZero {
		t.Errorf("fonts_file did not replace me_quran: %+v", a)
	}
	if _, ok := p.Lookup("Scheherazade"); !ok {
		t.Error("bundled fonts dropped by fonts_file")
	}
}
