// Package config loads the QuranLO settings file.
//
// A settings file is YAML; every key is optional and missing keys keep their
// defaults:
//
//	data_dir: /usr/share/quranlo
//	fonts_file: ""
//	arabic_font: me_quran
//	latin_font: Liberation Serif
//	ayat_per_line: false
//	bismillah: true
//	footer: true
//	sources:
//	  original:        {enabled: true,  language: Arabic,  version: Uthmani}
//	  translation:     {enabled: true,  language: English, version: Pickthall}
//	  transliteration: {enabled: false, language: English, version: International}
//	log:
//	  level: info
//	  format: text
//	api:
//	  port: 8080
//	  allowed_origins: []
//	index_dir: ""
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/format"
	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/source"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
)

// Config is the top-level settings.
type Config struct {
	DataDir     string  `yaml:"data_dir"`
	FontsFile   string  `yaml:"fonts_file"`
	ArabicFont  string  `yaml:"arabic_font"`
	LatinFont   string  `yaml:"latin_font"`
	AyatPerLine bool    `yaml:"ayat_per_line"`
	Bismillah   bool    `yaml:"bismillah"`
	Footer      bool    `yaml:"footer"`
	Sources     Sources `yaml:"sources"`
	Log         Log     `yaml:"log"`
	API         API     `yaml:"api"`
	// IndexDir, when set, holds SQLite indexes of the data files keyed by
	// their fingerprint.
	IndexDir string `yaml:"index_dir"`
}

// Sources holds one selection per source type.
type Sources struct {
	Original        Selection `yaml:"original"`
	Translation     Selection `yaml:"translation"`
	Transliteration Selection `yaml:"transliteration"`
}

// Selection picks a catalog source.
type Selection struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	Version  string `yaml:"version"`
}

// Log configures internal/logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// API configures the HTTP server.
type API struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:    ".",
		ArabicFont: "me_quran",
		LatinFont:  "Liberation Serif",
		Bismillah:  true,
		Footer:     true,
		Sources: Sources{
			Original:        Selection{Enabled: true, Language: "Arabic", Version: "Uthmani"},
			Translation:     Selection{Enabled: true, Language: "English", Version: "Pickthall"},
			Transliteration: Selection{Enabled: false, Language: "English", Version: "International"},
		},
		Log: Log{Level: "info", Format: "text"},
		API: API{Port: 8080},
	}
}

// Load reads a settings file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDataAccess("read config", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse reads settings from r over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, &errors.ParseError{Format: "config", Message: err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.NewValidation("data_dir", "data_dir is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidation("log.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return errors.NewValidation("log.format", err.Error())
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return errors.NewValidation("api.port", fmt.Sprintf("port %d out of range", c.API.Port))
	}
	for _, s := range c.Sources.list() {
		if !s.sel.Enabled {
			continue
		}
		if _, err := source.ParseLanguage(s.sel.Language); err != nil {
			return errors.NewValidation("sources."+s.name+".language", err.Error())
		}
		if s.sel.Version == "" {
			return errors.NewValidation("sources."+s.name+".version", "version is required")
		}
	}
	return nil
}

type typedSelection struct {
	name string
	typ  source.Type
	sel  Selection
}

// list returns the selections in emission order.
func (s Sources) list() []typedSelection {
	return []typedSelection{
		{"original", source.Original, s.Original},
		{"transliteration", source.Transliteration, s.Transliteration},
		{"translation", source.Translation, s.Translation},
	}
}

// Selected resolves the enabled selections against catalog, in emission order.
func (c *Config) Selected(catalog *source.Catalog) ([]source.Source, error) {
	var out []source.Source
	for _, s := range c.Sources.list() {
		if !s.sel.Enabled {
			continue
		}
		lang, err := source.ParseLanguage(s.sel.Language)
		if err != nil {
			return nil, err
		}
		src, err := catalog.Lookup(s.typ, lang, s.sel.Version)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// Mode returns the layout implied by ayat_per_line.
func (c *Config) Mode() format.Mode {
	if c.AyatPerLine {
		return format.ModeLines
	}
	return format.ModeBlock
}

// Glyphs returns the bundled glyph policy extended by fonts_file. Records in
// the file replace bundled records of the same name.
func (c *Config) Glyphs() (*glyph.Policy, error) {
	base := glyph.DefaultPolicy()
	if c.FontsFile == "" {
		return base, nil
	}
	extra, err := glyph.LoadPolicyFile(c.FontsFile)
	if err != nil {
		return nil, err
	}
	records := make([]glyph.Attributes, 0, len(extra.Fonts()))
	for _, name := range extra.Fonts() {
		a, _ := extra.Lookup(name)
		records = append(records, a)
	}
	return base.With(records...), nil
}

// InitLogging applies the log settings to internal/logging.
func (c *Config) InitLogging() error {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		return err
	}
	logging.InitLogger(level, f)
	return nil
}
