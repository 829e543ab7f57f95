// Package source describes the available Qur'an text sources (the original
// Arabic, translations and transliterations) and where their data files live.
package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/internal/validation"
)

// Type is the kind of text a source provides.
type Type int

const (
	// Original is the Arabic text.
	Original Type = iota
	// Transliteration is a phonetic rendering of the Arabic text.
	Transliteration
	// Translation is a rendering into another language.
	Translation
)

// Types lists source types in the order their output is emitted.
var Types = []Type{Original, Transliteration, Translation}

// String returns the type id.
func (t Type) String() string {
	switch t {
	case Original:
		return "Original"
	case Transliteration:
		return "Transliteration"
	case Translation:
		return "Translation"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// MarshalText encodes the type as its id.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type id.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType parses a type id, ignoring case.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(t.String(), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return 0, errors.NewNotFound("source type", s)
}

// Source is one rendition of the text. (Type, Language, Version) is unique
// within a catalog.
type Source struct {
	Type     Type     `json:"type"`
	Language Language `json:"language"`
	Version  string   `json:"version"`
	File     string   `json:"file"`
}

// Label returns "Language (Version)".
func (s Source) Label() string {
	return s.Language.ID + " (" + s.Version + ")"
}

// Catalog is an immutable set of sources.
type Catalog struct {
	byType map[Type][]Source
}

// NewCatalog builds a catalog. Registration order does not affect queries.
func NewCatalog(sources ...Source) (*Catalog, error) {
	c := &Catalog{byType: make(map[Type][]Source)}
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if s.Version == "" {
			return nil, errors.NewValidation("version", "source version must not be empty")
		}
		if s.File == "" {
			return nil, errors.NewValidation("file", fmt.Sprintf("source %s has no data file", s.Label()))
		}
		key := s.Type.String() + "|" + s.Language.ID + "|" + strings.ToLower(s.Version)
		if seen[key] {
			return nil, errors.NewValidation("source", fmt.Sprintf("duplicate %s source %s", s.Type, s.Label()))
		}
		seen[key] = true
		c.byType[s.Type] = append(c.byType[s.Type], s)
	}
	for t := range c.byType {
		list := c.byType[t]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Language.ID != list[j].Language.ID {
				return list[i].Language.ID < list[j].Language.ID
			}
			return list[i].Version < list[j].Version
		})
	}
	return c, nil
}

// Default returns the catalog of bundled sources.
func Default() *Catalog {
	c, err := NewCatalog(
		Source{Original, Arabic, "Uthmani", "data/quran/QuranText.Arabic.Uthmani.xml"},
		Source{Translation, Dutch, "Leemhuis", "data/quran/QuranText.Dutch.Leemhuis.xml"},
		Source{Translation, Dutch, "Siregar", "data/quran/QuranText.Dutch.Siregar.xml"},
		Source{Translation, English, "Pickthall", "data/quran/QuranText.English.Pickthall.xml"},
		Source{Translation, English, "Sahih International", "data/quran/QuranText.English.Sahih_International.xml"},
		Source{Translation, Indonesian, "Ministry of Religious Affairs", "data/quran/QuranText.Indonesian.Ministry_of_Religious_Affairs.xml"},
		Source{Transliteration, English, "International", "data/quran/QuranText.English.Transliteration.xml"},
	)
	if err != nil {
		panic(fmt.Sprintf("source: bundled catalog is invalid: %v", err))
	}
	return c
}

// SourcesOfType returns the sources of a type sorted by (language, version).
func (c *Catalog) SourcesOfType(t Type) []Source {
	list := c.byType[t]
	out := make([]Source, len(list))
	copy(out, list)
	return out
}

// All returns every source, grouped by type in emission order.
func (c *Catalog) All() []Source {
	var out []Source
	for _, t := range Types {
		out = append(out, c.byType[t]...)
	}
	return out
}

// Lookup finds a source by type, language and version. The version is matched
// case-insensitively.
func (c *Catalog) Lookup(t Type, lang Language, version string) (Source, error) {
	for _, s := range c.byType[t] {
		if s.Language.ID == lang.ID && strings.EqualFold(s.Version, strings.TrimSpace(version)) {
			return s, nil
		}
	}
	return Source{}, errors.NewNotFound("source", fmt.Sprintf("%s %s (%s)", t, lang.ID, version))
}

// FilenameOf returns the data file path of a source.
func (c *Catalog) FilenameOf(t Type, lang Language, version string) (string, error) {
	s, err := c.Lookup(t, lang, version)
	if err != nil {
		return "", err
	}
	return s.File, nil
}

// DisplayStringOfType returns the "Language (Version)" labels of a type,
// comma-joined in catalog order.
func (c *Catalog) DisplayStringOfType(t Type) string {
	list := c.byType[t]
	labels := make([]string, len(list))
	for i, s := range list {
		labels[i] = s.Label()
	}
	return strings.Join(labels, ", ")
}

// Resolve joins a source's relative data path onto dataDir, refusing paths
// that would escape it. Absolute source paths are returned unchanged.
func Resolve(dataDir string, s Source) (string, error) {
	if filepath.IsAbs(s.File) {
		return s.File, nil
	}
	clean, err := validation.SanitizePath(dataDir, s.File)
	if err != nil {
		return "", errors.Wrap(err, "resolving "+s.Label())
	}
	return filepath.Join(dataDir, clean), nil
}
