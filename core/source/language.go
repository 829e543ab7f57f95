package source

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/FocuswithJustin/QuranLO/core/errors"
)

// Direction represents the writing direction of a language.
type Direction int

const (
	// LTR (Left-to-Right) for Latin-script languages.
	LTR Direction = iota
	// RTL (Right-to-Left) for Arabic-script languages.
	RTL
)

// String returns "LTR" or "RTL".
func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the direction as its String form.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "LTR" or "RTL", ignoring case.
func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "LTR":
		*d = LTR
	case "RTL":
		*d = RTL
	default:
		return errors.NewValidation("direction", "unknown direction "+strconv.Quote(string(b)))
	}
	return nil
}

// FontClass tells which of the two user-selected fonts renders a language.
type FontClass int

const (
	// LatinFont is the font used for left-to-right languages.
	LatinFont FontClass = iota
	// ArabicFont is the complex-script font used for Arabic-script languages.
	ArabicFont
)

// String returns "Latin" or "Arabic".
func (f FontClass) String() string {
	if f == ArabicFont {
		return "Arabic"
	}
	return "Latin"
}

// Language is one of the closed set of source languages.
type Language struct {
	ID        string
	Direction Direction
	Locale    language.Tag
	FontClass FontClass
}

// String returns the language id.
func (l Language) String() string {
	return l.ID
}

// MarshalText encodes the language as its id.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.ID), nil
}

// UnmarshalText decodes a language id or BCP 47 tag.
func (l *Language) UnmarshalText(b []byte) error {
	v, err := ParseLanguage(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Supported languages.
var (
	Arabic     = Language{"Arabic", RTL, language.MustParse("ar-SA"), ArabicFont}
	Dutch      = Language{"Dutch", LTR, language.MustParse("nl-NL"), LatinFont}
	English    = Language{"English", LTR, language.MustParse("en-US"), LatinFont}
	Indonesian = Language{"Indonesian", LTR, language.MustParse("id-ID"), LatinFont}
	Urdu       = Language{"Urdu", RTL, language.MustParse("ur-PK"), ArabicFont}
)

var languages = []Language{Arabic, Dutch, English, Indonesian, Urdu}

// Languages returns all supported languages.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ParseLanguage looks up a language by id (case-insensitive) or by its BCP 47
// base language ("en", "ar").
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for _, l := range languages {
		if strings.EqualFold(l.ID, s) {
			return l, nil
		}
	}
	if tag, err := language.Parse(s); err == nil {
		base, _ := tag.Base()
		for _, l := range languages {
			if lb, _ := l.Locale.Base(); lb == base {
				return l, nil
			}
		}
	}
	return Language{}, errors.NewNotFound("language", s)
}
