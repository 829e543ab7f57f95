package glyph

import (
	"os"
	"strings"

	"golang.org/x/image/font/sfnt"

	"github.com/FocuswithJustin/QuranLO/core/errors"
)

// FontInfo is the result of probing a font file.
type FontInfo struct {
	Attributes
	Family         string `json:"family"`
	SupportsArabic bool   `json:"supports_arabic"`
	SupportsLatin  bool   `json:"supports_latin"`
}

// ProbeFont parses a TrueType/OpenType font and derives its glyph record from
// cmap coverage. Arabic-capable fonts prefer Arabic-Indic digits, then
// Extended Arabic-Indic, then ASCII; ornate parentheses are used when present.
// Fonts covering only Latin get the Fallback record.
func ProbeFont(data []byte) (FontInfo, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return FontInfo{}, errors.NewUnsupported("font", err.Error())
	}

	var buf sfnt.Buffer
	has := func(r rune) bool {
		idx, err := f.GlyphIndex(&buf, r)
		return err == nil && idx != 0
	}

	family, _ := f.Name(&buf, sfnt.NameIDFamily)

	info := FontInfo{
		Family:         family,
		SupportsArabic: has(0x0627), // ALEF
		SupportsLatin:  has('a'),
	}

	if !info.SupportsArabic {
		info.Attributes = Fallback()
		info.Attributes.Name = family
		return info, nil
	}

	kfgqpc := strings.Contains(family, "KFGQPC")
	pick := func(r, fallback rune) rune {
		if has(r) {
			return r
		}
		return fallback
	}

	a := Attributes{Name: family, NumberBase: ASCIIZero, ReverseDigits: kfgqpc}
	switch {
	case has(ArabicIndicZero):
		a.NumberBase = ArabicIndicZero
	case has(ExtendedArabicIndicZero):
		a.NumberBase = ExtendedArabicIndicZero
	}
	if kfgqpc {
		a.LeftBracket = pick(' ', ')')
		a.RightBracket = pick(' ', '(')
		a.HighRoundedZero = pick(ArabicSukun, 0)
	} else {
		a.LeftBracket = pick(OrnateLeftParenthesis, ')')
		a.RightBracket = pick(OrnateRightParenthesis, '(')
		a.HighRoundedZero = pick(SmallHighRoundedZero, 0)
	}
	a.Sukun = pick(SmallDotlessHeadOfKhah, ArabicSukun)

	info.Attributes = a
	return info, nil
}

// ProbeFontFile reads and probes a font file.
func ProbeFontFile(path string) (FontInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FontInfo{}, errors.NewDataAccess("read", path, err)
	}
	return ProbeFont(data)
}
