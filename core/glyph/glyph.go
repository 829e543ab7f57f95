// Package glyph maps font names to the code points used when rendering verse
// numbers, verse-number brackets and a few font-specific diacritics.
package glyph

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/QuranLO/core/errors"
)

// Code points with a fixed meaning in verse text.
const (
	ASCIIZero               rune = 0x0030
	ArabicIndicZero         rune = 0x0660
	ExtendedArabicIndicZero rune = 0x06F0
	OrnateLeftParenthesis   rune = 0xFD3E
	OrnateRightParenthesis  rune = 0xFD3F
	ArabicSukun             rune = 0x0652
	SmallHighRoundedZero    rune = 0x06DF
	SmallDotlessHeadOfKhah  rune = 0x06E1
)

//go:embed fonts.yaml
var defaultTable []byte

// Attributes is the glyph record of one font. Zero bracket or diacritic code
// points mean "none".
type Attributes struct {
	Name            string `yaml:"name" json:"name"`
	NumberBase      rune   `yaml:"number_base" json:"number_base"`
	LeftBracket     rune   `yaml:"left_bracket" json:"left_bracket"`
	RightBracket    rune   `yaml:"right_bracket" json:"right_bracket"`
	Sukun           rune   `yaml:"sukun" json:"sukun,omitempty"`
	HighRoundedZero rune   `yaml:"high_rounded_zero" json:"high_rounded_zero,omitempty"`
	ReverseDigits   bool   `yaml:"reverse_digits" json:"reverse_digits,omitempty"`
}

// Fallback is the record used for fonts missing from a policy: ASCII digits,
// plain parentheses and no diacritic substitution.
func Fallback() Attributes {
	return Attributes{NumberBase: ASCIIZero, LeftBracket: '(', RightBracket: ')'}
}

// LeftBracketString returns the left bracket, or "" if the font has none.
func (a Attributes) LeftBracketString() string {
	return runeString(a.LeftBracket)
}

// RightBracketString returns the right bracket, or "" if the font has none.
func (a Attributes) RightBracketString() string {
	return runeString(a.RightBracket)
}

func runeString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

// Policy is a read-only table of font attributes keyed by exact font name.
type Policy struct {
	fonts map[string]Attributes
}

type table struct {
	Fonts []Attributes `yaml:"fonts"`
}

// LoadPolicy decodes a YAML font table.
func LoadPolicy(r io.Reader) (*Policy, error) {
	var t table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && err != io.EOF {
		return nil, &errors.ParseError{Format: "font table", Message: err.Error(), Err: err}
	}
	return NewPolicy(t.Fonts...)
}

// LoadPolicyFile reads a YAML font table from disk.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDataAccess("read", path, err)
	}
	p, err := LoadPolicy(bytes.NewReader(data))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return p, nil
}

// NewPolicy validates records and builds a policy.
func NewPolicy(records ...Attributes) (*Policy, error) {
	p := &Policy{fonts: make(map[string]Attributes, len(records))}
	for _, a := range records {
		if strings.TrimSpace(a.Name) == "" {
			return nil, errors.NewValidation("name", "font record without a name")
		}
		if _, dup := p.fonts[a.Name]; dup {
			return nil, errors.NewValidation("name", fmt.Sprintf("duplicate font %q", a.Name))
		}
		if a.NumberBase <= 0 {
			return nil, errors.NewValidation("number_base", fmt.Sprintf("font %q has no number base", a.Name))
		}
		p.fonts[a.Name] = a
	}
	return p, nil
}

// DefaultPolicy returns the policy built from the bundled font table.
func DefaultPolicy() *Policy {
	p, err := LoadPolicy(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("glyph: bundled font table is invalid: %v", err))
	}
	return p
}

// AttributesFor returns the record for an exact font name, or Fallback with
// the name filled in.
func (p *Policy) AttributesFor(font string) Attributes {
	if a, ok := p.fonts[font]; ok {
		return a
	}
	a := Fallback()
	a.Name = font
	return a
}

// Lookup reports whether the policy has a record for the font.
func (p *Policy) Lookup(font string) (Attributes, bool) {
	a, ok := p.fonts[font]
	return a, ok
}

// Fonts returns the curated font names in sorted order.
func (p *Policy) Fonts() []string {
	names := make([]string, 0, len(p.fonts))
	for name := range p.fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of the policy with records added or replaced.
func (p *Policy) With(records ...Attributes) *Policy {
	out := &Policy{fonts: make(map[string]Attributes, len(p.fonts)+len(records))}
	for k, v := range p.fonts {
		out.fonts[k] = v
	}
	for _, a := range records {
		out.fonts[a.Name] = a
	}
	return out
}

// RenderNumber writes n in the font's digits, most significant first unless
// the font reverses digit order. Zero renders as a single zero glyph.
// Negative numbers get a leading '-'.
func RenderNumber(n int, a Attributes) string {
	base := a.NumberBase
	if base == 0 {
		base = ASCIIZero
	}
	if n == 0 {
		return string(base)
	}

	neg := n < 0
	if neg {
		n = -n
	}

	// Digits come out least significant first.
	var digits []rune
	for n > 0 {
		digits = append(digits, base+rune(n%10))
		n /= 10
	}
	if !a.ReverseDigits {
		for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
			digits[i], digits[j] = digits[j], digits[i]
		}
	}

	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// Transform substitutes the sukun and small high rounded zero marks with the
// font's replacements. Both substitutions are applied in a single pass so a
// replacement is never substituted again.
func Transform(text string, a Attributes) string {
	var pairs []string
	if a.Sukun != 0 && a.Sukun != ArabicSukun {
		pairs = append(pairs, string(ArabicSukun), string(a.Sukun))
	}
	if a.HighRoundedZero != 0 && a.HighRoundedZero != SmallHighRoundedZero {
		pairs = append(pairs, string(SmallHighRoundedZero), string(a.HighRoundedZero))
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
