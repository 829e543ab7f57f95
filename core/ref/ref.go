// Package ref parses verse references such as "112", "112:3", "112:1-4" and
// "Al-Ikhlȃṣ:1-4".
package ref

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/surah"
)

// Ref is a parsed verse reference. From and To are zero for a whole-surah
// reference; To is zero for a single verse until the reference is resolved.
type Ref struct {
	// Surah is the surah number, 0 while a named reference is unresolved.
	Surah int `json:"surah"`

	// Name is the surah name as written, empty for numeric references.
	Name string `json:"name,omitempty"`

	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Surah  surahPart  `@@`
	Verses *versePart `( ":" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type surahPart struct {
	Number *int    `  @Int`
	Name   *string `| @Name`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	From int  `@Int`
	To   *int `( "-" @Int )?`
}

// Surah names are transliterations with diacritics and hyphens, in either
// precomposed or decomposed form.
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Name", Pattern: `\p{L}[\p{L}\p{M}'\-]*`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string. Supported forms:
//   - "112" (whole surah)
//   - "112:3" (single verse)
//   - "112:1-4" (verse range)
//   - "Al-Ikhlȃṣ:1-4" (surah by name)
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, errors.NewParse("reference", "", "empty reference")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return Ref{}, &errors.ParseError{
			Format:  "reference",
			Message: strconv.Quote(s),
			Err:     err,
		}
	}

	var r Ref
	if parsed.Surah.Number != nil {
		r.Surah = *parsed.Surah.Number
	} else if parsed.Surah.Name != nil {
		r.Name = *parsed.Surah.Name
	}
	if v := parsed.Verses; v != nil {
		if v.From == 0 || (v.To != nil && *v.To == 0) {
			return Ref{}, errors.NewParse("reference", "", "verse numbers start at 1")
		}
		r.From = v.From
		if v.To != nil {
			r.To = *v.To
		}
	}
	return r, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Ref {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve looks up a named surah, fills whole-surah and single-verse ranges
// and checks the result against the catalog.
func (r Ref) Resolve(catalog *surah.Catalog) (Ref, error) {
	if r.Name != "" {
		n, err := catalog.OrdinalOf(r.Name)
		if err != nil {
			return Ref{}, err
		}
		r.Surah = n
	}

	size, err := catalog.SizeOf(r.Surah)
	if err != nil {
		return Ref{}, err
	}

	switch {
	case r.From == 0 && r.To == 0:
		r.From, r.To = 1, size
	case r.To == 0:
		r.To = r.From
	}

	if r.From > r.To {
		return Ref{}, errors.NewInvalidRange(r.Surah, r.From, r.To)
	}
	if r.From < 1 {
		return Ref{}, errors.NewVerseNotFound(r.Surah, r.From, "")
	}
	if r.To > size {
		return Ref{}, errors.NewVerseNotFound(r.Surah, r.To, "")
	}
	return r, nil
}

// Whole reports whether the reference names a surah without verses.
func (r Ref) Whole() bool {
	return r.From == 0 && r.To == 0
}

// String returns the numeric form, "S", "S:A" or "S:A-B". Unresolved named
// references keep their name.
func (r Ref) String() string {
	var sb strings.Builder
	if r.Surah == 0 && r.Name != "" {
		sb.WriteString(r.Name)
	} else {
		sb.WriteString(strconv.Itoa(r.Surah))
	}
	if r.From > 0 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(r.From))
		if r.To > r.From {
			sb.WriteString("-")
			sb.WriteString(strconv.Itoa(r.To))
		}
	}
	return sb.String()
}
