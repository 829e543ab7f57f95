// Package format turns verse text into numbered, direction-aware fragments.
//
// The functions here are pure: the same verse texts, direction and glyph
// attributes always give the same string.
package format

import (
	"strings"

	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/source"
)

// Decorate numbers a single verse. Left-to-right text is preceded by its
// number in ASCII digits and plain parentheses; right-to-left text is
// followed by it in the font's digits, with the brackets in reverse order. Every decorated verse ends in one space.
func Decorate(n int, text string, dir source.Direction, attrs glyph.Attributes) string {
	var b strings.Builder
	writeVerse(&b, n, text, dir, attrs)
	return b.String()
}

// numbering returns the record verse numbers are drawn with. Left-to-right
// text is always numbered with ASCII digits in plain parentheses, whatever
// the font supports.
func numbering(dir source.Direction, attrs glyph.Attributes) glyph.Attributes {
	if dir == source.RTL {
		return attrs
	}
	return glyph.Fallback()
}

func writeVerse(b *strings.Builder, n int, text string, dir source.Direction, attrs glyph.Attributes) {
	text = glyph.Transform(text, attrs)
	attrs = numbering(dir, attrs)
	num := glyph.RenderNumber(n, attrs)

	if dir == source.RTL {
		b.WriteString(text)
		b.WriteString(attrs.RightBracketString())
		b.WriteString(num)
		b.WriteString(attrs.LeftBracketString())
		b.WriteByte(' ')
		return
	}

	b.WriteString(attrs.LeftBracketString())
	b.WriteString(num)
	b.WriteString(attrs.RightBracketString())
	b.WriteByte(' ')
	b.WriteString(text)
	b.WriteByte(' ')
}

// Block concatenates decorated verses. texts[i] is verse from+i.
func Block(from int, texts []string, dir source.Direction, attrs glyph.Attributes) string {
	var b strings.Builder
	for i, text := range texts {
		writeVerse(&b, from+i, text, dir, attrs)
	}
	return b.String()
}

// Lines returns one decorated verse per element. texts[i] is verse from+i.
func Lines(from int, texts []string, dir source.Direction, attrs glyph.Attributes) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = Decorate(from+i, text, dir, attrs)
	}
	return out
}

// Footer renders the reference line "(Name [S:from-to])", or
// "(Name [S:to])" for a single verse, with numbers in the font's digits.
func Footer(name string, surah, from, to int, attrs glyph.Attributes) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	b.WriteString(" [")
	b.WriteString(glyph.RenderNumber(surah, attrs))
	b.WriteString(":")
	if to > from {
		b.WriteString(glyph.RenderNumber(from, attrs))
		b.WriteString("-")
	}
	b.WriteString(glyph.RenderNumber(to, attrs))
	b.WriteString("])")
	return b.String()
}
