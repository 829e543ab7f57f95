package format

import (
	"context"
	"fmt"
	"sort"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/quran"
	"github.com/FocuswithJustin/QuranLO/core/source"
	"github.com/FocuswithJustin/QuranLO/core/surah"
)

// Mode selects how verses are laid out.
type Mode int

const (
	// ModeBlock emits one paragraph per source holding the whole range.
	ModeBlock Mode = iota
	// ModeLines emits one paragraph per verse and source.
	ModeLines
)

// String returns "block" or "lines".
func (m Mode) String() string {
	if m == ModeLines {
		return "lines"
	}
	return "block"
}

// MarshalText encodes the mode as its String form.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts "block" or "lines".
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "block":
		*m = ModeBlock
	case "lines":
		*m = ModeLines
	default:
		return errors.NewValidation("mode", fmt.Sprintf("unknown layout %q", string(b)))
	}
	return nil
}

// Kind tells what a fragment holds.
type Kind string

const (
	KindBismillah Kind = "bismillah"
	KindVerses    Kind = "verses"
	KindFooter    Kind = "footer"
)

// Request describes one composition.
type Request struct {
	Surah int  `json:"surah"`
	From  int  `json:"from"`
	To    int  `json:"to"`
	Mode  Mode `json:"mode"`
	// Sources to render. Output order is fixed by source type, not by the
	// order given here.
	Sources []source.Source `json:"-"`
	// ArabicFont renders right-to-left languages, LatinFont the rest.
	ArabicFont string `json:"arabic_font"`
	LatinFont  string `json:"latin_font"`
	// Bismillah prefixes verse 1:1 of each source in block mode when the
	// whole surah is requested, except for surahs 1 and 9.
	Bismillah bool `json:"bismillah"`
	// Footer appends a reference line after each block.
	Footer bool `json:"footer"`
}

// Fragment is one paragraph of composed output together with the values the
// caller needs to lay it out.
type Fragment struct {
	Kind      Kind             `json:"kind"`
	Type      source.Type      `json:"type"`
	Language  source.Language  `json:"language"`
	Direction source.Direction `json:"direction"`
	Locale    string           `json:"locale"`
	Font      string           `json:"font"`
	Ayah      int              `json:"ayah,omitempty"`
	Text      string           `json:"text"`
}

// Opener opens the verse store of a source.
type Opener func(src source.Source) (quran.Store, error)

// Composer reads verses from the selected sources and formats them.
type Composer struct {
	surahs *surah.Catalog
	glyphs *glyph.Policy
	open   Opener
}

// NewComposer creates a Composer.
func NewComposer(surahs *surah.Catalog, glyphs *glyph.Policy, open Opener) *Composer {
	return &Composer{surahs: surahs, glyphs: glyphs, open: open}
}

// sourceText is everything read from one source before formatting starts.
type sourceText struct {
	src       source.Source
	font      string
	attrs     glyph.Attributes
	bismillah string
	verses    []string
}

// Compose validates the request, reads every selected source and formats the
// result. It returns either the complete output or an error and no fragments.
func (c *Composer) Compose(ctx context.Context, req Request) ([]Fragment, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	sources := make([]source.Source, len(req.Sources))
	copy(sources, req.Sources)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Type < sources[j].Type
	})

	withBismillah, err := c.wantBismillah(req)
	if err != nil {
		return nil, err
	}

	texts := make([]sourceText, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := c.read(src, req, withBismillah)
		if err != nil {
			return nil, err
		}
		texts = append(texts, st)
	}

	if req.Mode == ModeLines {
		return c.lines(req, texts), nil
	}
	return c.blocks(req, texts)
}

// wantBismillah reports whether block output starts with the bismillah: only
// when the whole surah is requested and the surah carries one.
func (c *Composer) wantBismillah(req Request) (bool, error) {
	if req.Mode != ModeBlock || !req.Bismillah || !surah.HasBismillahPrefix(req.Surah) {
		return false, nil
	}
	size, err := c.surahs.SizeOf(req.Surah)
	if err != nil {
		return false, err
	}
	return req.From == 1 && req.To == size, nil
}

func (c *Composer) validate(req Request) error {
	size, err := c.surahs.SizeOf(req.Surah)
	if err != nil {
		return err
	}
	if err := quran.CheckRange(req.Surah, req.From, req.To); err != nil {
		return err
	}
	if req.From < 1 {
		return errors.NewVerseNotFound(req.Surah, req.From, "")
	}
	if req.To > size {
		return errors.NewVerseNotFound(req.Surah, req.To, "")
	}
	if len(req.Sources) == 0 {
		return errors.NewValidation("sources", "no source selected")
	}
	return nil
}

func (c *Composer) read(src source.Source, req Request, withBismillah bool) (sourceText, error) {
	font := req.LatinFont
	if src.Language.FontClass == source.ArabicFont {
		font = req.ArabicFont
	}
	st := sourceText{src: src, font: font, attrs: c.glyphs.AttributesFor(font)}

	store, err := c.open(src)
	if err != nil {
		return st, err
	}
	defer store.Close()

	st.verses, err = store.VerseRange(req.Surah, req.From, req.To)
	if err != nil {
		return st, err
	}
	if withBismillah {
		b, err := quran.Bismillah(store)
		if err != nil {
			return st, err
		}
		st.bismillah = glyph.Transform(b, st.attrs)
	}
	return st, nil
}

func (st sourceText) fragment(kind Kind, ayah int, text string) Fragment {
	return Fragment{
		Kind:      kind,
		Type:      st.src.Type,
		Language:  st.src.Language,
		Direction: st.src.Language.Direction,
		Locale:    st.src.Language.Locale.String(),
		Font:      st.font,
		Ayah:      ayah,
		Text:      text,
	}
}

// blocks is source-major: each source contributes its bismillah, its block
// and its footer before the next source starts.
func (c *Composer) blocks(req Request, texts []sourceText) ([]Fragment, error) {
	var name string
	if req.Footer {
		n, err := c.surahs.NameOf(req.Surah)
		if err != nil {
			return nil, err
		}
		name = n
	}

	var out []Fragment
	for _, st := range texts {
		dir := st.src.Language.Direction
		if st.bismillah != "" {
			out = append(out, st.fragment(KindBismillah, 0, st.bismillah))
		}
		out = append(out, st.fragment(KindVerses, 0, Block(req.From, st.verses, dir, st.attrs)))
		if req.Footer {
			out = append(out, st.fragment(KindFooter, 0, Footer(name, req.Surah, req.From, req.To, numbering(dir, st.attrs))))
		}
	}
	return out, nil
}

// lines is verse-major: for every verse, one fragment per source.
func (c *Composer) lines(req Request, texts []sourceText) []Fragment {
	out := make([]Fragment, 0, len(texts)*(req.To-req.From+1))
	for i := 0; i <= req.To-req.From; i++ {
		ayah := req.From + i
		for _, st := range texts {
			text := Decorate(ayah, st.verses[i], st.src.Language.Direction, st.attrs)
			out = append(out, st.fragment(KindVerses, ayah, text))
		}
	}
	return out
}

// Join concatenates fragment texts with sep, the way a document writer would
// place them as consecutive paragraphs.
func Join(fragments []Fragment, sep string) string {
	var n int
	for _, f := range fragments {
		n += len(f.Text) + len(sep)
	}
	buf := make([]byte, 0, n)
	for i, f := range fragments {
		if i > 0 {
			buf = append(buf, sep...)
		}
		buf = append(buf, f.Text...)
	}
	return string(buf)
}
