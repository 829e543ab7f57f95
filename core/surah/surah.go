// Package surah provides the static catalog of the 114 surahs of the Qur'an:
// their canonical order, names and verse counts.
package surah

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/QuranLO/core/errors"
)

// Count is the number of surahs in the Qur'an.
const Count = 114

// TotalVerseCount is the number of verses in the Qur'an.
const TotalVerseCount = 6236

// Surah holds the catalog entry for a single surah.
type Surah struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Verses int    `json:"verses"`
}

// DisplayName returns the zero-padded "NNN Name" form used in selection lists.
func (s Surah) DisplayName() string {
	return fmt.Sprintf("%03d %s", s.Number, s.Name)
}

// Catalog is a read-only lookup over surah entries.
type Catalog struct {
	byNumber map[int]Surah
	byName   map[string]int
	ordered  []Surah
}

// Default returns a catalog built from the canonical surah table.
func Default() *Catalog {
	c, err := NewCatalog(surahs)
	if err != nil {
		panic(fmt.Sprintf("surah: canonical table is invalid: %v", err))
	}
	return c
}

// NewCatalog builds a catalog from the given entries. Numbers must be unique
// and verse counts positive.
func NewCatalog(entries []Surah) (*Catalog, error) {
	c := &Catalog{
		byNumber: make(map[int]Surah, len(entries)),
		byName:   make(map[string]int, len(entries)*2),
		ordered:  make([]Surah, 0, len(entries)),
	}
	for _, s := range entries {
		if s.Number < 1 {
			return nil, errors.NewValidation("number", fmt.Sprintf("surah number %d must be positive", s.Number))
		}
		if s.Verses < 1 {
			return nil, errors.NewValidation("verses", fmt.Sprintf("surah %d has no verses", s.Number))
		}
		if _, dup := c.byNumber[s.Number]; dup {
			return nil, errors.NewValidation("number", fmt.Sprintf("duplicate surah number %d", s.Number))
		}
		c.byNumber[s.Number] = s
		c.ordered = append(c.ordered, s)
		c.byName[foldName(s.Name)] = s.Number
		c.byName[foldName(s.DisplayName())] = s.Number
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].Number < c.ordered[j].Number
	})
	return c, nil
}

// Get returns the entry for a surah number.
func (c *Catalog) Get(number int) (Surah, error) {
	s, ok := c.byNumber[number]
	if !ok {
		return Surah{}, errors.NewNotFound("surah", strconv.Itoa(number))
	}
	return s, nil
}

// SizeOf returns the verse count of a surah.
func (c *Catalog) SizeOf(number int) (int, error) {
	s, err := c.Get(number)
	if err != nil {
		return -1, err
	}
	return s.Verses, nil
}

// NameOf returns the canonical name of a surah, without its number.
func (c *Catalog) NameOf(number int) (string, error) {
	s, err := c.Get(number)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// DisplayName returns the "NNN Name" form of a surah.
func (c *Catalog) DisplayName(number int) (string, error) {
	s, err := c.Get(number)
	if err != nil {
		return "", err
	}
	return s.DisplayName(), nil
}

// OrdinalOf finds the surah number for a name. Both the bare name
// ("Al-Fâtihah") and the display form ("001 Al-Fâtihah") are accepted;
// matching ignores case and surrounding whitespace.
func (c *Catalog) OrdinalOf(name string) (int, error) {
	key := foldName(name)
	if key == "" {
		return -1, errors.NewNotFound("surah", name)
	}
	if n, ok := c.byName[key]; ok {
		return n, nil
	}
	return -1, errors.NewNotFound("surah", name)
}

// All returns every entry in canonical order.
func (c *Catalog) All() []Surah {
	out := make([]Surah, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// TotalVerses returns the sum of all verse counts.
func (c *Catalog) TotalVerses() int {
	total := 0
	for _, s := range c.ordered {
		total += s.Verses
	}
	return total
}

// AllAsString returns all display names joined with ", ".
func (c *Catalog) AllAsString() string {
	names := make([]string, len(c.ordered))
	for i, s := range c.ordered {
		names[i] = s.DisplayName()
	}
	return strings.Join(names, ", ")
}

// HasBismillahPrefix reports whether the Bismillah is conventionally recited
// before the surah. Al-Fâtihah carries it as verse 1 and At-Tawbah has none.
func HasBismillahPrefix(number int) bool {
	return number != 1 && number != 9
}

// foldName normalises a name for comparison: NFC, case folded, trimmed.
// A Caser is stateful, so one is created per call.
func foldName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}
