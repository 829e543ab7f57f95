// Package quran reads verse data files and answers point and range queries
// keyed by (surah, ayah).
//
// A data file has the shape
//
//	<quran>
//	  <surah no="1" name="Al-Fâtihah">
//	    <ayah no="1" text="..."/>
//	  </surah>
//	</quran>
//
// and may be xz-compressed. A store is bound to one file for its lifetime:
// open, query, close.
package quran

import (
	stderrors "errors"
	"fmt"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/surah"
)

// Store answers verse queries over one data file. Implementations are the
// XML-backed XMLStore and the SQLite-backed index.Store.
type Store interface {
	// Verse returns the text of one verse. Missing, empty and whitespace-only
	// entries fail with a *errors.VerseNotFoundError.
	Verse(surah, ayah int) (string, error)
	// VerseRange returns verses from..to inclusive, in order. It fails as a
	// whole if from > to or if any verse in the range is missing.
	VerseRange(surah, from, to int) ([]string, error)
	TotalSurahCount() (int, error)
	TotalVerseCount() (int, error)
	VerseCountIn(surah int) (int, error)
	Close() error
}

// ErrClosed is returned by queries against a closed store.
var ErrClosed = stderrors.New("store is closed")

// Bismillah returns verse 1:1 of the store.
func Bismillah(s Store) (string, error) {
	return s.Verse(1, 1)
}

// Verse is one verse with its reference, as produced by ReadAll.
type Verse struct {
	Surah int
	Ayah  int
	Text  string
}

// ReadAll walks the surahs of the catalog in canonical order and calls fn for
// every verse the store holds for them. Surahs absent from the store are
// skipped; a surah with more verses than the catalog allows is an error.
// Iteration stops at the first error from the store or from fn.
func ReadAll(s Store, catalog *surah.Catalog, fn func(Verse) error) error {
	for _, su := range catalog.All() {
		n, err := s.VerseCountIn(su.Number)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		if n > su.Verses {
			return errors.NewValidation("ayah", fmt.Sprintf("surah %d has %d verses, catalog allows %d", su.Number, n, su.Verses))
		}
		texts, err := s.VerseRange(su.Number, 1, n)
		if err != nil {
			return err
		}
		for i, text := range texts {
			if err := fn(Verse{Surah: su.Number, Ayah: i + 1, Text: text}); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckRange reports an *errors.InvalidRangeError when from > to.
func CheckRange(surahNo, from, to int) error {
	if from > to {
		return errors.NewInvalidRange(surahNo, from, to)
	}
	return nil
}
