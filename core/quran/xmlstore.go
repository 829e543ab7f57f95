package quran

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/xml"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
	"github.com/FocuswithJustin/QuranLO/internal/validation"
)

type verseKey struct {
	surah, ayah int
}

// XMLStore is a Store over one parsed XML data file. It is immutable after
// Open apart from Close, so concurrent queries are safe.
type XMLStore struct {
	path   string
	doc    *xml.Document
	verses map[verseKey]string

	mu     sync.RWMutex
	closed bool
}

// Open reads, decompresses if needed, parses and indexes a data file. Any
// failure returns a *errors.DataAccessError and no store.
func Open(path string) (*XMLStore, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fail(path, "open", err)
	}
	store, err := openBytes(path, data)
	if err != nil {
		return nil, err
	}

	surahs, _ := store.doc.Count("count(/quran/surah)")
	logging.StoreOpened(path, surahs, len(store.verses), time.Since(start))
	return store, nil
}

// OpenReader is Open for data that is already in memory or streamed; name is
// used for format detection and error messages.
func OpenReader(name string, r io.Reader) (*XMLStore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fail(name, "read", err)
	}
	return openBytes(name, data)
}

func openBytes(path string, data []byte) (*XMLStore, error) {
	header := data
	if len(header) > 64 {
		header = header[:64]
	}

	switch validation.DetectDataFormat(header, path) {
	case validation.FormatXZ:
		plain, err := decompress(data)
		if err != nil {
			return nil, fail(path, "decompress", err)
		}
		data = plain
	case validation.FormatSQLite:
		return nil, fail(path, "open", errors.NewUnsupported("data format", "SQLite index files are opened with index.Open"))
	}

	if res := xml.Validate(data); !res.Valid {
		return nil, fail(path, "parse", fmt.Errorf("offset %d: %s", res.Errors[0].Offset, res.Errors[0].Message))
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, fail(path, "parse", err)
	}

	verses, err := buildIndex(doc)
	if err != nil {
		return nil, fail(path, "index", err)
	}

	return &XMLStore{path: path, doc: doc, verses: verses}, nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func fail(path, op string, err error) error {
	e := errors.NewDataAccess(op, path, err)
	logging.StoreFailed(path, e, "op", op)
	return e
}

// buildIndex walks <quran>/<surah>/<ayah> once and keys every ayah text by
// (surah, ayah). Duplicate keys and non-numeric ordinals are rejected.
func buildIndex(doc *xml.Document) (map[verseKey]string, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Name() != "quran" {
		return nil, fmt.Errorf("root element is <%s>, want <quran>", root.Name())
	}

	verses := make(map[verseKey]string)
	seenSurah := make(map[int]bool)
	for _, s := range root.Children() {
		if s.Name() != "surah" {
			continue
		}
		sn, err := ordinal(s, "surah")
		if err != nil {
			return nil, err
		}
		if seenSurah[sn] {
			return nil, fmt.Errorf("duplicate surah %d", sn)
		}
		seenSurah[sn] = true

		for _, a := range s.Children() {
			if a.Name() != "ayah" {
				continue
			}
			an, err := ordinal(a, "ayah")
			if err != nil {
				return nil, fmt.Errorf("surah %d: %w", sn, err)
			}
			key := verseKey{sn, an}
			if _, dup := verses[key]; dup {
				return nil, fmt.Errorf("duplicate ayah %d:%d", sn, an)
			}
			verses[key] = a.Attr("text")
		}
	}
	return verses, nil
}

func ordinal(n *xml.Node, what string) (int, error) {
	raw := n.Attr("no")
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s has invalid no=%q", what, raw)
	}
	return v, nil
}

// Path returns the file the store was opened from.
func (s *XMLStore) Path() string {
	return s.path
}

// checkOpen must be called with s.mu held.
func (s *XMLStore) checkOpen(op string) error {
	if s.closed {
		return errors.NewDataAccess(op, s.path, ErrClosed)
	}
	return nil
}

// Verse returns the text of (surah, ayah).
func (s *XMLStore) Verse(surah, ayah int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("query"); err != nil {
		return "", err
	}
	return s.lookup(surah, ayah)
}

func (s *XMLStore) lookup(surah, ayah int) (string, error) {
	text, ok := s.verses[verseKey{surah, ayah}]
	if !ok || strings.TrimSpace(text) == "" {
		return "", errors.NewVerseNotFound(surah, ayah, s.path)
	}
	return text, nil
}

// VerseRange returns verses from..to of a surah.
func (s *XMLStore) VerseRange(surah, from, to int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("query"); err != nil {
		return nil, err
	}
	if err := CheckRange(surah, from, to); err != nil {
		return nil, err
	}

	// The last verse must exist before anything is allocated for the range.
	if _, err := s.lookup(surah, to); err != nil {
		return nil, err
	}

	texts := make([]string, 0, min(to-from+1, len(s.verses)))
	for a := from; a <= to; a++ {
		text, err := s.lookup(surah, a)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// TotalSurahCount counts the surah elements in the document.
func (s *XMLStore) TotalSurahCount() (int, error) {
	return s.count("count(/quran/surah)")
}

// TotalVerseCount counts all ayah elements in the document.
func (s *XMLStore) TotalVerseCount() (int, error) {
	return s.count("count(/quran/surah/ayah)")
}

// VerseCountIn counts the ayah elements of one surah.
func (s *XMLStore) VerseCountIn(surah int) (int, error) {
	return s.count(fmt.Sprintf("count(/quran/surah[@no='%d']/ayah)", surah))
}

func (s *XMLStore) count(expr string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("count"); err != nil {
		return 0, err
	}
	n, err := s.doc.Count(expr)
	if err != nil {
		return 0, errors.NewDataAccess("count", s.path, err)
	}
	return n, nil
}

// Close releases the parsed document. Subsequent queries fail with ErrClosed.
// Closing twice is a no-op.
func (s *XMLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc = nil
	s.verses = nil
	return nil
}
