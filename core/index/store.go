package index

import (
	"database/sql"
	stderrors "errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/quran"
	"github.com/FocuswithJustin/QuranLO/core/sqlite"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
)

var _ quran.Store = (*Store)(nil)

// Store answers verse queries from an index database.
type Store struct {
	path string
	db   *sql.DB
	meta map[string]string

	verse  *sql.Stmt
	rng    *sql.Stmt
	counts *sql.Stmt

	mu     sync.RWMutex
	closed bool
}

// Open opens an index read-only. Files that are not indexes of the current
// format fail with a *errors.DataAccessError.
func Open(path string) (*Store, error) {
	start := time.Now()

	s, err := open(path)
	if err != nil {
		logging.StoreFailed(path, err)
		return nil, errors.NewDataAccess("open", path, err)
	}

	surahs, _ := s.TotalSurahCount()
	verses, _ := s.TotalVerseCount()
	logging.StoreOpened(path, surahs, verses, time.Since(start), "backend", "sqlite")
	return s, nil
}

func open(path string) (*Store, error) {
	db, err := openExisting(path)
	if err != nil {
		return nil, err
	}

	meta, err := readMeta(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if meta == nil {
		db.Close()
		return nil, stderrors.New("not a verse index")
	}
	if v := meta[metaFormat]; v != strconv.Itoa(FormatVersion) {
		db.Close()
		return nil, errors.NewUnsupported("index format", "version "+v)
	}

	s := &Store{path: path, db: db, meta: meta}
	if err := s.prepare(); err != nil {
		s.db.Close()
		return nil, err
	}
	return s, nil
}

func openExisting(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) prepare() error {
	var err error
	if s.verse, err = s.db.Prepare(`SELECT text FROM verses WHERE surah = ? AND ayah = ?`); err != nil {
		return err
	}
	if s.rng, err = s.db.Prepare(`SELECT ayah, text FROM verses WHERE surah = ? AND ayah BETWEEN ? AND ? ORDER BY ayah`); err != nil {
		return err
	}
	if s.counts, err = s.db.Prepare(`SELECT COUNT(*) FROM verses WHERE surah = ?`); err != nil {
		return err
	}
	return nil
}

// Path returns the index file.
func (s *Store) Path() string {
	return s.path
}

// Fingerprint returns the BLAKE3 hash of the data file the index was built from.
func (s *Store) Fingerprint() string {
	return s.meta[metaBlake3]
}

// Source returns the data file path recorded at build time.
func (s *Store) Source() string {
	return s.meta[metaSource]
}

// checkOpen must be called with s.mu held.
func (s *Store) checkOpen(op string) error {
	if s.closed {
		return errors.NewDataAccess(op, s.path, quran.ErrClosed)
	}
	return nil
}

// Verse returns the text of (surah, ayah).
func (s *Store) Verse(surah, ayah int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("query"); err != nil {
		return "", err
	}

	var text string
	err := s.verse.QueryRow(surah, ayah).Scan(&text)
	if stderrors.Is(err, sql.ErrNoRows) || (err == nil && strings.TrimSpace(text) == "") {
		return "", errors.NewVerseNotFound(surah, ayah, s.path)
	}
	if err != nil {
		return "", errors.NewDataAccess("query", s.path, err)
	}
	return text, nil
}

// longestSurah bounds the preallocation of a range result.
const longestSurah = 286

// VerseRange returns verses from..to of a surah.
func (s *Store) VerseRange(surah, from, to int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("query"); err != nil {
		return nil, err
	}
	if err := quran.CheckRange(surah, from, to); err != nil {
		return nil, err
	}

	rows, err := s.rng.Query(surah, from, to)
	if err != nil {
		return nil, errors.NewDataAccess("query", s.path, err)
	}
	defer rows.Close()

	texts := make([]string, 0, min(to-from+1, longestSurah))
	next := from
	for rows.Next() {
		var ayah int
		var text string
		if err := rows.Scan(&ayah, &text); err != nil {
			return nil, errors.NewDataAccess("query", s.path, err)
		}
		if ayah != next || strings.TrimSpace(text) == "" {
			return nil, errors.NewVerseNotFound(surah, next, s.path)
		}
		texts = append(texts, text)
		next++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDataAccess("query", s.path, err)
	}
	if next <= to {
		return nil, errors.NewVerseNotFound(surah, next, s.path)
	}
	return texts, nil
}

// TotalSurahCount counts the surahs that have verses in the index.
func (s *Store) TotalSurahCount() (int, error) {
	return s.count(`SELECT COUNT(DISTINCT surah) FROM verses`)
}

// TotalVerseCount counts all verses in the index.
func (s *Store) TotalVerseCount() (int, error) {
	return s.count(`SELECT COUNT(*) FROM verses`)
}

// VerseCountIn counts the verses of one surah.
func (s *Store) VerseCountIn(surah int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("count"); err != nil {
		return 0, err
	}
	var n int
	if err := s.counts.QueryRow(surah).Scan(&n); err != nil {
		return 0, errors.NewDataAccess("count", s.path, err)
	}
	return n, nil
}

func (s *Store) count(query string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen("count"); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRow(query).Scan(&n); err != nil {
		return 0, errors.NewDataAccess("count", s.path, err)
	}
	return n, nil
}

// Close releases the statements and the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, st := range []*sql.Stmt{s.verse, s.rng, s.counts} {
		if st != nil {
			st.Close()
		}
	}
	return s.db.Close()
}
