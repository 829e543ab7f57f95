// Package index mirrors a verse data file into SQLite so that later opens
// skip XML parsing. An index records the fingerprint of the file it was
// built from and answers the same queries as the XML store.
package index

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/FocuswithJustin/QuranLO/core/cas"
	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/quran"
	"github.com/FocuswithJustin/QuranLO/core/sqlite"
	"github.com/FocuswithJustin/QuranLO/core/surah"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
)

// FormatVersion is bumped whenever the schema changes; indexes with another
// version are stale.
const FormatVersion = 1

// Ext is the file extension used for index artifacts.
const Ext = ".sqlite"

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE verses (
	surah INTEGER NOT NULL,
	ayah  INTEGER NOT NULL,
	text  TEXT NOT NULL,
	PRIMARY KEY (surah, ayah)
);
`

// Meta keys.
const (
	metaFormat = "format_version"
	metaBlake3 = "blake3"
	metaSHA256 = "sha256"
	metaSource = "source"
	metaBuilt  = "built_at"
)

// Build writes every verse of s into db, replacing any previous content, and
// stamps the index with fp. The write is a single transaction.
func Build(ctx context.Context, db *sql.DB, s quran.Store, catalog *surah.Catalog, source string, fp cas.Fingerprint) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DROP TABLE IF EXISTS verses`, `DROP TABLE IF EXISTS meta`, schema} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	insert, err := tx.PrepareContext(ctx, `INSERT INTO verses (surah, ayah, text) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	var n int
	err = quran.ReadAll(s, catalog, func(v quran.Verse) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := insert.ExecContext(ctx, v.Surah, v.Ayah, v.Text); err != nil {
			return fmt.Errorf("failed to insert %d:%d: %w", v.Surah, v.Ayah, err)
		}
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}

	meta := map[string]string{
		metaFormat: strconv.Itoa(FormatVersion),
		metaBlake3: fp.BLAKE3,
		metaSHA256: fp.SHA256,
		metaSource: source,
		metaBuilt:  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return 0, fmt.Errorf("failed to write meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit index: %w", err)
	}
	return n, nil
}

// BuildFile indexes the data file at src into a new database at out. An
// existing file at out is replaced only after the build succeeds.
func BuildFile(ctx context.Context, src, out string, catalog *surah.Catalog) (cas.Fingerprint, error) {
	start := time.Now()

	fp, err := cas.FingerprintFile(src)
	if err != nil {
		return cas.Fingerprint{}, err
	}
	store, err := quran.Open(src)
	if err != nil {
		return cas.Fingerprint{}, err
	}
	defer store.Close()

	tmp := out + ".tmp"
	os.Remove(tmp)
	n, err := buildInto(ctx, tmp, store, catalog, src, fp)
	if err != nil {
		os.Remove(tmp)
		return cas.Fingerprint{}, errors.NewDataAccess("index", out, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return cas.Fingerprint{}, errors.NewDataAccess("index", out, err)
	}

	logging.IndexBuilt(out, fp.BLAKE3, n, time.Since(start))
	return fp, nil
}

// BuildInto indexes src into the artifact store under its fingerprint and
// returns the index path. An index that is already present and fresh is
// reused.
func BuildInto(ctx context.Context, artifacts *cas.Store, src string, catalog *surah.Catalog) (string, error) {
	fp, err := cas.FingerprintFile(src)
	if err != nil {
		return "", err
	}
	if path, err := artifacts.Lookup(fp.BLAKE3, Ext); err == nil {
		if ok, _ := FreshFile(path, fp); ok {
			return path, nil
		}
	}

	start := time.Now()
	store, err := quran.Open(src)
	if err != nil {
		return "", err
	}
	defer store.Close()

	f, err := artifacts.TempFile(fp.BLAKE3, Ext)
	if err != nil {
		return "", errors.NewDataAccess("index", src, err)
	}
	tmp := f.Name()
	f.Close()

	n, err := buildInto(ctx, tmp, store, catalog, src, fp)
	if err != nil {
		os.Remove(tmp)
		return "", errors.NewDataAccess("index", src, err)
	}
	path, err := artifacts.Commit(tmp, fp.BLAKE3, Ext)
	if err != nil {
		return "", errors.NewDataAccess("index", src, err)
	}

	logging.IndexBuilt(path, fp.BLAKE3, n, time.Since(start))
	return path, nil
}

func buildInto(ctx context.Context, path string, s quran.Store, catalog *surah.Catalog, src string, fp cas.Fingerprint) (int, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return 0, err
	}
	n, err := Build(ctx, db, s, catalog, src, fp)
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Fresh reports whether db was built by this schema version from the file
// with fingerprint fp. A database without index tables is not fresh.
func Fresh(db *sql.DB, fp cas.Fingerprint) (bool, error) {
	meta, err := readMeta(db)
	if err != nil {
		return false, err
	}
	if meta == nil {
		return false, nil
	}
	return meta[metaFormat] == strconv.Itoa(FormatVersion) && meta[metaBlake3] == fp.BLAKE3, nil
}

// FreshFile is Fresh for an index on disk.
func FreshFile(path string, fp cas.Fingerprint) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return false, err
	}
	defer db.Close()
	return Fresh(db, fp)
}

// readMeta returns nil, nil when the meta table does not exist.
func readMeta(db *sql.DB) (map[string]string, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'meta'`).Scan(&name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
