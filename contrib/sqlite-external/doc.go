// Package sqliteexternal provides the optional CGO SQLite driver.
//
// To use the CGO driver (github.com/mattn/go-sqlite3) for verse indexes:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/quranlo
//
// By default QuranLO uses the pure Go modernc.org/sqlite driver, see
// github.com/FocuswithJustin/QuranLO/core/sqlite.
package sqliteexternal
