// Package cas fingerprints data files and keeps derived artifacts, such as
// verse indexes, in a directory addressed by the source file's BLAKE3 hash.
package cas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/FocuswithJustin/QuranLO/internal/validation"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// ErrArtifactNotFound is returned when no artifact exists for a hash.
var ErrArtifactNotFound = errors.New("artifact not found")

// ErrInvalidHash is returned when a hash string is not 64 lowercase hex digits.
var ErrInvalidHash = errors.New("invalid hash format")

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Store lays artifacts out as <root>/blake3/<first2>/<hash><ext>.
type Store struct {
	root string
}

// NewStore creates a store at root, creating the directory if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "blake3"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns where the artifact for hash with extension ext lives. The file
// need not exist.
func (s *Store) Path(hash, ext string) (string, error) {
	if !isValidHash(hash) {
		return "", ErrInvalidHash
	}
	if err := validation.ValidateFilename(hash + ext); err != nil {
		return "", err
	}
	return filepath.Join(s.root, "blake3", hash[:2], hash+ext), nil
}

// Lookup returns the artifact path if it exists.
func (s *Store) Lookup(hash, ext string) (string, error) {
	path, err := s.Path(hash, ext)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrArtifactNotFound
		}
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}
	return path, nil
}

// Exists reports whether an artifact is present.
func (s *Store) Exists(hash, ext string) bool {
	_, err := s.Lookup(hash, ext)
	return err == nil
}

// TempFile creates a scratch file in the prefix directory of hash so that
// Commit can rename it into place atomically.
func (s *Store) TempFile(hash, ext string) (*os.File, error) {
	path, err := s.Path(hash, ext)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create prefix directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return f, nil
}

// Commit moves a finished temp file to its final path. On failure the temp
// file is removed.
func (s *Store) Commit(tempPath, hash, ext string) (string, error) {
	path, err := s.Path(hash, ext)
	if err != nil {
		os.Remove(tempPath)
		return "", err
	}
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename artifact: %w", err)
	}
	return path, nil
}

// Put writes data as the artifact for hash.
func (s *Store) Put(hash, ext string, r io.Reader) (string, error) {
	f, err := s.TempFile(hash, ext)
	if err != nil {
		return "", err
	}
	tempPath := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return s.Commit(tempPath, hash, ext)
}

// Remove deletes an artifact. Removing a missing artifact is not an error.
func (s *Store) Remove(hash, ext string) error {
	path, err := s.Path(hash, ext)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func isValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}
