package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/QuranLO/core/errors"
)

// Fingerprint identifies the exact bytes of a data file. BLAKE3 keys indexes
// and the store layout; SHA-256 is reported alongside for external checks.
type Fingerprint struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Size   int64  `json:"size"`
}

// FingerprintOf hashes data held in memory.
func FingerprintOf(data []byte) Fingerprint {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return Fingerprint{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
		Size:   int64(len(data)),
	}
}

// FingerprintReader hashes everything read from r in a single pass.
func FingerprintReader(r io.Reader) (Fingerprint, error) {
	s := sha256.New()
	b := blake3.New()
	n, err := io.Copy(io.MultiWriter(s, b), r)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{
		SHA256: hex.EncodeToString(s.Sum(nil)),
		BLAKE3: hex.EncodeToString(b.Sum(nil)),
		Size:   n,
	}, nil
}

// FingerprintFile hashes a file on disk.
func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, errors.NewDataAccess("fingerprint", path, err)
	}
	defer f.Close()

	fp, err := FingerprintReader(f)
	if err != nil {
		return Fingerprint{}, errors.NewDataAccess("fingerprint", path, err)
	}
	return fp, nil
}

// Blake3Hash computes the BLAKE3 hash of the given data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
