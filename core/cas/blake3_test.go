package cas

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	qerrors "github.com/FocuswithJustin/QuranLO/core/errors"
)

func TestFingerprintOfEmpty(t *testing.T) {
	fp := FingerprintOf(nil)

	if fp.SHA256 != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("SHA256 = %s", fp.SHA256)
	}
	if fp.BLAKE3 != "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262" {
		t.Errorf("BLAKE3 = %s", fp.BLAKE3)
	}
	if fp.Size != 0 {
		t.Errorf("Size = %d", fp.Size)
	}
}

func TestFingerprintReaderMatchesInMemory(t *testing.T) {
	data := bytes.Repeat([]byte(`<ayah no="1" text="x"/>`), 5000)

	want := FingerprintOf(data)
	got, err := FingerprintReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("FingerprintReader error: %v", err)
	}
	if got != want {
		t.Errorf("FingerprintReader = %+v, want %+v", got, want)
	}
	if got.BLAKE3 != Blake3Hash(data) {
		t.Error("Blake3Hash disagrees with FingerprintOf")
	}
}

func TestFingerprintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quran.xml")
	data := []byte("<quran/>")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	fp, err := FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile error: %v", err)
	}
	if fp != FingerprintOf(data) {
		t.Errorf("FingerprintFile = %+v", fp)
	}

	if _, err := FingerprintFile(filepath.Join(dir, "missing.xml")); !errors.Is(err, qerrors.ErrDataAccess) {
		t.Errorf("missing file error = %v, want ErrDataAccess", err)
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := FingerprintOf([]byte("قُلْ هُوَ ٱللَّهُ أَحَدٌ"))
	b := FingerprintOf([]byte("قُلْ هُوَ ٱللَّهُ أَحَدٌ "))
	if a.BLAKE3 == b.BLAKE3 || a.SHA256 == b.SHA256 {
		t.Error("different content produced the same fingerprint")
	}
}
