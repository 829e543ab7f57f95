package main

import (
	"context"
	"io"
	"os"

	"github.com/FocuswithJustin/QuranLO/core/cas"
	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/index"
	"github.com/FocuswithJustin/QuranLO/core/quran"
	"github.com/FocuswithJustin/QuranLO/core/surah"
	"github.com/FocuswithJustin/QuranLO/internal/cache"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
	"github.com/FocuswithJustin/QuranLO/internal/validation"
)

// sniff returns the container format of the file at path.
func sniff(path string) (validation.DataFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return validation.FormatUnknown, errors.NewDataAccess("open", path, err)
	}
	defer f.Close()

	header := make([]byte, 64)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return validation.FormatUnknown, errors.NewDataAccess("read", path, err)
	}
	return validation.DetectDataFormat(header[:n], path), nil
}

func openIndex(path string) (quran.Store, error) {
	s, err := index.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openXML(path string) (quran.Store, error) {
	s, err := quran.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openData opens a data file by its format. SQLite files are opened as
// indexes; XML and xz files are parsed.
func openData(path string) (quran.Store, error) {
	format, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if format == validation.FormatSQLite {
		return openIndex(path)
	}
	return openXML(path)
}

// dataOpener returns the opener used by the store cache. With an index
// directory, XML data is opened through a SQLite index built on first use and
// reused while the data file is unchanged. A failed build falls back to
// parsing the file.
func dataOpener(indexDir string, surahs *surah.Catalog) cache.Opener {
	if indexDir == "" {
		return openData
	}
	return func(path string) (quran.Store, error) {
		format, err := sniff(path)
		if err != nil {
			return nil, err
		}
		if format == validation.FormatSQLite {
			return openIndex(path)
		}

		artifacts, err := cas.NewStore(indexDir)
		if err == nil {
			var idx string
			idx, err = index.BuildInto(context.Background(), artifacts, path, surahs)
			if err == nil {
				return openIndex(idx)
			}
		}
		logging.Warn("index_unavailable", "path", path, "error", err.Error())
		return openXML(path)
	}
}
