package source

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	qerrors "github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/internal/validation"
)

func TestSourcesOfTypeTranslationSorted(t *testing.T) {
	list := Default().SourcesOfType(Translation)

	want := []struct {
		lang    Language
		version string
	}{
		{Dutch, "Leemhuis"},
		{Dutch, "Siregar"},
		{English, "Pickthall"},
		{English, "Sahih International"},
		{Indonesian, "Ministry of Religious Affairs"},
	}

	if len(list) != len(want) {
		t.Fatalf("SourcesOfType(Translation) len = %d, want %d", len(list), len(want))
	}
	for i, w := range want {
		if list[i].Language.ID != w.lang.ID || list[i].Version != w.version {
			t.Errorf("entry %d = %s, want %s (%s)", i, list[i].Label(), w.lang.ID, w.version)
		}
	}
}

func TestSortingIndependentOfRegistrationOrder(t *testing.T) {
	sources := []Source{
		{Translation, Indonesian, "Ministry of Religious Affairs", "id.xml"},
		{Translation, English, "Sahih International", "en-sahih.xml"},
		{Translation, Dutch, "Siregar", "nl-siregar.xml"},
		{Translation, English, "Pickthall", "en-pickthall.xml"},
		{Translation, Dutch, "Leemhuis", "nl-leemhuis.xml"},
	}

	forward, err := NewCatalog(sources...)
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}

	reversed := make([]Source, len(sources))
	for i, s := range sources {
		reversed[len(sources)-1-i] = s
	}
	backward, err := NewCatalog(reversed...)
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}

	a := forward.SourcesOfType(Translation)
	b := backward.SourcesOfType(Translation)
	wantLangs := []string{"Dutch", "Dutch", "English", "English", "Indonesian"}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("entry %d differs: %s vs %s", i, a[i].Label(), b[i].Label())
		}
		if a[i].Language.ID != wantLangs[i] {
			t.Errorf("entry %d language = %s, want %s", i, a[i].Language.ID, wantLangs[i])
		}
	}
}

func TestSourcesOfTypeTransliteration(t *testing.T) {
	list := Default().SourcesOfType(Transliteration)
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].Language.ID != "English" || list[0].Version != "International" {
		t.Errorf("got %s", list[0].Label())
	}
	if list[0].File != "data/quran/QuranText.English.Transliteration.xml" {
		t.Errorf("File = %q", list[0].File)
	}
}

func TestSourcesOfTypeReturnsCopy(t *testing.T) {
	c := Default()
	list := c.SourcesOfType(Original)
	list[0].Version = "changed"
	if c.SourcesOfType(Original)[0].Version != "Uthmani" {
		t.Error("SourcesOfType must not expose internal state")
	}
}

func TestFilenameOf(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		typ     Type
		lang    Language
		version string
		want    string
	}{
		{"exact", Translation, English, "Pickthall", "data/quran/QuranText.English.Pickthall.xml"},
		{"case-insensitive version", Translation, English, "sahih INTERNATIONAL", "data/quran/QuranText.English.Sahih_International.xml"},
		{"original", Original, Arabic, "uthmani", "data/quran/QuranText.Arabic.Uthmani.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.FilenameOf(tt.typ, tt.lang, tt.version)
			if err != nil {
				t.Fatalf("FilenameOf error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FilenameOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilenameOfNotFound(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		typ     Type
		lang    Language
		version string
	}{
		{"unknown version", Translation, English, "Yusuf Ali"},
		{"wrong type", Original, English, "Pickthall"},
		{"wrong language", Translation, Dutch, "Pickthall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.FilenameOf(tt.typ, tt.lang, tt.version)
			if !errors.Is(err, qerrors.ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
			if got != "" {
				t.Errorf("FilenameOf = %q, want empty", got)
			}
		})
	}
}

func TestDisplayStringOfType(t *testing.T) {
	got := Default().DisplayStringOfType(Translation)
	want := "Dutch (Leemhuis), Dutch (Siregar), English (Pickthall), English (Sahih International), Indonesian (Ministry of Religious Affairs)"
	if got != want {
		t.Errorf("DisplayStringOfType = %q, want %q", got, want)
	}

	empty, err := NewCatalog()
	if err != nil {
		t.Fatal(err)
	}
	if s := empty.DisplayStringOfType(Original); s != "" {
		t.Errorf("empty catalog display = %q, want empty", s)
	}
}

func TestNewCatalogRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
	}{
		{"empty version", []Source{{Original, Arabic, "", "a.xml"}}},
		{"empty file", []Source{{Original, Arabic, "Uthmani", ""}}},
		{"duplicate ignoring case", []Source{
			{Translation, English, "Pickthall", "a.xml"},
			{Translation, English, "pickthall", "b.xml"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.sources...); !errors.Is(err, qerrors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAllGroupsByEmissionOrder(t *testing.T) {
	all := Default().All()
	if len(all) != 7 {
		t.Fatalf("len = %d, want 7", len(all))
	}
	if all[0].Type != Original {
		t.Errorf("first type = %s, want Original", all[0].Type)
	}
	if all[1].Type != Transliteration {
		t.Errorf("second type = %s, want Transliteration", all[1].Type)
	}
	if all[len(all)-1].Type != Translation {
		t.Errorf("last type = %s, want Translation", all[len(all)-1].Type)
	}
}

func TestParseType(t *testing.T) {
	for _, in := range []string{"original", "Translation", " TRANSLITERATION "} {
		if _, err := ParseType(in); err != nil {
			t.Errorf("ParseType(%q) error: %v", in, err)
		}
	}
	if _, err := ParseType("commentary"); !errors.Is(err, qerrors.ErrNotFound) {
		t.Errorf("ParseType(commentary) error = %v, want ErrNotFound", err)
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"English", English},
		{"dutch", Dutch},
		{"ar", Arabic},
		{"id-ID", Indonesian},
		{"ur", Urdu},
	}
	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		if err != nil {
			t.Fatalf("ParseLanguage(%q) error: %v", tt.in, err)
		}
		if got.ID != tt.want.ID {
			t.Errorf("ParseLanguage(%q) = %s, want %s", tt.in, got.ID, tt.want.ID)
		}
	}
	if _, err := ParseLanguage("Klingon"); !errors.Is(err, qerrors.ErrNotFound) {
		t.Errorf("ParseLanguage(Klingon) error = %v, want ErrNotFound", err)
	}
}

func TestLanguageDirections(t *testing.T) {
	if Arabic.Direction != RTL || Urdu.Direction != RTL {
		t.Error("Arabic-script languages must be RTL")
	}
	for _, l := range []Language{Dutch, English, Indonesian} {
		if l.Direction != LTR {
			t.Errorf("%s direction = %s, want LTR", l.ID, l.Direction)
		}
		if l.FontClass != LatinFont {
			t.Errorf("%s font class = %s, want Latin", l.ID, l.FontClass)
		}
	}
	if Arabic.Locale.String() != "ar-SA" {
		t.Errorf("Arabic locale = %s, want ar-SA", Arabic.Locale)
	}
}

func TestResolve(t *testing.T) {
	dataDir := t.TempDir()
	s := Source{Original, Arabic, "Uthmani", "data/quran/QuranText.Arabic.Uthmani.xml"}

	got, err := Resolve(dataDir, s)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := filepath.Join(dataDir, "data", "quran", "QuranText.Arabic.Uthmani.xml")
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}

	escape := Source{Original, Arabic, "Evil", "../../etc/passwd"}
	if _, err := Resolve(dataDir, escape); !errors.Is(err, validation.ErrPathTraversal) {
		t.Errorf("Resolve(escape) error = %v, want ErrPathTraversal", err)
	}

	abs := Source{Original, Arabic, "Abs", filepath.Join(dataDir, "x.xml")}
	if got, _ := Resolve("/elsewhere", abs); got != abs.File {
		t.Errorf("Resolve(abs) = %q, want %q", got, abs.File)
	}
}

func TestTextRoundTrip(t *testing.T) {
	in := struct {
		Type      Type      `json:"type"`
		Language  Language  `json:"language"`
		Direction Direction `json:"direction"`
	}{Transliteration, Urdu, RTL}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"Transliteration","language":"Urdu","direction":"RTL"}` {
		t.Errorf("json = %s", data)
	}

	out := in
	out.Type, out.Language, out.Direction = Original, English, LTR
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if out.Type != in.Type || out.Language.ID != "Urdu" || out.Language.Locale.String() != "ur-PK" || out.Direction != RTL {
		t.Errorf("round trip = %+v", out)
	}

	if err := json.Unmarshal([]byte(`{"direction":"up"}`), &out); !errors.Is(err, qerrors.ErrInvalidInput) {
		t.Errorf("bad direction error = %v, want ErrInvalidInput", err)
	}
}
