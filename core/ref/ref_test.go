package ref

import (
	"errors"
	"testing"

	"golang.org/x/text/unicode/norm"

	qerrors "github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/surah"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Ref
		wantErr bool
	}{
		{input: "112", want: Ref{Surah: 112}},
		{input: "112:3", want: Ref{Surah: 112, From: 3}},
		{input: "112:1-4", want: Ref{Surah: 112, From: 1, To: 4}},
		{input: " 2 : 255 ", want: Ref{Surah: 2, From: 255}},
		{input: "Al-Ikhlȃṣ:1-4", want: Ref{Name: "Al-Ikhlȃṣ", From: 1, To: 4}},
		{input: "Al-Fâtihah", want: Ref{Name: "Al-Fâtihah"}},
		{input: "5:3-1", want: Ref{Surah: 5, From: 3, To: 1}},
		{input: "", wantErr: true},
		{input: "2 255", wantErr: true},
		{input: "112:", wantErr: true},
		{input: "112:1-", wantErr: true},
		{input: "112:0", wantErr: true},
		{input: "112:1-0", wantErr: true},
		{input: ":3", wantErr: true},
		{input: "112.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %+v, want error", tt.input, got)
				}
				if !errors.Is(err, qerrors.ErrInvalidInput) {
					t.Errorf("error %v does not match ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	catalog := surah.Default()

	tests := []struct {
		input   string
		want    Ref
		wantErr error
	}{
		{input: "112", want: Ref{Surah: 112, From: 1, To: 4}},
		{input: "112:3", want: Ref{Surah: 112, From: 3, To: 3}},
		{input: "112:1-4", want: Ref{Surah: 112, From: 1, To: 4}},
		{input: "al-ikhlȃṣ:2", want: Ref{Surah: 112, Name: "al-ikhlȃṣ", From: 2, To: 2}},
		{input: "5:3-1", wantErr: qerrors.ErrInvalidRange},
		{input: "112:5", wantErr: qerrors.ErrVerseNotFound},
		{input: "112:1-9", wantErr: qerrors.ErrVerseNotFound},
		{input: "115", wantErr: qerrors.ErrNotFound},
		{input: "Al-Kitab:1", wantErr: qerrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := MustParse(tt.input).Resolve(catalog)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveDecomposedName(t *testing.T) {
	name := norm.NFD.String("An-Nȃs")
	r, err := MustParse(name + ":1-6").Resolve(surah.Default())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if r.Surah != 114 || r.From != 1 || r.To != 6 {
		t.Errorf("Resolve = %+v", r)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{Surah: 112}, "112"},
		{Ref{Surah: 112, From: 3}, "112:3"},
		{Ref{Surah: 112, From: 3, To: 3}, "112:3"},
		{Ref{Surah: 112, From: 1, To: 4}, "112:1-4"},
		{Ref{Name: "Al-Ikhlȃṣ", From: 1, To: 4}, "Al-Ikhlȃṣ:1-4"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestWhole(t *testing.T) {
	if !MustParse("112").Whole() {
		t.Error("112 should be a whole-surah reference")
	}
	if MustParse("112:1").Whole() {
		t.Error("112:1 is not a whole-surah reference")
	}
}
