package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/FocuswithJustin/QuranLO/core/cas"
	"github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/format"
	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/index"
	"github.com/FocuswithJustin/QuranLO/core/ref"
	"github.com/FocuswithJustin/QuranLO/core/source"
	"github.com/FocuswithJustin/QuranLO/core/sqlite"
	"github.com/FocuswithJustin/QuranLO/internal/api"
)

func (g *Globals) printJSON(v interface{}) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// SurahsCmd lists the surah catalog.
type SurahsCmd struct {
	JSON bool `help:"Output as JSON"`
}

func (c *SurahsCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	if c.JSON {
		return g.printJSON(e.surahs.All())
	}
	for _, s := range e.surahs.All() {
		fmt.Fprintf(g.out, "%s (%d)\n", s.DisplayName(), s.Verses)
	}
	return nil
}

// SourcesCmd lists catalog sources.
type SourcesCmd struct {
	Type string `help:"Only list sources of this type (Original, Transliteration, Translation)"`
}

func (c *SourcesCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	types := source.Types
	if c.Type != "" {
		t, err := source.ParseType(c.Type)
		if err != nil {
			return errors.NewValidation("type", fmt.Sprintf("unknown source type %q", c.Type))
		}
		types = []source.Type{t}
	}

	fmt.Fprintf(g.out, "%-16s %-11s %-30s %s\n", "TYPE", "LANGUAGE", "VERSION", "STATUS")
	for _, t := range types {
		for _, s := range e.sources.SourcesOfType(t) {
			status := "missing"
			if path, err := source.Resolve(e.cfg.DataDir, s); err == nil {
				if _, err := os.Stat(path); err == nil {
					status = "ok"
				}
			}
			fmt.Fprintf(g.out, "%-16s %-11s %-30s %s\n", t, s.Language, s.Version, status)
		}
	}
	return nil
}

// VerseCmd prints verses of one source.
type VerseCmd struct {
	Ref      string `arg:"" help:"Reference: 112, 112:3, 112:1-4 or Al-Ikhlȃṣ:1-4"`
	Type     string `help:"Source type" default:"Original"`
	Language string `help:"Source language; defaults to the first of the type"`
	Version  string `help:"Source version; defaults to the first of the language"`
}

// pick finds the first source matching type, language and version, any of
// which may be empty.
func pick(sources *source.Catalog, typ, lang, version string) (source.Source, error) {
	t, err := source.ParseType(typ)
	if err != nil {
		return source.Source{}, errors.NewValidation("type", fmt.Sprintf("unknown source type %q", typ))
	}
	var want *source.Language
	if lang != "" {
		l, err := source.ParseLanguage(lang)
		if err != nil {
			return source.Source{}, errors.NewValidation("language", fmt.Sprintf("unknown language %q", lang))
		}
		want = &l
	}
	for _, s := range sources.SourcesOfType(t) {
		if want != nil && s.Language.ID != want.ID {
			continue
		}
		if version != "" && !strings.EqualFold(s.Version, version) {
			continue
		}
		return s, nil
	}
	return source.Source{}, errors.NewNotFound("source", strings.TrimSpace(fmt.Sprintf("%s %s %s", typ, lang, version)))
}

func (c *VerseCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := resolveRef(c.Ref, e)
	if err != nil {
		return err
	}
	src, err := pick(e.sources, c.Type, c.Language, c.Version)
	if err != nil {
		return err
	}
	path, err := source.Resolve(e.cfg.DataDir, src)
	if err != nil {
		return err
	}
	store, err := e.stores.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	texts, err := store.VerseRange(r.Surah, r.From, r.To)
	if err != nil {
		return err
	}
	for i, t := range texts {
		fmt.Fprintf(g.out, "%d:%d\t%s\n", r.Surah, r.From+i, t)
	}
	return nil
}

func resolveRef(s string, e *env) (ref.Ref, error) {
	r, err := ref.Parse(s)
	if err != nil {
		return ref.Ref{}, err
	}
	return r.Resolve(e.surahs)
}

// ComposeCmd composes formatted output.
type ComposeCmd struct {
	Ref         string   `arg:"" help:"Reference: 112, 112:3, 112:1-4 or Al-Ikhlȃṣ:1-4"`
	Source      []string `short:"s" help:"Source as Type:Language:Version; repeatable. Defaults to the sources enabled in settings"`
	Lines       bool     `help:"One paragraph per verse (overrides ayat_per_line)"`
	NoBismillah bool     `name:"no-bismillah" help:"Omit the bismillah line"`
	NoFooter    bool     `name:"no-footer" help:"Omit the reference footer"`
	ArabicFont  string   `help:"Font for Arabic-script sources (overrides arabic_font)"`
	LatinFont   string   `help:"Font for Latin-script sources (overrides latin_font)"`
	JSON        bool     `help:"Output fragments as JSON"`
}

func (c *ComposeCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := resolveRef(c.Ref, e)
	if err != nil {
		return err
	}

	req := format.Request{
		Surah:      r.Surah,
		From:       r.From,
		To:         r.To,
		Mode:       e.cfg.Mode(),
		ArabicFont: e.cfg.ArabicFont,
		LatinFont:  e.cfg.LatinFont,
		Bismillah:  e.cfg.Bismillah && !c.NoBismillah,
		Footer:     e.cfg.Footer && !c.NoFooter,
	}
	if c.Lines {
		req.Mode = format.ModeLines
	}
	if c.ArabicFont != "" {
		req.ArabicFont = c.ArabicFont
	}
	if c.LatinFont != "" {
		req.LatinFont = c.LatinFont
	}

	if len(c.Source) == 0 {
		if req.Sources, err = e.cfg.Selected(e.sources); err != nil {
			return err
		}
	}
	for _, spec := range c.Source {
		parts := strings.SplitN(spec, ":", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		src, err := pick(e.sources, parts[0], parts[1], parts[2])
		if err != nil {
			return err
		}
		req.Sources = append(req.Sources, src)
	}

	composer := format.NewComposer(e.surahs, e.glyphs, api.StoreOpener(e.cfg.DataDir, e.stores))
	frags, err := composer.Compose(context.Background(), req)
	if err != nil {
		return err
	}
	if c.JSON {
		return g.printJSON(frags)
	}
	_, err = fmt.Fprintln(g.out, format.Join(frags, "\n"))
	return err
}

// CheckCmd reports a data file's fingerprint and verse counts.
type CheckCmd struct {
	Path string `arg:"" help:"Data file (.xml, .xml.xz or .sqlite index)" type:"existingfile"`
	JSON bool   `help:"Output as JSON"`
}

// CheckReport is the output of the check command.
type CheckReport struct {
	Path        string          `json:"path"`
	Format      string          `json:"format"`
	Fingerprint cas.Fingerprint `json:"fingerprint"`
	Surahs      int             `json:"surahs"`
	Verses      int             `json:"verses"`
}

func (c *CheckCmd) Run(g *Globals) error {
	if _, err := g.settings(); err != nil {
		return err
	}

	kind, err := sniff(c.Path)
	if err != nil {
		return err
	}
	fp, err := cas.FingerprintFile(c.Path)
	if err != nil {
		return err
	}
	store, err := openData(c.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	report := CheckReport{Path: c.Path, Format: string(kind), Fingerprint: fp}
	if report.Surahs, err = store.TotalSurahCount(); err != nil {
		return err
	}
	if report.Verses, err = store.TotalVerseCount(); err != nil {
		return err
	}

	if c.JSON {
		return g.printJSON(report)
	}
	fmt.Fprintf(g.out, "File: %s\n", report.Path)
	fmt.Fprintf(g.out, "  Format: %s\n", report.Format)
	fmt.Fprintf(g.out, "  Size: %d bytes\n", fp.Size)
	fmt.Fprintf(g.out, "  SHA-256: %s\n", fp.SHA256)
	fmt.Fprintf(g.out, "  BLAKE3: %s\n", fp.BLAKE3)
	fmt.Fprintf(g.out, "  Surahs: %d\n", report.Surahs)
	fmt.Fprintf(g.out, "  Verses: %d\n", report.Verses)
	return nil
}

// IndexBuildCmd builds an index of a data file.
type IndexBuildCmd struct {
	Path string `arg:"" help:"Data file (.xml or .xml.xz)" type:"existingfile"`
	Out  string `help:"Output index path; defaults to the index directory" type:"path"`
}

func (c *IndexBuildCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Out != "" {
		fp, err := index.BuildFile(ctx, c.Path, c.Out, e.surahs)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.out, "Indexed: %s\n  Output: %s\n  BLAKE3: %s\n  Driver: %s\n", c.Path, c.Out, fp.BLAKE3, sqlite.DriverName())
		return nil
	}

	if e.cfg.IndexDir == "" {
		return errors.NewValidation("out", "--out or an index directory is required")
	}
	artifacts, err := cas.NewStore(e.cfg.IndexDir)
	if err != nil {
		return errors.NewDataAccess("open", e.cfg.IndexDir, err)
	}
	path, err := index.BuildInto(ctx, artifacts, c.Path, e.surahs)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Indexed: %s\n  Output: %s\n  Driver: %s\n", c.Path, path, sqlite.DriverName())
	return nil
}

// FontsListCmd prints the glyph records in effect.
type FontsListCmd struct{}

func (c *FontsListCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Fprintf(g.out, "%-30s %-12s %s\n", "FONT", "DIGITS", "BRACKETS")
	for _, name := range e.glyphs.Fonts() {
		a := e.glyphs.AttributesFor(name)
		fmt.Fprintf(g.out, "%-30s %-12s %s %s\n", name, glyph.RenderNumber(1234567890, a), a.LeftBracketString(), a.RightBracketString())
	}
	return nil
}

// FontsProbeCmd derives a glyph record from a font file.
type FontsProbeCmd struct {
	Path string `arg:"" help:"TrueType or OpenType font file" type:"existingfile"`
	Name string `help:"Record name; defaults to the font family"`
}

func (c *FontsProbeCmd) Run(g *Globals) error {
	info, err := glyph.ProbeFontFile(c.Path)
	if err != nil {
		return err
	}
	if c.Name != "" {
		info.Name = c.Name
	}
	if info.Name == "" {
		info.Name = strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))
	}
	return g.printJSON(info)
}

// ServeCmd starts the API server.
type ServeCmd struct {
	Port           int      `help:"HTTP server port (overrides api.port)"`
	AllowedOrigins []string `name:"allowed-origins" help:"Allowed CORS/WebSocket origins (overrides api.allowed_origins)"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute per client; 0 disables"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := api.Config{
		Port:           e.cfg.API.Port,
		AllowedOrigins: e.cfg.API.AllowedOrigins,
		Version:        version,
		RateLimit:      api.RateLimiterConfig{RequestsPerMinute: c.RateLimit},
		ArabicFont:     e.cfg.ArabicFont,
		LatinFont:      e.cfg.LatinFont,
		Bismillah:      e.cfg.Bismillah,
		Footer:         e.cfg.Footer,
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if len(c.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = c.AllowedOrigins
	}

	srv := api.New(cfg, api.Deps{
		Surahs:  e.surahs,
		Sources: e.sources,
		Glyphs:  e.glyphs,
		Open:    api.StoreOpener(e.cfg.DataDir, e.stores),
		Stores:  e.stores,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out, "quranlo version %s (sqlite: %s)\n", version, sqlite.DriverType())
	return nil
}
