// Command quranlo looks up and formats Qur'an verses from the bundled data
// files, and serves the same operations over HTTP.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/source"
	"github.com/FocuswithJustin/QuranLO/core/surah"
	"github.com/FocuswithJustin/QuranLO/internal/cache"
	"github.com/FocuswithJustin/QuranLO/internal/config"
)

const version = "0.4.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"Settings file (YAML)" type:"existingfile"`
	DataDir   string `name:"data-dir" short:"d" help:"Directory holding data/quran/*.xml (overrides data_dir)" type:"path"`
	IndexDir  string `name:"index-dir" help:"Cache SQLite indexes of data files here (overrides index_dir)" type:"path"`
	LogLevel  string `name:"log-level" help:"debug, info, warn or error (overrides log.level)"`
	LogFormat string `name:"log-format" help:"text or json (overrides log.format)"`

	out io.Writer `kong:"-"`
}

// CLI defines the command-line interface for quranlo.
type CLI struct {
	Globals

	Surahs  SurahsCmd  `cmd:"" help:"List the surahs"`
	Sources SourcesCmd `cmd:"" help:"List the available sources"`
	Verse   VerseCmd   `cmd:"" help:"Print verses of one source"`
	Compose ComposeCmd `cmd:"" help:"Compose formatted verses from several sources"`
	Check   CheckCmd   `cmd:"" help:"Fingerprint a data file and count its verses"`
	Index   IndexGroup `cmd:"" help:"SQLite index operations"`
	Fonts   FontsGroup `cmd:"" help:"Glyph policy and font inspection"`
	Serve   ServeCmd   `cmd:"" help:"Start the REST/WebSocket API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// IndexGroup contains index operations.
type IndexGroup struct {
	Build IndexBuildCmd `cmd:"" help:"Build a SQLite index of a data file"`
}

// FontsGroup contains font operations.
type FontsGroup struct {
	List  FontsListCmd  `cmd:"" help:"List fonts with a glyph record"`
	Probe FontsProbeCmd `cmd:"" help:"Derive a glyph record from a font file"`
}

// env is everything a command needs after settings are loaded.
type env struct {
	cfg     *config.Config
	surahs  *surah.Catalog
	sources *source.Catalog
	glyphs  *glyph.Policy
	stores  *cache.Stores
}

func (e *env) Close() error {
	return e.stores.Close()
}

// settings loads the settings file and applies flag overrides.
func (g *Globals) settings() (*config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		loaded, err := config.Load(g.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if g.DataDir != "" {
		cfg.DataDir = g.DataDir
	}
	if g.IndexDir != "" {
		cfg.IndexDir = g.IndexDir
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.InitLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env loads settings and builds the catalogs and store cache.
func (g *Globals) env() (*env, error) {
	cfg, err := g.settings()
	if err != nil {
		return nil, err
	}
	glyphs, err := cfg.Glyphs()
	if err != nil {
		return nil, err
	}
	surahs := surah.Default()
	return &env{
		cfg:     cfg,
		surahs:  surahs,
		sources: source.Default(),
		glyphs:  glyphs,
		stores:  cache.NewStores(cache.DefaultConfig(), dataOpener(cfg.IndexDir, surahs)),
	}, nil
}

// run parses args and runs the selected command, writing results to out.
func run(args []string, out, errOut io.Writer, exit func(int)) error {
	var cli CLI
	cli.out = out

	parser, err := kong.New(&cli,
		kong.Name("quranlo"),
		kong.Description("QuranLO - Qur'an verse lookup and formatting"),
		kong.UsageOnError(),
		kong.Writers(out, errOut),
		kong.Exit(exit),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "quranlo: error: %v\n", err)
		os.Exit(1)
	}
}
