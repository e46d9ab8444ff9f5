package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/smantzavinos/tally/pkg/config"
	"github.com/smantzavinos/tally/pkg/export"
	"github.com/smantzavinos/tally/pkg/model"
	"github.com/smantzavinos/tally/pkg/storage"
	"github.com/smantzavinos/tally/pkg/store"
	"github.com/smantzavinos/tally/pkg/ui"
	"github.com/smantzavinos/tally/pkg/version"
)

type cliOptions struct {
	configPath  string
	backend     string
	path        string
	key         string
	logFile     string
	theme       string
	threshold   int
	randomStyle bool
	set         map[string]bool

	list         bool
	exportMD     string
	exportSVG    string
	exportPNG    string
	exportSQLite string
	showVersion  bool
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("tally", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", config.DefaultPath(), "Path to the yaml config file")
	fs.StringVar(&o.backend, "storage", "", "Storage backend: sqlite, file or memory")
	fs.StringVar(&o.path, "path", "", "Storage location (database or json file)")
	fs.StringVar(&o.key, "key", "", "Storage key the counter list is saved under")
	fs.StringVar(&o.logFile, "log", "", "Write debug logs to this file")
	fs.StringVar(&o.theme, "theme", "", "Colour theme: adaptive, dark or light")
	fs.IntVar(&o.threshold, "threshold", 0, "Swipe threshold in cells")
	fs.BoolVar(&o.randomStyle, "random-style", false, "Give new counters a random style")

	fs.BoolVar(&o.list, "list", false, "Print the counters and exit")
	fs.StringVar(&o.exportMD, "export-md", "", "Export counters to a markdown file")
	fs.StringVar(&o.exportSVG, "export-svg", "", "Export a card sheet to an SVG file")
	fs.StringVar(&o.exportPNG, "export-png", "", "Export a card sheet to a PNG file")
	fs.StringVar(&o.exportSQLite, "export-sqlite", "", "Export a snapshot to a SQLite database")
	fs.BoolVar(&o.showVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply overlays explicitly set flags on cfg.
func (o cliOptions) apply(cfg *config.Config) {
	if o.set["storage"] {
		cfg.Storage.Backend = o.backend
	}
	if o.set["path"] {
		cfg.Storage.Path = o.path
	}
	if o.set["key"] {
		cfg.Storage.Key = o.key
	}
	if o.set["log"] {
		cfg.LogFile = o.logFile
	}
	if o.set["theme"] {
		cfg.Theme = o.theme
	}
	if o.set["threshold"] {
		cfg.Gesture.Threshold = o.threshold
	}
	if o.set["random-style"] {
		cfg.RandomStyle = o.randomStyle
	}
}

func (o cliOptions) exporting() bool {
	return o.exportMD != "" || o.exportSVG != "" || o.exportPNG != "" || o.exportSQLite != ""
}

// loadConfig resolves settings: defaults, yaml file, .env, environment, flags.
func loadConfig(o cliOptions) (config.Config, error) {
	if err := config.LoadDotEnv(".env", filepath.Join(config.Dir(), ".env")); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	o.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging returns a logger writing to path, or a discarding logger when
// path is empty. The terminal belongs to the UI, so logs never go to stderr.
func setupLogging(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(path, "tally")
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "tally %s\n", version.String())
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)
	logger.Info("starting", "version", version.String(), "storage", cfg.Storage.Backend, "path", cfg.Storage.Path)

	kv, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer kv.Close()

	adapter := storage.NewAdapter(kv, cfg.Storage.Key)
	adapter.SetLogger(logger)
	st := store.Open(adapter, store.Options{RandomStyle: cfg.RandomStyle, Logger: logger})

	if opts.exporting() {
		return runExports(opts, cfg.Storage.Path, st.Counters(), stdout)
	}
	if opts.list || !isTerminal(os.Stdout) {
		printList(stdout, st.Counters(), st.Current())
		return nil
	}
	return runTUI(cfg, opts, st, logger)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runExports writes each requested export. Exports replace their target, so
// a target that is the live store is refused before anything is written.
func runExports(o cliOptions, storePath string, counters []model.Counter, stdout io.Writer) error {
	exports := []struct {
		path  string
		label string
		write func([]model.Counter, string) error
	}{
		{o.exportMD, "markdown", export.SaveMarkdownToFile},
		{o.exportSVG, "SVG", export.SaveSVGToFile},
		{o.exportPNG, "PNG", export.SavePNGToFile},
		{o.exportSQLite, "SQLite", export.WriteSQLite},
	}
	for _, e := range exports {
		if e.path != "" && samePath(e.path, storePath) {
			return fmt.Errorf("refusing %s export to %s: it is the storage file", e.label, e.path)
		}
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(counters, e.path); err != nil {
			return fmt.Errorf("exporting %s: %w", e.label, err)
		}
		fmt.Fprintf(stdout, "Exported %d counters to %s\n", len(counters), e.path)
	}
	return nil
}

// samePath reports whether a and b name the same file.
func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if fa, err := os.Stat(a); err == nil {
		if fb, err := os.Stat(b); err == nil {
			return os.SameFile(fa, fb)
		}
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// printList writes one aligned line per counter, marking the current one.
func printList(w io.Writer, counters []model.Counter, current int) {
	titleWidth := 0
	for _, c := range counters {
		titleWidth = max(titleWidth, runewidth.StringWidth(c.Title))
	}
	titleWidth = min(titleWidth, 40)

	for i, c := range counters {
		marker := " "
		if i == current {
			marker = "›"
		}
		title := runewidth.FillRight(runewidth.Truncate(c.Title, titleWidth, "…"), titleWidth)
		fmt.Fprintf(w, "%s %2d. %s  %8s  %s\n", marker, i+1, title, humanize.Comma(int64(c.Value)), c.Style.Name())
	}
	sum := model.Summarize(counters)
	fmt.Fprintf(w, "\n%d counters, total %s\n", sum.Count, humanize.Comma(int64(sum.Total)))
}

func runTUI(cfg config.Config, o cliOptions, st *store.Store, logger *slog.Logger) error {
	renderer := lipgloss.DefaultRenderer()
	ui.ApplyThemeMode(renderer, cfg.Theme)

	m := ui.NewModel(st, ui.Options{
		Theme:            ui.DefaultTheme(renderer),
		ThemeMode:        cfg.Theme,
		GestureThreshold: cfg.Gesture.Threshold,
		Logger:           logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running program: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := config.Watch(ctx, o.configPath, logger, func(c config.Config) {
			// Keep environment and flag overrides on top of the edited file.
			if err := c.ApplyEnv(os.LookupEnv); err != nil {
				logger.Warn("ignoring config change", "error", err)
				return
			}
			o.apply(&c)
			if err := c.Validate(); err != nil {
				logger.Warn("ignoring config change", "error", err)
				return
			}
			p.Send(ui.SettingsMsg{GestureThreshold: c.Gesture.Threshold, ThemeMode: c.Theme})
		})
		if err != nil {
			// Live reload is optional; the program keeps running without it.
			logger.Warn("config watch disabled", "error", err)
		}
		return nil
	})

	return g.Wait()
}
