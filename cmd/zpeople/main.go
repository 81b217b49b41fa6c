package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zpeople/internal/cli"
	"github.com/zarlcorp/zpeople/internal/config"
	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/prefs"
	"github.com/zarlcorp/zpeople/internal/session"
	"github.com/zarlcorp/zpeople/internal/sink"
	"github.com/zarlcorp/zpeople/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

const usage = `usage: zpeople [command]

commands:
  generate [-n N] [-fields a,b] [-format F] [-template T] [-o PATH] [-save] [-copy]
  fields                 list fields and the current selection
  toggle <field>...      toggle fields in the selection
  template [show|set|reset]
  formats                list output formats
  version

with no command zpeople starts the interactive view.
`

func main() {
	app := zapp.New(zapp.WithName("zpeople"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "zpeople: %v\n", err)
		_ = app.Close()
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
		if err := runCLI(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "zpeople: %v\n", err)
			_ = app.Close()
			os.Exit(1)
		}
		_ = app.Close()
		return
	}

	if err := runTUI(cfg); err != nil {
		slog.Error("tui", "err", err)
		_ = app.Close()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		os.Exit(1)
	}
}

func newGenerator(cfg config.Config) *person.Generator {
	return person.New(person.WithSeed(cfg.Seed))
}

func runCLI(ctx context.Context, cfg config.Config, cmd string, args []string) error {
	switch cmd {
	case "version":
		fmt.Printf("zpeople %s\n", version)
		return nil
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}

	var store prefs.Store
	if cfg.Vault {
		s, v, err := cli.PromptVault(cfg.DataDir)
		if err != nil {
			return err
		}
		defer s.Close()
		store = v
	} else {
		fs, err := cli.OpenFileStore(cfg.DataDir, slog.Default())
		if err != nil {
			return err
		}
		store = fs
	}

	log := slog.Default()
	env := cli.Env{
		Prefs:     prefs.New(store, log),
		Session:   session.New(newGenerator(cfg), log),
		Clipboard: sink.SystemClipboard{},
		SaveDir:   cfg.SaveDir,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}

	switch cmd {
	case "generate":
		return cli.CmdGenerate(ctx, env, args)
	case "fields":
		return cli.CmdFields(env)
	case "toggle":
		return cli.CmdToggle(env, args)
	case "template":
		return cli.CmdTemplate(env, args, os.Stdin)
	case "formats":
		return cli.CmdFormats(env)
	}

	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

// openLog sends logs to a file in the data dir while the screen is owned
// by the interactive view.
func openLog(cfg config.Config) (io.Closer, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, "zpeople.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Level()})))
	return f, nil
}

func runTUI(cfg config.Config) error {
	logFile, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	tc := tui.Config{
		Version:   version,
		DataDir:   cfg.DataDir,
		SaveDir:   cfg.SaveDir,
		Generator: newGenerator(cfg),
		Clipboard: sink.SystemClipboard{},
		Logger:    slog.Default(),
		Vault:     cfg.Vault,
		FirstRun:  cli.IsFirstRun(cfg.DataDir),
	}
	if !cfg.Vault {
		store, err := cli.OpenFileStore(cfg.DataDir, slog.Default())
		if err != nil {
			return err
		}
		tc.Prefs = prefs.New(store, slog.Default())
	}

	p := tea.NewProgram(tui.New(tc))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(tui.Model); ok {
		fm.Close()
	}

	return nil
}
