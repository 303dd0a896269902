package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/apps/portal/tui"
	"github.com/trezcool/nacos/client/gateway"
	"github.com/trezcool/nacos/client/navigation"
	"github.com/trezcool/nacos/client/notify"
	"github.com/trezcool/nacos/client/session"
	"github.com/trezcool/nacos/core"
	logsvc "github.com/trezcool/nacos/services/logger"
)

// CLI holds the portal's flags. Unset flags fall back to the PORTAL_* settings.
type CLI struct {
	Section string `help:"Section to open first." placeholder:"NAME"`
	BaseURL string `help:"Backend base URL." name:"base-url" placeholder:"URL"`
	Session string `help:"Session file." type:"path" placeholder:"FILE"`
	Logout  bool   `help:"Forget the saved session and exit."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("nacos-portal"),
		kong.Description("Terminal portal of the NACOS Complaint System."),
		kong.UsageOnError(),
	)
	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, "nacos-portal:", err)
		os.Exit(1)
	}
}

func run(cli CLI) error {
	conf := core.NewConfig()
	if cli.BaseURL != "" {
		conf.Portal.BaseURL = cli.BaseURL
	}
	if cli.Session != "" {
		conf.Portal.SessionFile = cli.Session
	}
	store := session.NewFileStore(conf.Portal.SessionFile)

	if cli.Logout {
		return store.Clear()
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("the portal needs an interactive terminal")
	}

	// the terminal belongs to the UI: log to a file next to the session
	logPath := filepath.Join(filepath.Dir(conf.Portal.SessionFile), "portal.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return errors.Wrap(err, "creating log dir")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return errors.Wrap(err, "opening log file")
	}
	defer logFile.Close()

	logger := logsvc.NewRollbarLogger(
		log.New(logFile, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// =========================================================================
	// Navigation core

	clock := navigation.RealClock()
	client := gateway.New(conf.Portal.BaseURL, store)
	surface := notify.New(logger, conf.Portal.ToastDuration, clock.Now)
	screen := tui.NewScreen()
	registry := navigation.NewRegistry(surface, logger)
	ctrl := navigation.New(
		navigation.Deps{
			Fetcher:    client,
			Cache:      navigation.NewCache(clock, conf.Portal.DefaultTTL, conf.Portal.VolatileTTL),
			Registry:   registry,
			Notifier:   surface,
			View:       screen,
			History:    screen,
			Session:    store,
			Redirector: screen,
			Clock:      clock,
			Logger:     logger,
		},
		navigation.Options{
			LoadingTimeout:   conf.Portal.LoadingTimeout,
			NarrowBreakpoint: conf.Portal.NarrowBreakpoint,
		},
	)
	tui.RegisterSections(registry, client, screen, ctrl.ExpireSession)

	// =========================================================================
	// Start UI

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info(fmt.Sprintf("Portal starting : version %q, backend %s", conf.Build, conf.Portal.BaseURL))
	defer logger.Info("Portal stopped")

	m := tui.NewModel(ctx, tui.Deps{
		Controller: ctrl,
		Screen:     screen,
		Notifier:   surface,
		Session:    store,
		Auth:       client,
		Initial:    strings.ToLower(strings.TrimSpace(cli.Section)),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// panics outside the program loop, e.g. while it starts
	defer surface.Recover("running the portal")
	return runUI(p, surface)
}

// runUI runs the program until it quits. Bubble Tea recovers panics raised by the
// model and its commands and restores the terminal; those are reported to `reporter`.
// A kill through context cancellation is a clean exit.
func runUI(p interface{ Run() (tea.Model, error) }, reporter navigation.ErrorReporter) error {
	_, err := p.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrProgramPanic):
		reporter.ReportError("running the portal", err)
		return errors.Wrap(err, "running portal")
	case errors.Is(err, tea.ErrProgramKilled):
		return nil
	default:
		return errors.Wrap(err, "running portal")
	}
}
