// Package traitor parses traitor runtime flags and launches a session.
package traitor

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/traitorops/internal/platform/cmd"
	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
	errori18n "github.com/louisbranch/traitorops/internal/platform/errors/i18n"
	"github.com/louisbranch/traitorops/internal/platform/id"
	"github.com/louisbranch/traitorops/internal/platform/timeouts"
	"github.com/louisbranch/traitorops/internal/services/traitor/app"
	"github.com/louisbranch/traitorops/internal/services/traitor/render"
	"github.com/louisbranch/traitorops/internal/services/traitor/scenario"
	"github.com/louisbranch/traitorops/internal/services/traitor/storage"
	"github.com/louisbranch/traitorops/internal/services/traitor/storage/sqlite"
)

// Config holds traitor command configuration.
type Config struct {
	Addr     string        `env:"ADDR"`
	DBPath   string        `env:"DB_PATH" envDefault:"data/traitor.db"`
	Scenario string        `env:"SCENARIO" envDefault:"scenarios/reactor.yaml"`
	Tick     time.Duration `env:"TICK" envDefault:"100ms"`
	Locale   string        `env:"LOCALE" envDefault:"en-US"`
	MaxTicks int           `env:"MAX_TICKS" envDefault:"6000"`
	// Probe checks the health of a running instance at Addr and exits.
	Probe bool
	// Wait lets Probe poll until the instance is serving.
	Wait time.Duration
	// Traitor makes Probe also print that traitor's assignment.
	Traitor string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Objective journal SQLite path")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "Scenario YAML file")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Simulation tick interval")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Message locale")
	fs.IntVar(&cfg.MaxTicks, "max-ticks", cfg.MaxTicks, "Tick cap for the session (0 disables)")
	fs.BoolVar(&cfg.Probe, "probe", false, "Check health of a running instance at -addr and exit")
	fs.DurationVar(&cfg.Wait, "wait", 0, "With -probe, wait up to this long for SERVING")
	fs.StringVar(&cfg.Traitor, "traitor", "", "With -probe, print this traitor's assignment")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Tick <= 0 {
		cfg.Tick = timeouts.Tick
	}
	if cfg.Probe && strings.TrimSpace(cfg.Addr) == "" {
		return Config{}, errors.New("-probe requires -addr")
	}
	return cfg, nil
}

// Run plays the configured scenario, or probes a running instance.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		if err := probe(ctx, cfg.Addr, cfg.Wait, os.Stdout); err != nil {
			return err
		}
		return printAssignment(ctx, cfg.Addr, cfg.Traitor, os.Stdout)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTraitor, func(ctx context.Context) error {
		return runSession(ctx, cfg, os.Stdout)
	})
}

func probe(ctx context.Context, addr string, wait time.Duration, out io.Writer) error {
	if wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		if err := app.WaitForServing(waitCtx, addr, log.Printf); err != nil {
			fmt.Fprintf(out, "%s NOT_SERVING\n", addr)
			return err
		}
		fmt.Fprintf(out, "%s SERVING\n", addr)
		return nil
	}
	serving, err := app.CheckHealth(ctx, addr)
	if err != nil {
		return err
	}
	if !serving {
		fmt.Fprintf(out, "%s NOT_SERVING\n", addr)
		return fmt.Errorf("traitor runtime at %s is not serving", addr)
	}
	fmt.Fprintf(out, "%s SERVING\n", addr)
	return nil
}

func printAssignment(ctx context.Context, addr, traitorID string, out io.Writer) error {
	if traitorID == "" {
		return nil
	}
	status, err := app.FetchAssignment(ctx, addr, traitorID)
	if err != nil {
		return err
	}
	writeStatus(out, status)
	return nil
}

func runSession(ctx context.Context, cfg Config, out io.Writer) error {
	doc, err := scenario.LoadFile(cfg.Scenario)
	if err != nil {
		return localize(err, cfg.Locale)
	}
	renderer := render.New(cfg.Locale)
	session, err := scenario.Build(doc, scenario.Options{Renderer: renderer, Logger: log.Default()})
	if err != nil {
		return localize(err, cfg.Locale)
	}

	store, err := openJournal(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close journal store: %v", err)
		}
	}()

	sessionID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	log.Printf("session %s: scenario %q, locale %s", sessionID, session.Name, renderer.Locale())

	rt := app.NewRuntime(session, app.RuntimeConfig{SessionID: sessionID, Journal: store})
	if err := app.Run(ctx, rt, app.RunOptions{
		Addr:     cfg.Addr,
		Interval: cfg.Tick,
		MaxTicks: cfg.MaxTicks,
		Locale:   renderer.Locale().String(),
	}); err != nil {
		return err
	}

	// The run context may be canceled by now; the summary still reads the journal.
	entries, err := store.ListEntries(context.WithoutCancel(ctx), sessionID)
	if err != nil {
		return err
	}
	WriteSummary(out, sessionID, rt.Status(), entries)
	return nil
}

func openJournal(ctx context.Context, path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open journal sqlite store: %w", err)
	}
	return store, nil
}

// localize prefixes domain errors with their catalog message for locale.
func localize(err error, locale string) error {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return err
	}
	msg := errori18n.GetCatalog(locale).Format(string(code), apperrors.GetMetadata(err))
	return fmt.Errorf("%s: %w", msg, err)
}

// WriteSummary prints the per-traitor outcome followed by the journal.
func WriteSummary(w io.Writer, sessionID string, statuses []app.AssignmentStatus, entries []storage.JournalEntry) {
	fmt.Fprintf(w, "session %s\n", sessionID)
	for _, s := range statuses {
		writeStatus(w, s)
	}
	fmt.Fprintf(w, "journal (%d entries)\n", len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("  %s %s %s", e.TraitorID, e.ObjectiveID, e.Kind)
		if e.GoalIndex != storage.NoGoal {
			line += fmt.Sprintf(" goal=%d", e.GoalIndex)
		}
		if e.Outcome != "" {
			line += " outcome=" + e.Outcome
		}
		fmt.Fprintln(w, line)
	}
}

func writeStatus(w io.Writer, s app.AssignmentStatus) {
	objectiveID := s.ObjectiveID
	if objectiveID == "" {
		objectiveID = "-"
	}
	outcome := s.Outcome
	if outcome == "" {
		outcome = "in_progress"
	}
	fmt.Fprintf(w, "  %s %s %s (%d/%d goals)\n", s.TraitorID, objectiveID, outcome, s.CompletedGoals, s.TotalGoals)
}
