package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/basket/go-board/internal/audit"
	"github.com/basket/go-board/internal/board"
	"github.com/basket/go-board/internal/config"
	"github.com/basket/go-board/internal/migrate"
	otelPkg "github.com/basket/go-board/internal/otel"
	"github.com/basket/go-board/internal/persistence"
	"github.com/basket/go-board/internal/telemetry"
)

// startupError carries the reason code reported by fatalStartup.
type startupError struct {
	code   string
	err    error
	logger *slog.Logger
}

func (e *startupError) Error() string { return fmt.Sprintf("%s: %v", e.code, e.err) }
func (e *startupError) Unwrap() error { return e.err }

// app holds everything a command needs once startup succeeded.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
	telemetry *otelPkg.Provider
	store     *persistence.Store

	// failed keeps the logger and audit log open past Close for fatalStartup.
	failed bool
}

type appOptions struct {
	home    string
	verbose bool
}

func loadConfig(home string) (config.Config, error) {
	if home == "" {
		return config.Load()
	}
	return config.LoadFrom(home)
}

// openApp runs the startup sequence: config, audit, logger, telemetry, store.
// On failure the store and telemetry are released; the logger and audit log
// stay open so fatalStartup can still report.
func openApp(ctx context.Context, opts appOptions) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.release(ctx)
			a = nil
		}
	}()

	if a.cfg, err = loadConfig(opts.home); err != nil {
		return a, &startupError{code: "E_CONFIG_LOAD", err: err}
	}
	if err = audit.Init(a.cfg.HomeDir); err != nil {
		return a, &startupError{code: "E_AUDIT_INIT", err: err}
	}
	if a.logger, a.logCloser, err = telemetry.NewLogger(a.cfg.HomeDir, a.cfg.LogLevel, !opts.verbose); err != nil {
		return a, &startupError{code: "E_LOGGER_INIT", err: err}
	}
	a.logger.Info("startup phase", "phase", "config_loaded", "home", a.cfg.HomeDir, "from_file", a.cfg.FromFile)

	if a.telemetry, err = otelPkg.Init(ctx, a.cfg.OTel); err != nil {
		return a, &startupError{code: "E_OTEL_INIT", err: err, logger: a.logger}
	}
	metrics, err := otelPkg.NewMetrics(a.telemetry.Meter)
	if err != nil {
		return a, &startupError{code: "E_OTEL_INIT", err: err, logger: a.logger}
	}

	a.store, err = persistence.Open(ctx, a.cfg.DBPath,
		migrate.New(a.cfg.MigrationsDir, a.logger),
		persistence.WithLogger(a.logger),
		persistence.WithTelemetry(a.telemetry.Tracer, metrics),
	)
	if err != nil {
		code := "E_STORE_OPEN"
		if errors.Is(err, migrate.ErrIO) {
			code = "E_MIGRATIONS_READ"
		}
		return a, &startupError{code: code, err: err, logger: a.logger}
	}
	a.logger.Info("startup phase", "phase", "store_ready", "db", a.cfg.DBPath)
	return a, nil
}

// newBoard loads the board with mutations wired to the audit log.
func (a *app) newBoard(ctx context.Context) (*board.Board, error) {
	b, err := board.New(ctx, a.store, board.WithRecorder(a.recordEvent))
	if err != nil {
		a.failed = true
		return nil, &startupError{code: "E_INITIAL_LOAD", err: err, logger: a.logger}
	}
	return b, nil
}

func (a *app) recordEvent(ev board.Event) {
	audit.RecordEvent(ev)
	var id int64
	if ev.Task.ID != nil {
		id = *ev.Task.ID
	}
	a.logger.Info("task mutation", "kind", string(ev.Kind), "task_id", id, "from", ev.From.String(), "to", ev.To.String())
}

func (a *app) Close(ctx context.Context) {
	a.release(ctx)
	if a.failed {
		return
	}
	a.logger.Info("session closed", "mutations", audit.MutationCount())
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
	_ = audit.Close()
}

func (a *app) release(ctx context.Context) {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("close store", "error", err)
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil && a.logger != nil {
			a.logger.Warn("shutdown telemetry", "error", err)
		}
	}
}
