package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/basket/go-board/internal/migrate"
	otelPkg "github.com/basket/go-board/internal/otel"
)

const (
	// DirName is the hidden data directory created in the working directory.
	DirName = ".goboard"
	// FileName is the database file inside DirName.
	FileName = "board.db"
)

var (
	// ErrStore wraps connection and query failures.
	ErrStore = errors.New("task store")
	// ErrDecode marks a persisted row that cannot be turned into a task.
	ErrDecode = errors.New("decode task")
)

type Store struct {
	db      *sqlx.DB
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *otelPkg.Metrics
	now     func() time.Time
}

type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTelemetry wraps every store call in a span and records metrics.
func WithTelemetry(tracer trace.Tracer, metrics *otelPkg.Metrics) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
		s.metrics = metrics
	}
}

// WithClock overrides the source of "now" for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func DefaultDBPath() string {
	return filepath.Join(DirName, FileName)
}

// Open creates the data directory if needed, opens the sqlite database and
// runs the migrator before any other access.
func Open(ctx context.Context, path string, m *migrate.Migrator, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultDBPath()
	}
	if m == nil {
		return nil, fmt.Errorf("open store: migrator is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite3: %w", ErrStore, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{
		db:     db,
		logger: slog.Default(),
		tracer: otelPkg.Disabled().Tracer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.configurePragmas(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := m.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	store.logger.Debug("task store ready", "path", path, "migrations", m.Dir())
	return store, nil
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStore, err)
	}
	return nil
}

func (s *Store) configurePragmas(ctx context.Context) error {
	pragma := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
	}
	for _, q := range pragma {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%w: set pragma %q: %w", ErrStore, q, err)
		}
	}
	return nil
}

// Backup creates an online-consistent copy of the database with VACUUM INTO.
func (s *Store) Backup(ctx context.Context, destPath string) error {
	if destPath == "" {
		return fmt.Errorf("backup destination path required")
	}
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("backup destination already exists: %s", destPath)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?;`, destPath); err != nil {
		return fmt.Errorf("%w: backup (VACUUM INTO): %w", ErrStore, err)
	}
	return nil
}

// observe starts a span for op and returns the function that closes it.
func (s *Store) observe(ctx context.Context, op string, mutation bool, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs, otelPkg.AttrStoreOp.String(op))
	ctx, span := otelPkg.StartSpan(ctx, s.tracer, "store."+op, attrs...)
	start := time.Now()
	return ctx, func(err error) {
		s.metrics.RecordStoreOp(ctx, op, time.Since(start), mutation, err)
		otelPkg.EndSpan(span, err)
		if err != nil {
			s.logger.Error("task store operation failed", "op", op, "error", err)
		}
	}
}
