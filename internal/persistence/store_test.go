package persistence_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/basket/go-board/internal/migrate"
	otelPkg "github.com/basket/go-board/internal/otel"
	"github.com/basket/go-board/internal/persistence"
	"github.com/basket/go-board/internal/task"
)

func testMigrator() *migrate.Migrator {
	return migrate.New(filepath.Join("..", "..", migrate.DirName), nil)
}

func openTestStore(t *testing.T, opts ...persistence.Option) (*persistence.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), ".goboard", "board.db")
	store, err := persistence.Open(context.Background(), dbPath, testMigrator(), opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, dbPath
}

func queryOneString(t *testing.T, db *sql.DB, q string) string {
	t.Helper()
	var out string
	if err := db.QueryRow(q).Scan(&out); err != nil {
		t.Fatalf("query %q: %v", q, err)
	}
	return out
}

func TestStore_OpenCreatesDirAndConfiguresWAL(t *testing.T) {
	store, dbPath := openTestStore(t)
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected data directory to exist: %v", err)
	}

	db := store.DB().DB
	if journal := queryOneString(t, db, "PRAGMA journal_mode;"); journal != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journal)
	}
	var synchronous int
	if err := db.QueryRow("PRAGMA synchronous;").Scan(&synchronous); err != nil {
		t.Fatalf("pragma synchronous: %v", err)
	}
	// SQLite FULL == 2.
	if synchronous != 2 {
		t.Fatalf("expected synchronous FULL(2), got %d", synchronous)
	}
	if got := queryOneString(t, db, "SELECT name FROM sqlite_master WHERE type='table' AND name='tasks'"); got != "tasks" {
		t.Fatalf("expected tasks table, got %q", got)
	}
}

func TestStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "board.db")
	ctx := context.Background()

	s1, err := persistence.Open(ctx, dbPath, testMigrator())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	tk := task.New("survives reopen")
	if err := s1.Insert(ctx, &tk); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = s1.Close()

	s2, err := persistence.Open(ctx, dbPath, testMigrator())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
	tasks, err := s2.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "survives reopen" {
		t.Fatalf("expected persisted task after reopen, got %+v", tasks)
	}
}

func TestStore_OpenFailsWithoutMigrations(t *testing.T) {
	m := migrate.New(filepath.Join(t.TempDir(), "missing"), nil)
	_, err := persistence.Open(context.Background(), filepath.Join(t.TempDir(), "board.db"), m)
	if !errors.Is(err, migrate.ErrIO) {
		t.Fatalf("expected migrate.ErrIO, got %v", err)
	}
}

func TestStore_OpenFailsOnBadMigration(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0001_bad.sql"), []byte("CREATE TABLE ((;"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	_, err := persistence.Open(context.Background(), filepath.Join(t.TempDir(), "board.db"), migrate.New(dir, nil))
	if err == nil {
		t.Fatal("expected engine to reject malformed migration")
	}
}

func TestStore_Backup(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	tk := task.New("back me up")
	if err := store.Insert(ctx, &tk); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "backup.db")
	if err := store.Backup(ctx, dest); err != nil {
		t.Fatalf("backup: %v", err)
	}
	if err := store.Backup(ctx, dest); err == nil {
		t.Fatal("expected error when backup destination exists")
	}

	copyStore, err := persistence.Open(ctx, dest, testMigrator())
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer copyStore.Close()
	tasks, err := copyStore.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load backup: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task in backup, got %d", len(tasks))
	}
}

func TestStore_WithTelemetry(t *testing.T) {
	p, err := otelPkg.Init(context.Background(), otelPkg.Config{Enabled: true, Exporter: "none"})
	if err != nil {
		t.Fatalf("otel init: %v", err)
	}
	defer p.Shutdown(context.Background())
	metrics, err := otelPkg.NewMetrics(p.Meter)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	store, _ := openTestStore(t, persistence.WithTelemetry(p.Tracer, metrics))
	ctx := context.Background()
	tk := task.New("traced")
	if err := store.Insert(ctx, &tk); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.LoadAll(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestStore_PingAfterClose(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = store.Close()
	if err := store.Ping(context.Background()); !errors.Is(err, persistence.ErrStore) {
		t.Fatalf("expected ErrStore after close, got %v", err)
	}
}
