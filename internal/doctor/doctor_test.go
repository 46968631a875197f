package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/basket/go-board/internal/config"
	"github.com/basket/go-board/internal/migrate"
	"github.com/basket/go-board/internal/persistence"
	"github.com/basket/go-board/internal/task"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	home := filepath.Join(t.TempDir(), ".goboard")
	return &config.Config{
		HomeDir:       home,
		DBPath:        filepath.Join(home, "board.db"),
		MigrationsDir: filepath.Join("..", "..", migrate.DirName),
		LogLevel:      "info",
	}
}

func find(t *testing.T, d Diagnosis, name string) CheckResult {
	t.Helper()
	for _, r := range d.Results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no %q check in %+v", name, d.Results)
	return CheckResult{}
}

func TestRun_NilConfig(t *testing.T) {
	d := Run(context.Background(), nil, "test")
	if d.Healthy() {
		t.Fatal("expected unhealthy diagnosis without config")
	}
	if got := find(t, d, "Config").Status; got != StatusFail {
		t.Fatalf("expected FAIL, got %s", got)
	}
	for _, name := range []string{"Data Directory", "Migrations", "Database", "Telemetry"} {
		if got := find(t, d, name).Status; got != StatusSkip {
			t.Fatalf("%s: expected SKIP, got %s", name, got)
		}
	}
	if d.System.Version != "test" {
		t.Fatalf("expected version test, got %q", d.System.Version)
	}
}

func TestRun_FreshInstall(t *testing.T) {
	cfg := testConfig(t)
	d := Run(context.Background(), cfg, "test")

	if !d.Healthy() {
		t.Fatalf("expected healthy fresh install, got %+v", d.Results)
	}
	if got := find(t, d, "Data Directory").Status; got != StatusWarn {
		t.Fatalf("expected WARN for missing data dir, got %s", got)
	}
	if got := find(t, d, "Database").Status; got != StatusSkip {
		t.Fatalf("expected SKIP before first run, got %s", got)
	}
	mig := find(t, d, "Migrations")
	if mig.Status != StatusPass || mig.Detail == "" {
		t.Fatalf("expected migrations listed, got %+v", mig)
	}
	if _, err := os.Stat(cfg.DBPath); !os.IsNotExist(err) {
		t.Fatal("doctor must not create the database")
	}
}

func TestRun_ExistingDatabase(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	store, err := persistence.Open(ctx, cfg.DBPath, migrate.New(cfg.MigrationsDir, nil))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	tk := task.New("check me", task.WithStatus(task.Done))
	if err := store.Insert(ctx, &tk); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = store.Close()

	d := Run(ctx, cfg, "test")
	db := find(t, d, "Database")
	if db.Status != StatusPass {
		t.Fatalf("expected PASS, got %+v", db)
	}
	if db.Message != "1 tasks decoded" {
		t.Fatalf("unexpected message %q", db.Message)
	}
	if got := find(t, d, "Data Directory").Status; got != StatusPass {
		t.Fatalf("expected writable data dir, got %s", got)
	}
}

func TestCheckMigrations_MissingDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.MigrationsDir = filepath.Join(t.TempDir(), "nope")
	if got := checkMigrations(context.Background(), cfg).Status; got != StatusFail {
		t.Fatalf("expected FAIL, got %s", got)
	}
}

func TestCheckMigrations_Empty(t *testing.T) {
	cfg := testConfig(t)
	cfg.MigrationsDir = t.TempDir()
	if got := checkMigrations(context.Background(), cfg).Status; got != StatusWarn {
		t.Fatalf("expected WARN, got %s", got)
	}
}

func TestCheckDataDir_NotADirectory(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.DBPath = filepath.Join(file, "board.db")
	if got := checkDataDir(context.Background(), cfg).Status; got != StatusFail {
		t.Fatalf("expected FAIL, got %s", got)
	}
}

func TestCheckTelemetry(t *testing.T) {
	tests := []struct {
		enabled  bool
		exporter string
		endpoint string
		want     string
	}{
		{enabled: false, want: StatusPass},
		{enabled: true, exporter: "file", want: StatusPass},
		{enabled: true, exporter: "otlp-http", want: StatusWarn},
		{enabled: true, exporter: "otlp-http", endpoint: "collector:4318", want: StatusPass},
		{enabled: true, exporter: "stdout", want: StatusWarn},
		{enabled: true, exporter: "zipkin", want: StatusFail},
	}
	for _, tc := range tests {
		cfg := testConfig(t)
		cfg.OTel.Enabled = tc.enabled
		cfg.OTel.Exporter = tc.exporter
		cfg.OTel.Endpoint = tc.endpoint
		if got := checkTelemetry(context.Background(), cfg).Status; got != tc.want {
			t.Fatalf("%s/%s: expected %s, got %s", tc.exporter, tc.endpoint, tc.want, got)
		}
	}
}
