package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/basket/go-board/internal/config"
	"github.com/basket/go-board/internal/migrate"
	"github.com/basket/go-board/internal/persistence"
	"github.com/basket/go-board/internal/task"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusWarn = "WARN"
	StatusSkip = "SKIP"
)

type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "PASS", "FAIL", "WARN", "SKIP"
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type Diagnosis struct {
	Timestamp time.Time     `json:"timestamp"`
	System    SystemInfo    `json:"system"`
	Results   []CheckResult `json:"results"`
}

type SystemInfo struct {
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	Go      string `json:"go_version"`
	Version string `json:"version"`
}

// Healthy reports whether no check failed.
func (d Diagnosis) Healthy() bool {
	for _, r := range d.Results {
		if r.Status == StatusFail {
			return false
		}
	}
	return true
}

// Run executes all diagnostic checks.
func Run(ctx context.Context, cfg *config.Config, version string) Diagnosis {
	d := Diagnosis{
		Timestamp: time.Now().UTC(),
		System: SystemInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Go:      runtime.Version(),
			Version: version,
		},
	}

	checks := []func(context.Context, *config.Config) CheckResult{
		checkConfig,
		checkDataDir,
		checkMigrations,
		checkDatabase,
		checkTelemetry,
	}

	for _, check := range checks {
		d.Results = append(d.Results, check(ctx, cfg))
	}

	return d
}

func checkConfig(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Config", Status: StatusFail, Message: "Configuration not loaded"}
	}
	if !cfg.FromFile {
		return CheckResult{Name: "Config", Status: StatusPass, Message: "Using defaults (no config.yaml)", Detail: config.ConfigPath(cfg.HomeDir)}
	}
	return CheckResult{Name: "Config", Status: StatusPass, Message: fmt.Sprintf("Loaded from %s", config.ConfigPath(cfg.HomeDir))}
}

func checkDataDir(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Data Directory", Status: StatusSkip, Message: "Config missing"}
	}
	dir := filepath.Dir(cfg.DBPath)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{Name: "Data Directory", Status: StatusWarn, Message: fmt.Sprintf("%s does not exist yet", dir), Detail: "It is created on first run"}
	}
	if err != nil {
		return CheckResult{Name: "Data Directory", Status: StatusFail, Message: fmt.Sprintf("Stat failed: %v", err)}
	}
	if !info.IsDir() {
		return CheckResult{Name: "Data Directory", Status: StatusFail, Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return CheckResult{Name: "Data Directory", Status: StatusFail, Message: fmt.Sprintf("Directory unwritable: %v", err)}
	}
	_ = os.Remove(testFile)

	return CheckResult{Name: "Data Directory", Status: StatusPass, Message: fmt.Sprintf("%s writable", dir)}
}

func checkMigrations(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Migrations", Status: StatusSkip, Message: "Config missing"}
	}
	scripts, err := migrate.New(cfg.MigrationsDir, nil).Scripts()
	if err != nil {
		return CheckResult{Name: "Migrations", Status: StatusFail, Message: err.Error()}
	}
	if len(scripts) == 0 {
		return CheckResult{Name: "Migrations", Status: StatusWarn, Message: fmt.Sprintf("No .sql scripts in %s", cfg.MigrationsDir)}
	}
	names := make([]string, 0, len(scripts))
	for _, s := range scripts {
		names = append(names, s.Name)
	}
	return CheckResult{
		Name:    "Migrations",
		Status:  StatusPass,
		Message: fmt.Sprintf("%d scripts in %s", len(scripts), cfg.MigrationsDir),
		Detail:  strings.Join(names, ", "),
	}
}

func checkDatabase(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Database", Status: StatusSkip, Message: "Config missing"}
	}
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return CheckResult{Name: "Database", Status: StatusSkip, Message: fmt.Sprintf("%s not created yet", cfg.DBPath)}
	}

	store, err := persistence.Open(ctx, cfg.DBPath, migrate.New(cfg.MigrationsDir, nil))
	if err != nil {
		return CheckResult{Name: "Database", Status: StatusFail, Message: fmt.Sprintf("Open failed: %v", err)}
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return CheckResult{Name: "Database", Status: StatusFail, Message: fmt.Sprintf("Ping failed: %v", err)}
	}
	tasks, err := store.LoadAll(ctx)
	if err != nil {
		return CheckResult{Name: "Database", Status: StatusFail, Message: fmt.Sprintf("Load failed: %v", err)}
	}
	counts := make(map[task.Status]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	parts := make([]string, 0, len(task.All()))
	for _, s := range task.All() {
		parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
	}
	return CheckResult{
		Name:    "Database",
		Status:  StatusPass,
		Message: fmt.Sprintf("%d tasks decoded", len(tasks)),
		Detail:  strings.Join(parts, " "),
	}
}

func checkTelemetry(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Telemetry", Status: StatusSkip, Message: "Config missing"}
	}
	if !cfg.OTel.Enabled {
		return CheckResult{Name: "Telemetry", Status: StatusPass, Message: "Disabled"}
	}
	switch cfg.OTel.Exporter {
	case "file":
		return CheckResult{Name: "Telemetry", Status: StatusPass, Message: fmt.Sprintf("Traces written to %s", cfg.OTel.FilePath)}
	case "otlp-http":
		if cfg.OTel.Endpoint == "" {
			return CheckResult{Name: "Telemetry", Status: StatusWarn, Message: "otlp-http exporter without endpoint", Detail: "The exporter falls back to localhost:4318"}
		}
		return CheckResult{Name: "Telemetry", Status: StatusPass, Message: fmt.Sprintf("Exporting to %s", cfg.OTel.Endpoint)}
	case "stdout":
		return CheckResult{Name: "Telemetry", Status: StatusWarn, Message: "stdout exporter interleaves spans with the board view"}
	case "none":
		return CheckResult{Name: "Telemetry", Status: StatusPass, Message: "Enabled without exporter"}
	default:
		return CheckResult{Name: "Telemetry", Status: StatusFail, Message: fmt.Sprintf("Unknown exporter %q", cfg.OTel.Exporter)}
	}
}
