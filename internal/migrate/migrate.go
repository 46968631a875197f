// Package migrate brings the board database up to the current schema by
// running the .sql scripts shipped next to the binary.
//
// Scripts are applied in lexical filename order as one batch on every
// startup. Nothing records which scripts already ran, so each script must be
// safe to re-run (CREATE TABLE IF NOT EXISTS and friends).
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirName is the directory, beside the executable, that holds the scripts.
const DirName = "migrations"

// ErrIO marks failures to locate or read migration scripts.
var ErrIO = errors.New("migrations io")

// Execer is the part of *sql.DB (or *sqlx.DB) the migrator needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Script struct {
	Name string
	SQL  string
}

type Migrator struct {
	dir    string
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{dir: dir, logger: logger}
}

func (m *Migrator) Dir() string {
	return m.dir
}

// DefaultDir returns the migrations directory beside the running executable.
func DefaultDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: locate executable: %v", ErrIO, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DirName), nil
}

// Scripts reads every *.sql file in the directory, sorted by name.
func (m *Migrator) Scripts() ([]Script, error) {
	info, err := os.Stat(m.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: migrations directory not found: %s: %v", ErrIO, m.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrIO, m.dir)
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read migrations dir: %v", ErrIO, err)
	}

	var names []string
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		// Stat follows symlinks so linked install layouts still count.
		fi, err := os.Stat(filepath.Join(m.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %v", ErrIO, e.Name(), err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrIO, name, err)
		}
		scripts = append(scripts, Script{Name: name, SQL: string(data)})
	}
	return scripts, nil
}

// Bundle concatenates scripts in order, each terminated by a newline.
func Bundle(scripts []Script) string {
	var b strings.Builder
	for _, s := range scripts {
		b.WriteString(s.SQL)
		b.WriteByte('\n')
	}
	return b.String()
}

// Apply runs all scripts against db as a single batch.
func (m *Migrator) Apply(ctx context.Context, db Execer) error {
	scripts, err := m.Scripts()
	if err != nil {
		return err
	}
	m.logger.Debug("applying migrations", "dir", m.dir, "scripts", len(scripts))

	batch := Bundle(scripts)
	if strings.TrimSpace(batch) == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, batch); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	m.logger.Debug("migrations applied", "dir", m.dir)
	return nil
}
