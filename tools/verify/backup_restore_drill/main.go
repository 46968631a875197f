package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/basket/go-board/internal/board"
	"github.com/basket/go-board/internal/migrate"
	"github.com/basket/go-board/internal/persistence"
	"github.com/basket/go-board/internal/task"
)

func main() {
	migrations := flag.String("migrations", migrate.DirName, "migrations directory")
	count := flag.Int("tasks", 40, "tasks to create before the backup")
	flag.Parse()

	ctx := context.Background()
	baseDir, err := os.MkdirTemp("", "goboard-backup-drill-*")
	if err != nil {
		fmt.Printf("mktemp_error=%v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(baseDir)

	dbPath := filepath.Join(baseDir, persistence.DirName, persistence.FileName)
	backupPath := filepath.Join(baseDir, "backup.db")

	m := migrate.New(*migrations, nil)
	store, err := persistence.Open(ctx, dbPath, m)
	if err != nil {
		fmt.Printf("open_store_error=%v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	b, err := board.New(ctx, store)
	if err != nil {
		fmt.Printf("load_board_error=%v\n", err)
		os.Exit(1)
	}
	for i := 0; i < *count; i++ {
		if err := b.CreateTask(ctx, task.New(fmt.Sprintf("backup-%d", i))); err != nil {
			fmt.Printf("create_task_error=%v\n", err)
			os.Exit(1)
		}
		// Spread tasks over the ring so every column is restored.
		for j := 0; j < i%len(task.All()); j++ {
			b.SelectTask(int64(i + 1))
			if err := b.MoveTaskToColumn(ctx, b.SelectedStatus().Next()); err != nil {
				fmt.Printf("move_task_error=%v\n", err)
				os.Exit(1)
			}
		}
	}
	want, err := store.CountByStatus(ctx)
	if err != nil {
		fmt.Printf("count_error=%v\n", err)
		os.Exit(1)
	}

	backupStart := time.Now().UTC()
	if err := store.Backup(ctx, backupPath); err != nil {
		fmt.Printf("backup_error=%v\n", err)
		os.Exit(1)
	}
	backupEnd := time.Now().UTC()

	restoreStart := time.Now().UTC()
	restoreStore, err := persistence.Open(ctx, backupPath, m)
	if err != nil {
		fmt.Printf("open_restore_error=%v\n", err)
		os.Exit(1)
	}
	defer restoreStore.Close()
	restored, err := restoreStore.LoadAll(ctx)
	if err != nil {
		fmt.Printf("load_restore_error=%v\n", err)
		os.Exit(1)
	}
	got, err := restoreStore.CountByStatus(ctx)
	if err != nil {
		fmt.Printf("count_restore_error=%v\n", err)
		os.Exit(1)
	}
	restoreEnd := time.Now().UTC()

	fmt.Printf("backup_started=%s\n", backupStart.Format(time.RFC3339Nano))
	fmt.Printf("backup_completed=%s\n", backupEnd.Format(time.RFC3339Nano))
	fmt.Printf("restore_started=%s\n", restoreStart.Format(time.RFC3339Nano))
	fmt.Printf("restore_completed=%s\n", restoreEnd.Format(time.RFC3339Nano))
	fmt.Printf("rpo_duration=%s\n", backupEnd.Sub(backupStart))
	fmt.Printf("rto_duration=%s\n", restoreEnd.Sub(restoreStart))
	fmt.Printf("restored_tasks=%d\n", len(restored))

	verdict := len(restored) == *count
	for _, s := range task.All() {
		fmt.Printf("restored_%s=%d\n", s, got[s])
		if got[s] != want[s] {
			verdict = false
		}
	}
	if !verdict {
		fmt.Println("VERDICT FAIL")
		os.Exit(1)
	}
	fmt.Println("VERDICT PASS")
}
