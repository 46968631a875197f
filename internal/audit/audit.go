// Package audit appends board mutations and startup failures to
// <home>/logs/audit.jsonl. The file is opened once per process.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basket/go-board/internal/board"
)

const FileName = "audit.jsonl"

type entry struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	TaskID    *int64 `json:"task_id,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

var (
	mu            sync.Mutex
	file          *os.File
	mutationCount atomic.Int64
)

func Init(homeDir string) error {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		return nil
	}
	logDir := filepath.Join(homeDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	file = f
	mutationCount.Store(0)
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// MutationCount returns the number of board events recorded since Init.
func MutationCount() int64 {
	return mutationCount.Load()
}

// Record appends a free-form entry, e.g. a startup failure reason code.
// It is a no-op before Init.
func Record(action, reason, subject string) {
	write(entry{Action: action, Reason: reason, Subject: subject})
}

// RecordEvent appends a board mutation. Its signature matches
// board.Recorder so it can be passed to board.WithRecorder.
func RecordEvent(ev board.Event) {
	mutationCount.Add(1)
	e := entry{
		Action:  "task." + string(ev.Kind),
		TaskID:  ev.Task.ID,
		Subject: ev.Task.Description,
	}
	switch ev.Kind {
	case board.EventCreated:
		e.To = ev.To.String()
	case board.EventDeleted:
		e.From = ev.From.String()
	default:
		e.From = ev.From.String()
		e.To = ev.To.String()
	}
	write(e)
}

func write(e entry) {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	_, _ = file.Write(append(b, '\n'))
}
