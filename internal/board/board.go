// Package board is the navigation and selection state machine behind the
// task board. A Board owns a snapshot of every task, the active column and a
// cursor into that column, and it reloads the whole snapshot from the store
// after every mutation so the view never drifts from what is on disk.
//
// Cursor invariant: when the active column is non-empty the index is in
// [0, len(column)); when it is empty the index is 0 and never dereferenced.
package board

import (
	"context"
	"fmt"
	"time"

	"github.com/basket/go-board/internal/task"
)

// Store is the durable side of the board.
type Store interface {
	LoadAll(ctx context.Context) ([]task.Task, error)
	Insert(ctx context.Context, t *task.Task) error
	UpdateStatus(ctx context.Context, t task.Task) error
	Delete(ctx context.Context, t task.Task) error
}

type Mode int

const (
	ModeBoard Mode = iota
	ModeNewTask
)

func (m Mode) String() string {
	switch m {
	case ModeNewTask:
		return "new_task"
	default:
		return "board"
	}
}

type Board struct {
	store          Store
	tasks          []task.Task
	selectedStatus task.Status
	selectedIndex  int
	mode           Mode
	shouldQuit     bool

	recorder Recorder
	loc      *time.Location
}

type Option func(*Board)

// WithRecorder registers a callback for successful mutations.
func WithRecorder(r Recorder) Option {
	return func(b *Board) { b.recorder = r }
}

// WithLocation sets the zone draft deadlines are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(b *Board) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// New loads the full snapshot from store. The board starts on Backlog in
// board mode with the cursor on the first task.
func New(ctx context.Context, store Store, opts ...Option) (*Board, error) {
	b := &Board{
		store:          store,
		selectedStatus: task.Backlog,
		mode:           ModeBoard,
		loc:            time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	return b, nil
}

// Reload replaces the snapshot with the store's current contents. On error
// the previous snapshot is kept.
func (b *Board) Reload(ctx context.Context) error {
	tasks, err := b.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	b.tasks = tasks
	b.ensureCursor()
	return nil
}

func (b *Board) Tasks() []task.Task {
	out := make([]task.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

func (b *Board) SelectedStatus() task.Status { return b.selectedStatus }
func (b *Board) SelectedIndex() int          { return b.selectedIndex }
func (b *Board) Mode() Mode                  { return b.mode }
func (b *Board) ShouldQuit() bool            { return b.shouldQuit }
func (b *Board) Quit()                       { b.shouldQuit = true }

// TasksForStatus returns the tasks in column s, in snapshot order.
func (b *Board) TasksForStatus(s task.Status) []task.Task {
	var out []task.Task
	for _, t := range b.tasks {
		if t.Status == s {
			out = append(out, t)
		}
	}
	return out
}

// Selected returns the task under the cursor, if the active column has one.
func (b *Board) Selected() (task.Task, bool) {
	col := b.TasksForStatus(b.selectedStatus)
	if b.selectedIndex < 0 || b.selectedIndex >= len(col) {
		return task.Task{}, false
	}
	return col[b.selectedIndex], true
}

// SelectNextStatus activates the next column and re-anchors the cursor at 0.
func (b *Board) SelectNextStatus() {
	b.selectedStatus = b.selectedStatus.Next()
	b.selectedIndex = 0
}

// SelectNextTask moves the cursor down, wrapping to the top.
func (b *Board) SelectNextTask() {
	n := len(b.TasksForStatus(b.selectedStatus))
	if n == 0 || b.selectedIndex < 0 || b.selectedIndex >= n {
		return
	}
	b.selectedIndex = (b.selectedIndex + 1) % n
}

// SelectPrevTask moves the cursor up, wrapping to the bottom.
func (b *Board) SelectPrevTask() {
	n := len(b.TasksForStatus(b.selectedStatus))
	if n == 0 || b.selectedIndex < 0 || b.selectedIndex >= n {
		return
	}
	b.selectedIndex = (b.selectedIndex + n - 1) % n
}

// SelectTask points the cursor at the task with the given id. It reports
// false and leaves the cursor alone when no such task is on the board.
func (b *Board) SelectTask(id int64) bool {
	for _, t := range b.tasks {
		if t.ID == nil || *t.ID != id {
			continue
		}
		b.selectedStatus = t.Status
		b.selectedIndex = b.indexOf(t)
		return true
	}
	return false
}

// MoveTaskToColumn moves the selected task to target, then follows it: the
// target column becomes active and the cursor lands on the moved task.
func (b *Board) MoveTaskToColumn(ctx context.Context, target task.Status) error {
	current, ok := b.Selected()
	if !ok {
		return nil
	}
	from := current.Status
	moved := current
	moved.Status = target
	if err := b.store.UpdateStatus(ctx, moved); err != nil {
		return fmt.Errorf("move task to %s: %w", target, err)
	}
	if err := b.Reload(ctx); err != nil {
		return fmt.Errorf("reload after move: %w", err)
	}

	b.selectedStatus = target
	if idx := b.indexOf(moved); idx >= 0 {
		b.selectedIndex = idx
	}
	b.ensureCursor()
	b.record(Event{Kind: EventMoved, Task: moved, From: from, To: target})
	return nil
}

// CreateTask persists t and reloads. The cursor does not follow the new task.
func (b *Board) CreateTask(ctx context.Context, t task.Task) error {
	if err := b.store.Insert(ctx, &t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if err := b.Reload(ctx); err != nil {
		return fmt.Errorf("reload after create: %w", err)
	}
	b.record(Event{Kind: EventCreated, Task: t, To: t.Status})
	return nil
}

// DeleteTask removes the selected task. Deleting from an empty column does
// nothing.
func (b *Board) DeleteTask(ctx context.Context) error {
	current, ok := b.Selected()
	if !ok {
		return nil
	}
	if err := b.store.Delete(ctx, current); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := b.Reload(ctx); err != nil {
		return fmt.Errorf("reload after delete: %w", err)
	}
	b.selectedIndex = 0
	b.record(Event{Kind: EventDeleted, Task: current, From: current.Status})
	return nil
}

// SwitchMode toggles between board navigation and the new-task editor. The
// draft is the caller's to clear.
func (b *Board) SwitchMode() {
	if b.mode == ModeBoard {
		b.mode = ModeNewTask
		return
	}
	b.mode = ModeBoard
}

func (b *Board) indexOf(t task.Task) int {
	for i, c := range b.TasksForStatus(t.Status) {
		if c.SameID(t) {
			return i
		}
	}
	return -1
}

func (b *Board) ensureCursor() {
	n := len(b.TasksForStatus(b.selectedStatus))
	if b.selectedIndex < 0 || b.selectedIndex >= n {
		b.selectedIndex = 0
	}
}

func (b *Board) record(ev Event) {
	if b.recorder != nil {
		b.recorder(ev)
	}
}
