package board

import (
	"context"
	"errors"
	"testing"

	"github.com/basket/go-board/internal/task"
)

func newTestBoard(t *testing.T, f *fakeStore, opts ...Option) *Board {
	t.Helper()
	b, err := New(context.Background(), f, opts...)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b
}

func TestNew_LoadFailure(t *testing.T) {
	_, err := New(context.Background(), &fakeStore{failLoad: true})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestNew_InitialState(t *testing.T) {
	b := newTestBoard(t, seeded(map[task.Status][]string{task.Backlog: {"a"}}))
	if b.SelectedStatus() != task.Backlog || b.SelectedIndex() != 0 {
		t.Fatalf("expected Backlog/0, got %s/%d", b.SelectedStatus(), b.SelectedIndex())
	}
	if b.Mode() != ModeBoard || b.ShouldQuit() {
		t.Fatalf("unexpected initial mode %s quit=%t", b.Mode(), b.ShouldQuit())
	}
}

func TestMove_StoreFailureKeepsState(t *testing.T) {
	f := seeded(map[task.Status][]string{task.Backlog: {"a", "b"}})
	b := newTestBoard(t, f)
	b.SelectNextTask()

	f.failUpdate = true
	err := b.MoveTaskToColumn(context.Background(), task.Today)
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if b.SelectedStatus() != task.Backlog || b.SelectedIndex() != 1 {
		t.Fatalf("cursor changed on failure: %s/%d", b.SelectedStatus(), b.SelectedIndex())
	}
	if len(b.TasksForStatus(task.Backlog)) != 2 {
		t.Fatal("snapshot changed on failure")
	}
}

func TestMove_ReloadFailureKeepsSnapshot(t *testing.T) {
	f := seeded(map[task.Status][]string{task.Backlog: {"a"}})
	b := newTestBoard(t, f)

	f.failLoad = true
	if err := b.MoveTaskToColumn(context.Background(), task.Done); !errors.Is(err, errInjected) {
		t.Fatalf("expected reload error, got %v", err)
	}
	if len(b.TasksForStatus(task.Backlog)) != 1 {
		t.Fatal("expected previous snapshot to be kept")
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	f := &fakeStore{failInsert: true}
	b := newTestBoard(t, f)
	if err := b.CreateTask(context.Background(), task.New("x")); !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if len(b.Tasks()) != 0 {
		t.Fatal("failed insert must not show up on the board")
	}
}

func TestDelete_StoreFailure(t *testing.T) {
	f := seeded(map[task.Status][]string{task.Backlog: {"a"}})
	b := newTestBoard(t, f)
	f.failDelete = true
	if err := b.DeleteTask(context.Background()); !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if len(b.TasksForStatus(task.Backlog)) != 1 {
		t.Fatal("task should still be on the board")
	}
}

func TestDelete_EmptyColumnDoesNotTouchStore(t *testing.T) {
	f := seeded(map[task.Status][]string{task.Today: {"elsewhere"}})
	b := newTestBoard(t, f)
	loads := f.loads
	if err := b.DeleteTask(context.Background()); err != nil {
		t.Fatalf("delete on empty column: %v", err)
	}
	if f.loads != loads {
		t.Fatal("empty-column delete should not reload")
	}
	if len(f.tasks) != 1 {
		t.Fatal("store should be untouched")
	}
}

func TestMove_EmptyColumnIsNoop(t *testing.T) {
	f := &fakeStore{}
	b := newTestBoard(t, f)
	f.failUpdate = true
	if err := b.MoveTaskToColumn(context.Background(), task.Done); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if b.SelectedStatus() != task.Backlog {
		t.Fatalf("column must not change on no-op move, got %s", b.SelectedStatus())
	}
}

func TestReload_ClampsStaleCursor(t *testing.T) {
	f := seeded(map[task.Status][]string{task.Backlog: {"a", "b", "c"}})
	b := newTestBoard(t, f)
	b.SelectPrevTask() // wraps to 2
	if b.SelectedIndex() != 2 {
		t.Fatalf("expected 2, got %d", b.SelectedIndex())
	}
	f.tasks = f.tasks[:1]
	if err := b.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if b.SelectedIndex() != 0 {
		t.Fatalf("expected stale cursor reset to 0, got %d", b.SelectedIndex())
	}
}

func TestSelectNextTask_StaleIndexIsNoop(t *testing.T) {
	b := newTestBoard(t, seeded(map[task.Status][]string{task.Backlog: {"a"}}))
	b.selectedIndex = 5
	b.SelectNextTask()
	b.SelectPrevTask()
	if b.selectedIndex != 5 {
		t.Fatalf("expected out-of-range cursor to be left alone, got %d", b.selectedIndex)
	}
	if _, ok := b.Selected(); ok {
		t.Fatal("out-of-range cursor must not dereference")
	}
}

func TestRecorder_ReceivesMutations(t *testing.T) {
	var events []Event
	f := &fakeStore{}
	b := newTestBoard(t, f, WithRecorder(func(ev Event) { events = append(events, ev) }))
	ctx := context.Background()

	if err := b.CreateTask(ctx, task.New("a")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := b.MoveTaskToColumn(ctx, task.Today); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := b.DeleteTask(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	f.failInsert = true
	_ = b.CreateTask(ctx, task.New("b"))

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []EventKind{EventCreated, EventMoved, EventDeleted}
	for i, ev := range events {
		if ev.Kind != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], ev.Kind)
		}
		if ev.Task.ID == nil {
			t.Fatalf("event %d: expected task id", i)
		}
	}
	if events[1].From != task.Backlog || events[1].To != task.Today {
		t.Fatalf("unexpected move event %+v", events[1])
	}
}
