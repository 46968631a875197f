package board

import "github.com/basket/go-board/internal/task"

type EventKind string

const (
	EventCreated EventKind = "created"
	EventMoved   EventKind = "moved"
	EventDeleted EventKind = "deleted"
)

// Event describes a mutation that reached the store.
type Event struct {
	Kind EventKind
	Task task.Task
	From task.Status
	To   task.Status
}

// Recorder receives an Event after each successful mutation.
type Recorder func(Event)
