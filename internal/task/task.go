// Package task holds the board's domain value: a task and the ring of
// workflow columns it moves through.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is how timestamps are shown to and typed by the user.
const DisplayLayout = "02/01/2006 15:04"

const dateOnlyLayout = "02/01/2006"

// ErrInvalidDeadline is returned when deadline input matches neither the
// date-time nor the date-only layout.
var ErrInvalidDeadline = errors.New("invalid deadline")

// Task is a single card on the board. ID is nil until the store assigns one.
type Task struct {
	ID          *int64
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Deadline    *time.Time
}

type Option func(*Task)

// WithStatus places the new task in a column other than Backlog.
func WithStatus(s Status) Option {
	return func(t *Task) { t.Status = s }
}

// WithDeadline attaches a due date. A nil deadline is ignored.
func WithDeadline(d *time.Time) Option {
	return func(t *Task) {
		if d == nil {
			return
		}
		v := *d
		t.Deadline = &v
	}
}

// New builds an unsaved task in Backlog with both timestamps set to now.
func New(description string, opts ...Option) Task {
	now := time.Now()
	t := Task{
		Description: description,
		Status:      Backlog,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Persisted reports whether the task has a store identity.
func (t Task) Persisted() bool {
	return t.ID != nil
}

// SameID reports whether both tasks are persisted with the same identity.
func (t Task) SameID(other Task) bool {
	return t.ID != nil && other.ID != nil && *t.ID == *other.ID
}

// ParseDeadline reads user input in DisplayLayout or as a bare date, which
// means midnight. Blank input yields a nil deadline.
func ParseDeadline(input string, loc *time.Location) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{DisplayLayout, dateOnlyLayout} {
		if d, err := time.ParseInLocation(layout, input, loc); err == nil {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (want dd/mm/yyyy hh:mm or dd/mm/yyyy)", ErrInvalidDeadline, input)
}

// FormatTime renders t in DisplayLayout in the local zone.
func FormatTime(t time.Time) string {
	return t.Local().Format(DisplayLayout)
}
