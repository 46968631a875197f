package board

import (
	"context"
	"fmt"

	"github.com/basket/go-board/internal/task"
)

// Draft is the new-task editor's raw input. The deadline stays unparsed
// text until submit.
type Draft struct {
	Description      string
	Deadline         string
	EnteringDeadline bool
}

func (d *Draft) Clear() {
	*d = Draft{}
}

// ToggleField switches typing between description and deadline.
func (d *Draft) ToggleField() {
	d.EnteringDeadline = !d.EnteringDeadline
}

// Type appends s to the focused field.
func (d *Draft) Type(s string) {
	if d.EnteringDeadline {
		d.Deadline += s
		return
	}
	d.Description += s
}

// Newline breaks the description; the deadline field is single-line.
func (d *Draft) Newline() {
	if !d.EnteringDeadline {
		d.Description += "\n"
	}
}

// Backspace drops the last rune of the focused field.
func (d *Draft) Backspace() {
	if d.EnteringDeadline {
		d.Deadline = dropLastRune(d.Deadline)
		return
	}
	d.Description = dropLastRune(d.Description)
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// SubmitDraft turns d into a Backlog task and saves it. On success the board
// returns to navigation and d is cleared; on failure both are left as they
// were so nothing typed is lost.
func (b *Board) SubmitDraft(ctx context.Context, d *Draft) error {
	deadline, err := task.ParseDeadline(d.Deadline, b.loc)
	if err != nil {
		return err
	}
	t := task.New(d.Description, task.WithDeadline(deadline))
	if err := b.CreateTask(ctx, t); err != nil {
		return fmt.Errorf("submit draft: %w", err)
	}
	b.CancelDraft(d)
	return nil
}

// CancelDraft leaves the editor and discards d.
func (b *Board) CancelDraft(d *Draft) {
	if b.mode == ModeNewTask {
		b.SwitchMode()
	}
	d.Clear()
}
