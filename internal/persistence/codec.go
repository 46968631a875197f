package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/basket/go-board/internal/task"
)

// legacyTimeLayout is the naive format older databases (and sqlite's
// CURRENT_TIMESTAMP) use. It carries no zone and is read as local time.
const legacyTimeLayout = "2006-01-02 15:04:05"

type taskRow struct {
	ID          int64          `db:"id"`
	Description string         `db:"description"`
	Status      string         `db:"status"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
	Deadline    sql.NullString `db:"deadline"`
}

func encodeTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func encodeDeadline(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*d), Valid: true}
}

func decodeTime(column, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(time.Local), nil
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s: unparseable timestamp %q", ErrDecode, column, raw)
}

func (r taskRow) decode() (task.Task, error) {
	status, err := task.ParseStatus(r.Status)
	if err != nil {
		return task.Task{}, fmt.Errorf("%w: task %d: %w", ErrDecode, r.ID, err)
	}
	created, err := decodeTime("created_at", r.CreatedAt)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %d: %w", r.ID, err)
	}
	updated, err := decodeTime("updated_at", r.UpdatedAt)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %d: %w", r.ID, err)
	}

	id := r.ID
	t := task.Task{
		ID:          &id,
		Description: r.Description,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if r.Deadline.Valid {
		d, err := decodeTime("deadline", r.Deadline.String)
		if err != nil {
			return task.Task{}, fmt.Errorf("task %d: %w", r.ID, err)
		}
		t.Deadline = &d
	}
	return t, nil
}
