package persistence

import (
	"context"
	"fmt"

	otelPkg "github.com/basket/go-board/internal/otel"
	"github.com/basket/go-board/internal/task"
)

// LoadAll returns every task in id order. A row with an unknown status token
// or an unparseable timestamp fails the whole load with ErrDecode.
func (s *Store) LoadAll(ctx context.Context) (out []task.Task, err error) {
	ctx, done := s.observe(ctx, "load_all", false)
	defer func() { done(err) }()

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, description, status, created_at, updated_at, deadline
		FROM tasks
		ORDER BY id ASC;
	`); err != nil {
		return nil, fmt.Errorf("%w: load tasks: %w", ErrStore, err)
	}

	out = make([]task.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Insert writes t as a new row and stores the assigned id back on t.
// Zero timestamps are stamped with the current time.
func (s *Store) Insert(ctx context.Context, t *task.Task) (err error) {
	if t == nil {
		return fmt.Errorf("%w: insert: nil task", ErrStore)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: insert: invalid status %s", ErrStore, t.Status)
	}
	ctx, done := s.observe(ctx, "insert", true, otelPkg.AttrTaskStatus.String(t.Status.String()))
	defer func() { done(err) }()

	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (description, status, created_at, updated_at, deadline)
		VALUES (?, ?, ?, ?, ?);
	`, t.Description, t.Status.String(), encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt), encodeDeadline(t.Deadline))
	if err != nil {
		return fmt.Errorf("%w: insert task: %w", ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: insert task id: %w", ErrStore, err)
	}
	t.ID = &id
	return nil
}

// UpdateStatus overwrites status and bumps updated_at for t's row. Tasks
// without an id were never saved and are ignored.
func (s *Store) UpdateStatus(ctx context.Context, t task.Task) (err error) {
	if t.ID == nil {
		return nil
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: update task %d: invalid status %s", ErrStore, *t.ID, t.Status)
	}
	ctx, done := s.observe(ctx, "update_status", true,
		otelPkg.AttrTaskID.Int64(*t.ID),
		otelPkg.AttrTaskStatus.String(t.Status.String()),
	)
	defer func() { done(err) }()

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET updated_at = ?, status = ? WHERE id = ?;
	`, encodeTime(s.now()), t.Status.String(), *t.ID)
	if err != nil {
		return fmt.Errorf("%w: update task %d: %w", ErrStore, *t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Warn("status update matched no task", "task_id", *t.ID)
	}
	return nil
}

// Delete removes t's row. Tasks without an id are ignored.
func (s *Store) Delete(ctx context.Context, t task.Task) (err error) {
	if t.ID == nil {
		return nil
	}
	ctx, done := s.observe(ctx, "delete", true, otelPkg.AttrTaskID.Int64(*t.ID))
	defer func() { done(err) }()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, *t.ID); err != nil {
		return fmt.Errorf("%w: delete task %d: %w", ErrStore, *t.ID, err)
	}
	return nil
}

// CountByStatus returns how many tasks sit in each column.
func (s *Store) CountByStatus(ctx context.Context) (counts map[task.Status]int, err error) {
	ctx, done := s.observe(ctx, "count_by_status", false)
	defer func() { done(err) }()

	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT status, COUNT(1) AS n FROM tasks GROUP BY status;`); err != nil {
		return nil, fmt.Errorf("%w: count tasks: %w", ErrStore, err)
	}
	counts = make(map[task.Status]int, len(task.All()))
	for _, st := range task.All() {
		counts[st] = 0
	}
	for _, r := range rows {
		st, err := task.ParseStatus(r.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		counts[st] = r.N
	}
	return counts, nil
}
