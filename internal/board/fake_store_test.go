package board

import (
	"context"
	"errors"

	"github.com/basket/go-board/internal/task"
)

var errInjected = errors.New("injected store failure")

// fakeStore keeps tasks in memory and can be told to fail individual calls.
type fakeStore struct {
	tasks  []task.Task
	nextID int64

	failLoad, failInsert, failUpdate, failDelete bool
	loads                                        int
}

func (f *fakeStore) LoadAll(context.Context) ([]task.Task, error) {
	f.loads++
	if f.failLoad {
		return nil, errInjected
	}
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, t *task.Task) error {
	if f.failInsert {
		return errInjected
	}
	f.nextID++
	id := f.nextID
	t.ID = &id
	f.tasks = append(f.tasks, *t)
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, t task.Task) error {
	if f.failUpdate {
		return errInjected
	}
	for i := range f.tasks {
		if f.tasks[i].SameID(t) {
			f.tasks[i].Status = t.Status
		}
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, t task.Task) error {
	if f.failDelete {
		return errInjected
	}
	for i := range f.tasks {
		if f.tasks[i].SameID(t) {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func seeded(descs map[task.Status][]string) *fakeStore {
	f := &fakeStore{}
	for _, st := range task.All() {
		for _, d := range descs[st] {
			t := task.New(d, task.WithStatus(st))
			_ = f.Insert(context.Background(), &t)
		}
	}
	return f
}
