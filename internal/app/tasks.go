package app

import (
	"context"
	"strings"

	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

func (s *Session) CreateTask(ctx context.Context, input store.TaskInput) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return model.Task{}, err
	}

	if strings.TrimSpace(input.List) == "" {
		input.List = s.state.Settings.TaskDefaults.List
	}
	if strings.TrimSpace(input.Priority) == "" {
		input.Priority = s.state.Settings.TaskDefaults.Priority
	}

	created, err := s.scope.CreateTask(input)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return model.Task{}, err
	}
	s.record(ctx, "created", model.Task{}, created)
	s.logger.Infow("task created", "user_id", s.user.ID, "task_id", created.ID, "list", created.List)
	return created, nil
}

func (s *Session) UpdateTask(ctx context.Context, id string, patch store.TaskPatch) (model.Task, error) {
	return s.changeTask(ctx, id, constEvent("updated"), func() (model.Task, error) {
		return s.scope.UpdateTask(id, patch)
	})
}

func (s *Session) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	return s.changeTask(ctx, id, func(task model.Task) string {
		if task.Completed {
			return "completed"
		}
		return "reopened"
	}, func() (model.Task, error) {
		return s.scope.ToggleComplete(id)
	})
}

func (s *Session) ToggleImportant(ctx context.Context, id string) (model.Task, error) {
	return s.changeTask(ctx, id, func(task model.Task) string {
		if task.Important {
			return "starred"
		}
		return "unstarred"
	}, func() (model.Task, error) {
		return s.scope.ToggleImportant(id)
	})
}

func (s *Session) Trash(ctx context.Context, id string) (model.Task, error) {
	return s.changeTask(ctx, id, constEvent("trashed"), func() (model.Task, error) {
		return s.scope.Trash(id)
	})
}

func (s *Session) Restore(ctx context.Context, id string) (model.Task, error) {
	return s.changeTask(ctx, id, constEvent("restored"), func() (model.Task, error) {
		return s.scope.Restore(id)
	})
}

func (s *Session) Purge(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return model.Task{}, err
	}
	removed, err := s.scope.Purge(id)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return model.Task{}, err
	}
	s.record(ctx, "purged", removed, model.Task{})
	s.logger.Infow("task purged", "user_id", s.user.ID, "task_id", id)
	return removed, nil
}

func (s *Session) AddChecklistItem(ctx context.Context, taskID, text string) (model.Task, error) {
	return s.changeTask(ctx, taskID, constEvent("checklist"), func() (model.Task, error) {
		return s.scope.AddChecklistItem(taskID, text)
	})
}

func (s *Session) ToggleChecklistItem(ctx context.Context, taskID, itemID string) (model.Task, error) {
	return s.changeTask(ctx, taskID, constEvent("checklist"), func() (model.Task, error) {
		return s.scope.ToggleChecklistItem(taskID, itemID)
	})
}

func (s *Session) RemoveChecklistItem(ctx context.Context, taskID, itemID string) (model.Task, error) {
	return s.changeTask(ctx, taskID, constEvent("checklist"), func() (model.Task, error) {
		return s.scope.RemoveChecklistItem(taskID, itemID)
	})
}

func (s *Session) AddAttachment(ctx context.Context, taskID string, input store.AttachmentInput) (model.Task, error) {
	return s.changeTask(ctx, taskID, constEvent("attachment"), func() (model.Task, error) {
		return s.scope.AddAttachment(taskID, input)
	})
}

func (s *Session) RemoveAttachment(ctx context.Context, taskID, attachmentID string) (model.Task, error) {
	return s.changeTask(ctx, taskID, constEvent("attachment"), func() (model.Task, error) {
		return s.scope.RemoveAttachment(taskID, attachmentID)
	})
}

func (s *Session) Task(id string) (model.Task, error) {
	return s.scope.Task(id)
}

func (s *Session) Tasks() ([]model.Task, error) {
	return s.scope.Tasks()
}

// changeTask runs one store mutation, saves the snapshot and records the
// before/after pair under the session lock.
func (s *Session) changeTask(ctx context.Context, id string, event func(model.Task) string, mutate func() (model.Task, error)) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.scope.Task(id)
	if err != nil {
		return model.Task{}, err
	}
	prev, err := s.snapshot()
	if err != nil {
		return model.Task{}, err
	}
	after, err := mutate()
	if err != nil {
		return model.Task{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return model.Task{}, err
	}

	name := event(after)
	s.record(ctx, name, before, after)
	s.logger.Infow("task "+name, "user_id", s.user.ID, "task_id", id)
	return after, nil
}

func constEvent(name string) func(model.Task) string {
	return func(model.Task) string { return name }
}
