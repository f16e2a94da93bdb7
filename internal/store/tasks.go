package store

import (
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

type TaskInput struct {
	ID          string
	Title       string
	Description string
	List        string
	Priority    string
	DueDate     time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	Completed   bool
	Important   bool
	Checklist   []string
	Attachments []AttachmentInput
}

// TaskPatch fields left nil are kept as they are.
type TaskPatch struct {
	Title          *string
	Description    *string
	List           *string
	Priority       *string
	DueDate        *time.Time
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
	Completed      *bool
	Important      *bool
}

func (sc *Scope) CreateTask(input TaskInput) (model.Task, error) {
	var created model.Task
	err := sc.write(func(data *userData, now time.Time) error {
		id := strings.TrimSpace(input.ID)
		if id != "" && data.taskIndex(id) >= 0 {
			return NewValidationError("id", "Task id already exists")
		}
		if id == "" {
			id = sc.store.newID()
		}

		task := model.Task{
			ID:          id,
			UserID:      sc.userID,
			Title:       strings.TrimSpace(input.Title),
			Description: input.Description,
			List:        strings.TrimSpace(input.List),
			Priority:    strings.TrimSpace(input.Priority),
			DueDate:     input.DueDate,
			StartDate:   copyTime(input.StartDate),
			EndDate:     copyTime(input.EndDate),
			Completed:   input.Completed,
			Important:   input.Important,
			Checklist:   []model.ChecklistItem{},
			Attachments: []model.Attachment{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if task.Completed {
			task.CompletedAt = &now
		}
		for _, text := range input.Checklist {
			item, err := sc.newChecklistItem(text, now)
			if err != nil {
				return err
			}
			task.Checklist = append(task.Checklist, item)
		}
		for _, in := range input.Attachments {
			attachment, err := sc.newAttachment(in, now)
			if err != nil {
				return err
			}
			task.Attachments = append(task.Attachments, attachment)
		}

		if err := validateTask(task, data); err != nil {
			return err
		}
		data.tasks = append(data.tasks, task)
		created = task.Clone()
		return nil
	})
	return created, err
}

func (sc *Scope) UpdateTask(id string, patch TaskPatch) (model.Task, error) {
	return sc.mutateTask(id, func(task *model.Task, data *userData, now time.Time) error {
		if patch.Title != nil {
			task.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.List != nil {
			task.List = strings.TrimSpace(*patch.List)
		}
		if patch.Priority != nil {
			task.Priority = strings.TrimSpace(*patch.Priority)
		}
		if patch.DueDate != nil {
			task.DueDate = *patch.DueDate
		}
		if patch.ClearStartDate {
			task.StartDate = nil
		} else if patch.StartDate != nil {
			task.StartDate = copyTime(patch.StartDate)
		}
		if patch.ClearEndDate {
			task.EndDate = nil
		} else if patch.EndDate != nil {
			task.EndDate = copyTime(patch.EndDate)
		}
		if patch.Completed != nil && *patch.Completed != task.Completed {
			setCompleted(task, *patch.Completed, now)
		}
		if patch.Important != nil {
			task.Important = *patch.Important
		}
		return validateTask(*task, data)
	})
}

func (sc *Scope) ToggleComplete(id string) (model.Task, error) {
	return sc.mutateTask(id, func(task *model.Task, _ *userData, now time.Time) error {
		setCompleted(task, !task.Completed, now)
		return nil
	})
}

func (sc *Scope) ToggleImportant(id string) (model.Task, error) {
	return sc.mutateTask(id, func(task *model.Task, _ *userData, _ time.Time) error {
		task.Important = !task.Important
		return nil
	})
}

// Trash soft-deletes a task. Trashing a trashed task changes nothing.
func (sc *Scope) Trash(id string) (model.Task, error) {
	return sc.transition(id, model.TaskTrashed)
}

// Restore moves a trashed task back to active.
func (sc *Scope) Restore(id string) (model.Task, error) {
	return sc.transition(id, model.TaskActive)
}

func (sc *Scope) transition(id string, to model.TaskState) (model.Task, error) {
	var result model.Task
	err := sc.write(func(data *userData, now time.Time) error {
		idx := data.taskIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		task := &data.tasks[idx]
		if task.State() != to {
			switch to {
			case model.TaskTrashed:
				task.Deleted = true
				task.DeletedAt = &now
			case model.TaskActive:
				task.Deleted = false
				task.DeletedAt = nil
			}
			task.UpdatedAt = now
		}
		result = task.Clone()
		return nil
	})
	return result, err
}

// Purge removes a task outright.
func (sc *Scope) Purge(id string) (model.Task, error) {
	var removed model.Task
	err := sc.write(func(data *userData, _ time.Time) error {
		idx := data.taskIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		removed = data.tasks[idx]
		data.tasks = append(data.tasks[:idx], data.tasks[idx+1:]...)
		return nil
	})
	return removed, err
}

func (sc *Scope) Task(id string) (model.Task, error) {
	var task model.Task
	err := sc.read(func(data *userData) error {
		idx := data.taskIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		task = data.tasks[idx].Clone()
		return nil
	})
	return task, err
}

// Tasks returns every task of the user, trashed ones included, in
// creation order.
func (sc *Scope) Tasks() ([]model.Task, error) {
	var tasks []model.Task
	err := sc.read(func(data *userData) error {
		tasks = make([]model.Task, 0, len(data.tasks))
		for _, task := range data.tasks {
			tasks = append(tasks, task.Clone())
		}
		return nil
	})
	return tasks, err
}

// mutateTask applies fn to a working copy and commits it only when fn
// succeeds, so a rejected change leaves the stored task untouched.
func (sc *Scope) mutateTask(id string, fn func(task *model.Task, data *userData, now time.Time) error) (model.Task, error) {
	var result model.Task
	err := sc.write(func(data *userData, now time.Time) error {
		idx := data.taskIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		working := data.tasks[idx].Clone()
		if err := fn(&working, data, now); err != nil {
			return err
		}
		working.UpdatedAt = now
		data.tasks[idx] = working
		result = working.Clone()
		return nil
	})
	return result, err
}

func setCompleted(task *model.Task, completed bool, now time.Time) {
	task.Completed = completed
	if completed {
		task.CompletedAt = &now
		return
	}
	task.CompletedAt = nil
}

func validateTask(task model.Task, data *userData) error {
	verr := &ValidationError{}
	if task.Title == "" {
		verr.add("title", "Title is required")
	}
	if task.List == "" {
		verr.add("list", "List is required")
	} else if !data.hasList(task.List) {
		verr.add("list", "List not found")
	}
	if task.Priority == "" {
		verr.add("priority", "Priority is required")
	} else if _, ok := model.PriorityByID(task.Priority); !ok {
		verr.add("priority", "Unknown priority")
	}
	if task.DueDate.IsZero() {
		verr.add("due_date", "Due date is required")
	}
	if task.StartDate != nil && task.EndDate != nil && task.StartDate.After(*task.EndDate) {
		verr.add("end_date", "End date must be after start date")
	}
	return verr.err()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
