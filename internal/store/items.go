package store

import (
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

type AttachmentInput struct {
	Type string
	Name string
	URL  string
}

func (sc *Scope) AddChecklistItem(taskID, text string) (model.Task, error) {
	return sc.mutateTask(taskID, func(task *model.Task, _ *userData, now time.Time) error {
		item, err := sc.newChecklistItem(text, now)
		if err != nil {
			return err
		}
		task.Checklist = append(task.Checklist, item)
		return nil
	})
}

func (sc *Scope) ToggleChecklistItem(taskID, itemID string) (model.Task, error) {
	return sc.mutateTask(taskID, func(task *model.Task, _ *userData, now time.Time) error {
		for i := range task.Checklist {
			item := &task.Checklist[i]
			if item.ID != itemID {
				continue
			}
			item.Completed = !item.Completed
			if item.Completed {
				item.CompletedAt = &now
			} else {
				item.CompletedAt = nil
			}
			return nil
		}
		return ErrNotFound
	})
}

func (sc *Scope) RemoveChecklistItem(taskID, itemID string) (model.Task, error) {
	return sc.mutateTask(taskID, func(task *model.Task, _ *userData, _ time.Time) error {
		for i := range task.Checklist {
			if task.Checklist[i].ID == itemID {
				task.Checklist = append(task.Checklist[:i], task.Checklist[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (sc *Scope) AddAttachment(taskID string, input AttachmentInput) (model.Task, error) {
	return sc.mutateTask(taskID, func(task *model.Task, _ *userData, now time.Time) error {
		attachment, err := sc.newAttachment(input, now)
		if err != nil {
			return err
		}
		task.Attachments = append(task.Attachments, attachment)
		return nil
	})
}

func (sc *Scope) RemoveAttachment(taskID, attachmentID string) (model.Task, error) {
	return sc.mutateTask(taskID, func(task *model.Task, _ *userData, _ time.Time) error {
		for i := range task.Attachments {
			if task.Attachments[i].ID == attachmentID {
				task.Attachments = append(task.Attachments[:i], task.Attachments[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (sc *Scope) newChecklistItem(text string, now time.Time) (model.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChecklistItem{}, NewValidationError("text", "Text is required")
	}
	return model.ChecklistItem{ID: sc.store.newID(), Text: text, CreatedAt: now}, nil
}

func (sc *Scope) newAttachment(input AttachmentInput, now time.Time) (model.Attachment, error) {
	verr := &ValidationError{}
	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if !model.ValidAttachmentType(kind) {
		verr.add("type", "Unknown attachment type")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		verr.add("name", "Name is required")
	}
	if err := verr.err(); err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		ID:        sc.store.newID(),
		Type:      kind,
		Name:      name,
		URL:       strings.TrimSpace(input.URL),
		CreatedAt: now,
	}, nil
}
