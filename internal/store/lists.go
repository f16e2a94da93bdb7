package store

import (
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

type ListInput struct {
	ID    string
	Name  string
	Color string
	Icon  string
}

type ListPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

func (sc *Scope) CreateList(input ListInput) (model.List, error) {
	var created model.List
	err := sc.write(func(data *userData, now time.Time) error {
		id := strings.TrimSpace(input.ID)
		if id != "" && data.listIndex(id) >= 0 {
			return NewValidationError("id", "List id already exists")
		}
		if id == "" {
			id = sc.store.newID()
		}

		list := model.List{
			ID:        id,
			UserID:    sc.userID,
			Name:      strings.TrimSpace(input.Name),
			Color:     strings.TrimSpace(input.Color),
			Icon:      strings.TrimSpace(input.Icon),
			CreatedAt: now,
		}
		if list.Color == "" {
			list.Color = model.ListColors[len(data.lists)%len(model.ListColors)]
		}
		if list.Icon == "" {
			list.Icon = model.DefaultListIcon
		}
		if list.Name == "" {
			return NewValidationError("name", "Name is required")
		}

		data.lists = append(data.lists, list)
		created = list.Clone()
		return nil
	})
	return created, err
}

func (sc *Scope) UpdateList(id string, patch ListPatch) (model.List, error) {
	var updated model.List
	err := sc.write(func(data *userData, now time.Time) error {
		idx := data.listIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		working := data.lists[idx].Clone()
		if patch.Name != nil {
			working.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Color != nil {
			working.Color = strings.TrimSpace(*patch.Color)
		}
		if patch.Icon != nil {
			working.Icon = strings.TrimSpace(*patch.Icon)
		}
		if working.Name == "" {
			return NewValidationError("name", "Name is required")
		}
		working.UpdatedAt = &now
		data.lists[idx] = working
		updated = working.Clone()
		return nil
	})
	return updated, err
}

// DeleteList removes a list and moves its tasks to the inbox in the same
// locked step. It reports how many tasks were moved.
func (sc *Scope) DeleteList(id string) (int, error) {
	if id == model.InboxListID {
		return 0, ErrReservedList
	}
	moved := 0
	err := sc.write(func(data *userData, now time.Time) error {
		idx := data.listIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		for i := range data.tasks {
			if data.tasks[i].List != id {
				continue
			}
			data.tasks[i].List = model.InboxListID
			data.tasks[i].UpdatedAt = now
			moved++
		}
		data.lists = append(data.lists[:idx], data.lists[idx+1:]...)
		return nil
	})
	return moved, err
}

func (sc *Scope) List(id string) (model.List, error) {
	var list model.List
	err := sc.read(func(data *userData) error {
		idx := data.listIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		list = data.lists[idx].Clone()
		return nil
	})
	return list, err
}

func (sc *Scope) Lists() ([]model.List, error) {
	var lists []model.List
	err := sc.read(func(data *userData) error {
		lists = make([]model.List, 0, len(data.lists))
		for _, list := range data.lists {
			lists = append(lists, list.Clone())
		}
		return nil
	})
	return lists, err
}

// ListName looks up a list's display name. A missing list is not an error.
func (sc *Scope) ListName(id string) (string, bool) {
	name, ok := "", false
	_ = sc.read(func(data *userData) error {
		if idx := data.listIndex(id); idx >= 0 {
			name, ok = data.lists[idx].Name, true
		}
		return nil
	})
	return name, ok
}
