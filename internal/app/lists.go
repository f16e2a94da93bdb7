package app

import (
	"context"

	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

func (s *Session) CreateList(ctx context.Context, input store.ListInput) (model.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return model.List{}, err
	}
	created, err := s.scope.CreateList(input)
	if err != nil {
		return model.List{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return model.List{}, err
	}
	s.logger.Infow("list created", "user_id", s.user.ID, "list_id", created.ID)
	return created, nil
}

func (s *Session) UpdateList(ctx context.Context, id string, patch store.ListPatch) (model.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return model.List{}, err
	}
	updated, err := s.scope.UpdateList(id, patch)
	if err != nil {
		return model.List{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return model.List{}, err
	}
	return updated, nil
}

// DeleteList removes a list and reports how many tasks moved to the inbox.
// A selected list filter pointing at it is cleared.
func (s *Session) DeleteList(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return 0, err
	}
	moved, err := s.scope.DeleteList(id)
	if err != nil {
		return 0, err
	}
	if s.state.Filters.List == id {
		s.state.Filters.List = ""
	}
	if err := s.commit(ctx, prev); err != nil {
		return 0, err
	}
	s.logger.Infow("list deleted", "user_id", s.user.ID, "list_id", id, "moved_tasks", moved)
	return moved, nil
}

func (s *Session) Lists() ([]model.List, error) {
	return s.scope.Lists()
}

func (s *Session) ListName(id string) (string, bool) {
	return s.scope.ListName(id)
}
