package app

import (
	"context"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/query"
)

func (s *Session) ApplyFilters(ctx context.Context, patch filter.FiltersPatch) (model.Filters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return s.state.Filters, err
	}
	if err := s.state.Apply(patch); err != nil {
		return s.state.Filters, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return s.state.Filters, err
	}
	return s.state.Filters, nil
}

func (s *Session) UpdateSettings(ctx context.Context, patch filter.SettingsPatch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return s.state.Settings, err
	}
	if err := s.state.UpdateSettings(patch); err != nil {
		return s.state.Settings, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return s.state.Settings, err
	}
	return s.state.Settings, nil
}

// ResetFilters restores default filters and keeps settings.
func (s *Session) ResetFilters(ctx context.Context) (model.Filters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snapshot()
	if err != nil {
		return s.state.Filters, err
	}
	s.state.Filters = filter.DefaultFilters()
	if err := s.commit(ctx, prev); err != nil {
		return s.state.Filters, err
	}
	return s.state.Filters, nil
}

func (s *Session) options() query.Options {
	settings := s.state.Settings
	return query.Options{
		Now:       s.now(),
		Location:  settings.Location(),
		WeekStart: settings.WeekStart(),
		Language:  settings.Language,
	}
}

// FilteredTasks projects the user's tasks through the active filters.
func (s *Session) FilteredTasks() ([]model.Task, error) {
	s.mu.Lock()
	filters := s.state.Filters
	s.mu.Unlock()
	return s.FilteredBy(filters)
}

// FilteredBy projects the user's tasks through filters without touching
// the active ones.
func (s *Session) FilteredBy(filters model.Filters) ([]model.Task, error) {
	s.mu.Lock()
	opts := s.options()
	s.mu.Unlock()

	tasks, err := s.scope.Tasks()
	if err != nil {
		return nil, err
	}
	return query.Filtered(tasks, s.user.ID, filters, opts), nil
}

// Search ranks matching tasks. A limit of zero or less uses the configured
// search limit.
func (s *Session) Search(q string, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}
	tasks, err := s.scope.Tasks()
	if err != nil {
		return nil, err
	}
	return query.Search(tasks, s.user.ID, q, limit), nil
}

func (s *Session) Matrix() (query.Quadrants, error) {
	tasks, err := s.scope.Tasks()
	if err != nil {
		return query.Quadrants{}, err
	}
	return query.Matrix(tasks, s.user.ID, s.now()), nil
}

func (s *Session) Calendar(from, to time.Time) ([]query.Event, error) {
	tasks, err := s.scope.Tasks()
	if err != nil {
		return nil, err
	}
	lists, err := s.scope.Lists()
	if err != nil {
		return nil, err
	}
	return query.CalendarEvents(tasks, lists, s.user.ID, from, to), nil
}

func (s *Session) Stats() (query.Stats, error) {
	s.mu.Lock()
	opts := s.options()
	s.mu.Unlock()

	tasks, err := s.scope.Tasks()
	if err != nil {
		return query.Stats{}, err
	}
	lists, err := s.scope.Lists()
	if err != nil {
		return query.Stats{}, err
	}
	return query.Compute(tasks, lists, s.user.ID, opts), nil
}

func (s *Session) Trash() ([]model.Task, error) {
	tasks, err := s.scope.Tasks()
	if err != nil {
		return nil, err
	}
	return query.Trash(tasks, s.user.ID), nil
}

// Now is the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}
