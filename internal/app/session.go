// Package app binds one signed-in user to the in-memory store, their filter
// state and the snapshot persister. Every mutation is saved before it
// returns.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/query"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

type Persister interface {
	Save(ctx context.Context, userID string, snapshot model.Snapshot) error
	Load(ctx context.Context, userID string) (model.Snapshot, bool, error)
}

type History interface {
	RecordTask(ctx context.Context, event string, before, after model.Task) error
	ListHistory(ctx context.Context, userID, taskID string) ([]model.HistoryEntry, error)
}

type Options struct {
	History     History
	Logger      *zap.SugaredLogger
	Now         func() time.Time
	SearchLimit int
}

type Session struct {
	mu          sync.Mutex
	user        model.User
	scope       *store.Scope
	state       filter.State
	persister   Persister
	history     History
	logger      *zap.SugaredLogger
	now         func() time.Time
	searchLimit int
}

// Open loads the user's snapshot, or seeds default lists and filters when
// there is none.
func Open(ctx context.Context, st *store.Store, persister Persister, user model.User, opts Options) (*Session, error) {
	if user.ID == "" {
		return nil, store.ErrNoUser
	}
	s := &Session{
		user:        user,
		scope:       st.ForUser(user.ID),
		persister:   persister,
		history:     opts.History,
		logger:      opts.Logger,
		now:         opts.Now,
		searchLimit: opts.SearchLimit,
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.searchLimit <= 0 {
		s.searchLimit = query.DefaultSearchLimit
	}

	snapshot, found, err := persister.Load(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if found {
		if err := s.scope.Load(snapshot.Tasks, snapshot.Lists); err != nil {
			return nil, err
		}
		s.state = filter.Restore(snapshot.ActiveFilters, snapshot.Settings)
	} else {
		s.state = filter.ForUser(user.Name)
	}

	seeded, err := s.scope.SeedDefaultLists()
	if err != nil {
		return nil, err
	}
	if !found || seeded {
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
	}

	s.logger.Infow("session opened", "user_id", user.ID, "restored", found, "seeded_lists", seeded)
	return s, nil
}

// Close resets filters and settings and drops the user's rows from memory.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reset()
	s.logger.Infow("session closed", "user_id", s.user.ID)
	return s.scope.Clear()
}

func (s *Session) User() model.User {
	return s.user
}

func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() (model.Snapshot, error) {
	tasks, err := s.scope.Tasks()
	if err != nil {
		return model.Snapshot{}, err
	}
	lists, err := s.scope.Lists()
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		Tasks:         tasks,
		Lists:         lists,
		ActiveFilters: s.state.Filters,
		Settings:      s.state.Settings,
	}, nil
}

// persist must be called with mu held.
func (s *Session) persist(ctx context.Context) error {
	snapshot, err := s.snapshot()
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, s.user.ID, snapshot); err != nil {
		s.logger.Errorw("save snapshot failed", "user_id", s.user.ID, "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// commit saves the current state. When the save fails the scope and the
// filter state are put back to prev. Must be called with mu held.
func (s *Session) commit(ctx context.Context, prev model.Snapshot) error {
	err := s.persist(ctx)
	if err == nil {
		return nil
	}
	if rerr := s.scope.Load(prev.Tasks, prev.Lists); rerr != nil {
		s.logger.Errorw("rollback failed", "user_id", s.user.ID, "error", rerr)
	}
	s.state.Filters = prev.ActiveFilters
	s.state.Settings = prev.Settings
	return err
}

func (s *Session) record(ctx context.Context, event string, before, after model.Task) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordTask(ctx, event, before, after); err != nil {
		s.logger.Warnw("record history failed", "user_id", s.user.ID, "event", event, "error", err)
	}
}

func (s *Session) History(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	if _, err := s.scope.Task(taskID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []model.HistoryEntry{}, nil
	}
	return s.history.ListHistory(ctx, s.user.ID, taskID)
}
