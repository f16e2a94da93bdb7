package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

// Store holds every user's tasks and lists in memory. All access goes
// through a Scope obtained from ForUser.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userData
	now   func() time.Time
	newID func() string
}

type userData struct {
	tasks []model.Task
	lists []model.List
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(opts ...Option) *Store {
	s := &Store{
		users: map[string]*userData{},
		now:   time.Now,
		newID: newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Scope is a user-bound view of the store.
type Scope struct {
	store  *Store
	userID string
}

func (s *Store) ForUser(userID string) *Scope {
	return &Scope{store: s, userID: userID}
}

func (s *Store) Priorities() []model.Priority {
	return model.Priorities()
}

func (sc *Scope) UserID() string {
	return sc.userID
}

func (sc *Scope) read(fn func(data *userData) error) error {
	if sc.userID == "" {
		return ErrNoUser
	}
	sc.store.mu.RLock()
	defer sc.store.mu.RUnlock()

	data := sc.store.users[sc.userID]
	if data == nil {
		data = &userData{}
	}
	return fn(data)
}

func (sc *Scope) write(fn func(data *userData, now time.Time) error) error {
	if sc.userID == "" {
		return ErrNoUser
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()

	data := sc.store.users[sc.userID]
	if data == nil {
		data = &userData{}
		sc.store.users[sc.userID] = data
	}
	return fn(data, sc.store.now())
}

// Load replaces the user's rows. Rows owned by anyone else are dropped.
func (sc *Scope) Load(tasks []model.Task, lists []model.List) error {
	return sc.write(func(data *userData, _ time.Time) error {
		data.tasks = make([]model.Task, 0, len(tasks))
		for _, task := range tasks {
			if task.UserID != sc.userID {
				continue
			}
			data.tasks = append(data.tasks, task.Clone())
		}
		data.lists = make([]model.List, 0, len(lists))
		for _, list := range lists {
			if list.UserID != sc.userID {
				continue
			}
			data.lists = append(data.lists, list.Clone())
		}
		return nil
	})
}

// Clear drops all of the user's rows.
func (sc *Scope) Clear() error {
	if sc.userID == "" {
		return ErrNoUser
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	delete(sc.store.users, sc.userID)
	return nil
}

// SeedDefaultLists creates the default lists when the user has none.
func (sc *Scope) SeedDefaultLists() (bool, error) {
	seeded := false
	err := sc.write(func(data *userData, now time.Time) error {
		if len(data.lists) > 0 {
			return nil
		}
		data.lists = model.DefaultLists(sc.userID, now)
		seeded = true
		return nil
	})
	return seeded, err
}

func (d *userData) taskIndex(id string) int {
	for i := range d.tasks {
		if d.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *userData) listIndex(id string) int {
	for i := range d.lists {
		if d.lists[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *userData) hasList(id string) bool {
	return id == model.InboxListID || d.listIndex(id) >= 0
}
