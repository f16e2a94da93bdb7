package app

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

// MockPersister records every saved snapshot.
type MockPersister struct {
	SaveFunc func(ctx context.Context, userID string, snapshot model.Snapshot) error
	LoadFunc func(ctx context.Context, userID string) (model.Snapshot, bool, error)
	saved    []model.Snapshot
}

var _ Persister = (*MockPersister)(nil)

func (m *MockPersister) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	m.saved = append(m.saved, snapshot)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, snapshot)
	}
	return nil
}

func (m *MockPersister) Load(ctx context.Context, userID string) (model.Snapshot, bool, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, userID)
	}
	return model.Snapshot{}, false, nil
}

func (m *MockPersister) last() model.Snapshot {
	return m.saved[len(m.saved)-1]
}

type MockHistory struct {
	events []string
}

var _ History = (*MockHistory)(nil)

func (m *MockHistory) RecordTask(_ context.Context, event string, _, _ model.Task) error {
	m.events = append(m.events, event)
	return nil
}

func (m *MockHistory) ListHistory(_ context.Context, _, _ string) ([]model.HistoryEntry, error) {
	return nil, nil
}

var testNow = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

func openTestSession(t *testing.T, persister *MockPersister) (*Session, *MockHistory) {
	t.Helper()
	history := &MockHistory{}
	st := store.New(store.WithClock(func() time.Time { return testNow }))
	session, err := Open(context.Background(), st, persister, model.User{ID: "u1", Name: "Ada"}, Options{
		History: history,
		Now:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session, history
}

func TestOpenSeedsNewUser(t *testing.T) {
	persister := &MockPersister{}
	session, _ := openTestSession(t, persister)

	lists, err := session.Lists()
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if len(lists) != 4 {
		t.Fatalf("expected default lists, got %d", len(lists))
	}
	state := session.State()
	if state.Filters != filter.DefaultFilters() {
		t.Fatalf("expected default filters, got %+v", state.Filters)
	}
	if state.Settings.Profile.DisplayName != "Ada" {
		t.Fatalf("expected display name from user, got %q", state.Settings.Profile.DisplayName)
	}
	if len(persister.saved) != 1 {
		t.Fatalf("expected initial snapshot to be saved, got %d saves", len(persister.saved))
	}
}

func TestOpenRestoresSnapshot(t *testing.T) {
	persister := &MockPersister{
		LoadFunc: func(_ context.Context, userID string) (model.Snapshot, bool, error) {
			return model.Snapshot{
				Tasks:         []model.Task{{ID: "t1", UserID: userID, Title: "Saved", List: "inbox", Priority: "low", DueDate: testNow}},
				Lists:         []model.List{{ID: "inbox", UserID: userID, Name: "Inbox"}},
				ActiveFilters: model.Filters{View: model.ViewMatrix, Priority: "all", SortBy: "title", Timeframe: "all", Status: "all"},
				Settings:      filter.DefaultSettings(),
			}, true, nil
		},
	}
	session, _ := openTestSession(t, persister)

	task, err := session.Task("t1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Title != "Saved" {
		t.Fatalf("unexpected task %+v", task)
	}
	if session.State().Filters.View != model.ViewMatrix {
		t.Fatalf("expected restored filters")
	}
	if len(persister.saved) != 0 {
		t.Fatalf("expected no save on restore, got %d", len(persister.saved))
	}
}

func TestOpenFailsOnLoadError(t *testing.T) {
	persister := &MockPersister{
		LoadFunc: func(context.Context, string) (model.Snapshot, bool, error) {
			return model.Snapshot{}, false, errors.New("disk gone")
		},
	}
	st := store.New()
	if _, err := Open(context.Background(), st, persister, model.User{ID: "u1"}, Options{}); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestEveryMutationSaves(t *testing.T) {
	persister := &MockPersister{}
	session, history := openTestSession(t, persister)
	ctx := context.Background()

	created, err := session.CreateTask(ctx, store.TaskInput{Title: "Pay rent", DueDate: testNow.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.List != model.InboxListID || created.Priority != model.PriorityNormal {
		t.Fatalf("expected task defaults from settings, got list=%q priority=%q", created.List, created.Priority)
	}

	steps := []func() error{
		func() error { _, err := session.ToggleComplete(ctx, created.ID); return err },
		func() error { _, err := session.ToggleImportant(ctx, created.ID); return err },
		func() error { _, err := session.AddChecklistItem(ctx, created.ID, "transfer"); return err },
		func() error { _, err := session.Trash(ctx, created.ID); return err },
		func() error { _, err := session.Restore(ctx, created.ID); return err },
		func() error { _, err := session.Purge(ctx, created.ID); return err },
	}
	for i, step := range steps {
		before := len(persister.saved)
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if len(persister.saved) != before+1 {
			t.Fatalf("step %d: expected one save, got %d", i, len(persister.saved)-before)
		}
	}
	if len(persister.last().Tasks) != 0 {
		t.Fatalf("expected purged task to be absent from snapshot")
	}

	want := []string{"created", "completed", "starred", "checklist", "trashed", "restored", "purged"}
	if len(history.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, history.events)
	}
	for i := range want {
		if history.events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, history.events)
		}
	}
}

func TestFailedMutationDoesNotSave(t *testing.T) {
	persister := &MockPersister{}
	session, history := openTestSession(t, persister)
	before := len(persister.saved)

	if _, err := session.ToggleComplete(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := session.CreateTask(context.Background(), store.TaskInput{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(persister.saved) != before || len(history.events) != 0 {
		t.Fatalf("expected no saves or history for failed mutations")
	}
}

func TestSaveErrorIsReturned(t *testing.T) {
	persister := &MockPersister{}
	session, _ := openTestSession(t, persister)
	persister.SaveFunc = func(context.Context, string, model.Snapshot) error {
		return errors.New("read-only")
	}
	if _, err := session.CreateList(context.Background(), store.ListInput{Name: "Errands"}); err == nil {
		t.Fatalf("expected save error to surface")
	}
}

func TestSaveErrorRollsBack(t *testing.T) {
	persister := &MockPersister{}
	session, history := openTestSession(t, persister)
	ctx := context.Background()

	created, err := session.CreateTask(ctx, store.TaskInput{Title: "Report", List: "work", DueDate: testNow})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	before, err := session.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	events := len(history.events)

	persister.SaveFunc = func(context.Context, string, model.Snapshot) error {
		return errors.New("read-only")
	}

	status := model.StatusCompleted
	theme := "dark"
	steps := map[string]func() error{
		"create list": func() error {
			_, err := session.CreateList(ctx, store.ListInput{Name: "Errands"})
			return err
		},
		"delete list": func() error { _, err := session.DeleteList(ctx, "work"); return err },
		"create task": func() error {
			_, err := session.CreateTask(ctx, store.TaskInput{Title: "Other", DueDate: testNow})
			return err
		},
		"complete":  func() error { _, err := session.ToggleComplete(ctx, created.ID); return err },
		"checklist": func() error { _, err := session.AddChecklistItem(ctx, created.ID, "draft"); return err },
		"purge":     func() error { _, err := session.Purge(ctx, created.ID); return err },
		"filters":   func() error { _, err := session.ApplyFilters(ctx, filter.FiltersPatch{Status: &status}); return err },
		"settings":  func() error { _, err := session.UpdateSettings(ctx, filter.SettingsPatch{Theme: &theme}); return err },
		"reset": func() error { _, err := session.ResetFilters(ctx); return err },
	}
	for name, step := range steps {
		t.Run(name, func(t *testing.T) {
			if err := step(); err == nil {
				t.Fatalf("expected save error")
			}
			after, err := session.Snapshot()
			if err != nil {
				t.Fatalf("snapshot: %v", err)
			}
			if !reflect.DeepEqual(before, after) {
				t.Fatalf("state changed after failed save\nbefore: %+v\nafter:  %+v", before, after)
			}
		})
	}

	lists, err := session.Lists()
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if len(lists) != len(model.DefaultLists("u1", testNow)) {
		t.Fatalf("expected default lists only, got %d", len(lists))
	}
	if len(history.events) != events {
		t.Fatalf("expected no history for failed saves, got %v", history.events[events:])
	}
}

func TestDeleteListClearsSelectedFilter(t *testing.T) {
	persister := &MockPersister{}
	session, _ := openTestSession(t, persister)
	ctx := context.Background()

	work := "work"
	if _, err := session.ApplyFilters(ctx, filter.FiltersPatch{List: &work}); err != nil {
		t.Fatalf("apply filters: %v", err)
	}
	if _, err := session.CreateTask(ctx, store.TaskInput{Title: "Report", List: "work", DueDate: testNow}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	moved, err := session.DeleteList(ctx, "work")
	if err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 task moved, got %d", moved)
	}
	if session.State().Filters.List != "" {
		t.Fatalf("expected list filter to be cleared")
	}
	snapshot := persister.last()
	if snapshot.Tasks[0].List != model.InboxListID || len(snapshot.Lists) != 3 {
		t.Fatalf("unexpected snapshot after delete: %+v", snapshot)
	}
}

func TestViewsUseActiveFilters(t *testing.T) {
	persister := &MockPersister{}
	session, _ := openTestSession(t, persister)
	ctx := context.Background()

	for _, in := range []store.TaskInput{
		{Title: "Buy milk", DueDate: testNow.Add(time.Hour), Important: true},
		{Title: "Milk delivery", DueDate: testNow.Add(72 * time.Hour), Priority: model.PriorityUrgent},
		{Title: "Buy bread", DueDate: testNow.Add(2 * time.Hour)},
	} {
		if _, err := session.CreateTask(ctx, in); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	urgent := model.PriorityUrgent
	if _, err := session.ApplyFilters(ctx, filter.FiltersPatch{Priority: &urgent}); err != nil {
		t.Fatalf("apply filters: %v", err)
	}
	filtered, err := session.FilteredTasks()
	if err != nil {
		t.Fatalf("filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "Milk delivery" {
		t.Fatalf("unexpected filtered tasks: %+v", filtered)
	}

	results, err := session.Search("milk", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 || results[0].Title != "Milk delivery" {
		t.Fatalf("unexpected search results: %+v", results)
	}

	quadrants, err := session.Matrix()
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(quadrants.DoFirst) != 1 || len(quadrants.Delegate) != 1 || len(quadrants.Eliminate) != 1 {
		t.Fatalf("unexpected quadrants: %+v", quadrants)
	}

	stats, err := session.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected 3 tasks in stats, got %d", stats.Total)
	}

	events, err := session.Calendar(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestCloseResetsState(t *testing.T) {
	persister := &MockPersister{}
	session, _ := openTestSession(t, persister)
	ctx := context.Background()

	dark := "dark"
	if _, err := session.UpdateSettings(ctx, filter.SettingsPatch{Theme: &dark}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if persister.last().Settings.Theme != "dark" {
		t.Fatalf("expected settings to be saved")
	}

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if session.State() != filter.Default() {
		t.Fatalf("expected defaults after close")
	}
	tasks, err := session.Tasks()
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected rows to be cleared")
	}
}
