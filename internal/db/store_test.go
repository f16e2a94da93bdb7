package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()
	user := createTestUser(t, store, "ada@example.com")

	if _, found, err := store.Load(ctx, user.ID); err != nil || found {
		t.Fatalf("expected no snapshot yet, got found=%v err=%v", found, err)
	}

	due := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	snapshot := model.Snapshot{
		Tasks: []model.Task{{
			ID:        "t1",
			UserID:    user.ID,
			Title:     "Pay rent",
			List:      model.InboxListID,
			Priority:  model.PriorityUrgent,
			DueDate:   due,
			Checklist: []model.ChecklistItem{{ID: "c1", Text: "transfer"}},
		}},
		Lists:         model.DefaultLists(user.ID, due),
		ActiveFilters: model.Filters{View: model.ViewMatrix, Search: "rent"},
		Settings:      model.Settings{Theme: "dark"},
	}
	if err := store.Save(ctx, user.ID, snapshot); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	snapshot.Settings.Theme = "light"
	if err := store.Save(ctx, user.ID, snapshot); err != nil {
		t.Fatalf("overwrite snapshot: %v", err)
	}

	loaded, found, err := store.Load(ctx, user.ID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !found {
		t.Fatalf("expected snapshot to be found")
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].Title != "Pay rent" || !loaded.Tasks[0].DueDate.Equal(due) {
		t.Fatalf("unexpected tasks: %+v", loaded.Tasks)
	}
	if loaded.Tasks[0].Checklist[0].Text != "transfer" {
		t.Fatalf("expected checklist to survive, got %+v", loaded.Tasks[0].Checklist)
	}
	if len(loaded.Lists) != 4 || loaded.ActiveFilters.Search != "rent" || loaded.Settings.Theme != "light" {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}
}

func TestUsersAndCurrentUser(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := createTestUser(t, store, "ada@example.com")
	if err := store.CreateUser(ctx, model.User{ID: "other", Email: "ADA@example.com", Name: "x", PasswordHash: "h", CreatedAt: time.Now()}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	found, err := store.UserByEmail(ctx, "Ada@Example.com")
	if err != nil {
		t.Fatalf("user by email: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected %q, got %q", user.ID, found.ID)
	}
	if _, err := store.UserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, ok, err := store.CurrentUserID(ctx); err != nil || ok {
		t.Fatalf("expected no current user, got ok=%v err=%v", ok, err)
	}
	if err := store.SetCurrentUser(ctx, user.ID); err != nil {
		t.Fatalf("set current user: %v", err)
	}
	current, ok, err := store.CurrentUserID(ctx)
	if err != nil || !ok || current != user.ID {
		t.Fatalf("expected current user %q, got %q ok=%v err=%v", user.ID, current, ok, err)
	}
	if err := store.ClearCurrentUser(ctx); err != nil {
		t.Fatalf("clear current user: %v", err)
	}
	if _, ok, _ := store.CurrentUserID(ctx); ok {
		t.Fatalf("expected current user to be cleared")
	}
}

func TestDeleteUserRemovesData(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()
	user := createTestUser(t, store, "ada@example.com")

	if err := store.Save(ctx, user.ID, model.Snapshot{}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := store.SetCurrentUser(ctx, user.ID); err != nil {
		t.Fatalf("set current user: %v", err)
	}
	if err := store.RecordTask(ctx, "created", model.Task{}, model.Task{ID: "t1", UserID: user.ID, Title: "x"}); err != nil {
		t.Fatalf("record task: %v", err)
	}

	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, found, _ := store.Load(ctx, user.ID); found {
		t.Fatalf("expected snapshot to be removed")
	}
	if _, ok, _ := store.CurrentUserID(ctx); ok {
		t.Fatalf("expected current user to be cleared")
	}
	history, err := store.ListHistory(ctx, user.ID, "t1")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected history to be removed, got %d", len(history))
	}
	if err := store.DeleteUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRecordTaskHistory(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	due := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	before := model.Task{ID: "t1", UserID: "u1", Title: "Draft", List: "inbox", Priority: "normal", DueDate: due}
	after := before
	after.Title = "Final"
	after.Priority = "urgent"

	if err := store.RecordTask(ctx, "created", model.Task{}, before); err != nil {
		t.Fatalf("record created: %v", err)
	}
	if err := store.RecordTask(ctx, "updated", before, after); err != nil {
		t.Fatalf("record updated: %v", err)
	}
	if err := store.RecordTask(ctx, "purged", after, model.Task{}); err != nil {
		t.Fatalf("record purged: %v", err)
	}

	history, err := store.ListHistory(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[0].EventType != "created" || history[2].EventType != "purged" {
		t.Fatalf("unexpected events: %+v", history)
	}
	want := "updated: title: 'Draft' -> 'Final'; priority: 'normal' -> 'urgent'"
	if history[1].Details != want {
		t.Fatalf("expected details %q, got %q", want, history[1].Details)
	}
	if !strings.HasPrefix(history[2].Details, "purged: title='Final'") {
		t.Fatalf("unexpected purge details: %q", history[2].Details)
	}

	other, err := store.ListHistory(ctx, "u2", "t1")
	if err != nil {
		t.Fatalf("list other history: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected history to be scoped by user, got %d", len(other))
	}
}

func TestFormatTaskDiffNoChanges(t *testing.T) {
	task := model.Task{Title: "same"}
	if got := formatTaskDiff("updated", task, task); got != "updated: no changes" {
		t.Fatalf("unexpected diff: %q", got)
	}
}

func TestSqliteDSN(t *testing.T) {
	if got := sqliteDSN(":memory:"); got != ":memory:" {
		t.Fatalf("expected memory dsn to pass through, got %q", got)
	}
	got := sqliteDSN("/tmp/taskdeck.db")
	if !strings.HasPrefix(got, "file:///tmp/taskdeck.db?") || !strings.Contains(got, "busy_timeout") {
		t.Fatalf("unexpected dsn: %q", got)
	}
}

func createTestUser(t *testing.T, store *Store, email string) model.User {
	t.Helper()
	user := model.User{ID: "user_" + email, Email: email, Name: "Ada", PasswordHash: "hash", CreatedAt: time.Now()}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
