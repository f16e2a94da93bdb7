package store

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)}
	seq := 0
	s := New(WithClock(clock.Now), WithIDs(func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}))
	return s, clock
}

func validInput(title string, due time.Time) TaskInput {
	return TaskInput{Title: title, List: model.InboxListID, Priority: model.PriorityNormal, DueDate: due}
}

func TestCreateTaskAppliesDefaults(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")

	created, err := scope.CreateTask(validInput("  Pay rent  ", clock.now.Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected task ID to be set")
	}
	if created.Title != "Pay rent" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.UserID != "u1" {
		t.Fatalf("expected owner u1, got %q", created.UserID)
	}
	if created.Completed || created.Deleted || created.Important {
		t.Fatalf("expected flags to default to false, got %+v", created)
	}
	if created.Checklist == nil || len(created.Checklist) != 0 {
		t.Fatalf("expected empty checklist, got %v", created.Checklist)
	}
	if !created.CreatedAt.Equal(clock.now) || !created.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected timestamps to be stamped")
	}
}

func TestCreateTaskCallerFieldsOverrideDefaults(t *testing.T) {
	s, clock := newTestStore(t)
	input := validInput("Done already", clock.now)
	input.Completed = true
	input.Important = true
	input.Checklist = []string{"one", "two"}

	created, err := s.ForUser("u1").CreateTask(input)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !created.Completed || created.CompletedAt == nil {
		t.Fatalf("expected completed task with completed_at, got %+v", created)
	}
	if !created.Important {
		t.Fatalf("expected important task")
	}
	if len(created.Checklist) != 2 || created.Checklist[1].Text != "two" {
		t.Fatalf("unexpected checklist: %+v", created.Checklist)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	start := clock.now.Add(48 * time.Hour)
	end := clock.now

	cases := []struct {
		name  string
		input TaskInput
		field string
		msg   string
	}{
		{"title", TaskInput{Title: "  ", List: "inbox", Priority: "low", DueDate: clock.now}, "title", "Title is required"},
		{"list", TaskInput{Title: "x", Priority: "low", DueDate: clock.now}, "list", "List is required"},
		{"unknown list", TaskInput{Title: "x", List: "nope", Priority: "low", DueDate: clock.now}, "list", "List not found"},
		{"priority", TaskInput{Title: "x", List: "inbox", DueDate: clock.now}, "priority", "Priority is required"},
		{"unknown priority", TaskInput{Title: "x", List: "inbox", Priority: "meh", DueDate: clock.now}, "priority", "Unknown priority"},
		{"due", TaskInput{Title: "x", List: "inbox", Priority: "low"}, "due_date", "Due date is required"},
		{"range", TaskInput{Title: "x", List: "inbox", Priority: "low", DueDate: clock.now, StartDate: &start, EndDate: &end}, "end_date", "End date must be after start date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scope.CreateTask(tc.input)
			fields, ok := FieldErrors(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if fields[tc.field] != tc.msg {
				t.Fatalf("expected %s=%q, got %v", tc.field, tc.msg, fields)
			}
		})
	}

	tasks, err := scope.Tasks()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected invalid tasks to be rejected, got %d", len(tasks))
	}
}

func TestCreateTaskRejectsDuplicateID(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	input := validInput("first", clock.now)
	input.ID = "fixed"
	if _, err := scope.CreateTask(input); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := scope.CreateTask(input); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}
}

func TestUpdateTaskMergesPatch(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	created, err := scope.CreateTask(validInput("Draft", clock.now))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	clock.advance(time.Minute)
	title := "Final"
	done := true
	updated, err := scope.UpdateTask(created.ID, TaskPatch{Title: &title, Completed: &done})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != "Final" || updated.Priority != model.PriorityNormal {
		t.Fatalf("unexpected merge result: %+v", updated)
	}
	if updated.CompletedAt == nil || !updated.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected completed_at and updated_at to be stamped")
	}

	empty := ""
	if _, err := scope.UpdateTask(created.ID, TaskPatch{Title: &empty}); err == nil {
		t.Fatalf("expected empty title to be rejected")
	}
	reloaded, err := scope.Task(created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if reloaded.Title != "Final" {
		t.Fatalf("expected rejected patch to leave task untouched, got %q", reloaded.Title)
	}
}

func TestMissingTaskReturnsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	scope := s.ForUser("u1")
	title := "x"

	if _, err := scope.UpdateTask("missing", TaskPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := scope.ToggleComplete("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := scope.Purge("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	s, clock := newTestStore(t)
	owner := s.ForUser("u1")
	other := s.ForUser("u2")

	created, err := owner.CreateTask(validInput("Private", clock.now))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := other.Task(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if _, err := other.Trash(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user trash, got %v", err)
	}
	tasks, err := other.Tasks()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks for other user, got %d", len(tasks))
	}

	reloaded, err := owner.Task(created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if reloaded.Deleted {
		t.Fatalf("expected task to be untouched by other user")
	}
}

func TestTrashRestoreRoundTrip(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	before, err := scope.CreateTask(validInput("Round trip", clock.now))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	clock.advance(time.Minute)
	trashed, err := scope.Trash(before.ID)
	if err != nil {
		t.Fatalf("trash task: %v", err)
	}
	if !trashed.Deleted || trashed.DeletedAt == nil || trashed.State() != model.TaskTrashed {
		t.Fatalf("expected trashed task, got %+v", trashed)
	}

	clock.advance(time.Minute)
	restored, err := scope.Restore(before.ID)
	if err != nil {
		t.Fatalf("restore task: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Fatalf("expected deleted_at to be cleared")
	}
	if !restored.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected updated_at to move forward")
	}

	restored.UpdatedAt = before.UpdatedAt
	if !reflect.DeepEqual(before, restored) {
		t.Fatalf("expected restored task to match original\nbefore: %+v\nafter:  %+v", before, restored)
	}
}

func TestToggleTwiceReturnsToOriginal(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	created, err := scope.CreateTask(validInput("Toggle", clock.now))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	t.Run("important", func(t *testing.T) {
		first, err := scope.ToggleImportant(created.ID)
		if err != nil {
			t.Fatalf("toggle important: %v", err)
		}
		if !first.Important {
			t.Fatalf("expected important after first toggle")
		}
		second, err := scope.ToggleImportant(created.ID)
		if err != nil {
			t.Fatalf("toggle important: %v", err)
		}
		if second.Important != created.Important {
			t.Fatalf("expected important to return to %v", created.Important)
		}
	})

	t.Run("complete", func(t *testing.T) {
		first, err := scope.ToggleComplete(created.ID)
		if err != nil {
			t.Fatalf("toggle complete: %v", err)
		}
		if !first.Completed || first.CompletedAt == nil {
			t.Fatalf("expected completed task with completed_at")
		}
		second, err := scope.ToggleComplete(created.ID)
		if err != nil {
			t.Fatalf("toggle complete: %v", err)
		}
		if second.Completed || second.CompletedAt != nil {
			t.Fatalf("expected completed and completed_at to be cleared")
		}
	})
}

func TestDeleteListReassignsTasks(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	otherUser := s.ForUser("u2")

	work, err := scope.CreateList(ListInput{Name: "Work"})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	otherWork, err := otherUser.CreateList(ListInput{ID: work.ID, Name: "Their work"})
	if err != nil {
		t.Fatalf("create other list: %v", err)
	}

	input := validInput("Report", clock.now)
	input.List = work.ID
	task, err := scope.CreateTask(input)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	input.List = otherWork.ID
	otherTask, err := otherUser.CreateTask(input)
	if err != nil {
		t.Fatalf("create other task: %v", err)
	}

	moved, err := scope.DeleteList(work.ID)
	if err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 task moved, got %d", moved)
	}

	reloaded, err := scope.Task(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if reloaded.List != model.InboxListID {
		t.Fatalf("expected task to move to inbox, got %q", reloaded.List)
	}
	if _, err := scope.List(work.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected list to be removed, got %v", err)
	}

	untouched, err := otherUser.Task(otherTask.ID)
	if err != nil {
		t.Fatalf("get other task: %v", err)
	}
	if untouched.List != otherWork.ID {
		t.Fatalf("expected other user's task to keep its list, got %q", untouched.List)
	}
}

func TestDeleteInboxIsRejected(t *testing.T) {
	s, _ := newTestStore(t)
	scope := s.ForUser("u1")
	if _, err := scope.SeedDefaultLists(); err != nil {
		t.Fatalf("seed lists: %v", err)
	}
	if _, err := scope.DeleteList(model.InboxListID); !errors.Is(err, ErrReservedList) {
		t.Fatalf("expected ErrReservedList, got %v", err)
	}
}

func TestSeedDefaultListsOnlyOnce(t *testing.T) {
	s, _ := newTestStore(t)
	scope := s.ForUser("u1")

	seeded, err := scope.SeedDefaultLists()
	if err != nil || !seeded {
		t.Fatalf("expected lists to be seeded, got %v %v", seeded, err)
	}
	seeded, err = scope.SeedDefaultLists()
	if err != nil || seeded {
		t.Fatalf("expected second seed to be skipped, got %v %v", seeded, err)
	}
	lists, err := scope.Lists()
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	if len(lists) != 4 {
		t.Fatalf("expected 4 default lists, got %d", len(lists))
	}
	if name, ok := scope.ListName("personal"); !ok || name != "Personal" {
		t.Fatalf("expected Personal list, got %q %v", name, ok)
	}
	if name, ok := scope.ListName("gone"); ok || name != "" {
		t.Fatalf("expected missing list lookup to be empty, got %q", name)
	}
}

func TestChecklistAndAttachments(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	task, err := scope.CreateTask(validInput("Trip", clock.now))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	clock.advance(time.Minute)
	task, err = scope.AddChecklistItem(task.ID, "Pack bags")
	if err != nil {
		t.Fatalf("add checklist item: %v", err)
	}
	if len(task.Checklist) != 1 || !task.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected one checklist item and stamped parent, got %+v", task)
	}
	itemID := task.Checklist[0].ID

	task, err = scope.ToggleChecklistItem(task.ID, itemID)
	if err != nil {
		t.Fatalf("toggle checklist item: %v", err)
	}
	if !task.Checklist[0].Completed || task.Checklist[0].CompletedAt == nil {
		t.Fatalf("expected checklist item to be completed")
	}
	if _, err := scope.ToggleChecklistItem(task.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing item, got %v", err)
	}

	task, err = scope.AddAttachment(task.ID, AttachmentInput{Type: "IMAGE", Name: "ticket.png", URL: "file:///tmp/ticket.png"})
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(task.Attachments) != 1 || task.Attachments[0].Type != model.AttachmentImage {
		t.Fatalf("unexpected attachments: %+v", task.Attachments)
	}
	if _, err := scope.AddAttachment(task.ID, AttachmentInput{Type: "video", Name: "x"}); err == nil {
		t.Fatalf("expected unknown attachment type to be rejected")
	}

	task, err = scope.RemoveAttachment(task.ID, task.Attachments[0].ID)
	if err != nil {
		t.Fatalf("remove attachment: %v", err)
	}
	task, err = scope.RemoveChecklistItem(task.ID, itemID)
	if err != nil {
		t.Fatalf("remove checklist item: %v", err)
	}
	if len(task.Attachments) != 0 || len(task.Checklist) != 0 {
		t.Fatalf("expected nested items to be removed, got %+v", task)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	input := validInput("Copy", clock.now)
	input.Checklist = []string{"a"}
	created, err := scope.CreateTask(input)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks, err := scope.Tasks()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	tasks[0].Title = "mutated"
	tasks[0].Checklist[0].Text = "mutated"

	reloaded, err := scope.Task(created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if reloaded.Title != "Copy" || reloaded.Checklist[0].Text != "a" {
		t.Fatalf("expected store state to be isolated from callers, got %+v", reloaded)
	}
}

func TestPurgeRemovesTask(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	created, err := scope.CreateTask(validInput("Gone", clock.now))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := scope.Purge(created.ID); err != nil {
		t.Fatalf("purge task: %v", err)
	}
	if _, err := scope.Task(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected purged task to be gone, got %v", err)
	}
}

func TestLoadDropsForeignRows(t *testing.T) {
	s, clock := newTestStore(t)
	scope := s.ForUser("u1")
	err := scope.Load(
		[]model.Task{{ID: "a", UserID: "u1", Title: "mine", DueDate: clock.now}, {ID: "b", UserID: "u2", Title: "theirs"}},
		[]model.List{{ID: "l", UserID: "u2", Name: "theirs"}},
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tasks, _ := scope.Tasks()
	lists, _ := scope.Lists()
	if len(tasks) != 1 || tasks[0].ID != "a" || len(lists) != 0 {
		t.Fatalf("expected only owned rows, got %v %v", tasks, lists)
	}

	if err := scope.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	tasks, _ = scope.Tasks()
	if len(tasks) != 0 {
		t.Fatalf("expected clear to drop rows")
	}
}

func TestEmptyUserScope(t *testing.T) {
	s, clock := newTestStore(t)
	if _, err := s.ForUser("").CreateTask(validInput("x", clock.now)); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}
