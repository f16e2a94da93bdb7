package model

import (
	"testing"
	"time"
)

func TestTaskCloneIsIndependent(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	done := start.Add(time.Hour)
	task := Task{
		ID:          "t1",
		StartDate:   &start,
		Checklist:   []ChecklistItem{{ID: "c1", Text: "one", Completed: true, CompletedAt: &done}},
		Attachments: []Attachment{{ID: "a1", Type: AttachmentImage, Name: "pic"}},
	}

	clone := task.Clone()
	*clone.StartDate = start.Add(24 * time.Hour)
	*clone.Checklist[0].CompletedAt = done.Add(time.Hour)
	clone.Checklist[0].Text = "changed"
	clone.Attachments[0].Name = "changed"

	if !task.StartDate.Equal(start) {
		t.Fatalf("start date shared with clone")
	}
	if !task.Checklist[0].CompletedAt.Equal(done) || task.Checklist[0].Text != "one" {
		t.Fatalf("checklist shared with clone")
	}
	if task.Attachments[0].Name != "pic" {
		t.Fatalf("attachments shared with clone")
	}
}

func TestTaskState(t *testing.T) {
	if (Task{}).State() != TaskActive {
		t.Fatalf("expected active")
	}
	if (Task{Deleted: true}).State() != TaskTrashed {
		t.Fatalf("expected trashed")
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityRank(PriorityUrgent) >= PriorityRank(PriorityNormal) || PriorityRank(PriorityNormal) >= PriorityRank(PriorityLow) {
		t.Fatalf("expected urgent < normal < low")
	}
	if PriorityRank("someday") <= PriorityRank(PriorityLow) {
		t.Fatalf("expected unknown priority to rank last")
	}

	list := Priorities()
	list[0].Name = "mutated"
	if p, _ := PriorityByID(PriorityUrgent); p.Name != "Urgent" {
		t.Fatalf("Priorities must return a copy")
	}
}

func TestSettingsWeekStartAndLocation(t *testing.T) {
	if (Settings{StartOfWeek: "Monday"}).WeekStart() != time.Monday {
		t.Fatalf("expected monday")
	}
	if (Settings{StartOfWeek: "sunday"}).WeekStart() != time.Sunday {
		t.Fatalf("expected sunday")
	}
	if (Settings{}).Location() != time.Local {
		t.Fatalf("expected local zone for empty timezone")
	}
	if (Settings{Profile: Profile{Timezone: "Nowhere/City"}}).Location() != time.Local {
		t.Fatalf("expected local zone for unknown timezone")
	}
	if loc := (Settings{Profile: Profile{Timezone: "UTC"}}).Location(); loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %s", loc)
	}
}

func TestDefaultLists(t *testing.T) {
	lists := DefaultLists("u1", time.Time{})
	if lists[0].ID != InboxListID {
		t.Fatalf("expected inbox first")
	}
	for _, list := range lists {
		if list.UserID != "u1" || list.Name == "" || list.Color == "" {
			t.Fatalf("incomplete default list %+v", list)
		}
	}
}
