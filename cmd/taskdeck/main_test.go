package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	got, err := parseDay("2024-03-15", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 3, 15, 23, 59, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got, err = parseDay("2024-03-15T08:30:00Z", loc)
	if err != nil || !got.Equal(time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected rfc3339 parse %v (%v)", got, err)
	}

	if got, err := parseDay("  ", loc); err != nil || !got.IsZero() {
		t.Fatalf("expected zero time for blank input")
	}
	if _, err := parseDay("15/03/2024", loc); err == nil {
		t.Fatalf("expected error for unknown layout")
	}

	ptr, err := parseOptionalDay("", loc)
	if err != nil || ptr != nil {
		t.Fatalf("expected nil for blank optional day")
	}
}

func TestWriteSnapshot(t *testing.T) {
	due := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	snapshot := model.Snapshot{
		Tasks: []model.Task{{ID: "t1", Title: "Write report", List: "work", Priority: model.PriorityUrgent, DueDate: due}},
		Lists: []model.List{{ID: "work", Name: "Work"}},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeSnapshot(&buf, snapshot, "json"); err != nil {
			t.Fatalf("write: %v", err)
		}
		var decoded model.Snapshot
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(decoded.Tasks) != 1 || decoded.Tasks[0].Title != "Write report" {
			t.Fatalf("unexpected tasks %+v", decoded.Tasks)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeSnapshot(&buf, snapshot, "yaml"); err != nil {
			t.Fatalf("write: %v", err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		for _, key := range []string{"tasks", "lists", "active_filters", "settings"} {
			if _, ok := doc[key]; !ok {
				t.Fatalf("missing key %q in %s", key, buf.String())
			}
		}
		if !strings.Contains(buf.String(), "due_date:") {
			t.Fatalf("expected snake_case task fields, got %s", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := writeSnapshot(&bytes.Buffer{}, snapshot, "csv"); err == nil {
			t.Fatalf("expected error for unknown format")
		}
	})
}

func TestFiltersPatchFromFlags(t *testing.T) {
	cmd := filterSetCmd
	if err := cmd.Flags().Set("status", model.StatusTrash); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("important", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	patch := filtersPatchFromFlags(cmd)
	if patch.Status == nil || *patch.Status != model.StatusTrash {
		t.Fatalf("expected status patch, got %+v", patch.Status)
	}
	if patch.ImportantOnly == nil || !*patch.ImportantOnly {
		t.Fatalf("expected important patch")
	}
	if patch.View != nil || patch.SortBy != nil || patch.List != nil {
		t.Fatalf("expected untouched flags to stay nil")
	}
}

func TestSettingsPatchKeepsOtherDefaults(t *testing.T) {
	cmd := settingsSetCmd
	if err := cmd.Flags().Set("default-priority", model.PriorityLow); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	patch := settingsPatchFromFlags(cmd, model.TaskDefaults{List: "work", Priority: model.PriorityNormal, View: model.ViewTasks})
	if patch.TaskDefaults == nil {
		t.Fatalf("expected task defaults patch")
	}
	if patch.TaskDefaults.List != "work" || patch.TaskDefaults.Priority != model.PriorityLow {
		t.Fatalf("unexpected defaults %+v", patch.TaskDefaults)
	}
	if patch.Profile != nil || patch.Theme != nil {
		t.Fatalf("expected untouched settings to stay nil")
	}
}

func TestListPatchRejectsUnknownValues(t *testing.T) {
	defer func() { listSort, listStatus, taskImportant = "", "", false }()

	listSort = "bogus"
	state := filter.Default()
	err := state.Apply(listPatchFromFlags())
	if err == nil {
		t.Fatalf("expected unknown sort key to be rejected")
	}
	if fields, ok := store.FieldErrors(err); !ok || fields["sort_by"] == "" {
		t.Fatalf("expected sort_by field error, got %v", err)
	}

	listSort = "dueDate"
	listStatus = model.StatusCompleted
	taskImportant = true
	state = filter.Default()
	if err := state.Apply(listPatchFromFlags()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.Filters.Status != model.StatusCompleted || !state.Filters.ImportantOnly {
		t.Fatalf("unexpected filters %+v", state.Filters)
	}
	if state.Filters.SortBy == "dueDate" {
		t.Fatalf("expected sort alias to be normalised")
	}
}
