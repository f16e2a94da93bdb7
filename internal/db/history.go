package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

func formatCreatedDetails(task model.Task) string {
	return fmt.Sprintf("created: title='%s' list=%s priority=%s due=%s important=%t", task.Title, task.List, task.Priority, formatDate(&task.DueDate), task.Important)
}

func formatPurgedDetails(task model.Task) string {
	return fmt.Sprintf("purged: title='%s' list=%s priority=%s due=%s", task.Title, task.List, task.Priority, formatDate(&task.DueDate))
}

func formatTaskDiff(event string, before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.List != after.List {
		changes = append(changes, formatChange("list", before.List, after.List))
	}
	if before.Priority != after.Priority {
		changes = append(changes, formatChange("priority", before.Priority, after.Priority))
	}
	if formatDate(&before.DueDate) != formatDate(&after.DueDate) {
		changes = append(changes, formatChange("due", formatDate(&before.DueDate), formatDate(&after.DueDate)))
	}
	if formatDate(before.StartDate) != formatDate(after.StartDate) {
		changes = append(changes, formatChange("start", formatDate(before.StartDate), formatDate(after.StartDate)))
	}
	if formatDate(before.EndDate) != formatDate(after.EndDate) {
		changes = append(changes, formatChange("end", formatDate(before.EndDate), formatDate(after.EndDate)))
	}
	if before.Completed != after.Completed {
		changes = append(changes, formatChange("completed", fmt.Sprint(before.Completed), fmt.Sprint(after.Completed)))
	}
	if before.Important != after.Important {
		changes = append(changes, formatChange("important", fmt.Sprint(before.Important), fmt.Sprint(after.Important)))
	}
	if before.Deleted != after.Deleted {
		changes = append(changes, formatChange("trashed", fmt.Sprint(before.Deleted), fmt.Sprint(after.Deleted)))
	}
	if formatChecklist(before.Checklist) != formatChecklist(after.Checklist) {
		changes = append(changes, formatChange("checklist", formatChecklist(before.Checklist), formatChecklist(after.Checklist)))
	}
	if formatAttachments(before.Attachments) != formatAttachments(after.Attachments) {
		changes = append(changes, formatChange("attachments", formatAttachments(before.Attachments), formatAttachments(after.Attachments)))
	}

	if len(changes) == 0 {
		return event + ": no changes"
	}

	return event + ": " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "none"
	}
	return value.Format("2006-01-02 15:04")
}

func formatChecklist(items []model.ChecklistItem) string {
	if len(items) == 0 {
		return "none"
	}
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d done", done, len(items))
}

func formatAttachments(attachments []model.Attachment) string {
	if len(attachments) == 0 {
		return "none"
	}
	names := make([]string, 0, len(attachments))
	for _, attachment := range attachments {
		names = append(names, attachment.Name)
	}
	return strings.Join(names, ",")
}
