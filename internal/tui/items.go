package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/query"
)

type listEntry struct {
	ID    string
	Name  string
	Count int
}

// buildListEntries prepends an "All lists" row and counts open tasks per list.
func buildListEntries(lists []model.List, tasks []model.Task) []listEntry {
	counts := make(map[string]int, len(lists))
	total := 0
	for _, task := range tasks {
		if task.Deleted || task.Completed {
			continue
		}
		counts[task.List]++
		total++
	}

	entries := make([]listEntry, 0, len(lists)+1)
	entries = append(entries, listEntry{Name: "All lists", Count: total})
	for _, list := range lists {
		entries = append(entries, listEntry{ID: list.ID, Name: list.Name, Count: counts[list.ID]})
	}
	return entries
}

func formatDue(task model.Task) string {
	if task.DueDate.IsZero() {
		return "no due date"
	}
	return task.DueDate.Format(dateLayout)
}

func formatTaskSummary(task model.Task) string {
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}
	star := " "
	if task.Important {
		star = "*"
	}
	return fmt.Sprintf("%s%s %s | %s | %s", check, star, task.Title, task.Priority, formatDue(task))
}

func formatRange(task model.Task) string {
	if task.StartDate == nil && task.EndDate == nil {
		return "n/a"
	}
	start, end := "-", "-"
	if task.StartDate != nil {
		start = task.StartDate.Format(dateLayout)
	}
	if task.EndDate != nil {
		end = task.EndDate.Format(dateLayout)
	}
	return start + ".." + end
}

func taskDetailLines(task model.Task, listName string) []string {
	state := "open"
	if task.Completed {
		state = "done"
	}
	if task.Deleted {
		state = "in trash"
	}
	important := "no"
	if task.Important {
		important = "yes"
	}

	lines := []string{
		task.Title,
		fmt.Sprintf("List: %s", listName),
		fmt.Sprintf("Priority: %s", task.Priority),
		fmt.Sprintf("Due: %s", formatDue(task)),
		fmt.Sprintf("Range: %s", formatRange(task)),
		fmt.Sprintf("State: %s | Important: %s", state, important),
	}
	if len(task.Attachments) > 0 {
		names := make([]string, 0, len(task.Attachments))
		for _, attachment := range task.Attachments {
			names = append(names, fmt.Sprintf("%s (%s)", attachment.Name, attachment.Type))
		}
		lines = append(lines, "Attachments: "+strings.Join(names, ", "))
	}
	if description := strings.TrimSpace(task.Description); description != "" {
		lines = append(lines, "", description)
	}
	return lines
}

func matrixLines(quadrants query.Quadrants) []string {
	lines := []string{}
	for _, quadrant := range query.QuadrantOrder {
		tasks := quadrants.Get(quadrant)
		lines = append(lines, fmt.Sprintf("%s (%d)", quadrant.Title(), len(tasks)))
		for _, task := range tasks {
			lines = append(lines, "  - "+task.Title)
		}
	}
	return lines
}

func statsLines(stats query.Stats) []string {
	lines := []string{
		fmt.Sprintf("Total: %d | Done: %d | Pending: %d | Overdue: %d", stats.Total, stats.Completed, stats.Pending, stats.Overdue),
		fmt.Sprintf("Completion: %.1f%%", stats.CompletionRate),
		fmt.Sprintf("Avg tasks/day: %.1f | Avg days to done: %.1f", stats.AvgTasksPerDay, stats.AvgDaysToDone),
		"",
		"By list:",
	}
	for _, entry := range stats.ByList {
		lines = append(lines, fmt.Sprintf("  %s: %d", entry.Name, entry.Count))
	}
	lines = append(lines, "By priority:")
	for _, entry := range stats.ByPriority {
		lines = append(lines, fmt.Sprintf("  %s: %d", entry.Name, entry.Count))
	}
	lines = append(lines, "This week:")
	for _, day := range stats.Week {
		lines = append(lines, fmt.Sprintf("  %s  +%d created  %d done", day.Label, day.Created, day.Completed))
	}
	return lines
}

func calendarLines(events []query.Event) []string {
	if len(events) == 0 {
		return []string{"Nothing scheduled this week"}
	}
	lines := make([]string, 0, len(events))
	for _, event := range events {
		when := event.Start.Format("Mon 01-02")
		if !event.End.Equal(event.Start) && event.End.Sub(event.Start) >= 24*time.Hour {
			when += " → " + event.End.Format("Mon 01-02")
		}
		mark := " "
		if event.Completed {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s  %s", mark, when, event.Title))
	}
	return lines
}
