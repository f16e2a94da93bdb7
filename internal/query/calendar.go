package query

import (
	"slices"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

const DefaultEventColor = "#4299E1"

type Event struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Color     string    `json:"color"`
	List      string    `json:"list"`
	Completed bool      `json:"completed"`
	Important bool      `json:"important"`
}

// CalendarEvents turns the user's non-deleted tasks into events that overlap
// [from, to]. A zero bound leaves that side open.
func CalendarEvents(tasks []model.Task, lists []model.List, userID string, from, to time.Time) []Event {
	colors := make(map[string]string, len(lists))
	for _, list := range lists {
		if list.UserID == userID {
			colors[list.ID] = list.Color
		}
	}

	events := []Event{}
	for _, task := range owned(tasks, userID) {
		if task.Deleted {
			continue
		}
		start := task.DueDate
		if task.StartDate != nil {
			start = *task.StartDate
		}
		end := task.DueDate
		if task.EndDate != nil {
			end = *task.EndDate
		}
		if start.IsZero() && end.IsZero() {
			continue
		}
		if start.IsZero() {
			start = end
		}
		if end.IsZero() || end.Before(start) {
			end = start
		}
		if !from.IsZero() && end.Before(from) {
			continue
		}
		if !to.IsZero() && start.After(to) {
			continue
		}

		color := colors[task.List]
		if color == "" {
			color = DefaultEventColor
		}
		events = append(events, Event{
			TaskID:    task.ID,
			Title:     task.Title,
			Start:     start,
			End:       end,
			Color:     color,
			List:      task.List,
			Completed: task.Completed,
			Important: task.Important,
		})
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})
	return events
}
