package query

import (
	"math"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

type Stats struct {
	Total          int             `json:"total"`
	Completed      int             `json:"completed"`
	Pending        int             `json:"pending"`
	Overdue        int             `json:"overdue"`
	CompletionRate float64         `json:"completion_rate"`
	ByList         []ListCount     `json:"by_list"`
	ByPriority     []PriorityCount `json:"by_priority"`
	Week           []DayActivity   `json:"week"`
	AvgTasksPerDay float64         `json:"avg_tasks_per_day"`
	AvgDaysToDone  float64         `json:"avg_days_to_done"`
}

type ListCount struct {
	ListID string `json:"list_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

type DayActivity struct {
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	Completed int       `json:"completed"`
	Created   int       `json:"created"`
}

// Compute summarises the user's non-deleted tasks as of opts.Now.
func Compute(tasks []model.Task, lists []model.List, userID string, opts Options) Stats {
	now := opts.now()
	loc := opts.location()

	live := []model.Task{}
	for _, task := range owned(tasks, userID) {
		if !task.Deleted {
			live = append(live, task)
		}
	}

	stats := Stats{Total: len(live)}
	for _, task := range live {
		if task.Completed {
			stats.Completed++
			continue
		}
		if !task.DueDate.IsZero() && task.DueDate.Before(now) {
			stats.Overdue++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = round1(float64(stats.Completed) / float64(stats.Total) * 100)
	}

	stats.ByList = []ListCount{}
	for _, list := range lists {
		if list.UserID != userID {
			continue
		}
		entry := ListCount{ListID: list.ID, Name: list.Name, Color: list.Color}
		for _, task := range live {
			if task.List == list.ID {
				entry.Count++
			}
		}
		stats.ByList = append(stats.ByList, entry)
	}

	for _, p := range model.Priorities() {
		entry := PriorityCount{Priority: p.ID, Name: p.Name, Color: p.Color}
		for _, task := range live {
			if task.Priority == p.ID {
				entry.Count++
			}
		}
		stats.ByPriority = append(stats.ByPriority, entry)
	}

	weekStart := StartOfWeek(now, opts.WeekStart)
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		next := day.AddDate(0, 0, 1)
		activity := DayActivity{Date: day, Label: day.Format("Mon")}
		for _, task := range live {
			if task.Completed {
				done := task.DueDate
				if task.CompletedAt != nil {
					done = *task.CompletedAt
				}
				if within(done.In(loc), day, next) {
					activity.Completed++
				}
			}
			if within(task.CreatedAt.In(loc), day, next) {
				activity.Created++
			}
		}
		stats.Week = append(stats.Week, activity)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	daysInMonth := monthEnd.Sub(monthStart).Hours() / 24
	createdThisMonth, doneThisMonth := 0, 0
	var completionDays float64
	for _, task := range live {
		if !within(task.CreatedAt.In(loc), monthStart, monthEnd) {
			continue
		}
		createdThisMonth++
		if task.Completed && task.CompletedAt != nil {
			doneThisMonth++
			completionDays += math.Floor(task.CompletedAt.Sub(task.CreatedAt).Hours() / 24)
		}
	}
	stats.AvgTasksPerDay = round1(float64(createdThisMonth) / math.Round(daysInMonth))
	if doneThisMonth > 0 {
		stats.AvgDaysToDone = round1(completionDays / float64(doneThisMonth))
	}
	return stats
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
