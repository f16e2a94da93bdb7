// Package query derives view-ready task sequences from store state. Every
// function is pure and drops tasks that the given user does not own.
package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

// Options carries the clock and locale a projection is evaluated against.
type Options struct {
	Now       time.Time
	Location  *time.Location
	WeekStart time.Weekday
	Language  string
}

func (o Options) now() time.Time {
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}
	return now.In(o.location())
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func owned(tasks []model.Task, userID string) []model.Task {
	result := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if userID != "" && task.UserID == userID {
			result = append(result, task)
		}
	}
	return result
}

// Filtered applies status, search, list, timeframe and priority filters in
// that order and sorts by the filter's sort key. Ties keep their input order.
func Filtered(tasks []model.Task, userID string, filters model.Filters, opts Options) []model.Task {
	result := owned(tasks, userID)
	result = slices.DeleteFunc(result, func(task model.Task) bool {
		return !matchesStatus(task, filters.Status) || (filters.ImportantOnly && !task.Important)
	})

	if search := strings.ToLower(strings.TrimSpace(filters.Search)); search != "" {
		result = slices.DeleteFunc(result, func(task model.Task) bool {
			return !strings.Contains(strings.ToLower(task.Title), search) &&
				!strings.Contains(strings.ToLower(task.Description), search)
		})
	}

	if filters.List != "" {
		result = slices.DeleteFunc(result, func(task model.Task) bool {
			return task.List != filters.List
		})
	}

	if filters.Timeframe != "" && filters.Timeframe != model.TimeframeAll {
		from, to, ok := timeframeBounds(filters.Timeframe, opts)
		if ok {
			result = slices.DeleteFunc(result, func(task model.Task) bool {
				if task.DueDate.IsZero() {
					return true
				}
				return task.DueDate.Before(from) || !task.DueDate.Before(to)
			})
		}
	}

	if filters.Priority != "" && filters.Priority != model.PriorityAll {
		result = slices.DeleteFunc(result, func(task model.Task) bool {
			return task.Priority != filters.Priority
		})
	}

	Sort(result, filters.SortBy, opts.Language)
	return result
}

// Sort orders tasks in place by key. Unknown keys leave the order as is.
func Sort(tasks []model.Task, key, lang string) {
	switch key {
	case model.SortDueDate:
		slices.SortStableFunc(tasks, compareDue)
	case model.SortPriority:
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return cmp.Compare(model.PriorityRank(a.Priority), model.PriorityRank(b.Priority))
		})
	case model.SortTitle:
		collator := collate.New(languageTag(lang), collate.IgnoreCase)
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return collator.CompareString(a.Title, b.Title)
		})
	}
}

// compareDue puts tasks without a due date last.
func compareDue(a, b model.Task) int {
	switch {
	case a.DueDate.IsZero() && b.DueDate.IsZero():
		return 0
	case a.DueDate.IsZero():
		return 1
	case b.DueDate.IsZero():
		return -1
	}
	return a.DueDate.Compare(b.DueDate)
}

func matchesStatus(task model.Task, status string) bool {
	switch status {
	case model.StatusActive:
		return !task.Deleted && !task.Completed
	case model.StatusCompleted:
		return !task.Deleted && task.Completed
	case model.StatusTrash:
		return task.Deleted
	default:
		return !task.Deleted
	}
}

// timeframeBounds returns the half-open interval [from, to) for a timeframe.
func timeframeBounds(timeframe string, opts Options) (time.Time, time.Time, bool) {
	now := opts.now()
	today := startOfDay(now)
	switch timeframe {
	case model.TimeframeToday:
		return today, today.AddDate(0, 0, 1), true
	case model.TimeframeWeek:
		start := StartOfWeek(now, opts.WeekStart)
		return start, start.AddDate(0, 0, 7), true
	case model.TimeframeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of t's week.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func languageTag(lang string) language.Tag {
	if lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}

// Trash returns the user's trashed tasks, most recently trashed first.
func Trash(tasks []model.Task, userID string) []model.Task {
	result := slices.DeleteFunc(owned(tasks, userID), func(task model.Task) bool {
		return !task.Deleted
	})
	slices.SortStableFunc(result, func(a, b model.Task) int {
		return deletedAt(b).Compare(deletedAt(a))
	})
	return result
}

func deletedAt(task model.Task) time.Time {
	if task.DeletedAt == nil {
		return time.Time{}
	}
	return *task.DeletedAt
}

// ListName resolves a task's list name. An unknown list yields "".
func ListName(lists []model.List, id string) string {
	for _, list := range lists {
		if list.ID == id {
			return list.Name
		}
	}
	return ""
}
