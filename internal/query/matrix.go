package query

import (
	"time"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

// UrgentWindow is how soon a due date makes a task urgent.
const UrgentWindow = 24 * time.Hour

type Quadrant string

const (
	DoFirst   Quadrant = "urgent_important"
	Schedule  Quadrant = "important"
	Delegate  Quadrant = "urgent"
	Eliminate Quadrant = "neither"
)

var QuadrantOrder = []Quadrant{DoFirst, Schedule, Delegate, Eliminate}

func (q Quadrant) Title() string {
	switch q {
	case DoFirst:
		return "Urgent & Important"
	case Schedule:
		return "Important, Not Urgent"
	case Delegate:
		return "Urgent, Not Important"
	}
	return "Neither"
}

type Quadrants struct {
	DoFirst   []model.Task `json:"urgent_important"`
	Schedule  []model.Task `json:"important"`
	Delegate  []model.Task `json:"urgent"`
	Eliminate []model.Task `json:"neither"`
}

func (q Quadrants) Get(quadrant Quadrant) []model.Task {
	switch quadrant {
	case DoFirst:
		return q.DoFirst
	case Schedule:
		return q.Schedule
	case Delegate:
		return q.Delegate
	}
	return q.Eliminate
}

func (q Quadrants) Len() int {
	return len(q.DoFirst) + len(q.Schedule) + len(q.Delegate) + len(q.Eliminate)
}

// IsUrgent reports whether the task is due before now plus UrgentWindow.
// Tasks without a due date are never urgent.
func IsUrgent(task model.Task, now time.Time) bool {
	if task.DueDate.IsZero() {
		return false
	}
	return task.DueDate.Before(now.Add(UrgentWindow))
}

func Classify(task model.Task, now time.Time) Quadrant {
	urgent := IsUrgent(task, now)
	switch {
	case urgent && task.Important:
		return DoFirst
	case task.Important:
		return Schedule
	case urgent:
		return Delegate
	}
	return Eliminate
}

// Matrix splits the user's non-deleted tasks into exactly one quadrant each.
func Matrix(tasks []model.Task, userID string, now time.Time) Quadrants {
	q := Quadrants{
		DoFirst:   []model.Task{},
		Schedule:  []model.Task{},
		Delegate:  []model.Task{},
		Eliminate: []model.Task{},
	}
	for _, task := range owned(tasks, userID) {
		if task.Deleted {
			continue
		}
		switch Classify(task, now) {
		case DoFirst:
			q.DoFirst = append(q.DoFirst, task)
		case Schedule:
			q.Schedule = append(q.Schedule, task)
		case Delegate:
			q.Delegate = append(q.Delegate, task)
		default:
			q.Eliminate = append(q.Eliminate, task)
		}
	}
	return q
}
