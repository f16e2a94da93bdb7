package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

const dateLayout = "2006-01-02"

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldList
	fieldPriority
	fieldDue
	fieldStart
	fieldEnd
)

type formValues struct {
	Title       string
	Description string
	List        string
	Priority    string
	Due         time.Time
	Start       *time.Time
	End         *time.Time
}

func buildFormFields(task *model.Task, defaults model.TaskDefaults) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "List (space/←→)"},
		{Label: "Priority (space/←→)"},
		{Label: "Due (YYYY-MM-DD)"},
		{Label: "Start (YYYY-MM-DD)"},
		{Label: "End (YYYY-MM-DD)"},
	}

	if task == nil {
		fields[fieldList].Value = defaults.List
		if fields[fieldList].Value == "" {
			fields[fieldList].Value = model.InboxListID
		}
		fields[fieldPriority].Value = defaults.Priority
		if fields[fieldPriority].Value == "" {
			fields[fieldPriority].Value = model.PriorityNormal
		}
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldList].Value = task.List
	fields[fieldPriority].Value = task.Priority
	if !task.DueDate.IsZero() {
		fields[fieldDue].Value = task.DueDate.Format(dateLayout)
	}
	if task.StartDate != nil {
		fields[fieldStart].Value = task.StartDate.Format(dateLayout)
	}
	if task.EndDate != nil {
		fields[fieldEnd].Value = task.EndDate.Format(dateLayout)
	}

	return fields
}

func parseFormFields(fields []formField, loc *time.Location) (formValues, error) {
	due, err := parseDate(fields[fieldDue].Value, loc)
	if err != nil {
		return formValues{}, fmt.Errorf("invalid due date")
	}
	start, err := parseDate(fields[fieldStart].Value, loc)
	if err != nil {
		return formValues{}, fmt.Errorf("invalid start date")
	}
	end, err := parseDate(fields[fieldEnd].Value, loc)
	if err != nil {
		return formValues{}, fmt.Errorf("invalid end date")
	}

	values := formValues{
		Title:       strings.TrimSpace(fields[fieldTitle].Value),
		Description: strings.TrimSpace(fields[fieldDescription].Value),
		List:        strings.TrimSpace(fields[fieldList].Value),
		Priority:    strings.TrimSpace(fields[fieldPriority].Value),
		Due:         due,
	}
	if !start.IsZero() {
		values.Start = &start
	}
	if !end.IsZero() {
		values.End = &end
	}
	return values, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, trimmed, loc)
}

func (v formValues) taskInput() store.TaskInput {
	return store.TaskInput{
		Title:       v.Title,
		Description: v.Description,
		List:        v.List,
		Priority:    v.Priority,
		DueDate:     v.Due,
		StartDate:   v.Start,
		EndDate:     v.End,
	}
}

// taskPatch replaces every editable field; blank dates clear the range.
func (v formValues) taskPatch() store.TaskPatch {
	patch := store.TaskPatch{
		Title:          &v.Title,
		Description:    &v.Description,
		List:           &v.List,
		Priority:       &v.Priority,
		DueDate:        &v.Due,
		StartDate:      v.Start,
		EndDate:        v.End,
		ClearStartDate: v.Start == nil,
		ClearEndDate:   v.End == nil,
	}
	return patch
}

func isListField(label string) bool {
	return strings.HasPrefix(label, "List")
}

func isPriorityField(label string) bool {
	return strings.HasPrefix(label, "Priority")
}

func nextPriorityValue(current string) string {
	next := filter.NextPriority(current)
	if next == model.PriorityAll {
		next = filter.NextPriority(next)
	}
	return next
}

func prevPriorityValue(current string) string {
	options := model.Priorities()
	for i, p := range options {
		if p.ID == current {
			return options[(i-1+len(options))%len(options)].ID
		}
	}
	return options[0].ID
}

func cycleOption(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	value := strings.TrimSpace(current)
	index := 0
	for i, option := range options {
		if option == value {
			index = i
			break
		}
	}
	index = (index + delta + len(options)) % len(options)
	return options[index]
}
