package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/model"
)

const dateLayout = "2006-01-02"

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func newTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleDouble)
	row := table.Row{}
	for _, h := range headers {
		row = append(row, text.FgGreen.Sprintf("%s", h))
	}
	t.AppendHeader(row)
	return t
}

func renderTasks(session *app.Session, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Println(faint("No tasks."))
		return
	}
	t := newTable("ID", "Title", "List", "Priority", "Due", "Status")
	for _, task := range tasks {
		name, _ := session.ListName(task.List)
		t.AppendRow(table.Row{task.ID, taskTitle(task), name, priorityLabel(task.Priority), formatDay(task.DueDate), statusLabel(task, session.Now())})
	}
	t.Render()
}

func taskTitle(task model.Task) string {
	if task.Important {
		return "★ " + task.Title
	}
	return task.Title
}

func priorityLabel(id string) string {
	p, ok := model.PriorityByID(id)
	if !ok {
		return id
	}
	switch id {
	case model.PriorityUrgent:
		return red(p.Name)
	case model.PriorityLow:
		return green(p.Name)
	}
	return p.Name
}

func statusLabel(task model.Task, now time.Time) string {
	switch {
	case task.Deleted:
		return faint("trashed")
	case task.Completed:
		return green("done")
	case !task.DueDate.IsZero() && task.DueDate.Before(now):
		return red("overdue")
	}
	return yellow("open")
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatOptionalDay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDay(*t)
}

func renderTaskDetail(session *app.Session, task model.Task, history []model.HistoryEntry) error {
	name, _ := session.ListName(task.List)
	fmt.Printf("%s %s\n", cyan("Task:"), taskTitle(task))
	fmt.Printf("%s %s\n", cyan("ID:"), task.ID)
	fmt.Printf("%s %s\n", cyan("List:"), name)
	fmt.Printf("%s %s\n", cyan("Priority:"), priorityLabel(task.Priority))
	fmt.Printf("%s %s\n", cyan("Status:"), statusLabel(task, session.Now()))
	fmt.Printf("%s %s\n", cyan("Due:"), formatDay(task.DueDate))
	if task.StartDate != nil || task.EndDate != nil {
		fmt.Printf("%s %s → %s\n", cyan("Range:"), formatOptionalDay(task.StartDate), formatOptionalDay(task.EndDate))
	}

	if strings.TrimSpace(task.Description) != "" {
		out, err := glamour.Render(task.Description, "dark")
		if err != nil {
			return fmt.Errorf("render description: %w", err)
		}
		fmt.Print(out)
	}

	if len(task.Checklist) > 0 {
		fmt.Println(cyan("Checklist:"))
		for _, item := range task.Checklist {
			mark := "[ ]"
			if item.Completed {
				mark = green("[x]")
			}
			fmt.Printf("  %s %s %s\n", mark, item.Text, faint(item.ID))
		}
	}

	if len(task.Attachments) > 0 {
		fmt.Println(cyan("Attachments:"))
		for _, a := range task.Attachments {
			fmt.Printf("  %s %s %s %s\n", a.Type, a.Name, a.URL, faint(a.ID))
		}
	}

	if len(history) > 0 {
		fmt.Println(cyan("History:"))
		for _, entry := range history {
			fmt.Printf("  %s %s %s\n", faint(entry.CreatedAt.Local().Format("2006-01-02 15:04")), entry.EventType, entry.Details)
		}
	}
	return nil
}

func renderLists(lists []model.List, tasks []model.Task) {
	counts := map[string]int{}
	for _, task := range tasks {
		if !task.Deleted && !task.Completed {
			counts[task.List]++
		}
	}
	t := newTable("ID", "Name", "Color", "Icon", "Open")
	for _, list := range lists {
		t.AppendRow(table.Row{list.ID, list.Name, list.Color, list.Icon, counts[list.ID]})
	}
	t.Render()
}

func printKV(label string, value any) {
	fmt.Printf("%s %v\n", cyan(label+":"), value)
}

func successf(format string, args ...any) {
	fmt.Println(green(fmt.Sprintf(format, args...)))
}
