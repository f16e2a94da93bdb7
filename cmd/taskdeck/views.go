package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/query"
)

var (
	calendarFrom string
	calendarTo   string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show open tasks by urgency and importance",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		quadrants, err := session.Matrix()
		if err != nil {
			return err
		}
		for _, q := range query.QuadrantOrder {
			tasks := quadrants.Get(q)
			fmt.Printf("%s %s\n", cyan(q.Title()), faint(fmt.Sprintf("(%d)", len(tasks))))
			for _, task := range tasks {
				fmt.Printf("  %s  %s  %s\n", faint(task.ID), task.Title, formatDay(task.DueDate))
			}
		}
		return nil
	}),
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show scheduled tasks, this week by default",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		settings := session.State().Settings
		loc := settings.Location()

		from, err := parseDay(calendarFrom, loc)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		to, err := parseDay(calendarTo, loc)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		if from.IsZero() {
			from = query.StartOfWeek(session.Now().In(loc), settings.WeekStart())
		} else {
			from = startOfDay(from)
		}
		if to.IsZero() {
			to = from.AddDate(0, 0, 7).Add(-1)
		}

		events, err := session.Calendar(from, to)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s → %s\n", cyan("Calendar"), from.Format(dateLayout), to.Format(dateLayout))
		if len(events) == 0 {
			fmt.Println(faint("Nothing scheduled."))
			return nil
		}
		t := newTable("Start", "End", "Title", "List", "Done")
		for _, ev := range events {
			done := ""
			if ev.Completed {
				done = green("✓")
			}
			name, _ := session.ListName(ev.List)
			t.AppendRow(table.Row{ev.Start.In(loc).Format(dateLayout), ev.End.In(loc).Format(dateLayout), ev.Title, name, done})
		}
		t.Render()
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		stats, err := session.Stats()
		if err != nil {
			return err
		}
		printKV("Total", stats.Total)
		printKV("Completed", stats.Completed)
		printKV("Pending", stats.Pending)
		printKV("Overdue", stats.Overdue)
		printKV("Completion rate", fmt.Sprintf("%.1f%%", stats.CompletionRate))
		printKV("Avg tasks/day", fmt.Sprintf("%.1f", stats.AvgTasksPerDay))
		printKV("Avg days to done", fmt.Sprintf("%.1f", stats.AvgDaysToDone))

		lists := newTable("List", "Tasks")
		for _, lc := range stats.ByList {
			lists.AppendRow(table.Row{lc.Name, lc.Count})
		}
		lists.Render()

		priorities := newTable("Priority", "Tasks")
		for _, pc := range stats.ByPriority {
			priorities.AppendRow(table.Row{priorityLabel(pc.Priority), pc.Count})
		}
		priorities.Render()

		fmt.Println(cyan("This week"))
		for _, day := range stats.Week {
			fmt.Printf("  %-4s %s %s\n", day.Label, green(strings.Repeat("■", day.Completed)), faint(strings.Repeat("□", day.Created)))
		}
		return nil
	}),
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Show trashed tasks, most recent first",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		tasks, err := session.Trash()
		if err != nil {
			return err
		}
		renderTasks(session, tasks)
		return nil
	}),
}

func init() {
	calendarCmd.Flags().StringVar(&calendarFrom, "from", "", "first day (YYYY-MM-DD)")
	calendarCmd.Flags().StringVar(&calendarTo, "to", "", "last day (YYYY-MM-DD)")

	rootCmd.AddCommand(matrixCmd, calendarCmd, statsCmd, trashCmd)
}
