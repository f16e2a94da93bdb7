package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

var (
	taskList        string
	taskPriority    string
	taskDue         string
	taskStart       string
	taskEnd         string
	taskDescription string
	taskTitleFlag   string
	taskImportant   bool
	taskChecklist   []string
	taskSearchLimit int

	listQuery     string
	listStatus    string
	listTimeframe string
	listSort      string

	attachType string
	attachName string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		input, err := taskInputFromFlags(session, strings.Join(args, " "))
		if err != nil {
			return err
		}
		task, err := session.CreateTask(ctx, input)
		if err != nil {
			return err
		}
		successf("Created %s", task.ID)
		return nil
	}),
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks using the active filters",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		state := session.State()
		if err := state.Apply(listPatchFromFlags()); err != nil {
			return err
		}
		tasks, err := session.FilteredBy(state.Filters)
		if err != nil {
			return err
		}
		renderTasks(session, tasks)
		return nil
	}),
}

// listPatchFromFlags turns the one-off list overrides into a patch so they
// are validated like a saved filter change.
func listPatchFromFlags() filter.FiltersPatch {
	var patch filter.FiltersPatch
	set := func(value string) *string {
		if value == "" {
			return nil
		}
		return &value
	}
	patch.Search = set(listQuery)
	patch.List = set(taskList)
	patch.Priority = set(taskPriority)
	patch.Status = set(listStatus)
	patch.Timeframe = set(listTimeframe)
	patch.SortBy = set(listSort)
	if taskImportant {
		important := true
		patch.ImportantOnly = &important
	}
	return patch
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		task, err := session.Task(args[0])
		if err != nil {
			return err
		}
		history, err := session.History(ctx, task.ID)
		if err != nil {
			return err
		}
		return renderTaskDetail(session, task, history)
	}),
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := current.openSession(ctx)
		if err != nil {
			return err
		}
		patch, err := taskPatchFromFlags(cmd, session.State().Settings.Location())
		if err != nil {
			return err
		}
		task, err := session.UpdateTask(ctx, args[0], patch)
		if err != nil {
			return err
		}
		successf("Updated %s", task.ID)
		return nil
	},
}

func taskAction(use, short string, apply func(*app.Session, context.Context, string) (model.Task, error), done func(model.Task) string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
			task, err := apply(session, ctx, args[0])
			if err != nil {
				return err
			}
			successf("%s", done(task))
			return nil
		}),
	}
}

var (
	taskDoneCmd = taskAction("done", "Toggle completion", (*app.Session).ToggleComplete, func(task model.Task) string {
		if task.Completed {
			return "Completed " + task.Title
		}
		return "Reopened " + task.Title
	})
	taskStarCmd = taskAction("star", "Toggle important", (*app.Session).ToggleImportant, func(task model.Task) string {
		if task.Important {
			return "Starred " + task.Title
		}
		return "Unstarred " + task.Title
	})
	taskTrashCmd = taskAction("trash", "Move a task to the trash", (*app.Session).Trash, func(task model.Task) string {
		return "Trashed " + task.Title
	})
	taskRestoreCmd = taskAction("restore", "Restore a task from the trash", (*app.Session).Restore, func(task model.Task) string {
		return "Restored " + task.Title
	})
	taskPurgeCmd = taskAction("purge", "Permanently delete a trashed task", (*app.Session).Purge, func(task model.Task) string {
		return "Purged " + task.Title
	})
)

var taskSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search titles and descriptions",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		tasks, err := session.Search(strings.Join(args, " "), taskSearchLimit)
		if err != nil {
			return err
		}
		renderTasks(session, tasks)
		return nil
	}),
}

var taskHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a task's change history",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		history, err := session.History(ctx, args[0])
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Println(faint("No history."))
			return nil
		}
		t := newTable("When", "Event", "Details")
		for _, entry := range history {
			t.AppendRow([]any{entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.EventType, entry.Details})
		}
		t.Render()
		return nil
	}),
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Manage checklist items",
}

var checkAddCmd = &cobra.Command{
	Use:   "add <task-id> <text>",
	Short: "Add a checklist item",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		task, err := session.AddChecklistItem(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		item := task.Checklist[len(task.Checklist)-1]
		successf("Added %s", item.ID)
		return nil
	}),
}

var checkToggleCmd = &cobra.Command{
	Use:   "toggle <task-id> <item-id>",
	Short: "Toggle a checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		if _, err := session.ToggleChecklistItem(ctx, args[0], args[1]); err != nil {
			return err
		}
		successf("Toggled %s", args[1])
		return nil
	}),
}

var checkRemoveCmd = &cobra.Command{
	Use:   "rm <task-id> <item-id>",
	Short: "Remove a checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		if _, err := session.RemoveChecklistItem(ctx, args[0], args[1]); err != nil {
			return err
		}
		successf("Removed %s", args[1])
		return nil
	}),
}

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage attachments",
}

var attachAddCmd = &cobra.Command{
	Use:   "add <task-id> <url>",
	Short: "Attach an image or voice note",
	Args:  cobra.ExactArgs(2),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		name := attachName
		if name == "" {
			name = args[1]
		}
		task, err := session.AddAttachment(ctx, args[0], store.AttachmentInput{Type: attachType, Name: name, URL: args[1]})
		if err != nil {
			return err
		}
		successf("Attached %s", task.Attachments[len(task.Attachments)-1].ID)
		return nil
	}),
}

var attachRemoveCmd = &cobra.Command{
	Use:   "rm <task-id> <attachment-id>",
	Short: "Remove an attachment",
	Args:  cobra.ExactArgs(2),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		if _, err := session.RemoveAttachment(ctx, args[0], args[1]); err != nil {
			return err
		}
		successf("Removed %s", args[1])
		return nil
	}),
}

func taskInputFromFlags(session *app.Session, title string) (store.TaskInput, error) {
	loc := session.State().Settings.Location()
	input := store.TaskInput{
		Title:       title,
		Description: taskDescription,
		List:        taskList,
		Priority:    taskPriority,
		Important:   taskImportant,
		Checklist:   taskChecklist,
	}

	due, err := parseDay(taskDue, loc)
	if err != nil {
		return input, fmt.Errorf("invalid --due: %w", err)
	}
	if due.IsZero() {
		due = endOfDay(session.Now().In(loc))
	}
	input.DueDate = due

	if input.StartDate, err = parseOptionalDay(taskStart, loc); err != nil {
		return input, fmt.Errorf("invalid --start: %w", err)
	}
	if input.EndDate, err = parseOptionalDay(taskEnd, loc); err != nil {
		return input, fmt.Errorf("invalid --end: %w", err)
	}
	return input, nil
}

// taskPatchFromFlags only sets the fields whose flags were given. An empty
// --start or --end clears that side of the range.
func taskPatchFromFlags(cmd *cobra.Command, loc *time.Location) (store.TaskPatch, error) {
	var patch store.TaskPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		patch.Title = &taskTitleFlag
	}
	if flags.Changed("desc") {
		patch.Description = &taskDescription
	}
	if flags.Changed("list") {
		patch.List = &taskList
	}
	if flags.Changed("priority") {
		patch.Priority = &taskPriority
	}
	if flags.Changed("important") {
		patch.Important = &taskImportant
	}
	if flags.Changed("due") {
		due, err := parseDay(taskDue, loc)
		if err != nil || due.IsZero() {
			return patch, fmt.Errorf("invalid --due %q", taskDue)
		}
		patch.DueDate = &due
	}
	if flags.Changed("start") {
		start, err := parseOptionalDay(taskStart, loc)
		if err != nil {
			return patch, fmt.Errorf("invalid --start: %w", err)
		}
		patch.StartDate = start
		patch.ClearStartDate = start == nil
	}
	if flags.Changed("end") {
		end, err := parseOptionalDay(taskEnd, loc)
		if err != nil {
			return patch, fmt.Errorf("invalid --end: %w", err)
		}
		patch.EndDate = end
		patch.ClearEndDate = end == nil
	}
	return patch, nil
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskList, "list", "l", "", "list id")
	taskAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "urgent, normal or low")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD, defaults to today)")
	taskAddCmd.Flags().StringVar(&taskStart, "start", "", "range start (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskEnd, "end", "", "range end (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "description (markdown)")
	taskAddCmd.Flags().BoolVarP(&taskImportant, "important", "i", false, "mark as important")
	taskAddCmd.Flags().StringSliceVarP(&taskChecklist, "check", "c", nil, "checklist item (repeatable)")

	taskListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search text")
	taskListCmd.Flags().StringVarP(&taskList, "list", "l", "", "list id")
	taskListCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "priority filter")
	taskListCmd.Flags().StringVar(&listStatus, "status", "", "all, active, completed or trash")
	taskListCmd.Flags().StringVar(&listTimeframe, "timeframe", "", "all, today, week or month")
	taskListCmd.Flags().StringVar(&listSort, "sort", "", "due_date, priority or title")
	taskListCmd.Flags().BoolVarP(&taskImportant, "important", "i", false, "important tasks only")

	taskEditCmd.Flags().StringVarP(&taskTitleFlag, "title", "t", "", "title")
	taskEditCmd.Flags().StringVarP(&taskList, "list", "l", "", "list id")
	taskEditCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "urgent, normal or low")
	taskEditCmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD)")
	taskEditCmd.Flags().StringVar(&taskStart, "start", "", "range start, empty to clear")
	taskEditCmd.Flags().StringVar(&taskEnd, "end", "", "range end, empty to clear")
	taskEditCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "description (markdown)")
	taskEditCmd.Flags().BoolVarP(&taskImportant, "important", "i", false, "important")

	taskSearchCmd.Flags().IntVar(&taskSearchLimit, "limit", 0, "maximum results")

	attachAddCmd.Flags().StringVar(&attachType, "type", model.AttachmentImage, "image or voice")
	attachAddCmd.Flags().StringVar(&attachName, "name", "", "display name")

	checkCmd.AddCommand(checkAddCmd, checkToggleCmd, checkRemoveCmd)
	attachCmd.AddCommand(attachAddCmd, attachRemoveCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd,
		taskDoneCmd, taskStarCmd, taskTrashCmd, taskRestoreCmd, taskPurgeCmd,
		taskSearchCmd, taskHistoryCmd, checkCmd, attachCmd)
	rootCmd.AddCommand(taskCmd)
}
