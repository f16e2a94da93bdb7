package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
)

var (
	filterView      string
	filterPriority  string
	filterSearch    string
	filterSort      string
	filterTimeframe string
	filterList      string
	filterStatus    string
	filterImportant bool

	settingTheme           string
	settingLanguage        string
	settingDateFormat      string
	settingTimeFormat      string
	settingStartOfWeek     string
	settingTimezone        string
	settingDisplayName     string
	settingDefaultList     string
	settingDefaultPriority string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Show or change the active filters",
}

var filterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active filters",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		return printYAML(session.State().Filters)
	}),
}

var filterSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more filters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		session, err := current.openSession(ctx)
		if err != nil {
			return err
		}
		filters, err := session.ApplyFilters(ctx, filtersPatchFromFlags(cmd))
		if err != nil {
			return err
		}
		return printYAML(filters)
	},
}

var filterResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default filters",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		filters, err := session.ResetFilters(ctx)
		if err != nil {
			return err
		}
		return printYAML(filters)
	}),
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		return printYAML(session.State().Settings)
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		session, err := current.openSession(ctx)
		if err != nil {
			return err
		}
		patch := settingsPatchFromFlags(cmd, session.State().Settings.TaskDefaults)
		settings, err := session.UpdateSettings(ctx, patch)
		if err != nil {
			return err
		}
		return printYAML(settings)
	},
}

func filtersPatchFromFlags(cmd *cobra.Command) filter.FiltersPatch {
	var patch filter.FiltersPatch
	flags := cmd.Flags()
	if flags.Changed("view") {
		patch.View = &filterView
	}
	if flags.Changed("priority") {
		patch.Priority = &filterPriority
	}
	if flags.Changed("search") {
		patch.Search = &filterSearch
	}
	if flags.Changed("sort") {
		patch.SortBy = &filterSort
	}
	if flags.Changed("timeframe") {
		patch.Timeframe = &filterTimeframe
	}
	if flags.Changed("list") {
		patch.List = &filterList
	}
	if flags.Changed("status") {
		patch.Status = &filterStatus
	}
	if flags.Changed("important") {
		patch.ImportantOnly = &filterImportant
	}
	return patch
}

func settingsPatchFromFlags(cmd *cobra.Command, defaults model.TaskDefaults) filter.SettingsPatch {
	var patch filter.SettingsPatch
	flags := cmd.Flags()
	if flags.Changed("theme") {
		patch.Theme = &settingTheme
	}
	if flags.Changed("language") {
		patch.Language = &settingLanguage
	}
	if flags.Changed("date-format") {
		patch.DateFormat = &settingDateFormat
	}
	if flags.Changed("time-format") {
		patch.TimeFormat = &settingTimeFormat
	}
	if flags.Changed("start-of-week") {
		patch.StartOfWeek = &settingStartOfWeek
	}

	var profile filter.ProfilePatch
	if flags.Changed("timezone") {
		profile.Timezone = &settingTimezone
	}
	if flags.Changed("display-name") {
		profile.DisplayName = &settingDisplayName
	}
	if profile != (filter.ProfilePatch{}) {
		patch.Profile = &profile
	}

	if flags.Changed("default-list") || flags.Changed("default-priority") {
		if flags.Changed("default-list") {
			defaults.List = settingDefaultList
		}
		if flags.Changed("default-priority") {
			defaults.Priority = settingDefaultPriority
		}
		patch.TaskDefaults = &defaults
	}
	return patch
}

func printYAML(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func init() {
	filterSetCmd.Flags().StringVar(&filterView, "view", "", "tasks, calendar, matrix or analytics")
	filterSetCmd.Flags().StringVar(&filterPriority, "priority", "", "all, urgent, normal or low")
	filterSetCmd.Flags().StringVar(&filterSearch, "search", "", "search text")
	filterSetCmd.Flags().StringVar(&filterSort, "sort", "", "due_date, priority or title")
	filterSetCmd.Flags().StringVar(&filterTimeframe, "timeframe", "", "all, today, week or month")
	filterSetCmd.Flags().StringVar(&filterList, "list", "", "list id, empty for all")
	filterSetCmd.Flags().StringVar(&filterStatus, "status", "", "all, active, completed or trash")
	filterSetCmd.Flags().BoolVar(&filterImportant, "important", false, "important tasks only")

	settingsSetCmd.Flags().StringVar(&settingTheme, "theme", "", "light or dark")
	settingsSetCmd.Flags().StringVar(&settingLanguage, "language", "", "language code")
	settingsSetCmd.Flags().StringVar(&settingDateFormat, "date-format", "", "date format")
	settingsSetCmd.Flags().StringVar(&settingTimeFormat, "time-format", "", "12h or 24h")
	settingsSetCmd.Flags().StringVar(&settingStartOfWeek, "start-of-week", "", "sunday or monday")
	settingsSetCmd.Flags().StringVar(&settingTimezone, "timezone", "", "IANA timezone")
	settingsSetCmd.Flags().StringVar(&settingDisplayName, "display-name", "", "profile display name")
	settingsSetCmd.Flags().StringVar(&settingDefaultList, "default-list", "", "list for new tasks")
	settingsSetCmd.Flags().StringVar(&settingDefaultPriority, "default-priority", "", "priority for new tasks")

	filterCmd.AddCommand(filterShowCmd, filterSetCmd, filterResetCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(filterCmd, settingsCmd)
}
