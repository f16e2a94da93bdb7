// Package filter holds the active view selection, query filters and display
// preferences for one session.
package filter

import (
	"slices"
	"strings"

	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

type State struct {
	Filters  model.Filters  `json:"active_filters"`
	Settings model.Settings `json:"settings"`
}

type FiltersPatch struct {
	View          *string
	Priority      *string
	Search        *string
	SortBy        *string
	Timeframe     *string
	List          *string
	Status        *string
	ImportantOnly *bool
}

type SettingsPatch struct {
	Theme         *string
	Language      *string
	DateFormat    *string
	TimeFormat    *string
	StartOfWeek   *string
	Notifications *model.Notifications
	Profile       *ProfilePatch
	TaskDefaults  *model.TaskDefaults
}

type ProfilePatch struct {
	DisplayName  *string
	Bio          *string
	AvatarURL    *string
	Timezone     *string
	PhoneNumber  *string
	Organization *string
	Position     *string
}

func DefaultFilters() model.Filters {
	return model.Filters{
		View:      model.ViewTasks,
		Priority:  model.PriorityAll,
		SortBy:    model.SortDueDate,
		Timeframe: model.TimeframeAll,
		Status:    model.StatusAll,
	}
}

func DefaultSettings() model.Settings {
	return model.Settings{
		Theme:       "light",
		Language:    "en",
		DateFormat:  "MM/dd/yyyy",
		TimeFormat:  "12h",
		StartOfWeek: "sunday",
		Notifications: model.Notifications{
			Enabled:     true,
			TaskDue:     true,
			TaskOverdue: true,
		},
		Profile: model.Profile{Timezone: "UTC"},
		TaskDefaults: model.TaskDefaults{
			List:     model.InboxListID,
			Priority: model.PriorityNormal,
			View:     model.ViewTasks,
			SortBy:   model.SortDueDate,
		},
	}
}

func Default() State {
	return State{Filters: DefaultFilters(), Settings: DefaultSettings()}
}

// ForUser returns the defaults for a user's first session.
func ForUser(displayName string) State {
	state := Default()
	state.Settings.Profile.DisplayName = displayName
	return state
}

// Restore builds a state from persisted values, filling anything missing
// from the defaults.
func Restore(filters model.Filters, settings model.Settings) State {
	state := State{Filters: filters, Settings: settings}
	defaults := Default()
	if state.Filters.View == "" {
		state.Filters.View = defaults.Filters.View
	}
	if state.Filters.Priority == "" {
		state.Filters.Priority = defaults.Filters.Priority
	}
	if state.Filters.SortBy == "" {
		state.Filters.SortBy = defaults.Filters.SortBy
	}
	if state.Filters.Timeframe == "" {
		state.Filters.Timeframe = defaults.Filters.Timeframe
	}
	if state.Filters.Status == "" {
		state.Filters.Status = defaults.Filters.Status
	}
	if state.Settings.Theme == "" {
		state.Settings = defaults.Settings
	}
	return state
}

// Apply shallow-merges patch into the filters. Switching view without
// setting a search clears the search text. Invalid values leave the state
// unchanged.
func (s *State) Apply(patch FiltersPatch) error {
	next := s.Filters
	if patch.View != nil {
		view := normalize(*patch.View)
		if view != next.View && patch.Search == nil {
			next.Search = ""
		}
		next.View = view
	}
	if patch.Priority != nil {
		next.Priority = normalize(*patch.Priority)
	}
	if patch.Search != nil {
		next.Search = strings.TrimSpace(*patch.Search)
	}
	if patch.SortBy != nil {
		next.SortBy = normalizeSortKey(*patch.SortBy)
	}
	if patch.Timeframe != nil {
		next.Timeframe = normalize(*patch.Timeframe)
	}
	if patch.List != nil {
		next.List = strings.TrimSpace(*patch.List)
	}
	if patch.Status != nil {
		next.Status = normalize(*patch.Status)
	}
	if patch.ImportantOnly != nil {
		next.ImportantOnly = *patch.ImportantOnly
	}

	if err := validateFilters(next); err != nil {
		return err
	}
	s.Filters = next
	return nil
}

func (s *State) UpdateSettings(patch SettingsPatch) error {
	next := s.Settings
	if patch.Theme != nil {
		next.Theme = normalize(*patch.Theme)
	}
	if patch.Language != nil {
		next.Language = strings.TrimSpace(*patch.Language)
	}
	if patch.DateFormat != nil {
		next.DateFormat = strings.TrimSpace(*patch.DateFormat)
	}
	if patch.TimeFormat != nil {
		next.TimeFormat = normalize(*patch.TimeFormat)
	}
	if patch.StartOfWeek != nil {
		next.StartOfWeek = normalize(*patch.StartOfWeek)
	}
	if patch.Notifications != nil {
		next.Notifications = *patch.Notifications
	}
	if patch.TaskDefaults != nil {
		next.TaskDefaults = *patch.TaskDefaults
	}
	if p := patch.Profile; p != nil {
		setString(&next.Profile.DisplayName, p.DisplayName)
		setString(&next.Profile.Bio, p.Bio)
		setString(&next.Profile.AvatarURL, p.AvatarURL)
		setString(&next.Profile.Timezone, p.Timezone)
		setString(&next.Profile.PhoneNumber, p.PhoneNumber)
		setString(&next.Profile.Organization, p.Organization)
		setString(&next.Profile.Position, p.Position)
	}

	if err := validateSettings(next); err != nil {
		return err
	}
	s.Settings = next
	return nil
}

// Reset discards filters and settings in favour of the defaults.
func (s *State) Reset() {
	*s = Default()
}

// NextSortKey cycles through the sort keys.
func NextSortKey(current string) string {
	return cycle(model.SortKeys, current)
}

func NextView(current string) string {
	return cycle(model.Views, current)
}

func NextTimeframe(current string) string {
	return cycle(model.Timeframes, current)
}

func NextStatus(current string) string {
	return cycle(model.Statuses, current)
}

func NextPriority(current string) string {
	options := []string{model.PriorityAll}
	for _, p := range model.Priorities() {
		options = append(options, p.ID)
	}
	return cycle(options, current)
}

func cycle(options []string, current string) string {
	idx := slices.Index(options, current)
	return options[(idx+1)%len(options)]
}

func validateFilters(f model.Filters) error {
	verr := &store.ValidationError{Fields: map[string]string{}}
	if !slices.Contains(model.Views, f.View) {
		verr.Fields["view"] = "Unknown view"
	}
	if f.Priority != model.PriorityAll {
		if _, ok := model.PriorityByID(f.Priority); !ok {
			verr.Fields["priority"] = "Unknown priority"
		}
	}
	if !slices.Contains(model.SortKeys, f.SortBy) {
		verr.Fields["sort_by"] = "Unknown sort key"
	}
	if !slices.Contains(model.Timeframes, f.Timeframe) {
		verr.Fields["timeframe"] = "Unknown timeframe"
	}
	if !slices.Contains(model.Statuses, f.Status) {
		verr.Fields["status"] = "Unknown status"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validateSettings(s model.Settings) error {
	verr := &store.ValidationError{Fields: map[string]string{}}
	if !slices.Contains([]string{"light", "dark", "system"}, s.Theme) {
		verr.Fields["theme"] = "Unknown theme"
	}
	if !slices.Contains([]string{"12h", "24h"}, s.TimeFormat) {
		verr.Fields["time_format"] = "Unknown time format"
	}
	if !slices.Contains([]string{"sunday", "monday"}, s.StartOfWeek) {
		verr.Fields["start_of_week"] = "Unknown week start"
	}
	if d := s.TaskDefaults.Priority; d != "" {
		if _, ok := model.PriorityByID(d); !ok {
			verr.Fields["task_defaults.priority"] = "Unknown priority"
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// normalizeSortKey also accepts "dueDate".
func normalizeSortKey(value string) string {
	key := normalize(value)
	if key == "duedate" {
		return model.SortDueDate
	}
	return key
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
