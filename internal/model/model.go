package model

import (
	"strings"
	"time"
)

const InboxListID = "inbox"

const (
	PriorityUrgent = "urgent"
	PriorityNormal = "normal"
	PriorityLow    = "low"
	PriorityAll    = "all"
)

const (
	AttachmentImage = "image"
	AttachmentVoice = "voice"
)

type Task struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	List        string          `json:"list"`
	Priority    string          `json:"priority"`
	DueDate     time.Time       `json:"due_date"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Important   bool            `json:"important"`
	Deleted     bool            `json:"deleted"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
	Checklist   []ChecklistItem `json:"checklist"`
	Attachments []Attachment    `json:"attachments"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type TaskState string

const (
	TaskActive  TaskState = "active"
	TaskTrashed TaskState = "trashed"
)

func (t Task) State() TaskState {
	if t.Deleted {
		return TaskTrashed
	}
	return TaskActive
}

// Clone returns a copy that shares no pointers or slices with t.
func (t Task) Clone() Task {
	out := t
	out.StartDate = cloneTime(t.StartDate)
	out.EndDate = cloneTime(t.EndDate)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.DeletedAt = cloneTime(t.DeletedAt)
	out.Checklist = make([]ChecklistItem, len(t.Checklist))
	for i, item := range t.Checklist {
		item.CompletedAt = cloneTime(item.CompletedAt)
		out.Checklist[i] = item
	}
	out.Attachments = make([]Attachment, len(t.Attachments))
	copy(out.Attachments, t.Attachments)
	return out
}

type ChecklistItem struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Attachment struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidAttachmentType(kind string) bool {
	return kind == AttachmentImage || kind == AttachmentVoice
}

type List struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Icon      string     `json:"icon"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (l List) Clone() List {
	l.UpdatedAt = cloneTime(l.UpdatedAt)
	return l
}

// DefaultLists are seeded for a user who has no lists yet.
func DefaultLists(userID string, now time.Time) []List {
	return []List{
		{ID: InboxListID, UserID: userID, Name: "Inbox", Color: "#4299E1", Icon: "Inbox", CreatedAt: now},
		{ID: "work", UserID: userID, Name: "Work", Color: "#48BB78", Icon: "Work", CreatedAt: now},
		{ID: "personal", UserID: userID, Name: "Personal", Color: "#9F7AEA", Icon: "Home", CreatedAt: now},
		{ID: "shopping", UserID: userID, Name: "Shopping", Color: "#F56565", Icon: "ShoppingCart", CreatedAt: now},
	}
}

const DefaultListIcon = "List"

var ListColors = []string{"#4299E1", "#48BB78", "#9F7AEA", "#F56565", "#ED8936", "#ECC94B", "#38B2AC", "#F687B3", "#A0AEC0"}

type Priority struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Rank  int    `json:"rank"`
}

var priorities = []Priority{
	{ID: PriorityUrgent, Name: "Urgent", Color: "#F56565", Rank: 0},
	{ID: PriorityNormal, Name: "Normal", Color: "#4299E1", Rank: 1},
	{ID: PriorityLow, Name: "Low", Color: "#48BB78", Rank: 2},
}

func Priorities() []Priority {
	out := make([]Priority, len(priorities))
	copy(out, priorities)
	return out
}

func PriorityByID(id string) (Priority, bool) {
	for _, p := range priorities {
		if p.ID == id {
			return p, true
		}
	}
	return Priority{}, false
}

// PriorityRank orders unknown priorities after every known one.
func PriorityRank(id string) int {
	if p, ok := PriorityByID(id); ok {
		return p.Rank
	}
	return len(priorities)
}

const (
	ViewTasks     = "tasks"
	ViewCalendar  = "calendar"
	ViewMatrix    = "matrix"
	ViewAnalytics = "analytics"

	SortDueDate  = "due_date"
	SortPriority = "priority"
	SortTitle    = "title"

	TimeframeAll   = "all"
	TimeframeToday = "today"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"

	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusTrash     = "trash"
)

var (
	Views      = []string{ViewTasks, ViewCalendar, ViewMatrix, ViewAnalytics}
	SortKeys   = []string{SortDueDate, SortPriority, SortTitle}
	Timeframes = []string{TimeframeAll, TimeframeToday, TimeframeWeek, TimeframeMonth}
	Statuses   = []string{StatusAll, StatusActive, StatusCompleted, StatusTrash}
)

type Filters struct {
	View          string `json:"view" yaml:"view"`
	Priority      string `json:"priority" yaml:"priority"`
	Search        string `json:"search" yaml:"search"`
	SortBy        string `json:"sort_by" yaml:"sort_by"`
	Timeframe     string `json:"timeframe" yaml:"timeframe"`
	List          string `json:"list" yaml:"list"`
	Status        string `json:"status" yaml:"status"`
	ImportantOnly bool   `json:"important_only" yaml:"important_only"`
}

type Settings struct {
	Theme         string        `json:"theme" yaml:"theme"`
	Language      string        `json:"language" yaml:"language"`
	DateFormat    string        `json:"date_format" yaml:"date_format"`
	TimeFormat    string        `json:"time_format" yaml:"time_format"`
	StartOfWeek   string        `json:"start_of_week" yaml:"start_of_week"`
	Notifications Notifications `json:"notifications" yaml:"notifications"`
	Profile       Profile       `json:"profile" yaml:"profile"`
	TaskDefaults  TaskDefaults  `json:"task_defaults" yaml:"task_defaults"`
}

type Notifications struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	TaskDue     bool `json:"task_due" yaml:"task_due"`
	TaskOverdue bool `json:"task_overdue" yaml:"task_overdue"`
	DailyDigest bool `json:"daily_digest" yaml:"daily_digest"`
	Email       bool `json:"email" yaml:"email"`
}

type Profile struct {
	DisplayName  string `json:"display_name" yaml:"display_name"`
	Bio          string `json:"bio" yaml:"bio"`
	AvatarURL    string `json:"avatar_url" yaml:"avatar_url"`
	Timezone     string `json:"timezone" yaml:"timezone"`
	PhoneNumber  string `json:"phone_number" yaml:"phone_number"`
	Organization string `json:"organization" yaml:"organization"`
	Position     string `json:"position" yaml:"position"`
}

type TaskDefaults struct {
	List     string `json:"list" yaml:"list"`
	Priority string `json:"priority" yaml:"priority"`
	View     string `json:"view" yaml:"view"`
	SortBy   string `json:"sort_by" yaml:"sort_by"`
}

// WeekStart maps StartOfWeek onto a weekday, defaulting to Sunday.
func (s Settings) WeekStart() time.Weekday {
	if strings.EqualFold(s.StartOfWeek, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// Location resolves the profile timezone, falling back to the local zone.
func (s Settings) Location() *time.Location {
	if s.Profile.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Profile.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is the persisted per-user state.
type Snapshot struct {
	Tasks         []Task   `json:"tasks" yaml:"tasks"`
	Lists         []List   `json:"lists" yaml:"lists"`
	ActiveFilters Filters  `json:"active_filters" yaml:"active_filters"`
	Settings      Settings `json:"settings" yaml:"settings"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
