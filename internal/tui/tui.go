package tui

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/query"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

const (
	viewHeader    = "header"
	viewFooter    = "footer"
	viewLists     = "lists"
	viewTasks     = "tasks"
	viewDetail    = "detail"
	viewChecklist = "checklist"
	viewHistory   = "history"
	viewSearch    = "search"
	viewForm      = "form"
	viewHelp      = "help"
	viewPrompt    = "prompt"
)

type UI struct {
	session *app.Session
	gui     *gocui.Gui

	tasks    []model.Task
	allTasks []model.Task
	lists    []listEntry
	history  []model.HistoryEntry

	selectedTasks     int
	selectedLists     int
	selectedChecklist int
	selectedHistory   int
	focus             string

	form         *formState
	formEditor   *formEditor
	prompt       *promptState
	searchActive bool
	helpActive   bool
	status       string
}

type formState struct {
	taskID string
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

type promptKind int

const (
	promptNewList promptKind = iota
	promptRenameList
	promptChecklist
)

type promptState struct {
	kind    promptKind
	title   string
	initial string
	target  string
}

func Run(session *app.Session) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(session)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(session *app.Session) *UI {
	ui := &UI{session: session, focus: viewTasks}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

type binding struct {
	view    string
	key     any
	handler func(*gocui.Gui, *gocui.View) error
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", 'g', u.resetFilters},
		{"", 'a', u.add},
		{"", 'e', u.edit},
		{"", 'd', u.remove},
		{"", 'x', u.toggleComplete},
		{"", 'i', u.toggleImportant},
		{"", 'u', u.restoreTask},
		{"", 'P', u.purgeTask},
		{"", 's', u.cycleSort},
		{"", 'p', u.cyclePriority},
		{"", 't', u.cycleTimeframe},
		{"", 'f', u.cycleStatus},
		{"", 'v', u.cycleView},
		{"", 'o', u.toggleImportantOnly},
		{"", 'h', u.refreshHistory},
		{"", '/', u.startSearch},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", '1', u.focusLists},
		{"", '2', u.focusTasks},
		{"", '3', u.focusDetail},
		{"", '4', u.focusChecklist},
		{"", '5', u.focusHistory},
	}
	for _, name := range []string{viewLists, viewTasks, viewChecklist, viewHistory} {
		bindings = append(bindings,
			binding{name, gocui.KeyArrowDown, u.moveDown},
			binding{name, 'j', u.moveDown},
			binding{name, gocui.KeyArrowUp, u.moveUp},
			binding{name, 'k', u.moveUp},
		)
	}
	bindings = append(bindings,
		binding{viewLists, gocui.KeySpace, u.selectList},
		binding{viewLists, gocui.KeyEnter, u.selectList},
		binding{viewChecklist, gocui.KeySpace, u.toggleChecklistItem},
		binding{viewChecklist, gocui.KeyEnter, u.toggleChecklistItem},
		binding{viewSearch, gocui.KeyEnter, u.submitSearch},
		binding{viewSearch, gocui.KeyEsc, u.cancelSearch},
		binding{viewForm, gocui.KeyEnter, u.submitFormNow},
		binding{viewForm, gocui.KeyCtrlJ, u.submitFormNow},
		binding{viewForm, gocui.KeyTab, u.nextFormField},
		binding{viewForm, gocui.KeyBacktab, u.prevFormField},
		binding{viewForm, gocui.KeyArrowDown, u.nextFormField},
		binding{viewForm, gocui.KeyArrowUp, u.prevFormField},
		binding{viewForm, gocui.KeyEsc, u.cancelForm},
		binding{viewHelp, gocui.KeyEsc, u.closeHelp},
		binding{viewHelp, 'q', u.closeHelp},
		binding{viewHelp, '?', u.closeHelp},
		binding{viewPrompt, gocui.KeyEnter, u.submitPrompt},
		binding{viewPrompt, gocui.KeyEsc, u.cancelPrompt},
	)

	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewLists, viewTasks, viewChecklist, viewHistory} {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + l.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	listsY0 := bodyTop
	listsY1 := listsY0 + l.listsHeight - 1
	tasksY0 := listsY1 + 1
	tasksY1 := bodyBottom

	detailY0 := bodyTop
	detailY1 := detailY0 + l.detailHeight - 1
	checklistY0 := detailY1 + 1
	checklistY1 := checklistY0 + l.checklistHeight - 1
	historyY0 := checklistY1 + 1
	historyY1 := bodyBottom

	listsView, err := gui.SetView(viewLists, leftX0, listsY0, leftX1, listsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		listsView.Title = "1 Lists"
		listsView.TitleColor = gocui.ColorCyan
	}
	applyViewStyle(listsView, u.focus == viewLists, true)
	u.renderLists(listsView)

	tasksView, err := gui.SetView(viewTasks, leftX0, tasksY0, leftX1, tasksY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.TitleColor = gocui.ColorRed
	}
	tasksView.Title = fmt.Sprintf("2 Tasks (%d)", len(u.tasks))
	applyViewStyle(tasksView, u.focus == viewTasks, true)
	u.renderTasks(tasksView)

	detailView, err := gui.SetView(viewDetail, rightX0, detailY0, rightX1, detailY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	detailView.Wrap = true
	detailView.Title = "3 " + viewTitle(u.session.State().Filters.View)
	applyViewStyle(detailView, u.focus == viewDetail, false)
	u.renderDetail(detailView)

	checklistView, err := gui.SetView(viewChecklist, rightX0, checklistY0, rightX1, checklistY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		checklistView.Title = "4 Checklist"
		checklistView.TitleColor = gocui.ColorGreen
	}
	applyViewStyle(checklistView, u.focus == viewChecklist, true)
	u.renderChecklist(checklistView)

	historyView, err := gui.SetView(viewHistory, rightX0, historyY0, rightX1, historyY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "5 History"
	}
	applyViewStyle(historyView, u.focus == viewHistory, true)
	u.renderHistory(historyView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.prompt != nil {
		if err := u.showPrompt(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewPrompt)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.form != nil || u.prompt != nil

	return nil
}

type layout struct {
	leftWidth       int
	listsHeight     int
	tasksHeight     int
	detailHeight    int
	checklistHeight int
	historyHeight   int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 8)

	leftWidth := safeWidth * 2 / 5
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > safeWidth-18 {
		leftWidth = safeWidth / 2
	}

	listsHeight := max(int(float64(safeHeight)*0.3), 4)
	tasksHeight := max(safeHeight-listsHeight, 4)

	detailHeight := max(int(float64(safeHeight)*0.45), 4)
	checklistHeight := max(int(float64(safeHeight)*0.25), 3)
	historyHeight := safeHeight - detailHeight - checklistHeight
	if historyHeight < 4 {
		historyHeight = 4
		checklistHeight = max(safeHeight-detailHeight-historyHeight, 3)
	}

	return layout{
		leftWidth:       leftWidth,
		listsHeight:     listsHeight,
		tasksHeight:     tasksHeight,
		detailHeight:    detailHeight,
		checklistHeight: checklistHeight,
		historyHeight:   historyHeight,
	}
}

func (u *UI) loadTasks() error {
	tasks, err := u.session.FilteredTasks()
	if err != nil {
		return err
	}
	all, err := u.session.Tasks()
	if err != nil {
		return err
	}
	lists, err := u.session.Lists()
	if err != nil {
		return err
	}

	u.tasks = tasks
	u.allTasks = all
	u.lists = buildListEntries(lists, all)

	if u.selectedTasks >= len(u.tasks) {
		u.selectedTasks = max(len(u.tasks)-1, 0)
	}
	if u.selectedLists >= len(u.lists) {
		u.selectedLists = max(len(u.lists)-1, 0)
	}
	if selected := u.selectedTask(); selected == nil || u.selectedChecklist >= len(selected.Checklist) {
		u.selectedChecklist = 0
	}

	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	selected := u.selectedTask()
	if selected == nil {
		u.history = nil
		return nil
	}

	history, err := u.session.History(context.Background(), selected.ID)
	if err != nil {
		return err
	}
	u.history = history
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	filters := u.session.State().Filters

	search := strings.TrimSpace(filters.Search)
	if search == "" {
		search = "type / to search"
	}
	list := "all"
	if filters.List != "" {
		if name, ok := u.session.ListName(filters.List); ok {
			list = name
		}
	}
	important := ""
	if filters.ImportantOnly {
		important = " | important only"
	}

	fmt.Fprintf(view, "%s | Search: %s | List: %s | Priority: %s | Due: %s | Status: %s | Sort: %s%s",
		u.session.User().Name, search, list, filters.Priority, filters.Timeframe, filters.Status, filters.SortBy, important)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | e edit | d trash/delete | u restore | P purge | x done | i important | space select/check")
	fmt.Fprintln(view, "/ search | s sort | p priority | t due | f status | o important only | v view | g reset | tab cycle | 1-5 panes | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderLists(view *gocui.View) {
	view.Clear()
	active := u.session.State().Filters.List
	for index, entry := range u.lists {
		prefix := " "
		if index == u.selectedLists {
			prefix = ">"
		}
		marker := " "
		if entry.ID == active {
			marker = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s (%d)\n", prefix, marker, entry.Name, entry.Count)
	}
	if u.focus == viewLists {
		view.SetCursor(0, min(u.selectedLists, len(u.lists)-1))
	}
}

func (u *UI) renderTasks(view *gocui.View) {
	view.Clear()
	focused := u.focus == viewTasks
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selectedTasks {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task))
	}
	if focused {
		view.SetCursor(0, min(u.selectedTasks, len(u.tasks)-1))
	}
}

func viewTitle(view string) string {
	switch view {
	case model.ViewCalendar:
		return "This Week"
	case model.ViewMatrix:
		return "Priority Matrix"
	case model.ViewAnalytics:
		return "Analytics"
	}
	return "Detail"
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	lines, err := u.detailLines()
	if err != nil {
		fmt.Fprint(view, err.Error())
		return
	}
	fmt.Fprint(view, strings.Join(lines, "\n"))
}

// detailLines renders the right-hand pane for the active view.
func (u *UI) detailLines() ([]string, error) {
	switch u.session.State().Filters.View {
	case model.ViewMatrix:
		quadrants, err := u.session.Matrix()
		if err != nil {
			return nil, err
		}
		return matrixLines(quadrants), nil
	case model.ViewAnalytics:
		stats, err := u.session.Stats()
		if err != nil {
			return nil, err
		}
		return statsLines(stats), nil
	case model.ViewCalendar:
		settings := u.session.State().Settings
		from := query.StartOfWeek(u.session.Now().In(settings.Location()), settings.WeekStart())
		events, err := u.session.Calendar(from, from.AddDate(0, 0, 7))
		if err != nil {
			return nil, err
		}
		return calendarLines(events), nil
	}

	selected := u.selectedTask()
	if selected == nil {
		return []string{"No task selected"}, nil
	}
	lines := []string{}
	if u.focus == viewHistory {
		if entry := u.selectedHistoryEntry(); entry != nil {
			lines = append(lines,
				"History Detail",
				fmt.Sprintf("When: %s", entry.CreatedAt.Format("2006-01-02 15:04:05")),
				fmt.Sprintf("Type: %s", entry.EventType),
				fmt.Sprintf("Details: %s", entry.Details),
				"",
				"Task",
			)
		}
	}
	listName, _ := u.session.ListName(selected.List)
	return append(lines, taskDetailLines(*selected, listName)...), nil
}

func (u *UI) renderChecklist(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		return
	}
	focused := u.focus == viewChecklist
	for index, item := range selected.Checklist {
		prefix := " "
		if index == u.selectedChecklist && focused {
			prefix = ">"
		}
		mark := " "
		if item.Completed {
			mark = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s\n", prefix, mark, item.Text)
	}
	if focused {
		view.SetCursor(0, min(u.selectedChecklist, len(selected.Checklist)-1))
	}
}

func (u *UI) renderHistory(view *gocui.View) {
	view.Clear()
	focused := u.focus == viewHistory
	for index, entry := range u.history {
		prefix := " "
		if index == u.selectedHistory {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s | %s | %s\n", prefix, entry.CreatedAt.Format("2006-01-02 15:04"), entry.EventType, entry.Details)
	}
	if focused {
		view.SetCursor(0, min(u.selectedHistory, len(u.history)-1))
	}
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewLists:
		u.selectedLists = min(row, len(u.lists)-1)
	case viewTasks:
		u.selectedTasks = min(row, len(u.tasks)-1)
	case viewChecklist:
		if selected := u.selectedTask(); selected != nil {
			u.selectedChecklist = min(row, len(selected.Checklist)-1)
		}
	case viewHistory:
		u.selectedHistory = min(row, len(u.history)-1)
	default:
		return nil
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	for _, name := range []string{viewLists, viewTasks, viewDetail, viewChecklist, viewHistory} {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view != nil {
		view.ScrollUp(1)
	}
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view != nil {
		view.ScrollDown(1)
	}
	return nil
}

func (u *UI) selectedHistoryEntry() *model.HistoryEntry {
	if u.selectedHistory >= 0 && u.selectedHistory < len(u.history) {
		return &u.history[u.selectedHistory]
	}
	return nil
}

func (u *UI) selectedTask() *model.Task {
	if u.selectedTasks >= 0 && u.selectedTasks < len(u.tasks) {
		return &u.tasks[u.selectedTasks]
	}
	return nil
}

func (u *UI) selectedListEntry() *listEntry {
	if u.selectedLists >= 0 && u.selectedLists < len(u.lists) {
		return &u.lists[u.selectedLists]
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}

	switch u.focus {
	case viewLists:
		u.focus = viewTasks
	case viewTasks:
		u.focus = viewChecklist
	case viewChecklist:
		u.focus = viewHistory
	default:
		u.focus = viewLists
	}
	_, _ = gui.SetCurrentView(u.focus)
	return u.reload(gui, nil)
}

func (u *UI) focusLists(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewLists)
}

func (u *UI) focusTasks(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewTasks)
}

func (u *UI) focusDetail(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDetail)
}

func (u *UI) focusChecklist(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewChecklist)
}

func (u *UI) focusHistory(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewHistory)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return u.reload(gui, nil)
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewLists:
		if u.selectedLists < len(u.lists)-1 {
			u.selectedLists++
		}
	case viewTasks:
		if u.selectedTasks < len(u.tasks)-1 {
			u.selectedTasks++
			u.selectedChecklist = 0
			return u.loadHistory()
		}
	case viewChecklist:
		if selected := u.selectedTask(); selected != nil && u.selectedChecklist < len(selected.Checklist)-1 {
			u.selectedChecklist++
		}
	case viewHistory:
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewLists:
		if u.selectedLists > 0 {
			u.selectedLists--
		}
	case viewTasks:
		if u.selectedTasks > 0 {
			u.selectedTasks--
			u.selectedChecklist = 0
			return u.loadHistory()
		}
	case viewChecklist:
		if u.selectedChecklist > 0 {
			u.selectedChecklist--
		}
	case viewHistory:
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) refreshHistory(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.loadHistory()
}

// applyFilters saves a filter change and reloads the task pane.
func (u *UI) applyFilters(patch filter.FiltersPatch) error {
	if _, err := u.session.ApplyFilters(context.Background(), patch); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	u.selectedTasks = 0
	return u.loadTasks()
}

func (u *UI) resetFilters(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if _, err := u.session.ResetFilters(context.Background()); err != nil {
		u.status = err.Error()
		return nil
	}
	u.selectedTasks = 0
	return u.reload(nil, nil)
}

func (u *UI) cycleSort(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := filter.NextSortKey(u.session.State().Filters.SortBy)
	return u.applyFilters(filter.FiltersPatch{SortBy: &next})
}

func (u *UI) cyclePriority(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := filter.NextPriority(u.session.State().Filters.Priority)
	return u.applyFilters(filter.FiltersPatch{Priority: &next})
}

func (u *UI) cycleTimeframe(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := filter.NextTimeframe(u.session.State().Filters.Timeframe)
	return u.applyFilters(filter.FiltersPatch{Timeframe: &next})
}

func (u *UI) cycleStatus(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := filter.NextStatus(u.session.State().Filters.Status)
	return u.applyFilters(filter.FiltersPatch{Status: &next})
}

func (u *UI) cycleView(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	filters := u.session.State().Filters
	next := filter.NextView(filters.View)
	// Keep the search when switching views from the keyboard.
	return u.applyFilters(filter.FiltersPatch{View: &next, Search: &filters.Search})
}

func (u *UI) toggleImportantOnly(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := !u.session.State().Filters.ImportantOnly
	return u.applyFilters(filter.FiltersPatch{ImportantOnly: &next})
}

func (u *UI) selectList(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewLists {
		return nil
	}
	entry := u.selectedListEntry()
	if entry == nil {
		return nil
	}
	id := entry.ID
	if id == u.session.State().Filters.List {
		id = ""
	}
	return u.applyFilters(filter.FiltersPatch{List: &id})
}

func (u *UI) startSearch(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search"
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.session.State().Filters.Search)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	value := strings.TrimSpace(view.Buffer())
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return u.applyFilters(filter.FiltersPatch{Search: &value})
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(maxY-2, 26)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

// add opens the editor that fits the focused pane.
func (u *UI) add(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewLists:
		u.prompt = &promptState{kind: promptNewList, title: "New List"}
	case viewChecklist:
		selected := u.selectedTask()
		if selected == nil {
			return nil
		}
		u.prompt = &promptState{kind: promptChecklist, title: "New Checklist Item", target: selected.ID}
	default:
		defaults := u.session.State().Settings.TaskDefaults
		if list := u.session.State().Filters.List; list != "" {
			defaults.List = list
		}
		u.form = &formState{fields: buildFormFields(nil, defaults)}
	}
	return nil
}

func (u *UI) edit(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewLists {
		entry := u.selectedListEntry()
		if entry == nil || entry.ID == "" {
			return nil
		}
		u.prompt = &promptState{kind: promptRenameList, title: "Rename List", initial: entry.Name, target: entry.ID}
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = &formState{taskID: selected.ID, fields: buildFormFields(selected, model.TaskDefaults{})}
	return nil
}

// remove deletes a list or checklist item, or moves the task to the trash.
func (u *UI) remove(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	ctx := context.Background()
	switch u.focus {
	case viewLists:
		entry := u.selectedListEntry()
		if entry == nil || entry.ID == "" {
			return nil
		}
		moved, err := u.session.DeleteList(ctx, entry.ID)
		if err != nil {
			u.status = err.Error()
			return nil
		}
		u.status = fmt.Sprintf("Deleted %s, moved %d task(s) to Inbox", entry.Name, moved)
		return u.loadTasks()
	case viewChecklist:
		selected := u.selectedTask()
		if selected == nil || u.selectedChecklist >= len(selected.Checklist) {
			return nil
		}
		return u.applyTask(u.session.RemoveChecklistItem(ctx, selected.ID, selected.Checklist[u.selectedChecklist].ID))
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	return u.applyTask(u.session.Trash(ctx, selected.ID))
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(12, max(9, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = "New Task"
	if u.form.taskID != "" {
		view.Title = "Edit Task"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitForm() error {
	if u.form == nil {
		return nil
	}

	values, err := parseFormFields(u.form.fields, u.session.State().Settings.Location())
	if err != nil {
		u.status = err.Error()
		return err
	}

	ctx := context.Background()
	if u.form.taskID == "" {
		_, err = u.session.CreateTask(ctx, values.taskInput())
	} else {
		_, err = u.session.UpdateTask(ctx, u.form.taskID, values.taskPatch())
	}
	if err != nil {
		u.status = err.Error()
		return err
	}

	u.form = nil
	u.status = ""
	return u.loadTasks()
}

func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if err := u.submitForm(); err != nil {
		return nil
	}
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		value := field.Value
		if isListField(field.Label) {
			if name, ok := u.session.ListName(value); ok {
				value = fmt.Sprintf("%s (%s)", name, value)
			}
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, value)
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (u *UI) listIDs() []string {
	ids := make([]string, 0, len(u.lists))
	for _, entry := range u.lists {
		if entry.ID != "" {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if isListField(field.Label) {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleOption(ui.listIDs(), field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleOption(ui.listIDs(), field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}

	if isPriorityField(field.Label) {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = nextPriorityValue(field.Value)
		case gocui.KeyArrowLeft:
			field.Value = prevPriorityValue(field.Value)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) showPrompt(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewPrompt, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.prompt.initial)
	}
	view.Title = u.prompt.title
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewPrompt)
	return nil
}

func (u *UI) submitPrompt(gui *gocui.Gui, view *gocui.View) error {
	if u.prompt == nil {
		return nil
	}
	if err := u.applyPrompt(strings.TrimSpace(view.Buffer())); err != nil {
		u.status = err.Error()
		return nil
	}
	return u.closePrompt(gui)
}

func (u *UI) cancelPrompt(gui *gocui.Gui, _ *gocui.View) error {
	if u.prompt == nil {
		return nil
	}
	return u.closePrompt(gui)
}

func (u *UI) closePrompt(gui *gocui.Gui) error {
	u.prompt = nil
	_ = gui.DeleteView(viewPrompt)
	_, _ = gui.SetCurrentView(u.focus)
	return u.loadTasks()
}

func (u *UI) applyPrompt(value string) error {
	if value == "" {
		return nil
	}
	ctx := context.Background()
	var err error
	switch u.prompt.kind {
	case promptNewList:
		_, err = u.session.CreateList(ctx, store.ListInput{Name: value})
	case promptRenameList:
		_, err = u.session.UpdateList(ctx, u.prompt.target, store.ListPatch{Name: &value})
	case promptChecklist:
		_, err = u.session.AddChecklistItem(ctx, u.prompt.target, value)
	}
	return err
}

func (u *UI) applyTask(_ model.Task, err error) error {
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) toggleComplete(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	return u.applyTask(u.session.ToggleComplete(context.Background(), selected.ID))
}

func (u *UI) toggleImportant(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	return u.applyTask(u.session.ToggleImportant(context.Background(), selected.ID))
}

func (u *UI) restoreTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil || !selected.Deleted {
		return nil
	}
	return u.applyTask(u.session.Restore(context.Background(), selected.ID))
}

func (u *UI) purgeTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil || !selected.Deleted {
		u.status = "Only trashed tasks can be purged"
		return nil
	}
	return u.applyTask(u.session.Purge(context.Background(), selected.ID))
}

func (u *UI) toggleChecklistItem(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewChecklist {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil || u.selectedChecklist >= len(selected.Checklist) {
		return nil
	}
	return u.applyTask(u.session.ToggleChecklistItem(context.Background(), selected.ID, selected.Checklist[u.selectedChecklist].ID))
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.form != nil || u.helpActive || u.prompt != nil
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes (lists/tasks/checklist/history)",
		"  1 Lists | 2 Tasks | 3 Detail | 4 Checklist | 5 History",
		"  j/k or arrows move selection",
		"  mouse click to focus/select",
		"",
		"Tasks:",
		"  a add | e edit | d trash | u restore | P purge (trash only)",
		"  x toggle done | i toggle important",
		"  enter save (form) | tab next field | space/left/right cycle list and priority",
		"",
		"Lists pane:",
		"  space/enter filter by list | a add | e rename | d delete (tasks move to Inbox)",
		"",
		"Checklist pane:",
		"  space/enter toggle item | a add item | d remove item",
		"",
		"Filters:",
		"  / search | s sort | p priority | t due window | f status",
		"  o important only | v cycle view (detail/calendar/matrix/analytics) | g reset",
		"",
		"Other:",
		"  h refresh history | r reload | ? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
