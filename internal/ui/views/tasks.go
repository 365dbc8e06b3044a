package views

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/query"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/styles"
)

// ShowProjects asks the app to switch to the projects view
type ShowProjects struct{}

// ProjectFilterChanged is emitted whenever the project filter changes
type ProjectFilterChanged struct {
	ProjectID string
}

type tasksLoadedMsg struct {
	tasks    []models.Task
	projects []models.Project
}

type tasksChangedMsg struct{}

type storeErrMsg struct {
	err error
}

// mutate turns the result of a store call into the message that refreshes
// the views
func mutate(err error) tea.Cmd {
	if err != nil {
		log.Printf("Saving tasks failed: %v", err)
		return func() tea.Msg { return storeErrMsg{err: err} }
	}
	return func() tea.Msg { return tasksChangedMsg{} }
}

type dropdownKind int

const (
	dropdownNone dropdownKind = iota
	dropdownTag
	dropdownProject
)

// TaskListView is the main screen: filters on top, tasks below
type TaskListView struct {
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap
	now    func() time.Time

	width  int
	height int

	all      []models.Task // every task, newest first
	tasks    []models.Task // all narrowed by filter
	projects []models.Project
	filter   query.Filter
	loaded   bool

	cursor      int
	scrollY     int
	searching   bool
	searchInput textinput.Model

	dropdown       dropdownKind
	dropdownCursor int

	editing bool
	editor  *TaskEditor

	viewingTask bool
	detail      *TaskDetail

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	status string

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewTaskListView creates the task list, filtered to projectID when set
func NewTaskListView(s *store.Store, km keys.KeyMap, projectID string) *TaskListView {
	st := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	return &TaskListView{
		store:       s,
		styles:      st,
		keys:        km,
		now:         time.Now,
		filter:      query.Filter{ProjectID: projectID},
		searchInput: search,
		editor:      NewTaskEditor(s, st, km),
		detail:      NewTaskDetail(s, st, km),
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskListView) loadTasks() tea.Msg {
	return tasksLoadedMsg{tasks: v.store.Tasks(), projects: v.store.Projects()}
}

// Filter returns the filter currently applied
func (v *TaskListView) Filter() query.Filter {
	return v.filter
}

// Visible returns the tasks currently listed
func (v *TaskListView) Visible() []models.Task {
	return v.tasks
}

// SetProjectFilter narrows the list to one project, or clears the project
// filter when id is empty
func (v *TaskListView) SetProjectFilter(id string) {
	v.filter.ProjectID = id
	v.applyFilter()
}

func (v *TaskListView) applyFilter() {
	v.tasks = query.Apply(v.all, v.filter)
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.searchInput.Width = clamp(styles.ContentWidth(v.width)-12, 10, 30)
		v.editor.SetSize(msg.Width, msg.Height)
		v.detail.SetSize(msg.Width, msg.Height)
		return v, nil

	case tasksLoadedMsg:
		v.all = msg.tasks
		v.projects = msg.projects
		v.loaded = true
		if v.filter.ProjectID != "" && !v.hasProject(v.filter.ProjectID) {
			v.filter.ProjectID = ""
		}
		v.applyFilter()
		return v, nil

	case tasksChangedMsg:
		v.status = ""
		return v, v.loadTasks

	case storeErrMsg:
		v.status = "Could not save: " + msg.err.Error()
		return v, v.loadTasks

	case editorClosedMsg:
		v.editing = false
		if !msg.saved {
			return v, nil
		}
		v.status = ""
		v.loadTasksNow()
		if !v.viewingTask {
			v.selectTask(msg.taskID)
		}
		return v, nil

	case detailClosedMsg:
		v.viewingTask = false
		return v, v.loadTasks

	case editTaskMsg:
		v.editing = true
		v.editor.StartEdit(msg.task)
		return v, textinput.Blink

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v, v.editor.Update(msg)
		}

		if v.viewingTask {
			return v, v.detail.Update(msg)
		}

		if v.dropdown != dropdownNone {
			return v.updateDropdown(msg)
		}

		if v.searching {
			return v.updateSearch(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) loadTasksNow() {
	if m, ok := v.loadTasks().(tasksLoadedMsg); ok {
		v.Update(m)
	}
}

func (v *TaskListView) selectTask(id string) {
	for i, t := range v.tasks {
		if t.ID == id {
			v.cursor = i
			v.ensureVisible()
			return
		}
	}
}

func (v *TaskListView) hasProject(id string) bool {
	for _, p := range v.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (v *TaskListView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), msg.Type == tea.KeyEnter:
		v.searching = false
		v.searchInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	v.filter.Search = v.searchInput.Value()
	v.applyFilter()
	return v, cmd
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selected(); ok {
			return v, mutate(v.store.ToggleTask(task.ID))
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			v.viewingTask = true
			v.detail.Open(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.editing = true
		v.editor.StartNew(v.filter.ProjectID)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.editing = true
			v.editor.StartEdit(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Priority):
		v.filter.Priority = cyclePriorityFilter(v.filter.Priority)
		v.applyFilter()
		return v, nil

	case key.Matches(msg, v.keys.TagFilter):
		v.dropdown = dropdownTag
		v.dropdownCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.ProjectFilter):
		v.dropdown = dropdownProject
		v.dropdownCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.ClearFilters):
		hadProject := v.filter.ProjectID != ""
		v.filter = query.Filter{}
		v.searchInput.Reset()
		v.applyFilter()
		if hadProject {
			return v, projectFilterChanged("")
		}
		return v, nil

	case key.Matches(msg, v.keys.Projects):
		return v, func() tea.Msg { return ShowProjects{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// cyclePriorityFilter steps all -> high -> medium -> low -> all
func cyclePriorityFilter(p models.Priority) models.Priority {
	switch p {
	case "":
		return models.PriorityHigh
	case models.PriorityHigh:
		return models.PriorityMedium
	case models.PriorityMedium:
		return models.PriorityLow
	}
	return ""
}

func projectFilterChanged(id string) tea.Cmd {
	return func() tea.Msg { return ProjectFilterChanged{ProjectID: id} }
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// dropdownOptions lists the choices of the open dropdown after the leading
// "All" entry
func (v *TaskListView) dropdownOptions() []string {
	switch v.dropdown {
	case dropdownTag:
		return query.AvailableTags(v.all)
	case dropdownProject:
		names := make([]string, len(v.projects))
		for i, p := range v.projects {
			names[i] = p.Name
		}
		return names
	}
	return nil
}

func (v *TaskListView) updateDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := v.dropdownOptions()

	switch {
	case key.Matches(msg, v.keys.Back):
		v.dropdown = dropdownNone
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.dropdownCursor > 0 {
			v.dropdownCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.dropdownCursor < len(options) { // +1 for "All" option
			v.dropdownCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		kind := v.dropdown
		v.dropdown = dropdownNone
		v.cursor = 0
		v.scrollY = 0

		switch kind {
		case dropdownTag:
			v.filter.Tag = ""
			if v.dropdownCursor > 0 {
				v.filter.Tag = options[v.dropdownCursor-1]
			}
			v.applyFilter()
			return v, nil
		case dropdownProject:
			id := ""
			if v.dropdownCursor > 0 {
				id = v.projects[v.dropdownCursor-1].ID
			}
			v.SetProjectFilter(id)
			return v, projectFilterChanged(id)
		}
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, mutate(v.store.DeleteTask(v.deleteTargetID))
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines + 1 margin
	availableHeight := max(v.height-12, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.editor.View()
	}

	if v.viewingTask {
		return v.detail.View()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) projectName(id string) string {
	for _, p := range v.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(clamp(contentWidth-8, 10, 30)).Render(v.searchInput.View())

	label := func(name, value string) string {
		if value == "" {
			return s.FilterLabel.Render(name + ": All")
		}
		return s.FilterLabel.Render(name+": ") + s.FilterActive.Render(value)
	}

	filters := strings.Join([]string{
		label("Priority", v.filter.Priority.Label()),
		label("Tag", v.filter.Tag),
		label("Project", v.projectName(v.filter.ProjectID)),
	}, "  ")

	title := s.Title.Render("Tasks")

	var header string
	if contentWidth < 60 {
		header = lipgloss.JoinVertical(lipgloss.Left, searchBox, filters)
	} else {
		header = lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", filters)
	}

	dropdown := ""
	if v.dropdown != dropdownNone {
		dropdown = "\n" + v.renderDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, header+dropdown)
}

// renderStatusBar shows the task counts, followed by the last store error
func (v *TaskListView) renderStatusBar() string {
	open := 0
	for _, t := range v.all {
		if !t.Completed {
			open++
		}
	}
	bar := v.styles.StatusBar.Render(fmt.Sprintf("%d shown • %d open • %d total", len(v.tasks), open, len(v.all)))
	if v.status != "" {
		bar += " " + v.styles.Error.Render(v.status)
	}
	return bar
}

func (v *TaskListView) renderDropdown() string {
	s := v.styles
	var items []string

	allLabel := "All tags"
	if v.dropdown == dropdownProject {
		allLabel = "All projects"
	}
	allStyle := s.ListItem
	if v.dropdownCursor == 0 {
		allStyle = s.ListSelected
	}
	items = append(items, allStyle.Render(allLabel))

	for i, option := range v.dropdownOptions() {
		itemStyle := s.ListItem
		if v.dropdownCursor == i+1 {
			itemStyle = s.ListSelected
		}
		if v.dropdown == dropdownProject {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(v.projects[i].Color)).Render("●")
			option = swatch + " " + option
		} else {
			option = "#" + option
		}
		items = append(items, itemStyle.Render(option))
	}

	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.all) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}
	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks match the filters. Press 'c' to clear them.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	check := "[ ]"
	title := task.Title
	if task.Completed {
		check = s.Checkmark.Render("[x]")
		title = s.Done.Render(task.Title)
	}

	titleLine := check + " " + title + "  " + styles.PriorityStyle(task.Priority).Render(task.Priority.Label())
	if task.ProjectID != "" {
		for _, p := range v.projects {
			if p.ID == task.ProjectID {
				titleLine += "  " + styles.ProjectBadge(p)
				break
			}
		}
	}

	var meta []string
	if task.DueDate != nil {
		due := "due " + FormatDateTime(task.DueDate)
		if task.IsOverdue(v.now()) {
			due = s.Overdue.Render(due)
		}
		meta = append(meta, due)
	}
	if task.Reminder != nil {
		meta = append(meta, s.Reminder.Render("⏰ "+FormatDateTime(task.Reminder)))
	}
	if done, total := task.SubtaskProgress(); total > 0 {
		meta = append(meta, fmt.Sprintf("%d/%d subtasks", done, total))
	}
	for _, tag := range task.Tags {
		meta = append(meta, s.Tag.Render("#"+tag))
	}
	metaLine := s.Subtle.Render("no details")
	if len(meta) > 0 {
		metaLine = strings.Join(meta, "  ")
	}

	lineStyle := s.ListItem.Width(width)
	if selected {
		lineStyle = s.ListSelected.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lineStyle.Render(titleLine),
		lineStyle.Render("    "+metaLine),
	) + "\n"
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render(v.keys.Help.Help().Key) + " help")
	}

	var parts []string
	for _, b := range []key.Binding{v.keys.Toggle, v.keys.New, v.keys.Edit, v.keys.Delete, v.keys.Search, v.keys.Projects, v.keys.Help, v.keys.Quit} {
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+h.Desc)
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	bindings := []key.Binding{
		v.keys.Up, v.keys.Down, v.keys.Enter, v.keys.Toggle, v.keys.New, v.keys.Edit,
		v.keys.Delete, v.keys.Search, v.keys.Priority, v.keys.TagFilter,
		v.keys.ProjectFilter, v.keys.ClearFilters, v.keys.Projects, v.keys.Quit,
	}
	helpItems := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, b := range bindings {
		h := b.Help()
		helpItems = append(helpItems, s.HelpKey.Render(fmt.Sprintf("%-7s", h.Key))+s.HelpDesc.Render(h.Desc))
	}
	helpItems = append(helpItems, "", s.TitleMuted.Render("Press any key to close"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, helpItems...)),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and its subtasks will be removed.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
