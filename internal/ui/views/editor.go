package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/styles"
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldDesc
	fieldPriority
	fieldProject
	fieldDue
	fieldReminder
	fieldTags
	fieldSave
	editorFieldCount
)

// editorClosedMsg is sent when the editor is saved or cancelled
type editorClosedMsg struct {
	taskID string
	saved  bool
}

// TaskEditor is the create/edit form for a single task
type TaskEditor struct {
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap
	loc    *time.Location

	width  int
	height int

	taskID     string // empty when creating
	title      textinput.Model
	desc       textarea.Model
	priority   models.Priority
	projects   []models.Project
	projectIdx int // 0 = no project
	due        textinput.Model
	reminder   textinput.Model
	tags       textinput.Model
	focus      editorField
	err        string

	// stored instants, kept when their field text is left alone
	origDue      *time.Time
	origReminder *time.Time
}

// NewTaskEditor creates an idle editor
func NewTaskEditor(s *store.Store, st *styles.Styles, km keys.KeyMap) *TaskEditor {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD HH:MM"
	due.CharLimit = 16

	reminder := textinput.New()
	reminder.Placeholder = "YYYY-MM-DD HH:MM"
	reminder.CharLimit = 16

	tags := textinput.New()
	tags.Placeholder = "work, home"
	tags.CharLimit = 200

	return &TaskEditor{
		store:    s,
		styles:   st,
		keys:     km,
		loc:      time.Local,
		title:    title,
		desc:     desc,
		due:      due,
		reminder: reminder,
		tags:     tags,
	}
}

// StartNew resets the form for a new task, preselecting projectID
func (e *TaskEditor) StartNew(projectID string) {
	e.taskID = ""
	e.err = ""
	e.title.Reset()
	e.desc.Reset()
	e.due.Reset()
	e.reminder.Reset()
	e.tags.Reset()
	e.origDue = nil
	e.origReminder = nil
	e.priority = models.PriorityMedium
	e.loadProjects(projectID)
	e.focus = fieldTitle
	e.updateFocus()
}

// StartEdit fills the form from an existing task
func (e *TaskEditor) StartEdit(t models.Task) {
	e.taskID = t.ID
	e.err = ""
	e.title.SetValue(t.Title)
	e.desc.SetValue(t.Description)
	e.origDue = copyTime(t.DueDate)
	e.origReminder = copyTime(t.Reminder)
	e.due.SetValue(e.formatTime(t.DueDate))
	e.reminder.SetValue(e.formatTime(t.Reminder))
	e.tags.SetValue(strings.Join(t.Tags, ", "))
	e.title.CursorEnd()
	e.due.CursorEnd()
	e.reminder.CursorEnd()
	e.tags.CursorEnd()
	e.priority = t.Priority
	if !e.priority.Valid() {
		e.priority = models.PriorityMedium
	}
	e.loadProjects(t.ProjectID)
	e.focus = fieldTitle
	e.updateFocus()
}

func (e *TaskEditor) loadProjects(selected string) {
	e.projects = e.store.Projects()
	e.projectIdx = 0
	for i, p := range e.projects {
		if p.ID == selected {
			e.projectIdx = i + 1
			break
		}
	}
}

// SetSize adapts the form to the terminal
func (e *TaskEditor) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.desc.SetWidth(clamp(styles.ContentWidth(width)-10, 20, 50))
}

// Update handles a key press while the form is open
func (e *TaskEditor) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, e.keys.Back):
		return closeEditor("", false)

	case key.Matches(msg, e.keys.Save):
		return e.save()

	case msg.String() == "shift+tab":
		e.cycleFocus(-1)
		return nil

	case key.Matches(msg, e.keys.Tab):
		e.cycleFocus(1)
		return nil
	}

	switch e.focus {
	case fieldPriority:
		switch msg.String() {
		case "left", "h":
			e.priority = nextPriority(e.priority, -1)
		case "right", "l", " ":
			e.priority = nextPriority(e.priority, 1)
		case "enter":
			e.cycleFocus(1)
		}
		return nil

	case fieldProject:
		n := len(e.projects) + 1
		switch msg.String() {
		case "left", "h":
			e.projectIdx = (e.projectIdx + n - 1) % n
		case "right", "l", " ":
			e.projectIdx = (e.projectIdx + 1) % n
		case "enter":
			e.cycleFocus(1)
		}
		return nil

	case fieldSave:
		if key.Matches(msg, e.keys.Enter) {
			return e.save()
		}
		return nil
	}

	if key.Matches(msg, e.keys.Enter) && e.focus != fieldDesc {
		e.cycleFocus(1)
		return nil
	}

	var cmd tea.Cmd
	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
	case fieldDesc:
		e.desc, cmd = e.desc.Update(msg)
	case fieldDue:
		e.due, cmd = e.due.Update(msg)
	case fieldReminder:
		e.reminder, cmd = e.reminder.Update(msg)
	case fieldTags:
		e.tags, cmd = e.tags.Update(msg)
	}
	return cmd
}

func (e *TaskEditor) cycleFocus(dir int) {
	e.focus = editorField((int(e.focus) + dir + int(editorFieldCount)) % int(editorFieldCount))
	e.updateFocus()
}

func (e *TaskEditor) updateFocus() {
	e.title.Blur()
	e.desc.Blur()
	e.due.Blur()
	e.reminder.Blur()
	e.tags.Blur()

	switch e.focus {
	case fieldTitle:
		e.title.Focus()
	case fieldDesc:
		e.desc.Focus()
	case fieldDue:
		e.due.Focus()
	case fieldReminder:
		e.reminder.Focus()
	case fieldTags:
		e.tags.Focus()
	}
}

func (e *TaskEditor) selectedProjectID() string {
	if e.projectIdx == 0 || e.projectIdx > len(e.projects) {
		return ""
	}
	return e.projects[e.projectIdx-1].ID
}

func (e *TaskEditor) save() tea.Cmd {
	title := strings.TrimSpace(e.title.Value())
	if title == "" {
		e.err = "Title is required"
		return nil
	}
	due, err := e.parseTime(e.due.Value(), e.origDue)
	if err != nil {
		e.err = "Due: " + err.Error()
		return nil
	}
	reminder, err := e.parseTime(e.reminder.Value(), e.origReminder)
	if err != nil {
		e.err = "Reminder: " + err.Error()
		return nil
	}
	desc := strings.TrimSpace(e.desc.Value())
	tags := ParseTags(e.tags.Value())

	if e.taskID == "" {
		task, err := e.store.AddTask(models.TaskInput{
			Title:       title,
			Description: desc,
			Priority:    e.priority,
			DueDate:     due,
			Reminder:    reminder,
			Tags:        tags,
			ProjectID:   e.selectedProjectID(),
		})
		if err != nil {
			e.err = err.Error()
			return nil
		}
		return closeEditor(task.ID, true)
	}

	// Apply the form on top of the latest stored version so subtask changes
	// made elsewhere are not lost.
	task, ok := e.store.Task(e.taskID)
	if !ok {
		return closeEditor("", false)
	}
	task.Title = title
	task.Description = desc
	task.Priority = e.priority
	task.DueDate = due
	task.Reminder = reminder
	task.Tags = tags
	task.ProjectID = e.selectedProjectID()
	if err := e.store.UpdateTask(task); err != nil {
		e.err = err.Error()
		return nil
	}
	return closeEditor(task.ID, true)
}

func (e *TaskEditor) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(e.loc).Format(DateTimeLayout)
}

// parseTime reads a date field. Text that still matches the stored instant
// returns that instant, so seconds the form cannot show survive a save.
func (e *TaskEditor) parseTime(input string, orig *time.Time) (*time.Time, error) {
	if orig != nil && strings.TrimSpace(input) == e.formatTime(orig) {
		return copyTime(orig), nil
	}
	return ParseDateTime(input, e.loc)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func closeEditor(taskID string, saved bool) tea.Cmd {
	return func() tea.Msg {
		return editorClosedMsg{taskID: taskID, saved: saved}
	}
}

// View renders the form
func (e *TaskEditor) View() string {
	s := e.styles
	contentWidth := styles.ContentWidth(e.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle := "New Task"
	if e.taskID != "" {
		formTitle = "Edit Task"
	}

	field := func(f editorField) lipgloss.Style {
		if e.focus == f {
			return s.InputFocused.Width(inputWidth)
		}
		return s.Input.Width(inputWidth)
	}

	priority := styles.PriorityStyle(e.priority).Render("◀ " + e.priority.Label() + " ▶")

	project := s.TitleMuted.Render("No project")
	if e.projectIdx > 0 && e.projectIdx <= len(e.projects) {
		project = styles.ProjectBadge(e.projects[e.projectIdx-1])
	}
	project = "◀ " + project + " ▶"

	btnStyle := s.Button
	if e.focus == fieldSave {
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		field(fieldTitle).Render(e.title.View()),
		"Description:",
		field(fieldDesc).Render(e.desc.View()),
		"Priority:",
		field(fieldPriority).Render(priority),
		"Project:",
		field(fieldProject).Render(project),
		"Due:",
		field(fieldDue).Render(e.due.View()),
		"Reminder:",
		field(fieldReminder).Render(e.reminder.View()),
		"Tags:",
		field(fieldTags).Render(e.tags.View()),
		"",
		btnStyle.Render(" Save "),
	}
	if e.err != "" {
		rows = append(rows, s.Error.Render(e.err))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←/→: change • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, e.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, e.width, e.height)
}
