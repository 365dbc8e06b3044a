package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/styles"
)

type detailClosedMsg struct{}

type editTaskMsg struct {
	task models.Task
}

// TaskDetail shows one task with its subtasks
type TaskDetail struct {
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap
	now    func() time.Time

	width  int
	height int

	taskID string
	cursor int
	adding bool
	input  textinput.Model
}

// NewTaskDetail creates an empty detail view
func NewTaskDetail(s *store.Store, st *styles.Styles, km keys.KeyMap) *TaskDetail {
	input := textinput.New()
	input.Placeholder = "New subtask"
	input.CharLimit = 200

	return &TaskDetail{
		store:  s,
		styles: st,
		keys:   km,
		now:    time.Now,
		input:  input,
	}
}

// Open points the view at a task
func (d *TaskDetail) Open(taskID string) {
	d.taskID = taskID
	d.cursor = 0
	d.adding = false
	d.input.Reset()
	d.input.Blur()
}

// SetSize adapts the view to the terminal
func (d *TaskDetail) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.input.Width = clamp(styles.ContentWidth(width)-10, 20, 50)
}

func (d *TaskDetail) task() (models.Task, bool) {
	return d.store.Task(d.taskID)
}

// Update handles a key press while the detail view is open
func (d *TaskDetail) Update(msg tea.KeyMsg) tea.Cmd {
	if d.adding {
		return d.updateAdding(msg)
	}

	task, ok := d.task()
	if !ok {
		return func() tea.Msg { return detailClosedMsg{} }
	}

	switch {
	case key.Matches(msg, d.keys.Back):
		return func() tea.Msg { return detailClosedMsg{} }

	case key.Matches(msg, d.keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}

	case key.Matches(msg, d.keys.Down):
		if d.cursor < len(task.Subtasks)-1 {
			d.cursor++
		}

	case key.Matches(msg, d.keys.Toggle):
		if len(task.Subtasks) > 0 {
			return mutate(d.store.ToggleSubtask(task.ID, task.Subtasks[d.cursor].ID))
		}

	case key.Matches(msg, d.keys.DeleteSubtask):
		if len(task.Subtasks) > 0 {
			err := d.store.DeleteSubtask(task.ID, task.Subtasks[d.cursor].ID)
			if d.cursor >= len(task.Subtasks)-1 {
				d.cursor = max(0, len(task.Subtasks)-2)
			}
			return mutate(err)
		}

	case key.Matches(msg, d.keys.AddSubtask):
		d.adding = true
		d.input.Reset()
		d.input.Focus()
		return textinput.Blink

	case key.Matches(msg, d.keys.Edit):
		return func() tea.Msg { return editTaskMsg{task: task} }
	}
	return nil
}

func (d *TaskDetail) updateAdding(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.adding = false
		d.input.Blur()
		return nil

	case msg.Type == tea.KeyEnter:
		title := d.input.Value()
		d.adding = false
		d.input.Blur()
		d.input.Reset()
		if strings.TrimSpace(title) == "" {
			return nil
		}
		err := d.store.AddSubtask(d.taskID, title)
		if task, ok := d.task(); ok && err == nil {
			d.cursor = max(0, len(task.Subtasks)-1)
		}
		return mutate(err)
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

// View renders the detail view
func (d *TaskDetail) View() string {
	s := d.styles
	contentWidth := styles.ContentWidth(d.width)

	task, ok := d.task()
	if !ok {
		return s.TitleMuted.Render("Task not found")
	}

	var rows []string
	title := s.Title.Render(task.Title)
	if task.Completed {
		title = s.Done.Render(task.Title) + " " + s.Checkmark.Render("✓")
	}
	rows = append(rows, title, "")

	if task.Description != "" {
		rows = append(rows,
			lipgloss.NewStyle().Width(clamp(contentWidth-6, 20, 70)).Render(task.Description),
			"")
	}

	meta := []string{styles.PriorityStyle(task.Priority).Render(task.Priority.Label())}
	if task.ProjectID != "" {
		if p, ok := d.store.Project(task.ProjectID); ok {
			meta = append(meta, styles.ProjectBadge(p))
		}
	}
	rows = append(rows, strings.Join(meta, "  "))

	if task.DueDate != nil {
		due := "Due " + FormatDateTime(task.DueDate)
		if task.IsOverdue(d.now()) {
			due = s.Overdue.Render(due + " (overdue)")
		}
		rows = append(rows, due)
	}
	if task.Reminder != nil {
		rows = append(rows, s.Reminder.Render("Reminder "+FormatDateTime(task.Reminder)))
	}
	if len(task.Tags) > 0 {
		var tags []string
		for _, t := range task.Tags {
			tags = append(tags, s.Tag.Render("#"+t))
		}
		rows = append(rows, strings.Join(tags, ""))
	}

	done, total := task.SubtaskProgress()
	rows = append(rows, "", s.Title.Render(fmt.Sprintf("Subtasks %d/%d", done, total)))
	if total == 0 {
		rows = append(rows, s.TitleMuted.Render("No subtasks. Press 'a' to add one."))
	}
	width := max(contentWidth-4, 20)
	for i, st := range task.Subtasks {
		check := "[ ]"
		label := st.Title
		if st.Completed {
			check = s.Checkmark.Render("[x]")
			label = s.Done.Render(st.Title)
		}
		style := s.ListItem.Width(width)
		if i == d.cursor && !d.adding {
			style = s.ListSelected.Width(width)
		}
		rows = append(rows, style.Render(check+" "+label))
	}

	if d.adding {
		rows = append(rows, "", s.InputFocused.Render(d.input.View()))
	}

	rows = append(rows, "", s.Help.Render(fmt.Sprintf("%s add • %s toggle • %s delete • %s edit • %s back",
		s.HelpKey.Render(d.keys.AddSubtask.Help().Key),
		s.HelpKey.Render(d.keys.Toggle.Help().Key),
		s.HelpKey.Render(d.keys.DeleteSubtask.Help().Key),
		s.HelpKey.Render(d.keys.Edit.Help().Key),
		s.HelpKey.Render(d.keys.Back.Help().Key),
	)))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(s.FilterBar.Width(contentWidth-2).Render(content), d.width, d.height)
}
