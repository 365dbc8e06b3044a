package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/styles"
)

type projectItem struct {
	project models.Project
	open    int
	total   int
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	return fmt.Sprintf("%d open • %d tasks", i.open, i.total)
}
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.project.Color)).Render("●")
	title := titleStyle.Render(swatch + " " + p.Title())
	desc := descStyle.Render("  " + p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// SelectedProject is emitted when a project is chosen as the task filter
type SelectedProject struct {
	Project models.Project
}

// BackToTasks returns to the task list without changing the filter
type BackToTasks struct{}

type projectsLoadedMsg struct {
	items []list.Item
}

// ProjectListView lists projects and creates new ones
type ProjectListView struct {
	store    *store.Store
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	creating bool
	loaded   bool
	newName  textinput.Model
	newColor textinput.Model
	focusIdx int // 0=name, 1=color, 2=confirm
	err      string

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewProjectListView creates the projects screen
func NewProjectListView(s *store.Store, km keys.KeyMap) *ProjectListView {
	st := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newColor := textinput.New()
	newColor.Placeholder = models.DefaultProjectColor
	newColor.CharLimit = 7

	// Setup custom delegate
	delegate := &projectDelegate{styles: st, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		store:    s,
		list:     l,
		delegate: delegate,
		styles:   st,
		keys:     km,
		newName:  newName,
		newColor: newColor,
	}
}

// Init initializes the view
func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	tasks := v.store.Tasks()
	projects := v.store.Projects()
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		item := projectItem{project: p}
		for _, t := range tasks {
			if t.ProjectID != p.ID {
				continue
			}
			item.total++
			if !t.Completed {
				item.open++
			}
		}
		items[i] = item
	}
	return projectsLoadedMsg{items: items}
}

// Update handles messages
func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		v.list.SetItems(msg.items)
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToTasks{} }
		case key.Matches(msg, v.keys.New):
			v.startCreating()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) startCreating() {
	v.creating = true
	v.focusIdx = 0
	v.err = ""
	v.newName.Reset()
	v.newColor.Reset()
	v.updateFocus()
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.create()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case msg.Type == tea.KeyEnter:
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.create()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newColor, cmd = v.newColor.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) create() tea.Cmd {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		v.err = "Name is required"
		return nil
	}
	color := strings.TrimSpace(v.newColor.Value())
	if color != "" && !validHexColor(color) {
		v.err = "Colour must look like #3B82F6"
		return nil
	}

	project, err := v.store.AddProject(models.ProjectInput{Name: name, Color: color})
	if err != nil {
		v.err = err.Error()
		return nil
	}
	v.creating = false
	return tea.Batch(v.loadProjects, func() tea.Msg {
		return SelectedProject{Project: project}
	})
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newColor.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newColor.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Press '%s' to create your first project", v.keys.New.Help().Key)),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	colorStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		colorStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	preview := strings.TrimSpace(v.newColor.Value())
	if !validHexColor(preview) {
		preview = models.DefaultProjectColor
	}
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		name = "Preview"
	}

	rows := []string{
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Colour:",
		colorStyle.Width(inputWidth).Render(v.newColor.View()),
		styles.ProjectBadge(models.Project{Name: name, Color: preview}),
		"",
		btnStyle.Render(" Create "),
	}
	if v.err != "" {
		rows = append(rows, s.Error.Render(v.err))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render(v.keys.Help.Help().Key) + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s filter tasks • %s new • %s back • %s quit",
			v.styles.HelpKey.Render(v.keys.Enter.Help().Key),
			v.styles.HelpKey.Render(v.keys.New.Help().Key),
			v.styles.HelpKey.Render(v.keys.Back.Help().Key),
			v.styles.HelpKey.Render(v.keys.Quit.Help().Key),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render(fmt.Sprintf("%-7s", v.keys.Enter.Help().Key)) + "show this project's tasks",
		s.HelpKey.Render(fmt.Sprintf("%-7s", v.keys.New.Help().Key)) + "new project",
		s.HelpKey.Render(fmt.Sprintf("%-7s", v.keys.Back.Help().Key)) + "back to tasks",
		s.HelpKey.Render(fmt.Sprintf("%-7s", v.keys.Quit.Help().Key)) + "quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
