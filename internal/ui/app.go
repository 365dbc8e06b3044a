package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/styles"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewProjects
)

// ProjectFilterSetting is the settings key holding the last project filter
const ProjectFilterSetting = "project_filter"

// BannerDuration is how long a reminder banner stays on screen
const BannerDuration = 10 * time.Second

// Settings persists small UI preferences between runs
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// ReminderMsg carries tasks whose reminders just fired
type ReminderMsg struct {
	Tasks []models.Task
}

type clearBannerMsg struct {
	seq int
}

type App struct {
	store       *store.Store
	settings    Settings
	keys        keys.KeyMap
	styles      *styles.Styles
	currentView View
	taskList    *views.TaskListView
	projectList *views.ProjectListView
	width       int
	height      int

	banner    string
	bannerSeq int
}

// NewApp creates a new application, restoring the last project filter
func NewApp(s *store.Store, settings Settings, km keys.KeyMap) *App {
	projectID, err := settings.GetSetting(ProjectFilterSetting)
	if err != nil {
		log.Printf("Could not read project filter setting: %v", err)
	}
	if _, ok := s.Project(projectID); !ok {
		projectID = ""
	}

	return &App{
		store:       s,
		settings:    settings,
		keys:        km,
		styles:      styles.NewStyles(),
		currentView: ViewTasks,
		taskList:    views.NewTaskListView(s, km, projectID),
		projectList: views.NewProjectListView(s, km),
	}
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) saveProjectFilter(id string) {
	if err := a.settings.SetSetting(ProjectFilterSetting, id); err != nil {
		log.Printf("Could not save project filter: %v", err)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Both views keep their layout between switches
		a.projectList.Update(msg)
		a.taskList.Update(msg)
		return a, nil

	case ReminderMsg:
		if len(msg.Tasks) == 0 {
			return a, nil
		}
		titles := make([]string, len(msg.Tasks))
		for i, t := range msg.Tasks {
			titles[i] = t.Title
		}
		a.banner = fmt.Sprintf("⏰ Reminder: %s", strings.Join(titles, ", "))
		a.bannerSeq++
		seq := a.bannerSeq
		return a, tea.Tick(BannerDuration, func(time.Time) tea.Msg {
			return clearBannerMsg{seq: seq}
		})

	case clearBannerMsg:
		if msg.seq == a.bannerSeq {
			a.banner = ""
		}
		return a, nil

	case views.ShowProjects:
		a.currentView = ViewProjects
		return a, tea.Batch(a.projectList.Init(), a.resize())

	case views.BackToTasks:
		a.currentView = ViewTasks
		return a, tea.Batch(a.taskList.Init(), a.resize())

	case views.SelectedProject:
		a.currentView = ViewTasks
		a.taskList.SetProjectFilter(msg.Project.ID)
		a.saveProjectFilter(msg.Project.ID)
		return a, tea.Batch(a.taskList.Init(), a.resize())

	case views.ProjectFilterChanged:
		a.saveProjectFilter(msg.ProjectID)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	default:
		_, cmd = a.taskList.Update(msg)
	}

	return a, cmd
}

// Banner returns the reminder banner text, empty when none is showing
func (a *App) Banner() string {
	return a.banner
}

// CurrentView reports which screen is active
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) View() string {
	var body string
	switch a.currentView {
	case ViewProjects:
		body = a.projectList.View()
	default:
		body = a.taskList.View()
	}
	if a.banner == "" {
		return body
	}
	banner := a.styles.Banner.Width(styles.ContentWidth(a.width)).Render(a.banner)
	return lipgloss.JoinVertical(lipgloss.Left, styles.CenterView(banner, a.width, 1), body)
}
