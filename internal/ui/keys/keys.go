package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/MohammedKaif037/ToDoImprovised/internal/config"
)

// KeyMap holds every binding the views respond to
type KeyMap struct {
	Quit          key.Binding
	Back          key.Binding
	Up            key.Binding
	Down          key.Binding
	Enter         key.Binding
	Tab           key.Binding
	New           key.Binding
	Edit          key.Binding
	Toggle        key.Binding
	Delete        key.Binding
	Search        key.Binding
	Priority      key.Binding
	TagFilter     key.Binding
	ProjectFilter key.Binding
	ClearFilters  key.Binding
	Projects      key.Binding
	AddSubtask    key.Binding
	DeleteSubtask key.Binding
	Save          key.Binding
	Help          key.Binding
}

// DefaultKeyMap returns the built-in bindings
func DefaultKeyMap() KeyMap {
	return FromConfig(config.DefaultKeymap())
}

// FromConfig builds bindings from the [keys] section of the config file.
// Arrow keys and ctrl+c always work alongside the configured keys.
func FromConfig(k config.Keymap) KeyMap {
	return KeyMap{
		Quit:          bind(k.Quit, "quit", "ctrl+c"),
		Back:          bind(k.Back, "back"),
		Up:            bind(k.Up, "up", "up"),
		Down:          bind(k.Down, "down", "down"),
		Enter:         bind(k.Enter, "open"),
		Tab:           bind(k.Tab, "next"),
		New:           bind(k.New, "new"),
		Edit:          bind(k.Edit, "edit"),
		Toggle:        bind(k.Toggle, "toggle"),
		Delete:        bind(k.Delete, "delete"),
		Search:        bind(k.Search, "search"),
		Priority:      bind(k.Priority, "priority"),
		TagFilter:     bind(k.TagFilter, "tag"),
		ProjectFilter: bind(k.ProjectFilter, "project"),
		ClearFilters:  bind(k.ClearFilters, "clear filters"),
		Projects:      bind(k.Projects, "projects"),
		AddSubtask:    bind(k.AddSubtask, "add subtask"),
		DeleteSubtask: bind(k.DeleteSubtask, "delete subtask"),
		Save:          bind(k.Save, "save"),
		Help:          bind(k.Help, "help"),
	}
}

func bind(primary, desc string, extra ...string) key.Binding {
	keys := append([]string{primary}, extra...)
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(Label(primary), desc),
	)
}

// Label renders a key for help text
func Label(k string) string {
	switch k {
	case " ":
		return "space"
	case "enter":
		return "↵"
	}
	return k
}
