package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "todo"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	ConfigPathEnv         = "TODO_CONFIG"
)

// Notification backends
const (
	BackendDesktop = "desktop"
	BackendNATS    = "nats"
	BackendNone    = "none"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Back          string `toml:"back"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Enter         string `toml:"enter"`
	Tab           string `toml:"tab"`
	New           string `toml:"new"`
	Edit          string `toml:"edit"`
	Toggle        string `toml:"toggle"`
	Delete        string `toml:"delete"`
	Search        string `toml:"search"`
	Priority      string `toml:"priority_filter"`
	TagFilter     string `toml:"tag_filter"`
	ProjectFilter string `toml:"project_filter"`
	ClearFilters  string `toml:"clear_filters"`
	Projects      string `toml:"projects"`
	AddSubtask    string `toml:"add_subtask"`
	DeleteSubtask string `toml:"delete_subtask"`
	Save          string `toml:"save"`
	Help          string `toml:"help"`
}

type Reminders struct {
	IntervalSeconds int `toml:"interval_seconds"`
	WindowSeconds   int `toml:"window_seconds"`
}

// Interval is the time between reminder scans
func (r Reminders) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// Window is how late after its reminder time a task may still fire
func (r Reminders) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type Notifications struct {
	Backend     string `toml:"backend"`
	AppName     string `toml:"app_name"`
	Icon        string `toml:"icon"`
	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`
}

type Config struct {
	DBPath        string        `toml:"db_path"`
	LogFile       string        `toml:"log_file"`
	Reminders     Reminders     `toml:"reminders"`
	Notifications Notifications `toml:"notifications"`
	Keys          Keymap        `toml:"keys"`
}

// ResolveConfigPath returns $TODO_CONFIG if set, otherwise the config file
// under the XDG config directory.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// DefaultDBPath returns the database path under the XDG data directory
func DefaultDBPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(dir, AppName, DefaultDBName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if the file does not exist. Missing values fall back to defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) fillDefaults() {
	d := defaultConfig()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Reminders.IntervalSeconds <= 0 {
		c.Reminders.IntervalSeconds = d.Reminders.IntervalSeconds
	}
	if c.Reminders.WindowSeconds <= 0 {
		c.Reminders.WindowSeconds = d.Reminders.WindowSeconds
	}
	if c.Notifications.Backend == "" {
		c.Notifications.Backend = d.Notifications.Backend
	}
	if c.Notifications.AppName == "" {
		c.Notifications.AppName = d.Notifications.AppName
	}
	if c.Notifications.NATSURL == "" {
		c.Notifications.NATSURL = d.Notifications.NATSURL
	}
	if c.Notifications.NATSSubject == "" {
		c.Notifications.NATSSubject = d.Notifications.NATSSubject
	}
}

func defaultConfig() Config {
	return Config{
		DBPath: DefaultDBPath(),
		Reminders: Reminders{
			IntervalSeconds: 60,
			WindowSeconds:   60,
		},
		Notifications: Notifications{
			Backend:     BackendDesktop,
			AppName:     AppName,
			NATSURL:     "nats://127.0.0.1:4222",
			NATSSubject: "todo.reminders",
		},
		Keys: DefaultKeymap(),
	}
}

// DefaultKeymap returns the built-in key bindings
func DefaultKeymap() Keymap {
	return Keymap{
		Quit:          "q",
		Back:          "esc",
		Up:            "k",
		Down:          "j",
		Enter:         "enter",
		Tab:           "tab",
		New:           "n",
		Edit:          "e",
		Toggle:        " ",
		Delete:        "d",
		Search:        "/",
		Priority:      "p",
		TagFilter:     "f",
		ProjectFilter: "g",
		ClearFilters:  "c",
		Projects:      "P",
		AddSubtask:    "a",
		DeleteSubtask: "x",
		Save:          "ctrl+s",
		Help:          "?",
	}
}
