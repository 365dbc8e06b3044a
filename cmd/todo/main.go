package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MohammedKaif037/ToDoImprovised/internal/config"
	"github.com/MohammedKaif037/ToDoImprovised/internal/db"
	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/notify"
	"github.com/MohammedKaif037/ToDoImprovised/internal/reminder"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("todo %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// bubbletea owns the terminal, so logs go to a file or nowhere
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, config.AppName)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	tasks, err := store.New(database)
	if err != nil {
		if errors.Is(err, store.ErrMalformedState) {
			return fmt.Errorf("stored data in %s is unreadable: %w", cfg.DBPath, err)
		}
		return err
	}

	notifier, err := notify.FromConfig(cfg.Notifications)
	if err != nil {
		return err
	}
	if c, ok := notifier.(io.Closer); ok {
		defer c.Close()
	}

	app := ui.NewApp(tasks, database, keys.FromConfig(cfg.Keys))
	p := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if reminder.Activate(ctx, notifier) {
		eval := reminder.NewEvaluator(tasks, notifier, cfg.Reminders.Window())
		scheduler := reminder.NewScheduler(eval, cfg.Reminders.Interval())
		scheduler.OnFire = func(fired []models.Task) {
			p.Send(ui.ReminderMsg{Tasks: fired})
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	} else {
		log.Printf("Reminders are disabled: notifications are not available")
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
