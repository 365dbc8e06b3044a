package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/MohammedKaif037/ToDoImprovised/internal/config"
	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

// Permission is the state of the host's consent to show notifications
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notifier is a host notification facility. Send is only meaningful once
// permission has been granted.
type Notifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Send(title, body string) error
}

// TaskSender is implemented by notifiers that can carry the task a reminder
// belongs to, not just its title.
type TaskSender interface {
	SendTask(title string, task models.Task) error
}

// Disabled is a facility that never grants permission
type Disabled struct{}

func (Disabled) Permission() Permission { return PermissionDenied }

func (Disabled) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (Disabled) Send(string, string) error { return nil }

// FromConfig builds the notifier selected by cfg.Backend
func FromConfig(cfg config.Notifications) (Notifier, error) {
	switch cfg.Backend {
	case config.BackendDesktop:
		return NewDesktop(cfg.AppName, cfg.Icon), nil
	case config.BackendNATS:
		return NewNATS(cfg.NATSURL, cfg.NATSSubject), nil
	case config.BackendNone, "":
		log.Println("Notifications are disabled in configuration")
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", cfg.Backend)
	}
}
