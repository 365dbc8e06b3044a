package notify

import (
	"context"
	"log"
	"os/exec"
	"runtime"
	"sync"

	"github.com/0xAX/notificator"
)

// Desktop shows reminders as native desktop notifications
type Desktop struct {
	mu       sync.Mutex
	perm     Permission
	icon     string
	push     func(title, body, icon, urgency string) error
	lookPath func(string) (string, error)
	goos     string
}

// NewDesktop creates a desktop notifier. Permission stays at default until
// RequestPermission has checked that the platform can show notifications.
func NewDesktop(appName, icon string) *Desktop {
	n := notificator.New(notificator.Options{
		DefaultIcon: icon,
		AppName:     appName,
	})
	return &Desktop{
		perm:     PermissionDefault,
		icon:     icon,
		push:     n.Push,
		lookPath: exec.LookPath,
		goos:     runtime.GOOS,
	}
}

func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm
}

// RequestPermission grants when one of the platform's notification commands
// is installed and denies otherwise.
func (d *Desktop) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return d.Permission(), err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.perm != PermissionDefault {
		return d.perm, nil
	}
	d.perm = PermissionDenied
	for _, bin := range notifierBinaries(d.goos) {
		if _, err := d.lookPath(bin); err == nil {
			d.perm = PermissionGranted
			break
		}
	}
	if d.perm == PermissionDenied {
		log.Printf("No desktop notifier found for %s, reminders disabled", d.goos)
	}
	return d.perm, nil
}

func (d *Desktop) Send(title, body string) error {
	if d.Permission() != PermissionGranted {
		return nil
	}
	return d.push(title, body, d.icon, notificator.UR_NORMAL)
}

func notifierBinaries(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"terminal-notifier", "osascript"}
	case "windows":
		return []string{"growlnotify"}
	default:
		return []string{"notify-send"}
	}
}
