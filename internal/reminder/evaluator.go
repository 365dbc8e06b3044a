package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/notify"
)

const (
	DefaultInterval = time.Minute
	DefaultWindow   = time.Minute

	// NotificationTitle heads every reminder; the body is the task title
	NotificationTitle = "Todo Reminder"
)

// TaskSource supplies the tasks to scan
type TaskSource interface {
	Tasks() []models.Task
}

// Due returns the open tasks whose reminder is at or before now and no more
// than window ago. The lower bound is exclusive.
func Due(tasks []models.Task, now time.Time, window time.Duration) []models.Task {
	var due []models.Task
	cutoff := now.Add(-window)
	for _, t := range tasks {
		if t.Reminder == nil || t.Completed {
			continue
		}
		if t.Reminder.After(now) || !t.Reminder.After(cutoff) {
			continue
		}
		due = append(due, t)
	}
	return due
}

type firedKey struct {
	taskID string
	at     int64
}

// Evaluator sends one notification per task per reminder instant. A task
// that stays inside the window across ticks is not notified again, but
// moving its reminder to a new instant arms it afresh.
type Evaluator struct {
	source   TaskSource
	notifier notify.Notifier
	window   time.Duration
	now      func() time.Time

	mu    sync.Mutex
	fired map[firedKey]time.Time
}

func NewEvaluator(source TaskSource, notifier notify.Notifier, window time.Duration) *Evaluator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Evaluator{
		source:   source,
		notifier: notifier,
		window:   window,
		now:      time.Now,
		fired:    make(map[firedKey]time.Time),
	}
}

// Tick scans the source once and returns the tasks it notified about
func (e *Evaluator) Tick(ctx context.Context) []models.Task {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.prune(now)

	var sent []models.Task
	for _, t := range Due(e.source.Tasks(), now, e.window) {
		if ctx.Err() != nil {
			break
		}
		key := firedKey{taskID: t.ID, at: t.Reminder.UnixNano()}
		if _, ok := e.fired[key]; ok {
			continue
		}
		if err := e.send(t); err != nil {
			log.Printf("Failed to send reminder for task %s: %v", t.ID, err)
			continue
		}
		e.fired[key] = *t.Reminder
		sent = append(sent, t)
	}
	return sent
}

func (e *Evaluator) send(t models.Task) error {
	if ts, ok := e.notifier.(notify.TaskSender); ok {
		return ts.SendTask(NotificationTitle, t)
	}
	return e.notifier.Send(NotificationTitle, t.Title)
}

// prune forgets reminders that have fallen out of the window and can no
// longer match.
func (e *Evaluator) prune(now time.Time) {
	cutoff := now.Add(-e.window)
	for key, at := range e.fired {
		if !at.After(cutoff) {
			delete(e.fired, key)
		}
	}
}

// Activate requests permission if the facility has not been asked yet and
// reports whether reminders may be sent.
func Activate(ctx context.Context, n notify.Notifier) bool {
	if n == nil {
		return false
	}
	perm := n.Permission()
	if perm == notify.PermissionDefault {
		var err error
		perm, err = n.RequestPermission(ctx)
		if err != nil {
			log.Printf("Notification permission request failed: %v", err)
			return false
		}
	}
	return perm == notify.PermissionGranted
}
