package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

const natsConnectTimeout = 5 * time.Second

// publisher is the part of *nats.Conn the notifier needs
type publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATS forwards reminders to a NATS subject so other devices can show them
type NATS struct {
	mu      sync.Mutex
	url     string
	subject string
	perm    Permission
	conn    publisher
	connect func(url string) (publisher, error)
	now     func() time.Time
}

func NewNATS(url, subject string) *NATS {
	return &NATS{
		url:     url,
		subject: subject,
		perm:    PermissionDefault,
		connect: dialNATS,
		now:     time.Now,
	}
}

func dialNATS(url string) (publisher, error) {
	return nats.Connect(url,
		nats.Name("todo-reminders"),
		nats.Timeout(natsConnectTimeout),
	)
}

func (n *NATS) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.perm
}

// RequestPermission connects to the server. A reachable server grants
// permission; a connection failure denies it.
func (n *NATS) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return n.Permission(), err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.perm != PermissionDefault {
		return n.perm, nil
	}
	conn, err := n.connect(n.url)
	if err != nil {
		log.Printf("Failed to connect to NATS at %s: %v", n.url, err)
		n.perm = PermissionDenied
		return n.perm, nil
	}
	log.Printf("Connected to NATS at %s, publishing reminders to %s", n.url, n.subject)
	n.conn = conn
	n.perm = PermissionGranted
	return n.perm, nil
}

func (n *NATS) Send(title, body string) error {
	return n.publish(models.NotificationEvent{Title: title, Body: body})
}

// SendTask publishes a reminder event tagged with the task's ID and reminder
// instant so subscribers can link back to it.
func (n *NATS) SendTask(title string, task models.Task) error {
	event := models.NotificationEvent{
		Title:  title,
		Body:   task.Title,
		TaskID: task.ID,
	}
	if task.Reminder != nil {
		at := task.Reminder.UTC()
		event.Reminder = &at
	}
	return n.publish(event)
}

func (n *NATS) publish(event models.NotificationEvent) error {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		return nil
	}

	event.SentAt = n.now().UTC()
	data, err := event.ToJSON()
	if err != nil {
		return err
	}
	return conn.Publish(n.subject, data)
}

// Close drains the connection, if one was opened
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Drain()
	n.conn = nil
	return err
}
