package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedKaif037/ToDoImprovised/internal/config"
	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

type pushCall struct {
	title, body, icon, urgency string
}

func newTestDesktop(goos string, installed ...string) (*Desktop, *[]pushCall) {
	var calls []pushCall
	d := NewDesktop("todo", "icon.png")
	d.goos = goos
	d.lookPath = func(bin string) (string, error) {
		for _, name := range installed {
			if name == bin {
				return "/usr/bin/" + bin, nil
			}
		}
		return "", errors.New("not found")
	}
	d.push = func(title, body, icon, urgency string) error {
		calls = append(calls, pushCall{title, body, icon, urgency})
		return nil
	}
	return d, &calls
}

func TestDesktop_GrantedWhenNotifierInstalled(t *testing.T) {
	d, calls := newTestDesktop("linux", "notify-send")
	assert.Equal(t, PermissionDefault, d.Permission())

	assert.NoError(t, d.Send("early", "ignored"))
	assert.Empty(t, *calls)

	perm, err := d.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, perm)

	require.NoError(t, d.Send("Todo Reminder", "Ship release"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "Ship release", (*calls)[0].body)
	assert.Equal(t, "icon.png", (*calls)[0].icon)
}

func TestDesktop_DeniedWithoutNotifier(t *testing.T) {
	d, calls := newTestDesktop("darwin", "notify-send")

	perm, err := d.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)

	d.lookPath = func(string) (string, error) { return "/bin/x", nil }
	perm, _ = d.RequestPermission(context.Background())
	assert.Equal(t, PermissionDenied, perm)

	assert.NoError(t, d.Send("t", "b"))
	assert.Empty(t, *calls)
}

func TestDesktop_CancelledContext(t *testing.T) {
	d, _ := newTestDesktop("linux", "notify-send")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.RequestPermission(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PermissionDefault, d.Permission())
}

type fakePublisher struct {
	subject string
	data    []byte
	drained bool
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakePublisher) Drain() error {
	f.drained = true
	return nil
}

func TestNATS_PublishesNotificationEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATS("nats://example:4222", "todo.reminders")
	n.connect = func(url string) (publisher, error) {
		assert.Equal(t, "nats://example:4222", url)
		return pub, nil
	}
	sentAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return sentAt }

	perm, err := n.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, perm)

	require.NoError(t, n.Send("Todo Reminder", "Buy milk"))
	assert.Equal(t, "todo.reminders", pub.subject)

	var event models.NotificationEvent
	require.NoError(t, event.FromJSON(pub.data))
	assert.Equal(t, "Todo Reminder", event.Title)
	assert.Equal(t, "Buy milk", event.Body)
	assert.True(t, sentAt.Equal(event.SentAt))

	assert.Empty(t, event.TaskID)
	assert.Nil(t, event.Reminder)

	require.NoError(t, n.Close())
	assert.True(t, pub.drained)
	assert.NoError(t, n.Close())
}

func TestNATS_SendTaskCarriesTaskReference(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATS("nats://example:4222", "todo.reminders")
	n.connect = func(string) (publisher, error) { return pub, nil }
	sentAt := time.Date(2024, 1, 1, 9, 0, 5, 0, time.UTC)
	n.now = func() time.Time { return sentAt }
	_, err := n.RequestPermission(context.Background())
	require.NoError(t, err)

	remindAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	task := models.Task{ID: "t1", Title: "Buy milk", Reminder: &remindAt}
	require.NoError(t, n.SendTask("Todo Reminder", task))

	var event models.NotificationEvent
	require.NoError(t, event.FromJSON(pub.data))
	assert.Equal(t, "Todo Reminder", event.Title)
	assert.Equal(t, "Buy milk", event.Body)
	assert.Equal(t, "t1", event.TaskID)
	require.NotNil(t, event.Reminder)
	assert.True(t, remindAt.Equal(*event.Reminder))
	assert.True(t, sentAt.Equal(event.SentAt))

	var _ TaskSender = n
}

func TestNATS_DeniedWhenUnreachable(t *testing.T) {
	n := NewNATS("nats://nowhere:4222", "todo.reminders")
	n.connect = func(string) (publisher, error) { return nil, errors.New("connection refused") }

	perm, err := n.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)
	assert.NoError(t, n.Send("t", "b"))
	assert.NoError(t, n.Close())
}

func TestFromConfig(t *testing.T) {
	n, err := FromConfig(config.Notifications{Backend: config.BackendDesktop, AppName: "todo"})
	require.NoError(t, err)
	assert.IsType(t, &Desktop{}, n)

	n, err = FromConfig(config.Notifications{Backend: config.BackendNATS, NATSURL: "nats://x", NATSSubject: "s"})
	require.NoError(t, err)
	assert.IsType(t, &NATS{}, n)

	n, err = FromConfig(config.Notifications{Backend: config.BackendNone})
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, n.Permission())

	_, err = FromConfig(config.Notifications{Backend: "pager"})
	assert.Error(t, err)
}
