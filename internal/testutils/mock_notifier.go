package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/MohammedKaif037/ToDoImprovised/internal/notify"
)

// MockNotifier mocks notify.Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Permission() notify.Permission {
	args := m.Called()
	return args.Get(0).(notify.Permission)
}

func (m *MockNotifier) RequestPermission(ctx context.Context) (notify.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).(notify.Permission), args.Error(1)
}

func (m *MockNotifier) Send(title, body string) error {
	args := m.Called(title, body)
	return args.Error(0)
}

// Notification is one call recorded by RecordingNotifier
type Notification struct {
	Title string
	Body  string
}

// RecordingNotifier grants permission and records every Send
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *RecordingNotifier) Permission() notify.Permission { return notify.PermissionGranted }

func (r *RecordingNotifier) RequestPermission(context.Context) (notify.Permission, error) {
	return notify.PermissionGranted, nil
}

func (r *RecordingNotifier) Send(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Notification{Title: title, Body: body})
	return nil
}

// Sent returns a copy of the recorded notifications
func (r *RecordingNotifier) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification{}, r.sent...)
}
