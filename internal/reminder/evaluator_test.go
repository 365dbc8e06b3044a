package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/notify"
	"github.com/MohammedKaif037/ToDoImprovised/internal/testutils"
)

var now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type staticSource struct {
	tasks []models.Task
}

func (s *staticSource) Tasks() []models.Task { return s.tasks }

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestDue(t *testing.T) {
	tasks := []models.Task{
		{ID: "recent", Reminder: at(-30 * time.Second)},
		{ID: "stale", Reminder: at(-90 * time.Second)},
		{ID: "done", Reminder: at(-10 * time.Second), Completed: true},
		{ID: "future", Reminder: at(time.Second)},
		{ID: "exact", Reminder: at(0)},
		{ID: "edge", Reminder: at(-time.Minute)},
		{ID: "none"},
	}

	var got []string
	for _, task := range Due(tasks, now, time.Minute) {
		got = append(got, task.ID)
	}
	assert.Equal(t, []string{"recent", "exact"}, got)
}

func newTestEvaluator(source TaskSource, n notify.Notifier, clock *time.Time) *Evaluator {
	e := NewEvaluator(source, n, time.Minute)
	e.now = func() time.Time { return *clock }
	return e
}

func TestEvaluatorTick_SendsTitleOnce(t *testing.T) {
	clock := now
	source := &staticSource{tasks: []models.Task{
		{ID: "a", Title: "Ship release", Reminder: at(-30 * time.Second)},
		{ID: "b", Title: "Old", Reminder: at(-2 * time.Minute)},
	}}
	rec := &testutils.RecordingNotifier{}
	e := newTestEvaluator(source, rec, &clock)

	sent := e.Tick(context.Background())
	assert.Len(t, sent, 1)
	assert.Equal(t, []testutils.Notification{{Title: NotificationTitle, Body: "Ship release"}}, rec.Sent())

	clock = now.Add(20 * time.Second)
	assert.Empty(t, e.Tick(context.Background()))
	assert.Len(t, rec.Sent(), 1)
}

type taskRecorder struct {
	testutils.RecordingNotifier
	tasks []models.Task
}

func (r *taskRecorder) SendTask(title string, task models.Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func TestEvaluatorTick_PassesTaskToTaskSender(t *testing.T) {
	clock := now
	reminder := at(-10 * time.Second)
	source := &staticSource{tasks: []models.Task{{ID: "a", Title: "Ship release", Reminder: reminder}}}
	rec := &taskRecorder{}
	e := newTestEvaluator(source, rec, &clock)

	assert.Len(t, e.Tick(context.Background()), 1)
	if assert.Len(t, rec.tasks, 1) {
		assert.Equal(t, "a", rec.tasks[0].ID)
		assert.True(t, reminder.Equal(*rec.tasks[0].Reminder))
	}
	assert.Empty(t, rec.Sent())
}

func TestEvaluatorTick_RescheduledReminderFiresAgain(t *testing.T) {
	clock := now
	source := &staticSource{tasks: []models.Task{
		{ID: "a", Title: "Stretch", Reminder: at(-10 * time.Second)},
	}}
	rec := &testutils.RecordingNotifier{}
	e := newTestEvaluator(source, rec, &clock)

	e.Tick(context.Background())
	source.tasks[0].Reminder = at(-5 * time.Second)
	e.Tick(context.Background())

	assert.Len(t, rec.Sent(), 2)
}

func TestEvaluatorTick_PrunesExpiredEntries(t *testing.T) {
	clock := now
	source := &staticSource{tasks: []models.Task{
		{ID: "a", Title: "Water plants", Reminder: at(-10 * time.Second)},
	}}
	rec := &testutils.RecordingNotifier{}
	e := newTestEvaluator(source, rec, &clock)

	e.Tick(context.Background())
	assert.Len(t, e.fired, 1)

	clock = now.Add(2 * time.Minute)
	e.Tick(context.Background())
	assert.Empty(t, e.fired)
	assert.Len(t, rec.Sent(), 1)
}

func TestEvaluatorTick_SendFailureRetriesNextTick(t *testing.T) {
	clock := now
	source := &staticSource{tasks: []models.Task{
		{ID: "a", Title: "Pay rent", Reminder: at(-10 * time.Second)},
	}}
	n := &testutils.MockNotifier{}
	n.On("Send", NotificationTitle, "Pay rent").Return(errors.New("bus down")).Once()
	n.On("Send", NotificationTitle, "Pay rent").Return(nil).Once()
	e := newTestEvaluator(source, n, &clock)

	assert.Empty(t, e.Tick(context.Background()))
	assert.Len(t, e.Tick(context.Background()), 1)
	n.AssertExpectations(t)
}

func TestActivate(t *testing.T) {
	t.Run("requests when undetermined", func(t *testing.T) {
		n := &testutils.MockNotifier{}
		n.On("Permission").Return(notify.PermissionDefault)
		n.On("RequestPermission", mock.Anything).Return(notify.PermissionGranted, nil).Once()

		assert.True(t, Activate(context.Background(), n))
		n.AssertExpectations(t)
	})

	t.Run("request denied", func(t *testing.T) {
		n := &testutils.MockNotifier{}
		n.On("Permission").Return(notify.PermissionDefault)
		n.On("RequestPermission", mock.Anything).Return(notify.PermissionDenied, nil).Once()

		assert.False(t, Activate(context.Background(), n))
	})

	t.Run("already granted does not ask", func(t *testing.T) {
		n := &testutils.MockNotifier{}
		n.On("Permission").Return(notify.PermissionGranted)

		assert.True(t, Activate(context.Background(), n))
		n.AssertNotCalled(t, "RequestPermission", mock.Anything)
	})

	t.Run("already denied does not ask", func(t *testing.T) {
		n := &testutils.MockNotifier{}
		n.On("Permission").Return(notify.PermissionDenied)

		assert.False(t, Activate(context.Background(), n))
		n.AssertNotCalled(t, "RequestPermission", mock.Anything)
	})

	t.Run("request error", func(t *testing.T) {
		n := &testutils.MockNotifier{}
		n.On("Permission").Return(notify.PermissionDefault)
		n.On("RequestPermission", mock.Anything).Return(notify.PermissionDefault, errors.New("boom"))

		assert.False(t, Activate(context.Background(), n))
	})

	t.Run("absent facility", func(t *testing.T) {
		assert.False(t, Activate(context.Background(), nil))
		assert.False(t, Activate(context.Background(), notify.Disabled{}))
	})
}
