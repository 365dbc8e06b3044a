package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

// Scheduler runs an Evaluator on a fixed interval until stopped
type Scheduler struct {
	eval     *Evaluator
	interval time.Duration

	// OnFire, if set, receives the tasks notified on each tick
	OnFire func([]models.Task)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(eval *Evaluator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{eval: eval, interval: interval}
}

// Start begins ticking in the background. Calling Start on a running
// scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop halts the scheduler and waits for an in-flight tick to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the scheduler has been started and not stopped
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent := s.eval.Tick(ctx)
			if len(sent) > 0 && s.OnFire != nil {
				s.OnFire(sent)
			}
		}
	}
}
