package scheduler

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"k8s.io/utils/clock"

	"github.com/LiuYuuChen/containers/queue"
)

// Task is one unit of work. A smaller Priority runs earlier; tasks sharing
// a priority run in the order they were submitted. Name doubles as the
// store key, so a queued task can be looked up and replaced by name.
type Task struct {
	Name     string
	Priority int
	Do       func(ctx context.Context) error
}

type taskConstraint struct {
}

func (taskConstraint) FormStoreKey(task *Task) string {
	return task.Name
}

func (taskConstraint) Compare(left, right *Task) int {
	switch {
	case left.Priority < right.Priority:
		return -1
	case left.Priority > right.Priority:
		return 1
	}
	return 0
}

type config struct {
	logger  logrus.FieldLogger
	limiter *rate.Limiter
	clock   clock.PassiveClock
}

type Option func(*config)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithLimiter throttles how fast tasks leave the queue. The default runs
// them as fast as they arrive.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(cfg *config) {
		cfg.limiter = limiter
	}
}

func WithClock(clk clock.PassiveClock) Option {
	return func(cfg *config) {
		cfg.clock = clk
	}
}

// Scheduler runs tasks one at a time in priority order. It keeps a single
// ready-at-all-times front task in an ordered queue; equal-priority tasks
// run first-come-first-served, which is the queue's own tie-break.
type Scheduler struct {
	tasks   queue.BlockQueue[*Task]
	logger  logrus.FieldLogger
	limiter *rate.Limiter
	clock   clock.PassiveClock
}

func New(opts ...Option) *Scheduler {
	cfg := &config{
		logger:  logrus.StandardLogger(),
		limiter: rate.NewLimiter(rate.Inf, 1),
		clock:   clock.RealClock{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Scheduler{
		tasks:   queue.NewBlockQueue[*Task](taskConstraint{}),
		logger:  cfg.logger,
		limiter: cfg.limiter,
		clock:   cfg.clock,
	}
}

// Submit queues task and returns the position it landed at, 0 meaning it is
// the next task to run.
func (s *Scheduler) Submit(task *Task) (int, error) {
	if task == nil || task.Do == nil {
		return 0, fmt.Errorf("submit an empty task")
	}
	if s.tasks.IsShutdown() {
		return 0, fmt.Errorf("submit a task to a closed scheduler")
	}

	position := s.tasks.Add(task)
	s.logger.WithFields(logrus.Fields{
		"task":     task.Name,
		"priority": task.Priority,
		"position": position,
	}).Debug("task queued")
	return position, nil
}

// Pending returns how many tasks are waiting to run.
func (s *Scheduler) Pending() int {
	return s.tasks.Len()
}

// Run pops and executes tasks until ctx is cancelled or Shutdown is called.
// It is the single consumer of the queue and never runs two tasks at once.
func (s *Scheduler) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.tasks.Shutdown()
		case <-done:
		}
	}()

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			s.tasks.Shutdown()
			return err
		}

		task, err := s.tasks.Pop()
		if err != nil {
			// The queue only errors once it is shut down and drained.
			return nil
		}
		s.execute(ctx, task)
	}
}

// Shutdown stops the dispatch loop. At most one queued task is still handed
// out after the call; everything behind it stays unexecuted.
func (s *Scheduler) Shutdown() {
	s.tasks.Shutdown()
}

func (s *Scheduler) execute(ctx context.Context, task *Task) {
	start := s.clock.Now()
	err := task.Do(ctx)
	fields := logrus.Fields{
		"task":     task.Name,
		"priority": task.Priority,
		"took":     s.clock.Since(start),
	}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Warn("task failed")
		return
	}
	s.logger.WithFields(fields).Debug("task done")
}
