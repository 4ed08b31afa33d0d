// Package scheduler runs the periodic scrape and cleanup entry points on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one scheduled entry point.
type Task func(ctx context.Context) error

// Scheduler wraps robfig/cron. Tasks share one lock, so scheduled runs never overlap within
// the process.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu    sync.Mutex
	tasks map[string]Task
	ids   map[string]cron.EntryID
	ctx   context.Context
}

// New creates a Scheduler. A nil logger discards output.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{logger})),
		logger: logger,
		tasks:  make(map[string]Task),
		ids:    make(map[string]cron.EntryID),
		ctx:    context.Background(),
	}
}

// Add registers task under name with a five-field cron spec. An empty spec leaves the task
// registered for RunNow but never fires it.
func (s *Scheduler) Add(name, spec string, task Task) error {
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}
	s.tasks[name] = task
	if spec == "" {
		s.logger.Info("scheduled task disabled", "task", name)
		return nil
	}
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.RunNow(s.ctx, name); err != nil {
			s.logger.Error("scheduled task failed", "task", name, "error", err)
		}
	})
	if err != nil {
		delete(s.tasks, name)
		return fmt.Errorf("cron.AddFunc %s: %w", name, err)
	}
	s.ids[name] = id
	s.logger.Info("scheduled task registered", "task", name, "spec", spec)
	return nil
}

// Start begins firing tasks. Tasks receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.ids))
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs a registered task immediately, waiting for any other task to finish first.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	task, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.logger.Info("task started", "task", name)
	err := task(ctx)
	s.logger.Info("task finished", "task", name, "duration", time.Since(start), "error", err)
	return err
}

// Scheduled reports whether name is registered with a cron spec.
func (s *Scheduler) Scheduled(name string) bool {
	_, ok := s.ids[name]
	return ok
}

// Next returns the next fire time once the scheduler is started of a task, or the zero time if it is not scheduled.
func (s *Scheduler) Next(name string) time.Time {
	id, ok := s.ids[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
