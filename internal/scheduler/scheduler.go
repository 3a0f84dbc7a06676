// Package scheduler triggers reconciliation on a fixed interval. Retry of
// a failed run is simply the next tick; runs never overlap because the
// loop is single-threaded.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"apoiasync/entity"
	"apoiasync/lib/sl"
)

type Runner interface {
	SyncAll(ctx context.Context) (*entity.SyncReport, error)
}

// Notifier is told how each run went; wired to the Telegram bot so admins
// see failures without watching logs.
type Notifier interface {
	SyncFinished(report *entity.SyncReport)
	SyncFailed(err error)
}

type Scheduler struct {
	runner   Runner
	notifier Notifier
	interval time.Duration
	log      *slog.Logger
	stopCh   chan struct{}
	done     chan struct{}
}

func New(runner Runner, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		log:      log.With(sl.Module("scheduler")),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Start runs one pass immediately, then one per interval until Stop.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		s.runOnce()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopCh:
				return
			}
		}
	}()
	s.log.Info("sync scheduler started", slog.Duration("interval", s.interval))
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.done
}

func (s *Scheduler) runOnce() {
	report, err := s.runner.SyncAll(context.Background())
	if err != nil {
		s.log.Error("sync run failed", sl.Err(err))
		if s.notifier != nil {
			s.notifier.SyncFailed(err)
		}
		return
	}
	if s.notifier != nil {
		s.notifier.SyncFinished(report)
	}
}
