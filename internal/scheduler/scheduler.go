package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"feedtrans/internal/logger"
	"feedtrans/internal/service"
)

type Scheduler struct {
	runner     service.RunnerService
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // stops waiting on the current run
	mu         sync.Mutex         // protects cancelFunc
}

func New(runner service.RunnerService, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.trigger()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.trigger()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) trigger() {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	logger.Info("scheduled run started", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok")
	report, err := s.runner.Trigger(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("scheduled run cancelled", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "cancelled")
			return
		}
		logger.Error("scheduled run failed", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "failed", "run_id", report.RunID, "error", err)
		return
	}
	logger.Info("scheduled run completed", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok", "run_id", report.RunID, "status", report.Status)
}
