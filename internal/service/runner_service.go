package service

//go:generate mockgen -source=runner_service.go -destination=mock/mock_runner_service.go -package=mock

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"feedtrans/internal/logger"
)

// RunnerService serializes pipeline runs requested by the scheduler and the
// HTTP API. Callers arriving while a run is in flight share its result.
type RunnerService interface {
	Trigger(ctx context.Context) (RunReport, error)
	LastReport() (RunReport, bool)
}

type runnerService struct {
	base     context.Context
	pipeline PipelineService
	group    singleflight.Group

	mu   sync.RWMutex
	last *RunReport
}

// NewRunnerService creates a runner whose runs are bound to base, not to the
// context of whoever triggered them. Cancelling base aborts the in-flight run.
func NewRunnerService(base context.Context, pipeline PipelineService) RunnerService {
	return &runnerService{base: base, pipeline: pipeline}
}

type runOutcome struct {
	report RunReport
	err    error
}

// Trigger starts a run or joins the one in flight. A cancelled ctx stops the
// wait but leaves the run going.
func (s *runnerService) Trigger(ctx context.Context) (RunReport, error) {
	ch := s.group.DoChan("run", func() (any, error) {
		report, err := s.pipeline.Run(s.base)
		s.mu.Lock()
		s.last = &report
		s.mu.Unlock()
		return runOutcome{report: report, err: err}, nil
	})

	select {
	case res := <-ch:
		outcome := res.Val.(runOutcome)
		if res.Shared {
			logger.Debug("joined in-flight run", "module", "service", "action", "run", "resource", "pipeline", "result", "ok", "run_id", outcome.report.RunID)
		}
		return outcome.report, outcome.err
	case <-ctx.Done():
		return RunReport{}, ctx.Err()
	}
}

func (s *runnerService) LastReport() (RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return RunReport{}, false
	}
	return *s.last, true
}
