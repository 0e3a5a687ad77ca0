package service

//go:generate mockgen -source=status_service.go -destination=mock/mock_status_service.go -package=mock

import (
	"context"
	"fmt"

	"feedtrans/internal/model"
	"feedtrans/internal/repository"
	"feedtrans/internal/store"
)

// Status is a snapshot of the translator's state for the serve API.
type Status struct {
	TotalTokens int64
	LedgerPath  string
	OutputPath  string
	LastRun     *RunReport
	RecentRuns  []model.Run
}

type StatusService interface {
	Status(ctx context.Context, limit int) (Status, error)
}

type statusService struct {
	tokens     *store.TokenLedger
	runner     RunnerService
	runs       repository.RunRepository
	ledgerPath string
	outputPath string
}

// NewStatusService creates the status reader. runs may be nil when run
// history is disabled.
func NewStatusService(tokens *store.TokenLedger, runner RunnerService, runs repository.RunRepository, ledgerPath, outputPath string) StatusService {
	return &statusService{
		tokens:     tokens,
		runner:     runner,
		runs:       runs,
		ledgerPath: ledgerPath,
		outputPath: outputPath,
	}
}

// Status reports the cumulative token count, the last run of this process
// and up to limit recent runs from the history.
func (s *statusService) Status(ctx context.Context, limit int) (Status, error) {
	status := Status{
		TotalTokens: s.tokens.Total(),
		LedgerPath:  s.ledgerPath,
		OutputPath:  s.outputPath,
	}
	if last, ok := s.runner.LastReport(); ok {
		status.LastRun = &last
	}
	if s.runs != nil {
		runs, err := s.runs.ListRecent(ctx, limit)
		if err != nil {
			return Status{}, fmt.Errorf("list runs: %w", err)
		}
		status.RecentRuns = runs
	}
	return status, nil
}
