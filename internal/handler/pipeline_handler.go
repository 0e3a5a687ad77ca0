package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"feedtrans/internal/model"
	"feedtrans/internal/service"
)

type PipelineHandler struct {
	runner service.RunnerService
	status service.StatusService
}

type runReportResponse struct {
	RunID             string  `json:"runId"`
	Status            string  `json:"status"`
	EntriesTotal      int     `json:"entriesTotal"`
	EntriesTranslated int     `json:"entriesTranslated"`
	EntriesReused     int     `json:"entriesReused"`
	ChunksTranslated  int     `json:"chunksTranslated"`
	ChunksCached      int     `json:"chunksCached"`
	ChunksDegraded    int     `json:"chunksDegraded"`
	RunTokens         int64   `json:"runTokens"`
	TotalTokens       int64   `json:"totalTokens"`
	StartedAt         string  `json:"startedAt"`
	FinishedAt        string  `json:"finishedAt"`
	Error             *string `json:"error,omitempty"`
}

type runResponse struct {
	ID                string  `json:"id"`
	RunID             string  `json:"runId"`
	Status            string  `json:"status"`
	EntriesTotal      int     `json:"entriesTotal"`
	EntriesTranslated int     `json:"entriesTranslated"`
	EntriesReused     int     `json:"entriesReused"`
	ChunksDegraded    int     `json:"chunksDegraded"`
	TokensUsed        int64   `json:"tokensUsed"`
	StartedAt         string  `json:"startedAt"`
	FinishedAt        *string `json:"finishedAt,omitempty"`
	ErrorMessage      *string `json:"errorMessage,omitempty"`
}

type statusResponse struct {
	TotalTokens int64              `json:"totalTokens"`
	LedgerPath  string             `json:"ledgerPath"`
	OutputPath  string             `json:"outputPath"`
	LastRun     *runReportResponse `json:"lastRun,omitempty"`
	RecentRuns  []runResponse      `json:"recentRuns"`
}

func NewPipelineHandler(runner service.RunnerService, status service.StatusService) *PipelineHandler {
	return &PipelineHandler{runner: runner, status: status}
}

func (h *PipelineHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/status", h.Status)
	g.POST("/run", h.Run)
}

// Status returns the token total and the recent run history.
func (h *PipelineHandler) Status(c echo.Context) error {
	limit, err := parseLimitParam(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	status, err := h.status.Status(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}

	resp := statusResponse{
		TotalTokens: status.TotalTokens,
		LedgerPath:  status.LedgerPath,
		OutputPath:  status.OutputPath,
		RecentRuns:  make([]runResponse, 0, len(status.RecentRuns)),
	}
	if status.LastRun != nil {
		last := toRunReportResponse(*status.LastRun)
		resp.LastRun = &last
	}
	for _, run := range status.RecentRuns {
		resp.RecentRuns = append(resp.RecentRuns, toRunResponse(run))
	}
	return c.JSON(http.StatusOK, resp)
}

// Run triggers a pipeline run, or waits for the one in flight, and returns
// its report.
func (h *PipelineHandler) Run(c echo.Context) error {
	report, err := h.runner.Trigger(c.Request().Context())
	if err != nil {
		if errors.Is(err, service.ErrSourceUnavailable) {
			return c.JSON(http.StatusBadGateway, toRunReportResponse(report))
		}
		if report.RunID == "" {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusInternalServerError, toRunReportResponse(report))
	}
	return c.JSON(http.StatusOK, toRunReportResponse(report))
}

func toRunReportResponse(r service.RunReport) runReportResponse {
	resp := runReportResponse{
		RunID:             r.RunID,
		Status:            r.Status,
		EntriesTotal:      r.EntriesTotal,
		EntriesTranslated: r.EntriesTranslated,
		EntriesReused:     r.EntriesReused,
		ChunksTranslated:  r.ChunksTranslated,
		ChunksCached:      r.ChunksCached,
		ChunksDegraded:    r.ChunksDegraded,
		RunTokens:         r.RunTokens,
		TotalTokens:       r.TotalTokens,
		StartedAt:         formatTime(r.StartedAt),
		FinishedAt:        formatTime(r.FinishedAt),
	}
	if r.Error != "" {
		msg := r.Error
		resp.Error = &msg
	}
	return resp
}

func toRunResponse(run model.Run) runResponse {
	resp := runResponse{
		ID:                idToString(run.ID),
		RunID:             run.RunID,
		Status:            run.Status,
		EntriesTotal:      run.EntriesTotal,
		EntriesTranslated: run.EntriesTranslated,
		EntriesReused:     run.EntriesReused,
		ChunksDegraded:    run.ChunksDegraded,
		TokensUsed:        run.TokensUsed,
		StartedAt:         formatTime(run.StartedAt),
		ErrorMessage:      run.ErrorMessage,
	}
	if run.FinishedAt != nil {
		finished := formatTime(*run.FinishedAt)
		resp.FinishedAt = &finished
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
