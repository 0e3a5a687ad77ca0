package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feedtrans/internal/model"
	"feedtrans/internal/snowflake"
)

//go:generate mockgen -source=run_repository.go -destination=mock/mock_run_repository.go -package=mock

// RunRepository stores the pipeline run history.
type RunRepository interface {
	Start(ctx context.Context, run model.Run) (model.Run, error)
	Finish(ctx context.Context, run model.Run) error
	RecordEntry(ctx context.Context, rec model.EntryRecord) error
	ListRecent(ctx context.Context, limit int) ([]model.Run, error)
	ListEntries(ctx context.Context, runID string) ([]model.EntryRecord, error)
}

type runRepository struct {
	db dbtx
}

func NewRunRepository(db dbtx) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Start(ctx context.Context, run model.Run) (model.Run, error) {
	run.ID = snowflake.NextID()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = model.RunStatusRunning
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, run_id, source_url, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.RunID, run.SourceURL, run.Status, formatTime(run.StartedAt),
	)
	if err != nil {
		return model.Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (r *runRepository) Finish(ctx context.Context, run model.Run) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE runs SET
		   status = ?, entries_total = ?, entries_translated = ?, entries_reused = ?,
		   chunks_translated = ?, chunks_cached = ?, chunks_degraded = ?,
		   tokens_used = ?, tokens_total = ?, error_message = ?, finished_at = ?
		 WHERE run_id = ?`,
		run.Status, run.EntriesTotal, run.EntriesTranslated, run.EntriesReused,
		run.ChunksTranslated, run.ChunksCached, run.ChunksDegraded,
		run.TokensUsed, run.TokensTotal, run.ErrorMessage, nullableTime(run.FinishedAt),
		run.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *runRepository) RecordEntry(ctx context.Context, rec model.EntryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO entry_translations (id, run_id, link, title, chunks, cached_chunks, degraded_chunks, tokens_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snowflake.NextID(), rec.RunID, rec.Link, rec.Title, rec.Chunks, rec.CachedChunks, rec.DegradedChunks, rec.TokensUsed, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert entry translation: %w", err)
	}
	return nil
}

func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, run_id, source_url, status, entries_total, entries_translated, entries_reused,
		        chunks_translated, chunks_cached, chunks_degraded, tokens_used, tokens_total,
		        error_message, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var errorMessage sql.NullString
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(
			&run.ID, &run.RunID, &run.SourceURL, &run.Status,
			&run.EntriesTotal, &run.EntriesTranslated, &run.EntriesReused,
			&run.ChunksTranslated, &run.ChunksCached, &run.ChunksDegraded,
			&run.TokensUsed, &run.TokensTotal,
			&errorMessage, &startedAt, &finishedAt,
		); err != nil {
			return nil, err
		}
		if errorMessage.Valid {
			msg := errorMessage.String
			run.ErrorMessage = &msg
		}
		run.StartedAt, _ = parseTime(startedAt)
		if finishedAt.Valid {
			if t, err := parseTime(finishedAt.String); err == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *runRepository) ListEntries(ctx context.Context, runID string) ([]model.EntryRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, run_id, link, title, chunks, cached_chunks, degraded_chunks, tokens_used, created_at
		 FROM entry_translations WHERE run_id = ? ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.EntryRecord
	for rows.Next() {
		var rec model.EntryRecord
		var title sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Link, &title, &rec.Chunks, &rec.CachedChunks, &rec.DegradedChunks, &rec.TokensUsed, &createdAt); err != nil {
			return nil, err
		}
		rec.Title = title.String
		rec.CreatedAt, _ = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
