package model

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusNoop      = "noop"
	RunStatusCompleted = "completed"
	RunStatusAborted   = "aborted"
	RunStatusFailed    = "failed"
)

// Run is one pipeline pass as recorded in the run history.
type Run struct {
	ID                int64
	RunID             string
	SourceURL         string
	Status            string
	EntriesTotal      int
	EntriesTranslated int
	EntriesReused     int
	ChunksTranslated  int
	ChunksCached      int
	ChunksDegraded    int
	TokensUsed        int64
	TokensTotal       int64
	ErrorMessage      *string
	StartedAt         time.Time
	FinishedAt        *time.Time
}

// EntryRecord describes one newly translated entry of a run.
type EntryRecord struct {
	ID             int64
	RunID          string
	Link           string
	Title          string
	Chunks         int
	CachedChunks   int
	DegradedChunks int
	TokensUsed     int64
	CreatedAt      time.Time
}
