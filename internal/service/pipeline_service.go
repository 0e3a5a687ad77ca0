package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"feedtrans/internal/chunker"
	"feedtrans/internal/logger"
	"feedtrans/internal/model"
	"feedtrans/internal/repository"
	"feedtrans/internal/rss"
	"feedtrans/internal/store"
)

// PipelineService drives one translation pass: fetch the source, decide
// whether work is needed, translate new entries and publish the result.
type PipelineService interface {
	Run(ctx context.Context) (RunReport, error)
	Load(ctx context.Context) error
	NeedsTranslation() (bool, error)
	TranslateEntries(ctx context.Context) error
	Publish() error
}

type PipelineConfig struct {
	SourceURL        string
	PromptPrefix     string
	ChunkSize        int
	LedgerPath       string
	ContentCachePath string
	OutputPath       string
	Feed             rss.Options
}

// RunReport summarizes one Run.
type RunReport struct {
	RunID             string
	Status            string
	EntriesTotal      int
	EntriesTranslated int
	EntriesReused     int
	ChunksTranslated  int
	ChunksCached      int
	ChunksDegraded    int
	RunTokens         int64
	TotalTokens       int64
	StartedAt         time.Time
	FinishedAt        time.Time
	Error             string
}

type pipelineService struct {
	cfg        PipelineConfig
	source     FeedSource
	translator Translator
	runs       repository.RunRepository
	sanitizer  *bluemonday.Policy

	runMu sync.Mutex

	loaded bool
	feed   model.SourceFeed
	ledger *store.EntryLedger
	cache  *store.ContentCache
	runID  string
	stats  RunReport
}

// NewPipelineService creates the orchestrator. runs may be nil to disable
// run history.
func NewPipelineService(cfg PipelineConfig, source FeedSource, translator Translator, runs repository.RunRepository) PipelineService {
	return &pipelineService{
		cfg:        cfg,
		source:     source,
		translator: translator,
		runs:       runs,
		sanitizer:  translatedHTMLPolicy(),
	}
}

func (s *pipelineService) Run(ctx context.Context) (RunReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.runID = uuid.NewString()
	s.stats = RunReport{}
	s.translator.BeginRun()
	startedAt := time.Now().UTC()

	logger.Info("pipeline run started", "module", "service", "action", "run", "resource", "pipeline", "result", "ok", "run_id", s.runID, "url", s.cfg.SourceURL)
	s.startHistory(ctx, startedAt)

	report, err := s.run(ctx)
	report.RunID = s.runID
	report.StartedAt = startedAt
	report.FinishedAt = time.Now().UTC()
	report.RunTokens, report.TotalTokens = s.translator.Usage()
	if err != nil {
		report.Error = err.Error()
	}

	s.finishHistory(ctx, report)
	return report, err
}

func (s *pipelineService) run(ctx context.Context) (RunReport, error) {
	if err := s.Load(ctx); err != nil {
		logger.Error("pipeline run failed", "module", "service", "action", "run", "resource", "pipeline", "result", "failed", "run_id", s.runID, "error", err)
		return RunReport{Status: model.RunStatusFailed}, err
	}

	need, err := s.NeedsTranslation()
	if err != nil {
		return RunReport{Status: model.RunStatusFailed}, err
	}
	if !need {
		logger.Info("source feed is not updated", "module", "service", "action", "run", "resource", "pipeline", "result", "skipped", "run_id", s.runID)
		report := s.stats
		report.Status = model.RunStatusNoop
		return report, nil
	}

	if err := s.TranslateEntries(ctx); err != nil {
		report := s.stats
		report.Status = model.RunStatusFailed
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			report.Status = model.RunStatusAborted
			logger.Warn("pipeline run aborted", "module", "service", "action", "run", "resource", "pipeline", "result", "failed", "run_id", s.runID, "error", err)
		} else {
			logger.Error("pipeline run failed", "module", "service", "action", "run", "resource", "pipeline", "result", "failed", "run_id", s.runID, "error", err)
		}
		return report, err
	}

	if err := s.Publish(); err != nil {
		logger.Error("publish failed", "module", "service", "action", "save", "resource", "output", "result", "failed", "run_id", s.runID, "error", err)
		report := s.stats
		report.Status = model.RunStatusFailed
		return report, err
	}

	runTokens, totalTokens := s.translator.Usage()
	logger.Info("All done", "module", "service", "action", "run", "resource", "pipeline", "result", "ok", "run_id", s.runID,
		"translated", s.stats.EntriesTranslated, "reused", s.stats.EntriesReused, "run_tokens", runTokens, "total_tokens", totalTokens)

	report := s.stats
	report.Status = model.RunStatusCompleted
	return report, nil
}

// Load fetches the source feed and loads the ledger and the content cache
// from disk. The ledger and the cache are not written.
func (s *pipelineService) Load(ctx context.Context) error {
	s.loaded = false

	feed, err := s.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return err
	}

	s.feed = feed
	s.ledger = store.LoadEntryLedger(s.cfg.LedgerPath, s.cfg.Feed)
	s.cache = store.NewContentCache(s.cfg.ContentCachePath)
	s.stats.EntriesTotal = len(feed.Entries)
	s.loaded = true
	return nil
}

// NeedsTranslation reports whether the source was updated after the ledger
// or has more entries than the ledger holds.
func (s *pipelineService) NeedsTranslation() (bool, error) {
	if !s.loaded {
		return false, ErrNotLoaded
	}
	// The ledger document keeps RFC 1123 dates, so compare whole seconds.
	updated := s.feed.Header.Updated.Truncate(time.Second).After(s.ledger.LastUpdated().Truncate(time.Second))
	unfinished := len(s.feed.Entries) > s.ledger.Count()
	if unfinished && !updated {
		logger.Info("last run is unfinished", "module", "service", "action", "run", "resource", "pipeline", "result", "ok", "source_entries", len(s.feed.Entries), "ledger_entries", s.ledger.Count())
	}
	return updated || unfinished, nil
}

// TranslateEntries translates every source entry missing from the ledger,
// appending each to the ledger as soon as it is done.
func (s *pipelineService) TranslateEntries(ctx context.Context) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	s.ledger.Begin(s.feed.Header, s.feed.Links())

	for _, entry := range s.feed.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.ledger.Contains(entry.Link) {
			s.stats.EntriesReused++
			logger.Debug("entry already translated", "module", "service", "action", "translate", "resource", "entry", "result", "skipped", "entry", entry.Title)
			continue
		}
		if err := s.translateEntry(ctx, entry); err != nil {
			return err
		}
	}

	if err := s.ledger.Flush(); err != nil {
		return err
	}
	return nil
}

func (s *pipelineService) translateEntry(ctx context.Context, entry model.SourceEntry) error {
	chunks := chunker.Split(entry.Content.Text, s.cfg.ChunkSize)
	rec := model.EntryRecord{RunID: s.runID, Link: entry.Link, Title: entry.Title, Chunks: len(chunks)}

	isHTML := strings.Contains(strings.ToLower(entry.Content.MediaType), "html")

	var body strings.Builder
	for i, chunk := range chunks {
		translated, cached := s.cache.Lookup(chunk)
		if cached {
			rec.CachedChunks++
			s.stats.ChunksCached++
		} else {
			res := s.translator.Translate(ctx, s.cfg.PromptPrefix, chunk)
			if err := ctx.Err(); err != nil {
				return err
			}
			translated = res.Text
			// Only backend output is cleaned; passthrough keeps the source markup.
			if !res.Degraded && isHTML {
				translated = s.sanitizer.Sanitize(translated)
			}
			if err := s.cache.Store(chunk, translated); err != nil {
				return err
			}
			rec.TokensUsed += res.Tokens
			s.stats.ChunksTranslated++
			if res.Degraded {
				rec.DegradedChunks++
				s.stats.ChunksDegraded++
			}
		}
		body.WriteString(translated)

		logger.Info("entry translating", "module", "service", "action", "translate", "resource", "entry", "result", "ok", "entry", entry.Title, "chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)), "cached", cached)
	}

	if err := s.ledger.Append(entry.Translated(body.String())); err != nil {
		return err
	}
	if err := s.cache.Clear(); err != nil {
		return err
	}
	s.stats.EntriesTranslated++
	logger.Info("entry translated", "module", "service", "action", "translate", "resource", "entry", "result", "ok", "entry", entry.Title, "chunks", len(chunks), "degraded", rec.DegradedChunks)

	s.recordEntry(ctx, rec)
	return nil
}

// Publish copies the ledger document to the output path.
func (s *pipelineService) Publish() error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if err := store.CopyFile(s.ledger.Path(), s.cfg.OutputPath); err != nil {
		return fmt.Errorf("publish feed: %w", err)
	}
	logger.Info("translated feed published", "module", "service", "action", "save", "resource", "output", "result", "ok", "path", s.cfg.OutputPath)
	return nil
}

func (s *pipelineService) startHistory(ctx context.Context, startedAt time.Time) {
	if s.runs == nil {
		return
	}
	_, err := s.runs.Start(context.WithoutCancel(ctx), model.Run{
		RunID:     s.runID,
		SourceURL: s.cfg.SourceURL,
		Status:    model.RunStatusRunning,
		StartedAt: startedAt,
	})
	if err != nil {
		logger.Warn("run history start failed", "module", "service", "action", "save", "resource", "history", "result", "failed", "run_id", s.runID, "error", err)
	}
}

func (s *pipelineService) finishHistory(ctx context.Context, report RunReport) {
	if s.runs == nil {
		return
	}
	finishedAt := report.FinishedAt
	run := model.Run{
		RunID:             report.RunID,
		SourceURL:         s.cfg.SourceURL,
		Status:            report.Status,
		EntriesTotal:      report.EntriesTotal,
		EntriesTranslated: report.EntriesTranslated,
		EntriesReused:     report.EntriesReused,
		ChunksTranslated:  report.ChunksTranslated,
		ChunksCached:      report.ChunksCached,
		ChunksDegraded:    report.ChunksDegraded,
		TokensUsed:        report.RunTokens,
		TokensTotal:       report.TotalTokens,
		StartedAt:         report.StartedAt,
		FinishedAt:        &finishedAt,
	}
	if report.Error != "" {
		msg := report.Error
		run.ErrorMessage = &msg
	}
	if err := s.runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("run history finish failed", "module", "service", "action", "save", "resource", "history", "result", "failed", "run_id", s.runID, "error", err)
	}
}

func (s *pipelineService) recordEntry(ctx context.Context, rec model.EntryRecord) {
	if s.runs == nil {
		return
	}
	if err := s.runs.RecordEntry(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("run history entry failed", "module", "service", "action", "save", "resource", "history", "result", "failed", "run_id", s.runID, "link", rec.Link, "error", err)
	}
}

// translatedHTMLPolicy strips scripts and event handlers from backend replies
// while keeping the markup feeds commonly carry, embeds included. Links are
// left as the source wrote them.
func translatedHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowElements("iframe", "video", "audio", "source", "picture", "figure", "figcaption", "section", "article", "aside")
	p.AllowAttrs("src", "width", "height", "title", "allow", "allowfullscreen", "frameborder", "loading").OnElements("iframe")
	p.AllowAttrs("src", "poster", "controls", "width", "height", "preload").OnElements("video", "audio")
	p.AllowAttrs("src", "srcset", "type", "media", "sizes").OnElements("source")
	p.AllowAttrs("class", "id", "lang", "dir").Globally()
	return p
}
