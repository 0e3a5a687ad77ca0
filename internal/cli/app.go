package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"feedtrans/internal/config"
	"feedtrans/internal/db"
	"feedtrans/internal/logger"
	"feedtrans/internal/network"
	"feedtrans/internal/repository"
	"feedtrans/internal/rss"
	"feedtrans/internal/service"
	"feedtrans/internal/service/ai"
	"feedtrans/internal/snowflake"
	"feedtrans/internal/store"
)

const backendTimeout = 5 * time.Minute

func loadConfig(opts *globalOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

// setupLogging creates the local directories and sends logs to stdout and
// the log file. The returned closer closes the log file.
func setupLogging(cfg config.Config, stdout io.Writer) (io.Closer, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.Init(logger.ParseLevel(cfg.Logging.Level), stdout, f)
	return f, nil
}

type components struct {
	pipeline service.PipelineService
	tokens   *store.TokenLedger
	runs     repository.RunRepository
	db       *sql.DB
}

func (c *components) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func buildComponents(cfg config.Config) (*components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := snowflake.Init(cfg.Local.NodeID); err != nil {
		return nil, fmt.Errorf("run id node %d: %w", cfg.Local.NodeID, err)
	}

	clients := network.NewClientFactory(cfg.ProxyURL())

	provider, err := ai.NewProvider(ai.Config{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		HTTPClient:  clients.NewHTTPClient(backendTimeout),
	})
	if err != nil {
		return nil, err
	}

	tokens := store.LoadTokenLedger(cfg.TokenLedgerPath())
	translator := service.NewTranslator(
		provider,
		ai.NewRateLimiter(cfg.AI.RateLimit),
		tokens,
		service.FixedBackoff{Interval: cfg.AI.WaitTime},
		service.TranslatorConfig{SystemPrompt: cfg.AI.SystemPrompt, MaxRetry: cfg.AI.MaxRetry},
	)

	var readability service.ReadabilityService
	if cfg.Source.Readability {
		readability = service.NewReadabilityService(clients, cfg.Source.Timeout)
	}
	source := service.NewFeedService(service.FeedServiceConfig{
		URL:          cfg.Source.URL,
		Timeout:      cfg.Source.Timeout,
		BrowserTLS:   cfg.Source.BrowserTLS,
		Readability:  cfg.Source.Readability,
		SnapshotPath: cfg.SnapshotPath(),
	}, clients, readability)

	comps := &components{tokens: tokens}

	// Run history is optional; a broken database must not stop translation.
	dbConn, err := db.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("run history disabled", "module", "cli", "action", "load", "resource", "history", "result", "failed", "path", cfg.HistoryPath(), "error", err)
	} else {
		comps.db = dbConn
		comps.runs = repository.NewRunRepository(dbConn)
	}

	comps.pipeline = service.NewPipelineService(service.PipelineConfig{
		SourceURL:        cfg.Source.URL,
		PromptPrefix:     cfg.AI.PromptPrefix,
		ChunkSize:        cfg.AI.ChunkSize,
		LedgerPath:       cfg.LedgerPath(),
		ContentCachePath: cfg.ContentCachePath(),
		OutputPath:       cfg.OutputPath(),
		Feed:             rss.Options{Language: cfg.Output.Language, Generator: cfg.Output.Generator},
	}, source, translator, comps.runs)

	return comps, nil
}

func isInterrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
