package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"feedtrans/internal/logger"
	"feedtrans/internal/service/ai"
	"feedtrans/internal/store"
)

// Backoff decides how long to wait before retry attempt+1.
type Backoff interface {
	Wait(ctx context.Context, attempt int) error
}

// FixedBackoff waits the same interval before every retry.
type FixedBackoff struct {
	Interval time.Duration
}

func (b FixedBackoff) Wait(ctx context.Context, attempt int) error {
	if b.Interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TranslateResult is the outcome of one translation. Text is always usable:
// when Degraded is set it is the original text.
type TranslateResult struct {
	Text     string
	Degraded bool
	Attempts int
	Tokens   int64
}

// Translator translates text through the AI provider with bounded retries
// and keeps the token accounting.
type Translator interface {
	Translate(ctx context.Context, prefix, text string) TranslateResult
	// BeginRun resets the run token counter.
	BeginRun()
	// Usage returns the tokens spent in this run and in all runs.
	Usage() (run, total int64)
}

type TranslatorConfig struct {
	SystemPrompt string
	MaxRetry     int
}

type translator struct {
	provider ai.Provider
	limiter  *ai.RateLimiter
	ledger   *store.TokenLedger
	backoff  Backoff
	cfg      TranslatorConfig

	mu        sync.Mutex
	runTokens int64
}

// NewTranslator creates a Translator. limiter and ledger may be nil; a nil
// backoff retries immediately.
func NewTranslator(provider ai.Provider, limiter *ai.RateLimiter, ledger *store.TokenLedger, backoff Backoff, cfg TranslatorConfig) Translator {
	if backoff == nil {
		backoff = FixedBackoff{}
	}
	if cfg.MaxRetry < 1 {
		cfg.MaxRetry = 1
	}
	return &translator{
		provider: provider,
		limiter:  limiter,
		ledger:   ledger,
		backoff:  backoff,
		cfg:      cfg,
	}
}

func (t *translator) Translate(ctx context.Context, prefix, text string) TranslateResult {
	if strings.TrimSpace(text) == "" {
		return TranslateResult{Text: text}
	}
	maxRetry := t.cfg.MaxRetry

	for attempt := 1; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				logger.Error("ai rate limit wait failed, returning original text", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "attempt", attempt, "error", err)
				return TranslateResult{Text: text, Degraded: true, Attempts: attempt - 1}
			}
		}

		logger.Debug("ai request", "module", "service", "action", "translate", "resource", "ai", "result", "ok", "provider", t.provider.Name(), "attempt", attempt, "estimated_tokens", estimateTokens(text)*2)
		out, err := t.provider.Complete(ctx, t.cfg.SystemPrompt, prefix, text)
		if err == nil {
			logger.Info("ai response ok", "module", "service", "action", "translate", "resource", "ai", "result", "ok", "prompt_tokens", out.Usage.PromptTokens, "completion_tokens", out.Usage.CompletionTokens, "total_tokens", out.Usage.TotalTokens)
			t.record(out.Usage.TotalTokens)
			return TranslateResult{Text: out.Text, Attempts: attempt, Tokens: out.Usage.TotalTokens}
		}

		if !ai.IsRetryable(err) {
			logger.Error("ai request failed, returning original text", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "attempt", attempt, "error", err)
			return TranslateResult{Text: text, Degraded: true, Attempts: attempt}
		}

		logger.Warn("ai server error, retrying", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "attempt", attempt, "max_retry", maxRetry, "error", err)
		if attempt >= maxRetry {
			logger.Error("ai request failed after retries, returning original text", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "attempts", attempt)
			return TranslateResult{Text: text, Degraded: true, Attempts: attempt}
		}
		if err := t.backoff.Wait(ctx, attempt); err != nil {
			logger.Error("ai retry wait interrupted, returning original text", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "attempt", attempt, "error", err)
			return TranslateResult{Text: text, Degraded: true, Attempts: attempt}
		}
	}
}

func (t *translator) record(tokens int64) {
	if tokens <= 0 {
		return
	}
	t.mu.Lock()
	t.runTokens += tokens
	t.mu.Unlock()

	if t.ledger == nil {
		return
	}
	if err := t.ledger.Add(tokens); err != nil {
		logger.Warn("token ledger save failed", "module", "service", "action", "save", "resource", "tokens", "result", "failed", "error", err)
	}
}

func (t *translator) BeginRun() {
	t.mu.Lock()
	t.runTokens = 0
	t.mu.Unlock()
}

func (t *translator) Usage() (int64, int64) {
	t.mu.Lock()
	run := t.runTokens
	t.mu.Unlock()

	total := run
	if t.ledger != nil {
		total = t.ledger.Total()
	}
	return run, total
}

// estimateTokens is a rough prompt size in tokens, four characters per token.
func estimateTokens(text string) int {
	return utf8.RuneCountInString(text)/4 + 1
}
