package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"feedtrans/internal/logger"
)

// TokenLedger is the cumulative count of backend tokens spent across all
// runs, persisted as a single decimal integer.
type TokenLedger struct {
	path  string
	mu    sync.Mutex
	total int64
}

// LoadTokenLedger reads the ledger at path. A missing or unreadable file
// starts the count at zero.
func LoadTokenLedger(path string) *TokenLedger {
	l := &TokenLedger{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("token ledger read failed", "module", "store", "action", "load", "resource", "token_ledger", "result", "failed", "path", path, "error", err)
		}
		return l
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || n < 0 {
		logger.Warn("token ledger corrupt", "module", "store", "action", "load", "resource", "token_ledger", "result", "failed", "path", path, "error", err)
		return l
	}
	l.total = n
	return l
}

// Add increases the total by n and persists it. Negative amounts are ignored.
// The in-memory total is updated even when persisting fails.
func (l *TokenLedger) Add(n int64) error {
	if n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total += n
	if err := WriteFile(l.path, []byte(strconv.FormatInt(l.total, 10))); err != nil {
		return fmt.Errorf("save token ledger: %w", err)
	}
	return nil
}

func (l *TokenLedger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

func (l *TokenLedger) Path() string {
	return l.path
}
