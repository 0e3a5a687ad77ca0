package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"feedtrans/internal/logger"
	"feedtrans/internal/model"
	"feedtrans/internal/rss"
)

// Epoch is the last-updated time reported by a ledger that has never been
// written.
var Epoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// EntryLedger is the translated feed document. It records which source
// entries are already translated and is rewritten in full after every
// appended entry.
type EntryLedger struct {
	path string
	opts rss.Options

	mu          sync.Mutex
	entries     map[string]model.TranslatedEntry
	count       int
	lastUpdated time.Time

	begun  bool
	header model.FeedHeader
	order  []string
}

// LoadEntryLedger reads the document at path. A missing or unparsable
// document yields an empty ledger.
func LoadEntryLedger(path string, opts rss.Options) *EntryLedger {
	l := &EntryLedger{
		path:        path,
		opts:        opts,
		entries:     map[string]model.TranslatedEntry{},
		lastUpdated: Epoch,
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("entry ledger not found", "module", "store", "action", "load", "resource", "entry_ledger", "result", "skipped", "path", path)
		} else {
			logger.Warn("entry ledger read failed", "module", "store", "action", "load", "resource", "entry_ledger", "result", "failed", "path", path, "error", err)
		}
		return l
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		logger.Warn("entry ledger corrupt", "module", "store", "action", "load", "resource", "entry_ledger", "result", "failed", "path", path, "error", err)
		return l
	}

	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		l.entries[item.Link] = translatedFromItem(item)
	}
	l.count = len(feed.Items)
	switch {
	case feed.UpdatedParsed != nil:
		l.lastUpdated = feed.UpdatedParsed.UTC()
	case feed.PublishedParsed != nil:
		l.lastUpdated = feed.PublishedParsed.UTC()
	}

	logger.Debug("entry ledger loaded", "module", "store", "action", "load", "resource", "entry_ledger", "result", "ok", "path", path, "count", l.count, "updated", l.lastUpdated.Format(time.RFC3339))
	return l
}

func translatedFromItem(item *gofeed.Item) model.TranslatedEntry {
	e := model.TranslatedEntry{
		Link:      item.Link,
		ID:        item.GUID,
		Title:     item.Title,
		Published: item.PublishedParsed,
		Summary:   item.Description,
		Content:   model.Content{Text: item.Content, MediaType: model.DefaultMediaType},
	}
	if item.Author != nil {
		e.Author = item.Author.Name
	}
	return e
}

// Contains reports whether link already has a translated entry.
func (l *EntryLedger) Contains(link string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[link]
	return ok
}

func (l *EntryLedger) Entry(link string) (model.TranslatedEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[link]
	return e, ok
}

// Begin sets the header and the source link order of the document written
// by subsequent appends.
func (l *EntryLedger) Begin(header model.FeedHeader, order []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.header = header
	l.order = append([]string(nil), order...)
	l.begun = true
}

// Append records entry and rewrites the document. The document holds every
// translated entry whose link is in the source order, in that order, so a
// crash after Append leaves a loadable document.
func (l *EntryLedger) Append(entry model.TranslatedEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.begun {
		return ErrNotLoaded
	}
	if _, ok := l.entries[entry.Link]; !ok && !slices.Contains(l.order, entry.Link) {
		l.order = append(l.order, entry.Link)
	}
	l.entries[entry.Link] = entry
	return l.flush()
}

// Flush rewrites the document with the current header and entries.
func (l *EntryLedger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.begun {
		return ErrNotLoaded
	}
	return l.flush()
}

func (l *EntryLedger) flush() error {
	data, err := rss.Marshal(l.header, l.document(), l.opts)
	if err != nil {
		return fmt.Errorf("encode entry ledger: %w", err)
	}
	if err := WriteFile(l.path, data); err != nil {
		return fmt.Errorf("save entry ledger: %w", err)
	}
	return nil
}

func (l *EntryLedger) document() []model.TranslatedEntry {
	out := make([]model.TranslatedEntry, 0, len(l.order))
	for _, link := range l.order {
		if e, ok := l.entries[link]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Count is the number of entries in the document as loaded.
func (l *EntryLedger) Count() int {
	return l.count
}

// LastUpdated is the document's updated time as loaded, or Epoch.
func (l *EntryLedger) LastUpdated() time.Time {
	return l.lastUpdated
}

func (l *EntryLedger) Path() string {
	return l.path
}
