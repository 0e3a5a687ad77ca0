package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/model"
	"feedtrans/internal/rss"
	"feedtrans/internal/store"
)

func entry(link, body string) model.TranslatedEntry {
	return model.TranslatedEntry{
		Link:    link,
		Title:   "Title " + link,
		Content: model.Content{Text: body, MediaType: model.DefaultMediaType},
	}
}

func TestEntryLedger_FirstRun(t *testing.T) {
	ledger := store.LoadEntryLedger(filepath.Join(t.TempDir(), "feed.xml"), rss.Options{})
	require.Zero(t, ledger.Count())
	require.True(t, ledger.LastUpdated().Equal(store.Epoch))
	require.False(t, ledger.Contains("https://example.com/a"))
}

func TestEntryLedger_AppendBeforeBegin(t *testing.T) {
	ledger := store.LoadEntryLedger(filepath.Join(t.TempDir(), "feed.xml"), rss.Options{})
	require.ErrorIs(t, ledger.Append(entry("https://example.com/a", "x")), store.ErrNotLoaded)
}

func TestEntryLedger_AppendWritesLoadableDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	updated := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	header := model.FeedHeader{Title: "Feed", Link: "https://example.com/", Updated: updated}
	order := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}

	ledger := store.LoadEntryLedger(path, rss.Options{Language: "zh-CN"})
	ledger.Begin(header, order)
	require.NoError(t, ledger.Append(entry("https://example.com/b", "<p>乙</p>")))
	require.NoError(t, ledger.Append(entry("https://example.com/a", "<p>甲</p>")))
	require.True(t, ledger.Contains("https://example.com/a"))

	reloaded := store.LoadEntryLedger(path, rss.Options{})
	require.Equal(t, 2, reloaded.Count())
	require.True(t, reloaded.LastUpdated().Equal(updated))
	require.True(t, reloaded.Contains("https://example.com/a"))
	require.True(t, reloaded.Contains("https://example.com/b"))
	require.False(t, reloaded.Contains("https://example.com/c"))

	got, ok := reloaded.Entry("https://example.com/a")
	require.True(t, ok)
	require.Equal(t, "<p>甲</p>", got.Content.Text)
	require.Equal(t, "Title https://example.com/a", got.Title)
}

func TestEntryLedger_KeepsSourceOrderAndCarriesLoadedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	header := model.FeedHeader{Title: "Feed", Link: "https://example.com/", Updated: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

	first := store.LoadEntryLedger(path, rss.Options{})
	first.Begin(header, []string{"https://example.com/old", "https://example.com/kept"})
	require.NoError(t, first.Append(entry("https://example.com/old", "old")))
	require.NoError(t, first.Append(entry("https://example.com/kept", "kept")))

	header.Updated = header.Updated.Add(time.Hour)
	second := store.LoadEntryLedger(path, rss.Options{})
	second.Begin(header, []string{"https://example.com/new", "https://example.com/kept"})
	require.NoError(t, second.Append(entry("https://example.com/new", "new")))

	third := store.LoadEntryLedger(path, rss.Options{})
	require.Equal(t, 2, third.Count())
	require.True(t, third.Contains("https://example.com/new"))
	require.True(t, third.Contains("https://example.com/kept"), "translated entries still in the source survive a partial run")
	require.False(t, third.Contains("https://example.com/old"), "entries gone from the source are dropped")
	require.True(t, third.LastUpdated().Equal(header.Updated))
}

func TestEntryLedger_CorruptDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	require.NoError(t, os.WriteFile(path, []byte("<html>nope"), 0o644))

	ledger := store.LoadEntryLedger(path, rss.Options{})
	require.Zero(t, ledger.Count())
	require.True(t, ledger.LastUpdated().Equal(store.Epoch))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.xml")
	dst := filepath.Join(dir, "out", "dst.xml")
	require.NoError(t, os.WriteFile(src, []byte("<rss/>"), 0o644))

	require.NoError(t, store.CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "<rss/>", string(data))

	require.Error(t, store.CopyFile(filepath.Join(dir, "missing"), dst))
}

func TestEntryLedger_FlushWritesHeaderWithoutEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	ledger := store.LoadEntryLedger(path, rss.Options{})
	require.ErrorIs(t, ledger.Flush(), store.ErrNotLoaded)

	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ledger.Begin(model.FeedHeader{Title: "Empty", Link: "https://example.com/", Updated: updated}, nil)
	require.NoError(t, ledger.Flush())

	reloaded := store.LoadEntryLedger(path, rss.Options{})
	require.Zero(t, reloaded.Count())
	require.True(t, reloaded.LastUpdated().Equal(updated))
}
