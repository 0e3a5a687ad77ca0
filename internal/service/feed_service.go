package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Noooste/azuretls-client"
	"github.com/mmcdole/gofeed"

	"feedtrans/internal/config"
	"feedtrans/internal/logger"
	"feedtrans/internal/model"
	"feedtrans/internal/network"
	"feedtrans/internal/store"
)

const (
	maxFeedSize  = 20 << 20
	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

// FeedSource fetches and parses the source feed.
type FeedSource interface {
	Fetch(ctx context.Context) (model.SourceFeed, error)
}

type FeedServiceConfig struct {
	URL          string
	Timeout      time.Duration
	BrowserTLS   bool
	Readability  bool
	SnapshotPath string // raw document is written here before parsing; empty disables
}

type feedService struct {
	cfg         FeedServiceConfig
	clients     *network.ClientFactory
	readability ReadabilityService
}

// NewFeedService creates the source feed fetcher. readability may be nil.
func NewFeedService(cfg FeedServiceConfig, clients *network.ClientFactory, readability ReadabilityService) FeedSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &feedService{cfg: cfg, clients: clients, readability: readability}
}

func (s *feedService) Fetch(ctx context.Context) (model.SourceFeed, error) {
	var (
		body []byte
		err  error
	)
	if s.cfg.BrowserTLS {
		body, err = s.fetchBrowser()
	} else {
		body, err = s.fetchHTTP(ctx)
	}
	if err != nil {
		logger.Error("source feed fetch failed", "module", "service", "action", "fetch", "resource", "feed", "result", "failed", "url", s.cfg.URL, "error", err)
		return model.SourceFeed{}, err
	}

	if s.cfg.SnapshotPath != "" {
		if err := store.WriteFile(s.cfg.SnapshotPath, body); err != nil {
			logger.Warn("source feed snapshot failed", "module", "service", "action", "save", "resource", "feed", "result", "failed", "path", s.cfg.SnapshotPath, "error", err)
		}
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		logger.Error("source feed parse failed", "module", "service", "action", "fetch", "resource", "feed", "result", "failed", "url", s.cfg.URL, "error", err)
		return model.SourceFeed{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if strings.TrimSpace(parsed.Title) == "" && strings.TrimSpace(parsed.Link) == "" && strings.TrimSpace(parsed.Description) == "" {
		logger.Error("source feed is empty", "module", "service", "action", "fetch", "resource", "feed", "result", "failed", "url", s.cfg.URL)
		return model.SourceFeed{}, fmt.Errorf("%w: bad feed", ErrSourceUnavailable)
	}

	feed := model.SourceFeed{Header: headerFromFeed(parsed)}
	seen := make(map[string]struct{}, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entry := entryFromItem(item)
		if entry.Link == "" {
			logger.Debug("source entry without link skipped", "module", "service", "action", "fetch", "resource", "feed", "result", "skipped", "title", entry.Title)
			continue
		}
		if _, dup := seen[entry.Link]; dup {
			logger.Debug("duplicate source entry skipped", "module", "service", "action", "fetch", "resource", "feed", "result", "skipped", "link", entry.Link)
			continue
		}
		seen[entry.Link] = struct{}{}

		if strings.TrimSpace(item.Content) == "" && s.cfg.Readability && s.readability != nil {
			if content, err := s.readability.FetchReadableContent(ctx, entry.Link); err != nil {
				logger.Warn("readability fill failed", "module", "service", "action", "fetch", "resource", "readability", "result", "failed", "link", entry.Link, "error", err)
			} else {
				entry.Content = model.Content{Text: content, MediaType: model.DefaultMediaType}
			}
		}
		feed.Entries = append(feed.Entries, entry)
	}

	logger.Info("source feed loaded", "module", "service", "action", "fetch", "resource", "feed", "result", "ok", "url", s.cfg.URL, "entries", len(feed.Entries))
	return feed, nil
}

func (s *feedService) fetchHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := s.clients.NewHTTPClient(s.cfg.Timeout).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: HTTP status code %d", ErrSourceUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	return body, nil
}

// fetchBrowser fetches the feed with a Chrome TLS fingerprint for sources
// behind bot walls.
func (s *feedService) fetchBrowser() ([]byte, error) {
	session := s.clients.NewAzureSession(s.cfg.Timeout)
	defer session.Close()

	headers := azuretls.OrderedHeaders{
		{"accept", acceptHeader},
		{"accept-language", "en-US,en;q=0.9"},
		{"sec-ch-ua", config.ChromeSecChUa},
		{"sec-ch-ua-mobile", "?0"},
		{"sec-ch-ua-platform", `"Windows"`},
		{"sec-fetch-dest", "document"},
		{"sec-fetch-mode", "navigate"},
		{"sec-fetch-site", "none"},
		{"user-agent", config.ChromeUserAgent},
	}

	resp, err := session.Do(&azuretls.Request{
		Method:         http.MethodGet,
		Url:            s.cfg.URL,
		OrderedHeaders: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: HTTP status code %d", ErrSourceUnavailable, resp.StatusCode)
	}
	return resp.Body, nil
}

func headerFromFeed(parsed *gofeed.Feed) model.FeedHeader {
	header := model.FeedHeader{
		Title:       strings.TrimSpace(parsed.Title),
		Subtitle:    strings.TrimSpace(parsed.Description),
		Link:        strings.TrimSpace(parsed.Link),
		Description: strings.TrimSpace(parsed.Description),
	}
	if parsed.Image != nil && parsed.Image.URL != "" {
		header.Image = &model.Image{
			Href:  strings.TrimSpace(parsed.Image.URL),
			Title: strings.TrimSpace(parsed.Image.Title),
			Link:  header.Link,
		}
	}
	if parsed.UpdatedParsed != nil {
		header.Updated = parsed.UpdatedParsed.UTC().Truncate(time.Second)
	} else if parsed.PublishedParsed != nil {
		header.Updated = parsed.PublishedParsed.UTC().Truncate(time.Second)
	}
	return header
}

func entryFromItem(item *gofeed.Item) model.SourceEntry {
	entry := model.SourceEntry{
		Link:    strings.TrimSpace(item.Link),
		ID:      strings.TrimSpace(item.GUID),
		Title:   strings.TrimSpace(item.Title),
		Summary: item.Description,
	}
	if item.Author != nil {
		entry.Author = strings.TrimSpace(item.Author.Name)
	}
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC().Truncate(time.Second)
		entry.Published = &t
	} else if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC().Truncate(time.Second)
		entry.Published = &t
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}
	entry.Content = model.Content{Text: content, MediaType: model.DefaultMediaType}
	return entry
}
