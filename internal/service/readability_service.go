package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/microcosm-cc/bluemonday"

	"feedtrans/internal/config"
	"feedtrans/internal/logger"
	"feedtrans/internal/network"
)

const maxPageSize = 10 << 20

// ReadabilityService extracts the main article of an entry's web page. It
// fills entries whose feed item carries only a summary.
type ReadabilityService interface {
	FetchReadableContent(ctx context.Context, pageURL string) (string, error)
}

type readabilityService struct {
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
}

func NewReadabilityService(clients *network.ClientFactory, timeout time.Duration) ReadabilityService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Scripts and inline handlers confuse the article scoring.
	p := bluemonday.UGCPolicy()
	p.AllowElements("article", "section", "header", "footer", "nav", "aside", "main", "figure", "figcaption")
	p.AllowAttrs("id", "class", "lang", "dir").Globally()

	return &readabilityService{
		httpClient: clients.NewHTTPClient(timeout),
		sanitizer:  p,
	}
}

func (s *readabilityService) FetchReadableContent(ctx context.Context, pageURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return "", ErrInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", config.ChromeUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return "", fmt.Errorf("%w: not an html page (%s)", ErrFetchFailed, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("read body failed: %w", err)
	}

	sanitized := s.sanitizer.Sanitize(string(body))

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(sanitized), parsedURL)
	if err != nil {
		return "", fmt.Errorf("parse content failed: %w", err)
	}

	var buf bytes.Buffer
	if err := article.RenderHTML(&buf); err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}

	content := strings.TrimSpace(buf.String())
	if content == "" {
		return "", ErrInvalid
	}
	logger.Debug("readable content extracted", "module", "service", "action", "fetch", "resource", "readability", "result", "ok", "link", pageURL, "chars", utf8.RuneCountInString(content))
	return content, nil
}
