package model

import "time"

// FeedHeader holds the feed-level metadata shared by the source feed and the
// translated document.
type FeedHeader struct {
	Title       string
	Subtitle    string
	Link        string
	Description string
	Image       *Image
	Updated     time.Time
}

type Image struct {
	Href   string
	Title  string
	Link   string
	Width  int
	Height int
}

// SourceFeed is a fetched and parsed source document.
type SourceFeed struct {
	Header  FeedHeader
	Entries []SourceEntry
}

// Links returns the entry links in source order.
func (f SourceFeed) Links() []string {
	links := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		links = append(links, e.Link)
	}
	return links
}
