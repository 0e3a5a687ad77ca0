package model

import "time"

// DefaultMediaType is assumed for bodies whose source gives no type.
const DefaultMediaType = "text/html"

type Content struct {
	Text      string
	MediaType string
}

// SourceEntry is one item of the source feed. Link is the entry key.
type SourceEntry struct {
	Link      string
	ID        string
	Title     string
	Author    string
	Published *time.Time
	Summary   string
	Content   Content
}

// TranslatedEntry is a SourceEntry whose body has been translated.
// Content.MediaType is the source body's media type.
type TranslatedEntry struct {
	Link      string
	ID        string
	Title     string
	Author    string
	Published *time.Time
	Summary   string
	Content   Content
}

// Translated builds the ledger record for e with the given body.
func (e SourceEntry) Translated(body string) TranslatedEntry {
	return TranslatedEntry{
		Link:      e.Link,
		ID:        e.ID,
		Title:     e.Title,
		Author:    e.Author,
		Published: e.Published,
		Summary:   e.Summary,
		Content:   Content{Text: body, MediaType: e.Content.MediaType},
	}
}
