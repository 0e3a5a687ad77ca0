// Package rss writes the translated feed document.
package rss

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"feedtrans/internal/model"
)

// RSS is the root element of an RSS feed.
type RSS struct {
	XMLName   xml.Name `xml:"rss"`
	Version   string   `xml:"version,attr"`
	ContentNS string   `xml:"xmlns:content,attr"`
	DCNS      string   `xml:"xmlns:dc,attr"`
	Channel   Channel  `xml:"channel"`
}

// Channel represents the channel element in an RSS feed.
type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	Generator     string `xml:"generator,omitempty"`
	PubDate       string `xml:"pubDate,omitempty"`       // RFC1123Z
	LastBuildDate string `xml:"lastBuildDate,omitempty"` // RFC1123Z
	Image         *Image `xml:"image,omitempty"`
	Items         []Item `xml:"item"`
}

type Image struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width,omitempty"`
	Height int    `xml:"height,omitempty"`
}

// Item represents an item element in an RSS feed.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	Creator     string `xml:"dc:creator,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        *GUID  `xml:"guid,omitempty"`
	Content     *CDATA `xml:"content:encoded,omitempty"`
}

type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr,omitempty"`
}

type CDATA struct {
	Text string `xml:",cdata"`
}

// Options carries channel fields that do not come from the source feed.
type Options struct {
	Language  string
	Generator string
}

// Build converts a header and its translated entries into an RSS document.
func Build(header model.FeedHeader, entries []model.TranslatedEntry, opts Options) RSS {
	description := header.Description
	if description == "" {
		description = header.Subtitle
	}

	ch := Channel{
		Title:       header.Title,
		Link:        header.Link,
		Description: description,
		Language:    opts.Language,
		Generator:   opts.Generator,
		Items:       make([]Item, 0, len(entries)),
	}
	if !header.Updated.IsZero() {
		ch.PubDate = formatDate(header.Updated)
		ch.LastBuildDate = ch.PubDate
	}
	if img := header.Image; img != nil && img.Href != "" {
		ch.Image = &Image{
			URL:    img.Href,
			Title:  img.Title,
			Link:   img.Link,
			Width:  img.Width,
			Height: img.Height,
		}
		if ch.Image.Title == "" {
			ch.Image.Title = header.Title
		}
		if ch.Image.Link == "" {
			ch.Image.Link = header.Link
		}
	}

	for _, e := range entries {
		item := Item{
			Title:       e.Title,
			Link:        e.Link,
			Description: e.Summary,
			Creator:     e.Author,
		}
		if e.Published != nil {
			item.PubDate = formatDate(*e.Published)
		}
		if e.ID != "" {
			item.GUID = &GUID{Value: e.ID, IsPermaLink: "false"}
		}
		if e.Content.Text != "" {
			item.Content = &CDATA{Text: e.Content.Text}
		}
		ch.Items = append(ch.Items, item)
	}

	return RSS{
		Version:   "2.0",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		DCNS:      "http://purl.org/dc/elements/1.1/",
		Channel:   ch,
	}
}

// Write encodes the document for header and entries to w.
func Write(w io.Writer, header model.FeedHeader, entries []model.TranslatedEntry, opts Options) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(Build(header, entries, opts)); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document.
func Marshal(header model.FeedHeader, entries []model.TranslatedEntry, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, header, entries, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
