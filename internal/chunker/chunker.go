// Package chunker splits entry bodies into chunks small enough for one
// backend request without cutting sentences apart.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Split divides text into an ordered list of chunks of at most maxSize
// characters.
//
// Paragraphs (newline separated) are first packed greedily into units of at
// most maxSize characters, joined by a single space. Every unit is then cut
// into sentences with SplitSentences and the sentences are packed again the
// same way, the packing carrying across units. A sentence longer than
// maxSize is emitted as its own chunk and never truncated.
//
// Blank paragraphs are dropped and paragraph edges are trimmed, so joining
// the chunks reproduces the text in order with whitespace normalized.
func Split(text string, maxSize int) []string {
	var sentences []string
	for _, unit := range pack(paragraphs(text), maxSize) {
		sentences = append(sentences, SplitSentences(unit)...)
	}
	return pack(sentences, maxSize)
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pack joins consecutive parts with a single space while the joined length
// stays within maxSize. An empty buffer always takes the next part.
func pack(parts []string, maxSize int) []string {
	var out []string
	var buf strings.Builder
	size := 0

	for _, p := range parts {
		n := utf8.RuneCountInString(p)
		switch {
		case buf.Len() == 0:
			buf.WriteString(p)
			size = n
		case size+n+1 <= maxSize:
			buf.WriteByte(' ')
			buf.WriteString(p)
			size += n + 1
		default:
			out = append(out, buf.String())
			buf.Reset()
			buf.WriteString(p)
			size = n
		}
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}
