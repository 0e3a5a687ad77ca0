package chunker

// SplitSentences cuts text at sentence boundaries.
//
// A boundary is a run of whitespace that follows '.', '?' or '!' and is
// followed by an upper-case ASCII letter. Punctuation directly preceded by an
// upper-case letter does not end a sentence, which keeps initials such as
// "J. Smith" together. The whitespace at a boundary is dropped.
//
// The heuristic only knows ASCII letter case. It does not recognise
// sentence punctuation of non-Latin scripts (for example "。" or "！"), and
// text in such scripts comes back as a single sentence.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 1; i < len(text); i++ {
		if !isTerminator(text[i]) || isUpper(text[i-1]) {
			continue
		}
		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j == i+1 || j == len(text) || !isUpper(text[j]) {
			continue
		}
		out = append(out, text[start:i+1])
		start = j
		i = j - 1
	}
	return append(out, text[start:])
}

func isTerminator(b byte) bool {
	return b == '.' || b == '?' || b == '!'
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
