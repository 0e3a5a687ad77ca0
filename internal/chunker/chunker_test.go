package chunker_test

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/chunker"
)

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	chunks := chunker.Split("Sentence one. Sentence two.", 100)
	require.Equal(t, []string{"Sentence one. Sentence two."}, chunks)
}

func TestSplit_ParagraphsThatDoNotFitTogether(t *testing.T) {
	p := strings.Repeat("a", 39) + "."
	require.Len(t, p, 40)

	chunks := chunker.Split(p+"\n"+p+"\n"+p, 50)
	require.Equal(t, []string{p, p, p}, chunks)
}

func TestSplit_BlankLinesBetweenParagraphs(t *testing.T) {
	p := strings.Repeat("b", 39) + "."
	chunks := chunker.Split(p+"\n\n"+p+"\r\n\n"+p+"\n", 50)
	require.Equal(t, []string{p, p, p}, chunks)
}

func TestSplit_PacksSentencesAcrossParagraphs(t *testing.T) {
	chunks := chunker.Split("One. Two.\nThree.", 100)
	require.Equal(t, []string{"One. Two. Three."}, chunks)
}

func TestSplit_ParagraphWithoutPunctuationJoinsNextSentence(t *testing.T) {
	require.Equal(t, []string{"Heading Body text."}, chunker.Split("Heading\nBody text.", 100))
	require.Equal(t, []string{"Heading", "Body text."}, chunker.Split("Heading\nBody text.", 10))
}

func TestSplit_OversizedSentenceIsKeptWhole(t *testing.T) {
	long := "This sentence is certainly longer than twenty."
	chunks := chunker.Split(long+" Short one.", 20)
	require.Equal(t, []string{long, "Short one."}, chunks)
}

func TestSplit_SentencesOfLongParagraph(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	chunks := chunker.Split(text, 45)
	require.Equal(t, []string{
		"First sentence here. Second sentence here.",
		"Third sentence here.",
	}, chunks)
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	require.Equal(t, []string{"你好 世界"}, chunker.Split("你好\n世界", 5))
	require.Equal(t, []string{"你好", "世界"}, chunker.Split("你好\n世界", 4))
}

func TestSplit_EmptyInput(t *testing.T) {
	require.Empty(t, chunker.Split("", 10))
	require.Empty(t, chunker.Split("\n \n\t\n", 10))
}

func TestSplit_NonPositiveBoundKeepsSentencesApart(t *testing.T) {
	chunks := chunker.Split("One. Two.\nThree", 0)
	require.Equal(t, []string{"One.", "Two.", "Three"}, chunks)
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "One. Two.", []string{"One.", "Two."}},
		{"question and exclamation", "Really? Yes! Fine.", []string{"Really?", "Yes!", "Fine."}},
		{"initials stay together", "J. R. R. Tolkien wrote it. He was British.", []string{"J. R. R. Tolkien wrote it.", "He was British."}},
		{"lower case continuation", "e.g. this works. Next.", []string{"e.g. this works.", "Next."}},
		{"no whitespace", "Version 2.Next is out.", []string{"Version 2.Next is out."}},
		{"collapses whitespace run", "One.   Two.", []string{"One.", "Two."}},
		{"repeated punctuation", "What?! No way.", []string{"What?!", "No way."}},
		{"trailing punctuation", "Ends here.", []string{"Ends here."}},
		{"leading punctuation", ". Starts oddly.", []string{". Starts oddly."}},
		{"cjk punctuation is not a boundary", "你好。世界。", []string{"你好。世界。"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, chunker.SplitSentences(tc.in))
		})
	}
	require.Nil(t, chunker.SplitSentences(""))
}

func TestSplit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"alpha", "Beta", "gamma", "Delta", "epsilon", "Zeta", "eta", "Theta", "iota", "x", "Mr", "U.S"}
	enders := []string{".", "?", "!", "", "", ","}

	for round := 0; round < 200; round++ {
		var sb strings.Builder
		for p := rng.Intn(6); p >= 0; p-- {
			for w := rng.Intn(40); w >= 0; w-- {
				sb.WriteString(words[rng.Intn(len(words))])
				sb.WriteString(enders[rng.Intn(len(enders))])
				sb.WriteString(strings.Repeat(" ", 1+rng.Intn(2)))
			}
			sb.WriteString("\n")
			if rng.Intn(3) == 0 {
				sb.WriteString("\n")
			}
		}
		text := sb.String()
		maxSize := 10 + rng.Intn(120)

		chunks := chunker.Split(text, maxSize)

		for _, c := range chunks {
			if utf8.RuneCountInString(c) > maxSize {
				require.Len(t, chunker.SplitSentences(c), 1, "oversized chunk must be a single sentence: %q", c)
			}
			require.NotEmpty(t, c)
		}

		require.Equal(t, chunks, chunker.Split(text, maxSize), "split must be deterministic")

		require.Equal(t,
			strings.Join(strings.Fields(text), " "),
			strings.Join(strings.Fields(strings.Join(chunks, " ")), " "),
			"chunks must reproduce the text in order")
	}
}
