// Package segment cuts a text node's content into sentence-aligned chunks
// that fit a character budget. The cut is lossless: concatenating a node's
// chunks in order reproduces the input exactly, whitespace included.
package segment

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/epublate/epublate"
)

// Splitter carries the source-locale knowledge segmentation needs. CJK
// scripts terminate sentences without a following space, so boundary
// detection differs per locale.
type Splitter struct {
	cjk bool
}

// NewSplitter builds a Splitter for a BCP 47 or underscore locale code. An
// empty or unparsable code falls back to space-delimited boundary rules.
func NewSplitter(locale string) *Splitter {
	s := &Splitter{}
	if locale == "" {
		return s
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return s
	}
	base, _ := tag.Base()
	switch base.String() {
	case "zh", "ja", "ko":
		s.cjk = true
	}
	return s
}

// sentence terminators. ASCII ones need a following space or end of text
// unless the splitter is in CJK mode; fullwidth ones always terminate.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func isFullwidthTerminator(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}

// closing punctuation that stays attached to the sentence it closes.
func isClosing(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', ')', ']', '}', '»', '」', '』', '）', '】':
		return true
	}
	return false
}

// SplitSentences partitions text into sentence spans. The spans cover the
// input exactly: no byte is dropped and none is added. Trailing whitespace
// after a sentence belongs to that sentence's span; leading whitespace of the
// whole text belongs to the first span.
func (s *Splitter) SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var spans []string
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminator(r) {
			continue
		}

		// attach any closing quotes or brackets to this sentence
		for i < len(text) {
			cr, cs := utf8.DecodeRuneInString(text[i:])
			if !isClosing(cr) {
				break
			}
			i += cs
		}

		// an ASCII terminator mid-word (file.txt, 3.14) is not a boundary
		if !s.cjk && !isFullwidthTerminator(r) {
			if i < len(text) {
				nr, _ := utf8.DecodeRuneInString(text[i:])
				if !unicode.IsSpace(nr) {
					continue
				}
			}
		}

		// trailing whitespace rides with the finished sentence
		for i < len(text) {
			wr, ws := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(wr) {
				break
			}
			i += ws
		}

		spans = append(spans, text[start:i])
		start = i
	}

	if start < len(text) {
		spans = append(spans, text[start:])
	}
	return spans
}

// Segment cuts text into chunks of at most maxChars runes, never splitting a
// sentence across chunks. A sentence longer than the budget becomes a single
// oversized chunk. maxChars <= 0 means unlimited: one chunk holding the whole
// text. Blank input yields no chunks.
func (s *Splitter) Segment(text string, maxChars int) ([]epublate.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if maxChars <= 0 {
		return []epublate.Chunk{{Ordinal: 0, Text: text}}, nil
	}

	spans := s.SplitSentences(text)
	if len(spans) == 0 {
		return nil, &epublate.SegmentationError{
			Message: fmt.Sprintf("no sentence spans for %d bytes of text", len(text)),
		}
	}

	var chunks []epublate.Chunk
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, epublate.Chunk{Ordinal: len(chunks), Text: cur.String()})
		cur.Reset()
		curLen = 0
	}

	for _, span := range spans {
		n := utf8.RuneCountInString(span)
		if curLen > 0 && curLen+n > maxChars {
			flush()
		}
		cur.WriteString(span)
		curLen += n
		if curLen > maxChars {
			// single sentence over budget: ship it whole
			flush()
		}
	}
	flush()

	return chunks, nil
}
