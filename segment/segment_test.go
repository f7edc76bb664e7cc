package segment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitSentences_Lossless(t *testing.T) {
	s := NewSplitter("en")

	tests := []struct {
		name string
		text string
	}{
		{"plain", "One. Two. Three."},
		{"leading whitespace", "  First sentence. Second one!"},
		{"trailing whitespace", "Only sentence.   "},
		{"no terminator", "a fragment without an ending"},
		{"abbreviation-like", "See file.txt for details. Then continue."},
		{"quotes", `He said "Stop." Then he left.`},
		{"newlines", "Line one.\nLine two.\n"},
		{"ellipsis", "Wait… what? Really!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := s.SplitSentences(tt.text)
			if strings.Join(spans, "") != tt.text {
				t.Errorf("spans %q do not reassemble to input %q", spans, tt.text)
			}
		})
	}
}

func TestSplitSentences_Boundaries(t *testing.T) {
	s := NewSplitter("en")

	spans := s.SplitSentences("One. Two! Three?")
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d: %q", len(spans), spans)
	}
	if spans[0] != "One. " {
		t.Errorf("span 0 = %q", spans[0])
	}
	if spans[1] != "Two! " {
		t.Errorf("span 1 = %q", spans[1])
	}
	if spans[2] != "Three?" {
		t.Errorf("span 2 = %q", spans[2])
	}
}

func TestSplitSentences_MidWordPeriod(t *testing.T) {
	s := NewSplitter("en")

	// A period without a following space is not a boundary
	spans := s.SplitSentences("Open file.txt now. Done.")
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %q", len(spans), spans)
	}
	if spans[0] != "Open file.txt now. " {
		t.Errorf("span 0 = %q", spans[0])
	}
}

func TestSplitSentences_ClosingQuote(t *testing.T) {
	s := NewSplitter("en")

	spans := s.SplitSentences(`"Stop!" she said.`)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %q", len(spans), spans)
	}
	if spans[0] != `"Stop!" ` {
		t.Errorf("span 0 = %q", spans[0])
	}
}

func TestSplitSentences_CJK(t *testing.T) {
	s := NewSplitter("ja")

	text := "これは本です。それはペンです。終わり"
	spans := s.SplitSentences(text)
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d: %q", len(spans), spans)
	}
	if strings.Join(spans, "") != text {
		t.Error("spans do not reassemble to input")
	}
	if spans[0] != "これは本です。" {
		t.Errorf("span 0 = %q", spans[0])
	}
}

func TestSplitSentences_FullwidthAlwaysTerminates(t *testing.T) {
	// Fullwidth terminators split even outside CJK mode
	s := NewSplitter("en")

	spans := s.SplitSentences("一つ。二つ。")
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %q", len(spans), spans)
	}
}

func TestSegment_Empty(t *testing.T) {
	s := NewSplitter("en")

	for _, text := range []string{"", "   ", "\n\t "} {
		chunks, err := s.Segment(text, 100)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if chunks != nil {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestSegment_Unlimited(t *testing.T) {
	s := NewSplitter("en")

	text := "One. Two. Three."
	chunks, err := s.Segment(text, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != text {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestSegment_Lossless(t *testing.T) {
	s := NewSplitter("en")

	text := "  First sentence here. Second sentence there! A third one? And a trailing fragment"
	chunks, err := s.Segment(text, 30)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		sb.WriteString(c.Text)
	}
	if sb.String() != text {
		t.Errorf("chunks do not reassemble to input:\n%q\n%q", sb.String(), text)
	}
}

func TestSegment_RespectsBudget(t *testing.T) {
	s := NewSplitter("en")

	text := "Aaaa bbb. Cccc ddd. Eeee fff. Gggg hhh."
	chunks, err := s.Segment(text, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for _, c := range chunks {
		if n := utf8.RuneCountInString(c.Text); n > 20 {
			t.Errorf("chunk %d has %d runes: %q", c.Ordinal, n, c.Text)
		}
	}
}

func TestSegment_OversizedSentence(t *testing.T) {
	s := NewSplitter("en")

	long := strings.Repeat("word ", 20) + "end."
	text := "Short one. " + long
	chunks, err := s.Segment(text, 30)
	if err != nil {
		t.Fatal(err)
	}

	// The oversized sentence ships as its own single chunk
	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, "end.") {
			found = true
			if strings.Contains(c.Text, "Short one.") {
				t.Error("oversized sentence should not be merged with its neighbor")
			}
		}
	}
	if !found {
		t.Error("oversized sentence missing from chunks")
	}

	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Text)
	}
	if sb.String() != text {
		t.Error("chunks do not reassemble to input")
	}
}

func TestSegment_NeverSplitsSentences(t *testing.T) {
	s := NewSplitter("en")

	text := "Alpha beta. Gamma delta. Epsilon zeta."
	chunks, err := s.Segment(text, 15)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range chunks {
		trimmed := strings.TrimSpace(c.Text)
		if !strings.HasSuffix(trimmed, ".") {
			t.Errorf("chunk %q ends mid-sentence", c.Text)
		}
	}
}

func TestNewSplitter_BadLocale(t *testing.T) {
	// An unparsable locale falls back to default rules rather than failing
	s := NewSplitter("not a locale!!")
	spans := s.SplitSentences("One. Two.")
	if len(spans) != 2 {
		t.Errorf("expected 2 spans, got %d", len(spans))
	}
}
