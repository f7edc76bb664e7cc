package markup

import (
	"strings"
	"testing"

	"github.com/epublate/epublate"
)

func applyAll(t *testing.T, html string, mode epublate.Mode, translate func(string) string) string {
	t.Helper()

	doc, err := Parse("test.xhtml", []byte(html))
	if err != nil {
		t.Fatal(err)
	}

	var reps []Replacement
	for n := range doc.TextNodes() {
		reps = append(reps, Replacement{
			Node: n,
			Text: PreserveWhitespace(n.Text, translate(strings.TrimSpace(n.Text))),
		})
	}

	if err := doc.Apply(reps, mode); err != nil {
		t.Fatal(err)
	}

	out, err := doc.Render()
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestApply_Replace(t *testing.T) {
	out := applyAll(t, "<html><body><p>Hello world.</p></body></html>", epublate.ModeReplace,
		func(s string) string { return "Bonjour le monde." })

	if !strings.Contains(out, "<p>Bonjour le monde.</p>") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "Hello world.") {
		t.Error("original text should be gone in replace mode")
	}
}

func TestApply_Replace_KeepsInlineMarkup(t *testing.T) {
	out := applyAll(t, "<html><body><p>Hello <em>dear</em> world.</p></body></html>", epublate.ModeReplace,
		func(s string) string {
			switch s {
			case "Hello":
				return "Bonjour"
			case "dear":
				return "cher"
			case "world.":
				return "monde."
			}
			return s
		})

	if !strings.Contains(out, "Bonjour <em>cher</em> monde.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestApply_Bilingual(t *testing.T) {
	out := applyAll(t, "<html><body><p>Hello world.</p></body></html>", epublate.ModeBilingual,
		func(s string) string { return "Bonjour le monde." })

	if !strings.Contains(out, "Hello world.<br/>Bonjour le monde.") &&
		!strings.Contains(out, "Hello world.<br>Bonjour le monde.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestApply_Bilingual_MultipleNodes(t *testing.T) {
	// Two text nodes under one parent: the later insertion must not shift
	// the earlier node's path
	out := applyAll(t, "<html><body><p>One.</p><p>Two.</p></body></html>", epublate.ModeBilingual,
		func(s string) string {
			switch s {
			case "One.":
				return "Un."
			case "Two.":
				return "Deux."
			}
			return s
		})

	for _, fragment := range []string{"One.", "Un.", "Two.", "Deux."} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q: %s", fragment, out)
		}
	}
	if strings.Index(out, "One.") > strings.Index(out, "Un.") {
		t.Error("original should precede translation")
	}
	if strings.Index(out, "Un.") > strings.Index(out, "Two.") {
		t.Error("first pair should precede second paragraph")
	}
}

func TestApply_PreservesUntouchedNodes(t *testing.T) {
	doc, err := Parse("test.xhtml", []byte("<html><body><p>Keep me.</p><p>Change me.</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}

	var reps []Replacement
	for n := range doc.TextNodes() {
		if strings.TrimSpace(n.Text) == "Change me." {
			reps = append(reps, Replacement{Node: n, Text: "Changed."})
		}
	}

	if err := doc.Apply(reps, epublate.ModeReplace); err != nil {
		t.Fatal(err)
	}

	out, _ := doc.Render()
	if !strings.Contains(string(out), "Keep me.") {
		t.Error("untouched node should keep its original text")
	}
	if !strings.Contains(string(out), "Changed.") {
		t.Error("targeted node should be replaced")
	}
}

func TestApply_BadPath(t *testing.T) {
	doc, err := Parse("test.xhtml", []byte("<html><body><p>Hi.</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}

	reps := []Replacement{{
		Node: TextNode{Path: epublate.NodePath{9, 9}, Text: "x"},
		Text: "y",
	}}
	if err := doc.Apply(reps, epublate.ModeReplace); err == nil {
		t.Error("expected error for unresolvable path")
	}
}

func TestComposeReplacement(t *testing.T) {
	node := TextNode{Path: epublate.NodePath{1, 0}, Text: "  One. Two.  "}
	chunks := []epublate.Chunk{
		{Ordinal: 0, Text: "  One. "},
		{Ordinal: 1, Text: "Two.  "},
	}
	results := []epublate.TranslationResult{
		{Ordinal: 1, Text: "Deux."},
		{Ordinal: 0, Text: "Un."},
	}

	rep, err := ComposeReplacement(node, chunks, results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Whitespace layout of each chunk survives, order follows ordinals
	if rep.Text != "  Un. Deux.  " {
		t.Errorf("Text = %q", rep.Text)
	}
}

func TestComposeReplacement_MissingResult(t *testing.T) {
	node := TextNode{Path: epublate.NodePath{0}, Text: "One. Two."}
	chunks := []epublate.Chunk{
		{Ordinal: 0, Text: "One. "},
		{Ordinal: 1, Text: "Two."},
	}
	results := []epublate.TranslationResult{{Ordinal: 0, Text: "Un."}}

	if _, err := ComposeReplacement(node, chunks, results); err == nil {
		t.Error("expected error for missing chunk result")
	}
}

func TestPreserveWhitespace(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		translated string
		want       string
	}{
		{"both sides", "  Hello  ", "Bonjour", "  Bonjour  "},
		{"leading only", "\n\tHello", "Bonjour", "\n\tBonjour"},
		{"trailing only", "Hello ", "Bonjour", "Bonjour "},
		{"none", "Hello", "Bonjour", "Bonjour"},
		{"whitespace only original", "   ", "Bonjour", "   Bonjour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreserveWhitespace(tt.original, tt.translated); got != tt.want {
				t.Errorf("PreserveWhitespace(%q, %q) = %q, want %q", tt.original, tt.translated, got, tt.want)
			}
		})
	}
}
