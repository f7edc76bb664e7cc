package markup

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/epublate/epublate"
)

// Replacement carries the final replacement content for one text node:
// translated chunks concatenated in ordinal order with the original
// whitespace layout restored.
type Replacement struct {
	Node TextNode
	Text string
}

// ComposeReplacement builds a node's replacement text from its chunks and
// their fully-resolved results. Every ordinal must have exactly one result;
// a gap means the node is not ready and its original text must be kept.
func ComposeReplacement(node TextNode, chunks []epublate.Chunk, results []epublate.TranslationResult) (Replacement, error) {
	if len(results) != len(chunks) {
		return Replacement{}, fmt.Errorf("node %s: %d chunks, %d results", node.Path, len(chunks), len(results))
	}

	byOrdinal := make(map[int]string, len(results))
	for _, r := range results {
		if _, dup := byOrdinal[r.Ordinal]; dup {
			return Replacement{}, fmt.Errorf("node %s: duplicate result for chunk %d", node.Path, r.Ordinal)
		}
		byOrdinal[r.Ordinal] = r.Text
	}

	var text string
	for _, c := range chunks {
		translated, ok := byOrdinal[c.Ordinal]
		if !ok {
			return Replacement{}, fmt.Errorf("node %s: missing result for chunk %d", node.Path, c.Ordinal)
		}
		text += PreserveWhitespace(c.Text, translated)
	}

	return Replacement{Node: node, Text: text}, nil
}

// Apply commits replacements into the live tree. In ModeReplace the text
// node's content is rewritten in place; in ModeBilingual the original text is
// kept and a <br/> plus the translated text are inserted after it.
//
// Commits run in reverse document order: bilingual insertion adds siblings,
// and applying from the back keeps every not-yet-committed path valid.
func (d *Document) Apply(reps []Replacement, mode epublate.Mode) error {
	ordered := make([]Replacement, len(reps))
	copy(ordered, reps)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Node.Path.Compare(ordered[j].Node.Path) > 0
	})

	for _, rep := range ordered {
		if err := d.commit(rep, mode); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) commit(rep Replacement, mode epublate.Mode) error {
	n, err := d.Resolve(rep.Node.Path)
	if err != nil {
		return err
	}
	if n.Type != html.TextNode {
		return &epublate.MarkupError{
			Path:  d.path,
			Cause: fmt.Errorf("position %s is not a text node", rep.Node.Path),
		}
	}

	switch mode {
	case epublate.ModeBilingual:
		sep := &html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br}
		translated := &html.Node{Type: html.TextNode, Data: rep.Text}
		next := n.NextSibling
		n.Parent.InsertBefore(sep, next)
		n.Parent.InsertBefore(translated, next)
	default:
		n.Data = rep.Text
	}
	return nil
}

// PreserveWhitespace transfers the original text's leading and trailing
// whitespace onto the translated text so concatenation stays layout-exact.
func PreserveWhitespace(original, translated string) string {
	// Find leading whitespace
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	// Find trailing whitespace
	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 && trailingLen < len(original) {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + translated + trailing
}
