// Package markup extracts translatable text nodes from a chapter document
// and writes translated content back without touching the surrounding tags.
package markup

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/epublate/epublate"
)

// IgnoredTags contains elements whose text content is never extracted:
// non-textual blocks and head metadata.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
	"title":    true,
}

// TextNode is a reference into a document's tree: the extractable text and a
// stable position handle. The handle is a path of child indices resolved
// against the live tree at commit time, never against a snapshot.
type TextNode struct {
	Path epublate.NodePath
	Text string
}

// Document is one parsed chapter, owned exclusively by a single processing
// pass. The tree is mutated in place by Apply and serialized by Render.
type Document struct {
	path string // entry path, for error context
	root *html.Node
}

// Parse builds a Document from a chapter entry's raw bytes. A parse failure
// is a *epublate.MarkupError, fatal to this chapter only.
func Parse(entryPath string, data []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &epublate.MarkupError{Path: entryPath, Cause: err}
	}
	return &Document{path: entryPath, root: root}, nil
}

// Path returns the archive entry path this document was parsed from.
func (d *Document) Path() string {
	return d.path
}

// TextNodes returns a finite, restartable sequence of the document's
// extractable text nodes in pre-order. Nodes inside ignored elements and
// whitespace-only nodes are skipped. Each iteration walks the live tree, so
// the sequence may be consumed more than once.
func (d *Document) TextNodes() iter.Seq[TextNode] {
	return func(yield func(TextNode) bool) {
		walk(d.root, nil, yield)
	}
}

func walk(n *html.Node, path epublate.NodePath, yield func(TextNode) bool) bool {
	if n.Type == html.ElementNode && IgnoredTags[strings.ToLower(n.Data)] {
		return true
	}

	if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
		if !yield(TextNode{Path: path.Clone(), Text: n.Data}) {
			return false
		}
	}

	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, append(path, i), yield) {
			return false
		}
		i++
	}
	return true
}

// Resolve walks the live tree to the node a path points at.
func (d *Document) Resolve(path epublate.NodePath) (*html.Node, error) {
	n := d.root
	for _, idx := range path {
		c := n.FirstChild
		for i := 0; c != nil && i < idx; i++ {
			c = c.NextSibling
		}
		if c == nil {
			return nil, &epublate.MarkupError{
				Path:  d.path,
				Cause: fmt.Errorf("position %s does not resolve", path),
			}
		}
		n = c
	}
	return n, nil
}

// Render serializes the (possibly mutated) tree back to raw bytes.
func (d *Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return nil, &epublate.MarkupError{Path: d.path, Cause: err}
	}
	return buf.Bytes(), nil
}

// SetLanguageAttrs sets lang and dir on the <html> element to match the
// translation target.
func (d *Document) SetLanguageAttrs(langCode string) {
	doc := goquery.NewDocumentFromNode(d.root)
	htmlTag := doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", epublate.ToHTMLLang(langCode))
		htmlTag.SetAttr("dir", epublate.GetDirection(langCode))
	}
}
