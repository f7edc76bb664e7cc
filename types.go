// Package epublate translates EPUB books while preserving document structure.
package epublate

import (
	"fmt"
	"strings"
	"time"
)

// Mode controls how translated text is written back into a chapter.
type Mode string

const (
	// ModeReplace writes the translated text alone, replacing the original.
	ModeReplace Mode = "replace"
	// ModeBilingual keeps the original text followed by a <br/> separator
	// and the translated text inside the same element.
	ModeBilingual Mode = "bilingual"
)

// Config holds everything a translation run needs. It is passed explicitly
// into the pipeline; there is no process-wide mutable state.
type Config struct {
	TargetLanguage string        // target language code (e.g. "fr_FR", "ko")
	Genre          string        // genre label rendered into the prompt (default: "General")
	Model          string        // backend model identifier, informational for cache keys
	Bilingual      bool          // bilingual output instead of replacement
	MaxChunkChars  int           // chunk size budget in runes (default: 2000)
	SourceLocale   string        // locale for sentence detection (default: "en")
	MaxRetries     int           // retry attempts per chunk (default: 3)
	RequestTimeout time.Duration // per-request backend timeout (default: 2m)
	Concurrency    int           // concurrent chunk requests within a chapter (default: 1)
	PromptTemplate string        // custom prompt template; empty means DefaultPromptTemplate

	// UpdateLanguageMetadata rewrites dc:language in the OPF package to the
	// target language before saving. Off by default so that non-chapter
	// entries pass through byte-for-byte.
	UpdateLanguageMetadata bool

	// TitleOverride and CreatorOverride replace dc:title and dc:creator in
	// the output's package metadata when non-empty.
	TitleOverride   string
	CreatorOverride string
}

// Mode returns the output mode selected by the config.
func (c Config) Mode() Mode {
	if c.Bilingual {
		return ModeBilingual
	}
	return ModeReplace
}

// NodePath identifies a node in a parsed chapter document as the sequence of
// child indices from the document root. Paths stay valid across text
// replacement because replacement never adds or removes siblings; bilingual
// insertion is applied in reverse document order for the same reason.
type NodePath []int

// String renders the path in a compact slash form for logs and errors.
func (p NodePath) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, i := range p {
		fmt.Fprintf(&sb, "/%d", i)
	}
	return sb.String()
}

// Clone returns an independent copy of the path.
func (p NodePath) Clone() NodePath {
	out := make(NodePath, len(p))
	copy(out, p)
	return out
}

// Compare orders paths in document pre-order: a path sorts before its
// descendants and before any later sibling subtree.
func (p NodePath) Compare(q NodePath) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			if p[i] < q[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	default:
		return 0
	}
}

// Chunk is a sentence-bounded fragment of one text node's content, sized for
// a single translation request. Concatenating a node's chunks in ordinal
// order reproduces the node text exactly.
type Chunk struct {
	Ordinal int    // position within the owning text node
	Text    string // exact slice of the node text, whitespace included
}

// Trimmed returns the chunk text without its surrounding whitespace; this is
// what actually goes to the backend.
func (c Chunk) Trimmed() string {
	return strings.TrimSpace(c.Text)
}

// TranslationResult pairs a chunk ordinal with its translated text. A node's
// replacement is only committed once every ordinal has a result.
type TranslationResult struct {
	Ordinal int
	Text    string
}
