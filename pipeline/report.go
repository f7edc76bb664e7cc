package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/epublate/epublate"
)

// SkippedChapter records a chapter that was copied through unchanged and why.
type SkippedChapter struct {
	Path   string
	Reason string
}

// Fallback records a chunk whose translation failed after retries. The owning
// text node kept its original content.
type Fallback struct {
	Chapter string
	Node    epublate.NodePath
	Chunk   int
	Reason  string
}

// Report summarizes one translation run.
type Report struct {
	Backend        string
	TargetLanguage string
	Mode           epublate.Mode

	TotalChapters      int
	ChaptersTranslated int
	Skipped            []SkippedChapter
	Fallbacks          []Fallback

	NodesTranslated  int
	ChunksTranslated int
	ChunksCached     int

	Duration time.Duration
}

// Clean reports whether every chapter was translated with no fallbacks.
func (r *Report) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Fallbacks) == 0
}

// Summary renders a human-readable run summary.
func (r *Report) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Translated %d/%d chapters to %s via %s (%s mode) in %s\n",
		r.ChaptersTranslated, r.TotalChapters, r.TargetLanguage, r.Backend, r.Mode, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Chunks: %d translated, %d from cache\n", r.ChunksTranslated, r.ChunksCached)

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&sb, "Skipped %d chapter(s):\n", len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Fprintf(&sb, "  %s: %s\n", s.Path, s.Reason)
		}
	}

	if len(r.Fallbacks) > 0 {
		fmt.Fprintf(&sb, "Kept original text for %d chunk(s):\n", len(r.Fallbacks))
		for _, f := range r.Fallbacks {
			fmt.Fprintf(&sb, "  %s node %s chunk %d: %s\n", f.Chapter, f.Node, f.Chunk, f.Reason)
		}
	}

	return sb.String()
}
