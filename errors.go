package epublate

import "fmt"

// ArchiveError indicates a container-level failure (open, parse, save).
// Archive errors are fatal to the whole run.
type ArchiveError struct {
	Op    string // "open", "write", "save"
	Path  string // container path or internal entry path
	Cause error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("archive %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("archive %s %s", e.Op, e.Path)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

// MarkupError indicates a malformed chapter document. It is fatal to that
// chapter only; the chapter is copied through unchanged.
type MarkupError struct {
	Path  string // internal path of the chapter entry
	Cause error
}

func (e *MarkupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("markup error in %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("markup error in %s", e.Path)
}

func (e *MarkupError) Unwrap() error {
	return e.Cause
}

// TranslationError indicates a backend failure for one chunk: unreachable
// backend, error status, or empty output. Retryable errors are retried with
// backoff; on exhaustion the owning text node keeps its original content and
// the event is recorded in the run report.
type TranslationError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("translation error: %s", e.Message)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// SegmentationError should not occur for well-formed text; it is a defensive
// fatal-to-chapter condition.
type SegmentationError struct {
	Message string
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segmentation error: %s", e.Message)
}
