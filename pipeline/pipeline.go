// Package pipeline drives a whole-book translation run: load the container,
// process each chapter in spine order, and save the result. One Runner owns
// one run at a time.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/epublate/epublate"
	"github.com/epublate/epublate/cache"
	"github.com/epublate/epublate/epub"
	"github.com/epublate/epublate/markup"
	"github.com/epublate/epublate/segment"
)

// Stage is the pipeline's observable state.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageLoading    Stage = "loading"
	StageProcessing Stage = "processing"
	StageSaving     Stage = "saving"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Progress is one observable step of a run. During StageProcessing the
// chapter counters identify the chapter being worked on.
type Progress struct {
	Stage         Stage
	ChapterIndex  int // 1-based, valid during StageProcessing
	TotalChapters int
	Path          string // chapter entry path, valid during StageProcessing
}

// Runner executes translation runs. Safe to reuse sequentially; a Runner must
// not run two books at once.
type Runner struct {
	cfg      epublate.Config
	backend  epublate.Backend
	client   *epublate.Client
	splitter *segment.Splitter
	cache    cache.ChunkCache
	log      *logrus.Logger
	runID    string

	events chan Progress

	mu    sync.Mutex
	stage Stage
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache attaches a chunk cache. Lookups are keyed per run, so the cache
// only pays off when a run is retried or resumed.
func WithCache(c cache.ChunkCache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithRunID fixes the run identifier, letting a restarted run hit the
// previous attempt's cache entries.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner builds a Runner for the given config and backend. The backend is
// wrapped with retry; add rate limiting by wrapping it with
// epublate.NewRateLimitedBackend before passing it in.
func NewRunner(cfg epublate.Config, b epublate.Backend, opts ...Option) (*Runner, error) {
	if cfg.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	if cfg.MaxChunkChars == 0 {
		cfg.MaxChunkChars = 2000
	}
	if cfg.SourceLocale == "" {
		cfg.SourceLocale = "en"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	template := epublate.MustPromptTemplate(epublate.DefaultPromptTemplate)
	if cfg.PromptTemplate != "" {
		var err error
		template, err = epublate.NewPromptTemplate(cfg.PromptTemplate)
		if err != nil {
			return nil, err
		}
	}

	retryCfg := epublate.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.MaxRetries
	wrapped := epublate.NewRetryableBackend(b, retryCfg)

	r := &Runner{
		cfg:      cfg,
		backend:  wrapped,
		client:   epublate.NewClient(wrapped, template, cfg.TargetLanguage, cfg.Genre),
		splitter: segment.NewSplitter(cfg.SourceLocale),
		log:      logrus.New(),
		events:   make(chan Progress, 64),
		stage:    StageIdle,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.runID == "" {
		r.runID = newRunID()
	}

	return r, nil
}

func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// Events returns the progress channel. Events are dropped, never blocked on,
// when the consumer falls behind.
func (r *Runner) Events() <-chan Progress {
	return r.events
}

// State returns the current pipeline stage.
func (r *Runner) State() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

func (r *Runner) setStage(p Progress) {
	r.mu.Lock()
	r.stage = p.Stage
	r.mu.Unlock()

	select {
	case r.events <- p:
	default:
	}
}

// Run translates the book at inputPath and writes the result to outputPath.
// A cancelled context aborts the run without writing any output. The report
// is non-nil whenever the run reached StageDone.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string) (*Report, error) {
	start := time.Now()
	report := &Report{
		Backend:        r.backend.Name(),
		TargetLanguage: r.cfg.TargetLanguage,
		Mode:           r.cfg.Mode(),
	}

	r.setStage(Progress{Stage: StageLoading})
	r.log.WithFields(logrus.Fields{
		"input":  inputPath,
		"target": r.cfg.TargetLanguage,
		"run_id": r.runID,
	}).Info("loading container")

	book, err := epub.Open(inputPath)
	if err != nil {
		return nil, r.fail(err)
	}

	chapters := book.Chapters()
	report.TotalChapters = len(chapters)

	for i, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(err)
		}

		r.setStage(Progress{
			Stage:         StageProcessing,
			ChapterIndex:  i + 1,
			TotalChapters: len(chapters),
			Path:          ch.Path,
		})
		r.log.WithFields(logrus.Fields{
			"chapter": ch.Path,
			"index":   i + 1,
			"total":   len(chapters),
		}).Info("processing chapter")

		if err := r.processChapter(ctx, book, ch, report); err != nil {
			return nil, r.fail(err)
		}
	}

	if r.cfg.UpdateLanguageMetadata {
		if err := book.SetLanguage(metadataLanguage(r.cfg.TargetLanguage)); err != nil {
			return nil, r.fail(err)
		}
	}
	if r.cfg.TitleOverride != "" {
		if err := book.SetTitle(r.cfg.TitleOverride); err != nil {
			return nil, r.fail(err)
		}
	}
	if r.cfg.CreatorOverride != "" {
		if err := book.SetCreator(r.cfg.CreatorOverride); err != nil {
			return nil, r.fail(err)
		}
	}

	r.setStage(Progress{Stage: StageSaving})
	if err := book.Save(outputPath); err != nil {
		return nil, r.fail(err)
	}

	report.Duration = time.Since(start)
	r.setStage(Progress{Stage: StageDone})
	r.log.WithFields(logrus.Fields{
		"output":   outputPath,
		"duration": report.Duration,
	}).Info("run complete")

	return report, nil
}

func (r *Runner) fail(err error) error {
	r.setStage(Progress{Stage: StageFailed})
	r.log.WithError(err).Error("run failed")
	return err
}

// metadataLanguage converts the target code to the hyphenated form OPF
// metadata uses, expanding short codes first.
func metadataLanguage(langCode string) string {
	if locale, ok := epublate.ShortCodeToLocale[langCode]; ok {
		langCode = locale
	}
	return epublate.ToHTMLLang(langCode)
}

// chunkJob is one backend request: a chunk of one text node.
type chunkJob struct {
	nodeIdx int
	chunk   epublate.Chunk
}

// chunkOutcome is the job's result. Failed jobs carry the error; the owning
// node then keeps its original text.
type chunkOutcome struct {
	nodeIdx int
	result  epublate.TranslationResult
	cached  bool
	err     error
}

func (r *Runner) processChapter(ctx context.Context, book *epub.Archive, ch epub.ChapterRef, report *Report) error {
	entry, ok := book.Entry(ch.Path)
	if !ok {
		return &epublate.ArchiveError{Op: "open", Path: ch.Path, Cause: fmt.Errorf("no such entry")}
	}

	doc, err := markup.Parse(ch.Path, entry.Data)
	if err != nil {
		// Malformed chapter: copy through unchanged and move on
		var merr *epublate.MarkupError
		if errors.As(err, &merr) {
			r.log.WithField("chapter", ch.Path).WithError(err).Warn("skipping malformed chapter")
			report.Skipped = append(report.Skipped, SkippedChapter{Path: ch.Path, Reason: err.Error()})
			return nil
		}
		return err
	}

	var nodes []markup.TextNode
	for n := range doc.TextNodes() {
		nodes = append(nodes, n)
	}

	nodeChunks := make([][]epublate.Chunk, len(nodes))
	var jobs []chunkJob
	for i, n := range nodes {
		chunks, err := r.splitter.Segment(n.Text, r.cfg.MaxChunkChars)
		if err != nil {
			var serr *epublate.SegmentationError
			if errors.As(err, &serr) {
				r.log.WithField("chapter", ch.Path).WithError(err).Warn("skipping chapter")
				report.Skipped = append(report.Skipped, SkippedChapter{Path: ch.Path, Reason: err.Error()})
				return nil
			}
			return err
		}
		nodeChunks[i] = chunks
		for _, c := range chunks {
			jobs = append(jobs, chunkJob{nodeIdx: i, chunk: c})
		}
	}

	outcomes, err := r.translateChunks(ctx, jobs)
	if err != nil {
		return err
	}

	nodeResults := make([][]epublate.TranslationResult, len(nodes))
	nodeFailed := make([]bool, len(nodes))
	for _, out := range outcomes {
		if out.err != nil {
			nodeFailed[out.nodeIdx] = true
			report.Fallbacks = append(report.Fallbacks, Fallback{
				Chapter: ch.Path,
				Node:    nodes[out.nodeIdx].Path,
				Chunk:   out.result.Ordinal,
				Reason:  out.err.Error(),
			})
			continue
		}
		if out.cached {
			report.ChunksCached++
		} else {
			report.ChunksTranslated++
		}
		nodeResults[out.nodeIdx] = append(nodeResults[out.nodeIdx], out.result)
	}

	var reps []markup.Replacement
	for i, n := range nodes {
		if nodeFailed[i] || len(nodeChunks[i]) == 0 {
			continue
		}
		rep, err := markup.ComposeReplacement(n, nodeChunks[i], nodeResults[i])
		if err != nil {
			return &epublate.MarkupError{Path: ch.Path, Cause: err}
		}
		reps = append(reps, rep)
		report.NodesTranslated++
	}

	if err := doc.Apply(reps, r.cfg.Mode()); err != nil {
		return err
	}
	if r.cfg.Mode() == epublate.ModeReplace {
		doc.SetLanguageAttrs(r.cfg.TargetLanguage)
	}

	rendered, err := doc.Render()
	if err != nil {
		return err
	}
	if err := book.WriteEntry(ch.Path, rendered); err != nil {
		return err
	}

	report.ChaptersTranslated++
	return nil
}

// translateChunks runs the chapter's chunk jobs through a bounded worker
// pool. Only context errors abort the chapter; chunk failures are returned in
// their outcomes.
func (r *Runner) translateChunks(ctx context.Context, jobs []chunkJob) ([]chunkOutcome, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	workers := r.cfg.Concurrency
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan chunkJob)
	outCh := make(chan chunkOutcome, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outCh <- r.translateChunk(ctx, job)
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()
	close(outCh)

	outcomes := make([]chunkOutcome, 0, len(jobs))
	for out := range outCh {
		outcomes = append(outcomes, out)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *Runner) translateChunk(ctx context.Context, job chunkJob) chunkOutcome {
	out := chunkOutcome{
		nodeIdx: job.nodeIdx,
		result:  epublate.TranslationResult{Ordinal: job.chunk.Ordinal},
	}

	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	key := epublate.ChunkKey(r.runID, epublate.HashText(job.chunk.Text), r.cfg.TargetLanguage, r.cfg.Model)
	if r.cache != nil {
		if val, ok := r.cache.Get(key); ok {
			out.result.Text = val
			out.cached = true
			return out
		}
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	translated, err := r.client.Translate(cctx, job.chunk.Trimmed())
	if err != nil {
		out.err = err
		return out
	}
	out.result.Text = translated

	if r.cache != nil {
		if err := r.cache.Set(key, translated); err != nil {
			r.log.WithError(err).Debug("cache set failed")
		}
	}
	return out
}
