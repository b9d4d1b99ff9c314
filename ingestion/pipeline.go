package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/chunk"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// Pipeline orchestrates transcript ingestion: classification, chunking,
// embedding, and index writes.
type Pipeline struct {
	index     storage.VectorIndex
	provider  ai.AIProvider
	splitter  *chunk.Splitter
	pool      *ants.Pool
	threshold float64
	fallback  *core.AccessibilityLabel
	model     *storage.ModelInfo

	retryAttempts int
	retryDelay    time.Duration

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunking sets the chunk size and overlap in runes.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		splitter, err := chunk.NewSplitter(chunk.WithSize(size), chunk.WithOverlap(overlap))
		if err != nil {
			return err
		}
		p.splitter = splitter
		return nil
	}
}

// WithThreshold sets the work probability threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(p *Pipeline) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		p.threshold = threshold
		return nil
	}
}

// WithFallbackLabel makes classification failures non-fatal: after
// retries are exhausted the transcript is labeled with the given label
// at confidence zero instead of aborting.
func WithFallbackLabel(label core.AccessibilityLabel) Option {
	return func(p *Pipeline) error {
		if err := core.ValidateLabel(label); err != nil {
			return err
		}
		p.fallback = &label
		return nil
	}
}

// WithRetry sets the retry policy for classifier calls and index writes.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.retryAttempts = attempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithModelInfo pins the index to an embedding model before the first
// write. Mismatched indexes are rejected instead of silently mixing
// vector spaces.
func WithModelInfo(info storage.ModelInfo) Option {
	return func(p *Pipeline) error {
		p.model = &info
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(index storage.VectorIndex, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	splitter, err := chunk.NewSplitter()
	if err != nil {
		return nil, err
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:         index,
		provider:      provider,
		splitter:      splitter,
		pool:          pool,
		threshold:     DefaultThreshold,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestTranscript classifies a transcript, chunks its turns, embeds the
// chunks, and writes the resulting units into the index.
//
// Per-unit embedding and write failures are collected in the report and
// do not abort the rest of the transcript. Returns an error only for
// failures that invalidate the whole transcript: malformed input, an
// index pinned to a different model, or classification failure with no
// fallback configured.
func (p *Pipeline) IngestTranscript(ctx context.Context, t core.Transcript) (*Report, error) {
	if err := core.ValidateTranscript(&t); err != nil {
		return nil, err
	}

	if p.model != nil {
		if err := p.index.EnsureModel(ctx, *p.model); err != nil {
			return nil, err
		}
	}

	cls, err := p.classify(ctx, t)
	if err != nil {
		return nil, err
	}

	units := AssembleUnits(t, cls, p.splitter)

	report := &Report{
		ChatID:     t.ChatID,
		Label:      cls.Label,
		Confidence: cls.Confidence,
		TurnCount:  len(t.Turns),
		UnitsTotal: len(units),
	}

	p.logger.Info("ingesting transcript",
		"chatID", t.ChatID, "label", cls.Label, "confidence", cls.Confidence, "units", len(units))

	if len(units) == 0 {
		return report, nil
	}

	p.writeUnits(ctx, units, report)

	if report.Failed() {
		p.logger.Warn("transcript ingested with failures",
			"chatID", t.ChatID, "written", report.UnitsWritten, "skipped", report.UnitsSkipped)
	}

	return report, nil
}

// classify runs the classifier with retries and maps the verdict onto a
// label. Falls back to the configured label when the classifier stays
// unavailable.
func (p *Pipeline) classify(ctx context.Context, t core.Transcript) (core.Classification, error) {
	var probs ai.Probabilities

	err := RetryWithBackoff(ctx, func() error {
		var err error
		probs, err = p.provider.Classifier().Classify(ctx, t.Text())
		return err
	}, p.retryAttempts, p.retryDelay)

	if err == nil {
		cls, derr := DecideLabel(probs, p.threshold)
		if derr == nil {
			return cls, nil
		}
		err = derr
	}

	if p.fallback != nil {
		p.logger.Warn("classification failed, using fallback label",
			"chatID", t.ChatID, "fallback", *p.fallback, "err", err)
		return core.Classification{Label: *p.fallback, Confidence: 0}, nil
	}

	return core.Classification{}, err
}

// writeUnits embeds and upserts units concurrently. Each unit fails or
// succeeds on its own.
func (p *Pipeline) writeUnits(ctx context.Context, units []*core.RetrievalUnit, report *Report) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	fail := func(unit *core.RetrievalUnit, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.UnitsSkipped++
		report.Failures = append(report.Failures, UnitFailure{
			ChunkID: unit.Metadata.ChunkID,
			Err:     err,
		})
	}

	for _, unit := range units {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				fail(unit, err)
				return
			}

			vector, err := p.provider.Embedder().EmbedText(ctx, unit.PageContent)
			if err != nil {
				p.logger.Error("embedding failed, skipping unit",
					"chunkID", unit.Metadata.ChunkID, "err", err)
				fail(unit, err)
				return
			}
			unit.Vector = vector

			err = RetryWithBackoff(ctx, func() error {
				return p.index.Upsert(ctx, unit)
			}, p.retryAttempts, p.retryDelay)
			if err != nil {
				p.logger.Error("index write failed, skipping unit",
					"chunkID", unit.Metadata.ChunkID, "err", err)
				fail(unit, err)
				return
			}

			mu.Lock()
			report.UnitsWritten++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			fail(unit, submitErr)
		}
	}

	wg.Wait()
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
