package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// DefaultTopK is the number of units retrieved per query.
const DefaultTopK = 10

// Request is a retrieval query.
type Request struct {
	// Text is the user's question.
	Text string

	// ChatAccount restricts retrieval to units owned by this account.
	// Empty means search everything.
	ChatAccount string

	// TopK overrides the engine's retrieval width for this request
	// when positive.
	TopK int
}

// Response is the grounded answer to a Request.
type Response struct {
	// Answer is the generated text with normalized [n] citation markers.
	Answer string

	// Citations lists the cited sources in answer numbering order.
	Citations []core.Citation

	// Sources are the retrieved units in rank order, including the
	// uncited ones.
	Sources []*core.ScoredUnit

	// Degraded is set when the response fell back from full generation:
	// an empty index or an unavailable generator.
	Degraded bool
}

// Engine answers questions over the vector index with inline citations.
type Engine struct {
	index           storage.VectorIndex
	embedder        ai.Embedder
	generator       ai.Generator
	topK            int
	snippetFallback bool
	expectedModel   *storage.ModelInfo
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithTopK sets how many units are retrieved per query.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return storage.ErrInvalidQuery
		}
		e.topK = k
		return nil
	}
}

// WithSnippetFallback controls behavior when the generator fails.
// Enabled (the default), the query degrades to raw source snippets
// without citations. Disabled, it fails with ErrGenerationUnavailable.
func WithSnippetFallback(enabled bool) Option {
	return func(e *Engine) error {
		e.snippetFallback = enabled
		return nil
	}
}

// WithExpectedModel makes every query verify that the index was built
// by the given embedding model before searching it.
func WithExpectedModel(info storage.ModelInfo) Option {
	return func(e *Engine) error {
		e.expectedModel = &info
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(index storage.VectorIndex, provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		index:           index,
		embedder:        provider.Embedder(),
		generator:       provider.Generator(),
		topK:            DefaultTopK,
		snippetFallback: true,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Query answers a question from the indexed transcripts.
func (e *Engine) Query(ctx context.Context, req Request) (*Response, error) {
	return e.QueryWithMonitor(ctx, req, nil)
}

// QueryWithMonitor answers a question with monitoring.
// The monitor receives callbacks at each stage of the query process.
//
// Degraded conditions return a well-formed response rather than an
// error: an empty index yields the no-answer text, and a generator
// failure yields raw snippets when snippet fallback is enabled.
func (e *Engine) QueryWithMonitor(ctx context.Context, req Request, monitor QueryMonitor) (*Response, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(req.Text)

	if e.expectedModel != nil {
		stored, err := e.index.ModelInfo(ctx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if err == nil && stored != *e.expectedModel {
			return nil, storage.ErrModelMismatch
		}
	}

	vector, err := e.embedder.EmbedText(ctx, req.Text)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	topK := e.topK
	if req.TopK > 0 {
		topK = req.TopK
	}

	sources, err := e.index.Search(ctx, vector, topK, storage.Filter{ChatAccount: req.ChatAccount})
	if errors.Is(err, storage.ErrEmptyIndex) {
		e.logger.Warn("query against empty index", "account", req.ChatAccount)
		response := &Response{Answer: NoAnswer, Degraded: true}
		monitor.Finish(response)
		return response, nil
	}
	if err != nil {
		e.logger.Error("error searching index", "err", err)
		return nil, err
	}

	sources = dedupeSources(sources)
	monitor.AfterRetrieval(sources)

	answer, err := e.generator.Complete(ctx, buildPrompt(req.Text, sources))
	if err != nil {
		if !e.snippetFallback {
			e.logger.Error("answer generation failed", "err", err)
			return nil, errors.Join(ErrGenerationUnavailable, err)
		}

		// Best effort: hand back the retrieved snippets uncited
		e.logger.Warn("answer generation failed, returning snippets", "err", err)
		response := &Response{Answer: joinSnippets(sources), Sources: sources, Degraded: true}
		monitor.Finish(response)
		return response, nil
	}
	monitor.AfterGeneration(answer)

	rewritten, citations := renumberCitations(answer, sources)

	response := &Response{
		Answer:    rewritten,
		Citations: citations,
		Sources:   sources,
	}
	monitor.Finish(response)
	return response, nil
}

// joinSnippets concatenates retrieved texts in rank order for the
// degraded no-generator answer.
func joinSnippets(sources []*core.ScoredUnit) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = s.Unit.PageContent
	}
	return strings.Join(parts, "\n\n")
}

// dedupeSources drops repeated chunk_ids, keeping the best-ranked copy.
// Backends should not produce duplicates, but the prompt numbering must
// never show the same source twice.
func dedupeSources(sources []*core.ScoredUnit) []*core.ScoredUnit {
	seen := make(map[string]bool, len(sources))
	out := sources[:0]
	for _, s := range sources {
		id := s.Unit.Metadata.ChunkID
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, s)
	}
	return out
}
