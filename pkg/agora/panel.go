// Package agora is the programmatic entry point: it wires the
// embedder, vector store, corpus, router, responder, orchestrators,
// cache, and metrics into a Panel and exposes the query operations.
package agora

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/cache"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/debate"
	"github.com/kadirpekel/agora/pkg/embedders"
	"github.com/kadirpekel/agora/pkg/llms"
	"github.com/kadirpekel/agora/pkg/logger"
	"github.com/kadirpekel/agora/pkg/observability"
	"github.com/kadirpekel/agora/pkg/rag"
	"github.com/kadirpekel/agora/pkg/routing"
	"github.com/kadirpekel/agora/pkg/vector"
)

var (
	// ErrNoAuthors is returned when selection finds nobody relevant.
	ErrNoAuthors = errors.New("agora: no relevant authors for query")

	// ErrTooFewAuthors is returned when a debate is requested with
	// fewer than two selected authors.
	ErrTooFewAuthors = errors.New("agora: debate requires at least 2 authors")

	// ErrNoResponses is returned when every author failed to respond.
	ErrNoResponses = errors.New("agora: no responses generated")
)

// Panel is the assembled debate panel.
type Panel struct {
	cfg              *config.Config
	registry         *authors.Registry
	embedderRegistry *embedders.EmbedderRegistry
	llmRegistry      *llms.LLMRegistry

	embedder   embedders.EmbedderProvider
	llm        llms.LLMProvider
	store      *corpus.Store
	router     *routing.Router
	responder  *rag.Responder
	debates    *debate.Orchestrator
	agentic    *debate.AgenticOrchestrator
	aggregator *debate.Aggregator
	cache      cache.ResponseCache
	metrics    observability.Metrics

	metricsServer *http.Server
}

// Option overrides a component during construction, mainly for tests
// and embedding into larger programs.
type Option func(*Panel)

func WithEmbedder(e embedders.EmbedderProvider) Option {
	return func(p *Panel) { p.embedder = e }
}

func WithLLM(l llms.LLMProvider) Option {
	return func(p *Panel) { p.llm = l }
}

func WithStore(s *corpus.Store) Option {
	return func(p *Panel) { p.store = s }
}

func WithCache(c cache.ResponseCache) Option {
	return func(p *Panel) { p.cache = c }
}

func WithMetrics(m observability.Metrics) Option {
	return func(p *Panel) { p.metrics = m }
}

// New builds a Panel from configuration.
func New(cfg *config.Config, opts ...Option) (*Panel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger.Init(logger.ParseLevel(cfg.Logging.Level), os.Stdout, cfg.Logging.Format)

	registry, err := authors.NewRegistryFromConfig(cfg.Authors)
	if err != nil {
		return nil, fmt.Errorf("failed to build author registry: %w", err)
	}

	p := &Panel{
		cfg:              cfg,
		registry:         registry,
		embedderRegistry: embedders.NewEmbedderRegistry(),
		llmRegistry:      llms.NewLLMRegistry(),
		aggregator:       debate.NewAggregator(),
		metrics:          observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.embedder == nil {
		p.embedder, err = p.embedderRegistry.CreateEmbedderFromConfig(cfg.Embedder.Type, &cfg.Embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
	} else if err := p.embedderRegistry.RegisterEmbedder(cfg.Embedder.Type, p.embedder); err != nil {
		return nil, fmt.Errorf("failed to register embedder: %w", err)
	}
	if p.llm == nil {
		p.llm, err = p.llmRegistry.CreateLLMFromConfig(cfg.LLM.Type, &cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create llm provider: %w", err)
		}
	} else if err := p.llmRegistry.RegisterLLM(cfg.LLM.Type, p.llm); err != nil {
		return nil, fmt.Errorf("failed to register llm provider: %w", err)
	}
	if p.store == nil {
		provider, err := vector.NewProviderFromConfig(&cfg.VectorStore)
		if err != nil {
			return nil, fmt.Errorf("failed to create vector store: %w", err)
		}
		p.store = corpus.NewStore(provider, p.embedder, registry,
			cfg.VectorStore.ChunksCollection, cfg.VectorStore.ProfileCollection)
	}
	if p.cache == nil {
		p.cache, err = cache.NewFromConfig(&cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
	}

	if _, isNoop := p.metrics.(observability.NoopMetrics); isNoop && cfg.Metrics.Enabled {
		pm, err := observability.InitMetrics(context.Background(), cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		p.metrics = pm
		p.metricsServer = observability.StartMetricsServer(cfg.Metrics.Port)
	}
	observability.SetGlobalMetrics(p.metrics)

	p.router = routing.NewRouter(p.store, &cfg.Routing)
	p.responder = rag.NewResponder(p.store, p.llm, registry, &cfg.RAG)
	p.debates = debate.NewOrchestrator(p.llm, &cfg.Debate)
	p.agentic = debate.NewAgenticOrchestrator(p.store, p.llm, &cfg.Debate)

	slog.Info("Initialized panel",
		"authors", registry.Count(),
		"llm", p.llm.GetModelName(),
		"embedder", p.embedder.GetModelName())
	return p, nil
}

// NewFromFile loads configuration and builds a Panel.
func NewFromFile(path string, opts ...Option) (*Panel, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Ask routes the query to relevant authors, generates their responses
// concurrently, and returns the aggregated panel. Cached panels are
// returned without touching the LLM.
func (p *Panel) Ask(ctx context.Context, query *routing.Query) (*debate.PanelResponse, error) {
	start := time.Now()

	selection, err := p.router.SelectAuthors(ctx, query)
	if err != nil {
		p.metrics.RecordQuery(ctx, "", time.Since(start), err)
		return nil, err
	}
	if len(selection.SelectedAuthors) == 0 {
		p.metrics.RecordQuery(ctx, string(selection.Method), time.Since(start), ErrNoAuthors)
		return nil, ErrNoAuthors
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, query.Text, selection.QueryVector); ok {
			p.metrics.RecordCacheLookup(ctx, true)
			p.metrics.RecordQuery(ctx, string(selection.Method), time.Since(start), nil)
			return cached, nil
		}
		p.metrics.RecordCacheLookup(ctx, false)
	}

	responses, err := p.responder.RespondMany(ctx, query.Text, selection.SelectedAuthors, selection.QueryVector)
	if err != nil {
		p.metrics.RecordQuery(ctx, string(selection.Method), time.Since(start), err)
		return nil, err
	}
	if len(responses) == 0 {
		p.metrics.RecordQuery(ctx, string(selection.Method), time.Since(start), ErrNoResponses)
		return nil, ErrNoResponses
	}

	panel := p.aggregator.Aggregate(query.Text, responses, time.Since(start).Milliseconds(), string(selection.Method))

	if p.cache != nil {
		p.cache.Set(ctx, query.Text, selection.QueryVector, panel)
	}
	p.metrics.RecordQuery(ctx, string(selection.Method), time.Since(start), nil)
	return panel, nil
}

// Debate runs a multi-round debate. At least two authors must be
// selected; numRounds of zero uses the configured default.
func (p *Panel) Debate(ctx context.Context, query *routing.Query, numRounds int) (*debate.Session, error) {
	return p.runDebate(ctx, query, numRounds, func(ctx context.Context, panel []*authors.Author, initial []*rag.Response, method string) (*debate.Session, error) {
		return p.debates.Run(ctx, query.Text, panel, initial, method, numRounds)
	})
}

// AgenticDebate runs a debate between tool-using agents sharing a
// knowledge base.
func (p *Panel) AgenticDebate(ctx context.Context, query *routing.Query, numRounds int) (*debate.Session, error) {
	return p.runDebate(ctx, query, numRounds, func(ctx context.Context, panel []*authors.Author, initial []*rag.Response, method string) (*debate.Session, error) {
		return p.agentic.Run(ctx, query.Text, panel, initial, method, numRounds)
	})
}

func (p *Panel) runDebate(ctx context.Context, query *routing.Query, numRounds int, run func(context.Context, []*authors.Author, []*rag.Response, string) (*debate.Session, error)) (*debate.Session, error) {
	start := time.Now()

	selection, err := p.router.SelectAuthors(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(selection.SelectedAuthors) == 0 {
		return nil, ErrNoAuthors
	}
	if len(selection.SelectedAuthors) < 2 {
		return nil, ErrTooFewAuthors
	}

	panel := make([]*authors.Author, 0, len(selection.SelectedAuthors))
	for _, id := range selection.SelectedAuthors {
		if author, ok := p.registry.Get(id); ok {
			panel = append(panel, author)
		}
	}

	initial, err := p.responder.RespondMany(ctx, query.Text, selection.SelectedAuthors, selection.QueryVector)
	if err != nil {
		return nil, err
	}
	if len(initial) == 0 {
		return nil, ErrNoResponses
	}

	session, err := run(ctx, panel, initial, string(selection.Method))
	if err != nil {
		return nil, err
	}

	for _, round := range session.Rounds {
		p.metrics.RecordDebateRound(ctx, string(round.Type), len(round.Responses))
	}
	p.metrics.RecordQuery(ctx, session.SelectionMethod, time.Since(start), nil)
	return session, nil
}

// AskStreaming generates one author's response as a token stream.
func (p *Panel) AskStreaming(ctx context.Context, queryText, authorID string) (<-chan string, error) {
	author, ok := p.registry.Get(authorID)
	if !ok {
		return nil, fmt.Errorf("unknown author: %s", authorID)
	}

	embedCtx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.RAG.EmbedTimeout)*time.Second)
	defer cancel()

	queryVector, err := p.store.Embedder().Embed(embedCtx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return p.responder.RespondStreaming(ctx, queryText, author, queryVector)
}

// Rankings scores every author against the query.
func (p *Panel) Rankings(ctx context.Context, queryText string) ([]routing.AuthorRanking, error) {
	return p.router.Rankings(ctx, &routing.Query{Text: queryText})
}

// UpdateThreshold changes the router's relevance threshold.
func (p *Panel) UpdateThreshold(threshold float64) error {
	return p.router.UpdateThreshold(threshold)
}

// IndexAuthorProfiles embeds and stores every author's expertise
// profile. Call once after corpus setup or when authors change.
func (p *Panel) IndexAuthorProfiles(ctx context.Context) error {
	return p.store.IndexAllProfiles(ctx)
}

// AddChunks indexes corpus excerpts for retrieval.
func (p *Panel) AddChunks(ctx context.Context, chunks []corpus.TextChunk) error {
	return p.store.AddChunks(ctx, chunks)
}

// Authors lists the configured panel in configuration order.
func (p *Panel) Authors() []*authors.Author {
	return p.registry.All()
}

// LLM looks up a registered LLM provider by name.
func (p *Panel) LLM(name string) (llms.LLMProvider, error) {
	return p.llmRegistry.GetLLM(name)
}

// Embedder looks up a registered embedder provider by name.
func (p *Panel) Embedder(name string) (embedders.EmbedderProvider, error) {
	return p.embedderRegistry.GetEmbedder(name)
}

// FormatMarkdown renders a panel response.
func (p *Panel) FormatMarkdown(resp *debate.PanelResponse) string {
	return p.aggregator.FormatMarkdown(resp)
}

// ClearCaches drops the response cache and the router's profile
// cache.
func (p *Panel) ClearCaches(ctx context.Context) {
	if p.cache != nil {
		p.cache.Clear(ctx)
	}
	p.router.ClearCache()
}

// CacheStats reports response-cache effectiveness; zero value when
// caching is disabled.
func (p *Panel) CacheStats(ctx context.Context) cache.Stats {
	if p.cache == nil {
		return cache.Stats{}
	}
	return p.cache.Stats(ctx)
}

// Close releases providers and cache connections.
func (p *Panel) Close() error {
	var errs []error
	if p.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := observability.StopMetricsServer(ctx, p.metricsServer); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.llm.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
