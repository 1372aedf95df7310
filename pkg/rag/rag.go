package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/llms"
	"github.com/kadirpekel/agora/pkg/utils"
)

// Response is a single author's answer to a query.
type Response struct {
	// AuthorID identifies the responding author.
	AuthorID string

	// AuthorName is the author's display name.
	AuthorName string

	// Text is the generated response.
	Text string

	// RelevanceScore is the mean similarity of the retrieved chunks,
	// 0.0 when nothing was retrieved.
	RelevanceScore float64

	// RetrievedChunks are the corpus excerpts that grounded the
	// response.
	RetrievedChunks []corpus.ScoredChunk

	// GenerationTimeMs is the wall-clock latency of retrieval plus
	// generation.
	GenerationTimeMs int64

	// TokensUsed is the token count reported by the LLM.
	TokensUsed int
}

// Responder generates retrieval-grounded author responses.
type Responder struct {
	store    *corpus.Store
	llm      llms.LLMProvider
	registry *authors.Registry
	counter  *utils.TokenCounter

	topKChunks         int
	maxResponseTokens  int
	temperature        float64
	contextTokenBudget int
	maxConcurrency     int64
	searchTimeout      time.Duration
	generateTimeout    time.Duration
}

// NewResponder creates a responder.
func NewResponder(store *corpus.Store, llm llms.LLMProvider, registry *authors.Registry, cfg *config.RAGConfig) *Responder {
	slog.Info("Initialized RAG responder",
		"top_k", cfg.TopKChunks,
		"max_tokens", cfg.MaxResponseTokens)
	counter, err := utils.NewTokenCounter(llm.GetModelName())
	if err != nil {
		slog.Warn("Token counter unavailable, using length estimate", "error", err)
	}
	return &Responder{
		store:              store,
		llm:                llm,
		registry:           registry,
		counter:            counter,
		topKChunks:         cfg.TopKChunks,
		maxResponseTokens:  cfg.MaxResponseTokens,
		temperature:        cfg.Temperature,
		contextTokenBudget: cfg.ContextTokenBudget,
		maxConcurrency:     int64(cfg.MaxConcurrency),
		searchTimeout:      time.Duration(cfg.SearchTimeout) * time.Second,
		generateTimeout:    time.Duration(cfg.GenerateTimeout) * time.Second,
	}
}

// Respond generates one author's response to a query. The query
// vector is pre-computed so concurrent fan-out embeds only once.
func (r *Responder) Respond(ctx context.Context, queryText string, author *authors.Author, queryVector []float32) (*Response, error) {
	start := time.Now()

	chunks, err := r.retrieve(ctx, author.ID, queryVector)
	if err != nil {
		return nil, err
	}
	slog.Debug("Retrieved chunks", "author", author.Name, "count", len(chunks))

	userPrompt := buildUserPrompt(queryText, r.buildContext(chunks))

	genCtx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()

	text, tokens, err := r.llm.Generate(genCtx, author.SystemPrompt, userPrompt, r.maxResponseTokens, r.temperature)
	if err != nil {
		return nil, fmt.Errorf("generation failed for %s: %w", author.ID, err)
	}

	relevance := 0.0
	if len(chunks) > 0 {
		for _, c := range chunks {
			relevance += c.Score
		}
		relevance /= float64(len(chunks))
	}

	elapsed := time.Since(start).Milliseconds()
	slog.Info("Generated response",
		"author", author.Name,
		"relevance", relevance,
		"time_ms", elapsed)

	return &Response{
		AuthorID:         author.ID,
		AuthorName:       author.Name,
		Text:             text,
		RelevanceScore:   relevance,
		RetrievedChunks:  chunks,
		GenerationTimeMs: elapsed,
		TokensUsed:       tokens,
	}, nil
}

// RespondMany fans out response generation across authors. Individual
// failures are logged and dropped; partial results are normal.
func (r *Responder) RespondMany(ctx context.Context, queryText string, authorIDs []string, queryVector []float32) ([]*Response, error) {
	start := time.Now()

	sem := semaphore.NewWeighted(r.maxConcurrency)
	results := make([]*Response, len(authorIDs))

	var wg sync.WaitGroup
	for i, authorID := range authorIDs {
		author, ok := r.registry.Get(authorID)
		if !ok {
			slog.Warn("Unknown author in panel", "author", authorID)
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		wg.Add(1)
		go func(i int, author *authors.Author) {
			defer wg.Done()
			defer sem.Release(1)

			resp, err := r.Respond(ctx, queryText, author, queryVector)
			if err != nil {
				slog.Error("Failed to generate response",
					"author", author.Name,
					"error", err)
				return
			}
			results[i] = resp
		}(i, author)
	}
	wg.Wait()

	responses := make([]*Response, 0, len(results))
	for _, resp := range results {
		if resp != nil {
			responses = append(responses, resp)
		}
	}

	slog.Info("Generated responses concurrently",
		"succeeded", len(responses),
		"requested", len(authorIDs),
		"total_time_ms", time.Since(start).Milliseconds())
	return responses, nil
}

// RespondStreaming generates one author's response as a channel of
// text fragments.
func (r *Responder) RespondStreaming(ctx context.Context, queryText string, author *authors.Author, queryVector []float32) (<-chan string, error) {
	chunks, err := r.retrieve(ctx, author.ID, queryVector)
	if err != nil {
		return nil, err
	}

	userPrompt := buildUserPrompt(queryText, r.buildContext(chunks))
	return r.llm.GenerateStreaming(ctx, author.SystemPrompt, userPrompt, r.maxResponseTokens, r.temperature)
}

func (r *Responder) retrieve(ctx context.Context, authorID string, queryVector []float32) ([]corpus.ScoredChunk, error) {
	searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()

	chunks, err := r.store.SearchChunks(searchCtx, queryVector, authorID, r.topKChunks)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed for %s: %w", authorID, err)
	}
	return chunks, nil
}

// buildContext formats retrieved chunks as a numbered excerpt block,
// trimming to the context token budget when one is configured.
func (r *Responder) buildContext(chunks []corpus.ScoredChunk) string {
	if len(chunks) == 0 {
		return "No relevant context found."
	}

	var parts []string
	used := 0
	for i, chunk := range chunks {
		sourceInfo := ""
		if chunk.Source != "" {
			sourceInfo = fmt.Sprintf(" (from %s)", chunk.Source)
		}
		part := fmt.Sprintf("[%d]%s: %s", i+1, sourceInfo, chunk.Text)

		if r.contextTokenBudget > 0 {
			tokens := utils.EstimateTokens(part)
			if r.counter != nil {
				tokens = r.counter.Count(part)
			}
			if used+tokens > r.contextTokenBudget && len(parts) > 0 {
				slog.Debug("Context token budget reached",
					"included", len(parts),
					"dropped", len(chunks)-len(parts))
				break
			}
			used += tokens
		}
		parts = append(parts, part)
	}

	context := ""
	for i, p := range parts {
		if i > 0 {
			context += "\n\n"
		}
		context += p
	}
	return context
}

func buildUserPrompt(queryText, context string) string {
	return fmt.Sprintf(`Based on the following excerpts from your works, please respond to the user's query.

RELEVANT EXCERPTS:
%s

USER QUERY:
%s

Please provide a response in your characteristic voice and style. Limit your response to a maximum of 3 paragraphs. Focus on directly addressing the query while drawing from the provided context.`, context, queryText)
}
