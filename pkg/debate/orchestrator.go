package debate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/llms"
	"github.com/kadirpekel/agora/pkg/rag"
)

// Orchestrator runs multi-round debates. Round 1 is taken from the
// caller's initial responses; later rounds confront each author with
// the other authors' previous-round positions.
type Orchestrator struct {
	llm               llms.LLMProvider
	numRounds         int
	maxResponseTokens int
	temperature       float64
	generateTimeout   time.Duration
}

// NewOrchestrator builds a debate orchestrator.
func NewOrchestrator(llm llms.LLMProvider, cfg *config.DebateConfig) *Orchestrator {
	if cfg == nil {
		cfg = &config.DebateConfig{}
		cfg.SetDefaults()
	}

	slog.Info("Initialized debate orchestrator",
		"rounds", cfg.NumRounds,
		"max_tokens", cfg.MaxResponseTokens)

	return &Orchestrator{
		llm:               llm,
		numRounds:         cfg.NumRounds,
		maxResponseTokens: cfg.MaxResponseTokens,
		temperature:       cfg.Temperature,
		generateTimeout:   30 * time.Second,
	}
}

// Run executes the debate and returns the complete session. numRounds
// overrides the configured round count when positive. Initial
// responses become round 1; each later round runs all authors
// concurrently and drops individual failures.
func (o *Orchestrator) Run(ctx context.Context, queryText string, panel []*authors.Author, initial []*rag.Response, selectionMethod string, numRounds int) (*Session, error) {
	if len(initial) == 0 {
		return nil, ErrNoResponses
	}
	if numRounds <= 0 {
		numRounds = o.numRounds
	}

	start := time.Now()

	rounds := []Round{{
		Number:    1,
		Type:      RoundInitial,
		Responses: initial,
	}}

	slog.Info("Starting debate",
		"authors", len(panel),
		"rounds", numRounds)

	for roundNum := 2; roundNum <= numRounds; roundNum++ {
		previous := rounds[len(rounds)-1].Responses
		responses := o.runRound(ctx, queryText, panel, previous, roundNum)

		rounds = append(rounds, Round{
			Number:    roundNum,
			Type:      roundTypeFor(roundNum),
			Responses: responses,
		})
	}

	totalMs := time.Since(start).Milliseconds()
	slog.Info("Debate completed",
		"rounds", len(rounds),
		"authors", len(panel),
		"total_time_ms", totalMs)

	return &Session{
		ID:              uuid.New().String(),
		Query:           queryText,
		Rounds:          rounds,
		TotalTimeMs:     totalMs,
		SelectionMethod: selectionMethod,
		Timestamp:       time.Now(),
	}, nil
}

// runRound generates one debate round concurrently, one goroutine per
// author. Failed authors are logged and omitted from the round.
func (o *Orchestrator) runRound(ctx context.Context, queryText string, panel []*authors.Author, previous []*rag.Response, roundNum int) []*rag.Response {
	results := make([]*rag.Response, len(panel))

	var wg sync.WaitGroup
	for i, author := range panel {
		others := excludeAuthor(previous, author.ID)

		wg.Add(1)
		go func(i int, author *authors.Author) {
			defer wg.Done()

			resp, err := o.generateDebateResponse(ctx, queryText, author, others)
			if err != nil {
				slog.Error("Failed to generate debate response",
					"author", author.Name,
					"round", roundNum,
					"error", err)
				return
			}
			results[i] = resp
		}(i, author)
	}
	wg.Wait()

	responses := make([]*rag.Response, 0, len(results))
	for _, resp := range results {
		if resp != nil {
			responses = append(responses, resp)
		}
	}

	slog.Info("Generated debate round",
		"round", roundNum,
		"succeeded", len(responses),
		"requested", len(panel))
	return responses
}

// generateDebateResponse produces one author's reply to the other
// authors' positions. Debate replies are not retrieval-grounded, so
// relevance is pinned at 1.0 and no chunks are attached.
func (o *Orchestrator) generateDebateResponse(ctx context.Context, queryText string, author *authors.Author, others []*rag.Response) (*rag.Response, error) {
	start := time.Now()

	prompt := buildDebatePrompt(queryText, others)

	genCtx, cancel := context.WithTimeout(ctx, o.generateTimeout)
	defer cancel()

	text, tokens, err := o.llm.Generate(genCtx, author.SystemPrompt, prompt, o.maxResponseTokens, o.temperature)
	if err != nil {
		return nil, fmt.Errorf("debate generation failed for %s: %w", author.ID, err)
	}

	return &rag.Response{
		AuthorID:         author.ID,
		AuthorName:       author.Name,
		Text:             text,
		RelevanceScore:   1.0,
		GenerationTimeMs: time.Since(start).Milliseconds(),
		TokensUsed:       tokens,
	}, nil
}

// buildDebatePrompt confronts an author with the other panelists'
// previous-round positions.
func buildDebatePrompt(queryText string, others []*rag.Response) string {
	parts := []string{
		fmt.Sprintf("The original question was: %s", queryText),
		"",
		"Other thinkers have provided the following perspectives:",
		"",
	}

	for i, resp := range others {
		parts = append(parts, fmt.Sprintf("%d. %s said:", i+1, resp.AuthorName))
		parts = append(parts, fmt.Sprintf("\"%s\"", resp.Text))
		parts = append(parts, "")
	}

	parts = append(parts,
		"Now, please respond to these perspectives. You may:",
		"- Critique or challenge their arguments",
		"- Build upon their ideas",
		"- Highlight where you agree or disagree",
		"- Offer your own distinct perspective",
		"",
		"Respond in your characteristic voice and style. Limit your response to a maximum of 3 paragraphs. Be direct and substantive in engaging with the other viewpoints.",
	)

	return strings.Join(parts, "\n")
}

func excludeAuthor(responses []*rag.Response, authorID string) []*rag.Response {
	others := make([]*rag.Response, 0, len(responses))
	for _, resp := range responses {
		if resp.AuthorID != authorID {
			others = append(others, resp)
		}
	}
	return others
}
