package debate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/llms"
	"github.com/kadirpekel/agora/pkg/rag"
)

// AgenticOrchestrator runs debates between tool-using agents sharing
// a per-session knowledge base.
type AgenticOrchestrator struct {
	store             *corpus.Store
	llm               llms.LLMProvider
	numRounds         int
	maxResponseTokens int
	analysisMaxTokens int
	temperature       float64
	useTools          bool
}

// NewAgenticOrchestrator builds an agentic debate orchestrator.
// Agentic rounds default to a larger token budget than plain debate
// rounds to leave room for tool-informed reasoning.
func NewAgenticOrchestrator(store *corpus.Store, llm llms.LLMProvider, cfg *config.DebateConfig) *AgenticOrchestrator {
	if cfg == nil {
		cfg = &config.DebateConfig{}
		cfg.SetDefaults()
	}

	useTools := true
	if cfg.UseTools != nil {
		useTools = *cfg.UseTools
	}

	slog.Info("Initialized agentic debate orchestrator",
		"rounds", cfg.NumRounds,
		"max_tokens", cfg.AgenticMaxTokens,
		"tools", useTools)

	return &AgenticOrchestrator{
		store:             store,
		llm:               llm,
		numRounds:         cfg.NumRounds,
		maxResponseTokens: cfg.AgenticMaxTokens,
		analysisMaxTokens: cfg.AnalysisMaxTokens,
		temperature:       cfg.Temperature,
		useTools:          useTools,
	}
}

// Run executes an agentic debate. A fresh knowledge base is created
// per session; initial responses are recorded into it as round 1 with
// zero tool uses, and the session's selection method is tagged with
// an "(agentic)" suffix.
func (o *AgenticOrchestrator) Run(ctx context.Context, queryText string, panel []*authors.Author, initial []*rag.Response, selectionMethod string, numRounds int) (*Session, error) {
	if len(initial) == 0 {
		return nil, ErrNoResponses
	}
	if numRounds <= 0 {
		numRounds = o.numRounds
	}

	start := time.Now()
	kb := NewKnowledgeBase()

	agents := make([]*Agent, len(panel))
	for i, author := range panel {
		agents[i] = NewAgent(author, o.store, o.llm, kb, o.maxResponseTokens, o.analysisMaxTokens, o.temperature)
	}

	rounds := []Round{{
		Number:    1,
		Type:      RoundInitial,
		Responses: initial,
	}}
	for _, resp := range initial {
		kb.RecordResponse(1, resp.AuthorID, resp.AuthorName, resp.Text, 0, 0)
	}

	slog.Info("Starting agentic debate",
		"authors", len(panel),
		"rounds", numRounds,
		"tools", o.useTools)

	for roundNum := 2; roundNum <= numRounds; roundNum++ {
		previous := rounds[len(rounds)-1].Responses
		responses := o.runRound(ctx, queryText, agents, previous, roundNum)

		rounds = append(rounds, Round{
			Number:    roundNum,
			Type:      roundTypeFor(roundNum),
			Responses: responses,
		})
	}

	totalMs := time.Since(start).Milliseconds()
	stats := kb.GetStats()

	slog.Info("Agentic debate completed",
		"rounds", len(rounds),
		"authors", len(panel),
		"tool_uses", stats.TotalToolUses,
		"total_time_ms", totalMs)

	return &Session{
		ID:              uuid.New().String(),
		Query:           queryText,
		Rounds:          rounds,
		TotalTimeMs:     totalMs,
		SelectionMethod: selectionMethod + " (agentic)",
		Timestamp:       time.Now(),
	}, nil
}

func (o *AgenticOrchestrator) runRound(ctx context.Context, queryText string, agents []*Agent, previous []*rag.Response, roundNum int) []*rag.Response {
	results := make([]*rag.Response, len(agents))

	var wg sync.WaitGroup
	for i, agent := range agents {
		others := excludeAuthor(previous, agent.author.ID)

		wg.Add(1)
		go func(i int, agent *Agent) {
			defer wg.Done()

			resp, err := agent.GenerateResponse(ctx, queryText, others, roundNum, o.useTools)
			if err != nil {
				slog.Error("Failed to generate agentic response",
					"author", agent.author.Name,
					"round", roundNum,
					"error", err)
				return
			}
			results[i] = resp
		}(i, agent)
	}
	wg.Wait()

	responses := make([]*rag.Response, 0, len(results))
	for _, resp := range results {
		if resp != nil {
			responses = append(responses, resp)
		}
	}
	return responses
}
