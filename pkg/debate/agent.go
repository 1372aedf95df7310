package debate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/llms"
	"github.com/kadirpekel/agora/pkg/observability"
	"github.com/kadirpekel/agora/pkg/rag"
	"github.com/kadirpekel/agora/pkg/utils"
)

func recordToolMetric(ctx context.Context, tool ToolType) {
	if metrics := observability.GetGlobalMetrics(); metrics != nil {
		metrics.RecordToolUse(ctx, string(tool))
	}
}

// Agent is an autonomous debater for one author. Between rounds it
// can search its own corpus, probe other authors' works, recall
// earlier rounds, and analyze opposing arguments before responding.
type Agent struct {
	author            *authors.Author
	store             *corpus.Store
	llm               llms.LLMProvider
	kb                *KnowledgeBase
	maxResponseTokens int
	analysisMaxTokens int
	temperature       float64
	generateTimeout   time.Duration

	// Per-agent state, only touched by the agent's own goroutine.
	toolUses       int
	reasoningChain []string
}

// NewAgent builds a debate agent bound to the shared knowledge base.
func NewAgent(author *authors.Author, store *corpus.Store, llm llms.LLMProvider, kb *KnowledgeBase, maxResponseTokens, analysisMaxTokens int, temperature float64) *Agent {
	slog.Info("Initialized debate agent", "author", author.Name)

	return &Agent{
		author:            author,
		store:             store,
		llm:               llm,
		kb:                kb,
		maxResponseTokens: maxResponseTokens,
		analysisMaxTokens: analysisMaxTokens,
		temperature:       temperature,
		generateTimeout:   30 * time.Second,
	}
}

// SearchOwnWorks searches the agent's own corpus.
func (a *Agent) SearchOwnWorks(ctx context.Context, query string, topK int) ([]corpus.ScoredChunk, error) {
	start := time.Now()

	chunks, err := a.store.SearchChunksByText(ctx, query, a.author.ID, topK)
	if err != nil {
		return nil, fmt.Errorf("own-works search failed for %s: %w", a.author.ID, err)
	}

	a.toolUses++
	a.kb.CountToolUse(ToolSearchOwnWorks)
	recordToolMetric(ctx, ToolSearchOwnWorks)

	slog.Info("Agent searched own works",
		"author", a.author.Name,
		"query", utils.Truncate(query, 60),
		"results", len(chunks),
		"time_ms", time.Since(start).Milliseconds())
	return chunks, nil
}

// SearchOtherWorks searches another author's corpus to understand
// their perspective.
func (a *Agent) SearchOtherWorks(ctx context.Context, authorID, query string, topK int) ([]corpus.ScoredChunk, error) {
	start := time.Now()

	chunks, err := a.store.SearchChunksByText(ctx, query, authorID, topK)
	if err != nil {
		return nil, fmt.Errorf("other-works search failed for %s: %w", authorID, err)
	}

	a.toolUses++
	a.kb.CountToolUse(ToolSearchOtherWorks)
	recordToolMetric(ctx, ToolSearchOtherWorks)

	slog.Info("Agent searched other author's works",
		"author", a.author.Name,
		"target", authorID,
		"results", len(chunks),
		"time_ms", time.Since(start).Milliseconds())
	return chunks, nil
}

// RecallPreviousRound retrieves a round from the shared knowledge
// base, nil if nothing was recorded.
func (a *Agent) RecallPreviousRound(round int) []RecordedResponse {
	responses := a.kb.GetRound(round)
	if responses != nil {
		a.toolUses++
		a.kb.CountToolUse(ToolRecallPreviousRound)
		recordToolMetric(context.Background(), ToolRecallPreviousRound)
		slog.Info("Agent recalled round",
			"author", a.author.Name,
			"round", round)
	}
	return responses
}

// AnalyzeArgument asks the LLM for a short critique of another
// author's argument, in this author's voice.
func (a *Agent) AnalyzeArgument(ctx context.Context, argumentText, authorName string) (string, error) {
	start := time.Now()

	prompt := fmt.Sprintf(`Analyze this argument from %s:

"%s"

Provide a brief analysis identifying:
1. The main claim
2. Key supporting points
3. Potential weaknesses or areas for critique
4. Points of agreement with your own perspective

Keep your analysis to 2-3 sentences.`, authorName, argumentText)

	genCtx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()

	analysis, _, err := a.llm.Generate(genCtx, a.author.SystemPrompt, prompt, a.analysisMaxTokens, a.temperature)
	if err != nil {
		return "", fmt.Errorf("argument analysis failed: %w", err)
	}

	a.toolUses++
	a.kb.CountToolUse(ToolAnalyzeArgument)
	recordToolMetric(ctx, ToolAnalyzeArgument)
	a.reasoningChain = append(a.reasoningChain,
		fmt.Sprintf("Analyzed %s's argument: %s", authorName, analysis))

	slog.Info("Agent analyzed argument",
		"author", a.author.Name,
		"target", authorName,
		"time_ms", time.Since(start).Milliseconds())
	return analysis, nil
}

// GenerateResponse produces the agent's response for a round. Rounds
// after the first run a fixed tool protocol when tools are enabled:
// search the agent's corpus for the query, analyze up to two opposing
// arguments, then search again using the lead of the first opposing
// response.
func (a *Agent) GenerateResponse(ctx context.Context, queryText string, others []*rag.Response, roundNum int, useTools bool) (*rag.Response, error) {
	start := time.Now()
	a.reasoningChain = nil

	var chunks []corpus.ScoredChunk

	if useTools && roundNum > 1 {
		a.reasoningChain = append(a.reasoningChain,
			fmt.Sprintf("Searching my works for insights on: %s", queryText))
		own, err := a.SearchOwnWorks(ctx, queryText, 5)
		if err != nil {
			return nil, err
		}
		chunks = own

		limit := len(others)
		if limit > 2 {
			limit = 2
		}
		for _, other := range others[:limit] {
			a.reasoningChain = append(a.reasoningChain,
				fmt.Sprintf("Analyzing %s's argument", other.AuthorName))
			if _, err := a.AnalyzeArgument(ctx, other.Text, other.AuthorName); err != nil {
				return nil, err
			}
		}

		if len(others) > 0 {
			followup := utils.LeadingTerms(others[0].Text, 20)
			a.reasoningChain = append(a.reasoningChain,
				"Searching for additional context on their key points")
			extra, err := a.SearchOwnWorks(ctx, followup, 3)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, extra...)
		}
	} else {
		own, err := a.SearchOwnWorks(ctx, queryText, 5)
		if err != nil {
			return nil, err
		}
		chunks = own
	}

	prompt := a.buildAgenticPrompt(queryText, others, roundNum)

	genCtx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()

	text, tokens, err := a.llm.Generate(genCtx, a.author.SystemPrompt, prompt, a.maxResponseTokens, a.temperature)
	if err != nil {
		return nil, fmt.Errorf("agentic generation failed for %s: %w", a.author.ID, err)
	}

	elapsed := time.Since(start).Milliseconds()

	a.kb.RecordResponse(roundNum, a.author.ID, a.author.Name, text, a.toolUses, len(a.reasoningChain))

	slog.Info("Generated agentic response",
		"author", a.author.Name,
		"round", roundNum,
		"tool_uses", a.toolUses,
		"reasoning_steps", len(a.reasoningChain),
		"time_ms", elapsed)

	return &rag.Response{
		AuthorID:         a.author.ID,
		AuthorName:       a.author.Name,
		Text:             text,
		RelevanceScore:   1.0,
		RetrievedChunks:  chunks,
		GenerationTimeMs: elapsed,
		TokensUsed:       tokens,
	}, nil
}

// buildAgenticPrompt assembles the debate prompt, exposing the
// agent's reasoning chain to the model.
func (a *Agent) buildAgenticPrompt(queryText string, others []*rag.Response, roundNum int) string {
	parts := []string{
		fmt.Sprintf("The original question was: %s", queryText),
		"",
	}

	if len(a.reasoningChain) > 0 {
		parts = append(parts, "Your internal reasoning process:")
		for i, step := range a.reasoningChain {
			parts = append(parts, fmt.Sprintf("  %d. %s", i+1, step))
		}
		parts = append(parts, "")
	}

	if len(others) > 0 {
		parts = append(parts, "Other thinkers have provided these perspectives:")
		parts = append(parts, "")
		for i, resp := range others {
			parts = append(parts, fmt.Sprintf("%d. %s said:", i+1, resp.AuthorName))
			parts = append(parts, fmt.Sprintf("\"%s\"", resp.Text))
			parts = append(parts, "")
		}
	}

	if roundNum == 1 {
		parts = append(parts,
			"Provide your initial perspective on this question.",
			"Draw from your works and philosophy.",
			"Be concise and substantive.",
		)
	} else {
		parts = append(parts,
			"Now respond to these perspectives. You may:",
			"- Critique or challenge their arguments",
			"- Build upon their ideas",
			"- Highlight where you agree or disagree",
			"- Offer your own distinct perspective",
			"",
			"Use your characteristic voice and style.",
			"Limit your response to 2-3 paragraphs.",
			"Be direct and substantive in engaging with the other viewpoints.",
		)
	}

	return strings.Join(parts, "\n")
}
