package debate

import (
	"log/slog"
	"sync"
	"time"
)

// ToolType names the tools available to debate agents.
type ToolType string

const (
	ToolSearchOwnWorks      ToolType = "search_own_works"
	ToolSearchOtherWorks    ToolType = "search_other_works"
	ToolRecallPreviousRound ToolType = "recall_previous_round"
	ToolAnalyzeArgument     ToolType = "analyze_argument"
)

// RecordedResponse is one debate response as stored in the shared
// knowledge base.
type RecordedResponse struct {
	AuthorID       string
	AuthorName     string
	Text           string
	ToolUses       int
	ReasoningSteps int
	Timestamp      time.Time
}

// Stats summarizes knowledge-base activity across a debate.
type Stats struct {
	TotalRounds    int
	TotalResponses int
	TotalToolUses  int
	ToolCounts     map[ToolType]int
}

// KnowledgeBase is the debate's shared memory. All agents record
// their responses and tool usage here; a single mutex guards every
// access.
type KnowledgeBase struct {
	mu         sync.Mutex
	rounds     map[int][]RecordedResponse
	toolCounts map[ToolType]int
}

// NewKnowledgeBase builds an empty shared knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		rounds: make(map[int][]RecordedResponse),
		toolCounts: map[ToolType]int{
			ToolSearchOwnWorks:      0,
			ToolSearchOtherWorks:    0,
			ToolRecallPreviousRound: 0,
			ToolAnalyzeArgument:     0,
		},
	}
}

// RecordResponse stores one author's response for a round.
func (kb *KnowledgeBase) RecordResponse(round int, authorID, authorName, text string, toolUses, reasoningSteps int) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.rounds[round] = append(kb.rounds[round], RecordedResponse{
		AuthorID:       authorID,
		AuthorName:     authorName,
		Text:           text,
		ToolUses:       toolUses,
		ReasoningSteps: reasoningSteps,
		Timestamp:      time.Now(),
	})

	slog.Debug("Recorded debate response",
		"author", authorName,
		"round", round)
}

// GetRound returns all recorded responses for a round, nil when the
// round has none.
func (kb *KnowledgeBase) GetRound(round int) []RecordedResponse {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	responses := kb.rounds[round]
	if len(responses) == 0 {
		return nil
	}
	out := make([]RecordedResponse, len(responses))
	copy(out, responses)
	return out
}

// CountToolUse increments the per-tool usage counter.
func (kb *KnowledgeBase) CountToolUse(tool ToolType) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.toolCounts[tool]++
}

// GetStats reports aggregate debate activity.
func (kb *KnowledgeBase) GetStats() Stats {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	totalResponses := 0
	totalTools := 0
	for _, responses := range kb.rounds {
		totalResponses += len(responses)
		for _, resp := range responses {
			totalTools += resp.ToolUses
		}
	}

	counts := make(map[ToolType]int, len(kb.toolCounts))
	for tool, n := range kb.toolCounts {
		counts[tool] = n
	}

	return Stats{
		TotalRounds:    len(kb.rounds),
		TotalResponses: totalResponses,
		TotalToolUses:  totalTools,
		ToolCounts:     counts,
	}
}
