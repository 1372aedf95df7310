package debate

import (
	"context"
	"strings"
	"testing"

	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/vector"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) GetDimension() int    { return 3 }
func (f *fakeEmbedder) GetModelName() string { return "fake" }
func (f *fakeEmbedder) Close() error         { return nil }

func newTestStore(t *testing.T) *corpus.Store {
	t.Helper()
	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}

	store := corpus.NewStore(provider, &fakeEmbedder{}, testRegistry(t), "", "")

	err = store.AddChunks(context.Background(), []corpus.TextChunk{
		{AuthorID: "marx", Text: "labor theory of value", Source: "Das Kapital"},
		{AuthorID: "marx", Text: "class antagonisms simplified"},
		{AuthorID: "whitman", Text: "I contain multitudes", Source: "Leaves of Grass"},
	})
	if err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}
	return store
}

func TestKnowledgeBaseRecordAndRecall(t *testing.T) {
	kb := NewKnowledgeBase()

	kb.RecordResponse(1, "marx", "Karl Marx", "Value arises from labor.", 0, 0)
	kb.RecordResponse(1, "whitman", "Walt Whitman", "I celebrate the self.", 0, 0)
	kb.RecordResponse(2, "marx", "Karl Marx", "On the contrary.", 3, 4)

	round1 := kb.GetRound(1)
	if len(round1) != 2 {
		t.Fatalf("round 1 responses = %d, want 2", len(round1))
	}
	if round1[0].AuthorID != "marx" || round1[1].AuthorID != "whitman" {
		t.Errorf("round 1 order = %q, %q", round1[0].AuthorID, round1[1].AuthorID)
	}

	if got := kb.GetRound(5); got != nil {
		t.Errorf("GetRound(5) = %v, want nil", got)
	}

	kb.CountToolUse(ToolSearchOwnWorks)
	kb.CountToolUse(ToolSearchOwnWorks)
	kb.CountToolUse(ToolAnalyzeArgument)

	stats := kb.GetStats()
	if stats.TotalRounds != 2 {
		t.Errorf("TotalRounds = %d, want 2", stats.TotalRounds)
	}
	if stats.TotalResponses != 3 {
		t.Errorf("TotalResponses = %d, want 3", stats.TotalResponses)
	}
	if stats.TotalToolUses != 3 {
		t.Errorf("TotalToolUses = %d, want 3", stats.TotalToolUses)
	}
	if stats.ToolCounts[ToolSearchOwnWorks] != 2 {
		t.Errorf("search_own_works count = %d, want 2", stats.ToolCounts[ToolSearchOwnWorks])
	}
	if stats.ToolCounts[ToolAnalyzeArgument] != 1 {
		t.Errorf("analyze_argument count = %d, want 1", stats.ToolCounts[ToolAnalyzeArgument])
	}
}

func TestAgentTools(t *testing.T) {
	store := newTestStore(t)
	kb := NewKnowledgeBase()
	llm := &mockLLM{}
	panel := testPanel(t)

	agent := NewAgent(panel[0], store, llm, kb, 400, 200, 0.7)

	chunks, err := agent.SearchOwnWorks(context.Background(), "value and labor", 5)
	if err != nil {
		t.Fatalf("SearchOwnWorks() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("own chunks = %d, want 2", len(chunks))
	}
	for _, c := range chunks {
		if c.AuthorID != "marx" {
			t.Errorf("own search returned chunk from %q", c.AuthorID)
		}
	}

	otherChunks, err := agent.SearchOtherWorks(context.Background(), "whitman", "the self", 3)
	if err != nil {
		t.Fatalf("SearchOtherWorks() error = %v", err)
	}
	if len(otherChunks) != 1 {
		t.Errorf("other chunks = %d, want 1", len(otherChunks))
	}

	kb.RecordResponse(1, "whitman", "Walt Whitman", "I celebrate the self.", 0, 0)
	recalled := agent.RecallPreviousRound(1)
	if len(recalled) != 1 {
		t.Fatalf("recalled = %d responses, want 1", len(recalled))
	}

	analysis, err := agent.AnalyzeArgument(context.Background(), "I celebrate the self.", "Walt Whitman")
	if err != nil {
		t.Fatalf("AnalyzeArgument() error = %v", err)
	}
	if analysis == "" {
		t.Error("analysis is empty")
	}

	var analysisPrompt string
	for _, p := range llm.promptsFor("You are Karl Marx.") {
		if strings.Contains(p, "Analyze this argument from Walt Whitman:") {
			analysisPrompt = p
		}
	}
	if analysisPrompt == "" {
		t.Fatal("analysis prompt not sent")
	}
	if !strings.Contains(analysisPrompt, "Keep your analysis to 2-3 sentences.") {
		t.Error("analysis prompt missing length constraint")
	}

	stats := kb.GetStats()
	if stats.ToolCounts[ToolSearchOwnWorks] != 1 {
		t.Errorf("search_own_works count = %d, want 1", stats.ToolCounts[ToolSearchOwnWorks])
	}
	if stats.ToolCounts[ToolSearchOtherWorks] != 1 {
		t.Errorf("search_other_works count = %d, want 1", stats.ToolCounts[ToolSearchOtherWorks])
	}
	if stats.ToolCounts[ToolRecallPreviousRound] != 1 {
		t.Errorf("recall count = %d, want 1", stats.ToolCounts[ToolRecallPreviousRound])
	}
	if stats.ToolCounts[ToolAnalyzeArgument] != 1 {
		t.Errorf("analyze count = %d, want 1", stats.ToolCounts[ToolAnalyzeArgument])
	}
}

func TestAgenticDebate(t *testing.T) {
	store := newTestStore(t)
	llm := &mockLLM{}
	o := NewAgenticOrchestrator(store, llm, debateConfig())

	session, err := o.Run(context.Background(), "What is freedom?", testPanel(t), initialResponses(), "threshold", 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if session.SelectionMethod != "threshold (agentic)" {
		t.Errorf("SelectionMethod = %q, want suffixed", session.SelectionMethod)
	}
	if len(session.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(session.Rounds))
	}
	if session.Rounds[1].Type != RoundRebuttal {
		t.Errorf("round 2 type = %q", session.Rounds[1].Type)
	}

	round2 := session.Rounds[1].Responses
	if len(round2) != 2 {
		t.Fatalf("round 2 responses = %d, want 2", len(round2))
	}
	for _, resp := range round2 {
		if resp.RelevanceScore != 1.0 {
			t.Errorf("agentic response relevance = %v, want 1.0", resp.RelevanceScore)
		}
		if len(resp.RetrievedChunks) == 0 {
			t.Errorf("agentic response for %s has no retrieved chunks", resp.AuthorID)
		}
	}

	// Tool protocol per agent in round 2: own search, one argument
	// analysis, then a follow-up search on the opponent's lead.
	var finalPrompt string
	for _, p := range llm.promptsFor("You are Karl Marx.") {
		if strings.Contains(p, "The original question was:") {
			finalPrompt = p
		}
	}
	if finalPrompt == "" {
		t.Fatal("agentic debate prompt not sent")
	}
	for _, want := range []string{
		"Your internal reasoning process:",
		"Searching my works for insights on: What is freedom?",
		"Analyzing Walt Whitman's argument",
		"Other thinkers have provided these perspectives:",
		"1. Walt Whitman said:",
		"Limit your response to 2-3 paragraphs.",
	} {
		if !strings.Contains(finalPrompt, want) {
			t.Errorf("agentic prompt missing %q", want)
		}
	}
}

func TestAgenticDebateToolsDisabled(t *testing.T) {
	store := newTestStore(t)
	llm := &mockLLM{}

	cfg := debateConfig()
	useTools := false
	cfg.UseTools = &useTools
	o := NewAgenticOrchestrator(store, llm, cfg)

	_, err := o.Run(context.Background(), "What is freedom?", testPanel(t), initialResponses(), "threshold", 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, p := range llm.promptsFor("You are Karl Marx.") {
		if strings.Contains(p, "Analyze this argument from") {
			t.Error("analysis tool used with tools disabled")
		}
		if strings.Contains(p, "Your internal reasoning process:") {
			t.Error("reasoning chain present with tools disabled")
		}
	}
}
