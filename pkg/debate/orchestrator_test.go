package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/rag"
)

// mockLLM records prompts and fails for authors listed in failFor,
// keyed by system prompt.
type mockLLM struct {
	mu         sync.Mutex
	prompts    []string
	sysPrompts []string
	failFor    map[string]bool
}

func (m *mockLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, int, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, userPrompt)
	m.sysPrompts = append(m.sysPrompts, systemPrompt)
	m.mu.Unlock()

	if m.failFor[systemPrompt] {
		return "", 0, fmt.Errorf("simulated provider failure")
	}
	return fmt.Sprintf("debate reply from %s", systemPrompt), 30, nil
}

func (m *mockLLM) GenerateStreaming(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func (m *mockLLM) GetModelName() string { return "gpt-4-turbo" }
func (m *mockLLM) Close() error         { return nil }

func (m *mockLLM) promptsFor(systemPrompt string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for i, sys := range m.sysPrompts {
		if sys == systemPrompt {
			out = append(out, m.prompts[i])
		}
	}
	return out
}

func testRegistry(t *testing.T) *authors.Registry {
	t.Helper()
	registry, err := authors.NewRegistryFromConfig([]config.AuthorConfig{
		{ID: "marx", Name: "Karl Marx", ExpertiseDomains: []string{"economics"}, SystemPrompt: "You are Karl Marx."},
		{ID: "whitman", Name: "Walt Whitman", ExpertiseDomains: []string{"poetry"}, SystemPrompt: "You are Walt Whitman."},
	})
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}
	return registry
}

func testPanel(t *testing.T) []*authors.Author {
	t.Helper()
	return testRegistry(t).All()
}

func initialResponses() []*rag.Response {
	return []*rag.Response{
		{AuthorID: "marx", AuthorName: "Karl Marx", Text: "Value arises from labor.", RelevanceScore: 0.9},
		{AuthorID: "whitman", AuthorName: "Walt Whitman", Text: "I celebrate the self.", RelevanceScore: 0.8},
	}
}

func debateConfig() *config.DebateConfig {
	cfg := &config.DebateConfig{}
	cfg.SetDefaults()
	return cfg
}

func TestOrchestratorRoundProgression(t *testing.T) {
	llm := &mockLLM{}
	o := NewOrchestrator(llm, debateConfig())

	session, err := o.Run(context.Background(), "What is freedom?", testPanel(t), initialResponses(), "threshold", 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(session.Rounds) != 3 {
		t.Fatalf("rounds = %d, want 3", len(session.Rounds))
	}
	wantTypes := []RoundType{RoundInitial, RoundRebuttal, RoundResponse}
	for i, round := range session.Rounds {
		if round.Number != i+1 {
			t.Errorf("round %d number = %d", i, round.Number)
		}
		if round.Type != wantTypes[i] {
			t.Errorf("round %d type = %q, want %q", i+1, round.Type, wantTypes[i])
		}
	}

	if session.SelectionMethod != "threshold" {
		t.Errorf("SelectionMethod = %q", session.SelectionMethod)
	}
	if session.ID == "" {
		t.Error("session ID is empty")
	}

	for _, resp := range session.Rounds[1].Responses {
		if resp.RelevanceScore != 1.0 {
			t.Errorf("debate response relevance = %v, want 1.0", resp.RelevanceScore)
		}
		if len(resp.RetrievedChunks) != 0 {
			t.Errorf("debate response has %d chunks, want 0", len(resp.RetrievedChunks))
		}
	}
}

func TestOrchestratorExcludesOwnResponse(t *testing.T) {
	llm := &mockLLM{}
	o := NewOrchestrator(llm, debateConfig())

	if _, err := o.Run(context.Background(), "What is freedom?", testPanel(t), initialResponses(), "threshold", 2); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	marxPrompts := llm.promptsFor("You are Karl Marx.")
	if len(marxPrompts) != 1 {
		t.Fatalf("marx prompts = %d, want 1", len(marxPrompts))
	}
	if !strings.Contains(marxPrompts[0], "Walt Whitman said:") {
		t.Error("marx prompt does not include whitman's position")
	}
	if strings.Contains(marxPrompts[0], "Karl Marx said:") {
		t.Error("marx prompt includes his own position")
	}
	if !strings.Contains(marxPrompts[0], "\"I celebrate the self.\"") {
		t.Error("marx prompt does not quote whitman's text")
	}
}

func TestOrchestratorPartialFailure(t *testing.T) {
	llm := &mockLLM{failFor: map[string]bool{"You are Walt Whitman.": true}}
	o := NewOrchestrator(llm, debateConfig())

	session, err := o.Run(context.Background(), "What is freedom?", testPanel(t), initialResponses(), "threshold", 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	round2 := session.Rounds[1]
	if len(round2.Responses) != 1 {
		t.Fatalf("round 2 responses = %d, want 1", len(round2.Responses))
	}
	if round2.Responses[0].AuthorID != "marx" {
		t.Errorf("round 2 survivor = %q, want marx", round2.Responses[0].AuthorID)
	}

	// The debate continues with whoever is left.
	round3 := session.Rounds[2]
	if len(round3.Responses) != 1 {
		t.Fatalf("round 3 responses = %d, want 1", len(round3.Responses))
	}
}

func TestOrchestratorNoInitialResponses(t *testing.T) {
	o := NewOrchestrator(&mockLLM{}, debateConfig())

	_, err := o.Run(context.Background(), "What is freedom?", testPanel(t), nil, "threshold", 2)
	if !errors.Is(err, ErrNoResponses) {
		t.Fatalf("Run() error = %v, want ErrNoResponses", err)
	}
}

func TestBuildDebatePrompt(t *testing.T) {
	prompt := buildDebatePrompt("What is freedom?", []*rag.Response{
		{AuthorName: "Walt Whitman", Text: "I celebrate the self."},
	})

	for _, want := range []string{
		"The original question was: What is freedom?",
		"Other thinkers have provided the following perspectives:",
		"1. Walt Whitman said:",
		"\"I celebrate the self.\"",
		"- Critique or challenge their arguments",
		"maximum of 3 paragraphs",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
