package agora

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/routing"
	"github.com/kadirpekel/agora/pkg/vector"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(ctx, t)
	}
	return out, nil
}

func (f *fakeEmbedder) GetDimension() int    { return 3 }
func (f *fakeEmbedder) GetModelName() string { return "fake" }
func (f *fakeEmbedder) Close() error         { return nil }

type mockLLM struct {
	mu    sync.Mutex
	calls int
}

func (m *mockLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, int, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fmt.Sprintf("reply from %s", systemPrompt), 20, nil
}

func (m *mockLLM) GenerateStreaming(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (<-chan string, error) {
	ch := make(chan string, 2)
	ch <- "streamed "
	ch <- "reply"
	close(ch)
	return ch, nil
}

func (m *mockLLM) GetModelName() string { return "gpt-4-turbo" }
func (m *mockLLM) Close() error         { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Authors: []config.AuthorConfig{
			{ID: "marx", Name: "Karl Marx", ExpertiseDomains: []string{"economics"}, SystemPrompt: "You are Karl Marx."},
			{ID: "whitman", Name: "Walt Whitman", ExpertiseDomains: []string{"poetry"}, SystemPrompt: "You are Walt Whitman."},
		},
	}
	cfg.SetDefaults()
	cfg.Cache.Enabled = true
	return cfg
}

// The query embedding sits between the two profile vectors so both
// authors clear the default 0.7 threshold.
func newTestPanel(t *testing.T, llm *mockLLM) *Panel {
	t.Helper()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"a question for the panel": {0.9, 0.44, 0}, // marx sim ~0.90, whitman ~0.89
		"economics":                {1, 0, 0},
		"poetry":                   {0.6, 0.8, 0},
	}}

	cfg := testConfig()
	registry, err := authors.NewRegistryFromConfig(cfg.Authors)
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}

	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}
	store := corpus.NewStore(provider, embedder, registry, "", "")

	panel, err := New(cfg, WithEmbedder(embedder), WithLLM(llm), WithStore(store))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = store.AddChunks(context.Background(), []corpus.TextChunk{
		{AuthorID: "marx", Text: "labor theory of value", Source: "Das Kapital"},
		{AuthorID: "whitman", Text: "I contain multitudes", Source: "Leaves of Grass"},
	})
	if err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}
	return panel
}

func TestAsk(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	resp, err := panel.Ask(context.Background(), &routing.Query{Text: "a question for the panel"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if resp.AuthorCount() != 2 {
		t.Fatalf("AuthorCount() = %d, want 2", resp.AuthorCount())
	}
	if resp.SelectionMethod != "threshold" {
		t.Errorf("SelectionMethod = %q, want threshold", resp.SelectionMethod)
	}
	// Marx's profile matches the query more closely.
	if resp.Authors[0].AuthorID != "marx" {
		t.Errorf("first author = %q, want marx", resp.Authors[0].AuthorID)
	}
	if !strings.Contains(resp.Authors[0].Text, "Karl Marx") {
		t.Errorf("response text = %q", resp.Authors[0].Text)
	}
}

func TestAskUsesCache(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)
	ctx := context.Background()

	first, err := panel.Ask(ctx, &routing.Query{Text: "a question for the panel"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	callsAfterFirst := llm.callCount()

	second, err := panel.Ask(ctx, &routing.Query{Text: "a question for the panel"})
	if err != nil {
		t.Fatalf("Ask() (cached) error = %v", err)
	}

	if llm.callCount() != callsAfterFirst {
		t.Errorf("cached ask hit the LLM: %d calls, want %d", llm.callCount(), callsAfterFirst)
	}
	if second.ID != first.ID {
		t.Errorf("cached response ID = %q, want %q", second.ID, first.ID)
	}

	stats := panel.CacheStats(ctx)
	if stats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.Hits)
	}

	panel.ClearCaches(ctx)
	if panel.CacheStats(ctx).Size != 0 {
		t.Error("cache not cleared")
	}
}

func TestAskNoAuthors(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	fallback := false
	panel.cfg.Routing.FallbackToTop = &fallback
	panel.router = routing.NewRouter(panel.store, &panel.cfg.Routing)

	// The unknown query embeds orthogonally to both profiles.
	_, err := panel.Ask(context.Background(), &routing.Query{Text: "something unrelated"})
	if !errors.Is(err, ErrNoAuthors) {
		t.Fatalf("Ask() error = %v, want ErrNoAuthors", err)
	}
}

func TestDebate(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	session, err := panel.Debate(context.Background(), &routing.Query{
		Text:             "a question for the panel",
		SpecifiedAuthors: []string{"marx", "whitman"},
	}, 2)
	if err != nil {
		t.Fatalf("Debate() error = %v", err)
	}

	if len(session.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(session.Rounds))
	}
	if session.SelectionMethod != "specified" {
		t.Errorf("SelectionMethod = %q, want specified", session.SelectionMethod)
	}
	if len(session.Rounds[1].Responses) != 2 {
		t.Errorf("round 2 responses = %d, want 2", len(session.Rounds[1].Responses))
	}
}

func TestDebateTooFewAuthors(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	_, err := panel.Debate(context.Background(), &routing.Query{
		Text:             "a question for the panel",
		SpecifiedAuthors: []string{"marx"},
	}, 2)
	if !errors.Is(err, ErrTooFewAuthors) {
		t.Fatalf("Debate() error = %v, want ErrTooFewAuthors", err)
	}
}

func TestAgenticDebate(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	session, err := panel.AgenticDebate(context.Background(), &routing.Query{
		Text:             "a question for the panel",
		SpecifiedAuthors: []string{"marx", "whitman"},
	}, 2)
	if err != nil {
		t.Fatalf("AgenticDebate() error = %v", err)
	}

	if session.SelectionMethod != "specified (agentic)" {
		t.Errorf("SelectionMethod = %q", session.SelectionMethod)
	}
	if len(session.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(session.Rounds))
	}
}

func TestAskStreaming(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	stream, err := panel.AskStreaming(context.Background(), "a question for the panel", "marx")
	if err != nil {
		t.Fatalf("AskStreaming() error = %v", err)
	}

	var sb strings.Builder
	for token := range stream {
		sb.WriteString(token)
	}
	if sb.String() != "streamed reply" {
		t.Errorf("streamed text = %q", sb.String())
	}

	if _, err := panel.AskStreaming(context.Background(), "q", "plato"); err == nil {
		t.Error("AskStreaming() with unknown author did not fail")
	}
}

// blockingEmbedder stalls until its context is cancelled.
type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingEmbedder) GetDimension() int    { return 3 }
func (blockingEmbedder) GetModelName() string { return "blocking" }
func (blockingEmbedder) Close() error         { return nil }

func TestAskStreamingEmbedTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.RAG.EmbedTimeout = 1

	registry, err := authors.NewRegistryFromConfig(cfg.Authors)
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}
	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}
	embedder := blockingEmbedder{}
	store := corpus.NewStore(provider, embedder, registry, "", "")

	panel, err := New(cfg, WithEmbedder(embedder), WithLLM(&mockLLM{}), WithStore(store))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = panel.AskStreaming(context.Background(), "a question for the panel", "marx")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("AskStreaming() error = %v, want deadline exceeded", err)
	}
}

func TestProviderRegistries(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	// Injected providers are registered under their configured type.
	got, err := panel.LLM(testConfig().LLM.Type)
	if err != nil {
		t.Fatalf("LLM() error = %v", err)
	}
	if got != llm {
		t.Error("LLM() returned a different provider")
	}
	if _, err := panel.Embedder(testConfig().Embedder.Type); err != nil {
		t.Fatalf("Embedder() error = %v", err)
	}
	if _, err := panel.LLM("missing"); err == nil {
		t.Error("LLM() for unregistered name should fail")
	}
}

func TestRankingsAndThreshold(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	rankings, err := panel.Rankings(context.Background(), "a question for the panel")
	if err != nil {
		t.Fatalf("Rankings() error = %v", err)
	}
	if len(rankings) != 2 {
		t.Fatalf("rankings = %d, want 2", len(rankings))
	}
	if rankings[0].AuthorID != "marx" {
		t.Errorf("top ranked = %q, want marx", rankings[0].AuthorID)
	}

	if err := panel.UpdateThreshold(1.5); err == nil {
		t.Error("UpdateThreshold(1.5) did not fail")
	}
	if err := panel.UpdateThreshold(0.9); err != nil {
		t.Errorf("UpdateThreshold(0.9) error = %v", err)
	}
}

func TestFormatMarkdown(t *testing.T) {
	llm := &mockLLM{}
	panel := newTestPanel(t, llm)

	resp, err := panel.Ask(context.Background(), &routing.Query{Text: "a question for the panel"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	md := panel.FormatMarkdown(resp)
	if !strings.Contains(md, "# Virtual Debate Panel") {
		t.Error("markdown header missing")
	}
	if !strings.Contains(md, "Karl Marx") {
		t.Error("markdown missing author")
	}
}
