package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalYAML = `
llm:
  type: openai
  model: gpt-4-turbo
  api_key: test-key
embedder:
  type: openai
  model: text-embedding-3-small
  api_key: test-key
authors:
  - id: marx
    name: Karl Marx
    expertise_domains: [economics, class-struggle]
    system_prompt: "You are Karl Marx."
  - id: whitman
    name: Walt Whitman
    expertise_domains: [poetry, nature]
    system_prompt: "You are Walt Whitman."
`

func TestParseMinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.LLM.Type != "openai" {
		t.Errorf("LLM.Type = %q, want openai", cfg.LLM.Type)
	}
	if len(cfg.Authors) != 2 {
		t.Fatalf("len(Authors) = %d, want 2", len(cfg.Authors))
	}
	if cfg.Authors[0].ID != "marx" {
		t.Errorf("Authors[0].ID = %q, want marx", cfg.Authors[0].ID)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Routing.RelevanceThreshold != 0.7 {
		t.Errorf("Routing.RelevanceThreshold = %v, want 0.7", cfg.Routing.RelevanceThreshold)
	}
	if cfg.Routing.MinAuthors != 2 || cfg.Routing.MaxAuthors != 5 {
		t.Errorf("Routing min/max = %d/%d, want 2/5", cfg.Routing.MinAuthors, cfg.Routing.MaxAuthors)
	}
	if cfg.RAG.TopKChunks != 5 {
		t.Errorf("RAG.TopKChunks = %d, want 5", cfg.RAG.TopKChunks)
	}
	if cfg.Debate.NumRounds != 2 {
		t.Errorf("Debate.NumRounds = %d, want 2", cfg.Debate.NumRounds)
	}
	if cfg.Debate.AgenticMaxTokens != 400 {
		t.Errorf("Debate.AgenticMaxTokens = %d, want 400", cfg.Debate.AgenticMaxTokens)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("Cache.TTLHours = %d, want 24", cfg.Cache.TTLHours)
	}
	if cfg.VectorStore.Type != "chromem" {
		t.Errorf("VectorStore.Type = %q, want chromem", cfg.VectorStore.Type)
	}
	if cfg.VectorStore.ChunksCollection != "author_works" {
		t.Errorf("VectorStore.ChunksCollection = %q", cfg.VectorStore.ChunksCollection)
	}
}

func TestParseRejectsMissingAuthors(t *testing.T) {
	yaml := `
llm:
  type: openai
  api_key: test-key
embedder:
  type: openai
  api_key: test-key
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() should fail without authors")
	}
	if !strings.Contains(err.Error(), "author") {
		t.Errorf("error = %v, want author-related error", err)
	}
}

func TestParseRejectsDuplicateAuthorIDs(t *testing.T) {
	yaml := minimalYAML + `
  - id: marx
    name: Karl Marx Again
    system_prompt: "duplicate"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() should reject duplicate author ids")
	}
}

func TestParseExpandsEnvVars(t *testing.T) {
	os.Setenv("TEST_PANEL_API_KEY", "secret-from-env")
	defer os.Unsetenv("TEST_PANEL_API_KEY")

	yaml := strings.Replace(minimalYAML, "api_key: test-key", "api_key: ${TEST_PANEL_API_KEY}", 1)
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.LLM.APIKey != "secret-from-env" {
		t.Errorf("LLM.APIKey = %q, want secret-from-env", cfg.LLM.APIKey)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := strings.Replace(minimalYAML, "api_key: test-key", "api_key: ${PANEL_DOTENV_KEY}", 1)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PANEL_DOTENV_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("WriteFile(.env) error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile(config.yaml) error = %v", err)
	}
	t.Chdir(dir)
	defer os.Unsetenv("PANEL_DOTENV_KEY")

	cfg, err := Load("config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.APIKey != "from-dotenv" {
		t.Errorf("LLM.APIKey = %q, want from-dotenv", cfg.LLM.APIKey)
	}
}

func TestExpandEnvVarsDefault(t *testing.T) {
	os.Unsetenv("MISSING_VAR_FOR_TEST")
	got := ExpandEnvVars("value: ${MISSING_VAR_FOR_TEST:-fallback}")
	if got != "value: fallback" {
		t.Errorf("ExpandEnvVars() = %q, want %q", got, "value: fallback")
	}

	os.Setenv("PRESENT_VAR_FOR_TEST", "real")
	defer os.Unsetenv("PRESENT_VAR_FOR_TEST")
	got = ExpandEnvVars("value: ${PRESENT_VAR_FOR_TEST:-fallback}")
	if got != "value: real" {
		t.Errorf("ExpandEnvVars() = %q, want %q", got, "value: real")
	}
}

func TestRoutingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RoutingConfig
		wantErr bool
	}{
		{"valid", RoutingConfig{RelevanceThreshold: 0.7, MinAuthors: 2, MaxAuthors: 5}, false},
		{"threshold too high", RoutingConfig{RelevanceThreshold: 1.5, MinAuthors: 2, MaxAuthors: 5}, true},
		{"threshold negative", RoutingConfig{RelevanceThreshold: -0.1, MinAuthors: 2, MaxAuthors: 5}, true},
		{"min exceeds max", RoutingConfig{RelevanceThreshold: 0.7, MinAuthors: 6, MaxAuthors: 5}, true},
		{"zero min", RoutingConfig{RelevanceThreshold: 0.7, MinAuthors: 0, MaxAuthors: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCacheConfigValidate(t *testing.T) {
	cfg := CacheConfig{Type: "redis"}
	cfg.SetDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("redis cache without addr should fail validation")
	}
	cfg.Redis = &RedisConfig{Addr: "localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestDebateConfigValidate(t *testing.T) {
	cfg := DebateConfig{NumRounds: 6}
	if err := cfg.Validate(); err == nil {
		t.Error("num_rounds above 5 should fail validation")
	}
}
