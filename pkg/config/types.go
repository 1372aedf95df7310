package config

import "fmt"

// LLMProviderConfig configures a generation backend.
type LLMProviderConfig struct {
	Type        string  `yaml:"type"`        // "openai", "anthropic", "gemini"
	Model       string  `yaml:"model"`       // Model name
	APIKey      string  `yaml:"api_key"`     // API key (supports ${VAR} expansion)
	Host        string  `yaml:"host"`        // Custom API endpoint
	Temperature float64 `yaml:"temperature"` // Default sampling temperature
	MaxTokens   int     `yaml:"max_tokens"`  // Default max tokens per response
	Timeout     int     `yaml:"timeout"`     // Request timeout in seconds
	MaxRetries  int     `yaml:"max_retries"` // HTTP retry budget
}

func (c *LLMProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "gemini"
	}
	if c.Model == "" {
		switch c.Type {
		case "openai":
			c.Model = "gpt-4-turbo"
		case "anthropic":
			c.Model = "claude-3-opus-20240229"
		case "gemini":
			c.Model = "gemini-2.0-flash-exp"
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 300
	}
	if c.Timeout == 0 {
		c.Timeout = 30
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

func (c *LLMProviderConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required for %s", c.Type)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// EmbedderProviderConfig configures an embedding backend.
type EmbedderProviderConfig struct {
	Type       string `yaml:"type"`        // "openai", "gemini", "ollama"
	Model      string `yaml:"model"`       // Embedding model name
	APIKey     string `yaml:"api_key"`     // API key (supports ${VAR} expansion)
	Host       string `yaml:"host"`        // Custom API endpoint
	Dimension  int    `yaml:"dimension"`   // Vector dimension (0 = model default)
	Timeout    int    `yaml:"timeout"`     // Request timeout in seconds
	MaxRetries int    `yaml:"max_retries"` // HTTP retry budget
	BatchSize  int    `yaml:"batch_size"`  // Max texts per batch request
}

func (c *EmbedderProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "gemini"
	}
	if c.Model == "" {
		switch c.Type {
		case "openai":
			c.Model = "text-embedding-3-small"
		case "gemini":
			c.Model = "text-embedding-004"
		case "ollama":
			c.Model = "nomic-embed-text"
		}
	}
	if c.Timeout == 0 {
		c.Timeout = 10
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
}

func (c *EmbedderProviderConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Type != "ollama" && c.APIKey == "" {
		return fmt.Errorf("api_key is required for %s", c.Type)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("dimension must be non-negative")
	}
	return nil
}

// VoiceConfig describes the characteristics of an author's voice.
type VoiceConfig struct {
	Tone        string `yaml:"tone"`
	Vocabulary  string `yaml:"vocabulary"`
	Perspective string `yaml:"perspective"`
	StyleNotes  string `yaml:"style_notes,omitempty"`
}

// AuthorConfig declares one author persona. Loaded once at startup;
// authors are immutable at runtime.
type AuthorConfig struct {
	ID               string      `yaml:"id"`
	Name             string      `yaml:"name"`
	ExpertiseDomains []string    `yaml:"expertise_domains"`
	Voice            VoiceConfig `yaml:"voice"`
	SystemPrompt     string      `yaml:"system_prompt"`
	Bio              string      `yaml:"bio,omitempty"`
	Works            []string    `yaml:"works,omitempty"`
}

func (c *AuthorConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("author id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("author %s: name is required", c.ID)
	}
	if c.SystemPrompt == "" {
		return fmt.Errorf("author %s: system_prompt is required", c.ID)
	}
	return nil
}

// RoutingConfig controls semantic author selection.
type RoutingConfig struct {
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	MinAuthors         int     `yaml:"min_authors"`
	MaxAuthors         int     `yaml:"max_authors"`
	FallbackToTop      *bool   `yaml:"fallback_to_top"`
}

func (c *RoutingConfig) SetDefaults() {
	if c.RelevanceThreshold == 0 {
		c.RelevanceThreshold = 0.7
	}
	if c.MinAuthors == 0 {
		c.MinAuthors = 2
	}
	if c.MaxAuthors == 0 {
		c.MaxAuthors = 5
	}
	if c.FallbackToTop == nil {
		t := true
		c.FallbackToTop = &t
	}
}

func (c *RoutingConfig) Validate() error {
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return fmt.Errorf("relevance_threshold must be between 0.0 and 1.0")
	}
	if c.MinAuthors < 1 {
		return fmt.Errorf("min_authors must be at least 1")
	}
	if c.MinAuthors > c.MaxAuthors {
		return fmt.Errorf("min_authors must be <= max_authors")
	}
	return nil
}

// RAGConfig controls retrieval-grounded response generation.
type RAGConfig struct {
	TopKChunks         int     `yaml:"top_k_chunks"`
	MaxResponseTokens  int     `yaml:"max_response_tokens"`
	Temperature        float64 `yaml:"temperature"`
	ContextTokenBudget int     `yaml:"context_token_budget"` // 0 = unlimited
	MaxConcurrency     int     `yaml:"max_concurrency"`
	EmbedTimeout       int     `yaml:"embed_timeout"`    // seconds
	SearchTimeout      int     `yaml:"search_timeout"`   // seconds
	GenerateTimeout    int     `yaml:"generate_timeout"` // seconds
}

func (c *RAGConfig) SetDefaults() {
	if c.TopKChunks == 0 {
		c.TopKChunks = 5
	}
	if c.MaxResponseTokens == 0 {
		c.MaxResponseTokens = 300
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 8
	}
	if c.EmbedTimeout == 0 {
		c.EmbedTimeout = 10
	}
	if c.SearchTimeout == 0 {
		c.SearchTimeout = 10
	}
	if c.GenerateTimeout == 0 {
		c.GenerateTimeout = 30
	}
}

// DebateConfig controls multi-round debates.
type DebateConfig struct {
	NumRounds         int     `yaml:"num_rounds"`
	MaxResponseTokens int     `yaml:"max_response_tokens"`
	Temperature       float64 `yaml:"temperature"`

	// Agentic debate settings.
	AgenticMaxTokens  int   `yaml:"agentic_max_tokens"`
	AnalysisMaxTokens int   `yaml:"analysis_max_tokens"`
	UseTools          *bool `yaml:"use_tools"`
}

func (c *DebateConfig) SetDefaults() {
	if c.NumRounds == 0 {
		c.NumRounds = 2
	}
	if c.MaxResponseTokens == 0 {
		c.MaxResponseTokens = 300
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.AgenticMaxTokens == 0 {
		c.AgenticMaxTokens = 400
	}
	if c.AnalysisMaxTokens == 0 {
		c.AnalysisMaxTokens = 200
	}
	if c.UseTools == nil {
		t := true
		c.UseTools = &t
	}
}

func (c *DebateConfig) Validate() error {
	if c.NumRounds < 1 || c.NumRounds > 5 {
		return fmt.Errorf("num_rounds must be between 1 and 5")
	}
	return nil
}

// RedisConfig configures the optional Redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled             bool         `yaml:"enabled"`
	Type                string       `yaml:"type"` // "memory" or "redis"
	TTLHours            int          `yaml:"ttl_hours"`
	SimilarityThreshold float64      `yaml:"similarity_threshold"`
	MaxEntries          int          `yaml:"max_entries"`
	Redis               *RedisConfig `yaml:"redis,omitempty"`
}

func (c *CacheConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "memory"
	}
	if c.TTLHours == 0 {
		c.TTLHours = 24
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.95
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = 1000
	}
}

func (c *CacheConfig) Validate() error {
	if c.Type != "memory" && c.Type != "redis" {
		return fmt.Errorf("unsupported cache type: %s", c.Type)
	}
	if c.Type == "redis" && (c.Redis == nil || c.Redis.Addr == "") {
		return fmt.Errorf("redis.addr is required for redis cache")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be between 0.0 and 1.0")
	}
	return nil
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // simple, verbose
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}
