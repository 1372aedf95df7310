package llms

import (
	"context"
	"fmt"

	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/registry"
)

// LLMProvider generates text from prompts.
type LLMProvider interface {
	// Generate produces a completion for the given prompts. Returns the
	// generated text and the number of tokens consumed.
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, int, error)

	// GenerateStreaming produces a completion as a channel of text
	// fragments. The channel is closed when generation finishes.
	GenerateStreaming(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (<-chan string, error)

	// GetModelName returns the model identifier.
	GetModelName() string

	// Close releases provider resources.
	Close() error
}

// LLMRegistry manages LLM provider instances.
type LLMRegistry struct {
	*registry.BaseRegistry[LLMProvider]
}

func NewLLMRegistry() *LLMRegistry {
	return &LLMRegistry{
		BaseRegistry: registry.NewBaseRegistry[LLMProvider](),
	}
}

func (r *LLMRegistry) RegisterLLM(name string, provider LLMProvider) error {
	if name == "" {
		return fmt.Errorf("LLM name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("LLM provider cannot be nil")
	}
	return r.Register(name, provider)
}

// CreateLLMFromConfig builds an LLM provider and registers it under
// the given name.
func (r *LLMRegistry) CreateLLMFromConfig(name string, cfg *config.LLMProviderConfig) (LLMProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("LLM name cannot be empty")
	}

	provider, err := CreateLLMFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	if err := r.RegisterLLM(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register LLM: %w", err)
	}

	return provider, nil
}

func (r *LLMRegistry) GetLLM(name string) (LLMProvider, error) {
	provider, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("LLM provider '%s' not found", name)
	}
	return provider, nil
}

// CreateLLMFromConfig builds an LLM provider from configuration.
func CreateLLMFromConfig(cfg *config.LLMProviderConfig) (LLMProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	switch cfg.Type {
	case "openai":
		return NewOpenAIProviderFromConfig(cfg)
	case "anthropic":
		return NewAnthropicProviderFromConfig(cfg)
	case "gemini":
		return NewGeminiProviderFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm type: %s", cfg.Type)
	}
}
