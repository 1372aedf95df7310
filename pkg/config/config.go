package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/agora/pkg/observability"
)

// VectorStoreConfig configures the vector database backend.
type VectorStoreConfig struct {
	Type              string `yaml:"type"` // "chromem", "qdrant", "pinecone"
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	APIKey            string `yaml:"api_key,omitempty"`
	Path              string `yaml:"path,omitempty"`       // chromem persistence path
	IndexHost         string `yaml:"index_host,omitempty"` // pinecone index host
	ChunksCollection  string `yaml:"chunks_collection"`
	ProfileCollection string `yaml:"profile_collection"`
	UseTLS            bool   `yaml:"use_tls,omitempty"`
	Timeout           int    `yaml:"timeout"`
}

func (c *VectorStoreConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "chromem"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 && c.Type == "qdrant" {
		c.Port = 6334
	}
	if c.ChunksCollection == "" {
		c.ChunksCollection = "author_works"
	}
	if c.ProfileCollection == "" {
		c.ProfileCollection = "author_profiles"
	}
	if c.Timeout == 0 {
		c.Timeout = 30
	}
}

func (c *VectorStoreConfig) Validate() error {
	switch c.Type {
	case "chromem", "qdrant", "pinecone":
	default:
		return fmt.Errorf("unsupported vector store type: %s", c.Type)
	}
	if c.Type == "pinecone" && c.APIKey == "" {
		return fmt.Errorf("api_key is required for pinecone")
	}
	return nil
}

// Config is the root configuration for the panel engine.
type Config struct {
	Logging     LoggingConfig          `yaml:"logging"`
	LLM         LLMProviderConfig      `yaml:"llm"`
	Embedder    EmbedderProviderConfig `yaml:"embedder"`
	VectorStore VectorStoreConfig      `yaml:"vector_store"`
	Authors     []AuthorConfig         `yaml:"authors"`
	Routing     RoutingConfig          `yaml:"routing"`
	RAG         RAGConfig              `yaml:"rag"`
	Debate      DebateConfig           `yaml:"debate"`
	Cache       CacheConfig            `yaml:"cache"`

	Metrics observability.MetricsConfig `yaml:"metrics,omitempty"`
}

func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.LLM.SetDefaults()
	c.Embedder.SetDefaults()
	c.VectorStore.SetDefaults()
	c.Routing.SetDefaults()
	c.RAG.SetDefaults()
	c.Debate.SetDefaults()
	c.Cache.SetDefaults()
	c.Metrics.SetDefaults()
}

func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Embedder.Validate(); err != nil {
		return fmt.Errorf("embedder: %w", err)
	}
	if err := c.VectorStore.Validate(); err != nil {
		return fmt.Errorf("vector_store: %w", err)
	}
	if len(c.Authors) == 0 {
		return fmt.Errorf("at least one author must be configured")
	}
	seen := make(map[string]bool, len(c.Authors))
	for i := range c.Authors {
		if err := c.Authors[i].Validate(); err != nil {
			return fmt.Errorf("authors[%d]: %w", i, err)
		}
		if seen[c.Authors[i].ID] {
			return fmt.Errorf("duplicate author id: %s", c.Authors[i].ID)
		}
		seen[c.Authors[i].ID] = true
	}
	if err := c.Routing.Validate(); err != nil {
		return fmt.Errorf("routing: %w", err)
	}
	if err := c.Debate.Validate(); err != nil {
		return fmt.Errorf("debate: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Load reads a YAML config file, expands environment variable
// references, applies defaults, and validates the result. A .env file
// in the working directory is loaded first so its values are visible
// to expansion.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from raw YAML bytes.
func Parse(data []byte) (*Config, error) {
	expanded := ExpandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
