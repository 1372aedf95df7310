package vector

import (
	"fmt"

	"github.com/kadirpekel/agora/pkg/config"
)

// ProviderType identifies a vector provider implementation.
type ProviderType string

const (
	// ProviderChromem uses chromem-go for embedded vector storage.
	// Zero-config, no external services. Best for development and
	// small corpora.
	ProviderChromem ProviderType = "chromem"

	// ProviderQdrant uses the Qdrant vector database over gRPC.
	ProviderQdrant ProviderType = "qdrant"

	// ProviderPinecone uses the Pinecone managed vector database.
	ProviderPinecone ProviderType = "pinecone"
)

// NewProviderFromConfig creates a vector provider from configuration.
func NewProviderFromConfig(cfg *config.VectorStoreConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch ProviderType(cfg.Type) {
	case ProviderChromem:
		return NewChromemProvider(ChromemConfig{
			PersistPath: cfg.Path,
		})

	case ProviderQdrant:
		return NewQdrantProvider(QdrantConfig{
			Host:   cfg.Host,
			Port:   cfg.Port,
			APIKey: cfg.APIKey,
			UseTLS: cfg.UseTLS,
		})

	case ProviderPinecone:
		return NewPineconeProvider(PineconeConfig{
			APIKey:    cfg.APIKey,
			Host:      cfg.IndexHost,
			IndexName: cfg.ChunksCollection,
		})

	default:
		return nil, fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
}
