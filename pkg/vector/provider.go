package vector

import "context"

// Result is a single similarity search hit.
type Result struct {
	// ID is the document identifier.
	ID string

	// Score is the similarity score (higher is more similar).
	Score float32

	// Content is the document text, if stored.
	Content string

	// Vector is the stored embedding, when the backend returns it.
	Vector []float32

	// Metadata holds arbitrary document attributes.
	Metadata map[string]any
}

// Provider abstracts a vector database backend.
//
// All implementations store pre-computed embeddings; the embedding
// itself happens in the embedders package.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Upsert adds or updates a document with its vector.
	Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error

	// Search finds the topK most similar vectors.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)

	// SearchWithFilter combines vector similarity with exact-match
	// metadata filtering.
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)

	// Delete removes a document by ID.
	Delete(ctx context.Context, collection string, id string) error

	// DeleteByFilter removes all documents matching the filter.
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error

	// CreateCollection creates a collection with the given dimension.
	CreateCollection(ctx context.Context, collection string, vectorDimension int) error

	// DeleteCollection removes a collection and its documents.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases backend resources.
	Close() error
}
