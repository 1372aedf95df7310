package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kadirpekel/agora/pkg/authors"
	"github.com/kadirpekel/agora/pkg/embedders"
	"github.com/kadirpekel/agora/pkg/vector"
)

// TextChunk is a fragment of an author's corpus.
type TextChunk struct {
	// ID is the chunk identifier. Assigned on insert when empty.
	ID string

	// AuthorID identifies which author's corpus this chunk belongs to.
	AuthorID string

	// Text is the chunk content.
	Text string

	// Source names the work the chunk came from (optional).
	Source string
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	TextChunk
	Score float64
}

// Store manages the author corpus and expertise profiles on top of a
// vector provider. All embedding goes through the configured embedder.
type Store struct {
	provider          vector.Provider
	embedder          embedders.EmbedderProvider
	registry          *authors.Registry
	chunksCollection  string
	profileCollection string

	mu           sync.RWMutex
	profileCache map[string][]float32
}

// NewStore creates a corpus store.
func NewStore(provider vector.Provider, embedder embedders.EmbedderProvider, registry *authors.Registry, chunksCollection, profileCollection string) *Store {
	if chunksCollection == "" {
		chunksCollection = "author_works"
	}
	if profileCollection == "" {
		profileCollection = "author_profiles"
	}
	return &Store{
		provider:          provider,
		embedder:          embedder,
		registry:          registry,
		chunksCollection:  chunksCollection,
		profileCollection: profileCollection,
		profileCache:      make(map[string][]float32),
	}
}

// Embedder returns the store's embedder.
func (s *Store) Embedder() embedders.EmbedderProvider {
	return s.embedder
}

// AddChunks embeds and indexes corpus chunks.
func (s *Store) AddChunks(ctx context.Context, chunks []TextChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		if c.AuthorID == "" {
			return fmt.Errorf("chunk %d: author_id is required", i)
		}
		if c.Text == "" {
			return fmt.Errorf("chunk %d: text is required", i)
		}
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		metadata := map[string]any{
			"author_id": c.AuthorID,
			"content":   c.Text,
		}
		if c.Source != "" {
			metadata["source"] = c.Source
		}
		if err := s.provider.Upsert(ctx, s.chunksCollection, id, vectors[i], metadata); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", id, err)
		}
	}

	slog.Debug("Indexed corpus chunks", "count", len(chunks))
	return nil
}

// SearchChunks retrieves the topK chunks most similar to queryVector,
// restricted to a single author's corpus.
func (s *Store) SearchChunks(ctx context.Context, queryVector []float32, authorID string, topK int) ([]ScoredChunk, error) {
	if authorID == "" {
		return nil, fmt.Errorf("author_id is required")
	}
	if topK <= 0 {
		topK = 5
	}

	results, err := s.provider.SearchWithFilter(ctx, s.chunksCollection, queryVector, topK, map[string]any{
		"author_id": authorID,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}

	return convertResults(results), nil
}

// SearchChunksByText embeds query text and retrieves matching chunks.
func (s *Store) SearchChunksByText(ctx context.Context, query, authorID string, topK int) ([]ScoredChunk, error) {
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return s.SearchChunks(ctx, queryVector, authorID, topK)
}

// IndexAuthorProfile embeds an author's expertise text and stores it
// in the profile collection.
func (s *Store) IndexAuthorProfile(ctx context.Context, author *authors.Author) error {
	vec, err := s.embedder.Embed(ctx, author.ExpertiseText())
	if err != nil {
		return fmt.Errorf("failed to embed profile for %s: %w", author.ID, err)
	}

	err = s.provider.Upsert(ctx, s.profileCollection, author.ID, vec, map[string]any{
		"author_id": author.ID,
		"content":   author.ExpertiseText(),
	})
	if err != nil {
		return fmt.Errorf("failed to index profile for %s: %w", author.ID, err)
	}

	s.mu.Lock()
	s.profileCache[author.ID] = vec
	s.mu.Unlock()
	return nil
}

// IndexAllProfiles indexes expertise profiles for every configured
// author.
func (s *Store) IndexAllProfiles(ctx context.Context) error {
	for _, author := range s.registry.All() {
		if err := s.IndexAuthorProfile(ctx, author); err != nil {
			return err
		}
	}
	return nil
}

// AuthorProfiles returns the expertise vector for every configured
// author. Profiles are served from cache when possible, then from the
// profile collection, and embedded on the fly as a last resort.
func (s *Store) AuthorProfiles(ctx context.Context) (map[string][]float32, error) {
	out := make(map[string][]float32, s.registry.Count())

	var missing []*authors.Author
	s.mu.RLock()
	for _, author := range s.registry.All() {
		if vec, ok := s.profileCache[author.ID]; ok {
			out[author.ID] = vec
		} else {
			missing = append(missing, author)
		}
	}
	s.mu.RUnlock()

	for _, author := range missing {
		vec, err := s.fetchProfile(ctx, author)
		if err != nil {
			return nil, err
		}
		out[author.ID] = vec

		s.mu.Lock()
		s.profileCache[author.ID] = vec
		s.mu.Unlock()
	}

	return out, nil
}

// fetchProfile loads one profile vector from the profile collection,
// embedding and indexing it if the collection has no entry yet.
func (s *Store) fetchProfile(ctx context.Context, author *authors.Author) ([]float32, error) {
	probe := make([]float32, s.embedder.GetDimension())
	if len(probe) > 0 {
		probe[0] = 1
	}

	results, err := s.provider.SearchWithFilter(ctx, s.profileCollection, probe, 1, map[string]any{
		"author_id": author.ID,
	})
	if err == nil && len(results) == 1 && len(results[0].Vector) > 0 {
		return results[0].Vector, nil
	}
	if err != nil {
		slog.Debug("Profile lookup failed, re-embedding", "author", author.ID, "error", err)
	}

	vec, err := s.embedder.Embed(ctx, author.ExpertiseText())
	if err != nil {
		return nil, fmt.Errorf("failed to embed profile for %s: %w", author.ID, err)
	}
	if upsertErr := s.provider.Upsert(ctx, s.profileCollection, author.ID, vec, map[string]any{
		"author_id": author.ID,
		"content":   author.ExpertiseText(),
	}); upsertErr != nil {
		slog.Warn("Failed to persist author profile", "author", author.ID, "error", upsertErr)
	}
	return vec, nil
}

// ClearProfileCache drops all cached profile vectors. Subsequent
// lookups hit the vector store again.
func (s *Store) ClearProfileCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileCache = make(map[string][]float32)
}

// Close releases the underlying vector provider.
func (s *Store) Close() error {
	return s.provider.Close()
}

func convertResults(results []vector.Result) []ScoredChunk {
	chunks := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk := ScoredChunk{Score: float64(r.Score)}
		chunk.ID = r.ID
		chunk.Text = r.Content
		if authorID, ok := r.Metadata["author_id"].(string); ok {
			chunk.AuthorID = authorID
		}
		if source, ok := r.Metadata["source"].(string); ok {
			chunk.Source = source
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
