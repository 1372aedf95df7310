package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/corpus"
	"github.com/kadirpekel/agora/pkg/embedders"
)

// Router selects relevant authors for a query by comparing the query
// embedding against cached author expertise profiles.
type Router struct {
	store *corpus.Store

	mu                 sync.RWMutex
	relevanceThreshold float64
	minAuthors         int
	maxAuthors         int
	fallbackToTop      bool
}

// NewRouter creates a semantic router over the given corpus store.
func NewRouter(store *corpus.Store, cfg *config.RoutingConfig) *Router {
	fallback := true
	if cfg.FallbackToTop != nil {
		fallback = *cfg.FallbackToTop
	}
	slog.Info("Initialized semantic router",
		"threshold", cfg.RelevanceThreshold,
		"min_authors", cfg.MinAuthors,
		"max_authors", cfg.MaxAuthors)
	return &Router{
		store:              store,
		relevanceThreshold: cfg.RelevanceThreshold,
		minAuthors:         cfg.MinAuthors,
		maxAuthors:         cfg.MaxAuthors,
		fallbackToTop:      fallback,
	}
}

// SelectAuthors chooses the panel for a query. Explicitly specified
// authors short-circuit semantic selection.
func (r *Router) SelectAuthors(ctx context.Context, query *Query) (*AuthorSelectionResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if len(query.SpecifiedAuthors) > 0 {
		return r.handleSpecifiedAuthors(ctx, query)
	}
	return r.semanticSelection(ctx, query)
}

func (r *Router) handleSpecifiedAuthors(ctx context.Context, query *Query) (*AuthorSelectionResult, error) {
	queryVector, profiles, err := r.embedAndLoad(ctx, query.Text)
	if err != nil {
		return nil, err
	}

	similarityScores := make(map[string]float64)
	selected := make([]string, 0, len(query.SpecifiedAuthors))
	for _, authorID := range query.SpecifiedAuthors {
		profile, ok := profiles[authorID]
		if !ok {
			slog.Warn("Specified author not found", "author", authorID)
			continue
		}
		similarityScores[authorID] = embedders.CosineSimilarity(queryVector, profile)
		selected = append(selected, authorID)
	}

	return &AuthorSelectionResult{
		SelectedAuthors:  selected,
		SimilarityScores: similarityScores,
		Method:           MethodSpecified,
		QueryVector:      queryVector,
		ThresholdUsed:    r.threshold(query),
	}, nil
}

func (r *Router) semanticSelection(ctx context.Context, query *Query) (*AuthorSelectionResult, error) {
	queryVector, profiles, err := r.embedAndLoad(ctx, query.Text)
	if err != nil {
		return nil, err
	}

	similarityScores := make(map[string]float64, len(profiles))
	for authorID, profile := range profiles {
		similarityScores[authorID] = embedders.CosineSimilarity(queryVector, profile)
	}
	slog.Debug("Calculated similarities", "authors", len(similarityScores))

	threshold := r.threshold(query)
	minAuthors, maxAuthors := r.bounds(query)

	aboveThreshold := make([]string, 0, len(similarityScores))
	for authorID, score := range similarityScores {
		if score >= threshold {
			aboveThreshold = append(aboveThreshold, authorID)
		}
	}
	sortByScore(aboveThreshold, similarityScores)

	var selected []string
	var method SelectionMethod

	switch {
	case len(aboveThreshold) >= minAuthors:
		selected = aboveThreshold
		if len(selected) > maxAuthors {
			selected = selected[:maxAuthors]
		}
		method = MethodThreshold
		slog.Info("Selected authors using threshold",
			"count", len(selected),
			"threshold", threshold)

	case r.fallback():
		k := minAuthors
		if len(aboveThreshold) > k {
			k = len(aboveThreshold)
		}
		ranked := make([]string, 0, len(similarityScores))
		for authorID := range similarityScores {
			ranked = append(ranked, authorID)
		}
		sortByScore(ranked, similarityScores)
		if k > len(ranked) {
			k = len(ranked)
		}
		selected = ranked[:k]
		method = MethodFallbackTopK
		slog.Warn("Too few authors above threshold, falling back to top scorers",
			"above_threshold", len(aboveThreshold),
			"selected", len(selected))

	default:
		selected = aboveThreshold
		method = MethodThresholdPartial
		slog.Warn("Too few authors above threshold",
			"selected", len(selected),
			"min_authors", minAuthors)
	}

	return &AuthorSelectionResult{
		SelectedAuthors:  selected,
		SimilarityScores: similarityScores,
		Method:           method,
		QueryVector:      queryVector,
		ThresholdUsed:    threshold,
	}, nil
}

// Rankings returns every author ordered by relevance to the query.
func (r *Router) Rankings(ctx context.Context, query *Query) ([]AuthorRanking, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	queryVector, profiles, err := r.embedAndLoad(ctx, query.Text)
	if err != nil {
		return nil, err
	}

	rankings := make([]AuthorRanking, 0, len(profiles))
	for authorID, profile := range profiles {
		rankings = append(rankings, AuthorRanking{
			AuthorID: authorID,
			Score:    embedders.CosineSimilarity(queryVector, profile),
		})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].Score != rankings[j].Score {
			return rankings[i].Score > rankings[j].Score
		}
		return rankings[i].AuthorID < rankings[j].AuthorID
	})
	return rankings, nil
}

// UpdateThreshold changes the default relevance threshold.
func (r *Router) UpdateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0")
	}
	r.mu.Lock()
	r.relevanceThreshold = threshold
	r.mu.Unlock()
	slog.Info("Updated relevance threshold", "threshold", threshold)
	return nil
}

// ClearCache drops cached author profiles so the next selection
// reloads them from the vector store.
func (r *Router) ClearCache() {
	r.store.ClearProfileCache()
	slog.Info("Cleared author profile cache")
}

func (r *Router) embedAndLoad(ctx context.Context, text string) ([]float32, map[string][]float32, error) {
	queryVector, err := r.store.Embedder().Embed(ctx, text)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed query: %w", err)
	}

	profiles, err := r.store.AuthorProfiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load author profiles: %w", err)
	}
	return queryVector, profiles, nil
}

func (r *Router) threshold(query *Query) float64 {
	if query.RelevanceThreshold != nil {
		return *query.RelevanceThreshold
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.relevanceThreshold
}

func (r *Router) bounds(query *Query) (int, int) {
	minAuthors, maxAuthors := r.minAuthors, r.maxAuthors
	if query.MinAuthors > 0 {
		minAuthors = query.MinAuthors
	}
	if query.MaxAuthors > 0 {
		maxAuthors = query.MaxAuthors
	}
	return minAuthors, maxAuthors
}

func (r *Router) fallback() bool {
	return r.fallbackToTop
}

// sortByScore orders author IDs by descending score, breaking ties by
// ID so selection is deterministic.
func sortByScore(ids []string, scores map[string]float64) {
	sort.SliceStable(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
}
