package routing

import "fmt"

// SelectionMethod records how the panel was chosen for a query.
type SelectionMethod string

const (
	// MethodSpecified means the caller named the authors explicitly.
	MethodSpecified SelectionMethod = "specified"

	// MethodThreshold means enough authors cleared the relevance
	// threshold.
	MethodThreshold SelectionMethod = "threshold"

	// MethodFallbackTopK means too few authors cleared the threshold
	// and the router fell back to the top scorers.
	MethodFallbackTopK SelectionMethod = "fallback_top_k"

	// MethodThresholdPartial means too few authors cleared the
	// threshold and fallback was disabled.
	MethodThresholdPartial SelectionMethod = "threshold_partial"
)

// Query is a user question plus routing constraints. Zero-valued
// constraints inherit the router's configured defaults.
type Query struct {
	// Text is the question to route.
	Text string

	// SpecifiedAuthors bypasses semantic selection when non-empty.
	SpecifiedAuthors []string

	// RelevanceThreshold overrides the router threshold when non-nil.
	RelevanceThreshold *float64

	// MinAuthors overrides the router minimum when positive.
	MinAuthors int

	// MaxAuthors overrides the router maximum when positive.
	MaxAuthors int
}

// Validate checks the query constraints.
func (q *Query) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("query text cannot be empty")
	}
	if q.RelevanceThreshold != nil && (*q.RelevanceThreshold < 0 || *q.RelevanceThreshold > 1) {
		return fmt.Errorf("relevance threshold must be between 0.0 and 1.0")
	}
	if q.MinAuthors < 0 || q.MaxAuthors < 0 {
		return fmt.Errorf("author constraints must be non-negative")
	}
	if q.MinAuthors > 0 && q.MaxAuthors > 0 && q.MinAuthors > q.MaxAuthors {
		return fmt.Errorf("min_authors cannot exceed max_authors")
	}
	return nil
}

// AuthorSelectionResult is the outcome of routing one query.
type AuthorSelectionResult struct {
	// SelectedAuthors are the chosen author IDs, ordered by
	// descending relevance.
	SelectedAuthors []string

	// SimilarityScores holds the cosine similarity for every author
	// that was scored.
	SimilarityScores map[string]float64

	// Method records how the selection was made.
	Method SelectionMethod

	// QueryVector is the query embedding, reusable for retrieval.
	QueryVector []float32

	// ThresholdUsed is the relevance threshold in effect.
	ThresholdUsed float64
}

// AuthorRanking pairs an author with its relevance score.
type AuthorRanking struct {
	AuthorID string
	Score    float64
}
