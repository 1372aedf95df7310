// Package debate runs multi-round panel debates between authors,
// including an agentic variant where authors use retrieval and
// analysis tools between rounds.
package debate

import (
	"errors"
	"time"

	"github.com/kadirpekel/agora/pkg/rag"
)

// RoundType classifies a debate round.
type RoundType string

const (
	// RoundInitial is the first round, built from independent responses.
	RoundInitial RoundType = "initial"

	// RoundRebuttal is the second round, where authors first see each
	// other's positions.
	RoundRebuttal RoundType = "rebuttal"

	// RoundResponse covers every round after the rebuttal.
	RoundResponse RoundType = "response"
)

// ErrNoResponses is returned when the opening round produced nothing
// to debate over.
var ErrNoResponses = errors.New("debate: no initial responses")

// Round holds all author responses for one debate round.
type Round struct {
	Number    int
	Type      RoundType
	Responses []*rag.Response
}

// Session is a completed debate: the query, every round, and timing.
type Session struct {
	ID              string
	Query           string
	Rounds          []Round
	TotalTimeMs     int64
	SelectionMethod string
	Timestamp       time.Time
}

// PanelResponse is a single-shot panel answer: one response per
// author, ordered by relevance.
type PanelResponse struct {
	ID              string
	Query           string
	Authors         []*rag.Response
	TotalTimeMs     int64
	SelectionMethod string
	Timestamp       time.Time
}

// AuthorCount reports the number of authors on the panel.
func (p *PanelResponse) AuthorCount() int {
	return len(p.Authors)
}

// roundTypeFor maps a round number to its type.
func roundTypeFor(round int) RoundType {
	switch round {
	case 1:
		return RoundInitial
	case 2:
		return RoundRebuttal
	default:
		return RoundResponse
	}
}
