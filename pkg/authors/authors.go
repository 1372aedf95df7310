package authors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/agora/pkg/config"
)

// Voice describes the stylistic characteristics of an author.
type Voice struct {
	Tone        string
	Vocabulary  string
	Perspective string
	StyleNotes  string
}

// Author is a member of the panel. Authors are immutable once loaded.
type Author struct {
	ID               string
	Name             string
	ExpertiseDomains []string
	Voice            Voice
	SystemPrompt     string
	Bio              string
	Works            []string
}

// ExpertiseText renders the expertise domains as a single string
// suitable for embedding into a profile vector.
func (a *Author) ExpertiseText() string {
	parts := make([]string, 0, len(a.ExpertiseDomains)+1)
	if a.Bio != "" {
		parts = append(parts, strings.TrimSuffix(a.Bio, "."))
	}
	parts = append(parts, a.ExpertiseDomains...)
	return strings.Join(parts, ". ")
}

// Registry holds the configured panel of authors. It is read-only
// after construction, so lookups need no locking.
type Registry struct {
	byID  map[string]*Author
	order []string
}

// NewRegistryFromConfig builds the author registry from configuration.
func NewRegistryFromConfig(cfgs []config.AuthorConfig) (*Registry, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("at least one author is required")
	}

	r := &Registry{
		byID:  make(map[string]*Author, len(cfgs)),
		order: make([]string, 0, len(cfgs)),
	}
	for i := range cfgs {
		cfg := &cfgs[i]
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate author id: %s", cfg.ID)
		}
		r.byID[cfg.ID] = &Author{
			ID:               cfg.ID,
			Name:             cfg.Name,
			ExpertiseDomains: append([]string(nil), cfg.ExpertiseDomains...),
			Voice: Voice{
				Tone:        cfg.Voice.Tone,
				Vocabulary:  cfg.Voice.Vocabulary,
				Perspective: cfg.Voice.Perspective,
				StyleNotes:  cfg.Voice.StyleNotes,
			},
			SystemPrompt: cfg.SystemPrompt,
			Bio:          cfg.Bio,
			Works:        append([]string(nil), cfg.Works...),
		}
		r.order = append(r.order, cfg.ID)
	}
	return r, nil
}

// Get returns the author with the given ID.
func (r *Registry) Get(id string) (*Author, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns all author IDs in configuration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// All returns all authors in configuration order.
func (r *Registry) All() []*Author {
	out := make([]*Author, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Count returns the number of authors in the panel.
func (r *Registry) Count() int {
	return len(r.byID)
}

// Names returns a sorted list of author display names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byID))
	for _, a := range r.byID {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}
