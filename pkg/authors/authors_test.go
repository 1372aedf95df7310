package authors

import (
	"testing"

	"github.com/kadirpekel/agora/pkg/config"
)

func testAuthorConfigs() []config.AuthorConfig {
	return []config.AuthorConfig{
		{
			ID:               "marx",
			Name:             "Karl Marx",
			ExpertiseDomains: []string{"economics", "class struggle", "historical materialism"},
			SystemPrompt:     "You are Karl Marx.",
			Bio:              "German philosopher and economist.",
			Works:            []string{"Das Kapital", "The Communist Manifesto"},
		},
		{
			ID:               "whitman",
			Name:             "Walt Whitman",
			ExpertiseDomains: []string{"poetry", "nature", "democracy"},
			SystemPrompt:     "You are Walt Whitman.",
		},
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	r, err := NewRegistryFromConfig(testAuthorConfigs())
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}

	marx, ok := r.Get("marx")
	if !ok {
		t.Fatal("Get(marx) not found")
	}
	if marx.Name != "Karl Marx" {
		t.Errorf("Name = %q", marx.Name)
	}
	if len(marx.Works) != 2 {
		t.Errorf("len(Works) = %d, want 2", len(marx.Works))
	}

	if _, ok := r.Get("nietzsche"); ok {
		t.Error("Get(nietzsche) should not be found")
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	r, err := NewRegistryFromConfig(testAuthorConfigs())
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}
	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "marx" || ids[1] != "whitman" {
		t.Errorf("IDs() = %v, want [marx whitman]", ids)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	cfgs := testAuthorConfigs()
	cfgs = append(cfgs, cfgs[0])
	if _, err := NewRegistryFromConfig(cfgs); err == nil {
		t.Error("duplicate author ids should fail")
	}
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	if _, err := NewRegistryFromConfig(nil); err == nil {
		t.Error("empty author list should fail")
	}
}

func TestExpertiseText(t *testing.T) {
	r, _ := NewRegistryFromConfig(testAuthorConfigs())
	marx, _ := r.Get("marx")
	text := marx.ExpertiseText()
	if text == "" {
		t.Fatal("ExpertiseText() is empty")
	}
	// bio comes first, then domains
	want := "German philosopher and economist. economics. class struggle. historical materialism"
	if text != want {
		t.Errorf("ExpertiseText() = %q, want %q", text, want)
	}
}
