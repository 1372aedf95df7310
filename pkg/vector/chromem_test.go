package vector

import (
	"context"
	"testing"

	"github.com/kadirpekel/agora/pkg/config"
)

func TestChromemUpsertAndSearch(t *testing.T) {
	provider, err := NewChromemProvider(ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}
	defer provider.Close()

	ctx := context.Background()
	docs := []struct {
		id     string
		vector []float32
		meta   map[string]any
	}{
		{"doc-1", []float32{1, 0, 0}, map[string]any{"content": "first text", "author_id": "marx"}},
		{"doc-2", []float32{0, 1, 0}, map[string]any{"content": "second text", "author_id": "whitman"}},
		{"doc-3", []float32{0.9, 0.1, 0}, map[string]any{"content": "third text", "author_id": "marx"}},
	}
	for _, d := range docs {
		if err := provider.Upsert(ctx, "works", d.id, d.vector, d.meta); err != nil {
			t.Fatalf("Upsert(%s) error = %v", d.id, err)
		}
	}

	results, err := provider.Search(ctx, "works", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != "doc-1" {
		t.Errorf("results[0].ID = %q, want doc-1", results[0].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by descending score")
	}
	if results[0].Content != "first text" {
		t.Errorf("results[0].Content = %q", results[0].Content)
	}
	if len(results[0].Vector) != 3 {
		t.Errorf("results[0].Vector not returned: %v", results[0].Vector)
	}
}

func TestChromemSearchWithFilter(t *testing.T) {
	provider, err := NewChromemProvider(ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}
	defer provider.Close()

	ctx := context.Background()
	provider.Upsert(ctx, "works", "m-1", []float32{1, 0}, map[string]any{"author_id": "marx", "content": "capital"})
	provider.Upsert(ctx, "works", "w-1", []float32{1, 0}, map[string]any{"author_id": "whitman", "content": "leaves"})

	results, err := provider.SearchWithFilter(ctx, "works", []float32{1, 0}, 5, map[string]any{"author_id": "marx"})
	if err != nil {
		t.Fatalf("SearchWithFilter() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].ID != "m-1" {
		t.Errorf("results[0].ID = %q, want m-1", results[0].ID)
	}
}

func TestChromemSearchEmptyCollection(t *testing.T) {
	provider, err := NewChromemProvider(ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}
	defer provider.Close()

	results, err := provider.Search(context.Background(), "empty", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search() on empty collection error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestChromemDelete(t *testing.T) {
	provider, err := NewChromemProvider(ChromemConfig{})
	if err != nil {
		t.Fatalf("NewChromemProvider() error = %v", err)
	}
	defer provider.Close()

	ctx := context.Background()
	provider.Upsert(ctx, "works", "doc-1", []float32{1, 0}, map[string]any{"content": "x"})

	if err := provider.Delete(ctx, "works", "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	results, err := provider.Search(ctx, "works", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d after delete, want 0", len(results))
	}
}

func TestNewProviderFromConfig(t *testing.T) {
	if _, err := NewProviderFromConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
	if _, err := NewProviderFromConfig(&config.VectorStoreConfig{Type: "unknown"}); err == nil {
		t.Error("unknown type should fail")
	}

	provider, err := NewProviderFromConfig(&config.VectorStoreConfig{Type: "chromem"})
	if err != nil {
		t.Fatalf("NewProviderFromConfig() error = %v", err)
	}
	if provider.Name() != "chromem" {
		t.Errorf("Name() = %q, want chromem", provider.Name())
	}
}
