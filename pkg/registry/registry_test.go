package registry

import (
	"fmt"
	"sync"
	"testing"
)

func TestBaseRegistry_Register(t *testing.T) {
	r := NewBaseRegistry[string]()

	if err := r.Register("a", "alpha"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := r.Get("a")
	if !ok {
		t.Fatal("Get() should find registered item")
	}
	if got != "alpha" {
		t.Errorf("Get() = %v, want alpha", got)
	}
}

func TestBaseRegistry_RegisterEmptyName(t *testing.T) {
	r := NewBaseRegistry[int]()

	if err := r.Register("", 1); err == nil {
		t.Error("Register() with empty name should fail")
	}
}

func TestBaseRegistry_RegisterDuplicate(t *testing.T) {
	r := NewBaseRegistry[int]()

	if err := r.Register("x", 1); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("x", 2); err == nil {
		t.Error("Register() duplicate should fail")
	}
}

func TestBaseRegistry_Remove(t *testing.T) {
	r := NewBaseRegistry[int]()

	if err := r.Remove("missing"); err == nil {
		t.Error("Remove() missing item should fail")
	}

	if err := r.Register("x", 1); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Remove("x"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := r.Get("x"); ok {
		t.Error("Get() should not find removed item")
	}
}

func TestBaseRegistry_Count(t *testing.T) {
	r := NewBaseRegistry[int]()

	for i := 0; i < 5; i++ {
		if err := r.Register(fmt.Sprintf("item-%d", i), i); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	if r.Count() != 5 {
		t.Errorf("Count() = %d, want 5", r.Count())
	}
	if len(r.Names()) != 5 {
		t.Errorf("Names() len = %d, want 5", len(r.Names()))
	}
}

func TestBaseRegistry_ConcurrentAccess(t *testing.T) {
	r := NewBaseRegistry[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = r.Register(fmt.Sprintf("item-%d", n), n)
			_, _ = r.Get(fmt.Sprintf("item-%d", n))
			_ = r.List()
		}(i)
	}
	wg.Wait()

	if r.Count() != 50 {
		t.Errorf("Count() = %d, want 50", r.Count())
	}
}
