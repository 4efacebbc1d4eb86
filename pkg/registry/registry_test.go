package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

type testItem struct {
	ID   string
	Name string
}

func TestBaseRegistry_Register(t *testing.T) {
	registry := NewBaseRegistry[testItem]()

	tests := []struct {
		name    string
		item    testItem
		wantErr error
	}{
		{"register valid item", testItem{ID: "a", Name: "first"}, nil},
		{"register item with empty name", testItem{ID: "", Name: "nameless"}, ErrEmptyName},
		{"register duplicate item", testItem{ID: "a", Name: "again"}, ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.item.ID, tt.item)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseRegistry_OrderIsPreserved(t *testing.T) {
	registry := NewBaseRegistry[testItem]()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(id, testItem{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	names := registry.Names()
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	items := registry.List()
	for i := range want {
		if items[i].ID != want[i] {
			t.Fatalf("List()[%d] = %v, want %s", i, items[i], want[i])
		}
	}

	if err := registry.Remove("alpha"); err != nil {
		t.Fatal(err)
	}
	if got := registry.Names(); len(got) != 2 || got[0] != "zeta" || got[1] != "mid" {
		t.Errorf("Names() after remove = %v", got)
	}
}

func TestBaseRegistry_GetAndRemove(t *testing.T) {
	registry := NewBaseRegistry[testItem]()
	_ = registry.Register("x", testItem{ID: "x", Name: "ex"})

	item, ok := registry.Get("x")
	if !ok || item.Name != "ex" {
		t.Errorf("Get(x) = %v, %v", item, ok)
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}

	if err := registry.Remove("missing"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Remove(missing) = %v", err)
	}
}

func TestBaseRegistry_Concurrent(t *testing.T) {
	registry := NewBaseRegistry[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(fmt.Sprintf("item-%d", i), i)
			_ = registry.List()
		}(i)
	}
	wg.Wait()

	if registry.Count() != 50 {
		t.Errorf("Count() = %d, want 50", registry.Count())
	}
}
