package store

import (
	"context"
	"errors"
	"testing"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	shelf := &Shelf{
		Name:  "Living room",
		Owner: "mara",
		Items: []catalog.Item{{ID: "a", Position: []any{0.1, 0.5}}},
	}
	if err := s.Put(ctx, shelf); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if shelf.ID == "" {
		t.Fatal("Put should assign an ID")
	}
	if shelf.CreatedAt.IsZero() || shelf.UpdatedAt.IsZero() {
		t.Error("Put should set timestamps")
	}

	got, err := s.Get(ctx, shelf.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Living room" || len(got.Items) != 1 {
		t.Errorf("unexpected shelf: %+v", got)
	}

	// Returned shelf is a copy; mutating it must not affect the store.
	got.Name = "mutated"
	again, _ := s.Get(ctx, shelf.ID)
	if again.Name != "Living room" {
		t.Error("Get should return a copy")
	}
}

func TestMemoryStore_PutPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	shelf := &Shelf{Name: "v1"}
	if err := s.Put(ctx, shelf); err != nil {
		t.Fatalf("Put: %v", err)
	}
	created := shelf.CreatedAt

	shelf.Name = "v2"
	if err := s.Put(ctx, shelf); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if !shelf.CreatedAt.Equal(created) {
		t.Error("replace should preserve CreatedAt")
	}
}

func TestMemoryStore_SaveLayout(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	shelf := &Shelf{Name: "shelf"}
	if err := s.Put(ctx, shelf); err != nil {
		t.Fatalf("Put: %v", err)
	}

	items := []layout.Item{{ID: "a", X: 0.5, Y: 1.0, Title: "Dune"}}
	if err := s.SaveLayout(ctx, shelf.ID, items); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}

	got, _ := s.Get(ctx, shelf.ID)
	if len(got.Layout) != 1 || got.Layout[0].ID != "a" {
		t.Errorf("layout not stored: %+v", got.Layout)
	}

	if err := s.SaveLayout(ctx, "missing", items); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	shelf := &Shelf{}
	if err := s.Put(ctx, shelf); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, shelf.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, shelf.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, shelf.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, sh := range []*Shelf{
		{ID: "b", Owner: "mara"},
		{ID: "a", Owner: "mara"},
		{ID: "c", Owner: "theo"},
	} {
		if err := s.Put(ctx, sh); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" {
		t.Errorf("unexpected list: %+v", all)
	}

	mine, err := s.List(ctx, "mara")
	if err != nil {
		t.Fatalf("List owner: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("len = %d, want 2", len(mine))
	}
}
