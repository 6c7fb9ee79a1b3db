package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContextStore_AddDefaults(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestContextStore(t)

	id, err := s.Add(ctx, &Context{Key: "deploy", Title: "Deploy notes", Content: "Use the blue/green script"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got := s.All()[0]
	if got.ID != id || got.Priority != 1 || got.Category != DefaultCategory {
		t.Errorf("unexpected defaults: id=%q priority=%d category=%q", got.ID, got.Priority, got.Category)
	}
}

func TestContextStore_GetByKey(t *testing.T) {
	ctx := context.Background()
	s, b := newTestContextStore(t)

	first, _ := s.Add(ctx, &Context{Key: "db", Title: "Primary database"})
	s.Add(ctx, &Context{Key: "db", Title: "Replica"})
	other, _ := s.Add(ctx, &Context{Key: "cache", Title: "Redis"})

	rec, ok, err := s.GetByKey(ctx, "db")
	if err != nil || !ok {
		t.Fatalf("GetByKey failed: ok=%v err=%v", ok, err)
	}
	if rec.ID != first {
		t.Errorf("Expected the earliest 'db' context %s, got %s", first, rec.ID)
	}
	if rec.UsageCount != 1 || rec.LastUsed == nil {
		t.Errorf("Expected usage to be recorded, got %d %v", rec.UsageCount, rec.LastUsed)
	}

	t.Run("ByIDSharesCounter", func(t *testing.T) {
		rec, _, _ := s.Get(ctx, first)
		if rec.UsageCount != 2 {
			t.Errorf("Expected usage 2, got %d", rec.UsageCount)
		}
	})

	t.Run("KeyIsNotID", func(t *testing.T) {
		if _, ok, _ := s.GetByKey(ctx, other); ok {
			t.Error("Expected lookup by id through GetByKey to miss")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		saves := b.saveCount()
		rec, ok, err := s.GetByKey(ctx, "nope")
		if rec != nil || ok || err != nil {
			t.Errorf("Expected (nil, false, nil), got (%v, %v, %v)", rec, ok, err)
		}
		if b.saveCount() != saves {
			t.Error("Expected no write for a missing key")
		}
	})

	t.Run("WriteFailure", func(t *testing.T) {
		b.failSaves(errDiskFull)
		defer b.failSaves(nil)
		_, ok, err := s.GetByKey(ctx, "cache")
		if ok || !errors.Is(err, ErrPersist) {
			t.Errorf("Expected ErrPersist, got ok=%v err=%v", ok, err)
		}
	})
}

func TestContextStore_Update(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestContextStore(t)
	id, _ := s.Add(ctx, &Context{Key: "k", Title: "old", Content: "body", Priority: 2})

	title, priority := "new", 4
	ok, err := s.Update(ctx, id, ContextPatch{Title: &title, Priority: &priority})
	if err != nil || !ok {
		t.Fatalf("Update failed: ok=%v err=%v", ok, err)
	}
	got := s.All()[0]
	if got.Title != "new" || got.Priority != 4 || got.Content != "body" || got.Key != "k" {
		t.Errorf("unexpected record after update: %+v", got)
	}
}

func TestContextStore_UpdateReappliesDefaults(t *testing.T) {
	ctx := context.Background()
	s, b := newTestContextStore(t)
	id, _ := s.Add(ctx, &Context{Key: "k", Priority: 4, Header: Header{Category: "ops"}})

	empty, zero := "", 0
	ok, err := s.Update(ctx, id, ContextPatch{Category: &empty, Priority: &zero})
	if err != nil || !ok {
		t.Fatalf("Update failed: ok=%v err=%v", ok, err)
	}
	got := s.All()[0]
	if got.Category != DefaultCategory || got.Priority != 1 {
		t.Errorf("Expected category %q and priority 1, got %q and %d", DefaultCategory, got.Category, got.Priority)
	}
	if saved := b.snapshot()[0]; saved.Category != DefaultCategory || saved.Priority != 1 {
		t.Errorf("Expected the snapshot to hold the defaulted values, got %q and %d", saved.Category, saved.Priority)
	}
}

func TestContextStore_ListByCategory(t *testing.T) {
	mk := func(id string, priority, usage int) *Context {
		return &Context{
			Header:   Header{ID: id, Category: "infra", Tags: []string{}, CreatedAt: epoch, UsageCount: usage},
			Key:      id,
			Priority: priority,
		}
	}
	s, _ := newTestContextStore(t, mk("a", 1, 9), mk("b", 4, 0), mk("c", 4, 2), mk("d", 2, 1))

	if got := ids(s.ListByCategory("infra")); !cmp.Equal(got, []string{"c", "b", "d", "a"}) {
		t.Errorf("ListByCategory(infra) = %v, want [c b d a]", got)
	}
}

func TestContextStore_HighPriority(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestContextStore(t)
	s.Add(ctx, &Context{Key: "low", Priority: 2})
	mid, _ := s.Add(ctx, &Context{Key: "mid", Priority: 3})
	top, _ := s.Add(ctx, &Context{Key: "top", Priority: 5})
	s.Add(ctx, &Context{Key: "unset"})

	if got := ids(s.HighPriority(DefaultLimit)); !cmp.Equal(got, []string{top, mid}) {
		t.Errorf("HighPriority() = %v, want [%s %s]", got, top, mid)
	}
	if got := ids(s.HighPriority(1)); !cmp.Equal(got, []string{top}) {
		t.Errorf("HighPriority(1) = %v, want [%s]", got, top)
	}
	if got := s.HighPriority(0); len(got) != 0 {
		t.Errorf("Expected empty result for limit 0, got %d", len(got))
	}
}

func TestContextStore_Keys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestContextStore(t)
	for _, k := range []string{"zeta", "alpha", "zeta", "mid"} {
		s.Add(ctx, &Context{Key: k})
	}
	if got := s.Keys(); !cmp.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestHeader_Touch(t *testing.T) {
	var h Header
	h.Touch(epoch)
	h.Touch(epoch.Add(1))
	if h.UsageCount != 2 {
		t.Errorf("Expected usage 2, got %d", h.UsageCount)
	}
	if h.LastUsed == nil || !h.LastUsed.Equal(epoch.Add(1)) {
		t.Errorf("Expected lastUsed %v, got %v", epoch.Add(1), h.LastUsed)
	}
}
