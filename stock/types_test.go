package stock

import "testing"

func TestStockInsertionOrder(t *testing.T) {
	s := NewStock()
	s.Add(fp("b", square(0, 0, 1, 1)))
	s.Add(fp("a", square(2, 0, 3, 1)))
	s.Add(fp("c", square(4, 0, 5, 1)))

	ids := s.IDs()
	want := []string{"b", "a", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}

	// Re-adding keeps the original position.
	s.Add(fp("a", square(2, 0, 3, 1)))
	ids = s.IDs()
	if ids[1] != "a" {
		t.Errorf("re-added footprint moved: %v", ids)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestStockDrop(t *testing.T) {
	s := NewStock()
	s.Add(fp("a", square(0, 0, 1, 1)))
	s.Add(fp("b", square(2, 0, 3, 1)))

	s.Drop("a", DropDegenerate)
	if _, ok := s.Get("a"); ok {
		t.Error("dropped footprint still retrievable")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	ids := s.IDs()
	if len(ids) != 1 || ids[0] != "b" {
		t.Errorf("IDs() = %v, want [b]", ids)
	}

	// Dropping twice records once.
	s.Drop("a", DropHoleCascade)
	if len(s.Dropped()) != 1 {
		t.Errorf("Dropped() = %v, want a single record", s.Dropped())
	}
	if s.Dropped()[0].Reason != DropDegenerate {
		t.Errorf("drop reason = %v, want degenerate", s.Dropped()[0].Reason)
	}
}

func TestFootprintRingAccessors(t *testing.T) {
	f := fp("a", square(0, 0, 10, 10), square(2, 2, 4, 4))
	if f.Outer() == nil {
		t.Fatal("Outer() nil for a valid polygon")
	}
	if !f.HasHoles() || len(f.Holes()) != 1 {
		t.Errorf("hole accessors wrong: HasHoles=%v Holes=%d", f.HasHoles(), len(f.Holes()))
	}
	plain := fp("b", square(0, 0, 1, 1))
	if plain.HasHoles() || plain.Holes() != nil {
		t.Error("hole accessors wrong for a plain polygon")
	}
}

func TestDropReasonString(t *testing.T) {
	if DropDegenerate.String() != "degenerate" {
		t.Errorf("DropDegenerate = %q", DropDegenerate.String())
	}
	if DropHoleCascade.String() != "hole-cascade" {
		t.Errorf("DropHoleCascade = %q", DropHoleCascade.String())
	}
	if DropReason(99).String() != "unknown" {
		t.Errorf("unknown reason = %q", DropReason(99).String())
	}
}
