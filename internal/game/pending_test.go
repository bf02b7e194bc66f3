package game

import "testing"

func pe(id string, cat PendingCategory) *PendingEffect {
	return &PendingEffect{ID: id, Category: cat, PlayerID: "p"}
}

func TestPendingPriorityOrder(t *testing.T) {
	ps := NewPendingSet()
	ps.Push(pe("pregame", PendingPreGame))
	ps.Push(pe("choice", PendingChoice))
	ps.Push(pe("counter", PendingCounter))
	ps.Push(pe("activate", PendingActivate))
	ps.Push(pe("event", PendingEvent))

	want := []string{"activate", "event", "counter", "choice", "pregame"}
	for _, id := range want {
		next := ps.Next()
		if next == nil || next.ID != id {
			t.Fatalf("expected %s next, got %+v", id, next)
		}
		ps.Remove(next.ID)
	}
	if !ps.Empty() {
		t.Fatal("set should be drained")
	}
}

func TestPendingFIFOWithinCategory(t *testing.T) {
	ps := NewPendingSet()
	ps.Push(pe("first", PendingEvent))
	ps.Push(pe("second", PendingEvent))
	ps.Push(pe("third", PendingEvent))

	for _, id := range []string{"first", "second", "third"} {
		next := ps.Next()
		if next.ID != id {
			t.Fatalf("FIFO order broken: expected %s, got %s", id, next.ID)
		}
		ps.Remove(next.ID)
	}
}

func TestPendingHigherPriorityPreempts(t *testing.T) {
	ps := NewPendingSet()
	ps.Push(pe("choice", PendingChoice))
	if ps.Next().ID != "choice" {
		t.Fatal("choice should be outstanding")
	}

	// A counter decision queued later still outranks the waiting choice.
	ps.Push(pe("counter", PendingCounter))
	if ps.Next().ID != "counter" {
		t.Fatal("counter must preempt the queued choice")
	}
}

func TestPendingRemoveAndCount(t *testing.T) {
	ps := NewPendingSet()
	if got := ps.Remove("missing"); got != nil {
		t.Fatalf("removing an absent id should return nil, got %+v", got)
	}

	ps.Push(pe("a", PendingEvent))
	ps.Push(pe("b", PendingChoice))
	if got := ps.Count(); got != 2 {
		t.Fatalf("count: got %d, want 2", got)
	}

	removed := ps.Remove("b")
	if removed == nil || removed.ID != "b" {
		t.Fatalf("remove should return the consumed effect, got %+v", removed)
	}
	if got := ps.Count(); got != 1 {
		t.Fatalf("count after remove: got %d, want 1", got)
	}

	all := ps.All()
	if len(all) != 1 || all[0].ID != "a" {
		t.Fatalf("All: got %+v", all)
	}
}
