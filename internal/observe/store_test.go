package observe

import "testing"

func TestTransactionNotifiesOnce(t *testing.T) {
	s := New()
	var changes []Change
	s.Observe(func(c Change) { changes = append(changes, c) })

	s.Transaction(func() {
		s.MarkDirty("shapes")
		s.Transaction(func() {
			s.MarkDirty("selection", "shapes")
		})
		if len(changes) != 0 {
			t.Errorf("expected no notification inside the transaction, got %d", len(changes))
		}
	})

	if len(changes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(changes))
	}
	if len(changes[0].Keys) != 2 || !changes[0].Has("shapes") || !changes[0].Has("selection") {
		t.Errorf("expected keys [selection shapes], got %v", changes[0].Keys)
	}
}

func TestMarkDirtyOutsideTransaction(t *testing.T) {
	s := New()
	count := 0
	cancel := s.Observe(func(Change) { count++ })

	s.MarkDirty("a")
	s.MarkDirty("b")
	if count != 2 {
		t.Errorf("expected 2 notifications, got %d", count)
	}

	cancel()
	s.MarkDirty("c")
	if count != 2 {
		t.Errorf("expected no notification after cancel, got %d", count)
	}
}

func TestObserverMarksMore(t *testing.T) {
	s := New()
	var seen []string
	s.Observe(func(c Change) {
		seen = append(seen, c.Keys...)
		if c.Has("a") {
			s.MarkDirty("b")
		}
	})

	s.MarkDirty("a")
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("expected [a b], got %v", seen)
	}
}

func TestEndWithoutBegin(t *testing.T) {
	s := New()
	s.End()
	if s.InTransaction() {
		t.Error("unbalanced End should not open a transaction")
	}
}
