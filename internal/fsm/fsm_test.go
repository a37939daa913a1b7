package fsm

import (
	"errors"
	"testing"
)

type recorder struct{ log []string }

func (r *recorder) leaf(id string) *Node[string] {
	return NewNode[string](id, "", Behavior[string]{
		Enter: func(t Transition) { r.log = append(r.log, id+".enter<"+t.From) },
		Exit:  func(t Transition) { r.log = append(r.log, id+".exit>"+t.To) },
		On: map[Kind]func(string){
			PointerDown: func(e string) { r.log = append(r.log, id+".down:"+e) },
		},
	})
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTransitionOrder(t *testing.T) {
	r := &recorder{}
	root := NewNode[string]("root", "a", Behavior[string]{}, r.leaf("a"), r.leaf("b"))
	root.Start(nil)
	r.log = nil

	root.Transition("b", nil)
	want := []string{"a.exit>b", "b.enter<a"}
	if !equal(r.log, want) {
		t.Errorf("expected %v, got %v", want, r.log)
	}
	if root.Current().ID() != "b" {
		t.Errorf("expected current b, got %s", root.Current().ID())
	}
}

func TestTransitionRunsInOneBatch(t *testing.T) {
	r := &recorder{}
	root := NewNode[string]("root", "a", Behavior[string]{}, r.leaf("a"), r.leaf("b"))
	batches := 0
	depth := 0
	root.SetBatch(func(fn func()) {
		if depth == 0 {
			batches++
		}
		depth++
		defer func() { depth-- }()
		fn()
	})
	root.Start(nil)
	batches = 0

	root.Transition("b", nil)
	if batches != 1 {
		t.Errorf("expected 1 outer batch, got %d", batches)
	}
}

func TestCascadeIntoInitial(t *testing.T) {
	r := &recorder{}
	tool := NewNode[string]("tool", "idle", Behavior[string]{}, r.leaf("idle"), r.leaf("busy"))
	root := NewNode[string]("root", "other", Behavior[string]{}, r.leaf("other"), tool)
	root.Start(nil)

	root.Transition("tool", nil)
	if !root.IsIn("tool.idle") {
		t.Fatalf("expected tool.idle, got %s", root.ActivePath())
	}

	tool.Transition("busy", nil)
	root.Transition("other", nil)
	if tool.Child("busy").Active() {
		t.Error("leaving the tool should deactivate its child")
	}

	// re-entering resets to the initial child
	root.Transition("tool", nil)
	if !root.IsIn("tool.idle") {
		t.Errorf("expected tool.idle after re-entry, got %s", root.ActivePath())
	}
}

func TestUnknownTransition(t *testing.T) {
	root := NewNode[string]("root", "", Behavior[string]{}, NewNode[string]("a", "", Behavior[string]{}))

	err := root.TryTransition("missing", nil)
	var use *UnknownStateError
	if !errors.As(err, &use) || use.ID != "missing" {
		t.Fatalf("expected UnknownStateError for missing, got %v", err)
	}
	if !errors.Is(err, ErrUnknownState) {
		t.Error("expected errors.Is ErrUnknownState")
	}

	defer func() {
		if recover() == nil {
			t.Error("Transition to an unknown id should panic")
		}
	}()
	root.Transition("missing", nil)
}

func TestDispatchTopDown(t *testing.T) {
	var log []string
	leaf := NewNode[string]("leaf", "", Behavior[string]{
		On: map[Kind]func(string){
			PointerDown: func(e string) { log = append(log, "leaf") },
		},
	})
	mid := NewNode[string]("mid", "", Behavior[string]{
		On: map[Kind]func(string){
			PointerDown: func(e string) { log = append(log, "mid") },
		},
	}, leaf)
	root := NewNode[string]("root", "", Behavior[string]{
		On: map[Kind]func(string){
			PointerDown: func(e string) { log = append(log, "root") },
		},
	}, mid)
	root.Start(nil)

	root.Dispatch(PointerDown, "x")
	want := []string{"root", "mid", "leaf"}
	if !equal(log, want) {
		t.Errorf("expected %v, got %v", want, log)
	}
}

func TestHandlerTransitionReceivesEvent(t *testing.T) {
	r := &recorder{}
	var root *Node[string]
	a := NewNode[string]("a", "", Behavior[string]{})
	root = NewNode[string]("root", "a", Behavior[string]{
		On: map[Kind]func(string){
			PointerDown: func(string) { root.Transition("b", nil) },
		},
	}, a, r.leaf("b"))
	root.Start(nil)
	r.log = nil

	root.Dispatch(PointerDown, "e")
	want := []string{"b.enter<a", "b.down:e"}
	if !equal(r.log, want) {
		t.Errorf("expected %v, got %v", want, r.log)
	}
}

func TestDisposablesRunOnExit(t *testing.T) {
	r := &recorder{}
	a := r.leaf("a")
	root := NewNode[string]("root", "a", Behavior[string]{}, a, r.leaf("b"))
	root.Start(nil)

	var order []int
	a.Defer(func() { order = append(order, 1) })
	a.Defer(func() { order = append(order, 2) })
	root.Transition("b", nil)
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("expected disposables in reverse order [2 1], got %v", order)
	}
}

func TestIsInAny(t *testing.T) {
	r := &recorder{}
	root := NewNode[string]("root", "a", Behavior[string]{}, r.leaf("a"), r.leaf("b"))
	root.Start(nil)
	if !root.IsInAny("b", "a") {
		t.Error("expected IsInAny to match a")
	}
	if root.IsIn("b") {
		t.Error("b is not active")
	}
	if PointerDown.String() != "pointerDown" {
		t.Errorf("unexpected kind name %q", PointerDown.String())
	}
}
