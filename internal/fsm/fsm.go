// Package fsm is a hierarchical state machine. Each node has at most one
// active child; events are dispatched top-down along the active chain.
package fsm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned (or panicked) when a transition names a child
// that does not exist.
var ErrUnknownState = errors.New("unknown state")

// UnknownStateError names the parent and the missing child.
type UnknownStateError struct {
	Parent string
	ID     string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("fsm: %s has no child state %q", e.Parent, e.ID)
}

func (e *UnknownStateError) Unwrap() error { return ErrUnknownState }

// Kind identifies an input event.
type Kind int

const (
	Wheel Kind = iota
	PointerDown
	PointerUp
	PointerMove
	PointerEnter
	PointerLeave
	DoubleClick
	KeyDown
	KeyUp
	PinchStart
	Pinch
	PinchEnd
)

var kindNames = [...]string{
	Wheel:        "wheel",
	PointerDown:  "pointerDown",
	PointerUp:    "pointerUp",
	PointerMove:  "pointerMove",
	PointerEnter: "pointerEnter",
	PointerLeave: "pointerLeave",
	DoubleClick:  "doubleClick",
	KeyDown:      "keyDown",
	KeyUp:        "keyUp",
	PinchStart:   "pinchStart",
	Pinch:        "pinch",
	PinchEnd:     "pinchEnd",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Transition describes a state change. On Exit, To is the state being
// entered; on Enter, From is the state that was left. Data is whatever the
// caller passed to Transition.
type Transition struct {
	From string
	To   string
	Data any
}

// Behavior is the per-state record of hooks. Every field is optional.
type Behavior[E any] struct {
	Enter func(Transition)
	Exit  func(Transition)
	// Transitioned runs on the parent after its active child changed and
	// before the new child is entered.
	Transitioned func(Transition)
	On           map[Kind]func(E)
}

// Node is one state. Leaves have no children.
type Node[E any] struct {
	id       string
	initial  string
	behavior Behavior[E]

	parent   *Node[E]
	children map[string]*Node[E]
	order    []string
	current  *Node[E]

	active      bool
	disposables []func()
	batch       func(func())
}

// NewNode creates a state. initial names the child entered by default; when
// empty and children are given, the first child is used.
func NewNode[E any](id, initial string, b Behavior[E], children ...*Node[E]) *Node[E] {
	n := &Node[E]{
		id:       id,
		initial:  initial,
		behavior: b,
		children: make(map[string]*Node[E]),
	}
	n.Add(children...)
	return n
}

// Add registers more children. The first child ever added becomes the
// initial one if none was named.
func (n *Node[E]) Add(children ...*Node[E]) {
	for _, c := range children {
		c.parent = n
		if _, exists := n.children[c.id]; !exists {
			n.order = append(n.order, c.id)
		}
		n.children[c.id] = c
		if n.initial == "" {
			n.initial = c.id
		}
	}
	if !n.active && n.current == nil {
		n.current = n.children[n.initial]
	}
}

func (n *Node[E]) ID() string               { return n.id }
func (n *Node[E]) Initial() string          { return n.initial }
func (n *Node[E]) Parent() *Node[E]         { return n.parent }
func (n *Node[E]) Current() *Node[E]        { return n.current }
func (n *Node[E]) Active() bool             { return n.active }
func (n *Node[E]) Child(id string) *Node[E] { return n.children[id] }

// Children returns the children in registration order.
func (n *Node[E]) Children() []*Node[E] {
	out := make([]*Node[E], len(n.order))
	for i, id := range n.order {
		out[i] = n.children[id]
	}
	return out
}

func (n *Node[E]) root() *Node[E] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// SetBatch installs the function every transition and dispatch runs inside.
// It is read from the root, so set it there.
func (n *Node[E]) SetBatch(fn func(func())) { n.batch = fn }

func (n *Node[E]) run(fn func()) {
	if b := n.root().batch; b != nil {
		b(fn)
		return
	}
	fn()
}

// Start activates a root node and enters its initial child.
func (n *Node[E]) Start(data any) {
	n.run(func() { n.enter(Transition{To: n.id, Data: data}) })
}

// Defer registers fn to run when the node exits.
func (n *Node[E]) Defer(fn func()) {
	n.disposables = append(n.disposables, fn)
}

func (n *Node[E]) dispose() {
	for i := len(n.disposables) - 1; i >= 0; i-- {
		n.disposables[i]()
	}
	n.disposables = nil
}

// Transition makes the child id active. The current child exits and is
// disposed, the parent's Transitioned hook runs, then the new child enters
// (cascading into its own initial child). It panics with an
// *UnknownStateError if id is not a child: that is a programming error.
func (n *Node[E]) Transition(id string, data any) {
	if err := n.TryTransition(id, data); err != nil {
		panic(err)
	}
}

// TryTransition is Transition for ids that come from untrusted input.
func (n *Node[E]) TryTransition(id string, data any) error {
	next, ok := n.children[id]
	if !ok {
		return &UnknownStateError{Parent: n.id, ID: id}
	}
	n.run(func() {
		prev := n.current
		var from string
		if prev != nil && prev.active {
			from = prev.id
			prev.exit(Transition{From: from, To: id, Data: data})
		}
		n.current = next
		t := Transition{From: from, To: id, Data: data}
		if n.behavior.Transitioned != nil {
			n.behavior.Transitioned(t)
		}
		next.enter(t)
	})
	return nil
}

func (n *Node[E]) enter(t Transition) {
	n.active = true
	if n.initial != "" {
		if _, ok := n.children[n.initial]; ok {
			n.Transition(n.initial, t.Data)
		}
	}
	if n.behavior.Enter != nil {
		n.behavior.Enter(t)
	}
}

func (n *Node[E]) exit(t Transition) {
	n.active = false
	if c := n.current; c != nil && c.active {
		c.exit(Transition{From: c.id, To: "parent", Data: t.Data})
	}
	if n.behavior.Exit != nil {
		n.behavior.Exit(t)
	}
	n.dispose()
}

// Dispatch runs the node's own handler for kind, then forwards to the
// active child. The child is looked up after the handler so a transition
// made by the handler receives the same event.
func (n *Node[E]) Dispatch(kind Kind, e E) {
	n.run(func() { n.dispatch(kind, e) })
}

func (n *Node[E]) dispatch(kind Kind, e E) {
	if h := n.behavior.On[kind]; h != nil {
		h(e)
	}
	if c := n.current; c != nil && c.active {
		c.dispatch(kind, e)
	}
}

// Handle runs only this node's handler for kind.
func (n *Node[E]) Handle(kind Kind, e E) {
	if h := n.behavior.On[kind]; h != nil {
		h(e)
	}
}

// IsIn reports whether the dotted path of child ids below n is active,
// e.g. "select.idle".
func (n *Node[E]) IsIn(path string) bool {
	s := n
	for _, id := range strings.Split(path, ".") {
		if id == "" {
			return true
		}
		if s.current == nil || s.current.id != id || !s.current.active {
			return false
		}
		s = s.current
	}
	return true
}

// IsInAny reports whether any of the paths is active.
func (n *Node[E]) IsInAny(paths ...string) bool {
	for _, p := range paths {
		if n.IsIn(p) {
			return true
		}
	}
	return false
}

// ActivePath is the dotted chain of active ids below n.
func (n *Node[E]) ActivePath() string {
	var ids []string
	for s := n.current; s != nil && s.active; s = s.current {
		ids = append(ids, s.id)
	}
	return strings.Join(ids, ".")
}
