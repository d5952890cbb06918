package domain

import "context"

// Guard inspects a pending change before it is applied to the transaction
// state. A non-nil error aborts the whole transaction.
type Guard interface {
	Name() string
	Check(ctx context.Context, view TransactionView, change Change) error
}

// Reactor runs after a change has been applied, still inside the same
// transaction. Reactors mutate through tx, so a failure rolls the whole
// unit of work back.
type Reactor interface {
	Name() string
	React(ctx context.Context, tx Transaction, change Change) error
}

// HookSet is the explicit, ordered list of guards and reactors a store
// dispatches to on each creation. Registration happens once at setup; the
// set is not safe for concurrent mutation afterwards.
type HookSet struct {
	guards   []Guard
	reactors []Reactor
}

// NewHookSet constructs an empty hook set.
func NewHookSet() *HookSet {
	return &HookSet{}
}

// RegisterGuard appends a pre-apply guard.
func (h *HookSet) RegisterGuard(g Guard) {
	if g == nil {
		return
	}
	h.guards = append(h.guards, g)
}

// RegisterReactor appends a post-apply reactor.
func (h *HookSet) RegisterReactor(r Reactor) {
	if r == nil {
		return
	}
	h.reactors = append(h.reactors, r)
}

// Guards returns the registered guards in dispatch order.
func (h *HookSet) Guards() []Guard {
	out := make([]Guard, len(h.guards))
	copy(out, h.guards)
	return out
}

// Reactors returns the registered reactors in dispatch order.
func (h *HookSet) Reactors() []Reactor {
	out := make([]Reactor, len(h.reactors))
	copy(out, h.reactors)
	return out
}

// CheckAll runs every guard against the pending change.
func (h *HookSet) CheckAll(ctx context.Context, view TransactionView, change Change) error {
	for _, g := range h.guards {
		if err := g.Check(ctx, view, change); err != nil {
			return HookError{Hook: g.Name(), Err: err}
		}
	}
	return nil
}

// ReactAll runs every reactor against the applied change.
func (h *HookSet) ReactAll(ctx context.Context, tx Transaction, change Change) error {
	for _, r := range h.reactors {
		if err := r.React(ctx, tx, change); err != nil {
			return HookError{Hook: r.Name(), Err: err}
		}
	}
	return nil
}
