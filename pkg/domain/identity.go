package domain

import "sync/atomic"

// IdentityAllocator hands out strictly increasing identifiers from the shared
// Member/Project/Action namespace. Allocation is a single atomic step so
// unrelated creations never serialize against each other to obtain an id.
// Gaps from aborted creations are expected; values are never reused.
type IdentityAllocator struct {
	last atomic.Int64
}

// NewIdentityAllocator constructs an allocator whose next value is max+1,
// where max is the highest identifier currently in use (0 for an empty store).
func NewIdentityAllocator(max int64) *IdentityAllocator {
	a := &IdentityAllocator{}
	a.last.Store(max)
	return a
}

// Next returns a fresh identifier. Safe for concurrent use.
func (a *IdentityAllocator) Next() int64 {
	return a.last.Add(1)
}

// Observe raises the allocation watermark so future values stay above id.
// Called when stores hydrate persisted state.
func (a *IdentityAllocator) Observe(id int64) {
	for {
		cur := a.last.Load()
		if id <= cur || a.last.CompareAndSwap(cur, id) {
			return
		}
	}
}
