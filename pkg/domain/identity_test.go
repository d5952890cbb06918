package domain

import (
	"sync"
	"testing"
)

func TestIdentityAllocatorSeeding(t *testing.T) {
	alloc := NewIdentityAllocator(41)
	if got := alloc.Next(); got != 42 {
		t.Fatalf("expected first value one past the seed, got %d", got)
	}
	if got := alloc.Next(); got != 43 {
		t.Fatalf("expected strictly increasing values, got %d", got)
	}
}

func TestIdentityAllocatorObserve(t *testing.T) {
	alloc := NewIdentityAllocator(0)
	alloc.Observe(100)
	alloc.Observe(7) // lower watermark must not regress
	if got := alloc.Next(); got != 101 {
		t.Fatalf("expected allocation above observed watermark, got %d", got)
	}
}

func TestIdentityAllocatorConcurrentUniqueness(t *testing.T) {
	const workers = 16
	const perWorker = 200

	alloc := NewIdentityAllocator(0)
	results := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				results <- alloc.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]struct{}, workers*perWorker)
	for id := range results {
		if _, dup := seen[id]; dup {
			t.Fatalf("identifier %d allocated twice", id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}
