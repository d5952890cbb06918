package credential

import "testing"

func TestBcryptRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(4)
	hash, err := hasher.Hash("qwerty")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "qwerty" || hash == "" {
		t.Fatalf("hash must be an opaque non-empty blob")
	}
	if err := hasher.Compare(hash, "qwerty"); err != nil {
		t.Fatalf("compare matching password: %v", err)
	}
	if err := hasher.Compare(hash, "hunter2"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestBcryptCostFallback(t *testing.T) {
	hasher := NewBcryptHasher(99)
	hash, err := hasher.Hash("pw")
	if err != nil {
		t.Fatalf("hash with fallback cost: %v", err)
	}
	if err := hasher.Compare(hash, "pw"); err != nil {
		t.Fatalf("compare: %v", err)
	}
}
