package core

import (
	"context"
	"testing"
	"time"

	blobmemory "trackcore/internal/infra/blob/memory"
	"trackcore/pkg/domain"
)

func TestJournalAppendAndReadBack(t *testing.T) {
	journal := NewChangeJournal(blobmemory.New())
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	journal.SetNowFunc(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	ctx := context.Background()

	member := domain.Member{ID: 1, PasswordHash: "h", Rank: domain.DefaultRank}
	changes := []domain.Change{{Entity: domain.EntityMember, Op: domain.OpCreate, After: member}}
	if err := journal.Append(ctx, changes); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := journal.Append(ctx, []domain.Change{{Entity: domain.EntityAction, Op: domain.OpUpdate, Before: domain.Action{ID: 2}, After: domain.Action{ID: 2, Upvotes: 1}}}); err != nil {
		t.Fatalf("append second: %v", err)
	}

	entries, err := journal.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0]
	if first.ID == "" {
		t.Fatalf("entry id missing")
	}
	if !first.CommittedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("committed at = %v", first.CommittedAt)
	}
	if len(first.Changes) != 1 || first.Changes[0].Entity != domain.EntityMember || first.Changes[0].Op != domain.OpCreate {
		t.Fatalf("unexpected changes: %+v", first.Changes)
	}
	if len(first.Changes[0].After) == 0 {
		t.Fatalf("after image missing")
	}
	if len(first.Changes[0].Before) != 0 {
		t.Fatalf("create should have no before image")
	}
	second := entries[1]
	if len(second.Changes) != 1 || len(second.Changes[0].Before) == 0 {
		t.Fatalf("update should carry before image: %+v", second.Changes)
	}
}

func TestJournalSkipsEmptyChangeSet(t *testing.T) {
	store := blobmemory.New()
	journal := NewChangeJournal(store)
	if err := journal.Append(context.Background(), nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	infos, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected no entries, got %d", len(infos))
	}
}
