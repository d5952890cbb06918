package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trackcore/internal/infra/blob"
	"trackcore/pkg/domain"
)

// ChangeJournal persists committed change sets as JSON documents in a blob
// store. One entry per commit; entries are never rewritten.
type ChangeJournal struct {
	store blob.Store
	nowFn func() time.Time
}

// NewChangeJournal returns a journal writing through the given blob store.
func NewChangeJournal(store blob.Store) *ChangeJournal {
	return &ChangeJournal{store: store, nowFn: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the clock used for entry timestamps (tests).
func (j *ChangeJournal) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		j.nowFn = fn
	}
}

type journalChange struct {
	Entity domain.EntityType `json:"entity"`
	Op     domain.Op         `json:"op"`
	Before json.RawMessage   `json:"before,omitempty"`
	After  json.RawMessage   `json:"after,omitempty"`
}

// JournalEntry is the persisted form of one committed change set.
type JournalEntry struct {
	ID          string          `json:"id"`
	CommittedAt time.Time       `json:"committed_at"`
	Changes     []journalChange `json:"changes"`
}

// Append writes one journal entry covering the given changes. Keys are laid
// out as changes/<date>/<timestamp>-<uuid>.json so entries list in commit
// order.
func (j *ChangeJournal) Append(ctx context.Context, changes []domain.Change) error {
	if len(changes) == 0 {
		return nil
	}
	now := j.nowFn()
	entry := JournalEntry{
		ID:          uuid.NewString(),
		CommittedAt: now,
		Changes:     make([]journalChange, 0, len(changes)),
	}
	for _, ch := range changes {
		before, err := encodeImage(ch.Before)
		if err != nil {
			return fmt.Errorf("encode before image: %w", err)
		}
		after, err := encodeImage(ch.After)
		if err != nil {
			return fmt.Errorf("encode after image: %w", err)
		}
		entry.Changes = append(entry.Changes, journalChange{Entity: ch.Entity, Op: ch.Op, Before: before, After: after})
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	key := fmt.Sprintf("changes/%s/%d-%s.json", now.Format("2006-01-02"), now.UnixNano(), entry.ID)
	_, err = j.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"entry-id": entry.ID},
	})
	return err
}

func encodeImage(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

// Entries reads back all journal entries under the changes/ prefix in key
// order.
func (j *ChangeJournal) Entries(ctx context.Context) ([]JournalEntry, error) {
	infos, err := j.store.List(ctx, "changes/")
	if err != nil {
		return nil, err
	}
	entries := make([]JournalEntry, 0, len(infos))
	for _, info := range infos {
		_, rc, err := j.store.Get(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		var entry JournalEntry
		decodeErr := json.NewDecoder(rc).Decode(&entry)
		_ = rc.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("decode %s: %w", info.Key, decodeErr)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
