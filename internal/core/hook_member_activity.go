package core

import (
	"context"
	"time"

	"trackcore/pkg/domain"
)

// authorRef names the member behind a committed row and the creation
// timestamp to propagate.
type authorRef struct {
	memberID  int64
	createdAt time.Time
}

// authorAccessor extracts the authoring member from a creation change.
type authorAccessor func(change domain.Change) authorRef

// NewActivityTimestampPropagator returns the reactor that stamps the authoring
// member's last-active time with each new row's creation timestamp. The member
// field is bound statically per entity kind; there is no runtime field-name
// lookup. The overwrite is unconditional, so an out-of-order timestamp moves
// the member's last-active time backward.
func NewActivityTimestampPropagator() domain.Reactor {
	return activityTimestampPropagator{
		accessors: map[domain.EntityType]authorAccessor{
			domain.EntityProject: func(change domain.Change) authorRef {
				p := change.After.(domain.Project)
				return authorRef{memberID: p.LeaderID, createdAt: p.CreatedAt}
			},
			domain.EntityAction: func(change domain.Change) authorRef {
				a := change.After.(domain.Action)
				return authorRef{memberID: a.MemberID, createdAt: a.CreatedAt}
			},
			domain.EntityVote: func(change domain.Change) authorRef {
				v := change.After.(domain.Vote)
				return authorRef{memberID: v.MemberID, createdAt: v.CreatedAt}
			},
		},
	}
}

type activityTimestampPropagator struct {
	accessors map[domain.EntityType]authorAccessor
}

func (activityTimestampPropagator) Name() string { return "activity_timestamp_propagator" }

func (p activityTimestampPropagator) React(_ context.Context, tx domain.Transaction, change domain.Change) error {
	if change.Op != domain.OpCreate {
		return nil
	}
	accessor, ok := p.accessors[change.Entity]
	if !ok {
		return nil
	}
	ref := accessor(change)
	_, err := tx.UpdateMember(ref.memberID, func(m *domain.Member) error {
		m.LastActiveAt = ref.createdAt
		return nil
	})
	return err
}
