package core

import (
	"context"

	"trackcore/pkg/domain"
)

// NewConsistencyGuard returns the pre-commit guard rejecting identifier
// collisions across the shared Member/Project/Action namespace. Allocator-
// sourced identifiers are unique by construction; this guard exists to catch
// explicitly supplied identifiers that collide.
func NewConsistencyGuard() domain.Guard {
	return consistencyGuard{}
}

type consistencyGuard struct{}

func (consistencyGuard) Name() string { return "consistency_guard" }

func (consistencyGuard) Check(_ context.Context, view domain.TransactionView, change domain.Change) error {
	if change.Op != domain.OpCreate {
		return nil
	}
	var id int64
	switch change.Entity {
	case domain.EntityMember:
		id = change.After.(domain.Member).ID
	case domain.EntityProject:
		id = change.After.(domain.Project).ID
	case domain.EntityAction:
		id = change.After.(domain.Action).ID
	default:
		// Votes carry no identifier of their own.
		return nil
	}
	if holder, taken := view.IdentifierHolder(id); taken {
		return domain.ConsistencyViolationError{Entity: change.Entity, ID: id, Holder: holder}
	}
	return nil
}
