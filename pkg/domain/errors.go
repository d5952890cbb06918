package domain

import (
	"fmt"
	"time"
)

// ConsistencyViolationError reports an identifier collision across the shared
// Member/Project/Action namespace. Holder names the entity kind that already
// owns the identifier.
type ConsistencyViolationError struct {
	Entity EntityType
	ID     int64
	Holder EntityType
}

func (e ConsistencyViolationError) Error() string {
	return fmt.Sprintf("identifier %d requested for %s already held by %s", e.ID, e.Entity, e.Holder)
}

// ForeignKeyViolationError reports a required reference that does not resolve
// to an existing row.
type ForeignKeyViolationError struct {
	Entity EntityType
	Field  string
	Ref    int64
}

func (e ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s.%s references missing row %d", e.Entity, e.Field, e.Ref)
}

// RequiredFieldError reports a mandatory attribute left empty on creation.
type RequiredFieldError struct {
	Entity EntityType
	Field  string
}

func (e RequiredFieldError) Error() string {
	return fmt.Sprintf("%s.%s is required", e.Entity, e.Field)
}

// DuplicateVoteError reports a vote colliding with one already recorded for
// the same member, action, and instant.
type DuplicateVoteError struct {
	MemberID int64
	ActionID int64
	At       time.Time
}

func (e DuplicateVoteError) Error() string {
	return fmt.Sprintf("vote by member %d on action %d at %s already recorded", e.MemberID, e.ActionID, e.At.Format(time.RFC3339Nano))
}

// HookError wraps a failure raised by a named guard or reactor so callers can
// tell which hook aborted the transaction.
type HookError struct {
	Hook string
	Err  error
}

func (e HookError) Error() string {
	return fmt.Sprintf("hook %s: %v", e.Hook, e.Err)
}

func (e HookError) Unwrap() error { return e.Err }
