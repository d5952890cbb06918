// Package domain defines the core persistent entities, change records, and
// hook contracts used by trackcore.
package domain

import (
	"fmt"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityMember identifies a member record.
	EntityMember EntityType = "member"
	// EntityProject identifies a project record.
	EntityProject EntityType = "project"
	// EntityAction identifies a proposed action record.
	EntityAction EntityType = "action"
	// EntityVote identifies a vote record.
	EntityVote EntityType = "vote"
)

// Decision is the stance a vote takes on an action.
type Decision string

// Recognised vote decisions. Other values are stored as-is and produce no
// tally change.
const (
	DecisionUp   Decision = "up"
	DecisionDown Decision = "down"
)

// Default attribute values applied on creation when the caller leaves the
// field empty.
const (
	DefaultRank        = "regular"
	DefaultProjectKind = "general"
)

// Member is a participant who leads projects, proposes actions, and votes.
// PasswordHash is an opaque credential blob; the core never inspects it.
type Member struct {
	ID           int64     `json:"id"`
	PasswordHash string    `json:"password_hash"`
	Rank         string    `json:"rank"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Project groups actions under a leading member.
type Project struct {
	ID        int64     `json:"id"`
	LeaderID  int64     `json:"leader_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Action is a proposal made inside a project. Tally fields are maintained
// automatically as votes commit.
type Action struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	MemberID  int64     `json:"member_id"`
	Statement string    `json:"statement"`
	CreatedAt time.Time `json:"created_at"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
}

// Vote records a member's decision on an action. Votes carry no identifier
// of their own; (member, action, creation time) is the natural key.
type Vote struct {
	MemberID  int64     `json:"member_id"`
	ActionID  int64     `json:"action_id"`
	Decision  Decision  `json:"decision"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the composite natural key used to bucket the vote in stores.
func (v Vote) Key() string {
	return fmt.Sprintf("%d/%d/%d", v.MemberID, v.ActionID, v.CreatedAt.UnixNano())
}

// Op indicates the type of modification captured in a Change.
type Op string

// Change operations enumerate the mutations captured per transaction.
const (
	// OpCreate indicates an entity was created.
	OpCreate Op = "create"
	// OpUpdate indicates an entity was updated by a reactor or mutator.
	OpUpdate Op = "update"
)

// Change describes a mutation applied to an entity during a transaction.
// Before is nil for creations. After holds the post-mutation entity value.
type Change struct {
	Entity EntityType
	Op     Op
	Before any
	After  any
}
