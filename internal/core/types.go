package core

import "trackcore/pkg/domain"

type (
	EntityType           = domain.EntityType
	Decision             = domain.Decision
	Member               = domain.Member
	Project              = domain.Project
	Action               = domain.Action
	Vote                 = domain.Vote
	Change               = domain.Change
	Op                   = domain.Op
	Guard                = domain.Guard
	Reactor              = domain.Reactor
	HookSet              = domain.HookSet
	ConsistencyViolation = domain.ConsistencyViolationError
	ForeignKeyViolation  = domain.ForeignKeyViolationError
	RequiredFieldMissing = domain.RequiredFieldError
	DuplicateVote        = domain.DuplicateVoteError
	Transaction          = domain.Transaction
	TransactionView      = domain.TransactionView
	PersistentStore      = domain.PersistentStore
)

const (
	EntityMember  = domain.EntityMember
	EntityProject = domain.EntityProject
	EntityAction  = domain.EntityAction
	EntityVote    = domain.EntityVote
)

const (
	DecisionUp   = domain.DecisionUp
	DecisionDown = domain.DecisionDown
)

const (
	OpCreate = domain.OpCreate
	OpUpdate = domain.OpUpdate
)

// NewHookSet re-exports the domain constructor for callers wiring custom sets.
func NewHookSet() *HookSet {
	return domain.NewHookSet()
}

// NewDefaultHookSet builds the hook set enforcing the built-in invariants:
// the shared-namespace consistency guard, the vote tally maintainer, and the
// member activity propagator, in that order.
func NewDefaultHookSet() *HookSet {
	hooks := domain.NewHookSet()
	hooks.RegisterGuard(NewConsistencyGuard())
	hooks.RegisterReactor(NewVoteTallyMaintainer())
	hooks.RegisterReactor(NewActivityTimestampPropagator())
	return hooks
}
