package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Reactors receive the same transaction
// so their effects commit or roll back with the originating write.
type Transaction interface {
	Snapshot() TransactionView
	CreateMember(Member) (Member, error)
	CreateProject(Project) (Project, error)
	CreateAction(Action) (Action, error)
	CreateVote(Vote) (Vote, error)
	UpdateMember(id int64, mutator func(*Member) error) (Member, error)
	UpdateAction(id int64, mutator func(*Action) error) (Action, error)
	FindMember(id int64) (Member, bool)
	FindProject(id int64) (Project, bool)
	FindAction(id int64) (Action, bool)
}

// TransactionView provides read-only access to snapshot data for guards and
// read queries.
type TransactionView interface {
	ListMembers() []Member
	ListProjects() []Project
	ListActions() []Action
	ListVotes() []Vote
	FindMember(id int64) (Member, bool)
	FindProject(id int64) (Project, bool)
	FindAction(id int64) (Action, bool)
	// IdentifierHolder reports which entity kind, if any, currently owns id
	// within the shared Member/Project/Action namespace.
	IdentifierHolder(id int64) (EntityType, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Change, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetMember(id int64) (Member, bool)
	GetProject(id int64) (Project, bool)
	GetAction(id int64) (Action, bool)
	ListMembers() []Member
	ListProjects() []Project
	ListActions() []Action
	ListVotes() []Vote
	// NextID hands out a fresh identifier from the shared namespace.
	NextID() int64
}
