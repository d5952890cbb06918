// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trackcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Member aliases domain.Member for in-memory persistence operations.
	Member = domain.Member
	// Project aliases domain.Project.
	Project = domain.Project
	// Action aliases domain.Action.
	Action = domain.Action
	// Vote aliases domain.Vote.
	Vote = domain.Vote
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// HookSet aliases domain.HookSet dispatched on creations.
	HookSet = domain.HookSet
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	members  map[int64]Member
	projects map[int64]Project
	actions  map[int64]Action
	votes    map[string]Vote
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Members  map[int64]Member  `json:"members"`
	Projects map[int64]Project `json:"projects"`
	Actions  map[int64]Action  `json:"actions"`
	Votes    map[string]Vote   `json:"votes"`
}

func newMemoryState() memoryState {
	return memoryState{
		members:  make(map[int64]Member),
		projects: make(map[int64]Project),
		actions:  make(map[int64]Action),
		votes:    make(map[string]Vote),
	}
}

func (s memoryState) clone() memoryState {
	cp := memoryState{
		members:  make(map[int64]Member, len(s.members)),
		projects: make(map[int64]Project, len(s.projects)),
		actions:  make(map[int64]Action, len(s.actions)),
		votes:    make(map[string]Vote, len(s.votes)),
	}
	for k, v := range s.members {
		cp.members[k] = v
	}
	for k, v := range s.projects {
		cp.projects[k] = v
	}
	for k, v := range s.actions {
		cp.actions[k] = v
	}
	for k, v := range s.votes {
		cp.votes[k] = v
	}
	return cp
}

func (s memoryState) maxIdentifier() int64 {
	var max int64
	for id := range s.members {
		if id > max {
			max = id
		}
	}
	for id := range s.projects {
		if id > max {
			max = id
		}
	}
	for id := range s.actions {
		if id > max {
			max = id
		}
	}
	return max
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Members:  make(map[int64]Member, len(state.members)),
		Projects: make(map[int64]Project, len(state.projects)),
		Actions:  make(map[int64]Action, len(state.actions)),
		Votes:    make(map[string]Vote, len(state.votes)),
	}
	for k, v := range state.members {
		s.Members[k] = v
	}
	for k, v := range state.projects {
		s.Projects[k] = v
	}
	for k, v := range state.actions {
		s.Actions[k] = v
	}
	for k, v := range state.votes {
		s.Votes[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Members {
		state.members[k] = v
	}
	for k, v := range s.Projects {
		state.projects[k] = v
	}
	for k, v := range s.Actions {
		state.actions[k] = v
	}
	for k, v := range s.Votes {
		state.votes[k] = v
	}
	return state
}

// Store provides an in-memory transactional store for the tracker domain.
// A single mutex guards the state map; transactions mutate a clone that is
// swapped in on commit, so concurrent creations never observe partial hook
// effects. Identifier allocation bypasses the mutex entirely.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	hooks *HookSet
	ids   *domain.IdentityAllocator
	nowFn func() time.Time
}

// NewStore constructs an in-memory store dispatching to the provided hook set.
func NewStore(hooks *HookSet) *Store {
	if hooks == nil {
		hooks = domain.NewHookSet()
	}
	return &Store{
		state: newMemoryState(),
		hooks: hooks,
		ids:   domain.NewIdentityAllocator(0),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// NextID hands out a fresh identifier from the shared namespace.
func (s *Store) NextID() int64 {
	return s.ids.Next()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot and raises
// the identifier watermark above every hydrated row.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
	s.ids.Observe(s.state.maxIdentifier())
}

// Hooks exposes the configured hook set for integration points.
func (s *Store) Hooks() *HookSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks
}

// SetNowFunc overrides the store clock. Intended for tests that pin creation
// timestamps.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	ctx     context.Context
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListMembers returns all members within the snapshot, ordered by id.
func (v transactionView) ListMembers() []Member {
	out := make([]Member, 0, len(v.state.members))
	for _, m := range v.state.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListProjects returns all projects in the snapshot, ordered by id.
func (v transactionView) ListProjects() []Project {
	out := make([]Project, 0, len(v.state.projects))
	for _, p := range v.state.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListActions returns all actions in the snapshot, ordered by id.
func (v transactionView) ListActions() []Action {
	out := make([]Action, 0, len(v.state.actions))
	for _, a := range v.state.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListVotes returns all votes in the snapshot ordered by creation time, then
// by member and action for stable output.
func (v transactionView) ListVotes() []Vote {
	out := make([]Vote, 0, len(v.state.votes))
	for _, vote := range v.state.votes {
		out = append(out, vote)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if out[i].MemberID != out[j].MemberID {
			return out[i].MemberID < out[j].MemberID
		}
		return out[i].ActionID < out[j].ActionID
	})
	return out
}

// FindMember retrieves a member by id from the snapshot.
func (v transactionView) FindMember(id int64) (Member, bool) {
	m, ok := v.state.members[id]
	return m, ok
}

// FindProject retrieves a project by id from the snapshot.
func (v transactionView) FindProject(id int64) (Project, bool) {
	p, ok := v.state.projects[id]
	return p, ok
}

// FindAction retrieves an action by id from the snapshot.
func (v transactionView) FindAction(id int64) (Action, bool) {
	a, ok := v.state.actions[id]
	return a, ok
}

// IdentifierHolder reports which entity kind currently owns id within the
// shared namespace.
func (v transactionView) IdentifierHolder(id int64) (domain.EntityType, bool) {
	if _, ok := v.state.members[id]; ok {
		return domain.EntityMember, true
	}
	if _, ok := v.state.projects[id]; ok {
		return domain.EntityProject, true
	}
	if _, ok := v.state.actions[id]; ok {
		return domain.EntityAction, true
	}
	return "", false
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Guards and reactors fire inside fn's scope via the creation methods, so the
// returned change set already includes reactor effects. The clone is swapped
// in only when fn and every hook succeed.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		ctx:   ctx,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return nil, err
	}

	s.state = tx.state
	changes := make([]Change, len(tx.changes))
	copy(changes, tx.changes)
	return changes, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindMember exposes member lookup within the transaction scope.
func (tx *transaction) FindMember(id int64) (Member, bool) {
	m, ok := tx.state.members[id]
	return m, ok
}

// FindProject exposes project lookup within the transaction scope.
func (tx *transaction) FindProject(id int64) (Project, bool) {
	p, ok := tx.state.projects[id]
	return p, ok
}

// FindAction exposes action lookup within the transaction scope.
func (tx *transaction) FindAction(id int64) (Action, bool) {
	a, ok := tx.state.actions[id]
	return a, ok
}

// dispatch runs guards before applying the change and reactors after apply.
func (tx *transaction) dispatchCreate(change Change, apply func()) error {
	if err := tx.store.hooks.CheckAll(tx.ctx, tx.Snapshot(), change); err != nil {
		return err
	}
	apply()
	tx.recordChange(change)
	return tx.store.hooks.ReactAll(tx.ctx, tx, change)
}

// CreateMember stores a new member within the transaction.
func (tx *transaction) CreateMember(m Member) (Member, error) {
	if m.PasswordHash == "" {
		return Member{}, domain.RequiredFieldError{Entity: domain.EntityMember, Field: "password_hash"}
	}
	if m.ID == 0 {
		m.ID = tx.store.ids.Next()
	}
	if m.Rank == "" {
		m.Rank = domain.DefaultRank
	}
	if m.LastActiveAt.IsZero() {
		m.LastActiveAt = tx.now
	}
	err := tx.dispatchCreate(Change{Entity: domain.EntityMember, Op: domain.OpCreate, After: m}, func() {
		tx.state.members[m.ID] = m
	})
	if err != nil {
		return Member{}, err
	}
	return tx.state.members[m.ID], nil
}

// CreateProject stores a new project within the transaction.
func (tx *transaction) CreateProject(p Project) (Project, error) {
	if _, ok := tx.state.members[p.LeaderID]; !ok {
		return Project{}, domain.ForeignKeyViolationError{Entity: domain.EntityProject, Field: "leader_id", Ref: p.LeaderID}
	}
	if p.ID == 0 {
		p.ID = tx.store.ids.Next()
	}
	if p.Kind == "" {
		p.Kind = domain.DefaultProjectKind
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = tx.now
	}
	err := tx.dispatchCreate(Change{Entity: domain.EntityProject, Op: domain.OpCreate, After: p}, func() {
		tx.state.projects[p.ID] = p
	})
	if err != nil {
		return Project{}, err
	}
	return tx.state.projects[p.ID], nil
}

// CreateAction stores a new action within the transaction.
func (tx *transaction) CreateAction(a Action) (Action, error) {
	if a.Statement == "" {
		return Action{}, domain.RequiredFieldError{Entity: domain.EntityAction, Field: "statement"}
	}
	if _, ok := tx.state.projects[a.ProjectID]; !ok {
		return Action{}, domain.ForeignKeyViolationError{Entity: domain.EntityAction, Field: "project_id", Ref: a.ProjectID}
	}
	if _, ok := tx.state.members[a.MemberID]; !ok {
		return Action{}, domain.ForeignKeyViolationError{Entity: domain.EntityAction, Field: "member_id", Ref: a.MemberID}
	}
	if a.ID == 0 {
		a.ID = tx.store.ids.Next()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = tx.now
	}
	a.Upvotes = 0
	a.Downvotes = 0
	err := tx.dispatchCreate(Change{Entity: domain.EntityAction, Op: domain.OpCreate, After: a}, func() {
		tx.state.actions[a.ID] = a
	})
	if err != nil {
		return Action{}, err
	}
	return tx.state.actions[a.ID], nil
}

// CreateVote stores a new vote within the transaction.
func (tx *transaction) CreateVote(v Vote) (Vote, error) {
	if v.Decision == "" {
		return Vote{}, domain.RequiredFieldError{Entity: domain.EntityVote, Field: "decision"}
	}
	if _, ok := tx.state.members[v.MemberID]; !ok {
		return Vote{}, domain.ForeignKeyViolationError{Entity: domain.EntityVote, Field: "member_id", Ref: v.MemberID}
	}
	if _, ok := tx.state.actions[v.ActionID]; !ok {
		return Vote{}, domain.ForeignKeyViolationError{Entity: domain.EntityVote, Field: "action_id", Ref: v.ActionID}
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = tx.now
	}
	key := v.Key()
	if _, exists := tx.state.votes[key]; exists {
		return Vote{}, domain.DuplicateVoteError{MemberID: v.MemberID, ActionID: v.ActionID, At: v.CreatedAt}
	}
	err := tx.dispatchCreate(Change{Entity: domain.EntityVote, Op: domain.OpCreate, After: v}, func() {
		tx.state.votes[key] = v
	})
	if err != nil {
		return Vote{}, err
	}
	return tx.state.votes[key], nil
}

// UpdateMember mutates a member using the provided mutator function.
func (tx *transaction) UpdateMember(id int64, mutator func(*Member) error) (Member, error) {
	current, ok := tx.state.members[id]
	if !ok {
		return Member{}, domain.ForeignKeyViolationError{Entity: domain.EntityMember, Field: "id", Ref: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Member{}, err
	}
	current.ID = id
	tx.state.members[id] = current
	tx.recordChange(Change{Entity: domain.EntityMember, Op: domain.OpUpdate, Before: before, After: current})
	return current, nil
}

// UpdateAction mutates an action using the provided mutator function.
func (tx *transaction) UpdateAction(id int64, mutator func(*Action) error) (Action, error) {
	current, ok := tx.state.actions[id]
	if !ok {
		return Action{}, domain.ForeignKeyViolationError{Entity: domain.EntityAction, Field: "id", Ref: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Action{}, err
	}
	current.ID = id
	tx.state.actions[id] = current
	tx.recordChange(Change{Entity: domain.EntityAction, Op: domain.OpUpdate, Before: before, After: current})
	return current, nil
}

// GetMember retrieves a member from committed state.
func (s *Store) GetMember(id int64) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.members[id]
	return m, ok
}

// GetProject retrieves a project from committed state.
func (s *Store) GetProject(id int64) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.projects[id]
	return p, ok
}

// GetAction retrieves an action from committed state.
func (s *Store) GetAction(id int64) (Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.actions[id]
	return a, ok
}

// ListMembers returns committed members ordered by id.
func (s *Store) ListMembers() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListMembers()
}

// ListProjects returns committed projects ordered by id.
func (s *Store) ListProjects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListProjects()
}

// ListActions returns committed actions ordered by id.
func (s *Store) ListActions() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListActions()
}

// ListVotes returns committed votes in creation order.
func (s *Store) ListVotes() []Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListVotes()
}
