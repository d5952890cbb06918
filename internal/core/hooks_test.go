package core

import (
	"context"
	"testing"
	"time"

	"trackcore/pkg/domain"
)

type staticView struct {
	holder domain.EntityType
	taken  bool
}

func (staticView) ListMembers() []Member   { return nil }
func (staticView) ListProjects() []Project { return nil }
func (staticView) ListActions() []Action   { return nil }
func (staticView) ListVotes() []Vote       { return nil }
func (staticView) FindMember(int64) (Member, bool) {
	return Member{}, false
}
func (staticView) FindProject(int64) (Project, bool) {
	return Project{}, false
}
func (staticView) FindAction(int64) (Action, bool) {
	return Action{}, false
}
func (v staticView) IdentifierHolder(int64) (domain.EntityType, bool) {
	return v.holder, v.taken
}

func TestConsistencyGuardSkipsVotesAndUpdates(t *testing.T) {
	guard := NewConsistencyGuard()
	taken := staticView{holder: EntityMember, taken: true}

	vote := Change{Entity: EntityVote, Op: OpCreate, After: Vote{MemberID: 1, ActionID: 2}}
	if err := guard.Check(context.Background(), taken, vote); err != nil {
		t.Fatalf("votes must bypass the namespace check: %v", err)
	}

	update := Change{Entity: EntityMember, Op: OpUpdate, After: Member{ID: 1}}
	if err := guard.Check(context.Background(), taken, update); err != nil {
		t.Fatalf("updates must bypass the namespace check: %v", err)
	}

	create := Change{Entity: EntityMember, Op: OpCreate, After: Member{ID: 1}}
	if err := guard.Check(context.Background(), taken, create); err == nil {
		t.Fatalf("expected violation for taken identifier")
	}
}

type countingTx struct {
	Transaction
	memberUpdates int
	actionUpdates int
}

func (c *countingTx) UpdateMember(id int64, fn func(*Member) error) (Member, error) {
	c.memberUpdates++
	m := Member{ID: id}
	if err := fn(&m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (c *countingTx) UpdateAction(id int64, fn func(*Action) error) (Action, error) {
	c.actionUpdates++
	a := Action{ID: id}
	if err := fn(&a); err != nil {
		return Action{}, err
	}
	return a, nil
}

func TestVoteTallyMaintainerIgnoresNonVoteChanges(t *testing.T) {
	reactor := NewVoteTallyMaintainer()
	tx := &countingTx{}

	member := Change{Entity: EntityMember, Op: OpCreate, After: Member{ID: 1}}
	if err := reactor.React(context.Background(), tx, member); err != nil {
		t.Fatalf("react: %v", err)
	}
	unknown := Change{Entity: EntityVote, Op: OpCreate, After: Vote{MemberID: 1, ActionID: 2, Decision: "maybe"}}
	if err := reactor.React(context.Background(), tx, unknown); err != nil {
		t.Fatalf("react: %v", err)
	}
	if tx.actionUpdates != 0 {
		t.Fatalf("no tally update expected, got %d", tx.actionUpdates)
	}

	up := Change{Entity: EntityVote, Op: OpCreate, After: Vote{MemberID: 1, ActionID: 2, Decision: DecisionUp}}
	if err := reactor.React(context.Background(), tx, up); err != nil {
		t.Fatalf("react: %v", err)
	}
	if tx.actionUpdates != 1 {
		t.Fatalf("expected one tally update, got %d", tx.actionUpdates)
	}
}

func TestActivityPropagatorBindsAuthorPerKind(t *testing.T) {
	reactor := NewActivityTimestampPropagator()
	tx := &countingTx{}
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	changes := []Change{
		{Entity: EntityProject, Op: OpCreate, After: Project{ID: 2, LeaderID: 1, CreatedAt: at}},
		{Entity: EntityAction, Op: OpCreate, After: Action{ID: 3, MemberID: 1, CreatedAt: at}},
		{Entity: EntityVote, Op: OpCreate, After: Vote{MemberID: 1, ActionID: 3, CreatedAt: at}},
	}
	for _, change := range changes {
		if err := reactor.React(context.Background(), tx, change); err != nil {
			t.Fatalf("react %s: %v", change.Entity, err)
		}
	}
	if tx.memberUpdates != 3 {
		t.Fatalf("expected 3 activity stamps, got %d", tx.memberUpdates)
	}

	// Member creations carry no separate author; nothing to stamp.
	member := Change{Entity: EntityMember, Op: OpCreate, After: Member{ID: 1}}
	if err := reactor.React(context.Background(), tx, member); err != nil {
		t.Fatalf("react: %v", err)
	}
	if tx.memberUpdates != 3 {
		t.Fatalf("member creation must not stamp, got %d", tx.memberUpdates)
	}
}
