package domain

import (
	"errors"
	"testing"
	"time"
)

func TestVoteKeyDistinguishesInstants(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Vote{MemberID: 1, ActionID: 2, Decision: DecisionUp, CreatedAt: base}
	b := Vote{MemberID: 1, ActionID: 2, Decision: DecisionUp, CreatedAt: base.Add(time.Nanosecond)}
	if a.Key() == b.Key() {
		t.Fatalf("votes at distinct instants must have distinct keys: %s", a.Key())
	}
	c := Vote{MemberID: 1, ActionID: 2, Decision: DecisionDown, CreatedAt: base}
	if a.Key() != c.Key() {
		t.Fatalf("decision must not participate in the natural key: %s vs %s", a.Key(), c.Key())
	}
}

func TestViolationErrorMessages(t *testing.T) {
	cv := ConsistencyViolationError{Entity: EntityProject, ID: 5, Holder: EntityMember}
	if got := cv.Error(); got != "identifier 5 requested for project already held by member" {
		t.Fatalf("unexpected consistency message: %q", got)
	}
	fk := ForeignKeyViolationError{Entity: EntityAction, Field: "project_id", Ref: 9}
	if got := fk.Error(); got != "action.project_id references missing row 9" {
		t.Fatalf("unexpected foreign key message: %q", got)
	}
	rf := RequiredFieldError{Entity: EntityVote, Field: "decision"}
	if got := rf.Error(); got != "vote.decision is required" {
		t.Fatalf("unexpected required field message: %q", got)
	}
}

func TestHookErrorUnwrapsCause(t *testing.T) {
	cause := ConsistencyViolationError{Entity: EntityMember, ID: 1, Holder: EntityMember}
	err := HookError{Hook: "consistency_guard", Err: cause}
	var cv ConsistencyViolationError
	if !errors.As(err, &cv) {
		t.Fatalf("expected HookError to unwrap to ConsistencyViolationError")
	}
	if cv.ID != 1 {
		t.Fatalf("unexpected id after unwrap: %d", cv.ID)
	}
}
