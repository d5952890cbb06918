package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"trackcore/internal/core"
	"trackcore/pkg/credential"
)

func newTestRunner() *runner {
	return &runner{
		svc:    core.NewInMemoryService(),
		hasher: credential.NewBcryptHasher(bcrypt.MinCost),
	}
}

func decodeLines(t *testing.T, out string) []response {
	t.Helper()
	var responses []response
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var resp response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("decode line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestRunAppliesBatchInOrder(t *testing.T) {
	r := newTestRunner()
	input := `[
		{"leader": {"timestamp": 1700000000, "password": "secret", "member": 1}},
		{"member": {"timestamp": 1700000100, "password": "secret", "member": 2}},
		{"support": {"timestamp": 1700000200, "member": 2, "password": "secret", "action": 10, "project": 5, "authority": 1}},
		{"upvote": {"timestamp": 1700000300, "member": 1, "password": "secret", "action": 10}},
		{"downvote": {"timestamp": 1700000400, "member": 2, "password": "secret", "action": 10}}
	]`
	var out bytes.Buffer
	if err := r.Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	responses := decodeLines(t, out.String())
	if len(responses) != 5 {
		t.Fatalf("expected 5 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Status != "OK" {
			t.Fatalf("request %d status = %q", i, resp.Status)
		}
	}

	actions, err := r.svc.ListActions(context.Background(), core.ActionFilter{})
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 1 || actions[0].ID != 10 || actions[0].Upvotes != 1 || actions[0].Downvotes != 1 {
		t.Fatalf("unexpected action state: %+v", actions)
	}
	projects, err := r.svc.ListProjects(context.Background(), core.ProjectFilter{})
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != 5 || projects[0].LeaderID != 1 {
		t.Fatalf("support should create the missing project: %+v", projects)
	}
}

func TestRunContinuesPastFailedRequest(t *testing.T) {
	r := newTestRunner()
	input := `[
		{"upvote": {"timestamp": 1700000000, "member": 99, "password": "secret", "action": 1}},
		{"leader": {"timestamp": 1700000100, "password": "secret", "member": 1}},
		{"frobnicate": {"timestamp": 1700000200}}
	]`
	var out bytes.Buffer
	if err := r.Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	responses := decodeLines(t, out.String())
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	if responses[0].Status != "ERROR" || responses[1].Status != "OK" || responses[2].Status != "ERROR" {
		t.Fatalf("unexpected statuses: %+v", responses)
	}
}

func TestReadOperationsReturnData(t *testing.T) {
	r := newTestRunner()
	seed := `[
		{"leader": {"timestamp": 1700000000, "password": "secret", "member": 1}},
		{"support": {"timestamp": 1700000100, "member": 1, "password": "secret", "action": 10, "project": 5, "authority": 1}},
		{"downvote": {"timestamp": 1700000200, "member": 1, "password": "secret", "action": 10}}
	]`
	var out bytes.Buffer
	if err := r.Run(context.Background(), strings.NewReader(seed), &out); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out.Reset()
	query := `[
		{"actions": {"member": 1, "password": "secret"}},
		{"projects": {"member": 1, "password": "secret"}},
		{"votes": {"member": 1, "password": "secret"}},
		{"trolls": {"timestamp": 1700000300}}
	]`
	if err := r.Run(context.Background(), strings.NewReader(query), &out); err != nil {
		t.Fatalf("query: %v", err)
	}
	responses := decodeLines(t, out.String())
	if len(responses) != 4 {
		t.Fatalf("expected 4 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Status != "OK" {
			t.Fatalf("query %d status = %q", i, resp.Status)
		}
		if resp.Data == nil {
			t.Fatalf("query %d returned no data", i)
		}
	}
}

func TestMemberPasswordsAreHashed(t *testing.T) {
	r := newTestRunner()
	input := `[{"member": {"timestamp": 1700000000, "password": "plaintext", "member": 7}}]`
	var out bytes.Buffer
	if err := r.Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	err := r.svc.Store().View(context.Background(), func(view core.TransactionView) error {
		member, ok := view.FindMember(7)
		if !ok {
			t.Fatalf("member missing")
		}
		if member.PasswordHash == "plaintext" {
			t.Fatalf("password stored in the clear")
		}
		if err := r.hasher.Compare(member.PasswordHash, "plaintext"); err != nil {
			t.Fatalf("stored hash does not verify: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestMalformedDocumentFails(t *testing.T) {
	r := newTestRunner()
	var out bytes.Buffer
	if err := r.Run(context.Background(), strings.NewReader(`{"not":"an array"`), &out); err == nil {
		t.Fatalf("expected decode error")
	}
}
