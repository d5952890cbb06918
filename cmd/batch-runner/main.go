// Package main runs tracker batch requests: a JSON document of operations is
// applied in order against the configured store, one status line per request.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"trackcore/internal/config"
	"trackcore/internal/core"
	blobfs "trackcore/internal/infra/blob/fs"
	"trackcore/pkg/credential"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batch-runner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "-", "path to the JSON request document (- reads stdin)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	store, err := core.OpenPersistentStore(cfg, core.NewDefaultHookSet())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	opts := []core.ServiceOption{}
	if cfg.JournalDir != "" {
		blobStore, err := blobfs.New(cfg.JournalDir)
		if err != nil {
			fmt.Fprintf(stderr, "open journal: %v\n", err)
			return 1
		}
		opts = append(opts, core.WithJournal(core.NewChangeJournal(blobStore)))
	}
	svc := core.NewService(store, opts...)
	hasher := credential.NewBcryptHasher(cfg.BcryptCost)

	reader := stdin
	if *inputPath != "-" {
		file, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(stderr, "open input: %v\n", err)
			return 1
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	runner := &runner{svc: svc, hasher: hasher}
	if err := runner.Run(context.Background(), reader, stdout); err != nil {
		fmt.Fprintf(stderr, "run batch: %v\n", err)
		return 1
	}
	return 0
}

// request is a single-key object mapping an operation name to parameters.
type request map[string]json.RawMessage

type params struct {
	Timestamp  int64   `json:"timestamp"`
	Password   string  `json:"password"`
	Member     int64   `json:"member"`
	Action     int64   `json:"action"`
	Project    int64   `json:"project"`
	Authority  *int64  `json:"authority"`
	ActionType *string `json:"action_type"`
}

type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type runner struct {
	svc    *core.Service
	hasher credential.Hasher
}

// Run decodes a JSON array of requests and applies them in order, emitting one
// status line per request. Decode failures of the document itself are fatal;
// per-request failures produce an ERROR line and processing continues.
func (r *runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	var requests []request
	if err := json.NewDecoder(in).Decode(&requests); err != nil {
		return fmt.Errorf("decode requests: %w", err)
	}
	enc := json.NewEncoder(out)
	for _, req := range requests {
		resp := r.apply(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
	return nil
}

func (r *runner) apply(ctx context.Context, req request) response {
	if len(req) != 1 {
		return response{Status: "ERROR"}
	}
	for name, raw := range req {
		var p params
		if err := json.Unmarshal(raw, &p); err != nil {
			return response{Status: "ERROR"}
		}
		data, err := r.dispatch(ctx, name, p)
		if err != nil {
			return response{Status: "ERROR"}
		}
		return response{Status: "OK", Data: data}
	}
	return response{Status: "ERROR"}
}

func (r *runner) dispatch(ctx context.Context, name string, p params) (any, error) {
	at := time.Unix(p.Timestamp, 0).UTC()
	switch name {
	case "leader":
		return nil, r.createMember(ctx, p, "leader", at)
	case "member":
		return nil, r.createMember(ctx, p, "", at)
	case "support", "protest":
		return nil, r.defineAction(ctx, p, name, at)
	case "upvote":
		return nil, r.vote(ctx, p, core.DecisionUp, at)
	case "downvote":
		return nil, r.vote(ctx, p, core.DecisionDown, at)
	case "actions":
		return r.svc.ListActions(ctx, core.ActionFilter{
			Statement: p.ActionType,
			ProjectID: nonZero(p.Project),
			LeaderID:  p.Authority,
		})
	case "projects":
		return r.svc.ListProjects(ctx, core.ProjectFilter{LeaderID: p.Authority})
	case "votes":
		return r.svc.ListVotes(ctx, core.VoteFilter{
			ActionID:  nonZero(p.Action),
			ProjectID: nonZero(p.Project),
		})
	case "trolls":
		return r.svc.Trolls(ctx, at)
	default:
		return nil, fmt.Errorf("unknown operation %q", name)
	}
}

func (r *runner) createMember(ctx context.Context, p params, rank string, at time.Time) error {
	hash, err := r.hasher.Hash(p.Password)
	if err != nil {
		return err
	}
	_, err = r.svc.CreateMember(ctx, core.MemberDraft{
		ID:           p.Member,
		PasswordHash: hash,
		Rank:         rank,
		CreatedAt:    at,
	})
	return err
}

// defineAction records a support or protest action. When the target project is
// absent and an authority is supplied the project is created first, so a batch
// can introduce a project and its first action in one request.
func (r *runner) defineAction(ctx context.Context, p params, statement string, at time.Time) error {
	projects, err := r.svc.ListProjects(ctx, core.ProjectFilter{})
	if err != nil {
		return err
	}
	exists := false
	for _, project := range projects {
		if project.ID == p.Project {
			exists = true
			break
		}
	}
	if !exists && p.Authority != nil {
		if _, err := r.svc.CreateProject(ctx, core.ProjectDraft{
			ID:        p.Project,
			LeaderID:  *p.Authority,
			CreatedAt: at,
		}); err != nil {
			return err
		}
	}
	_, err = r.svc.CreateAction(ctx, core.ActionDraft{
		ID:        p.Action,
		ProjectID: p.Project,
		MemberID:  p.Member,
		Statement: statement,
		CreatedAt: at,
	})
	return err
}

func (r *runner) vote(ctx context.Context, p params, decision core.Decision, at time.Time) error {
	_, err := r.svc.CreateVote(ctx, core.VoteDraft{
		MemberID:  p.Member,
		ActionID:  p.Action,
		Decision:  decision,
		CreatedAt: at,
	})
	return err
}

func nonZero(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
