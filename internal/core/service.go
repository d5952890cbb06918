package core

import (
	"context"
	"sort"
	"time"
)

// Service exposes the transactional write surface and the read queries of the
// tracker core. Every write funnels through the store's hook set, so the
// shared-namespace guard and the tally/activity reactors fire inside the same
// atomic unit as the originating row.
type Service struct {
	store   PersistentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	journal *ChangeJournal
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to the service.
func WithMetrics(metrics MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithJournal attaches a change journal. Journal appends happen after commit
// and never fail the originating operation.
func WithJournal(journal *ChangeJournal) ServiceOption {
	return func(s *Service) {
		s.journal = journal
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// default hook set.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(NewMemoryStore(NewDefaultHookSet()), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// MemberDraft carries the caller-supplied attributes for a new member.
// ID zero allocates from the shared namespace; a zero CreatedAt uses the
// store clock.
type MemberDraft struct {
	ID           int64
	PasswordHash string
	Rank         string
	CreatedAt    time.Time
}

// ProjectDraft carries the caller-supplied attributes for a new project.
type ProjectDraft struct {
	ID        int64
	LeaderID  int64
	Kind      string
	CreatedAt time.Time
}

// ActionDraft carries the caller-supplied attributes for a new action.
type ActionDraft struct {
	ID        int64
	ProjectID int64
	MemberID  int64
	Statement string
	CreatedAt time.Time
}

// VoteDraft carries the caller-supplied attributes for a new vote.
type VoteDraft struct {
	MemberID  int64
	ActionID  int64
	Decision  Decision
	CreatedAt time.Time
}

func (s *Service) instrument(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(err error) {
		span.End(err)
		s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	}
}

func (s *Service) afterCommit(ctx context.Context, changes []Change) {
	if s.journal == nil || len(changes) == 0 {
		return
	}
	if err := s.journal.Append(ctx, changes); err != nil {
		s.logger.Warn("journal append failed", "error", err)
	}
}

// CreateMember persists a new member. The password hash is stored opaquely.
func (s *Service) CreateMember(ctx context.Context, draft MemberDraft) (Member, error) {
	ctx, done := s.instrument(ctx, "create_member")
	var created Member
	changes, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateMember(Member{
			ID:           draft.ID,
			PasswordHash: draft.PasswordHash,
			Rank:         draft.Rank,
			LastActiveAt: draft.CreatedAt,
		})
		return err
	})
	done(err)
	if err != nil {
		s.logger.Warn("create member rejected", "id", draft.ID, "error", err)
		return Member{}, err
	}
	s.logger.Debug("member created", "id", created.ID, "rank", created.Rank)
	s.afterCommit(ctx, changes)
	return created, nil
}

// CreateProject persists a new project and stamps the leader's activity time.
func (s *Service) CreateProject(ctx context.Context, draft ProjectDraft) (Project, error) {
	ctx, done := s.instrument(ctx, "create_project")
	var created Project
	changes, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateProject(Project{
			ID:        draft.ID,
			LeaderID:  draft.LeaderID,
			Kind:      draft.Kind,
			CreatedAt: draft.CreatedAt,
		})
		return err
	})
	done(err)
	if err != nil {
		s.logger.Warn("create project rejected", "id", draft.ID, "leader", draft.LeaderID, "error", err)
		return Project{}, err
	}
	s.logger.Debug("project created", "id", created.ID, "leader", created.LeaderID)
	s.afterCommit(ctx, changes)
	return created, nil
}

// CreateAction persists a new action with zeroed tallies and stamps the
// author's activity time.
func (s *Service) CreateAction(ctx context.Context, draft ActionDraft) (Action, error) {
	ctx, done := s.instrument(ctx, "create_action")
	var created Action
	changes, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateAction(Action{
			ID:        draft.ID,
			ProjectID: draft.ProjectID,
			MemberID:  draft.MemberID,
			Statement: draft.Statement,
			CreatedAt: draft.CreatedAt,
		})
		return err
	})
	done(err)
	if err != nil {
		s.logger.Warn("create action rejected", "id", draft.ID, "project", draft.ProjectID, "error", err)
		return Action{}, err
	}
	s.logger.Debug("action created", "id", created.ID, "project", created.ProjectID)
	s.afterCommit(ctx, changes)
	return created, nil
}

// CreateVote persists a new vote, updates the target action's tally for
// recognised decisions, and stamps the voter's activity time.
func (s *Service) CreateVote(ctx context.Context, draft VoteDraft) (Vote, error) {
	ctx, done := s.instrument(ctx, "create_vote")
	var created Vote
	changes, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateVote(Vote{
			MemberID:  draft.MemberID,
			ActionID:  draft.ActionID,
			Decision:  draft.Decision,
			CreatedAt: draft.CreatedAt,
		})
		return err
	})
	done(err)
	if err != nil {
		s.logger.Warn("create vote rejected", "member", draft.MemberID, "action", draft.ActionID, "error", err)
		return Vote{}, err
	}
	s.logger.Debug("vote created", "member", created.MemberID, "action", created.ActionID, "decision", created.Decision)
	s.afterCommit(ctx, changes)
	return created, nil
}

// ActionFilter narrows ListActions output. Nil fields match everything.
type ActionFilter struct {
	Statement *string
	ProjectID *int64
	LeaderID  *int64
}

// ActionSummary pairs an action with its project's leader for reporting.
type ActionSummary struct {
	ID        int64  `json:"id"`
	Statement string `json:"statement"`
	ProjectID int64  `json:"project_id"`
	LeaderID  int64  `json:"leader_id"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// ListActions returns action summaries ordered by action id.
func (s *Service) ListActions(ctx context.Context, filter ActionFilter) ([]ActionSummary, error) {
	var out []ActionSummary
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, action := range view.ListActions() {
			project, ok := view.FindProject(action.ProjectID)
			if !ok {
				continue
			}
			if filter.Statement != nil && action.Statement != *filter.Statement {
				continue
			}
			if filter.ProjectID != nil && action.ProjectID != *filter.ProjectID {
				continue
			}
			if filter.LeaderID != nil && project.LeaderID != *filter.LeaderID {
				continue
			}
			out = append(out, ActionSummary{
				ID:        action.ID,
				Statement: action.Statement,
				ProjectID: action.ProjectID,
				LeaderID:  project.LeaderID,
				Upvotes:   action.Upvotes,
				Downvotes: action.Downvotes,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectFilter narrows ListProjects output.
type ProjectFilter struct {
	LeaderID *int64
}

// ListProjects returns projects ordered by id.
func (s *Service) ListProjects(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	var out []Project
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, project := range view.ListProjects() {
			if filter.LeaderID != nil && project.LeaderID != *filter.LeaderID {
				continue
			}
			out = append(out, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VoteFilter restricts ListVotes to one action or to actions of one project.
type VoteFilter struct {
	ActionID  *int64
	ProjectID *int64
}

// MemberVoteSummary totals a member's votes within the filter scope. Every
// member appears, including those who cast no votes.
type MemberVoteSummary struct {
	MemberID  int64 `json:"member_id"`
	Upvotes   int   `json:"upvotes"`
	Downvotes int   `json:"downvotes"`
}

// ListVotes returns per-member vote totals ordered by member id.
func (s *Service) ListVotes(ctx context.Context, filter VoteFilter) ([]MemberVoteSummary, error) {
	var out []MemberVoteSummary
	err := s.store.View(ctx, func(view TransactionView) error {
		totals := make(map[int64]*MemberVoteSummary)
		members := view.ListMembers()
		for _, member := range members {
			totals[member.ID] = &MemberVoteSummary{MemberID: member.ID}
		}
		for _, vote := range view.ListVotes() {
			if filter.ActionID != nil && vote.ActionID != *filter.ActionID {
				continue
			}
			if filter.ProjectID != nil {
				action, ok := view.FindAction(vote.ActionID)
				if !ok || action.ProjectID != *filter.ProjectID {
					continue
				}
			}
			summary, ok := totals[vote.MemberID]
			if !ok {
				continue
			}
			switch vote.Decision {
			case DecisionUp:
				summary.Upvotes++
			case DecisionDown:
				summary.Downvotes++
			}
		}
		for _, member := range members {
			out = append(out, *totals[member.ID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TrollSummary describes a member whose authored actions gathered more
// downvotes than upvotes overall. Active reports whether the member's last
// activity falls in the same or a later year than the query instant.
type TrollSummary struct {
	MemberID  int64 `json:"member_id"`
	Upvotes   int   `json:"upvotes"`
	Downvotes int   `json:"downvotes"`
	Active    bool  `json:"active"`
}

// Trolls returns troll summaries ordered by downvote surplus descending, then
// member id ascending.
func (s *Service) Trolls(ctx context.Context, asOf time.Time) ([]TrollSummary, error) {
	var out []TrollSummary
	err := s.store.View(ctx, func(view TransactionView) error {
		type totals struct{ up, down int }
		byAuthor := make(map[int64]*totals)
		for _, action := range view.ListActions() {
			tally, ok := byAuthor[action.MemberID]
			if !ok {
				tally = &totals{}
				byAuthor[action.MemberID] = tally
			}
			tally.up += action.Upvotes
			tally.down += action.Downvotes
		}
		for _, member := range view.ListMembers() {
			tally, ok := byAuthor[member.ID]
			if !ok || tally.down <= tally.up {
				continue
			}
			out = append(out, TrollSummary{
				MemberID:  member.ID,
				Upvotes:   tally.up,
				Downvotes: tally.down,
				Active:    member.LastActiveAt.Year() >= asOf.Year(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		surplusI := out[i].Downvotes - out[i].Upvotes
		surplusJ := out[j].Downvotes - out[j].Upvotes
		if surplusI != surplusJ {
			return surplusI > surplusJ
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out, nil
}
