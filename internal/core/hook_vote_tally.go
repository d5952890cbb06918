package core

import (
	"context"

	"trackcore/pkg/domain"
)

// NewVoteTallyMaintainer returns the reactor keeping each action's up/down
// counters in step with committed votes. Decisions outside {"up","down"} are
// stored untouched and leave the tally unchanged.
func NewVoteTallyMaintainer() domain.Reactor {
	return voteTallyMaintainer{}
}

type voteTallyMaintainer struct{}

func (voteTallyMaintainer) Name() string { return "vote_tally_maintainer" }

func (voteTallyMaintainer) React(_ context.Context, tx domain.Transaction, change domain.Change) error {
	if change.Entity != domain.EntityVote || change.Op != domain.OpCreate {
		return nil
	}
	vote := change.After.(domain.Vote)
	switch vote.Decision {
	case domain.DecisionUp:
		_, err := tx.UpdateAction(vote.ActionID, func(a *domain.Action) error {
			a.Upvotes++
			return nil
		})
		return err
	case domain.DecisionDown:
		_, err := tx.UpdateAction(vote.ActionID, func(a *domain.Action) error {
			a.Downvotes++
			return nil
		})
		return err
	default:
		return nil
	}
}
