// Package draft turns a fantasy-football draft board into a binary MILP,
// solves it and reads back the best draft plan.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/omarshaarawi/draftbot/internal/schema"
	"github.com/omarshaarawi/draftbot/internal/solver"
)

var ErrNoDraftPossible = errors.New("no draft at all is possible")

type Optimizer struct {
	newModel solver.Factory
	logger   *slog.Logger
}

type Option func(*Optimizer)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = logger }
}

func NewOptimizer(newModel solver.Factory, opts ...Option) *Optimizer {
	o := &Optimizer{newModel: newModel, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize validates the input tables and returns the best draft plan. A
// validation problem aborts before any model is built.
func (o *Optimizer) Optimize(ctx context.Context, d schema.Data) (*models.Solution, error) {
	in, err := DecodeInput(d)
	if err != nil {
		return nil, err
	}

	edp := ExpectedDraftPositions(in.Players)
	m := o.newModel("fantop")
	f := Build(m, in, edp)

	status, err := m.Solve(ctx)
	if err != nil {
		return nil, fmt.Errorf("solving draft model: %w", err)
	}
	if status != solver.Optimal {
		o.logger.Warn("No draft at all is possible", "status", status.String())
		return nil, fmt.Errorf("%w: solver finished %s", ErrNoDraftPossible, status)
	}

	sol := Extract(m, f, edp)
	if sol.DraftPerformed == models.Partial {
		o.logger.Warn("Model is over-constrained, only a partial draft was possible",
			"picks", len(sol.Picks),
			"slots", len(f.Slots))
	}
	o.logger.Info("Draft optimized",
		"players", len(in.Players),
		"draftable", len(f.Draftable),
		"total_yield", sol.TotalYield,
		"draft_performed", sol.DraftPerformed)
	return sol, nil
}

// Solve is Optimize with the result rendered as output tables.
func (o *Optimizer) Solve(ctx context.Context, d schema.Data) (schema.Data, error) {
	sol, err := o.Optimize(ctx, d)
	if err != nil {
		return nil, err
	}
	return SolutionTables(sol), nil
}
