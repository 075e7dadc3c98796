package draft

import (
	"fmt"
	"math"
	"slices"

	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/omarshaarawi/draftbot/internal/solver"
)

// Formulation holds the decision variables of a built draft model.
type Formulation struct {
	Starters map[string]solver.Var
	Reserves map[string]solver.Var
	// Draftable lists players with variables, in input order.
	Draftable []models.Player
	Slots     []int
}

// Build adds the draft variables, constraints and objective to m. Players
// drafted by someone else get no variables at all.
func Build(m solver.Model, in *models.Input, edp map[string]int) *Formulation {
	f := &Formulation{
		Starters: make(map[string]solver.Var),
		Reserves: make(map[string]solver.Var),
		Slots:    slices.Sorted(slices.Values(in.MyDraftPositions)),
	}

	alreadyMine := 0
	for _, p := range in.Players {
		if p.Status == models.DraftedBySomeoneElse {
			continue
		}
		f.Draftable = append(f.Draftable, p)
		f.Starters[p.Name] = m.AddBinary("starter_" + p.Name)
		f.Reserves[p.Name] = m.AddBinary("reserve_" + p.Name)
		if p.Status == models.DraftedByMe {
			alreadyMine++
		}
	}

	for _, p := range f.Draftable {
		both := solver.Sum(f.Starters[p.Name], f.Reserves[p.Name])
		if p.Status == models.DraftedByMe {
			m.AddConstraint("already_drafted_"+p.Name, both, solver.Equal, 1)
		} else {
			m.AddConstraint("cant_draft_twice_"+p.Name, both, solver.LessEqual, 1)
		}
	}

	for i, slot := range f.Slots {
		var ahead solver.Expr
		for _, p := range f.Draftable {
			if edp[p.Name] < slot {
				ahead = append(ahead, f.selected(p.Name)...)
			}
		}
		m.AddConstraint(fmt.Sprintf("at_most_%d_can_be_ahead_of_%d", i, slot), ahead, solver.LessEqual, float64(i))
	}

	var draftSize solver.Expr
	for _, p := range f.Draftable {
		draftSize = append(draftSize, f.selected(p.Name)...)
	}
	m.AddConstraint("need_to_extend_by_at_least_one", draftSize, solver.GreaterEqual, float64(alreadyMine+1))
	m.AddConstraint("cant_exceed_draft_total", draftSize, solver.LessEqual, float64(len(f.Slots)))

	flexPositions := make(map[string]bool)
	for _, rr := range in.RosterRequirements {
		var starters, reserves []solver.Var
		for _, p := range f.Draftable {
			if p.Position == rr.Position {
				starters = append(starters, f.Starters[p.Name])
				reserves = append(reserves, f.Reserves[p.Name])
			}
		}
		m.AddConstraint("min_starters_"+rr.Position, solver.Sum(starters...), solver.GreaterEqual, float64(rr.MinStarters))
		m.AddConstraint("max_starters_"+rr.Position, solver.Sum(starters...), solver.LessEqual, float64(rr.MaxStarters))
		m.AddConstraint("min_reserve_"+rr.Position, solver.Sum(reserves...), solver.GreaterEqual, float64(rr.MinReserve))
		m.AddConstraint("max_reserve_"+rr.Position, solver.Sum(reserves...), solver.LessEqual, float64(rr.MaxReserve))
		if rr.Flex == models.FlexEligible {
			flexPositions[rr.Position] = true
		}
	}

	var flexStarters []solver.Var
	for _, p := range f.Draftable {
		if flexPositions[p.Position] {
			flexStarters = append(flexStarters, f.Starters[p.Name])
		}
	}
	maxFlex := math.Min(in.Parameters.MaxFlexStarters, float64(len(f.Slots)))
	m.AddConstraint("max_flex", solver.Sum(flexStarters...), solver.LessEqual, maxFlex)

	var objective solver.Expr
	for _, p := range f.Draftable {
		objective = objective.
			Plus(f.Starters[p.Name], p.ExpectedPoints*in.Parameters.StarterWeight).
			Plus(f.Reserves[p.Name], p.ExpectedPoints*in.Parameters.ReserveWeight)
	}
	m.SetObjective(objective, solver.Maximize)

	return f
}

func (f *Formulation) selected(name string) solver.Expr {
	return solver.Sum(f.Starters[name], f.Reserves[name])
}
