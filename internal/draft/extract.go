package draft

import (
	"math"
	"slices"

	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/omarshaarawi/draftbot/internal/solver"
)

// selectionTolerance absorbs solver noise such as 0.9999999 for a chosen binary.
const selectionTolerance = 1e-4

func almostOne(x float64) bool {
	return math.Abs(x-1) < selectionTolerance
}

// Extract reads a solved model back into a Solution. Picked players are
// matched to my draft slots in expected draft position order.
func Extract(m solver.Model, f *Formulation, edp map[string]int) *models.Solution {
	type pick struct {
		player  models.Player
		starter bool
	}
	var picked []pick
	for _, p := range f.Draftable {
		starter := almostOne(m.Value(f.Starters[p.Name]))
		if starter || almostOne(m.Value(f.Reserves[p.Name])) {
			picked = append(picked, pick{player: p, starter: starter})
		}
	}
	slices.SortFunc(picked, func(a, b pick) int {
		return edp[a.player.Name] - edp[b.player.Name]
	})

	sol := &models.Solution{TotalYield: m.ObjectiveValue()}
	for i, p := range picked {
		if i >= len(f.Slots) {
			break
		}
		dp := models.DraftPick{
			PlayerName:    p.player.Name,
			DraftPosition: f.Slots[i],
			Position:      p.player.Position,
			Provenance:    models.Planned,
			Role:          models.Reserve,
		}
		if p.player.Status == models.DraftedByMe {
			dp.Provenance = models.Actual
		}
		if p.starter {
			dp.Role = models.Starter
		}
		sol.Picks = append(sol.Picks, dp)
	}

	sol.DraftPerformed = models.Complete
	if len(sol.Picks) < len(f.Slots) {
		sol.DraftPerformed = models.Partial
	}
	return sol
}
