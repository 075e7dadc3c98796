package draft

import (
	"cmp"
	"slices"

	"github.com/omarshaarawi/draftbot/internal/models"
)

// ExpectedDraftPositions ranks every player by when they are expected to be
// gone. Players drafted by someone else come first, then players drafted by
// me, then undrafted players by average draft position. Ties keep input order,
// so the result is always a permutation of 1..len(players).
func ExpectedDraftPositions(players []models.Player) map[string]int {
	order := make([]int, len(players))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(sortKey(players[a]), sortKey(players[b]))
	})

	edp := make(map[string]int, len(players))
	for rank, idx := range order {
		edp[players[idx].Name] = rank + 1
	}
	return edp
}

func sortKey(p models.Player) float64 {
	switch p.Status {
	case models.DraftedBySomeoneElse:
		return -2
	case models.DraftedByMe:
		return -1
	default:
		return p.AverageDraftPosition
	}
}
