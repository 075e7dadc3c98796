package fantasy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/omarshaarawi/draftbot/internal/api/espn"
	"github.com/omarshaarawi/draftbot/internal/models"
)

var ErrTeamNotInDraft = errors.New("team is not in the draft order")

// unrankedADP is the draft position given to players ESPN has not ranked.
const unrankedADP = 500

type BoardOptions struct {
	StarterWeight   float64
	ReserveWeight   float64
	// MaxFlexStarters caps flex-eligible starters. Negative derives the cap
	// from the league's lineup slots.
	MaxFlexStarters int
	PoolSize        int
}

type API struct {
	espnAPI *espn.API
}

func NewAPI(espnAPI *espn.API) *API {
	return &API{espnAPI: espnAPI}
}

func (a *API) GetLeagueSettings(ctx context.Context) (*models.LeagueSettings, error) {
	return a.espnAPI.GetLeagueSettings(ctx)
}

func (a *API) GetDraftDetail(ctx context.Context) ([]models.DraftedPlayer, error) {
	return a.espnAPI.GetDraftDetail(ctx)
}

// GetDraftBoard builds the live draft board for teamID from the league
// settings, the picks made so far and the player pool.
func (a *API) GetDraftBoard(ctx context.Context, teamID int, opts BoardOptions) (*models.Board, error) {
	settings, err := a.espnAPI.GetLeagueSettings(ctx)
	if err != nil {
		return nil, err
	}
	picks, err := a.espnAPI.GetDraftDetail(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := a.espnAPI.GetPlayerPool(ctx, opts.PoolSize)
	if err != nil {
		return nil, err
	}

	in, err := BuildInput(settings, picks, pool, teamID, opts)
	if err != nil {
		return nil, err
	}

	return &models.Board{
		Input:       in,
		LeagueName:  settings.Name,
		TeamName:    settings.Teams[teamID],
		PickCount:   len(picks),
		LastUpdated: time.Now(),
	}, nil
}

// BuildInput translates ESPN league data into an optimizer input.
func BuildInput(settings *models.LeagueSettings, picks []models.DraftedPlayer, pool []models.PoolPlayer, teamID int, opts BoardOptions) (*models.Input, error) {
	requirements, maxFlex, rounds := rosterRequirements(settings.LineupSlotCounts)
	if opts.MaxFlexStarters >= 0 {
		maxFlex = float64(opts.MaxFlexStarters)
	}

	positions, err := snakePositions(settings, teamID, rounds)
	if err != nil {
		return nil, err
	}

	owner := make(map[int]int, len(picks))
	for _, p := range picks {
		owner[p.PlayerID] = p.TeamID
	}

	in := &models.Input{
		Parameters: models.Parameters{
			StarterWeight:   opts.StarterWeight,
			ReserveWeight:   opts.ReserveWeight,
			MaxFlexStarters: maxFlex,
		},
		RosterRequirements: requirements,
	}

	known := make(map[string]bool, len(requirements))
	for _, rr := range requirements {
		known[rr.Position] = true
	}

	names := uniqueNames(pool)
	mineInPool := 0
	for i, p := range pool {
		if !known[p.Position] {
			continue
		}
		status := models.Undrafted
		if team, ok := owner[p.ID]; ok {
			status = models.DraftedBySomeoneElse
			if team == teamID {
				status = models.DraftedByMe
				mineInPool++
			}
		}
		adp := p.AverageDraftPosition
		if adp <= 0 {
			adp = float64(unrankedADP + i)
		}
		in.Players = append(in.Players, models.Player{
			Name:                 names[i],
			Position:             p.Position,
			AverageDraftPosition: adp,
			ExpectedPoints:       p.ProjectedPoints,
			Status:               status,
		})
	}

	// A pick of ours that fell outside the pool still used up one of our slots.
	mine := 0
	for _, p := range picks {
		if p.TeamID == teamID {
			mine++
		}
	}
	in.MyDraftPositions = positions[min(mine-mineInPool, len(positions)):]

	return in, nil
}

// rosterRequirements derives per-position bounds from ESPN lineup slots. Every
// flex-style slot widens the starter range of each position it accepts.
func rosterRequirements(slots map[int]int) ([]models.RosterRequirement, float64, int) {
	dedicated := []struct {
		slot     int
		position string
		flex     bool
	}{
		{espn.SlotQB, "QB", false},
		{espn.SlotRB, "RB", true},
		{espn.SlotWR, "WR", true},
		{espn.SlotTE, "TE", true},
		{espn.SlotK, "K", false},
		{espn.SlotDST, "D/ST", false},
	}

	extra := map[string]int{
		"QB": slots[espn.SlotOP],
		"RB": slots[espn.SlotFlex] + slots[espn.SlotRBWR] + slots[espn.SlotOP],
		"WR": slots[espn.SlotFlex] + slots[espn.SlotRBWR] + slots[espn.SlotWRTE] + slots[espn.SlotOP],
		"TE": slots[espn.SlotFlex] + slots[espn.SlotWRTE] + slots[espn.SlotOP],
	}
	bench := slots[espn.SlotBench]

	maxFlex := slots[espn.SlotFlex] + slots[espn.SlotRBWR] + slots[espn.SlotWRTE] + slots[espn.SlotOP]
	rounds := 0
	for slot, count := range slots {
		if slot != espn.SlotIR {
			rounds += count
		}
	}

	var requirements []models.RosterRequirement
	for _, d := range dedicated {
		count := slots[d.slot]
		if count == 0 && extra[d.position] == 0 {
			continue
		}
		flex := models.FlexIneligible
		if d.flex {
			flex = models.FlexEligible
			maxFlex += count
		}
		requirements = append(requirements, models.RosterRequirement{
			Position:    d.position,
			MinStarters: count,
			MaxStarters: count + extra[d.position],
			MinReserve:  0,
			MaxReserve:  bench,
			Flex:        flex,
		})
	}

	return requirements, float64(maxFlex), rounds
}

// snakePositions lists teamID's overall pick numbers in a snake draft.
func snakePositions(settings *models.LeagueSettings, teamID, rounds int) ([]int, error) {
	idx := slices.Index(settings.PickOrder, teamID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: team %d", ErrTeamNotInDraft, teamID)
	}
	teams := len(settings.PickOrder)

	positions := make([]int, 0, rounds)
	for r := 1; r <= rounds; r++ {
		if r%2 == 1 {
			positions = append(positions, (r-1)*teams+idx+1)
		} else {
			positions = append(positions, r*teams-idx)
		}
	}
	return positions, nil
}

// uniqueNames disambiguates players who share a name with their pro team.
func uniqueNames(pool []models.PoolPlayer) []string {
	count := make(map[string]int, len(pool))
	for _, p := range pool {
		count[p.Name]++
	}
	names := make([]string, len(pool))
	seen := make(map[string]int, len(pool))
	for i, p := range pool {
		name := p.Name
		if count[p.Name] > 1 {
			name = fmt.Sprintf("%s (%s)", p.Name, p.ProTeam)
		}
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s #%d", name, seen[name])
		}
		names[i] = name
	}
	return names
}
