package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/omarshaarawi/draftbot/internal/models"
)

// ESPN lineup slot ids.
const (
	SlotQB    = 0
	SlotRB    = 2
	SlotRBWR  = 3
	SlotWR    = 4
	SlotWRTE  = 5
	SlotTE    = 6
	SlotOP    = 7
	SlotDST   = 16
	SlotK     = 17
	SlotBench = 20
	SlotIR    = 21
	SlotFlex  = 23
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) GetLeagueSettings(ctx context.Context) (*models.LeagueSettings, error) {
	var espnResponse models.LeagueResponse
	params := map[string]string{
		"view": "mSettings,mTeam",
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, nil, &espnResponse); err != nil {
		return nil, fmt.Errorf("fetching league settings: %w", err)
	}

	slots := make(map[int]int, len(espnResponse.Settings.RosterSettings.LineupSlotCounts))
	for id, count := range espnResponse.Settings.RosterSettings.LineupSlotCounts {
		slotID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("invalid lineup slot id %q: %w", id, err)
		}
		if count > 0 {
			slots[slotID] = count
		}
	}

	teams := make(map[int]string, len(espnResponse.Teams))
	for _, team := range espnResponse.Teams {
		teams[team.ID] = teamName(team)
	}

	size := espnResponse.Settings.Size
	if size == 0 {
		size = len(espnResponse.Teams)
	}

	settings := &models.LeagueSettings{
		LeagueID:         espnResponse.ID,
		Name:             espnResponse.Settings.Name,
		Size:             size,
		PickOrder:        espnResponse.Settings.DraftSettings.PickOrder,
		LineupSlotCounts: slots,
		Teams:            teams,
		LastUpdated:      time.Now(),
	}

	return settings, nil
}

// GetDraftDetail returns the picks made so far, in pick order.
func (a *API) GetDraftDetail(ctx context.Context) ([]models.DraftedPlayer, error) {
	var espnResponse models.LeagueResponse
	params := map[string]string{
		"view": "mDraftDetail",
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, nil, &espnResponse); err != nil {
		return nil, fmt.Errorf("fetching draft detail: %w", err)
	}

	var picks []models.DraftedPlayer
	for _, pick := range espnResponse.DraftDetail.Picks {
		if pick.PlayerID <= 0 {
			continue
		}
		picks = append(picks, models.DraftedPlayer{
			PlayerID:    pick.PlayerID,
			TeamID:      pick.TeamID,
			OverallPick: pick.OverallPickNumber,
		})
	}

	sort.Slice(picks, func(i, j int) bool {
		return picks[i].OverallPick < picks[j].OverallPick
	})

	return picks, nil
}

// GetPlayerPool returns the top limit players by draft rank with their
// season projections.
func (a *API) GetPlayerPool(ctx context.Context, limit int) ([]models.PoolPlayer, error) {
	var poolResponse models.PlayerPoolResponse
	params := map[string]string{
		"view": "kona_player_info",
	}

	filters := map[string]any{
		"players": map[string]any{
			"limit": limit,
			"sortDraftRanks": map[string]any{
				"sortPriority": 100,
				"sortAsc":      true,
				"value":        "STANDARD",
			},
		},
	}

	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("error marshalling filters: %w", err)
	}

	headers := map[string]string{
		"x-fantasy-filter": string(filtersJSON),
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, headers, &poolResponse); err != nil {
		return nil, fmt.Errorf("fetching player pool: %w", err)
	}

	season, _ := strconv.Atoi(a.client.Config.Year)
	players := make([]models.PoolPlayer, 0, len(poolResponse.Players))
	for _, entry := range poolResponse.Players {
		position := getPositionString(entry.Player.DefaultPositionID)
		if position == "Unknown" {
			continue
		}
		players = append(players, models.PoolPlayer{
			ID:                   entry.Player.ID,
			Name:                 entry.Player.FullName,
			Position:             position,
			ProTeam:              getProTeamString(entry.Player.ProTeamID),
			AverageDraftPosition: entry.Player.Ownership.AverageDraftPosition,
			ProjectedPoints:      getSeasonProjection(entry.Player, season),
		})
	}

	return players, nil
}

func getSeasonProjection(player models.ESPNPlayer, season int) float64 {
	for _, stat := range player.Stats {
		if stat.StatSourceID != 1 || stat.ScoringPeriodID != 0 {
			continue
		}
		if season != 0 && stat.SeasonID != 0 && stat.SeasonID != season {
			continue
		}
		return stat.AppliedTotal
	}
	return 0
}

func teamName(team models.Team) string {
	if team.Name != "" {
		return team.Name
	}
	name := strings.TrimSpace(team.Location + " " + team.Nickname)
	if name == "" {
		return team.Abbreviation
	}
	return name
}

func getPositionString(positionID int) string {
	positions := map[int]string{
		1: "QB", 2: "RB", 3: "WR", 4: "TE", 5: "K", 16: "D/ST",
	}
	if pos, ok := positions[positionID]; ok {
		return pos
	}
	return "Unknown"
}

func getProTeamString(proTeamID int) string {
	teams := map[int]string{
		1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN", 8: "DET",
		9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "LV", 14: "LAR", 15: "MIA", 16: "MIN",
		17: "NE", 18: "NO", 19: "NYG", 20: "NYJ", 21: "PHI", 22: "ARI", 23: "PIT", 24: "LAC",
		25: "SF", 26: "SEA", 27: "TB", 28: "WSH", 29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
	}

	if team, ok := teams[proTeamID]; ok {
		return team
	}

	return "FA"
}

// LineupSlotString names an ESPN lineup slot.
func LineupSlotString(slotID int) string {
	switch slotID {
	case SlotQB:
		return "QB"
	case SlotRB:
		return "RB"
	case SlotRBWR:
		return "RB/WR"
	case SlotWR:
		return "WR"
	case SlotWRTE:
		return "WR/TE"
	case SlotTE:
		return "TE"
	case SlotOP:
		return "OP"
	case SlotDST:
		return "D/ST"
	case SlotK:
		return "K"
	case SlotBench:
		return "Bench"
	case SlotIR:
		return "IR"
	case SlotFlex:
		return "FLEX"
	default:
		return "Unknown"
	}
}
