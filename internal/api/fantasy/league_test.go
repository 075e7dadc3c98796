package fantasy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/omarshaarawi/draftbot/internal/api/espn"
	"github.com/omarshaarawi/draftbot/internal/config"
	"github.com/omarshaarawi/draftbot/internal/draft"
	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/omarshaarawi/draftbot/internal/solver/branchbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() *models.LeagueSettings {
	return &models.LeagueSettings{
		Name:      "UGF",
		Size:      4,
		PickOrder: []int{3, 1, 4, 2},
		LineupSlotCounts: map[int]int{
			espn.SlotQB:    1,
			espn.SlotRB:    2,
			espn.SlotWR:    2,
			espn.SlotTE:    1,
			espn.SlotFlex:  1,
			espn.SlotK:     1,
			espn.SlotDST:   1,
			espn.SlotBench: 6,
			espn.SlotIR:    1,
		},
		Teams: map[int]string{1: "UGF Pandas", 2: "Coach Dad", 3: "Beyond Cursed", 4: "Stairway to Evans"},
	}
}

func defaultOptions() BoardOptions {
	return BoardOptions{StarterWeight: 1.2, ReserveWeight: 0.9, MaxFlexStarters: -1, PoolSize: 10}
}

func TestRosterRequirements(t *testing.T) {
	reqs, maxFlex, rounds := rosterRequirements(testSettings().LineupSlotCounts)

	assert.Equal(t, 15, rounds)
	assert.Equal(t, 6.0, maxFlex)

	byPosition := make(map[string]models.RosterRequirement)
	for _, rr := range reqs {
		byPosition[rr.Position] = rr
	}
	require.Len(t, byPosition, 6)

	assert.Equal(t, models.RosterRequirement{Position: "QB", MinStarters: 1, MaxStarters: 1, MaxReserve: 6, Flex: models.FlexIneligible}, byPosition["QB"])
	assert.Equal(t, models.RosterRequirement{Position: "RB", MinStarters: 2, MaxStarters: 3, MaxReserve: 6, Flex: models.FlexEligible}, byPosition["RB"])
	assert.Equal(t, models.RosterRequirement{Position: "TE", MinStarters: 1, MaxStarters: 2, MaxReserve: 6, Flex: models.FlexEligible}, byPosition["TE"])
	assert.Equal(t, models.FlexIneligible, byPosition["D/ST"].Flex)
}

func TestSnakePositions(t *testing.T) {
	positions, err := snakePositions(testSettings(), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 6, 11, 14}, positions)

	positions, err = snakePositions(testSettings(), 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 8, 9}, positions)

	_, err = snakePositions(testSettings(), 9, 3)
	assert.ErrorIs(t, err, ErrTeamNotInDraft)
}

func TestBuildInput_Statuses(t *testing.T) {
	pool := []models.PoolPlayer{
		{ID: 10, Name: "Christian McCaffrey", Position: "RB", ProTeam: "SF", AverageDraftPosition: 1.2, ProjectedPoints: 300},
		{ID: 11, Name: "Mike Williams", Position: "WR", ProTeam: "NYJ", AverageDraftPosition: 90, ProjectedPoints: 120},
		{ID: 12, Name: "Mike Williams", Position: "WR", ProTeam: "LAC", AverageDraftPosition: 0, ProjectedPoints: 90},
		{ID: 13, Name: "Justin Tucker", Position: "K", ProTeam: "BAL", AverageDraftPosition: 120, ProjectedPoints: 140},
	}
	picks := []models.DraftedPlayer{
		{PlayerID: 10, TeamID: 3, OverallPick: 1},
		{PlayerID: 11, TeamID: 1, OverallPick: 2},
	}

	in, err := BuildInput(testSettings(), picks, pool, 1, defaultOptions())
	require.NoError(t, err)

	require.Len(t, in.Players, 4)
	assert.Equal(t, models.DraftedBySomeoneElse, in.Players[0].Status)
	assert.Equal(t, "Mike Williams (NYJ)", in.Players[1].Name)
	assert.Equal(t, models.DraftedByMe, in.Players[1].Status)
	assert.Equal(t, "Mike Williams (LAC)", in.Players[2].Name)
	assert.Equal(t, float64(unrankedADP+2), in.Players[2].AverageDraftPosition)
	assert.Equal(t, models.Undrafted, in.Players[3].Status)

	require.Len(t, in.MyDraftPositions, 15)
	assert.Equal(t, []int{2, 7, 10}, in.MyDraftPositions[:3])
	assert.Equal(t, 6.0, in.Parameters.MaxFlexStarters)
	assert.Equal(t, 1.2, in.Parameters.StarterWeight)
}

func TestBuildInput_OwnPickOutsidePoolUsesASlot(t *testing.T) {
	pool := []models.PoolPlayer{
		{ID: 13, Name: "Justin Tucker", Position: "K", AverageDraftPosition: 120, ProjectedPoints: 140},
	}
	picks := []models.DraftedPlayer{{PlayerID: 77, TeamID: 1, OverallPick: 2}}
	opts := defaultOptions()
	opts.MaxFlexStarters = 2

	in, err := BuildInput(testSettings(), picks, pool, 1, opts)
	require.NoError(t, err)

	assert.Equal(t, []int{7, 10}, in.MyDraftPositions[:2])
	assert.Len(t, in.MyDraftPositions, 14)
	assert.Equal(t, 2.0, in.Parameters.MaxFlexStarters)
}

// twelveTeamLeague is a standard 12-team league drafting 16 rounds.
func twelveTeamLeague() *models.LeagueSettings {
	settings := &models.LeagueSettings{
		Name: "Twelve",
		Size: 12,
		LineupSlotCounts: map[int]int{
			espn.SlotQB:    1,
			espn.SlotRB:    2,
			espn.SlotWR:    2,
			espn.SlotTE:    1,
			espn.SlotFlex:  1,
			espn.SlotK:     1,
			espn.SlotDST:   1,
			espn.SlotBench: 7,
			espn.SlotIR:    1,
		},
		Teams: make(map[int]string),
	}
	for id := 1; id <= 12; id++ {
		settings.PickOrder = append(settings.PickOrder, id)
		settings.Teams[id] = gofakeit.Company()
	}
	return settings
}

func fullPool(n int) []models.PoolPlayer {
	faker := gofakeit.New(12)
	positions := []string{"RB", "WR", "WR", "RB", "QB", "TE", "WR", "RB", "D/ST", "K"}
	pool := make([]models.PoolPlayer, n)
	for i := range pool {
		pool[i] = models.PoolPlayer{
			ID:                   i + 1,
			Name:                 faker.Name(),
			Position:             positions[i%len(positions)],
			ProTeam:              "FA",
			AverageDraftPosition: float64(i + 1),
			ProjectedPoints:      380 - float64(i) + faker.Float64Range(-25, 25),
		}
	}
	return pool
}

// snakePicks drafts the first n pool players in ADP order.
func snakePicks(settings *models.LeagueSettings, pool []models.PoolPlayer, n int) []models.DraftedPlayer {
	teams := len(settings.PickOrder)
	picks := make([]models.DraftedPlayer, 0, n)
	for k := 0; k < n; k++ {
		round, idx := k/teams, k%teams
		if round%2 == 1 {
			idx = teams - 1 - idx
		}
		picks = append(picks, models.DraftedPlayer{
			PlayerID:    pool[k].ID,
			TeamID:      settings.PickOrder[idx],
			OverallPick: k + 1,
		})
	}
	return picks
}

func TestBuildInput_FullLeagueBoardSolvesWithinPollDeadline(t *testing.T) {
	settings := twelveTeamLeague()
	pool := fullPool(300)

	tests := []struct {
		name  string
		picks []models.DraftedPlayer
	}{
		{name: "before the draft", picks: nil},
		{name: "after four rounds", picks: snakePicks(settings, pool, 48)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := BoardOptions{StarterWeight: 1.2, ReserveWeight: 0.9, MaxFlexStarters: -1, PoolSize: len(pool)}
			in, err := BuildInput(settings, tt.picks, pool, 5, opts)
			require.NoError(t, err)
			require.Len(t, in.Players, 300)
			require.Len(t, in.MyDraftPositions, 16)

			optimizer := draft.NewOptimizer(branchbound.Factory(branchbound.WithNodeLimit(200000)))
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			start := time.Now()
			sol, err := optimizer.Optimize(ctx, draft.InputTables(in))
			require.NoError(t, err)
			assert.Less(t, time.Since(start), time.Minute)

			assert.Equal(t, models.Complete, sol.DraftPerformed)
			require.Len(t, sol.Picks, 16)
			actual := 0
			for _, p := range sol.Picks {
				if p.Provenance == models.Actual {
					actual++
				}
			}
			assert.Equal(t, len(tt.picks)/12, actual)
		})
	}
}

func TestUniqueNames(t *testing.T) {
	names := uniqueNames([]models.PoolPlayer{
		{Name: "A", ProTeam: "KC"},
		{Name: "A", ProTeam: "KC"},
		{Name: "B", ProTeam: "SF"},
	})
	assert.Equal(t, []string{"A (KC)", "A (KC) #2", "B"}, names)
}

func TestGetDraftBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("view") {
		case "mSettings":
			w.Write([]byte(`{"id": 7, "settings": {"name": "UGF", "size": 2,
				"draftSettings": {"pickOrder": [2, 1]},
				"rosterSettings": {"lineupSlotCounts": {"0": 1, "20": 1}}},
				"teams": [{"id": 1, "name": "UGF Pandas"}, {"id": 2, "name": "Coach Dad"}]}`))
		case "mDraftDetail":
			w.Write([]byte(`{"draftDetail": {"picks": [{"playerId": 100, "teamId": 2, "overallPickNumber": 1}]}}`))
		case "kona_player_info":
			w.Write([]byte(`{"players": [
				{"id": 100, "player": {"id": 100, "fullName": "Josh Allen", "defaultPositionId": 1, "ownership": {"averageDraftPosition": 20},
					"stats": [{"statSourceId": 1, "scoringPeriodId": 0, "appliedTotal": 380}]}},
				{"id": 101, "player": {"id": 101, "fullName": "Jalen Hurts", "defaultPositionId": 1, "ownership": {"averageDraftPosition": 25},
					"stats": [{"statSourceId": 1, "scoringPeriodId": 0, "appliedTotal": 370}]}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := config.ESPNAPI{Year: "2026", LeagueID: "7"}
	api := NewAPI(espn.NewAPI(espn.NewClient(cfg, espn.WithBaseURL(srv.URL))))

	board, err := api.GetDraftBoard(context.Background(), 1, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "UGF", board.LeagueName)
	assert.Equal(t, "UGF Pandas", board.TeamName)
	assert.Equal(t, 1, board.PickCount)
	assert.Equal(t, []int{2, 3}, board.Input.MyDraftPositions)
	require.Len(t, board.Input.Players, 2)
	assert.Equal(t, models.DraftedBySomeoneElse, board.Input.Players[0].Status)
	assert.Equal(t, 370.0, board.Input.Players[1].ExpectedPoints)
}
