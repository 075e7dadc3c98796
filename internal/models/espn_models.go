package models

type LeagueResponse struct {
	ID          int         `json:"id"`
	SeasonID    int         `json:"seasonId"`
	Status      Status      `json:"status"`
	Teams       []Team      `json:"teams"`
	Settings    Settings    `json:"settings"`
	DraftDetail DraftDetail `json:"draftDetail"`
}

type Settings struct {
	Name           string         `json:"name"`
	Size           int            `json:"size"`
	DraftSettings  DraftSettings  `json:"draftSettings"`
	RosterSettings RosterSettings `json:"rosterSettings"`
}

type DraftSettings struct {
	Date      int64  `json:"date"`
	Type      string `json:"type"`
	PickOrder []int  `json:"pickOrder"`
}

type RosterSettings struct {
	LineupSlotCounts map[string]int `json:"lineupSlotCounts"`
}

type Status struct {
	IsActive bool `json:"isActive"`
}

type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbrev"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	Nickname     string `json:"nickname"`
}

type DraftDetail struct {
	Drafted    bool             `json:"drafted"`
	InProgress bool             `json:"inProgress"`
	Picks      []DraftPickEntry `json:"picks"`
}

type DraftPickEntry struct {
	PlayerID          int `json:"playerId"`
	TeamID            int `json:"teamId"`
	OverallPickNumber int `json:"overallPickNumber"`
	RoundID           int `json:"roundId"`
	RoundPickNumber   int `json:"roundPickNumber"`
}

type PlayerPoolResponse struct {
	Players []PlayerPoolEntry `json:"players"`
}

type PlayerPoolEntry struct {
	ID       int        `json:"id"`
	OnTeamID int        `json:"onTeamId"`
	Status   string     `json:"status"`
	Player   ESPNPlayer `json:"player"`
}

// ESPNPlayer is a player record as the kona_player_info view returns it.
type ESPNPlayer struct {
	ID                int       `json:"id"`
	FullName          string    `json:"fullName"`
	DefaultPositionID int       `json:"defaultPositionId"`
	ProTeamID         int       `json:"proTeamId"`
	Ownership         Ownership `json:"ownership"`
	Stats             []Stat    `json:"stats"`
	InjuryStatus      string    `json:"injuryStatus"`
}

type Ownership struct {
	PercentOwned         float64 `json:"percentOwned"`
	AverageDraftPosition float64 `json:"averageDraftPosition"`
}

type Stat struct {
	SeasonID        int     `json:"seasonId"`
	StatSourceID    int     `json:"statSourceId"`
	StatSplitTypeID int     `json:"statSplitTypeId"`
	ScoringPeriodID int     `json:"scoringPeriodId"`
	AppliedTotal    float64 `json:"appliedTotal"`
}
