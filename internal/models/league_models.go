package models

import "time"

type DraftStatus string

const (
	Undrafted            DraftStatus = "Un-drafted"
	DraftedByMe          DraftStatus = "Drafted By Me"
	DraftedBySomeoneElse DraftStatus = "Drafted By Someone Else"
)

type FlexStatus string

const (
	FlexEligible   FlexStatus = "Flex Eligible"
	FlexIneligible FlexStatus = "Flex Ineligible"
)

type Role string

const (
	Starter Role = "Starter"
	Reserve Role = "Reserve"
)

type Provenance string

const (
	Planned Provenance = "Planned"
	Actual  Provenance = "Actual"
)

type DraftPerformed string

const (
	Complete DraftPerformed = "Complete"
	Partial  DraftPerformed = "Partial"
)

type Player struct {
	Name                 string
	Position             string
	AverageDraftPosition float64
	ExpectedPoints       float64
	Status               DraftStatus
}

type RosterRequirement struct {
	Position    string
	MinStarters int
	MaxStarters int
	MinReserve  int
	MaxReserve  int
	Flex        FlexStatus
}

type Parameters struct {
	StarterWeight   float64
	ReserveWeight   float64
	MaxFlexStarters float64
}

// Input is a validated draft board.
type Input struct {
	Parameters         Parameters
	Players            []Player
	RosterRequirements []RosterRequirement
	MyDraftPositions   []int
}

type DraftPick struct {
	PlayerName    string
	DraftPosition int
	Position      string
	Provenance    Provenance
	Role          Role
}

type Solution struct {
	TotalYield     float64
	DraftPerformed DraftPerformed
	// Picks are ordered by draft position.
	Picks []DraftPick
}

// Board is the live draft state kept between bot commands.
type Board struct {
	Input       *Input
	LeagueName  string
	TeamName    string
	PickCount   int
	LastUpdated time.Time
	LastPlan    *Solution
}

// LeagueSettings is the part of an ESPN league that shapes a draft.
type LeagueSettings struct {
	LeagueID  int
	Name      string
	Size      int
	PickOrder []int
	// LineupSlotCounts maps an ESPN lineup slot id to the number of such slots.
	LineupSlotCounts map[int]int
	Teams            map[int]string
	LastUpdated      time.Time
}

type DraftedPlayer struct {
	PlayerID    int
	TeamID      int
	OverallPick int
}

type PoolPlayer struct {
	ID                   int
	Name                 string
	Position             string
	ProTeam              string
	AverageDraftPosition float64
	ProjectedPoints      float64
}
