package draft

import (
	"math"
	"slices"
	"strconv"

	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/omarshaarawi/draftbot/internal/schema"
)

const (
	PlayersTable            = "players"
	RosterRequirementsTable = "roster_requirements"
	MyDraftPositionsTable   = "my_draft_positions"
	MyDraftTable            = "my_draft"
)

const (
	FieldPlayerName           = "Player Name"
	FieldPosition             = "Position"
	FieldAverageDraftPosition = "Average Draft Position"
	FieldExpectedPoints       = "Expected Points"
	FieldDraftStatus          = "Draft Status"
	FieldMinStarters          = "Min Num Starters"
	FieldMaxStarters          = "Max Num Starters"
	FieldMinReserve           = "Min Num Reserve"
	FieldMaxReserve           = "Max Num Reserve"
	FieldFlexStatus           = "Flex Status"
	FieldDraftPosition        = "Draft Position"
	FieldPlannedOrActual      = "Planned Or Actual"
	FieldStarterOrReserve     = "Starter Or Reserve"
)

const (
	ParamStarterWeight   = "Starter Weight"
	ParamReserveWeight   = "Reserve Weight"
	ParamMaxFlexStarters = "Maximum Number of Flex Starters"
	ParamTotalYield      = "Total Yield"
	ParamDraftPerformed  = "Draft Performed"
)

const (
	DefaultStarterWeight = 1.2
	DefaultReserveWeight = 0.9
)

var (
	InputSchema    = newInputSchema()
	SolutionSchema = newSolutionSchema()
)

func parametersTable() schema.Table {
	return schema.Table{
		Name:       schema.ParametersTable,
		PrimaryKey: []string{schema.ParameterField},
		DataFields: []string{schema.ValueField},
	}
}

func newInputSchema() *schema.Schema {
	s := schema.New(
		parametersTable(),
		schema.Table{
			Name:       PlayersTable,
			PrimaryKey: []string{FieldPlayerName},
			DataFields: []string{FieldPosition, FieldAverageDraftPosition, FieldExpectedPoints, FieldDraftStatus},
		},
		schema.Table{
			Name:       RosterRequirementsTable,
			PrimaryKey: []string{FieldPosition},
			DataFields: []string{FieldMinStarters, FieldMaxStarters, FieldMinReserve, FieldMaxReserve, FieldFlexStatus},
		},
		schema.Table{
			Name:       MyDraftPositionsTable,
			PrimaryKey: []string{FieldDraftPosition},
		},
	)

	s.AddForeignKey(schema.ForeignKey{
		Native:  PlayersTable,
		Foreign: RosterRequirementsTable,
		Fields:  [][2]string{{FieldPosition, FieldPosition}},
	})

	inf := math.Inf(1)
	s.SetDataType(PlayersTable, FieldAverageDraftPosition, schema.Numeric(0, inf, false, false))
	s.SetDataType(PlayersTable, FieldExpectedPoints, schema.Numeric(math.Inf(-1), inf, false, false))
	s.SetDataType(PlayersTable, FieldDraftStatus, schema.Enum(
		string(models.Undrafted), string(models.DraftedByMe), string(models.DraftedBySomeoneElse)))
	for _, f := range []string{FieldMinStarters, FieldMinReserve, FieldMaxReserve} {
		s.SetDataType(RosterRequirementsTable, f, schema.Integer(0, inf, true, false))
	}
	s.SetDataType(RosterRequirementsTable, FieldMaxStarters, schema.Integer(0, inf, true, true))
	s.SetDataType(RosterRequirementsTable, FieldFlexStatus, schema.Enum(
		string(models.FlexEligible), string(models.FlexIneligible)))
	s.SetDataType(MyDraftPositionsTable, FieldDraftPosition, schema.Integer(0, inf, false, false))

	s.AddRowPredicate(RosterRequirementsTable, "Max Num Starters must not be below Min Num Starters",
		func(r schema.Row) bool {
			return r[FieldMaxStarters].(float64) >= r[FieldMinStarters].(float64)
		})
	s.AddRowPredicate(RosterRequirementsTable, "Max Num Reserve must not be below Min Num Reserve",
		func(r schema.Row) bool {
			return r[FieldMaxReserve].(float64) >= r[FieldMinReserve].(float64)
		})

	s.AddParameter(ParamStarterWeight, DefaultStarterWeight, schema.Numeric(0, inf, false, false))
	s.AddParameter(ParamReserveWeight, DefaultReserveWeight, schema.Numeric(0, inf, false, false))
	s.AddParameter(ParamMaxFlexStarters, inf, schema.Numeric(0, inf, true, true))
	return s
}

func newSolutionSchema() *schema.Schema {
	return schema.New(
		parametersTable(),
		schema.Table{
			Name:       MyDraftTable,
			PrimaryKey: []string{FieldPlayerName},
			DataFields: []string{FieldDraftPosition, FieldPosition, FieldPlannedOrActual, FieldStarterOrReserve},
		},
	)
}

// DecodeInput validates raw tables against InputSchema and converts them to an Input.
func DecodeInput(d schema.Data) (*models.Input, error) {
	if err := InputSchema.Validate(d); err != nil {
		return nil, err
	}

	params := InputSchema.FullParameters(d)
	in := &models.Input{
		Parameters: models.Parameters{
			StarterWeight:   params[ParamStarterWeight],
			ReserveWeight:   params[ParamReserveWeight],
			MaxFlexStarters: params[ParamMaxFlexStarters],
		},
	}

	for _, r := range d[PlayersTable] {
		in.Players = append(in.Players, models.Player{
			Name:                 text(r[FieldPlayerName]),
			Position:             text(r[FieldPosition]),
			AverageDraftPosition: r[FieldAverageDraftPosition].(float64),
			ExpectedPoints:       r[FieldExpectedPoints].(float64),
			Status:               models.DraftStatus(r[FieldDraftStatus].(string)),
		})
	}
	for _, r := range d[RosterRequirementsTable] {
		in.RosterRequirements = append(in.RosterRequirements, models.RosterRequirement{
			Position:    text(r[FieldPosition]),
			MinStarters: clampInt(r[FieldMinStarters].(float64)),
			MaxStarters: clampInt(r[FieldMaxStarters].(float64)),
			MinReserve:  clampInt(r[FieldMinReserve].(float64)),
			MaxReserve:  clampInt(r[FieldMaxReserve].(float64)),
			Flex:        models.FlexStatus(r[FieldFlexStatus].(string)),
		})
	}
	for _, r := range d[MyDraftPositionsTable] {
		in.MyDraftPositions = append(in.MyDraftPositions, clampInt(r[FieldDraftPosition].(float64)))
	}
	slices.Sort(in.MyDraftPositions)

	return in, nil
}

// InputTables is the inverse of DecodeInput.
func InputTables(in *models.Input) schema.Data {
	d := schema.Data{
		schema.ParametersTable: {
			{schema.ParameterField: ParamStarterWeight, schema.ValueField: in.Parameters.StarterWeight},
			{schema.ParameterField: ParamReserveWeight, schema.ValueField: in.Parameters.ReserveWeight},
		},
		PlayersTable:            make([]schema.Row, 0, len(in.Players)),
		RosterRequirementsTable: make([]schema.Row, 0, len(in.RosterRequirements)),
		MyDraftPositionsTable:   make([]schema.Row, 0, len(in.MyDraftPositions)),
	}
	// Infinity is the default and not every table format can carry it.
	if !math.IsInf(in.Parameters.MaxFlexStarters, 1) {
		d[schema.ParametersTable] = append(d[schema.ParametersTable], schema.Row{
			schema.ParameterField: ParamMaxFlexStarters,
			schema.ValueField:     in.Parameters.MaxFlexStarters,
		})
	}

	for _, p := range in.Players {
		d[PlayersTable] = append(d[PlayersTable], schema.Row{
			FieldPlayerName:           p.Name,
			FieldPosition:             p.Position,
			FieldAverageDraftPosition: p.AverageDraftPosition,
			FieldExpectedPoints:       p.ExpectedPoints,
			FieldDraftStatus:          string(p.Status),
		})
	}
	for _, rr := range in.RosterRequirements {
		d[RosterRequirementsTable] = append(d[RosterRequirementsTable], schema.Row{
			FieldPosition:    rr.Position,
			FieldMinStarters: float64(rr.MinStarters),
			FieldMaxStarters: float64(rr.MaxStarters),
			FieldMinReserve:  float64(rr.MinReserve),
			FieldMaxReserve:  float64(rr.MaxReserve),
			FieldFlexStatus:  string(rr.Flex),
		})
	}
	for _, pos := range in.MyDraftPositions {
		d[MyDraftPositionsTable] = append(d[MyDraftPositionsTable], schema.Row{
			FieldDraftPosition: float64(pos),
		})
	}
	return d
}

// SolutionTables renders a Solution in the SolutionSchema layout.
func SolutionTables(sol *models.Solution) schema.Data {
	d := schema.Data{
		schema.ParametersTable: {
			{schema.ParameterField: ParamTotalYield, schema.ValueField: sol.TotalYield},
			{schema.ParameterField: ParamDraftPerformed, schema.ValueField: string(sol.DraftPerformed)},
		},
		MyDraftTable: make([]schema.Row, 0, len(sol.Picks)),
	}
	for _, p := range sol.Picks {
		d[MyDraftTable] = append(d[MyDraftTable], schema.Row{
			FieldPlayerName:       p.PlayerName,
			FieldDraftPosition:    float64(p.DraftPosition),
			FieldPosition:         p.Position,
			FieldPlannedOrActual:  string(p.Provenance),
			FieldStarterOrReserve: string(p.Role),
		})
	}
	return d
}

// text renders a key cell that a reader may have coerced to a number.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// clampInt converts a validated whole number, saturating at MaxInt32 so huge
// or infinite bounds stay positive.
func clampInt(v float64) int {
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
