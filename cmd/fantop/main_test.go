package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/omarshaarawi/draftbot/internal/draft"
	"github.com/omarshaarawi/draftbot/internal/schema"
	"github.com/omarshaarawi/draftbot/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const quarterbackBoard = `{
  "parameters": [],
  "players": [
    {"Player Name": "Mahomes", "Position": "QB", "Average Draft Position": 10, "Expected Points": 20, "Draft Status": "Drafted By Me"},
    {"Player Name": "Allen", "Position": "QB", "Average Draft Position": 5, "Expected Points": 15, "Draft Status": "Un-drafted"}
  ],
  "roster_requirements": [
    {"Position": "QB", "Min Num Starters": 1, "Max Num Starters": 1, "Min Num Reserve": 0, "Max Num Reserve": 1, "Flex Status": "Flex Ineligible"}
  ],
  "my_draft_positions": [{"Draft Position": 1}, {"Draft Position": 2}]
}`

func runApp(t *testing.T, args ...string) (string, string, int, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := 0
	prevExiter, prevErrWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(c int) { code = c }
	cli.ErrWriter = &stderr
	t.Cleanup(func() {
		cli.OsExiter = prevExiter
		cli.ErrWriter = prevErrWriter
	})

	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(append([]string{"fantop"}, args...))
	return stdout.String(), stderr.String(), code, err
}

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSolve_WritesDraft(t *testing.T) {
	input := writeInput(t, quarterbackBoard)
	output := filepath.Join(t.TempDir(), "draft.yaml")

	stdout, _, code, err := runApp(t, "solve", "-i", input, "-o", output)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Draft written to")

	d, err := tables.Read(output, draft.SolutionSchema)
	require.NoError(t, err)
	require.NoError(t, draft.SolutionSchema.Validate(d))

	params := make(map[string]any)
	for _, row := range d[schema.ParametersTable] {
		params[row[schema.ParameterField].(string)] = row[schema.ValueField]
	}
	assert.InDelta(t, 37.5, params[draft.ParamTotalYield], 1e-6)
	assert.Equal(t, "Complete", params[draft.ParamDraftPerformed])
	assert.Len(t, d[draft.MyDraftTable], 2)
}

func TestSolve_NoDraftPossibleWritesNothing(t *testing.T) {
	input := writeInput(t, `{
  "players": [
    {"Player Name": "Mahomes", "Position": "QB", "Average Draft Position": 10, "Expected Points": 20, "Draft Status": "Drafted By Me"}
  ],
  "roster_requirements": [
    {"Position": "QB", "Min Num Starters": 1, "Max Num Starters": 1, "Min Num Reserve": 0, "Max Num Reserve": 1, "Flex Status": "Flex Ineligible"}
  ],
  "my_draft_positions": [{"Draft Position": 1}, {"Draft Position": 2}]
}`)
	output := filepath.Join(t.TempDir(), "draft.json")

	_, stderr, code, err := runApp(t, "solve", "-i", input, "-o", output)
	require.Error(t, err)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "No draft at all is possible!")
	assert.NoFileExists(t, output)
}

func TestValidate_ReportsEveryFailure(t *testing.T) {
	input := writeInput(t, `{
  "players": [
    {"Player Name": "Kelce", "Position": "TE", "Average Draft Position": 12, "Expected Points": 14, "Draft Status": "Un-drafted"}
  ],
  "roster_requirements": [
    {"Position": "QB", "Min Num Starters": 2, "Max Num Starters": 1, "Min Num Reserve": 0, "Max Num Reserve": 1, "Flex Status": "Flex Ineligible"}
  ],
  "my_draft_positions": [{"Draft Position": 1}]
}`)

	_, stderr, code, err := runApp(t, "validate", "-i", input)
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "foreign key")
	assert.Contains(t, stderr, "Max Num Starters must not be below Min Num Starters")
	assert.Contains(t, stderr, "2 validation failure(s)")
}

func TestValidate_Clean(t *testing.T) {
	stdout, _, code, err := runApp(t, "validate", "-i", writeInput(t, quarterbackBoard))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Input is valid.\n", stdout)
}
