package tables

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/omarshaarawi/draftbot/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *schema.Schema {
	return schema.New(
		schema.Table{Name: schema.ParametersTable, PrimaryKey: []string{schema.ParameterField}, DataFields: []string{schema.ValueField}},
		schema.Table{Name: "players", PrimaryKey: []string{"Player Name"}, DataFields: []string{"Position", "Expected Points"}},
	)
}

func testData() schema.Data {
	return schema.Data{
		schema.ParametersTable: {
			{schema.ParameterField: "Starter Weight", schema.ValueField: 1.2},
			{schema.ParameterField: "Cap", schema.ValueField: math.Inf(1)},
		},
		"players": {
			{"Player Name": "Patrick Mahomes", "Position": "QB", "Expected Points": 25.0},
			{"Player Name": "Travis Kelce", "Position": "TE", "Expected Points": 12.5},
		},
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "board", want: CSV},
		{path: "board.json", want: JSON},
		{path: "board.yml", want: YAML},
		{path: "board.YAML", want: YAML},
		{path: "board.xlsx", want: XLSX},
		{path: "board.db", want: SQLite},
		{path: "board.sqlite3", want: SQLite},
		{path: "board.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)
	assert.Equal(t, ".xlsx", f.Extension())

	f, err = ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteRead_EveryFormat(t *testing.T) {
	for _, name := range []string{"board", "board.json", "board.yaml", "board.xlsx", "board.db"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			s := testSchema()

			require.NoError(t, Write(path, s, testData()))
			got, err := Read(path, s)
			require.NoError(t, err)

			if diff := cmp.Diff(testData(), got); diff != "" {
				t.Errorf("tables mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRead_CSVNumericTextIsCoerced(t *testing.T) {
	dir := t.TempDir()
	csv := "Player Name,Position,Expected Points\nJosh Allen,QB, 24.5 \n,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "players.csv"), []byte(csv), 0o644))

	got, err := Read(dir, testSchema())
	require.NoError(t, err)

	assert.Nil(t, got[schema.ParametersTable])
	require.Len(t, got["players"], 1)
	assert.Equal(t, schema.Row{"Player Name": "Josh Allen", "Position": "QB", "Expected Points": 24.5}, got["players"][0])
}

func TestDecode_JSONInfinityAndIntegers(t *testing.T) {
	raw := []byte(`{"parameters": [{"Parameter": "Cap", "Value": "inf"}], "players": [{"Player Name": "A", "Position": "K", "Expected Points": 8}]}`)

	got, err := Decode(JSON, testSchema(), raw)
	require.NoError(t, err)

	assert.True(t, math.IsInf(got[schema.ParametersTable][0][schema.ValueField].(float64), 1))
	assert.Equal(t, 8.0, got["players"][0]["Expected Points"])
}

func TestDecode_YAMLIntegersBecomeFloats(t *testing.T) {
	raw := []byte("players:\n  - Player Name: A\n    Position: K\n    Expected Points: 8\n")

	got, err := Decode(YAML, testSchema(), raw)
	require.NoError(t, err)

	assert.Equal(t, 8.0, got["players"][0]["Expected Points"])
	assert.Contains(t, got, schema.ParametersTable)
}

func TestEncode_RejectsDirectoryFormats(t *testing.T) {
	_, err := Encode(CSV, testSchema(), testData())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode(SQLite, testSchema(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"), testSchema())
	assert.Error(t, err)
}
