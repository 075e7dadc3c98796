// Package tables reads and writes schema.Data in the file formats a draft
// board is usually kept in.
package tables

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/omarshaarawi/draftbot/internal/schema"
)

var ErrUnsupportedFormat = errors.New("unsupported table format")

type Format string

const (
	CSV    Format = "csv"
	JSON   Format = "json"
	YAML   Format = "yaml"
	XLSX   Format = "xlsx"
	SQLite Format = "sqlite"
)

// FormatOf picks a format from a path. A path without an extension is a
// directory holding one CSV file per table.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		return CSV, nil
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".xlsx":
		return XLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseFormat accepts a format name such as "xlsx".
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case CSV, JSON, YAML, XLSX, SQLite:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension is the file extension used when a format is written to a single file.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ""
	case SQLite:
		return ".db"
	default:
		return "." + string(f)
	}
}

func Read(path string, s *schema.Schema) (schema.Data, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case CSV:
		return readCSVDir(path, s)
	case SQLite:
		return readSQLite(path, s)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(format, s, raw)
}

func Write(path string, s *schema.Schema, d schema.Data) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case CSV:
		return writeCSVDir(path, s, d)
	case SQLite:
		return writeSQLite(path, s, d)
	}

	raw, err := Encode(format, s, d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Encode renders tables in a single-document format.
func Encode(format Format, s *schema.Schema, d schema.Data) ([]byte, error) {
	switch format {
	case JSON:
		return encodeJSON(s, d)
	case YAML:
		return encodeYAML(s, d)
	case XLSX:
		return encodeXLSX(s, d)
	default:
		return nil, fmt.Errorf("%w: %s cannot be encoded as one document", ErrUnsupportedFormat, format)
	}
}

func Decode(format Format, s *schema.Schema, raw []byte) (schema.Data, error) {
	switch format {
	case JSON:
		return decodeJSON(s, raw)
	case YAML:
		return decodeYAML(s, raw)
	case XLSX:
		return decodeXLSX(s, raw)
	default:
		return nil, fmt.Errorf("%w: %s cannot be decoded from one document", ErrUnsupportedFormat, format)
	}
}

// rowsFromRecords turns a header row plus records into coerced rows.
func rowsFromRecords(header []string, records [][]string) []schema.Row {
	rows := make([]schema.Row, 0, len(records))
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		row := make(schema.Row, len(header))
		for i, field := range header {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			row[field] = schema.Coerce(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func recordOf(row schema.Row, fields []string) []string {
	rec := make([]string, len(fields))
	for i, f := range fields {
		rec[i] = cellText(row[f])
	}
	return rec
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// normalize maps decoder-specific scalar types onto float64 and string.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case []byte:
		return schema.Coerce(string(x))
	case bool:
		return strconv.FormatBool(x)
	default:
		return v
	}
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
