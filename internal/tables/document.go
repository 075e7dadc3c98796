package tables

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/omarshaarawi/draftbot/internal/schema"
	"gopkg.in/yaml.v3"
)

// document is the shared JSON/YAML layout: table name to a list of records.
type document map[string][]map[string]any

// JSON has no infinity literal, so unbounded cells travel as "inf" text.
func toDocument(s *schema.Schema, d schema.Data, infAsText bool) document {
	doc := make(document, len(s.Tables()))
	for _, t := range s.Tables() {
		records := make([]map[string]any, 0, len(d[t.Name]))
		for _, row := range d[t.Name] {
			rec := make(map[string]any, len(row))
			for k, v := range row {
				if f, ok := v.(float64); ok && infAsText && math.IsInf(f, 0) {
					v = infText(f)
				}
				rec[k] = v
			}
			records = append(records, rec)
		}
		doc[t.Name] = records
	}
	return doc
}

func fromDocument(s *schema.Schema, doc document) schema.Data {
	d := make(schema.Data, len(doc))
	for name, records := range doc {
		rows := make([]schema.Row, 0, len(records))
		for _, rec := range records {
			row := make(schema.Row, len(rec))
			for k, v := range rec {
				row[k] = fromInfText(normalize(v))
			}
			rows = append(rows, row)
		}
		d[name] = rows
	}
	for _, t := range s.Tables() {
		if _, ok := d[t.Name]; !ok {
			d[t.Name] = nil
		}
	}
	return d
}

func encodeJSON(s *schema.Schema, d schema.Data) ([]byte, error) {
	raw, err := json.MarshalIndent(toDocument(s, d, true), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding JSON tables: %w", err)
	}
	return raw, nil
}

func decodeJSON(s *schema.Schema, raw []byte) (schema.Data, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error decoding JSON tables: %w", err)
	}
	return fromDocument(s, doc), nil
}

func encodeYAML(s *schema.Schema, d schema.Data) ([]byte, error) {
	raw, err := yaml.Marshal(toDocument(s, d, false))
	if err != nil {
		return nil, fmt.Errorf("error encoding YAML tables: %w", err)
	}
	return raw, nil
}

func decodeYAML(s *schema.Schema, raw []byte) (schema.Data, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error decoding YAML tables: %w", err)
	}
	return fromDocument(s, doc), nil
}

func infText(f float64) string {
	if f < 0 {
		return "-inf"
	}
	return "inf"
}

func fromInfText(v any) any {
	text, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "inf", "+inf", "infinity":
		return math.Inf(1)
	case "-inf", "-infinity":
		return math.Inf(-1)
	}
	return v
}
