// Package schema describes tabular data sets and finds everything wrong with
// them before any of it reaches a model: duplicate keys, dangling foreign
// keys, out-of-domain cells and rows that break a declared predicate.
package schema

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ParametersTable is the reserved name of the key/value parameters table.
const (
	ParametersTable = "parameters"
	ParameterField  = "Parameter"
	ValueField      = "Value"
)

// Row maps a field name to a float64 or string cell.
type Row map[string]any

// Data maps a table name to its rows.
type Data map[string][]Row

type Table struct {
	Name       string
	PrimaryKey []string
	DataFields []string
}

func (t Table) Fields() []string {
	return append(append([]string(nil), t.PrimaryKey...), t.DataFields...)
}

// FieldType is the domain of a single field. The zero value accepts nothing.
type FieldType struct {
	Min, Max     float64
	InclusiveMin bool
	InclusiveMax bool
	MustBeInt    bool
	// NumberAllowed admits numbers inside [Min, Max]; Strings admits the listed text values.
	NumberAllowed bool
	Strings       []string
}

// Numeric admits numbers between min and max.
func Numeric(min, max float64, inclusiveMin, inclusiveMax bool) FieldType {
	return FieldType{
		Min:           min,
		Max:           max,
		InclusiveMin:  inclusiveMin,
		InclusiveMax:  inclusiveMax,
		NumberAllowed: true,
	}
}

// Integer admits whole numbers between min and max.
func Integer(min, max float64, inclusiveMin, inclusiveMax bool) FieldType {
	ft := Numeric(min, max, inclusiveMin, inclusiveMax)
	ft.MustBeInt = true
	return ft
}

// Enum admits exactly the given strings.
func Enum(allowed ...string) FieldType {
	return FieldType{Strings: allowed}
}

// Accepts reports whether v lies in the domain.
func (ft FieldType) Accepts(v any) bool {
	switch x := v.(type) {
	case float64:
		if !ft.NumberAllowed || math.IsNaN(x) {
			return false
		}
		if x < ft.Min || (x == ft.Min && !ft.InclusiveMin) {
			return false
		}
		if x > ft.Max || (x == ft.Max && !ft.InclusiveMax) {
			return false
		}
		if ft.MustBeInt && !math.IsInf(x, 0) && x != math.Trunc(x) {
			return false
		}
		return true
	case string:
		return slices.Contains(ft.Strings, x)
	default:
		return false
	}
}

type ForeignKey struct {
	Native  string
	Foreign string
	// Fields pairs a native field with the foreign primary key field it references.
	Fields [][2]string
}

type RowPredicate struct {
	Table string
	Name  string
	Fn    func(Row) bool
}

type Parameter struct {
	Name    string
	Default float64
	Type    FieldType
}

type fieldKey struct {
	table, field string
}

type Schema struct {
	tables      []Table
	types       map[fieldKey]FieldType
	foreignKeys []ForeignKey
	predicates  []RowPredicate
	parameters  []Parameter
}

func New(tables ...Table) *Schema {
	return &Schema{
		tables: tables,
		types:  make(map[fieldKey]FieldType),
	}
}

func (s *Schema) Tables() []Table {
	return s.tables
}

func (s *Schema) Table(name string) (Table, bool) {
	for _, t := range s.tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func (s *Schema) SetDataType(table, field string, ft FieldType) {
	s.types[fieldKey{table, field}] = ft
}

func (s *Schema) AddForeignKey(fk ForeignKey) {
	s.foreignKeys = append(s.foreignKeys, fk)
}

func (s *Schema) AddRowPredicate(table, name string, fn func(Row) bool) {
	s.predicates = append(s.predicates, RowPredicate{Table: table, Name: name, Fn: fn})
}

// AddParameter declares a named scalar stored in the parameters table.
func (s *Schema) AddParameter(name string, defaultValue float64, ft FieldType) {
	s.parameters = append(s.parameters, Parameter{Name: name, Default: defaultValue, Type: ft})
}

func (s *Schema) parameter(name string) (Parameter, bool) {
	for _, p := range s.parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// FullParameters returns every declared parameter, supplied values overriding defaults.
func (s *Schema) FullParameters(d Data) map[string]float64 {
	params := make(map[string]float64, len(s.parameters))
	for _, p := range s.parameters {
		params[p.Name] = p.Default
	}
	for _, row := range d[ParametersTable] {
		name, _ := row[ParameterField].(string)
		if _, ok := s.parameter(name); !ok {
			continue
		}
		if v, ok := row[ValueField].(float64); ok {
			params[name] = v
		}
	}
	return params
}

// Coerce turns numeric text into a float64 and leaves anything else as a string.
func Coerce(raw string) any {
	s := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Float reads a numeric cell.
func Float(row Row, field string) (float64, bool) {
	v, ok := row[field].(float64)
	return v, ok
}

// String reads a text cell.
func String(row Row, field string) (string, bool) {
	v, ok := row[field].(string)
	return v, ok
}

func keyOf(row Row, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprint(row[f])
	}
	return strings.Join(parts, "|")
}
