package schema

import (
	"fmt"
	"slices"
	"strings"
)

type FailureKind string

const (
	KindStructure    FailureKind = "structure"
	KindDuplicate    FailureKind = "duplicate"
	KindForeignKey   FailureKind = "foreign key"
	KindDataType     FailureKind = "data type"
	KindRowPredicate FailureKind = "row predicate"
)

// Failure is one problem found in a data set. Row is the zero-based row index,
// or -1 when the failure concerns a whole table.
type Failure struct {
	Kind    FailureKind
	Table   string
	Field   string
	Row     int
	Message string
}

func (f Failure) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", f.Kind, f.Table))
	if f.Row >= 0 {
		sb.WriteString(fmt.Sprintf(" row %d", f.Row+1))
	}
	if f.Field != "" {
		sb.WriteString(fmt.Sprintf(" field %q", f.Field))
	}
	sb.WriteString(": ")
	sb.WriteString(f.Message)
	return sb.String()
}

type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	if len(e.Failures) == 1 {
		return "validation failed: " + e.Failures[0].String()
	}
	return fmt.Sprintf("validation failed with %d failures, first: %s", len(e.Failures), e.Failures[0])
}

// Validate runs every check and returns a *ValidationError listing all failures.
func (s *Schema) Validate(d Data) error {
	var failures []Failure
	failures = append(failures, s.FindStructureFailures(d)...)
	failures = append(failures, s.FindDuplicates(d)...)
	failures = append(failures, s.FindForeignKeyFailures(d)...)
	failures = append(failures, s.FindDataTypeFailures(d)...)
	failures = append(failures, s.FindRowFailures(d)...)
	if len(failures) == 0 {
		return nil
	}
	return &ValidationError{Failures: failures}
}

// FindStructureFailures reports unknown tables and rows whose fields don't match the table.
func (s *Schema) FindStructureFailures(d Data) []Failure {
	var failures []Failure
	for name, rows := range d {
		table, ok := s.Table(name)
		if !ok {
			failures = append(failures, Failure{Kind: KindStructure, Table: name, Row: -1, Message: "unknown table"})
			continue
		}
		fields := table.Fields()
		for i, row := range rows {
			for _, f := range fields {
				if _, ok := row[f]; !ok {
					failures = append(failures, Failure{Kind: KindStructure, Table: name, Field: f, Row: i, Message: "missing field"})
				}
			}
			for f := range row {
				if !slices.Contains(fields, f) {
					failures = append(failures, Failure{Kind: KindStructure, Table: name, Field: f, Row: i, Message: "unknown field"})
				}
			}
		}
	}
	slices.SortFunc(failures, compareFailures)
	return failures
}

func (s *Schema) FindDuplicates(d Data) []Failure {
	var failures []Failure
	for _, table := range s.tables {
		if len(table.PrimaryKey) == 0 {
			continue
		}
		seen := make(map[string]int)
		for i, row := range d[table.Name] {
			key := keyOf(row, table.PrimaryKey)
			if first, ok := seen[key]; ok {
				failures = append(failures, Failure{
					Kind:    KindDuplicate,
					Table:   table.Name,
					Row:     i,
					Message: fmt.Sprintf("primary key %q already used by row %d", key, first+1),
				})
				continue
			}
			seen[key] = i
		}
	}
	return failures
}

func (s *Schema) FindForeignKeyFailures(d Data) []Failure {
	var failures []Failure
	for _, fk := range s.foreignKeys {
		nativeFields := make([]string, len(fk.Fields))
		foreignFields := make([]string, len(fk.Fields))
		for i, pair := range fk.Fields {
			nativeFields[i], foreignFields[i] = pair[0], pair[1]
		}

		known := make(map[string]bool)
		for _, row := range d[fk.Foreign] {
			known[keyOf(row, foreignFields)] = true
		}
		for i, row := range d[fk.Native] {
			key := keyOf(row, nativeFields)
			if !known[key] {
				failures = append(failures, Failure{
					Kind:    KindForeignKey,
					Table:   fk.Native,
					Field:   strings.Join(nativeFields, ","),
					Row:     i,
					Message: fmt.Sprintf("%q has no match in %s", key, fk.Foreign),
				})
			}
		}
	}
	return failures
}

func (s *Schema) FindDataTypeFailures(d Data) []Failure {
	var failures []Failure
	for _, table := range s.tables {
		if table.Name == ParametersTable && len(s.parameters) > 0 {
			failures = append(failures, s.findParameterFailures(d[table.Name])...)
			continue
		}
		for i, row := range d[table.Name] {
			for _, field := range table.Fields() {
				ft, ok := s.types[fieldKey{table.Name, field}]
				if !ok {
					continue
				}
				v, present := row[field]
				if !present {
					continue
				}
				if !ft.Accepts(v) {
					failures = append(failures, Failure{
						Kind:    KindDataType,
						Table:   table.Name,
						Field:   field,
						Row:     i,
						Message: fmt.Sprintf("value %v is out of domain", v),
					})
				}
			}
		}
	}
	return failures
}

func (s *Schema) findParameterFailures(rows []Row) []Failure {
	var failures []Failure
	for i, row := range rows {
		name, _ := row[ParameterField].(string)
		p, ok := s.parameter(name)
		if !ok {
			failures = append(failures, Failure{
				Kind:    KindDataType,
				Table:   ParametersTable,
				Field:   ParameterField,
				Row:     i,
				Message: fmt.Sprintf("unknown parameter %v", row[ParameterField]),
			})
			continue
		}
		if !p.Type.Accepts(row[ValueField]) {
			failures = append(failures, Failure{
				Kind:    KindDataType,
				Table:   ParametersTable,
				Field:   ValueField,
				Row:     i,
				Message: fmt.Sprintf("value %v is out of domain for %s", row[ValueField], name),
			})
		}
	}
	return failures
}

// FindRowFailures evaluates row predicates. A predicate that panics on a
// malformed row counts as failed.
func (s *Schema) FindRowFailures(d Data) []Failure {
	var failures []Failure
	for _, p := range s.predicates {
		for i, row := range d[p.Table] {
			if !safePredicate(p.Fn, row) {
				failures = append(failures, Failure{
					Kind:    KindRowPredicate,
					Table:   p.Table,
					Row:     i,
					Message: p.Name,
				})
			}
		}
	}
	return failures
}

func safePredicate(fn func(Row) bool, row Row) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return fn(row)
}

func compareFailures(a, b Failure) int {
	if c := strings.Compare(a.Table, b.Table); c != 0 {
		return c
	}
	if a.Row != b.Row {
		return a.Row - b.Row
	}
	return strings.Compare(a.Field, b.Field)
}
