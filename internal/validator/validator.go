// Package validator promotes raw oracle tables to typed records against a
// declared schema.
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"epqref/internal/refschema"
	"epqref/internal/wire"
)

// Error reports a schema violation: a missing, extra, or reordered column,
// a non-nullable null, or an unparseable value. Row is -1 for header-level
// violations.
type Error struct {
	Module string
	Column string
	Row    int
	Reason string
}

func (e *Error) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("schema violation in %s, column %q: %s", e.Module, e.Column, e.Reason)
	}
	return fmt.Sprintf("schema violation in %s, column %q, row %d: %s", e.Module, e.Column, e.Row, e.Reason)
}

// Value is one typed field of a validated record.
type Value struct {
	Column refschema.Column
	Null   bool
	Str    string
	Int    int64
	Float  float64
	Bool   bool
}

// Record is one validated row. Every declared column is present with its
// declared type; consumers never need defensive type checks.
type Record struct {
	Module string
	fields map[string]Value
}

// Field returns the typed value of a declared column. Asking for an
// undeclared column is a programming error.
func (r Record) Field(name string) Value {
	v, ok := r.fields[name]
	if !ok {
		panic(fmt.Sprintf("record %s has no column %q", r.Module, name))
	}
	return v
}

// IsNull reports whether a nullable column held an empty value.
func (r Record) IsNull(name string) bool { return r.Field(name).Null }

// String returns a STRING column's value.
func (r Record) String(name string) string { return r.Field(name).Str }

// Int returns an INT column's value.
func (r Record) Int(name string) int64 { return r.Field(name).Int }

// Float returns a DOUBLE column's value.
func (r Record) Float(name string) float64 { return r.Field(name).Float }

// Bool returns a BOOL column's value.
func (r Record) Bool(name string) bool { return r.Field(name).Bool }

// Validator checks raw tables against a schema registry.
type Validator struct {
	registry *refschema.Registry
}

// New returns a Validator backed by the given registry.
func New(registry *refschema.Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidateModule validates a table against the registered schema for the
// named module.
func (v *Validator) ValidateModule(module string, table wire.Table) ([]Record, error) {
	schema, ok := v.registry.Lookup(module)
	if !ok {
		return nil, &Error{Module: module, Row: -1, Reason: "no schema registered for module"}
	}
	return Validate(table, schema)
}

// Validate typechecks every row of a raw table against the schema. Column
// names and order must match the declaration exactly.
func Validate(table wire.Table, schema refschema.Schema) ([]Record, error) {
	if len(table.Columns) != len(schema.Columns) {
		return nil, &Error{
			Module: schema.Module,
			Row:    -1,
			Reason: fmt.Sprintf("header has %d columns, schema declares %d", len(table.Columns), len(schema.Columns)),
		}
	}
	for i, col := range schema.Columns {
		if table.Columns[i] != col.Name {
			return nil, &Error{
				Module: schema.Module,
				Column: col.Name,
				Row:    -1,
				Reason: fmt.Sprintf("expected column %q at position %d, found %q", col.Name, i, table.Columns[i]),
			}
		}
	}

	records := make([]Record, 0, len(table.Rows))
	for rowIdx, row := range table.Rows {
		rec := Record{Module: schema.Module, fields: make(map[string]Value, len(schema.Columns))}
		for i, col := range schema.Columns {
			val, err := parseField(row[i], col)
			if err != nil {
				return nil, &Error{Module: schema.Module, Column: col.Name, Row: rowIdx, Reason: err.Error()}
			}
			rec.fields[col.Name] = val
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseField(raw string, col refschema.Column) (Value, error) {
	val := Value{Column: col}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if !col.Nullable {
			return Value{}, fmt.Errorf("empty value for non-nullable column")
		}
		val.Null = true
		return val, nil
	}
	switch col.Type {
	case refschema.TypeString:
		val.Str = raw
	case refschema.TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer %q", raw)
		}
		val.Int = n
	case refschema.TypeDouble:
		f, err := refschema.ParseDouble(raw)
		if err != nil {
			return Value{}, fmt.Errorf("invalid double %q", raw)
		}
		val.Float = f
	case refschema.TypeBool:
		switch raw {
		case "true":
			val.Bool = true
		case "false":
			val.Bool = false
		default:
			return Value{}, fmt.Errorf("invalid bool %q", raw)
		}
	default:
		return Value{}, fmt.Errorf("unknown column type %v", col.Type)
	}
	return val, nil
}
