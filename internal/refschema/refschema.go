// Package refschema declares the fixed CSV schemas of the reference
// oracle's dump modules.
package refschema

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType enumerates the primitive types a dump column can carry.
type ColumnType int

// Column type constants, matching the oracle's serialization rules.
const (
	TypeString ColumnType = iota
	TypeInt
	TypeDouble
	TypeBool
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeInt:
		return "INT"
	case TypeDouble:
		return "DOUBLE"
	case TypeBool:
		return "BOOL"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// Column describes one output column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is the ordered column list of one dump module. It is fixed at
// declaration time; output column order always matches it.
type Schema struct {
	Module  string
	Columns []Column
}

// Header returns the column names in declared order.
func (s Schema) Header() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column declaration.
func (s Schema) Column(name string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Registry maps dump module names to their schemas. It is an explicit
// object handed to the validator and harness, not ambient state.
type Registry struct {
	schemas map[string]Schema
}

// NewRegistry builds a registry from schema declarations.
func NewRegistry(schemas ...Schema) *Registry {
	reg := &Registry{schemas: make(map[string]Schema, len(schemas))}
	for _, s := range schemas {
		reg.schemas[s.Module] = s
	}
	return reg
}

// Lookup returns the schema for a module.
func (r *Registry) Lookup(module string) (Schema, bool) {
	s, ok := r.schemas[module]
	return s, ok
}

// Modules returns the registered module names, unordered.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// FormatDouble renders a float the way the oracle does: fixed-precision,
// locale-independent scientific notation with 12 fractional digits. The
// precision exceeds any approximate-compare tolerance downstream, so
// formatting never masks or causes a comparison failure.
func FormatDouble(v float64) string {
	return fmt.Sprintf("%.12e", v)
}

// ParseDouble parses a floating-point field.
func ParseDouble(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
