// Package schema describes the columns of a loaded dataset and resolves
// free-text column references against them.
//
// A Schema is built once per session, either explicitly with New or by
// inspecting a table with Infer, and is read-only afterwards. Every
// component of the query pipeline borrows it.
package schema

import (
	"fmt"
	"strings"
)

// SemanticType is the analytical category of a column, independent of how
// its values are stored.
type SemanticType int

const (
	Numeric SemanticType = iota
	Categorical
	Datetime
	Boolean
	Text
)

// String returns the lowercase type name.
func (t SemanticType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Datetime:
		return "datetime"
	case Boolean:
		return "boolean"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("SemanticType(%d)", int(t))
	}
}

// ParseSemanticType parses a type name as printed by String.
func ParseSemanticType(s string) (SemanticType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number":
		return Numeric, nil
	case "categorical", "category":
		return Categorical, nil
	case "datetime", "date", "timestamp":
		return Datetime, nil
	case "boolean", "bool":
		return Boolean, nil
	case "text", "string":
		return Text, nil
	default:
		return 0, fmt.Errorf("unknown semantic type %q", s)
	}
}

// Orderable reports whether values of the type have a meaningful order for
// sorting and time bucketing.
func (t SemanticType) Orderable() bool {
	return t == Numeric || t == Datetime
}

// Stringy reports whether the type holds free-form strings that support
// substring matching.
func (t SemanticType) Stringy() bool {
	return t == Categorical || t == Text
}

// Column holds metadata about a single column.
type Column struct {
	Name        string       `json:"name" yaml:"name"`
	Type        SemanticType `json:"type" yaml:"type"`
	Nullable    bool         `json:"nullable" yaml:"nullable"`
	Cardinality int          `json:"cardinality" yaml:"cardinality"`
}

// Schema is an ordered, immutable set of columns.
type Schema struct {
	columns []Column
	index   map[string]int
}

// New creates a schema from columns in the given order. Duplicate names are
// rejected.
func New(columns ...Column) (*Schema, error) {
	s := &Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := s.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		s.columns[i] = c
		s.index[c.Name] = i
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(columns ...Column) *Schema {
	s, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the columns in schema order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the column names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the column with exactly this name.
func (s *Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Has reports whether a column with exactly this name exists.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Position returns the schema position of name, or -1.
func (s *Schema) Position(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// OfType returns the names of all columns with the given type, in schema
// order.
func (s *Schema) OfType(t SemanticType) []string {
	var out []string
	for _, c := range s.columns {
		if c.Type == t {
			out = append(out, c.Name)
		}
	}
	return out
}

// String renders the schema as "name:type, ..." for log lines and banners.
func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.Name + ":" + c.Type.String()
	}
	return strings.Join(parts, ", ")
}

// MarshalText encodes the type as its name.
func (t SemanticType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *SemanticType) UnmarshalText(b []byte) error {
	parsed, err := ParseSemanticType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
