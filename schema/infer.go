package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/vegasq/askdata/dataset"
)

// MissingTokens are the cell texts treated as missing, compared
// case-insensitively after trimming.
var MissingTokens = []string{"", "na", "n/a", "nan", "null", "none"}

// InferOptions tunes Infer.
type InferOptions struct {
	// TextCardinality is the distinct-value count above which a string
	// column may be Text rather than Categorical.
	TextCardinality int
	// TextRatio is the distinct/non-missing ratio that must also be
	// exceeded for Text.
	TextRatio float64
	// Hints fix the type of named columns, for example from Parquet
	// logical types or a configured date column.
	Hints map[string]SemanticType
}

// DefaultInferOptions returns the standard thresholds.
func DefaultInferOptions() InferOptions {
	return InferOptions{TextCardinality: 50, TextRatio: 0.5}
}

// IsMissingCell reports whether a raw cell counts as missing.
func IsMissingCell(v interface{}) bool {
	if dataset.IsMissing(v) {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, tok := range MissingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// Infer derives a schema from raw table values. For each column the
// non-missing cells decide the type: all numbers gives Numeric, all
// true/false/yes/no gives Boolean, all dates gives Datetime, anything else
// Categorical, or Text for many distinct values.
func Infer(t *dataset.Table, opts InferOptions) (*Schema, error) {
	if opts.TextCardinality <= 0 {
		opts.TextCardinality = DefaultInferOptions().TextCardinality
	}
	if opts.TextRatio <= 0 {
		opts.TextRatio = DefaultInferOptions().TextRatio
	}

	columns := make([]Column, len(t.Columns))
	for i, name := range t.Columns {
		columns[i] = inferColumn(t, name, opts)
	}
	s, err := New(columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	return s, nil
}

func inferColumn(t *dataset.Table, name string, opts InferOptions) Column {
	col := Column{Name: name}
	numeric, boolean, datetime := true, true, true
	distinct := make(map[string]struct{})
	present := 0

	for _, row := range t.Rows {
		v := row[name]
		if IsMissingCell(v) {
			col.Nullable = true
			continue
		}
		present++
		distinct[distinctKey(v)] = struct{}{}

		if numeric && !isNumericCell(v) {
			numeric = false
		}
		if boolean && !isBoolCell(v) {
			boolean = false
		}
		if datetime && !isTimeCell(v) {
			datetime = false
		}
	}
	col.Cardinality = len(distinct)

	if hint, ok := opts.Hints[name]; ok {
		col.Type = hint
		return col
	}

	switch {
	case present == 0:
		col.Type = Categorical
	case numeric:
		col.Type = Numeric
	case boolean:
		col.Type = Boolean
	case datetime:
		col.Type = Datetime
	case col.Cardinality > opts.TextCardinality && float64(col.Cardinality)/float64(present) > opts.TextRatio:
		col.Type = Text
	default:
		col.Type = Categorical
	}
	return col
}

func distinctKey(v interface{}) string {
	if s, ok := v.(string); ok {
		return "s:" + strings.TrimSpace(s)
	}
	return dataset.GroupKey(v)
}

func isNumericCell(v interface{}) bool {
	if _, ok := dataset.ToFloat64(v); ok {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = dataset.ParseNumber(s)
	return ok
}

func isBoolCell(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "false", "yes", "no":
			return true
		}
	}
	return false
}

func isTimeCell(v interface{}) bool {
	switch val := v.(type) {
	case time.Time:
		return true
	case string:
		_, ok := dataset.ParseTime(val)
		return ok
	}
	return false
}

// Coerce returns a new table whose cells hold the storage kind of their
// column's semantic type: float64, bool, time.Time or string. Missing and
// unparseable cells become nil. The input table is not modified.
func Coerce(t *dataset.Table, s *Schema) *dataset.Table {
	rows := make([]dataset.Row, len(t.Rows))
	for i, row := range t.Rows {
		out := make(dataset.Row, len(t.Columns))
		for _, name := range t.Columns {
			col, ok := s.Lookup(name)
			if !ok {
				out[name] = row[name]
				continue
			}
			out[name] = coerceCell(row[name], col.Type)
		}
		rows[i] = out
	}
	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)
	return dataset.NewTable(columns, rows)
}

func coerceCell(v interface{}, typ SemanticType) interface{} {
	if IsMissingCell(v) {
		return nil
	}
	switch typ {
	case Numeric:
		if f, ok := dataset.ToFloat64(v); ok {
			return f
		}
		if s, ok := v.(string); ok {
			if f, ok := dataset.ParseNumber(s); ok {
				return f
			}
		}
		return nil
	case Boolean:
		switch val := v.(type) {
		case bool:
			return val
		case string:
			if b, ok := dataset.ParseBool(val); ok {
				return b
			}
		}
		return nil
	case Datetime:
		f, isNum := dataset.ToFloat64(v)
		switch val := v.(type) {
		case time.Time:
			return val.UTC()
		case string:
			if tm, ok := dataset.ParseTime(val); ok {
				return tm
			}
			f, isNum = dataset.ParseNumber(val)
		}
		// Whole numbers in a date column are read as years.
		if isNum && f == float64(int(f)) && f >= 1 && f <= 9999 {
			return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		return nil
	default:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return dataset.FormatValue(v)
	}
}
