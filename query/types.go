// Package query compiles bounded natural-language questions into typed,
// validated query plans.
//
// Compilation runs in two steps. Match normalizes the text, picks an
// intent with an ordered list of matchers and extracts its parameters,
// resolving column tokens against the schema. Validate checks the
// candidate plan against the schema and returns a ValidPlan, the only
// form the engine executes. Failures at either step are *Error values with
// a Kind from the diagnostic taxonomy.
//
// Example usage:
//
//	plan, err := query.Compile("sum scheduled_quantity by state_abb", sch)
//	if err != nil {
//	    var qerr *query.Error
//	    if errors.As(err, &qerr) {
//	        fmt.Println(qerr.Kind, qerr.Detail)
//	    }
//	    return
//	}
//	fmt.Println(plan) // aggregate sum(scheduled_quantity) by state_abb
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vegasq/askdata/dataset"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenWord TokenType = iota
	TokenNumber
	TokenString
	TokenComma
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual
	TokenEOF
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset in the lexed input
}

func (t TokenType) String() string {
	switch t {
	case TokenWord:
		return "WORD"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenComma:
		return ","
	case TokenEqual:
		return "="
	case TokenNotEqual:
		return "!="
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	case TokenEOF:
		return "EOF"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Intent is the category of question a matcher recognizes.
type Intent int

const (
	IntentMeta Intent = iota
	IntentDistribution
	IntentAggregate
	IntentTrend
	IntentTopN
	IntentCorrelation
	IntentAnomaly
)

// IntentOrder is the priority in which matchers are tried. The first
// intent whose triggers match wins, so "top 10 rows by x where y" is never
// read as an aggregate.
var IntentOrder = []Intent{
	IntentMeta,
	IntentDistribution,
	IntentAggregate,
	IntentTrend,
	IntentTopN,
	IntentCorrelation,
	IntentAnomaly,
}

func (i Intent) String() string {
	switch i {
	case IntentMeta:
		return "meta"
	case IntentDistribution:
		return "distribution"
	case IntentAggregate:
		return "aggregate"
	case IntentTrend:
		return "trend"
	case IntentTopN:
		return "top-n/filter"
	case IntentCorrelation:
		return "correlation"
	case IntentAnomaly:
		return "anomaly"
	default:
		return fmt.Sprintf("Intent(%d)", int(i))
	}
}

// Op is a predicate comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpContains
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpContains:
		return "contains"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Literal is a predicate value. The matcher records the text as written;
// Validate fills Value with a float64, string, bool or time.Time according
// to the column's semantic type.
type Literal struct {
	Raw    string
	Quoted bool
	Value  interface{}
}

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case time.Time:
		return dataset.FormatValue(v)
	case nil:
		if l.Quoted {
			return strconv.Quote(l.Raw)
		}
		return l.Raw
	default:
		return dataset.FormatValue(v)
	}
}

// Predicate is a single filter condition.
type Predicate struct {
	Column string
	Op     Op
	Value  Literal
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.Column, p.Op, p.Value)
}

// Operation is the analytical step of a plan.
type Operation interface {
	// Intent returns the category the operation belongs to.
	Intent() Intent
	// ColumnRefs returns every column the operation references.
	ColumnRefs() []string
	String() string
}

// MetaKind selects a dataset overview.
type MetaKind int

const (
	MetaShape MetaKind = iota
	MetaColumns
	MetaDtypes
	MetaDescribe
	MetaHead
	MetaTail
	MetaMissing
	MetaDuplicates
)

func (k MetaKind) String() string {
	switch k {
	case MetaShape:
		return "shape"
	case MetaColumns:
		return "columns"
	case MetaDtypes:
		return "dtypes"
	case MetaDescribe:
		return "describe"
	case MetaHead:
		return "head"
	case MetaTail:
		return "tail"
	case MetaMissing:
		return "missing"
	case MetaDuplicates:
		return "duplicates"
	default:
		return fmt.Sprintf("MetaKind(%d)", int(k))
	}
}

// Meta is an overview of the dataset. N applies to head and tail only.
type Meta struct {
	Kind MetaKind
	N    int
}

func (m *Meta) Intent() Intent { return IntentMeta }
func (m *Meta) ColumnRefs() []string { return nil }
func (m *Meta) String() string {
	if m.Kind == MetaHead || m.Kind == MetaTail {
		return fmt.Sprintf("meta %s %d", m.Kind, m.N)
	}
	return "meta " + m.Kind.String()
}

// AggFunc is an aggregate function.
type AggFunc int

const (
	FuncSum AggFunc = iota
	FuncMean
	FuncMedian
	FuncMin
	FuncMax
	FuncStd
	FuncCount
)

func (f AggFunc) String() string {
	switch f {
	case FuncSum:
		return "sum"
	case FuncMean:
		return "mean"
	case FuncMedian:
		return "median"
	case FuncMin:
		return "min"
	case FuncMax:
		return "max"
	case FuncStd:
		return "std"
	case FuncCount:
		return "count"
	default:
		return fmt.Sprintf("AggFunc(%d)", int(f))
	}
}

// RequiresNumeric reports whether the function only applies to numeric
// columns. Count tallies non-missing values of any type.
func (f AggFunc) RequiresNumeric() bool { return f != FuncCount }

// Aggregate applies Func to Target, optionally per GroupBy value.
type Aggregate struct {
	Func    AggFunc
	Target  string
	GroupBy string
}

func (a *Aggregate) Intent() Intent { return IntentAggregate }
func (a *Aggregate) ColumnRefs() []string {
	if a.GroupBy != "" {
		return []string{a.Target, a.GroupBy}
	}
	return []string{a.Target}
}
func (a *Aggregate) String() string {
	s := fmt.Sprintf("aggregate %s(%s)", a.Func, a.Target)
	if a.GroupBy != "" {
		s += " by " + a.GroupBy
	}
	return s
}

// RowCount counts rows, optionally per GroupBy value.
type RowCount struct {
	GroupBy string
}

func (r *RowCount) Intent() Intent { return IntentAggregate }
func (r *RowCount) ColumnRefs() []string {
	if r.GroupBy != "" {
		return []string{r.GroupBy}
	}
	return nil
}
func (r *RowCount) String() string {
	if r.GroupBy != "" {
		return "row count by " + r.GroupBy
	}
	return "row count"
}

// Distribution lists the TopK most frequent values of Column.
type Distribution struct {
	Column string
	TopK   int
}

func (d *Distribution) Intent() Intent { return IntentDistribution }
func (d *Distribution) ColumnRefs() []string { return []string{d.Column} }
func (d *Distribution) String() string {
	return fmt.Sprintf("distribution of %s (top %d)", d.Column, d.TopK)
}

// UniqueCount counts the distinct non-missing values of Column.
type UniqueCount struct {
	Column string
}

func (u *UniqueCount) Intent() Intent { return IntentDistribution }
func (u *UniqueCount) ColumnRefs() []string { return []string{u.Column} }
func (u *UniqueCount) String() string { return "unique count of " + u.Column }

// Trend applies Func to Target per calendar year of TimeColumn.
type Trend struct {
	Target     string
	TimeColumn string
	Func       AggFunc
}

func (t *Trend) Intent() Intent { return IntentTrend }
func (t *Trend) ColumnRefs() []string {
	if t.TimeColumn != "" {
		return []string{t.Target, t.TimeColumn}
	}
	return []string{t.Target}
}
func (t *Trend) String() string {
	return fmt.Sprintf("trend %s(%s) by year of %s", t.Func, t.Target, t.TimeColumn)
}

// Direction is a sort direction.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// TopN returns the first N rows ordered by SortColumn.
type TopN struct {
	N          int
	SortColumn string
	Direction  Direction
}

func (t *TopN) Intent() Intent { return IntentTopN }
func (t *TopN) ColumnRefs() []string { return []string{t.SortColumn} }
func (t *TopN) String() string {
	return fmt.Sprintf("top %d rows by %s %s", t.N, t.SortColumn, t.Direction)
}

// FilterRows returns every row that passes the plan's filters.
type FilterRows struct{}

func (f *FilterRows) Intent() Intent { return IntentTopN }
func (f *FilterRows) ColumnRefs() []string { return nil }
func (f *FilterRows) String() string { return "rows" }

// Correlation computes pairwise Pearson correlations. Validate replaces an
// empty column list with every numeric column.
type Correlation struct {
	Columns []string
}

func (c *Correlation) Intent() Intent { return IntentCorrelation }
func (c *Correlation) ColumnRefs() []string { return c.Columns }
func (c *Correlation) String() string {
	if len(c.Columns) == 0 {
		return "correlation of all numeric columns"
	}
	return "correlation of " + strings.Join(c.Columns, ", ")
}

// Univariate flags rows whose z-score on Column exceeds Threshold in
// absolute value.
type Univariate struct {
	Column    string
	Threshold float64
}

func (u *Univariate) Intent() Intent { return IntentAnomaly }
func (u *Univariate) ColumnRefs() []string { return []string{u.Column} }
func (u *Univariate) String() string {
	return fmt.Sprintf("anomaly zscore(%s) threshold=%s", u.Column, strconv.FormatFloat(u.Threshold, 'f', -1, 64))
}

// MethodIsolationForest is the only multivariate method the engine
// implements.
const MethodIsolationForest = "isolation_forest"

// Multivariate scores rows over several numeric columns.
type Multivariate struct {
	Columns       []string
	Method        string
	Seed          uint64
	Trees         int
	SampleSize    int
	Contamination float64
}

func (m *Multivariate) Intent() Intent { return IntentAnomaly }
func (m *Multivariate) ColumnRefs() []string { return m.Columns }
func (m *Multivariate) String() string {
	return fmt.Sprintf("anomaly %s(%s) trees=%d sample_size=%d contamination=%s seed=%d",
		m.Method, strings.Join(m.Columns, ", "), m.Trees, m.SampleSize,
		strconv.FormatFloat(m.Contamination, 'f', -1, 64), m.Seed)
}

// Plan is one operation plus the conjunctive filters applied before it.
type Plan struct {
	Operation Operation
	Filters   []Predicate
}

// String renders the plan for the answer's evidence block.
func (p *Plan) String() string {
	if p == nil || p.Operation == nil {
		return "<empty plan>"
	}
	s := p.Operation.String()
	if len(p.Filters) > 0 {
		parts := make([]string, len(p.Filters))
		for i, f := range p.Filters {
			parts[i] = f.String()
		}
		s += " where " + strings.Join(parts, " and ")
	}
	return s
}
