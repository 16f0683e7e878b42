package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/schema"
)

// Validation constants to keep matching bounded
const (
	// MaxQueryLength is the maximum allowed question length (4KB)
	MaxQueryLength = 4 * 1024

	// MaxGroupCardinality is the distinct-value count above which a
	// group-by column draws an advisory warning.
	MaxGroupCardinality = 50

	// MaxContamination is the largest accepted anomaly fraction.
	MaxContamination = 0.5
)

var (
	// ErrQueryTooLong is returned when a question exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("question too long")

	// ErrNilPlan is returned when Validate receives no plan
	ErrNilPlan = errors.New("plan is nil")
)

// ValidateQuery performs input validation on question text
func ValidateQuery(text string) error {
	if len(text) > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(text), MaxQueryLength)
	}
	return nil
}

// ValidPlan is a plan that passed Validate. Predicate literals carry typed
// values and every column reference exists. The engine accepts nothing
// else.
type ValidPlan struct {
	plan     Plan
	schema   *schema.Schema
	warnings []string
}

// Plan returns the validated plan.
func (v *ValidPlan) Plan() Plan { return v.plan }

// Operation returns the plan's operation.
func (v *ValidPlan) Operation() Operation { return v.plan.Operation }

// Filters returns a copy of the plan's typed predicates.
func (v *ValidPlan) Filters() []Predicate {
	out := make([]Predicate, len(v.plan.Filters))
	copy(out, v.plan.Filters)
	return out
}

// Warnings returns advisory notes raised during validation.
func (v *ValidPlan) Warnings() []string {
	out := make([]string, len(v.warnings))
	copy(out, v.warnings)
	return out
}

// Schema returns the schema the plan was validated against.
func (v *ValidPlan) Schema() *schema.Schema { return v.schema }

func (v *ValidPlan) String() string { return v.plan.String() }

// Validate checks plan against s. Checks run in a fixed order and stop at
// the first failure: column existence, numeric aggregate targets,
// predicate typing, group/sort/time columns and counts, then anomaly and
// correlation requirements. The input plan is not modified.
func Validate(plan *Plan, s *schema.Schema) (*ValidPlan, error) {
	if plan == nil || plan.Operation == nil {
		return nil, ErrNilPlan
	}

	op := cloneOperation(plan.Operation)
	filters := make([]Predicate, len(plan.Filters))
	copy(filters, plan.Filters)

	v := &validator{schema: s}
	if err := v.columnsExist(op, filters); err != nil {
		return nil, err
	}
	if err := v.numericTargets(op); err != nil {
		return nil, err
	}
	for i := range filters {
		if err := v.typePredicate(&filters[i]); err != nil {
			return nil, err
		}
	}
	if err := v.orderingAndCounts(op); err != nil {
		return nil, err
	}
	if err := v.anomalyAndCorrelation(op); err != nil {
		return nil, err
	}

	return &ValidPlan{plan: Plan{Operation: op, Filters: filters}, schema: s, warnings: v.warnings}, nil
}

type validator struct {
	schema   *schema.Schema
	warnings []string
}

func (v *validator) column(name string) (schema.Column, error) {
	col, ok := v.schema.Lookup(name)
	if !ok {
		alts := []string(nil)
		if _, err := v.schema.Resolve(name); err != nil {
			var rerr *schema.ResolveError
			if errors.As(err, &rerr) {
				alts = rerr.Suggestions()
			}
		}
		return schema.Column{}, ErrUnresolved(name, alts)
	}
	return col, nil
}

func (v *validator) columnsExist(op Operation, filters []Predicate) error {
	for _, name := range op.ColumnRefs() {
		if _, err := v.column(name); err != nil {
			return err
		}
	}
	for _, f := range filters {
		if _, err := v.column(f.Column); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) requireNumeric(name, role string) error {
	col, _ := v.schema.Lookup(name)
	if col.Type != schema.Numeric {
		return ErrTypeMismatch(name, "numeric", "%s column %s is %s", role, name, col.Type)
	}
	return nil
}

func (v *validator) numericTargets(op Operation) error {
	switch o := op.(type) {
	case *Aggregate:
		if o.Func.RequiresNumeric() {
			return v.requireNumeric(o.Target, o.Func.String())
		}
	case *Trend:
		if o.Func.RequiresNumeric() {
			return v.requireNumeric(o.Target, "trend "+o.Func.String())
		}
	}
	return nil
}

// typePredicate fills p.Value.Value with a literal typed for the column.
func (v *validator) typePredicate(p *Predicate) error {
	col, _ := v.schema.Lookup(p.Column)
	raw := p.Value.Raw

	if p.Op == OpContains && !col.Type.Stringy() {
		return ErrTypeMismatch(p.Column, "categorical or text column",
			"contains does not apply to %s column %s", col.Type, p.Column)
	}

	switch col.Type {
	case schema.Numeric:
		if p.Value.Quoted {
			return ErrTypeMismatch(p.Column, "number", "quoted text %q compared with numeric column %s", raw, p.Column)
		}
		f, ok := dataset.ParseNumber(raw)
		if !ok {
			return ErrTypeMismatch(p.Column, "number", "%q is not a number for column %s", raw, p.Column)
		}
		p.Value.Value = f
	case schema.Datetime:
		t, ok := dataset.ParseTime(raw)
		if !ok {
			return ErrTypeMismatch(p.Column, "date such as 2024-01-31", "%q is not a date for column %s", raw, p.Column)
		}
		p.Value.Value = t
	case schema.Boolean:
		if p.Op != OpEq && p.Op != OpNe {
			return ErrTypeMismatch(p.Column, "= or !=", "operator %s does not apply to boolean column %s", p.Op, p.Column)
		}
		b, ok := dataset.ParseBool(raw)
		if !ok {
			return ErrTypeMismatch(p.Column, "true or false", "%q is not a boolean for column %s", raw, p.Column)
		}
		p.Value.Value = b
	default:
		p.Value.Value = raw
	}
	return nil
}

func (v *validator) orderingAndCounts(op Operation) error {
	switch o := op.(type) {
	case *Meta:
		if (o.Kind == MetaHead || o.Kind == MetaTail) && o.N <= 0 {
			return ErrConstraint("%s needs a positive row count, got %d", o.Kind, o.N)
		}
	case *Aggregate:
		v.groupCardinality(o.GroupBy)
	case *RowCount:
		v.groupCardinality(o.GroupBy)
	case *Distribution:
		if o.TopK <= 0 {
			return ErrConstraint("distribution top_k must be positive, got %d", o.TopK)
		}
	case *TopN:
		if o.N <= 0 {
			return ErrConstraint("top N must be positive, got %d", o.N)
		}
		col, _ := v.schema.Lookup(o.SortColumn)
		if !col.Type.Orderable() {
			return ErrTypeMismatch(o.SortColumn, "numeric or datetime column", "cannot rank rows by %s column %s", col.Type, o.SortColumn)
		}
	case *Trend:
		if o.TimeColumn == "" {
			return &Error{Kind: ConstraintViolation, Column: o.Target, Expected: "a configured date column (--date-col)",
				Detail: "trend needs a date column and none is configured"}
		}
		col, _ := v.schema.Lookup(o.TimeColumn)
		if !col.Type.Orderable() {
			return ErrTypeMismatch(o.TimeColumn, "datetime or numeric year column", "cannot derive a year from %s column %s", col.Type, o.TimeColumn)
		}
	}
	return nil
}

func (v *validator) groupCardinality(name string) {
	if name == "" {
		return
	}
	col, _ := v.schema.Lookup(name)
	if col.Cardinality > MaxGroupCardinality {
		v.warnings = append(v.warnings, fmt.Sprintf("group-by column %s has %d distinct values; the result may be long", name, col.Cardinality))
	}
}

func (v *validator) anomalyAndCorrelation(op Operation) error {
	switch o := op.(type) {
	case *Univariate:
		if err := v.requireNumeric(o.Column, "outlier"); err != nil {
			return err
		}
		if o.Threshold <= 0 {
			return ErrConstraint("z-score threshold must be positive, got %g", o.Threshold)
		}
	case *Multivariate:
		if o.Method != MethodIsolationForest {
			return &Error{Kind: CapabilityUnavailable, Token: o.Method, Expected: MethodIsolationForest,
				Detail: fmt.Sprintf("anomaly method %q is not available", o.Method)}
		}
		if len(o.Columns) < 2 {
			return &Error{Kind: ConstraintViolation, Expected: "at least 2 numeric columns",
				Detail: fmt.Sprintf("multivariate anomalies need at least 2 numeric columns, got %d", len(o.Columns)),
				Alternatives: v.schema.OfType(schema.Numeric)}
		}
		for _, c := range o.Columns {
			if err := v.requireNumeric(c, "anomaly"); err != nil {
				return err
			}
		}
		switch {
		case o.Trees <= 0:
			return ErrConstraint("isolation forest needs a positive tree count, got %d", o.Trees)
		case o.SampleSize < 2:
			return ErrConstraint("isolation forest sample size must be at least 2, got %d", o.SampleSize)
		case o.Contamination <= 0 || o.Contamination > MaxContamination:
			return ErrConstraint("contamination must be in (0, %g], got %g", MaxContamination, o.Contamination)
		}
	case *Correlation:
		if len(o.Columns) == 0 {
			o.Columns = v.schema.OfType(schema.Numeric)
		}
		for _, c := range o.Columns {
			if err := v.requireNumeric(c, "correlation"); err != nil {
				return err
			}
		}
		if len(o.Columns) < 2 {
			return &Error{Kind: ConstraintViolation, Expected: "at least 2 numeric columns",
				Detail: fmt.Sprintf("correlation needs at least 2 numeric columns, got %d (%s)", len(o.Columns), strings.Join(o.Columns, ", "))}
		}
	}
	return nil
}

// cloneOperation copies op so validation can fill defaults without
// touching the caller's plan.
func cloneOperation(op Operation) Operation {
	switch o := op.(type) {
	case *Meta:
		c := *o
		return &c
	case *Aggregate:
		c := *o
		return &c
	case *RowCount:
		c := *o
		return &c
	case *Distribution:
		c := *o
		return &c
	case *UniqueCount:
		c := *o
		return &c
	case *Trend:
		c := *o
		return &c
	case *TopN:
		c := *o
		return &c
	case *FilterRows:
		return &FilterRows{}
	case *Correlation:
		return &Correlation{Columns: append([]string(nil), o.Columns...)}
	case *Univariate:
		c := *o
		return &c
	case *Multivariate:
		c := *o
		c.Columns = append([]string(nil), o.Columns...)
		return &c
	default:
		return op
	}
}
