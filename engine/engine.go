// Package engine executes validated query plans against an in-memory table.
//
// Execution is deterministic: the same plan over the same table always
// yields the same result table and method string. The only randomness is
// in isolation-forest scoring, which is seeded from the plan.
//
// Example usage:
//
//	vp, err := query.Compile("sum scheduled_quantity by state_abb", s)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.New().Execute(vp, table)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Method)
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

var (
	// ErrNoTable is returned when Execute receives no table
	ErrNoTable = errors.New("no table to query")

	// ErrUnsupportedOperation is returned for operations the engine does not know
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Result is the outcome of one plan execution.
type Result struct {
	Table *dataset.Table
	// Method states the formula and parameters used to produce Table.
	Method string
	// RowCountBefore is the table size before filters, RowCountAfter the
	// number of rows the operation ran on.
	RowCountBefore int
	RowCountAfter  int
	// Warnings carries the plan's validation warnings.
	Warnings []string
	// Degraded is set when a requested capability was unavailable and a
	// fallback produced the result.
	Degraded bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for execution diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithoutIsolationForest disables isolation-forest scoring. Multivariate
// plans then fall back to the largest absolute z-score and the result is
// marked Degraded.
func WithoutIsolationForest() Option {
	return func(e *Engine) {
		e.isolationForest = false
	}
}

// Engine runs validated plans. It holds no per-query state and never
// modifies the tables it reads.
type Engine struct {
	logger          log.Logger
	isolationForest bool
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:          log.NewNopLogger(),
		isolationForest: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsolationForest reports whether multivariate scoring is available.
func (e *Engine) IsolationForest() bool { return e.isolationForest }

// Execute runs plan against t. Filters apply first; when they leave no rows
// the result is an empty table whose method names the filters.
func (e *Engine) Execute(plan *query.ValidPlan, t *dataset.Table) (*Result, error) {
	if plan == nil {
		return nil, query.ErrNilPlan
	}
	if t == nil {
		return nil, ErrNoTable
	}

	filters := plan.Filters()
	view := applyFilters(dataset.All(t), filters)
	level.Debug(e.logger).Log("msg", "filters applied", "filters", len(filters), "rows_before", t.Len(), "rows_after", view.Len())

	res := &Result{
		RowCountBefore: t.Len(),
		RowCountAfter:  view.Len(),
		Warnings:       plan.Warnings(),
	}

	if len(filters) > 0 && view.Len() == 0 {
		res.Table = dataset.NewTable(append([]string(nil), t.Columns...), nil)
		res.Method = "0 rows matched the filter(s): " + describeFilters(filters)
		return res, nil
	}

	out, err := e.run(plan, view)
	if err != nil {
		return nil, err
	}
	res.Table = out.table
	res.Degraded = out.degraded
	res.Method = out.method
	if len(filters) > 0 {
		res.Method += fmt.Sprintf("; computed on %d of %d rows matching %s", view.Len(), t.Len(), describeFilters(filters))
	}

	level.Debug(e.logger).Log("msg", "plan executed", "operation", plan.Operation().String(),
		"result_rows", res.Table.Len(), "degraded", res.Degraded)
	return res, nil
}

// output is what an operation produces before Execute adds filter notes.
type output struct {
	table    *dataset.Table
	method   string
	degraded bool
}

func (e *Engine) run(plan *query.ValidPlan, v dataset.View) (output, error) {
	switch op := plan.Operation().(type) {
	case *query.Meta:
		return meta(op, v, plan.Schema())
	case *query.Aggregate:
		return aggregate(op, v), nil
	case *query.RowCount:
		return rowCount(op, v), nil
	case *query.Distribution:
		return distribution(op, v), nil
	case *query.UniqueCount:
		return uniqueCount(op, v), nil
	case *query.Trend:
		return trend(op, v), nil
	case *query.TopN:
		return topN(op, v), nil
	case *query.FilterRows:
		return output{
			table:  rowsTable(v, nil),
			method: fmt.Sprintf("all %d rows passing the filter(s), in original row order", v.Len()),
		}, nil
	case *query.Correlation:
		return correlation(op, v), nil
	case *query.Univariate:
		return univariate(op, v), nil
	case *query.Multivariate:
		return e.multivariate(op, v)
	default:
		return output{}, fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

func describeFilters(filters []query.Predicate) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, " and ")
}
