package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/askdata/schema"
)

func TestValidate_TypesLiterals(t *testing.T) {
	s := pipelineSchema()

	vp, err := Compile(`rows where scheduled_quantity > 1,000 and state_abb = "TX" and gas_day >= 2024-01-31 and is_firm = yes`, s)
	require.NoError(t, err)

	filters := vp.Filters()
	require.Len(t, filters, 4)
	assert.Equal(t, 1000.0, filters[0].Value.Value)
	assert.Equal(t, "TX", filters[1].Value.Value)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), filters[2].Value.Value)
	assert.Equal(t, true, filters[3].Value.Value)
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	s := pipelineSchema()
	plan, err := Match("correlations where scheduled_quantity > 5", s)
	require.NoError(t, err)

	vp, err := Validate(plan, s)
	require.NoError(t, err)

	assert.Nil(t, plan.Filters[0].Value.Value)
	assert.Empty(t, plan.Operation.(*Correlation).Columns)
	assert.Equal(t, []string{"scheduled_quantity", "rec_del_sign"}, vp.Operation().(*Correlation).Columns)
}

func TestValidate_Errors(t *testing.T) {
	s := pipelineSchema()

	tests := []struct {
		name   string
		input  string
		opts   []Option
		kind   ErrorKind
		column string
	}{
		{"mean of categorical", "mean state_abb", nil, TypeMismatch, "state_abb"},
		{"quoted literal on numeric", `rows where scheduled_quantity = "10"`, nil, TypeMismatch, "scheduled_quantity"},
		{"not a number", "rows where scheduled_quantity > lots", nil, TypeMismatch, "scheduled_quantity"},
		{"not a date", "rows where gas_day > soon", nil, TypeMismatch, "gas_day"},
		{"contains on numeric", "rows where scheduled_quantity contains 5", nil, TypeMismatch, "scheduled_quantity"},
		{"ordering on boolean", "rows where is_firm > yes", nil, TypeMismatch, "is_firm"},
		{"top n by categorical", "top 5 rows by state_abb", nil, TypeMismatch, "state_abb"},
		{"top zero", "top 0 rows by scheduled_quantity", nil, ConstraintViolation, ""},
		{"head zero", "head 0", nil, ConstraintViolation, ""},
		{"trend without date column", "trend of scheduled_quantity", nil, ConstraintViolation, "scheduled_quantity"},
		{"trend on text date column", "trend of scheduled_quantity", []Option{WithDateColumn("notes")}, TypeMismatch, "notes"},
		{"univariate on categorical", "outliers in state_abb", nil, TypeMismatch, "state_abb"},
		{"multivariate one column", "multivariate anomalies across scheduled_quantity", nil, ConstraintViolation, ""},
		{"multivariate bad contamination", "isolation forest across scheduled_quantity and rec_del_sign contamination 0.9", nil, ConstraintViolation, ""},
		{"unknown method", "anomalies across scheduled_quantity and rec_del_sign using lof", nil, CapabilityUnavailable, ""},
		{"correlation on categorical", "correlation between state_abb and scheduled_quantity", nil, TypeMismatch, "state_abb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp, err := Compile(tt.input, s, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, vp)

			var qerr *Error
			require.True(t, errors.As(err, &qerr), "expected *Error, got %T: %v", err, err)
			assert.Equal(t, tt.kind, qerr.Kind, qerr.Error())
			assert.Equal(t, tt.column, qerr.Column)
		})
	}
}

func TestValidate_CountAcceptsAnyType(t *testing.T) {
	vp, err := Compile("count notes by state_abb", pipelineSchema())
	require.NoError(t, err)
	assert.Equal(t, &Aggregate{Func: FuncCount, Target: "notes", GroupBy: "state_abb"}, vp.Operation())
}

func TestValidate_DirectConstruction(t *testing.T) {
	s := pipelineSchema()

	_, err := Validate(&Plan{Operation: &Aggregate{Func: FuncSum, Target: "missing_col"}}, s)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, UnresolvedColumn, kind)

	_, err = Validate(&Plan{Operation: &Distribution{Column: "state_abb", TopK: 0}}, s)
	kind, _ = KindOf(err)
	assert.Equal(t, ConstraintViolation, kind)

	_, err = Validate(&Plan{
		Operation: &RowCount{},
		Filters:   []Predicate{{Column: "nope", Op: OpEq, Value: Literal{Raw: "1"}}},
	}, s)
	kind, _ = KindOf(err)
	assert.Equal(t, UnresolvedColumn, kind)

	_, err = Validate(nil, s)
	assert.ErrorIs(t, err, ErrNilPlan)
}

func TestValidate_CheckOrder(t *testing.T) {
	s := pipelineSchema()

	// Column existence is reported before the numeric target check.
	_, err := Validate(&Plan{
		Operation: &Aggregate{Func: FuncMean, Target: "state_abb"},
		Filters:   []Predicate{{Column: "ghost", Op: OpEq, Value: Literal{Raw: "x"}}},
	}, s)
	kind, _ := KindOf(err)
	assert.Equal(t, UnresolvedColumn, kind)

	// The numeric target check comes before predicate typing.
	_, err = Validate(&Plan{
		Operation: &Aggregate{Func: FuncMean, Target: "state_abb"},
		Filters:   []Predicate{{Column: "scheduled_quantity", Op: OpEq, Value: Literal{Raw: "x"}}},
	}, s)
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "state_abb", qerr.Column)
}

func TestValidate_GroupCardinalityWarning(t *testing.T) {
	s := schema.MustNew(
		schema.Column{Name: "customer", Type: schema.Categorical, Cardinality: 400},
		schema.Column{Name: "volume", Type: schema.Numeric},
	)

	vp, err := Compile("sum volume by customer", s)
	require.NoError(t, err)
	require.Len(t, vp.Warnings(), 1)
	assert.Contains(t, vp.Warnings()[0], "customer")
}
