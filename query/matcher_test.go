package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/askdata/schema"
)

func pipelineSchema() *schema.Schema {
	return schema.MustNew(
		schema.Column{Name: "state_abb", Type: schema.Categorical, Cardinality: 5},
		schema.Column{Name: "scheduled_quantity", Type: schema.Numeric},
		schema.Column{Name: "rec_del_sign", Type: schema.Numeric},
		schema.Column{Name: "category_short", Type: schema.Categorical},
		schema.Column{Name: "gas_day", Type: schema.Datetime},
		schema.Column{Name: "is_firm", Type: schema.Boolean},
		schema.Column{Name: "notes", Type: schema.Text},
	)
}

func TestMatch_Operations(t *testing.T) {
	s := pipelineSchema()
	d := StandardDefaults()

	tests := []struct {
		name  string
		input string
		want  Operation
	}{
		{"shape", "what is the shape of the data?", &Meta{Kind: MetaShape}},
		{"how many columns", "how many columns are there", &Meta{Kind: MetaShape}},
		{"dtypes", "show dtypes", &Meta{Kind: MetaDtypes}},
		{"columns", "list the columns", &Meta{Kind: MetaColumns}},
		{"describe", "describe", &Meta{Kind: MetaDescribe}},
		{"head default", "head", &Meta{Kind: MetaHead, N: d.HeadRows}},
		{"first n rows", "show first 3 rows", &Meta{Kind: MetaHead, N: 3}},
		{"last n rows", "last 2 rows", &Meta{Kind: MetaTail, N: 2}},
		{"missing", "missing values per column", &Meta{Kind: MetaMissing}},
		{"duplicates", "how many duplicate rows", &Meta{Kind: MetaDuplicates}},

		{"unique count", "how many unique state_abb", &UniqueCount{Column: "state_abb"}},
		{"value counts", "value counts of category_short", &Distribution{Column: "category_short", TopK: d.TopK}},
		{"value counts top k", "top 3 value counts of state", &Distribution{Column: "state_abb", TopK: 3}},

		{"row count", "how many rows", &RowCount{}},
		{"row count by", "count rows by state_abb", &RowCount{GroupBy: "state_abb"}},
		{"sum by", "sum scheduled_quantity by state_abb", &Aggregate{Func: FuncSum, Target: "scheduled_quantity", GroupBy: "state_abb"}},
		{"fuzzy target", "what is the total scheduled qty per state", &Aggregate{Func: FuncSum, Target: "scheduled_quantity", GroupBy: "state_abb"}},
		{"mean without group", "average scheduled_quantity", &Aggregate{Func: FuncMean, Target: "scheduled_quantity"}},
		{"median", "median rec_del_sign", &Aggregate{Func: FuncMedian, Target: "rec_del_sign"}},
		{"std", "standard deviation of scheduled_quantity", &Aggregate{Func: FuncStd, Target: "scheduled_quantity"}},
		{"count of a column", "count notes by state_abb", &Aggregate{Func: FuncCount, Target: "notes", GroupBy: "state_abb"}},
		{"first verb wins", "sum and mean of scheduled_quantity", &Aggregate{Func: FuncSum, Target: "scheduled_quantity"}},
		{"verb after column", "scheduled_quantity max", &Aggregate{Func: FuncMax, Target: "scheduled_quantity"}},

		{"top n", "top 10 rows by scheduled_quantity", &TopN{N: 10, SortColumn: "scheduled_quantity", Direction: Descending}},
		{"top default n", "highest scheduled_quantity", &TopN{N: d.TopN, SortColumn: "scheduled_quantity", Direction: Descending}},
		{"bottom n", "bottom 5 rows by rec_del_sign", &TopN{N: 5, SortColumn: "rec_del_sign", Direction: Ascending}},

		{"all correlations", "correlations", &Correlation{}},
		{"pair correlation", "correlation between scheduled_quantity and rec_del_sign", &Correlation{Columns: []string{"scheduled_quantity", "rec_del_sign"}}},

		{"univariate", "outliers in scheduled_quantity", &Univariate{Column: "scheduled_quantity", Threshold: d.ZThreshold}},
		{"univariate threshold", "outliers in scheduled_quantity with threshold 2.5", &Univariate{Column: "scheduled_quantity", Threshold: 2.5}},
		{
			"multivariate", "find multivariate anomalies across scheduled_quantity and rec_del_sign",
			&Multivariate{Columns: []string{"scheduled_quantity", "rec_del_sign"}, Method: MethodIsolationForest,
				Seed: d.Seed, Trees: d.Trees, SampleSize: d.SampleSize, Contamination: d.Contamination},
		},
		{
			"multivariate parameters", "isolation forest on scheduled_quantity, rec_del_sign seed 7 top 2%",
			&Multivariate{Columns: []string{"scheduled_quantity", "rec_del_sign"}, Method: MethodIsolationForest,
				Seed: 7, Trees: d.Trees, SampleSize: d.SampleSize, Contamination: 0.02},
		},
		{
			"multivariate all numeric", "multivariate outliers",
			&Multivariate{Columns: []string{"scheduled_quantity", "rec_del_sign"}, Method: MethodIsolationForest,
				Seed: d.Seed, Trees: d.Trees, SampleSize: d.SampleSize, Contamination: d.Contamination},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Match(tt.input, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Operation)
			assert.Empty(t, plan.Filters)
		})
	}
}

func TestMatch_Filters(t *testing.T) {
	s := pipelineSchema()

	plan, err := Match("top 10 rows by scheduled_quantity where state_abb = TX", s)
	require.NoError(t, err)
	assert.Equal(t, &TopN{N: 10, SortColumn: "scheduled_quantity", Direction: Descending}, plan.Operation)
	assert.Equal(t, []Predicate{{Column: "state_abb", Op: OpEq, Value: Literal{Raw: "TX"}}}, plan.Filters)

	plan, err = Match("average scheduled_quantity by state_abb where category_short contains ldc", s)
	require.NoError(t, err)
	assert.Equal(t, &Aggregate{Func: FuncMean, Target: "scheduled_quantity", GroupBy: "state_abb"}, plan.Operation)
	assert.Equal(t, []Predicate{{Column: "category_short", Op: OpContains, Value: Literal{Raw: "ldc"}}}, plan.Filters)
}

func TestMatch_FilterClauses(t *testing.T) {
	s := pipelineSchema()

	tests := []struct {
		name  string
		input string
		want  []Predicate
	}{
		{
			name:  "several clauses",
			input: `rows where state_abb = "TX" and scheduled_quantity >= 100 and gas_day < 2024-02-01`,
			want: []Predicate{
				{Column: "state_abb", Op: OpEq, Value: Literal{Raw: "TX", Quoted: true}},
				{Column: "scheduled_quantity", Op: OpGe, Value: Literal{Raw: "100"}},
				{Column: "gas_day", Op: OpLt, Value: Literal{Raw: "2024-02-01"}},
			},
		},
		{
			name:  "word operators",
			input: "rows where scheduled_quantity is greater than 5 and state is not LA",
			want: []Predicate{
				{Column: "scheduled_quantity", Op: OpGt, Value: Literal{Raw: "5"}},
				{Column: "state_abb", Op: OpNe, Value: Literal{Raw: "LA"}},
			},
		},
		{
			name:  "multi word value",
			input: "where category_short = firm transport",
			want: []Predicate{
				{Column: "category_short", Op: OpEq, Value: Literal{Raw: "firm transport"}},
			},
		},
		{
			name:  "same column twice stays conjunctive",
			input: "rows where category_short contains ldc and category_short != ldc",
			want: []Predicate{
				{Column: "category_short", Op: OpContains, Value: Literal{Raw: "ldc"}},
				{Column: "category_short", Op: OpNe, Value: Literal{Raw: "ldc"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Match(tt.input, s)
			require.NoError(t, err)
			assert.Equal(t, &FilterRows{}, plan.Operation)
			assert.Equal(t, tt.want, plan.Filters)
		})
	}
}

func TestMatch_Trend(t *testing.T) {
	s := pipelineSchema()

	plan, err := Match("trend of scheduled_quantity", s, WithDateColumn("gas_day"))
	require.NoError(t, err)
	assert.Equal(t, &Trend{Target: "scheduled_quantity", TimeColumn: "gas_day", Func: FuncMean}, plan.Operation)

	// "by year" without a year column is a trend, not a group-by.
	plan, err = Match("total scheduled_quantity by year", s, WithDateColumn("gas_day"))
	require.NoError(t, err)
	assert.Equal(t, &Trend{Target: "scheduled_quantity", TimeColumn: "gas_day", Func: FuncSum}, plan.Operation)

	plan, err = Match("trend of scheduled_quantity", s)
	require.NoError(t, err)
	assert.Equal(t, &Trend{Target: "scheduled_quantity", Func: FuncMean}, plan.Operation)
}

func TestMatch_GroupByYearColumn(t *testing.T) {
	s := schema.MustNew(
		schema.Column{Name: "year", Type: schema.Numeric},
		schema.Column{Name: "volume", Type: schema.Numeric},
	)

	plan, err := Match("sum volume by year", s)
	require.NoError(t, err)
	assert.Equal(t, &Aggregate{Func: FuncSum, Target: "volume", GroupBy: "year"}, plan.Operation)
}

func TestMatch_IntentPriority(t *testing.T) {
	s := pipelineSchema()

	// A top-N question with an aggregate-looking filter value stays top-N.
	plan, err := Match("top 3 rows by scheduled_quantity where category_short = total", s)
	require.NoError(t, err)
	assert.Equal(t, IntentTopN, plan.Operation.Intent())

	// Distribution outranks aggregate for "count".
	plan, err = Match("value counts of state_abb", s)
	require.NoError(t, err)
	assert.Equal(t, IntentDistribution, plan.Operation.Intent())

	assert.Len(t, matchers, len(IntentOrder))
	for i, m := range matchers {
		assert.Equal(t, IntentOrder[i], m.intent)
	}
}

func TestMatch_ColumnNamesDoNotTrigger(t *testing.T) {
	s := schema.MustNew(
		schema.Column{Name: "state", Type: schema.Categorical},
		schema.Column{Name: "trend_score", Type: schema.Numeric},
		schema.Column{Name: "anomaly_score", Type: schema.Numeric},
		schema.Column{Name: "duplicate_count", Type: schema.Numeric},
		schema.Column{Name: "correlation_id", Type: schema.Categorical},
		schema.Column{Name: "zscore", Type: schema.Numeric},
		schema.Column{Name: "value", Type: schema.Numeric},
	)

	tests := []struct {
		input string
		want  Operation
	}{
		{"sum duplicate_count by state", &Aggregate{Func: FuncSum, Target: "duplicate_count", GroupBy: "state"}},
		{"average trend_score by state", &Aggregate{Func: FuncMean, Target: "trend_score", GroupBy: "state"}},
		{"top 1 rows by anomaly_score", &TopN{N: 1, SortColumn: "anomaly_score", Direction: Descending}},
		{"top 1 rows by zscore", &TopN{N: 1, SortColumn: "zscore", Direction: Descending}},
		{"value counts of correlation_id", &Distribution{Column: "correlation_id", TopK: StandardDefaults().TopK}},
		{"outliers in anomaly_score", &Univariate{Column: "anomaly_score", Threshold: StandardDefaults().ZThreshold}},
		{"max value by state", &Aggregate{Func: FuncMax, Target: "value", GroupBy: "state"}},
		{"duplicates", &Meta{Kind: MetaDuplicates}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			plan, err := Match(tt.input, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Operation)
		})
	}
}

func TestMatch_VerbNamedLikeColumn(t *testing.T) {
	s := schema.MustNew(
		schema.Column{Name: "count", Type: schema.Numeric},
		schema.Column{Name: "total", Type: schema.Numeric},
		schema.Column{Name: "state", Type: schema.Categorical},
	)

	plan, err := Match("count rows by state", s)
	require.NoError(t, err)
	assert.Equal(t, &RowCount{GroupBy: "state"}, plan.Operation)

	plan, err = Match("sum total by state", s)
	require.NoError(t, err)
	assert.Equal(t, &Aggregate{Func: FuncSum, Target: "total", GroupBy: "state"}, plan.Operation)
}

func TestMatch_InYear(t *testing.T) {
	withYear := schema.MustNew(
		schema.Column{Name: "year", Type: schema.Numeric},
		schema.Column{Name: "scheduled_quantity", Type: schema.Numeric},
		schema.Column{Name: "state_abb", Type: schema.Categorical},
	)

	plan, err := Match("sum scheduled_quantity in 2024", withYear)
	require.NoError(t, err)
	assert.Equal(t, &Aggregate{Func: FuncSum, Target: "scheduled_quantity"}, plan.Operation)
	assert.Equal(t, []Predicate{{Column: "year", Op: OpEq, Value: Literal{Raw: "2024"}}}, plan.Filters)

	plan, err = Match("how many rows in 2023 where state_abb = TX", withYear)
	require.NoError(t, err)
	assert.Equal(t, &RowCount{}, plan.Operation)
	assert.Equal(t, []Predicate{
		{Column: "year", Op: OpEq, Value: Literal{Raw: "2023"}},
		{Column: "state_abb", Op: OpEq, Value: Literal{Raw: "TX"}},
	}, plan.Filters)

	plan, err = Match("average scheduled_quantity by state_abb in 2024", pipelineSchema(), WithDateColumn("gas_day"))
	require.NoError(t, err)
	assert.Equal(t, &Aggregate{Func: FuncMean, Target: "scheduled_quantity", GroupBy: "state_abb"}, plan.Operation)
	assert.Equal(t, []Predicate{
		{Column: "gas_day", Op: OpGe, Value: Literal{Raw: "2024-01-01"}},
		{Column: "gas_day", Op: OpLt, Value: Literal{Raw: "2025-01-01"}},
	}, plan.Filters)

	vp, err := Compile("rows in 2024", pipelineSchema(), WithDateColumn("gas_day"))
	require.NoError(t, err)
	assert.Equal(t, &FilterRows{}, vp.Operation())
	assert.Len(t, vp.Filters(), 2)

	_, err = Match("sum scheduled_quantity in 2024", pipelineSchema())
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, NoMatch, qerr.Kind)
	assert.Contains(t, qerr.Detail, "2024")
}

func TestMatch_Errors(t *testing.T) {
	s := pipelineSchema()

	tests := []struct {
		name  string
		input string
		kind  ErrorKind
		token string
	}{
		{"unresolved aggregate target", "sum nonexistent_col by state_abb", UnresolvedColumn, "nonexistent_col"},
		{"unresolved filter column", "rows where zzzz = 1", UnresolvedColumn, "zzzz"},
		{"no intent", "hello there", NoMatch, "hello there"},
		{"empty", "   ", NoMatch, ""},
		{"verb without column", "sum", NoMatch, ""},
		{"top without column", "top 5 rows", NoMatch, ""},
		{"filter without operator", "rows where state_abb TX", NoMatch, "state_abb TX"},
		{"filter without value", "rows where scheduled_quantity >", NoMatch, ""},
		{"text after quoted value", `rows where state_abb = "TX" please`, NoMatch, "please"},
		{"univariate without column", "find outliers", NoMatch, ""},
		{"rank correlation", "spearman correlation", CapabilityUnavailable, "spearman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Match(tt.input, s)
			require.Error(t, err)
			assert.Nil(t, plan)

			var qerr *Error
			require.True(t, errors.As(err, &qerr), "expected *Error, got %T", err)
			assert.Equal(t, tt.kind, qerr.Kind, qerr.Error())
			assert.Equal(t, tt.token, qerr.Token)
		})
	}
}

func TestMatch_NoIntentSuggestsCloseIntents(t *testing.T) {
	_, err := Match("summ scheduled_quantity", pipelineSchema())

	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, NoMatch, qerr.Kind)
	assert.Equal(t, []string{intentExample[IntentAggregate]}, qerr.Alternatives)
}

func TestMatch_UnresolvedNamesAlternatives(t *testing.T) {
	_, err := Match("sum nonexistent_col by state_abb", pipelineSchema())

	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Len(t, qerr.Alternatives, 3)
	assert.True(t, errors.Is(err, &Error{Kind: UnresolvedColumn}))
}

func TestMatch_QueryTooLong(t *testing.T) {
	_, err := Match(strings.Repeat("a", MaxQueryLength+1), pipelineSchema())
	assert.ErrorIs(t, err, ErrQueryTooLong)
}

func TestMatch_WithDefaults(t *testing.T) {
	d := StandardDefaults()
	d.HeadRows = 7
	d.ZThreshold = 2

	plan, err := Match("head", pipelineSchema(), WithDefaults(d))
	require.NoError(t, err)
	assert.Equal(t, &Meta{Kind: MetaHead, N: 7}, plan.Operation)

	plan, err = Match("outliers in rec_del_sign", pipelineSchema(), WithDefaults(d))
	require.NoError(t, err)
	assert.Equal(t, &Univariate{Column: "rec_del_sign", Threshold: 2}, plan.Operation)
}

func TestPlan_String(t *testing.T) {
	plan, err := Match("top 10 rows by scheduled_quantity where state_abb = TX", pipelineSchema())
	require.NoError(t, err)
	assert.Equal(t, "top 10 rows by scheduled_quantity desc where state_abb = TX", plan.String())
}
