package engine

import (
	"math"
	"testing"
	"time"

	"github.com/vegasq/askdata/query"
)

func TestMatches(t *testing.T) {
	pred := func(op query.Op, v interface{}) query.Predicate {
		return query.Predicate{Column: "c", Op: op, Value: query.Literal{Value: v}}
	}
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cell     interface{}
		pred     query.Predicate
		expected bool
	}{
		{"number equal", 0.1 + 0.2, pred(query.OpEq, 0.3), true},
		{"int cell", int64(5), pred(query.OpGe, 5.0), true},
		{"number less", 4.0, pred(query.OpLt, 4.0), false},
		{"number not equal", 4.0, pred(query.OpNe, 5.0), true},
		{"missing never matches", nil, pred(query.OpNe, 5.0), false},
		{"NaN is missing", math.NaN(), pred(query.OpNe, 5.0), false},
		{"string case-insensitive", "Texas", pred(query.OpEq, "TEXAS"), true},
		{"string contains", "LDC East", pred(query.OpContains, "ldc"), true},
		{"string not equal", "LDC", pred(query.OpNe, "ldc"), false},
		{"non-string cell as text", 12.0, pred(query.OpEq, "12"), true},
		{"time after", jan.AddDate(0, 0, 1), pred(query.OpGt, jan), true},
		{"time equal", jan, pred(query.OpEq, jan), true},
		{"time against string cell", "2024-01-01", pred(query.OpEq, jan), false},
		{"bool equal", true, pred(query.OpEq, true), true},
		{"bool not equal", false, pred(query.OpNe, true), true},
		{"bool ordering", true, pred(query.OpGt, false), false},
		{"untyped literal", 1.0, pred(query.OpEq, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matches(tt.cell, tt.pred); got != tt.expected {
				t.Errorf("matches(%v, %s) = %v, expected %v", tt.cell, tt.pred, got, tt.expected)
			}
		})
	}
}
