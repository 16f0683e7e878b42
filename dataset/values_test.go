package dataset

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		value interface{}
		want  Kind
	}{
		{nil, KindMissing},
		{math.NaN(), KindMissing},
		{int32(3), KindNumber},
		{2.5, KindNumber},
		{true, KindBool},
		{time.Now(), KindTime},
		{"TX", KindString},
		{[]int{1}, KindOther},
		{Undefined, KindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.value), "%#v", tt.value)
	}
}

func TestCompare(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b interface{}
		want int
	}{
		{"missing first", nil, -5.0, -1},
		{"both missing", nil, math.NaN(), 0},
		{"numbers across types", int64(2), 2.0, 0},
		{"numbers", 1.5, 2.0, -1},
		{"times", jan.AddDate(0, 0, 1), jan, 1},
		{"false before true", false, true, -1},
		{"strings byte-wise", "Z", "a", -1},
		{"kind rank", "1", 2.0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestEqualAndGroupKey(t *testing.T) {
	assert.True(t, Equal(int32(300), 300.0))
	assert.Equal(t, GroupKey(int32(300)), GroupKey(300.0))

	assert.False(t, Equal("300", 300.0))
	assert.NotEqual(t, GroupKey("300"), GroupKey(300.0))

	assert.Equal(t, GroupKey(nil), GroupKey(math.NaN()))

	negZero := math.Copysign(0, -1)
	assert.True(t, Equal(negZero, 0.0))
	assert.Equal(t, GroupKey(0.0), GroupKey(negZero))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{nil, ""},
		{math.NaN(), ""},
		{Undefined, "undefined"},
		{1250.5, "1250.5"},
		{1e21, "1000000000000000000000"},
		{int64(7), "7"},
		{true, "true"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC), "2024-03-01T06:30:00Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.value), "%#v", tt.value)
	}
}

func TestParseHelpers(t *testing.T) {
	f, ok := ParseNumber(" 1,250.5 ")
	assert.True(t, ok)
	assert.Equal(t, 1250.5, f)
	_, ok = ParseNumber("12 apples")
	assert.False(t, ok)
	_, ok = ParseNumber("inf")
	assert.False(t, ok)

	tm, ok := ParseTime("01/31/2024")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), tm)
	_, ok = ParseTime("yesterday")
	assert.False(t, ok)

	b, ok := ParseBool("Yes")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = ParseBool("maybe")
	assert.False(t, ok)
}

func TestTableMarshalJSON(t *testing.T) {
	tbl := NewTable([]string{"b", "a"}, []Row{
		{"b": 1.0, "a": Undefined},
		{"b": math.Inf(1), "a": "x"},
	})
	out, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["b","a"],"rows":[[1,null],[null,"x"]]}`, string(out))
}
