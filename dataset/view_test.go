package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sample() *Table {
	return NewTable([]string{"state_abb", "scheduled_quantity"}, []Row{
		{"state_abb": "TX", "scheduled_quantity": 100.0},
		{"state_abb": "LA", "scheduled_quantity": nil},
		{"state_abb": "TX", "scheduled_quantity": 300.0},
		{"state_abb": "OK", "scheduled_quantity": "n/a"},
	})
}

func TestView_Where(t *testing.T) {
	tbl := sample()
	v := All(tbl).Where(func(r Row) bool { return r["state_abb"] == "TX" })

	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []int{0, 2}, v.Indices())
	assert.Equal(t, 300.0, v.Value(1, "scheduled_quantity"))
	assert.Equal(t, 2, v.Index(1))
	assert.Same(t, tbl, v.Table())
	assert.Equal(t, 4, tbl.Len(), "the table is untouched")
}

func TestView_HeadTail(t *testing.T) {
	v := All(sample())

	assert.Equal(t, []int{0, 1}, v.Head(2).Indices())
	assert.Equal(t, []int{2, 3}, v.Tail(2).Indices())
	assert.Equal(t, 4, v.Head(10).Len())
	assert.Equal(t, 0, v.Tail(-1).Len())

	// Appending to a head view must not overwrite the parent's indices.
	head := v.Head(1)
	_ = append(head.indices, 99)
	assert.Equal(t, 1, v.Index(1))
}

func TestView_Floats(t *testing.T) {
	values, positions, missing := All(sample()).Floats("scheduled_quantity")
	assert.Equal(t, []float64{100, 300}, values)
	assert.Equal(t, []int{0, 2}, positions)
	assert.Equal(t, 2, missing)
}

func TestNewView_CopiesIndices(t *testing.T) {
	idx := []int{3, 1}
	v := NewView(sample(), idx)
	idx[0] = 0
	assert.Equal(t, "OK", v.Value(0, "state_abb"))
	assert.Equal(t, "LA", v.Row(1)["state_abb"])
}
