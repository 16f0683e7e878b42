package dataset

// View is a read-only window onto a Table: an ordered list of row indices.
// Filters and sorts produce new Views and leave the Table untouched.
type View struct {
	table   *Table
	indices []int
}

// All returns a view over every row of t in original order.
func All(t *Table) View {
	indices := make([]int, t.Len())
	for i := range indices {
		indices[i] = i
	}
	return View{table: t, indices: indices}
}

// NewView returns a view over the given row indices of t. The slice is
// copied, so the caller may reuse it.
func NewView(t *Table, indices []int) View {
	own := make([]int, len(indices))
	copy(own, indices)
	return View{table: t, indices: own}
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.indices) }

// Table returns the underlying table.
func (v View) Table() *Table { return v.table }

// Index returns the original table row index of the i-th view row.
func (v View) Index(i int) int { return v.indices[i] }

// Indices returns a copy of the view's row indices.
func (v View) Indices() []int {
	out := make([]int, len(v.indices))
	copy(out, v.indices)
	return out
}

// Value returns the value of col in the i-th view row.
func (v View) Value(i int, col string) interface{} {
	return v.table.Value(v.indices[i], col)
}

// Row returns the i-th view row. The map belongs to the table and must not
// be modified.
func (v View) Row(i int) Row {
	return v.table.Rows[v.indices[i]]
}

// Where returns the sub-view of rows for which keep returns true, in
// view order.
func (v View) Where(keep func(row Row) bool) View {
	out := make([]int, 0, len(v.indices))
	for _, idx := range v.indices {
		if keep(v.table.Rows[idx]) {
			out = append(out, idx)
		}
	}
	return View{table: v.table, indices: out}
}

// Head returns the first n rows of the view.
func (v View) Head(n int) View {
	if n >= len(v.indices) {
		return v
	}
	if n < 0 {
		n = 0
	}
	return View{table: v.table, indices: v.indices[:n:n]}
}

// Tail returns the last n rows of the view.
func (v View) Tail(n int) View {
	if n >= len(v.indices) {
		return v
	}
	if n < 0 {
		n = 0
	}
	return View{table: v.table, indices: v.indices[len(v.indices)-n:]}
}

// Floats collects the non-missing numeric values of col together with the
// view positions they came from, and the number of missing cells skipped.
func (v View) Floats(col string) (values []float64, positions []int, missing int) {
	values = make([]float64, 0, len(v.indices))
	positions = make([]int, 0, len(v.indices))
	for i, idx := range v.indices {
		val := v.table.Rows[idx][col]
		f, ok := ToFloat64(val)
		if !ok || IsMissing(val) {
			missing++
			continue
		}
		values = append(values, f)
		positions = append(positions, i)
	}
	return values, positions, missing
}
