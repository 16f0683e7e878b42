package output

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/askdata/dataset"
)

// DefaultPreviewRows is how many rows the table formatter prints before
// summarizing the rest.
const DefaultPreviewRows = 10

// TableFormatter outputs a table as aligned text
type TableFormatter struct {
	writer  io.Writer
	maxRows int
}

// NewTableFormatter creates a new text table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w, maxRows: DefaultPreviewRows}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// SetMaxRows limits the printed rows. Zero or less prints every row.
func (f *TableFormatter) SetMaxRows(n int) {
	f.maxRows = n
}

// Format renders the header and up to maxRows rows, followed by a line
// counting the rows left out.
func (f *TableFormatter) Format(t *dataset.Table) error {
	if t.Width() == 0 {
		_, err := fmt.Fprintln(f.writer, "(no columns)")
		return err
	}

	shown := t.Rows
	if f.maxRows > 0 && len(shown) > f.maxRows {
		shown = shown[:f.maxRows]
	}

	tw := tablewriter.NewWriter(f.writer)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	for _, row := range shown {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = dataset.FormatValue(row[col])
		}
		tw.Append(cells)
	}
	tw.Render()

	if rest := len(t.Rows) - len(shown); rest > 0 {
		if _, err := fmt.Fprintf(f.writer, "... %s more rows\n", humanize.Comma(int64(rest))); err != nil {
			return err
		}
	}
	return nil
}
