package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/askdata/dataset"
)

// CSVFormatter outputs a table as CSV
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the header row and then every row in column order. A table
// without columns writes nothing.
func (c *CSVFormatter) Format(t *dataset.Table) error {
	csvWriter := csv.NewWriter(c.writer)

	if t.Width() > 0 {
		if err := csvWriter.Write(t.Columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for i, col := range t.Columns {
				record[i] = csvValue(row[col])
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// csvValue converts a cell to its CSV text. Missing cells are empty and
// undefined results are written as "undefined".
func csvValue(v interface{}) string {
	s := dataset.FormatValue(v)
	if _, ok := v.(string); !ok || s == "" {
		return s
	}
	// Sanitize against CSV injection by prefixing characters that could
	// trigger formula execution in spreadsheet applications.
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
