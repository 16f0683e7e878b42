package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vegasq/askdata/dataset"
)

// JSONFormatter outputs a table as JSON Lines, one object per row
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes each row as one JSON object. encoding/json sorts object
// keys, so use WriteAnswerJSON when column order matters.
func (j *JSONFormatter) Format(t *dataset.Table) error {
	encoder := json.NewEncoder(j.writer)
	for i, row := range t.Rows {
		obj := make(map[string]interface{}, len(t.Columns))
		for _, col := range t.Columns {
			obj[col] = dataset.JSONCell(row[col])
		}
		if err := encoder.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}
	return nil
}
