// Package output renders answers and result tables.
//
// Supported formats:
//   - table: aligned text table, the default for interactive use
//   - json: one JSON object per answer (JSON Lines)
//   - csv: the result table with a header row
//
// Example usage:
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    return err
//	}
//	if err := formatter.Format(result.Table); err != nil {
//	    return err
//	}
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/askdata/dataset"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the names New accepts.
var Formats = []string{"table", "json", "csv"}

// Formatter defines the interface for result table formatters.
type Formatter interface {
	// Format writes the table in the formatter's specific format
	Format(t *dataset.Table) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter for name.
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "table", "":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w %q (want %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}
