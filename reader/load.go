package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/schema"
)

var (
	// ErrUnsupportedFormat is returned for file types Load cannot read
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNotFound is returned when a glob, sheet or column does not exist
	ErrNotFound = errors.New("not found")

	// ErrEmpty is returned for files without a header row
	ErrEmpty = errors.New("empty input")
)

// Format identifies a loader.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// Options tunes Load.
type Options struct {
	// Delimiter overrides CSV delimiter sniffing when non-zero.
	Delimiter rune
	// Sheet selects the XLSX worksheet; empty means the first.
	Sheet string
	// DateColumn is typed Datetime regardless of inference.
	DateColumn string
	// Infer holds the inference thresholds. Zero values use the defaults.
	Infer schema.InferOptions
	Logger log.Logger
}

// Data is a loaded table with its schema.
type Data struct {
	Table  *dataset.Table
	Schema *schema.Schema
	Format Format
	Path   string
}

// DetectFormat picks the loader for path by extension. Glob patterns are
// read as parquet.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	}
	if IsGlob(path) {
		return FormatParquet, nil
	}
	return "", fmt.Errorf("%w: %s (want .csv, .txt, .xlsx, .xlsm or .parquet)", ErrUnsupportedFormat, path)
}

// Load reads path, infers its schema and coerces every cell to the storage
// kind of its column.
func Load(path string, opts Options) (*Data, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	start := time.Now()

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var (
		raw   *dataset.Table
		hints map[string]schema.SemanticType
	)
	switch format {
	case FormatCSV:
		raw, err = ReadCSV(path, opts.Delimiter)
	case FormatXLSX:
		raw, err = ReadXLSX(path, opts.Sheet)
	case FormatParquet:
		raw, hints, err = ReadParquet(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	inferOpts := opts.Infer
	inferOpts.Hints = mergeHints(hints, opts.Infer.Hints)
	if opts.DateColumn != "" {
		if !raw.HasColumn(opts.DateColumn) {
			return nil, fmt.Errorf("%w: date column %q is not in %s", ErrNotFound, opts.DateColumn, path)
		}
		inferOpts.Hints[opts.DateColumn] = schema.Datetime
	}

	s, err := schema.Infer(raw, inferOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to infer schema for %s: %w", path, err)
	}
	table := schema.Coerce(raw, s)

	level.Info(logger).Log("msg", "loaded data", "path", path, "format", format,
		"rows", table.Len(), "columns", table.Width(), "duration", time.Since(start))
	level.Debug(logger).Log("msg", "inferred schema", "schema", s.String())
	return &Data{Table: table, Schema: s, Format: format, Path: path}, nil
}

// mergeHints combines file-derived hints with caller hints; the caller
// wins.
func mergeHints(file, caller map[string]schema.SemanticType) map[string]schema.SemanticType {
	out := make(map[string]schema.SemanticType, len(file)+len(caller))
	for k, v := range file {
		out[k] = v
	}
	for k, v := range caller {
		out[k] = v
	}
	return out
}
