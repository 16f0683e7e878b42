// Package reader loads tabular files into a dataset.Table.
//
// CSV and text files, Excel workbooks and Apache Parquet files (single
// files or glob patterns) are supported. Load infers the schema and
// coerces every cell to its column's storage kind. Download fetches a
// remote file first.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/schema"
)

// FileColumn is added to rows read through a glob pattern and holds the
// source file path.
const FileColumn = "_file"

// maxFiles bounds how many files one glob pattern may match.
const maxFiles = 1000

// Reader reads a parquet file and returns its rows as maps.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
	infos  []SchemaInfo
}

// NewReader opens path and validates it as a parquet file.
//
// Example:
//
//	r, err := NewReader("nominations.parquet")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
		infos:  schemaInfos(pqFile.Schema()),
	}, nil
}

// Columns returns the top-level column names in file order.
func (r *Reader) Columns() []string {
	fields := r.pqFile.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// SchemaInfo returns metadata for every leaf column.
func (r *Reader) SchemaInfo() []SchemaInfo {
	return r.infos
}

// ReadAll reads every row into memory. DATE and TIMESTAMP columns become
// time.Time and untyped byte arrays become strings.
func (r *Reader) ReadAll() ([]dataset.Row, error) {
	rows := make([]dataset.Row, 0, r.pqFile.NumRows())
	convert := make(map[string]SchemaInfo, len(r.infos))
	for _, info := range r.infos {
		convert[info.Name] = info
	}

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows), err)
		}
		for name, v := range row {
			if info, ok := convert[name]; ok {
				row[name] = info.normalize(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close releases the file handle. It is safe to call Close multiple times.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// IsGlob reports whether path contains glob wildcards.
func IsGlob(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// ReadParquet reads one parquet file, or every file matching a glob
// pattern. Rows from a glob carry FileColumn. The returned hints give the
// semantic type of columns whose parquet type determines it.
//
// Files matched by a pattern are read in lexical order and their columns
// are merged in first-seen order.
func ReadParquet(pattern string) (*dataset.Table, map[string]schema.SemanticType, error) {
	if !IsGlob(pattern) {
		return readParquetFiles([]string{pattern}, false)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("%w: no files match pattern %s", ErrNotFound, pattern)
	}
	if len(matches) > maxFiles {
		return nil, nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}
	return readParquetFiles(matches, true)
}

func readParquetFiles(paths []string, tagFile bool) (*dataset.Table, map[string]schema.SemanticType, error) {
	var (
		columns []string
		seen    = make(map[string]bool)
		hints   = make(map[string]schema.SemanticType)
		all     []dataset.Row
	)

	for _, path := range paths {
		r, err := NewReader(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		rows, readErr := r.ReadAll()
		names := r.Columns()
		infos := r.SchemaInfo()
		closeErr := r.Close()

		// Preserve the first error encountered
		if readErr != nil {
			return nil, nil, fmt.Errorf("failed to read rows from %s: %w", path, readErr)
		}
		if closeErr != nil {
			return nil, nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
		}

		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
		for _, info := range infos {
			if typ, ok := info.Hint(); ok {
				if _, exists := hints[info.Name]; !exists {
					hints[info.Name] = typ
				}
			}
		}
		if tagFile {
			for _, row := range rows {
				row[FileColumn] = path
			}
		}
		all = append(all, rows...)
	}

	if tagFile && !seen[FileColumn] {
		columns = append(columns, FileColumn)
	}
	return dataset.NewTable(columns, all), hints, nil
}

const secondsPerDay = 24 * 60 * 60

// normalize converts a raw parquet value into a dataset cell.
func (info SchemaInfo) normalize(v interface{}) interface{} {
	switch info.LogicalType {
	case "DATE":
		switch days := v.(type) {
		case int32:
			return time.Unix(int64(days)*secondsPerDay, 0).UTC()
		case int64:
			return time.Unix(days*secondsPerDay, 0).UTC()
		}
	case "TIMESTAMP":
		if n, ok := v.(int64); ok {
			switch info.unit {
			case time.Millisecond:
				return time.UnixMilli(n).UTC()
			case time.Microsecond:
				return time.UnixMicro(n).UTC()
			default:
				return time.Unix(0, n).UTC()
			}
		}
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
