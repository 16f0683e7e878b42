package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vegasq/askdata/dataset"
)

// Delimiters are the candidates tried when sniffing a CSV delimiter.
var Delimiters = []rune{',', ';', '\t', '|'}

// sniffLines is how many leading lines the sniffer looks at.
const sniffLines = 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a delimited text file. The first record is the header.
// With delimiter 0 the delimiter is sniffed from the first lines.
func ReadCSV(path string, delimiter rune) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if delimiter == 0 {
		delimiter = SniffDelimiter(data)
	}
	return parseCSV(bytes.NewReader(data), delimiter)
}

// SniffDelimiter picks the candidate that splits most of the leading lines
// into as many fields as the header, preferring more fields. It falls back
// to a comma.
func SniffDelimiter(data []byte) rune {
	var sample bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < sniffLines && scanner.Scan(); i++ {
		sample.Write(scanner.Bytes())
		sample.WriteByte('\n')
	}

	best, bestFields := ',', 1
	for _, d := range Delimiters {
		r := csv.NewReader(bytes.NewReader(sample.Bytes()))
		r.Comma = d
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		records, err := r.ReadAll()
		if err != nil || len(records) == 0 {
			continue
		}

		fields, consistent := len(records[0]), 0
		for _, rec := range records {
			if len(rec) == fields {
				consistent++
			}
		}
		if consistent*2 > len(records) && fields > bestFields {
			best, bestFields = d, fields
		}
	}
	return best
}

func parseCSV(src io.Reader, delimiter rune) (*dataset.Table, error) {
	r := csv.NewReader(src)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file has no header row", ErrEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := headerNames(header)

	var rows []dataset.Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(rows)+1, err)
		}
		rows = append(rows, recordRow(columns, record))
	}
	return dataset.NewTable(columns, rows), nil
}

// recordRow maps a record onto columns. Short records leave the missing
// cells nil and extra fields are dropped.
func recordRow(columns, record []string) dataset.Row {
	row := make(dataset.Row, len(columns))
	for i, col := range columns {
		if i < len(record) {
			row[col] = record[i]
		} else {
			row[col] = nil
		}
	}
	return row
}

// headerNames trims header cells and makes them unique. Blank names become
// column_N and repeats get a _2, _3 suffix.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
