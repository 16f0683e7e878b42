package reader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vegasq/askdata/dataset"
)

// ReadXLSX reads one worksheet of an Excel workbook. An empty sheet name
// selects the first sheet. The first row is the header.
func ReadXLSX(path, sheet string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrEmpty)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q (workbook has %v)", ErrNotFound, sheet, sheets)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrEmpty, sheet)
	}

	columns := headerNames(records[0])
	rows := make([]dataset.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, recordRow(columns, record))
	}
	return dataset.NewTable(columns, rows), nil
}
