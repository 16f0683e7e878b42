package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/vegasq/askdata/dataset"
)

func TestCSVFormatter_Format(t *testing.T) {
	tests := []struct {
		name      string
		table     *dataset.Table
		wantLines int
	}{
		{
			name:      "no columns",
			table:     dataset.NewTable(nil, nil),
			wantLines: 0,
		},
		{
			name:      "header only",
			table:     dataset.NewTable([]string{"id", "name"}, nil),
			wantLines: 1,
		},
		{
			name: "multiple rows",
			table: dataset.NewTable([]string{"id", "name"}, []dataset.Row{
				{"id": 1.0, "name": "alice"},
				{"id": 2.0, "name": "bob"},
			}),
			wantLines: 3, // header + 2 data rows
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewCSVFormatter(&buf).Format(tt.table); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
			if err != nil {
				t.Fatalf("Format() produced invalid CSV: %v", err)
			}
			if len(records) != tt.wantLines {
				t.Errorf("Format() produced %d lines, want %d", len(records), tt.wantLines)
			}
		})
	}
}

func TestCSVFormatter_ColumnOrder(t *testing.T) {
	table := dataset.NewTable([]string{"z_last", "a_first", "m_middle"}, []dataset.Row{
		{"z_last": "1", "a_first": "2", "m_middle": "3"},
	})

	var buf bytes.Buffer
	if err := NewCSVFormatter(&buf).Format(table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "z_last,a_first,m_middle" {
		t.Errorf("header = %q, want table column order", lines[0])
	}
}

func TestCSVValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"missing", nil, ""},
		{"undefined", dataset.Undefined, "undefined"},
		{"float", 1234.5, "1234.5"},
		{"negative number is not escaped", -3.0, "-3"},
		{"bool", true, "true"},
		{"plain string", "Texas", "Texas"},
		{"formula", "=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"at sign", "@cmd", "'@cmd"},
		{"quote inside formula", "+it's", "'+it''s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csvValue(tt.value); got != tt.want {
				t.Errorf("csvValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
