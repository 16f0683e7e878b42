package reader

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/askdata/schema"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"data.csv", FormatCSV},
		{"DATA.TXT", FormatCSV},
		{"book.xlsm", FormatXLSX},
		{"part-0.parquet", FormatParquet},
		{"parts/*", FormatParquet},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat("notes.docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "nominations.csv",
		"state_abb,scheduled_quantity,gas_day,is_firm\n"+
			"TX,\"1,250.5\",2024-01-05,yes\n"+
			"LA,NA,2024-01-06,no\n")

	data, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, data.Format)

	types := map[string]schema.SemanticType{}
	for _, c := range data.Schema.Columns() {
		types[c.Name] = c.Type
	}
	assert.Equal(t, map[string]schema.SemanticType{
		"state_abb":          schema.Categorical,
		"scheduled_quantity": schema.Numeric,
		"gas_day":            schema.Datetime,
		"is_firm":            schema.Boolean,
	}, types)

	assert.Equal(t, 1250.5, data.Table.Rows[0]["scheduled_quantity"])
	assert.Nil(t, data.Table.Rows[1]["scheduled_quantity"])
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), data.Table.Rows[1]["gas_day"])
	assert.Equal(t, false, data.Table.Rows[1]["is_firm"])
}

func TestLoad_DateColumn(t *testing.T) {
	path := writeFile(t, "trend.csv", "year,total\n2022,1\n2023,2\n")

	data, err := Load(path, Options{DateColumn: "year"})
	require.NoError(t, err)
	col, ok := data.Schema.Lookup("year")
	require.True(t, ok)
	assert.Equal(t, schema.Datetime, col.Type)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), data.Table.Rows[0]["year"])

	_, err = Load(path, Options{DateColumn: "gas_day"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Parquet(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "a.parquet", []nominationRow{{State: "TX", Quantity: qty(10), Sign: 1, GasDay: time.Now()}})
	writeParquet(t, dir, "b.parquet", []nominationRow{{State: "LA", Quantity: qty(20), Sign: -1, GasDay: time.Now()}})

	data, err := Load(filepath.Join(dir, "*.parquet"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, data.Table.Len())

	col, ok := data.Schema.Lookup("rec_del_sign")
	require.True(t, ok)
	assert.Equal(t, schema.Numeric, col.Type)
	assert.Equal(t, 1.0, data.Table.Rows[0]["rec_del_sign"])
	assert.True(t, data.Schema.Has(FileColumn))
}

func TestLoad_XLSX(t *testing.T) {
	data, err := Load(writeWorkbook(t), Options{Sheet: "Totals"})
	require.NoError(t, err)
	assert.Equal(t, 2024.0, data.Table.Rows[0]["year"])
	assert.Equal(t, 150.5, data.Table.Rows[0]["total"])
}
