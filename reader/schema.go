package reader

import (
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vegasq/askdata/schema"
)

// SchemaInfo describes one leaf column of a parquet file.
type SchemaInfo struct {
	Name         string `json:"name"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`

	// unit is the TIMESTAMP resolution.
	unit time.Duration
}

// Hint returns the semantic type the parquet type implies. Repeated and
// nested columns, byte arrays and decimals give no hint.
func (info SchemaInfo) Hint() (schema.SemanticType, bool) {
	if info.Repeated {
		return 0, false
	}
	switch info.LogicalType {
	case "DATE", "TIMESTAMP":
		return schema.Datetime, true
	case "", "INT":
	default:
		return 0, false
	}
	switch info.PhysicalType {
	case "BOOLEAN":
		return schema.Boolean, true
	case "INT32", "INT64", "FLOAT", "DOUBLE":
		return schema.Numeric, true
	}
	return 0, false
}

// ExtractSchemaInfo reads the schema of the parquet file at path.
//
// For nested types, field names use dot notation (e.g., "address.street").
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = r.Close() }()
	return r.SchemaInfo(), nil
}

func schemaInfos(s *parquet.Schema) []SchemaInfo {
	var infos []SchemaInfo
	for _, field := range s.Fields() {
		infos = append(infos, fieldInfos(field, "", false)...)
	}
	return infos
}

// fieldInfos collects the leaves under field, tracking whether any parent
// is repeated.
func fieldInfos(field parquet.Field, prefix string, parentRepeated bool) []SchemaInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if !field.Leaf() {
		var infos []SchemaInfo
		for _, child := range field.Fields() {
			infos = append(infos, fieldInfos(child, name, repeated)...)
		}
		return infos
	}

	info := SchemaInfo{
		Name:         name,
		PhysicalType: physicalType(field.Type().Kind()),
		Optional:     field.Optional(),
		Repeated:     repeated,
	}
	if lt := field.Type().LogicalType(); lt != nil {
		info.LogicalType = logicalType(lt)
		if lt.Timestamp != nil {
			info.unit = timestampUnit(lt.Timestamp.Unit)
		}
	}
	return []SchemaInfo{info}
}

func physicalType(kind parquet.Kind) string {
	switch kind {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

func logicalType(lt *format.LogicalType) string {
	switch {
	case lt.UTF8 != nil:
		return "STRING"
	case lt.Enum != nil:
		return "ENUM"
	case lt.UUID != nil:
		return "UUID"
	case lt.Integer != nil:
		return "INT"
	case lt.Decimal != nil:
		return "DECIMAL"
	case lt.Date != nil:
		return "DATE"
	case lt.Time != nil:
		return "TIME"
	case lt.Timestamp != nil:
		return "TIMESTAMP"
	case lt.Json != nil:
		return "JSON"
	case lt.Bson != nil:
		return "BSON"
	default:
		return ""
	}
}

func timestampUnit(u format.TimeUnit) time.Duration {
	switch {
	case u.Millis != nil:
		return time.Millisecond
	case u.Micros != nil:
		return time.Microsecond
	default:
		return time.Nanosecond
	}
}
