package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the storage kind of a cell value after coercion.
type Kind int

const (
	KindMissing Kind = iota
	KindBool
	KindNumber
	KindTime
	KindString
	KindOther
)

// String returns the kind name shown by the dtypes listing.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindBool:
		return "bool"
	case KindNumber:
		return "float64"
	case KindTime:
		return "datetime"
	case KindString:
		return "string"
	default:
		return "object"
	}
}

// KindOf returns the storage kind of v.
func KindOf(v interface{}) Kind {
	if IsMissing(v) {
		return KindMissing
	}
	if _, ok := ToFloat64(v); ok {
		return KindNumber
	}
	switch v.(type) {
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	case string:
		return KindString
	default:
		return KindOther
	}
}

// IsMissing reports whether v counts as a missing value: nil or NaN.
func IsMissing(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	default:
		return false
	}
}

// ToFloat64 converts a numeric value to float64 if possible
func ToFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToTime converts a value to time.Time if it already is one.
func ToTime(v interface{}) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// DateLayouts are the layouts tried, in order, when parsing date text.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
}

// ParseTime parses s with the first matching layout from DateLayouts.
// Results are normalized to UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses numeric text, tolerating surrounding spaces and
// thousands separators written as commas ("1,250.5").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, " ") {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool parses the boolean spellings accepted in data and queries.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "t":
		return true, true
	case "false", "no", "n", "f":
		return false, true
	default:
		return false, false
	}
}

// kindRank orders values of different kinds against each other.
func kindRank(k Kind) int {
	switch k {
	case KindMissing:
		return 0
	case KindBool:
		return 1
	case KindNumber:
		return 2
	case KindTime:
		return 3
	case KindString:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0 or +1 as a is less than, equal to or greater
// than b.
//
// Missing sorts before everything. Numbers compare numerically, times
// chronologically, booleans false before true, strings byte-wise. Values of
// different kinds order by kind.
func Compare(a, b interface{}) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmpInt(kindRank(ka), kindRank(kb))
	}

	switch ka {
	case KindMissing:
		return 0
	case KindNumber:
		af, _ := ToFloat64(a)
		bf, _ := ToFloat64(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case KindTime:
		at, _ := ToTime(a)
		bt, _ := ToTime(b)
		return at.Compare(bt)
	case KindBool:
		ab, bb := a.(bool), b.(bool)
		if !ab && bb {
			return -1 // false < true
		}
		if ab && !bb {
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Equal reports whether two cells hold the same value. Numbers compare by
// value regardless of their Go type.
func Equal(a, b interface{}) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	return Compare(a, b) == 0
}

// GroupKey returns a string key identifying v for hash grouping. Values that
// are Equal map to the same key.
func GroupKey(v interface{}) string {
	switch KindOf(v) {
	case KindMissing:
		return "\x00missing"
	case KindNumber:
		f, _ := ToFloat64(v)
		if f == 0 {
			// -0 and 0 compare equal.
			f = 0
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case KindTime:
		t, _ := ToTime(v)
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	case KindBool:
		return fmt.Sprintf("b:%t", v)
	case KindString:
		return "s:" + v.(string)
	default:
		return fmt.Sprintf("o:%#v", v)
	}
}

// FormatValue converts a value to its display string. Floats use the
// shortest representation that round-trips.
func FormatValue(v interface{}) string {
	if IsUndefined(v) {
		return Undefined.String()
	}
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
