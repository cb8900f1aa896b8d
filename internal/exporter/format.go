package exporter

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// formatCell renders a row value as text. NULL is the empty string.
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case decimal.NullDecimal:
		if !x.Valid {
			return ""
		}
		return x.Decimal.String()
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// excelValue converts a row value to the type excelize stores natively, so
// numbers land in numeric cells.
func excelValue(v interface{}) interface{} {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return x.Decimal.InexactFloat64()
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case nil, string, int, int64, float64, bool:
		return x
	default:
		return fmt.Sprint(x)
	}
}
