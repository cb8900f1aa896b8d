package datasource

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"chunkdash/internal/chunking"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

func toDecimal(v any) (decimal.NullDecimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.Decimal:
		return decimal.NewNullDecimal(x), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(x)), nil
	case int32:
		return decimal.NewNullDecimal(decimal.NewFromInt32(x)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(x))), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.NullDecimal{}, fmt.Errorf("non-finite number %v", x)
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(x)), nil
	case float32:
		return toDecimal(float64(x))
	case []byte:
		return toDecimal(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.NullDecimal{}, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("parse number %q: %w", s, err)
		}
		return decimal.NewNullDecimal(d), nil
	default:
		return decimal.NullDecimal{}, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func toDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return chunking.CivilDay(x), nil
	case []byte:
		return toDate(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return chunking.CivilDay(t), nil
			}
		}
		return chunking.ParseDay(s)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func toMonthKey(v any) (chunking.MonthKey, error) {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int:
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("month key %v is not an integer", x)
		}
		n = int64(x)
	case []byte:
		return toMonthKey(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse month key %q: %w", s, err)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("unsupported month key type %T", v)
	}

	k := chunking.MonthKey(n)
	if !k.Valid() {
		return 0, fmt.Errorf("invalid month key %d", n)
	}
	return k, nil
}

func toDimension(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return fmt.Sprint(x), true
	}
}
