package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cell is a single column value of a Row. Values are nil, string, bool, int,
// int64, float64, json.Number or decimal.Decimal.
type Cell struct {
	Column string
	Value  interface{}
}

// Row is an ordered mapping from column name to scalar value. It encodes as a JSON
// object whose keys keep the row order, and decodes the same way.
type Row []Cell

// Get returns the value of column.
func (r Row) Get(column string) (interface{}, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// Columns returns the column names in row order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, c := range r {
		cols[i] = c.Column
	}
	return cols
}

// MarshalJSON writes the row as an object in column order. Decimals are written
// as JSON numbers.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		switch v := c.Value.(type) {
		case decimal.Decimal:
			buf.WriteString(v.String())
		case decimal.NullDecimal:
			if v.Valid {
				buf.WriteString(v.Decimal.String())
			} else {
				buf.WriteString("null")
			}
		default:
			val, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Column, err)
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping its key order. Numbers decode as
// json.Number; nested objects and arrays are kept as compact JSON text.
func (r *Row) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	row := Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("column %s: %w", key, err)
		}
		value, err := scalar(raw)
		if err != nil {
			return fmt.Errorf("column %s: %w", key, err)
		}
		row = append(row, Cell{Column: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = row
	return nil
}

func scalar(raw json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
