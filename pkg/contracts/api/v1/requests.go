// Package api contains API contract definitions for the chunk report service.
// Version v1 represents the current stable API version.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IntParam is an integer parameter that also accepts a numeric JSON string, as
// sent by HTML form scripts. An empty string is zero.
type IntParam int

// UnmarshalJSON implements json.Unmarshaler
func (p *IntParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return p.UnmarshalText([]byte(s))
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*p = IntParam(n)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *IntParam) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", s)
	}
	*p = IntParam(n)
	return nil
}

// TextParam is a string parameter that also accepts a JSON number, so
// {"baseMonth": 202503} and {"baseMonth": "202503"} are equal.
type TextParam string

// UnmarshalJSON implements json.Unmarshaler
func (p *TextParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = TextParam(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*p = TextParam(n.String())
	}
	return nil
}

// ReportParams carries the chunking parameters of a report run. Day reports use
// BaseDate, ChunkDays and NumChunks; month reports use BaseMonth, ChunkMonths and
// optionally MonthWidth.
type ReportParams struct {
	BaseDate    TextParam `json:"baseDate,omitempty" form:"baseDate" validate:"omitempty,daydate"`
	ChunkDays   IntParam  `json:"chunkDays,omitempty" form:"chunkDays" validate:"omitempty,min=1,max=3660"`
	NumChunks   IntParam  `json:"numChunks,omitempty" form:"numChunks" validate:"omitempty,min=1,max=1000"`
	BaseMonth   TextParam `json:"baseMonth,omitempty" form:"baseMonth" validate:"omitempty,monthkey"`
	ChunkMonths IntParam  `json:"chunkMonths,omitempty" form:"chunkMonths" validate:"omitempty,min=1,max=600"`
	MonthWidth  IntParam  `json:"monthWidth,omitempty" form:"monthWidth" validate:"omitempty,min=1,max=120"`
}

// QueryRequest runs a named report, the body of POST /api/query.
type QueryRequest struct {
	QueryName string       `json:"queryName" validate:"required,max=100"`
	Params    ReportParams `json:"params"`
}

// ExportRequest is the body of the export endpoints. Rows is checked to be a JSON
// array before it is decoded.
type ExportRequest struct {
	Filename string          `json:"filename" validate:"omitempty,max=200"`
	Rows     json.RawMessage `json:"rows"`
}
