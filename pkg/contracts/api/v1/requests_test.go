package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRequest_DecodesFormScriptBody(t *testing.T) {
	body := `{"queryName":"day-chunk","params":{"baseDate":"31-JAN-25","chunkDays":"7","numChunks":3}}`

	var req QueryRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "day-chunk", req.QueryName)
	assert.Equal(t, TextParam("31-JAN-25"), req.Params.BaseDate)
	assert.Equal(t, IntParam(7), req.Params.ChunkDays)
	assert.Equal(t, IntParam(3), req.Params.NumChunks)
}

func TestReportParams_MonthAsNumber(t *testing.T) {
	var p ReportParams
	require.NoError(t, json.Unmarshal([]byte(`{"baseMonth":202503,"chunkMonths":"4","monthWidth":null}`), &p))
	assert.Equal(t, TextParam("202503"), p.BaseMonth)
	assert.Equal(t, IntParam(4), p.ChunkMonths)
	assert.Zero(t, p.MonthWidth)
}

func TestIntParam(t *testing.T) {
	tests := []struct {
		in      string
		want    IntParam
		wantErr bool
	}{
		{in: `12`, want: 12},
		{in: `"12"`, want: 12},
		{in: `" 5 "`, want: 5},
		{in: `""`, want: 0},
		{in: `"seven"`, wantErr: true},
		{in: `1.5`, wantErr: true},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p IntParam
			err := json.Unmarshal([]byte(tt.in), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestExportRequest_KeepsRawRows(t *testing.T) {
	var req ExportRequest
	require.NoError(t, json.Unmarshal([]byte(`{"filename":"out","rows":{"a":1}}`), &req))
	assert.Equal(t, "out", req.Filename)
	assert.JSONEq(t, `{"a":1}`, string(req.Rows))
}
