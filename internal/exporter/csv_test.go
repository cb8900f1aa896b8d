package exporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdash/pkg/contracts/domain"
)

func sampleRows() []domain.Row {
	return []domain.Row{
		{
			{Column: "CHUNK_NO", Value: 1},
			{Column: "START_DATE", Value: "25-JAN-25"},
			{Column: "AVG_UNIQUE_VSUBS", Value: decimal.NewNullDecimal(decimal.RequireFromString("33.33"))},
			{Column: "NOTE", Value: "a, \"quoted\" value"},
		},
		{
			{Column: "CHUNK_NO", Value: 2},
			{Column: "START_DATE", Value: "18-JAN-25"},
			{Column: "AVG_UNIQUE_VSUBS", Value: decimal.NullDecimal{}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM), "csv starts with a BOM")
	assert.Equal(t,
		"CHUNK_NO,START_DATE,AVG_UNIQUE_VSUBS,NOTE\n"+
			"1,25-JAN-25,33.33,\"a, \"\"quoted\"\" value\"\n"+
			"2,18-JAN-25,,\n",
		string(out[len(utf8BOM):]))
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, sampleRows()))

	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CHUNK_NO\tSTART_DATE\tAVG_UNIQUE_VSUBS\tNOTE", lines[0])
	assert.Equal(t, "2\t18-JAN-25\t\t", lines[2])
}

func TestWriteDelimited_HeadersFromFirstRow(t *testing.T) {
	var rows []domain.Row
	require.NoError(t, json.Unmarshal([]byte(`[{"b":1,"a":"x"},{"a":"y","c":true}]`), &rows))

	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, rows, WriteOptions{}))
	assert.Equal(t, "b,a\n1,x\n,y\n", buf.String())
}

func TestWriteDelimited_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, utf8BOM, buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteDelimited(&buf, nil, WriteOptions{Headers: []string{"A", "B"}}))
	assert.Equal(t, "A,B\n", buf.String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, domain.ExportFormatJSON, sampleRows()[1:], Options{}))
	assert.JSONEq(t, `[{"CHUNK_NO":2,"START_DATE":"18-JAN-25","AVG_UNIQUE_VSUBS":null}]`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, domain.ExportFormatJSON, nil, Options{}))
	assert.JSONEq(t, `[]`, buf.String())

	assert.Error(t, Write(&buf, domain.ExportFormat("pdf"), nil, Options{}))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]domain.ExportFormat{
		"":      domain.ExportFormatCSV,
		"csv":   domain.ExportFormatCSV,
		"tsv":   domain.ExportFormatTSV,
		"xlsx":  domain.ExportFormatExcel,
		"excel": domain.ExportFormatExcel,
		"json":  domain.ExportFormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}
