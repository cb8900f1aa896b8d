package reports

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdash/internal/chunking"
	api "chunkdash/pkg/contracts/api/v1"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"day-chunk", "month-chunk", "fo-day-chunk", "fo-month-chunk"}, c.Names())
	assert.Equal(t, 4, c.Len())

	day, err := c.Get("day-chunk")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CHUNK_NO", "START_DATE", "END_DATE", "TOTAL_REVENUE_MOC_MTC", "DATA_REV_TOT",
		"AVG_UNIQUE_VSUBS", "AVG_UNIQUE_DSUBS", "PRESENT_DAYS",
	}, day.ColumnNames())

	foMonth, err := c.Get("fo-month")
	require.NoError(t, err)
	assert.Equal(t, "fo-month-chunk", foMonth.Name)
	assert.Equal(t, chunking.OrderChunkDescending, foMonth.Order)
	assert.Equal(t, "ZONE_SALES_T_FIELD_OFFICER_DAY_REV", foMonth.Dataset.Table)

	assert.True(t, c.Has("fo-day"))
	_, err = c.Get("week-chunk")
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestDefinition_Options(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	def, err := c.Get("fo-day-chunk")
	require.NoError(t, err)

	opts := def.Options()
	assert.Equal(t, []string{"FIELD_OFFICER_NAME", "INCHARGE_NAME"}, opts.GroupBy)
	assert.Equal(t, []chunking.Metric{
		{Field: "TOTAL_REVENUE_MOC_MTC"},
		{Field: "DATA_REV_TOT"},
		{Field: "UNIQUE_VSUBS", Averaged: true},
		{Field: "UNIQUE_DSUBS", Averaged: true},
	}, opts.Metrics)
}

func TestDefinition_ResolveParams(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	day, _ := c.Get("day-chunk")
	month, _ := c.Get("month-chunk")

	p, err := day.ResolveParams(api.ReportParams{BaseDate: "31-JAN-25", ChunkDays: 7, NumChunks: 3})
	require.NoError(t, err)
	assert.Equal(t, "31-JAN-25", p.Anchor)
	assert.Equal(t, 7, p.Width)
	assert.Equal(t, 3, p.Count)

	p, err = month.ResolveParams(api.ReportParams{BaseMonth: "202503", ChunkMonths: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Width)
	assert.Equal(t, 4, p.Count)

	_, err = day.ResolveParams(api.ReportParams{BaseMonth: "202503", ChunkMonths: 4})
	require.ErrorIs(t, err, chunking.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "baseDate, chunkDays, numChunks")

	assert.Equal(t, []string{"baseMonth", "chunkMonths", "monthWidth"}, month.ParameterNames())
	assert.Equal(t, "voice_data_details_final_2", month.Info().Dataset)
}

const minimalCatalog = `
version: v1
reports:
  - name: r
    granularity: day
    dataset:
      table: T
      date_column: D
      metrics: [M]
    columns:
      - {name: CHUNK_NO, source: chunk_no}
      - {name: TOTAL, source: sum, field: M}
`

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{"bad version", func(s string) string { return strings.Replace(s, "v1", "v9", 1) }, "unsupported catalog version"},
		{"unknown key", func(s string) string {
			return strings.Replace(s, "granularity: day", "granularity: day\n    colour: red", 1)
		}, "colour"},
		{"bad granularity", func(s string) string { return strings.Replace(s, "granularity: day", "granularity: week", 1) }, "granularity"},
		{"unknown metric", func(s string) string { return strings.Replace(s, "field: M", "field: X", 1) }, "unknown metric"},
		{"bad source", func(s string) string { return strings.Replace(s, "source: chunk_no", "source: rank", 1) }, "unknown source"},
		{"month key on day", func(s string) string { return strings.Replace(s, "source: chunk_no", "source: month_key", 1) }, "month granularity"},
		{"unsafe table", func(s string) string { return strings.Replace(s, "table: T", "table: \"T; --\"", 1) }, "invalid identifier"},
		{"duplicate column", func(s string) string { return strings.Replace(s, "name: TOTAL", "name: CHUNK_NO", 1) }, "duplicate column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.mutate(minimalCatalog)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	c, err := ParseCatalog([]byte(minimalCatalog))
	require.NoError(t, err)
	assert.Equal(t, []string{"r"}, c.Names())
}

func TestCatalog_RegisterDuplicate(t *testing.T) {
	c, err := ParseCatalog([]byte(minimalCatalog))
	require.NoError(t, err)
	def, _ := c.Get("r")

	dup := *def
	assert.Error(t, c.Register(dup))

	dup.Name = "other"
	dup.Aliases = []string{"r"}
	assert.Error(t, c.Register(dup))
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o644))
	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
