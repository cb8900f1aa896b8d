package chunking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func dayRecord(date, revenue, subs string, dims map[string]string) Record {
	return Record{
		Date: day(date),
		Metrics: map[string]decimal.NullDecimal{
			"REVENUE":      num(revenue),
			"UNIQUE_VSUBS": num(subs),
		},
		Dimensions: dims,
	}
}

var dayMetrics = []Metric{{Field: "REVENUE"}, {Field: "UNIQUE_VSUBS", Averaged: true}}

func TestAggregate_DayChunks(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-31"), 7, 3)
	require.NoError(t, err)

	records := []Record{
		dayRecord("2025-01-31", "10.50", "100", nil),
		dayRecord("2025-01-30", "4.25", "50", nil),
		dayRecord("2025-01-30", "0.25", "50", nil),
		dayRecord("2025-01-18", "1", "7", nil),
		dayRecord("2024-12-01", "999", "999", nil),
	}

	rows, err := Aggregate(chunks, records, Options{Metrics: dayMetrics})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// descending chunk order for day reports
	assert.Equal(t, []int{3, 2, 1}, []int{rows[0].Chunk.Number, rows[1].Chunk.Number, rows[2].Chunk.Number})

	first := rows[2]
	assert.Equal(t, 2, first.PresentPeriods)
	assert.Equal(t, "15", first.Sum("REVENUE").Decimal.String())
	assert.Equal(t, "200", first.Sum("UNIQUE_VSUBS").Decimal.String())
	assert.Equal(t, "100", first.Average("UNIQUE_VSUBS").Decimal.String())
	_, averaged := first.Averages["REVENUE"]
	assert.False(t, averaged)

	second := rows[1]
	assert.Equal(t, 1, second.PresentPeriods)
	assert.Equal(t, "1", second.Sum("REVENUE").Decimal.String())

	empty := rows[0]
	assert.Equal(t, 0, empty.PresentPeriods)
	assert.False(t, empty.Sum("REVENUE").Valid)
	assert.False(t, empty.Average("UNIQUE_VSUBS").Valid)
}

func TestAggregate_RoundsAverageHalfUp(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-03"), 3, 1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{"thirds", []string{"50", "25", "25"}, "33.33"},
		{"half up", []string{"0.005", "0.005", "0.005"}, "0.01"},
		{"two thirds", []string{"1", "0", "1"}, "0.67"},
		{"negative half away from zero", []string{"-0.015", "0", "0"}, "-0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []Record
			for i, v := range tt.values {
				records = append(records, Record{
					Date:    day("2025-01-03").AddDate(0, 0, -i),
					Metrics: map[string]decimal.NullDecimal{"X": num(v)},
				})
			}
			rows, err := Aggregate(chunks, records, Options{Metrics: []Metric{{Field: "X", Averaged: true}}})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, 3, rows[0].PresentPeriods)
			assert.Equal(t, tt.expected, rows[0].Average("X").Decimal.StringFixed(2))
		})
	}
}

func TestAggregate_PresentPeriodsCountsDistinctDays(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-31"), 7, 1)
	require.NoError(t, err)

	records := []Record{
		dayRecord("2025-01-31", "1", "60", nil),
		dayRecord("2025-01-31", "1", "20", nil),
		dayRecord("2025-01-31", "1", "20", nil),
	}
	records[1].Date = records[1].Date.Add(13 * time.Hour)

	rows, err := Aggregate(chunks, records, Options{Metrics: dayMetrics})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].PresentPeriods)
	assert.Equal(t, "100", rows[0].Average("UNIQUE_VSUBS").Decimal.String())
}

func TestAggregate_GroupedByDimension(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-14"), 7, 3)
	require.NoError(t, err)

	officer := func(fo, in string) map[string]string {
		return map[string]string{"FIELD_OFFICER_NAME": fo, "INCHARGE_NAME": in}
	}
	records := []Record{
		dayRecord("2025-01-14", "5", "10", officer("Zara", "Omar")),
		dayRecord("2025-01-13", "5", "30", officer("Zara", "Omar")),
		dayRecord("2025-01-14", "3", "9", officer("Ali", "Omar")),
		dayRecord("2025-01-14", "1", "1", officer("Ali", "Ahmed")),
		dayRecord("2025-01-07", "2", "2", map[string]string{"INCHARGE_NAME": "Omar"}),
		dayRecord("2025-01-06", "2", "2", officer("Ali", "Omar")),
	}

	opts := Options{Metrics: dayMetrics, GroupBy: []string{"FIELD_OFFICER_NAME", "INCHARGE_NAME"}}
	rows, err := Aggregate(chunks, records, opts)
	require.NoError(t, err)

	type key struct {
		chunk   int
		officer string
		valid   bool
		charge  string
	}
	var got []key
	for _, r := range rows {
		fo, ok := r.Dimension("FIELD_OFFICER_NAME")
		in, _ := r.Dimension("INCHARGE_NAME")
		got = append(got, key{r.Chunk.Number, fo, ok, in})
	}
	assert.Equal(t, []key{
		{3, "", false, ""},
		{2, "Ali", true, "Omar"},
		{2, "", false, "Omar"},
		{1, "Ali", true, "Ahmed"},
		{1, "Ali", true, "Omar"},
		{1, "Zara", true, "Omar"},
	}, got)

	zara := rows[5]
	assert.Equal(t, 2, zara.PresentPeriods)
	assert.Equal(t, "10", zara.Sum("REVENUE").Decimal.String())
	assert.Equal(t, "20", zara.Average("UNIQUE_VSUBS").Decimal.String())

	empty := rows[0]
	require.Len(t, empty.Dimensions, 2)
	assert.False(t, empty.Dimensions[0].Valid)
	assert.False(t, empty.Dimensions[1].Valid)
	assert.Equal(t, 0, empty.PresentPeriods)
}

func TestAggregate_MonthChunks(t *testing.T) {
	chunks, err := GenerateMonthChunks(202503, 1, 4)
	require.NoError(t, err)

	records := []Record{
		{Date: day("2025-03-01"), MonthKey: 202503, Metrics: map[string]decimal.NullDecimal{"DSUBS": num("30")}},
		{Date: day("2025-03-02"), MonthKey: 202503, Metrics: map[string]decimal.NullDecimal{"DSUBS": num("40")}},
		{Date: day("2024-12-31"), Metrics: map[string]decimal.NullDecimal{"DSUBS": num("11")}},
		{MonthKey: 202502, Metrics: map[string]decimal.NullDecimal{"DSUBS": num("5")}},
		{MonthKey: 202502, Metrics: map[string]decimal.NullDecimal{"DSUBS": {}}},
	}

	rows, err := Aggregate(chunks, records, Options{Metrics: []Metric{{Field: "DSUBS", Averaged: true}}})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// ascending chunk order for month reports
	var keys []MonthKey
	for _, r := range rows {
		keys = append(keys, r.Chunk.EndMonth)
	}
	assert.Equal(t, []MonthKey{202503, 202502, 202501, 202412}, keys)

	assert.Equal(t, 2, rows[0].PresentPeriods)
	assert.Equal(t, "35", rows[0].Average("DSUBS").Decimal.String())
	assert.Equal(t, 1, rows[1].PresentPeriods)
	assert.Equal(t, "5", rows[1].Sum("DSUBS").Decimal.String())
	assert.Equal(t, 0, rows[2].PresentPeriods)
	assert.False(t, rows[2].Average("DSUBS").Valid)
	assert.Equal(t, "11", rows[3].Sum("DSUBS").Decimal.String())
}

func TestAggregate_AllNullValuesSumToNull(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-31"), 1, 1)
	require.NoError(t, err)

	records := []Record{{Date: day("2025-01-31"), Metrics: map[string]decimal.NullDecimal{"X": {}}}}
	rows, err := Aggregate(chunks, records, Options{Metrics: []Metric{{Field: "X", Averaged: true}}})
	require.NoError(t, err)
	assert.Equal(t, 1, rows[0].PresentPeriods)
	assert.False(t, rows[0].Sum("X").Valid)
	assert.False(t, rows[0].Average("X").Valid)
}

func TestAggregate_ExplicitOrder(t *testing.T) {
	chunks, err := GenerateMonthChunks(202503, 1, 3)
	require.NoError(t, err)

	rows, err := Aggregate(chunks, nil, Options{
		Metrics: []Metric{{Field: "X"}},
		Order:   OrderChunkDescending,
	})
	require.NoError(t, err)
	assert.Equal(t, MonthKey(202501), rows[0].Chunk.EndMonth)
	assert.Equal(t, MonthKey(202503), rows[2].Chunk.EndMonth)
}

func TestAggregate_EmptyInput(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-31"), 7, 4)
	require.NoError(t, err)

	rows, err := Aggregate(chunks, nil, Options{Metrics: dayMetrics})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, 0, r.PresentPeriods)
		assert.False(t, r.Sum("REVENUE").Valid)
		assert.False(t, r.Average("UNIQUE_VSUBS").Valid)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-31"), 5, 4)
	require.NoError(t, err)
	records := []Record{
		dayRecord("2025-01-31", "1.1", "3", map[string]string{"D": "b"}),
		dayRecord("2025-01-20", "2.2", "4", map[string]string{"D": "a"}),
		dayRecord("2025-01-21", "3.3", "5", map[string]string{"D": "b"}),
	}
	opts := Options{Metrics: dayMetrics, GroupBy: []string{"D"}}

	first, err := Aggregate(chunks, records, opts)
	require.NoError(t, err)
	second, err := Aggregate(chunks, records, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregate_InvalidParameter(t *testing.T) {
	chunks, err := GenerateDayChunks(day("2025-01-31"), 7, 2)
	require.NoError(t, err)
	records := []Record{dayRecord("2025-01-31", "1", "1", nil)}

	tests := []struct {
		name    string
		chunks  []Chunk
		records []Record
		opts    Options
	}{
		{"no metrics", chunks, records, Options{}},
		{"unknown metric", chunks, records, Options{Metrics: []Metric{{Field: "MISSING"}}}},
		{"duplicate metric", chunks, records, Options{Metrics: []Metric{{Field: "REVENUE"}, {Field: "REVENUE"}}}},
		{"empty dimension", chunks, records, Options{Metrics: dayMetrics, GroupBy: []string{""}}},
		{"no chunks", nil, records, Options{Metrics: dayMetrics}},
		{"unknown order", chunks, records, Options{Metrics: dayMetrics, Order: "sideways"}},
		{"record without date", chunks, []Record{{Metrics: records[0].Metrics}}, Options{Metrics: dayMetrics}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Aggregate(tt.chunks, tt.records, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Nil(t, rows)
		})
	}
}
