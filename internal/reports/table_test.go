package reports

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdash/internal/chunking"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func metrics(rev, data, v, d string) map[string]decimal.NullDecimal {
	out := map[string]decimal.NullDecimal{}
	for k, s := range map[string]string{
		"TOTAL_REVENUE_MOC_MTC": rev, "DATA_REV_TOT": data, "UNIQUE_VSUBS": v, "UNIQUE_DSUBS": d,
	} {
		out[k] = decimal.NewNullDecimal(decimal.RequireFromString(s))
	}
	return out
}

func runDefinition(t *testing.T, name, anchor string, width, count int, records []chunking.Record) string {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	def, err := c.Get(name)
	require.NoError(t, err)

	chunks, err := chunking.GenerateChunks(anchor, width, count, def.Granularity)
	require.NoError(t, err)
	summaries, err := chunking.Aggregate(chunks, records, def.Options())
	require.NoError(t, err)

	data, err := json.Marshal(Tabulate(def, summaries))
	require.NoError(t, err)
	return string(data)
}

func TestTabulate_DayChunk(t *testing.T) {
	records := []chunking.Record{
		{Date: day(2025, 1, 31), Metrics: metrics("50", "10", "100", "40")},
		{Date: day(2025, 1, 30), Metrics: metrics("50", "5", "0", "20")},
		{Date: day(2025, 1, 29), Metrics: metrics("0", "0", "0", "0")},
	}

	got := runDefinition(t, "day-chunk", "31-JAN-25", 7, 2, records)
	assert.Equal(t, `[`+
		`{"CHUNK_NO":2,"START_DATE":"18-JAN-25","END_DATE":"24-JAN-25","TOTAL_REVENUE_MOC_MTC":null,"DATA_REV_TOT":null,"AVG_UNIQUE_VSUBS":null,"AVG_UNIQUE_DSUBS":null,"PRESENT_DAYS":0},`+
		`{"CHUNK_NO":1,"START_DATE":"25-JAN-25","END_DATE":"31-JAN-25","TOTAL_REVENUE_MOC_MTC":100,"DATA_REV_TOT":15,"AVG_UNIQUE_VSUBS":33.33,"AVG_UNIQUE_DSUBS":20,"PRESENT_DAYS":3}`+
		`]`, got)
}

func TestTabulate_MonthChunk(t *testing.T) {
	records := []chunking.Record{
		{Date: day(2025, 3, 1), MonthKey: 202503, Metrics: metrics("10", "1", "9", "3")},
		{Date: day(2025, 3, 2), MonthKey: 202503, Metrics: metrics("10", "1", "0", "0")},
	}

	got := runDefinition(t, "month-chunk", "202503", 1, 2, records)
	assert.Equal(t, `[`+
		`{"CHUNK_NO":1,"MONTH_KEY":202503,"TOTAL_DATA_REV_TOT":2,"TOTAL_REVENUE_MOC_MTC":20,"AVG_DAILY_VSUBS":4.5,"AVG_DAILY_DSUBS":1.5},`+
		`{"CHUNK_NO":2,"MONTH_KEY":202502,"TOTAL_DATA_REV_TOT":null,"TOTAL_REVENUE_MOC_MTC":null,"AVG_DAILY_VSUBS":null,"AVG_DAILY_DSUBS":null}`+
		`]`, got)
}

func TestTabulate_FieldOfficerMonth(t *testing.T) {
	officer := func(name, incharge string) map[string]string {
		return map[string]string{"FIELD_OFFICER_NAME": name, "INCHARGE_NAME": incharge}
	}
	records := []chunking.Record{
		{Date: day(2025, 2, 3), MonthKey: 202502, Metrics: metrics("5", "1", "2", "2"), Dimensions: officer("ZAID", "SARA")},
		{Date: day(2025, 2, 3), MonthKey: 202502, Metrics: metrics("7", "1", "2", "2"), Dimensions: officer("ALI", "SARA")},
		{Date: day(2025, 1, 9), MonthKey: 202501, Metrics: metrics("1", "1", "1", "1"), Dimensions: officer("ALI", "SARA")},
	}

	got := runDefinition(t, "fo-month-chunk", "202502", 1, 2, records)
	assert.Equal(t, `[`+
		`{"MONTH_KEY":202501,"FIELD_OFFICER_NAME":"ALI","INCHARGE_NAME":"SARA","TOTAL_DATA_REV_TOT":1,"TOTAL_REVENUE_MOC_MTC":1,"AVG_DAILY_VSUBS":1,"AVG_DAILY_DSUBS":1},`+
		`{"MONTH_KEY":202502,"FIELD_OFFICER_NAME":"ALI","INCHARGE_NAME":"SARA","TOTAL_DATA_REV_TOT":1,"TOTAL_REVENUE_MOC_MTC":7,"AVG_DAILY_VSUBS":2,"AVG_DAILY_DSUBS":2},`+
		`{"MONTH_KEY":202502,"FIELD_OFFICER_NAME":"ZAID","INCHARGE_NAME":"SARA","TOTAL_DATA_REV_TOT":1,"TOTAL_REVENUE_MOC_MTC":5,"AVG_DAILY_VSUBS":2,"AVG_DAILY_DSUBS":2}`+
		`]`, got)
}

func TestTabulate_NullDimension(t *testing.T) {
	records := []chunking.Record{
		{Date: day(2025, 1, 31), Metrics: metrics("1", "1", "1", "1"), Dimensions: map[string]string{"INCHARGE_NAME": "SARA"}},
	}

	got := runDefinition(t, "fo-day-chunk", "2025-01-31", 1, 1, records)
	assert.Contains(t, got, `"FIELD_OFFICER_NAME":null,"INCHARGE_NAME":"SARA"`)
}
