package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// Fact tables used by the report catalog
const (
	VoiceTable        = "voice_data_details_final_2"
	FieldOfficerTable = "ZONE_SALES_T_FIELD_OFFICER_DAY_REV"
)

const factColumns = `
	DATE_VALUE DATE,
	MONTH_KEY INTEGER,
	TOTAL_REVENUE_MOC_MTC NUMERIC,
	DATA_REV_TOT NUMERIC,
	UNIQUE_VSUBS NUMERIC,
	UNIQUE_DSUBS NUMERIC`

// FactRow is one daily fact row. Nil metric or name fields are stored as NULL.
// MonthKey defaults to the YYYYMM of Date.
type FactRow struct {
	Date     time.Time
	MonthKey int
	Revenue  any
	DataRev  any
	VSubs    any
	DSubs    any
	Officer  any
	Incharge any
}

// NewSQLiteDB opens a file-backed SQLite database in a temp dir with both fact
// tables created. The database is closed when the test ends.
func NewSQLiteDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "chunkdash.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (%s)", VoiceTable, factColumns),
		fmt.Sprintf("CREATE TABLE %s (%s,\n\tFIELD_OFFICER_NAME TEXT,\n\tINCHARGE_NAME TEXT)", FieldOfficerTable, factColumns),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db, dsn
}

// SeedVoice inserts rows into the network-wide fact table
func SeedVoice(t *testing.T, db *sql.DB, rows ...FactRow) {
	t.Helper()
	for _, r := range rows {
		_, err := db.Exec(
			"INSERT INTO "+VoiceTable+" (DATE_VALUE, MONTH_KEY, TOTAL_REVENUE_MOC_MTC, DATA_REV_TOT, UNIQUE_VSUBS, UNIQUE_DSUBS) VALUES (?, ?, ?, ?, ?, ?)",
			dateArg(r.Date), r.monthKey(), r.Revenue, r.DataRev, r.VSubs, r.DSubs,
		)
		if err != nil {
			t.Fatalf("seed %s: %v", VoiceTable, err)
		}
	}
}

// SeedFieldOfficer inserts rows into the per-officer fact table
func SeedFieldOfficer(t *testing.T, db *sql.DB, rows ...FactRow) {
	t.Helper()
	for _, r := range rows {
		_, err := db.Exec(
			"INSERT INTO "+FieldOfficerTable+" (DATE_VALUE, MONTH_KEY, TOTAL_REVENUE_MOC_MTC, DATA_REV_TOT, UNIQUE_VSUBS, UNIQUE_DSUBS, FIELD_OFFICER_NAME, INCHARGE_NAME) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			dateArg(r.Date), r.monthKey(), r.Revenue, r.DataRev, r.VSubs, r.DSubs, r.Officer, r.Incharge,
		)
		if err != nil {
			t.Fatalf("seed %s: %v", FieldOfficerTable, err)
		}
	}
}

// Day returns UTC midnight of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (r FactRow) monthKey() any {
	if r.MonthKey != 0 {
		return r.MonthKey
	}
	if r.Date.IsZero() {
		return nil
	}
	return r.Date.Year()*100 + int(r.Date.Month())
}

func dateArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}
