package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chunkdash/internal/shared/testutil"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	db, dsn := testutil.NewSQLiteDB(t)
	testutil.SeedVoice(t, db,
		testutil.FactRow{Date: testutil.Day(2025, 1, 31), Revenue: 50, DataRev: 10, VSubs: 100, DSubs: 40},
		testutil.FactRow{Date: testutil.Day(2025, 1, 30), Revenue: 50, DataRev: 5, VSubs: 0, DSubs: 20},
	)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("database:\n  driver: sqlite\n  dsn: %q\nlogging:\n  level: error\n", dsn)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_CSVToStdout(t *testing.T) {
	cfgFile := writeConfig(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"-config", cfgFile,
		"-report", "day-chunk",
		"-anchor", "31-JAN-25",
		"-width", "7",
		"-count", "1",
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Equal(t,
		"\ufeffCHUNK_NO,START_DATE,END_DATE,TOTAL_REVENUE_MOC_MTC,DATA_REV_TOT,AVG_UNIQUE_VSUBS,AVG_UNIQUE_DSUBS,PRESENT_DAYS\n"+
			"1,25-JAN-25,31-JAN-25,100,15,50,30,2\n",
		stdout.String())
}

func TestRun_AllToWorkbook(t *testing.T) {
	cfgFile := writeConfig(t)
	out := filepath.Join(t.TempDir(), "reports.xlsx")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"-config", cfgFile,
		"-all",
		"-anchor", "2025-01-31",
		"-month", "202501",
		"-count", "2",
		"-out", out,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Empty(t, stdout.String())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{"day-chunk", "month-chunk", "fo-day-chunk", "fo-month-chunk"}, f.GetSheetList())

	rows, err := f.GetRows("day-chunk")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CHUNK_NO", rows[0][0])
}

func TestRun_Errors(t *testing.T) {
	cfgFile := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{"-config", cfgFile, "-format", "pdf", "-anchor", "2025-01-31"}},
		{name: "unknown report", args: []string{"-config", cfgFile, "-report", "weekly", "-anchor", "2025-01-31"}},
		{name: "missing anchor", args: []string{"-config", cfgFile}},
		{name: "bad config", args: []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Error(t, err)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-h"}, &stdout, &stderr)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, stderr.String(), "-report")
}
