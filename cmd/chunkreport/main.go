package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chunkdash/internal/app"
	"chunkdash/internal/config"
	"chunkdash/internal/exporter"
	"chunkdash/internal/infrastructure"
	"chunkdash/internal/services"
	api "chunkdash/pkg/contracts/api/v1"
	"chunkdash/pkg/contracts/domain"
)

type options struct {
	configFile string
	report     string
	anchor     string
	month      string
	width      int
	count      int
	monthWidth int
	format     string
	out        string
	all        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("chunkreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.report, "report", "day-chunk", "report name, see GET /api/reports")
	fs.StringVar(&opts.anchor, "anchor", "", "anchor date of day reports (YYYY-MM-DD or DD-MON-RR)")
	fs.StringVar(&opts.month, "month", "", "anchor month of month reports (YYYYMM)")
	fs.IntVar(&opts.width, "width", 7, "days per chunk")
	fs.IntVar(&opts.count, "count", 4, "number of chunks")
	fs.IntVar(&opts.monthWidth, "month-width", 1, "months per chunk")
	fs.StringVar(&opts.format, "format", "csv", "output format: csv, tsv, xlsx or json")
	fs.StringVar(&opts.out, "out", "-", "output file, - for stdout")
	fs.BoolVar(&opts.all, "all", false, "run every report into one workbook")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.all {
		format = domain.ExportFormatExcel
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	logger := infrastructure.NewLoggerWithWriter(cfg.Logging, stderr)

	svc, err := app.NewServices(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	params := api.ReportParams{
		BaseDate:    api.TextParam(opts.anchor),
		ChunkDays:   api.IntParam(opts.width),
		NumChunks:   api.IntParam(opts.count),
		BaseMonth:   api.TextParam(opts.month),
		ChunkMonths: api.IntParam(opts.count),
		MonthWidth:  api.IntParam(opts.monthWidth),
	}

	names := []string{opts.report}
	if opts.all {
		names = svc.Catalog.Names()
	}
	reqs := make([]services.ReportRequest, len(names))
	for i, name := range names {
		reqs[i] = services.ReportRequest{Report: name, Params: params}
	}

	results, err := svc.Reports.RunAll(ctx, reqs)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(opts.out, stdout)
	if err != nil {
		return err
	}

	if err := write(w, format, results); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close %s: %w", opts.out, err)
	}

	for _, res := range results {
		logger.InfoContext(ctx, "report written",
			slog.String("report", res.Report),
			slog.Int("rows", res.Count),
			slog.String("out", opts.out),
		)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// write emits one result in format, or every result as one sheet each
func write(w io.Writer, format domain.ExportFormat, results []*domain.ReportResult) error {
	if len(results) == 1 {
		res := results[0]
		return exporter.Write(w, format, res.Rows, exporter.Options{Headers: res.Columns, SheetName: res.Report})
	}

	sheets := make([]exporter.Sheet, len(results))
	for i, res := range results {
		sheets[i] = exporter.Sheet{Name: res.Report, Headers: res.Columns, Rows: res.Rows}
	}
	return exporter.WriteExcel(w, sheets...)
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
