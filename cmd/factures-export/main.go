// Command factures-export writes invoice exports outside the API: a period
// as CSV or as a spreadsheet tab, or one invoice as PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"factures/internal/backend"
	"factures/internal/cache"
	"factures/internal/cli"
	"factures/internal/config"
	"factures/internal/core"
	"factures/internal/export"
	"factures/internal/log"
	"factures/internal/services"
	"factures/internal/storage"
)

type options struct {
	format    string
	from      string
	to        string
	invoiceID int64
	outDir    string
	sheet     string
}

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentExport)

	var opts options
	flag.StringVar(&opts.format, "format", "csv", "export format: csv, sheets or pdf")
	flag.StringVar(&opts.from, "from", "", "first issue date, YYYY-MM-DD (csv, sheets)")
	flag.StringVar(&opts.to, "to", "", "last issue date, YYYY-MM-DD (csv, sheets)")
	flag.Int64Var(&opts.invoiceID, "invoice", 0, "invoice id (pdf)")
	flag.StringVar(&opts.outDir, "out", cfg.ExportDir, "output directory (csv, pdf)")
	flag.StringVar(&opts.sheet, "sheet", cfg.GoogleSheetName, "spreadsheet tab (sheets)")
	flag.Parse()

	repo := cli.InitSQLite(logger, cfg.DBPath)
	defer repo.Close()

	ctx := context.Background()
	path, err := run(ctx, cfg, repo, opts)
	if err != nil {
		logger.Error("Export failed", log.FieldError, err, "format", opts.format)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("Export written", "format", opts.format, "target", path)
}

func run(ctx context.Context, cfg *config.Config, repo *storage.SQLiteRepository, opts options) (string, error) {
	reports := services.NewReportService(repo, cache.Noop[any]{}, nil)

	switch opts.format {
	case "csv":
		from, to, err := parsePeriod(opts)
		if err != nil {
			return "", err
		}
		rows, err := reports.ExportRows(ctx, from, to)
		if err != nil {
			return "", err
		}
		return writeFile(opts.outDir, export.FileName(from, to, "csv"), func(f *os.File) error {
			return export.WriteCSV(f, rows)
		})

	case "sheets":
		backendCfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return "", err
		}
		writer, err := backend.OpenRowWriter(ctx, backendCfg)
		if err != nil {
			return "", err
		}
		from, to, err := parsePeriod(opts)
		if err != nil {
			return "", err
		}
		rows, err := reports.ExportRows(ctx, from, to)
		if err != nil {
			return "", err
		}
		if err := writer.WriteRows(ctx, opts.sheet, export.SheetValues(rows)); err != nil {
			return "", err
		}
		return opts.sheet, nil

	case "pdf":
		if opts.invoiceID <= 0 {
			return "", fmt.Errorf("-invoice is required for pdf exports")
		}
		inv, err := services.NewInvoiceService(repo, nil, reports, nil).GetInvoice(ctx, opts.invoiceID)
		if err != nil {
			return "", err
		}
		company, err := services.NewCompanyService(repo, nil).Get(ctx)
		if err != nil {
			return "", err
		}
		return writeFile(opts.outDir, export.InvoiceFileName(inv.Number), func(f *os.File) error {
			return export.RenderInvoicePDF(f, company, inv)
		})
	}
	return "", fmt.Errorf("unknown format %q", opts.format)
}

func parsePeriod(opts options) (core.Date, core.Date, error) {
	from, err := core.ParseDate(opts.from)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	to, err := core.ParseDate(opts.to)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	if from.IsZero() || to.IsZero() {
		return core.Date{}, core.Date{}, fmt.Errorf("-from and -to are required")
	}
	return from, to, nil
}

func writeFile(dir, name string, write func(*os.File) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
