// Command fill fills a local ODT template offline and writes the exports.
// Usage:
//
//	fill -template invoice.odt -data data.json [-tables-xlsx rows.xlsx] [-format PDF+OPENOFFICE] [-out ./output]
//
// data.json holds writer_placeholders, writer_variables, writer_images and
// writer_tables. Every sheet of -tables-xlsx becomes a table fill named after
// the sheet, replacing a table of the same name from data.json.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/config"
	"albayan/internal/domain"
	"albayan/internal/engine/odf"
	"albayan/internal/engine/soffice"
	"albayan/internal/fill"
	"albayan/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	templatePath := flag.String("template", "", "path of the .odt template (required)")
	dataPath := flag.String("data", "", "path of the report data JSON, - for stdin")
	xlsxPath := flag.String("tables-xlsx", "", "workbook whose sheets become table fills")
	format := flag.String("format", string(domain.OutputOpenOffice), "PDF, OPENOFFICE or PDF+OPENOFFICE")
	outDir := flag.String("out", ".", "output directory")
	jobID := flag.String("id", "", "job id used to name the exports (default: random)")
	converterBin := flag.String("converter", soffice.DefaultBinary, "headless office binary used for PDF export")
	timeout := flag.Duration("timeout", 2*time.Minute, "conversion timeout")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *templatePath == "" {
		flag.Usage()
		return errors.New("-template is required")
	}

	zlog, err := logger.New(config.LogConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	outputFormat, err := domain.ParseOutputFormat(*format)
	if err != nil {
		return err
	}

	req, err := loadRequest(*dataPath)
	if err != nil {
		return err
	}
	if *xlsxPath != "" {
		tables, err := readTablesWorkbook(*xlsxPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *xlsxPath, err)
		}
		req.Tables = mergeTables(req.Tables, tables)
		zlog.Info("tables loaded from workbook", zap.String("path", *xlsxPath), zap.Int("tables", len(tables)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	converter := soffice.NewConverter(*converterBin, *timeout, zlog)
	if needsConverter(outputFormat) {
		if err := converter.Probe(ctx); err != nil {
			return err
		}
	}

	doc, err := odf.NewEngine(converter, zlog).Open(ctx, *templatePath)
	if err != nil {
		return fmt.Errorf("opening template: %w", err)
	}

	id := *jobID
	if id == "" {
		id = uuid.NewString()
	}
	scratch, err := os.MkdirTemp("", "albayan-fill-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	outcome := fill.NewOrchestrator(fill.DefaultFilters(), zlog).Run(ctx, doc, fill.Job{
		ID:         id,
		Request:    req,
		Formats:    outputFormat.ExportFormats(),
		OutputDir:  *outDir,
		ScratchDir: scratch,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return err
	}
	if !outcome.Success {
		return fmt.Errorf("fill failed: %s", outcome.Error)
	}
	return nil
}

func loadRequest(path string) (*domain.FillRequest, error) {
	if path == "" {
		return &domain.FillRequest{}, nil
	}
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading report data: %w", err)
	}
	return domain.ParseFillRequest(raw)
}

// mergeTables replaces fills in base with same-named fills from override
// and appends the rest.
func mergeTables(base, override []domain.TableFill) []domain.TableFill {
	out := make([]domain.TableFill, 0, len(base)+len(override))
	replaced := make(map[string]bool, len(override))
	for _, t := range override {
		replaced[t.TableName] = true
	}
	for _, t := range base {
		if !replaced[t.TableName] {
			out = append(out, t)
		}
	}
	return append(out, override...)
}

// needsConverter reports whether any requested export leaves the native format.
func needsConverter(f domain.OutputFormat) bool {
	for _, ef := range f.ExportFormats() {
		if ef != domain.ExportNative {
			return true
		}
	}
	return false
}
