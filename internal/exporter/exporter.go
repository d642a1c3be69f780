package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 output.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Exporter writes tables and reports under one base directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// New creates an exporter rooted at dir. A nil logger falls back to
// slog.Default.
func New(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, logger: logger}
}

// CSVOptions configures CSV output.
type CSVOptions struct {
	// BOMPrefix prepends a UTF-8 BOM for Excel compatibility.
	BOMPrefix bool

	// AbsentAs is the cell text for missing values. Empty string by
	// default, which round-trips as absent through most readers.
	AbsentAs string
}

// WriteTableCSV writes a table to <dir>/<name>, one header row then one
// record per table row, and returns the full path.
func (e *Exporter) WriteTableCSV(name string, table *domain.Table, opts CSVOptions) (string, error) {
	headers := table.ColumnNames()
	cols := table.Columns()

	records := make([][]string, table.NumRows())
	for i := range records {
		record := make([]string, len(cols))
		for j, col := range cols {
			if col.IsAbsent(i) {
				record[j] = opts.AbsentAs
			} else {
				record[j] = col.Value(i).String()
			}
		}
		records[i] = record
	}

	path, err := e.writeCSV(name, headers, records, opts.BOMPrefix)
	if err != nil {
		return "", err
	}
	e.logger.Info("table exported",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))
	return path, nil
}

// WriteReportCSV writes one report to <dir>/<name> with a BOM.
func (e *Exporter) WriteReportCSV(name string, report *domain.Report) (string, error) {
	path, err := e.writeCSV(name, report.Headers, report.Rows, true)
	if err != nil {
		return "", err
	}
	e.logger.Info("report exported",
		slog.String("path", path),
		slog.String("title", report.Title),
		slog.Int("rows", report.Len()))
	return path, nil
}

func (e *Exporter) writeCSV(name string, headers []string, records [][]string, bom bool) (string, error) {
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apperrors.NewStorageError("failed to create export directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewStorageError("failed to create file", err)
	}
	defer file.Close()

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			return "", apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return "", apperrors.NewStorageError("failed to write headers", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", apperrors.NewStorageError("failed to flush csv", err)
	}
	return path, nil
}

// Envelope is the JSON document wrapping a run's reports.
type Envelope struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Generator   string           `json:"generator"`
	RunID       string           `json:"run_id,omitempty"`
	Reports     []ReportDocument `json:"reports"`
	Extra       map[string]any   `json:"extra,omitempty"`
}

// ReportDocument is one report inside an envelope.
type ReportDocument struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// WriteReportsJSON writes every report of a run into one JSON envelope
// at <dir>/<name>. Extra carries run-scoped payloads such as fitted
// normalization parameters.
func (e *Exporter) WriteReportsJSON(name, runID string, reports []*domain.Report, extra map[string]any) (string, error) {
	env := Envelope{
		GeneratedAt: time.Now().UTC(),
		Generator:   "tabclean",
		RunID:       runID,
		Reports:     make([]ReportDocument, 0, len(reports)),
		Extra:       extra,
	}
	for _, r := range reports {
		env.Reports = append(env.Reports, ReportDocument{
			Title:   r.Title,
			Headers: r.Headers,
			Rows:    r.Rows,
		})
	}

	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apperrors.NewStorageError("failed to create export directory", err)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", apperrors.NewStorageError("failed to marshal envelope", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewStorageError("failed to write file", err)
	}

	e.logger.Info("report envelope exported",
		slog.String("path", path),
		slog.String("run_id", runID),
		slog.Int("reports", len(reports)))
	return path, nil
}
