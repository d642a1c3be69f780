// Package ingest reads raw tabular files into domain tables. Every
// column arrives as text; the coercion engine decides types afterward.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses CSV into a table of text columns. The first record is
// the header row. Empty cells are recorded as absent; everything else,
// sentinels included, is left for the coercion engine to interpret.
func ReadCSV(r io.Reader) (*domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read input", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse csv", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("csv has no header row", nil)
	}

	headers := records[0]
	rows := records[1:]
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, want %d", i+1, len(row), len(headers)), nil)
		}
	}

	cols := make([]domain.Column, len(headers))
	for j, name := range headers {
		values := make([]string, len(rows))
		absent := make([]bool, len(rows))
		for i, row := range rows {
			values[i] = row[j]
			absent[i] = row[j] == ""
		}
		cols[j] = domain.NewTextColumn(name, values, absent)
	}

	table, err := domain.NewTable(cols...)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid table shape", err)
	}
	return table, nil
}

// ReadCSVFile reads a CSV file from disk.
func ReadCSVFile(path string, logger *slog.Logger) (*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	table, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}
	logger.Info("csv loaded",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))
	return table, nil
}
