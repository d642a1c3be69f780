package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// WriteReportsXLSX writes a workbook at <dir>/<name> with one sheet per
// report, titled after the report.
func (e *Exporter) WriteReportsXLSX(name string, reports []*domain.Report) (string, error) {
	if len(reports) == 0 {
		return "", apperrors.NewValidationError("no reports to export")
	}

	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apperrors.NewStorageError("failed to create export directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, report := range reports {
		sheet := sheetName(report.Title, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return "", apperrors.NewStorageError("failed to rename sheet", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return "", apperrors.NewStorageError("failed to add sheet", err)
			}
		}
		if err := writeSheet(f, sheet, report); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", apperrors.NewStorageError("failed to save workbook", err)
	}

	e.logger.Info("workbook exported",
		slog.String("path", path),
		slog.Int("sheets", len(reports)))
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, report *domain.Report) error {
	headerRow := make([]interface{}, len(report.Headers))
	for i, h := range report.Headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return apperrors.NewStorageError("failed to write header row", err)
	}

	for i, row := range report.Rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("failed to compute cell name", err)
		}
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", i), err)
		}
	}
	return nil
}

// sheetName makes a report title safe as an Excel sheet name: the
// forbidden characters go, and names truncate to Excel's 31-char limit.
func sheetName(title string, index int) string {
	name := title
	for _, ch := range []string{":", "\\", "/", "?", "*", "[", "]"} {
		name = strings.ReplaceAll(name, ch, "_")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Report %d", index+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
