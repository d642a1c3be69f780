package domain

import (
	"fmt"
	"strings"
)

// Report is an ordered table of per-column outcomes produced as a side
// artifact of a cleaning operation. Reports surface what happened to
// each requested column (processed, skipped, failed) for human
// inspection and tests; downstream engines never consume them.
type Report struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewReport creates an empty report with the given title and headers.
func NewReport(title string, headers ...string) *Report {
	return &Report{Title: title, Headers: headers}
}

// AddRow appends a row of rendered cells. Short rows are padded so every
// row matches the header width.
func (r *Report) AddRow(cells ...string) {
	for len(cells) < len(r.Headers) {
		cells = append(cells, "")
	}
	r.Rows = append(r.Rows, cells)
}

// Len returns the number of rows.
func (r *Report) Len() int { return len(r.Rows) }

// Cell returns the value at the given row under the named header.
func (r *Report) Cell(row int, header string) (string, bool) {
	for i, h := range r.Headers {
		if h == header {
			if row < 0 || row >= len(r.Rows) || i >= len(r.Rows[row]) {
				return "", false
			}
			return r.Rows[row][i], true
		}
	}
	return "", false
}

// FindRow returns the index of the first row whose cell under the named
// header equals value, or -1.
func (r *Report) FindRow(header, value string) int {
	for i := range r.Rows {
		if v, ok := r.Cell(i, header); ok && v == value {
			return i
		}
	}
	return -1
}

// String renders the report as aligned plain text for logs and demos.
func (r *Report) String() string {
	widths := make([]int, len(r.Headers))
	for i, h := range r.Headers {
		widths[i] = len(h)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var b strings.Builder
	if r.Title != "" {
		fmt.Fprintf(&b, "=== %s ===\n", r.Title)
	}
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteString("\n")
	}
	writeRow(r.Headers)
	for _, row := range r.Rows {
		writeRow(row)
	}
	return b.String()
}
