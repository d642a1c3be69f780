package coerce

import (
	"context"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/pkg/contracts/domain"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"plain integer", "1234", 1234, true},
		{"thousands separator", "1,234", 1234, true},
		{"won currency", "₩5,000", 5000, true},
		{"dollar currency", "$ 1,200.50", 1200.50, true},
		{"euro currency", "€99", 99, true},
		{"parenthesis negative", "(1,200)", -1200, true},
		{"percent", "12.5%", 0.125, true},
		{"negative plain", "-42.5", -42.5, true},
		{"scientific notation", "1.5e3", 1500, true},
		{"sentinel n/a", "N/A", 0, false},
		{"sentinel null", "null", 0, false},
		{"sentinel dash", "-", 0, false},
		{"sentinel empty", "  ", 0, false},
		{"garbage", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNumeric(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseNumeric_RoundTrip(t *testing.T) {
	for _, input := range []string{"1200", "-3500", "0.125", "42.75"} {
		val, ok := parseNumeric(input)
		require.True(t, ok, input)

		again, ok := parseNumeric(strconv.FormatFloat(val, 'g', -1, 64))
		require.True(t, ok, input)
		assert.InDelta(t, val, again, 1e-12)
	}
}

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dayFirst bool
		want     time.Time
		wantOK   bool
	}{
		{"iso date", "2026-01-01", false, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"dotted date", "2026.03.05", false, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"slash month first", "01/02/2026", false, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"slash day first", "01/02/2026", true, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"day first unambiguous", "31/12/2025", true, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"long form", "Jan 2, 2006", false, time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"invalid", "invalid-date", false, time.Time{}, false},
		{"sentinel", "n/a", false, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDatetime(tt.input, tt.dayFirst)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"yes", "Y", "TRUE", " t ", "1", "on"}
	falsy := []string{"no", "N", "FALSE", " f ", "0", "off"}

	for _, s := range truthy {
		v, ok := parseBool(s)
		assert.True(t, ok, s)
		assert.True(t, v, s)
	}
	for _, s := range falsy {
		v, ok := parseBool(s)
		assert.True(t, ok, s)
		assert.False(t, v, s)
	}

	for _, s := range []string{"unknown", "2", "", "n/a"} {
		_, ok := parseBool(s)
		assert.False(t, ok, s)
	}
}

func demoTable(t *testing.T) *domain.Table {
	t.Helper()
	return domain.MustNewTable(
		domain.NewTextColumn("order_id", []string{"A-001", "A-002", "A-003", "A-004"}, nil),
		domain.NewTextColumn("amount", []string{"₩1,200", "(3,500)", "12.5%", "N/A"}, nil),
		domain.NewTextColumn("order_date", []string{"2026-01-01", "01/02/2026", "2026.03.05", "invalid-date"}, nil),
		domain.NewTextColumn("is_member", []string{"Y", "no", "1", "unknown"}, nil),
		domain.NewTextColumn("city", []string{"Seoul", "Seoul", "Busan", "VeryRareCity"}, nil),
	)
}

func TestEngine_Apply(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(slog.Default())
	table := demoTable(t)

	spec := Spec{
		NumericCols:     []string{"amount"},
		DatetimeCols:    []string{"order_date"},
		BoolCols:        []string{"is_member"},
		CategoryCols:    []string{"city"},
		CategoryMinFreq: 2,
	}

	fixed, report, err := engine.Apply(ctx, table, spec)
	require.NoError(t, err)

	// Input table untouched.
	amountBefore, _ := table.Column("amount")
	assert.Equal(t, domain.ColumnTypeText, amountBefore.Type())

	amount, ok := fixed.Column("amount")
	require.True(t, ok)
	assert.Equal(t, domain.ColumnTypeNumeric, amount.Type())

	wantAmounts := []float64{1200, -3500, 0.125}
	for i, want := range wantAmounts {
		got, present := amount.Float(i)
		require.True(t, present, "row %d", i)
		assert.InDelta(t, want, got, 1e-9)
	}
	assert.True(t, amount.IsAbsent(3))

	dates, ok := fixed.Column("order_date")
	require.True(t, ok)
	assert.Equal(t, domain.ColumnTypeDatetime, dates.Type())
	d0, _ := dates.Time(0)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), d0)
	d1, _ := dates.Time(1)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), d1)
	assert.True(t, dates.IsAbsent(3))

	member, ok := fixed.Column("is_member")
	require.True(t, ok)
	assert.Equal(t, domain.ColumnTypeBoolean, member.Type())
	b0, _ := member.Bool(0)
	assert.True(t, b0)
	b1, _ := member.Bool(1)
	assert.False(t, b1)
	assert.True(t, member.IsAbsent(3))

	city, ok := fixed.Column("city")
	require.True(t, ok)
	assert.Equal(t, domain.ColumnTypeCategorical, city.Type())
	wantCities := []string{"seoul", "seoul", "Other", "Other"}
	for i, want := range wantCities {
		got, present := city.StringVal(i)
		require.True(t, present)
		assert.Equal(t, want, got)
	}

	// One report row per requested column, failure rates at 0.25.
	require.Equal(t, 4, report.Len())
	for _, col := range []string{"amount", "order_date", "is_member"} {
		row := report.FindRow("column", col)
		require.GreaterOrEqual(t, row, 0, col)
		rate, _ := report.Cell(row, "parse_fail_rate")
		assert.Equal(t, "0.2500", rate, col)
	}
}

func TestEngine_Apply_MissingColumnIsWarning(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)
	table := demoTable(t)

	fixed, report, err := engine.Apply(ctx, table, Spec{
		NumericCols: []string{"amount", "no_such_col"},
	})
	require.NoError(t, err)

	amount, _ := fixed.Column("amount")
	assert.Equal(t, domain.ColumnTypeNumeric, amount.Type())

	row := report.FindRow("column", "no_such_col")
	require.GreaterOrEqual(t, row, 0)
	note, _ := report.Cell(row, "note")
	assert.Equal(t, "skip: column not found", note)
}

func TestEngine_Apply_FailRateIgnoresOriginallyAbsent(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	table := domain.MustNewTable(
		domain.NewTextColumn("amount", []string{"100", "", "bad", ""}, []bool{false, true, false, true}),
	)

	_, report, err := engine.Apply(ctx, table, Spec{NumericCols: []string{"amount"}})
	require.NoError(t, err)

	// Two present cells, one failed: rate is 0.5, not 0.25.
	rate, ok := report.Cell(0, "parse_fail_rate")
	require.True(t, ok)
	assert.Equal(t, "0.5000", rate)
}

func TestEngine_Apply_PreservesRowCount(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)
	table := demoTable(t)

	fixed, _, err := engine.Apply(ctx, table, Spec{
		NumericCols:  []string{"amount"},
		BoolCols:     []string{"is_member"},
		CategoryCols: []string{"city"},
	})
	require.NoError(t, err)
	assert.Equal(t, table.NumRows(), fixed.NumRows())
	for _, col := range fixed.Columns() {
		assert.Equal(t, fixed.NumRows(), col.Len())
	}
}
