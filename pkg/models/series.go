package models

import (
	"math"
	"sort"
	"strings"
	"time"
)

// PricePoint is a single dated observation in a price series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a dated sequence of values, kept in ascending date order.
type Series []PricePoint

// Sort orders the series by date ascending (stable for equal dates).
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// ValueOn returns the value recorded on the given date, if any.
func (s Series) ValueOn(date time.Time) (float64, bool) {
	for _, p := range s {
		if p.Date.Equal(date) {
			return p.Value, true
		}
	}
	return 0, false
}

// Between returns the sub-series with from < date <= to when strictFrom is
// true, or from <= date <= to otherwise.
func (s Series) Between(from, to time.Time, strictFrom bool) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if strictFrom && !p.Date.After(from) {
			continue
		}
		if !strictFrom && p.Date.Before(from) {
			continue
		}
		if p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PriceTable is a dated table of named numeric fields for one contract,
// the Go shape of what a vendor returns per contract (close, volume,
// open interest, settlement, ...). Missing cells are NaN.
type PriceTable struct {
	Columns []string
	Rows    []PriceRow
}

// PriceRow is one dated row; Values is aligned with PriceTable.Columns.
type PriceRow struct {
	Date   time.Time
	Values []float64
}

// NewPriceTable creates an empty table with the given column names.
func NewPriceTable(columns ...string) *PriceTable {
	return &PriceTable{Columns: columns}
}

// Append adds a row. Short value lists are padded with NaN.
func (t *PriceTable) Append(date time.Time, values ...float64) {
	row := PriceRow{Date: date, Values: make([]float64, len(t.Columns))}
	for i := range row.Values {
		if i < len(values) {
			row.Values[i] = values[i]
		} else {
			row.Values[i] = math.NaN()
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *PriceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// columnIndex returns the position of an exact column name.
func (t *PriceTable) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column extracts a named column as a Series, skipping NaN cells.
// The name must be an exact column name; use Resolve for fuzzy lookup.
func (t *PriceTable) Column(name string) (Series, bool) {
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make(Series, 0, len(t.Rows))
	for _, row := range t.Rows {
		v := row.Values[idx]
		if math.IsNaN(v) {
			continue
		}
		out = append(out, PricePoint{Date: row.Date, Value: v})
	}
	return out, true
}

// ValueOn returns the cell for (date, exact column name), if present and
// not NaN.
func (t *PriceTable) ValueOn(date time.Time, name string) (float64, bool) {
	idx := t.columnIndex(name)
	if idx < 0 {
		return 0, false
	}
	for _, row := range t.Rows {
		if row.Date.Equal(date) {
			if math.IsNaN(row.Values[idx]) {
				return 0, false
			}
			return row.Values[idx], true
		}
	}
	return 0, false
}

// fieldAliases maps common field names to vendor column fragments tried
// as substrings when nothing else matches.
var fieldAliases = map[string][]string{
	"settlement":    {"settle", "sett"},
	"close":         {"px_last", "last"},
	"volume":        {"vol"},
	"open_interest": {"oi", "openint"},
}

// Resolve finds the column for a requested field name. Resolution order:
// exact match, case-insensitive match, case-insensitive substring match,
// then the alias table tried as substrings. Returns false when the field
// is unavailable in this table.
func (t *PriceTable) Resolve(field string) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.columnIndex(field) >= 0 {
		return field, true
	}

	lower := strings.ToLower(field)
	for _, c := range t.Columns {
		if strings.ToLower(c) == lower {
			return c, true
		}
	}
	for _, c := range t.Columns {
		if strings.Contains(strings.ToLower(c), lower) {
			return c, true
		}
	}
	for _, alias := range fieldAliases[lower] {
		for _, c := range t.Columns {
			if strings.Contains(strings.ToLower(c), alias) {
				return c, true
			}
		}
	}
	return "", false
}
