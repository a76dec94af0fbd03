package datasource

import (
	"testing"
	"time"

	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/models"
)

const yahooChartFixture = `{
  "chart": {
    "result": [
      {
        "meta": {"symbol": "CLF26.NYM", "currency": "USD", "regularMarketPrice": 72.4},
        "timestamp": [1767312000, 1767398400, 1767484800],
        "indicators": {
          "quote": [
            {
              "open":   [71.0, 71.5, null],
              "high":   [72.0, 72.5, 73.0],
              "low":    [70.5, 71.0, 71.5],
              "close":  [71.8, 72.1, null],
              "volume": [120000, 130000, null]
            }
          ]
        }
      }
    ],
    "error": null
  }
}`

func TestParseYahooChart(t *testing.T) {
	table, err := parseYahooChart([]byte(yahooChartFixture))
	if err != nil {
		t.Fatalf("parseYahooChart failed: %v", err)
	}

	// The third bar has no close and is dropped.
	if table.Len() != 2 {
		t.Fatalf("got %d rows, want 2", table.Len())
	}

	closes, ok := table.Column("close")
	if !ok {
		t.Fatal("close column missing")
	}
	if closes[0].Value != 71.8 || closes[1].Value != 72.1 {
		t.Fatalf("unexpected closes: %v", closes)
	}

	// Dates are truncated to midnight UTC.
	if !closes[0].Date.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first date: %v", closes[0].Date)
	}
}

func TestParseYahooChartErrors(t *testing.T) {
	apiError := `{"chart": {"result": [], "error": {"code": "Not Found", "description": "No data found"}}}`
	if _, err := parseYahooChart([]byte(apiError)); err == nil {
		t.Fatal("expected error from API error payload")
	}

	empty := `{"chart": {"result": [], "error": null}}`
	if _, err := parseYahooChart([]byte(empty)); err == nil {
		t.Fatal("expected ErrSymbolNotFound for empty result")
	}
}

func TestYahooContractSymbol(t *testing.T) {
	y := NewYahoo(symbology.VendorMap{"yahoo_suffix": "NYM"})
	got := y.contractSymbol(models.Contract{Root: "CL", Year: 2026, MonthCode: "F"})
	if got != "CLF26.NYM" {
		t.Fatalf("got %q, want CLF26.NYM", got)
	}

	// Root override plus no suffix.
	y = NewYahoo(symbology.VendorMap{"yahoo_symbol": "BZ"})
	got = y.contractSymbol(models.Contract{Root: "BRN", Year: 2030, MonthCode: "H"})
	if got != "BZH30" {
		t.Fatalf("got %q, want BZH30", got)
	}
}
