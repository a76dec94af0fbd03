package datasource

import (
	"testing"

	"github.com/seenimoa/futureskit/internal/symbology"
)

func TestTradingViewContractURLs(t *testing.T) {
	tv := NewTradingView()
	vendors := symbology.VendorMap{
		"tradingview_symbol":   "BRN",
		"tradingview_exchange": "ICEEUR",
	}

	urls := tv.ContractURLs("BRN", 2026, "H", vendors)
	want := "https://www.tradingview.com/chart/?symbol=ICEEUR:BRNH2026"
	if urls["tradingview"] != want {
		t.Fatalf("got %q, want %q", urls["tradingview"], want)
	}
	wantOverview := "https://www.tradingview.com/symbols/ICEEUR-BRN1!/?contract=BRNH2026"
	if urls["tradingview_overview"] != wantOverview {
		t.Fatalf("got %q, want %q", urls["tradingview_overview"], wantOverview)
	}
}

func TestTradingViewContractURLsNoFeed(t *testing.T) {
	tv := NewTradingView()
	urls := tv.ContractURLs("CL", 2026, "F", nil)
	want := "https://www.tradingview.com/chart/?symbol=CLF2026"
	if urls["tradingview"] != want {
		t.Fatalf("got %q, want %q", urls["tradingview"], want)
	}
}

func TestTradingViewContinuousURLs(t *testing.T) {
	tv := NewTradingView()
	vendors := symbology.VendorMap{"tradingview_exchange": "NYMEX"}

	urls := tv.ContinuousURLs("CL", 1, vendors)
	want := "https://www.tradingview.com/chart/?symbol=NYMEX:CL1!"
	if urls["tradingview"] != want {
		t.Fatalf("got %q, want %q", urls["tradingview"], want)
	}
}

func TestRefinitivContractURLs(t *testing.T) {
	r := NewRefinitiv()
	vendors := symbology.VendorMap{"refinitiv_symbol": "LCO"}

	urls := r.ContractURLs("BRN", 2026, "H", vendors)
	want := "https://workspace.refinitiv.com/web/Apps/QuoteWebApi?symbol=LCOH6"
	if urls["refinitiv"] != want {
		t.Fatalf("got %q, want %q", urls["refinitiv"], want)
	}
}

func TestRefinitivContinuousURLs(t *testing.T) {
	r := NewRefinitivWithBaseURL("https://example.test")

	urls := r.ContinuousURLs("BRN", 2, symbology.VendorMap{"refinitiv_symbol": "LCO"})
	want := "https://example.test/web/Apps/NewFinancialChart/?s=LCOc2"
	if urls["refinitiv"] != want {
		t.Fatalf("got %q, want %q", urls["refinitiv"], want)
	}
}

func TestViewOnlySourcesRejectData(t *testing.T) {
	tv := NewTradingView()
	if _, err := tv.ContractData(nil, contractFixture()); err == nil {
		t.Fatal("expected ErrNotSupported from TradingView")
	}

	r := NewRefinitiv()
	if _, err := r.ContractData(nil, contractFixture()); err == nil {
		t.Fatal("expected ErrNotSupported from Refinitiv")
	}
}
