package symbology

import (
	"testing"
	"time"

	"github.com/seenimoa/futureskit/internal/notation"
)

func parse(s string) notation.ParsedSymbol {
	p := notation.NewParserAt(func() time.Time {
		return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	})
	return p.Parse(s)
}

// ════════════════════════════════════════════════════════════════════
// Vendor Formats
// ════════════════════════════════════════════════════════════════════

func TestToCME(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BRN_2026F", "@BRN26F"},
		{"CL_2024Z", "@CL24Z"},
		{"BRN.n.1", "@BRN"}, // front month has no index suffix
		{"CL.v.2", "@CL2"},
	}
	for _, tt := range tests {
		got, ok := ToCME(parse(tt.input))
		assertTrue(t, ok)
		assertEqual(t, tt.want, got)
	}
}

func TestToICE(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BRN_2026F", "BRN26F"},
		{"GASO_2025M", "GASO25M"},
		{"BRN.n.1", "BRN"},
		{"BRN.n.3", "BRNM3"},
	}
	for _, tt := range tests {
		got, ok := ToICE(parse(tt.input))
		assertTrue(t, ok)
		assertEqual(t, tt.want, got)
	}
}

func TestToBloomberg(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BRN_2026F", "COF6 Comdty"}, // Brent maps to CO
		{"CL_2024Z", "CLZ4 Comdty"},
		{"RB_2026H", "XBH6 Comdty"},
		{"XYZ_2026F", "XYZF6 Comdty"}, // unknown roots pass through
		{"BRN.n.1", "CO1 Comdty"},
		{"CL.n.3", "CL3 Comdty"},
	}
	for _, tt := range tests {
		got, ok := ToBloomberg(parse(tt.input))
		assertTrue(t, ok)
		assertEqual(t, tt.want, got)
	}
}

func TestToShortYear(t *testing.T) {
	got, ok := ToShortYear(parse("BRN_2026F"))
	assertTrue(t, ok)
	assertEqual(t, "BRN26F", got)

	// Century rollover pads with zero.
	got, ok = ToShortYear(parse("CL_2100M"))
	assertTrue(t, ok)
	assertEqual(t, "CL00M", got)
}

func TestToMarketplaceContinuous(t *testing.T) {
	got, ok := ToMarketplaceContinuous(parse("BRN.n.1"))
	assertTrue(t, ok)
	assertEqual(t, "BRN_001_MONTH", got)

	got, ok = ToMarketplaceContinuous(parse("CL.v.12"))
	assertTrue(t, ok)
	assertEqual(t, "CL_012_MONTH", got)

	_, ok = ToMarketplaceContinuous(parse("BRN_2026F"))
	assertEqual(t, false, ok)
}

func TestToTradingView(t *testing.T) {
	vendors := VendorMap{
		"tradingview_symbol":   "BRN",
		"tradingview_exchange": "ICEEUR",
	}

	got, ok := ToTradingView(parse("BRN_2026F"), vendors)
	assertTrue(t, ok)
	assertEqual(t, "ICEEUR:BRNF26", got)

	got, ok = ToTradingView(parse("BRN.n.1"), vendors)
	assertTrue(t, ok)
	assertEqual(t, "ICEEUR:BRN1!", got)

	// Without a vendor map the root is used bare, no feed prefix.
	got, ok = ToTradingView(parse("CL_2024Z"), nil)
	assertTrue(t, ok)
	assertEqual(t, "CLZ24", got)
}

func TestToRefinitiv(t *testing.T) {
	vendors := VendorMap{"refinitiv_symbol": "LCO"}

	got, ok := ToRefinitiv(parse("BRN_2026H"), vendors)
	assertTrue(t, ok)
	assertEqual(t, "LCOH6", got)

	got, ok = ToRefinitiv(parse("BRN.n.2"), vendors)
	assertTrue(t, ok)
	assertEqual(t, "LCOc2", got)

	got, ok = ToRefinitiv(parse("CL_2024Z"), nil)
	assertTrue(t, ok)
	assertEqual(t, "CLZ4", got)
}

// ════════════════════════════════════════════════════════════════════
// Missing Components and Dispatch
// ════════════════════════════════════════════════════════════════════

func TestMissingComponents(t *testing.T) {
	empty := parse("")
	_, ok := ToCME(empty)
	assertEqual(t, false, ok)
	_, ok = ToICE(empty)
	assertEqual(t, false, ok)
	_, ok = ToBloomberg(empty)
	assertEqual(t, false, ok)

	// Root and year but no month: nothing to convert.
	partial := notation.ParsedSymbol{Root: "BRN", Year: 2026}
	_, ok = ToCME(partial)
	assertEqual(t, false, ok)
	_, ok = ToShortYear(partial)
	assertEqual(t, false, ok)
	_, ok = ToTradingView(partial, nil)
	assertEqual(t, false, ok)
	_, ok = ToRefinitiv(partial, nil)
	assertEqual(t, false, ok)
}

func TestFeedConventions(t *testing.T) {
	assertEqual(t, "@CL26F", AddCMEPrefix("CL26F"))
	assertEqual(t, "BRN26F.L", AddICESuffix("BRN26F"))
}

func TestConvertDispatch(t *testing.T) {
	p := parse("BRN_2026F")

	tests := []struct {
		format string
		want   string
	}{
		{"canonical", "BRN_2026F"},
		{"cme", "@BRN26F"},
		{"ice", "BRN26F"},
		{"bloomberg", "COF6 Comdty"},
		{"short_year", "BRN26F"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, ok := Convert(p, tt.format, nil)
			assertTrue(t, ok)
			assertEqual(t, tt.want, got)
		})
	}

	_, ok := Convert(p, "nonsense", nil)
	assertEqual(t, false, ok)
}

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func assertEqual[T comparable](t *testing.T, want, got T) {
	t.Helper()
	if want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func assertTrue(t *testing.T, v bool) {
	t.Helper()
	if !v {
		t.Error("expected true, got false")
	}
}
