// Package symbology converts parsed futures symbols between vendor formats
// (CME, ICE, Bloomberg, TradingView, Refinitiv and marketplace variants).
//
// Every converter returns (symbol, ok); ok is false when the parsed symbol
// lacks the components the target format needs. Converters never guess at
// missing fields.
package symbology

import (
	"fmt"

	"github.com/seenimoa/futureskit/internal/notation"
)

// VendorMap carries vendor-specific symbol substitutions for one root, as
// supplied by configuration or the caller. Recognized keys:
//
//	tradingview_symbol    root override for TradingView (e.g. BRN)
//	tradingview_exchange  feed prefix for TradingView (e.g. ICEEUR)
//	refinitiv_symbol      RIC root for Refinitiv (e.g. BRN -> LCO)
type VendorMap map[string]string

func (m VendorMap) get(key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

// ════════════════════════════════════════════════════════════════════
// Feed Conventions
// ════════════════════════════════════════════════════════════════════

// Feed-specific decorations applied on top of a bare symbol.
const (
	CMEPrefix = "@"
	ICESuffix = ".L"
)

// AddCMEPrefix decorates a symbol with the CME feed prefix.
func AddCMEPrefix(symbol string) string { return CMEPrefix + symbol }

// AddICESuffix decorates a symbol with the ICE feed suffix.
func AddICESuffix(symbol string) string { return symbol + ICESuffix }

// bloombergRoots substitutes commodity roots for Bloomberg tickers.
// Unknown roots pass through unchanged.
var bloombergRoots = map[string]string{
	"BRN": "CO", // Brent
	"CL":  "CL", // WTI
	"NG":  "NG", // Natural Gas
	"HO":  "HO", // Heating Oil
	"RB":  "XB", // RBOB Gasoline
}

// ════════════════════════════════════════════════════════════════════
// Converters
// ════════════════════════════════════════════════════════════════════

// ToCME converts to CME format: BRN_2026F -> @BRN26F. Continuous front
// month is just the prefixed root (@BRN); deeper indexes append the index
// (@BRN2).
func ToCME(p notation.ParsedSymbol) (string, bool) {
	if p.Root == "" {
		return "", false
	}
	if p.Continuous {
		if p.ContractIndex == 1 {
			return AddCMEPrefix(p.Root), true
		}
		return AddCMEPrefix(fmt.Sprintf("%s%d", p.Root, p.ContractIndex)), true
	}
	if p.Year != 0 && p.Month != "" {
		return AddCMEPrefix(fmt.Sprintf("%s%02d%s", p.Root, p.Year%100, p.Month)), true
	}
	return "", false
}

// ToICE converts to ICE format: BRN_2026F -> BRN26F. Continuous front
// month is the bare root; deeper indexes use BRNM3.
func ToICE(p notation.ParsedSymbol) (string, bool) {
	if p.Root == "" {
		return "", false
	}
	if p.Continuous {
		if p.ContractIndex == 1 {
			return p.Root, true
		}
		return fmt.Sprintf("%sM%d", p.Root, p.ContractIndex), true
	}
	if p.Year != 0 && p.Month != "" {
		return fmt.Sprintf("%s%02d%s", p.Root, p.Year%100, p.Month), true
	}
	return "", false
}

// ToBloomberg converts to Bloomberg format with a single-digit year:
// BRN_2026F -> "COF6 Comdty", BRN.n.1 -> "CO1 Comdty".
func ToBloomberg(p notation.ParsedSymbol) (string, bool) {
	if p.Root == "" {
		return "", false
	}
	root := p.Root
	if bb, ok := bloombergRoots[root]; ok {
		root = bb
	}
	if p.Continuous {
		return fmt.Sprintf("%s%d Comdty", root, p.ContractIndex), true
	}
	if p.Year != 0 && p.Month != "" {
		return fmt.Sprintf("%s%s%d Comdty", root, p.Month, p.Year%10), true
	}
	return "", false
}

// ToShortYear converts to the 2-digit-year form: BRN_2026F -> BRN26F.
func ToShortYear(p notation.ParsedSymbol) (string, bool) {
	if p.Root == "" || p.Year == 0 || p.Month == "" {
		return "", false
	}
	return fmt.Sprintf("%s%02d%s", p.Root, p.Year%100, p.Month), true
}

// ToMarketplaceContinuous converts continuous notation to the marketplace
// form: BRN.n.1 -> BRN_001_MONTH. Regular contracts have no marketplace
// continuous form.
func ToMarketplaceContinuous(p notation.ParsedSymbol) (string, bool) {
	if !p.Continuous || p.ContractIndex == 0 {
		return "", false
	}
	return fmt.Sprintf("%s_%03d_MONTH", p.Root, p.ContractIndex), true
}

// ToTradingView converts to TradingView's symbol form. Regular contracts
// use root+month+2-digit year (BRNF26); continuous series use root+depth+!
// (BRN1!). The vendor map can substitute the root (tradingview_symbol) and
// prefix an exchange feed (tradingview_exchange), giving ICEEUR:BRNF26.
func ToTradingView(p notation.ParsedSymbol, vendors VendorMap) (string, bool) {
	if p.Root == "" {
		return "", false
	}
	root := vendors.get("tradingview_symbol", p.Root)
	feed := vendors.get("tradingview_exchange", "")

	var symbol string
	switch {
	case p.Continuous:
		symbol = fmt.Sprintf("%s%d!", root, p.ContractIndex)
	case p.Year != 0 && p.Month != "":
		symbol = fmt.Sprintf("%s%s%02d", root, p.Month, p.Year%100)
	default:
		return "", false
	}
	if feed != "" {
		symbol = feed + ":" + symbol
	}
	return symbol, true
}

// ToRefinitiv converts to Refinitiv's RIC form. Regular contracts use a
// single-digit year (LCOH6); continuous series use rootc+depth (LCOc1).
// The vendor map can substitute the RIC root (refinitiv_symbol).
func ToRefinitiv(p notation.ParsedSymbol, vendors VendorMap) (string, bool) {
	if p.Root == "" {
		return "", false
	}
	root := vendors.get("refinitiv_symbol", p.Root)

	if p.Continuous {
		return fmt.Sprintf("%sc%d", root, p.ContractIndex), true
	}
	if p.Year != 0 && p.Month != "" {
		return fmt.Sprintf("%s%s%d", root, p.Month, p.Year%10), true
	}
	return "", false
}

// Convert dispatches by format name, used by the CLI and HTTP API.
// Recognized names: cme, ice, bloomberg, short_year, marketplace,
// tradingview, refinitiv, canonical.
func Convert(p notation.ParsedSymbol, format string, vendors VendorMap) (string, bool) {
	switch format {
	case "cme":
		return ToCME(p)
	case "ice":
		return ToICE(p)
	case "bloomberg":
		return ToBloomberg(p)
	case "short_year":
		return ToShortYear(p)
	case "marketplace":
		return ToMarketplaceContinuous(p)
	case "tradingview":
		return ToTradingView(p, vendors)
	case "refinitiv":
		return ToRefinitiv(p, vendors)
	case "canonical":
		return p.String(), true
	}
	return "", false
}

// Formats lists the format names Convert understands.
func Formats() []string {
	return []string{"canonical", "cme", "ice", "bloomberg", "short_year", "marketplace", "tradingview", "refinitiv"}
}
