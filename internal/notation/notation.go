// Package notation parses futures symbol strings into a structured,
// canonical form.
//
// Canonical formats:
//   - Regular contract:  ROOT_YYYYM  (e.g., BRN_2026F)
//   - Continuous series: ROOT.rule.index  (e.g., BRN.n.1)
//   - Quarterly strip:   ROOT_YYYYQn  (e.g., BRN_2026Q1)
//   - Calendar strip:    ROOT_CALYYYY (e.g., BRN_CAL2026)
//
// Indexing for continuous series is 1-based (1 = front month).
//
// Parse never fails on malformed input: it returns a best-effort
// ParsedSymbol and records anomalies in Warnings. Hard errors are reserved
// for caller mistakes at configuration entry points elsewhere.
package notation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/futureskit/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Symbol Kinds and Roll Rules
// ════════════════════════════════════════════════════════════════════

// Kind classifies what a symbol string denotes.
type Kind int

const (
	KindMonthly    Kind = iota // a regular delivery-month contract
	KindContinuous             // a rule-defined continuous series
	KindQuarter                // a quarterly strip
	KindCalendar               // a calendar-year strip
)

var kindNames = map[Kind]string{
	KindMonthly:    "monthly",
	KindContinuous: "continuous",
	KindQuarter:    "quarter",
	KindCalendar:   "calendar",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// RollRuleNames maps recognized continuous-notation roll-rule tokens to
// their long names. Unknown tokens still parse, with a warning.
var RollRuleNames = map[string]string{
	"n":  "open_interest",
	"v":  "volume",
	"c":  "calendar",
	"fn": "first_notice",
	"lt": "last_trade",
}

// ════════════════════════════════════════════════════════════════════
// ParsedSymbol
// ════════════════════════════════════════════════════════════════════

// ParsedSymbol is the immutable result of parsing one symbol string.
// Zero values mean "absent": Year==0, Month=="", ContractIndex==0.
type ParsedSymbol struct {
	Root  string `json:"root"`            // commodity root, upper-case
	Year  int    `json:"year,omitempty"`  // 4-digit contract year
	Month string `json:"month,omitempty"` // month letter; kept even when invalid

	Continuous    bool   `json:"continuous"`               // true for ROOT.rule.index forms
	RollRule      string `json:"roll_rule,omitempty"`      // raw roll-rule token, lower-case
	ContractIndex int    `json:"contract_index,omitempty"` // 1-based depth

	Kind         Kind `json:"-"`
	Quarter      int  `json:"quarter,omitempty"`       // 1-4 for quarterly strips
	CalendarYear int  `json:"calendar_year,omitempty"` // for calendar strips

	Warnings []string `json:"warnings,omitempty"` // parse anomalies, empty on a clean parse
}

// String renders the symbol back in canonical form. Partial parses render
// whatever fields are populated; that form is lossy and not guaranteed to
// be parseable.
func (p ParsedSymbol) String() string {
	switch {
	case p.Continuous:
		return fmt.Sprintf("%s.%s.%d", p.Root, p.RollRule, p.ContractIndex)
	case p.Kind == KindQuarter:
		return fmt.Sprintf("%s_%dQ%d", p.Root, p.Year, p.Quarter)
	case p.Kind == KindCalendar:
		return fmt.Sprintf("%s_CAL%d", p.Root, p.CalendarYear)
	case p.Year != 0 && p.Month != "":
		return fmt.Sprintf("%s_%d%s", p.Root, p.Year, p.Month)
	}
	var b strings.Builder
	b.WriteString(p.Root)
	if p.Year != 0 {
		fmt.Fprintf(&b, "_%d", p.Year)
	}
	b.WriteString(p.Month)
	return b.String()
}

// IsValid reports whether the symbol is fully valid: a continuous symbol
// needs root, roll rule and a positive contract index; a regular contract
// needs root, year and a month letter from the canonical month-code set.
// A populated but invalid month code makes the symbol invalid even though
// the field is kept.
func (p ParsedSymbol) IsValid() bool {
	switch p.Kind {
	case KindContinuous:
		return p.Root != "" && p.RollRule != "" && p.ContractIndex >= 1
	case KindQuarter:
		return p.Root != "" && p.Year != 0 && p.Quarter >= 1 && p.Quarter <= 4
	case KindCalendar:
		return p.Root != "" && p.CalendarYear != 0
	default:
		return p.Root != "" && p.Year != 0 && p.Month != "" && models.IsMonthCode(p.Month)
	}
}

// ════════════════════════════════════════════════════════════════════
// Grammar
// ════════════════════════════════════════════════════════════════════

// Continuous pattern, matched after normalization (root upper, rule lower).
var reContinuous = regexp.MustCompile(`^([A-Z]+)\.([a-z]+)\.(\d+)$`)

// Regular-contract patterns, tried in order; first match wins.
var regularPatterns = []*regexp.Regexp{
	// Canonical: BRN_2026F
	regexp.MustCompile(`^([A-Z]+)_(\d{4})([FGHJKMNQUVXZ])$`),

	// Canonical shape with an invalid month letter: BRN_2026A.
	// Matched so it parses with a warning instead of degrading to the
	// partial fallback.
	regexp.MustCompile(`^([A-Z]+)_(\d{4})([A-Z])$`),

	// Short year: BRN26F or BRNF26
	regexp.MustCompile(`^([A-Z]+)(\d{2})([FGHJKMNQUVXZ])$`),
	regexp.MustCompile(`^([A-Z]+)([FGHJKMNQUVXZ])(\d{2})$`),

	// Separator variants: BRN-26F, BRN 26F, BRN-2026F
	regexp.MustCompile(`^([A-Z]+)[-\s](\d{2})([FGHJKMNQUVXZ])$`),
	regexp.MustCompile(`^([A-Z]+)[-\s](\d{4})([FGHJKMNQUVXZ])$`),
}

// Extended strip/marketplace patterns, tried after the regular ones.
var (
	reMarketplaceCont  = regexp.MustCompile(`^([A-Z]+)_M(\d{2,3})$`)      // BRN_M01
	reQuarterYearLast  = regexp.MustCompile(`^([A-Z]+)_Q([1-4])_(\d{4})$`) // BRN_Q3_2026
	reQuarterYearFirst = regexp.MustCompile(`^([A-Z]+)_(\d{4})Q([1-4])$`)  // BRN_2026Q1
	reCalendarStrip    = regexp.MustCompile(`^([A-Z]+)_CAL(\d{4})$`)       // BRN_CAL2026
)

// Partial-fallback helpers.
var (
	reTrailingBlock = regexp.MustCompile(`^(.+?)_(\d{4})([FGHJKMNQUVXZ]?)$`)
	reLeadingRoot   = regexp.MustCompile(`^([A-Z]+)`)
	reFourDigits    = regexp.MustCompile(`\d{4}`)
)

// monthSearchOrder fixes the order month letters are probed in the partial
// fallback, so results are deterministic.
const monthSearchOrder = "FGHJKMNQUVXZ"

// ════════════════════════════════════════════════════════════════════
// Parser
// ════════════════════════════════════════════════════════════════════

// Parser parses futures symbols. The zero value is not usable; create one
// with NewParser. The clock is injectable so the 2-digit-year window can be
// pinned in tests.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser using the system clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserAt creates a Parser with a fixed clock, used by tests to pin the
// 2-digit-year normalization window.
func NewParserAt(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// defaultParser backs the package-level convenience functions.
var defaultParser = NewParser()

// Parse parses a symbol with the default parser.
func Parse(symbol string) ParsedSymbol { return defaultParser.Parse(symbol) }

// IsFuturesSymbol reports whether a string looks like a futures symbol,
// using the default parser.
func IsFuturesSymbol(symbol string) bool { return defaultParser.IsFuturesSymbol(symbol) }

// Parse parses a futures symbol into its components. It never fails:
// malformed input produces a best-effort result with Warnings populated.
func (p *Parser) Parse(symbol string) ParsedSymbol {
	if symbol == "" {
		return ParsedSymbol{Root: "", Warnings: []string{"Empty symbol provided"}}
	}

	clean := strings.TrimSpace(symbol)

	// Continuous form first: exactly two dots splitting into three non-empty
	// parts. Root is upper-cased and the rule lower-cased before matching.
	if strings.Count(clean, ".") == 2 {
		parts := strings.Split(clean, ".")
		if parts[0] != "" && parts[1] != "" && parts[2] != "" {
			normalized := strings.ToUpper(parts[0]) + "." + strings.ToLower(parts[1]) + "." + parts[2]
			if m := reContinuous.FindStringSubmatch(normalized); m != nil {
				return p.parseContinuous(m)
			}
		}
	}

	// Everything else is case-insensitive: work on the upper-cased input.
	upper := strings.ToUpper(clean)

	for _, re := range regularPatterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return p.parseRegular(m)
		}
	}

	if m := reMarketplaceCont.FindStringSubmatch(upper); m != nil {
		index, _ := strconv.Atoi(m[2])
		ps := ParsedSymbol{
			Root:          m[1],
			Kind:          KindContinuous,
			Continuous:    true,
			RollRule:      "n",
			ContractIndex: index,
		}
		if index < 1 {
			ps.Warnings = append(ps.Warnings, fmt.Sprintf("Contract index should be 1-based, got: %d", index))
		}
		return ps
	}
	if m := reQuarterYearFirst.FindStringSubmatch(upper); m != nil {
		year, _ := strconv.Atoi(m[2])
		quarter, _ := strconv.Atoi(m[3])
		return ParsedSymbol{Root: m[1], Kind: KindQuarter, Year: year, Quarter: quarter}
	}
	if m := reQuarterYearLast.FindStringSubmatch(upper); m != nil {
		quarter, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return ParsedSymbol{Root: m[1], Kind: KindQuarter, Year: year, Quarter: quarter}
	}
	if m := reCalendarStrip.FindStringSubmatch(upper); m != nil {
		year, _ := strconv.Atoi(m[2])
		return ParsedSymbol{Root: m[1], Kind: KindCalendar, CalendarYear: year}
	}

	return p.partialParse(upper)
}

// IsFuturesSymbol reports whether the string parses to a valid regular
// contract or any continuous form. It never panics, even on pathological
// input.
func (p *Parser) IsFuturesSymbol(symbol string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	parsed := p.Parse(symbol)
	return parsed.IsValid() || parsed.Continuous
}

// ────────────────────────────────────────────────────────────────────
// Internal parse steps
// ────────────────────────────────────────────────────────────────────

func (p *Parser) parseContinuous(m []string) ParsedSymbol {
	rule := strings.ToLower(m[2])
	index, _ := strconv.Atoi(m[3])

	ps := ParsedSymbol{
		Root:          m[1],
		Kind:          KindContinuous,
		Continuous:    true,
		RollRule:      rule,
		ContractIndex: index,
	}
	if _, known := RollRuleNames[rule]; !known {
		ps.Warnings = append(ps.Warnings, fmt.Sprintf("Unknown roll rule: %s", rule))
	}
	if index < 1 {
		ps.Warnings = append(ps.Warnings, fmt.Sprintf("Contract index should be 1-based, got: %d", index))
	}
	return ps
}

func (p *Parser) parseRegular(m []string) ParsedSymbol {
	ps := ParsedSymbol{Root: m[1], Kind: KindMonthly}

	// Patterns capture either (year, month) or (month, year); detect by
	// which group is all digits.
	var yearStr string
	if isDigits(m[2]) {
		yearStr, ps.Month = m[2], m[3]
	} else {
		ps.Month, yearStr = m[2], m[3]
	}

	year, _ := strconv.Atoi(yearStr)
	ps.Year = p.normalizeYear(year)

	if !models.IsMonthCode(ps.Month) {
		ps.Warnings = append(ps.Warnings, fmt.Sprintf("Invalid month code: %s", ps.Month))
	}
	return ps
}

// normalizeYear expands a 2-digit year using a rolling 10-year-forward
// window: values more than ten years ahead of the current year's 2-digit
// remainder are taken to belong to the previous century. With the clock at
// 2024: 26 → 2026, 34 → 2034, 99 → 1999.
func (p *Parser) normalizeYear(year int) int {
	if year >= 100 {
		return year
	}
	current := p.now().Year()
	century := (current / 100) * 100
	if year > current%100+10 {
		return century - 100 + year
	}
	return century + year
}

// partialParse extracts what it can from a symbol no pattern matched.
// Root is whatever remains after stripping a trailing _YYYY[M] block when
// one exists (underscores and digits inside the root are kept), otherwise
// the longest leading run of letters, otherwise the whole string.
func (p *Parser) partialParse(symbol string) ParsedSymbol {
	ps := ParsedSymbol{
		Kind:     KindMonthly,
		Warnings: []string{fmt.Sprintf("Could not fully parse symbol: %s", symbol)},
	}

	if m := reTrailingBlock.FindStringSubmatch(symbol); m != nil {
		ps.Root = m[1]
	} else if m := reLeadingRoot.FindStringSubmatch(symbol); m != nil {
		ps.Root = m[1]
	} else {
		ps.Root = symbol
	}

	if m := reFourDigits.FindString(symbol); m != "" {
		ps.Year, _ = strconv.Atoi(m)
	}

	for _, code := range strings.Split(monthSearchOrder, "") {
		if strings.HasSuffix(symbol, code) ||
			strings.Contains(symbol, "_"+code) ||
			strings.Contains(symbol, " "+code) ||
			strings.Contains(symbol, "-"+code) {
			ps.Month = code
			break
		}
	}
	return ps
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
