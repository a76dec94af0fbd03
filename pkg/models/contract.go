// Package models defines the core data structures shared across futureskit:
// contracts, contract chains, price series and dated field tables.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Contract identifies a single futures contract (e.g., CLH26) and carries
// whatever data the datasource supplied for it. Metadata and price data are
// provided fully formed at construction and never mutated afterwards.
type Contract struct {
	Root      string `json:"root"`       // commodity root, e.g. "CL"
	Year      int    `json:"year"`       // 4-digit contract year
	MonthCode string `json:"month_code"` // delivery month letter, e.g. "H"
	Exchange  string `json:"exchange,omitempty"`

	// Optional lifecycle dates (zero when the source does not supply them).
	FirstTradeDate time.Time `json:"first_trade_date,omitzero"`
	LastTradeDate  time.Time `json:"last_trade_date,omitzero"`
	ExpiryDate     time.Time `json:"expiry_date,omitzero"`

	// Metadata holds source-supplied contract specs (contract size, unit...).
	Metadata map[string]string `json:"metadata,omitempty"`

	// Data holds the dated price/volume fields for this contract, when loaded.
	Data *PriceTable `json:"-"`
}

// FieldNotFoundError is returned by Contract.Field when a requested field is
// present neither in the price-data columns nor in the metadata.
type FieldNotFoundError struct {
	Symbol string
	Field  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in futures data for %s", e.Field, e.Symbol)
}

// MonthNum returns the delivery month number (1-12), or 0 for an invalid
// month code.
func (c Contract) MonthNum() int {
	return MonthCodes[strings.ToUpper(c.MonthCode)]
}

// DeliveryDate is the first calendar day of the delivery month. Contracts
// are ordered by this date.
func (c Contract) DeliveryDate() time.Time {
	m := c.MonthNum()
	if m == 0 {
		m = 1
	}
	return time.Date(c.Year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

// Canonical renders the contract in ROOT_YYYYM form (e.g., "CL_2026H").
func (c Contract) Canonical() string {
	return fmt.Sprintf("%s_%d%s", c.Root, c.Year, c.MonthCode)
}

// ShortYear renders the contract in ROOTYYM form (e.g., "CLH6" → "CL26H").
func (c Contract) ShortYear() string {
	return fmt.Sprintf("%s%02d%s", c.Root, c.Year%100, c.MonthCode)
}

// Equal reports identity by the (root, year, month) triple.
func (c Contract) Equal(o Contract) bool {
	return c.Root == o.Root && c.Year == o.Year && c.MonthCode == o.MonthCode
}

// Before orders contracts by delivery date.
func (c Contract) Before(o Contract) bool {
	return c.DeliveryDate().Before(o.DeliveryDate())
}

func (c Contract) String() string { return c.Canonical() }

// Field looks up a named field on this contract: price-data columns first
// (returning the column as a Series), then construction-time metadata.
// A miss returns *FieldNotFoundError.
func (c Contract) Field(name string) (any, error) {
	if c.Data != nil {
		if col, ok := c.Data.Resolve(name); ok {
			series, _ := c.Data.Column(col)
			return series, nil
		}
	}
	if v, ok := c.Metadata[name]; ok {
		return v, nil
	}
	return nil, &FieldNotFoundError{Symbol: c.Canonical(), Field: name}
}

// Chain is the ordered set of contracts for one root symbol, sorted by
// delivery date ascending.
type Chain struct {
	Root      string     `json:"root"`
	Exchange  string     `json:"exchange,omitempty"`
	Contracts []Contract `json:"contracts"`
}

// NewChain builds a chain, sorting the contracts by delivery date.
func NewChain(root string, contracts []Contract, exchange string) *Chain {
	sorted := make([]Contract, len(contracts))
	copy(sorted, contracts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})
	return &Chain{Root: root, Exchange: exchange, Contracts: sorted}
}

// Len returns the number of contracts in the chain.
func (ch *Chain) Len() int { return len(ch.Contracts) }

// Get returns the contract for (year, monthCode), case-insensitive on the
// month letter.
func (ch *Chain) Get(year int, monthCode string) (Contract, bool) {
	monthCode = strings.ToUpper(monthCode)
	for _, c := range ch.Contracts {
		if c.Year == year && c.MonthCode == monthCode {
			return c, true
		}
	}
	return Contract{}, false
}

// FrontMonth returns the nearest contract delivering on or after asOf.
func (ch *Chain) FrontMonth(asOf time.Time) (Contract, bool) {
	return ch.Nth(1, asOf)
}

// Nth returns the n-th contract (1-based) delivering on or after asOf.
func (ch *Chain) Nth(n int, asOf time.Time) (Contract, bool) {
	if n < 1 {
		return Contract{}, false
	}
	count := 0
	for _, c := range ch.Contracts {
		if c.DeliveryDate().Before(asOf) {
			continue
		}
		count++
		if count == n {
			return c, true
		}
	}
	return Contract{}, false
}
