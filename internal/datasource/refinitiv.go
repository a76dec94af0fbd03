package datasource

import (
	"context"
	"fmt"

	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/models"
)

// DefaultRefinitivBaseURL is the Workspace endpoint URLs are built against.
const DefaultRefinitivBaseURL = "https://workspace.refinitiv.com"

// Refinitiv generates Workspace deep links. Data retrieval needs API
// entitlements this source does not have, so the fetch methods report
// ErrNotSupported. RIC mappings (e.g. BRN -> LCO) come from the vendor map.
type Refinitiv struct {
	baseURL string
}

// NewRefinitiv creates a Refinitiv source against the default Workspace URL.
func NewRefinitiv() *Refinitiv {
	return &Refinitiv{baseURL: DefaultRefinitivBaseURL}
}

// NewRefinitivWithBaseURL creates a Refinitiv source against a custom
// Workspace deployment.
func NewRefinitivWithBaseURL(baseURL string) *Refinitiv {
	if baseURL == "" {
		baseURL = DefaultRefinitivBaseURL
	}
	return &Refinitiv{baseURL: baseURL}
}

// Name returns the data source name.
func (r *Refinitiv) Name() string { return "Refinitiv" }

// ContractChain is unavailable without API entitlements.
func (r *Refinitiv) ContractChain(_ context.Context, _ string) ([]models.Contract, error) {
	return nil, fmt.Errorf("refinitiv chain retrieval requires API access: %w", ErrNotSupported)
}

// ContractData is unavailable without API entitlements.
func (r *Refinitiv) ContractData(_ context.Context, _ models.Contract) (*models.PriceTable, error) {
	return nil, fmt.Errorf("refinitiv data retrieval requires API access: %w", ErrNotSupported)
}

// ContractURLs generates Workspace quote and chart links for one contract.
// Refinitiv contract RICs use a single-digit year (LCOH6).
func (r *Refinitiv) ContractURLs(root string, year int, monthCode string, vendors symbology.VendorMap) map[string]string {
	ric := root
	if v, ok := vendors["refinitiv_symbol"]; ok && v != "" {
		ric = v
	}
	symbol := fmt.Sprintf("%s%s%d", ric, monthCode, year%10)
	return map[string]string{
		"refinitiv":       fmt.Sprintf("%s/web/Apps/QuoteWebApi?symbol=%s", r.baseURL, symbol),
		"refinitiv_chart": fmt.Sprintf("%s/web/Apps/NewFinancialChart/?s=%s", r.baseURL, symbol),
	}
}

// ContinuousURLs generates Workspace links for a continuous RIC (LCOc1).
func (r *Refinitiv) ContinuousURLs(root string, depth int, vendors symbology.VendorMap) map[string]string {
	ric := root
	if v, ok := vendors["refinitiv_symbol"]; ok && v != "" {
		ric = v
	}
	symbol := fmt.Sprintf("%sc%d", ric, depth)
	return map[string]string{
		"refinitiv":       fmt.Sprintf("%s/web/Apps/NewFinancialChart/?s=%s", r.baseURL, symbol),
		"refinitiv_quote": fmt.Sprintf("%s/web/Apps/QuoteWebApi?symbol=%s", r.baseURL, symbol),
	}
}
