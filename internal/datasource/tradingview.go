package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/models"
)

// TradingView is a view-only source: it generates chart URLs but cannot
// fetch data, since TradingView exposes no retrieval API. Feed mappings
// (e.g. BRN -> ICEEUR) come from the vendor map, not this source.
type TradingView struct {
	now func() time.Time
}

// NewTradingView creates the TradingView source.
func NewTradingView() *TradingView {
	return &TradingView{now: time.Now}
}

// Name returns the data source name.
func (t *TradingView) Name() string { return "TradingView" }

// ContractChain synthesizes the next 12 monthly contracts. TradingView has
// no chain endpoint; this keeps URL generation and chain browsing usable.
func (t *TradingView) ContractChain(_ context.Context, root string) ([]models.Contract, error) {
	contracts := make([]models.Contract, 0, 12)
	current := t.now().UTC()
	for i := 0; i < 12; i++ {
		month := current.AddDate(0, i, 0)
		contracts = append(contracts, models.Contract{
			Root:      root,
			Year:      month.Year(),
			MonthCode: models.CodeForMonth(month.Month()),
		})
	}
	return contracts, nil
}

// ContractData is not available: TradingView is view-only.
func (t *TradingView) ContractData(_ context.Context, _ models.Contract) (*models.PriceTable, error) {
	return nil, fmt.Errorf("tradingview is view-only: %w", ErrNotSupported)
}

// ContractURLs generates chart and overview URLs for one contract.
// TradingView contract symbols use the full 4-digit year (BRNH2026).
func (t *TradingView) ContractURLs(root string, year int, monthCode string, vendors symbology.VendorMap) map[string]string {
	tvRoot := root
	if v, ok := vendors["tradingview_symbol"]; ok && v != "" {
		tvRoot = v
	}
	feed := vendors["tradingview_exchange"]

	contractSymbol := fmt.Sprintf("%s%s%d", tvRoot, monthCode, year)
	chartSymbol := contractSymbol
	overviewSymbol := fmt.Sprintf("%s1!", tvRoot)
	if feed != "" {
		chartSymbol = feed + ":" + contractSymbol
		// Overview URLs use dash-joined feed with a contract parameter.
		overviewSymbol = fmt.Sprintf("%s-%s1!", feed, tvRoot)
	}

	return map[string]string{
		"tradingview":          "https://www.tradingview.com/chart/?symbol=" + chartSymbol,
		"tradingview_overview": fmt.Sprintf("https://www.tradingview.com/symbols/%s/?contract=%s", overviewSymbol, contractSymbol),
	}
}

// ContinuousURLs generates URLs for a continuous series (SYMBOL{N}! form).
func (t *TradingView) ContinuousURLs(root string, depth int, vendors symbology.VendorMap) map[string]string {
	tvRoot := root
	if v, ok := vendors["tradingview_symbol"]; ok && v != "" {
		tvRoot = v
	}
	feed := vendors["tradingview_exchange"]

	symbol := fmt.Sprintf("%s%d!", tvRoot, depth)
	if feed != "" {
		symbol = feed + ":" + symbol
	}
	return map[string]string{
		"tradingview":          "https://www.tradingview.com/chart/?symbol=" + symbol,
		"tradingview_overview": "https://www.tradingview.com/symbols/" + symbol,
	}
}
