package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/models"
	"github.com/seenimoa/futureskit/pkg/utils"
)

// Yahoo fetches futures price data from the Yahoo Finance chart API.
// Contract symbols follow Yahoo's convention of short-year code plus an
// exchange suffix, e.g. CLF26.NYM; the suffix comes from the vendor map.
type Yahoo struct {
	vendors symbology.VendorMap
	cache   *Cache
	limiter *RateLimiter
	now     func() time.Time
}

// NewYahoo creates a Yahoo Finance source. The vendor map may carry
// yahoo_symbol (root override) and yahoo_suffix (exchange suffix, e.g.
// "NYM" for NYMEX energy contracts).
func NewYahoo(vendors symbology.VendorMap) *Yahoo {
	return &Yahoo{
		vendors: vendors,
		cache:   NewCache(15 * time.Minute),
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
		now:     time.Now,
	}
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart API types ---

type yhChartResponse struct {
	Chart struct {
		Result []yhChartResult `json:"result"`
		Error  *yhError        `json:"error"`
	} `json:"chart"`
}

type yhChartResult struct {
	Meta       yhChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yhIndicators `json:"indicators"`
}

type yhChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yhIndicators struct {
	Quote []yhOHLCV `json:"quote"`
}

type yhOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yhError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// ContractChain synthesizes the next 12 monthly contracts. Yahoo has no
// listing endpoint; which of these actually trade depends on the product.
func (y *Yahoo) ContractChain(_ context.Context, root string) ([]models.Contract, error) {
	contracts := make([]models.Contract, 0, 12)
	current := y.now().UTC()
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

// ContractData fetches daily bars for one contract and returns them as a
// price table with open/high/low/close/volume columns.
func (y *Yahoo) ContractData(ctx context.Context, c models.Contract) (*models.PriceTable, error) {
	symbol := y.contractSymbol(c)

	cacheKey := "chart:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.PriceTable), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Daily bars over the two years leading into delivery.
	to := utils.DateOnly(c.DeliveryDate()).AddDate(0, 1, 0)
	from := to.AddDate(-2, 0, 0)
	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		symbol, from.Unix(), to.Unix(),
	)

	body, _, err := doGet(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	table, err := parseYahooChart(data)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	y.cache.Set(cacheKey, table)
	return table, nil
}

// contractSymbol builds the Yahoo symbol for a contract: short-year form
// plus exchange suffix, e.g. CLF26.NYM.
func (y *Yahoo) contractSymbol(c models.Contract) string {
	root := c.Root
	if v, ok := y.vendors["yahoo_symbol"]; ok && v != "" {
		root = v
	}
	symbol := fmt.Sprintf("%s%s%02d", root, c.MonthCode, c.Year%100)
	if suffix, ok := y.vendors["yahoo_suffix"]; ok && suffix != "" {
		symbol += "." + suffix
	}
	return symbol
}

// parseYahooChart converts a v8 chart API response into a price table.
// Rows with no close are dropped; other missing cells become NaN.
func parseYahooChart(data []byte) (*models.PriceTable, error) {
	var resp yhChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse chart response: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo API error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrSymbolNotFound
	}

	result := resp.Chart.Result[0]
	table := models.NewPriceTable("open", "high", "low", "close", "volume")
	if len(result.Indicators.Quote) == 0 {
		return table, nil
	}

	q := result.Indicators.Quote[0]
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		date := utils.DateOnly(time.Unix(ts, 0).UTC())
		values := make([]float64, 5)
		values[3] = *q.Close[i]
		values[0], values[1], values[2], values[4] = values[3], values[3], values[3], 0
		if i < len(q.Open) && q.Open[i] != nil {
			values[0] = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			values[1] = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			values[2] = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			values[4] = float64(*q.Volume[i])
		}
		table.Append(date, values...)
	}
	return table, nil
}
