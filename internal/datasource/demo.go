package datasource

import (
	"context"
	"math"
	"time"

	"github.com/seenimoa/futureskit/pkg/models"
	"github.com/seenimoa/futureskit/pkg/utils"
)

// Demo serves a deterministic synthetic market: a fixed 12-month chain per
// root and smooth daily settlement curves. It needs no network and always
// returns the same values, which makes it the source for examples and the
// CLI's offline mode.
type Demo struct {
	base      time.Time
	basePrice float64
}

// NewDemo creates a demo source anchored at the given base date; contracts
// run 12 months forward from it. A zero base anchors at today.
func NewDemo(base time.Time, basePrice float64) *Demo {
	if base.IsZero() {
		base = time.Now().UTC()
	}
	if basePrice == 0 {
		basePrice = 75.0
	}
	return &Demo{base: utils.DateOnly(base), basePrice: basePrice}
}

// Name returns the data source name.
func (d *Demo) Name() string { return "Demo" }

// ContractChain returns 12 monthly contracts starting at the base date,
// each expiring on the 25th of its delivery month.
func (d *Demo) ContractChain(_ context.Context, root string) ([]models.Contract, error) {
	contracts := make([]models.Contract, 0, 12)
	for i := 0; i < 12; i++ {
		month := d.base.AddDate(0, i, 0)
		contracts = append(contracts, models.Contract{
			Root:       root,
			Year:       month.Year(),
			MonthCode:  models.CodeForMonth(month.Month()),
			ExpiryDate: time.Date(month.Year(), month.Month(), 25, 0, 0, 0, 0, time.UTC),
			Metadata: map[string]string{
				"contract_size": "1000",
				"unit":          "barrels",
			},
		})
	}
	return contracts, nil
}

// ContractData generates 180 daily rows ending at the contract's expiry:
// a gentle sine wave around the base price, shifted upward per month of
// contango. Values depend only on the contract identity.
func (d *Demo) ContractData(_ context.Context, c models.Contract) (*models.PriceTable, error) {
	table := models.NewPriceTable("settlement", "volume", "open_interest")

	expiry := c.ExpiryDate
	if expiry.IsZero() {
		expiry = time.Date(c.Year, time.Month(c.MonthNum()), 25, 0, 0, 0, 0, time.UTC)
	}
	level := d.basePrice + 0.5*float64(c.MonthNum())

	start := expiry.AddDate(0, 0, -179)
	for i := 0; i < 180; i++ {
		date := start.AddDate(0, 0, i)
		wave := 2.0 * math.Sin(float64(i)/12.0)
		settlement := level + wave
		volume := 10000 + 50*float64(i)
		openInterest := 40000 - 100*float64(i)
		table.Append(date, settlement, volume, openInterest)
	}
	return table, nil
}
