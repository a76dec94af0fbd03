package datasource

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/futureskit/pkg/models"
)

// chainFetchConcurrency bounds parallel vendor requests during a chain
// prefetch; vendors throttle aggressively above this.
const chainFetchConcurrency = 4

// LoadChainData fetches the price table for every contract in parallel and
// returns a copy of the list with Data populated. A fetch failure for one
// contract is logged and leaves that contract without data; only context
// cancellation aborts the whole load.
func LoadChainData(ctx context.Context, source FuturesDataSource, contracts []models.Contract) ([]models.Contract, error) {
	loaded := make([]models.Contract, len(contracts))
	copy(loaded, contracts)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(chainFetchConcurrency)

	for i := range loaded {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if loaded[i].Data != nil {
				return nil
			}
			table, err := source.ContractData(ctx, loaded[i])
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("datasource: %s: no data for %s: %v", source.Name(), loaded[i], err)
				return nil
			}
			loaded[i].Data = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}
