// Package futures is the high-level object layer: a Future represents one
// product line (e.g. CL for WTI crude) and acts as a factory for specific
// contracts and continuous series over a data source.
package futures

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/futureskit/internal/continuous"
	"github.com/seenimoa/futureskit/internal/notation"
	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/models"
)

// ChainSource is the data capability a Future consumes: the list of listed
// contracts for a root and the dated price table for one contract.
type ChainSource interface {
	ContractChain(ctx context.Context, root string) ([]models.Contract, error)
	ContractData(ctx context.Context, c models.Contract) (*models.PriceTable, error)
}

// Configuration errors for continuous-series shorthand. These are caller
// mistakes and fail hard, unlike symbol-parse anomalies which only warn.
var (
	ErrInvalidNotation = errors.New("invalid continuous notation")
	ErrDepthNotInteger = errors.New("contract depth must be an integer")
	ErrInvalidRollRule = errors.New("invalid roll rule")
)

// ════════════════════════════════════════════════════════════════════
// Future
// ════════════════════════════════════════════════════════════════════

// Future is a futures product line bound to a data source. The contract
// chain is loaded once at construction.
type Future struct {
	Root     string
	Exchange string
	Vendors  symbology.VendorMap

	source ChainSource
	chain  *models.Chain
	parser *notation.Parser
}

// New creates a Future for the given root and loads its contract chain.
// A chain-load failure is logged and leaves an empty chain; it is not
// fatal because view-only sources legitimately have no chain.
func New(ctx context.Context, root string, source ChainSource, exchange string, vendors symbology.VendorMap) *Future {
	f := &Future{
		Root:     strings.ToUpper(root),
		Exchange: exchange,
		Vendors:  vendors,
		source:   source,
		parser:   notation.NewParser(),
	}
	contracts, err := source.ContractChain(ctx, f.Root)
	if err != nil {
		log.Printf("futures: could not load contract chain for %s: %v", f.Root, err)
	}
	f.chain = models.NewChain(f.Root, contracts, exchange)
	return f
}

// Chain returns the delivery-ordered contract chain.
func (f *Future) Chain() *models.Chain { return f.chain }

// Contract returns the chain entry for (year, monthCode).
func (f *Future) Contract(year int, monthCode string) (models.Contract, bool) {
	return f.chain.Get(year, monthCode)
}

// ContractByCode resolves short notation relative to this root: "H26"
// means the March 2026 contract.
func (f *Future) ContractByCode(code string) (models.Contract, bool) {
	parsed := f.parser.Parse(f.Root + code)
	if parsed.Year == 0 || parsed.Month == "" {
		return models.Contract{}, false
	}
	return f.Contract(parsed.Year, parsed.Month)
}

func (f *Future) String() string {
	return fmt.Sprintf("Future(%s, contracts=%d)", f.Root, f.chain.Len())
}

// ════════════════════════════════════════════════════════════════════
// ContinuousFuture
// ════════════════════════════════════════════════════════════════════

// ContinuousFuture is a rule-defined continuous series over one Future.
// Depth is held 1-based internally (1 = front month).
type ContinuousFuture struct {
	Rule   continuous.RollRule
	Offset int
	Depth  int
	Adjust continuous.AdjustmentMethod

	future *Future
}

// Option adjusts continuous-series construction.
type Option func(*ContinuousFuture)

// WithRoll sets the roll rule.
func WithRoll(rule continuous.RollRule) Option {
	return func(c *ContinuousFuture) { c.Rule = rule }
}

// WithOffset sets the signed day offset applied to roll dates.
func WithOffset(days int) Option {
	return func(c *ContinuousFuture) { c.Offset = days }
}

// WithAdjust sets the price-adjustment method.
func WithAdjust(method continuous.AdjustmentMethod) Option {
	return func(c *ContinuousFuture) { c.Adjust = method }
}

// WithDepth sets the chain position as a 0-based offset from the front
// month, matching how callers count "contracts out".
func WithDepth(position int) Option {
	return func(c *ContinuousFuture) { c.Depth = position + 1 }
}

// Continuous creates a continuous series over this Future. The shorthand
// spec is "rule.depth" (e.g. "n.1", depth 1-based); an empty spec uses the
// options alone. Defaults: calendar roll, offset -5, back adjustment,
// front month. When both are given, the shorthand wins over the options.
func (f *Future) Continuous(spec string, opts ...Option) (*ContinuousFuture, error) {
	c := &ContinuousFuture{
		Rule:   continuous.RollCalendar,
		Offset: -5,
		Depth:  1,
		Adjust: continuous.AdjustBack,
		future: f,
	}
	for _, opt := range opts {
		opt(c)
	}
	if spec != "" {
		rule, depth, err := ParseContinuousSpec(spec)
		if err != nil {
			return nil, err
		}
		c.Rule = rule
		c.Depth = depth
	}
	if c.Depth < 1 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidNotation, c.Depth)
	}
	return c, nil
}

// ParseContinuousSpec parses "rule.depth" shorthand ("n.1"). The depth is
// 1-based. Malformed shorthand is a hard error: this is configuration,
// not symbol data.
func ParseContinuousSpec(spec string) (continuous.RollRule, int, error) {
	parts := strings.Split(spec, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q (want rule.depth, e.g. \"n.1\")", ErrInvalidNotation, spec)
	}
	if !continuous.KnownRollRule(parts[0]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRollRule, parts[0])
	}
	depth, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrDepthNotInteger, parts[1])
	}
	return continuous.ParseRollRule(parts[0]), depth, nil
}

// String renders the series in continuous notation with the 0-based
// public depth.
func (c *ContinuousFuture) String() string {
	return fmt.Sprintf("ContinuousFuture(%s, roll=%s, depth=%d)", c.future.Root, c.Rule, c.Depth-1)
}

// Symbol renders the series in canonical dot notation (e.g. CL.c.1).
func (c *ContinuousFuture) Symbol() string {
	token := "c"
	for t, rule := range map[string]continuous.RollRule{
		"n": continuous.RollOpenInterest, "v": continuous.RollVolume,
		"c": continuous.RollCalendar, "fn": continuous.RollFirstNotice,
		"lt": continuous.RollLastTrading,
	} {
		if rule == c.Rule {
			token = t
			break
		}
	}
	return fmt.Sprintf("%s.%s.%d", c.future.Root, token, c.Depth)
}

// ActiveContract returns the contract backing this series as of a date.
func (c *ContinuousFuture) ActiveContract(asOf time.Time) (models.Contract, bool) {
	schedule := c.builder().BuildRollSchedule(time.Time{}, asOf.AddDate(1, 0, 0))
	if active, ok := schedule.ActiveContract(asOf); ok {
		return active, true
	}
	return c.future.chain.Nth(c.Depth, asOf)
}

// Schedule builds the roll schedule over the given date range.
func (c *ContinuousFuture) Schedule(start, end time.Time) continuous.RollSchedule {
	return c.builder().BuildRollSchedule(start, end)
}

// Series loads contract data as needed and builds the stitched series for
// one field. A zero end defaults to today, a zero start to five years
// before the end.
func (c *ContinuousFuture) Series(ctx context.Context, field string, start, end time.Time) (models.Series, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(-5, 0, 0)
	}

	contracts := c.future.chain.Contracts
	loaded := make([]models.Contract, len(contracts))
	for i, contract := range contracts {
		loaded[i] = contract
		if contract.Data != nil {
			continue
		}
		table, err := c.future.source.ContractData(ctx, contract)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("futures: no data for %s: %v", contract, err)
			continue
		}
		loaded[i].Data = table
	}

	builder := continuous.NewBuilder(loaded, c.Rule, c.Offset, c.Depth, c.Adjust)
	return builder.BuildSeries(field, start, end), nil
}

func (c *ContinuousFuture) builder() *continuous.Builder {
	return continuous.NewBuilder(c.future.chain.Contracts, c.Rule, c.Offset, c.Depth, c.Adjust)
}

// ════════════════════════════════════════════════════════════════════
// Notation Entry Point
// ════════════════════════════════════════════════════════════════════

// FromNotation resolves any symbol string into the object layer: regular
// symbols yield a Future (continuous nil); continuous notation yields both
// the Future and the configured ContinuousFuture.
func FromNotation(ctx context.Context, symbol string, source ChainSource, vendors symbology.VendorMap) (*Future, *ContinuousFuture, error) {
	parsed := notation.Parse(symbol)
	if parsed.Root == "" {
		return nil, nil, fmt.Errorf("%w: %q has no root symbol", ErrInvalidNotation, symbol)
	}

	future := New(ctx, parsed.Root, source, "", vendors)
	if !parsed.Continuous {
		return future, nil, nil
	}

	cont, err := future.Continuous(fmt.Sprintf("%s.%d", parsed.RollRule, parsed.ContractIndex))
	if err != nil {
		return nil, nil, err
	}
	return future, cont, nil
}
