// Package continuous builds continuous futures series by stitching discrete
// contracts together along a roll schedule, with optional price adjustment
// to remove roll gaps.
package continuous

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/futureskit/pkg/models"
	"github.com/seenimoa/futureskit/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Roll Rules and Adjustment Methods
// ════════════════════════════════════════════════════════════════════

// RollRule selects how the transition date between two contracts is chosen.
type RollRule int

const (
	RollCalendar     RollRule = iota // fixed days relative to expiry
	RollFirstNotice                  // first notice day
	RollLastTrading                  // last trading day
	RollVolume                       // volume crossover (degrades to calendar)
	RollOpenInterest                 // open-interest crossover (degrades to calendar)
)

var rollRuleNames = map[RollRule]string{
	RollCalendar:     "calendar",
	RollFirstNotice:  "first_notice",
	RollLastTrading:  "last_trading",
	RollVolume:       "volume",
	RollOpenInterest: "open_interest",
}

func (r RollRule) String() string { return rollRuleNames[r] }

// rollRuleAliases maps recognized tokens onto roll rules, case-insensitive.
var rollRuleAliases = map[string]RollRule{
	"c":             RollCalendar,
	"calendar":      RollCalendar,
	"f":             RollFirstNotice,
	"fn":            RollFirstNotice,
	"first_notice":  RollFirstNotice,
	"l":             RollLastTrading,
	"lt":            RollLastTrading,
	"last_trading":  RollLastTrading,
	"v":             RollVolume,
	"volume":        RollVolume,
	"o":             RollOpenInterest,
	"n":             RollOpenInterest,
	"oi":            RollOpenInterest,
	"open_interest": RollOpenInterest,
}

// ParseRollRule maps a token to a RollRule. Unrecognized tokens default to
// RollCalendar; the notation layer is where unknown tokens get warned.
func ParseRollRule(token string) RollRule {
	if rule, ok := rollRuleAliases[strings.ToLower(token)]; ok {
		return rule
	}
	return RollCalendar
}

// KnownRollRule reports whether a token maps to a recognized roll rule.
func KnownRollRule(token string) bool {
	_, ok := rollRuleAliases[strings.ToLower(token)]
	return ok
}

// AdjustmentMethod selects how historical prices are shifted at rolls.
// Only AdjustNone and AdjustBack are implemented; AdjustForward and
// AdjustProportional are accepted but behave as AdjustNone.
type AdjustmentMethod int

const (
	AdjustNone AdjustmentMethod = iota
	AdjustBack
	AdjustForward
	AdjustProportional
)

var adjustmentNames = map[AdjustmentMethod]string{
	AdjustNone:         "none",
	AdjustBack:         "back",
	AdjustForward:      "forward",
	AdjustProportional: "proportional",
}

func (a AdjustmentMethod) String() string { return adjustmentNames[a] }

// ParseAdjustment maps a token to an AdjustmentMethod, defaulting to
// AdjustNone for anything unrecognized.
func ParseAdjustment(token string) AdjustmentMethod {
	switch strings.ToLower(token) {
	case "back":
		return AdjustBack
	case "forward":
		return AdjustForward
	case "proportional":
		return AdjustProportional
	}
	return AdjustNone
}

// ════════════════════════════════════════════════════════════════════
// Roll Schedule
// ════════════════════════════════════════════════════════════════════

// RollDate is one transition event in a continuous series.
type RollDate struct {
	From models.Contract `json:"from"`
	To   models.Contract `json:"to"`
	Date time.Time       `json:"date"`
	Rule RollRule        `json:"-"`

	// Adjustment is the cumulative back-adjustment applied at this roll,
	// populated only when the series is built with AdjustBack.
	Adjustment float64 `json:"adjustment,omitempty"`
}

// RollSchedule is the ordered list of roll events between Start and End.
// Roll dates are non-decreasing by construction.
type RollSchedule struct {
	Rolls []RollDate `json:"rolls"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// ActiveContract returns the contract that is live as of the given date:
// the From contract of the first roll on or after it, or the final To
// contract once all rolls are past. An empty schedule has no answer.
func (s RollSchedule) ActiveContract(asOf time.Time) (models.Contract, bool) {
	for _, roll := range s.Rolls {
		if !asOf.After(roll.Date) {
			return roll.From, true
		}
	}
	if len(s.Rolls) > 0 {
		return s.Rolls[len(s.Rolls)-1].To, true
	}
	return models.Contract{}, false
}

// ════════════════════════════════════════════════════════════════════
// Roll-Date Strategies
// ════════════════════════════════════════════════════════════════════

// rollDateFunc computes the transition date from one contract to the next.
type rollDateFunc func(current, next models.Contract, offset int) time.Time

// calendarRollDate rolls relative to the current contract's expiry: the
// expiry date when known, else the last-trade date, else the last calendar
// day of the delivery month. A negative offset rolls earlier.
func calendarRollDate(current, _ models.Contract, offset int) time.Time {
	expiry := current.ExpiryDate
	if expiry.IsZero() {
		expiry = current.LastTradeDate
	}
	if expiry.IsZero() {
		expiry = utils.MonthEnd(current.DeliveryDate())
	}
	return utils.DateOnly(expiry).AddDate(0, 0, offset)
}

// rollStrategies is the closed rule-to-behavior table. Volume and open
// interest crossover detection is not implemented; both degrade to the
// calendar strategy and say so once at builder construction.
var rollStrategies = map[RollRule]rollDateFunc{
	RollCalendar:     calendarRollDate,
	RollFirstNotice:  calendarRollDate,
	RollLastTrading:  calendarRollDate,
	RollVolume:       calendarRollDate,
	RollOpenInterest: calendarRollDate,
}

// ════════════════════════════════════════════════════════════════════
// Builder
// ════════════════════════════════════════════════════════════════════

// Builder assembles roll schedules and stitched series from a contract
// list. It is configured once and safe for repeated builds.
type Builder struct {
	contracts []models.Contract
	rule      RollRule
	offset    int
	depth     int
	adjust    AdjustmentMethod

	rollDate rollDateFunc
	now      func() time.Time
}

// NewBuilder creates a builder over the given contracts. The contract list
// is copied and sorted by delivery date; depth is 1-based (1 = front
// month) and clamped to at least 1.
func NewBuilder(contracts []models.Contract, rule RollRule, offset, depth int, adjust AdjustmentMethod) *Builder {
	sorted := make([]models.Contract, len(contracts))
	copy(sorted, contracts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	if depth < 1 {
		depth = 1
	}
	if rule == RollVolume || rule == RollOpenInterest {
		log.Printf("continuous: %s roll detection not implemented, using calendar strategy", rule)
	}
	return &Builder{
		contracts: sorted,
		rule:      rule,
		offset:    offset,
		depth:     depth,
		adjust:    adjust,
		rollDate:  rollStrategies[rule],
		now:       time.Now,
	}
}

// Contracts returns the builder's delivery-ordered contract list.
func (b *Builder) Contracts() []models.Contract { return b.contracts }

// BuildRollSchedule computes the roll schedule for the configured depth.
// Zero start/end default to the earliest contract's first-trade (or
// delivery) date and today. N contracts at depth d yield N-d rolls.
func (b *Builder) BuildRollSchedule(start, end time.Time) RollSchedule {
	if len(b.contracts) == 0 {
		return RollSchedule{Start: start, End: end}
	}
	if start.IsZero() {
		start = b.earliestStart()
	}
	if end.IsZero() {
		end = utils.DateOnly(b.now())
	}

	schedule := RollSchedule{Start: start, End: end}
	for i := 0; i+b.depth < len(b.contracts); i++ {
		current := b.contracts[i+b.depth-1]
		next := b.contracts[i+b.depth]
		schedule.Rolls = append(schedule.Rolls, RollDate{
			From: current,
			To:   next,
			Date: b.rollDate(current, next, b.offset),
			Rule: b.rule,
		})
	}
	return schedule
}

func (b *Builder) earliestStart() time.Time {
	earliest := time.Time{}
	for _, c := range b.contracts {
		candidate := c.FirstTradeDate
		if candidate.IsZero() {
			candidate = c.DeliveryDate()
		}
		if earliest.IsZero() || candidate.Before(earliest) {
			earliest = candidate
		}
	}
	return earliest
}

// BuildSeries stitches the named field of each contract into one continuous
// series along the roll schedule, applying the configured adjustment.
// Contracts whose data or field is missing contribute nothing.
func (b *Builder) BuildSeries(field string, start, end time.Time) models.Series {
	schedule := b.BuildRollSchedule(start, end)
	series := b.stitch(schedule, field)

	if b.adjust == AdjustBack {
		adjustments := b.backAdjustments(&schedule)
		series = applyBackAdjustments(series, adjustments)
	}
	return series
}

// ────────────────────────────────────────────────────────────────────
// Stitching
// ────────────────────────────────────────────────────────────────────

// contractField resolves and extracts the named field from one contract's
// price table. Misses are logged and skipped, not fatal.
func contractField(c models.Contract, field string) (models.Series, bool) {
	if c.Data == nil {
		log.Printf("continuous: no data loaded for %s, skipping segment", c)
		return nil, false
	}
	col, ok := c.Data.Resolve(field)
	if !ok {
		log.Printf("continuous: field %q not found for %s, skipping segment", field, c)
		return nil, false
	}
	series, _ := c.Data.Column(col)
	return series, true
}

// stitch concatenates contract segments in chronological order: the first
// contract through the first roll date inclusive, then each incoming
// contract from the day after its roll date through the next roll date,
// the final one running to the schedule's end.
func (b *Builder) stitch(schedule RollSchedule, field string) models.Series {
	if len(schedule.Rolls) == 0 {
		// A single usable contract is its own continuous series.
		if len(b.contracts) >= b.depth {
			if seg, ok := contractField(b.contracts[b.depth-1], field); ok {
				out := seg.Between(schedule.Start, schedule.End, false)
				out.Sort()
				return out
			}
		}
		return models.Series{}
	}

	var out models.Series
	if seg, ok := contractField(schedule.Rolls[0].From, field); ok {
		out = append(out, seg.Between(schedule.Start, schedule.Rolls[0].Date, false)...)
	}
	for i, roll := range schedule.Rolls {
		seg, ok := contractField(roll.To, field)
		if !ok {
			continue
		}
		segEnd := schedule.End
		if i < len(schedule.Rolls)-1 {
			segEnd = schedule.Rolls[i+1].Date
		}
		out = append(out, seg.Between(roll.Date, segEnd, true)...)
	}
	out.Sort()
	return out
}

// ────────────────────────────────────────────────────────────────────
// Back Adjustment
// ────────────────────────────────────────────────────────────────────

// rollAdjustment is the cumulative price shift in force before one roll date.
type rollAdjustment struct {
	date  time.Time
	value float64
}

// resolvePriceColumn picks the column adjustments are computed from:
// the first column mentioning settlement, close or price.
func resolvePriceColumn(t *models.PriceTable) (string, bool) {
	for _, c := range t.Columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "settlement") ||
			strings.Contains(lower, "close") ||
			strings.Contains(lower, "price") {
			return c, true
		}
	}
	return "", false
}

func priceOn(c models.Contract, date time.Time) (float64, bool) {
	if c.Data == nil {
		return 0, false
	}
	col, ok := resolvePriceColumn(c.Data)
	if !ok {
		return 0, false
	}
	return c.Data.ValueOn(date, col)
}

// backAdjustments computes the cumulative to-minus-from price gap at each
// roll, in schedule order. Rolls where either price is unavailable carry
// no adjustment. The per-roll cumulative value is also recorded on the
// schedule for inspection.
func (b *Builder) backAdjustments(schedule *RollSchedule) []rollAdjustment {
	var out []rollAdjustment
	cumulative := 0.0

	for i, roll := range schedule.Rolls {
		fromPrice, okFrom := priceOn(roll.From, roll.Date)
		toPrice, okTo := priceOn(roll.To, roll.Date)
		if !okFrom || !okTo {
			continue
		}
		cumulative += toPrice - fromPrice
		schedule.Rolls[i].Adjustment = cumulative
		out = append(out, rollAdjustment{date: roll.Date, value: cumulative})
	}
	return out
}

// applyBackAdjustments shifts every point strictly before each roll date by
// that roll's cumulative gap, most recent roll first. Points on or after
// the latest roll keep their original values.
func applyBackAdjustments(series models.Series, adjustments []rollAdjustment) models.Series {
	if len(adjustments) == 0 {
		return series
	}
	adjusted := make(models.Series, len(series))
	copy(adjusted, series)

	for i := len(adjustments) - 1; i >= 0; i-- {
		adj := adjustments[i]
		for j := range adjusted {
			if adjusted[j].Date.Before(adj.date) {
				adjusted[j].Value += adj.value
			}
		}
	}
	return adjusted
}
