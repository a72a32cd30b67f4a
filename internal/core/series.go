package core

// Interval is the bucket granularity for chart series.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// SeriesMode selects between running totals and per-bucket values.
type SeriesMode string

const (
	ModeCumulative SeriesMode = "cumulative"
	ModePerPeriod  SeriesMode = "perPeriod"
)

// DefaultRangeDays is the fallback chart window: the last 30 days ending
// today.
const DefaultRangeDays = 30

// DateRange is an inclusive [Start, End] pair of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

// DefaultRange returns the last 30 days ending today.
func DefaultRange(today Date) DateRange {
	return DateRange{Start: today.AddDays(-(DefaultRangeDays - 1)), End: today}
}

// ClampTo bounds the range so it never reaches past today, and collapses
// an inverted range onto its start. The result always satisfies
// Start <= End <= today.
func (r DateRange) ClampTo(today Date) DateRange {
	start, end := r.Start, r.End
	if start.After(today.Time) {
		start = today
	}
	if end.After(today.Time) {
		end = today
	}
	if end.Before(start.Time) {
		end = start
	}
	return DateRange{Start: start, End: end}
}

// Contains reports whether d falls within the inclusive range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// BucketStart maps a date onto the start of its bucket: midnight of the
// same day, the Monday on/before it, or the first of its month. The
// mapping is idempotent: BucketStart(BucketStart(d)) == BucketStart(d).
func BucketStart(d Date, interval Interval) Date {
	switch interval {
	case IntervalWeekly:
		// time.Weekday counts from Sunday; shift so Monday is 0.
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDays(-offset)
	case IntervalMonthly:
		return NewDate(d.Year(), int(d.Month()), 1)
	default:
		return DateOf(d.Time)
	}
}

// nextBucket advances one interval step.
func nextBucket(d Date, interval Interval) Date {
	switch interval {
	case IntervalWeekly:
		return d.AddDays(7)
	case IntervalMonthly:
		return DateOf(d.Time.AddDate(0, 1, 0))
	default:
		return d.AddDays(1)
	}
}

// SeriesPoint is one plotted value; Index is the x-coordinate.
type SeriesPoint struct {
	Index int
	Value float64
	Date  Date
}

// Series is the chartable output of BuildSeries.
//
// RangeTotal is always the sum of per-period bucket values regardless of
// mode. FinalValue is the last plotted value (equal to RangeTotal in
// cumulative mode). PeriodCount counts timeline buckets not after the
// clamped range end, excluding any synthetic chart padding point.
type Series struct {
	Points      []SeriesPoint
	RangeTotal  float64
	FinalValue  float64
	PeriodCount int
}

// BuildSeries turns transactions into a time series over the given range.
// Only transactions whose OccurredOn falls inside the clamped range are
// counted; everything else is ignored, not clamped inward. The range
// itself is clamped so the series never projects past today. Transactions
// contribute their display amount when the server supplied one.
//
// The function is pure and never fails: empty input yields an all-zero
// series across the full timeline.
func BuildSeries(transactions []Transaction, rng DateRange, interval Interval, mode SeriesMode, today Date) Series {
	clamped := rng.ClampTo(today)

	sums := make(map[Date]float64)
	for _, t := range transactions {
		if t.OccurredOn.IsZero() || !clamped.Contains(t.OccurredOn) {
			continue
		}
		key := BucketStart(t.OccurredOn, interval)
		sums[key] += t.EffectiveAmount()
	}

	first := BucketStart(clamped.Start, interval)
	last := BucketStart(clamped.End, interval)

	var timeline []Date
	for d := first; !d.After(last.Time); d = nextBucket(d, interval) {
		timeline = append(timeline, d)
	}
	if len(timeline) == 0 {
		timeline = []Date{first}
	}

	s := Series{Points: make([]SeriesPoint, 0, len(timeline))}
	running := 0.0
	for i, bucket := range timeline {
		value := sums[bucket]
		if value < 0 {
			// Only expenses are summed, but floor defensively.
			value = 0
		}
		running += value
		s.RangeTotal += value

		plotted := value
		if mode == ModeCumulative {
			plotted = running
		}
		s.Points = append(s.Points, SeriesPoint{Index: i, Value: plotted, Date: bucket})
		s.FinalValue = plotted
		if !bucket.After(last.Time) {
			s.PeriodCount++
		}
	}

	// A single-bucket range still has to render as a line: pad with a
	// synthetic point one step to the right duplicating the sole value.
	// It is chart padding only and does not count as a period.
	if len(s.Points) == 1 {
		s.Points = append(s.Points, SeriesPoint{
			Index: 1,
			Value: s.Points[0].Value,
			Date:  nextBucket(timeline[0], interval),
		})
	}

	return s
}

// BudgetExpenses filters the expense transactions attached to a budget,
// which is the input BuildSeries expects for budget detail charts.
func BudgetExpenses(transactions []Transaction, budgetID int64) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if t.Type != TypeExpense {
			continue
		}
		if t.BudgetID == nil || *t.BudgetID != budgetID {
			continue
		}
		out = append(out, t)
	}
	return out
}
