package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is a check-in/check-out pair. A zero time means the end of the
// range has not been picked yet.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Complete reports whether both dates are set and End falls on a later
// calendar day than Start.
func (r DateRange) Complete() bool {
	if r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	return Nights(r.Start, r.End) > 0
}

// Result is the price of a stay
type Result struct {
	Nights      int             `json:"nights"`
	RentalTotal decimal.Decimal `json:"rentalTotal"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// Display formats an amount with two fraction digits
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Compute prices a stay at a flat nightly rate. Incomplete or inverted
// ranges are not yet computable and price to zero.
func Compute(r DateRange, nightlyRate decimal.Decimal) Result {
	if !r.Complete() || nightlyRate.IsNegative() {
		return Result{RentalTotal: decimal.Zero, GrandTotal: decimal.Zero}
	}

	nights := Nights(r.Start, r.End)
	rental := nightlyRate.Mul(decimal.NewFromInt(int64(nights)))
	return Result{
		Nights:      nights,
		RentalTotal: rental,
		GrandTotal:  rental,
	}
}

// Nights counts calendar days from start to end, excluding the end date.
// Times of day and zone offsets are ignored. Negative when end precedes start.
func Nights(start, end time.Time) int {
	return int(civilDate(end).Sub(civilDate(start)).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
