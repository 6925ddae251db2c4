// Package pricing computes booking charges and tax rates.
//
// All money math uses shopspring decimals. The final price is rounded
// half-up to 2 decimal places exactly once, after the discount is applied;
// intermediate values are never quantized, so rounding error cannot compound.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelsync/booking-backend/internal/model"
)

var (
	secondsPerHour = decimal.NewFromInt(3600)
	hundred        = decimal.NewFromInt(100)

	taxThreshold = decimal.NewFromInt(7500)
	taxRateLow   = decimal.RequireFromString("0.05")
	taxRateHigh  = decimal.RequireFromString("0.18")
)

// ComputePrice returns the charge for a booking.
//
// Duration semantics by basis:
//   - hourly: fractional hours, billed proportionally (2h30m = 2.5 units)
//   - daily: whole 24-hour periods between checkin and checkout, truncated
//   - monthly/yearly: whole calendar units, truncated (Jan 15 -> Feb 15 is
//     one month regardless of the month's length)
//
// unitRate must be non-nil for the chosen basis. checkout must be strictly
// after checkin, and for the non-hourly bases the truncated unit count must
// be at least one; otherwise an InvalidDateRangeError is returned rather
// than a zero-cost booking.
func ComputePrice(basis model.RateBasis, unitRate *decimal.Decimal, checkin, checkout time.Time, discountPercent *decimal.Decimal) (decimal.Decimal, error) {
	if unitRate == nil {
		return decimal.Zero, &MissingRateError{Basis: basis}
	}
	if !checkout.After(checkin) {
		return decimal.Zero, &InvalidDateRangeError{Basis: basis, Checkin: checkin, Checkout: checkout}
	}

	var base decimal.Decimal
	switch basis {
	case model.RateBasisHourly:
		seconds := decimal.NewFromInt(int64(checkout.Sub(checkin) / time.Second))
		base = unitRate.Mul(seconds).Div(secondsPerHour)
	case model.RateBasisDaily:
		days := int64(checkout.Sub(checkin) / (24 * time.Hour))
		if days <= 0 {
			return decimal.Zero, &InvalidDateRangeError{Basis: basis, Checkin: checkin, Checkout: checkout}
		}
		base = unitRate.Mul(decimal.NewFromInt(days))
	case model.RateBasisMonthly:
		months := calendarUnits(checkin, checkout, 0, 1)
		if months <= 0 {
			return decimal.Zero, &InvalidDateRangeError{Basis: basis, Checkin: checkin, Checkout: checkout}
		}
		base = unitRate.Mul(decimal.NewFromInt(months))
	case model.RateBasisYearly:
		years := calendarUnits(checkin, checkout, 1, 0)
		if years <= 0 {
			return decimal.Zero, &InvalidDateRangeError{Basis: basis, Checkin: checkin, Checkout: checkout}
		}
		base = unitRate.Mul(decimal.NewFromInt(years))
	default:
		return decimal.Zero, &MissingRateError{Basis: basis}
	}

	final := base
	if discountPercent != nil {
		final = base.Sub(base.Mul(*discountPercent).Div(hundred))
	}

	return final.Round(2), nil
}

// calendarUnits counts how many whole (years, months) steps fit between
// checkin and checkout, stepping with AddDate so month-length differences
// are handled by the calendar rather than a fixed 30/365-day approximation.
func calendarUnits(checkin, checkout time.Time, years, months int) int64 {
	var n int64
	cur := checkin
	for {
		next := cur.AddDate(years, months, 0)
		if next.After(checkout) {
			return n
		}
		n++
		cur = next
	}
}

// DynamicTaxRate returns the tax rate applicable to a taxable amount: zero
// for non-positive amounts, 5% under the 7500 threshold, and 18% at or above
// it. The breakpoint is inclusive on the high side.
func DynamicTaxRate(amount decimal.Decimal) decimal.Decimal {
	switch {
	case amount.Sign() <= 0:
		return decimal.Zero
	case amount.LessThan(taxThreshold):
		return taxRateLow
	default:
		return taxRateHigh
	}
}

// DynamicTaxRateString is DynamicTaxRate over raw input. Malformed or empty
// input yields a zero rate instead of an error: this sits in the reporting
// hot path, and one bad row must not abort a whole report.
func DynamicTaxRateString(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return DynamicTaxRate(amount)
}
