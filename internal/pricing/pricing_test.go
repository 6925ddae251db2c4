package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelsync/booking-backend/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestComputePrice_DailyWithDiscount(t *testing.T) {
	// 3 nights at 1000 with 10% off.
	price, err := ComputePrice(model.RateBasisDaily, dp("1000"),
		date(2024, time.January, 1), date(2024, time.January, 4), dp("10"))
	require.NoError(t, err)
	assert.True(t, price.Equal(d("2700.00")), "got %s", price)
}

func TestComputePrice_HourlyFractional(t *testing.T) {
	// 2.5 hours at 100/h, no discount.
	checkin := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	checkout := time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)
	price, err := ComputePrice(model.RateBasisHourly, dp("100"), checkin, checkout, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("250.00")), "got %s", price)
}

func TestComputePrice_Deterministic(t *testing.T) {
	checkin := date(2024, time.March, 1)
	checkout := date(2024, time.March, 15)
	first, err := ComputePrice(model.RateBasisDaily, dp("799.99"), checkin, checkout, dp("12.5"))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ComputePrice(model.RateBasisDaily, dp("799.99"), checkin, checkout, dp("12.5"))
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

func TestComputePrice_DiscountMonotonic(t *testing.T) {
	checkin := date(2024, time.June, 1)
	checkout := date(2024, time.June, 8)
	prev := decimal.New(1<<62, 0)
	for _, disc := range []string{"0", "5", "17.5", "50", "99.99", "100"} {
		price, err := ComputePrice(model.RateBasisDaily, dp("1234.56"), checkin, checkout, dp(disc))
		require.NoError(t, err)
		assert.True(t, price.LessThanOrEqual(prev), "discount %s: %s > %s", disc, price, prev)
		prev = price
	}
}

func TestComputePrice_RoundingIdempotent(t *testing.T) {
	// An amount already exact at 2 decimal places passes through unchanged.
	price, err := ComputePrice(model.RateBasisDaily, dp("150.25"),
		date(2024, time.January, 1), date(2024, time.January, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, "150.25", price.StringFixed(2))
}

func TestComputePrice_RoundsOnceAtEnd(t *testing.T) {
	// 3 hours at 33.333/h with 10% off: 99.999 * 0.9 = 89.9991 -> 90.00.
	// Rounding intermediate values first would give 89.99.
	checkin := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	checkout := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	price, err := ComputePrice(model.RateBasisHourly, dp("33.333"), checkin, checkout, dp("10"))
	require.NoError(t, err)
	assert.Equal(t, "90.00", price.StringFixed(2))
}

func TestComputePrice_DailyTruncatesAtPeriodBoundary(t *testing.T) {
	// Exactly 24h and 1 second: still one billed day, not two.
	checkin := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	checkout := checkin.Add(24*time.Hour + time.Second)
	price, err := ComputePrice(model.RateBasisDaily, dp("500"), checkin, checkout, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("500.00")), "got %s", price)

	// Exactly 48h: two days.
	price, err = ComputePrice(model.RateBasisDaily, dp("500"), checkin, checkin.Add(48*time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("1000.00")), "got %s", price)
}

func TestComputePrice_DailyUnderOneDayIsError(t *testing.T) {
	checkin := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	_, err := ComputePrice(model.RateBasisDaily, dp("500"), checkin, checkin.Add(23*time.Hour), nil)
	var rangeErr *InvalidDateRangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestComputePrice_MonthlyCalendarUnits(t *testing.T) {
	// Jan 15 -> Feb 15 is one month even though it spans 31 days.
	price, err := ComputePrice(model.RateBasisMonthly, dp("12000"),
		date(2024, time.January, 15), date(2024, time.February, 15), nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("12000.00")), "got %s", price)

	// One day short of the boundary still bills zero months -> error.
	_, err = ComputePrice(model.RateBasisMonthly, dp("12000"),
		date(2024, time.January, 15), date(2024, time.February, 14), nil)
	var rangeErr *InvalidDateRangeError
	require.ErrorAs(t, err, &rangeErr)

	// Jan 15 -> Apr 20 truncates to three whole months.
	price, err = ComputePrice(model.RateBasisMonthly, dp("12000"),
		date(2024, time.January, 15), date(2024, time.April, 20), nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("36000.00")), "got %s", price)
}

func TestComputePrice_YearlyCalendarUnits(t *testing.T) {
	price, err := ComputePrice(model.RateBasisYearly, dp("100000"),
		date(2023, time.July, 1), date(2025, time.June, 30), nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("100000.00")), "got %s", price)
}

func TestComputePrice_InvalidRange(t *testing.T) {
	checkin := date(2024, time.January, 4)
	for _, checkout := range []time.Time{checkin, date(2024, time.January, 1)} {
		_, err := ComputePrice(model.RateBasisDaily, dp("1000"), checkin, checkout, nil)
		var rangeErr *InvalidDateRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, model.RateBasisDaily, rangeErr.Basis)
	}
}

func TestComputePrice_MissingRate(t *testing.T) {
	_, err := ComputePrice(model.RateBasisMonthly, nil,
		date(2024, time.January, 1), date(2024, time.March, 1), nil)
	var missing *MissingRateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.RateBasisMonthly, missing.Basis)
}

func TestDynamicTaxRate_Breakpoint(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"-50", "0"},
		{"0", "0"},
		{"0.01", "0.05"},
		{"7499.99", "0.05"},
		{"7500.00", "0.18"},
		{"7500.01", "0.18"},
		{"125000", "0.18"},
	}
	for _, tc := range cases {
		got := DynamicTaxRate(d(tc.amount))
		assert.True(t, got.Equal(d(tc.want)), "amount %s: got %s, want %s", tc.amount, got, tc.want)
	}
}

func TestDynamicTaxRateString_MalformedIsZero(t *testing.T) {
	for _, raw := range []string{"", "abc", "12,50", "NaN-ish"} {
		assert.True(t, DynamicTaxRateString(raw).IsZero(), "raw %q", raw)
	}
	assert.True(t, DynamicTaxRateString("7500").Equal(d("0.18")))
	assert.True(t, DynamicTaxRateString("100.50").Equal(d("0.05")))
}
