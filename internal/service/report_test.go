package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostelsync/booking-backend/internal/repository"
)

type fakeReportRows struct {
	rows []repository.ReportRow
	err  error
}

func (f *fakeReportRows) ReportRows(context.Context, string, time.Time, time.Time) ([]repository.ReportRow, error) {
	return f.rows, f.err
}

func TestPropertyReport_TaxPerBooking(t *testing.T) {
	store := &fakeReportRows{rows: []repository.ReportRow{
		{Identifier: "010120241000001", RawPrice: "1000.00"}, // 5% band -> 50.00
		{Identifier: "010120241000002", RawPrice: "8000.00"}, // 18% band -> 1440.00
		{Identifier: "010120241000003", RawPrice: "7500.00"}, // breakpoint inclusive -> 1350.00
	}}
	svc := NewReportService(zap.NewNop(), store)

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	report, err := svc.PropertyReport(context.Background(), "prop-1", from, to)
	require.NoError(t, err)

	assert.Equal(t, 3, report.BookingCount)
	assert.Equal(t, "16500.00", report.GrossRevenue.StringFixed(2))
	assert.Equal(t, "2840.00", report.TotalTax.StringFixed(2))
	assert.Equal(t, "19340.00", report.TotalPayable.StringFixed(2))
}

func TestPropertyReport_MalformedRowDoesNotAbort(t *testing.T) {
	store := &fakeReportRows{rows: []repository.ReportRow{
		{Identifier: "010120241000001", RawPrice: "1000.00"},
		{Identifier: "010120241000002", RawPrice: "not-a-number"},
		{Identifier: "010120241000003", RawPrice: "2000.00"},
	}}
	svc := NewReportService(zap.NewNop(), store)

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.PropertyReport(context.Background(), "prop-1", from, from.AddDate(0, 1, 0))
	require.NoError(t, err)

	// The bad row is counted but contributes nothing to the totals.
	assert.Equal(t, 3, report.BookingCount)
	assert.Equal(t, "3000.00", report.GrossRevenue.StringFixed(2))
	assert.Equal(t, "150.00", report.TotalTax.StringFixed(2))
}

func TestPropertyReport_EmptyRange(t *testing.T) {
	svc := NewReportService(zap.NewNop(), &fakeReportRows{})

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.PropertyReport(context.Background(), "prop-1", from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Zero(t, report.BookingCount)
	assert.True(t, report.TotalPayable.IsZero())
}

func TestPropertyReport_InvalidRange(t *testing.T) {
	svc := NewReportService(zap.NewNop(), &fakeReportRows{})

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.PropertyReport(context.Background(), "prop-1", from, from)
	require.Error(t, err)

	_, err = svc.PropertyReport(context.Background(), "", from, from.AddDate(0, 1, 0))
	require.Error(t, err)
}
