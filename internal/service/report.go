package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelsync/booking-backend/internal/model"
	"github.com/hostelsync/booking-backend/internal/pricing"
	"github.com/hostelsync/booking-backend/internal/repository"
)

// reportStore fetches the raw booking rows a revenue report is built from.
type reportStore interface {
	ReportRows(ctx context.Context, propertyID string, from, to time.Time) ([]repository.ReportRow, error)
}

// ReportService builds per-property revenue summaries. A malformed price on
// one row degrades that row to zero instead of aborting the whole report.
type ReportService struct {
	log      *zap.Logger
	bookings reportStore
}

// NewReportService constructs a ReportService.
func NewReportService(log *zap.Logger, bookings reportStore) *ReportService {
	return &ReportService{log: log, bookings: bookings}
}

// PropertyReport summarises booked revenue and tax for a property over
// [from, to). Tax is computed per booking with the dynamic rate, rounded to
// 2 decimal places per row the way an invoice line would be.
func (s *ReportService) PropertyReport(ctx context.Context, propertyID string, from, to time.Time) (*model.PropertyReport, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}
	if !to.After(from) {
		return nil, fmt.Errorf("report range end must be after start")
	}

	rows, err := s.bookings.ReportRows(ctx, propertyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load report rows: %w", err)
	}

	report := &model.PropertyReport{
		PropertyID: propertyID,
		From:       from,
		To:         to,
	}
	for _, row := range rows {
		report.BookingCount++

		amount, err := decimal.NewFromString(row.RawPrice)
		if err != nil {
			s.log.Warn("skipping malformed price in report",
				zap.String("booking", row.Identifier),
				zap.String("raw_price", row.RawPrice),
			)
			continue
		}

		tax := amount.Mul(pricing.DynamicTaxRate(amount)).Round(2)
		report.GrossRevenue = report.GrossRevenue.Add(amount)
		report.TotalTax = report.TotalTax.Add(tax)
	}
	report.TotalPayable = report.GrossRevenue.Add(report.TotalTax)

	return report, nil
}
