package pricing

import (
	"fmt"
	"time"

	"github.com/hostelsync/booking-backend/internal/model"
)

// MissingRateError reports that the room has no rate configured for the
// rate basis the booking asked for. This is a caller-input problem and is
// never retried.
type MissingRateError struct {
	Basis model.RateBasis
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no %s rate configured for this room", e.Basis)
}

// InvalidDateRangeError reports a checkin/checkout pair that does not yield a
// strictly positive billable duration for the chosen basis.
type InvalidDateRangeError struct {
	Basis    model.RateBasis
	Checkin  time.Time
	Checkout time.Time
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range for %s booking: checkin %s, checkout %s",
		e.Basis, e.Checkin.Format(time.RFC3339), e.Checkout.Format(time.RFC3339))
}
