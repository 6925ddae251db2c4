// Package model defines the core domain types for the property booking system.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateBasis is the billing granularity of a booking. Each basis maps to its
// own rate column on the room, so a missing rate for the chosen basis is a
// validation failure rather than a silent zero.
type RateBasis string

const (
	RateBasisHourly  RateBasis = "hourly"
	RateBasisDaily   RateBasis = "daily"
	RateBasisMonthly RateBasis = "monthly"
	RateBasisYearly  RateBasis = "yearly"
)

// ParseRateBasis validates a raw string against the four known bases.
func ParseRateBasis(s string) (RateBasis, error) {
	switch RateBasis(s) {
	case RateBasisHourly, RateBasisDaily, RateBasisMonthly, RateBasisYearly:
		return RateBasis(s), nil
	}
	return "", fmt.Errorf("unknown rate basis %q", s)
}

// BookingStatus tracks a booking through its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusCompleted  BookingStatus = "completed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusNoShow     BookingStatus = "no_show"
)

// BookingType records the channel a booking arrived through.
type BookingType string

const (
	BookingTypeWalkin     BookingType = "walkin"
	BookingTypeOnline     BookingType = "online"
	BookingTypeMakeMyTrip BookingType = "makemytrip"
	BookingTypeExpedia    BookingType = "expedia"
	BookingTypeAgoda      BookingType = "agoda"
	BookingTypeBookingCom BookingType = "bookingcom"
	BookingTypeAirbnb     BookingType = "airbnb"
	BookingTypeOther      BookingType = "other"
)

// PaymentType is how the guest pays.
type PaymentType string

const (
	PaymentTypeCard PaymentType = "card"
	PaymentTypeCash PaymentType = "cash"
	PaymentTypeUPI  PaymentType = "upi"
)

// Property represents a hotel or hostel.
type Property struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PropertyType string    `json:"property_type"` // hotel | hostel
	Location     string    `json:"location"`
	City         string    `json:"city"`
	CreatedAt    time.Time `json:"created_at"`
}

// Room represents a bookable room category within a property. The four rate
// columns correspond one-to-one with the rate bases; any of them except the
// daily rate may be absent.
type Room struct {
	ID          string           `json:"id"`
	PropertyID  string           `json:"property_id"`
	Name        string           `json:"name"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate,omitempty"`
	DailyRate   *decimal.Decimal `json:"daily_rate,omitempty"`
	MonthlyRate *decimal.Decimal `json:"monthly_rate,omitempty"`
	YearlyRate  *decimal.Decimal `json:"yearly_rate,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"` // percent, 0..100
	TotalRooms  int              `json:"total_rooms"`
	UsedRooms   int              `json:"used_rooms"`
	CreatedAt   time.Time        `json:"created_at"`
}

// RateFor returns the room's unit rate for the given basis, or nil when that
// rate was never configured.
func (r *Room) RateFor(basis RateBasis) *decimal.Decimal {
	switch basis {
	case RateBasisHourly:
		return r.HourlyRate
	case RateBasisDaily:
		return r.DailyRate
	case RateBasisMonthly:
		return r.MonthlyRate
	case RateBasisYearly:
		return r.YearlyRate
	}
	return nil
}

// Remaining returns the number of unallocated rooms in this category.
func (r *Room) Remaining() int {
	return r.TotalRooms - r.UsedRooms
}

// Booking is the central entity. Identifier is assigned exactly once at
// creation and never mutated; Price is derived, recomputed on every save that
// touches a pricing-relevant field.
type Booking struct {
	Identifier  string          `json:"identifier"`
	PropertyID  string          `json:"property_id"`
	RoomID      string          `json:"room_id"`
	GuestName   string          `json:"guest_name"`
	GuestMobile string          `json:"guest_mobile"`
	RateBasis   RateBasis       `json:"rate_basis"`
	Checkin     time.Time       `json:"checkin"`
	Checkout    time.Time       `json:"checkout"`
	Guests      int             `json:"number_of_guests"`
	Rooms       int             `json:"number_of_rooms"`
	Discount    decimal.Decimal `json:"discount"`
	Price       decimal.Decimal `json:"price"`
	BookingType BookingType     `json:"booking_type"`
	PaymentType PaymentType     `json:"payment_type"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreatePropertyRequest is the payload for creating a property.
type CreatePropertyRequest struct {
	Name         string `json:"name"`
	PropertyType string `json:"property_type"`
	Location     string `json:"location"`
	City         string `json:"city"`
}

// CreateRoomRequest is the payload for adding a room category to a property.
type CreateRoomRequest struct {
	Name        string           `json:"name"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	DailyRate   *decimal.Decimal `json:"daily_rate"`
	MonthlyRate *decimal.Decimal `json:"monthly_rate"`
	YearlyRate  *decimal.Decimal `json:"yearly_rate"`
	Discount    *decimal.Decimal `json:"discount"`
	TotalRooms  int              `json:"total_rooms"`
}

// CreateBookingRequest is the payload for creating a booking.
type CreateBookingRequest struct {
	PropertyID  string           `json:"property_id"`
	RoomID      string           `json:"room_id"`
	GuestName   string           `json:"guest_name"`
	GuestMobile string           `json:"guest_mobile"`
	RateBasis   string           `json:"rate_basis"`
	Checkin     time.Time        `json:"checkin"`
	Checkout    time.Time        `json:"checkout"`
	Guests      int              `json:"number_of_guests"`
	Rooms       int              `json:"number_of_rooms"`
	Discount    *decimal.Decimal `json:"discount"`
	BookingType string           `json:"booking_type"`
	PaymentType string           `json:"payment_type"`
}

// PropertyReport summarises booked revenue for a property over a date range.
type PropertyReport struct {
	PropertyID   string          `json:"property_id"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	BookingCount int             `json:"booking_count"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
