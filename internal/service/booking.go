// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelsync/booking-backend/internal/bookingid"
	"github.com/hostelsync/booking-backend/internal/model"
	"github.com/hostelsync/booking-backend/internal/pricing"
	"github.com/hostelsync/booking-backend/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// bookingStore is the persistence surface BookingService needs.
type bookingStore interface {
	Create(ctx context.Context, b *model.Booking, assignIdentifier repository.AssignFunc) (*model.Booking, error)
	GetByIdentifier(ctx context.Context, identifier string) (*model.Booking, error)
	ListByProperty(ctx context.Context, propertyID string) ([]model.Booking, error)
	Cancel(ctx context.Context, identifier string) error
}

// roomStore resolves the room a booking is priced against.
type roomStore interface {
	GetRoom(ctx context.Context, propertyID, roomID string) (*model.Room, error)
}

// identifierGenerator assigns booking identifiers at creation time.
type identifierGenerator interface {
	Generate(ctx context.Context, now time.Time, persist bookingid.PersistFunc) (string, error)
}

// BookingService orchestrates booking creation: validation, rate resolution,
// price computation, and identifier assignment.
type BookingService struct {
	bookings bookingStore
	rooms    roomStore
	ids      identifierGenerator
	now      func() time.Time
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(bookings bookingStore, rooms roomStore, ids identifierGenerator) *BookingService {
	return &BookingService{
		bookings: bookings,
		rooms:    rooms,
		ids:      ids,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking validates the request, computes the price from the room's
// rate for the chosen basis, and persists the booking under a freshly
// generated identifier.
func (s *BookingService) CreateBooking(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	if req.GuestName == "" {
		return nil, fmt.Errorf("guest_name is required")
	}
	if req.PropertyID == "" || req.RoomID == "" {
		return nil, fmt.Errorf("property_id and room_id are required")
	}

	basis, err := model.ParseRateBasis(req.RateBasis)
	if err != nil {
		return nil, err
	}

	bookingType := model.BookingType(req.BookingType)
	if bookingType == "" {
		bookingType = model.BookingTypeWalkin
	}
	paymentType := model.PaymentType(req.PaymentType)
	if paymentType == "" {
		paymentType = model.PaymentTypeUPI
	}

	if req.Guests <= 0 {
		req.Guests = 1
	}
	if req.Rooms <= 0 {
		req.Rooms = 1
	}

	room, err := s.rooms.GetRoom(ctx, req.PropertyID, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("resolve room: %w", err)
	}

	// Request discount wins; otherwise the room's standing discount applies.
	discount := req.Discount
	if discount == nil {
		discount = room.Discount
	}
	if discount != nil && (discount.Sign() < 0 || discount.GreaterThan(hundred)) {
		return nil, fmt.Errorf("discount must be between 0 and 100")
	}

	price, err := pricing.ComputePrice(basis, room.RateFor(basis), req.Checkin, req.Checkout, discount)
	if err != nil {
		// Typed pricing errors surface directly so handlers can map them.
		return nil, err
	}

	b := &model.Booking{
		PropertyID:  req.PropertyID,
		RoomID:      req.RoomID,
		GuestName:   req.GuestName,
		GuestMobile: strings.TrimSpace(req.GuestMobile),
		RateBasis:   basis,
		Checkin:     req.Checkin,
		Checkout:    req.Checkout,
		Guests:      req.Guests,
		Rooms:       req.Rooms,
		Price:       price,
		BookingType: bookingType,
		PaymentType: paymentType,
		Status:      model.StatusPending,
	}
	if discount != nil {
		b.Discount = *discount
	}

	created, err := s.bookings.Create(ctx, b, func(ctx context.Context, persist bookingid.PersistFunc) (string, error) {
		return s.ids.Generate(ctx, s.now(), persist)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrRoomUnavailable) ||
			errors.Is(err, bookingid.ErrIdentifierExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return created, nil
}

// GetBooking returns a booking by its identifier.
func (s *BookingService) GetBooking(ctx context.Context, identifier string) (*model.Booking, error) {
	if identifier == "" {
		return nil, fmt.Errorf("booking identifier is required")
	}
	b, err := s.bookings.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListBookings returns all bookings for a property.
func (s *BookingService) ListBookings(ctx context.Context, propertyID string) ([]model.Booking, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}
	return s.bookings.ListByProperty(ctx, propertyID)
}

// CancelBooking marks a booking cancelled and releases its rooms.
func (s *BookingService) CancelBooking(ctx context.Context, identifier string) error {
	if identifier == "" {
		return fmt.Errorf("booking identifier is required")
	}
	err := s.bookings.Cancel(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrBookingCancelled) {
			return err
		}
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}
