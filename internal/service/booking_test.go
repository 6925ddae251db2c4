package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelsync/booking-backend/internal/bookingid"
	"github.com/hostelsync/booking-backend/internal/model"
	"github.com/hostelsync/booking-backend/internal/pricing"
	"github.com/hostelsync/booking-backend/internal/repository"
)

type fakeRooms struct {
	room *model.Room
	err  error
}

func (f *fakeRooms) GetRoom(context.Context, string, string) (*model.Room, error) {
	return f.room, f.err
}

type fakeBookings struct {
	created   *model.Booking
	createErr error
}

func (f *fakeBookings) Create(ctx context.Context, b *model.Booking, assign repository.AssignFunc) (*model.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	id, err := assign(ctx, func(context.Context, string) error { return nil })
	if err != nil {
		return nil, err
	}
	b.Identifier = id
	f.created = b
	return b, nil
}

func (f *fakeBookings) GetByIdentifier(context.Context, string) (*model.Booking, error) {
	if f.created == nil {
		return nil, repository.ErrNotFound
	}
	return f.created, nil
}

func (f *fakeBookings) ListByProperty(context.Context, string) ([]model.Booking, error) {
	if f.created == nil {
		return nil, nil
	}
	return []model.Booking{*f.created}, nil
}

func (f *fakeBookings) Cancel(context.Context, string) error { return nil }

// fakeGen assigns the first sequence of the minute without touching storage.
type fakeGen struct{}

func (fakeGen) Generate(ctx context.Context, now time.Time, persist bookingid.PersistFunc) (string, error) {
	id := now.Format("020120061504") + "001"
	if err := persist(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func dptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func testRoom() *model.Room {
	return &model.Room{
		ID:         "room-1",
		PropertyID: "prop-1",
		Name:       "Deluxe",
		DailyRate:  dptr("1000"),
		HourlyRate: dptr("100"),
		TotalRooms: 5,
	}
}

func newTestService(bookings *fakeBookings, rooms *fakeRooms) *BookingService {
	svc := NewBookingService(bookings, rooms, fakeGen{})
	svc.now = func() time.Time {
		return time.Date(2024, time.April, 2, 11, 45, 0, 0, time.UTC)
	}
	return svc
}

func validRequest() model.CreateBookingRequest {
	return model.CreateBookingRequest{
		PropertyID: "prop-1",
		RoomID:     "room-1",
		GuestName:  "Asha Verma",
		RateBasis:  "daily",
		Checkin:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Checkout:   time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC),
		Discount:   dptr("10"),
	}
}

func TestCreateBooking_DailyHappyPath(t *testing.T) {
	bookings := &fakeBookings{}
	svc := newTestService(bookings, &fakeRooms{room: testRoom()})

	b, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "020420241145001", b.Identifier)
	assert.Equal(t, "2700.00", b.Price.StringFixed(2))
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, model.BookingTypeWalkin, b.BookingType)
	assert.Equal(t, model.PaymentTypeUPI, b.PaymentType)
	assert.Equal(t, 1, b.Guests)
	assert.Equal(t, 1, b.Rooms)
}

func TestCreateBooking_RoomDiscountFallback(t *testing.T) {
	room := testRoom()
	room.Discount = dptr("10")
	svc := newTestService(&fakeBookings{}, &fakeRooms{room: room})

	req := validRequest()
	req.Discount = nil
	b, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2700.00", b.Price.StringFixed(2))
}

func TestCreateBooking_MissingRateSurfaces(t *testing.T) {
	svc := newTestService(&fakeBookings{}, &fakeRooms{room: testRoom()})

	req := validRequest()
	req.RateBasis = "monthly" // test room has no monthly rate
	req.Checkout = req.Checkin.AddDate(0, 2, 0)
	_, err := svc.CreateBooking(context.Background(), req)

	var missing *pricing.MissingRateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.RateBasisMonthly, missing.Basis)
}

func TestCreateBooking_InvalidDateRangeSurfaces(t *testing.T) {
	svc := newTestService(&fakeBookings{}, &fakeRooms{room: testRoom()})

	req := validRequest()
	req.Checkout = req.Checkin
	_, err := svc.CreateBooking(context.Background(), req)

	var rangeErr *pricing.InvalidDateRangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestCreateBooking_ValidationFailures(t *testing.T) {
	svc := newTestService(&fakeBookings{}, &fakeRooms{room: testRoom()})

	cases := []struct {
		name   string
		mutate func(*model.CreateBookingRequest)
	}{
		{"empty guest name", func(r *model.CreateBookingRequest) { r.GuestName = "  " }},
		{"missing room id", func(r *model.CreateBookingRequest) { r.RoomID = "" }},
		{"unknown rate basis", func(r *model.CreateBookingRequest) { r.RateBasis = "weekly" }},
		{"discount over 100", func(r *model.CreateBookingRequest) { r.Discount = dptr("101") }},
		{"negative discount", func(r *model.CreateBookingRequest) { r.Discount = dptr("-5") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateBooking(context.Background(), req)
			require.Error(t, err)
		})
	}
}

func TestCreateBooking_RoomUnavailablePassesThrough(t *testing.T) {
	bookings := &fakeBookings{createErr: repository.ErrRoomUnavailable}
	svc := newTestService(bookings, &fakeRooms{room: testRoom()})

	_, err := svc.CreateBooking(context.Background(), validRequest())
	require.ErrorIs(t, err, repository.ErrRoomUnavailable)
}

func TestCreateBooking_RoomNotFound(t *testing.T) {
	svc := newTestService(&fakeBookings{}, &fakeRooms{err: repository.ErrNotFound})

	_, err := svc.CreateBooking(context.Background(), validRequest())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateBooking_IdentifierExhaustedPassesThrough(t *testing.T) {
	bookings := &fakeBookings{createErr: bookingid.ErrIdentifierExhausted}
	svc := newTestService(bookings, &fakeRooms{room: testRoom()})

	_, err := svc.CreateBooking(context.Background(), validRequest())
	require.ErrorIs(t, err, bookingid.ErrIdentifierExhausted)
}

func TestGetBooking_RequiresIdentifier(t *testing.T) {
	svc := newTestService(&fakeBookings{}, &fakeRooms{room: testRoom()})
	_, err := svc.GetBooking(context.Background(), "")
	require.Error(t, err)
}
