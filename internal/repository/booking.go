package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hostelsync/booking-backend/internal/bookingid"
	"github.com/hostelsync/booking-backend/internal/model"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// rejection — the signal the identifier generator retries on.
const uniqueViolation = "23505"

// AssignFunc produces a unique identifier for the booking being created and
// persists it through the supplied PersistFunc. The service layer binds this
// to the identifier generator.
type AssignFunc func(ctx context.Context, persist bookingid.PersistFunc) (string, error)

// BookingRepository handles persistence for bookings. It also serves as the
// generator's query capability over the set of existing identifiers.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// MaxIdentifierWithPrefix returns the largest committed identifier sharing
// the given minute prefix, or "" when the minute has no bookings yet.
// Lexicographic MAX is numeric MAX because the suffix is fixed-width.
func (r *BookingRepository) MaxIdentifierWithPrefix(ctx context.Context, prefix string) (string, error) {
	var max string
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(identifier), '') FROM bookings WHERE identifier LIKE $1 || '%'`,
		prefix,
	).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("max identifier for prefix %s: %w", prefix, err)
	}
	return max, nil
}

// Create allocates room inventory and inserts the booking in one transaction.
//
// The room row is locked with SELECT ... FOR UPDATE so concurrent bookings
// cannot oversell the category. The identifier insert runs under a savepoint
// per attempt: a unique-constraint rejection rolls back only that attempt,
// keeping the transaction (and the inventory allocation) alive while the
// generator retries with the next sequence number.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking, assignIdentifier AssignFunc) (_ *model.Booking, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var total, used int
	err = tx.QueryRow(ctx,
		`SELECT total_rooms, used_rooms
		 FROM rooms
		 WHERE id = $1 AND property_id = $2
		 FOR UPDATE`,
		b.RoomID, b.PropertyID,
	).Scan(&total, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock room row: %w", err)
	}

	if used+b.Rooms > total {
		return nil, ErrRoomUnavailable
	}

	_, err = tx.Exec(ctx,
		`UPDATE rooms SET used_rooms = used_rooms + $1 WHERE id = $2`,
		b.Rooms, b.RoomID,
	)
	if err != nil {
		return nil, fmt.Errorf("allocate rooms: %w", err)
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	identifier, err := assignIdentifier(ctx, func(ctx context.Context, candidate string) error {
		return r.insertBooking(ctx, tx, candidate, b)
	})
	if err != nil {
		return nil, err
	}
	b.Identifier = identifier

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return b, nil
}

// insertBooking attempts the insert under a savepoint so a duplicate
// identifier aborts only this attempt, not the enclosing transaction.
func (r *BookingRepository) insertBooking(ctx context.Context, tx pgx.Tx, identifier string, b *model.Booking) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}

	_, err = sp.Exec(ctx,
		`INSERT INTO bookings (identifier, property_id, room_id, guest_name, guest_mobile,
		                       rate_basis, checkin, checkout, guests, rooms, discount, price,
		                       booking_type, payment_type, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		identifier, b.PropertyID, b.RoomID, b.GuestName, b.GuestMobile,
		string(b.RateBasis), b.Checkin, b.Checkout, b.Guests, b.Rooms,
		b.Discount.String(), b.Price.String(),
		string(b.BookingType), string(b.PaymentType), string(b.Status),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return bookingid.ErrDuplicateIdentifier
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return sp.Commit(ctx)
}

// GetByIdentifier returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.Booking, error) {
	row := r.db.QueryRow(ctx, selectBooking+` WHERE identifier = $1`, identifier)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListByProperty returns all bookings for a property, newest first.
func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID string) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx, selectBooking+` WHERE property_id = $1 ORDER BY created_at DESC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Cancel marks a booking cancelled and releases its room inventory.
func (r *BookingRepository) Cancel(ctx context.Context, identifier string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		roomID string
		count  int
		status string
	)
	err = tx.QueryRow(ctx,
		`SELECT room_id, rooms, status FROM bookings WHERE identifier = $1 FOR UPDATE`,
		identifier,
	).Scan(&roomID, &count, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock booking row: %w", err)
	}

	if model.BookingStatus(status) == model.StatusCancelled {
		return ErrBookingCancelled
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE identifier = $3`,
		string(model.StatusCancelled), time.Now().UTC(), identifier,
	)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE rooms SET used_rooms = GREATEST(used_rooms - $1, 0) WHERE id = $2`,
		count, roomID,
	)
	if err != nil {
		return fmt.Errorf("release rooms: %w", err)
	}

	return tx.Commit(ctx)
}

// ReportRow is one booking's contribution to a revenue report. Price is kept
// raw so report generation can degrade per-row instead of aborting.
type ReportRow struct {
	Identifier string
	RawPrice   string
}

// ReportRows returns the non-cancelled bookings of a property whose checkin
// falls in [from, to).
func (r *BookingRepository) ReportRows(ctx context.Context, propertyID string, from, to time.Time) ([]ReportRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT identifier, price::text
		 FROM bookings
		 WHERE property_id = $1 AND checkin >= $2 AND checkin < $3 AND status <> $4
		 ORDER BY checkin ASC`,
		propertyID, from, to, string(model.StatusCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("report rows: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.Identifier, &row.RawPrice); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const selectBooking = `SELECT identifier, property_id, room_id, guest_name, guest_mobile,
       rate_basis, checkin, checkout, guests, rooms, discount::text, price::text,
       booking_type, payment_type, status, created_at, updated_at
FROM bookings`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b                  model.Booking
		basis, btype       string
		ptype, status      string
		discountRaw, price string
	)
	err := row.Scan(&b.Identifier, &b.PropertyID, &b.RoomID, &b.GuestName, &b.GuestMobile,
		&basis, &b.Checkin, &b.Checkout, &b.Guests, &b.Rooms, &discountRaw, &price,
		&btype, &ptype, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	b.RateBasis = model.RateBasis(basis)
	b.BookingType = model.BookingType(btype)
	b.PaymentType = model.PaymentType(ptype)
	b.Status = model.BookingStatus(status)
	if b.Discount, err = decimal.NewFromString(discountRaw); err != nil {
		return nil, fmt.Errorf("booking %s discount: %w", b.Identifier, err)
	}
	if b.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("booking %s price: %w", b.Identifier, err)
	}
	return &b, nil
}
