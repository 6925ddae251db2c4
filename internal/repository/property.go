package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hostelsync/booking-backend/internal/model"
)

// PropertyRepository handles persistence for properties and their rooms.
type PropertyRepository struct {
	db *pgxpool.Pool
}

// NewPropertyRepository constructs a PropertyRepository.
func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// CreateProperty inserts a new property and returns it with a generated UUID.
func (r *PropertyRepository) CreateProperty(ctx context.Context, req model.CreatePropertyRequest) (*model.Property, error) {
	p := &model.Property{
		ID:           uuid.New().String(),
		Name:         req.Name,
		PropertyType: req.PropertyType,
		Location:     req.Location,
		City:         req.City,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO properties (id, name, property_type, location, city, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.PropertyType, p.Location, p.City, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert property: %w", err)
	}
	return p, nil
}

// ListProperties returns all properties ordered by creation time descending.
func (r *PropertyRepository) ListProperties(ctx context.Context) ([]model.Property, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, property_type, location, city, created_at
		 FROM properties
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var properties []model.Property
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.PropertyType, &p.Location, &p.City, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// GetProperty returns a single property or ErrNotFound.
func (r *PropertyRepository) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var p model.Property
	err := r.db.QueryRow(ctx,
		`SELECT id, name, property_type, location, city, created_at
		 FROM properties WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.PropertyType, &p.Location, &p.City, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property: %w", err)
	}
	return &p, nil
}

// CreateRoom inserts a new room category under a property.
func (r *PropertyRepository) CreateRoom(ctx context.Context, propertyID string, req model.CreateRoomRequest) (*model.Room, error) {
	room := &model.Room{
		ID:          uuid.New().String(),
		PropertyID:  propertyID,
		Name:        req.Name,
		HourlyRate:  req.HourlyRate,
		DailyRate:   req.DailyRate,
		MonthlyRate: req.MonthlyRate,
		YearlyRate:  req.YearlyRate,
		Discount:    req.Discount,
		TotalRooms:  req.TotalRooms,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO rooms (id, property_id, name, hourly_rate, daily_rate, monthly_rate, yearly_rate, discount, total_rooms, used_rooms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)`,
		room.ID, room.PropertyID, room.Name,
		decimalArg(room.HourlyRate), decimalArg(room.DailyRate),
		decimalArg(room.MonthlyRate), decimalArg(room.YearlyRate),
		decimalArg(room.Discount), room.TotalRooms, room.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return room, nil
}

// GetRoom returns a room by ID scoped to its property, or ErrNotFound.
func (r *PropertyRepository) GetRoom(ctx context.Context, propertyID, roomID string) (*model.Room, error) {
	var (
		room                                 model.Room
		hourly, daily, monthly, yearly, disc *string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, property_id, name,
		        hourly_rate::text, daily_rate::text, monthly_rate::text, yearly_rate::text, discount::text,
		        total_rooms, used_rooms, created_at
		 FROM rooms WHERE id = $1 AND property_id = $2`,
		roomID, propertyID,
	).Scan(&room.ID, &room.PropertyID, &room.Name,
		&hourly, &daily, &monthly, &yearly, &disc,
		&room.TotalRooms, &room.UsedRooms, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}

	if room.HourlyRate, err = parseDecimal(hourly); err != nil {
		return nil, fmt.Errorf("room %s hourly_rate: %w", roomID, err)
	}
	if room.DailyRate, err = parseDecimal(daily); err != nil {
		return nil, fmt.Errorf("room %s daily_rate: %w", roomID, err)
	}
	if room.MonthlyRate, err = parseDecimal(monthly); err != nil {
		return nil, fmt.Errorf("room %s monthly_rate: %w", roomID, err)
	}
	if room.YearlyRate, err = parseDecimal(yearly); err != nil {
		return nil, fmt.Errorf("room %s yearly_rate: %w", roomID, err)
	}
	if room.Discount, err = parseDecimal(disc); err != nil {
		return nil, fmt.Errorf("room %s discount: %w", roomID, err)
	}
	return &room, nil
}

// decimalArg converts an optional decimal into a driver argument, preserving
// NULL for absent rates.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// parseDecimal converts a nullable text-cast NUMERIC column back into an
// optional decimal.
func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
