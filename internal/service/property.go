package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hostelsync/booking-backend/internal/model"
	"github.com/hostelsync/booking-backend/internal/repository"
)

// propertyStore is the persistence surface PropertyService needs.
type propertyStore interface {
	CreateProperty(ctx context.Context, req model.CreatePropertyRequest) (*model.Property, error)
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	CreateRoom(ctx context.Context, propertyID string, req model.CreateRoomRequest) (*model.Room, error)
}

// PropertyService orchestrates property and room management.
type PropertyService struct {
	properties propertyStore
}

// NewPropertyService constructs a PropertyService.
func NewPropertyService(properties propertyStore) *PropertyService {
	return &PropertyService{properties: properties}
}

// CreateProperty validates and creates a property.
func (s *PropertyService) CreateProperty(ctx context.Context, req model.CreatePropertyRequest) (*model.Property, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("property name is required")
	}
	switch req.PropertyType {
	case "":
		req.PropertyType = "hotel"
	case "hotel", "hostel":
	default:
		return nil, fmt.Errorf("property_type must be hotel or hostel")
	}
	return s.properties.CreateProperty(ctx, req)
}

// ListProperties returns all properties.
func (s *PropertyService) ListProperties(ctx context.Context) ([]model.Property, error) {
	return s.properties.ListProperties(ctx)
}

// GetProperty returns a single property by ID.
func (s *PropertyService) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, fmt.Errorf("property id is required")
	}
	p, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// CreateRoom validates and adds a room category to a property. At least one
// of the four rates must be configured, and none may be negative.
func (s *PropertyService) CreateRoom(ctx context.Context, propertyID string, req model.CreateRoomRequest) (*model.Room, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("room name is required")
	}
	if req.TotalRooms <= 0 {
		req.TotalRooms = 1
	}

	configured := 0
	for _, rate := range []struct {
		name string
		val  *decimal.Decimal
	}{
		{"hourly_rate", req.HourlyRate},
		{"daily_rate", req.DailyRate},
		{"monthly_rate", req.MonthlyRate},
		{"yearly_rate", req.YearlyRate},
	} {
		if rate.val == nil {
			continue
		}
		if rate.val.Sign() < 0 {
			return nil, fmt.Errorf("%s cannot be negative", rate.name)
		}
		configured++
	}
	if configured == 0 {
		return nil, fmt.Errorf("at least one rate must be configured")
	}

	if req.Discount != nil && (req.Discount.Sign() < 0 || req.Discount.GreaterThan(hundred)) {
		return nil, fmt.Errorf("discount must be between 0 and 100")
	}

	return s.properties.CreateRoom(ctx, propertyID, req)
}
