// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hostelsync/booking-backend/internal/bookingid"
	"github.com/hostelsync/booking-backend/internal/model"
	"github.com/hostelsync/booking-backend/internal/pricing"
	"github.com/hostelsync/booking-backend/internal/repository"
	"github.com/hostelsync/booking-backend/internal/service"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Booking handlers ─────────────────────────────────────────────────────────

// BookingHandler holds the HTTP handlers for the booking API.
type BookingHandler struct {
	svc     *service.BookingService
	reports *service.ReportService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService, reports *service.ReportService) *BookingHandler {
	return &BookingHandler{svc: svc, reports: reports}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	b, err := h.svc.CreateBooking(r.Context(), req)
	if err != nil {
		var (
			missing  *pricing.MissingRateError
			badRange *pricing.InvalidDateRangeError
		)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "property or room not found")
		case errors.Is(err, repository.ErrRoomUnavailable):
			writeError(w, http.StatusConflict, "room has no remaining availability")
		case errors.Is(err, bookingid.ErrIdentifierExhausted):
			// Transient: the condition clears once contention on the
			// current minute subsides, so invite a retry.
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusServiceUnavailable, "could not allocate a booking identifier, please retry")
		case errors.As(err, &missing), errors.As(err, &badRange):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

// GetBooking handles GET /bookings/{identifier}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	b, err := h.svc.GetBooking(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get booking")
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// CancelBooking handles POST /bookings/{identifier}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	err := h.svc.CancelBooking(r.Context(), identifier)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, repository.ErrBookingCancelled):
			writeError(w, http.StatusConflict, "booking is already cancelled")
		default:
			writeError(w, http.StatusInternalServerError, "failed to cancel booking")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ListBookings handles GET /properties/{id}/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")

	bookings, err := h.svc.ListBookings(r.Context(), propertyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// PropertyReport handles GET /properties/{id}/report?from=2024-01-01&to=2024-02-01
func (h *BookingHandler) PropertyReport(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")

	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reports.PropertyReport(r.Context(), propertyID, from, to)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// parseDateParam reads a query parameter as a date (or RFC 3339 timestamp).
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, errors.New(name + " query parameter is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be a date (2006-01-02) or RFC 3339 timestamp")
	}
	return t, nil
}

// ─── Property handlers ────────────────────────────────────────────────────────

// PropertyHandler holds the HTTP handlers for property and room management.
type PropertyHandler struct {
	svc *service.PropertyService
}

// NewPropertyHandler constructs a PropertyHandler.
func NewPropertyHandler(svc *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

// CreateProperty handles POST /properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.CreateProperty(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// ListProperties handles GET /properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.svc.ListProperties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list properties")
		return
	}

	if properties == nil {
		properties = []model.Property{}
	}
	writeJSON(w, http.StatusOK, properties)
}

// GetProperty handles GET /properties/{id}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.svc.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// CreateRoom handles POST /properties/{id}/rooms
func (h *PropertyHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.CreateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	room, err := h.svc.CreateRoom(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
