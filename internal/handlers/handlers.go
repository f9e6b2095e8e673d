package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/cx-tal-miterani/rental-booking-system/internal/service"
	"github.com/cx-tal-miterani/rental-booking-system/internal/websocket"
)

// LoginPath is where an unauthorized admin is sent
const LoginPath = "/login"

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	adminService   service.AdminService
	hub            *websocket.Hub
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, adminService service.AdminService, hub *websocket.Hub) *Handler {
	return &Handler{
		bookingService: bookingService,
		adminService:   adminService,
		hub:            hub,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// RespondUnauthorized tells the client to sign in again
func RespondUnauthorized(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, map[string]string{
		"error":    message,
		"redirect": LoginPath,
	})
}

// respondServiceError maps an error to its status and user-facing message
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *reservation.ValidationError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Please fill in all required fields",
			"fields": verr.Fields,
		})
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, service.ErrNoSession):
		RespondUnauthorized(w, backend.UserMessage(backend.ErrUnauthorized))
	case errors.Is(err, backend.ErrUnreachable), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, backend.UserMessage(err))
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		respondError(w, status, backend.UserMessage(err))
	case errors.Is(err, reservation.ErrNotFound), errors.Is(err, checkout.ErrUnknownCheckout):
		respondError(w, http.StatusNotFound, "Reservation not found")
	case errors.Is(err, reservation.ErrSubmitting), errors.Is(err, checkout.ErrCaptureInProgress):
		respondError(w, http.StatusConflict, "A submission is already in progress")
	case errors.Is(err, reservation.ErrWrongStep),
		errors.Is(err, reservation.ErrNoPayment),
		errors.Is(err, reservation.ErrCompleted),
		errors.Is(err, reservation.ErrClosed),
		errors.Is(err, service.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrOrderMismatch):
		respondError(w, http.StatusBadRequest, "Payment does not match this reservation")
	case errors.Is(err, service.ErrCheckoutFailed):
		respondError(w, http.StatusPaymentRequired, "Payment could not be completed. Please try again.")
	default:
		log.Printf("Unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, backend.UserMessage(err))
	}
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
