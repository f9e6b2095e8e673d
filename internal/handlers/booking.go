package handlers

import (
	"net/http"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/pricing"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type startReservationRequest struct {
	PropertyID models.ID `json:"propertyId"`
}

type datesRequest struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
	Guests   int       `json:"guests"`
}

type stepRequest struct {
	Step reservation.Step `json:"step"`
}

type approveRequest struct {
	OrderID string `json:"orderId"`
}

type cancelPaymentRequest struct {
	Reason string `json:"reason"`
}

// GetProperty handles GET /api/properties/{id}
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	property, err := h.bookingService.GetProperty(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}

// GetPropertyReviews handles GET /api/properties/{id}/reviews
func (h *Handler) GetPropertyReviews(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	reviews, err := h.bookingService.ListPropertyReviews(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// GetHomeContent handles GET /api/home
func (h *Handler) GetHomeContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.bookingService.GetHomeContent(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, content)
}

// SubmitReview handles POST /api/reviews
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if err := decode(r, &review); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.bookingService.SubmitReview(r.Context(), &review)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// StartReservation handles POST /api/reservations
func (h *Handler) StartReservation(w http.ResponseWriter, r *http.Request) {
	var req startReservationRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PropertyID == "" {
		respondError(w, http.StatusBadRequest, "Property ID is required")
		return
	}

	snap, err := h.bookingService.StartReservation(r.Context(), req.PropertyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// GetReservation handles GET /api/reservations/{id}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookingService.GetReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetPricing handles GET /api/reservations/{id}/pricing
func (h *Handler) GetPricing(w http.ResponseWriter, r *http.Request) {
	result, err := h.bookingService.GetPricing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SubmitContact handles POST /api/reservations/{id}/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var contact models.ContactInfo
	if err := decode(r, &contact); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	snap, err := h.bookingService.SubmitContact(r.Context(), mux.Vars(r)["id"], contact)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// SetDates handles PUT /api/reservations/{id}/dates
func (h *Handler) SetDates(w http.ResponseWriter, r *http.Request) {
	var req datesRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	dates := pricing.DateRange{Start: req.CheckIn, End: req.CheckOut}
	snap, err := h.bookingService.SetDates(r.Context(), mux.Vars(r)["id"], dates, req.Guests)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// ContinueToPayment handles POST /api/reservations/{id}/continue
func (h *Handler) ContinueToPayment(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookingService.ContinueToPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GoToStep handles POST /api/reservations/{id}/step
func (h *Handler) GoToStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid step")
		return
	}
	snap, err := h.bookingService.GoToStep(r.Context(), mux.Vars(r)["id"], req.Step)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// BeginPayment handles POST /api/reservations/{id}/payment
func (h *Handler) BeginPayment(w http.ResponseWriter, r *http.Request) {
	handle, err := h.bookingService.BeginPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, handle)
}

// ApprovePayment handles POST /api/reservations/{id}/payment/approve
func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decode(r, &req); err != nil || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "Order ID is required")
		return
	}
	conf, err := h.bookingService.ApprovePayment(r.Context(), mux.Vars(r)["id"], req.OrderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conf)
}

// CancelPayment handles POST /api/reservations/{id}/payment/cancel
func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	var req cancelPaymentRequest
	// an empty body is a plain cancel
	_ = decode(r, &req)
	if req.Reason == "" {
		req.Reason = "cancelled by payer"
	}
	snap, err := h.bookingService.CancelPayment(r.Context(), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// AbandonReservation handles DELETE /api/reservations/{id}
func (h *Handler) AbandonReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.AbandonReservation(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WatchReservation handles GET /ws/reservations/{id}
func (h *Handler) WatchReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	flowID, err := uuid.Parse(id)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid reservation ID")
		return
	}
	if _, err := h.bookingService.GetReservation(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	h.hub.Serve(w, r, flowID)
}
