package handlers

import (
	"net/http"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/listview"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/gorilla/mux"
)

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
}

// listState reads q, filter, sort and dir from the query string
func listState(r *http.Request) listview.State {
	q := r.URL.Query()
	return listview.State{
		Query:  q.Get("q"),
		Filter: q.Get("filter"),
		Sort: listview.Sort{
			Key:       q.Get("sort"),
			Direction: listview.ParseDirection(q.Get("dir")),
		},
	}
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := decode(r, &creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.adminService.Login(r.Context(), creds); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed in"})
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.Logout(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBookings handles GET /api/admin/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.adminService.ListBookings(r.Context(), listState(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// UpdateBookingStatus handles PUT /api/admin/bookings/{id}/status
func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil || req.Status == "" {
		respondError(w, http.StatusBadRequest, "Status is required")
		return
	}
	updated, err := h.adminService.UpdateBookingStatus(r.Context(), models.ID(mux.Vars(r)["id"]), req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// ListProperties handles GET /api/admin/properties
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.adminService.ListProperties(r.Context(), listState(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, properties)
}

// UpdateProperty handles PUT /api/admin/properties/{id}
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePropertyRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	property, err := h.adminService.UpdateProperty(r.Context(), models.ID(mux.Vars(r)["id"]), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}

// ListAmenities handles GET /api/admin/amenities
func (h *Handler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.adminService.ListAmenities(r.Context(), listState(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, amenities)
}

// CreateAmenity handles POST /api/admin/amenities
func (h *Handler) CreateAmenity(w http.ResponseWriter, r *http.Request) {
	var amenity models.Amenity
	if err := decode(r, &amenity); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.adminService.CreateAmenity(r.Context(), &amenity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateAmenity handles PUT /api/admin/amenities/{id}
func (h *Handler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	var amenity models.Amenity
	if err := decode(r, &amenity); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated, err := h.adminService.UpdateAmenity(r.Context(), models.ID(mux.Vars(r)["id"]), &amenity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteAmenity handles DELETE /api/admin/amenities/{id}
func (h *Handler) DeleteAmenity(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteAmenity(r.Context(), models.ID(mux.Vars(r)["id"])); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReviews handles GET /api/admin/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.adminService.ListReviews(r.Context(), listState(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// DeleteReview handles DELETE /api/admin/reviews/{id}
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteReview(r.Context(), models.ID(mux.Vars(r)["id"])); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPayments handles GET /api/admin/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.adminService.ListPayments(r.Context(), listState(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// PaymentJournal handles GET /api/admin/payments/{reservationId}/journal
func (h *Handler) PaymentJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.adminService.PaymentJournal(r.Context(), models.ID(mux.Vars(r)["reservationId"]))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListCustomers handles GET /api/admin/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.adminService.ListCustomers(r.Context(), listState(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

// UpdateHomeContent handles PUT /api/admin/home
func (h *Handler) UpdateHomeContent(w http.ResponseWriter, r *http.Request) {
	var content models.HomeContent
	if err := decode(r, &content); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated, err := h.adminService.UpdateHomeContent(r.Context(), &content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// AddHomeImage handles POST /api/admin/home/images
func (h *Handler) AddHomeImage(w http.ResponseWriter, r *http.Request) {
	var img models.HomeImage
	if err := decode(r, &img); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.adminService.AddHomeImage(r.Context(), &img)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// DeleteHomeImage handles DELETE /api/admin/home/images/{id}
func (h *Handler) DeleteHomeImage(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteHomeImage(r.Context(), models.ID(mux.Vars(r)["id"])); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
