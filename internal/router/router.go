package router

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/handlers"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// Config holds router settings
type Config struct {
	Sessions       session.Store
	RequestTimeout time.Duration
	// PaymentTimeout bounds the routes that open and capture payments.
	// It must exceed the longest wait of the payment backend.
	PaymentTimeout time.Duration
	SessionTTL     time.Duration
	SecureCookies  bool
}

// routePayment names the routes held to PaymentTimeout
const routePayment = "payment"

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, cfg Config) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(sessionMiddleware(cfg))

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(timeoutMiddleware(cfg))

	// Guest pages
	api.HandleFunc("/home", h.GetHomeContent).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/properties/{id}", h.GetProperty).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/properties/{id}/reviews", h.GetPropertyReviews).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reviews", h.SubmitReview).Methods(http.MethodPost, http.MethodOptions)

	// Reservation wizard
	api.HandleFunc("/reservations", h.StartReservation).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reservations/{id}", h.GetReservation).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reservations/{id}", h.AbandonReservation).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/reservations/{id}/pricing", h.GetPricing).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reservations/{id}/contact", h.SubmitContact).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reservations/{id}/dates", h.SetDates).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/reservations/{id}/continue", h.ContinueToPayment).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reservations/{id}/step", h.GoToStep).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reservations/{id}/payment", h.BeginPayment).Methods(http.MethodPost, http.MethodOptions).Name(routePayment + ".begin")
	api.HandleFunc("/reservations/{id}/payment/approve", h.ApprovePayment).Methods(http.MethodPost, http.MethodOptions).Name(routePayment + ".approve")
	api.HandleFunc("/reservations/{id}/payment/cancel", h.CancelPayment).Methods(http.MethodPost, http.MethodOptions)

	// Auth
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost, http.MethodOptions)

	// Back office
	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(requireToken)
	adm.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/bookings/{id}/status", h.UpdateBookingStatus).Methods(http.MethodPut, http.MethodOptions)
	adm.HandleFunc("/properties", h.ListProperties).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/properties/{id}", h.UpdateProperty).Methods(http.MethodPut, http.MethodOptions)
	adm.HandleFunc("/amenities", h.ListAmenities).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/amenities", h.CreateAmenity).Methods(http.MethodPost, http.MethodOptions)
	adm.HandleFunc("/amenities/{id}", h.UpdateAmenity).Methods(http.MethodPut, http.MethodOptions)
	adm.HandleFunc("/amenities/{id}", h.DeleteAmenity).Methods(http.MethodDelete, http.MethodOptions)
	adm.HandleFunc("/reviews", h.ListReviews).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/reviews/{id}", h.DeleteReview).Methods(http.MethodDelete, http.MethodOptions)
	adm.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/payments/{reservationId}/journal", h.PaymentJournal).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet, http.MethodOptions)
	adm.HandleFunc("/home", h.UpdateHomeContent).Methods(http.MethodPut, http.MethodOptions)
	adm.HandleFunc("/home/images", h.AddHomeImage).Methods(http.MethodPost, http.MethodOptions)
	adm.HandleFunc("/home/images/{id}", h.DeleteHomeImage).Methods(http.MethodDelete, http.MethodOptions)

	// WebSocket for checkout updates
	r.HandleFunc("/ws/reservations/{id}", h.WatchReservation)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

// timeoutMiddleware gives each API request its deadline: PaymentTimeout
// for payment routes, RequestTimeout for the rest. Zero means none.
func timeoutMiddleware(cfg Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		standard, payment := next, next
		if cfg.RequestTimeout > 0 {
			standard = middleware.Timeout(cfg.RequestTimeout)(next)
		}
		if cfg.PaymentTimeout > 0 {
			payment = middleware.Timeout(cfg.PaymentTimeout)(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if route := mux.CurrentRoute(r); route != nil && strings.HasPrefix(route.GetName(), routePayment+".") {
				payment.ServeHTTP(w, r)
				return
			}
			standard.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware loads the session named by the cookie, issuing a new
// cookie when there is none
func sessionMiddleware(cfg Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Sessions == nil {
				next.ServeHTTP(w, r)
				return
			}

			var id string
			if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
				id = c.Value
			} else {
				id = session.NewID()
				cookie := &http.Cookie{
					Name:     session.CookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookies,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.SessionTTL > 0 {
					cookie.MaxAge = int(cfg.SessionTTL.Seconds())
				}
				http.SetCookie(w, cookie)
			}

			ctx := session.NewContext(r.Context(), session.New(id, cfg.Sessions))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireToken rejects back-office requests from sessions without a token
func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		token, err := session.FromContext(r.Context()).Token(r.Context())
		if err != nil || token == "" {
			if err != nil && !errors.Is(err, session.ErrNoToken) {
				log.Printf("Failed to load session: %v", err)
			}
			handlers.RespondUnauthorized(w, "Please sign in to continue.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
