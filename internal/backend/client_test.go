package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/cache"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionContext(t *testing.T, token string) (context.Context, *session.Session) {
	t.Helper()
	s := session.New("sess-1", session.NewMemoryStore())
	if token != "" {
		require.NoError(t, s.SetToken(context.Background(), token))
	}
	return session.NewContext(context.Background(), s), s
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Amenity{{ID: "1", Name: "Pool"}})
	}))
	defer srv.Close()

	ctx, _ := newSessionContext(t, "secret-token")
	c := New(srv.URL, time.Second)

	amenities, err := c.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Len(t, amenities, 1)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClient_NoSessionSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"title": "Welcome"}`))
	}))
	defer srv.Close()

	home, err := New(srv.URL, time.Second).GetHomeContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome", home.Title)
	assert.Empty(t, gotAuth)
}

func TestClient_ForbiddenClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			ctx, sess := newSessionContext(t, "stale")
			_, err := New(srv.URL, time.Second).ListReservations(ctx)

			assert.ErrorIs(t, err, ErrUnauthorized)
			_, tokenErr := sess.Token(ctx)
			assert.ErrorIs(t, tokenErr, session.ErrNoToken)
		})
	}
}

func TestClient_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond).ListProperties(context.Background())

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).GetProperty(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Contains(t, UserMessage(err), "Cannot reach the server")
}

func TestClient_RejectionMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message field", status: http.StatusUnprocessableEntity, body: `{"message": "Dates are not available"}`, message: "Dates are not available"},
		{name: "error field", status: http.StatusConflict, body: `{"error": "Already booked"}`, message: "Already booked"},
		{name: "no body", status: http.StatusBadRequest, body: ``, message: fallbackMessage},
		{name: "html body", status: http.StatusInternalServerError, body: `<html>oops</html>`, message: fallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).CreateReservation(context.Background(), &models.CreateReservationRequest{})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, UserMessage(err))
		})
	}
}

func TestClient_CreateCustomerParsesNumericID(t *testing.T) {
	var got models.ContactInfo
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1234}`))
	}))
	defer srv.Close()

	id, err := New(srv.URL, time.Second).CreateCustomer(context.Background(), models.ContactInfo{
		FirstName: "John", LastName: "Doe", Email: "john@example.com", PhoneNumber: "555", Country: "US",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ID("1234"), id)
	assert.Equal(t, "john@example.com", got.Email)
}

func TestClient_CreateCustomerWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).CreateCustomer(context.Background(), models.ContactInfo{})
	assert.Error(t, err)
}

func TestClient_MutationInvalidatesCachedReads(t *testing.T) {
	var listCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/amenities":
			listCalls.Add(1)
			json.NewEncoder(w).Encode([]models.Amenity{{ID: "1", Name: "Pool"}})
		case r.Method == http.MethodPost && r.URL.Path == "/amenities":
			w.Write([]byte(`{"id": 2, "name": "Sauna"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, time.Second, WithCache(cache.NewMemoryCache(time.Minute)))

	_, err := c.ListAmenities(ctx)
	require.NoError(t, err)
	_, err = c.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listCalls.Load(), "second read must be served from cache")

	created, err := c.CreateAmenity(ctx, &models.Amenity{Name: "Sauna"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("2"), created.ID)

	_, err = c.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load(), "read after mutation must be fresh")
}

func TestClient_FailedMutationKeepsCache(t *testing.T) {
	var listCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			listCalls.Add(1)
			w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, time.Second, WithCache(cache.NewMemoryCache(0)))

	_, _ = c.ListReservations(ctx)
	_, err := c.UpdateReservationStatus(ctx, "9", models.BookingStatusConfirmed)
	require.Error(t, err)
	_, _ = c.ListReservations(ctx)

	assert.Equal(t, int32(1), listCalls.Load())
}

func TestClient_PaymentHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/orders":
			var req PaymentOrderRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, models.ID("77"), req.ReservationID)
			assert.True(t, decimal.NewFromInt(360).Equal(req.Amount))
			w.Write([]byte(`{"orderId": "ORDER-1"}`))
		case "/payments/orders/ORDER-1/capture":
			w.Write([]byte(`{"orderId": "ORDER-1", "captureId": "CAP-1", "status": "COMPLETED"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, time.Second)

	orderID, err := c.CreatePaymentOrder(ctx, &PaymentOrderRequest{ReservationID: "77", Amount: decimal.NewFromInt(360), Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", orderID)

	capture, err := c.CapturePaymentOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "CAP-1", capture.CaptureID)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"token": "tok-xyz"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	token, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)

	_, err = c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_CanceledContextIsNotUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, time.Second).ListPayments(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnreachable)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(ErrUnauthorized), "sign in")
	assert.Equal(t, "Booked out", UserMessage(&APIError{Status: 409, Message: "Booked out"}))
	assert.Equal(t, fallbackMessage, UserMessage(errors.New("boom")))
}

func TestClient_CacheIsScopedByToken(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer admin-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode([]models.Customer{{ID: "1", FirstName: "John", Email: "john@example.com"}})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithCache(cache.NewMemoryCache(time.Minute)))

	adminCtx, _ := newSessionContext(t, "admin-token")
	customers, err := c.ListCustomers(adminCtx)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	guestStore := session.NewMemoryStore()
	guest := session.New("sess-2", guestStore)
	require.NoError(t, guest.SetToken(context.Background(), "not-an-admin"))
	guestCtx := session.NewContext(context.Background(), guest)

	customers, err = c.ListCustomers(guestCtx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, customers)
	assert.Equal(t, int32(2), hits.Load(), "a different token must reach the backend")
	_, err = guest.Token(context.Background())
	assert.ErrorIs(t, err, session.ErrNoToken)

	_, err = c.ListCustomers(adminCtx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "the admin's own read is still cached")

	_, err = c.ListCustomers(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_RejectedServiceTokenIsKept(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		if len(auths) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	svc := session.NewService("worker", session.NewMemoryStore())
	require.NoError(t, svc.SetToken(context.Background(), "svc-token"))
	ctx := session.NewContext(context.Background(), svc)
	c := New(srv.URL, time.Second)

	_, err := c.ListReservations(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.ListReservations(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer svc-token", "Bearer svc-token"}, auths)
}
