package reservation

import (
	"sync"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/google/uuid"
)

// Registry holds the flows of guests currently booking
type Registry struct {
	mu        sync.RWMutex
	flows     map[string]*Flow
	customers CustomerCreator
	payments  Payments
}

func NewRegistry(customers CustomerCreator, payments Payments) *Registry {
	return &Registry{
		flows:     make(map[string]*Flow),
		customers: customers,
		payments:  payments,
	}
}

// Create starts a flow for property
func (r *Registry) Create(property *models.Property) *Flow {
	f := NewFlow(uuid.New().String(), property, r.customers, r.payments)

	r.mu.Lock()
	r.flows[f.ID()] = f
	r.mu.Unlock()
	return f
}

func (r *Registry) Get(id string) (*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

// Remove closes and forgets a flow
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	f, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	f.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}
