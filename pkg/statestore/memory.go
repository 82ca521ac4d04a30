package statestore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dmitrymomot/venmoauth"
)

// Memory keeps state server-side in process memory. The state parameter is
// a random id, and each id can be unprotected once. Suitable for single
// instance deployments; use Redis when running more than one replica.
type Memory struct {
	c   *gocache.Cache
	mu  sync.Mutex
	ttl time.Duration
}

var _ venmoauth.StateDataFormat = (*Memory)(nil)

// NewMemory creates an in-memory store. A non-positive ttl selects venmoauth.DefaultStateTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = venmoauth.DefaultStateTTL
	}
	return &Memory{c: gocache.New(ttl, time.Minute), ttl: ttl}
}

func (m *Memory) Protect(_ context.Context, props *venmoauth.Properties) (string, error) {
	if props == nil {
		props = &venmoauth.Properties{}
	}
	id := uuid.NewString()
	m.c.Set(id, props.Clone(), m.ttl)
	return id, nil
}

func (m *Memory) Unprotect(_ context.Context, state string) (*venmoauth.Properties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(state)
	if !ok {
		return nil, errors.Join(venmoauth.ErrInvalidState, ErrNotFound)
	}
	m.c.Delete(state)

	props, _ := v.(*venmoauth.Properties)
	return props.Clone(), nil
}

// Len returns the number of pending states.
func (m *Memory) Len() int {
	return m.c.ItemCount()
}
