package venmoauth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrymomot/venmoauth/pkg/securedata"
)

// StatePurpose binds sealed state tokens to this handler.
const StatePurpose = "venmoauth.state.v1"

// DefaultStateTTL bounds how long a user may stay on the Venmo consent page.
const DefaultStateTTL = 15 * time.Minute

// StateDataFormat turns authentication properties into the opaque state
// parameter and back. Unprotect must fail for corrupt, expired or tampered
// input; an error there never yields an identity.
type StateDataFormat interface {
	Protect(ctx context.Context, props *Properties) (string, error)
	Unprotect(ctx context.Context, state string) (*Properties, error)
}

// SealedStateFormat is a stateless StateDataFormat: properties are encrypted
// into the state value itself.
type SealedStateFormat struct {
	protector *securedata.Protector
	ttl       time.Duration
}

// NewSealedStateFormat returns a StateDataFormat backed by p. A non-positive
// ttl selects DefaultStateTTL.
func NewSealedStateFormat(p *securedata.Protector, ttl time.Duration) *SealedStateFormat {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &SealedStateFormat{protector: p, ttl: ttl}
}

func (f *SealedStateFormat) Protect(_ context.Context, props *Properties) (string, error) {
	if props == nil {
		props = &Properties{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return f.protector.Protect(StatePurpose, data, f.ttl)
}

func (f *SealedStateFormat) Unprotect(_ context.Context, state string) (*Properties, error) {
	data, err := f.protector.Unprotect(StatePurpose, state)
	if err != nil {
		return nil, errors.Join(ErrInvalidState, err)
	}
	var props Properties
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, errors.Join(ErrInvalidState, err)
	}
	return &props, nil
}
