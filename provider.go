package venmoauth

import (
	"context"
	"net/http"
	"time"
)

// Provider receives notifications from the callback flow.
// Both methods run on the request goroutine with the request context, so
// they may block on I/O such as provisioning a local user record.
type Provider interface {
	// Authenticated is invoked once the profile has been fetched. It may set
	// or replace ac.Identity and edit ac.Properties. A non-nil error aborts
	// the flow and nothing is signed in.
	Authenticated(ctx context.Context, ac *AuthenticatedContext) error

	// ReturnEndpoint is invoked after sign-in or failure, before the handler
	// issues the final redirect. Call rc.RequestCompleted to take over the response.
	ReturnEndpoint(ctx context.Context, rc *ReturnEndpointContext) error
}

// ProviderFuncs implements Provider with optional callbacks. Nil fields are no-ops.
type ProviderFuncs struct {
	OnAuthenticated  func(ctx context.Context, ac *AuthenticatedContext) error
	OnReturnEndpoint func(ctx context.Context, rc *ReturnEndpointContext) error
}

func (p ProviderFuncs) Authenticated(ctx context.Context, ac *AuthenticatedContext) error {
	if p.OnAuthenticated == nil {
		return nil
	}
	return p.OnAuthenticated(ctx, ac)
}

func (p ProviderFuncs) ReturnEndpoint(ctx context.Context, rc *ReturnEndpointContext) error {
	if p.OnReturnEndpoint == nil {
		return nil
	}
	return p.OnReturnEndpoint(ctx, rc)
}

// SignInFunc is the host's sign-in mechanism. It receives the identity
// (already stamped with the sign-in authentication type) and the recovered
// properties, and typically issues a session cookie.
type SignInFunc func(w http.ResponseWriter, r *http.Request, id *Identity, props *Properties) error

// Observer is notified of flow outcomes. Implementations must be safe for concurrent use.
type Observer interface {
	ChallengeIssued()
	CallbackCompleted(stage Stage, err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ChallengeIssued() {}

func (nopObserver) CallbackCompleted(Stage, error, time.Duration) {}
