package venmoauth

import (
	"errors"
	"fmt"
)

// Configuration errors. Returned by New; a handler is never built when any of them occurs.
var (
	// ErrMissingClientID is returned when the Venmo client ID is not provided.
	ErrMissingClientID = errors.New("venmoauth: missing client ID")

	// ErrMissingClientSecret is returned when the Venmo client secret is not provided.
	ErrMissingClientSecret = errors.New("venmoauth: missing client secret")

	// ErrInvalidEndpoint is returned when an endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("venmoauth: endpoint must be an absolute http(s) URL")

	// ErrInvalidCallbackPath is returned when the callback path does not start with "/".
	ErrInvalidCallbackPath = errors.New("venmoauth: callback path must start with /")

	// ErrMissingStateFormat is returned when neither a state data format
	// nor a usable state secret is configured.
	ErrMissingStateFormat = errors.New("venmoauth: state data format or 32+ byte state secret required")
)

// Per-request flow errors. They are always wrapped in a *FlowError.
var (
	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("venmoauth: missing authorization code")

	// ErrInvalidState is returned when the state token is missing, corrupt, expired or tampered.
	ErrInvalidState = errors.New("venmoauth: invalid state")

	// ErrCorrelationFailed is returned when the correlation cookie does not match the state.
	ErrCorrelationFailed = errors.New("venmoauth: correlation failed")

	// ErrProviderDenied is returned when Venmo redirects back with an error parameter.
	ErrProviderDenied = errors.New("venmoauth: provider returned an error")

	// ErrTokenExchange is returned when the code-for-token exchange fails.
	ErrTokenExchange = errors.New("venmoauth: token exchange failed")

	// ErrProfileFetch is returned when the user profile cannot be fetched or parsed.
	ErrProfileFetch = errors.New("venmoauth: profile fetch failed")

	// ErrHookRejected is returned when a Provider hook rejects the authentication.
	ErrHookRejected = errors.New("venmoauth: rejected by provider hook")

	// ErrSignIn is returned when the host sign-in mechanism fails.
	ErrSignIn = errors.New("venmoauth: sign-in failed")
)

// FlowError describes a failed callback. Stage is the state the flow was in
// when it failed; Raw holds the provider's raw error payload when available.
type FlowError struct {
	Err   error
	Raw   string
	Stage Stage
}

func (e *FlowError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%s: %v (provider: %s)", e.Stage, e.Err, e.Raw)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func fail(stage Stage, err error) *FlowError {
	return &FlowError{Stage: stage, Err: err}
}

// StageOf returns the stage a flow error occurred at, or StageFailed if err is not a *FlowError.
func StageOf(err error) Stage {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return StageFailed
}
