package venmoauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/venmoauth/pkg/logger"
)

// Interceptor is the contract a host pipeline uses to hand requests to an
// authentication handler. Intercept reports whether the response was written.
type Interceptor interface {
	Intercept(w http.ResponseWriter, r *http.Request) bool
}

var _ Interceptor = (*Handler)(nil)

// Handler runs the Venmo authorization-code flow. It is immutable after New
// and safe for concurrent use; all flow state lives in the request.
type Handler struct {
	opts options
	cfg  Config
}

// Description is what a sign-in UI needs to render a button for this provider.
type Description struct {
	AuthenticationType string
	Caption            string
}

// New validates cfg and builds a Handler.
// Configuration errors are returned here, never per request.
func New(cfg Config, opts ...Option) (*Handler, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.resolve(cfg); err != nil {
		return nil, err
	}

	cfg.Scopes = slices.Clone(cfg.Scopes)
	return &Handler{cfg: cfg, opts: o}, nil
}

// NewWithCredentials builds a Handler with default settings.
func NewWithCredentials(clientID, clientSecret string, opts ...Option) (*Handler, error) {
	return New(Config{ClientID: clientID, ClientSecret: clientSecret}, opts...)
}

// MustNew is like New but panics on a configuration error.
func MustNew(cfg Config, opts ...Option) *Handler {
	h, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// Config returns the effective configuration with defaults applied.
func (h *Handler) Config() Config {
	cfg := h.cfg
	cfg.Scopes = slices.Clone(h.cfg.Scopes)
	return cfg
}

// Description returns the provider's display information.
func (h *Handler) Description() Description {
	return Description{AuthenticationType: h.cfg.AuthenticationType, Caption: h.cfg.Caption}
}

// CallbackPath returns the path Venmo redirects back to.
func (h *Handler) CallbackPath() string {
	return h.cfg.CallbackPath
}

// CallbackURL returns the absolute callback URL for the host serving r.
// The scheme honors TLS and X-Forwarded-Proto.
func (h *Handler) CallbackURL(r *http.Request) string {
	return requestBase(r) + h.cfg.CallbackPath
}

// AuthorizationURL prepares a flow for the browser behind r and returns the
// Venmo authorization URL. It stamps props, writes the correlation cookie to
// w and seals props into the state parameter, so the URL may be rendered as
// a link instead of redirecting. props may be nil; when it has no
// RedirectURI the user returns to the current request URI after sign-in.
func (h *Handler) AuthorizationURL(w http.ResponseWriter, r *http.Request, props *Properties) (string, error) {
	props = props.Clone()
	if props == nil {
		props = &Properties{}
	}
	if props.RedirectURI == "" {
		props.RedirectURI = r.URL.RequestURI()
	}
	now := time.Now().UTC()
	props.IssuedAt = now
	props.ExpiresAt = now.Add(h.cfg.StateTTL)

	h.generateCorrelation(w, props)

	state, err := h.opts.stateFormat.Protect(r.Context(), props)
	if err != nil {
		return "", fmt.Errorf("venmoauth: protect state: %w", err)
	}
	return h.oauthConfig(h.CallbackURL(r)).AuthCodeURL(state), nil
}

// Challenge redirects the browser to Venmo. See AuthorizationURL for props.
func (h *Handler) Challenge(w http.ResponseWriter, r *http.Request, props *Properties) error {
	authURL, err := h.AuthorizationURL(w, r, props)
	if err != nil {
		return err
	}

	h.opts.observer.ChallengeIssued()
	w.Header().Set("Location", authURL)
	w.WriteHeader(http.StatusFound)
	return nil
}

// IsCallback reports whether r is Venmo redirecting back to this handler.
// Only GET qualifies: the code is single use, so HEAD requests from link
// scanners must not consume it.
func (h *Handler) IsCallback(r *http.Request) bool {
	return r.URL.Path == h.cfg.CallbackPath && r.Method == http.MethodGet
}

// Middleware handles callback requests and passes everything else, as well
// as failed callbacks nobody redirected, to next.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Intercept(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Intercept processes r if it is a callback and reports whether the response was written.
func (h *Handler) Intercept(w http.ResponseWriter, r *http.Request) bool {
	if !h.IsCallback(r) {
		return false
	}
	return h.handleCallback(w, r)
}

// ServeHTTP serves the callback path directly. Unhandled outcomes get 401.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.IsCallback(r) {
		http.NotFound(w, r)
		return
	}
	if !h.handleCallback(w, r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
}

// Authenticate runs the callback up to identity construction without signing
// in or writing anything but the correlation cookie deletion. Errors are *FlowError.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) (*Ticket, error) {
	ticket, _, err := h.authenticate(w, r)
	return ticket, err
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) bool {
	start := time.Now()
	ctx := withFlowID(r.Context(), uuid.NewString())
	r = r.WithContext(ctx)

	ticket, props, err := h.authenticate(w, r)
	if err == nil {
		err = h.signIn(w, r, ticket)
	}

	stage := StageSignedIn
	if err != nil {
		stage = StageOf(err)
		h.opts.logger.WarnContext(ctx, "venmo authentication failed",
			slog.String("stage", stage.String()),
			slog.String("error", err.Error()),
		)
	} else {
		h.opts.logger.InfoContext(ctx, "venmo authentication succeeded",
			slog.String("venmo_user_id", ticket.Context.ID),
		)
	}
	h.opts.observer.CallbackCompleted(stage, err, time.Since(start))

	return h.returnEndpoint(w, r, ticket, props, err)
}

// authenticate is the callback state machine. props is returned whenever
// the state token could be decoded, even if a later stage failed.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*Ticket, *Properties, error) {
	ctx := r.Context()
	q := r.URL.Query()

	// AwaitingCode
	if e := q.Get("error"); e != "" {
		fe := fail(StageAwaitingCode, ErrProviderDenied)
		fe.Raw = strings.TrimSpace(e + " " + q.Get("error_description"))
		return nil, nil, fe
	}
	code := q.Get("code")
	if code == "" {
		return nil, nil, fail(StageAwaitingCode, ErrMissingCode)
	}

	// ValidatingState
	state := q.Get("state")
	if state == "" {
		return nil, nil, fail(StageValidatingState, ErrInvalidState)
	}
	props, err := h.opts.stateFormat.Unprotect(ctx, state)
	if err != nil || props == nil {
		return nil, nil, fail(StageValidatingState, errors.Join(ErrInvalidState, err))
	}
	if !h.validateCorrelation(w, r, props) {
		return nil, props, fail(StageValidatingState, ErrCorrelationFailed)
	}

	// ExchangingToken
	token, err := h.exchange(ctx, code, h.CallbackURL(r))
	if err != nil {
		return nil, props, err
	}

	// FetchingProfile
	profile, err := h.fetchProfile(ctx, token)
	if err != nil {
		return nil, props, err
	}

	// BuildingIdentity
	ac := NewAuthenticatedContext(r, profile, token)
	ac.Properties = props
	if err := safeCall(func() error { return h.opts.provider.Authenticated(ctx, ac) }); err != nil {
		return nil, props, fail(StageBuildingIdentity, errors.Join(ErrHookRejected, err))
	}
	if ac.Identity == nil {
		ac.Identity = defaultIdentity(h.cfg.AuthenticationType, h.cfg.NamePreference, ac)
	}
	if ac.Properties == nil {
		ac.Properties = props
	}

	return &Ticket{Identity: ac.Identity, Properties: ac.Properties, Context: ac}, ac.Properties, nil
}

// signIn stamps the identity with the sign-in type and hands it to the host.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, t *Ticket) error {
	t.Identity.AuthenticationType = h.signInAs()
	if h.opts.signIn == nil {
		return nil
	}
	if err := safeCall(func() error { return h.opts.signIn(w, r, t.Identity, t.Properties) }); err != nil {
		return fail(StageSignedIn, errors.Join(ErrSignIn, err))
	}
	return nil
}

func (h *Handler) signInAs() string {
	if h.cfg.SignInAsAuthenticationType != "" {
		return h.cfg.SignInAsAuthenticationType
	}
	return h.cfg.AuthenticationType
}

// returnEndpoint lets the host finish the request and otherwise redirects
// to the recovered RedirectURI.
func (h *Handler) returnEndpoint(w http.ResponseWriter, r *http.Request, t *Ticket, props *Properties, flowErr error) bool {
	rc := &ReturnEndpointContext{
		Request:                    r,
		Response:                   w,
		Properties:                 props,
		Err:                        flowErr,
		SignInAsAuthenticationType: h.signInAs(),
	}
	if flowErr == nil && t != nil {
		rc.Identity = t.Identity
	}
	if props != nil {
		rc.RedirectURI = props.RedirectURI
	}

	if err := safeCall(func() error { return h.opts.provider.ReturnEndpoint(r.Context(), rc) }); err != nil {
		h.opts.logger.WarnContext(r.Context(), "venmo return endpoint hook failed", slog.String("error", err.Error()))
	}
	if rc.IsRequestCompleted() {
		return true
	}
	if rc.RedirectURI == "" {
		return false
	}

	target := rc.RedirectURI
	if rc.Identity == nil {
		target = addQueryParam(target, "error", "access_denied")
	}
	http.Redirect(w, r, target, http.StatusFound)
	return true
}

// safeCall runs host code and converts a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host
}

func addQueryParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

type flowIDKey struct{}

func withFlowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, flowIDKey{}, id)
}

// FlowID returns the id of the callback flow running in ctx, if any.
func FlowID(ctx context.Context) string {
	v, _ := ctx.Value(flowIDKey{}).(string)
	return v
}

// LogExtractor adds "venmo_flow_id" to log records emitted during a callback.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FlowID(ctx); id != "" {
			return slog.String("venmo_flow_id", id), true
		}
		return slog.Attr{}, false
	}
}
