// Package session issues the demo's signed session cookie once Venmo sign-in
// succeeds. The cookie holds an HS256 JWT built from the signed-in identity.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/venmoauth"
)

const issuer = "venmoauth-demo"

// Errors returned by Manager.
var (
	ErrNoSession      = errors.New("session: no session cookie")
	ErrInvalidSession = errors.New("session: invalid session token")
	ErrNoSubject      = errors.New("session: identity has no name identifier")
)

// Claims are the session contents.
type Claims struct {
	jwt.RegisteredClaims
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	AuthenticationType string `json:"amr,omitempty"`
}

// Manager writes and reads the session cookie. It is safe for concurrent use.
type Manager struct {
	secret []byte
	cookie string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithSecure marks the cookie Secure.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New returns a Manager that signs tokens with secret and stores them in the
// cookieName cookie for ttl.
func New(secret, cookieName string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		cookie: cookieName,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SignIn is a venmoauth.SignInFunc.
func (m *Manager) SignIn(w http.ResponseWriter, _ *http.Request, id *venmoauth.Identity, _ *venmoauth.Properties) error {
	sub, ok := id.FindFirst(venmoauth.ClaimTypeNameIdentifier)
	if !ok {
		return ErrNoSubject
	}
	email, _ := id.FindFirst(venmoauth.ClaimTypeEmail)

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Name:               id.Name(),
		Email:              email,
		AuthenticationType: id.AuthenticationType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the claims of the session carried by r.
func (m *Manager) Current(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return &claims, nil
}

// SignOut clears the session cookie.
func (m *Manager) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
