package venmoauth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

// Profile is the raw user object returned by the Venmo user-info endpoint.
// Numbers are kept as json.Number.
type Profile map[string]any

// String returns the scalar value stored under key rendered as a string.
// Missing keys, nulls and nested objects report false.
func (p Profile) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func (p Profile) get(key string) string {
	v, _ := p.String(key)
	return v
}

// TokenPair holds the tokens captured from the exchange.
// RefreshToken is empty unless the granted scope includes it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthenticatedContext is the snapshot of one successful Venmo authentication.
// It is handed to Provider.Authenticated, which may replace Identity or
// edit Properties before the identity is signed in.
type AuthenticatedContext struct {
	Request    *http.Request
	Token      *oauth2.Token
	User       Profile
	Identity   *Identity
	Properties *Properties

	AccessToken  string
	RefreshToken string

	// Derived fields. An empty string means the field was absent from the profile.
	ID          string
	UserName    string
	FirstName   string
	LastName    string
	DisplayName string
	Email       string
	Phone       string
}

// NewAuthenticatedContext derives the simple fields from the user profile.
func NewAuthenticatedContext(r *http.Request, user Profile, token *oauth2.Token) *AuthenticatedContext {
	ac := &AuthenticatedContext{
		Request:     r,
		Token:       token,
		User:        user,
		ID:          user.get("id"),
		UserName:    user.get("username"),
		FirstName:   user.get("first_name"),
		LastName:    user.get("last_name"),
		DisplayName: user.get("display_name"),
		Email:       user.get("email"),
		Phone:       user.get("phone"),
	}
	if token != nil {
		ac.AccessToken = token.AccessToken
		ac.RefreshToken = token.RefreshToken
	}
	return ac
}

// Tokens returns the access and refresh tokens.
func (c *AuthenticatedContext) Tokens() TokenPair {
	return TokenPair{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken}
}

// ReturnEndpointContext is passed to Provider.ReturnEndpoint after the
// callback either signed in an identity or failed. Identity is nil and Err
// is set on failure.
type ReturnEndpointContext struct {
	Request  *http.Request
	Response http.ResponseWriter
	Identity *Identity
	// Properties are the ones recovered from the state token; nil when the state was unreadable.
	Properties                 *Properties
	Err                        error
	SignInAsAuthenticationType string
	RedirectURI                string

	completed bool
}

// RequestCompleted tells the handler the hook has written the response itself.
func (c *ReturnEndpointContext) RequestCompleted() {
	c.completed = true
}

// IsRequestCompleted reports whether RequestCompleted was called.
func (c *ReturnEndpointContext) IsRequestCompleted() bool {
	return c.completed
}

// Ticket is the outcome of a successful callback.
type Ticket struct {
	Identity   *Identity
	Properties *Properties
	Context    *AuthenticatedContext
}
