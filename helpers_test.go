package venmoauth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venmoauth"
)

const (
	testSecret   = "this-is-a-32-byte-or-longer-key!"
	testAppHost  = "http://app.example.com"
	testClientID = "test-id"
)

// fakeVenmo serves the token and user endpoints.
type fakeVenmo struct {
	*httptest.Server

	token   http.HandlerFunc
	profile http.HandlerFunc

	tokenCalls   atomic.Int32
	profileCalls atomic.Int32

	mu        sync.Mutex
	lastForm  url.Values
	lastAuthz string
}

func newFakeVenmo(t *testing.T, token, profile http.HandlerFunc) *fakeVenmo {
	t.Helper()

	f := &fakeVenmo{token: token, profile: profile}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_ = r.ParseForm()
		f.mu.Lock()
		f.lastForm = r.PostForm
		f.mu.Unlock()
		f.token(w, r)
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		f.profileCalls.Add(1)
		f.mu.Lock()
		f.lastAuthz = r.Header.Get("Authorization")
		f.mu.Unlock()
		f.profile(w, r)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeVenmo) config() venmoauth.Config {
	return venmoauth.Config{
		ClientID:              testClientID,
		ClientSecret:          "test-secret",
		StateSecret:           testSecret,
		AuthorizationEndpoint: f.URL + "/v1/oauth/authorize",
		TokenEndpoint:         f.URL + "/v1/oauth/access_token",
		UserInfoEndpoint:      f.URL + "/v1/me",
	}
}

func (f *fakeVenmo) form() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm
}

func (f *fakeVenmo) authorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuthz
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenOK(access, refresh string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"access_token": access, "token_type": "bearer"}
		if refresh != "" {
			body["refresh_token"] = refresh
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func profileOK(user map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, user)
	}
}

// signInRecorder captures what the handler signs in.
type signInRecorder struct {
	mu         sync.Mutex
	identities []*venmoauth.Identity
	props      []*venmoauth.Properties
}

func (s *signInRecorder) signIn(_ http.ResponseWriter, _ *http.Request, id *venmoauth.Identity, props *venmoauth.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities = append(s.identities, id)
	s.props = append(s.props, props)
	return nil
}

func (s *signInRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities)
}

func (s *signInRecorder) last() *venmoauth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.identities) == 0 {
		return nil
	}
	return s.identities[len(s.identities)-1]
}

// flow is a started authorization flow: the state Venmo would echo back and
// the correlation cookie the browser holds.
type flow struct {
	location *url.URL
	state    string
	cookie   *http.Cookie
}

func startFlow(t *testing.T, h *venmoauth.Handler, path string, props *venmoauth.Properties) flow {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, testAppHost+path, nil)
	require.NoError(t, h.Challenge(w, r, props))
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	var corr *http.Cookie
	for _, c := range w.Result().Cookies() {
		if strings.HasPrefix(c.Name, ".venmoauth.correlation.") {
			corr = c
		}
	}
	require.NotNil(t, corr, "correlation cookie must be set")

	return flow{location: loc, state: loc.Query().Get("state"), cookie: corr}
}

func (f flow) callback(code string) *http.Request {
	q := url.Values{}
	if code != "" {
		q.Set("code", code)
	}
	q.Set("state", f.state)
	r := httptest.NewRequest(http.MethodGet, testAppHost+"/signin-venmo?"+q.Encode(), nil)
	r.AddCookie(&http.Cookie{Name: f.cookie.Name, Value: f.cookie.Value})
	return r
}
