package venmoauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	maxProfileBytes = 1 << 20
	maxErrorBytes   = 4 << 10
)

// oauthConfig returns the x/oauth2 configuration for a given callback URL.
// Venmo expects client credentials in the request body.
func (h *Handler) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.ClientID,
		ClientSecret: h.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       h.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   h.cfg.AuthorizationEndpoint,
			TokenURL:  h.cfg.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (h *Handler) contextWithHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, h.opts.httpClient)
}

// exchange trades the authorization code for tokens. A code is sent at most
// once; replays are rejected by Venmo and surface as ErrTokenExchange.
func (h *Handler) exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.BackchannelTimeout)
	defer cancel()

	token, err := h.oauthConfig(redirectURI).Exchange(h.contextWithHTTPClient(ctx), code)
	if err != nil {
		fe := fail(StageExchangingToken, errors.Join(ErrTokenExchange, err))
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			fe.Raw = string(re.Body)
		}
		return nil, fe
	}
	return token, nil
}

// fetchProfile loads the user object with the access token as a bearer credential.
func (h *Handler) fetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.BackchannelTimeout)
	defer cancel()

	client := h.oauthConfig("").Client(h.contextWithHTTPClient(ctx), token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.UserInfoEndpoint, nil)
	if err != nil {
		return nil, fail(StageFetchingProfile, errors.Join(ErrProfileFetch, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fail(StageFetchingProfile, errors.Join(ErrProfileFetch, fmt.Errorf("fetch profile: %w", err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &FlowError{
			Stage: StageFetchingProfile,
			Err:   errors.Join(ErrProfileFetch, fmt.Errorf("profile request failed: status=%d", resp.StatusCode)),
			Raw:   string(body),
		}
	}

	profile, err := decodeProfile(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fail(StageFetchingProfile, errors.Join(ErrProfileFetch, fmt.Errorf("decode profile: %w", err)))
	}
	return profile, nil
}

// decodeProfile parses a user object. The Venmo API wraps it as
// {"data":{"user":{...}}}; a bare object is accepted too.
func decodeProfile(r io.Reader) (Profile, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("profile is null")
	}

	if data, ok := raw["data"].(map[string]any); ok {
		if user, ok := data["user"].(map[string]any); ok {
			return Profile(user), nil
		}
		if _, hasID := raw["id"]; !hasID {
			return Profile(data), nil
		}
	}
	return Profile(raw), nil
}
