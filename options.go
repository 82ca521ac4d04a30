package venmoauth

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/venmoauth/pkg/logger"
	"github.com/dmitrymomot/venmoauth/pkg/securedata"
)

// Defaults.
const (
	DefaultAuthenticationType    = "Venmo"
	DefaultCallbackPath          = "/signin-venmo"
	DefaultBackchannelTimeout    = 60 * time.Second
	DefaultAuthorizationEndpoint = "https://api.venmo.com/v1/oauth/authorize"
	DefaultTokenEndpoint         = "https://api.venmo.com/v1/oauth/access_token"
	DefaultUserInfoEndpoint      = "https://api.venmo.com/v1/me"
)

// DefaultScopes returns the permissions requested when Config.Scopes is empty.
func DefaultScopes() []string {
	return []string{"access_email", "access_phone", "access_profile"}
}

// Config holds the Venmo application settings.
type Config struct {
	ClientID     string `env:"VENMO_CLIENT_ID,required" yaml:"client_id"`
	ClientSecret string `env:"VENMO_CLIENT_SECRET,required" yaml:"client_secret"`

	// CallbackPath is where Venmo redirects the browser back. Default: /signin-venmo.
	CallbackPath string   `env:"VENMO_CALLBACK_PATH" envDefault:"/signin-venmo" yaml:"callback_path"`
	Scopes       []string `env:"VENMO_SCOPES" envSeparator:"," yaml:"scopes"`

	// BackchannelTimeout bounds each server-to-server call. Default: 60s.
	BackchannelTimeout time.Duration `env:"VENMO_BACKCHANNEL_TIMEOUT" envDefault:"60s" yaml:"backchannel_timeout"`

	// Endpoint overrides, e.g. for a sandbox deployment.
	AuthorizationEndpoint string `env:"VENMO_AUTHORIZATION_ENDPOINT" yaml:"authorization_endpoint"`
	TokenEndpoint         string `env:"VENMO_TOKEN_ENDPOINT" yaml:"token_endpoint"`
	UserInfoEndpoint      string `env:"VENMO_USERINFO_ENDPOINT" yaml:"userinfo_endpoint"`

	// AuthenticationType names this provider. Default: Venmo.
	AuthenticationType string `env:"VENMO_AUTHENTICATION_TYPE" yaml:"authentication_type"`
	// SignInAsAuthenticationType, when set, is stamped on the signed-in identity
	// instead of AuthenticationType.
	SignInAsAuthenticationType string `env:"VENMO_SIGN_IN_AS" yaml:"sign_in_as"`
	// Caption is a display label for sign-in UIs. Default: Venmo.
	Caption string `env:"VENMO_CAPTION" yaml:"caption"`

	// StateSecret keys the default sealed state format. Ignored when
	// WithStateDataFormat is used. Must be 32+ bytes.
	StateSecret string        `env:"VENMO_STATE_SECRET" yaml:"state_secret"`
	StateTTL    time.Duration `env:"VENMO_STATE_TTL" envDefault:"15m" yaml:"state_ttl"`

	// NamePreference selects the source of the name claim. Default: username.
	NamePreference NamePreference `env:"VENMO_NAME_PREFERENCE" yaml:"name_preference"`
}

// Option configures a Handler.
type Option func(*options)

type options struct {
	stateFormat  StateDataFormat
	provider     Provider
	httpClient   *http.Client
	transport    http.RoundTripper
	tlsConfig    *tls.Config
	signIn       SignInFunc
	logger       *slog.Logger
	observer     Observer
	secureCookie bool
}

// WithStateDataFormat injects the codec used for the state parameter.
func WithStateDataFormat(f StateDataFormat) Option {
	return func(o *options) {
		o.stateFormat = f
	}
}

// WithProvider sets the notification hooks.
func WithProvider(p Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithHTTPClient sets the client used for backchannel calls. Its Timeout is
// left untouched; BackchannelTimeout is applied per call through the context.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTransport sets the round tripper used for backchannel calls.
// Ignored when WithHTTPClient is set.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithTLSConfig validates backchannel server certificates with cfg, e.g. to
// pin Venmo's certificate through VerifyPeerCertificate.
// Ignored when WithHTTPClient or WithTransport is set.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithSignIn sets the host sign-in mechanism.
func WithSignIn(fn SignInFunc) Option {
	return func(o *options) {
		o.signIn = fn
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver sets the flow observer, see pkg/metrics.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithSecureCookies marks the correlation cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(o *options) {
		o.secureCookie = secure
	}
}

// withDefaults fills zero values and validates cfg.
func (cfg Config) withDefaults() (Config, error) {
	if cfg.ClientID == "" {
		return cfg, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return cfg, ErrMissingClientSecret
	}

	if cfg.CallbackPath == "" {
		cfg.CallbackPath = DefaultCallbackPath
	}
	if !strings.HasPrefix(cfg.CallbackPath, "/") {
		return cfg, ErrInvalidCallbackPath
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.BackchannelTimeout <= 0 {
		cfg.BackchannelTimeout = DefaultBackchannelTimeout
	}
	if cfg.AuthorizationEndpoint == "" {
		cfg.AuthorizationEndpoint = DefaultAuthorizationEndpoint
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = DefaultTokenEndpoint
	}
	if cfg.UserInfoEndpoint == "" {
		cfg.UserInfoEndpoint = DefaultUserInfoEndpoint
	}
	for _, ep := range []string{cfg.AuthorizationEndpoint, cfg.TokenEndpoint, cfg.UserInfoEndpoint} {
		if !isAbsoluteHTTPURL(ep) {
			return cfg, ErrInvalidEndpoint
		}
	}
	if cfg.AuthenticationType == "" {
		cfg.AuthenticationType = DefaultAuthenticationType
	}
	if cfg.Caption == "" {
		cfg.Caption = DefaultAuthenticationType
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = DefaultStateTTL
	}
	if cfg.NamePreference == "" {
		cfg.NamePreference = NameFromUserName
	}
	return cfg, nil
}

func (o *options) resolve(cfg Config) error {
	if o.stateFormat == nil {
		if cfg.StateSecret == "" {
			return ErrMissingStateFormat
		}
		p, err := securedata.New(cfg.StateSecret)
		if err != nil {
			return ErrMissingStateFormat
		}
		o.stateFormat = NewSealedStateFormat(p, cfg.StateTTL)
	}
	if o.provider == nil {
		o.provider = ProviderFuncs{}
	}
	if o.logger == nil {
		o.logger = logger.NewNope()
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.httpClient == nil {
		rt := o.transport
		if rt == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			if o.tlsConfig != nil {
				t.TLSClientConfig = o.tlsConfig
			}
			rt = t
		}
		o.httpClient = &http.Client{Transport: rt}
	}
	return nil
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
