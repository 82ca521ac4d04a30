// Package config loads the demo service configuration from a YAML file,
// optional .env files and VENMO_* / APP_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/venmoauth"
)

// State backends.
const (
	StateSealed = "sealed"
	StateMemory = "memory"
	StateRedis  = "redis"
)

var (
	ErrMissingCredentials = errors.New("config: venmo client_id and client_secret are required")
	ErrInvalidBackend     = errors.New("config: state.backend must be sealed, memory or redis")
	ErrMissingRedisURL    = errors.New("config: state.redis_url is required for the redis backend")
	ErrWeakSessionSecret  = errors.New("config: session.secret must be at least 32 bytes")
)

type Config struct {
	Server  ServerConfig     `yaml:"server"`
	Venmo   venmoauth.Config `yaml:"venmo"`
	State   StateConfig      `yaml:"state"`
	Session SessionConfig    `yaml:"session"`
	Log     LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	SecureCookies     bool          `yaml:"secure_cookies"`
}

type StateConfig struct {
	Backend  string        `yaml:"backend"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	SentryDSN   string `yaml:"sentry_dsn"`
	Environment string `yaml:"environment"`
}

// Load reads path (skipped when empty), then the given .env files (missing
// ones are ignored), then the process environment. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.State.Backend == "" {
		c.State.Backend = StateSealed
	}
	if c.State.TTL == 0 {
		c.State.TTL = venmoauth.DefaultStateTTL
	}
	if c.Venmo.StateTTL == 0 {
		c.Venmo.StateTTL = c.State.TTL
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "venmo_session"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Venmo.ClientID == "" || c.Venmo.ClientSecret == "" {
		return ErrMissingCredentials
	}
	switch c.State.Backend {
	case StateSealed, StateMemory:
	case StateRedis:
		if c.State.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return ErrInvalidBackend
	}
	if len(c.Session.Secret) < 32 {
		return ErrWeakSessionSecret
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// SERVER
	if v, ok := getEnvStr("APP_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvBool("APP_SECURE_COOKIES"); ok {
		c.Server.SecureCookies = v
	}
	if v, ok := getEnvDur("APP_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// VENMO
	if v, ok := getEnvStr("VENMO_CLIENT_ID"); ok {
		c.Venmo.ClientID = v
	}
	if v, ok := getEnvStr("VENMO_CLIENT_SECRET"); ok {
		c.Venmo.ClientSecret = v
	}
	if v, ok := getEnvStr("VENMO_CALLBACK_PATH"); ok {
		c.Venmo.CallbackPath = v
	}
	if v, ok := getEnvCSV("VENMO_SCOPES"); ok {
		c.Venmo.Scopes = v
	}
	if v, ok := getEnvDur("VENMO_BACKCHANNEL_TIMEOUT"); ok {
		c.Venmo.BackchannelTimeout = v
	}
	if v, ok := getEnvStr("VENMO_AUTHORIZATION_ENDPOINT"); ok {
		c.Venmo.AuthorizationEndpoint = v
	}
	if v, ok := getEnvStr("VENMO_TOKEN_ENDPOINT"); ok {
		c.Venmo.TokenEndpoint = v
	}
	if v, ok := getEnvStr("VENMO_USERINFO_ENDPOINT"); ok {
		c.Venmo.UserInfoEndpoint = v
	}
	if v, ok := getEnvStr("VENMO_SIGN_IN_AS"); ok {
		c.Venmo.SignInAsAuthenticationType = v
	}
	if v, ok := getEnvStr("VENMO_STATE_SECRET"); ok {
		c.Venmo.StateSecret = v
	}
	if v, ok := getEnvStr("VENMO_NAME_PREFERENCE"); ok {
		c.Venmo.NamePreference = venmoauth.NamePreference(v)
	}

	// STATE
	if v, ok := getEnvStr("APP_STATE_BACKEND"); ok {
		c.State.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_URL"); ok {
		c.State.RedisURL = v
	}
	if v, ok := getEnvDur("VENMO_STATE_TTL"); ok {
		c.State.TTL = v
		c.Venmo.StateTTL = v
	}

	// SESSION
	if v, ok := getEnvStr("APP_SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvDur("APP_SESSION_TTL"); ok {
		c.Session.TTL = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := getEnvStr("SENTRY_DSN"); ok {
		c.Log.SentryDSN = v
	}
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.Log.Environment = v
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	out := make([]string, 0)
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
