package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/venmoauth"
)

// Redis keeps state in Redis so any replica can finish a flow another one
// started. Each state is consumed atomically with GETDEL.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ venmoauth.StateDataFormat = (*Redis)(nil)

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix. Default: "venmoauth:state".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL sets how long a state stays valid. Default: venmoauth.DefaultStateTTL.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis creates a Redis-backed store. The client is typically obtained from OpenRedis.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "venmoauth:state",
		ttl:    venmoauth.DefaultStateTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Protect(ctx context.Context, props *venmoauth.Properties) (string, error) {
	if props == nil {
		props = &venmoauth.Properties{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := r.client.Set(ctx, r.key(id), data, r.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Redis) Unprotect(ctx context.Context, state string) (*venmoauth.Properties, error) {
	data, err := r.client.GetDel(ctx, r.key(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Join(venmoauth.ErrInvalidState, ErrNotFound)
		}
		return nil, errors.Join(venmoauth.ErrInvalidState, err)
	}

	var props venmoauth.Properties
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, errors.Join(venmoauth.ErrInvalidState, err)
	}
	return &props, nil
}

func (r *Redis) key(id string) string {
	return r.prefix + ":" + id
}
