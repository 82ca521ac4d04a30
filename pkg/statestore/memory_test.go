package statestore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venmoauth"
	"github.com/dmitrymomot/venmoauth/pkg/statestore"
)

func TestMemory_RoundTrip(t *testing.T) {
	t.Parallel()

	m := statestore.NewMemory(time.Minute)
	props := venmoauth.NewProperties("/dashboard")
	props.Set("tenant", "acme")

	state, err := m.Protect(context.Background(), props)
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.Equal(t, 1, m.Len())

	got, err := m.Unprotect(context.Background(), state)
	require.NoError(t, err)
	require.True(t, props.Equal(got))
	require.Equal(t, 0, m.Len())
}

func TestMemory_SingleUse(t *testing.T) {
	t.Parallel()

	m := statestore.NewMemory(time.Minute)
	state, err := m.Protect(context.Background(), nil)
	require.NoError(t, err)

	_, err = m.Unprotect(context.Background(), state)
	require.NoError(t, err)

	_, err = m.Unprotect(context.Background(), state)
	require.ErrorIs(t, err, venmoauth.ErrInvalidState)
	require.ErrorIs(t, err, statestore.ErrNotFound)
}

func TestMemory_StoresCopy(t *testing.T) {
	t.Parallel()

	m := statestore.NewMemory(time.Minute)
	props := venmoauth.NewProperties("/a")
	state, err := m.Protect(context.Background(), props)
	require.NoError(t, err)

	props.RedirectURI = "/b"

	got, err := m.Unprotect(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, "/a", got.RedirectURI)
}

func TestMemory_Expired(t *testing.T) {
	t.Parallel()

	m := statestore.NewMemory(20 * time.Millisecond)
	state, err := m.Protect(context.Background(), venmoauth.NewProperties("/"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = m.Unprotect(context.Background(), state)
	require.ErrorIs(t, err, venmoauth.ErrInvalidState)
}

func TestMemory_ConcurrentConsume(t *testing.T) {
	t.Parallel()

	m := statestore.NewMemory(time.Minute)
	state, err := m.Protect(context.Background(), venmoauth.NewProperties("/"))
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Unprotect(context.Background(), state); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestMemory_WithHandler(t *testing.T) {
	t.Parallel()

	h, err := venmoauth.New(venmoauth.Config{
		ClientID:     "id",
		ClientSecret: "secret",
	}, venmoauth.WithStateDataFormat(statestore.NewMemory(0)))
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestOpenRedis_Validation(t *testing.T) {
	t.Parallel()

	_, err := statestore.OpenRedis(context.Background(), "")
	require.ErrorIs(t, err, statestore.ErrEmptyConnectionURL)

	_, err = statestore.OpenRedis(context.Background(), "http://localhost:6379")
	require.ErrorIs(t, err, statestore.ErrFailedToParseURL)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := statestore.OpenRedis(ctx, "redis://127.0.0.1:1/0", statestore.WithRetry(5, 100*time.Millisecond))
	require.ErrorIs(t, err, statestore.ErrConnectionFailed)
}
