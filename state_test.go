package venmoauth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venmoauth"
	"github.com/dmitrymomot/venmoauth/pkg/securedata"
)

func mustProtector(t *testing.T) *securedata.Protector {
	t.Helper()
	p, err := securedata.New(testSecret)
	require.NoError(t, err)
	return p
}

func TestSealedStateFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	f := venmoauth.NewSealedStateFormat(mustProtector(t), time.Minute)

	props := venmoauth.NewProperties("/checkout?step=2")
	props.IssuedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	props.ExpiresAt = props.IssuedAt.Add(15 * time.Minute)
	props.Set("b", "2")
	props.Set("a", "1")
	props.Set(".xsrf", "nonce")

	state, err := f.Protect(context.Background(), props)
	require.NoError(t, err)
	require.NotContains(t, state, "checkout", "state must be opaque")

	got, err := f.Unprotect(context.Background(), state)
	require.NoError(t, err)
	require.True(t, props.Equal(got))
	require.Equal(t, []string{"b", "a", ".xsrf"}, got.Keys())
}

func TestSealedStateFormat_NilProperties(t *testing.T) {
	t.Parallel()

	f := venmoauth.NewSealedStateFormat(mustProtector(t), 0)
	state, err := f.Protect(context.Background(), nil)
	require.NoError(t, err)

	got, err := f.Unprotect(context.Background(), state)
	require.NoError(t, err)
	require.Empty(t, got.RedirectURI)
	require.Zero(t, got.Len())
}

func TestSealedStateFormat_Rejects(t *testing.T) {
	t.Parallel()

	f := venmoauth.NewSealedStateFormat(mustProtector(t), time.Minute)

	_, err := f.Unprotect(context.Background(), "garbage")
	require.ErrorIs(t, err, venmoauth.ErrInvalidState)

	// sealed for another purpose
	other, err := mustProtector(t).Protect("session", []byte(`{}`), time.Minute)
	require.NoError(t, err)
	_, err = f.Unprotect(context.Background(), other)
	require.ErrorIs(t, err, venmoauth.ErrInvalidState)
	require.ErrorIs(t, err, securedata.ErrDecrypt)

	// right purpose, not JSON
	notJSON, err := mustProtector(t).Protect(venmoauth.StatePurpose, []byte("nope"), time.Minute)
	require.NoError(t, err)
	_, err = f.Unprotect(context.Background(), notJSON)
	require.ErrorIs(t, err, venmoauth.ErrInvalidState)
}

func TestSealedStateFormat_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now().Add(-time.Hour)
	past, err := securedata.New(testSecret, securedata.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)

	state, err := venmoauth.NewSealedStateFormat(past, 10*time.Minute).Protect(context.Background(), venmoauth.NewProperties("/"))
	require.NoError(t, err)

	_, err = venmoauth.NewSealedStateFormat(mustProtector(t), 10*time.Minute).Unprotect(context.Background(), state)
	require.ErrorIs(t, err, venmoauth.ErrInvalidState)
	require.ErrorIs(t, err, securedata.ErrExpired)
}
