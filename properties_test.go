package venmoauth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venmoauth"
)

func TestProperties_Items(t *testing.T) {
	t.Parallel()

	p := venmoauth.NewProperties("/home")
	p.Set("x", "1")
	p.Set("y", "2")
	p.Set("x", "3")

	require.Equal(t, []string{"x", "y"}, p.Keys())
	v, ok := p.Get("x")
	require.True(t, ok)
	require.Equal(t, "3", v)

	p.Delete("x")
	_, ok = p.Get("x")
	require.False(t, ok)
	require.Equal(t, 1, p.Len())

	p.Delete("missing")
	require.Equal(t, 1, p.Len())
}

func TestProperties_NilSafe(t *testing.T) {
	t.Parallel()

	var p *venmoauth.Properties
	_, ok := p.Get("x")
	require.False(t, ok)
	require.Zero(t, p.Len())
	require.Nil(t, p.Keys())
	require.Nil(t, p.Clone())
	require.True(t, p.Equal(nil))
	require.False(t, p.Equal(venmoauth.NewProperties("")))
}

func TestProperties_EqualIgnoresOrder(t *testing.T) {
	t.Parallel()

	a := venmoauth.NewProperties("/r")
	a.Set("k1", "v1")
	a.Set("k2", "v2")

	b := venmoauth.NewProperties("/r")
	b.Set("k2", "v2")
	b.Set("k1", "v1")
	require.True(t, a.Equal(b))

	b.Set("k1", "changed")
	require.False(t, a.Equal(b))

	c := a.Clone()
	c.RedirectURI = "/other"
	require.False(t, a.Equal(c))
}

func TestProperties_CloneIsDeep(t *testing.T) {
	t.Parallel()

	a := venmoauth.NewProperties("/r")
	a.Set("k", "v")
	c := a.Clone()
	c.Set("k", "changed")

	v, _ := a.Get("k")
	require.Equal(t, "v", v)
}

func TestProperties_JSON(t *testing.T) {
	t.Parallel()

	p := venmoauth.NewProperties("/r")
	p.IssuedAt = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	p.Set("z", "last")
	p.Set("a", "first")

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"redirect_uri":"/r","issued_at":"2026-05-01T00:00:00Z","items":[["z","last"],["a","first"]]}`, string(data))

	var got venmoauth.Properties
	require.NoError(t, json.Unmarshal(data, &got))
	require.True(t, p.Equal(&got))
	require.Equal(t, []string{"z", "a"}, got.Keys())
}
