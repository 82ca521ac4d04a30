package venmoauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venmoauth"
)

func TestIdentity_Claims(t *testing.T) {
	t.Parallel()

	id := venmoauth.NewIdentity("Venmo")
	id.AddClaim(venmoauth.ClaimTypeNameIdentifier, "42")
	id.AddClaim(venmoauth.ClaimTypeEmail, "")
	id.AddClaim(venmoauth.ClaimTypeName, "alice")

	require.Len(t, id.Claims, 2, "empty values are skipped")
	require.Equal(t, "Venmo", id.Claims[0].Issuer)
	require.Equal(t, "alice", id.Name())
	require.True(t, id.HasClaim(venmoauth.ClaimTypeNameIdentifier, "42"))
	require.False(t, id.HasClaim(venmoauth.ClaimTypeNameIdentifier, "43"))

	_, ok := id.FindFirst(venmoauth.ClaimTypeEmail)
	require.False(t, ok)
}

func TestIdentity_Nil(t *testing.T) {
	t.Parallel()

	var id *venmoauth.Identity
	_, ok := id.FindFirst(venmoauth.ClaimTypeName)
	require.False(t, ok)
	require.False(t, id.HasClaim(venmoauth.ClaimTypeName, "x"))
	require.Empty(t, id.Name())
}
