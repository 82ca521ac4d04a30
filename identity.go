package venmoauth

// Standard claim types.
const (
	ClaimTypeNameIdentifier       = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	ClaimTypeName                 = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	ClaimTypeEmail                = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	ClaimTypeGivenName            = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/givenname"
	ClaimTypeSurname              = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/surname"
	ClaimTypeMobilePhone          = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/mobilephone"
	ClaimTypeAuthenticationMethod = "http://schemas.microsoft.com/ws/2008/06/identity/claims/authenticationmethod"
)

// Venmo-specific claim types.
const (
	ClaimTypeVenmoUserName = "urn:venmo:username"
	ClaimTypeVenmoName     = "urn:venmo:name"
)

// Claim is a single assertion about an authenticated user.
type Claim struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Issuer string `json:"issuer,omitempty"`
}

// Identity is the set of claims produced by one successful authentication.
type Identity struct {
	AuthenticationType string  `json:"authentication_type"`
	Claims             []Claim `json:"claims"`
}

// NewIdentity returns an empty identity of the given authentication type.
func NewIdentity(authenticationType string) *Identity {
	return &Identity{AuthenticationType: authenticationType}
}

// AddClaim appends a claim issued by the identity's authentication type.
// Empty values are skipped.
func (i *Identity) AddClaim(claimType, value string) {
	if value == "" {
		return
	}
	i.Claims = append(i.Claims, Claim{Type: claimType, Value: value, Issuer: i.AuthenticationType})
}

// FindFirst returns the value of the first claim of the given type.
func (i *Identity) FindFirst(claimType string) (string, bool) {
	if i == nil {
		return "", false
	}
	for _, c := range i.Claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// HasClaim reports whether a claim with the given type and value exists.
func (i *Identity) HasClaim(claimType, value string) bool {
	if i == nil {
		return false
	}
	for _, c := range i.Claims {
		if c.Type == claimType && c.Value == value {
			return true
		}
	}
	return false
}

// Name returns the name claim, if any.
func (i *Identity) Name() string {
	v, _ := i.FindFirst(ClaimTypeName)
	return v
}

// NamePreference selects which profile field feeds the name claim.
type NamePreference string

const (
	NameFromUserName    NamePreference = "username"
	NameFromDisplayName NamePreference = "display_name"
)

// defaultIdentity maps the non-empty derived fields onto claims.
func defaultIdentity(authType string, pref NamePreference, ac *AuthenticatedContext) *Identity {
	id := NewIdentity(authType)
	id.AddClaim(ClaimTypeNameIdentifier, ac.ID)

	name, fallback := ac.UserName, ac.DisplayName
	if pref == NameFromDisplayName {
		name, fallback = fallback, name
	}
	if name == "" {
		name = fallback
	}
	id.AddClaim(ClaimTypeName, name)

	id.AddClaim(ClaimTypeEmail, ac.Email)
	id.AddClaim(ClaimTypeGivenName, ac.FirstName)
	id.AddClaim(ClaimTypeSurname, ac.LastName)
	id.AddClaim(ClaimTypeMobilePhone, ac.Phone)
	id.AddClaim(ClaimTypeVenmoUserName, ac.UserName)
	id.AddClaim(ClaimTypeVenmoName, ac.DisplayName)
	id.AddClaim(ClaimTypeAuthenticationMethod, authType)
	return id
}
