package venmoauth

import (
	"encoding/json"
	"slices"
	"time"
)

// correlationKey is the reserved property holding the correlation nonce.
const correlationKey = ".xsrf"

// Properties is the property bag carried through the redirect round-trip
// inside the state token. RedirectURI is the only key the handler itself
// acts upon. Items keep insertion order.
type Properties struct {
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RedirectURI string
	keys        []string
	values      map[string]string
}

// NewProperties returns an empty property bag that redirects to redirectURI after sign-in.
func NewProperties(redirectURI string) *Properties {
	return &Properties{RedirectURI: redirectURI}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (p *Properties) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (string, bool) {
	if p == nil || p.values == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key from the bag.
func (p *Properties) Delete(key string) {
	if p == nil || p.values == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	p.keys = slices.DeleteFunc(p.keys, func(k string) bool { return k == key })
}

// Keys returns the item keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.keys)
}

// Len returns the number of items.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	c := &Properties{
		IssuedAt:    p.IssuedAt,
		ExpiresAt:   p.ExpiresAt,
		RedirectURI: p.RedirectURI,
	}
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Equal reports whether both bags hold the same redirect URI, timestamps
// and key/value pairs, ignoring item order.
func (p *Properties) Equal(o *Properties) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.RedirectURI != o.RedirectURI ||
		!p.IssuedAt.Equal(o.IssuedAt) ||
		!p.ExpiresAt.Equal(o.ExpiresAt) ||
		p.Len() != o.Len() {
		return false
	}
	for _, k := range p.keys {
		v, ok := o.Get(k)
		if !ok || v != p.values[k] {
			return false
		}
	}
	return true
}

type propertiesJSON struct {
	IssuedAt    *time.Time  `json:"issued_at,omitempty"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	RedirectURI string      `json:"redirect_uri,omitempty"`
	Items       [][2]string `json:"items,omitempty"`
}

// MarshalJSON encodes items as an ordered list of pairs.
func (p Properties) MarshalJSON() ([]byte, error) {
	out := propertiesJSON{RedirectURI: p.RedirectURI}
	if !p.IssuedAt.IsZero() {
		out.IssuedAt = &p.IssuedAt
	}
	if !p.ExpiresAt.IsZero() {
		out.ExpiresAt = &p.ExpiresAt
	}
	for _, k := range p.keys {
		out.Items = append(out.Items, [2]string{k, p.values[k]})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var in propertiesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Properties{RedirectURI: in.RedirectURI}
	if in.IssuedAt != nil {
		p.IssuedAt = *in.IssuedAt
	}
	if in.ExpiresAt != nil {
		p.ExpiresAt = *in.ExpiresAt
	}
	for _, kv := range in.Items {
		p.Set(kv[0], kv[1])
	}
	return nil
}
