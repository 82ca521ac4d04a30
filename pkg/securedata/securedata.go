package securedata

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// Errors.
var (
	ErrNoSecret  = errors.New("securedata: secret required")
	ErrBadSecret = errors.New("securedata: secret must be 32+ bytes")
	ErrMalformed = errors.New("securedata: malformed token")
	ErrDecrypt   = errors.New("securedata: decryption failed")
	ErrExpired   = errors.New("securedata: token expired")
)

// MinSecretLength is the shortest accepted secret.
const MinSecretLength = 32

// Protector seals payloads into URL-safe tokens with AES-256-GCM.
// A token is bound to a purpose string (authenticated, not encrypted) and
// to an expiry embedded in the ciphertext. Safe for concurrent use.
type Protector struct {
	aead cipher.AEAD
	now  func() time.Time
}

// Option configures a Protector.
type Option func(*Protector)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Protector) {
		p.now = now
	}
}

// New creates a Protector. The 32-byte AES key is derived from secret with SHA-256.
func New(secret string, opts ...Option) (*Protector, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if len(secret) < MinSecretLength {
		return nil, ErrBadSecret
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	p := &Protector{aead: aead, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Protect seals payload for purpose. A non-positive ttl means the token never expires.
func (p *Protector) Protect(purpose string, payload []byte, ttl time.Duration) (string, error) {
	var exp int64
	if ttl > 0 {
		exp = p.now().Add(ttl).Unix()
	}

	// Plaintext layout: 8-byte big-endian unix expiry (0 = none) || payload.
	plaintext := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint64(plaintext, uint64(exp))
	copy(plaintext[8:], payload)

	nonce := make([]byte, p.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := p.aead.Seal(nonce, nonce, plaintext, []byte(purpose))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Unprotect opens a token produced by Protect with the same purpose.
func (p *Protector) Unprotect(purpose, token string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformed
	}
	if len(data) < p.aead.NonceSize()+p.aead.Overhead()+8 {
		return nil, ErrMalformed
	}

	nonce, ciphertext := data[:p.aead.NonceSize()], data[p.aead.NonceSize():]
	plaintext, err := p.aead.Open(nil, nonce, ciphertext, []byte(purpose))
	if err != nil {
		return nil, ErrDecrypt
	}

	if exp := int64(binary.BigEndian.Uint64(plaintext)); exp != 0 && p.now().Unix() >= exp {
		return nil, ErrExpired
	}
	return plaintext[8:], nil
}
