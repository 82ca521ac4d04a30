// Package securedata seals short-lived payloads into opaque, tamper-evident tokens.
//
// Tokens are AES-256-GCM ciphertexts encoded with unpadded base64url, so they
// can travel in query strings and cookies without further escaping. Each
// token is bound to a purpose: a token sealed for "state" cannot be opened as
// "session" even with the same secret.
//
// # Usage
//
//	p, err := securedata.New(os.Getenv("STATE_SECRET"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	token, err := p.Protect("oauth.state", payload, 15*time.Minute)
//	...
//	payload, err := p.Unprotect("oauth.state", token)
//	if errors.Is(err, securedata.ErrExpired) {
//		// restart the flow
//	}
//
// # Errors
//
//   - ErrNoSecret, ErrBadSecret: constructor called with an empty or short secret
//   - ErrMalformed: token is not valid base64url or is truncated
//   - ErrDecrypt: wrong secret, wrong purpose, or tampered token
//   - ErrExpired: token is authentic but past its expiry
package securedata
