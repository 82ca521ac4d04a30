package venmoauth

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

const correlationCookiePrefix = ".venmoauth.correlation."

func (h *Handler) correlationCookieName() string {
	return correlationCookiePrefix + h.cfg.AuthenticationType
}

// generateCorrelation stores a fresh nonce both in props and in a cookie,
// tying the state token to the browser that started the flow.
func (h *Handler) generateCorrelation(w http.ResponseWriter, props *Properties) {
	nonce := uuid.NewString()
	props.Set(correlationKey, nonce)
	http.SetCookie(w, &http.Cookie{
		Name:     h.correlationCookieName(),
		Value:    nonce,
		Path:     "/",
		MaxAge:   int(h.cfg.StateTTL.Seconds()),
		Secure:   h.opts.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// validateCorrelation checks the nonce and always clears the cookie.
func (h *Handler) validateCorrelation(w http.ResponseWriter, r *http.Request, props *Properties) bool {
	name := h.correlationCookieName()
	c, err := r.Cookie(name)
	if err != nil {
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.opts.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	nonce, ok := props.Get(correlationKey)
	props.Delete(correlationKey)
	if !ok || nonce == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(nonce), []byte(c.Value)) == 1
}
