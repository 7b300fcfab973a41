package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName carries the per-browser session id
const SessionCookieName = "session_id"

// GenerateSessionID returns a random UUID. It also serves as the OAuth state value.
func GenerateSessionID() string {
	return uuid.New().String()
}

// IsSecureRequest reports whether the browser reached us over HTTPS, directly
// or through a proxy that sets X-Forwarded-Proto or Forwarded.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil || r.URL.Scheme == "https" {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	for _, part := range strings.FieldsFunc(r.Header.Get("Forwarded"), func(c rune) bool { return c == ';' || c == ',' }) {
		k, v, _ := strings.Cut(strings.TrimSpace(part), "=")
		if strings.EqualFold(k, "proto") && strings.EqualFold(strings.Trim(v, `"`), "https") {
			return true
		}
	}
	return false
}

// NewCookie builds an HttpOnly, SameSite=Lax cookie scoped to path.
// Secure is set whenever the request arrived over HTTPS.
func NewCookie(r *http.Request, name, value, path string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie tells the browser to drop the cookie set by NewCookie with the same path
func ExpiredCookie(r *http.Request, name, path string) *http.Cookie {
	c := NewCookie(r, name, "", path, 0)
	c.MaxAge = -1
	return c
}

// EnsureSessionID returns the browser's session id, issuing a new cookie when
// the cookie is missing or not a UUID. The cookie is re-issued on every call so
// its lifetime slides with use.
func EnsureSessionID(w http.ResponseWriter, r *http.Request, maxAge time.Duration) string {
	var id string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = GenerateSessionID()
	}
	http.SetCookie(w, NewCookie(r, SessionCookieName, id, "/", maxAge))
	return id
}
