package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"readyset/internal/auth"
	"readyset/internal/security"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	store       auth.Store
	csrf        *security.CSRFGenerator
	rateLimiter *security.RateLimiter
	cookieAge   time.Duration
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(store auth.Store, csrf *security.CSRFGenerator, rateLimiter *security.RateLimiter, cookieAge time.Duration) *Middleware {
	return &Middleware{
		store:       store,
		csrf:        csrf,
		rateLimiter: rateLimiter,
		cookieAge:   cookieAge,
	}
}

// Provide attaches an auth context for the browser's session to every request.
// The store is not read until a handler or guard asks for the state.
func (m *Middleware) Provide(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := security.EnsureSessionID(w, r, m.cookieAge)
		ac := auth.New(m.store, id)
		next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), ac)))
	})
}

// RequireAuth is middleware that requires a signed-in user
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return m.guard(auth.Authenticated, next)
}

// RequireAdmin is middleware that requires a signed-in admin
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.guard(auth.Admin, next)
}

func (m *Middleware) guard(req auth.Requirement, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := auth.FromContext(r.Context())
		if ac == nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error guarding route", errMissingAuthContext)
			return
		}

		state := ac.Await(r.Context())
		decision := auth.Decide(state, ac.IsAdmin(), req, r.URL.RequestURI())
		switch decision.Action {
		case auth.Suspend:
			// the client went away before the session loaded
			return
		case auth.RedirectLogin, auth.RedirectLanding:
			http.Redirect(w, r, decision.Location, http.StatusSeeOther)
		default:
			next(w, r)
		}
	}
}

// CSRFProtect rejects unsafe requests without a token bound to the session id
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		ac := auth.FromContext(r.Context())
		token := r.Header.Get(security.CSRFHeaderName)
		if token == "" {
			token = r.FormValue(security.CSRFFieldName)
		}
		if ac == nil || !m.csrf.ValidateToken(ac.SessionID(), token) {
			http.Error(w, ErrInvalidCSRF, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the form token for the request's session
func (m *Middleware) CSRFToken(r *http.Request) string {
	ac := auth.FromContext(r.Context())
	if ac == nil {
		return ""
	}
	token, err := m.csrf.GenerateToken(ac.SessionID())
	if err != nil {
		log.Printf("Error generating CSRF token: %v", err)
		return ""
	}
	return token
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimiter != nil && !m.rateLimiter.Allow(security.GetClientIP(r)) {
			http.Error(w, ErrTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if id := middleware.GetReqID(r.Context()); id != "" {
			log.Printf("%s %s %d %s [%s]", r.Method, r.URL.Path, status, time.Since(start), id)
			return
		}
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, status, time.Since(start))
	})
}
