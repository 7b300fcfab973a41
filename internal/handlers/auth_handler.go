package handlers

import (
	"html/template"
	"log"
	"net/http"

	"readyset/internal/auth"
	"readyset/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	views
	authService          *service.AuthService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, templates *template.Template, middleware *Middleware, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		views:                newViews(templates, middleware),
		authService:          authService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// Home renders the landing page
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := HomeViewData{Page: h.page(r, "Be Ready"), Disasters: disasterDisplays()}
	h.render(w, "home.tmpl", data)
}

// redirectSignedIn sends an already signed-in visitor to their landing page
func (h *AuthHandler) redirectSignedIn(w http.ResponseWriter, r *http.Request) bool {
	ac := sessionFrom(r)
	if ac.Await(r.Context()) != auth.StateAuthenticated {
		return false
	}
	http.Redirect(w, r, auth.LandingFor(ac.User()), http.StatusSeeOther)
	return true
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedIn(w, r) {
		return
	}

	data := LoginViewData{
		Page:           h.page(r, "Login"),
		OAuthProviders: h.oauthProviderViews(r),
		Next:           r.URL.Query().Get("next"),
	}
	h.render(w, "login.tmpl", data)
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	next := r.FormValue("next")
	ac := sessionFrom(r)

	user, err := h.authService.Login(r.Context(), ac, email, r.FormValue("password"))
	if err != nil {
		log.Printf("Login failed for %s: %v", email, err)
		data := LoginViewData{
			Page:           h.page(r, "Login"),
			OAuthProviders: h.oauthProviderViews(r),
			Email:          email,
			Next:           next,
		}
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "login.tmpl", data)
		return
	}

	http.Redirect(w, r, auth.SafeNext(next, user), http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedIn(w, r) {
		return
	}

	data := RegisterViewData{
		Page:           h.page(r, "Register"),
		OAuthProviders: h.oauthProviderViews(r),
	}
	h.render(w, "register.tmpl", data)
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	ac := sessionFrom(r)

	user, err := h.authService.Register(r.Context(), ac, name, email, r.FormValue("password"), r.FormValue("confirm_password"))
	if err != nil {
		data := RegisterViewData{
			Page:           h.page(r, "Register"),
			OAuthProviders: h.oauthProviderViews(r),
			Email:          email,
			Name:           name,
		}
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "register.tmpl", data)
		return
	}

	http.Redirect(w, r, auth.LandingFor(user), http.StatusSeeOther)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), sessionFrom(r)); err != nil {
		log.Printf("Error clearing session on logout: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
