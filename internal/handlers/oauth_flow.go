package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"readyset/internal/api"
	"readyset/internal/auth"
	"readyset/internal/security"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
	AuthParams  map[string]string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

type OAuthProviderView struct {
	Name     string
	Label    string
	URL      string
	CSSClass string
}

const oauthCookieTTL = 10 * time.Minute

// oauthCookiePath limits the flow cookies to the start and callback routes
const oauthCookiePath = "/auth/"

func (h *AuthHandler) oauthProviderViews(r *http.Request) []OAuthProviderView {
	var views []OAuthProviderView
	for _, key := range []string{"google", "facebook"} {
		provider, ok := h.oauthProviders[key]
		if !ok || !provider.configured() {
			continue
		}
		views = append(views, OAuthProviderView{
			Name:     key,
			Label:    provider.Label,
			URL:      fmt.Sprintf("/auth/%s/start", key),
			CSSClass: "btn-" + key,
		})
	}
	return views
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || !provider.configured() {
		h.oauthError(w, r, "OAuth provider not configured", http.StatusBadRequest)
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, "oauth_state", state)
	h.setTempCookie(w, r, "oauth_provider", providerKey)
	if next := r.URL.Query().Get("next"); next != "" {
		h.setTempCookie(w, r, "oauth_next", next)
	}

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	for key, value := range provider.AuthParams {
		options = append(options, oauth2.SetAuthURLParam(key, value))
	}

	http.Redirect(w, r, config.AuthCodeURL(state, options...), http.StatusFound)
}

// OAuthCallback handles the OAuth provider callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || !provider.configured() {
		h.oauthError(w, r, "OAuth provider not configured", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	if query.Get("error") != "" {
		h.oauthError(w, r, "Sign-in was cancelled", http.StatusBadRequest)
		return
	}
	code := query.Get("code")
	if code == "" {
		h.oauthError(w, r, "Missing authorization code", http.StatusBadRequest)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		h.oauthError(w, r, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	if providerCookie, err := r.Cookie("oauth_provider"); err == nil && providerCookie.Value != providerKey {
		h.oauthError(w, r, "OAuth provider mismatch", http.StatusBadRequest)
		return
	}
	next := ""
	if cookie, err := r.Cookie("oauth_next"); err == nil {
		next = cookie.Value
	}

	h.clearTempCookie(w, r, "oauth_state")
	h.clearTempCookie(w, r, "oauth_provider")
	h.clearTempCookie(w, r, "oauth_next")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		log.Printf("Error exchanging %s OAuth code: %v", providerKey, err)
		h.oauthError(w, r, "Failed to exchange OAuth code", http.StatusBadRequest)
		return
	}

	profile, err := fetchOAuthProfile(ctx, providerKey, provider, oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)))
	if err != nil {
		log.Printf("Error fetching %s profile: %v", providerKey, err)
		h.oauthError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.authService.SocialLogin(r.Context(), sessionFrom(r), profile)
	if err != nil {
		log.Printf("Error signing in with %s: %v", providerKey, err)
		h.oauthError(w, r, userMessage(err), http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, auth.SafeNext(next, user), http.StatusSeeOther)
}

// fetchOAuthProfile reads the provider's user info endpoint with an authorized client
func fetchOAuthProfile(ctx context.Context, providerKey string, provider OAuthProvider, client *http.Client) (api.SocialProfile, error) {
	label := provider.Label
	if label == "" {
		label = providerKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.UserInfoURL, nil)
	if err != nil {
		return api.SocialProfile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return api.SocialProfile{}, fmt.Errorf("failed to fetch %s user info", label)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return api.SocialProfile{}, fmt.Errorf("failed to fetch %s user info", label)
	}

	var payload struct {
		ID      string          `json:"id"`
		Email   string          `json:"email"`
		Name    string          `json:"name"`
		Picture json.RawMessage `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return api.SocialProfile{}, fmt.Errorf("failed to parse %s user info", label)
	}
	if payload.ID == "" {
		return api.SocialProfile{}, errors.New("provider did not return an account id")
	}

	return api.SocialProfile{
		Provider:  providerKey,
		Subject:   payload.ID,
		Email:     payload.Email,
		Name:      payload.Name,
		AvatarURL: pictureURL(payload.Picture),
	}, nil
}

// pictureURL accepts Google's plain string and Facebook's {data: {url}} object
func pictureURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var fb struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &fb); err == nil {
		return fb.Data.URL
	}
	return ""
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, security.NewCookie(r, name, value, oauthCookiePath, oauthCookieTTL))
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.ExpiredCookie(r, name, oauthCookiePath))
}

func (h *AuthHandler) oauthError(w http.ResponseWriter, r *http.Request, message string, status int) {
	data := LoginViewData{
		Page:           h.page(r, "Login"),
		OAuthProviders: h.oauthProviderViews(r),
	}
	data.Error = message
	h.renderStatus(w, status, "login.tmpl", data)
}
