package auth

import (
	"net/url"
	"strings"

	"readyset/internal/models"
)

// Well-known destinations
const (
	LoginPath        = "/login"
	UserLandingPath  = "/dashboard"
	AdminLandingPath = "/admin"
)

// Requirement is what a route demands of the visitor
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	Admin
)

// Action is what the guard does with a request
type Action int

const (
	// Suspend renders nothing while the session is still loading
	Suspend Action = iota
	Render
	RedirectLogin
	RedirectLanding
)

// Decision is the outcome of Decide. Location is set for redirects.
type Decision struct {
	Action   Action
	Location string
}

// Decide maps the auth state and a route requirement to an action.
// path is the original path and query, kept for the post-login return.
func Decide(state State, isAdmin bool, req Requirement, path string) Decision {
	if state == StateLoading {
		return Decision{Action: Suspend}
	}
	if req == Public {
		return Decision{Action: Render}
	}
	if state != StateAuthenticated {
		return Decision{Action: RedirectLogin, Location: LoginURL(path)}
	}
	if req == Admin && !isAdmin {
		return Decision{Action: RedirectLanding, Location: UserLandingPath}
	}
	return Decision{Action: Render}
}

// LoginURL returns the login page that returns to path afterwards
func LoginURL(path string) string {
	if path == "" || path == "/" || !isLocalPath(path) {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(path)
}

// LandingFor returns the default page for a signed-in user
func LandingFor(u *models.User) string {
	if u.IsAdmin() {
		return AdminLandingPath
	}
	return UserLandingPath
}

// SafeNext returns next when it is a local path, else the user's landing page
func SafeNext(next string, u *models.User) string {
	if isLocalPath(next) {
		return next
	}
	return LandingFor(u)
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}
