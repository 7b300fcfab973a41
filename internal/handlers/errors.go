package handlers

import (
	"errors"
	"log"
	"net/http"

	"readyset/internal/api"
	"readyset/internal/auth"
	"readyset/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

// userMessage maps an error to the text shown next to a form
func userMessage(err error) string {
	var ve validation.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, api.ErrNetwork) {
		return MsgNetworkError
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgGenericError
}

// redirectIfExpired sends the browser to the login page after a backend 401.
// It reports whether it wrote a response.
func redirectIfExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrSessionExpired) {
		return false
	}
	location := auth.LoginPath
	if r.Method == http.MethodGet {
		location = auth.LoginURL(r.URL.RequestURI())
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
	return true
}

// handleAPIError responds to a backend failure on a page that cannot render without the data
func handleAPIError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	if redirectIfExpired(w, r, err) {
		return
	}
	status := http.StatusBadGateway
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound, http.StatusForbidden, http.StatusBadRequest:
			status = apiErr.Status
		}
	}
	respondWithError(w, status, userMessage(err), logMsg, err)
}

var errMissingAuthContext = errors.New("no auth context on request")
