package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"readyset/internal/api"
	"readyset/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != "Teapot" {
		t.Fatalf("expected body 'Teapot', got %q", body)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", validation.ValidationError{Field: "email", Message: "invalid email format"}, "invalid email format"},
		{"network", fmt.Errorf("GET /kits: %w", api.ErrNetwork), MsgNetworkError},
		{"server message", &api.Error{Status: 400, Message: "Email already registered"}, "Email already registered"},
		{"server without message", &api.Error{Status: 500}, MsgGenericError},
		{"unknown", errors.New("boom"), MsgGenericError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Errorf("userMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleAPIErrorRedirectsExpiredSession(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/kits/7", nil)

	handleAPIError(rec, req, fmt.Errorf("GET /kits/7: %w", api.ErrSessionExpired), "Error fetching kit")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fkits%2F7" {
		t.Errorf("Location = %q", loc)
	}
}

func TestHandleAPIErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&api.Error{Status: 404, Message: "Kit not found"}, 404},
		{&api.Error{Status: 503}, http.StatusBadGateway},
		{api.ErrNetwork, http.StatusBadGateway},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handleAPIError(rec, httptest.NewRequest(http.MethodGet, "/kits/1", nil), tt.err, "")
		if rec.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}
