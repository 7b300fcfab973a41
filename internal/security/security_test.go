package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCSRFTokens(t *testing.T) {
	g := NewCSRFGenerator("secret")

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
		want      bool
	}{
		{"valid", "session-1", token, true},
		{"other session", "session-2", token, false},
		{"empty token", "session-1", "", false},
		{"empty session", "", token, false},
		{"tampered", "session-1", token[:len(token)-1] + "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := g.GenerateToken(""); err == nil {
		t.Error("GenerateToken(\"\") should fail")
	}
	if NewCSRFGenerator("other").ValidateToken("session-1", token) {
		t.Error("token must not validate under a different secret")
	}
}

func TestCSRFTokensExpire(t *testing.T) {
	g := NewCSRFGenerator("secret")
	issued := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	g.now = func() time.Time { return issued }

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"same hour", issued.Add(20 * time.Minute), true},
		{"next day", issued.Add(23 * time.Hour), true},
		{"after lifetime", issued.Add(CSRFTokenLifetime + time.Hour), false},
		{"clock behind", issued.Add(-30 * time.Minute), true},
		{"far future issue", issued.Add(-3 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.now = func() time.Time { return tt.at }
			if got := g.ValidateToken("session-1", token); got != tt.valid {
				t.Errorf("ValidateToken() at %v = %v, want %v", tt.at, got, tt.valid)
			}
		})
	}

	if g.ValidateToken("session-1", "not-a-token") {
		t.Error("token without issue time should not validate")
	}
}

func TestSealRoundTrip(t *testing.T) {
	s := NewSealer("secret")
	sealed, err := s.Seal("bearer-token-value")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(sealed, "bearer-token-value") {
		t.Error("sealed value contains the plaintext")
	}
	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if plain != "bearer-token-value" {
		t.Errorf("Open() = %q", plain)
	}
}

func TestOpenRejectsForeignOrGarbage(t *testing.T) {
	sealed, _ := NewSealer("one").Seal("token")
	if _, err := NewSealer("two").Open(sealed); err != ErrUnseal {
		t.Errorf("Open with wrong key err = %v, want ErrUnseal", err)
	}
	for _, in := range []string{"!!!", "c2hvcnQ"} {
		if _, err := NewSealer("one").Open(in); err != ErrUnseal {
			t.Errorf("Open(%q) err = %v, want ErrUnseal", in, err)
		}
	}
	if got, err := NewSealer("one").Open(""); got != "" || err != nil {
		t.Errorf("Open(\"\") = %q, %v", got, err)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request should be blocked")
	}
	if !rl.Allow("b") {
		t.Error("other keys are independent")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("bucket should refill after the window")
	}

	now = now.Add(5 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Errorf("cleanup left %d visitors", len(rl.visitors))
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:4242"
	if got := GetClientIP(r); got != "203.0.113.5" {
		t.Errorf("GetClientIP() = %q", got)
	}
	r.RemoteAddr = "203.0.113.6"
	if got := GetClientIP(r); got != "203.0.113.6" {
		t.Errorf("GetClientIP() without port = %q", got)
	}
}

func TestEnsureSessionID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id := EnsureSessionID(w, r, time.Hour)
	if id == "" {
		t.Fatal("expected a new id")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != id || cookies[0].MaxAge != 3600 {
		t.Fatalf("cookie = %+v", cookies)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	if got := EnsureSessionID(httptest.NewRecorder(), r2, time.Hour); got != id {
		t.Errorf("existing id not reused: %q vs %q", got, id)
	}

	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	r3.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})
	if got := EnsureSessionID(httptest.NewRecorder(), r3, time.Hour); got == "not-a-uuid" {
		t.Error("malformed id should be replaced")
	}
}

func TestIsSecureRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		want   bool
	}{
		{"plain", "", "", false},
		{"x-forwarded-proto", "X-Forwarded-Proto", "HTTPS", true},
		{"forwarded", "Forwarded", `for=192.0.2.60;proto="https";by=203.0.113.43`, true},
		{"forwarded http", "Forwarded", "for=192.0.2.60;proto=http", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			if got := IsSecureRequest(r); got != tt.want {
				t.Errorf("IsSecureRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiredCookieMatchesPath(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback", nil)
	c := ExpiredCookie(r, "oauth_state", "/auth/")
	if c.MaxAge != -1 || c.Path != "/auth/" || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("ExpiredCookie() = %+v", c)
	}
}
