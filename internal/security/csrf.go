package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSRFFieldName is the form field carrying the token
const CSRFFieldName = "csrf_token"

// CSRFHeaderName is accepted instead of the form field for fetch requests
const CSRFHeaderName = "X-CSRF-Token"

// CSRFTokenLifetime is how long a rendered form stays submittable
const CSRFTokenLifetime = 24 * time.Hour

// CSRFGenerator issues tokens of the form "<issued hour>.<hmac>", bound to the
// browser session id. Validation needs only the key, so replicas share nothing.
type CSRFGenerator struct {
	key [32]byte
	now func() time.Time
}

// NewCSRFGenerator creates a generator keyed from the session secret
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{key: deriveKey(secret, purposeCSRF), now: time.Now}
}

// GenerateToken returns a CSRF token for the given session ID
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session ID is required")
	}
	issued := strconv.FormatInt(g.now().Unix()/3600, 36)
	return issued + "." + g.sign(sessionID, issued), nil
}

// ValidateToken reports whether token was issued for sessionID within CSRFTokenLifetime
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	issued, mac, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	hour, err := strconv.ParseInt(issued, 36, 64)
	if err != nil {
		return false
	}
	age := g.now().Sub(time.Unix(hour*3600, 0))
	// one hour of slack covers replicas whose clocks drift across an hour boundary
	if age < -time.Hour || age > CSRFTokenLifetime {
		return false
	}
	return hmac.Equal([]byte(g.sign(sessionID, issued)), []byte(mac))
}

func (g *CSRFGenerator) sign(sessionID, issued string) string {
	mac := hmac.New(sha256.New, g.key[:])
	mac.Write([]byte(issued))
	mac.Write([]byte{0})
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
