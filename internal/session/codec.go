// Package session persists per-browser credentials: the backend bearer token
// and the cached user record, always written and cleared together.
package session

import (
	"encoding/json"
	"log"

	"readyset/internal/models"
	"readyset/internal/security"
)

// decode turns stored fields back into a Session. Anything unusable yields the empty session.
func decode(sealer *security.Sealer, sealedToken, userData, identity string) models.Session {
	if sealedToken == "" || userData == "" {
		return models.Session{}
	}

	token, err := sealer.Open(sealedToken)
	if err != nil || token == "" {
		log.Printf("Warning: discarding session with unreadable token: %v", err)
		return models.Session{}
	}

	var user models.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		log.Printf("Warning: discarding session with malformed user payload: %v", err)
		return models.Session{}
	}
	user.Role = models.ParseRole(string(user.Role))

	return models.Session{Token: token, User: &user, Identity: identity}
}

// encode seals the token and serializes the user
func encode(sealer *security.Sealer, s models.Session) (sealedToken, userData string, err error) {
	if s.IsEmpty() {
		return "", "", nil
	}
	sealedToken, err = sealer.Seal(s.Token)
	if err != nil {
		return "", "", err
	}
	raw, err := json.Marshal(s.User)
	if err != nil {
		return "", "", err
	}
	return sealedToken, string(raw), nil
}
