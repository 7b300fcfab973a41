package security

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purposes for keys derived from the session secret
const (
	purposeCSRF = "readyset csrf v1"
	purposeSeal = "readyset token seal v1"
)

// deriveKey expands secret into a 32-byte key bound to purpose
func deriveKey(secret, purpose string) [32]byte {
	var key [32]byte
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		// hkdf only fails after 255*32 bytes
		panic(err)
	}
	return key
}
