// Package codegen produces the random values used as authorization codes.
package codegen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// codeBytes gives 256 bits of entropy, twice the floor the flow requires.
const codeBytes = 32

// Generate returns a URL-safe random code from crypto/rand. The value needs
// no escaping in a query string. Uniqueness is a store concern; a collision
// surfaces as a store conflict, not here.
func Generate() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
