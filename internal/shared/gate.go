package shared

import (
	"crypto/subtle"
)

// Secret holds the configured API key. It formats as [REDACTED] everywhere;
// the raw value is only reachable through Equal.
type Secret string

const redacted = "[REDACTED]"

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }
func (s Secret) MarshalYAML() (any, error)    { return redacted, nil }

func (s Secret) IsZero() bool { return s == "" }

// Equal compares byte-for-byte in constant time. An empty secret matches nothing.
func (s Secret) Equal(supplied string) bool {
	if s == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s), []byte(supplied)) == 1
}

type Gate struct {
	secret Secret
}

func NewGate(secret Secret) *Gate {
	return &Gate{secret: secret}
}

// Authorize checks a caller-supplied key. Case matters: "test-Key" does not
// open a gate configured with "test-key".
func (g *Gate) Authorize(supplied string) error {
	if supplied == "" {
		return &AuthError{Missing: true}
	}
	if !g.secret.Equal(supplied) {
		return &AuthError{}
	}
	return nil
}
