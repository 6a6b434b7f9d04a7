// Package signature implements the payment gateway's request/response
// integrity checksum: a SHA-256 digest over payload+salt, transmitted as
// "<hex-digest>###<salt-index>".
package signature

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const separator = "###"

// Sign computes the lowercase hex SHA-256 digest of payload followed by salt.
func Sign(payload []byte, salt string) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(salt))
	return hex.EncodeToString(h.Sum(nil))
}

// Seal builds the transmitted header value for the given payload.
func Seal(payload []byte, salt, index string) string {
	return Sign(payload, salt) + separator + index
}

// Verify recomputes the header value from the received payload and the
// configured salt/index, and compares it to the candidate in constant time.
// A false result is a rejection signal for the caller, not an error.
func Verify(payload []byte, salt, index, candidate string) bool {
	expected := Seal(payload, salt, index)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}
