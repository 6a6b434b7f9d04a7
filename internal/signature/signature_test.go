package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSealRoundTrip(t *testing.T) {
	payload := []byte(`{"merchantTransactionId":"SNCT_abc"}`)

	header := Seal(payload, "salt-key", "1")
	assert.True(t, Verify(payload, "salt-key", "1", header))
}

func TestSign_IsLowercaseHexSHA256(t *testing.T) {
	digest := Sign([]byte("payload"), "salt")

	assert.Len(t, digest, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, digest)
	// salt participates in the digest
	assert.NotEqual(t, digest, Sign([]byte("payload"), "other-salt"))
}

func TestVerify_RejectsMutations(t *testing.T) {
	payload := []byte("the quick brown fox")
	header := Seal(payload, "salt", "1")

	t.Run("payload mutated", func(t *testing.T) {
		tampered := append([]byte{}, payload...)
		tampered[0] ^= 0x01
		assert.False(t, Verify(tampered, "salt", "1", header))
	})

	t.Run("salt mismatch", func(t *testing.T) {
		assert.False(t, Verify(payload, "Salt", "1", header))
	})

	t.Run("index mismatch", func(t *testing.T) {
		assert.False(t, Verify(payload, "salt", "2", header))
	})

	t.Run("digest mutated", func(t *testing.T) {
		tampered := "0" + header[1:]
		if tampered == header {
			tampered = "1" + header[1:]
		}
		assert.False(t, Verify(payload, "salt", "1", tampered))
	})

	t.Run("empty candidate", func(t *testing.T) {
		assert.False(t, Verify(payload, "salt", "1", ""))
	})
}
