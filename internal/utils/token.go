package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/samber/oops"
)

// MinTokenBytes is the least entropy accepted for a bearer secret.
const MinTokenBytes = 16

// RandomTokenHex returns nBytes of crypto/rand entropy, hex encoded, for use
// as a single-use secret. Requests below MinTokenBytes are refused.
func RandomTokenHex(nBytes int) (string, error) {
	if nBytes < MinTokenBytes {
		return "", oops.Code("TOKEN_TOO_SHORT").
			With("bytes", nBytes).
			Errorf("secret tokens need at least %d bytes of entropy", MinTokenBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("TOKEN_ENTROPY_FAILED").With("bytes", nBytes).Wrap(err)
	}
	return hex.EncodeToString(b), nil
}
