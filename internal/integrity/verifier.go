package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Verifier re-derives the keyed digest a trap scanner attaches to each reading.
// The shared secret is fixed at construction.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a Verifier keyed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Canonical builds the signed payload: the fields concatenated in order with
// no separators and the egg count in decimal.
func Canonical(trapID, trapType, gps string, eggCount int) string {
	return trapID + trapType + gps + strconv.Itoa(eggCount)
}

// Digest returns the lowercase hex HMAC-SHA256 of the canonical payload.
func (v *Verifier) Digest(trapID, trapType, gps string, eggCount int) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(Canonical(trapID, trapType, gps, eggCount)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether submitted equals the expected digest.
// Comparison is case-sensitive and constant-time.
func (v *Verifier) Verify(trapID, trapType, gps string, eggCount int, submitted string) bool {
	expected := v.Digest(trapID, trapType, gps, eggCount)
	return hmac.Equal([]byte(expected), []byte(submitted))
}
