package password

import (
	"github.com/authline/authline/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces salted bcrypt digests for stored credentials.
// A zero or out-of-range cost falls back to the bcrypt default.
type Hasher struct {
	cost int
}

func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a one-way digest of plaintext. bcrypt embeds a fresh random
// salt per call, so hashing the same plaintext twice yields different digests.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests
// verify as false, never as an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
