package token

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResetManager issues single-use, time-limited password reset tokens.
// The raw token is handed to the user exactly once; only its sha256 digest
// is persisted, so a leaked store cannot yield usable reset tokens.
//
// The digest is deliberately unsalted: the store looks it up by equality,
// which a salted hash family (bcrypt) cannot support.
type ResetManager struct {
	ttl time.Duration
}

func NewResetManager(ttl time.Duration) *ResetManager {
	return &ResetManager{ttl: ttl}
}

// Issue generates a random raw token together with its lookup hash and
// absolute expiry. The caller persists hash+expiry and delivers raw out of band.
func (m *ResetManager) Issue() (raw string, hash string, expires time.Time) {
	raw = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	return raw, m.LookupHash(raw), time.Now().UTC().Add(m.ttl)
}

// LookupHash re-derives the deterministic digest of a raw token so the store
// can be queried by equality. Expiry is enforced by the store query, not here.
func (m *ResetManager) LookupHash(raw string) string {
	digest := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(digest[:])
}
