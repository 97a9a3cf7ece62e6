package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"

	"github.com/google/uuid"
)

const addressHashLength = 16

// HashAddress produces a salted, irreversible short hash of an address.
// When salt is empty a random one is generated and returned alongside
// the hash; without the salt two hashes of the same address cannot be
// correlated. The address is canonicalized first so "::1" and
// "0:0:0:0:0:0:0:1" hash identically.
func HashAddress(addr string, salt string) (hash string, usedSalt string) {
	if salt == "" {
		salt = uuid.New().String()
	}
	if parsed, err := netip.ParseAddr(addr); err == nil {
		addr = parsed.Unmap().String()
	}
	sum := sha256.Sum256([]byte(salt + addr))
	return hex.EncodeToString(sum[:])[:addressHashLength], salt
}
