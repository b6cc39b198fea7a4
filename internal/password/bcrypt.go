package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/account-server/internal/model"
)

var _ model.Hasher = (*Bcrypt)(nil)

// Bcrypt implements model.Hasher using the bcrypt KDF. Each digest embeds
// its own random salt, so hashing the same plaintext twice yields different
// digests that both verify.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given cost. Cost values outside the
// bcrypt range fall back to the library default.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash produces a salted one-way digest of plaintext.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Compare reports whether plaintext matches digest.
func (b *Bcrypt) Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
