package password

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// Hasher produces and checks salted argon2id hashes
type Hasher struct {
	params *argon2id.Params
}

// NewDefault returns a Hasher with the library's recommended parameters
func NewDefault() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

// New returns a Hasher with custom parameters
func New(p *argon2id.Params) *Hasher { return &Hasher{params: p} }

// Hash returns an encoded "$argon2id$v=19$m=..." string safe to store
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify compares a plaintext password with a stored hash
func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
