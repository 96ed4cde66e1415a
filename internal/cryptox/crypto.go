// Package cryptox implements password hashing for user accounts.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated per-user salt.
const SaltSize = 32

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id hash of password with salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword reports whether candidate hashes to hash under salt.
// The comparison is constant-time.
func VerifyPassword(hash, salt, candidate []byte) bool {
	got := HashPassword(candidate, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(hash, got) == 1
}
