// Package password implements credential hashing and password-strength
// validation for the authentication core.
package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
)

// SaltSize is the number of random bytes used as the HMAC key for each hash.
const SaltSize = 64

// Hash derives a keyed digest of the plaintext password. Every call draws a
// fresh salt from crypto/rand and uses it as the HMAC-SHA512 key, so two
// hashes of the same password never match.
func Hash(plaintext string) (digest, salt []byte, err error) {
	salt = make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	return computeDigest(plaintext, salt), salt, nil
}

// Verify recomputes the digest for plaintext under the given salt and compares
// it to the stored digest in constant time.
func Verify(plaintext string, digest, salt []byte) bool {
	return hmac.Equal(computeDigest(plaintext, salt), digest)
}

func computeDigest(plaintext string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(plaintext))
	return mac.Sum(nil)
}
