package hashid

import (
	"crypto/rand"
	"errors"
)

const saltChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultSaltLength is the salt length NewSalt callers should use unless they
// have a reason not to.
const DefaultSaltLength = 32

// ErrSaltLength is returned by NewSalt for a non-positive length.
var ErrSaltLength = errors.New("hashid: salt length must be positive")

// NewSalt returns a random base62 string of the given length, suitable for
// HASH_SALT. It is safe for concurrent use.
func NewSalt(length int) (string, error) {
	if length <= 0 {
		return "", ErrSaltLength
	}

	// 248 is the largest multiple of 62 below 256; higher bytes are redrawn.
	const limit = 256 - 256%len(saltChars)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, saltChars[int(b)%len(saltChars)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
