// Package auth handles API key validation for the gateway.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sipico/nlsql-gateway/internal/logging"
)

// HeaderName is the request header carrying the caller's API key.
const HeaderName = "X-API-Key"

// Errors for authentication failures.
var (
	// ErrMissingKey indicates no API key was provided.
	ErrMissingKey = errors.New("auth: missing API key")
	// ErrInvalidKey indicates the API key is not in the configured set.
	ErrInvalidKey = errors.New("auth: invalid API key")
)

// HashKey returns a short SHA-256 fingerprint of a key for logs and metrics.
// The raw key must never be logged.
func HashKey(key string) string {
	return logging.Fingerprint(key)
}

// Registry is the immutable set of accepted API keys, built once at startup.
//
// Entries are either plaintext keys or bcrypt hashes. Plaintext keys are
// stored as SHA-256 digests and compared in constant time.
type Registry struct {
	digests [][sha256.Size]byte
	hashes  [][]byte
}

// NewRegistry builds a Registry from configured keys.
// Empty entries are ignored.
func NewRegistry(keys []string) *Registry {
	r := &Registry{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if isBcryptHash(k) {
			r.hashes = append(r.hashes, []byte(k))
			continue
		}
		r.digests = append(r.digests, sha256.Sum256([]byte(k)))
	}
	return r
}

// Len returns the number of configured keys.
func (r *Registry) Len() int {
	return len(r.digests) + len(r.hashes)
}

// Authenticate checks a presented key against the registry.
// Returns ErrMissingKey for an empty key and ErrInvalidKey for an unknown one.
func (r *Registry) Authenticate(key string) error {
	if key == "" {
		return ErrMissingKey
	}

	digest := sha256.Sum256([]byte(key))
	matched := 0
	// Must compare against every digest so timing does not reveal the position
	for i := range r.digests {
		matched |= subtle.ConstantTimeCompare(digest[:], r.digests[i][:])
	}
	if matched == 1 {
		return nil
	}

	for _, h := range r.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(key)) == nil {
			return nil
		}
	}

	return ErrInvalidKey
}

// HashForConfig produces a bcrypt hash of key for use in API_KEYS.
func HashForConfig(key string) (string, error) {
	if key == "" {
		return "", ErrMissingKey
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
