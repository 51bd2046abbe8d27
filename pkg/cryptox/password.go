package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hashing algorithms for newly produced hashes.
const (
	AlgArgon2id = "argon2id"
	AlgBcrypt   = "bcrypt"
)

// MinBcryptCost is the lowest work factor a Hasher accepts for bcrypt.
const MinBcryptCost = 10

// Argon2Params tunes the argon2id work factor.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultArgon2Params follows the OWASP minimum recommendation for argon2id.
var DefaultArgon2Params = Argon2Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// Hasher hashes and verifies secrets (passwords and one-time codes).
//
// New hashes use Algorithm. Verification picks the algorithm from the
// encoded hash itself, so argon2id and bcrypt hashes can live side by side.
// The zero value hashes with argon2id, default parameters and no pepper.
type Hasher struct {
	Algorithm  string
	Pepper     string
	Argon2     Argon2Params
	BcryptCost int
}

// Hash returns an encoded one-way hash of secret.
func (h Hasher) Hash(secret string) (string, error) {
	switch h.Algorithm {
	case "", AlgArgon2id:
		return h.hashArgon2(secret)
	case AlgBcrypt:
		cost := h.BcryptCost
		if cost < MinBcryptCost {
			cost = MinBcryptCost
		}
		// bcrypt ignores everything past 72 bytes, the pepper goes first
		out, err := bcrypt.GenerateFromPassword([]byte(h.Pepper+secret), cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", h.Algorithm)
	}
}

// Verify reports whether secret matches encoded. It never returns an error:
// malformed hashes and mismatches both yield false.
func (h Hasher) Verify(secret, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return h.verifyArgon2(secret, encoded) == nil
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(h.Pepper+secret)) == nil
	default:
		return false
	}
}

func (h Hasher) params() Argon2Params {
	p := h.Argon2
	if p.Memory == 0 {
		p = DefaultArgon2Params
	}
	return p
}

// hashArgon2 generates a PHC-format Argon2id hash string including salt and parameters.
func (h Hasher) hashArgon2(secret string) (string, error) {
	p := h.params()
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(secret+h.Pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func (h Hasher) verifyArgon2(secret, encoded string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(secret+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - bounded by the encoded hash
	)
	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return errors.New("secret does not match")
}
