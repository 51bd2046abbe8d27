package service

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// Defaults for one-time codes.
const (
	DefaultOTPDigits = 6
	DefaultOTPTTL    = 10 * time.Minute
)

// OTP is a plaintext one-time code and the end of its window.
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// CodeSource produces one-time codes.
type CodeSource interface {
	Generate() (OTP, error)
}

// OTPGenerator derives fixed-width numeric codes with HOTP over a fresh
// random secret and counter. Codes are not checked for uniqueness; they are
// scoped to one account.
type OTPGenerator struct {
	Digits int
	TTL    time.Duration
	Now    Clock
}

func (g *OTPGenerator) Generate() (OTP, error) {
	digits := g.Digits
	if digits == 0 {
		digits = DefaultOTPDigits
	}
	if digits < 4 || digits > 8 {
		return OTP{}, fmt.Errorf("otp: unsupported width %d", digits)
	}
	ttl := g.TTL
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}

	var seed [28]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return OTP{}, fmt.Errorf("otp: random: %w", err)
	}
	secret := base32.StdEncoding.EncodeToString(seed[:20])
	counter := binary.BigEndian.Uint64(seed[20:])

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return OTP{}, fmt.Errorf("otp: generate: %w", err)
	}
	return OTP{Code: code, ExpiresAt: g.Now.Now().Add(ttl)}, nil
}
