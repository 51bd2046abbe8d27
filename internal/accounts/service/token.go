package service

import (
	"time"

	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
)

// Session is a signed session token handed to a client.
type Session struct {
	AccountID string    `json:"account_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionClaims is what a verified session token asserts.
type SessionClaims struct {
	AccountID string
	IssuedAt  time.Time
}

// TokenIssuer creates and verifies stateless session tokens.
type TokenIssuer struct {
	Signer   jwtx.Signer
	Keys     *jwtx.KeySet
	Issuer   string
	TTL      time.Duration
	verifier *jwtx.Verifier
}

// NewTokenIssuer registers signer in a fresh key set and builds the matching
// verifier. now may be nil.
func NewTokenIssuer(signer jwtx.Signer, issuer string, ttl time.Duration, now Clock) *TokenIssuer {
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	return &TokenIssuer{
		Signer: signer,
		Keys:   keys,
		Issuer: issuer,
		TTL:    ttl,
		verifier: jwtx.NewVerifier(keys, jwtx.VerifyOptions{
			Issuer: issuer,
			Now:    now.Now,
		}),
	}
}

// Issue signs a session for accountID valid from issuedAt for TTL.
func (t *TokenIssuer) Issue(accountID string, issuedAt time.Time) (Session, error) {
	claims := jwtx.NewSessionClaims(accountID, t.Issuer, t.TTL, issuedAt)
	tok, err := t.Signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}
	return Session{AccountID: accountID, Token: tok, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature, expiry and issuer with no clock leeway. Every
// failure is ErrInvalidToken.
func (t *TokenIssuer) Verify(token string) (SessionClaims, error) {
	claims, err := t.verifier.Verify(token)
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}
	return SessionClaims{AccountID: claims.Subject, IssuedAt: claims.IssuedAtTime()}, nil
}
