package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "spacehub-accounts"

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEdDSASigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	key, err := cryptox.LoadOrCreateEd25519Key("")
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(kid, key)
	require.NoError(t, err)
	return signer
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newEdDSASigner(t, "key-1")
	require.Equal(t, "EdDSA", signer.Alg())

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	jwks := keys.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.Equal(t, "key-1", jwks.Keys[0].Kid)

	claims := jwtx.NewSessionClaims("acc-123", exampleIssuer, time.Hour, epoch)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	v := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Issuer: exampleIssuer, Now: fixedClock(epoch.Add(time.Minute))})
	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acc-123", got.Subject)
	require.Equal(t, epoch, got.IssuedAt.Time.UTC())
	require.NotEmpty(t, got.ID)
}

func TestHS256SignAndVerify(t *testing.T) {
	_, err := jwtx.NewSignerHS256("short", []byte("too-short"))
	require.Error(t, err)

	signer, err := jwtx.NewSignerHS256("hs-1", []byte(strings.Repeat("s", 32)))
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)
	require.True(t, keys.IsReady())
	require.Empty(t, keys.PublicJWKS().Keys, "shared secrets are never published")

	token, err := signer.Sign(jwtx.NewSessionClaims("acc-1", exampleIssuer, time.Hour, epoch))
	require.NoError(t, err)

	got, err := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Now: fixedClock(epoch)}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acc-1", got.Subject)
}

func TestVerifyFailures(t *testing.T) {
	signer := newEdDSASigner(t, "key-1")
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	valid, err := signer.Sign(jwtx.NewSessionClaims("acc-1", exampleIssuer, time.Hour, epoch))
	require.NoError(t, err)

	stranger := newEdDSASigner(t, "key-1")
	forged, err := stranger.Sign(jwtx.NewSessionClaims("acc-1", exampleIssuer, time.Hour, epoch))
	require.NoError(t, err)

	unknown := newEdDSASigner(t, "key-2")
	unknownKID, err := unknown.Sign(jwtx.NewSessionClaims("acc-1", exampleIssuer, time.Hour, epoch))
	require.NoError(t, err)

	otherIssuer, err := signer.Sign(jwtx.NewSessionClaims("acc-1", "someone-else", time.Hour, epoch))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
		want  error
	}{
		{"expired", valid, epoch.Add(2 * time.Hour), jwtx.ErrExpired},
		{"not yet valid", valid, epoch.Add(-time.Hour), jwtx.ErrNotYetValid},
		{"forged signature", forged, epoch, jwtx.ErrInvalidSig},
		{"unknown kid", unknownKID, epoch, jwtx.ErrInvalidSig},
		{"wrong issuer", otherIssuer, epoch, jwtx.ErrIssuer},
		{"garbage", "not.a.jwt", epoch, jwtx.ErrMalformed},
		{"empty", "", epoch, jwtx.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Issuer: exampleIssuer, Now: fixedClock(tt.now)})
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestKeySet_AddJWK(t *testing.T) {
	signer := newEdDSASigner(t, "remote")

	// a resource service only sees the published JWKS
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(signer.PublicJWK()))

	token, err := signer.Sign(jwtx.NewSessionClaims("acc-9", exampleIssuer, time.Hour, epoch))
	require.NoError(t, err)

	got, err := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Now: fixedClock(epoch)}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acc-9", got.Subject)

	require.Error(t, keys.AddJWK(jwtx.JWK{Kty: "RSA"}))
}

func TestIssuedAtKeepsMilliseconds(t *testing.T) {
	signer := newEdDSASigner(t, "key-1")
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	at := epoch.Add(340 * time.Millisecond)
	token, err := signer.Sign(jwtx.NewSessionClaims("acc-1", exampleIssuer, time.Hour, at))
	require.NoError(t, err)

	got, err := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Now: fixedClock(at)}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, epoch, got.IssuedAt.Time.UTC(), "iat stays in whole seconds")
	require.Equal(t, at, got.IssuedAtTime())

	// tokens minted without iat_ms fall back to iat
	legacy := jwtx.Claims{RegisteredClaims: got.RegisteredClaims}
	require.Equal(t, epoch, legacy.IssuedAtTime().UTC())
}
