package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

type verificationKey struct {
	alg string
	key any // ed25519.PublicKey | []byte
}

// KeySet holds verification keys by kid. It is safe for concurrent use by
// the JWKS handler and the verifier.
type KeySet struct {
	mu   sync.RWMutex
	jwks JWKS
	keys map[string]verificationKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]verificationKey)}
}

// AddSigner registers the verification key of s. Signers with a public key
// are also published in the JWKS.
func (k *KeySet) AddSigner(s Signer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[s.KID()] = verificationKey{alg: s.Alg(), key: s.VerificationKey()}
	if p, ok := s.(interface{ PublicJWK() JWK }); ok {
		k.jwks.Keys = append(k.jwks.Keys, p.PublicJWK())
	}
}

// AddJWK adds a published public key, e.g. one fetched from another service.
func (k *KeySet) AddJWK(j JWK) error {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return errors.New("jwtx: unsupported key " + j.Kty + "/" + j.Crv)
	}
	xb, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return err
	}
	if len(xb) != ed25519.PublicKeySize {
		return errors.New("jwtx: invalid Ed25519 public key size")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[j.Kid] = verificationKey{alg: "EdDSA", key: ed25519.PublicKey(xb)}
	k.jwks.Keys = append(k.jwks.Keys, j)
	return nil
}

// Get returns the algorithm and key registered for kid.
func (k *KeySet) Get(kid string) (string, any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if vk, ok := k.keys[kid]; ok {
		return vk.alg, vk.key, nil
	}
	return "", nil, ErrNoKey
}

// PublicJWKS returns a snapshot of the published keys.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := JWKS{Keys: make([]JWK, len(k.jwks.Keys))}
	copy(out.Keys, k.jwks.Keys)
	return out
}

// IsReady returns true if at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}
