package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
)

// InitSigner returns the session token signer for cfg.
//
// Algorithms:
//   - "EdDSA": an Ed25519 key loaded from SigningKeyFile, generated on first
//     start. The public key is published at /.well-known/jwks.json so other
//     services can verify sessions offline.
//   - "HS256": a shared secret from ACCOUNTS_JWT_SECRET. Nothing is
//     published; verifiers need the secret.
func InitSigner(cfg Config, logger *slog.Logger) (jwtx.Signer, error) {
	switch cfg.SigningAlg {
	case "HS256":
		signer, err := jwtx.NewSignerHS256(cfg.KeyID, []byte(cfg.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize HS256 signer: %w", err)
		}
		logger.Info("session tokens signed with shared secret", "alg", "HS256", "kid", cfg.KeyID)
		return signer, nil

	default:
		key, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		signer, err := jwtx.NewSignerEdDSA(cfg.KeyID, key)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize EdDSA signer: %w", err)
		}
		logger.Info("session tokens signed with Ed25519 key",
			"alg", "EdDSA",
			"kid", cfg.KeyID,
			"key_file", cfg.SigningKeyFile,
		)
		return signer, nil
	}
}
