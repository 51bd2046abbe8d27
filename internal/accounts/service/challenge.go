package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/mail"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

// newChallenge draws a code and returns it with the hashed challenge to store.
func newChallenge(codes CodeSource, h cryptox.Hasher, purpose domain.Purpose) (OTP, domain.Challenge, error) {
	code, err := codes.Generate()
	if err != nil {
		return OTP{}, domain.Challenge{}, err
	}
	hash, err := h.Hash(code.Code)
	if err != nil {
		return OTP{}, domain.Challenge{}, fmt.Errorf("hash code: %w", err)
	}
	return code, domain.Challenge{CodeHash: hash, Purpose: purpose, ExpiresAt: code.ExpiresAt}, nil
}

// checkChallenge matches code against the outstanding challenge. The hash is
// compared before the expiry so a wrong guess never learns the window state.
func checkChallenge(h cryptox.Hasher, c *domain.Challenge, code string, now Clock, purposes ...domain.Purpose) error {
	if c == nil || code == "" {
		return ErrAuth
	}
	allowed := false
	for _, p := range purposes {
		allowed = allowed || c.Purpose == p
	}
	if !allowed || !h.Verify(code, c.CodeHash) {
		return ErrAuth
	}
	if c.Expired(now.Now()) {
		return ErrExpired
	}
	return nil
}

// sendCode emails code to the account. version is the account version written
// together with the challenge. When delivery fails the challenge is cleared,
// unless a later write already replaced it, and ErrDelivery is returned.
func sendCode(ctx context.Context, accounts store.Accounts, m Mailer, metrics *Metrics, a domain.Account, version int64, code OTP, purpose domain.Purpose) error {
	log := slogx.FromContext(ctx)

	msg, err := mail.CodeMessage(a.Email, code.Code, purpose, code.ExpiresAt)
	if err == nil {
		err = m.Send(ctx, msg)
	}
	if err == nil {
		metrics.codeIssued(string(purpose))
		return nil
	}

	log.Error("failed to deliver one-time code",
		slog.String("account_id", a.ID),
		slog.String("purpose", string(purpose)),
		slog.Any("error", err),
	)
	metrics.deliveryFailed(string(purpose))

	cerr := accounts.UpdateAccount(ctx, a.ID, store.AccountPatch{ClearChallenge: true, ExpectVersion: &version})
	switch {
	case errors.Is(cerr, store.ErrConflict):
		log.Info("undelivered challenge already superseded", slog.String("account_id", a.ID))
	case cerr != nil:
		log.Error("failed to clear undelivered challenge",
			slog.String("account_id", a.ID),
			slog.Any("error", cerr),
		)
	}
	return fmt.Errorf("%w: %s", ErrDelivery, purpose)
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConflict
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrDuplicateAccount
	}
	return err
}
