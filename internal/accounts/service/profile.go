package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

// ProfileService covers what an authenticated account may do to itself.
type ProfileService struct {
	Store   store.Store
	Billing Billing // optional; card operations fail with ErrBilling without it

	OptimisticLocking bool
}

// Me returns the account without credential material.
func (s *ProfileService) Me(ctx context.Context, accountID string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID, store.Default)
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return a, nil
}

// UpdateProfile applies patch to the role's profile. Fields outside the
// role's writable set reject the whole patch.
func (s *ProfileService) UpdateProfile(ctx context.Context, accountID string, patch map[string]string) (domain.Account, error) {
	if len(patch) == 0 {
		return domain.Account{}, invalid("profile", "is empty")
	}

	a, err := s.Me(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	profile, err := domain.PatchProfile(a.Profile, patch)
	if err != nil {
		var nw *domain.FieldsNotWritableError
		if errors.As(err, &nw) {
			fields := make(map[string]string, len(nw.Fields))
			for _, f := range nw.Fields {
				fields[f] = "is not writable for role " + string(nw.Role)
			}
			return domain.Account{}, &ValidationError{Fields: fields}
		}
		return domain.Account{}, err
	}

	err = s.Store.Accounts().UpdateAccount(ctx, a.ID, store.AccountPatch{
		Profile:       profile,
		ExpectVersion: versionGuard(s.OptimisticLocking, a.Version),
	})
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return s.Me(ctx, a.ID)
}

type UpdateMeInput struct {
	Email string `json:"email" validate:"omitempty,email,max=254"`

	// Present only so they can be refused; passwords change through
	// UpdatePassword.
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// UpdateMe changes account-level fields other than the password.
func (s *ProfileService) UpdateMe(ctx context.Context, accountID string, in UpdateMeInput) (domain.Account, error) {
	extra := map[string]string{}
	if in.Password != "" || in.PasswordConfirm != "" {
		extra["password"] = "cannot be changed here, use the password endpoint"
	}
	in.Email = domain.NormalizeEmail(in.Email)
	if err := checkInput(in, extra); err != nil {
		return domain.Account{}, err
	}

	a, err := s.Me(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if in.Email == "" || in.Email == a.Email {
		return a, nil
	}

	err = s.Store.Accounts().UpdateAccount(ctx, a.ID, store.AccountPatch{
		Email:         &in.Email,
		ExpectVersion: versionGuard(s.OptimisticLocking, a.Version),
	})
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return s.Me(ctx, a.ID)
}

// DeactivateMe soft-deletes the account. Its sessions stop authenticating.
func (s *ProfileService) DeactivateMe(ctx context.Context, accountID string) error {
	inactive := false
	if err := s.Store.Accounts().UpdateAccount(ctx, accountID, store.AccountPatch{Active: &inactive}); err != nil {
		return mapStoreErr(err)
	}
	slogx.FromContext(ctx).Info("account deactivated", slog.String("account_id", accountID))
	return nil
}

type AddCardInput struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,max=255"`
}

// AddCard attaches a payment method through the billing provider, creating
// the billing customer first when signup could not.
func (s *ProfileService) AddCard(ctx context.Context, accountID string, in AddCardInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if err := checkInput(in, nil); err != nil {
		return domain.Account{}, err
	}
	if s.Billing == nil {
		return domain.Account{}, ErrBilling
	}

	a, err := s.Me(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	patch := store.AccountPatch{ExpectVersion: &a.Version}
	customerID := a.BillingCustomerID
	if customerID == "" {
		customerID, err = s.Billing.CreateCustomer(ctx, a.Email, domain.PersonalOf(a.Profile).FullName)
		if err != nil {
			log.Error("failed to create billing customer", slog.Any("error", err))
			return domain.Account{}, ErrBilling
		}
		patch.BillingCustomerID = &customerID
	}

	cardID, err := s.Billing.AttachCard(ctx, customerID, in.PaymentMethodID)
	if err != nil {
		log.Warn("failed to attach card", slog.Any("error", err))
		return domain.Account{}, ErrBilling
	}

	cards := a.CardIDs
	if !slices.Contains(cards, cardID) {
		cards = append(slices.Clone(cards), cardID)
	}
	patch.CardIDs = &cards

	if err := s.Store.Accounts().UpdateAccount(ctx, a.ID, patch); err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return s.Me(ctx, a.ID)
}

// RemoveCard detaches one of the account's stored cards.
func (s *ProfileService) RemoveCard(ctx context.Context, accountID, cardID string) (domain.Account, error) {
	if s.Billing == nil {
		return domain.Account{}, ErrBilling
	}

	a, err := s.Me(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if !a.HasCard(cardID) {
		return domain.Account{}, ErrNotFound
	}

	if err := s.Billing.DetachCard(ctx, a.BillingCustomerID, cardID); err != nil {
		slogx.FromContext(ctx).Warn("failed to detach card", slog.Any("error", err))
		return domain.Account{}, ErrBilling
	}

	cards := slices.DeleteFunc(slices.Clone(a.CardIDs), func(id string) bool { return id == cardID })
	err = s.Store.Accounts().UpdateAccount(ctx, a.ID, store.AccountPatch{
		CardIDs:       &cards,
		ExpectVersion: &a.Version,
	})
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return s.Me(ctx, a.ID)
}
