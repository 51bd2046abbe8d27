package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrConflict      = errors.New("store: version conflict")
)

// Store is the root data access interface. Concrete drivers implement this.
// Sub-repositories are exposed as methods so a Tx can hand out the same repos
// bound to the transaction, and nested transactions can't happen by accident.
type Store interface {
	Accounts() Accounts
	Spaces() Spaces

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Selection picks the projection of an account read.
type Selection int

const (
	// Default omits the password hash, the OTP challenge and the invitation
	// token hash.
	Default Selection = iota
	// WithSecrets additionally loads credential material.
	WithSecrets
)

// AccountPatch describes a partial update. Nil fields are left untouched.
type AccountPatch struct {
	Email             *string
	PasswordHash      *string
	PasswordChangedAt *time.Time
	Role              *domain.Role
	Verified          *bool
	Active            *bool
	Profile           domain.Profile
	BillingCustomerID *string
	CardIDs           *[]string

	// Challenge replaces the OTP slot; ClearChallenge empties it.
	Challenge      *domain.Challenge
	ClearChallenge bool

	// Invitation replaces every invitation column, token hash included.
	Invitation *domain.Invitation

	// ExpectVersion makes the update conditional on the stored version and
	// yields ErrConflict when it moved on.
	ExpectVersion *int64
}

type AccountFilter struct {
	Role   domain.Role // empty for any
	Active *bool
	Limit  int
	Offset int
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string, sel Selection) (domain.Account, error)

	// GetAccountByEmail looks up by normalized email.
	GetAccountByEmail(ctx context.Context, email string, sel Selection) (domain.Account, error)

	// CreateAccount inserts a new account; ErrAlreadyExists on a taken email.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpsertInvitedAccount inserts a pending invited account, or refreshes one
	// with the same email that is still in the invited state. Any other
	// account holding the email yields ErrAlreadyExists.
	UpsertInvitedAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount applies patch, bumping version and updated_at.
	UpdateAccount(ctx context.Context, id string, patch AccountPatch) error

	// ListAccounts returns accounts ordered by creation (oldest first).
	ListAccounts(ctx context.Context, f AccountFilter) ([]domain.Account, error)

	// CountByRole counts accounts holding role.
	CountByRole(ctx context.Context, role domain.Role) (int, error)

	// ClearExpiredChallenges empties OTP slots that expired before now.
	ClearExpiredChallenges(ctx context.Context, now time.Time) (int64, error)

	// ExpireInvitations drops the token of invitations still pending past their window.
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

type Spaces interface {
	// GetSpaceByID resolves a branch reference.
	GetSpaceByID(ctx context.Context, id string) (domain.Space, error)

	// CreateSpace inserts a space owned by an existing account.
	CreateSpace(ctx context.Context, s domain.Space) error
}
