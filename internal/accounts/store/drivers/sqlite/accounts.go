package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
)

type accountsRepo struct {
	db  dbtx
	now func() time.Time
}

const (
	publicColumns = `id, email, role, verified, active, password_changed_at, profile,
		billing_customer_id, card_ids, invite_branch_id, invite_invited_by, invite_state,
		invite_expires_at, version, created_at, updated_at`

	secretColumns = `password_hash, otp_hash, otp_purpose, otp_expires_at, invite_token_hash`

	// Same arity as secretColumns so one scanner serves both projections.
	redactedColumns = `'', NULL, NULL, NULL, NULL`
)

func selectAccounts(sel store.Selection) string {
	secrets := redactedColumns
	if sel == store.WithSecrets {
		secrets = secretColumns
	}
	return "SELECT " + publicColumns + ", " + secrets + " FROM accounts"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc rowScanner) (domain.Account, error) {
	var (
		a                                 domain.Account
		role, profile, cards              string
		pwChanged, invExpires, otpExpires sql.NullInt64
		invBranch, invBy, invState        sql.NullString
		otpHash, otpPurpose, invHash      sql.NullString
		created, updated                  int64
	)
	err := sc.Scan(
		&a.ID, &a.Email, &role, &a.Verified, &a.Active, &pwChanged, &profile,
		&a.BillingCustomerID, &cards, &invBranch, &invBy, &invState,
		&invExpires, &a.Version, &created, &updated,
		&a.PasswordHash, &otpHash, &otpPurpose, &otpExpires, &invHash,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Role = domain.Role(role)
	a.PasswordChangedAt = mapNullMillisPtr(pwChanged)
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)

	if a.Profile, err = domain.DecodeProfile(a.Role, []byte(profile)); err != nil {
		return domain.Account{}, err
	}
	if err := json.Unmarshal([]byte(cards), &a.CardIDs); err != nil {
		return domain.Account{}, fmt.Errorf("decode card ids: %w", err)
	}

	if otpHash.Valid && otpExpires.Valid {
		a.Challenge = &domain.Challenge{
			CodeHash:  otpHash.String,
			Purpose:   domain.Purpose(mapNullString(otpPurpose)),
			ExpiresAt: fromMillis(otpExpires.Int64),
		}
	}
	if invState.Valid {
		a.Invitation = &domain.Invitation{
			TokenHash: mapNullString(invHash),
			BranchID:  mapNullString(invBranch),
			InvitedBy: mapNullString(invBy),
			State:     domain.InvitationState(invState.String),
			ExpiresAt: fromMillis(invExpires.Int64),
		}
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string, sel store.Selection) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccounts(sel)+` WHERE id = ?`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string, sel store.Selection) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccounts(sel)+` WHERE email = ?`, domain.NormalizeEmail(email)))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

// accountRow flattens an account into insert arguments.
func (r *accountsRepo) accountRow(a domain.Account) ([]any, error) {
	now := r.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.Profile == nil {
		a.Profile = domain.NewProfile(a.Role)
	}
	profile, err := encodeJSON(a.Profile)
	if err != nil {
		return nil, err
	}
	if a.CardIDs == nil {
		a.CardIDs = []string{}
	}
	cards, err := encodeJSON(a.CardIDs)
	if err != nil {
		return nil, err
	}

	var (
		otpHash, otpPurpose sql.NullString
		otpExpires          sql.NullInt64
		invHash, invBranch  sql.NullString
		invBy, invState     sql.NullString
		invExpires          sql.NullInt64
	)
	if c := a.Challenge; c != nil {
		otpHash = mapStringNull(c.CodeHash)
		otpPurpose = mapStringNull(string(c.Purpose))
		otpExpires = mapOptionalMillis(&c.ExpiresAt)
	}
	if inv := a.Invitation; inv != nil {
		invHash = mapStringNull(inv.TokenHash)
		invBranch = mapStringNull(inv.BranchID)
		invBy = mapStringNull(inv.InvitedBy)
		invState = mapStringNull(string(inv.State))
		invExpires = mapOptionalMillis(&inv.ExpiresAt)
	}

	return []any{
		a.ID, domain.NormalizeEmail(a.Email), a.PasswordHash, string(a.Role), a.Verified, a.Active,
		otpHash, otpPurpose, otpExpires,
		mapOptionalMillis(a.PasswordChangedAt), profile, a.BillingCustomerID, cards,
		invHash, invBranch, invBy, invState, invExpires,
		toMillis(a.CreatedAt), toMillis(now),
	}, nil
}

const insertAccount = `INSERT INTO accounts (
	id, email, password_hash, role, verified, active,
	otp_hash, otp_purpose, otp_expires_at,
	password_changed_at, profile, billing_customer_id, card_ids,
	invite_token_hash, invite_branch_id, invite_invited_by, invite_state, invite_expires_at,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	args, err := r.accountRow(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertAccount, args...)
	return mapUnique(err)
}

func (r *accountsRepo) UpsertInvitedAccount(ctx context.Context, a domain.Account) error {
	args, err := r.accountRow(a)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, insertAccount+`
	ON CONFLICT (email) DO UPDATE SET
		role              = excluded.role,
		profile           = excluded.profile,
		otp_hash          = NULL,
		otp_purpose       = NULL,
		otp_expires_at    = NULL,
		invite_token_hash = excluded.invite_token_hash,
		invite_branch_id  = excluded.invite_branch_id,
		invite_invited_by = excluded.invite_invited_by,
		invite_state      = excluded.invite_state,
		invite_expires_at = excluded.invite_expires_at,
		version           = accounts.version + 1,
		updated_at        = excluded.updated_at
	WHERE accounts.invite_state = 'invited'`, args...)
	if err != nil {
		return mapUnique(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, id string, p store.AccountPatch) error {
	sets := []string{"version = version + 1", "updated_at = ?"}
	args := []any{toMillis(r.now())}
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Email != nil {
		set("email", domain.NormalizeEmail(*p.Email))
	}
	if p.PasswordHash != nil {
		set("password_hash", *p.PasswordHash)
	}
	if p.PasswordChangedAt != nil {
		set("password_changed_at", mapOptionalMillis(p.PasswordChangedAt))
	}
	if p.Role != nil {
		set("role", string(*p.Role))
	}
	if p.Verified != nil {
		set("verified", *p.Verified)
	}
	if p.Active != nil {
		set("active", *p.Active)
	}
	if p.Profile != nil {
		profile, err := encodeJSON(p.Profile)
		if err != nil {
			return err
		}
		set("profile", profile)
	}
	if p.BillingCustomerID != nil {
		set("billing_customer_id", *p.BillingCustomerID)
	}
	if p.CardIDs != nil {
		ids := *p.CardIDs
		if ids == nil {
			ids = []string{}
		}
		cards, err := encodeJSON(ids)
		if err != nil {
			return err
		}
		set("card_ids", cards)
	}
	switch {
	case p.ClearChallenge:
		set("otp_hash", nil)
		set("otp_purpose", nil)
		set("otp_expires_at", nil)
	case p.Challenge != nil:
		set("otp_hash", p.Challenge.CodeHash)
		set("otp_purpose", string(p.Challenge.Purpose))
		set("otp_expires_at", toMillis(p.Challenge.ExpiresAt))
	}
	if inv := p.Invitation; inv != nil {
		set("invite_token_hash", mapStringNull(inv.TokenHash))
		set("invite_branch_id", mapStringNull(inv.BranchID))
		set("invite_invited_by", mapStringNull(inv.InvitedBy))
		set("invite_state", string(inv.State))
		set("invite_expires_at", toMillis(inv.ExpiresAt))
	}

	query := "UPDATE accounts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if p.ExpectVersion != nil {
		query += " AND version = ?"
		args = append(args, *p.ExpectVersion)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapUnique(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: either the account is gone or the version moved on.
	var version int64
	if err := r.db.QueryRowContext(ctx, `SELECT version FROM accounts WHERE id = ?`, id).Scan(&version); err != nil {
		return mapNotFound(err)
	}
	return store.ErrConflict
}

func (r *accountsRepo) ListAccounts(ctx context.Context, f store.AccountFilter) ([]domain.Account, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	var active sql.NullBool
	if f.Active != nil {
		active = sql.NullBool{Bool: *f.Active, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, selectAccounts(store.Default)+`
		WHERE (? = '' OR role = ?) AND (? IS NULL OR active = ?)
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`,
		string(f.Role), string(f.Role), active, active, limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE role = ?`, string(role)).Scan(&n)
	return n, err
}

func (r *accountsRepo) ClearExpiredChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET otp_hash = NULL, otp_purpose = NULL, otp_expires_at = NULL,
		    version = version + 1, updated_at = ?
		WHERE otp_hash IS NOT NULL AND otp_expires_at < ?`,
		toMillis(r.now()), toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET invite_token_hash = NULL, version = version + 1, updated_at = ?
		WHERE invite_state = 'invited' AND invite_token_hash IS NOT NULL AND invite_expires_at < ?`,
		toMillis(r.now()), toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
