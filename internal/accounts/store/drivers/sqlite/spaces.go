package sqlite

import (
	"context"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
)

type spacesRepo struct {
	db dbtx
}

func (r *spacesRepo) GetSpaceByID(ctx context.Context, id string) (domain.Space, error) {
	var (
		s       domain.Space
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, category, name, location, created_at FROM spaces WHERE id = ?`, id,
	).Scan(&s.ID, &s.OwnerID, &s.Category, &s.Name, &s.Location, &created)
	if err != nil {
		return domain.Space{}, mapNotFound(err)
	}
	s.CreatedAt = fromMillis(created)
	return s, nil
}

func (r *spacesRepo) CreateSpace(ctx context.Context, s domain.Space) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO spaces (id, owner_id, category, name, location, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.OwnerID, string(s.Category), s.Name, s.Location, toMillis(s.CreatedAt),
	)
	return mapUnique(err)
}
