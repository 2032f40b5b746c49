package readstore

import (
	"context"

	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"
	"airdine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserReadStore struct {
	db infra.DBTX
}

func NewUserReadStore(db infra.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

const userByIDSQL = `
	SELECT id, email, role, restaurant_id, is_active
	FROM users
	WHERE id = $1`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var (
		v            queries.AuthorizedUserView
		restaurantID pgtype.UUID
	)

	err := s.db.QueryRow(ctx, userByIDSQL, id).Scan(
		&v.ID, &v.Email, &v.Role, &restaurantID, &v.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}

	v.RestaurantID = pgconv.UUIDPtrFromPgtype(restaurantID)
	return &v, nil
}

const userByEmailSQL = `
	SELECT id, email, role, restaurant_id, is_active, password_hash
	FROM users
	WHERE email = $1`

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	var (
		v            queries.AuthorizedUserView
		restaurantID pgtype.UUID
		passwordHash string
	)

	err := s.db.QueryRow(ctx, userByEmailSQL, email).Scan(
		&v.ID, &v.Email, &v.Role, &restaurantID, &v.IsActive, &passwordHash,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}

	v.RestaurantID = pgconv.UUIDPtrFromPgtype(restaurantID)
	return &v, passwordHash, nil
}
