package repository

import (
	"context"
	"time"

	"airdine/internal/infra"
	"airdine/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserRepository struct {
	db infra.DBTX
}

func NewUserRepository(db infra.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const createUserSQL = `
	INSERT INTO users (id, email, password_hash, role, restaurant_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

func (r *UserRepository) Create(ctx context.Context, params shared.CreateUserParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, createUserSQL,
		uuid.New(), params.Email, params.PasswordHash, params.Role, params.RestaurantID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create user", err)
	}
	return id, nil
}

const updateLastLoginSQL = `
	UPDATE users
	SET last_login = $2, updated_at = now()
	WHERE id = $1`

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, updateLastLoginSQL, userID, at)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}
