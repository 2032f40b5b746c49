package repository

import (
	"context"

	"airdine/internal/infra"

	"github.com/google/uuid"
)

type FavoriteRepository struct {
	db infra.DBTX
}

func NewFavoriteRepository(db infra.DBTX) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

const addFavoriteSQL = `
	INSERT INTO favorites (user_id, restaurant_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, restaurant_id) DO NOTHING`

func (r *FavoriteRepository) Add(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, addFavoriteSQL, userID, restaurantID)
	if err != nil {
		return false, infra.WrapRepoErr("failed to add favorite", err)
	}
	return tag.RowsAffected() == 1, nil
}

const removeFavoriteSQL = `
	DELETE FROM favorites
	WHERE user_id = $1 AND restaurant_id = $2`

func (r *FavoriteRepository) Remove(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, removeFavoriteSQL, userID, restaurantID)
	if err != nil {
		return false, infra.WrapRepoErr("failed to remove favorite", err)
	}
	return tag.RowsAffected() == 1, nil
}
