package commands

import (
	"context"

	"airdine/internal/infra"
	"airdine/internal/usecase/shared"

	"github.com/google/uuid"
)

type FavoriteCommands interface {
	// Add reports whether the favorite was newly created.
	Add(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
	// Remove reports whether a favorite existed to remove.
	Remove(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
}

type favoriteCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewFavoriteCommands(uow shared.UnitOfWork) FavoriteCommands {
	return &favoriteCommandsImpl{uow: uow}
}

func (c *favoriteCommandsImpl) Add(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	var added bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Reads().RestaurantByID(ctx, restaurantID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRestaurantNotFound
			}
			return err
		}
		var err error
		added, err = tx.Favorites().Add(ctx, userID, restaurantID)
		return err
	})
	return added, err
}

func (c *favoriteCommandsImpl) Remove(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	var removed bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		removed, err = tx.Favorites().Remove(ctx, userID, restaurantID)
		return err
	})
	return removed, err
}
