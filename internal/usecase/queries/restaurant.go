package queries

import (
	"context"

	"github.com/google/uuid"
)

type RestaurantListFilter struct {
	Cuisine      *string
	FavoritesFor *uuid.UUID
}

type RestaurantQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RestaurantView, error)
	List(ctx context.Context, filter RestaurantListFilter, limit int) ([]*RestaurantView, error)
}

type RestaurantViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RestaurantView, error)
	FindList(ctx context.Context, filter RestaurantListFilter, limit int32) ([]*RestaurantView, error)
}

type restaurantQueriesImpl struct {
	repo RestaurantViewRepo
}

func NewRestaurantQueries(repo RestaurantViewRepo) RestaurantQueries {
	return &restaurantQueriesImpl{repo: repo}
}

func (q *restaurantQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*RestaurantView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *restaurantQueriesImpl) List(ctx context.Context, filter RestaurantListFilter, limit int) ([]*RestaurantView, error) {
	return q.repo.FindList(ctx, filter, int32(ValidateLimit(limit, defaultOfferListLimit)))
}
