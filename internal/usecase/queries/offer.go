package queries

import (
	"context"
	"time"

	"airdine/internal/pkg/clock"
	"airdine/internal/pkg/config"

	"github.com/google/uuid"
)

const (
	defaultOfferListLimit = 50
	featuredListLimit     = 6
	trendingWindow        = 24 * time.Hour
	trendingLimit         = 10
)

type OfferListFilter struct {
	RestaurantID *uuid.UUID
	OfferType    *string
	FeaturedOnly bool
	// When set, offers the user has exhausted their per-user limit on
	// are dropped from the listing.
	ExcludeUsedUpFor *uuid.UUID
}

type OfferQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OfferView, error)
	List(ctx context.Context, filter OfferListFilter, after *Cursor, limit int) ([]*OfferListItem, *Cursor, error)
	ListFeatured(ctx context.Context, limit int) ([]*OfferListItem, error)
	ListTrending(ctx context.Context) ([]*TrendingOfferItem, error)
	Stats(ctx context.Context) (*OfferStatsView, error)
	ListUserActivations(ctx context.Context, userID uuid.UUID) ([]*ActivationView, error)
	ListRestaurantActivations(ctx context.Context, restaurantID uuid.UUID, status *string) ([]*RestaurantActivationView, error)
	UsageSummary(ctx context.Context, userID uuid.UUID) ([]*UsageSummaryItem, error)
}

type OfferViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OfferView, error)
	FindList(ctx context.Context, filter OfferListFilter, after *OfferListKey, limit int32) ([]*OfferListItem, error)
	FindFeatured(ctx context.Context, limit int32) ([]*OfferListItem, error)
	FindTrending(ctx context.Context, since time.Time, limit int32) ([]*TrendingOfferItem, error)
	CollectStats(ctx context.Context) (*OfferStatsView, error)
	FindActivationsByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*ActivationView, error)
	FindActivationsByRestaurant(ctx context.Context, restaurantID uuid.UUID, status *string, limit int32) ([]*RestaurantActivationView, error)
	SummarizeUsageByUser(ctx context.Context, userID uuid.UUID) ([]*UsageSummaryItem, error)
}

type offerQueriesImpl struct {
	repo  OfferViewRepo
	clock clock.Clock
	cfg   config.OffersConfig
}

func NewOfferQueries(repo OfferViewRepo, clk clock.Clock, cfg config.OffersConfig) OfferQueries {
	return &offerQueriesImpl{repo: repo, clock: clk, cfg: cfg}
}

func (q *offerQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*OfferView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *offerQueriesImpl) List(ctx context.Context, filter OfferListFilter, after *Cursor, limit int) ([]*OfferListItem, *Cursor, error) {
	limit = ValidateLimit(limit, defaultOfferListLimit)

	var afterKey *OfferListKey
	if after != nil && after.After != "" {
		key, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, err
		}
		afterKey = &key
	}

	// Fetch one extra row to detect whether a next page exists.
	rows, err := q.repo.FindList(ctx, filter, afterKey, int32(limit)+1)
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(OfferListKey{
			Featured:  last.IsFeatured,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})}
	}
	return rows, next, nil
}

func (q *offerQueriesImpl) ListFeatured(ctx context.Context, limit int) ([]*OfferListItem, error) {
	return q.repo.FindFeatured(ctx, int32(ValidateLimit(limit, featuredListLimit)))
}

func (q *offerQueriesImpl) ListTrending(ctx context.Context) ([]*TrendingOfferItem, error) {
	since := q.clock.Now().Add(-trendingWindow)
	return q.repo.FindTrending(ctx, since, trendingLimit)
}

func (q *offerQueriesImpl) Stats(ctx context.Context) (*OfferStatsView, error) {
	return q.repo.CollectStats(ctx)
}

func (q *offerQueriesImpl) ListUserActivations(ctx context.Context, userID uuid.UUID) ([]*ActivationView, error) {
	views, err := q.repo.FindActivationsByUser(ctx, userID, int32(q.cfg.UserActivationsCap))
	if err != nil {
		return nil, err
	}
	q.fillSecondsRemaining(views)
	return views, nil
}

func (q *offerQueriesImpl) ListRestaurantActivations(ctx context.Context, restaurantID uuid.UUID, status *string) ([]*RestaurantActivationView, error) {
	return q.repo.FindActivationsByRestaurant(ctx, restaurantID, status, int32(q.cfg.AdminActivationsCap))
}

func (q *offerQueriesImpl) UsageSummary(ctx context.Context, userID uuid.UUID) ([]*UsageSummaryItem, error) {
	return q.repo.SummarizeUsageByUser(ctx, userID)
}

func (q *offerQueriesImpl) fillSecondsRemaining(views []*ActivationView) {
	now := q.clock.Now()
	for _, v := range views {
		if v.Status != "pending" {
			continue
		}
		if remaining := v.ExpiresAt.Sub(now); remaining > 0 {
			v.SecondsRemaining = int64(remaining.Seconds())
		}
	}
}
