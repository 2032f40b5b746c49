package readstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"airdine/internal/domain/offer"
	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"
	"airdine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type OfferReadStore struct {
	db infra.DBTX
}

func NewOfferReadStore(db infra.DBTX) *OfferReadStore {
	return &OfferReadStore{db: db}
}

const offerViewSQL = `
	SELECT o.id, o.restaurant_id, r.name, o.title, o.description,
	       o.offer_type, o.percent_off, o.amount_off_cents,
	       o.valid_from, o.valid_until, o.valid_days,
	       o.minimum_order_cents, o.maximum_discount_cents,
	       o.max_uses, o.max_uses_per_user, o.current_uses,
	       o.is_active, o.is_featured, o.terms, o.image_url,
	       o.created_at, o.updated_at
	FROM offers o
	JOIN restaurants r ON r.id = o.restaurant_id
	WHERE o.id = $1`

func (s *OfferReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OfferView, error) {
	row := s.db.QueryRow(ctx, offerViewSQL, id)

	view, err := scanOfferView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("offer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find offer by ID", err)
	}
	return view, nil
}

const offerListItemSQL = `
	SELECT o.id, o.restaurant_id, r.name, o.title, o.offer_type,
	       o.percent_off, o.amount_off_cents, o.valid_until,
	       o.is_featured, o.created_at
	FROM offers o
	JOIN restaurants r ON r.id = o.restaurant_id`

// Listings only surface offers valid at query time; weekday filtering and
// the authoritative per-user limit check stay in the activate path.
const offerListBaseCond = ` o.is_active
	  AND now() >= o.valid_from AND now() < o.valid_until
	  AND (o.max_uses IS NULL OR o.current_uses < o.max_uses)`

func (s *OfferReadStore) FindList(
	ctx context.Context,
	filter queries.OfferListFilter,
	after *queries.OfferListKey,
	limit int32,
) ([]*queries.OfferListItem, error) {
	var conds []string
	var args []any

	conds = append(conds, offerListBaseCond)
	if filter.RestaurantID != nil {
		args = append(args, *filter.RestaurantID)
		conds = append(conds, fmt.Sprintf("o.restaurant_id = $%d", len(args)))
	}
	if filter.OfferType != nil {
		args = append(args, *filter.OfferType)
		conds = append(conds, fmt.Sprintf("o.offer_type = $%d", len(args)))
	}
	if filter.FeaturedOnly {
		conds = append(conds, "o.is_featured")
	}
	if filter.ExcludeUsedUpFor != nil {
		args = append(args, *filter.ExcludeUsedUpFor)
		conds = append(conds, fmt.Sprintf(
			"(SELECT count(*) FROM offer_usages u WHERE u.offer_id = o.id AND u.user_id = $%d) < o.max_uses_per_user",
			len(args)))
	}
	// Row-wise comparison pages the all-descending (featured, created_at,
	// id) ordering in one predicate.
	if after != nil {
		args = append(args, after.Featured, after.CreatedAt, after.ID)
		conds = append(conds, fmt.Sprintf("(o.is_featured, o.created_at, o.id) < ($%d, $%d, $%d)",
			len(args)-2, len(args)-1, len(args)))
	}

	args = append(args, limit)
	sql := offerListItemSQL +
		"\n\tWHERE " + strings.Join(conds, "\n\t  AND ") +
		fmt.Sprintf("\n\tORDER BY o.is_featured DESC, o.created_at DESC, o.id DESC\n\tLIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list offers", err)
	}
	defer rows.Close()

	return collectListItems(rows)
}

func (s *OfferReadStore) FindFeatured(ctx context.Context, limit int32) ([]*queries.OfferListItem, error) {
	sql := offerListItemSQL +
		"\n\tWHERE " + offerListBaseCond + " AND o.is_featured" +
		"\n\tORDER BY o.created_at DESC, o.id DESC\n\tLIMIT $1"

	rows, err := s.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list featured offers", err)
	}
	defer rows.Close()

	return collectListItems(rows)
}

// Trending ranks by redemption volume; the recent-window activation count
// rides along for display (any status: an expired code still signals interest).
const trendingSQL = `
	SELECT o.id, o.restaurant_id, r.name, o.title, o.offer_type,
	       o.percent_off, o.amount_off_cents, o.valid_until,
	       o.is_featured, o.created_at, coalesce(a.recent, 0)
	FROM offers o
	JOIN restaurants r ON r.id = o.restaurant_id
	LEFT JOIN (
		SELECT offer_id, count(*) AS recent
		FROM offer_activations
		WHERE created_at >= $1
		GROUP BY offer_id
	) a ON a.offer_id = o.id
	WHERE` + offerListBaseCond + `
	  AND o.current_uses > 0
	ORDER BY o.current_uses DESC, o.created_at DESC
	LIMIT $2`

func (s *OfferReadStore) FindTrending(ctx context.Context, since time.Time, limit int32) ([]*queries.TrendingOfferItem, error) {
	rows, err := s.db.Query(ctx, trendingSQL, since, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list trending offers", err)
	}
	defer rows.Close()

	var result []*queries.TrendingOfferItem
	for rows.Next() {
		item, recent, err := scanTrendingItem(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan trending offer", err)
		}
		result = append(result, &queries.TrendingOfferItem{OfferListItem: *item, RecentActivations: recent})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read trending offers", err)
	}
	return result, nil
}

const statsSQL = `
	SELECT count(*),
	       count(*) FILTER (WHERE is_active),
	       count(*) FILTER (WHERE is_active AND is_featured),
	       coalesce(sum(current_uses), 0)
	FROM offers`

const statsByTypeSQL = `
	SELECT offer_type, count(*)
	FROM offers
	WHERE is_active
	GROUP BY offer_type
	ORDER BY count(*) DESC, offer_type`

func (s *OfferReadStore) CollectStats(ctx context.Context) (*queries.OfferStatsView, error) {
	stats := &queries.OfferStatsView{}

	err := s.db.QueryRow(ctx, statsSQL).Scan(
		&stats.TotalOffers, &stats.ActiveOffers,
		&stats.FeaturedOffers, &stats.TotalRedemptions,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to collect offer stats", err)
	}

	rows, err := s.db.Query(ctx, statsByTypeSQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to collect offer stats by type", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc queries.OfferTypeCount
		if err := rows.Scan(&tc.OfferType, &tc.Count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan offer type count", err)
		}
		stats.ByType = append(stats.ByType, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read offer stats by type", err)
	}
	return stats, nil
}

const userActivationsSQL = `
	SELECT a.id, a.offer_id, o.title, r.name, a.code, a.status,
	       a.created_at, a.expires_at, a.redeemed_at
	FROM offer_activations a
	JOIN offers o ON o.id = a.offer_id
	JOIN restaurants r ON r.id = o.restaurant_id
	WHERE a.user_id = $1
	ORDER BY a.created_at DESC
	LIMIT $2`

func (s *OfferReadStore) FindActivationsByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ActivationView, error) {
	rows, err := s.db.Query(ctx, userActivationsSQL, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list user activations", err)
	}
	defer rows.Close()

	var result []*queries.ActivationView
	for rows.Next() {
		var (
			v          queries.ActivationView
			createdAt  pgtype.Timestamptz
			expiresAt  pgtype.Timestamptz
			redeemedAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&v.ID, &v.OfferID, &v.OfferTitle, &v.RestaurantName, &v.Code,
			&v.Status, &createdAt, &expiresAt, &redeemedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan activation", err)
		}
		v.CreatedAt = createdAt.Time
		v.ExpiresAt = expiresAt.Time
		v.RedeemedAt = pgconv.TimePtrFromPgtype(redeemedAt)
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read user activations", err)
	}
	return result, nil
}

const restaurantActivationsSQL = `
	SELECT a.id, a.offer_id, o.title, a.code, a.status, u.email,
	       a.created_at, a.expires_at, a.redeemed_at, ru.email
	FROM offer_activations a
	JOIN offers o ON o.id = a.offer_id
	JOIN users u ON u.id = a.user_id
	LEFT JOIN users ru ON ru.id = a.redeemed_by
	WHERE o.restaurant_id = $1
	  AND ($2::text IS NULL OR a.status = $2)
	ORDER BY a.created_at DESC
	LIMIT $3`

func (s *OfferReadStore) FindActivationsByRestaurant(ctx context.Context, restaurantID uuid.UUID, status *string, limit int32) ([]*queries.RestaurantActivationView, error) {
	rows, err := s.db.Query(ctx, restaurantActivationsSQL, restaurantID, status, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list restaurant activations", err)
	}
	defer rows.Close()

	var result []*queries.RestaurantActivationView
	for rows.Next() {
		var (
			v             queries.RestaurantActivationView
			createdAt     pgtype.Timestamptz
			expiresAt     pgtype.Timestamptz
			redeemedAt    pgtype.Timestamptz
			redeemerEmail pgtype.Text
		)
		if err := rows.Scan(
			&v.ID, &v.OfferID, &v.OfferTitle, &v.Code, &v.Status, &v.UserEmail,
			&createdAt, &expiresAt, &redeemedAt, &redeemerEmail,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan restaurant activation", err)
		}
		v.CreatedAt = createdAt.Time
		v.ExpiresAt = expiresAt.Time
		v.RedeemedAt = pgconv.TimePtrFromPgtype(redeemedAt)
		v.RedeemerEmail = pgconv.StringPtrFromPgtype(redeemerEmail)
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read restaurant activations", err)
	}
	return result, nil
}

// One row per offer the user has attempted, newest activity first.
const usageSummarySQL = `
	SELECT u.offer_id, o.title, r.name,
	       count(*),
	       count(*) FILTER (WHERE u.status = 'used'),
	       count(*) FILTER (WHERE u.status = 'expired'),
	       max(u.used_at) FILTER (WHERE u.status = 'used')
	FROM offer_usages u
	JOIN offers o ON o.id = u.offer_id
	JOIN restaurants r ON r.id = o.restaurant_id
	WHERE u.user_id = $1
	GROUP BY u.offer_id, o.title, r.name
	ORDER BY max(u.used_at) DESC`

func (s *OfferReadStore) SummarizeUsageByUser(ctx context.Context, userID uuid.UUID) ([]*queries.UsageSummaryItem, error) {
	rows, err := s.db.Query(ctx, usageSummarySQL, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to summarize offer usage", err)
	}
	defer rows.Close()

	var result []*queries.UsageSummaryItem
	for rows.Next() {
		var (
			item       queries.UsageSummaryItem
			lastUsedAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&item.OfferID, &item.OfferTitle, &item.RestaurantName,
			&item.TotalAttempts, &item.UsedCount, &item.ExpiredCount, &lastUsedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan usage summary", err)
		}
		item.LastUsedAt = pgconv.TimePtrFromPgtype(lastUsedAt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read usage summary", err)
	}
	return result, nil
}

func scanOfferView(row pgx.Row) (*queries.OfferView, error) {
	var (
		v                    queries.OfferView
		percentOff           pgtype.Numeric
		amountOffCents       pgtype.Int8
		validFrom            pgtype.Timestamptz
		validUntil           pgtype.Timestamptz
		minimumOrderCents    pgtype.Int8
		maximumDiscountCents pgtype.Int8
		maxUses              pgtype.Int4
		terms                pgtype.Text
		imageURL             pgtype.Text
		createdAt            pgtype.Timestamptz
		updatedAt            pgtype.Timestamptz
	)

	if err := row.Scan(
		&v.ID, &v.RestaurantID, &v.RestaurantName, &v.Title, &v.Description,
		&v.OfferType, &percentOff, &amountOffCents,
		&validFrom, &validUntil, &v.ValidDays,
		&minimumOrderCents, &maximumDiscountCents,
		&maxUses, &v.MaxUsesPerUser, &v.CurrentUses,
		&v.IsActive, &v.IsFeatured, &terms, &imageURL,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	percent, err := pgconv.Float64PtrFromNumeric(percentOff)
	if err != nil {
		return nil, err
	}
	v.PercentOff = percent
	v.AmountOffCents = pgconv.Int64PtrFromPgtype(amountOffCents)
	v.ValidFrom = validFrom.Time
	v.ValidUntil = validUntil.Time
	v.MinimumOrderCents = pgconv.Int64PtrFromPgtype(minimumOrderCents)
	v.MaximumDiscountCents = pgconv.Int64PtrFromPgtype(maximumDiscountCents)
	v.MaxUses = pgconv.Int32PtrFromPgtype(maxUses)
	v.Terms = pgconv.StringPtrFromPgtype(terms)
	v.ImageURL = pgconv.StringPtrFromPgtype(imageURL)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	v.DiscountText = discountText(v.OfferType, v.PercentOff, v.AmountOffCents)
	if v.MaxUses != nil {
		remaining := *v.MaxUses - v.CurrentUses
		if remaining < 0 {
			remaining = 0
		}
		v.RemainingUses = &remaining
	}
	return &v, nil
}

func collectListItems(rows pgx.Rows) ([]*queries.OfferListItem, error) {
	var result []*queries.OfferListItem
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan offer list item", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read offer list", err)
	}
	return result, nil
}

func scanListItem(rows pgx.Rows) (*queries.OfferListItem, error) {
	var (
		item           queries.OfferListItem
		percentOff     pgtype.Numeric
		amountOffCents pgtype.Int8
		validUntil     pgtype.Timestamptz
		createdAt      pgtype.Timestamptz
	)
	if err := rows.Scan(
		&item.ID, &item.RestaurantID, &item.RestaurantName, &item.Title,
		&item.OfferType, &percentOff, &amountOffCents,
		&validUntil, &item.IsFeatured, &createdAt,
	); err != nil {
		return nil, err
	}

	percent, err := pgconv.Float64PtrFromNumeric(percentOff)
	if err != nil {
		return nil, err
	}
	item.ValidUntil = validUntil.Time
	item.CreatedAt = createdAt.Time
	item.DiscountText = discountText(item.OfferType, percent, pgconv.Int64PtrFromPgtype(amountOffCents))
	return &item, nil
}

func scanTrendingItem(rows pgx.Rows) (*queries.OfferListItem, int64, error) {
	var (
		item           queries.OfferListItem
		percentOff     pgtype.Numeric
		amountOffCents pgtype.Int8
		validUntil     pgtype.Timestamptz
		createdAt      pgtype.Timestamptz
		recent         int64
	)
	if err := rows.Scan(
		&item.ID, &item.RestaurantID, &item.RestaurantName, &item.Title,
		&item.OfferType, &percentOff, &amountOffCents,
		&validUntil, &item.IsFeatured, &createdAt, &recent,
	); err != nil {
		return nil, 0, err
	}

	percent, err := pgconv.Float64PtrFromNumeric(percentOff)
	if err != nil {
		return nil, 0, err
	}
	item.ValidUntil = validUntil.Time
	item.CreatedAt = createdAt.Time
	item.DiscountText = discountText(item.OfferType, percent, pgconv.Int64PtrFromPgtype(amountOffCents))
	return &item, recent, nil
}

func discountText(offerType string, percentOff *float64, amountOffCents *int64) string {
	typ, err := offer.NewType(offerType)
	if err != nil {
		return ""
	}
	d, err := offer.NewDiscount(typ, percentOff, amountOffCents)
	if err != nil {
		return ""
	}
	return d.Text()
}
