package readstore

import (
	"context"
	"fmt"
	"strings"

	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"
	"airdine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RestaurantReadStore struct {
	db infra.DBTX
}

func NewRestaurantReadStore(db infra.DBTX) *RestaurantReadStore {
	return &RestaurantReadStore{db: db}
}

const restaurantViewSQL = `
	SELECT id, name, cuisine, address, lead_time_min, is_active,
	       created_at, updated_at
	FROM restaurants
	WHERE id = $1`

func (s *RestaurantReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RestaurantView, error) {
	var (
		v         queries.RestaurantView
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := s.db.QueryRow(ctx, restaurantViewSQL, id).Scan(
		&v.ID, &v.Name, &v.Cuisine, &v.Address, &v.LeadTimeMin, &v.IsActive,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("restaurant not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find restaurant by ID", err)
	}

	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time
	return &v, nil
}

const restaurantListSQL = `
	SELECT rs.id, rs.name, rs.cuisine, rs.address, rs.lead_time_min,
	       rs.is_active, rs.created_at, rs.updated_at
	FROM restaurants rs`

func (s *RestaurantReadStore) FindList(ctx context.Context, filter queries.RestaurantListFilter, limit int32) ([]*queries.RestaurantView, error) {
	conds := []string{"rs.is_active"}
	var args []any
	sql := restaurantListSQL

	if filter.FavoritesFor != nil {
		args = append(args, *filter.FavoritesFor)
		sql += fmt.Sprintf("\n\tJOIN favorites f ON f.restaurant_id = rs.id AND f.user_id = $%d", len(args))
	}
	if filter.Cuisine != nil {
		args = append(args, *filter.Cuisine)
		conds = append(conds, fmt.Sprintf("rs.cuisine = $%d", len(args)))
	}

	args = append(args, limit)
	sql += "\n\tWHERE " + strings.Join(conds, " AND ") +
		fmt.Sprintf("\n\tORDER BY rs.name\n\tLIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list restaurants", err)
	}
	defer rows.Close()

	var result []*queries.RestaurantView
	for rows.Next() {
		var (
			v         queries.RestaurantView
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Cuisine, &v.Address, &v.LeadTimeMin,
			&v.IsActive, &createdAt, &updatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan restaurant", err)
		}
		v.CreatedAt = createdAt.Time
		v.UpdatedAt = updatedAt.Time
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read restaurants", err)
	}
	return result, nil
}
