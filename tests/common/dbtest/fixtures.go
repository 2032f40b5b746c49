//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const defaultRestaurantName = "Default Restaurant"

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	var restaurantID *uuid.UUID
	if role == "staff" {
		id := DefaultRestaurantID(t, db)
		restaurantID = &id
	}

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, password_hash, role, restaurant_id, is_active) VALUES ($1, $2, $3, $4, $5, true) ON CONFLICT (email) DO NOTHING",
		userID, email, testPasswordHash, role, restaurantID)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

func CreateTestRestaurant(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()

	restaurantID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO restaurants (id, name, cuisine) SELECT $1, $2, 'italian' WHERE NOT EXISTS (SELECT 1 FROM restaurants WHERE name = $2)",
		restaurantID, name)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM restaurants WHERE name = $1", name).Scan(&restaurantID)
	}

	return restaurantID
}

func DefaultRestaurantID(t *testing.T, db DBLike) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(context.Background(),
		"SELECT id FROM restaurants WHERE name = $1 LIMIT 1", defaultRestaurantName).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestOffer inserts a currently valid percentage offer for the given
// restaurant and returns its ID.
func CreateTestOffer(t *testing.T, db DBLike, restaurantID uuid.UUID, maxUses *int32, maxUsesPerUser int32) uuid.UUID {
	t.Helper()

	offerID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO offers (id, restaurant_id, title, offer_type, percent_off,
		                    valid_from, valid_until, max_uses, max_uses_per_user)
		VALUES ($1, $2, 'Test Offer', 'percentage', 20,
		        now() - interval '1 day', now() + interval '30 days', $3, $4)`,
		offerID, restaurantID, maxUses, maxUsesPerUser)
	require.NoError(t, err)

	return offerID
}

// CreateFeaturedTestOffer inserts a currently valid featured offer, created
// earlier than any offer inserted afterwards in the same test.
func CreateFeaturedTestOffer(t *testing.T, db DBLike, restaurantID uuid.UUID) uuid.UUID {
	t.Helper()

	offerID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO offers (id, restaurant_id, title, offer_type, percent_off,
		                    valid_from, valid_until, max_uses_per_user, is_featured, created_at)
		VALUES ($1, $2, 'Featured Offer', 'percentage', 30,
		        now() - interval '1 day', now() + interval '30 days', 1, true, now() - interval '1 hour')`,
		offerID, restaurantID)
	require.NoError(t, err)

	return offerID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO restaurants (id, name, cuisine)
		SELECT gen_random_uuid(), v.name, v.cuisine
		FROM (VALUES ('Default Restaurant', 'italian'),
		             ('Test Restaurant', 'japanese')) AS v(name, cuisine)
		WHERE NOT EXISTS (SELECT 1 FROM restaurants WHERE restaurants.name = v.name);
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
