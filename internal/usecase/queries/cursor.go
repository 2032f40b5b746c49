package queries

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxListLimit    = 100
	cursorVersionV1 = "v1"
)

type Cursor struct {
	After string `json:"after,omitempty"`
}

// OfferListKey is the keyset position for the offer listing: featured
// offers sort first, then newest, with the id as tiebreaker.
type OfferListKey struct {
	Featured  bool
	CreatedAt time.Time
	ID        uuid.UUID
}

// Uses microsecond precision to align with PostgreSQL timestamp precision
func EncodeAfterCursor(key OfferListKey) string {
	featured := 0
	if key.Featured {
		featured = 1
	}
	data := fmt.Sprintf("%s:%d:%d-%s", cursorVersionV1, featured, key.CreatedAt.UnixMicro(), key.ID.String())
	return base64.URLEncoding.EncodeToString([]byte(data))
}

func DecodeAfterCursor(cursor string) (OfferListKey, error) {
	if cursor == "" {
		return OfferListKey{}, fmt.Errorf("cursor cannot be empty")
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return OfferListKey{}, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	payload, ok := strings.CutPrefix(string(decoded), cursorVersionV1+":")
	if !ok {
		return OfferListKey{}, fmt.Errorf("unsupported cursor version")
	}

	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return OfferListKey{}, fmt.Errorf("invalid cursor format: expected '<featured>:<micros>-<uuid>'")
	}
	featured, err := strconv.Atoi(parts[0])
	if err != nil || (featured != 0 && featured != 1) {
		return OfferListKey{}, fmt.Errorf("invalid featured flag")
	}

	rest := strings.SplitN(parts[1], "-", 2)
	if len(rest) != 2 {
		return OfferListKey{}, fmt.Errorf("invalid cursor format: expected '<featured>:<micros>-<uuid>'")
	}

	micros, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return OfferListKey{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	id, err := uuid.Parse(rest[1])
	if err != nil {
		return OfferListKey{}, fmt.Errorf("invalid UUID: %w", err)
	}

	return OfferListKey{Featured: featured == 1, CreatedAt: time.UnixMicro(micros), ID: id}, nil
}

func ValidateLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
