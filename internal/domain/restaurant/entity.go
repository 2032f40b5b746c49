package restaurant

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("restaurant name cannot be empty")

// Restaurant is the owning side of offers and bookings. The directory is
// read-mostly here; creation happens through back-office tooling.
type Restaurant struct {
	id        uuid.UUID
	name      string
	cuisine   string
	address   string
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

func NewRestaurant(id uuid.UUID, name, cuisine, address string, isActive bool) (*Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Restaurant{
		id:       id,
		name:     name,
		cuisine:  cuisine,
		address:  address,
		isActive: isActive,
	}, nil
}

func (r *Restaurant) ID() uuid.UUID        { return r.id }
func (r *Restaurant) Name() string         { return r.name }
func (r *Restaurant) Cuisine() string      { return r.cuisine }
func (r *Restaurant) Address() string      { return r.address }
func (r *Restaurant) IsActive() bool       { return r.isActive }
func (r *Restaurant) CreatedAt() time.Time { return r.createdAt }
func (r *Restaurant) UpdatedAt() time.Time { return r.updatedAt }
