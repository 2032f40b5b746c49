package shared

import (
	"github.com/google/uuid"
)

// Minimal snapshot for command read operations
type RestaurantSnapshot struct {
	ID          uuid.UUID
	Name        string
	LeadTimeMin int
	IsActive    bool
}
