package request

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"airdine/internal/usecase/commands"
)

type CreateBookingRequest struct {
	RestaurantID uuid.UUID `json:"restaurant_id" binding:"required"`
	StartsAt     time.Time `json:"starts_at" binding:"required"`
	EndsAt       time.Time `json:"ends_at" binding:"required"`
	PartySize    int       `json:"party_size" binding:"required,min=1,max=20"`
	Note         *string   `json:"note,omitempty" binding:"omitempty,max=500"`
}

func (r *CreateBookingRequest) ToInput() commands.CreateBookingInput {
	note := ""
	if r.Note != nil {
		note = strings.TrimSpace(*r.Note)
	}
	return commands.CreateBookingInput{
		RestaurantID: r.RestaurantID,
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		PartySize:    r.PartySize,
		Note:         note,
	}
}
