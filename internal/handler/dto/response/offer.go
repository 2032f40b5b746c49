package response

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"airdine/internal/usecase/commands"
	"airdine/internal/usecase/queries"
)

type ActivationPayload struct {
	ID             uuid.UUID `json:"id"`
	OfferID        uuid.UUID `json:"offer_id"`
	ActivationCode string    `json:"activation_code"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type ActivateResponse struct {
	Message    string            `json:"message"`
	Activation ActivationPayload `json:"activation"`
}

func FromActivationResult(r *commands.ActivationResult, ttl time.Duration) *ActivateResponse {
	msg := "Offer activated successfully! Use this code within " + formatTTL(ttl) + "."
	if r.Reused {
		msg = "You already have an active code for this offer"
	}
	return &ActivateResponse{
		Message: msg,
		Activation: ActivationPayload{
			ID:             r.ActivationID,
			OfferID:        r.OfferID,
			ActivationCode: r.Code,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
			ExpiresAt:      r.ExpiresAt,
		},
	}
}

type RedeemResponse struct {
	Message    string        `json:"message"`
	Activation RedeemPayload `json:"activation"`
}

type RedeemPayload struct {
	ID            uuid.UUID `json:"id"`
	OfferID       uuid.UUID `json:"offer_id"`
	UserID        uuid.UUID `json:"user_id"`
	Status        string    `json:"status"`
	DiscountText  string    `json:"discount_text"`
	DiscountCents int64     `json:"discount_cents"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

func FromRedeemResult(r *commands.RedeemResult) *RedeemResponse {
	return &RedeemResponse{
		Message: "Offer code redeemed successfully!",
		Activation: RedeemPayload{
			ID:            r.ActivationID,
			OfferID:       r.OfferID,
			UserID:        r.UserID,
			Status:        "redeemed",
			DiscountText:  r.DiscountText,
			DiscountCents: r.DiscountCents,
			RedeemedAt:    r.RedeemedAt,
		},
	}
}

type OfferListResponse struct {
	Items      []*queries.OfferListItem `json:"items"`
	NextCursor *string                  `json:"next_cursor,omitempty"`
}

func FromOfferList(items []*queries.OfferListItem, next *queries.Cursor) *OfferListResponse {
	resp := &OfferListResponse{Items: items}
	if resp.Items == nil {
		resp.Items = []*queries.OfferListItem{}
	}
	if next != nil && next.After != "" {
		resp.NextCursor = &next.After
	}
	return resp
}

func formatTTL(ttl time.Duration) string {
	if ttl >= time.Minute && ttl%time.Minute == 0 {
		minutes := int(ttl / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return ttl.String()
}
