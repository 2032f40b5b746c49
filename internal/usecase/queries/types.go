package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type OfferView struct {
	ID                   uuid.UUID  `json:"id"`
	RestaurantID         uuid.UUID  `json:"restaurant_id"`
	RestaurantName       string     `json:"restaurant_name"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	OfferType            string     `json:"offer_type"`
	PercentOff           *float64   `json:"percent_off,omitempty"`
	AmountOffCents       *int64     `json:"amount_off_cents,omitempty"`
	DiscountText         string     `json:"discount_text"`
	ValidFrom            time.Time  `json:"valid_from"`
	ValidUntil           time.Time  `json:"valid_until"`
	ValidDays            []string   `json:"valid_days"`
	MinimumOrderCents    *int64     `json:"minimum_order_cents,omitempty"`
	MaximumDiscountCents *int64     `json:"maximum_discount_cents,omitempty"`
	MaxUses              *int32     `json:"max_uses,omitempty"`
	MaxUsesPerUser       int32      `json:"max_uses_per_user"`
	CurrentUses          int32      `json:"current_uses"`
	RemainingUses        *int32     `json:"remaining_uses,omitempty"`
	IsActive             bool       `json:"is_active"`
	IsFeatured           bool       `json:"is_featured"`
	Terms                *string    `json:"terms,omitempty"`
	ImageURL             *string    `json:"image_url,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type OfferListItem struct {
	ID             uuid.UUID `json:"id"`
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Title          string    `json:"title"`
	OfferType      string    `json:"offer_type"`
	DiscountText   string    `json:"discount_text"`
	ValidUntil     time.Time `json:"valid_until"`
	IsFeatured     bool      `json:"is_featured"`
	CreatedAt      time.Time `json:"created_at"`
}

type TrendingOfferItem struct {
	OfferListItem
	RecentActivations int64 `json:"recent_activations"`
}

type OfferTypeCount struct {
	OfferType string `json:"offer_type"`
	Count     int64  `json:"count"`
}

type OfferStatsView struct {
	TotalOffers      int64            `json:"total_offers"`
	ActiveOffers     int64            `json:"active_offers"`
	FeaturedOffers   int64            `json:"featured_offers"`
	TotalRedemptions int64            `json:"total_redemptions"`
	ByType           []OfferTypeCount `json:"by_type"`
}

type ActivationView struct {
	ID               uuid.UUID  `json:"id"`
	OfferID          uuid.UUID  `json:"offer_id"`
	OfferTitle       string     `json:"offer_title"`
	RestaurantName   string     `json:"restaurant_name"`
	Code             string     `json:"code"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	SecondsRemaining int64      `json:"seconds_remaining"`
	RedeemedAt       *time.Time `json:"redeemed_at,omitempty"`
}

type RestaurantActivationView struct {
	ID            uuid.UUID  `json:"id"`
	OfferID       uuid.UUID  `json:"offer_id"`
	OfferTitle    string     `json:"offer_title"`
	Code          string     `json:"code"`
	Status        string     `json:"status"`
	UserEmail     string     `json:"user_email"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`
	RedeemerEmail *string    `json:"redeemer_email,omitempty"`
}

type UsageSummaryItem struct {
	OfferID        uuid.UUID  `json:"offer_id"`
	OfferTitle     string     `json:"offer_title"`
	RestaurantName string     `json:"restaurant_name"`
	TotalAttempts  int64      `json:"total_attempts"`
	UsedCount      int64      `json:"used_count"`
	ExpiredCount   int64      `json:"expired_count"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
}

type RestaurantView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Cuisine     string    `json:"cuisine"`
	Address     string    `json:"address"`
	LeadTimeMin int32     `json:"lead_time_min"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BookingView struct {
	ID             uuid.UUID `json:"id"`
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	UserID         uuid.UUID `json:"user_id"`
	Slot           string    `json:"slot"`
	PartySize      int32     `json:"party_size"`
	Status         string    `json:"status"`
	Note           *string   `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type AuthorizedUserView struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty"`
	IsActive     bool       `json:"is_active"`
}
