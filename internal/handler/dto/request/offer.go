package request

import (
	"strings"
)

type RedeemRequest struct {
	Code string `json:"code" binding:"required,min=4,max=12"`
	// Order total in cents; optional until the code is applied to a bill.
	OrderCents int64 `json:"order_cents" binding:"omitempty,min=0"`
}

// NormalizedCode uppercases the submitted code so staff can type it
// case-insensitively.
func (r *RedeemRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.Code))
}
