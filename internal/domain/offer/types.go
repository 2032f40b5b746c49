package offer

import (
	"strings"
	"time"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
	TypeBogo       Type = "bogo"
	TypeCombo      Type = "combo"
	TypeSpecial    Type = "special"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypePercentage, TypeFixed, TypeBogo, TypeCombo, TypeSpecial:
		return true
	default:
		return false
	}
}

func NewType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", ErrInvalidOfferType
	}
	return t, nil
}

type ActivationStatus string

const (
	ActivationPending   ActivationStatus = "pending"
	ActivationRedeemed  ActivationStatus = "redeemed"
	ActivationExpired   ActivationStatus = "expired"
	ActivationCancelled ActivationStatus = "cancelled"
)

func (s ActivationStatus) String() string {
	return string(s)
}

func (s ActivationStatus) IsValid() bool {
	switch s {
	case ActivationPending, ActivationRedeemed, ActivationExpired, ActivationCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status can never transition again.
func (s ActivationStatus) IsTerminal() bool {
	return s != ActivationPending
}

type UsageStatus string

const (
	UsageUsed    UsageStatus = "used"
	UsageExpired UsageStatus = "expired"
)

func (s UsageStatus) String() string {
	return string(s)
}

// DayName returns the lowercase weekday name used in the valid_days list.
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
