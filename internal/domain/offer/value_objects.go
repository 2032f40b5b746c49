package offer

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

var (
	ErrInvalidOfferType = errors.New("invalid offer type")
	ErrInvalidCode      = errors.New("invalid activation code")
	ErrInvalidDiscount  = errors.New("discount parameters do not match offer type")
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4,12}$`)

// Code is a short human-readable activation code shown to staff at redemption.
type Code string

func NewCode(s string) (Code, error) {
	if !codePattern.MatchString(s) {
		return "", ErrInvalidCode
	}
	return Code(s), nil
}

func (c Code) String() string {
	return string(c)
}

// GenerateCode draws length characters uniformly from the A-Z0-9 charset.
// Uniqueness is not guaranteed here; callers retry on collision.
func GenerateCode(length int) (Code, error) {
	if length < 4 || length > 12 {
		return "", ErrInvalidCode
	}
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeCharset[n.Int64()]
	}
	return Code(buf), nil
}

// Discount holds the value parameters of an offer, validated against its type:
// percentage offers carry a percent in (0, 100], fixed offers carry a positive
// amount in cents, and bogo/combo/special offers carry neither.
type Discount struct {
	offerType      Type
	percentOff     *float64
	amountOffCents *int64
}

func NewDiscount(offerType Type, percentOff *float64, amountOffCents *int64) (Discount, error) {
	if !offerType.IsValid() {
		return Discount{}, ErrInvalidOfferType
	}
	switch offerType {
	case TypePercentage:
		if percentOff == nil || *percentOff <= 0 || *percentOff > 100 || amountOffCents != nil {
			return Discount{}, ErrInvalidDiscount
		}
	case TypeFixed:
		if amountOffCents == nil || *amountOffCents <= 0 || percentOff != nil {
			return Discount{}, ErrInvalidDiscount
		}
	default:
		if percentOff != nil || amountOffCents != nil {
			return Discount{}, ErrInvalidDiscount
		}
	}
	return Discount{offerType: offerType, percentOff: percentOff, amountOffCents: amountOffCents}, nil
}

func (d Discount) OfferType() Type {
	return d.offerType
}

func (d Discount) PercentOff() *float64 {
	return d.percentOff
}

func (d Discount) AmountOffCents() *int64 {
	return d.amountOffCents
}

// Text renders the short human-readable label shown in listings.
func (d Discount) Text() string {
	switch d.offerType {
	case TypePercentage:
		return fmt.Sprintf("%.0f%% OFF", *d.percentOff)
	case TypeFixed:
		return fmt.Sprintf("$%.2f OFF", float64(*d.amountOffCents)/100.0)
	case TypeBogo:
		return "Buy 1 Get 1"
	case TypeCombo:
		return "Combo Deal"
	default:
		return "Special Offer"
	}
}
