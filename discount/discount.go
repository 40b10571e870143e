// Package discount validates discount codes and chooses between a typed-in
// code and the auto-applied promotion.
package discount

import (
	"errors"
	"strings"
	"time"

	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("discount code not found")
	ErrInactive     = errors.New("discount code is not active")
	ErrNotStarted   = errors.New("discount code is not valid yet")
	ErrExpired      = errors.New("discount code has expired")
	ErrBelowMinimum = errors.New("order value is below the minimum for this code")
	ErrExhausted    = errors.New("discount code usage limit reached")
	ErrUserLimit    = errors.New("discount code already used the maximum number of times for this customer")
)

var hundred = decimal.NewFromInt(100)

// Normalize is the canonical form codes are stored and looked up in
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Check reports why code cannot be used, or nil. subtotal is the items
// subtotal; userUses is how often this customer already used the code.
func Check(code models.DiscountCode, subtotal decimal.Decimal, now time.Time, userUses int) error {
	switch {
	case !code.Active:
		return ErrInactive
	case code.StartsAt != nil && now.Before(*code.StartsAt):
		return ErrNotStarted
	case code.ExpiresAt != nil && !now.Before(*code.ExpiresAt):
		return ErrExpired
	case code.MaxUses > 0 && code.UsedCount >= code.MaxUses:
		return ErrExhausted
	case code.PerUserMaxUses > 0 && userUses >= code.PerUserMaxUses:
		return ErrUserLimit
	case subtotal.LessThan(code.MinOrder):
		return ErrBelowMinimum
	}
	return nil
}

// Amount is the discount code grants on gross (items + packaging + delivery).
// An amount code never exceeds gross.
func Amount(code models.DiscountCode, gross decimal.Decimal) decimal.Decimal {
	if gross.Sign() <= 0 || code.Value.Sign() <= 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch code.Type {
	case models.DiscountPercent:
		pct := decimal.Min(code.Value, hundred)
		d = gross.Mul(pct).Div(hundred)
	case models.DiscountAmount:
		d = decimal.Min(code.Value, gross)
	default:
		return decimal.Zero
	}
	return money.Round(d)
}

// Applied is the code that ends up on the order
type Applied struct {
	Code   *models.DiscountCode
	Auto   bool
	Amount decimal.Decimal
}

// UsageFunc returns how often the current customer already used a code
type UsageFunc func(codeID uint) int

// Select applies the typed-in code when there is one; it does not stack with
// the auto-apply promotion and an unusable typed-in code is an error.
// Without a typed-in code the first usable auto-apply code is used.
func Select(user *models.DiscountCode, autos []models.DiscountCode, subtotal, gross decimal.Decimal, now time.Time, uses UsageFunc) (Applied, error) {
	if uses == nil {
		uses = func(uint) int { return 0 }
	}
	if user != nil {
		if err := Check(*user, subtotal, now, uses(user.ID)); err != nil {
			return Applied{Amount: decimal.Zero}, err
		}
		return Applied{Code: user, Amount: Amount(*user, gross)}, nil
	}
	for i := range autos {
		c := autos[i]
		if !c.AutoApply {
			continue
		}
		if Check(c, subtotal, now, uses(c.ID)) != nil {
			continue
		}
		return Applied{Code: &c, Auto: true, Amount: Amount(c, gross)}, nil
	}
	return Applied{Amount: decimal.Zero}, nil
}
