package models

import "time"

// Promocode is the local mirror of a provider coupon. Validity always
// reflects the provider's last-known answer, refreshed on every validation.
type Promocode struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	CouponID         string    `json:"coupon_id" db:"coupon_id"`
	PercentOff       *float64  `json:"percent_off,omitempty" db:"percent_off"`
	AmountOff        *int64    `json:"amount_off,omitempty" db:"amount_off"`
	Currency         *string   `json:"currency,omitempty" db:"currency"`
	Duration         string    `json:"duration" db:"duration"`
	DurationInMonths *int64    `json:"duration_in_months,omitempty" db:"duration_in_months"`
	MaxRedemptions   *int64    `json:"max_redemptions,omitempty" db:"max_redemptions"`
	Valid            bool      `json:"valid" db:"valid"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
