package models

import "time"

// User is the billing projection of an account: the subset of user fields
// this service reads and writes. Account management itself lives elsewhere.
type User struct {
	ID             int64      `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	FirstName      string     `json:"first_name" db:"first_name"`
	CustomerID     string     `json:"customer_id" db:"customer_id"`
	ActivationDate *time.Time `json:"activation_date,omitempty" db:"activation_date"`
	EndDate        *time.Time `json:"end_date,omitempty" db:"end_date"`
	PackageType    *string    `json:"package_type,omitempty" db:"package_type"`
}

// UserBillingPatch updates the billing-derived user fields by customer id.
// All three fields are always written; nil means NULL.
type UserBillingPatch struct {
	ActivationDate *time.Time
	EndDate        *time.Time
	PackageType    *string
}

// Product is catalog configuration: local pricing plus the lazily
// materialized provider product/price ids.
type Product struct {
	ID                int64   `json:"id" db:"id"`
	Title             string  `json:"title" db:"title"`
	Price             float64 `json:"price" db:"price"`
	PaymentInterval   string  `json:"payment_interval" db:"payment_interval"`
	TrialDays         int64   `json:"trial_days" db:"trial_days"`
	ProviderProductID string  `json:"provider_product_id" db:"provider_product_id"`
	ProviderPriceID   string  `json:"provider_price_id" db:"provider_price_id"`
}

// Currency is conversion configuration relative to the base currency.
type Currency struct {
	Code string  `json:"code" db:"code"`
	Rate float64 `json:"rate" db:"rate"`
}
