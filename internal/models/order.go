package models

import "time"

// Order tracks one subscription lifecycle. The provider-assigned
// subscription id is the natural key; an order is never deleted, terminal
// statuses are 'canceled' and 'incomplete_expired'.
type Order struct {
	ID                  string     `json:"id" db:"id"`
	Title               string     `json:"title" db:"title"`
	Price               float64    `json:"price" db:"price"`
	Status              string     `json:"status" db:"status"`
	StartDate           *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty" db:"end_date"`
	TrialStart          *time.Time `json:"trial_start,omitempty" db:"trial_start"`
	TrialEnd            *time.Time `json:"trial_end,omitempty" db:"trial_end"`
	Canceled            bool       `json:"canceled" db:"canceled"`
	CanceledDate        *time.Time `json:"canceled_date,omitempty" db:"canceled_date"`
	CancellationDetails *string    `json:"cancellation_details,omitempty" db:"cancellation_details"`
	PaymentIntentID     string     `json:"payment_intent_id" db:"payment_intent_id"`
	ProductID           string     `json:"product_id" db:"product_id"`
	PaymentInterval     string     `json:"payment_interval" db:"payment_interval"`
	TrialPeriodDays     int64      `json:"trial_period_days" db:"trial_period_days"`
	SubscriptionID      string     `json:"subscription_id" db:"subscription_id"`
	SetupIntentID       string     `json:"setup_intent_id" db:"setup_intent_id"`
	UserID              *int64     `json:"user_id,omitempty" db:"user_id"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// OrderPatch is a partial update applied by subscription id. Nil pointer
// fields are left untouched. Canceled-date and cancellation-details can be
// explicitly set to NULL, so they carry a separate "set" flag.
type OrderPatch struct {
	Status                 *string
	StartDate              *time.Time
	EndDate                *time.Time
	TrialStart             *time.Time
	TrialEnd               *time.Time
	Canceled               *bool
	SetCanceledDate        bool
	CanceledDate           *time.Time
	SetCancellationDetails bool
	CancellationDetails    *string
	PaymentIntentID        *string
	DetachUser             bool
}
