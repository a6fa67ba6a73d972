package models

import "time"

// Payment tracks one payment attempt. The intent id (setup intent or payment
// intent, disambiguated by prefix) is the natural key. Amount is stored in
// major currency units; provider amounts arrive in minor units.
type Payment struct {
	ID           string    `json:"id" db:"id"`
	IntentID     string    `json:"intent_id" db:"intent_id"`
	Status       string    `json:"status" db:"status"`
	Amount       float64   `json:"amount" db:"amount"`
	CustomerID   string    `json:"customer_id" db:"customer_id"`
	Mode         string    `json:"mode" db:"mode"`
	CurrencyType string    `json:"currency_type" db:"currency_type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentPatch is a partial update applied by intent id.
type PaymentPatch struct {
	Status *string
}

// Invoice mirrors a provider invoice. Created on first observation of the
// invoice id, updated thereafter, never recreated.
type Invoice struct {
	ID             string    `json:"id" db:"id"`
	InvoiceID      string    `json:"invoice_id" db:"invoice_id"`
	CustomerID     string    `json:"customer_id" db:"customer_id"`
	InvoiceLink    string    `json:"invoice_link" db:"invoice_link"`
	Status         string    `json:"status" db:"status"`
	SubscriptionID string    `json:"subscription_id" db:"subscription_id"`
	Amount         float64   `json:"amount" db:"amount"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// InvoicePatch is a partial update applied by invoice id.
type InvoicePatch struct {
	InvoiceLink *string
	Status      *string
	Amount      *float64
}
