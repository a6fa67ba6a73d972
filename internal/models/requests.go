package models

// ProductInput selects the catalog product and display currency at checkout.
type ProductInput struct {
	ID       int64  `json:"id" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

// CheckoutRequest is the request body for POST /stripe.
type CheckoutRequest struct {
	Product      ProductInput `json:"product" binding:"required"`
	UserEmail    string       `json:"userEmail" binding:"required,email"`
	IntentID     string       `json:"intentId" binding:"required"`
	CouponCodeID string       `json:"couponCodeId"`
}

// SetupIntentRequest is the request body for POST /stripe/setup-intent.
type SetupIntentRequest struct {
	UserEmail string `json:"userEmail" binding:"required,email"`
}

// UpdatePaymentIntentRequest is the request body for POST /stripe/update-payment-intent.
type UpdatePaymentIntentRequest struct {
	Email           string `json:"email" binding:"required,email"`
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	SubscriptionID  string `json:"subscriptionId" binding:"required"`
}

// ValidatePromocodeRequest is the request body for POST /stripe/validate-promocode.
type ValidatePromocodeRequest struct {
	Code        string  `json:"code" binding:"required"`
	TotalAmount float64 `json:"totalAmount" binding:"required"`
}

// CreateCouponRequest is the request body for POST /stripe/create-coupon.
// Exactly one of PercentageOff and AmountOff must be set; the remaining
// optional fields are each independently optional.
type CreateCouponRequest struct {
	Name             string   `json:"name" binding:"required"`
	Duration         string   `json:"duration" binding:"required"`
	PercentageOff    *float64 `json:"percentageOff"`
	AmountOff        *float64 `json:"amountOff"`
	Currency         string   `json:"currency"`
	DurationInMonths *int64   `json:"durationInMonths"`
	MaxRedemptions   *int64   `json:"maxRedemptions"`
}

// CustomerPortalRequest is the request body for POST /stripe/create-portal.
type CustomerPortalRequest struct {
	UserEmail string `json:"userEmail" binding:"required,email"`
}

// ClientData carries provider-side handles back to the client app.
type ClientData struct {
	ID             string `json:"id,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

// BillingResponse is the always-200 envelope for the money-in-flight flows
// (setup intent, checkout, customer portal): the caller always receives an
// inspectable JSON body and checks Success instead of the status code.
type BillingResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    *ClientData `json:"data,omitempty"`
	URL     string      `json:"url,omitempty"`
}

// PaymentIntentResponse is the result of an update-payment-intent call.
type PaymentIntentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PromocodeResponse is the result of a promo validation.
type PromocodeResponse struct {
	ID            string  `json:"id"`
	CouponName    string  `json:"couponName"`
	DiscountPrice float64 `json:"discountPrice"`
	IsValid       bool    `json:"isValid"`
}

// CouponResponse is the result of a coupon creation.
type CouponResponse struct {
	ID string `json:"id"`
}
