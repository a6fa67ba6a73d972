package ledger

// Snapshot types mirror the provider objects this service actually reads.
// Monetary amounts are provider minor units (integer cents); conversion to
// major units happens at the store boundary, not here.

// Customer is a provider customer handle.
type Customer struct {
	ID string
}

// Intent is either a setup intent ("seti_" prefix) or a payment intent
// ("pi_" prefix). Setup intents carry no amount or currency.
type Intent struct {
	ID              string
	ClientSecret    string
	Status          string
	Amount          int64
	CustomerID      string
	PaymentMethodID string
	Mode            string
	Currency        string
}

// Invoice is a provider invoice, optionally with its payment intent expanded.
type Invoice struct {
	ID             string
	CustomerID     string
	SubscriptionID string
	Status         string
	HostedURL      string
	AmountPaid     int64
	Currency       string
	PaymentIntent  *Intent
}

// Subscription is a provider subscription, optionally with its latest
// invoice (and that invoice's payment intent) expanded.
type Subscription struct {
	ID                   string
	Status               string
	CustomerID           string
	ProductID            string
	Interval             string
	TrialStart           int64
	TrialEnd             int64
	PeriodStart          int64
	PeriodEnd            int64
	CancelAtPeriodEnd    bool
	CanceledAt           int64
	CancellationReason   string
	CancellationFeedback string
	CancellationComment  string
	LatestInvoice        *Invoice
}

// Coupon is a provider coupon. Exactly one of PercentOff and AmountOff is
// expected to be set.
type Coupon struct {
	ID               string
	Name             string
	PercentOff       float64
	AmountOff        int64
	Currency         string
	Duration         string
	DurationInMonths int64
	MaxRedemptions   int64
	Valid            bool
}

// PromotionCode is a customer-facing code bound to a coupon.
type PromotionCode struct {
	ID       string
	Code     string
	CouponID string
}

// Event is a verified webhook event with its payload decoded into the
// matching snapshot type. Exactly one of the object fields is non-nil for
// the event families this service handles; all are nil for anything else.
type Event struct {
	ID            string
	Type          string
	PaymentIntent *Intent
	Invoice       *Invoice
	Subscription  *Subscription
}

// CreateSubscriptionParams describes a new subscription. Trial and coupon
// are optional; the subscription is always created default_incomplete with
// the latest invoice's payment intent expanded.
type CreateSubscriptionParams struct {
	CustomerID      string
	PriceID         string
	TrialPeriodDays int64
	CouponID        string
}

// CouponParams assembles a coupon-creation payload from whichever optional
// fields are present. AmountOff is in minor units.
type CouponParams struct {
	Name             string
	Duration         string
	PercentOff       *float64
	AmountOff        *int64
	Currency         string
	DurationInMonths *int64
	MaxRedemptions   *int64
}
