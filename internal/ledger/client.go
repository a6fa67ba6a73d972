package ledger

import "context"

// Client abstracts the external payment provider. Every call is a remote
// round trip that may fail with a classified *Error; ConstructEvent fails
// with ErrSignatureVerification when the payload cannot be authenticated.
type Client interface {
	CreateCustomer(ctx context.Context, name, email string) (*Customer, error)
	UpdateDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	CreateProduct(ctx context.Context, name string) (string, error)
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (string, error)

	CreateSetupIntent(ctx context.Context, customerID string) (*Intent, error)
	GetSetupIntent(ctx context.Context, id string) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)

	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)
	// GetSubscription retrieves a subscription; with expand set, the latest
	// invoice and its payment intent are included.
	GetSubscription(ctx context.Context, id string, expand bool) (*Subscription, error)
	// EndTrialNow converts a trialing subscription to default_incomplete
	// billing immediately, returning it with the latest invoice expanded.
	EndTrialNow(ctx context.Context, id string) (*Subscription, error)
	CancelSubscription(ctx context.Context, id string) error

	GetCoupon(ctx context.Context, id string) (*Coupon, error)
	CreateCoupon(ctx context.Context, params CouponParams) (*Coupon, error)
	CreatePromotionCode(ctx context.Context, couponID, code string) (*PromotionCode, error)

	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	// ConstructEvent verifies payload against sigHeader and the shared
	// secret, then decodes the event object into the matching snapshot.
	ConstructEvent(payload []byte, sigHeader string) (*Event, error)
}
