package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	bpsession "github.com/stripe/stripe-go/v81/billingportal/session"
	"github.com/stripe/stripe-go/v81/coupon"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/product"
	"github.com/stripe/stripe-go/v81/promotioncode"
	"github.com/stripe/stripe-go/v81/setupintent"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	webhookSecret string
}

// NewStripeClient sets the global Stripe API key and returns a client bound
// to the given webhook signing secret.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{webhookSecret: webhookSecret}
}

func (c *StripeClient) CreateCustomer(ctx context.Context, name, email string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &Customer{ID: cust.ID}, nil
}

func (c *StripeClient) UpdateDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := customer.Update(customerID, params); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (c *StripeClient) CreateProduct(ctx context.Context, name string) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(name)}
	params.Context = ctx

	prod, err := product.New(params)
	if err != nil {
		return "", wrapErr(err)
	}
	return prod.ID, nil
}

func (c *StripeClient) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(unitAmount),
		Currency:   stripe.String(currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval),
		},
	}
	params.Context = ctx

	pr, err := price.New(params)
	if err != nil {
		return "", wrapErr(err)
	}
	return pr.ID, nil
}

func (c *StripeClient) CreateSetupIntent(ctx context.Context, customerID string) (*Intent, error) {
	params := &stripe.SetupIntentParams{
		Customer: stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.SetupIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	si, err := setupintent.New(params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return setupIntentSnapshot(si), nil
}

func (c *StripeClient) GetSetupIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.SetupIntentParams{}
	params.Context = ctx

	si, err := setupintent.Get(id, params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return setupIntentSnapshot(si), nil
}

func (c *StripeClient) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return paymentIntentSnapshot(pi), nil
}

func (c *StripeClient) CreateSubscription(ctx context.Context, p CreateSubscriptionParams) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(p.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(p.PriceID)},
		},
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	if p.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(p.TrialPeriodDays)
		params.TrialSettings = &stripe.SubscriptionTrialSettingsParams{
			EndBehavior: &stripe.SubscriptionTrialSettingsEndBehaviorParams{
				MissingPaymentMethod: stripe.String("cancel"),
			},
		}
	}
	if p.CouponID != "" {
		params.Coupon = stripe.String(p.CouponID)
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := subscription.New(params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return subscriptionSnapshot(sub), nil
}

func (c *StripeClient) GetSubscription(ctx context.Context, id string, expand bool) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	if expand {
		params.AddExpand("latest_invoice.payment_intent")
	}

	sub, err := subscription.Get(id, params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return subscriptionSnapshot(sub), nil
}

func (c *StripeClient) EndTrialNow(ctx context.Context, id string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		PaymentBehavior: stripe.String("default_incomplete"),
		TrialEndNow:     stripe.Bool(true),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := subscription.Update(id, params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return subscriptionSnapshot(sub), nil
}

func (c *StripeClient) CancelSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := subscription.Cancel(id, params); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (c *StripeClient) GetCoupon(ctx context.Context, id string) (*Coupon, error) {
	params := &stripe.CouponParams{}
	params.Context = ctx

	cp, err := coupon.Get(id, params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return couponSnapshot(cp), nil
}

func (c *StripeClient) CreateCoupon(ctx context.Context, p CouponParams) (*Coupon, error) {
	params := buildCouponParams(p)
	params.Context = ctx

	cp, err := coupon.New(params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return couponSnapshot(cp), nil
}

// buildCouponParams assembles the minimal valid creation payload from
// whichever optional fields are present.
func buildCouponParams(p CouponParams) *stripe.CouponParams {
	params := &stripe.CouponParams{
		Name:     stripe.String(p.Name),
		Duration: stripe.String(p.Duration),
	}
	if p.PercentOff != nil {
		params.PercentOff = stripe.Float64(*p.PercentOff)
	}
	if p.AmountOff != nil {
		params.AmountOff = stripe.Int64(*p.AmountOff)
		params.Currency = stripe.String(p.Currency)
	}
	if p.DurationInMonths != nil {
		params.DurationInMonths = stripe.Int64(*p.DurationInMonths)
	}
	if p.MaxRedemptions != nil {
		params.MaxRedemptions = stripe.Int64(*p.MaxRedemptions)
	}
	return params
}

func (c *StripeClient) CreatePromotionCode(ctx context.Context, couponID, code string) (*PromotionCode, error) {
	params := &stripe.PromotionCodeParams{
		Coupon: stripe.String(couponID),
		Code:   stripe.String(code),
	}
	params.Context = ctx

	pc, err := promotioncode.New(params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &PromotionCode{ID: pc.ID, Code: pc.Code, CouponID: couponID}, nil
}

func (c *StripeClient) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := bpsession.New(params)
	if err != nil {
		return "", wrapErr(err)
	}
	return sess.URL, nil
}

func (c *StripeClient) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	switch {
	case strings.HasPrefix(out.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent event: %w", err)
		}
		out.PaymentIntent = paymentIntentSnapshot(&pi)
	case strings.HasPrefix(out.Type, "invoice."):
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice event: %w", err)
		}
		out.Invoice = invoiceSnapshot(&inv)
	case strings.HasPrefix(out.Type, "customer.subscription."):
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription event: %w", err)
		}
		out.Subscription = subscriptionSnapshot(&sub)
	}
	return out, nil
}

func couponSnapshot(cp *stripe.Coupon) *Coupon {
	return &Coupon{
		ID:               cp.ID,
		Name:             cp.Name,
		PercentOff:       cp.PercentOff,
		AmountOff:        cp.AmountOff,
		Currency:         string(cp.Currency),
		Duration:         string(cp.Duration),
		DurationInMonths: cp.DurationInMonths,
		MaxRedemptions:   cp.MaxRedemptions,
		Valid:            cp.Valid,
	}
}

func setupIntentSnapshot(si *stripe.SetupIntent) *Intent {
	out := &Intent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       string(si.Status),
	}
	if si.Customer != nil {
		out.CustomerID = si.Customer.ID
	}
	if si.PaymentMethod != nil {
		out.PaymentMethodID = si.PaymentMethod.ID
	}
	if len(si.PaymentMethodTypes) > 0 {
		out.Mode = si.PaymentMethodTypes[0]
	}
	return out
}

func paymentIntentSnapshot(pi *stripe.PaymentIntent) *Intent {
	out := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	if len(pi.PaymentMethodTypes) > 0 {
		out.Mode = pi.PaymentMethodTypes[0]
	}
	return out
}

func invoiceSnapshot(inv *stripe.Invoice) *Invoice {
	out := &Invoice{
		ID:         inv.ID,
		Status:     string(inv.Status),
		HostedURL:  inv.HostedInvoiceURL,
		AmountPaid: inv.AmountPaid,
		Currency:   string(inv.Currency),
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	if inv.PaymentIntent != nil {
		out.PaymentIntent = paymentIntentSnapshot(inv.PaymentIntent)
	}
	return out
}

func subscriptionSnapshot(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		TrialStart:        sub.TrialStart,
		TrialEnd:          sub.TrialEnd,
		PeriodStart:       sub.CurrentPeriodStart,
		PeriodEnd:         sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CanceledAt:        sub.CanceledAt,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Plan != nil {
		plan := sub.Items.Data[0].Plan
		out.Interval = string(plan.Interval)
		if plan.Product != nil {
			out.ProductID = plan.Product.ID
		}
	}
	if cd := sub.CancellationDetails; cd != nil {
		out.CancellationReason = string(cd.Reason)
		out.CancellationFeedback = string(cd.Feedback)
		out.CancellationComment = cd.Comment
	}
	if sub.LatestInvoice != nil {
		out.LatestInvoice = invoiceSnapshot(sub.LatestInvoice)
	}
	return out
}
