package billing

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridham-007/test-vismobackend/internal/database"
	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/store"
)

// fakeLedger satisfies ledger.Client with per-call function hooks and
// records the cancellations it was asked for.
type fakeLedger struct {
	createCustomer      func(ctx context.Context, name, email string) (*ledger.Customer, error)
	createSetupIntent   func(ctx context.Context, customerID string) (*ledger.Intent, error)
	getSetupIntent      func(ctx context.Context, id string) (*ledger.Intent, error)
	getPaymentIntent    func(ctx context.Context, id string) (*ledger.Intent, error)
	createSubscription  func(ctx context.Context, params ledger.CreateSubscriptionParams) (*ledger.Subscription, error)
	getSubscription     func(ctx context.Context, id string, expand bool) (*ledger.Subscription, error)
	endTrialNow         func(ctx context.Context, id string) (*ledger.Subscription, error)
	getCoupon           func(ctx context.Context, id string) (*ledger.Coupon, error)
	createCoupon        func(ctx context.Context, params ledger.CouponParams) (*ledger.Coupon, error)
	createPromotionCode func(ctx context.Context, couponID, code string) (*ledger.PromotionCode, error)
	createPortalSession func(ctx context.Context, customerID, returnURL string) (string, error)
	constructEvent      func(payload []byte, sigHeader string) (*ledger.Event, error)

	createdProducts       []string
	createdPrices         []int64
	canceledSubscriptions []string
	defaultPaymentMethods map[string]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{defaultPaymentMethods: map[string]string{}}
}

func (f *fakeLedger) CreateCustomer(ctx context.Context, name, email string) (*ledger.Customer, error) {
	if f.createCustomer != nil {
		return f.createCustomer(ctx, name, email)
	}
	return &ledger.Customer{ID: "cus_fake"}, nil
}

func (f *fakeLedger) UpdateDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	f.defaultPaymentMethods[customerID] = paymentMethodID
	return nil
}

func (f *fakeLedger) CreateProduct(ctx context.Context, name string) (string, error) {
	f.createdProducts = append(f.createdProducts, name)
	return "prod_fake", nil
}

func (f *fakeLedger) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (string, error) {
	f.createdPrices = append(f.createdPrices, unitAmount)
	return "price_fake", nil
}

func (f *fakeLedger) CreateSetupIntent(ctx context.Context, customerID string) (*ledger.Intent, error) {
	if f.createSetupIntent != nil {
		return f.createSetupIntent(ctx, customerID)
	}
	return &ledger.Intent{ID: "seti_fake", ClientSecret: "seti_fake_secret", Status: "requires_payment_method", CustomerID: customerID}, nil
}

func (f *fakeLedger) GetSetupIntent(ctx context.Context, id string) (*ledger.Intent, error) {
	if f.getSetupIntent != nil {
		return f.getSetupIntent(ctx, id)
	}
	return &ledger.Intent{ID: id, Status: "succeeded"}, nil
}

func (f *fakeLedger) GetPaymentIntent(ctx context.Context, id string) (*ledger.Intent, error) {
	if f.getPaymentIntent != nil {
		return f.getPaymentIntent(ctx, id)
	}
	return &ledger.Intent{ID: id, Status: "succeeded"}, nil
}

func (f *fakeLedger) CreateSubscription(ctx context.Context, params ledger.CreateSubscriptionParams) (*ledger.Subscription, error) {
	if f.createSubscription != nil {
		return f.createSubscription(ctx, params)
	}
	return &ledger.Subscription{ID: "sub_fake", Status: "incomplete", CustomerID: params.CustomerID}, nil
}

func (f *fakeLedger) GetSubscription(ctx context.Context, id string, expand bool) (*ledger.Subscription, error) {
	if f.getSubscription != nil {
		return f.getSubscription(ctx, id, expand)
	}
	return &ledger.Subscription{ID: id, Status: "active"}, nil
}

func (f *fakeLedger) EndTrialNow(ctx context.Context, id string) (*ledger.Subscription, error) {
	if f.endTrialNow != nil {
		return f.endTrialNow(ctx, id)
	}
	return &ledger.Subscription{ID: id, Status: "active"}, nil
}

func (f *fakeLedger) CancelSubscription(ctx context.Context, id string) error {
	f.canceledSubscriptions = append(f.canceledSubscriptions, id)
	return nil
}

func (f *fakeLedger) GetCoupon(ctx context.Context, id string) (*ledger.Coupon, error) {
	if f.getCoupon != nil {
		return f.getCoupon(ctx, id)
	}
	return &ledger.Coupon{ID: id, Valid: true}, nil
}

func (f *fakeLedger) CreateCoupon(ctx context.Context, params ledger.CouponParams) (*ledger.Coupon, error) {
	if f.createCoupon != nil {
		return f.createCoupon(ctx, params)
	}
	out := &ledger.Coupon{ID: "coupon_fake", Name: params.Name, Duration: params.Duration, Valid: true}
	if params.PercentOff != nil {
		out.PercentOff = *params.PercentOff
	}
	if params.AmountOff != nil {
		out.AmountOff = *params.AmountOff
		out.Currency = params.Currency
	}
	return out, nil
}

func (f *fakeLedger) CreatePromotionCode(ctx context.Context, couponID, code string) (*ledger.PromotionCode, error) {
	if f.createPromotionCode != nil {
		return f.createPromotionCode(ctx, couponID, code)
	}
	return &ledger.PromotionCode{ID: "promo_fake", Code: code, CouponID: couponID}, nil
}

func (f *fakeLedger) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if f.createPortalSession != nil {
		return f.createPortalSession(ctx, customerID, returnURL)
	}
	return "https://portal.example/session", nil
}

func (f *fakeLedger) ConstructEvent(payload []byte, sigHeader string) (*ledger.Event, error) {
	if f.constructEvent != nil {
		return f.constructEvent(payload, sigHeader)
	}
	return &ledger.Event{ID: "evt_fake", Type: "unknown.event"}, nil
}

// newTestService wires a Service to an in-memory database and the fake
// ledger.
func newTestService(t *testing.T, lc ledger.Client) (*Service, *sql.DB) {
	t.Helper()
	db, err := database.OpenAndMigrate(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(store.NewSQL(db), lc, Config{
		BaseCurrency:    "eur",
		PortalReturnURL: "https://app.example/account",
	})
	return svc, db
}

func seedUser(t *testing.T, db *sql.DB, email, customerID string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO users (email, first_name, customer_id) VALUES (?, ?, ?)`,
		email, "Test", nullableStr(customerID),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, db *sql.DB, title string, price float64, trialDays int64, providerProductID, providerPriceID string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO products (title, price, payment_interval, trial_days, provider_product_id, provider_price_id)
		 VALUES (?, ?, 'month', ?, ?, ?)`,
		title, price, trialDays, nullableStr(providerProductID), nullableStr(providerPriceID),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedCurrency(t *testing.T, db *sql.DB, code string, rate float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO currencies (code, rate) VALUES (?, ?)`, code, rate)
	require.NoError(t, err)
}

func seedOrder(t *testing.T, db *sql.DB, subscriptionID, status string, userID int64) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO orders (id, status, subscription_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		"order_"+subscriptionID, status, subscriptionID, userID,
	)
	require.NoError(t, err)
}

func seedPayment(t *testing.T, db *sql.DB, intentID, status string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO payments (id, intent_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		"payment_"+intentID, intentID, status,
	)
	require.NoError(t, err)
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
