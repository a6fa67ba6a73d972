package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridham-007/test-vismobackend/internal/ledger"
)

func TestHandleEventSignatureFailure(t *testing.T) {
	fake := newFakeLedger()
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return nil, fmt.Errorf("%w: bad signature", ledger.ErrSignatureVerification)
	}
	svc, db := newTestService(t, fake)

	err := svc.HandleEvent(context.Background(), []byte(`{}`), "t=1,v1=bad")
	require.ErrorIs(t, err, ledger.ErrSignatureVerification)

	assert.Equal(t, 0, countRows(t, db, "payments"))
	assert.Equal(t, 0, countRows(t, db, "invoices"))
	assert.Equal(t, 0, countRows(t, db, "orders"))
}

func TestHandleEventUnknownTypeAcked(t *testing.T) {
	fake := newFakeLedger()
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return &ledger.Event{ID: "evt_1", Type: "charge.refunded"}, nil
	}
	svc, _ := newTestService(t, fake)

	require.NoError(t, svc.HandleEvent(context.Background(), []byte(`{}`), "sig"))
}

func TestHandleEventProcessingErrorStillAcked(t *testing.T) {
	// An intent event for an unknown intent id fails inside the reducer
	// application; the delivery must still be acknowledged.
	fake := newFakeLedger()
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return &ledger.Event{
			ID:            "evt_1",
			Type:          "payment_intent.succeeded",
			PaymentIntent: &ledger.Intent{ID: "pi_missing", Status: "succeeded"},
		}, nil
	}
	svc, _ := newTestService(t, fake)

	require.NoError(t, svc.HandleEvent(context.Background(), []byte(`{}`), "sig"))
}

func TestPaymentIntentCreatedGate(t *testing.T) {
	fake := newFakeLedger()
	var event *ledger.Event
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return event, nil
	}
	svc, db := newTestService(t, fake)
	ctx := context.Background()

	event = &ledger.Event{
		ID:   "evt_1",
		Type: "payment_intent.created",
		PaymentIntent: &ledger.Intent{
			ID:         "pi_1",
			Status:     "requires_payment_method",
			Amount:     1999,
			CustomerID: "cus_1",
			Mode:       "card",
			Currency:   "eur",
		},
	}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	require.Equal(t, 1, countRows(t, db, "payments"))

	// Redelivery keeps one row.
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	require.Equal(t, 1, countRows(t, db, "payments"))

	payment, err := svc.store.PaymentByIntentID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "requires_payment_method", payment.Status)
	assert.Equal(t, 19.99, payment.Amount)

	event = &ledger.Event{
		ID:            "evt_2",
		Type:          "payment_intent.succeeded",
		PaymentIntent: &ledger.Intent{ID: "pi_1", Status: "succeeded", Amount: 1999},
	}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))

	payment, err = svc.store.PaymentByIntentID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", payment.Status)
	assert.Equal(t, 1, countRows(t, db, "payments"))
}

func TestOutOfOrderInvoiceEvents(t *testing.T) {
	fake := newFakeLedger()
	var event *ledger.Event
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return event, nil
	}
	svc, db := newTestService(t, fake)
	ctx := context.Background()

	paidSnap := &ledger.Invoice{
		ID:             "in_1",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		Status:         "paid",
		HostedURL:      "https://pay.example/in_1",
		AmountPaid:     1999,
	}
	openSnap := &ledger.Invoice{
		ID:             "in_1",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		Status:         "open",
		HostedURL:      "https://pay.example/in_1",
	}

	// paid arrives before created: one record, no duplicate on redelivery.
	event = &ledger.Event{ID: "evt_1", Type: "invoice.paid", Invoice: paidSnap}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	event = &ledger.Event{ID: "evt_2", Type: "invoice.created", Invoice: openSnap}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	assert.Equal(t, 1, countRows(t, db, "invoices"))

	// created then paid converges on paid.
	event = &ledger.Event{ID: "evt_3", Type: "invoice.created", Invoice: &ledger.Invoice{
		ID: "in_2", CustomerID: "cus_1", SubscriptionID: "sub_1", Status: "open",
	}}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	event = &ledger.Event{ID: "evt_4", Type: "invoice.paid", Invoice: &ledger.Invoice{
		ID: "in_2", CustomerID: "cus_1", SubscriptionID: "sub_1", Status: "paid",
		HostedURL: "https://pay.example/in_2", AmountPaid: 1999,
	}}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))

	invoice, err := svc.store.InvoiceByInvoiceID(ctx, "in_2")
	require.NoError(t, err)
	assert.Equal(t, "paid", invoice.Status)
	assert.Equal(t, 19.99, invoice.Amount)
	assert.Equal(t, 2, countRows(t, db, "invoices"))
}

func TestTrialWillEndConversion(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	fake := newFakeLedger()
	endTrialCalls := 0
	fake.endTrialNow = func(ctx context.Context, id string) (*ledger.Subscription, error) {
		endTrialCalls++
		return &ledger.Subscription{
			ID:     id,
			Status: "active",
			LatestInvoice: &ledger.Invoice{
				ID: "in_1",
				PaymentIntent: &ledger.Intent{
					ID:         "pi_1",
					Status:     "requires_payment_method",
					Amount:     1999,
					CustomerID: "cus_1",
					Mode:       "card",
					Currency:   "eur",
				},
			},
		}, nil
	}
	var event *ledger.Event
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return event, nil
	}

	svc, db := newTestService(t, fake)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	userID := seedUser(t, db, "trial@example.com", "cus_1")
	seedProduct(t, db, "Premium", 100, 7, "prod_1", "price_1")
	seedOrder(t, db, "sub_1", "trialing", userID)

	snap := &ledger.Subscription{
		ID:         "sub_1",
		Status:     "trialing",
		CustomerID: "cus_1",
		ProductID:  "prod_1",
		TrialStart: now.Add(-7 * 24 * time.Hour).Unix(),
		TrialEnd:   now.Unix(),
	}

	// A delivery outside the matching second does nothing.
	early := *snap
	early.TrialEnd = now.Add(time.Hour).Unix()
	event = &ledger.Event{ID: "evt_1", Type: "customer.subscription.trial_will_end", Subscription: &early}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	assert.Equal(t, 0, endTrialCalls)
	assert.Equal(t, 0, countRows(t, db, "payments"))

	event = &ledger.Event{ID: "evt_2", Type: "customer.subscription.trial_will_end", Subscription: snap}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))
	assert.Equal(t, 1, endTrialCalls)
	require.Equal(t, 1, countRows(t, db, "payments"))

	payment, err := svc.store.PaymentByIntentID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, 19.99, payment.Amount)

	user, err := svc.store.UserByEmail(ctx, "trial@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.PackageType)
	assert.Equal(t, "Premium", *user.PackageType)
}

func TestSubscriptionDeletedReducesOrder(t *testing.T) {
	fake := newFakeLedger()
	var event *ledger.Event
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return event, nil
	}
	svc, db := newTestService(t, fake)
	ctx := context.Background()

	userID := seedUser(t, db, "gone@example.com", "cus_1")
	seedOrder(t, db, "sub_1", "active", userID)

	event = &ledger.Event{
		ID:   "evt_1",
		Type: "customer.subscription.deleted",
		Subscription: &ledger.Subscription{
			ID:                   "sub_1",
			Status:               "canceled",
			CustomerID:           "cus_1",
			CanceledAt:           1700000000,
			CancellationFeedback: "too_expensive",
		},
	}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))

	var status string
	var canceled bool
	require.NoError(t, db.QueryRow(`SELECT status, canceled FROM orders WHERE subscription_id = ?`, "sub_1").Scan(&status, &canceled))
	assert.Equal(t, "canceled", status)
	assert.True(t, canceled)

	user, err := svc.store.UserByEmail(ctx, "gone@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.PackageType)
	assert.Nil(t, user.ActivationDate)
	assert.Nil(t, user.EndDate)
}

func TestSubscriptionUpdatedActiveReconciles(t *testing.T) {
	fake := newFakeLedger()
	fake.getSubscription = func(ctx context.Context, id string, expand bool) (*ledger.Subscription, error) {
		return &ledger.Subscription{
			ID:          id,
			Status:      "active",
			CustomerID:  "cus_1",
			ProductID:   "prod_1",
			PeriodStart: 1700000000,
			PeriodEnd:   1702592000,
			LatestInvoice: &ledger.Invoice{
				ID:            "in_1",
				PaymentIntent: &ledger.Intent{ID: "pi_1", Status: "succeeded"},
			},
		}, nil
	}
	var event *ledger.Event
	fake.constructEvent = func(payload []byte, sigHeader string) (*ledger.Event, error) {
		return event, nil
	}
	svc, db := newTestService(t, fake)
	ctx := context.Background()

	userID := seedUser(t, db, "live@example.com", "cus_1")
	seedProduct(t, db, "Premium", 100, 0, "prod_1", "price_1")
	seedOrder(t, db, "sub_1", "incomplete", userID)
	seedPayment(t, db, "pi_1", "processing")

	event = &ledger.Event{
		ID:           "evt_1",
		Type:         "customer.subscription.updated",
		Subscription: &ledger.Subscription{ID: "sub_1", Status: "active", CustomerID: "cus_1", ProductID: "prod_1"},
	}
	require.NoError(t, svc.HandleEvent(ctx, []byte(`{}`), "sig"))

	payment, err := svc.store.PaymentByIntentID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", payment.Status)

	var status, intentID string
	require.NoError(t, db.QueryRow(`SELECT status, payment_intent_id FROM orders WHERE subscription_id = ?`, "sub_1").Scan(&status, &intentID))
	assert.Equal(t, "active", status)
	assert.Equal(t, "pi_1", intentID)

	user, err := svc.store.UserByEmail(ctx, "live@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.ActivationDate)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), user.ActivationDate.UTC())
}
