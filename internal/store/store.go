package store

import (
	"context"

	"github.com/ridham-007/test-vismobackend/internal/models"
)

// Store is the local projection of ledger state plus the catalog
// configuration the checkout flow reads. Lookups return models.ErrNotFound
// when no record matches; updates by natural key return models.ErrNotFound
// when nothing was updated.
type Store interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	SetUserCustomerID(ctx context.Context, userID int64, customerID string) error
	UpdateUserBilling(ctx context.Context, customerID string, patch models.UserBillingPatch) error
	// UserOrders returns the user's orders, newest first.
	UserOrders(ctx context.Context, userID int64) ([]*models.Order, error)

	ProductByID(ctx context.Context, id int64) (*models.Product, error)
	ProductByProviderID(ctx context.Context, providerProductID string) (*models.Product, error)
	SetProductProviderIDs(ctx context.Context, id int64, providerProductID, providerPriceID string) error
	CurrencyByCode(ctx context.Context, code string) (*models.Currency, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrderBySubscriptionID(ctx context.Context, subscriptionID string, patch models.OrderPatch) error

	PaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	// CreatePayment inserts a payment row; a concurrent insert for the same
	// intent id is treated as success, the unique index keeps one row.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePaymentByIntentID(ctx context.Context, intentID string, patch models.PaymentPatch) error

	InvoiceByInvoiceID(ctx context.Context, invoiceID string) (*models.Invoice, error)
	// CreateInvoice inserts an invoice row with the same double-create
	// tolerance as CreatePayment.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	UpdateInvoiceByInvoiceID(ctx context.Context, invoiceID string, patch models.InvoicePatch) error

	PromocodeByName(ctx context.Context, name string) (*models.Promocode, error)
	CreatePromocode(ctx context.Context, promocode *models.Promocode) error
	SetPromocodeValid(ctx context.Context, couponID string, valid bool) error
}
