package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridham-007/test-vismobackend/internal/models"
)

// SQL implements Store against a sqlite database opened by the database
// package.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, customer_id, activation_date, end_date, package_type
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

func (s *SQL) SetUserCustomerID(ctx context.Context, userID int64, customerID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET customer_id = ? WHERE id = ?`, customerID, userID)
	if err != nil {
		return fmt.Errorf("set user customer id: %w", err)
	}
	return requireRows(res)
}

func (s *SQL) UpdateUserBilling(ctx context.Context, customerID string, patch models.UserBillingPatch) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET activation_date = ?, end_date = ?, package_type = ?
		WHERE customer_id = ?
	`, nullTime(patch.ActivationDate), nullTime(patch.EndDate), nullString(patch.PackageType), customerID)
	if err != nil {
		return fmt.Errorf("update user billing: %w", err)
	}
	return requireRows(res)
}

func (s *SQL) UserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *SQL) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, price, payment_interval, trial_days, provider_product_id, provider_price_id
		FROM products
		WHERE id = ?
	`, id)
	return scanProduct(row)
}

func (s *SQL) ProductByProviderID(ctx context.Context, providerProductID string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, price, payment_interval, trial_days, provider_product_id, provider_price_id
		FROM products
		WHERE provider_product_id = ?
	`, providerProductID)
	return scanProduct(row)
}

func (s *SQL) SetProductProviderIDs(ctx context.Context, id int64, providerProductID, providerPriceID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET provider_product_id = ?, provider_price_id = ? WHERE id = ?
	`, providerProductID, providerPriceID, id)
	if err != nil {
		return fmt.Errorf("set product provider ids: %w", err)
	}
	return requireRows(res)
}

func (s *SQL) CurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	var c models.Currency
	err := s.db.QueryRowContext(ctx, `SELECT code, rate FROM currencies WHERE code = ?`, code).
		Scan(&c.Code, &c.Rate)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get currency: %w", err)
	}
	return &c, nil
}

const orderColumns = `id, title, price, status, start_date, end_date, trial_start, trial_end,
	canceled, canceled_date, cancellation_details, payment_intent_id, product_id,
	payment_interval, trial_period_days, subscription_id, setup_intent_id, user_id,
	created_at, updated_at`

func (s *SQL) CreateOrder(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		order.ID, order.Title, order.Price, order.Status,
		nullTime(order.StartDate), nullTime(order.EndDate),
		nullTime(order.TrialStart), nullTime(order.TrialEnd),
		order.Canceled, nullTime(order.CanceledDate), nullString(order.CancellationDetails),
		order.PaymentIntentID, order.ProductID, order.PaymentInterval, order.TrialPeriodDays,
		order.SubscriptionID, order.SetupIntentID, nullInt(order.UserID),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if models.IsUniqueConstraint(err) {
			return nil
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *SQL) UpdateOrderBySubscriptionID(ctx context.Context, subscriptionID string, patch models.OrderPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *patch.StartDate)
	}
	if patch.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *patch.EndDate)
	}
	if patch.TrialStart != nil {
		sets = append(sets, "trial_start = ?")
		args = append(args, *patch.TrialStart)
	}
	if patch.TrialEnd != nil {
		sets = append(sets, "trial_end = ?")
		args = append(args, *patch.TrialEnd)
	}
	if patch.Canceled != nil {
		sets = append(sets, "canceled = ?")
		args = append(args, *patch.Canceled)
	}
	if patch.SetCanceledDate {
		sets = append(sets, "canceled_date = ?")
		args = append(args, nullTime(patch.CanceledDate))
	}
	if patch.SetCancellationDetails {
		sets = append(sets, "cancellation_details = ?")
		args = append(args, nullString(patch.CancellationDetails))
	}
	if patch.PaymentIntentID != nil {
		sets = append(sets, "payment_intent_id = ?")
		args = append(args, *patch.PaymentIntentID)
	}
	if patch.DetachUser {
		sets = append(sets, "user_id = NULL")
	}
	args = append(args, subscriptionID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET `+strings.Join(sets, ", ")+` WHERE subscription_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return requireRows(res)
}

func (s *SQL) PaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, intent_id, status, amount, customer_id, mode, currency_type, created_at, updated_at
		FROM payments
		WHERE intent_id = ?
	`, intentID).Scan(
		&p.ID, &p.IntentID, &p.Status, &p.Amount, &p.CustomerID, &p.Mode, &p.CurrencyType,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (s *SQL) CreatePayment(ctx context.Context, payment *models.Payment) error {
	now := time.Now().UTC()
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, intent_id, status, amount, customer_id, mode, currency_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		payment.ID, payment.IntentID, payment.Status, payment.Amount,
		payment.CustomerID, payment.Mode, payment.CurrencyType,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		// The unique index on intent_id makes concurrent first observations
		// of the same intent converge on one row.
		if models.IsUniqueConstraint(err) {
			return nil
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *SQL) UpdatePaymentByIntentID(ctx context.Context, intentID string, patch models.PaymentPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	args = append(args, intentID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET `+strings.Join(sets, ", ")+` WHERE intent_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return requireRows(res)
}

func (s *SQL) InvoiceByInvoiceID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, customer_id, invoice_link, status, subscription_id, amount, created_at, updated_at
		FROM invoices
		WHERE invoice_id = ?
	`, invoiceID).Scan(
		&inv.ID, &inv.InvoiceID, &inv.CustomerID, &inv.InvoiceLink, &inv.Status,
		&inv.SubscriptionID, &inv.Amount, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

func (s *SQL) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	now := time.Now().UTC()
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, invoice_id, customer_id, invoice_link, status, subscription_id, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		invoice.ID, invoice.InvoiceID, invoice.CustomerID, invoice.InvoiceLink,
		invoice.Status, invoice.SubscriptionID, invoice.Amount,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if models.IsUniqueConstraint(err) {
			return nil
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *SQL) UpdateInvoiceByInvoiceID(ctx context.Context, invoiceID string, patch models.InvoicePatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.InvoiceLink != nil {
		sets = append(sets, "invoice_link = ?")
		args = append(args, *patch.InvoiceLink)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *patch.Amount)
	}
	args = append(args, invoiceID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET `+strings.Join(sets, ", ")+` WHERE invoice_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireRows(res)
}

func (s *SQL) PromocodeByName(ctx context.Context, name string) (*models.Promocode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, coupon_id, percent_off, amount_off, currency, duration,
		       duration_in_months, max_redemptions, valid, created_at, updated_at
		FROM promocodes
		WHERE name = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, name)

	var p models.Promocode
	var percentOff sql.NullFloat64
	var amountOff, durationInMonths, maxRedemptions sql.NullInt64
	var currency sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &p.CouponID, &percentOff, &amountOff, &currency,
		&p.Duration, &durationInMonths, &maxRedemptions, &p.Valid,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get promocode: %w", err)
	}
	if percentOff.Valid {
		p.PercentOff = &percentOff.Float64
	}
	if amountOff.Valid {
		p.AmountOff = &amountOff.Int64
	}
	if currency.Valid {
		p.Currency = &currency.String
	}
	if durationInMonths.Valid {
		p.DurationInMonths = &durationInMonths.Int64
	}
	if maxRedemptions.Valid {
		p.MaxRedemptions = &maxRedemptions.Int64
	}
	return &p, nil
}

func (s *SQL) CreatePromocode(ctx context.Context, promocode *models.Promocode) error {
	now := time.Now().UTC()
	if promocode.ID == "" {
		promocode.ID = uuid.New().String()
	}
	promocode.CreatedAt = now
	promocode.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO promocodes (id, name, coupon_id, percent_off, amount_off, currency, duration,
		                        duration_in_months, max_redemptions, valid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		promocode.ID, promocode.Name, promocode.CouponID,
		nullFloat(promocode.PercentOff), nullInt(promocode.AmountOff), nullString(promocode.Currency),
		promocode.Duration, nullInt(promocode.DurationInMonths), nullInt(promocode.MaxRedemptions),
		promocode.Valid, promocode.CreatedAt, promocode.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promocode: %w", err)
	}
	return nil
}

func (s *SQL) SetPromocodeValid(ctx context.Context, couponID string, valid bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE promocodes SET valid = ?, updated_at = ? WHERE coupon_id = ?
	`, valid, time.Now().UTC(), couponID)
	if err != nil {
		return fmt.Errorf("set promocode validity: %w", err)
	}
	return requireRows(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var customerID, packageType sql.NullString
	var activationDate, endDate sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &customerID, &activationDate, &endDate, &packageType)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CustomerID = customerID.String
	if activationDate.Valid {
		u.ActivationDate = &activationDate.Time
	}
	if endDate.Valid {
		u.EndDate = &endDate.Time
	}
	if packageType.Valid {
		u.PackageType = &packageType.String
	}
	return &u, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var providerProductID, providerPriceID sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.PaymentInterval, &p.TrialDays, &providerProductID, &providerPriceID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.ProviderProductID = providerProductID.String
	p.ProviderPriceID = providerPriceID.String
	return &p, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var startDate, endDate, trialStart, trialEnd, canceledDate sql.NullTime
	var cancellationDetails sql.NullString
	var userID sql.NullInt64
	err := row.Scan(
		&o.ID, &o.Title, &o.Price, &o.Status, &startDate, &endDate, &trialStart, &trialEnd,
		&o.Canceled, &canceledDate, &cancellationDetails, &o.PaymentIntentID, &o.ProductID,
		&o.PaymentInterval, &o.TrialPeriodDays, &o.SubscriptionID, &o.SetupIntentID, &userID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if startDate.Valid {
		o.StartDate = &startDate.Time
	}
	if endDate.Valid {
		o.EndDate = &endDate.Time
	}
	if trialStart.Valid {
		o.TrialStart = &trialStart.Time
	}
	if trialEnd.Valid {
		o.TrialEnd = &trialEnd.Time
	}
	if canceledDate.Valid {
		o.CanceledDate = &canceledDate.Time
	}
	if cancellationDetails.Valid {
		o.CancellationDetails = &cancellationDetails.String
	}
	if userID.Valid {
		o.UserID = &userID.Int64
	}
	return &o, nil
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
