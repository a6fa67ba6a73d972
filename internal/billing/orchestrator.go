package billing

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/models"
)

// The setup-intent, checkout and portal flows represent money in flight:
// the client app always needs an inspectable JSON body, so these never
// return an error. Every failure degrades into {success:false, message,
// error}. UpdatePaymentIntent, ValidatePromocode and CreateCoupon propagate
// typed errors instead.

// SetupIntentForPayment creates (or reuses) the ledger customer for the
// user and opens a setup intent against it. The customer id is persisted
// only after the intent was created.
func (s *Service) SetupIntentForPayment(ctx context.Context, req models.SetupIntentRequest) *models.BillingResponse {
	user, err := s.store.UserByEmail(ctx, req.UserEmail)
	if errors.Is(err, models.ErrNotFound) {
		return s.degrade("An error occurred during setupIntent.", models.NewValidationError("User with the provided email not found."))
	}
	if err != nil {
		return s.degrade("An error occurred during setupIntent.", err)
	}

	customerID := user.CustomerID
	createdCustomer := false
	if customerID == "" {
		customer, err := s.ledger.CreateCustomer(ctx, user.FirstName, user.Email)
		if err != nil {
			return s.degrade("An error occurred during setupIntent.", err)
		}
		customerID = customer.ID
		createdCustomer = true
	}

	intent, err := s.ledger.CreateSetupIntent(ctx, customerID)
	if err != nil {
		return s.degrade("An error occurred during setupIntent.", err)
	}

	if createdCustomer {
		if err := s.store.SetUserCustomerID(ctx, user.ID, customerID); err != nil {
			return s.degrade("An error occurred during setupIntent.", err)
		}
	}

	return &models.BillingResponse{
		Success: true,
		Message: "SetupIntent successful.",
		Data: &models.ClientData{
			ID:           intent.ID,
			ClientSecret: intent.ClientSecret,
		},
	}
}

// Checkout creates the subscription for a previously confirmed setup
// intent and records the payment and order rows. The product and its price
// are materialized on the ledger on the first checkout that touches them.
func (s *Service) Checkout(ctx context.Context, req models.CheckoutRequest) *models.BillingResponse {
	user, err := s.store.UserByEmail(ctx, req.UserEmail)
	if errors.Is(err, models.ErrNotFound) {
		return s.degrade("An error occurred during checkout.", models.NewValidationError("User with the provided email not found."))
	}
	if err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	product, err := s.store.ProductByID(ctx, req.Product.ID)
	if errors.Is(err, models.ErrNotFound) {
		return s.degrade("An error occurred during checkout.", models.NewApplicationError("Product not found."))
	}
	if err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	currency, err := s.store.CurrencyByCode(ctx, req.Product.Currency)
	if errors.Is(err, models.ErrNotFound) {
		return s.degrade("An error occurred during checkout.", models.NewApplicationError("Currency not found."))
	}
	if err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	amount := product.Price
	if currency.Code != s.cfg.BaseCurrency {
		amount = product.Price / currency.Rate
	}

	providerProductID := product.ProviderProductID
	providerPriceID := product.ProviderPriceID
	if providerProductID == "" {
		providerProductID, err = s.ledger.CreateProduct(ctx, product.Title)
		if err != nil {
			return s.degrade("An error occurred during checkout.", err)
		}
		providerPriceID, err = s.ledger.CreatePrice(ctx, providerProductID, minorUnits(amount), s.cfg.BaseCurrency, product.PaymentInterval)
		if err != nil {
			return s.degrade("An error occurred during checkout.", err)
		}
		if err := s.store.SetProductProviderIDs(ctx, product.ID, providerProductID, providerPriceID); err != nil {
			return s.degrade("An error occurred during checkout.", err)
		}
	}

	setupIntent, err := s.ledger.GetSetupIntent(ctx, req.IntentID)
	if err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	subscription, err := s.ledger.CreateSubscription(ctx, ledger.CreateSubscriptionParams{
		CustomerID:      setupIntent.CustomerID,
		PriceID:         providerPriceID,
		TrialPeriodDays: product.TrialDays,
		CouponID:        req.CouponCodeID,
	})
	if err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	payment := models.Payment{
		IntentID:   setupIntent.ID,
		Status:     setupIntent.Status,
		CustomerID: setupIntent.CustomerID,
		Mode:       setupIntent.Mode,
	}
	clientSecret := ""
	if subscription.LatestInvoice != nil {
		payment.Amount = 0.01 * float64(subscription.LatestInvoice.AmountPaid)
		payment.CurrencyType = subscription.LatestInvoice.Currency
		// Zero-amount trials have no payment intent on the first invoice;
		// the client then skips payment confirmation.
		if subscription.LatestInvoice.PaymentIntent != nil {
			clientSecret = subscription.LatestInvoice.PaymentIntent.ClientSecret
		}
	}
	if err := s.store.CreatePayment(ctx, &payment); err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	order := models.Order{
		Title:           product.Title,
		Price:           amount,
		Status:          subscription.Status,
		PaymentInterval: subscription.Interval,
		ProductID:       providerProductID,
		SubscriptionID:  subscription.ID,
		SetupIntentID:   setupIntent.ID,
		TrialPeriodDays: product.TrialDays,
		UserID:          &user.ID,
	}
	if err := s.store.CreateOrder(ctx, &order); err != nil {
		return s.degrade("An error occurred during checkout.", err)
	}

	return &models.BillingResponse{
		Success: true,
		Message: "Checkout successful.",
		Data: &models.ClientData{
			SubscriptionID: subscription.ID,
			ClientSecret:   clientSecret,
		},
	}
}

// UpdatePaymentIntent reconciles everything a confirmed payment touches:
// the payment record, the order, the invoice, the customer's default
// payment method, and finally the single-active-subscription invariant.
func (s *Service) UpdatePaymentIntent(ctx context.Context, req models.UpdatePaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	subscription, err := s.ledger.GetSubscription(ctx, req.SubscriptionID, true)
	if err != nil {
		return nil, err
	}

	var intent *ledger.Intent
	if strings.HasPrefix(req.PaymentIntentID, "seti_") {
		intent, err = s.ledger.GetSetupIntent(ctx, req.PaymentIntentID)
	} else {
		intent, err = s.ledger.GetPaymentIntent(ctx, req.PaymentIntentID)
	}
	if err != nil {
		return nil, err
	}

	outcome, err := s.applyIntent(ctx, intent)
	if err != nil {
		return nil, err
	}
	if outcome.IsError {
		return &models.PaymentIntentResponse{Success: false, Message: outcome.Message}, nil
	}

	outcome, err = s.applySubscription(ctx, subscription)
	if err != nil {
		return nil, err
	}
	if outcome.IsError {
		return &models.PaymentIntentResponse{Success: false, Message: outcome.Message}, nil
	}

	if subscription.LatestInvoice != nil {
		outcome, err = s.applyInvoice(ctx, subscription.LatestInvoice)
		if err != nil {
			return nil, err
		}
		if outcome.IsError {
			return &models.PaymentIntentResponse{Success: false, Message: outcome.Message}, nil
		}
	}

	if intent.PaymentMethodID != "" {
		if err := s.ledger.UpdateDefaultPaymentMethod(ctx, subscription.CustomerID, intent.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	if err := s.cancelOtherActiveSubscription(ctx, req.Email, req.SubscriptionID); err != nil {
		return nil, err
	}

	return &models.PaymentIntentResponse{Success: true}, nil
}

// cancelOtherActiveSubscription keeps at most one subscription in force per
// user: when another order is still trialing or active under a different
// subscription id, that subscription is canceled on the ledger.
func (s *Service) cancelOtherActiveSubscription(ctx context.Context, email, subscriptionID string) error {
	user, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewValidationError("User with the provided email not found.")
	}
	if err != nil {
		return err
	}

	orders, err := s.store.UserOrders(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(orders) < 2 {
		return nil
	}
	for _, order := range orders {
		if order.SubscriptionID == subscriptionID {
			continue
		}
		if order.Status != "trialing" && order.Status != "active" {
			continue
		}
		return s.ledger.CancelSubscription(ctx, order.SubscriptionID)
	}
	return nil
}

// ValidatePromocode resolves the locally known coupon behind a code and
// refreshes its validity from the ledger.
func (s *Service) ValidatePromocode(ctx context.Context, req models.ValidatePromocodeRequest) (*models.PromocodeResponse, error) {
	promocode, err := s.store.PromocodeByName(ctx, req.Code)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewValidationError("Promocode not found.")
	}
	if err != nil {
		return nil, err
	}

	coupon, err := s.ledger.GetCoupon(ctx, promocode.CouponID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetPromocodeValid(ctx, coupon.ID, coupon.Valid); err != nil {
		return nil, err
	}

	return &models.PromocodeResponse{
		ID:            coupon.ID,
		CouponName:    coupon.Name,
		DiscountPrice: Discount(coupon, req.TotalAmount),
		IsValid:       coupon.Valid,
	}, nil
}

// CreateCoupon creates the coupon and a promotion code carrying the coupon
// name, then mirrors both locally. Percentage and amount discounts are
// mutually exclusive.
func (s *Service) CreateCoupon(ctx context.Context, req models.CreateCouponRequest) (*models.CouponResponse, error) {
	if (req.PercentageOff == nil) == (req.AmountOff == nil) {
		return nil, models.NewValidationError("Exactly one of percentageOff and amountOff must be set.")
	}

	params := ledger.CouponParams{
		Name:             req.Name,
		Duration:         req.Duration,
		PercentOff:       req.PercentageOff,
		Currency:         req.Currency,
		DurationInMonths: req.DurationInMonths,
		MaxRedemptions:   req.MaxRedemptions,
	}
	if req.AmountOff != nil {
		minor := minorUnits(*req.AmountOff)
		params.AmountOff = &minor
	}

	coupon, err := s.ledger.CreateCoupon(ctx, params)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.CreatePromotionCode(ctx, coupon.ID, coupon.Name); err != nil {
		return nil, err
	}

	promocode := models.Promocode{
		Name:     coupon.Name,
		CouponID: coupon.ID,
		Duration: coupon.Duration,
		Valid:    coupon.Valid,
	}
	if coupon.PercentOff > 0 {
		promocode.PercentOff = &coupon.PercentOff
	}
	if coupon.AmountOff > 0 {
		promocode.AmountOff = &coupon.AmountOff
	}
	if coupon.Currency != "" {
		promocode.Currency = &coupon.Currency
	}
	if coupon.DurationInMonths > 0 {
		promocode.DurationInMonths = &coupon.DurationInMonths
	}
	if coupon.MaxRedemptions > 0 {
		promocode.MaxRedemptions = &coupon.MaxRedemptions
	}
	if err := s.store.CreatePromocode(ctx, &promocode); err != nil {
		return nil, err
	}

	return &models.CouponResponse{ID: coupon.ID}, nil
}

// CreateCustomerPortal opens a provider-hosted portal session for the
// user's customer.
func (s *Service) CreateCustomerPortal(ctx context.Context, req models.CustomerPortalRequest) *models.BillingResponse {
	user, err := s.store.UserByEmail(ctx, req.UserEmail)
	if errors.Is(err, models.ErrNotFound) {
		return s.degrade("An error occurred during createPortal.", models.NewValidationError("User with the provided email not found."))
	}
	if err != nil {
		return s.degrade("An error occurred during createPortal.", err)
	}

	url, err := s.ledger.CreateBillingPortalSession(ctx, user.CustomerID, s.cfg.PortalReturnURL)
	if err != nil {
		return s.degrade("An error occurred during createPortal.", err)
	}

	return &models.BillingResponse{
		Success: true,
		Message: "CreatePortal successful.",
		URL:     url,
	}
}

func (s *Service) degrade(message string, err error) *models.BillingResponse {
	s.logger.Printf("billing: %s %v", message, err)
	return &models.BillingResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	}
}

// minorUnits converts a major-unit amount to integer provider minor units.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
