package billing

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/models"
	"github.com/ridham-007/test-vismobackend/internal/store"
)

// Config carries the billing-policy knobs read from the environment.
type Config struct {
	// BaseCurrency is the currency products are priced in; other currencies
	// convert through their stored rate.
	BaseCurrency string
	// PortalReturnURL is where the provider's customer portal sends the
	// user back to.
	PortalReturnURL string
}

// Service binds the reducers to the local store and the payment ledger. It
// backs both the synchronous API operations and the webhook dispatcher.
type Service struct {
	store  store.Store
	ledger ledger.Client
	cfg    Config
	logger *log.Logger

	// now is swapped in tests; the trial-end conversion matches timestamps
	// at second granularity.
	now func() time.Time
}

func NewService(st store.Store, lc ledger.Client, cfg Config) *Service {
	return &Service{
		store:  st,
		ledger: lc,
		cfg:    cfg,
		logger: log.Default(),
		now:    time.Now,
	}
}

// applyIntent persists the reduced status for an already-recorded intent.
// Unknown statuses write nothing.
func (s *Service) applyIntent(ctx context.Context, snap *ledger.Intent) (Outcome, error) {
	patch, outcome := ReduceIntent(snap)
	if patch == nil {
		return outcome, nil
	}
	if err := s.store.UpdatePaymentByIntentID(ctx, snap.ID, *patch); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// applySubscription persists the reduced order state and performs the
// follow-up the transition demands: product resolution and the owning
// user's billing projection.
func (s *Service) applySubscription(ctx context.Context, snap *ledger.Subscription) (Outcome, error) {
	patch, action, outcome := ReduceSubscription(snap)
	if patch == nil {
		return outcome, nil
	}
	if err := s.store.UpdateOrderBySubscriptionID(ctx, snap.ID, *patch); err != nil {
		return outcome, err
	}

	productTitle := ""
	if action.NeedsProduct {
		product, err := s.store.ProductByProviderID(ctx, snap.ProductID)
		if errors.Is(err, models.ErrNotFound) {
			return outcome, models.NewApplicationError("Product not found.")
		}
		if err != nil {
			return outcome, err
		}
		productTitle = product.Title
	}

	if userPatch := UserPatchFor(action.User, snap, productTitle); userPatch != nil {
		err := s.store.UpdateUserBilling(ctx, snap.CustomerID, *userPatch)
		if errors.Is(err, models.ErrNotFound) {
			return outcome, models.NewValidationError("User with the provided email not found.")
		}
		if err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// applyInvoice reconciles one invoice snapshot: first observation of the
// invoice id creates the record, later observations patch it. The gate is
// the natural-key lookup, not the event type, so deliveries converge in any
// order.
func (s *Service) applyInvoice(ctx context.Context, snap *ledger.Invoice) (Outcome, error) {
	patch, outcome := ReduceInvoice(snap)
	if patch == nil {
		return outcome, nil
	}

	_, err := s.store.InvoiceByInvoiceID(ctx, snap.ID)
	if errors.Is(err, models.ErrNotFound) {
		invoice := InvoiceFromSnapshot(snap)
		if err := s.store.CreateInvoice(ctx, &invoice); err != nil {
			return outcome, err
		}
		return outcome, nil
	}
	if err != nil {
		return outcome, err
	}

	if err := s.store.UpdateInvoiceByInvoiceID(ctx, snap.ID, *patch); err != nil {
		return outcome, err
	}
	return outcome, nil
}
