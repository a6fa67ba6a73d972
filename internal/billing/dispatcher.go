package billing

import (
	"context"
	"errors"

	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/models"
)

// HandleEvent verifies and routes one webhook delivery. Only signature
// verification failure is returned; processing errors are logged and
// swallowed so the delivery is still acknowledged and the provider's own
// retry schedule stays in control of redelivery.
func (s *Service) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.ledger.ConstructEvent(payload, sigHeader)
	if err != nil {
		return err
	}

	if err := s.routeEvent(ctx, event); err != nil {
		s.logger.Printf("billing: event %s (%s): %v", event.Type, event.ID, err)
	}
	return nil
}

func (s *Service) routeEvent(ctx context.Context, event *ledger.Event) error {
	switch event.Type {
	case "payment_intent.created":
		if event.PaymentIntent == nil {
			return nil
		}
		return s.paymentIntentCreated(ctx, event.PaymentIntent)

	case "payment_intent.requires_action",
		"payment_intent.succeeded",
		"payment_intent.canceled":
		if event.PaymentIntent == nil {
			return nil
		}
		_, err := s.applyIntent(ctx, event.PaymentIntent)
		return err

	case "invoice.created",
		"invoice.finalized",
		"invoice.updated",
		"invoice.paid",
		"invoice.payment_succeeded",
		"invoice.voided",
		"invoice.payment_failed",
		"invoice.payment_action_required":
		if event.Invoice == nil {
			return nil
		}
		_, err := s.applyInvoice(ctx, event.Invoice)
		return err

	case "customer.subscription.created":
		// Informational fetch only; the created subscription is persisted
		// by the checkout flow and advanced by later events.
		if event.Subscription == nil {
			return nil
		}
		_, err := s.ledger.GetSubscription(ctx, event.Subscription.ID, true)
		return err

	case "customer.subscription.updated":
		if event.Subscription == nil {
			return nil
		}
		return s.subscriptionUpdated(ctx, event.Subscription)

	case "customer.subscription.deleted":
		if event.Subscription == nil {
			return nil
		}
		_, err := s.applySubscription(ctx, event.Subscription)
		return err

	case "customer.subscription.trial_will_end":
		if event.Subscription == nil {
			return nil
		}
		return s.trialWillEnd(ctx, event.Subscription)

	case "billing_portal.session.created", "invoice.sent", "invoice.upcoming":
		return nil

	default:
		s.logger.Printf("billing: unhandled event type %s", event.Type)
		return nil
	}
}

// paymentIntentCreated records the intent on first sight and reduces it on
// redelivery. Deliveries are unordered, so the gate is the natural-key
// lookup rather than the event type.
func (s *Service) paymentIntentCreated(ctx context.Context, snap *ledger.Intent) error {
	_, err := s.store.PaymentByIntentID(ctx, snap.ID)
	if errors.Is(err, models.ErrNotFound) {
		payment := PaymentFromIntent(snap)
		return s.store.CreatePayment(ctx, &payment)
	}
	if err != nil {
		return err
	}
	_, err = s.applyIntent(ctx, snap)
	return err
}

func (s *Service) subscriptionUpdated(ctx context.Context, snap *ledger.Subscription) error {
	inForce := snap.Status == "active" || snap.Status == "trialing"
	if inForce && snap.CancelAtPeriodEnd {
		if _, err := s.applySubscription(ctx, snap); err != nil {
			return err
		}
	}

	switch snap.Status {
	case "active":
		// The event payload carries no expanded invoice, so refetch to pick
		// up the payment intent behind the latest invoice.
		full, err := s.ledger.GetSubscription(ctx, snap.ID, true)
		if err != nil {
			return err
		}
		if full.LatestInvoice != nil && full.LatestInvoice.PaymentIntent != nil {
			intent := full.LatestInvoice.PaymentIntent
			_, err := s.store.PaymentByIntentID(ctx, intent.ID)
			switch {
			case err == nil:
				if _, err := s.applyIntent(ctx, intent); err != nil {
					return err
				}
			case !errors.Is(err, models.ErrNotFound):
				return err
			}
		}
		_, err = s.applySubscription(ctx, full)
		return err

	case "canceled":
		_, err := s.applySubscription(ctx, snap)
		return err
	}
	return nil
}

// trialWillEnd converts a trial to live billing, but only when the trial
// end timestamp matches the current second. Provider retries outside that
// second are no-ops, which keeps the conversion single-shot.
func (s *Service) trialWillEnd(ctx context.Context, snap *ledger.Subscription) error {
	if snap.TrialEnd != s.now().Unix() {
		return nil
	}

	full, err := s.ledger.EndTrialNow(ctx, snap.ID)
	if err != nil {
		return err
	}
	if full.LatestInvoice != nil && full.LatestInvoice.PaymentIntent != nil {
		payment := PaymentFromIntent(full.LatestInvoice.PaymentIntent)
		if err := s.store.CreatePayment(ctx, &payment); err != nil {
			return err
		}
	}

	_, err = s.applySubscription(ctx, snap)
	return err
}
