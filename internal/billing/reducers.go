package billing

import (
	"time"

	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/models"
)

// Outcome is the human-readable result of applying one provider snapshot.
// Unknown statuses never fail hard: they produce a generic error outcome so
// new provider statuses degrade instead of crashing deliveries.
type Outcome struct {
	IsError bool
	Message string
}

var genericOutcome = Outcome{IsError: true, Message: "Something went wrong, try again."}

// intentOutcomes is the payment/setup-intent transition table. Only
// "succeeded" clears the error flag; every other known status carries a
// status-specific user message.
var intentOutcomes = map[string]Outcome{
	"requires_payment_method": {IsError: true, Message: "Payment method is required."},
	"processing":              {IsError: true, Message: "Payment is in progress."},
	"succeeded":               {IsError: false, Message: ""},
	"requires_action":         {IsError: true, Message: "Payment method is required."},
	"requires_confirmation":   {IsError: true, Message: "Payment requires confirmation."},
	"canceled":                {IsError: true, Message: "Payment is canceled."},
}

// ReduceIntent maps an intent snapshot to the payment-record patch and
// outcome. A nil patch means the status is unknown and nothing should be
// written. Applying the same snapshot twice yields the same patch.
func ReduceIntent(snap *ledger.Intent) (*models.PaymentPatch, Outcome) {
	outcome, ok := intentOutcomes[snap.Status]
	if !ok {
		return nil, genericOutcome
	}
	status := snap.Status
	return &models.PaymentPatch{Status: &status}, outcome
}

// PaymentFromIntent builds the local payment record for the first
// observation of an intent. Provider amounts are minor units; the stored
// amount is always scaled to major units here.
func PaymentFromIntent(snap *ledger.Intent) models.Payment {
	return models.Payment{
		IntentID:     snap.ID,
		Status:       snap.Status,
		Amount:       0.01 * float64(snap.Amount),
		CustomerID:   snap.CustomerID,
		Mode:         snap.Mode,
		CurrencyType: snap.Currency,
	}
}

// UserUpdate says what the subscription transition does to the owning
// user's billing projection.
type UserUpdate int

const (
	// UserUpdateNone leaves the user untouched.
	UserUpdateNone UserUpdate = iota
	// UserUpdatePackage sets the package type from the resolved product and
	// clears activation/end dates (trial not yet billed).
	UserUpdatePackage
	// UserUpdateActivate sets package type plus activation/end dates from
	// the current billing period.
	UserUpdateActivate
	// UserUpdateClear clears package type and activation/end dates.
	UserUpdateClear
)

// SubscriptionAction is the impure follow-up a subscription transition
// requires from its caller: product resolution and the user projection
// update cannot be computed from the snapshot alone.
type SubscriptionAction struct {
	NeedsProduct bool
	User         UserUpdate
}

type subscriptionTransition struct {
	outcome Outcome
	action  SubscriptionAction
	patch   func(s *ledger.Subscription) models.OrderPatch
}

var subscriptionTransitions = map[string]subscriptionTransition{
	"trialing": {
		outcome: Outcome{},
		action:  SubscriptionAction{NeedsProduct: true, User: UserUpdatePackage},
		patch: func(s *ledger.Subscription) models.OrderPatch {
			p := cancellationPatch(s)
			p.TrialStart = timeFromUnix(s.TrialStart)
			p.TrialEnd = timeFromUnix(s.TrialEnd)
			return p
		},
	},
	"active": {
		outcome: Outcome{IsError: false, Message: "Subscription status is active"},
		action:  SubscriptionAction{NeedsProduct: true, User: UserUpdateActivate},
		patch: func(s *ledger.Subscription) models.OrderPatch {
			p := cancellationPatch(s)
			p.StartDate = timeFromUnix(s.PeriodStart)
			p.EndDate = timeFromUnix(s.PeriodEnd)
			intentID := ""
			if s.LatestInvoice != nil && s.LatestInvoice.PaymentIntent != nil {
				intentID = s.LatestInvoice.PaymentIntent.ID
			}
			p.PaymentIntentID = &intentID
			return p
		},
	},
	"incomplete": {
		outcome: Outcome{IsError: true, Message: "Subscription status is incomplete."},
		patch: func(s *ledger.Subscription) models.OrderPatch {
			return models.OrderPatch{DetachUser: true}
		},
	},
	"incomplete_expired": {
		outcome: Outcome{IsError: true, Message: "Subscription is incomplete or expired."},
		patch:   func(s *ledger.Subscription) models.OrderPatch { return models.OrderPatch{} },
	},
	"canceled": {
		outcome: Outcome{IsError: true, Message: "Subscription is canceled."},
		action:  SubscriptionAction{User: UserUpdateClear},
		patch: func(s *ledger.Subscription) models.OrderPatch {
			canceled := true
			return models.OrderPatch{
				Canceled:               &canceled,
				SetCanceledDate:        true,
				CanceledDate:           timeFromUnix(s.CanceledAt),
				SetCancellationDetails: true,
				CancellationDetails:    cancellationDetails(s),
			}
		},
	},
	"unpaid": {
		outcome: Outcome{IsError: true, Message: "Subscription is unpaid."},
		patch:   func(s *ledger.Subscription) models.OrderPatch { return models.OrderPatch{} },
	},
}

// ReduceSubscription maps a subscription snapshot to the order patch, the
// required follow-up action, and the outcome. A nil patch means the status
// is unknown and nothing should be written.
func ReduceSubscription(snap *ledger.Subscription) (*models.OrderPatch, SubscriptionAction, Outcome) {
	tr, ok := subscriptionTransitions[snap.Status]
	if !ok {
		return nil, SubscriptionAction{}, Outcome{IsError: true, Message: "Something went wrong."}
	}
	patch := tr.patch(snap)
	status := snap.Status
	patch.Status = &status
	return &patch, tr.action, tr.outcome
}

// UserPatchFor builds the user projection patch for a subscription
// transition. Returns nil when the transition leaves the user untouched.
func UserPatchFor(update UserUpdate, snap *ledger.Subscription, productTitle string) *models.UserBillingPatch {
	switch update {
	case UserUpdatePackage:
		title := productTitle
		return &models.UserBillingPatch{PackageType: &title}
	case UserUpdateActivate:
		title := productTitle
		return &models.UserBillingPatch{
			ActivationDate: timeFromUnix(snap.PeriodStart),
			EndDate:        timeFromUnix(snap.PeriodEnd),
			PackageType:    &title,
		}
	case UserUpdateClear:
		return &models.UserBillingPatch{}
	}
	return nil
}

// invoiceOutcomes is the invoice transition table; "paid" is the only
// non-error status.
var invoiceOutcomes = map[string]Outcome{
	"draft":         {IsError: true, Message: "Invoice is not generated."},
	"open":          {IsError: true, Message: "Invoice is in progress."},
	"paid":          {IsError: false, Message: ""},
	"uncollectible": {IsError: true, Message: "Payment not done."},
	"void":          {IsError: true, Message: "Subscription is canceled."},
}

// ReduceInvoice maps an invoice snapshot to its record patch and outcome.
// Every known status writes link, status and the scaled amount; a nil patch
// means the status is unknown and nothing should be written.
func ReduceInvoice(snap *ledger.Invoice) (*models.InvoicePatch, Outcome) {
	outcome, ok := invoiceOutcomes[snap.Status]
	if !ok {
		return nil, genericOutcome
	}
	link := snap.HostedURL
	status := snap.Status
	amount := 0.01 * float64(snap.AmountPaid)
	return &models.InvoicePatch{InvoiceLink: &link, Status: &status, Amount: &amount}, outcome
}

// InvoiceFromSnapshot builds the local invoice record for the first
// observation of an invoice id.
func InvoiceFromSnapshot(snap *ledger.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:      snap.ID,
		CustomerID:     snap.CustomerID,
		InvoiceLink:    snap.HostedURL,
		Status:         snap.Status,
		SubscriptionID: snap.SubscriptionID,
		Amount:         0.01 * float64(snap.AmountPaid),
	}
}

// Discount computes the discounted amount for a coupon: percent_off takes
// precedence, amount_off applies verbatim, neither yields zero.
func Discount(coupon *ledger.Coupon, totalAmount float64) float64 {
	if coupon.PercentOff > 0 {
		return coupon.PercentOff / 100 * totalAmount
	}
	if coupon.AmountOff > 0 {
		return float64(coupon.AmountOff)
	}
	return 0
}

func cancellationPatch(s *ledger.Subscription) models.OrderPatch {
	canceled := s.CancelAtPeriodEnd
	return models.OrderPatch{
		Canceled:               &canceled,
		SetCanceledDate:        true,
		CanceledDate:           timeFromUnix(s.CanceledAt),
		SetCancellationDetails: true,
		CancellationDetails:    cancellationDetails(s),
	}
}

// cancellationDetails derives the free-text details: the reason's feedback
// when a reason is present, otherwise feedback, then comment, then nothing.
func cancellationDetails(s *ledger.Subscription) *string {
	if s.CancellationReason != "" {
		if s.CancellationFeedback != "" {
			v := s.CancellationFeedback
			return &v
		}
		return nil
	}
	if s.CancellationFeedback != "" {
		v := s.CancellationFeedback
		return &v
	}
	if s.CancellationComment != "" {
		v := s.CancellationComment
		return &v
	}
	return nil
}

func timeFromUnix(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
