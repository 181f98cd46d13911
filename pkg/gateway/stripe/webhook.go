package stripe

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Verifier checks the Stripe-Signature header and reduces the event to a
// gateway.Event.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

// NewVerifier creates a Verifier for the endpoint signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret, tolerance: webhook.DefaultTolerance}
}

func (v *Verifier) Verify(payload []byte, header string) (*gateway.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", gateway.ErrMalformedEvent, event.ID)
	}

	out := &gateway.Event{ID: event.ID, Type: string(event.Type)}
	switch {
	case event.Type == stripego.EventTypeChargeRefunded:
		var ch stripego.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("%w: %v", gateway.ErrMalformedEvent, err)
		}
		out.ObjectID = ch.ID
		out.Amount = ch.Amount
		out.AmountCaptured = ch.AmountCaptured
		out.AmountRefunded = ch.AmountRefunded
		if ch.PaymentIntent != nil {
			out.AuthorizationID = ch.PaymentIntent.ID
		}
	case event.Type == stripego.EventTypeChargeDisputeCreated:
		var d stripego.Dispute
		if err := json.Unmarshal(event.Data.Raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", gateway.ErrMalformedEvent, err)
		}
		out.ObjectID = d.ID
		out.Amount = d.Amount
		out.Status = string(d.Status)
		if d.PaymentIntent != nil {
			out.AuthorizationID = d.PaymentIntent.ID
		}
	default:
		var pi stripego.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", gateway.ErrMalformedEvent, err)
		}
		out.ObjectID = pi.ID
		out.AuthorizationID = pi.ID
		out.Status = string(pi.Status)
		out.Amount = pi.Amount
		out.AmountCapturable = pi.AmountCapturable
		out.AmountCaptured = pi.AmountReceived
	}
	return out, nil
}
