package gateway

// Processor notification types handled by the reconciler.
const (
	EventAuthorizationCapturable = "payment_intent.amount_capturable_updated"
	EventAuthorizationSucceeded  = "payment_intent.succeeded"
	EventAuthorizationCanceled   = "payment_intent.canceled"
	EventAuthorizationFailed     = "payment_intent.payment_failed"
	EventChargeRefunded          = "charge.refunded"
	EventChargeDisputed          = "charge.dispute.created"
)

// Event is a verified processor notification reduced to what the escrow
// needs. AuthorizationID locates the transaction; ObjectID and Type identify
// the notification for duplicate detection.
type Event struct {
	ID               string
	Type             string
	ObjectID         string
	AuthorizationID  string
	Status           string
	Amount           int64
	AmountCapturable int64
	AmountCaptured   int64
	AmountRefunded   int64
}

// Supported reports whether the event type is one the escrow reacts to.
func (e Event) Supported() bool {
	switch e.Type {
	case EventAuthorizationCapturable, EventAuthorizationSucceeded, EventAuthorizationCanceled,
		EventAuthorizationFailed, EventChargeRefunded, EventChargeDisputed:
		return true
	}
	return false
}
