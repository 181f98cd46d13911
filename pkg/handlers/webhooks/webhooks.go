package webhooks

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/chris/marketplace-escrow/pkg/handlers/respond"
	"github.com/chris/marketplace-escrow/pkg/reconciler"
)

// SignatureHeader carries the processor's payload signature.
const SignatureHeader = "Stripe-Signature"

const maxPayloadBytes = 64 << 10

// Reconciler applies a signed notification.
type Reconciler interface {
	Handle(ctx context.Context, payload []byte, signatureHeader string) (reconciler.Outcome, error)
}

// WebhooksHandler receives payment processor notifications.
type WebhooksHandler struct {
	Reconciler Reconciler
	Logger     *slog.Logger
}

// NewWebhooksHandler creates a new WebhooksHandler.
func NewWebhooksHandler(rec Reconciler, logger *slog.Logger) *WebhooksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhooksHandler{Reconciler: rec, Logger: logger}
}

// ReceiveStripeWebhook acknowledges a notification once it is applied or
// safely ignored. Verification failures get a 400; anything worth a retry
// gets a 5xx so the processor redelivers.
func (h *WebhooksHandler) ReceiveStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "payload too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}

	outcome, err := h.Reconciler.Handle(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}
