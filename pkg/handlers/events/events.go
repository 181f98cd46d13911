package events

import (
	"net/http"

	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/handlers/respond"
	"github.com/chris/marketplace-escrow/pkg/mapping"
	"github.com/chris/marketplace-escrow/pkg/storage"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Store is what the events handlers read.
type Store interface {
	storage.EventReader
	storage.DisputeReader
}

// EventsHandler serves a transaction's audit trail and dispute.
type EventsHandler struct {
	Store Store
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(store Store) *EventsHandler {
	return &EventsHandler{Store: store}
}

// ListTransactionEvents returns the event log of a transaction, oldest first.
func (h *EventsHandler) ListTransactionEvents(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	domainEvents, err := h.Store.ListEvents(r.Context(), transactionId.String())
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiEvents := make([]*api.PaymentEvent, len(domainEvents))
	for i, e := range domainEvents {
		apiEvents[i] = mapping.ToApiPaymentEvent(&e)
	}
	respond.JSON(w, http.StatusOK, apiEvents)
}

func (h *EventsHandler) GetTransactionDispute(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	dispute, err := h.Store.GetDispute(r.Context(), transactionId.String())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiDispute(dispute))
}
