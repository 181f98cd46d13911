package transactions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/handlers/respond"
	"github.com/chris/marketplace-escrow/pkg/mapping"
	"github.com/chris/marketplace-escrow/pkg/middleware"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TransactionsHandler holds the dependencies for transaction-related handlers.
type TransactionsHandler struct {
	Service escrow.Service
	Store   storage.TransactionReader
	Logger  *slog.Logger
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(service escrow.Service, store storage.TransactionReader, logger *slog.Logger) *TransactionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionsHandler{Service: service, Store: store, Logger: logger}
}

// CreateTransaction creates a transaction and authorizes the buyer's payment.
// A transaction held for fraud review is answered with 202.
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		respond.Error(w, respond.ErrNoActor)
		return
	}
	var newTx api.NewTransaction
	if err := json.NewDecoder(r.Body).Decode(&newTx); err != nil {
		respond.Error(w, fmt.Errorf("%w: invalid request body: %v", escrow.ErrInvalidInput, err))
		return
	}

	res, err := h.Service.CreateAndAuthorize(r.Context(), actor, mapping.ToDomainCreateRequest(&newTx))
	if err != nil {
		if res != nil && res.Transaction != nil {
			h.Logger.WarnContext(r.Context(), "authorization failed", "transactionId", res.Transaction.Id, "error", err)
		}
		respond.Error(w, err)
		return
	}

	status := http.StatusCreated
	if res.Transaction.Status == models.MANUAL_REVIEW {
		status = http.StatusAccepted
	}
	respond.JSON(w, status, mapping.ToApiCreateResponse(res))
}

// ListTransactions returns a user's transactions, newest first.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request, params api.ListTransactionsParams) {
	domainTxs, err := h.Store.ListTransactionsByUserID(r.Context(), params.UserId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiTxs := make([]*api.Transaction, len(domainTxs))
	for i, tx := range domainTxs {
		apiTxs[i] = mapping.ToApiTransaction(&tx)
	}
	respond.JSON(w, http.StatusOK, apiTxs)
}

// GetTransaction handles the logic for retrieving a transaction by its ID.
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	tx, err := h.Store.GetTransaction(r.Context(), transactionId.String())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransaction(tx))
}

func (h *TransactionsHandler) RequestRelease(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.NoteRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.RequestRelease(r.Context(), transactionId.String(), actor, deref(body.Note))
	})
}

func (h *TransactionsHandler) MarkShipped(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.ShipRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.MarkShipped(r.Context(), transactionId.String(), actor, body.TrackingRef)
	})
}

// ConfirmRelease captures the given amount, or everything still held.
func (h *TransactionsHandler) ConfirmRelease(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.AmountRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.Capture(r.Context(), transactionId.String(), actor, derefAmount(body.Amount))
	})
}

func (h *TransactionsHandler) RefundTransaction(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.AmountRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.Refund(r.Context(), transactionId.String(), actor, derefAmount(body.Amount))
	})
}

func (h *TransactionsHandler) OpenDispute(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.DisputeRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.OpenDispute(r.Context(), transactionId.String(), actor, body.Reason, deref(body.Evidence))
	})
}

func (h *TransactionsHandler) ResolveDispute(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.ResolveDisputeRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.ResolveDispute(r.Context(), transactionId.String(), actor, mapping.ToDomainResolution(&body))
	})
}

func (h *TransactionsHandler) StartRental(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	h.transition(w, r, nil, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.StartRental(r.Context(), transactionId.String(), actor)
	})
}

func (h *TransactionsHandler) CompleteRental(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	h.transition(w, r, nil, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.CompleteRental(r.Context(), transactionId.String(), actor)
	})
}

func (h *TransactionsHandler) ReportDamage(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.NoteRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.ReportDamage(r.Context(), transactionId.String(), actor, deref(body.Note))
	})
}

func (h *TransactionsHandler) DeductDamage(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var body api.DamageRequest
	h.transition(w, r, &body, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.DeductDamage(r.Context(), transactionId.String(), actor, body.Amount)
	})
}

func (h *TransactionsHandler) FinalizeRefund(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	h.transition(w, r, nil, func(actor escrow.Actor) (*models.Transaction, error) {
		return h.Service.FinalizeRefund(r.Context(), transactionId.String(), actor)
	})
}

// transition decodes an optional body into dst, runs op as the caller and
// answers with the new status.
func (h *TransactionsHandler) transition(w http.ResponseWriter, r *http.Request, dst any, op func(escrow.Actor) (*models.Transaction, error)) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		respond.Error(w, respond.ErrNoActor)
		return
	}
	if dst != nil {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(w, fmt.Errorf("%w: invalid request body: %v", escrow.ErrInvalidInput, err))
			return
		}
	}

	tx, err := op(actor)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransition(tx))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefAmount(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
