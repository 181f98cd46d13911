// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/reconciler"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// ErrNoActor is returned when a mutation arrives without identity headers.
var ErrNoActor = errors.New("missing actor identity")

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes err as an api.Error with the matching status.
func Error(w http.ResponseWriter, err error) {
	status, code := Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	}
	JSON(w, status, api.Error{Message: err.Error(), Code: &code})
}

// Status maps an error to an HTTP status and a stable error code.
func Status(err error) (int, string) {
	var (
		stateErr *escrow.InvalidStateError
		actorErr *escrow.UnauthorizedActorError
		sigErr   *reconciler.SignatureVerificationError
		gwErr    *gateway.Error
	)
	switch {
	case errors.Is(err, ErrNoActor):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.As(err, &actorErr):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &stateErr), errors.Is(err, storage.ErrLeaseLost):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, escrow.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.As(err, &sigErr):
		return http.StatusBadRequest, "invalid_signature"
	case errors.Is(err, gateway.ErrMalformedEvent):
		return http.StatusBadRequest, "malformed_event"
	case errors.Is(err, storage.ErrTransactionNotFound), errors.Is(err, storage.ErrDisputeNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &gwErr):
		if gwErr.Retryable {
			return http.StatusServiceUnavailable, "processor_unavailable"
		}
		return http.StatusPaymentRequired, "payment_declined"
	}
	return http.StatusInternalServerError, "internal"
}
