package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/reconciler"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNoActor, http.StatusUnauthorized},
		{&escrow.UnauthorizedActorError{Operation: "capture"}, http.StatusForbidden},
		{&escrow.InvalidStateError{Status: models.REFUNDED}, http.StatusConflict},
		{fmt.Errorf("amount: %w", escrow.ErrInvalidInput), http.StatusBadRequest},
		{&reconciler.SignatureVerificationError{Err: errors.New("bad")}, http.StatusBadRequest},
		{fmt.Errorf("tx: %w", storage.ErrTransactionNotFound), http.StatusNotFound},
		{&gateway.Error{Op: gateway.OpCapture, Retryable: true, Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{&gateway.Error{Op: gateway.OpAuthorize, Err: errors.New("card_declined")}, http.StatusPaymentRequired},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		got, _ := Status(c.err)
		assert.Equal(t, c.want, got, c.err.Error())
	}
}

func TestError(t *testing.T) {
	rr := httptest.NewRecorder()

	Error(rr, &escrow.InvalidStateError{TransactionID: "tx-1", Operation: "capture", Status: models.RELEASED})

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"code":"invalid_state"`)
}
