package mapping

import (
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToApiTransaction(t *testing.T) {
	id := uuid.New()
	tx := &models.Transaction{
		Id:               id.String(),
		Kind:             models.SALE,
		Status:           models.PARTIALLY_RELEASED,
		AuthorizationId:  "pi_1",
		AuthorizedAmount: 10000,
		CapturedAmount:   4000,
	}

	out := ToApiTransaction(tx)

	assert.Equal(t, id, out.Id)
	assert.Equal(t, api.TransactionStatus("PARTIALLY_RELEASED"), out.Status)
	assert.Equal(t, int64(6000), out.RemainingAuthorization)
	require.NotNil(t, out.AuthorizationId)
	assert.Equal(t, "pi_1", *out.AuthorizationId)
	assert.Nil(t, out.Deposit)
	assert.Nil(t, out.TrackingRef)
}

func TestToDomainCreateRequest(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	deposit := int64(2000)
	dest := "acct_1"

	req := ToDomainCreateRequest(&api.NewTransaction{
		Kind:              api.RENT,
		ListingId:         "listing-1",
		BuyerId:           "buyer-1",
		SellerId:          "seller-1",
		PayoutDestination: &dest,
		Amount:            5000,
		Deposit:           &deposit,
		RentalStart:       &start,
		RentalEnd:         &end,
	})

	assert.Equal(t, models.RENT, req.Kind)
	assert.Equal(t, "acct_1", req.PayoutDestination)
	assert.Equal(t, int64(2000), req.Deposit)
	assert.Equal(t, end, req.RentalEnd)
	assert.Empty(t, req.Currency)
}

func TestToApiCreateResponse(t *testing.T) {
	res := &escrow.CreateResult{
		Transaction:  &models.Transaction{Id: uuid.NewString(), AuthorizationId: "pi_1"},
		ClientSecret: "pi_1_secret",
	}

	out := ToApiCreateResponse(res)

	require.NotNil(t, out.ClientSecret)
	assert.Equal(t, "pi_1_secret", *out.ClientSecret)
	assert.Equal(t, "pi_1", *out.AuthorizationId)
}

func TestToApiDispute(t *testing.T) {
	open := ToApiDispute(&models.Dispute{TransactionID: uuid.NewString(), Status: models.DisputeOpen, Reason: "broken"})
	assert.Nil(t, open.Outcome)
	assert.Nil(t, open.Deduction)

	resolved := ToApiDispute(&models.Dispute{Status: models.DisputeResolved, Outcome: models.OutcomeRefundBuyer, Deduction: 1000})
	require.NotNil(t, resolved.Outcome)
	assert.Equal(t, api.REFUNDBUYER, *resolved.Outcome)
	assert.Equal(t, int64(1000), *resolved.Deduction)
}
