package mapping

import (
	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ToApiTransaction converts a domain Transaction model to an API Transaction model.
func ToApiTransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:                     toUUID(tx.Id),
		ListingId:              tx.ListingId,
		BuyerId:                tx.BuyerId,
		SellerId:               tx.SellerId,
		Kind:                   api.TransactionKind(tx.Kind),
		Status:                 api.TransactionStatus(tx.Status),
		Currency:               tx.Currency,
		AuthorizationId:        optional(tx.AuthorizationId),
		AuthorizedAmount:       tx.AuthorizedAmount,
		CapturedAmount:         tx.CapturedAmount,
		RefundedAmount:         tx.RefundedAmount,
		ReleasedAmount:         tx.ReleasedAmount,
		RemainingAuthorization: tx.RemainingAuthorization(),
		PlatformFee:            tx.PlatformFee,
		Deposit:                optionalAmount(tx.Deposit),
		PaidOutAmount:          tx.PaidOutAmount,
		PayoutStatus:           optional(string(tx.PayoutStatus)),
		RentalStart:            tx.RentalStart,
		RentalEnd:              tx.RentalEnd,
		ShippedAt:              tx.ShippedAt,
		TrackingRef:            optional(tx.TrackingRef),
		DeliveredAt:            tx.DeliveredAt,
		DamageReported:         tx.DamageReported,
		Version:                tx.Version,
		CreatedAt:              tx.CreatedAt,
		UpdatedAt:              tx.UpdatedAt,
	}
}

// ToApiTransition is the short body returned by state transitions.
func ToApiTransition(tx *models.Transaction) *api.TransitionResponse {
	return &api.TransitionResponse{Id: toUUID(tx.Id), Status: api.TransactionStatus(tx.Status)}
}

// ToApiCreateResponse converts the result of a create and authorize call.
func ToApiCreateResponse(res *escrow.CreateResult) *api.CreateTransactionResponse {
	return &api.CreateTransactionResponse{
		Transaction:     *ToApiTransaction(res.Transaction),
		ClientSecret:    optional(res.ClientSecret),
		AuthorizationId: optional(res.Transaction.AuthorizationId),
	}
}

// ToDomainCreateRequest converts an API NewTransaction model to an orchestrator request.
func ToDomainCreateRequest(newTx *api.NewTransaction) escrow.CreateRequest {
	req := escrow.CreateRequest{
		Kind: models.TransactionKind(newTx.Kind),
		Parties: models.Parties{
			ListingId: newTx.ListingId,
			BuyerId:   newTx.BuyerId,
			SellerId:  newTx.SellerId,
		},
		Amount: newTx.Amount,
	}
	if newTx.PayoutDestination != nil {
		req.PayoutDestination = *newTx.PayoutDestination
	}
	if newTx.Deposit != nil {
		req.Deposit = *newTx.Deposit
	}
	if newTx.Currency != nil {
		req.Currency = *newTx.Currency
	}
	if newTx.RentalStart != nil {
		req.RentalStart = *newTx.RentalStart
	}
	if newTx.RentalEnd != nil {
		req.RentalEnd = *newTx.RentalEnd
	}
	if newTx.Metadata != nil {
		req.Metadata = *newTx.Metadata
	}
	return req
}

// ToApiPaymentEvent converts an event log entry.
func ToApiPaymentEvent(e *models.PaymentEvent) *api.PaymentEvent {
	out := &api.PaymentEvent{
		EventId:           e.EventID,
		TransactionId:     toUUID(e.TransactionID),
		Type:              e.Type,
		Actor:             e.Actor,
		ProcessorObjectId: optional(e.ProcessorObjectID),
		CreatedAt:         e.CreatedAt,
	}
	if len(e.Metadata) > 0 {
		metadata := e.Metadata
		out.Metadata = &metadata
	}
	return out
}

// ToApiDispute converts a dispute record.
func ToApiDispute(d *models.Dispute) *api.Dispute {
	out := &api.Dispute{
		TransactionId:  toUUID(d.TransactionID),
		OpenedBy:       d.OpenedBy,
		Reason:         d.Reason,
		Evidence:       optional(d.Evidence),
		Status:         string(d.Status),
		ResolvedBy:     optional(d.ResolvedBy),
		ResolutionNote: optional(d.ResolutionNote),
		CreatedAt:      d.CreatedAt,
		ResolvedAt:     d.ResolvedAt,
	}
	if d.Outcome != "" {
		outcome := api.DisputeOutcome(d.Outcome)
		out.Outcome = &outcome
		out.Deduction = &d.Deduction
	}
	return out
}

// ToDomainResolution converts an admin's dispute decision.
func ToDomainResolution(req *api.ResolveDisputeRequest) escrow.Resolution {
	res := escrow.Resolution{Outcome: models.DisputeOutcome(req.Outcome)}
	if req.Deduction != nil {
		res.Deduction = *req.Deduction
	}
	if req.Note != nil {
		res.Note = *req.Note
	}
	return res
}

// Ids are generated as UUIDs; anything else maps to the nil UUID.
func toUUID(id string) openapi_types.UUID {
	parsed, _ := uuid.Parse(id)
	return parsed
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalAmount(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
