package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/metrics"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/risk"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/google/uuid"
)

// CreateRequest describes a purchase or rental. Deposit and the rental dates
// are only read for RENT.
type CreateRequest struct {
	Kind models.TransactionKind
	models.Parties
	Amount      int64
	Deposit     int64
	Currency    string
	RentalStart time.Time
	RentalEnd   time.Time
	Metadata    map[string]string
}

// CreateResult carries the client secret the buyer needs to confirm the
// payment with the processor.
type CreateResult struct {
	Transaction  *models.Transaction
	ClientSecret string
}

const opCreate = "create_and_authorize"

// CreateAndAuthorize screens the purchase, stores it and places the hold.
//
// A flagged purchase is stored in MANUAL_REVIEW without contacting the
// processor. A declined authorization is stored as FAILED and returned
// together with the error. When the processor stays unreachable the
// transaction is left PENDING for the stale sweep.
func (o *Orchestrator) CreateAndAuthorize(ctx context.Context, actor Actor, req CreateRequest) (*CreateResult, error) {
	ctx, span := o.tracer.Start(ctx, "escrow."+opCreate)
	defer span.End()

	res, err := o.createAndAuthorize(ctx, actor, req)
	metrics.Transitions.WithLabelValues(opCreate, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

func (o *Orchestrator) createAndAuthorize(ctx context.Context, actor Actor, req CreateRequest) (*CreateResult, error) {
	now := o.now()
	tx, err := newTransaction(req, now)
	if err != nil {
		return nil, err
	}
	tx.PlatformFee = o.PlatformFee(tx)
	c := &change{actor: actor, now: tx.CreatedAt}

	decision, err := o.screener.Screen(ctx, risk.Subject{
		BuyerID:   tx.BuyerId,
		SellerID:  tx.SellerId,
		ListingID: tx.ListingId,
		Amount:    tx.AuthorizedAmount,
		Currency:  tx.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to screen transaction: %w", err)
	}
	if decision.Flagged {
		tx.Status = models.MANUAL_REVIEW
		c.record(tx, models.EventManualReview, amountMeta("reason", decision.Reason))
		if err := o.store.CreateTransaction(ctx, tx, c.events); err != nil {
			return nil, fmt.Errorf("failed to store transaction for review: %w", err)
		}
		o.logger.Warn("transaction placed on manual review", "transactionId", tx.Id, "buyerId", tx.BuyerId, "reason", decision.Reason)
		return &CreateResult{Transaction: tx}, nil
	}

	owner := o.cfg.InstanceID + "/" + uuid.New().String()
	tx.LeaseOwner = owner
	tx.LeaseExpiresAt = now.Add(o.cfg.LeaseTTL).UnixMilli()
	if err := o.store.CreateTransaction(ctx, tx, nil); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	auth, authErr := callGateway(ctx, o, gateway.OpAuthorize, "",
		func(ctx context.Context) (*gateway.Authorization, error) {
			return o.gateway.Authorize(ctx, gateway.AuthorizeRequest{
				Amount:   tx.AuthorizedAmount,
				Currency: tx.Currency,
				Metadata: map[string]string{
					"transaction_id": tx.Id,
					"listing_id":     tx.ListingId,
					"kind":           string(tx.Kind),
				},
				IdempotencyKey: gateway.IdempotencyKey(tx.Id, gateway.OpAuthorize, tx.Version),
			})
		}, nil)

	switch {
	case authErr == nil:
		tx.AuthorizationId = auth.ID
		// Stripe holds the funds only after the buyer confirms with the client
		// secret; the capturable webhook finishes the job in that case.
		if auth.Status == gateway.StatusRequiresCapture {
			tx.Status = models.AUTHORIZED
		}
		c.record(tx, models.EventPaymentIntentCreated, amountMeta("amount", tx.AuthorizedAmount, "authorization_id", auth.ID))
		c.notify(tx, notify.PaymentInitiated, tx.AuthorizedAmount, tx.BuyerId, tx.SellerId)
	case gateway.IsRetryable(authErr) || errors.Is(authErr, context.Canceled):
		if err := o.store.ReleaseLease(context.WithoutCancel(ctx), tx.Id, owner); err != nil {
			o.logger.Warn("failed to release lease", "transactionId", tx.Id, "error", err)
		}
		return nil, fmt.Errorf("failed to authorize transaction %s: %w", tx.Id, authErr)
	default:
		tx.Status = models.FAILED
		c.record(tx, models.EventAuthorizationFailed, amountMeta("error", authErr.Error()))
	}

	expected := tx.Version
	tx.Version = expected + 1
	tx.LeaseOwner = ""
	tx.LeaseExpiresAt = 0
	err = o.store.Commit(ctx, storage.Commit{Transaction: tx, Events: c.events, LeaseOwner: owner, ExpectedVersion: expected})
	if err != nil {
		if authErr == nil {
			o.reconciliationAlert(ctx, "commit_failed", tx, opCreate, []string{"authorize:" + auth.ID}, err)
		}
		return nil, fmt.Errorf("failed to commit authorization of transaction %s: %w", tx.Id, err)
	}

	if authErr != nil {
		o.logger.Info("authorization declined", "transactionId", tx.Id, "error", authErr)
		return &CreateResult{Transaction: tx}, fmt.Errorf("authorization declined for transaction %s: %w", tx.Id, authErr)
	}
	for _, n := range c.notices {
		n.Status = string(tx.Status)
		if err := o.notifier.Notify(ctx, n); err != nil {
			o.logger.Warn("failed to send notice", "kind", n.Kind, "transactionId", tx.Id, "error", err)
		}
	}
	o.logger.Info("transaction authorized", "transactionId", tx.Id, "authorizationId", tx.AuthorizationId, "status", tx.Status)
	return &CreateResult{Transaction: tx, ClientSecret: auth.ClientSecret}, nil
}

func newTransaction(req CreateRequest, now time.Time) (*models.Transaction, error) {
	var tx *models.Transaction
	var err error
	switch req.Kind {
	case models.SALE:
		tx, err = models.NewSale(models.SaleParams{
			Parties:  req.Parties,
			Amount:   req.Amount,
			Currency: req.Currency,
			Metadata: req.Metadata,
		}, now)
	case models.RENT:
		tx, err = models.NewRental(models.RentalParams{
			Parties:  req.Parties,
			Amount:   req.Amount,
			Deposit:  req.Deposit,
			Currency: req.Currency,
			Start:    req.RentalStart,
			End:      req.RentalEnd,
			Metadata: req.Metadata,
		}, now)
	default:
		return nil, invalidInput("unknown transaction kind %q", req.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return tx, nil
}
