package escrow

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v5"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/metrics"
)

// confirmFunc inspects the processor's view after an unknown outcome and
// reports whether the call's effect is already there.
type confirmFunc[T any] func(s *gateway.Snapshot) (*T, bool)

// callGateway runs one logical processor call. Retryable failures are
// retried with exponential backoff under the same idempotency key. When the
// outcome is unknown and the call can be confirmed, the authorization is
// retrieved first and the call is treated as done if its effect is visible.
func callGateway[T any](ctx context.Context, o *Orchestrator, op, authorizationID string, call func(ctx context.Context) (*T, error), confirm confirmFunc[T]) (*T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.cfg.GatewayBackoff
	b.MaxInterval = 20 * o.cfg.GatewayBackoff

	attempt := func() (*T, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.GatewayTimeout)
		defer cancel()

		res, err := call(callCtx)
		if err == nil {
			metrics.GatewayCalls.WithLabelValues(op, "ok").Inc()
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		if errors.Is(err, context.DeadlineExceeded) && !gateway.IsOutcomeUnknown(err) {
			err = &gateway.Error{Op: op, Retryable: true, Err: errors.Join(gateway.ErrOutcomeUnknown, err)}
		}

		if gateway.IsOutcomeUnknown(err) {
			metrics.GatewayCalls.WithLabelValues(op, "unknown").Inc()
			if confirm != nil && authorizationID != "" {
				if res, ok := confirmEffect(ctx, o, op, authorizationID, confirm); ok {
					return res, nil
				}
			}
		} else {
			metrics.GatewayCalls.WithLabelValues(op, "error").Inc()
		}

		if gateway.IsRetryable(err) {
			o.logger.Warn("retryable gateway failure", "call", op, "authorizationId", authorizationID, "error", err)
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	return backoff.Retry(ctx, attempt, backoff.WithBackOff(b), backoff.WithMaxTries(max(o.cfg.GatewayMaxAttempts, 1)))
}

func confirmEffect[T any](ctx context.Context, o *Orchestrator, op, authorizationID string, confirm confirmFunc[T]) (*T, bool) {
	retrieveCtx, cancel := context.WithTimeout(ctx, o.cfg.GatewayTimeout)
	defer cancel()

	snap, err := o.gateway.Retrieve(retrieveCtx, authorizationID)
	if err != nil {
		metrics.GatewayCalls.WithLabelValues(gateway.OpRetrieve, "error").Inc()
		o.logger.Warn("failed to retrieve authorization after unknown outcome", "call", op, "authorizationId", authorizationID, "error", err)
		return nil, false
	}
	metrics.GatewayCalls.WithLabelValues(gateway.OpRetrieve, "ok").Inc()

	res, ok := confirm(snap)
	if ok {
		o.logger.Info("gateway call confirmed from processor state", "call", op, "authorizationId", authorizationID)
	}
	return res, ok
}
