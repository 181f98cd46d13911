package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/app"
	"github.com/chris/marketplace-escrow/pkg/config"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/handlers/respond"
	"github.com/chris/marketplace-escrow/pkg/handlers/webhooks"
	"github.com/chris/marketplace-escrow/pkg/reconciler"
)

// signatureAttribute carries the processor signature on queued notifications.
const signatureAttribute = "signature"

var (
	rec    webhooks.Reconciler
	logger *slog.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	a, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	rec = a.Reconciler
}

// HandleRequest accepts either an API Gateway proxy request or an SQS batch
// of notifications buffered in front of the function.
func HandleRequest(ctx context.Context, raw json.RawMessage) (any, error) {
	var probe struct {
		Records []json.RawMessage `json:"Records"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && len(probe.Records) > 0 {
		var batch events.SQSEvent
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("decode sqs batch: %w", err)
		}
		return handleBatch(ctx, batch), nil
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode api gateway request: %w", err)
	}
	return handleHTTP(ctx, req), nil
}

func handleHTTP(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	outcome, err := rec.Handle(ctx, []byte(req.Body), header(req.Headers, webhooks.SignatureHeader))
	if err != nil {
		status, code := respond.Status(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "webhook failed", "error", err)
		}
		return jsonResponse(status, api.Error{Message: err.Error(), Code: &code})
	}
	return jsonResponse(http.StatusOK, map[string]string{"outcome": string(outcome)})
}

// handleBatch reports the messages worth redelivering. Notifications that
// can never verify or parse are dropped.
func handleBatch(ctx context.Context, batch events.SQSEvent) events.SQSEventResponse {
	var resp events.SQSEventResponse
	for _, msg := range batch.Records {
		var signature string
		if attr, ok := msg.MessageAttributes[signatureAttribute]; ok && attr.StringValue != nil {
			signature = *attr.StringValue
		}
		outcome, err := rec.Handle(ctx, []byte(msg.Body), signature)
		var sigErr *reconciler.SignatureVerificationError
		switch {
		case err == nil:
			logger.DebugContext(ctx, "notification handled", "messageId", msg.MessageId, "outcome", outcome)
		case errors.As(err, &sigErr), errors.Is(err, gateway.ErrMalformedEvent):
			logger.WarnContext(ctx, "dropping unverifiable notification", "messageId", msg.MessageId, "error", err)
		default:
			logger.ErrorContext(ctx, "notification failed", "messageId", msg.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
		}
	}
	return resp
}

func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func main() {
	lambda.Start(HandleRequest)
}
