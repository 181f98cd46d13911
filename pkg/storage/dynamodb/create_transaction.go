package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// CreateTransaction atomically stores a new transaction record and its first events.
func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction, events []models.PaymentEvent) error {
	slog.Log(ctx, slog.LevelDebug, "creating transaction", "transaction_id", tx.Id, "status", tx.Status)

	// Marshal the transaction for the Put operation.
	txAV, err := marshalTransaction(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Create the new transaction record.
			Put: &types.Put{
				TableName:           aws.String(s.TransactionsTableName),
				Item:                txAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}

	// Operation 2..n: Append the events.
	eventItems, err := s.eventPuts(events)
	if err != nil {
		return err
	}
	items = append(items, eventItems...)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			switch failedConditionIndex(tce) {
			case -1:
			case 0:
				return storage.ErrTransactionExists
			default:
				return storage.ErrDuplicateEvent
			}
		}
		return fmt.Errorf("failed to execute transaction: %w", err)
	}

	return nil
}

// failedConditionIndex returns the index of the first item whose condition
// check failed, or -1 when the cancellation had another cause.
func failedConditionIndex(tce *types.TransactionCanceledException) int {
	for i, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return i
		}
	}
	return -1
}
