package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// Commit writes a state transition in one TransactWriteItems call:
//  1. the transaction row, conditional on the lease owner and version,
//  2. the new events, each conditional on its id being unused,
//  3. the dispute, if the transition opened or resolved one.
//
// The stored row carries no lease attributes, so a successful commit also
// releases the lease.
func (s *Store) Commit(ctx context.Context, c storage.Commit) error {
	tx := c.Transaction.Clone()
	tx.LeaseOwner = ""
	tx.LeaseExpiresAt = 0

	txAV, err := marshalTransaction(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.TransactionsTableName),
				Item:                txAV,
				ConditionExpression: aws.String("lease_owner = :owner AND version = :version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":owner":   &types.AttributeValueMemberS{Value: c.LeaseOwner},
					":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(c.ExpectedVersion, 10)},
				},
			},
		},
	}

	eventItems, err := s.eventPuts(c.Events)
	if err != nil {
		return err
	}
	items = append(items, eventItems...)

	if c.Dispute != nil {
		disputeAV, err := attributevalue.MarshalMap(c.Dispute)
		if err != nil {
			return fmt.Errorf("failed to marshal dispute: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.DisputesTableName),
				Item:      disputeAV,
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			switch failedConditionIndex(tce) {
			case -1:
			case 0:
				return storage.ErrLeaseLost
			default:
				return storage.ErrDuplicateEvent
			}
		}
		return fmt.Errorf("failed to commit transaction %s: %w", tx.Id, err)
	}

	return nil
}
