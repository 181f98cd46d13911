package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// AcquireLease atomically marks the transaction as owned by owner until now+ttl.
// It only succeeds if nobody else holds an unexpired lease, so at most one
// mutating operation works on a transaction at any time.
func (s *Store) AcquireLease(ctx context.Context, txID, owner string, ttl time.Duration) (*models.Transaction, error) {
	now := s.now()
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID},
		},
		UpdateExpression:    aws.String("SET lease_owner = :owner, lease_expires_at = :expires_at"),
		ConditionExpression: aws.String("attribute_exists(id) AND (attribute_not_exists(lease_owner) OR lease_expires_at < :now)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner":      &types.AttributeValueMemberS{Value: owner},
			":expires_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(ttl).UnixMilli(), 10)},
			":now":        &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			if len(condCheckFailed.Item) == 0 {
				return nil, fmt.Errorf("transaction with ID %s: %w", txID, storage.ErrTransactionNotFound)
			}
			return nil, storage.ErrLeaseHeld
		}
		return nil, fmt.Errorf("failed to acquire transaction lease: %w", err)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Attributes, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leased transaction: %w", err)
	}
	return &tx, nil
}

// ReleaseLease removes the lease if owner still holds it.
func (s *Store) ReleaseLease(ctx context.Context, txID, owner string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID},
		},
		UpdateExpression:    aws.String("REMOVE lease_owner, lease_expires_at"),
		ConditionExpression: aws.String("lease_owner = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
	}

	_, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			// Already released by a commit, or taken over after expiry.
			return nil
		}
		return fmt.Errorf("failed to release transaction lease: %w", err)
	}
	return nil
}
