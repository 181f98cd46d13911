package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

const authorizationIDIndex = "authorization_id-index"

// GetTransaction retrieves a transaction from DynamoDB by its ID.
func (s *Store) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": txID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      &s.TransactionsTableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("transaction with ID %s: %w", txID, storage.ErrTransactionNotFound)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Item, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	return &tx, nil
}

// GetTransactionByAuthorizationID looks a transaction up by its processor authorization id.
func (s *Store) GetTransactionByAuthorizationID(ctx context.Context, authorizationID string) (*models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(authorizationIDIndex),
		KeyConditionExpression: aws.String("authorization_id = :authorization_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":authorization_id": &types.AttributeValueMemberS{Value: authorizationID},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction by authorization ID: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("transaction with authorization %s: %w", authorizationID, storage.ErrTransactionNotFound)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Items[0], &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	// The index is eventually consistent; read the row itself.
	return s.GetTransaction(ctx, tx.Id)
}

// GetDispute retrieves the dispute opened on a transaction.
func (s *Store) GetDispute(ctx context.Context, txID string) (*models.Dispute, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.DisputesTableName),
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: txID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dispute from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("dispute for transaction %s: %w", txID, storage.ErrDisputeNotFound)
	}

	var dispute models.Dispute
	if err := attributevalue.UnmarshalMap(result.Item, &dispute); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dispute: %w", err)
	}

	return &dispute, nil
}
