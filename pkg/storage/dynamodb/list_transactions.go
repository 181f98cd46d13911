package dynamodb

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
)

const (
	statusCreatedAtIndex = "status-created_at-index"
	buyerIDIndex         = "buyer_id-index"
	sellerIDIndex        = "seller_id-index"
)

// ListTransactionsByStatus retrieves transactions in the given status created before the cutoff.
// Used by the sweeper to find candidates for time-based transitions.
func (s *Store) ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus, createdBefore time.Time) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(statusCreatedAtIndex),
		KeyConditionExpression: aws.String("#status = :status AND created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":cutoff": sortableTime(createdBefore),
		},
	}

	transactions, err := s.queryTransactions(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by status: %w", err)
	}
	return transactions, nil
}

// ListTransactionsByUserID retrieves every transaction where the user is the buyer or the seller.
func (s *Store) ListTransactionsByUserID(ctx context.Context, userID string) ([]models.Transaction, error) {
	var all []models.Transaction
	for _, index := range []struct{ name, attr string }{
		{buyerIDIndex, "buyer_id"},
		{sellerIDIndex, "seller_id"},
	} {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.TransactionsTableName),
			IndexName:              aws.String(index.name),
			KeyConditionExpression: aws.String(index.attr + " = :userID"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":userID": &types.AttributeValueMemberS{Value: userID},
			},
		}
		transactions, err := s.queryTransactions(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query transactions by user ID: %w", err)
		}
		all = append(all, transactions...)
	}

	slices.SortFunc(all, func(a, b models.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return all, nil
}

// queryTransactions runs a query through every result page.
func (s *Store) queryTransactions(ctx context.Context, input *dynamodb.QueryInput) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for {
		page, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var batch []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		transactions = append(transactions, batch...)

		if len(page.LastEvaluatedKey) == 0 {
			return transactions, nil
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
}
