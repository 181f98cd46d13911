package dynamodb

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
)

// ListEvents retrieves the event log of a transaction, oldest first.
func (s *Store) ListEvents(ctx context.Context, txID string) ([]models.PaymentEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.EventsTableName),
		KeyConditionExpression: aws.String("transaction_id = :transaction_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":transaction_id": &types.AttributeValueMemberS{Value: txID},
		},
		ConsistentRead: aws.Bool(true),
	}

	var events []models.PaymentEvent
	for {
		page, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for payment events: %w", err)
		}
		var batch []models.PaymentEvent
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment events: %w", err)
		}
		events = append(events, batch...)

		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}

	// Processor event ids are not time ordered.
	slices.SortStableFunc(events, func(a, b models.PaymentEvent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return events, nil
}

// HasProcessorEvent checks for the deterministic event id of a processor notification.
func (s *Store) HasProcessorEvent(ctx context.Context, txID, objectID, eventType string) (bool, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.EventsTableName),
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: txID},
			"event_id":       &types.AttributeValueMemberS{Value: models.ProcessorEventID(objectID, eventType)},
		},
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("event_id"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get processor event: %w", err)
	}
	return result.Item != nil, nil
}

func (s *Store) eventPuts(events []models.PaymentEvent) ([]types.TransactWriteItem, error) {
	items := make([]types.TransactWriteItem, 0, len(events))
	for _, event := range events {
		eventAV, err := attributevalue.MarshalMap(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payment event: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.EventsTableName),
				Item:                eventAV,
				ConditionExpression: aws.String("attribute_not_exists(event_id)"),
			},
		})
	}
	return items, nil
}
