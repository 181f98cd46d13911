package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListTransactionsByStatus(t *testing.T) {
	cutoff := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success Across Pages", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		first, second := testTransaction(), testTransaction()
		firstAV, _ := attributevalue.MarshalMap(first)
		secondAV, _ := attributevalue.MarshalMap(second)
		lastKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: first.Id}}

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			status := in.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value
			return *in.IndexName == statusCreatedAtIndex && status == string(models.AUTHORIZED)
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{firstAV}, LastEvaluatedKey: lastKey}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{secondAV}}, nil).Once()

		result, err := store.ListTransactionsByStatus(context.Background(), models.AUTHORIZED, cutoff)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		mockClient.AssertExpectations(t)
	})

	t.Run("Success Cutoff Is Fixed Width", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		var got string
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			got = in.ExpressionAttributeValues[":cutoff"].(*types.AttributeValueMemberS).Value
			return true
		})).Return(&dynamodb.QueryOutput{}, nil).Once()

		_, err := store.ListTransactionsByStatus(context.Background(), models.AUTHORIZED, cutoff)

		assert.NoError(t, err)
		assert.Equal(t, "2025-03-01T00:00:00.000000000Z", got)
	})

	t.Run("Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListTransactionsByStatus(context.Background(), models.SHIPPED, cutoff)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query transactions by status")
	})
}

func TestListTransactionsByUserID(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

	asBuyer, asSeller := testTransaction(), testTransaction()
	asSeller.CreatedAt = asBuyer.CreatedAt.Add(time.Hour)
	buyerAV, _ := attributevalue.MarshalMap(asBuyer)
	sellerAV, _ := attributevalue.MarshalMap(asSeller)

	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return *in.IndexName == buyerIDIndex
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{buyerAV}}, nil).Once()
	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return *in.IndexName == sellerIDIndex
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{sellerAV}}, nil).Once()

	result, err := store.ListTransactionsByUserID(context.Background(), "user-1")

	assert.NoError(t, err)
	if assert.Len(t, result, 2) {
		assert.Equal(t, asSeller.Id, result[0].Id, "newest first")
	}
	mockClient.AssertExpectations(t)
}

func TestEvents(t *testing.T) {
	t.Run("ListEvents Sorted", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, EventsTableName: "events"}

		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		later, _ := attributevalue.MarshalMap(models.PaymentEvent{EventID: "proc#pi_1#x", TransactionID: "tx-1", Type: "WEBHOOK:x", CreatedAt: base.Add(time.Minute)})
		earlier, _ := attributevalue.MarshalMap(models.PaymentEvent{EventID: "2025#a", TransactionID: "tx-1", Type: models.EventPaymentIntentCreated, CreatedAt: base})
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{later, earlier}}, nil)

		events, err := store.ListEvents(context.Background(), "tx-1")

		assert.NoError(t, err)
		if assert.Len(t, events, 2) {
			assert.Equal(t, models.EventPaymentIntentCreated, events[0].Type)
		}
	})

	t.Run("HasProcessorEvent", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, EventsTableName: "events"}

		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return in.Key["event_id"].(*types.AttributeValueMemberS).Value == "proc#pi_1#WEBHOOK:payment_intent.canceled"
		})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: "proc#pi_1#WEBHOOK:payment_intent.canceled"},
		}}, nil).Once()

		found, err := store.HasProcessorEvent(context.Background(), "tx-1", "pi_1", "WEBHOOK:payment_intent.canceled")

		assert.NoError(t, err)
		assert.True(t, found)
	})
}

func TestSortableTime(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(120 * time.Millisecond),
		base.Add(500 * time.Millisecond),
		base.Add(time.Second),
	}

	for i := 1; i < len(times); i++ {
		prev := sortableTime(times[i-1]).(*types.AttributeValueMemberS).Value
		next := sortableTime(times[i]).(*types.AttributeValueMemberS).Value
		assert.Len(t, next, len(prev))
		assert.Less(t, prev, next)
	}

	t.Run("Success Round Trip", func(t *testing.T) {
		tx := testTransaction()
		tx.CreatedAt = base.Add(500 * time.Millisecond)

		av, err := marshalTransaction(tx)
		assert.NoError(t, err)
		assert.Equal(t, "2025-03-01T12:00:00.500000000Z", av["created_at"].(*types.AttributeValueMemberS).Value)

		var decoded models.Transaction
		assert.NoError(t, attributevalue.UnmarshalMap(av, &decoded))
		assert.True(t, tx.CreatedAt.Equal(decoded.CreatedAt))
	})
}
