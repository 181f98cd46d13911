package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/chris/marketplace-escrow/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testCommit() storage.Commit {
	tx := testTransaction()
	tx.Status = models.PENDING_DISPUTE
	tx.LeaseOwner = "owner-1"
	tx.LeaseExpiresAt = 1
	tx.Version = 2
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	return storage.Commit{
		Transaction: tx,
		Events: []models.PaymentEvent{
			{EventID: "evt-1", TransactionID: tx.Id, Type: models.EventDisputeOpened, Actor: tx.BuyerId, CreatedAt: now},
		},
		Dispute:         &models.Dispute{TransactionID: tx.Id, OpenedBy: tx.BuyerId, Status: models.DisputeOpen, CreatedAt: now},
		LeaseOwner:      "owner-1",
		ExpectedVersion: 1,
	}
}

func TestCommit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", EventsTableName: "events", DisputesTableName: "disputes"}
		c := testCommit()

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 3 {
				return false
			}
			txPut := in.TransactItems[0].Put
			_, hasLease := txPut.Item["lease_owner"]
			version := txPut.ExpressionAttributeValues[":version"].(*types.AttributeValueMemberN).Value
			return *txPut.TableName == "transactions" && !hasLease && version == "1" &&
				*in.TransactItems[1].Put.TableName == "events" &&
				*in.TransactItems[2].Put.TableName == "disputes"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.Commit(context.Background(), c)

		assert.NoError(t, err)
		assert.Equal(t, "owner-1", c.Transaction.LeaseOwner, "caller's copy is left untouched")
		mockClient.AssertExpectations(t)
	})

	t.Run("Lease Lost", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", EventsTableName: "events", DisputesTableName: "disputes"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
				{Code: aws.String("None")},
			},
		})

		err := store.Commit(context.Background(), testCommit())

		assert.ErrorIs(t, err, storage.ErrLeaseLost)
	})

	t.Run("Duplicate Event", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", EventsTableName: "events", DisputesTableName: "disputes"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("None")},
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
			},
		})

		err := store.Commit(context.Background(), testCommit())

		assert.ErrorIs(t, err, storage.ErrDuplicateEvent)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", EventsTableName: "events", DisputesTableName: "disputes"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		err := store.Commit(context.Background(), testCommit())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})
}

func TestCreateTransaction(t *testing.T) {
	tx := testTransaction()
	tx.Status = models.PENDING
	events := []models.PaymentEvent{{EventID: "evt-1", TransactionID: tx.Id, Type: models.EventManualReview}}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", EventsTableName: "events"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return len(in.TransactItems) == 2 && *in.TransactItems[0].Put.ConditionExpression == "attribute_not_exists(id)"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.CreateTransaction(context.Background(), tx, events)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Id Taken", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", EventsTableName: "events"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}, {Code: aws.String("None")}},
		})

		err := store.CreateTransaction(context.Background(), tx, events)

		assert.ErrorIs(t, err, storage.ErrTransactionExists)
	})
}
