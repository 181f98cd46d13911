package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// createdAtLayout is fixed width, so created_at values compare lexically in
// time order. RFC3339Nano trims trailing zeros and does not.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
//
// Tables:
//   - transactions: partition key id, GSIs status-created_at-index,
//     authorization_id-index, buyer_id-index and seller_id-index.
//   - events: partition key transaction_id, sort key event_id.
//   - disputes: partition key transaction_id.
type Store struct {
	Client                DynamoDBAPI
	TransactionsTableName string
	EventsTableName       string
	DisputesTableName     string

	// Now is the clock used for lease expiry. Defaults to time.Now.
	Now func() time.Time
}

// New creates a new Store.
func New(client DynamoDBAPI, transactionsTable, eventsTable, disputesTable string) *Store {
	return &Store{
		Client:                client,
		TransactionsTableName: transactionsTable,
		EventsTableName:       eventsTable,
		DisputesTableName:     disputesTable,
		Now:                   time.Now,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// sortableTime encodes t for a range condition on a string sort key.
func sortableTime(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(createdAtLayout)}
}

// marshalTransaction marshals tx with created_at in the fixed-width layout
// used as the sort key of status-created_at-index.
func marshalTransaction(tx *models.Transaction) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, err
	}
	av["created_at"] = sortableTime(tx.CreatedAt)
	return av, nil
}
