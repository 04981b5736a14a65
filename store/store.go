package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// API is the subset of the DynamoDB client used by Store.
// *dynamodb.Client satisfies it.
type API interface {
	dynamodb.QueryAPIClient
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store provides task item operations on DynamoDB.
type Store struct {
	client API
	config Config
	now    func() time.Time
}

// New creates a new Store instance.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		now:    time.Now,
	}
}

// SetClock replaces the clock used for lastUpdateTime.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// TableName returns the table the store writes to.
func (s *Store) TableName() string {
	return s.config.TableName
}

// Create stores a new item for owner with a freshly generated id.
func (s *Store) Create(ctx context.Context, owner, title, description string) (Item, error) {
	item := Item{
		Owner:          owner,
		ItemID:         uuid.NewString(),
		Title:          title,
		Description:    description,
		LastUpdateTime: FormatTime(s.now()),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return Item{}, fmt.Errorf("marshal item: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(AttrItemID))).
		Build()
	if err != nil {
		return Item{}, fmt.Errorf("build condition: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.config.TableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return Item{}, ErrAlreadyExists
		}
		return Item{}, unavailable("put item", err)
	}
	return item, nil
}

// Get returns every item belonging to owner, in the order DynamoDB returns them.
func (s *Store) Get(ctx context.Context, owner string) ([]Item, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(AttrOwner).Equal(expression.Value(owner))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	items := []Item{}
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, unavailable("query items", err)
		}
		var pageItems []Item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, unavailable("unmarshal items", err)
		}
		items = append(items, pageItems...)
	}
	return items, nil
}

// Update applies a sparse patch to an existing item.
// Fields not supplied in the patch are left untouched.
func (s *Store) Update(ctx context.Context, owner, itemID string, patch Patch) error {
	mutation, err := BuildUpdate(patch, s.now())
	if err != nil {
		return err
	}
	expr, err := mutation.Expression()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       Key(owner, itemID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return unavailable("update item", err)
	}
	return nil
}

// Delete removes an item. Deleting a missing item succeeds.
func (s *Store) Delete(ctx context.Context, owner, itemID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       Key(owner, itemID),
	})
	if err != nil {
		return unavailable("delete item", err)
	}
	return nil
}

// Scan calls fn for every item in the table, page by page.
// Iteration stops at the first error returned by fn.
func (s *Store) Scan(ctx context.Context, fn func(Item) error) error {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.config.TableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return unavailable("scan items", err)
		}
		for _, raw := range page.Items {
			var item Item
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return unavailable("unmarshal item", err)
			}
			if err := fn(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
