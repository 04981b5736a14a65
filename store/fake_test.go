package store_test

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo records requests and replays canned responses.
type fakeDynamo struct {
	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	deletes []*dynamodb.DeleteItemInput
	queries []*dynamodb.QueryInput

	queryPages [][]map[string]types.AttributeValue
	scanPages  [][]map[string]types.AttributeValue

	putErr    error
	updateErr error
	deleteErr error
	queryErr  error
	scanErr   error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	items, next := page(f.queryPages, in.ExclusiveStartKey)
	return &dynamodb.QueryOutput{Items: items, LastEvaluatedKey: next}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	items, next := page(f.scanPages, in.ExclusiveStartKey)
	return &dynamodb.ScanOutput{Items: items, LastEvaluatedKey: next}, nil
}

// page returns the page addressed by a start key of the form {"page": N}.
func page(pages [][]map[string]types.AttributeValue, start map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	idx := 0
	if v, ok := start["page"].(*types.AttributeValueMemberN); ok {
		idx, _ = strconv.Atoi(v.Value)
	}
	if idx >= len(pages) {
		return nil, nil
	}
	var next map[string]types.AttributeValue
	if idx+1 < len(pages) {
		next = map[string]types.AttributeValue{
			"page": &types.AttributeValueMemberN{Value: strconv.Itoa(idx + 1)},
		}
	}
	return pages[idx], next
}

func rawItem(owner, id, title string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"owner":          &types.AttributeValueMemberS{Value: owner},
		"itemId":         &types.AttributeValueMemberS{Value: id},
		"title":          &types.AttributeValueMemberS{Value: title},
		"description":    &types.AttributeValueMemberS{Value: "desc " + id},
		"lastUpdateTime": &types.AttributeValueMemberS{Value: "2024-01-01T00:00:00.000Z"},
	}
}
