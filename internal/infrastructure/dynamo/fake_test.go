package dynamo

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the OTP table. It understands exactly
// the expressions OTPRepo sends.
type fakeDynamo struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	tables     map[string]bool
	ttlEnabled bool
	pageSize   int
	failWith   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}, tables: map[string]bool{}}
}

func keyOf(m map[string]types.AttributeValue) string {
	return m[attrEmail].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(in.Key)
	item, ok := f.items[k]
	want := in.ExpressionAttributeValues[":id"].(*types.AttributeValueMemberS).Value
	if !ok || item[attrOTPID].(*types.AttributeValueMemberS).Value != want {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now, _ := strconv.ParseInt(in.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN).Value, 10, 64)

	var start string
	if in.ExclusiveStartKey != nil {
		start = keyOf(in.ExclusiveStartKey)
	}
	var matched []map[string]types.AttributeValue
	for k, item := range f.items {
		if start != "" && k <= start {
			continue
		}
		exp, _ := strconv.ParseInt(item[attrExpiresAt].(*types.AttributeValueMemberN).Value, 10, 64)
		if exp <= now {
			matched = append(matched, item)
		}
	}
	sortByEmail(matched)
	out := &dynamodb.ScanOutput{}
	if f.pageSize > 0 && len(matched) > f.pageSize {
		matched = matched[:f.pageSize]
		out.LastEvaluatedKey = strKey(attrEmail, keyOf(matched[len(matched)-1]))
	}
	out.Items = matched
	return out, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.tables[*in.TableName] {
		return nil, &types.ResourceInUseException{Message: aws.String("table exists")}
	}
	f.tables[*in.TableName] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) UpdateTimeToLive(_ context.Context, _ *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ttlEnabled {
		return nil, errors.New("TimeToLive is already enabled")
	}
	f.ttlEnabled = true
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func sortByEmail(items []map[string]types.AttributeValue) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && keyOf(items[j]) < keyOf(items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
