// Package dynamorecord implements history.Record on a DynamoDB table keyed by
// pk (the owner of the history, e.g. a user or device id) and sk (the logical
// record key).
package dynamorecord

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// Client is the subset of the DynamoDB API the record needs.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type item struct {
	PK    string `dynamodbav:"pk"`
	SK    string `dynamodbav:"sk"`
	Value string `dynamodbav:"value"`
}

// Record stores the documents of one owner.
type Record struct {
	client Client
	table  string
	owner  string
}

// New creates a Record for owner in table.
func New(client Client, table, owner string) *Record {
	return &Record{client: client, table: table, owner: owner}
}

func (r *Record) key(sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: r.owner},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}

func (r *Record) Load(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s", key)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, false, errors.Wrapf(err, "unmarshal %s", key)
	}
	return []byte(it.Value), true, nil
}

func (r *Record) Save(ctx context.Context, key string, value []byte) error {
	av, err := attributevalue.MarshalMap(item{PK: r.owner, SK: key, Value: string(value)})
	if err != nil {
		return errors.Wrapf(err, "marshal %s", key)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	return errors.Wrapf(err, "put %s", key)
}

func (r *Record) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(key),
	})
	return errors.Wrapf(err, "delete %s", key)
}
