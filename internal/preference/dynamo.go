package preference

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client the store needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// preferenceItem is the table row. PK is "PREF#<owner>", SK the key name.
type preferenceItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     string `dynamodbav:"Value"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// DynamoStore keeps the preference in a PK/SK DynamoDB table.
type DynamoStore struct {
	client DynamoAPI
	table  string
	owner  string
	now    func() time.Time
}

func NewDynamoStore(client DynamoAPI, table, owner string) *DynamoStore {
	if owner == "" {
		owner = "default"
	}
	return &DynamoStore{client: client, table: table, owner: owner, now: time.Now}
}

func (s *DynamoStore) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "PREF#" + s.owner},
		"SK": &types.AttributeValueMemberS{Value: Key},
	}
}

func (s *DynamoStore) Get(ctx context.Context) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(),
	})
	if err != nil {
		return "", fmt.Errorf("getting preference from DynamoDB: %w", err)
	}
	if len(out.Item) == 0 {
		return DefaultRoom, nil
	}

	var item preferenceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", fmt.Errorf("unmarshaling preference: %w", err)
	}
	if item.Value == "" {
		return DefaultRoom, nil
	}
	return item.Value, nil
}

func (s *DynamoStore) Set(ctx context.Context, room string) error {
	room, err := normalizeRoom(room)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(preferenceItem{
		PK:        "PREF#" + s.owner,
		SK:        Key,
		Value:     room,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling preference: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting preference to DynamoDB: %w", err)
	}
	return nil
}

func newDynamoClient(ctx context.Context, region, profile string) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}
