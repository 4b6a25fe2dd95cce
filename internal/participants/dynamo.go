package participants

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/models"
)

// DynamoDBClient is the subset of the DynamoDB API the store uses.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// NewDynamoClient creates a DynamoDB client, pointing at endpoint when one
// is given (DynamoDB Local).
func NewDynamoClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	if endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local DynamoDB endpoint")
		cfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion("local"),
			awsconfig.WithClientLogMode(aws.LogRetries),
		)
		if err != nil {
			return nil, err
		}
		return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}), nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// sessionRecord holds a whole session in one item so a replace is a single
// write.
type sessionRecord struct {
	SessionID    string               `dynamodbav:"sessionId"`
	Participants []models.Participant `dynamodbav:"participants"`
	UpdatedAt    int64                `dynamodbav:"updatedAt"`
}

type DynamoStore struct {
	client DynamoDBClient
	table  string
}

var _ Store = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoDBClient, table string) *DynamoStore {
	if table == "" {
		table = DefaultTable
	}
	return &DynamoStore{
		client: client,
		table:  table,
	}
}

func (s *DynamoStore) Replace(ctx context.Context, sessionID string, participants []models.Participant) error {
	record := sessionRecord{
		SessionID:    sessionID,
		Participants: participants,
		UpdatedAt:    time.Now().Unix(),
	}
	if record.Participants == nil {
		record.Participants = []models.Participant{}
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshaling session record: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("putting session in DynamoDB: %w", err)
	}
	return nil
}

func (s *DynamoStore) List(ctx context.Context, sessionID string) ([]models.Participant, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting session from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return []models.Participant{}, nil
	}

	var record sessionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling session record: %w", err)
	}

	participants := make([]models.Participant, len(record.Participants))
	for i, p := range record.Participants {
		p.SessionID = sessionID
		participants[i] = p
	}
	return participants, nil
}

// Stats reports the table's approximate item count, which DynamoDB refreshes
// about every six hours. Each item is one session.
func (s *DynamoStore) Stats(ctx context.Context) (*Stats, error) {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return nil, fmt.Errorf("describing table %s: %w", s.table, err)
	}

	stats := &Stats{Backend: "dynamodb"}
	if out.Table != nil {
		stats.Version = string(out.Table.TableStatus)
		stats.Count = aws.ToInt64(out.Table.ItemCount)
	}
	return stats, nil
}
