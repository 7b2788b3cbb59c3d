package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"investigation-canvas/application/ports"
	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/infrastructure/persistence/codec"
	appErrors "investigation-canvas/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	investigationPrefix = "INVESTIGATION#"
	canvasSortKey       = "CANVAS"
	canvasEntityType    = "CANVAS"
)

// API is the subset of the DynamoDB client the store uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// SceneStore keeps one item per investigation diagram in a DynamoDB table
type SceneStore struct {
	client    API
	tableName string
	config    *config.DomainConfig
	logger    *zap.Logger
}

var (
	_ ports.SceneStore   = (*SceneStore)(nil)
	_ ports.SceneCatalog = (*SceneStore)(nil)
)

// NewSceneStore creates a DynamoDB-backed scene store
func NewSceneStore(client API, tableName string, cfg *config.DomainConfig, logger *zap.Logger) *SceneStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SceneStore{
		client:    client,
		tableName: tableName,
		config:    cfg,
		logger:    logger,
	}
}

// canvasItem is the DynamoDB item for a saved diagram
type canvasItem struct {
	PK              string                   `dynamodbav:"PK"`
	SK              string                   `dynamodbav:"SK"`
	EntityType      string                   `dynamodbav:"EntityType"`
	InvestigationID string                   `dynamodbav:"investigationId"`
	Nodes           []codec.NodeRecord       `dynamodbav:"nodes"`
	Connections     []codec.ConnectionRecord `dynamodbav:"connections"`
	NodeCount       int                      `dynamodbav:"NodeCount"`
	ConnectionCount int                      `dynamodbav:"ConnectionCount"`
	Version         int                      `dynamodbav:"Version"`
	UpdatedAt       string                   `dynamodbav:"UpdatedAt"`
}

func partitionKey(investigationID string) string {
	return investigationPrefix + investigationID
}

func itemKey(investigationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(investigationID)},
		"SK": &types.AttributeValueMemberS{Value: canvasSortKey},
	}
}

// Save writes the whole diagram as a single item
func (s *SceneStore) Save(ctx context.Context, scene *aggregates.Scene) error {
	record := codec.ToRecord(scene)
	item := canvasItem{
		PK:              partitionKey(record.InvestigationID),
		SK:              canvasSortKey,
		EntityType:      canvasEntityType,
		InvestigationID: record.InvestigationID,
		Nodes:           record.Nodes,
		Connections:     record.Connections,
		NodeCount:       len(record.Nodes),
		ConnectionCount: len(record.Connections),
		Version:         scene.Version(),
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return appErrors.NewStorageError("marshal", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to save canvas to DynamoDB",
			zap.Error(err),
			zap.String("investigationID", record.InvestigationID),
		)
		return appErrors.NewStorageError("save", err)
	}

	s.logger.Debug("Saved canvas to DynamoDB",
		zap.String("investigationID", record.InvestigationID),
		zap.Int("nodeCount", item.NodeCount),
		zap.Int("connectionCount", item.ConnectionCount),
	)
	return nil
}

// Load reads the diagram item. Missing and undecodable items both yield nil.
func (s *SceneStore) Load(ctx context.Context, investigationID string) (*aggregates.Scene, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(investigationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, appErrors.NewStorageError("load", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item canvasItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		s.logger.Warn("Ignoring malformed canvas item",
			zap.String("investigationID", investigationID),
			zap.Error(err),
		)
		return nil, nil
	}

	scene, dropped, err := codec.FromRecord(codec.Record{
		Nodes:           item.Nodes,
		Connections:     item.Connections,
		InvestigationID: item.InvestigationID,
	}, s.config)
	if err != nil {
		s.logger.Warn("Ignoring malformed canvas item",
			zap.String("investigationID", investigationID),
			zap.Error(err),
		)
		return nil, nil
	}
	if dropped > 0 {
		s.logger.Warn("Dropped invalid connections from canvas item",
			zap.String("investigationID", investigationID),
			zap.Int("dropped", dropped),
		)
	}
	return scene, nil
}

// List scans for every saved diagram
func (s *SceneStore) List(ctx context.Context) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(s.tableName),
		FilterExpression:     aws.String("SK = :sk AND EntityType = :entityType"),
		ProjectionExpression: aws.String("PK"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sk":         &types.AttributeValueMemberS{Value: canvasSortKey},
			":entityType": &types.AttributeValueMemberS{Value: canvasEntityType},
		},
	}

	var ids []string
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, appErrors.NewStorageError("list", err)
		}
		for _, raw := range page.Items {
			var key struct {
				PK string `dynamodbav:"PK"`
			}
			if err := attributevalue.UnmarshalMap(raw, &key); err != nil {
				s.logger.Warn("Failed to unmarshal canvas key", zap.Error(err))
				continue
			}
			ids = append(ids, strings.TrimPrefix(key.PK, investigationPrefix))
		}
	}
	return ids, nil
}

// Delete removes the diagram item
func (s *SceneStore) Delete(ctx context.Context, investigationID string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(investigationID),
	}); err != nil {
		return appErrors.NewStorageError("delete", fmt.Errorf("investigation %s: %w", investigationID, err))
	}
	return nil
}
