package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
	"loopsite/pkg/utils"
)

const (
	pagePrefix  = "PAGE#"
	skContent   = "CONTENT"
	skSlots     = "SLOTS"
	entityPage  = "PAGE"
	entitySlots = "SLOT_OVERRIDES"
)

// API is the subset of the DynamoDB client the page store calls
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// PageStore implements ports.PageStore on a single DynamoDB table.
// Every page is one partition: PK "PAGE#<path>" with SK "CONTENT" for the
// stored page and SK "SLOTS" for designed-page overrides.
type PageStore struct {
	client    API
	tableName string
	clock     utils.Clock
	logger    *zap.Logger
}

// NewPageStore creates a new DynamoDB page store
func NewPageStore(client API, tableName string, logger *zap.Logger) *PageStore {
	return &PageStore{
		client:    client,
		tableName: tableName,
		clock:     utils.SystemClock{},
		logger:    logger,
	}
}

// pageItem represents the DynamoDB item structure for a page
type pageItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	Path        string `dynamodbav:"Path"`
	Title       string `dynamodbav:"Title"`
	Description string `dynamodbav:"Description,omitempty"`
	Published   bool   `dynamodbav:"Published"`
	Sections    string `dynamodbav:"Sections"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

// slotsItem represents the DynamoDB item structure for slot overrides
type slotsItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Path       string `dynamodbav:"Path"`
	Overrides  string `dynamodbav:"Overrides"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func pageKey(path, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pagePrefix + path},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// FetchPage implements ports.PageReader
func (s *PageStore) FetchPage(ctx context.Context, path string) (*pages.Page, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            pageKey(path, skContent),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get page: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var item pageItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal page: %w", err)
	}
	list, err := sections.Decode([]byte(item.Sections))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode sections of %q: %w", path, err)
	}

	page := &pages.Page{
		Path:        item.Path,
		Title:       item.Title,
		Description: item.Description,
		Published:   item.Published,
		Sections:    list,
	}
	if page.CreatedAt, err = utils.ParseStoredTime(item.CreatedAt); err != nil {
		return nil, false, fmt.Errorf("failed to read page %q: %w", path, err)
	}
	if page.UpdatedAt, err = utils.ParseStoredTime(item.UpdatedAt); err != nil {
		return nil, false, fmt.Errorf("failed to read page %q: %w", path, err)
	}
	return page, true, nil
}

// FetchSlotOverrides implements ports.PageReader
func (s *PageStore) FetchSlotOverrides(ctx context.Context, path string) (slots.Overrides, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       pageKey(path, skSlots),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get slot overrides: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var item slotsItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal slot overrides: %w", err)
	}
	var overrides slots.Overrides
	if err := json.Unmarshal([]byte(item.Overrides), &overrides); err != nil {
		return nil, false, fmt.Errorf("failed to decode slot overrides of %q: %w", path, err)
	}
	return overrides, true, nil
}

// SavePage implements ports.PageWriter
func (s *PageStore) SavePage(ctx context.Context, page *pages.Page) error {
	list := page.Sections
	if list == nil {
		list = []sections.Section{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	av, err := attributevalue.MarshalMap(pageItem{
		PK:          pagePrefix + page.Path,
		SK:          skContent,
		EntityType:  entityPage,
		Path:        page.Path,
		Title:       page.Title,
		Description: page.Description,
		Published:   page.Published,
		Sections:    string(raw),
		CreatedAt:   utils.FormatRFC3339(page.CreatedAt),
		UpdatedAt:   utils.FormatRFC3339(page.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to save page to DynamoDB", zap.String("path", page.Path), zap.Error(err))
		return fmt.Errorf("failed to save page: %w", err)
	}

	s.logger.Debug("Saved page to DynamoDB", zap.String("PK", pagePrefix+page.Path))
	return nil
}

// DeletePage implements ports.PageWriter. Slot overrides are left alone;
// they belong to designed pages, which are never stored as content.
func (s *PageStore) DeletePage(ctx context.Context, path string) (bool, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName),
		Key:          pageKey(path, skContent),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete page: %w", err)
	}
	return len(out.Attributes) > 0, nil
}

// SaveSlotOverrides implements ports.PageWriter
func (s *PageStore) SaveSlotOverrides(ctx context.Context, path string, overrides slots.Overrides) error {
	if overrides == nil {
		overrides = slots.Overrides{}
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to encode slot overrides: %w", err)
	}

	av, err := attributevalue.MarshalMap(slotsItem{
		PK:         pagePrefix + path,
		SK:         skSlots,
		EntityType: entitySlots,
		Path:       path,
		Overrides:  string(raw),
		UpdatedAt:  utils.FormatRFC3339(s.clock.Now()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal slot overrides: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save slot overrides: %w", err)
	}
	return nil
}

// ListPages implements ports.PageLister. The site holds at most a few
// hundred pages, so a filtered scan is used instead of an index.
func (s *PageStore) ListPages(ctx context.Context) ([]pages.Summary, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("SK").Equal(expression.Value(skContent))).
		WithProjection(expression.NamesList(
			expression.Name("Path"),
			expression.Name("Title"),
			expression.Name("Published"),
			expression.Name("UpdatedAt"),
		)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	out := []pages.Summary{}
	for {
		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pages: %w", err)
		}
		for _, raw := range result.Items {
			var item pageItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal page summary: %w", err)
			}
			summary := pages.Summary{Path: item.Path, Title: item.Title, Published: item.Published}
			if summary.UpdatedAt, err = utils.ParseStoredTime(item.UpdatedAt); err != nil {
				return nil, fmt.Errorf("failed to read page %q: %w", item.Path, err)
			}
			out = append(out, summary)
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Ping implements ports.HealthChecker
func (s *PageStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", s.tableName, err)
	}
	return nil
}
