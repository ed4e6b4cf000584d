package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"feastfox/internal/models"
)

// DynamoAPI is the slice of the SDK v2 *dynamodb.Client used by DynamoStore.
// Signatures mirror the SDK so fakes can stand in during tests.
type DynamoAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ DynamoAPI = &dynamodb.Client{}

const tableWaitTimeout = 2 * time.Minute

type dynamoMeal struct {
	ID      string `dynamodbav:"id"`
	Meal    string `dynamodbav:"meal"`
	Cuisine string `dynamodbav:"cuisine"`
	Reason  string `dynamodbav:"reason"`
}

func (d dynamoMeal) toModel() models.Meal {
	return models.Meal{ID: d.ID, Meal: d.Meal, Cuisine: d.Cuisine, Reason: d.Reason}
}

type DynamoStore struct {
	api   DynamoAPI
	table string
}

func NewDynamoStore(api DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{api: api, table: table}
}

// newDynamoClient loads the default AWS config for region. A non-empty
// endpoint points the client at a local DynamoDB and uses static dummy
// credentials, which local emulators accept.
func newDynamoClient(ctx context.Context, endpoint, region string) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// EnsureTable creates the meals table keyed by id and waits for it to become
// active. An existing table is left as is.
func (s *DynamoStore) EnsureTable(ctx context.Context) error {
	_, err := s.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.api)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, tableWaitTimeout); err != nil {
		return fmt.Errorf("table %s did not become active: %w", s.table, err)
	}
	return nil
}

func (s *DynamoStore) Close() error {
	return nil
}

func (s *DynamoStore) List(ctx context.Context) ([]models.Meal, error) {
	meals := []models.Meal{}
	pages := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meals: %w", err)
		}
		var records []dynamoMeal
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meals: %w", err)
		}
		for _, r := range records {
			meals = append(meals, r.toModel())
		}
	}
	return meals, nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (models.Meal, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to get meal %s: %w", id, err)
	}
	if out.Item == nil {
		return models.Meal{}, models.ErrMealNotFound
	}

	var rec dynamoMeal
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return models.Meal{}, fmt.Errorf("failed to unmarshal meal %s: %w", id, err)
	}
	return rec.toModel(), nil
}

func (s *DynamoStore) Create(ctx context.Context, in models.MealCreate) (models.Meal, error) {
	meal := in.WithID(uuid.NewString())
	// attribute_not_exists guards against a uuid collision overwriting a record.
	if err := s.put(ctx, meal, expression.AttributeNotExists(expression.Name("id"))); err != nil {
		return models.Meal{}, fmt.Errorf("failed to put meal: %w", err)
	}
	return meal, nil
}

func (s *DynamoStore) Update(ctx context.Context, id string, in models.MealCreate) (models.Meal, error) {
	meal := in.WithID(id)
	err := s.put(ctx, meal, expression.AttributeExists(expression.Name("id")))
	if isConditionFailed(err) {
		return models.Meal{}, models.ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to update meal %s: %w", id, err)
	}
	return meal, nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.table),
		Key:                       idKey(id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		return models.ErrMealNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete meal %s: %w", id, err)
	}
	return nil
}

func (s *DynamoStore) put(ctx context.Context, meal models.Meal, cond expression.ConditionBuilder) error {
	item, err := attributevalue.MarshalMap(dynamoMeal(meal))
	if err != nil {
		return fmt.Errorf("failed to marshal meal: %w", err)
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.table),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return err
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
