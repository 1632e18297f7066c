package user

import (
	"context"
	"errors"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("user repository: not found")

type Repository interface {
	ListUsers(ctx context.Context, limit int) ([]model.UserItem, error)
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
	FindByUsername(ctx context.Context, username string) (model.UserItem, error)
	FindByDisplayName(ctx context.Context, displayName string) (model.UserItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) ListUsers(ctx context.Context, limit int) ([]model.UserItem, error) {
	page, err := r.db.Client.ScanPaginated(ctx, model.UsersTable, nil, limit, nil)
	if err != nil {
		return nil, err
	}

	users := make([]model.UserItem, 0, len(page.Items))
	for _, item := range page.Items {
		var user model.UserItem
		if err := attributevalue.UnmarshalMap(item, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	var user model.UserItem
	err := r.db.Client.GetItem(
		ctx,
		model.UsersTable,
		map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		&user,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}

	return user, nil
}

func (r *DynamoRepository) FindByUsername(ctx context.Context, username string) (model.UserItem, error) {
	return r.queryOne(ctx, "byUsername", "username = :name", username)
}

func (r *DynamoRepository) FindByDisplayName(ctx context.Context, displayName string) (model.UserItem, error) {
	return r.queryOne(ctx, "byDisplayName", "displayName = :name", displayName)
}

func (r *DynamoRepository) queryOne(ctx context.Context, index, condition, value string) (model.UserItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.UsersTable,
		aws.String(index),
		condition,
		map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: value},
		},
		nil,
		nil,
	)
	if err != nil {
		return model.UserItem{}, err
	}

	if len(items) == 0 {
		return model.UserItem{}, ErrNotFound
	}

	var user model.UserItem
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return model.UserItem{}, err
	}

	return user, nil
}
