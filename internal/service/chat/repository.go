package chat

import (
	"context"
	"errors"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("chat repository: not found")

type Repository interface {
	CreateMessage(ctx context.Context, message model.MessageItem) error
	// ListMessages returns the most recent messages in the room, oldest
	// first, capped at limit.
	ListMessages(ctx context.Context, room string, limit int) ([]model.MessageItem, error)
	FindUserByUsername(ctx context.Context, username string) (model.UserItem, error)
	FindUserByDisplayName(ctx context.Context, displayName string) (model.UserItem, error)
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateMessage(ctx context.Context, message model.MessageItem) error {
	return r.db.Client.PutItem(ctx, model.MessagesTable, message)
}

func (r *DynamoRepository) ListMessages(ctx context.Context, room string, limit int) ([]model.MessageItem, error) {
	newestFirst := false
	values := map[string]types.AttributeValue{
		":room": &types.AttributeValueMemberS{Value: room},
	}

	messages := make([]model.MessageItem, 0, limit)
	var lastKey map[string]types.AttributeValue

	for len(messages) < limit {
		page, err := r.db.Client.QueryPaginated(
			ctx,
			model.MessagesTable,
			aws.String("byRoom"),
			"room = :room",
			values,
			100,
			lastKey,
			&newestFirst,
		)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if len(messages) == limit {
				break
			}
			var message model.MessageItem
			if err := attributevalue.UnmarshalMap(item, &message); err != nil {
				return nil, err
			}
			messages = append(messages, message)
		}

		if !page.HasMore {
			break
		}
		lastKey = page.LastEvaluatedKey
	}

	// Query ran newest first to pick up the tail of the room; flip back to
	// chronological order for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *DynamoRepository) FindUserByUsername(ctx context.Context, username string) (model.UserItem, error) {
	return r.queryUser(ctx, "byUsername", "username = :name", username)
}

func (r *DynamoRepository) FindUserByDisplayName(ctx context.Context, displayName string) (model.UserItem, error) {
	return r.queryUser(ctx, "byDisplayName", "displayName = :name", displayName)
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

func (r *DynamoRepository) queryUser(ctx context.Context, index, condition, value string) (model.UserItem, error) {
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
