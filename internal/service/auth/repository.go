package auth

import (
	"context"
	"errors"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("auth repository: not found")

type Repository interface {
	CreateUser(ctx context.Context, user model.UserItem) error
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
	FindByEmail(ctx context.Context, email string) (model.UserItem, error)
	FindByUsername(ctx context.Context, username string) (model.UserItem, error)
	FindByVerificationToken(ctx context.Context, token string) (model.UserItem, error)
	UpdateVerification(ctx context.Context, userID string, verified bool, token, expires string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItemIfAbsent(ctx, model.UsersTable, "userId", user)
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

func (r *DynamoRepository) FindByEmail(ctx context.Context, email string) (model.UserItem, error) {
	return r.queryOne(ctx, aws.String("byEmail"), "email = :email", map[string]types.AttributeValue{
		":email": &types.AttributeValueMemberS{Value: email},
	})
}

func (r *DynamoRepository) FindByUsername(ctx context.Context, username string) (model.UserItem, error) {
	return r.queryOne(ctx, aws.String("byUsername"), "username = :username", map[string]types.AttributeValue{
		":username": &types.AttributeValueMemberS{Value: username},
	})
}

func (r *DynamoRepository) FindByVerificationToken(ctx context.Context, token string) (model.UserItem, error) {
	return r.queryOne(ctx, aws.String("byVerificationToken"), "verificationToken = :token", map[string]types.AttributeValue{
		":token": &types.AttributeValueMemberS{Value: token},
	})
}

func (r *DynamoRepository) UpdateVerification(ctx context.Context, userID string, verified bool, token, expires string) error {
	return r.db.Client.UpdateItem(
		ctx,
		model.UsersTable,
		map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		"SET verified = :verified, verificationToken = :token, verificationTokenExpires = :expires",
		map[string]types.AttributeValue{
			":verified": &types.AttributeValueMemberBOOL{Value: verified},
			":token":    &types.AttributeValueMemberS{Value: token},
			":expires":  &types.AttributeValueMemberS{Value: expires},
		},
		nil,
		nil,
	)
}

func (r *DynamoRepository) queryOne(ctx context.Context, index *string, condition string, values map[string]types.AttributeValue) (model.UserItem, error) {
	items, err := r.db.Client.QueryItems(ctx, model.UsersTable, index, condition, values, nil, nil)
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
