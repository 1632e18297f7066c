package reel

import (
	"context"
	"errors"
	"strconv"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound     = errors.New("reel repository: not found")
	ErrAlreadyLiked = errors.New("reel repository: already liked")
)

type Repository interface {
	CreateReel(ctx context.Context, reel model.ReelItem) error
	GetReel(ctx context.Context, reelID string) (model.ReelItem, error)
	// ListFeed returns up to count reels, newest first, plus whether more
	// remain beyond them.
	ListFeed(ctx context.Context, count int) ([]model.ReelItem, bool, error)
	CreateLike(ctx context.Context, like model.LikeItem) error
	DeleteLike(ctx context.Context, userID, reelID string) error
	HasLike(ctx context.Context, userID, reelID string) (bool, error)
	AdjustLikes(ctx context.Context, reelID string, delta int) (int, error)
	AdjustComments(ctx context.Context, reelID string, delta int) (int, error)
	CreateComment(ctx context.Context, comment model.CommentItem) error
	ListComments(ctx context.Context, reelID string) ([]model.CommentItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateReel(ctx context.Context, reel model.ReelItem) error {
	return r.db.Client.PutItem(ctx, model.ReelsTable, reel)
}

func (r *DynamoRepository) GetReel(ctx context.Context, reelID string) (model.ReelItem, error) {
	var reel model.ReelItem
	err := r.db.Client.GetItem(
		ctx,
		model.ReelsTable,
		map[string]types.AttributeValue{
			"reelId": &types.AttributeValueMemberS{Value: reelID},
		},
		&reel,
	)
	if err != nil {
		if isNotFoundError(err) {
			return model.ReelItem{}, ErrNotFound
		}
		return model.ReelItem{}, err
	}

	return reel, nil
}

func (r *DynamoRepository) ListFeed(ctx context.Context, count int) ([]model.ReelItem, bool, error) {
	newestFirst := false
	values := map[string]types.AttributeValue{
		":feed": &types.AttributeValueMemberS{Value: model.ReelFeedPartition},
	}

	reels := make([]model.ReelItem, 0, count)
	var lastKey map[string]types.AttributeValue

	for len(reels) <= count {
		page, err := r.db.Client.QueryPaginated(
			ctx,
			model.ReelsTable,
			aws.String("byFeed"),
			"feed = :feed",
			values,
			100,
			lastKey,
			&newestFirst,
		)
		if err != nil {
			return nil, false, err
		}

		for _, item := range page.Items {
			var reel model.ReelItem
			if err := attributevalue.UnmarshalMap(item, &reel); err != nil {
				return nil, false, err
			}
			reels = append(reels, reel)
		}

		if !page.HasMore {
			break
		}
		lastKey = page.LastEvaluatedKey
	}

	if len(reels) > count {
		return reels[:count], true, nil
	}
	return reels, false, nil
}

func (r *DynamoRepository) CreateLike(ctx context.Context, like model.LikeItem) error {
	err := r.db.Client.PutItemIfAbsent(ctx, model.LikesTable, "pk", like)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrAlreadyLiked
		}
		return err
	}
	return nil
}

func (r *DynamoRepository) DeleteLike(ctx context.Context, userID, reelID string) error {
	return r.db.Client.DeleteItem(
		ctx,
		model.LikesTable,
		map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: model.LikePK(userID, reelID)},
		},
	)
}

func (r *DynamoRepository) HasLike(ctx context.Context, userID, reelID string) (bool, error) {
	var like model.LikeItem
	err := r.db.Client.GetItem(
		ctx,
		model.LikesTable,
		map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: model.LikePK(userID, reelID)},
		},
		&like,
	)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *DynamoRepository) AdjustLikes(ctx context.Context, reelID string, delta int) (int, error) {
	return r.adjustCounter(ctx, reelID, "likesCount", delta)
}

func (r *DynamoRepository) AdjustComments(ctx context.Context, reelID string, delta int) (int, error) {
	return r.adjustCounter(ctx, reelID, "commentsCount", delta)
}

func (r *DynamoRepository) adjustCounter(ctx context.Context, reelID, attr string, delta int) (int, error) {
	var reel model.ReelItem
	err := r.db.Client.UpdateItem(
		ctx,
		model.ReelsTable,
		map[string]types.AttributeValue{
			"reelId": &types.AttributeValueMemberS{Value: reelID},
		},
		"ADD #counter :delta",
		map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
		},
		map[string]string{"#counter": attr},
		&reel,
	)
	if err != nil {
		return 0, err
	}

	if attr == "likesCount" {
		return reel.LikesCount, nil
	}
	return reel.CommentsCount, nil
}

func (r *DynamoRepository) CreateComment(ctx context.Context, comment model.CommentItem) error {
	return r.db.Client.PutItem(ctx, model.CommentsTable, comment)
}

func (r *DynamoRepository) ListComments(ctx context.Context, reelID string) ([]model.CommentItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.CommentsTable,
		aws.String("byReel"),
		"reelId = :reelId",
		map[string]types.AttributeValue{
			":reelId": &types.AttributeValueMemberS{Value: reelID},
		},
		nil,
		nil,
	)
	if err != nil {
		return nil, err
	}

	comments := make([]model.CommentItem, 0, len(items))
	for _, item := range items {
		var comment model.CommentItem
		if err := attributevalue.UnmarshalMap(item, &comment); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

func isNotFoundError(err error) bool {
	return errors.Is(err, database.ErrItemNotFound)
}
