package reel

import (
	"context"
	"errors"
	"strings"
	"time"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"

	"github.com/google/uuid"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 20
	maxCommentLength = 500
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return &Service{
		repo: NewDynamoRepository(db),
		now:  time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo: repo,
		now:  now,
	}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (model.ReelItem, error) {
	userID := strings.TrimSpace(params.UserID)
	videoURL := strings.TrimSpace(params.VideoURL)
	caption := strings.TrimSpace(params.Caption)

	if userID == "" {
		return model.ReelItem{}, newError(ErrorCodeValidation, "missing user", nil)
	}
	if videoURL == "" {
		return model.ReelItem{}, newError(ErrorCodeValidation, "missing video url", nil)
	}

	reel := model.ReelItem{
		ReelID:    uuid.NewString(),
		Feed:      model.ReelFeedPartition,
		UserID:    userID,
		Caption:   caption,
		VideoURL:  videoURL,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.CreateReel(ctx, reel); err != nil {
		return model.ReelItem{}, newError(ErrorCodeInternal, "failed to save reel", err)
	}

	return reel, nil
}

func (s *Service) Feed(ctx context.Context, params FeedParams) (FeedResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	reels, hasMore, err := s.repo.ListFeed(ctx, page*limit)
	if err != nil {
		return FeedResult{}, newError(ErrorCodeInternal, "failed to fetch feed", err)
	}

	start := (page - 1) * limit
	if start >= len(reels) {
		return FeedResult{Entries: []FeedEntry{}, Page: page, HasMore: false}, nil
	}

	pageReels := reels[start:]
	entries := make([]FeedEntry, 0, len(pageReels))
	for _, reel := range pageReels {
		liked := false
		if params.ViewerID != "" {
			liked, err = s.repo.HasLike(ctx, params.ViewerID, reel.ReelID)
			if err != nil {
				return FeedResult{}, newError(ErrorCodeInternal, "failed to fetch likes", err)
			}
		}
		entries = append(entries, FeedEntry{Reel: reel, Liked: liked})
	}

	return FeedResult{
		Entries: entries,
		Page:    page,
		HasMore: hasMore,
	}, nil
}

// ToggleLike likes the reel when the user has not liked it yet and removes
// the like otherwise. The stored like row is the source of truth; the
// counter follows it.
func (s *Service) ToggleLike(ctx context.Context, userID, reelID string) (LikeResult, error) {
	userID = strings.TrimSpace(userID)
	reelID = strings.TrimSpace(reelID)
	if userID == "" || reelID == "" {
		return LikeResult{}, newError(ErrorCodeValidation, "missing user or reel", nil)
	}

	if _, err := s.repo.GetReel(ctx, reelID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return LikeResult{}, newError(ErrorCodeNotFound, "reel not found", nil)
		}
		return LikeResult{}, newError(ErrorCodeInternal, "failed to fetch reel", err)
	}

	like := model.LikeItem{
		PK:        model.LikePK(userID, reelID),
		UserID:    userID,
		ReelID:    reelID,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}

	err := s.repo.CreateLike(ctx, like)
	switch {
	case err == nil:
		count, err := s.repo.AdjustLikes(ctx, reelID, 1)
		if err != nil {
			return LikeResult{}, newError(ErrorCodeInternal, "failed to update like count", err)
		}
		return LikeResult{ReelID: reelID, Liked: true, LikesCount: count}, nil

	case errors.Is(err, ErrAlreadyLiked):
		if err := s.repo.DeleteLike(ctx, userID, reelID); err != nil {
			return LikeResult{}, newError(ErrorCodeInternal, "failed to remove like", err)
		}
		count, err := s.repo.AdjustLikes(ctx, reelID, -1)
		if err != nil {
			return LikeResult{}, newError(ErrorCodeInternal, "failed to update like count", err)
		}
		if count < 0 {
			count = 0
		}
		return LikeResult{ReelID: reelID, Liked: false, LikesCount: count}, nil

	default:
		return LikeResult{}, newError(ErrorCodeInternal, "failed to save like", err)
	}
}

func (s *Service) AddComment(ctx context.Context, userID, reelID, text string) (model.CommentItem, error) {
	userID = strings.TrimSpace(userID)
	reelID = strings.TrimSpace(reelID)
	text = strings.TrimSpace(text)

	if userID == "" || reelID == "" {
		return model.CommentItem{}, newError(ErrorCodeValidation, "missing user or reel", nil)
	}
	if text == "" {
		return model.CommentItem{}, newError(ErrorCodeValidation, "comment text is required", nil)
	}
	if len([]rune(text)) > maxCommentLength {
		return model.CommentItem{}, newError(ErrorCodeValidation, "comment exceeds 500 characters", nil)
	}

	if _, err := s.repo.GetReel(ctx, reelID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.CommentItem{}, newError(ErrorCodeNotFound, "reel not found", nil)
		}
		return model.CommentItem{}, newError(ErrorCodeInternal, "failed to fetch reel", err)
	}

	commentID := uuid.NewString()
	comment := model.CommentItem{
		PK:        model.CommentPK(reelID, commentID),
		ReelID:    reelID,
		CommentID: commentID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return model.CommentItem{}, newError(ErrorCodeInternal, "failed to save comment", err)
	}

	if _, err := s.repo.AdjustComments(ctx, reelID, 1); err != nil {
		return model.CommentItem{}, newError(ErrorCodeInternal, "failed to update comment count", err)
	}

	return comment, nil
}

func (s *Service) Comments(ctx context.Context, reelID string) ([]model.CommentItem, error) {
	reelID = strings.TrimSpace(reelID)
	if reelID == "" {
		return nil, newError(ErrorCodeValidation, "missing reel", nil)
	}

	if _, err := s.repo.GetReel(ctx, reelID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(ErrorCodeNotFound, "reel not found", nil)
		}
		return nil, newError(ErrorCodeInternal, "failed to fetch reel", err)
	}

	comments, err := s.repo.ListComments(ctx, reelID)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to fetch comments", err)
	}

	return comments, nil
}
