package user

import (
	"context"
	"errors"
	"sort"
	"strings"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"
)

const suggestedLimit = 10

type Service struct {
	repo Repository
}

func New(db *database.Database) *Service {
	return &Service{repo: NewDynamoRepository(db)}
}

func NewWithRepository(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggested returns recently registered users for the inbox sidebar,
// excluding the requesting user.
func (s *Service) Suggested(ctx context.Context, viewerID string) ([]model.UserItem, error) {
	users, err := s.repo.ListUsers(ctx, suggestedLimit+1)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to fetch users", err)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt > users[j].CreatedAt
	})

	result := make([]model.UserItem, 0, suggestedLimit)
	for _, user := range users {
		if user.UserID == viewerID {
			continue
		}
		result = append(result, user)
		if len(result) == suggestedLimit {
			break
		}
	}

	return result, nil
}

// ByID fetches a single user record.
func (s *Service) ByID(ctx context.Context, userID string) (model.UserItem, error) {
	if userID == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "missing user id", nil)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", nil)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	return user, nil
}

// ByName resolves a user by username first, display name second.
func (s *Service) ByName(ctx context.Context, name string) (model.UserItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "missing name", nil)
	}

	user, err := s.repo.FindByUsername(ctx, name)
	if errors.Is(err, ErrNotFound) {
		user, err = s.repo.FindByDisplayName(ctx, name)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", nil)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	return user, nil
}
