package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/model"

	"github.com/google/uuid"
)

const historyLimit = 200

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

// History resolves the conversation partner by username first, display name
// second, then returns the tail of the shared room in chronological order.
func (s *Service) History(ctx context.Context, userID, partnerName string) (HistoryResult, error) {
	userID = strings.TrimSpace(userID)
	partnerName = strings.TrimSpace(partnerName)

	if userID == "" || partnerName == "" {
		return HistoryResult{}, newError(ErrorCodeValidation, "missing user or partner", nil)
	}

	partner, err := s.repo.FindUserByUsername(ctx, partnerName)
	if errors.Is(err, ErrNotFound) {
		partner, err = s.repo.FindUserByDisplayName(ctx, partnerName)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return HistoryResult{}, newError(ErrorCodeNotFound, "partner not found", nil)
		}
		return HistoryResult{}, newError(ErrorCodeInternal, "failed to fetch partner", err)
	}

	room := model.DirectRoom(userID, partner.UserID)

	messages, err := s.repo.ListMessages(ctx, room, historyLimit)
	if err != nil {
		return HistoryResult{}, newError(ErrorCodeInternal, "failed to fetch messages", err)
	}

	return HistoryResult{
		Room:     room,
		Partner:  partner,
		Messages: messages,
	}, nil
}

// Record persists a relayed chat message. It backs the realtime relay, so
// it accepts the room as sent by the client and derives the recipient from
// it when possible.
func (s *Service) Record(ctx context.Context, room, fromUserID, text string) error {
	room = strings.TrimSpace(room)
	fromUserID = strings.TrimSpace(fromUserID)
	text = strings.TrimSpace(text)

	if room == "" || fromUserID == "" || text == "" {
		return newError(ErrorCodeValidation, "missing room, sender or text", nil)
	}

	messageID := uuid.NewString()
	message := model.MessageItem{
		PK:         model.MessagePK(room, messageID),
		Room:       room,
		MessageID:  messageID,
		FromUserID: fromUserID,
		ToUserID:   otherMember(room, fromUserID),
		Text:       text,
		CreatedAt:  s.now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return newError(ErrorCodeInternal, "failed to save message", err)
	}

	return nil
}

// otherMember extracts the recipient from a direct room id. Rooms that are
// not two-member direct rooms have no single recipient.
func otherMember(room, fromUserID string) string {
	parts := strings.Split(room, "|")
	if len(parts) != 2 {
		return ""
	}
	if parts[0] == fromUserID {
		return parts[1]
	}
	if parts[1] == fromUserID {
		return parts[0]
	}
	return ""
}
