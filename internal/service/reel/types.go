package reel

import "reelgram-backend/internal/model"

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type CreateParams struct {
	UserID   string
	Caption  string
	VideoURL string
}

type FeedParams struct {
	// ViewerID marks which reels the requesting user has liked.
	ViewerID string
	Page     int
	Limit    int
}

type FeedEntry struct {
	Reel  model.ReelItem
	Liked bool
}

type FeedResult struct {
	Entries []FeedEntry
	Page    int
	HasMore bool
}

type LikeResult struct {
	ReelID     string
	Liked      bool
	LikesCount int
}
