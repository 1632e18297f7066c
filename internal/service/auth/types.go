package auth

import (
	internaljwt "reelgram-backend/internal/jwt"
	"reelgram-backend/internal/model"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeUnverified   ErrorCode = "email_not_verified"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeInternal     ErrorCode = "internal_error"
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

type RegisterParams struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

type LoginParams struct {
	Email    string
	Password string
}

type Identity struct {
	UserID   string
	Username string
	Email    string
}

type RegisterResult struct {
	User model.UserItem
	// EmailSent is false when delivery of the verification email failed.
	// Registration still succeeds; the token can be resent later.
	EmailSent bool
}

type AuthResult struct {
	User   model.UserItem
	Tokens internaljwt.TokenResponse
}

type ProfileResult struct {
	User model.UserItem
}
