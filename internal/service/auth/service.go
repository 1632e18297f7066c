package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/env"
	internaljwt "reelgram-backend/internal/jwt"
	"reelgram-backend/internal/mail"
	"reelgram-backend/internal/model"
	"reelgram-backend/utils"

	"github.com/google/uuid"
)

const (
	verificationTokenBytes = 32
	verificationTokenTTL   = 24 * time.Hour
	minPasswordLength      = 6
)

type Service struct {
	repo   Repository
	mailer mail.Mailer
	now    func() time.Time
}

var createTokenWithRefresh = internaljwt.CreateTokenWithRefresh

func SetTokenIssuer(issuer func(internaljwt.User, internaljwt.Role, int64) (internaljwt.TokenResponse, error)) {
	if issuer == nil {
		createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
		return
	}
	createTokenWithRefresh = issuer
}

func New(db *database.Database) *Service {
	return &Service{
		repo:   NewDynamoRepository(db),
		mailer: mail.NewFromEnv(),
		now:    time.Now,
	}
}

func NewWithRepository(repo Repository, mailer mail.Mailer, now func() time.Time) *Service {
	if mailer == nil {
		mailer = &mail.LogMailer{}
	}
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:   repo,
		mailer: mailer,
		now:    now,
	}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (RegisterResult, error) {
	email := normalizeEmail(params.Email)
	username := strings.TrimSpace(params.Username)
	displayName := strings.TrimSpace(params.DisplayName)
	password := params.Password

	if email == "" || username == "" || password == "" {
		return RegisterResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if len(password) < minPasswordLength {
		return RegisterResult{}, newError(ErrorCodeValidation, "password must be at least 6 characters", nil)
	}
	if displayName == "" {
		displayName = username
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return RegisterResult{}, newError(ErrorCodeConflict, "username already taken", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return RegisterResult{}, newError(ErrorCodeInternal, "failed to check username", err)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return RegisterResult{}, newError(ErrorCodeConflict, "email already registered", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return RegisterResult{}, newError(ErrorCodeInternal, "failed to check email", err)
	}

	newUser, err := internaljwt.NewUser(internaljwt.RegisterUser{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return RegisterResult{}, newError(ErrorCodeInternal, "failed to prepare user", err)
	}

	now := s.now().UTC()
	token := utils.RandomHex(verificationTokenBytes)

	user := model.UserItem{
		UserID:                   uuid.NewString(),
		Username:                 username,
		DisplayName:              displayName,
		Email:                    email,
		PasswordHash:             newUser.PasswordHash,
		Verified:                 false,
		VerificationToken:        token,
		VerificationTokenExpires: now.Add(verificationTokenTTL).Format(time.RFC3339),
		CreatedAt:                now.Format(time.RFC3339),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return RegisterResult{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	emailSent := s.sendVerification(user)

	return RegisterResult{
		User:      user,
		EmailSent: emailSent,
	}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := params.Password

	if email == "" || password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	if !internaljwt.ValidatePassword(user.PasswordHash, password) {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	if !user.Verified {
		return AuthResult{}, newError(ErrorCodeUnverified, "email not verified", nil)
	}

	jwtUser := internaljwt.User{
		Id:           user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}

	tokens, err := createTokenWithRefresh(jwtUser, internaljwt.RoleUser, 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{
		User:   user,
		Tokens: tokens,
	}, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) (model.UserItem, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "missing verification token", nil)
	}

	user, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "invalid or expired verification token", nil)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	expires, err := time.Parse(time.RFC3339, user.VerificationTokenExpires)
	if err != nil || s.now().UTC().After(expires) {
		return model.UserItem{}, newError(ErrorCodeNotFound, "invalid or expired verification token", err)
	}

	if err := s.repo.UpdateVerification(ctx, user.UserID, true, "", ""); err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to update user", err)
	}

	user.Verified = true
	user.VerificationToken = ""
	user.VerificationTokenExpires = ""
	return user, nil
}

func (s *Service) ResendVerification(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, newError(ErrorCodeValidation, "missing email", nil)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, newError(ErrorCodeNotFound, "user not found", nil)
		}
		return false, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	if user.Verified {
		return false, newError(ErrorCodeValidation, "email already verified", nil)
	}

	token := utils.RandomHex(verificationTokenBytes)
	expires := s.now().UTC().Add(verificationTokenTTL).Format(time.RFC3339)

	if err := s.repo.UpdateVerification(ctx, user.UserID, false, token, expires); err != nil {
		return false, newError(ErrorCodeInternal, "failed to update user", err)
	}

	user.VerificationToken = token
	return s.sendVerification(user), nil
}

func (s *Service) Me(ctx context.Context, identity Identity) (ProfileResult, error) {
	userID := strings.TrimSpace(identity.UserID)
	if userID == "" {
		return ProfileResult{}, newError(ErrorCodeUnauthorized, "invalid user identity", nil)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ProfileResult{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return ProfileResult{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	return ProfileResult{User: user}, nil
}

func (s *Service) IdentityFromAuthorizationHeader(header string) (Identity, error) {
	authHeader := strings.TrimSpace(header)
	if authHeader == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid authorization header format", nil)
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return IdentityFromToken(token)
}

// IdentityFromToken validates an access token and extracts the caller's
// identity. Shared with the websocket handshake, which carries the token in
// a query parameter instead of a header.
func IdentityFromToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "empty token", nil)
	}

	claims, err := internaljwt.ParseToken(token, internaljwt.RoleUser)
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}

	userID, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	if userID == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "token missing identifiers", nil)
	}

	return Identity{
		UserID:   userID,
		Username: username,
		Email:    email,
	}, nil
}

func (s *Service) sendVerification(user model.UserItem) bool {
	base := env.GetOrDefault(env.BaseURL, "http://localhost:3001")
	url := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", base, user.VerificationToken)

	if err := s.mailer.SendVerificationEmail(user.Email, user.Username, url); err != nil {
		// Registration already succeeded; surface the failure via the flag only.
		return false
	}
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
