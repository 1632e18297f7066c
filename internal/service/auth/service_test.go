package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	internaljwt "reelgram-backend/internal/jwt"
	"reelgram-backend/internal/model"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]model.UserItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users: make(map[string]model.UserItem),
	}
}

func (m *memoryRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; ok {
		return errors.New("conditional check failed")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *memoryRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.UserItem{}, ErrNotFound
	}
	return user, nil
}

func (m *memoryRepository) FindByEmail(ctx context.Context, email string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memoryRepository) FindByUsername(ctx context.Context, username string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memoryRepository) FindByVerificationToken(ctx context.Context, token string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.VerificationToken != "" && user.VerificationToken == token {
			return user, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memoryRepository) UpdateVerification(ctx context.Context, userID string, verified bool, token, expires string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Verified = verified
	user.VerificationToken = token
	user.VerificationTokenExpires = expires
	m.users[userID] = user
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *recordingMailer) SendVerificationEmail(to, username, verificationURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func setupJWT(t *testing.T) {
	t.Helper()

	original := createTokenWithRefresh
	internaljwt.RoleSecrets[internaljwt.RoleUser] = "test-secret"
	SetTokenIssuer(func(user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error) {
		token, err := internaljwt.CreateToken(user, role, validUntil)
		if err != nil {
			return internaljwt.TokenResponse{}, err
		}
		return internaljwt.TokenResponse{
			AccessToken: token,
		}, nil
	})

	t.Cleanup(func() {
		SetTokenIssuer(original)
	})
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

func register(t *testing.T, svc *Service, username, email string) RegisterResult {
	t.Helper()

	result, err := svc.Register(context.Background(), RegisterParams{
		Username: username,
		Email:    email,
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	return result
}

func TestRegisterCreatesUnverifiedUserWithToken(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	mailer := &recordingMailer{}
	svc := NewWithRepository(repo, mailer, fixedNow)

	result := register(t, svc, "alice", "alice@example.com")

	if result.User.Verified {
		t.Fatal("new user must not be verified")
	}
	if result.User.VerificationToken == "" {
		t.Fatal("expected a verification token")
	}
	if len(result.User.VerificationToken) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(result.User.VerificationToken))
	}
	if result.User.DisplayName != "alice" {
		t.Fatalf("display name should default to username, got %q", result.User.DisplayName)
	}
	if !result.EmailSent {
		t.Fatal("expected emailSent true")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com" {
		t.Fatalf("unexpected mailer calls: %v", mailer.sent)
	}

	expires, err := time.Parse(time.RFC3339, result.User.VerificationTokenExpires)
	if err != nil {
		t.Fatalf("parse expiry: %v", err)
	}
	if got, want := expires.Sub(fixedNow()), 24*time.Hour; got != want {
		t.Fatalf("expected 24h expiry, got %v", got)
	}
}

func TestRegisterSucceedsWhenEmailDeliveryFails(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{fail: true}, fixedNow)

	result := register(t, svc, "alice", "alice@example.com")

	if result.EmailSent {
		t.Fatal("expected emailSent false")
	}
	if _, err := repo.FindByUsername(context.Background(), "alice"); err != nil {
		t.Fatalf("user should still exist: %v", err)
	}
}

func TestRegisterRejectsDuplicateUsernameAndEmail(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	register(t, svc, "alice", "alice@example.com")

	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret1",
	})
	assertErrorCode(t, err, ErrorCodeConflict)

	_, err = svc.Register(context.Background(), RegisterParams{
		Username: "bob",
		Email:    "Alice@Example.com",
		Password: "secret1",
	})
	assertErrorCode(t, err, ErrorCodeConflict)
}

func TestRegisterValidatesRequiredFields(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), &recordingMailer{}, fixedNow)

	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
	})
	assertErrorCode(t, err, ErrorCodeValidation)

	_, err = svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	assertErrorCode(t, err, ErrorCodeValidation)
}

func TestLoginRejectsUnverifiedUser(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	register(t, svc, "alice", "alice@example.com")

	_, err := svc.Login(context.Background(), LoginParams{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	assertErrorCode(t, err, ErrorCodeUnverified)
}

func TestLoginIsUniformOnBadEmailAndBadPassword(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	register(t, svc, "alice", "alice@example.com")

	_, badEmail := svc.Login(context.Background(), LoginParams{
		Email:    "nobody@example.com",
		Password: "secret1",
	})
	_, badPassword := svc.Login(context.Background(), LoginParams{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	assertErrorCode(t, badEmail, ErrorCodeUnauthorized)
	assertErrorCode(t, badPassword, ErrorCodeUnauthorized)
	if badEmail.Error() != badPassword.Error() {
		t.Fatalf("credential errors must be indistinguishable: %q vs %q", badEmail, badPassword)
	}
}

func TestVerifyEmailThenLogin(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	result := register(t, svc, "alice", "alice@example.com")

	user, err := svc.VerifyEmail(context.Background(), result.User.VerificationToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !user.Verified || user.VerificationToken != "" {
		t.Fatalf("token should be consumed, got %#v", user)
	}

	auth, err := svc.Login(context.Background(), LoginParams{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("login after verify: %v", err)
	}
	if auth.Tokens.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	identity, err := IdentityFromToken(auth.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if identity.UserID != result.User.UserID || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestVerifyEmailRejectsExpiredToken(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()

	registered := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	result := register(t, registered, "alice", "alice@example.com")

	dayLater := func() time.Time { return fixedNow().Add(25 * time.Hour) }
	svc := NewWithRepository(repo, &recordingMailer{}, dayLater)

	_, err := svc.VerifyEmail(context.Background(), result.User.VerificationToken)
	assertErrorCode(t, err, ErrorCodeNotFound)
}

func TestVerifyEmailRejectsUnknownToken(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), &recordingMailer{}, fixedNow)

	_, err := svc.VerifyEmail(context.Background(), "deadbeef")
	assertErrorCode(t, err, ErrorCodeNotFound)
}

func TestResendVerificationRotatesToken(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	mailer := &recordingMailer{}
	svc := NewWithRepository(repo, mailer, fixedNow)
	result := register(t, svc, "alice", "alice@example.com")

	sent, err := svc.ResendVerification(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !sent {
		t.Fatal("expected emailSent true")
	}

	updated, err := repo.GetUser(context.Background(), result.User.UserID)
	if err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if updated.VerificationToken == result.User.VerificationToken {
		t.Fatal("token should have been rotated")
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(mailer.sent))
	}
}

func TestResendVerificationRejectsVerifiedUser(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	result := register(t, svc, "alice", "alice@example.com")

	if _, err := svc.VerifyEmail(context.Background(), result.User.VerificationToken); err != nil {
		t.Fatalf("verify: %v", err)
	}

	_, err := svc.ResendVerification(context.Background(), "alice@example.com")
	assertErrorCode(t, err, ErrorCodeValidation)
}

func TestMeReturnsProfile(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, &recordingMailer{}, fixedNow)
	result := register(t, svc, "alice", "alice@example.com")

	profile, err := svc.Me(context.Background(), Identity{UserID: result.User.UserID})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.User.Username != "alice" {
		t.Fatalf("unexpected profile: %#v", profile.User)
	}

	_, err = svc.Me(context.Background(), Identity{UserID: "missing"})
	assertErrorCode(t, err, ErrorCodeNotFound)
}

func assertErrorCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}

	svcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, svcErr.Code, err)
	}
}
