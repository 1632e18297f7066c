package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/dto"
	"reelgram-backend/internal/env"
	"reelgram-backend/internal/model"
	authsvc "reelgram-backend/internal/service/auth"
)

type AuthEndpoints interface {
	Register(http.ResponseWriter, *http.Request) error
	Login(http.ResponseWriter, *http.Request) error
	VerifyEmail(http.ResponseWriter, *http.Request) error
	ResendVerification(http.ResponseWriter, *http.Request) error
	Me(http.ResponseWriter, *http.Request) error
}

type authEndpoints struct {
	service *authsvc.Service
}

func NewAuthEndpoints(db *database.Database) AuthEndpoints {
	return &authEndpoints{
		service: authsvc.New(db),
	}
}

func NewAuthEndpointsWithService(service *authsvc.Service) AuthEndpoints {
	return &authEndpoints{service: service}
}

func (h *authEndpoints) Register(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRegister,
	})
}

func (h *authEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *authEndpoints) VerifyEmail(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleVerifyEmail,
	})
}

func (h *authEndpoints) ResendVerification(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleResendVerification,
	})
}

func (h *authEndpoints) Me(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleMe,
	})
}

func (h *authEndpoints) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode register request: %w", err),
		}
	}

	result, err := h.service.Register(r.Context(), authsvc.RegisterParams{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.RegisterResponse{
		User:      toUserResponse(result.User),
		EmailSent: result.EmailSent,
	})
}

func (h *authEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode login request: %w", err),
		}
	}

	result, err := h.service.Login(r.Context(), authsvc.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var svcErr *authsvc.Error
		if errors.As(err, &svcErr) && svcErr.Code == authsvc.ErrorCodeUnverified {
			// Not a plain rejection: the client needs the email back to
			// offer a resend.
			return WriteJSON(w, http.StatusForbidden, dto.UnverifiedLoginResponse{
				Message:           svcErr.Message,
				NeedsVerification: true,
				Email:             strings.ToLower(strings.TrimSpace(req.Email)),
			})
		}
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         toUserResponse(result.User),
	})
}

// handleVerifyEmail lands users from the email link, so it answers with a
// redirect to the web app instead of JSON.
func (h *authEndpoints) handleVerifyEmail(w http.ResponseWriter, r *http.Request) error {
	webURL := env.GetOrDefault(env.WebURL, "http://localhost:3000")

	_, err := h.service.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		http.Redirect(w, r, webURL+"/?verified=false", http.StatusFound)
		return nil
	}

	http.Redirect(w, r, webURL+"/?verified=true", http.StatusFound)
	return nil
}

func (h *authEndpoints) handleResendVerification(w http.ResponseWriter, r *http.Request) error {
	var req dto.ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode resend request: %w", err),
		}
	}

	sent, err := h.service.ResendVerification(r.Context(), req.Email)
	if err != nil {
		return h.serviceError(err)
	}

	message := "Verification email sent"
	if !sent {
		message = "Verification token refreshed, email delivery failed"
	}
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: message})
}

func (h *authEndpoints) handleMe(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.service.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return h.serviceError(err)
	}

	profile, err := h.service.Me(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.MeResponse{User: toUserResponse(profile.User)})
}

func (h *authEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*authsvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("auth service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case authsvc.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case authsvc.ErrorCodeUnauthorized:
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case authsvc.ErrorCodeUnverified:
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case authsvc.ErrorCodeConflict:
		return &HTTPError{
			StatusCode: http.StatusConflict,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case authsvc.ErrorCodeNotFound:
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	default:
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   errorLog,
		}
	}
}

func toUserResponse(user model.UserItem) dto.UserResponse {
	return dto.UserResponse{
		UserID:      user.UserID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Verified:    user.Verified,
		CreatedAt:   user.CreatedAt,
	}
}
