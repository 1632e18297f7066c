package endpoints

import (
	"fmt"
	"net/http"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/dto"
	authsvc "reelgram-backend/internal/service/auth"
	usersvc "reelgram-backend/internal/service/user"
)

type UserEndpoints interface {
	Suggested(http.ResponseWriter, *http.Request) error
	ByName(http.ResponseWriter, *http.Request) error
}

type userEndpoints struct {
	service *usersvc.Service
}

func NewUserEndpoints(db *database.Database) UserEndpoints {
	return &userEndpoints{service: usersvc.New(db)}
}

func NewUserEndpointsWithService(service *usersvc.Service) UserEndpoints {
	return &userEndpoints{service: service}
}

func (h *userEndpoints) Suggested(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleSuggested,
	})
}

func (h *userEndpoints) ByName(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleByName,
	})
}

func (h *userEndpoints) handleSuggested(w http.ResponseWriter, r *http.Request) error {
	identity, err := authsvc.IdentityFromToken(ExtractTokenFromHeaders(r))
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("user identity: %w", err),
		}
	}

	users, err := h.service.Suggested(r.Context(), identity.UserID)
	if err != nil {
		return h.serviceError(err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	return WriteJSON(w, http.StatusOK, dto.UserListResponse{Users: responses})
}

func (h *userEndpoints) handleByName(w http.ResponseWriter, r *http.Request) error {
	if _, err := authsvc.IdentityFromToken(ExtractTokenFromHeaders(r)); err != nil {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("user identity: %w", err),
		}
	}

	user, err := h.service.ByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *userEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*usersvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("user service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case usersvc.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case usersvc.ErrorCodeNotFound:
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
