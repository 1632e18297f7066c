package endpoints

import (
	"fmt"
	"net/http"
	"strings"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/dto"
	authsvc "reelgram-backend/internal/service/auth"
	chatsvc "reelgram-backend/internal/service/chat"
)

type ChatPaths struct {
	// HistoryPrefix is the path prefix for chat history, e.g.
	// "/api/v1/chat/". The segment after it names the partner.
	HistoryPrefix string
}

type ChatEndpoints interface {
	History(http.ResponseWriter, *http.Request) error
}

type chatEndpoints struct {
	service *chatsvc.Service
	paths   ChatPaths
}

func NewChatEndpoints(db *database.Database, paths ChatPaths) ChatEndpoints {
	return &chatEndpoints{service: chatsvc.New(db), paths: paths}
}

func NewChatEndpointsWithService(service *chatsvc.Service, paths ChatPaths) ChatEndpoints {
	return &chatEndpoints{service: service, paths: paths}
}

func (h *chatEndpoints) History(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleHistory,
	})
}

func (h *chatEndpoints) handleHistory(w http.ResponseWriter, r *http.Request) error {
	identity, err := authsvc.IdentityFromToken(ExtractTokenFromHeaders(r))
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("chat identity: %w", err),
		}
	}

	partner, err := h.extractPartner(r.URL.Path)
	if err != nil {
		return err
	}

	result, err := h.service.History(r.Context(), identity.UserID, partner)
	if err != nil {
		return h.serviceError(err)
	}

	messages := make([]dto.MessageResponse, 0, len(result.Messages))
	for _, msg := range result.Messages {
		messages = append(messages, dto.MessageResponse{
			MessageID:  msg.MessageID,
			Room:       msg.Room,
			FromUserID: msg.FromUserID,
			ToUserID:   msg.ToUserID,
			Text:       msg.Text,
			CreatedAt:  msg.CreatedAt,
		})
	}

	return WriteJSON(w, http.StatusOK, dto.ChatHistoryResponse{
		Room:     result.Room,
		Partner:  toUserResponse(result.Partner),
		Messages: messages,
	})
}

func (h *chatEndpoints) extractPartner(path string) (string, error) {
	trimmed := strings.TrimPrefix(path, h.paths.HistoryPrefix)
	if trimmed == path {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("chat path mismatch: %s", path),
		}
	}

	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) != 1 || parts[0] == "" {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("invalid chat path: %s", path),
		}
	}

	return parts[0], nil
}

func (h *chatEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*chatsvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("chat service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case chatsvc.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case chatsvc.ErrorCodeNotFound:
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
