package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"reelgram-backend/internal/database"
	"reelgram-backend/internal/dto"
	"reelgram-backend/internal/model"
	authsvc "reelgram-backend/internal/service/auth"
	reelsvc "reelgram-backend/internal/service/reel"
	usersvc "reelgram-backend/internal/service/user"
)

type ReelPaths struct {
	// ReelPrefix is the path prefix for per-reel actions, e.g.
	// "/api/v1/reels/". Segments after it are "<reelId>/like" or
	// "<reelId>/comments".
	ReelPrefix string
}

type ReelEndpoints interface {
	Reels(http.ResponseWriter, *http.Request) error
	ReelActions(http.ResponseWriter, *http.Request) error
}

type reelEndpoints struct {
	service *reelsvc.Service
	users   *usersvc.Service
	paths   ReelPaths
}

func NewReelEndpoints(db *database.Database, paths ReelPaths) ReelEndpoints {
	return &reelEndpoints{
		service: reelsvc.New(db),
		users:   usersvc.New(db),
		paths:   paths,
	}
}

func NewReelEndpointsWithServices(service *reelsvc.Service, users *usersvc.Service, paths ReelPaths) ReelEndpoints {
	return &reelEndpoints{
		service: service,
		users:   users,
		paths:   paths,
	}
}

func (h *reelEndpoints) Reels(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleFeed,
		http.MethodPost: h.handleCreate,
	})
}

func (h *reelEndpoints) ReelActions(w http.ResponseWriter, r *http.Request) error {
	_, action, err := h.extractReelAction(r.URL.Path)
	if err != nil {
		return err
	}

	switch action {
	case "like":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodPost: h.handleToggleLike,
		})
	case "comments":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodGet:  h.handleListComments,
			http.MethodPost: h.handleAddComment,
		})
	default:
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("unknown reel action %q", action),
		}
	}
}

func (h *reelEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r)
	if err != nil {
		return err
	}

	var req dto.CreateReelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create reel request: %w", err),
		}
	}

	reel, err := h.service.Create(r.Context(), reelsvc.CreateParams{
		UserID:   identity.UserID,
		Caption:  req.Caption,
		VideoURL: req.VideoURL,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, h.toReelResponse(reel, identity.Username, false))
}

func (h *reelEndpoints) handleFeed(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.Feed(r.Context(), reelsvc.FeedParams{
		ViewerID: identity.UserID,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return h.serviceError(err)
	}

	reels := make([]dto.ReelResponse, 0, len(result.Entries))
	for _, entry := range result.Entries {
		reels = append(reels, h.toReelResponse(entry.Reel, h.usernameFor(r, entry.Reel.UserID), entry.Liked))
	}

	return WriteJSON(w, http.StatusOK, dto.ReelFeedResponse{
		Reels:   reels,
		Page:    result.Page,
		HasMore: result.HasMore,
	})
}

func (h *reelEndpoints) handleToggleLike(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r)
	if err != nil {
		return err
	}

	reelID, _, err := h.extractReelAction(r.URL.Path)
	if err != nil {
		return err
	}

	result, err := h.service.ToggleLike(r.Context(), identity.UserID, reelID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.LikeResponse{
		ReelID:     result.ReelID,
		Liked:      result.Liked,
		LikesCount: result.LikesCount,
	})
}

func (h *reelEndpoints) handleAddComment(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r)
	if err != nil {
		return err
	}

	reelID, _, err := h.extractReelAction(r.URL.Path)
	if err != nil {
		return err
	}

	var req dto.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode comment request: %w", err),
		}
	}

	comment, err := h.service.AddComment(r.Context(), identity.UserID, reelID, req.Text)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.CommentResponse{
		CommentID: comment.CommentID,
		ReelID:    comment.ReelID,
		UserID:    comment.UserID,
		Username:  identity.Username,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	})
}

func (h *reelEndpoints) handleListComments(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.identity(r); err != nil {
		return err
	}

	reelID, _, err := h.extractReelAction(r.URL.Path)
	if err != nil {
		return err
	}

	comments, err := h.service.Comments(r.Context(), reelID)
	if err != nil {
		return h.serviceError(err)
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, dto.CommentResponse{
			CommentID: comment.CommentID,
			ReelID:    comment.ReelID,
			UserID:    comment.UserID,
			Username:  h.usernameFor(r, comment.UserID),
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		})
	}

	return WriteJSON(w, http.StatusOK, dto.CommentListResponse{Comments: responses})
}

func (h *reelEndpoints) extractReelAction(path string) (string, string, error) {
	trimmed := strings.TrimPrefix(path, h.paths.ReelPrefix)
	if trimmed == path {
		return "", "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("reel path mismatch: %s", path),
		}
	}

	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("invalid reel path: %s", path),
		}
	}

	return parts[0], parts[1], nil
}

func (h *reelEndpoints) identity(r *http.Request) (authsvc.Identity, error) {
	identity, err := authsvc.IdentityFromToken(ExtractTokenFromHeaders(r))
	if err != nil {
		return authsvc.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("reel identity: %w", err),
		}
	}
	return identity, nil
}

// usernameFor resolves the author name for display. Lookup failures leave
// the name empty instead of failing the feed.
func (h *reelEndpoints) usernameFor(r *http.Request, userID string) string {
	if h.users == nil {
		return ""
	}
	user, err := h.users.ByID(r.Context(), userID)
	if err != nil {
		return ""
	}
	return user.Username
}

func (h *reelEndpoints) toReelResponse(reel model.ReelItem, username string, liked bool) dto.ReelResponse {
	return dto.ReelResponse{
		ReelID:        reel.ReelID,
		UserID:        reel.UserID,
		Username:      username,
		Caption:       reel.Caption,
		VideoURL:      reel.VideoURL,
		LikesCount:    reel.LikesCount,
		CommentsCount: reel.CommentsCount,
		Liked:         liked,
		CreatedAt:     reel.CreatedAt,
	}
}

func (h *reelEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*reelsvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("reel service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case reelsvc.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case reelsvc.ErrorCodeNotFound:
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
