package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"reelgram-backend/internal/dto"
	"reelgram-backend/internal/negotiation"
	authsvc "reelgram-backend/internal/service/auth"
	"reelgram-backend/internal/signaling"
)

// Request bodies above this size are rejected on the fallback channel.
const maxSignalBodySize = 64 * 1024

type SignalPaths struct {
	// RoomPrefix is the path prefix for per-room signal operations, e.g.
	// "/api/ws/v1/rooms/". Segments after it are "<roomId>/signals".
	RoomPrefix string
}

type SignalEndpoints interface {
	Rooms(http.ResponseWriter, *http.Request) error
	RoomSignals(http.ResponseWriter, *http.Request) error
	ICEConfig(http.ResponseWriter, *http.Request) error
}

type signalEndpoints struct {
	registry *signaling.Registry
	fallback signaling.FallbackQueue
	paths    SignalPaths
}

func NewSignalEndpoints(registry *signaling.Registry, fallback signaling.FallbackQueue, paths SignalPaths) SignalEndpoints {
	return &signalEndpoints{
		registry: registry,
		fallback: fallback,
		paths:    paths,
	}
}

func (h *signalEndpoints) Rooms(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleRooms,
	})
}

func (h *signalEndpoints) RoomSignals(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handlePollSignals,
		http.MethodPost: h.handleAppendSignal,
	})
}

func (h *signalEndpoints) ICEConfig(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleICEConfig,
	})
}

func (h *signalEndpoints) handleRooms(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.identity(r); err != nil {
		return err
	}

	return WriteJSON(w, http.StatusOK, dto.RoomListResponse{Rooms: h.registry.Rooms()})
}

func (h *signalEndpoints) handlePollSignals(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.identity(r); err != nil {
		return err
	}

	room, err := h.extractRoom(r.URL.Path)
	if err != nil {
		return err
	}

	signals, err := h.fallback.Poll(r.Context(), room)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("poll fallback signals for room %s: %w", room, err),
		}
	}
	if signals == nil {
		signals = []json.RawMessage{}
	}

	return WriteJSON(w, http.StatusOK, dto.SignalListResponse{
		Room:    room,
		Signals: signals,
	})
}

func (h *signalEndpoints) handleAppendSignal(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.identity(r); err != nil {
		return err
	}

	room, err := h.extractRoom(r.URL.Path)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSignalBodySize))
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("read signal body: %w", err),
		}
	}
	if !json.Valid(body) {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("signal body is not valid JSON"),
		}
	}

	if err := h.fallback.Append(r.Context(), room, json.RawMessage(body)); err != nil {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("append fallback signal for room %s: %w", room, err),
		}
	}

	return WriteJSON(w, http.StatusAccepted, ApiMessageResponse{Message: "Signal queued"})
}

func (h *signalEndpoints) handleICEConfig(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.identity(r); err != nil {
		return err
	}

	servers := negotiation.ICEServersFromEnv()
	responses := make([]dto.ICEServerResponse, 0, len(servers))
	for _, server := range servers {
		resp := dto.ICEServerResponse{
			URLs:     append([]string(nil), server.URLs...),
			Username: server.Username,
		}
		if credential, ok := server.Credential.(string); ok {
			resp.Credential = credential
		}
		responses = append(responses, resp)
	}

	return WriteJSON(w, http.StatusOK, dto.ICEConfigResponse{ICEServers: responses})
}

func (h *signalEndpoints) extractRoom(path string) (string, error) {
	trimmed := strings.TrimPrefix(path, h.paths.RoomPrefix)
	if trimmed == path {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("signal path mismatch: %s", path),
		}
	}

	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "signals" {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("invalid signal path: %s", path),
		}
	}

	return parts[0], nil
}

func (h *signalEndpoints) identity(r *http.Request) (authsvc.Identity, error) {
	identity, err := authsvc.IdentityFromToken(ExtractTokenFromHeaders(r))
	if err != nil {
		return authsvc.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("signal identity: %w", err),
		}
	}
	return identity, nil
}
