package router

import (
	"net/http"
	"strings"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/endpoints"
	"reelgram-backend/internal/api/middleware"
)

func ChatRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		paths := endpoints.ChatPaths{
			HistoryPrefix: strings.TrimRight(prefix, "/") + "/chat/",
		}
		chatEndpoints := endpoints.NewChatEndpoints(s.Database(), paths)

		mux.HandleFunc(prefix+"/chat/", s.MakeHTTPHandleFunc(chatEndpoints.History, middleware.ValidateUserJWT))
	}
}
