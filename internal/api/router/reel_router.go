package router

import (
	"net/http"
	"strings"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/endpoints"
	"reelgram-backend/internal/api/middleware"
)

func ReelRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		paths := endpoints.ReelPaths{
			ReelPrefix: strings.TrimRight(prefix, "/") + "/reels/",
		}
		reelEndpoints := endpoints.NewReelEndpoints(s.Database(), paths)

		mux.HandleFunc(prefix+"/reels", s.MakeHTTPHandleFunc(reelEndpoints.Reels, middleware.ValidateUserJWT))
		mux.HandleFunc(prefix+"/reels/", s.MakeHTTPHandleFunc(reelEndpoints.ReelActions, middleware.ValidateUserJWT))
	}
}
