package router

import (
	"net/http"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/endpoints"
	"reelgram-backend/internal/api/middleware"
)

func UserRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		userEndpoints := endpoints.NewUserEndpoints(s.Database())
		mux.HandleFunc(prefix+"/users/suggested", s.MakeHTTPHandleFunc(userEndpoints.Suggested, middleware.ValidateUserJWT))
		mux.HandleFunc(prefix+"/users/by-name", s.MakeHTTPHandleFunc(userEndpoints.ByName, middleware.ValidateUserJWT))
	}
}
