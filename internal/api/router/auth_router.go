package router

import (
	"net/http"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/endpoints"
	"reelgram-backend/internal/api/middleware"
)

func AuthRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Database())
		mux.HandleFunc(prefix+"/auth/register", s.MakeHTTPHandleFunc(authEndpoints.Register))
		mux.HandleFunc(prefix+"/auth/login", s.MakeHTTPHandleFunc(authEndpoints.Login))
		mux.HandleFunc(prefix+"/auth/verify-email", s.MakeHTTPHandleFunc(authEndpoints.VerifyEmail))
		mux.HandleFunc(prefix+"/auth/resend-verification", s.MakeHTTPHandleFunc(authEndpoints.ResendVerification))
		mux.HandleFunc(prefix+"/auth/me", s.MakeHTTPHandleFunc(authEndpoints.Me, middleware.ValidateUserJWT))
	}
}
