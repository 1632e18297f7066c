package router

import (
	"net/http"
	"strings"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/endpoints"
	"reelgram-backend/internal/signaling"
)

// SignalingRoutes wires the realtime surface: the websocket entry point plus
// the HTTP fallback channel for clients that cannot hold a socket open. The
// websocket route skips the request queue since connections are long-lived.
func SignalingRoutes(prefix string, fallback signaling.FallbackQueue) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		paths := endpoints.SignalPaths{
			RoomPrefix: strings.TrimRight(prefix, "/") + "/rooms/",
		}
		signalEndpoints := endpoints.NewSignalEndpoints(s.Signaling().Registry(), fallback, paths)

		mux.HandleFunc(prefix+"/connect", s.Signaling().Serve)
		mux.HandleFunc(prefix+"/rooms", s.MakeHTTPHandleFunc(signalEndpoints.Rooms))
		mux.HandleFunc(prefix+"/rooms/", s.MakeHTTPHandleFunc(signalEndpoints.RoomSignals))
		mux.HandleFunc(prefix+"/ice", s.MakeHTTPHandleFunc(signalEndpoints.ICEConfig))
	}
}
