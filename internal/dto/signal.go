package dto

import "encoding/json"

type RoomListResponse struct {
	Rooms []string `json:"rooms"`
}

type SignalListResponse struct {
	Room    string            `json:"room"`
	Signals []json.RawMessage `json:"signals"`
}

type ICEServerResponse struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

type ICEConfigResponse struct {
	ICEServers []ICEServerResponse `json:"iceServers"`
}
