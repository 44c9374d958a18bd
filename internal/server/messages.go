package server

// ClientMessage is the flat inbound wire format: a type discriminator
// plus whichever fields that type uses.
type ClientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"` // join/reconnect
	Code      string `json:"code,omitempty"`      // join/reconnect
	Name      string `json:"name,omitempty"`      // join (informational)
	TargetID  int    `json:"targetId,omitempty"`  // vote
}

type StateUpdateMessage struct {
	Type  string    `json:"type"` // "state_update"
	State GameState `json:"state"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type PongMessage struct {
	Type string `json:"type"` // "pong"
}

type DisconnectedElsewhereMessage struct {
	Type    string `json:"type"` // "disconnected_elsewhere"
	Message string `json:"message"`
}
