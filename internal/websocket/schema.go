package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only message a client sends.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventInvalidated Event = "invalidated"
	EventPong        Event = "pong"
)

// InvalidatedEvent tells an open page that a collection changed and must be reloaded.
type InvalidatedEvent struct {
	Event    Event  `json:"event"`
	Resource string `json:"resource"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
